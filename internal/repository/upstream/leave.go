package upstream

import (
	"context"
	"net/url"

	"github.com/cmlabs-hris/hris-admin-console/internal/domain/leave"
	client "github.com/cmlabs-hris/hris-admin-console/internal/pkg/upstream"
)

type leaveGateway struct {
	c *client.Client
}

func NewLeaveGateway(c *client.Client) leave.Gateway {
	return &leaveGateway{c: c}
}

func (g *leaveGateway) ListAll(ctx context.Context) ([]leave.RawRecord, error) {
	var out []leave.RawRecord
	if err := g.c.Get(ctx, "/leave/all", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (g *leaveGateway) ListMine(ctx context.Context) ([]leave.RawRecord, error) {
	var out []leave.RawRecord
	if err := g.c.Get(ctx, "/leave/my", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (g *leaveGateway) Get(ctx context.Context, id string) (leave.RawRecord, error) {
	var out leave.RawRecord
	if err := g.c.Get(ctx, "/leave/"+url.PathEscape(id), &out); err != nil {
		if client.IsNotFound(err) {
			return leave.RawRecord{}, leave.ErrLeaveNotFound
		}
		return leave.RawRecord{}, err
	}
	return out, nil
}

func (g *leaveGateway) Apply(ctx context.Context, req leave.ApplyLeaveRequest) (string, error) {
	var id string
	if err := g.c.Post(ctx, "/leave/", req, &id); err != nil {
		return "", err
	}
	return id, nil
}

// UpdateStatus sends the backend's own wording for status.
func (g *leaveGateway) UpdateStatus(ctx context.Context, id string, status leave.Status) error {
	body := map[string]string{"status": status.Backend()}
	err := g.c.Put(ctx, "/leave/"+url.PathEscape(id)+"/status", body, nil)
	if client.IsNotFound(err) {
		return leave.ErrLeaveNotFound
	}
	return err
}

func (g *leaveGateway) Delete(ctx context.Context, id string) error {
	err := g.c.Delete(ctx, "/leave/"+url.PathEscape(id))
	if client.IsNotFound(err) {
		return leave.ErrLeaveNotFound
	}
	return err
}
