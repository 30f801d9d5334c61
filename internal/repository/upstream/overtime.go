package upstream

import (
	"context"

	"github.com/cmlabs-hris/hris-admin-console/internal/domain/dashboard"
	client "github.com/cmlabs-hris/hris-admin-console/internal/pkg/upstream"
)

type overtimeGateway struct {
	c *client.Client
}

func NewOvertimeGateway(c *client.Client) dashboard.OvertimeGateway {
	return &overtimeGateway{c: c}
}

func (g *overtimeGateway) ListAll(ctx context.Context) ([]dashboard.RawOvertime, error) {
	var out []dashboard.RawOvertime
	if err := g.c.Get(ctx, "/overtime/all", &out); err != nil {
		return nil, err
	}
	return out, nil
}
