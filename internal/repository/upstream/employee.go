package upstream

import (
	"context"
	"net/url"

	"github.com/cmlabs-hris/hris-admin-console/internal/domain/employee"
	client "github.com/cmlabs-hris/hris-admin-console/internal/pkg/upstream"
)

type employeeGateway struct {
	c *client.Client
}

func NewEmployeeGateway(c *client.Client) employee.Gateway {
	return &employeeGateway{c: c}
}

func (g *employeeGateway) List(ctx context.Context) ([]employee.RawEmployee, error) {
	var out []employee.RawEmployee
	if err := g.c.Get(ctx, "/users/", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (g *employeeGateway) Get(ctx context.Context, id string) (employee.RawEmployee, error) {
	var out employee.RawEmployee
	if err := g.c.Get(ctx, "/users/"+url.PathEscape(id), &out); err != nil {
		if client.IsNotFound(err) {
			return employee.RawEmployee{}, employee.ErrEmployeeNotFound
		}
		return employee.RawEmployee{}, err
	}
	return out, nil
}

func (g *employeeGateway) Create(ctx context.Context, req employee.CreateEmployeeRequest) (string, error) {
	body := map[string]any{
		"username": req.Username,
		"password": req.Password,
		"name":     req.Name,
		"role":     string(req.Role),
	}
	if req.Email != nil && *req.Email != "" {
		body["email"] = *req.Email
	}

	var id string
	if err := g.c.Post(ctx, "/users/", body, &id); err != nil {
		return "", err
	}
	return id, nil
}

// Update sends the complete user document; the backend replaces it wholesale.
func (g *employeeGateway) Update(ctx context.Context, id string, req employee.UpdateEmployeeRequest) error {
	body := map[string]any{"username": req.Username}
	if req.Password != nil {
		body["password"] = *req.Password
	}
	if req.Name != nil {
		body["name"] = *req.Name
	}
	if req.Email != nil && *req.Email != "" {
		body["email"] = *req.Email
	}
	if req.Role != nil {
		body["role"] = string(*req.Role)
	}

	err := g.c.Put(ctx, "/users/"+url.PathEscape(id), body, nil)
	if client.IsNotFound(err) {
		return employee.ErrEmployeeNotFound
	}
	return err
}

func (g *employeeGateway) Delete(ctx context.Context, id string) error {
	err := g.c.Delete(ctx, "/users/"+url.PathEscape(id))
	if client.IsNotFound(err) {
		return employee.ErrEmployeeNotFound
	}
	return err
}
