package employee

import (
	"context"
	"sync"
	"testing"

	"github.com/cmlabs-hris/hris-admin-console/internal/domain/employee"
	"github.com/cmlabs-hris/hris-admin-console/internal/domain/view"
	"github.com/cmlabs-hris/hris-admin-console/internal/pkg/upstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGateway struct {
	mu      sync.Mutex
	users   []employee.RawEmployee
	created []employee.CreateEmployeeRequest
	updated map[string]employee.UpdateEmployeeRequest
	deleted []string
	err     error
}

func (g *fakeGateway) List(context.Context) ([]employee.RawEmployee, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]employee.RawEmployee(nil), g.users...), nil
}

func (g *fakeGateway) Get(_ context.Context, id string) (employee.RawEmployee, error) {
	for _, u := range g.users {
		if string(u.ID) == id {
			return u, nil
		}
	}
	return employee.RawEmployee{}, employee.ErrEmployeeNotFound
}

func (g *fakeGateway) Create(_ context.Context, req employee.CreateEmployeeRequest) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return "", g.err
	}
	g.created = append(g.created, req)
	g.users = append(g.users, employee.RawEmployee{ID: "new", Username: req.Username, Name: req.Name, Role: string(req.Role)})
	return "new", nil
}

func (g *fakeGateway) Update(_ context.Context, id string, req employee.UpdateEmployeeRequest) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.updated == nil {
		g.updated = map[string]employee.UpdateEmployeeRequest{}
	}
	g.updated[id] = req
	return nil
}

func (g *fakeGateway) Delete(_ context.Context, id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.deleted = append(g.deleted, id)
	return nil
}

func newGateway() *fakeGateway {
	email := "bob@corp.io"
	return &fakeGateway{users: []employee.RawEmployee{
		{ID: "u1", Username: "admin", Name: "Admin", Role: "admin"},
		{ID: "u2", Username: "bob", Name: "Bob", Role: "user", Email: &email},
	}}
}

func TestController_LoadDerivesStats(t *testing.T) {
	c := NewController(newGateway(), "u1", nil)
	defer c.Close()

	require.NoError(t, c.Load(context.Background()))

	snap := c.Snapshot()
	assert.Equal(t, view.StateReady, snap.State)
	assert.Equal(t, employee.Stats{TotalUsers: 2, AdminUsers: 1, RegularUsers: 1}, snap.Stats)
}

func TestController_CreateRejectsDuplicateUsername(t *testing.T) {
	gw := newGateway()
	c := NewController(gw, "u1", nil)
	defer c.Close()
	require.NoError(t, c.Load(context.Background()))

	res := c.Create(context.Background(), employee.CreateEmployeeRequest{Username: "BOB", Password: "secret1", Name: "Bobby"})
	assert.False(t, res.Success)
	assert.Equal(t, msgUsernameTaken, res.Message)
	assert.Contains(t, res.Fields, "username")
	assert.Empty(t, gw.created)

	res = c.Create(context.Background(), employee.CreateEmployeeRequest{Username: "carol", Password: "secret1", Name: "Carol"})
	assert.True(t, res.Success)
	assert.Equal(t, "new", res.ID)
	assert.Equal(t, 3, c.Snapshot().Total)
}

func TestController_CreateSurfacesBackendMessage(t *testing.T) {
	gw := newGateway()
	gw.err = &upstream.APIError{StatusCode: 400, Message: "使用者名稱已被使用"}
	c := NewController(gw, "u1", nil)
	defer c.Close()

	res := c.Create(context.Background(), employee.CreateEmployeeRequest{Username: "carol", Password: "secret1", Name: "Carol"})
	assert.False(t, res.Success)
	assert.Equal(t, "使用者名稱已被使用", res.Message)
}

func TestController_UpdateFillsOmittedFields(t *testing.T) {
	gw := newGateway()
	c := NewController(gw, "u1", nil)
	defer c.Close()
	require.NoError(t, c.Load(context.Background()))

	name := "Robert"
	res := c.Update(context.Background(), "u2", employee.UpdateEmployeeRequest{Name: &name})
	require.True(t, res.Success, res.Message)

	sent := gw.updated["u2"]
	assert.Equal(t, "bob", sent.Username)
	assert.Equal(t, "Robert", *sent.Name)
	require.NotNil(t, sent.Email)
	assert.Equal(t, "bob@corp.io", *sent.Email)
	assert.Equal(t, employee.RoleUser, *sent.Role)
}

func TestController_UpdateUnknownEmployee(t *testing.T) {
	c := NewController(newGateway(), "u1", nil)
	defer c.Close()

	name := "Nobody"
	res := c.Update(context.Background(), "u404", employee.UpdateEmployeeRequest{Name: &name})
	assert.False(t, res.Success)
}

func TestController_DeleteSelf(t *testing.T) {
	gw := newGateway()
	c := NewController(gw, "u1", nil)
	defer c.Close()

	res := c.Delete(context.Background(), "u1")
	assert.False(t, res.Success)
	assert.Equal(t, msgDeleteSelf, res.Message)
	assert.Empty(t, gw.deleted)

	res = c.Delete(context.Background(), "u2")
	assert.True(t, res.Success)
	assert.Equal(t, []string{"u2"}, gw.deleted)
}
