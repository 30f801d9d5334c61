package employee

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/hris-admin-console/internal/domain/employee"
	"github.com/cmlabs-hris/hris-admin-console/internal/domain/view"
	"github.com/cmlabs-hris/hris-admin-console/internal/service/viewstate"
)

const (
	msgLoadFailed    = "無法載入員工資料"
	msgCreated       = "員工新增成功"
	msgCreateFailed  = "新增員工失敗"
	msgUpdated       = "員工資料更新成功"
	msgUpdateFailed  = "更新員工失敗"
	msgDeleted       = "員工刪除成功"
	msgDeleteFailed  = "刪除員工失敗"
	msgUsernameTaken = "使用者名稱已存在"
	msgDeleteSelf    = "無法刪除自己的帳號"
)

type ControllerImpl struct {
	*viewstate.Controller[employee.Employee, employee.SearchSpec, employee.Stats]
	gateway employee.Gateway
	selfID  string
}

// NewController builds the roster controller for the session whose user is selfID.
func NewController(gateway employee.Gateway, selfID string, observer view.Observer) *ControllerImpl {
	c := &ControllerImpl{gateway: gateway, selfID: selfID}
	c.Controller = viewstate.New(viewstate.Config[employee.Employee, employee.SearchSpec, employee.Stats]{
		Domain:     view.DomainEmployees,
		Fetch:      c.fetch,
		Derive:     employee.Aggregate,
		Apply:      employee.Apply,
		Search:     employee.DefaultSearch(),
		LoadFailed: msgLoadFailed,
		Observer:   observer,
	})
	return c
}

var _ employee.Controller = (*ControllerImpl)(nil)

func (c *ControllerImpl) fetch(ctx context.Context) ([]employee.Employee, error) {
	raws, err := c.gateway.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	return employee.NormalizeAll(raws), nil
}

func (c *ControllerImpl) UpdateSearch(patch employee.SearchPatch) employee.View {
	return c.Refilter(func(s employee.SearchSpec) employee.SearchSpec { return s.Merge(patch) })
}

func (c *ControllerImpl) Get(ctx context.Context, id string) (employee.Employee, error) {
	raw, err := c.gateway.Get(ctx, id)
	if err != nil {
		return employee.Employee{}, err
	}
	return employee.Normalize(raw), nil
}

func (c *ControllerImpl) Create(ctx context.Context, req employee.CreateEmployeeRequest) view.Result {
	if err := req.Validate(); err != nil {
		return viewstate.Rejected(err)
	}
	for _, e := range c.Records() {
		if strings.EqualFold(e.Username, req.Username) {
			return view.Invalid(msgUsernameTaken, map[string]string{"username": employee.ErrUsernameExists.Error()})
		}
	}

	return c.Mutate(ctx, msgCreateFailed, func(ctx context.Context) (view.Result, error) {
		id, err := c.gateway.Create(ctx, req)
		if err != nil {
			return view.Result{}, err
		}
		res := view.Ok(msgCreated)
		res.ID = id
		return res, nil
	})
}

// Update fills omitted fields from the canonical record so the backend
// receives a complete document, and always keeps the stored username.
func (c *ControllerImpl) Update(ctx context.Context, id string, req employee.UpdateEmployeeRequest) view.Result {
	if err := req.Validate(); err != nil {
		return viewstate.Rejected(err)
	}

	return c.Mutate(ctx, msgUpdateFailed, func(ctx context.Context) (view.Result, error) {
		current, err := c.canonical(ctx, id)
		if err != nil {
			return view.Result{}, err
		}

		req.Username = current.Username
		if req.Name == nil {
			req.Name = &current.Name
		}
		if req.Email == nil {
			req.Email = current.Email
		}
		if req.Role == nil {
			req.Role = &current.Role
		}

		if err := c.gateway.Update(ctx, id, req); err != nil {
			return view.Result{}, err
		}
		return view.Ok(msgUpdated), nil
	})
}

func (c *ControllerImpl) Delete(ctx context.Context, id string) view.Result {
	if id != "" && id == c.selfID {
		return view.Fail(msgDeleteSelf)
	}

	return c.Mutate(ctx, msgDeleteFailed, func(ctx context.Context) (view.Result, error) {
		if err := c.gateway.Delete(ctx, id); err != nil {
			return view.Result{}, err
		}
		return view.Ok(msgDeleted), nil
	})
}

func (c *ControllerImpl) canonical(ctx context.Context, id string) (employee.Employee, error) {
	for _, e := range c.Records() {
		if e.ID == id {
			return e, nil
		}
	}
	e, err := c.Get(ctx, id)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return employee.Employee{}, err
		}
		return employee.Employee{}, fmt.Errorf("load employee %s: %w", id, err)
	}
	return e, nil
}
