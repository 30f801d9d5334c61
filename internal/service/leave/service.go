package leave

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/hris-admin-console/internal/domain/employee"
	"github.com/cmlabs-hris/hris-admin-console/internal/domain/leave"
	"github.com/cmlabs-hris/hris-admin-console/internal/domain/view"
	"github.com/cmlabs-hris/hris-admin-console/internal/service/viewstate"
	"golang.org/x/sync/errgroup"
)

const (
	msgLoadFailed   = "載入請假記錄失敗"
	msgApplied      = "請假申請提交成功"
	msgApplyFailed  = "申請請假失敗"
	msgUpdated      = "請假狀態更新成功"
	msgUpdateFailed = "更新請假狀態失敗"
	msgDeleted      = "請假記錄刪除成功"
	msgDeleteFailed = "刪除請假記錄失敗"
)

type ControllerImpl struct {
	*viewstate.Controller[leave.Record, leave.SearchSpec, leave.Stats]
	gateway leave.Gateway
	roster  employee.Roster
}

func NewController(gateway leave.Gateway, roster employee.Roster, observer view.Observer) *ControllerImpl {
	c := &ControllerImpl{gateway: gateway, roster: roster}
	c.Controller = viewstate.New(viewstate.Config[leave.Record, leave.SearchSpec, leave.Stats]{
		Domain:     view.DomainLeaves,
		Collect:    c.collect,
		Apply:      leave.Apply,
		Search:     leave.DefaultSearch(),
		LoadFailed: msgLoadFailed,
		Observer:   observer,
	})
	return c
}

var _ leave.Controller = (*ControllerImpl)(nil)

// collect lists every request, resolves names and aggregates stats over the
// same collection. Without a roster the names are placeholders and the stats zero.
func (c *ControllerImpl) collect(ctx context.Context) (viewstate.Batch[leave.Record, leave.Stats], error) {
	var (
		raws      []leave.RawRecord
		rawRoster []employee.RawEmployee
		rosterErr error
		g         errgroup.Group
	)
	g.Go(func() error {
		r, err := c.gateway.ListAll(ctx)
		if err != nil {
			return fmt.Errorf("list leaves: %w", err)
		}
		raws = r
		return nil
	})
	g.Go(func() error {
		r, err := c.roster.List(ctx)
		if err != nil {
			slog.Warn("Roster unavailable, using placeholder names", "error", err)
			rosterErr = fmt.Errorf("list employees: %w", err)
			return nil
		}
		rawRoster = r
		return nil
	})
	if err := g.Wait(); err != nil {
		return viewstate.Batch[leave.Record, leave.Stats]{}, err
	}

	roster := employee.NormalizeAll(rawRoster)
	records := leave.ResolveNames(leave.NormalizeAll(raws), roster)

	batch := viewstate.Batch[leave.Record, leave.Stats]{Records: records, StatsErr: rosterErr}
	if rosterErr == nil {
		batch.Stats = leave.Aggregate(records, len(roster))
	}
	return batch, nil
}

func (c *ControllerImpl) UpdateSearch(patch leave.SearchPatch) leave.View {
	return c.Refilter(func(s leave.SearchSpec) leave.SearchSpec { return s.Merge(patch) })
}

func (c *ControllerImpl) ListMine(ctx context.Context, spec leave.SearchSpec) ([]leave.Record, error) {
	raws, err := c.gateway.ListMine(ctx)
	if err != nil {
		return nil, err
	}
	return leave.Apply(leave.LabelSelf(leave.NormalizeAll(raws)), spec), nil
}

func (c *ControllerImpl) Get(ctx context.Context, id string) (leave.Record, error) {
	raw, err := c.gateway.Get(ctx, id)
	if err != nil {
		return leave.Record{}, err
	}

	rawRoster, err := c.roster.List(ctx)
	if err != nil {
		slog.Warn("Roster unavailable, using placeholder names", "error", err)
	}
	records := leave.ResolveNames([]leave.Record{leave.Normalize(raw)}, employee.NormalizeAll(rawRoster))
	return records[0], nil
}

func (c *ControllerImpl) Apply(ctx context.Context, req leave.ApplyLeaveRequest) view.Result {
	if err := req.Validate(); err != nil {
		return viewstate.Rejected(err)
	}
	return c.Mutate(ctx, msgApplyFailed, func(ctx context.Context) (view.Result, error) {
		id, err := c.gateway.Apply(ctx, req)
		if err != nil {
			return view.Result{}, err
		}
		res := view.Ok(msgApplied)
		res.ID = id
		return res, nil
	})
}

func (c *ControllerImpl) UpdateStatus(ctx context.Context, id string, req leave.UpdateStatusRequest) view.Result {
	if err := req.Validate(); err != nil {
		return viewstate.Rejected(err)
	}
	return c.Mutate(ctx, msgUpdateFailed, func(ctx context.Context) (view.Result, error) {
		if err := c.gateway.UpdateStatus(ctx, id, req.Status); err != nil {
			return view.Result{}, err
		}
		return view.Ok(msgUpdated), nil
	})
}

func (c *ControllerImpl) Approve(ctx context.Context, id string) view.Result {
	return c.UpdateStatus(ctx, id, leave.UpdateStatusRequest{Status: leave.StatusApproved})
}

func (c *ControllerImpl) Reject(ctx context.Context, id string) view.Result {
	return c.UpdateStatus(ctx, id, leave.UpdateStatusRequest{Status: leave.StatusRejected})
}

func (c *ControllerImpl) Delete(ctx context.Context, id string) view.Result {
	return c.Mutate(ctx, msgDeleteFailed, func(ctx context.Context) (view.Result, error) {
		if err := c.gateway.Delete(ctx, id); err != nil {
			return view.Result{}, err
		}
		return view.Ok(msgDeleted), nil
	})
}
