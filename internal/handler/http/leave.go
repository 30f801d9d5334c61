package http

import (
	"net/http"

	"github.com/cmlabs-hris/hris-admin-console/internal/domain/leave"
	"github.com/cmlabs-hris/hris-admin-console/internal/domain/view"
	"github.com/cmlabs-hris/hris-admin-console/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-admin-console/internal/pkg/query"
	"github.com/go-chi/chi/v5"
)

type LeaveHandler interface {
	View(w http.ResponseWriter, r *http.Request)
	UpdateSearch(w http.ResponseWriter, r *http.Request)
	Refresh(w http.ResponseWriter, r *http.Request)
	ClearError(w http.ResponseWriter, r *http.Request)

	GetMyRequests(w http.ResponseWriter, r *http.Request)
	GetRequest(w http.ResponseWriter, r *http.Request)
	CreateRequest(w http.ResponseWriter, r *http.Request)
	UpdateStatus(w http.ResponseWriter, r *http.Request)
	ApproveRequest(w http.ResponseWriter, r *http.Request)
	RejectRequest(w http.ResponseWriter, r *http.Request)
	DeleteRequest(w http.ResponseWriter, r *http.Request)
}

type LeaveHandlerImpl struct {
	controllers ControllerSource
}

func NewLeaveHandler(controllers ControllerSource) LeaveHandler {
	return &LeaveHandlerImpl{controllers: controllers}
}

// View implements LeaveHandler.
func (l *LeaveHandlerImpl) View(w http.ResponseWriter, r *http.Request) {
	c, ok := controllersOf(l.controllers, w, r)
	if !ok {
		return
	}
	loadIfIdle(r.Context(), view.DomainLeaves, c.Leaves.Snapshot().State, c.Leaves.Load)
	response.Success(w, c.Leaves.Snapshot())
}

// UpdateSearch implements LeaveHandler.
func (l *LeaveHandlerImpl) UpdateSearch(w http.ResponseWriter, r *http.Request) {
	c, ok := controllersOf(l.controllers, w, r)
	if !ok {
		return
	}

	var patch leave.SearchPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	if err := patch.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, c.Leaves.UpdateSearch(patch))
}

// Refresh implements LeaveHandler.
func (l *LeaveHandlerImpl) Refresh(w http.ResponseWriter, r *http.Request) {
	c, ok := controllersOf(l.controllers, w, r)
	if !ok {
		return
	}
	load(r.Context(), view.DomainLeaves, c.Leaves.Load)
	response.Success(w, c.Leaves.Snapshot())
}

// ClearError implements LeaveHandler.
func (l *LeaveHandlerImpl) ClearError(w http.ResponseWriter, r *http.Request) {
	c, ok := controllersOf(l.controllers, w, r)
	if !ok {
		return
	}
	c.Leaves.ClearError()
	response.Success(w, c.Leaves.Snapshot())
}

// GetMyRequests implements LeaveHandler.
func (l *LeaveHandlerImpl) GetMyRequests(w http.ResponseWriter, r *http.Request) {
	c, ok := controllersOf(l.controllers, w, r)
	if !ok {
		return
	}

	patch := leave.SearchPatch{
		Search:    queryPtr(r, "search"),
		Status:    queryPtr(r, "status"),
		LeaveType: queryPtr(r, "leave_type"),
		SortBy:    queryPtr(r, "sort_by"),
	}
	if order := queryPtr(r, "sort_order"); order != nil {
		o := query.Order(*order)
		patch.SortOrder = &o
	}
	if err := patch.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	records, err := c.Leaves.ListMine(r.Context(), leave.DefaultSearch().Merge(patch))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, records)
}

// GetRequest implements LeaveHandler.
func (l *LeaveHandlerImpl) GetRequest(w http.ResponseWriter, r *http.Request) {
	c, ok := controllersOf(l.controllers, w, r)
	if !ok {
		return
	}

	record, err := c.Leaves.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, record)
}

// CreateRequest implements LeaveHandler.
func (l *LeaveHandlerImpl) CreateRequest(w http.ResponseWriter, r *http.Request) {
	c, ok := controllersOf(l.controllers, w, r)
	if !ok {
		return
	}

	var req leave.ApplyLeaveRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	response.Result(w, c.Leaves.Apply(r.Context(), req))
}

// UpdateStatus implements LeaveHandler.
func (l *LeaveHandlerImpl) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	c, ok := controllersOf(l.controllers, w, r)
	if !ok {
		return
	}

	var req leave.UpdateStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	response.Result(w, c.Leaves.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req))
}

// ApproveRequest implements LeaveHandler.
func (l *LeaveHandlerImpl) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	c, ok := controllersOf(l.controllers, w, r)
	if !ok {
		return
	}
	response.Result(w, c.Leaves.Approve(r.Context(), chi.URLParam(r, "id")))
}

// RejectRequest implements LeaveHandler.
func (l *LeaveHandlerImpl) RejectRequest(w http.ResponseWriter, r *http.Request) {
	c, ok := controllersOf(l.controllers, w, r)
	if !ok {
		return
	}
	response.Result(w, c.Leaves.Reject(r.Context(), chi.URLParam(r, "id")))
}

// DeleteRequest implements LeaveHandler.
func (l *LeaveHandlerImpl) DeleteRequest(w http.ResponseWriter, r *http.Request) {
	c, ok := controllersOf(l.controllers, w, r)
	if !ok {
		return
	}
	response.Result(w, c.Leaves.Delete(r.Context(), chi.URLParam(r, "id")))
}
