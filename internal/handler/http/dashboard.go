package http

import (
	"net/http"

	"github.com/cmlabs-hris/hris-admin-console/internal/domain/view"
	"github.com/cmlabs-hris/hris-admin-console/internal/handler/http/response"
)

type DashboardHandler interface {
	// GetDashboard returns headline stats and recent activities
	GetDashboard(w http.ResponseWriter, r *http.Request)
	Refresh(w http.ResponseWriter, r *http.Request)
	ClearError(w http.ResponseWriter, r *http.Request)
}

type dashboardHandlerImpl struct {
	controllers ControllerSource
}

func NewDashboardHandler(controllers ControllerSource) DashboardHandler {
	return &dashboardHandlerImpl{controllers: controllers}
}

// GetDashboard handles GET /dashboard
func (h *dashboardHandlerImpl) GetDashboard(w http.ResponseWriter, r *http.Request) {
	c, ok := controllersOf(h.controllers, w, r)
	if !ok {
		return
	}
	loadIfIdle(r.Context(), view.DomainDashboard, c.Dashboard.Snapshot().State, c.Dashboard.Load)
	response.Success(w, c.Dashboard.Snapshot())
}

// Refresh handles POST /dashboard/refresh
func (h *dashboardHandlerImpl) Refresh(w http.ResponseWriter, r *http.Request) {
	c, ok := controllersOf(h.controllers, w, r)
	if !ok {
		return
	}
	load(r.Context(), view.DomainDashboard, c.Dashboard.Load)
	response.Success(w, c.Dashboard.Snapshot())
}

// ClearError handles DELETE /dashboard/error
func (h *dashboardHandlerImpl) ClearError(w http.ResponseWriter, r *http.Request) {
	c, ok := controllersOf(h.controllers, w, r)
	if !ok {
		return
	}
	c.Dashboard.ClearError()
	response.Success(w, c.Dashboard.Snapshot())
}
