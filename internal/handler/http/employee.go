package http

import (
	"net/http"

	"github.com/cmlabs-hris/hris-admin-console/internal/domain/employee"
	"github.com/cmlabs-hris/hris-admin-console/internal/domain/view"
	"github.com/cmlabs-hris/hris-admin-console/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type EmployeeHandler interface {
	View(w http.ResponseWriter, r *http.Request)
	UpdateSearch(w http.ResponseWriter, r *http.Request)
	Refresh(w http.ResponseWriter, r *http.Request)
	ClearError(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	// Attendance lists one employee's attendance records
	Attendance(w http.ResponseWriter, r *http.Request)
}

type employeeHandlerImpl struct {
	controllers ControllerSource
}

func NewEmployeeHandler(controllers ControllerSource) EmployeeHandler {
	return &employeeHandlerImpl{controllers: controllers}
}

// View implements EmployeeHandler
func (h *employeeHandlerImpl) View(w http.ResponseWriter, r *http.Request) {
	c, ok := controllersOf(h.controllers, w, r)
	if !ok {
		return
	}
	loadIfIdle(r.Context(), view.DomainEmployees, c.Employees.Snapshot().State, c.Employees.Load)
	response.Success(w, c.Employees.Snapshot())
}

// UpdateSearch implements EmployeeHandler
func (h *employeeHandlerImpl) UpdateSearch(w http.ResponseWriter, r *http.Request) {
	c, ok := controllersOf(h.controllers, w, r)
	if !ok {
		return
	}

	var patch employee.SearchPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	if err := patch.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, c.Employees.UpdateSearch(patch))
}

// Refresh implements EmployeeHandler
func (h *employeeHandlerImpl) Refresh(w http.ResponseWriter, r *http.Request) {
	c, ok := controllersOf(h.controllers, w, r)
	if !ok {
		return
	}
	load(r.Context(), view.DomainEmployees, c.Employees.Load)
	response.Success(w, c.Employees.Snapshot())
}

// ClearError implements EmployeeHandler
func (h *employeeHandlerImpl) ClearError(w http.ResponseWriter, r *http.Request) {
	c, ok := controllersOf(h.controllers, w, r)
	if !ok {
		return
	}
	c.Employees.ClearError()
	response.Success(w, c.Employees.Snapshot())
}

// Create implements EmployeeHandler
func (h *employeeHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	c, ok := controllersOf(h.controllers, w, r)
	if !ok {
		return
	}

	var req employee.CreateEmployeeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	response.Result(w, c.Employees.Create(r.Context(), req))
}

// Get implements EmployeeHandler
func (h *employeeHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	c, ok := controllersOf(h.controllers, w, r)
	if !ok {
		return
	}

	e, err := c.Employees.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, e)
}

// Update implements EmployeeHandler
func (h *employeeHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	c, ok := controllersOf(h.controllers, w, r)
	if !ok {
		return
	}

	var req employee.UpdateEmployeeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	response.Result(w, c.Employees.Update(r.Context(), chi.URLParam(r, "id"), req))
}

// Delete implements EmployeeHandler
func (h *employeeHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	c, ok := controllersOf(h.controllers, w, r)
	if !ok {
		return
	}
	response.Result(w, c.Employees.Delete(r.Context(), chi.URLParam(r, "id")))
}

// Attendance implements EmployeeHandler
func (h *employeeHandlerImpl) Attendance(w http.ResponseWriter, r *http.Request) {
	c, ok := controllersOf(h.controllers, w, r)
	if !ok {
		return
	}

	spec, err := attendanceSpecFromQuery(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	records, err := c.Attendance.ListByEmployee(r.Context(), chi.URLParam(r, "id"), spec)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, records)
}
