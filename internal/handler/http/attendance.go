package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/hris-admin-console/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-admin-console/internal/domain/view"
	"github.com/cmlabs-hris/hris-admin-console/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-admin-console/internal/pkg/query"
)

type AttendanceHandler interface {
	View(w http.ResponseWriter, r *http.Request)
	UpdateSearch(w http.ResponseWriter, r *http.Request)
	Refresh(w http.ResponseWriter, r *http.Request)
	ClearError(w http.ResponseWriter, r *http.Request)
	GetMyAttendance(w http.ResponseWriter, r *http.Request)
	ClockIn(w http.ResponseWriter, r *http.Request)
	ClockOut(w http.ResponseWriter, r *http.Request)
	Export(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	controllers ControllerSource
}

func NewAttendanceHandler(controllers ControllerSource) AttendanceHandler {
	return &attendanceHandlerImpl{controllers: controllers}
}

// attendanceSpecFromQuery reads search, status, date, sort_by and sort_order.
// Unlike the view, history listings are not limited to today by default.
func attendanceSpecFromQuery(r *http.Request) (attendance.SearchSpec, error) {
	patch := attendance.SearchPatch{
		Search: queryPtr(r, "search"),
		Status: queryPtr(r, "status"),
		Date:   queryPtr(r, "date"),
		SortBy: queryPtr(r, "sort_by"),
	}
	if order := queryPtr(r, "sort_order"); order != nil {
		o := query.Order(*order)
		patch.SortOrder = &o
	}
	if err := patch.Validate(); err != nil {
		return attendance.SearchSpec{}, err
	}

	base := attendance.SearchSpec{Status: query.All, SortBy: "date", SortOrder: query.Desc}
	return base.Merge(patch), nil
}

// View implements AttendanceHandler.
func (h *attendanceHandlerImpl) View(w http.ResponseWriter, r *http.Request) {
	c, ok := controllersOf(h.controllers, w, r)
	if !ok {
		return
	}
	loadIfIdle(r.Context(), view.DomainAttendance, c.Attendance.Snapshot().State, c.Attendance.Load)
	response.Success(w, c.Attendance.Snapshot())
}

// UpdateSearch implements AttendanceHandler.
func (h *attendanceHandlerImpl) UpdateSearch(w http.ResponseWriter, r *http.Request) {
	c, ok := controllersOf(h.controllers, w, r)
	if !ok {
		return
	}

	var patch attendance.SearchPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	if err := patch.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, c.Attendance.UpdateSearch(patch))
}

// Refresh implements AttendanceHandler.
func (h *attendanceHandlerImpl) Refresh(w http.ResponseWriter, r *http.Request) {
	c, ok := controllersOf(h.controllers, w, r)
	if !ok {
		return
	}
	load(r.Context(), view.DomainAttendance, c.Attendance.Load)
	response.Success(w, c.Attendance.Snapshot())
}

// ClearError implements AttendanceHandler.
func (h *attendanceHandlerImpl) ClearError(w http.ResponseWriter, r *http.Request) {
	c, ok := controllersOf(h.controllers, w, r)
	if !ok {
		return
	}
	c.Attendance.ClearError()
	response.Success(w, c.Attendance.Snapshot())
}

// GetMyAttendance implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetMyAttendance(w http.ResponseWriter, r *http.Request) {
	c, ok := controllersOf(h.controllers, w, r)
	if !ok {
		return
	}

	spec, err := attendanceSpecFromQuery(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	records, err := c.Attendance.ListMine(r.Context(), spec)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, records)
}

// ClockIn implements AttendanceHandler. The body is optional.
func (h *attendanceHandlerImpl) ClockIn(w http.ResponseWriter, r *http.Request) {
	c, ok := controllersOf(h.controllers, w, r)
	if !ok {
		return
	}

	var req attendance.ClockInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	response.Result(w, c.Attendance.ClockIn(r.Context(), req))
}

// ClockOut implements AttendanceHandler.
func (h *attendanceHandlerImpl) ClockOut(w http.ResponseWriter, r *http.Request) {
	c, ok := controllersOf(h.controllers, w, r)
	if !ok {
		return
	}
	response.Result(w, c.Attendance.ClockOut(r.Context()))
}

// Export streams the report as an attachment. Failures use the JSON envelope.
func (h *attendanceHandlerImpl) Export(w http.ResponseWriter, r *http.Request) {
	c, ok := controllersOf(h.controllers, w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	req := attendance.ExportRequest{
		StartDate: q.Get("start_date"),
		EndDate:   q.Get("end_date"),
		Format:    attendance.ExportFormat(q.Get("format")),
	}

	report, res := c.Attendance.Export(r.Context(), req)
	if !res.Success {
		response.Result(w, res)
		return
	}

	w.Header().Set("Content-Type", report.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+report.Filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(report.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(report.Data)
}
