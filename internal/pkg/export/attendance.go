// Package export renders attendance reports as CSV or Excel workbooks.
package export

import (
	"bytes"
	"cmp"
	"encoding/csv"
	"fmt"
	"slices"
	"strconv"

	"github.com/cmlabs-hris/hris-admin-console/internal/domain/attendance"
	"github.com/xuri/excelize/v2"
)

const (
	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	sheetName = "出勤報表"
)

var header = []string{"日期", "員工", "簽到", "簽退", "狀態", "工時", "遲到", "早退", "裝置", "地點"}

var statusLabels = map[attendance.Status]string{
	attendance.StatusPresent: "出勤",
	attendance.StatusLate:    "遲到",
	attendance.StatusAbsent:  "缺勤",
	attendance.StatusLeave:   "請假",
}

type AttendanceExporter struct{}

func NewAttendanceExporter() *AttendanceExporter {
	return &AttendanceExporter{}
}

var _ attendance.Exporter = (*AttendanceExporter)(nil)

// Filename is attendance_report_{start}_{end}.{format}.
func Filename(req attendance.ExportRequest) string {
	return fmt.Sprintf("attendance_report_%s_%s.%s", req.StartDate, req.EndDate, req.Format)
}

// Export writes records ordered by day, then employee name.
func (e *AttendanceExporter) Export(records []attendance.Record, req attendance.ExportRequest) (attendance.Report, error) {
	ordered := slices.Clone(records)
	slices.SortStableFunc(ordered, func(a, b attendance.Record) int {
		if c := cmp.Compare(a.Date, b.Date); c != 0 {
			return c
		}
		return cmp.Compare(a.UserName, b.UserName)
	})

	rows := make([][]string, 0, len(ordered))
	for _, r := range ordered {
		rows = append(rows, row(r))
	}

	var (
		data []byte
		err  error
		ct   string
	)
	switch req.Format {
	case attendance.FormatXLSX:
		data, err = writeXLSX(rows, req)
		ct = contentTypeXLSX
	case attendance.FormatCSV, "":
		data, err = writeCSV(rows)
		ct = contentTypeCSV
	default:
		return attendance.Report{}, attendance.ErrUnsupportedFormat
	}
	if err != nil {
		return attendance.Report{}, err
	}

	return attendance.Report{Filename: Filename(req), ContentType: ct, Data: data}, nil
}

func row(r attendance.Record) []string {
	return []string{
		r.Date,
		r.UserName,
		r.ClockInDisplay,
		r.ClockOutDisplay,
		statusLabels[r.Status],
		strconv.FormatFloat(r.WorkingHours, 'f', 2, 64),
		yesNo(r.IsLate),
		yesNo(r.IsEarlyLeave),
		deref(r.DeviceID),
		deref(r.Location),
	}
}

func writeCSV(rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	// BOM so spreadsheet tools detect UTF-8.
	buf.WriteString("\ufeff")

	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, err
	}
	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeXLSX(rows [][]string, req attendance.ExportRequest) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, err
	}

	lastCol, _ := excelize.ColumnNumberToName(len(header))
	title := fmt.Sprintf("出勤報表 %s 至 %s", req.StartDate, req.EndDate)
	if err := f.SetCellValue(sheetName, "A1", title); err != nil {
		return nil, err
	}
	if err := f.MergeCell(sheetName, "A1", lastCol+"1"); err != nil {
		return nil, err
	}

	if err := f.SetSheetRow(sheetName, "A2", &header); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheetName, "A2", lastCol+"2", headerStyle); err != nil {
		return nil, err
	}

	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+3)
		values := make([]any, len(r))
		for j, v := range r {
			values[j] = v
		}
		// Hours as a number so the column sums.
		if h, err := strconv.ParseFloat(r[5], 64); err == nil {
			values[5] = h
		}
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return nil, err
		}
	}

	_ = f.SetColWidth(sheetName, "A", "A", 12)
	_ = f.SetColWidth(sheetName, "B", "B", 16)
	_ = f.SetColWidth(sheetName, "C", "H", 10)
	_ = f.SetColWidth(sheetName, "I", lastCol, 18)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func yesNo(b bool) string {
	if b {
		return "是"
	}
	return "否"
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
