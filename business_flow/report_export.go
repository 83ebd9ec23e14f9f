package businessflow

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/amirphl/repair-desk/app/dto"
	"github.com/amirphl/repair-desk/utils"
	"github.com/xuri/excelize/v2"
)

// Supported export formats
const (
	ReportFormatJSON = "json"
	ReportFormatXLSX = "xlsx"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportExport is a rendered report file
type ReportExport struct {
	FileName    string
	ContentType string
	Content     []byte
}

// BuildReportDocument wraps a report with its date-range label and generation time
func BuildReportDocument(report dto.Report, generatedAt time.Time) dto.ReportDocument {
	return dto.ReportDocument{
		DateRange:             fmt.Sprintf("%d days", report.Days),
		GeneratedAt:           generatedAt,
		Metrics:               report.Metrics,
		StatusDistribution:    report.StatusDistribution,
		PriorityDistribution:  report.PriorityDistribution,
		DeviceTypeAnalysis:    report.DeviceTypeAnalysis,
		TechnicianPerformance: report.TechnicianPerformance,
		RevenueTrend:          report.RevenueTrend,
	}
}

// ReportFileName returns repair-report-YYYY-MM-DD.<format> for the given day
func ReportFileName(now time.Time, format string) string {
	return fmt.Sprintf("repair-report-%s.%s", utils.DateKey(now), format)
}

// ParseReportFormat normalizes the requested format, defaulting to JSON
func ParseReportFormat(format string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", ReportFormatJSON:
		return ReportFormatJSON, nil
	case ReportFormatXLSX, "excel":
		return ReportFormatXLSX, nil
	}
	return "", NewBusinessError("INVALID_REPORT_FORMAT", "Report format must be json or xlsx", ErrInvalidReportFormat)
}

// ExportReport renders the report in the requested format
func ExportReport(report dto.Report, format string, now time.Time) (*ReportExport, error) {
	format, err := ParseReportFormat(format)
	if err != nil {
		return nil, err
	}

	doc := BuildReportDocument(report, now)
	switch format {
	case ReportFormatXLSX:
		content, err := EncodeReportXLSX(doc)
		if err != nil {
			return nil, err
		}
		return &ReportExport{FileName: ReportFileName(now, format), ContentType: xlsxContentType, Content: content}, nil
	default:
		content, err := EncodeReportJSON(doc)
		if err != nil {
			return nil, err
		}
		return &ReportExport{FileName: ReportFileName(now, format), ContentType: "application/json", Content: content}, nil
	}
}

// EncodeReportJSON renders the document as indented JSON
func EncodeReportJSON(doc dto.ReportDocument) ([]byte, error) {
	content, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, NewBusinessError("REPORT_EXPORT_FAILED", "Failed to encode report", fmt.Errorf("%w: %v", ErrReportExportFailed, err))
	}
	return content, nil
}

// EncodeReportXLSX renders the document as a workbook with one sheet per section
func EncodeReportXLSX(doc dto.ReportDocument) ([]byte, error) {
	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	m := doc.Metrics
	sheets := []struct {
		name   string
		header []any
		rows   [][]any
	}{
		{
			name:   "Overview",
			header: []any{"Metric", "Value"},
			rows: [][]any{
				{"Date range", doc.DateRange},
				{"Generated at", utils.FormatDate(doc.GeneratedAt)},
				{"Total tickets", m.TotalTickets},
				{"Completed tickets", m.CompletedTickets},
				{"Active tickets", m.ActiveTickets},
				{"Total revenue", utils.FormatCurrency(m.TotalRevenue)},
				{"Avg ticket value", utils.FormatCurrency(m.AvgTicketValue)},
				{"Avg completion time (days)", m.AvgCompletionTime},
				{"Completion rate (%)", m.CompletionRate},
			},
		},
		{name: "Status", header: []any{"Status", "Count", "Percentage"}},
		{name: "Priority", header: []any{"Priority", "Count", "Percentage"}},
		{name: "Device Types", header: []any{"Device type", "Count", "Revenue", "Avg value"}},
		{name: "Technicians", header: []any{"Technician", "Total", "Completed", "Revenue", "Completion rate (%)"}},
		{name: "Revenue Trend", header: []any{"Week", "Week of", "Revenue"}},
	}

	for _, s := range doc.StatusDistribution {
		sheets[1].rows = append(sheets[1].rows, []any{string(s.Status), s.Count, s.Percentage})
	}
	for _, p := range doc.PriorityDistribution {
		sheets[2].rows = append(sheets[2].rows, []any{string(p.Priority), p.Count, p.Percentage})
	}
	for _, d := range doc.DeviceTypeAnalysis {
		sheets[3].rows = append(sheets[3].rows, []any{d.DeviceType, d.Count, d.Revenue, d.AvgValue})
	}
	for _, t := range doc.TechnicianPerformance {
		sheets[4].rows = append(sheets[4].rows, []any{t.Name, t.TotalTickets, t.CompletedTickets, t.Revenue, t.CompletionRate})
	}
	for _, r := range doc.RevenueTrend {
		label := r.Week
		if week, err := time.Parse(time.DateOnly, r.Week); err == nil {
			label = utils.FormatDateShort(week)
		}
		sheets[5].rows = append(sheets[5].rows, []any{r.Week, label, r.Revenue})
	}

	for i, sheet := range sheets {
		if i == 0 {
			if err := xl.SetSheetName(xl.GetSheetName(0), sheet.name); err != nil {
				return nil, xlsxError(err)
			}
		} else if _, err := xl.NewSheet(sheet.name); err != nil {
			return nil, xlsxError(err)
		}

		if err := xl.SetSheetRow(sheet.name, "A1", &sheet.header); err != nil {
			return nil, xlsxError(err)
		}
		for ri, row := range sheet.rows {
			cell, err := excelize.CoordinatesToCellName(1, ri+2)
			if err != nil {
				return nil, xlsxError(err)
			}
			if err := xl.SetSheetRow(sheet.name, cell, &row); err != nil {
				return nil, xlsxError(err)
			}
		}
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return nil, xlsxError(err)
	}
	return buf.Bytes(), nil
}

func xlsxError(err error) error {
	return NewBusinessError("EXCEL_WRITE_ERROR", "Failed to write Excel file", fmt.Errorf("%w: %v", ErrReportExportFailed, err))
}
