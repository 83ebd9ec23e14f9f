package businessflow

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/amirphl/repair-desk/app/dto"
	"github.com/amirphl/repair-desk/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleReport() dto.Report {
	return dto.Report{
		Days: 30,
		Metrics: dto.ReportMetrics{
			TotalTickets:     4,
			CompletedTickets: 2,
			TotalRevenue:     300,
			CompletionRate:   50,
		},
		StatusDistribution: []dto.StatusCount{
			{Status: models.StatusReceived, Count: 2, Percentage: 50},
			{Status: models.StatusPickedUp, Count: 2, Percentage: 50},
		},
		PriorityDistribution: []dto.PriorityCount{{Priority: models.PriorityMedium, Count: 4, Percentage: 100}},
		DeviceTypeAnalysis:   []dto.DeviceTypeStat{{DeviceType: "Phone", Count: 4, Revenue: 300, AvgValue: 75}},
		RevenueTrend:         []dto.RevenuePoint{{Week: "2024-05-12", Revenue: 300}},
	}
}

func TestReportFileName(t *testing.T) {
	now := time.Date(2024, time.March, 7, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, "repair-report-2024-03-07.json", ReportFileName(now, ReportFormatJSON))
	assert.Equal(t, "repair-report-2024-03-07.xlsx", ReportFileName(now, ReportFormatXLSX))
}

func TestParseReportFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"", ReportFormatJSON, false},
		{"json", ReportFormatJSON, false},
		{" JSON ", ReportFormatJSON, false},
		{"xlsx", ReportFormatXLSX, false},
		{"excel", ReportFormatXLSX, false},
		{"csv", "", true},
	}
	for _, tt := range tests {
		got, err := ParseReportFormat(tt.in)
		if tt.wantErr {
			assert.True(t, IsInvalidReportFormat(err), "format %q", tt.in)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestExportReport_JSON(t *testing.T) {
	now := time.Date(2024, time.May, 15, 12, 0, 0, 0, time.UTC)

	export, err := ExportReport(sampleReport(), "json", now)
	require.NoError(t, err)
	assert.Equal(t, "repair-report-2024-05-15.json", export.FileName)
	assert.Equal(t, "application/json", export.ContentType)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(export.Content, &doc))
	assert.Equal(t, "30 days", doc["dateRange"])
	assert.Equal(t, "2024-05-15T12:00:00Z", doc["generatedAt"])
	for _, key := range []string{"metrics", "statusDistribution", "priorityDistribution", "deviceTypeAnalysis", "technicianPerformance", "revenueTrend"} {
		assert.Contains(t, doc, key)
	}
	assert.Contains(t, string(export.Content), "\n  \"dateRange\"")
}

func TestExportReport_XLSX(t *testing.T) {
	now := time.Date(2024, time.May, 15, 12, 0, 0, 0, time.UTC)

	export, err := ExportReport(sampleReport(), "xlsx", now)
	require.NoError(t, err)
	assert.Equal(t, "repair-report-2024-05-15.xlsx", export.FileName)

	xl, err := excelize.OpenReader(bytes.NewReader(export.Content))
	require.NoError(t, err)
	defer func() { _ = xl.Close() }()

	assert.Equal(t, []string{"Overview", "Status", "Priority", "Device Types", "Technicians", "Revenue Trend"}, xl.GetSheetList())

	v, err := xl.GetCellValue("Overview", "B2")
	require.NoError(t, err)
	assert.Equal(t, "30 days", v)

	v, err = xl.GetCellValue("Overview", "B3")
	require.NoError(t, err)
	assert.Equal(t, "May 15, 2024, 12:00 PM", v)

	v, err = xl.GetCellValue("Overview", "B7")
	require.NoError(t, err)
	assert.Equal(t, "$300.00", v)

	rows, err := xl.GetRows("Status")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Status", "Count", "Percentage"}, rows[0])
	assert.Equal(t, "picked_up", rows[2][0])

	trend, err := xl.GetRows("Revenue Trend")
	require.NoError(t, err)
	require.Len(t, trend, 2)
	assert.Equal(t, []string{"Week", "Week of", "Revenue"}, trend[0])
	assert.Equal(t, "2024-05-12", trend[1][0])
	assert.Equal(t, "May 12", trend[1][1])
}

func TestExportReport_UnknownFormat(t *testing.T) {
	_, err := ExportReport(sampleReport(), "pdf", time.Now())
	require.Error(t, err)
	assert.True(t, IsInvalidInput(err))
}
