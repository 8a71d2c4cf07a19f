package reporting

import (
	"strings"
	"time"
)

const (
	ReportTypeDaily   = "daily"
	ReportTypeWeekly  = "weekly"
	ReportTypeMonthly = "monthly"
	ReportTypeUnknown = "unknown"

	day = 24 * time.Hour
)

// Period is the look back window of a report type. unknown types cover a week.
func Period(reportType string) time.Duration {
	switch reportType {
	case ReportTypeDaily:
		return day
	case ReportTypeMonthly:
		return 30 * day
	}
	return 7 * day
}

// TimeRange returns [end - Period(reportType), end]
func TimeRange(reportType string, end time.Time) (time.Time, time.Time) {
	return end.Add(-Period(reportType)), end
}

// ReportTypeFromFilename finds the report type named in a generated report filename
func ReportTypeFromFilename(filename string) string {
	for _, reportType := range []string{ReportTypeDaily, ReportTypeWeekly, ReportTypeMonthly} {
		if strings.Contains(filename, reportType) {
			return reportType
		}
	}
	return ReportTypeUnknown
}

// InRange is inclusive on both ends
func InRange(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}
