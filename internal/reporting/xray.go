package reporting

import (
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	xrayTypes "github.com/aws/aws-sdk-go-v2/service/xray/types"
)

// below this many traces p95 falls back to the max
const minTracesForPercentile = 20

type TraceStats struct {
	TraceCount          int     `json:"traceCount"`
	AverageResponseTime float64 `json:"averageResponseTime"`
	P95ResponseTime     float64 `json:"p95ResponseTime"`
	MaxResponseTime     float64 `json:"maxResponseTime"`
	MinResponseTime     float64 `json:"minResponseTime"`
	ErrorCount          int     `json:"errorCount"`
	FaultCount          int     `json:"faultCount"`
	ThrottleCount       int     `json:"throttleCount"`
	ErrorRate           float64 `json:"errorRate"`
	FaultRate           float64 `json:"faultRate"`
}

type ServiceInsight struct {
	Name                string  `json:"name"`
	Type                string  `json:"type"`
	RequestCount        int64   `json:"requestCount"`
	ErrorCount          int64   `json:"errorCount"`
	FaultCount          int64   `json:"faultCount"`
	AverageResponseTime float64 `json:"averageResponseTime"`
}

// TraceFilter selects the traces of project annotated with environment
func TraceFilter(project, environment string) string {
	return fmt.Sprintf("service(\"%s\") AND annotation.environment = \"%s\"", project, environment)
}

// NewTraceStats computes response time and error statistics. x-ray reports
// response times in seconds, stats are in milliseconds.
func NewTraceStats(summaries []xrayTypes.TraceSummary) TraceStats {
	stats := TraceStats{TraceCount: len(summaries)}
	if len(summaries) == 0 {
		return stats
	}

	responseTimes := make([]float64, 0, len(summaries))
	for _, summary := range summaries {
		responseTimes = append(responseTimes, aws.ToFloat64(summary.ResponseTime)*1000)
		if aws.ToBool(summary.HasError) {
			stats.ErrorCount++
		}
		if aws.ToBool(summary.HasFault) {
			stats.FaultCount++
		}
		if aws.ToBool(summary.HasThrottle) {
			stats.ThrottleCount++
		}
	}
	sort.Float64s(responseTimes)

	n := len(responseTimes)
	stats.AverageResponseTime = Average(responseTimes)
	stats.MinResponseTime = responseTimes[0]
	stats.MaxResponseTime = responseTimes[n-1]
	stats.P95ResponseTime = stats.MaxResponseTime
	if n >= minTracesForPercentile {
		stats.P95ResponseTime = responseTimes[int(float64(n)*0.95)]
	}
	stats.ErrorRate = float64(stats.ErrorCount) / float64(n) * 100
	stats.FaultRate = float64(stats.FaultCount) / float64(n) * 100
	return stats
}

// NewServiceInsights summarizes each node of a service graph
func NewServiceInsights(services []xrayTypes.Service) []ServiceInsight {
	insights := make([]ServiceInsight, 0, len(services))
	for _, service := range services {
		insight := ServiceInsight{
			Name: valueOrUnknown(aws.ToString(service.Name)),
			Type: valueOrUnknown(aws.ToString(service.Type)),
		}
		if statistics := service.SummaryStatistics; statistics != nil {
			insight.RequestCount = aws.ToInt64(statistics.TotalCount)
			if statistics.ErrorStatistics != nil {
				insight.ErrorCount = aws.ToInt64(statistics.ErrorStatistics.TotalCount)
			}
			if statistics.FaultStatistics != nil {
				insight.FaultCount = aws.ToInt64(statistics.FaultStatistics.TotalCount)
			}
			if insight.RequestCount > 0 {
				insight.AverageResponseTime = aws.ToFloat64(statistics.TotalResponseTime) / float64(insight.RequestCount) * 1000
			}
		}
		insights = append(insights, insight)
	}
	return insights
}

func valueOrUnknown(value string) string {
	if value == "" {
		return "Unknown"
	}
	return value
}
