package reporting

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	xrayTypes "github.com/aws/aws-sdk-go-v2/service/xray/types"
	"github.com/stretchr/testify/assert"
)

func traces(responseTimes ...float64) []xrayTypes.TraceSummary {
	summaries := make([]xrayTypes.TraceSummary, 0, len(responseTimes))
	for _, responseTime := range responseTimes {
		summaries = append(summaries, xrayTypes.TraceSummary{
			ResponseTime: aws.Float64(responseTime),
			HasError:     aws.Bool(false),
			HasFault:     aws.Bool(false),
			HasThrottle:  aws.Bool(false),
		})
	}
	return summaries
}

func TestTraceFilter(t *testing.T) {
	assertion := assert.New(t)
	assertion.Equal(`service("app") AND annotation.environment = "prod"`, TraceFilter("app", "prod"))
}

func TestNewTraceStats(t *testing.T) {
	assertion := assert.New(t)

	empty := NewTraceStats(nil)
	assertion.Equal(TraceStats{}, empty)

	small := traces(0.3, 0.1, 0.2)
	small[0].HasError = aws.Bool(true)
	small[1].HasFault = aws.Bool(true)
	small[2].HasThrottle = aws.Bool(true)
	stats := NewTraceStats(small)
	assertion.Equal(3, stats.TraceCount)
	assertion.InDelta(200.0, stats.AverageResponseTime, 0.0001)
	assertion.InDelta(100.0, stats.MinResponseTime, 0.0001)
	assertion.InDelta(300.0, stats.MaxResponseTime, 0.0001)
	// fewer than 20 traces, p95 is the max
	assertion.Equal(stats.MaxResponseTime, stats.P95ResponseTime)
	assertion.Equal(1, stats.ErrorCount)
	assertion.Equal(1, stats.FaultCount)
	assertion.Equal(1, stats.ThrottleCount)
	assertion.InDelta(33.333, stats.ErrorRate, 0.001)

	responseTimes := []float64{}
	for i := 1; i <= 40; i++ {
		responseTimes = append(responseTimes, float64(i)/1000)
	}
	large := NewTraceStats(traces(responseTimes...))
	// sorted[int(40*0.95)] is the 39th trace
	assertion.InDelta(39.0, large.P95ResponseTime, 0.0001)
	assertion.InDelta(40.0, large.MaxResponseTime, 0.0001)
	assertion.Equal(0.0, large.ErrorRate)
}

func TestNewServiceInsights(t *testing.T) {
	assertion := assert.New(t)

	insights := NewServiceInsights([]xrayTypes.Service{
		{
			Name: aws.String("app-api"),
			Type: aws.String("AWS::Lambda::Function"),
			SummaryStatistics: &xrayTypes.ServiceStatistics{
				TotalCount:        aws.Int64(10),
				TotalResponseTime: aws.Float64(2.5),
				ErrorStatistics:   &xrayTypes.ErrorStatistics{TotalCount: aws.Int64(2)},
				FaultStatistics:   &xrayTypes.FaultStatistics{TotalCount: aws.Int64(1)},
			},
		},
		{},
	})
	assertion.Len(insights, 2)
	assertion.Equal(ServiceInsight{Name: "app-api", Type: "AWS::Lambda::Function", RequestCount: 10, ErrorCount: 2, FaultCount: 1, AverageResponseTime: 250}, insights[0])
	assertion.Equal(ServiceInsight{Name: "Unknown", Type: "Unknown"}, insights[1])
}
