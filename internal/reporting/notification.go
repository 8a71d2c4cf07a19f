package reporting

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/shared"
)

// MaxSubjectLength keeps sns subjects under the 100 character limit
const MaxSubjectLength = 99

// ReportObject describes a newly written report object
type ReportObject struct {
	Bucket       string
	Key          string
	Size         int64
	LastModified *time.Time
}

// ReportTypeOfKey returns the report type of a generated report key.
// ok is false when the key has fewer than four path parts.
func ReportTypeOfKey(key string) (string, bool) {
	parts := strings.Split(key, "/")
	if len(parts) < 4 {
		return "", false
	}
	return ReportTypeFromFilename(path.Base(key)), true
}

func NotificationSubject(reportType, project, environment string) string {
	subject := fmt.Sprintf("New %s Report - %s (%s)", shared.Title(reportType), project, environment)
	return shared.TruncateString(subject, MaxSubjectLength)
}

// NotificationMessage is the sns message announcing object.
func NotificationMessage(reportType, project, environment string, object ReportObject) string {
	generated := "Unknown"
	if object.LastModified != nil {
		generated = object.LastModified.Format(shared.DisplayTimestampLayout)
	}
	uri := shared.S3Uri(object.Bucket, object.Key)

	var message strings.Builder
	fmt.Fprintf(&message, "New %s Report Available\n\n", shared.Title(reportType))
	fmt.Fprintf(&message, "Project: %s\n", project)
	fmt.Fprintf(&message, "Environment: %s\n", environment)
	fmt.Fprintf(&message, "Report Location: %s\n", uri)
	fmt.Fprintf(&message, "Generated: %s\n", generated)
	fmt.Fprintf(&message, "File Size: %.1f KB\n\n", float64(object.Size)/1024)
	message.WriteString("You can access this report through the AWS Console or by using the AWS CLI:\n")
	fmt.Fprintf(&message, "aws s3 cp %s ./%s\n", uri, path.Base(object.Key))
	return message.String()
}
