package shared

import (
	"fmt"
	"os"
	"strings"
)

const (
	ReportTimestampLayout  string = "20060102-150405"
	TestRunTimestampLayout string = "20060102150405"
	DisplayTimestampLayout string = "2006-01-02 15:04:05"
)

// ReportKey builds <prefix>/<project>/<environment>/<name>-<timestamp>.<ext>
func ReportKey(prefix, project, environment, name, timestamp, ext string) string {
	return fmt.Sprintf("%s/%s/%s/%s-%s.%s", prefix, project, environment, name, timestamp, ext)
}

// ReportPrefix builds <prefix>/<project>/<environment>/
func ReportPrefix(prefix, project, environment string) string {
	return fmt.Sprintf("%s/%s/%s/", prefix, project, environment)
}

func S3Uri(bucket, key string) string {
	return "s3://" + bucket + "/" + key
}

// GetEnv returns the value of key or fallback when unset or blank.
func GetEnv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

// Region returns AWS_REGION or the default region.
func Region() string {
	return GetEnv(EnvAwsRegion, DefaultRegion)
}
