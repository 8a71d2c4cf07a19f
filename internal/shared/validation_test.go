package shared

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestValidators(t *testing.T) {
	assertion := assert.New(t)

	tests := []struct {
		name      string
		validator func(string) bool
		input     string
		expected  bool
	}{
		{"account id", IsValidAwsAccountId, "012345678910", true},
		{"short account id", IsValidAwsAccountId, "12345", false},
		{"role arn", IsValidIamRoleArn, "arn:aws:iam::012345678910:role/test-role", true},
		{"user arn", IsValidIamRoleArn, "arn:aws:iam::012345678910:user/test-user", false},
		{"topic arn", IsValidSnsTopicArn, "arn:aws:sns:us-east-1:012345678910:alerts", true},
		{"fifo topic arn", IsValidSnsTopicArn, "arn:aws:sns:us-east-1:012345678910:alerts.fifo", true},
		{"queue arn", IsValidSnsTopicArn, "arn:aws:sqs:us-east-1:012345678910:alerts", false},
		{"hosted zone", IsValidHostedZoneId, "Z0123456789ABC", true},
		{"prefixed hosted zone", IsValidHostedZoneId, "/hostedzone/Z0123456789ABC", true},
		{"lower case hosted zone", IsValidHostedZoneId, "z0123", false},
		{"region", IsValidAwsRegion, "us-west-2", true},
		{"gov region", IsValidAwsRegion, "us-gov-west-1", true},
		{"bad region", IsValidAwsRegion, "mars-1", false},
		{"environment", IsValidEnvironmentName, "prod_eu-1", true},
		{"path environment", IsValidEnvironmentName, "../prod", false},
		{"empty environment", IsValidEnvironmentName, "", false},
	}
	for _, test := range tests {
		assertion.Equal(test.expected, test.validator(test.input), test.name)
	}
}

func TestTruncateString(t *testing.T) {
	assertion := assert.New(t)

	assertion.Equal("short", TruncateString("short", 10))
	assertion.Equal("abcdefg...", TruncateString("abcdefghijklmnop", 10))
	assertion.Equal("ab", TruncateString("abcdef", 2))

	// multibyte names never split a rune
	truncated := TruncateString("ééééé", 6)
	assertion.Equal("é...", truncated)
	assertion.True(utf8.ValidString(truncated))
	assertion.Equal("日...", TruncateString("日本語", 6))
	assertion.True(utf8.ValidString(TruncateString("New Weekly Report - プロジェクト (本番)", 30)))
}

func TestArnParts(t *testing.T) {
	assertion := assert.New(t)

	arn := "arn:aws:inspector:us-east-1:012345678910:target/0-abc/run/0-123"
	account, err := ExtractAWSAccountFromARN(arn)
	assertion.NoError(err)
	assertion.Equal("012345678910", account)
	region, err := ExtractRegionFromARN(arn)
	assertion.NoError(err)
	assertion.Equal("us-east-1", region)

	region, err = ExtractRegionFromARN("arn:aws:iam::012345678910:role/test-role")
	assertion.NoError(err)
	assertion.Equal("", region)

	_, err = ExtractAWSAccountFromARN("not-an-arn")
	assertion.Error(err)
	_, err = ExtractRegionFromARN("arn:aws:s3")
	assertion.Error(err)
}

func TestKeysAndEnv(t *testing.T) {
	assertion := assert.New(t)

	assertion.Equal("reports/app/prod/weekly-report-20240304-050607.json", ReportKey("reports", "app", "prod", "weekly-report", "20240304-050607", "json"))
	assertion.Equal("reports/app/prod/", ReportPrefix("reports", "app", "prod"))
	assertion.Equal("s3://bucket/key.json", S3Uri("bucket", "key.json"))
	assertion.Equal("Weekly", Title("weekly"))
	assertion.Equal("", Title(""))

	t.Setenv(EnvAwsRegion, "  ")
	assertion.Equal(DefaultRegion, Region())
	t.Setenv(EnvAwsRegion, "eu-west-1")
	assertion.Equal("eu-west-1", Region())
}
