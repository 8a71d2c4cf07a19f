package shared

import (
	"log"
	"regexp"
	"unicode/utf8"
)

const (

	// regex patterns for input validation
	awsAccountIdPattern    = `^\d{12}$`
	awsIamRoleArnPattern   = `^arn:aws:iam::\d{12}:role\/[a-zA-Z_0-9+=,.@\-_/]+$`
	snsTopicArnPattern     = `^arn:aws[a-zA-Z-]*:sns:[a-z0-9-]+:\d{12}:[a-zA-Z0-9_-]+(\.fifo)?$`
	hostedZoneIdPattern    = `^(\/hostedzone\/)?Z[A-Z0-9]{1,32}$`
	awsRegionPattern       = `^[a-z]{2}(-gov)?-[a-z]+-\d$`
	environmentNamePattern = `^[a-zA-Z0-9_-]{1,64}$`
)

// validate aws account Id
func IsValidAwsAccountId(accountId string) bool {
	matched, err := regexp.MatchString(awsAccountIdPattern, accountId)
	if err != nil {
		log.Printf("error validating aws account id: %s", err)
		return false
	}
	return matched
}

// valid iam role arn
func IsValidIamRoleArn(roleArn string) bool {
	// iam role arn pattern: arn:aws:iam::<account-id>:role/<role-name>
	matched, err := regexp.MatchString(awsIamRoleArnPattern, roleArn)
	if err != nil {
		log.Printf("error validating iam role arn: %s", err)
		return false
	}
	return matched
}

// validate sns topic arn
func IsValidSnsTopicArn(topicArn string) bool {
	matched, err := regexp.MatchString(snsTopicArnPattern, topicArn)
	if err != nil {
		log.Printf("error validating sns topic arn: %s", err)
		return false
	}
	return matched
}

// validate route53 hosted zone id, with or without the /hostedzone/ prefix
func IsValidHostedZoneId(zoneId string) bool {
	matched, err := regexp.MatchString(hostedZoneIdPattern, zoneId)
	if err != nil {
		log.Printf("error validating hosted zone id: %s", err)
		return false
	}
	return matched
}

func IsValidAwsRegion(region string) bool {
	matched, err := regexp.MatchString(awsRegionPattern, region)
	if err != nil {
		log.Printf("error validating aws region: %s", err)
		return false
	}
	return matched
}

// environment names end up in s3 keys and metric namespaces
func IsValidEnvironmentName(env string) bool {
	matched, err := regexp.MatchString(environmentNamePattern, env)
	if err != nil {
		log.Printf("error validating environment name: %s", err)
		return false
	}
	return matched
}

// TruncateString keeps str within maxLength bytes, ending with "..." when cut.
// the cut backs off to a rune boundary.
func TruncateString(str string, maxLength int) string {
	if len(str) <= maxLength {
		return str
	}
	suffix := "..."
	if maxLength <= len(suffix) {
		suffix = ""
	}
	cut := maxLength - len(suffix)
	for cut > 0 && !utf8.RuneStart(str[cut]) {
		cut--
	}
	return str[:cut] + suffix
}
