package sdkapimgr

import (
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials/stscreds"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/guardduty"
	"github.com/aws/aws-sdk-go-v2/service/inspector"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/route53"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/aws/aws-sdk-go-v2/service/support"
	"github.com/aws/aws-sdk-go-v2/service/synthetics"
	"github.com/aws/aws-sdk-go-v2/service/wellarchitected"
	"github.com/aws/aws-sdk-go-v2/service/xray"

	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/cloudwatchapi"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/guarddutyapi"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/inspectorapi"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/keyvaluestore"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/lambdaapi"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/route53api"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/s3api"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/sesapi"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/shared"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/snsapi"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/stsapi"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/supportapi"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/syntheticsapi"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/wellarchitectedapi"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/xrayapi"
)

// SdkApiMgr hands out service apis keyed by region and service name.
type SdkApiMgr interface {
	GetApi(region string, serviceName string) (interface{}, bool)
	SetApi(region string, serviceName string, client interface{}) error
}

type awsApiMgr struct {
	apiMap keyvaluestore.KeyValueStore[interface{}]
}

type SDKApiMgrConfig struct {
	Cfg      aws.Config
	Regions  []string // regions to build clients for. defaults to Cfg.Region
	Services []string // services to build. defaults to AllServices
	RoleArn  string   // optional role to assume for every client
}

const (
	S3Service              string = "s3"
	SesService             string = "ses"
	SnsService             string = "sns"
	InspectorService       string = "inspector"
	GuardDutyService       string = "guardduty"
	SupportService         string = "support" // trusted advisor, always us-east-1
	WellArchitectedService string = "wellarchitected"
	SyntheticsService      string = "synthetics"
	CloudWatchService      string = "cloudwatch"
	XRayService            string = "xray"
	Route53Service         string = "route53"
	StsService             string = "sts"
	LambdaService          string = "lambda"
)

var AllServices = []string{
	S3Service,
	SesService,
	SnsService,
	InspectorService,
	GuardDutyService,
	SupportService,
	WellArchitectedService,
	SyntheticsService,
	CloudWatchService,
	XRayService,
	Route53Service,
	StsService,
	LambdaService,
}

// initialize instance of aws client mgr
func InitAwsClientMgr(config SDKApiMgrConfig) (SdkApiMgr, error) {

	// check if credentials are nil
	if config.Cfg.Credentials == nil {
		return nil, errors.New("valid config credentials provider required")
	}

	regions := config.Regions
	if len(regions) == 0 {
		if config.Cfg.Region == "" {
			return nil, errors.New("at least one region is required")
		}
		regions = []string{config.Cfg.Region}
	}

	services := config.Services
	if len(services) == 0 {
		services = AllServices
	}

	cfgCopy := config.Cfg.Copy() // create copy of aws config

	// swap credentials for an assumed role when one is configured
	if config.RoleArn != "" {
		if !shared.IsValidIamRoleArn(config.RoleArn) {
			return nil, errors.New("invalid role arn : " + config.RoleArn)
		}
		stsClient := sts.NewFromConfig(cfgCopy)
		cfgCopy.Credentials = aws.NewCredentialsCache(stscreds.NewAssumeRoleProvider(stsClient, config.RoleArn))
	}

	awscm := NewAwsApiMgr()
	for _, region := range regions {
		regionCfg := cfgCopy.Copy()
		regionCfg.Region = region
		for _, service := range services {
			// trusted advisor is only served from us-east-1
			if service == SupportService {
				continue
			}
			api, err := newApi(regionCfg, service)
			if err != nil {
				return nil, err
			}
			if err := awscm.SetApi(region, service, api); err != nil {
				return nil, err
			}
		}
	}

	for _, service := range services {
		if service != SupportService {
			continue
		}
		supportCfg := cfgCopy.Copy()
		supportCfg.Region = shared.TrustedAdvisorRegion
		api, err := newApi(supportCfg, SupportService)
		if err != nil {
			return nil, err
		}
		if err := awscm.SetApi(shared.TrustedAdvisorRegion, SupportService, api); err != nil {
			return nil, err
		}
	}

	return awscm, nil
}

// build the api wrapper for a single service
func newApi(cfg aws.Config, service string) (interface{}, error) {
	switch service {
	case S3Service:
		return s3api.NewS3SDKClient(s3.NewFromConfig(cfg)), nil
	case SesService:
		return sesapi.NewSesSDKClient(ses.NewFromConfig(cfg)), nil
	case SnsService:
		return snsapi.NewSnsSDKClient(sns.NewFromConfig(cfg)), nil
	case InspectorService:
		return inspectorapi.NewInspectorSDKClient(inspector.NewFromConfig(cfg)), nil
	case GuardDutyService:
		return guarddutyapi.NewGuardDutySDKClient(guardduty.NewFromConfig(cfg)), nil
	case SupportService:
		return supportapi.NewSupportSDKClient(support.NewFromConfig(cfg)), nil
	case WellArchitectedService:
		return wellarchitectedapi.NewWellArchitectedSDKClient(wellarchitected.NewFromConfig(cfg)), nil
	case SyntheticsService:
		return syntheticsapi.NewSyntheticsSDKClient(synthetics.NewFromConfig(cfg)), nil
	case CloudWatchService:
		return cloudwatchapi.NewCloudWatchSDKClient(cloudwatch.NewFromConfig(cfg)), nil
	case XRayService:
		return xrayapi.NewXRaySDKClient(xray.NewFromConfig(cfg)), nil
	case Route53Service:
		return route53api.NewRoute53SDKClient(route53.NewFromConfig(cfg)), nil
	case StsService:
		return stsapi.NewStsSDKClient(sts.NewFromConfig(cfg)), nil
	case LambdaService:
		return lambdaapi.NewLambdaSDKClient(lambda.NewFromConfig(cfg)), nil
	}
	return nil, errors.New("invalid service name")
}

func NewAwsApiMgr() SdkApiMgr {
	return &awsApiMgr{
		apiMap: keyvaluestore.NewKeyValueStore[interface{}](),
	}
}

// get sdk client
func (awscm *awsApiMgr) GetApi(region string, serviceName string) (interface{}, bool) {
	if region == "" || serviceName == "" {
		return nil, false
	}
	key := shared.Key{
		PrimaryKey: region,
		SortKey:    serviceName,
	}
	return awscm.apiMap.Get(key)
}

// set sdk client
func (awscm *awsApiMgr) SetApi(region string, serviceName string, client interface{}) error {
	if region == "" || serviceName == "" || client == nil {
		return errors.New("required field(s) cannot be empty")
	}

	key := shared.Key{
		PrimaryKey: region,
		SortKey:    serviceName,
	}
	var ok bool
	switch serviceName {
	case S3Service:
		_, ok = client.(s3api.S3Api)
	case SesService:
		_, ok = client.(sesapi.SesApi)
	case SnsService:
		_, ok = client.(snsapi.SnsApi)
	case InspectorService:
		_, ok = client.(inspectorapi.InspectorApi)
	case GuardDutyService:
		_, ok = client.(guarddutyapi.GuardDutyApi)
	case SupportService:
		_, ok = client.(supportapi.SupportApi)
	case WellArchitectedService:
		_, ok = client.(wellarchitectedapi.WellArchitectedApi)
	case SyntheticsService:
		_, ok = client.(syntheticsapi.SyntheticsApi)
	case CloudWatchService:
		_, ok = client.(cloudwatchapi.CloudWatchApi)
	case XRayService:
		_, ok = client.(xrayapi.XRayApi)
	case Route53Service:
		_, ok = client.(route53api.Route53Api)
	case StsService:
		_, ok = client.(stsapi.StsApi)
	case LambdaService:
		_, ok = client.(lambdaapi.LambdaApi)
	default:
		return errors.New("invalid service name")
	}
	if !ok {
		return fmt.Errorf("invalid %s client", serviceName)
	}

	awscm.apiMap.Set(key, client)
	return nil
}

// Get fetches and type asserts an api from the manager.
func Get[T any](mgr SdkApiMgr, region string, serviceName string) (T, error) {
	var zero T
	result, ok := mgr.GetApi(region, serviceName)
	if !ok {
		return zero, fmt.Errorf("error retrieving %s client for region [%s] from sdk client manager", serviceName, region)
	}
	api, ok := result.(T)
	if !ok {
		return zero, fmt.Errorf("error type assertion for %s client", serviceName)
	}
	return api, nil
}
