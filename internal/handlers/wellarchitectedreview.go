package handlers

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/wellarchitected"
	waTypes "github.com/aws/aws-sdk-go-v2/service/wellarchitected/types"

	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/s3api"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/sdkapimgr"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/shared"
	"github.com/outofoffice3/aws-samples/go-infra-testing-toolbox/internal/wellarchitectedapi"
)

const (
	wellArchitectedLens   = "wellarchitected"
	noWorkloadFoundMsg    = "No Well-Architected workload found. Please create one manually in the Well-Architected Tool."
	noWorkloadFoundBody   = "No Well-Architected workload found"
	wellArchitectedReport = "well-architected-review"
)

// pillar names reported when no workload exists, in review order
var wellArchitectedPillars = []string{
	"Operational Excellence",
	"Security",
	"Reliability",
	"Performance Efficiency",
	"Cost Optimization",
	"Sustainability",
}

// risk levels zeroed on placeholder pillars
var riskLevels = []waTypes.Risk{
	waTypes.RiskHigh,
	waTypes.RiskMedium,
	waTypes.Risk("LOW"),
	waTypes.RiskNone,
	waTypes.RiskNotApplicable,
}

type Recommendation struct {
	Question    string `json:"question"`
	Risk        string `json:"risk"`
	Improvement string `json:"improvement"`
}

type PillarReview struct {
	Name            string           `json:"name"`
	RiskCounts      map[string]int   `json:"riskCounts"`
	Recommendations []Recommendation `json:"recommendations"`
}

type ReviewSummary struct {
	Pillars []PillarReview `json:"pillars"`
}

type WellArchitectedReview struct {
	Project      string        `json:"project"`
	Environment  string        `json:"environment"`
	Timestamp    string        `json:"timestamp"`
	WorkloadId   string        `json:"workloadId,omitempty"`
	WorkloadName string        `json:"workloadName,omitempty"`
	Message      string        `json:"message,omitempty"`
	Summary      ReviewSummary `json:"summary"`
}

type _WellArchitectedReviewHandler struct {
	apiMgr sdkapimgr.SdkApiMgr
	region string
	now    func() time.Time
}

// WellArchitectedReviewEvent is the scheduled event, its content is ignored
type WellArchitectedReviewEvent struct {
	Payload map[string]interface{}
}

func NewWellArchitectedReviewHandler(cfg aws.Config) (Handler, error) {
	apiMgr, err := newApiMgr(cfg, sdkapimgr.S3Service, sdkapimgr.WellArchitectedService)
	if err != nil {
		return nil, err
	}
	return newWellArchitectedReviewHandler(apiMgr, cfg.Region), nil
}

func newWellArchitectedReviewHandler(apiMgr sdkapimgr.SdkApiMgr, region string) *_WellArchitectedReviewHandler {
	return &_WellArchitectedReviewHandler{
		apiMgr: apiMgr,
		region: region,
		now:    time.Now,
	}
}

func (h *_WellArchitectedReviewHandler) Handle(ctx context.Context, params interface{}) (shared.Response, error) {
	if _, ok := params.(WellArchitectedReviewEvent); !ok {
		return shared.Response{}, errors.New("type assertion failure.  event is not type well architected review event")
	}

	reportBucket := shared.GetEnv(shared.EnvReportBucket, "")
	project, environment := projectAndEnvironment()
	if reportBucket == "" {
		return shared.NewErrorResponse(500, shared.EnvVarsNotSetErrMsg), nil
	}

	waClient, err := sdkapimgr.Get[wellarchitectedapi.WellArchitectedApi](h.apiMgr, h.region, sdkapimgr.WellArchitectedService)
	if err != nil {
		return shared.NewErrorResponse(500, err.Error()), nil
	}

	now := h.now()
	timestamp := now.Format(shared.ReportTimestampLayout)
	review := WellArchitectedReview{
		Project:     project,
		Environment: environment,
		Timestamp:   timestamp,
		Summary:     ReviewSummary{Pillars: []PillarReview{}},
	}

	workload, err := findWorkload(ctx, waClient, project, environment)
	if err != nil {
		log.Printf("error listing workloads : [%v]\n", err)
		return shared.NewErrorResponse(500, err.Error()), nil
	}
	if workload == nil {
		log.Printf("no workload found for [%s] [%s]\n", project, environment)
		review.Message = noWorkloadFoundMsg
		review.Summary.Pillars = placeholderPillarReviews()
	} else {
		review.WorkloadId = aws.ToString(workload.WorkloadId)
		review.WorkloadName = aws.ToString(workload.WorkloadName)
		log.Printf("reviewing workload : [%s]\n", review.WorkloadName)
		if err := h.reviewWorkload(ctx, waClient, &review); err != nil {
			log.Printf("error reviewing workload [%s] : [%v]\n", review.WorkloadId, err)
			return shared.NewErrorResponse(500, err.Error()), nil
		}
	}

	reportKey := shared.ReportKey(shared.ArchitectureReportsPrefix, project, environment, wellArchitectedReport, timestamp, "json")
	s3Client, err := sdkapimgr.Get[s3api.S3Api](h.apiMgr, h.region, sdkapimgr.S3Service)
	if err == nil {
		err = s3api.PutJSON(ctx, s3Client, reportBucket, reportKey, review)
	}
	if err != nil {
		log.Printf("error storing well-architected review : [%v]\n", err)
		return shared.NewErrorResponse(500, err.Error()), nil
	}

	body := map[string]interface{}{
		"reportPath": shared.S3Uri(reportBucket, reportKey),
	}
	if workload == nil {
		body["message"] = noWorkloadFoundBody
	} else {
		body["workloadId"] = review.WorkloadId
	}
	return shared.NewResponse(200, body), nil
}

// match <project>-<environment> first, then <project>
func findWorkload(ctx context.Context, waClient wellarchitectedapi.WellArchitectedApi, project, environment string) (*waTypes.WorkloadSummary, error) {
	workloads := []waTypes.WorkloadSummary{}
	paginator := wellarchitected.NewListWorkloadsPaginator(waClient, &wellarchitected.ListWorkloadsInput{
		WorkloadNamePrefix: aws.String(project),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		workloads = append(workloads, page.WorkloadSummaries...)
	}
	for _, name := range []string{project + "-" + environment, project} {
		for i := range workloads {
			if aws.ToString(workloads[i].WorkloadName) == name {
				return &workloads[i], nil
			}
		}
	}
	return nil, nil
}

func placeholderPillarReviews() []PillarReview {
	pillars := make([]PillarReview, 0, len(wellArchitectedPillars))
	for _, name := range wellArchitectedPillars {
		counts := map[string]int{}
		for _, risk := range riskLevels {
			counts[string(risk)] = 0
		}
		pillars = append(pillars, PillarReview{Name: name, RiskCounts: counts, Recommendations: []Recommendation{}})
	}
	return pillars
}

// risk counts are kept as the lens review reports them, UNANSWERED included.
// recommendations come from the HIGH and MEDIUM improvements of each pillar.
func (h *_WellArchitectedReviewHandler) reviewWorkload(ctx context.Context, waClient wellarchitectedapi.WellArchitectedApi, review *WellArchitectedReview) error {
	output, err := waClient.GetLensReview(ctx, &wellarchitected.GetLensReviewInput{
		WorkloadId: aws.String(review.WorkloadId),
		LensAlias:  aws.String(wellArchitectedLens),
	})
	if err != nil {
		return err
	}
	if output.LensReview == nil {
		return nil
	}

	for _, summary := range output.LensReview.PillarReviewSummaries {
		name := aws.ToString(summary.PillarName)
		if name == "" {
			name = "Unknown"
		}
		pillar := PillarReview{
			Name:            name,
			RiskCounts:      map[string]int{},
			Recommendations: []Recommendation{},
		}
		for risk, count := range summary.RiskCounts {
			pillar.RiskCounts[risk] = int(count)
		}

		pillarId := aws.ToString(summary.PillarId)
		paginator := wellarchitected.NewListLensReviewImprovementsPaginator(waClient, &wellarchitected.ListLensReviewImprovementsInput{
			WorkloadId: aws.String(review.WorkloadId),
			LensAlias:  aws.String(wellArchitectedLens),
			PillarId:   aws.String(pillarId),
		})
		for paginator.HasMorePages() {
			page, err := paginator.NextPage(ctx)
			if err != nil {
				log.Printf("error listing improvements for pillar [%s] : [%v]\n", pillarId, err)
				break
			}
			for _, improvement := range page.ImprovementSummaries {
				if improvement.Risk != waTypes.RiskHigh && improvement.Risk != waTypes.RiskMedium {
					continue
				}
				pillar.Recommendations = append(pillar.Recommendations, Recommendation{
					Question:    aws.ToString(improvement.QuestionTitle),
					Risk:        string(improvement.Risk),
					Improvement: aws.ToString(improvement.ImprovementPlanUrl),
				})
			}
		}
		review.Summary.Pillars = append(review.Summary.Pillars, pillar)
	}
	return nil
}
