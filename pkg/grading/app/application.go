// Package app assembles the grading application and runs one workflow.
package app

import (
	"context"
	"os"

	"go.uber.org/fx"
	"gopkg.in/yaml.v3"

	"github.com/gradeloop/gradeloop/pkg/grading/adapter/llm"
	pagegoquery "github.com/gradeloop/gradeloop/pkg/grading/adapter/page/goquery"
	"github.com/gradeloop/gradeloop/pkg/grading/adapter/render"
	"github.com/gradeloop/gradeloop/pkg/grading/adapter/review"
	"github.com/gradeloop/gradeloop/pkg/grading/adapter/scoresync"
	"github.com/gradeloop/gradeloop/pkg/grading/adapter/storage"
	config "github.com/gradeloop/gradeloop/pkg/grading/core/config"
	model "github.com/gradeloop/gradeloop/pkg/grading/core/domain/model"
	coremetrics "github.com/gradeloop/gradeloop/pkg/grading/core/metrics"
	"github.com/gradeloop/gradeloop/pkg/grading/engine/capture"
	"github.com/gradeloop/gradeloop/pkg/grading/engine/detect"
	"github.com/gradeloop/gradeloop/pkg/grading/engine/orchestrator"
	"github.com/gradeloop/gradeloop/pkg/grading/engine/rubric"
	"github.com/gradeloop/gradeloop/pkg/grading/engine/score"
	inframetrics "github.com/gradeloop/gradeloop/pkg/grading/infrastructure/metrics"
	gradinglistener "github.com/gradeloop/gradeloop/pkg/grading/listener"
	"github.com/gradeloop/gradeloop/pkg/grading/support/util/exception"
	"github.com/gradeloop/gradeloop/pkg/grading/support/util/logger"
)

// GradingRequest is the per-run input: the question under grading and the
// student whose answer is on the page.
type GradingRequest struct {
	Question        string `yaml:"question"`
	ReferenceAnswer string `yaml:"reference_answer"`
	QuestionType    string `yaml:"question_type"`
	Student         struct {
		ID    string `yaml:"id"`
		Name  string `yaml:"name"`
		Class string `yaml:"class"`
	} `yaml:"student"`
}

// LoadRequest reads a grading request from a YAML file.
func LoadRequest(path string) (*GradingRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, exception.NewGradingError("app", "failed to read grading request", exception.KindUnknown, err)
	}
	var request GradingRequest
	if err := yaml.Unmarshal(data, &request); err != nil {
		return nil, exception.NewGradingError("app", "failed to parse grading request", exception.KindUnknown, err)
	}
	return &request, nil
}

// WorkflowOptions merges the request into the configured workflow defaults.
func (r *GradingRequest) WorkflowOptions(cfg *config.Config) model.WorkflowOptions {
	opts := cfg.WorkflowOptions()
	opts.Question = r.Question
	opts.ReferenceAnswer = r.ReferenceAnswer
	if r.QuestionType != "" {
		opts.QuestionType = model.QuestionType(r.QuestionType)
	}
	opts.Student = model.StudentInfo{ID: r.Student.ID, Name: r.Student.Name, Class: r.Student.Class}
	return opts.Resolve()
}

// RunApplication wires the full application graph and executes one grading
// workflow for the given request against the given host page.
func RunApplication(appCtx context.Context, envFilePath string, embeddedConfig config.EmbeddedConfig, pagePath, requestPath string) {
	app := fx.New(
		fx.Supply(
			embeddedConfig,
			fx.Annotate(envFilePath, fx.ResultTags(`name:"envFilePath"`)),
			fx.Annotate(
				appCtx,
				fx.As(new(context.Context)),
				fx.ResultTags(`name:"appCtx"`),
			),
		),

		logger.Module,
		config.Module,
		coremetrics.Module,
		inframetrics.Module,

		fx.Provide(func(pageCfg *config.PageConfig) (*pagegoquery.Page, error) {
			return pagegoquery.NewPageFromFile(pagePath, pageCfg)
		}),
		fx.Provide(func() (*GradingRequest, error) {
			return LoadRequest(requestPath)
		}),

		pagegoquery.Module,
		render.Module,
		llm.Module,
		scoresync.Module,
		review.Module,
		storage.Module,

		detect.Module,
		capture.Module,
		rubric.Module,
		score.Module,
		gradinglistener.Module,
		orchestrator.Module,

		fx.Invoke(fx.Annotate(
			startWorkflowExecution,
			fx.ParamTags(
				"",              // lc fx.Lifecycle
				"",              // shutdowner fx.Shutdowner
				"",              // orch *orchestrator.Orchestrator
				"",              // request *GradingRequest
				"",              // cfg *config.Config
				`name:"appCtx"`, // appCtx context.Context
			),
		)),
	)

	app.Run()

	if app.Err() != nil {
		logger.Fatalf("Application run failed: %v", app.Err())
	}
}

// startWorkflowExecution runs the workflow once on startup and requests
// shutdown when it finishes.
func startWorkflowExecution(
	lc fx.Lifecycle,
	shutdowner fx.Shutdowner,
	orch *orchestrator.Orchestrator,
	request *GradingRequest,
	cfg *config.Config,
	appCtx context.Context,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				defer func() {
					if r := recover(); r != nil {
						logger.Errorf("Panic recovered in workflow execution: %v", r)
					}
					if err := shutdowner.Shutdown(); err != nil {
						logger.Errorf("Failed to shutdown application: %v", err)
					}
				}()

				opts := request.WorkflowOptions(cfg)
				logger.Infof("Starting grading workflow for student '%s'...", opts.Student.Name)

				workflow, err := orch.Run(appCtx, opts)
				if err != nil {
					logger.Errorf("Grading workflow failed: %v", err)
					return
				}
				logger.Infof("Grading workflow %s finished: status=%s decision=%s", workflow.ID, workflow.Status, workflow.Decision)
				if workflow.Results.Scoring != nil {
					logger.Infof("Score: %.1f (confidence %.1f)", workflow.Results.Scoring.TotalScore, workflow.Results.Scoring.Confidence)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Infof("Application stopping.")
			return nil
		},
	})
}
