package jobs

import (
	"context"

	"github.com/rswy/investment-analysis/internal/pipeline"
	"github.com/rswy/investment-analysis/pkg/logger"
)

// PipelineJob runs the full batch pipeline on the configured monthly
// schedule, after the external fund reports for the closed month arrive.
type PipelineJob struct {
	pipeline *pipeline.Pipeline
	schedule string
	logger   *logger.Logger
}

// NewPipelineJob creates a new pipeline job
func NewPipelineJob(p *pipeline.Pipeline, schedule string, log *logger.Logger) *PipelineJob {
	return &PipelineJob{
		pipeline: p,
		schedule: schedule,
		logger:   log,
	}
}

// Name returns the job name
func (j *PipelineJob) Name() string {
	return "investment_pipeline"
}

// Schedule returns the configured cron schedule
func (j *PipelineJob) Schedule() string {
	return j.schedule
}

// Run executes the full pipeline
func (j *PipelineJob) Run(ctx context.Context) error {
	j.logger.Info("Starting scheduled pipeline run")
	return j.pipeline.Run(ctx)
}
