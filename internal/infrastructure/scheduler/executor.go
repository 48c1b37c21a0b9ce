package scheduler

import (
	"context"
	"time"

	"github.com/google/uuid"
	appinvoicing "github.com/rentledger/backend/internal/application/invoicing"
	"github.com/rentledger/backend/internal/domain/identity"
	"go.uber.org/zap"
)

// BillingExecutor executes billing jobs against the application services
type BillingExecutor struct {
	generationSvc *appinvoicing.GenerationService
	invoiceSvc    *appinvoicing.InvoiceService
	jobRepo       *BillingJobRepository
	logger        *zap.Logger
}

// NewBillingExecutor creates a new billing executor
func NewBillingExecutor(
	generationSvc *appinvoicing.GenerationService,
	invoiceSvc *appinvoicing.InvoiceService,
	jobRepo *BillingJobRepository,
	logger *zap.Logger,
) *BillingExecutor {
	return &BillingExecutor{
		generationSvc: generationSvc,
		invoiceSvc:    invoiceSvc,
		jobRepo:       jobRepo,
		logger:        logger,
	}
}

// Execute runs a single billing job. Scheduled runs act on behalf of
// the system, so the context carries an admin scope for the job's org.
func (e *BillingExecutor) Execute(ctx context.Context, job *Job) error {
	ctx = identity.WithScope(ctx, identity.NewAccessScope(job.OrgID, uuid.Nil, identity.CapAdminAll))

	var err error
	switch job.Type {
	case JobTypeGeneration:
		err = e.runGeneration(ctx, job)
	case JobTypeOverdueRecalc:
		err = e.runOverdueRecalc(ctx, job)
	default:
		err = ErrInvalidJobType
	}

	if e.jobRepo != nil && job.RecordID != nil {
		errMsg := ""
		if err != nil {
			errMsg = err.Error()
		}
		if recordErr := e.jobRepo.RecordJobComplete(ctx, *job.RecordID, err == nil, errMsg); recordErr != nil {
			e.logger.Warn("Failed to record job completion",
				zap.String("job_id", job.ID.String()),
				zap.Error(recordErr),
			)
		}
	}

	return err
}

func (e *BillingExecutor) runGeneration(ctx context.Context, job *Job) error {
	result, err := e.generationSvc.GenerateForPeriod(ctx, job.Year, job.Month)
	if err != nil {
		return err
	}

	e.logger.Info("Scheduled generation run finished",
		zap.String("org_id", job.OrgID.String()),
		zap.Int("year", job.Year),
		zap.String("month", job.Month.String()),
		zap.Int("created", result.Created),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed),
	)
	return nil
}

func (e *BillingExecutor) runOverdueRecalc(ctx context.Context, job *Job) error {
	transitioned, err := e.invoiceSvc.RecalculateOverdue(ctx, job.OrgID, time.Now())
	if err != nil {
		return err
	}

	if transitioned > 0 {
		e.logger.Info("Scheduled overdue recalculation finished",
			zap.String("org_id", job.OrgID.String()),
			zap.Int("transitioned", transitioned),
		)
	}
	return nil
}
