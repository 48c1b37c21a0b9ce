package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/domain/identity"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// BillingCronSchedulerConfig holds configuration for the billing cron scheduler
type BillingCronSchedulerConfig struct {
	// Enabled indicates if the cron scheduler is enabled
	Enabled bool
	// GenerationDay is the day of month (1-28) on which the current
	// month's invoices are generated
	GenerationDay int
	// CheckInterval is how often the generation condition is evaluated
	CheckInterval time.Duration
	// OverdueCheckInterval is how often overdue recalculation runs
	OverdueCheckInterval time.Duration
	// JobTimeout is the maximum time a single job can run
	JobTimeout time.Duration
	// MaxConcurrentJobs is the maximum number of concurrent jobs
	MaxConcurrentJobs int
	// RetryAttempts is the number of retry attempts for failed jobs
	RetryAttempts int
	// RetryDelay is the delay between retries
	RetryDelay time.Duration
}

// DefaultBillingCronSchedulerConfig returns default cron scheduler configuration.
// Defaults to generating on the 1st of the month.
func DefaultBillingCronSchedulerConfig() BillingCronSchedulerConfig {
	return BillingCronSchedulerConfig{
		Enabled:              true,
		GenerationDay:        1,
		CheckInterval:        time.Hour,
		OverdueCheckInterval: 24 * time.Hour,
		JobTimeout:           30 * time.Minute,
		MaxConcurrentJobs:    2,
		RetryAttempts:        3,
		RetryDelay:           5 * time.Minute,
	}
}

// Validate checks the configuration
func (c BillingCronSchedulerConfig) Validate() error {
	if c.GenerationDay < 1 || c.GenerationDay > 28 {
		return ErrInvalidConfig
	}
	if c.CheckInterval <= 0 || c.OverdueCheckInterval <= 0 {
		return ErrInvalidConfig
	}
	return nil
}

// BillingJobRecord represents a persisted record of a scheduled job run
type BillingJobRecord struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	OrgID       uuid.UUID  `gorm:"column:org_id;type:uuid;not null"`
	JobType     string     `gorm:"column:job_type;size:50;not null"`
	PeriodYear  int        `gorm:"column:period_year"`
	PeriodMonth int        `gorm:"column:period_month"`
	Status      string     `gorm:"column:status;size:20"`
	Error       string     `gorm:"column:error;type:text"`
	StartedAt   *time.Time `gorm:"column:started_at"`
	CompletedAt *time.Time `gorm:"column:completed_at"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at"`
}

// TableName returns the table name for GORM
func (BillingJobRecord) TableName() string {
	return "billing_scheduler_jobs"
}

// BillingJobRepository handles persistence of scheduler job records
type BillingJobRepository struct {
	db *gorm.DB
}

// NewBillingJobRepository creates a new BillingJobRepository
func NewBillingJobRepository(db *gorm.DB) *BillingJobRepository {
	return &BillingJobRepository{db: db}
}

// RecordJobStart records the start of a job execution
func (r *BillingJobRepository) RecordJobStart(ctx context.Context, job *Job) (uuid.UUID, error) {
	now := time.Now()
	record := &BillingJobRecord{
		ID:          uuid.New(),
		OrgID:       job.OrgID,
		JobType:     string(job.Type),
		PeriodYear:  job.Year,
		PeriodMonth: int(job.Month),
		Status:      string(JobStatusRunning),
		StartedAt:   &now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := r.db.WithContext(ctx).Unscoped().Create(record).Error; err != nil {
		return uuid.Nil, err
	}
	return record.ID, nil
}

// RecordJobComplete records the completion of a job
func (r *BillingJobRepository) RecordJobComplete(ctx context.Context, recordID uuid.UUID, success bool, errMsg string) error {
	now := time.Now()
	status := string(JobStatusSuccess)
	if !success {
		status = string(JobStatusFailed)
	}
	return r.db.WithContext(ctx).Unscoped().
		Model(&BillingJobRecord{}).
		Where("id = ?", recordID).
		Updates(map[string]any{
			"status":       status,
			"error":        errMsg,
			"completed_at": now,
			"updated_at":   now,
		}).Error
}

// HasActiveOrSuccessfulRun reports whether a run for the org and
// period is in flight or already completed. Used to avoid re-enqueuing
// on every tick; the invoice unique constraint is the hard backstop.
func (r *BillingJobRepository) HasActiveOrSuccessfulRun(ctx context.Context, orgID uuid.UUID, jobType JobType, year int, month time.Month) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Unscoped().
		Model(&BillingJobRecord{}).
		Where("org_id = ? AND job_type = ? AND period_year = ? AND period_month = ? AND status IN ?",
			orgID, string(jobType), year, int(month),
			[]string{string(JobStatusRunning), string(JobStatusSuccess)}).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// BillingCronScheduler drives periodic invoice generation and overdue
// recalculation across all active organizations.
type BillingCronScheduler struct {
	config    BillingCronSchedulerConfig
	executor  JobExecutor
	orgRepo   identity.OrganizationRepository
	jobRepo   *BillingJobRepository
	logger    *zap.Logger
	scheduler *Scheduler

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool

	lastGenerationAt *time.Time
	lastOverdueAt    *time.Time
}

// NewBillingCronScheduler creates a new billing cron scheduler
func NewBillingCronScheduler(
	config BillingCronSchedulerConfig,
	executor JobExecutor,
	orgRepo identity.OrganizationRepository,
	jobRepo *BillingJobRepository,
	logger *zap.Logger,
) (*BillingCronScheduler, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	poolConfig := PoolConfig{
		MaxConcurrentJobs: config.MaxConcurrentJobs,
		JobTimeout:        config.JobTimeout,
		RetryAttempts:     config.RetryAttempts,
		RetryDelay:        config.RetryDelay,
	}

	return &BillingCronScheduler{
		config:    config,
		executor:  executor,
		orgRepo:   orgRepo,
		jobRepo:   jobRepo,
		logger:    logger,
		scheduler: NewScheduler(poolConfig, executor, logger),
	}, nil
}

// Start starts the cron scheduler
func (s *BillingCronScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	if err := s.scheduler.Start(ctx); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(2)
	go s.generationLoop(ctx)
	go s.overdueLoop(ctx)

	s.logger.Info("Billing cron scheduler started",
		zap.Int("generation_day", s.config.GenerationDay),
		zap.Duration("check_interval", s.config.CheckInterval),
		zap.Duration("overdue_check_interval", s.config.OverdueCheckInterval),
	)

	return nil
}

// Stop stops the cron scheduler
func (s *BillingCronScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		if err := s.scheduler.Stop(ctx); err != nil {
			s.logger.Warn("Error stopping job scheduler", zap.Error(err))
		}
		s.logger.Info("Billing cron scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Billing cron scheduler stop timed out")
		return ctx.Err()
	}
}

// generationLoop periodically checks whether the current month's
// invoices are due to be generated.
func (s *BillingCronScheduler) generationLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.CheckInterval)
	defer ticker.Stop()

	// Evaluate once at startup so a restart on the generation day does
	// not wait a full interval.
	s.maybeRunGeneration(ctx, time.Now())

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.maybeRunGeneration(ctx, now)
		}
	}
}

// overdueLoop periodically enqueues overdue recalculation for all orgs
func (s *BillingCronScheduler) overdueLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.OverdueCheckInterval)
	defer ticker.Stop()

	s.runOverdueRecalculation(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOverdueRecalculation(ctx)
		}
	}
}

// generationDue reports whether invoices for now's month should exist
func (s *BillingCronScheduler) generationDue(now time.Time) bool {
	return now.Day() >= s.config.GenerationDay
}

// maybeRunGeneration enqueues generation jobs for the current month
// when the generation day has been reached. Orgs that already have a
// successful run for the period are skipped.
func (s *BillingCronScheduler) maybeRunGeneration(ctx context.Context, now time.Time) {
	if !s.generationDue(now) {
		return
	}

	year, month := now.Year(), now.Month()

	orgs, err := s.orgRepo.FindActive(ctx)
	if err != nil {
		s.logger.Error("Failed to fetch active organizations for generation", zap.Error(err))
		return
	}

	enqueued := 0
	for _, org := range orgs {
		if s.jobRepo != nil {
			done, err := s.jobRepo.HasActiveOrSuccessfulRun(ctx, org.ID, JobTypeGeneration, year, month)
			if err != nil {
				s.logger.Warn("Failed to check previous generation run",
					zap.String("org_id", org.ID.String()),
					zap.Error(err),
				)
			} else if done {
				continue
			}
		}

		job := NewJob(org.ID, JobTypeGeneration, year, month, s.config.RetryAttempts)
		if s.jobRepo != nil {
			recordID, recordErr := s.jobRepo.RecordJobStart(ctx, job)
			if recordErr != nil {
				s.logger.Warn("Failed to record job start",
					zap.String("org_id", org.ID.String()),
					zap.Error(recordErr),
				)
			} else {
				job.RecordID = &recordID
			}
		}

		if err := s.scheduler.SubmitJob(job); err != nil {
			s.logger.Error("Failed to submit generation job",
				zap.String("org_id", org.ID.String()),
				zap.Error(err),
			)
			if s.jobRepo != nil && job.RecordID != nil {
				_ = s.jobRepo.RecordJobComplete(ctx, *job.RecordID, false, err.Error())
			}
			continue
		}
		enqueued++
	}

	if enqueued > 0 {
		t := time.Now()
		s.mu.Lock()
		s.lastGenerationAt = &t
		s.mu.Unlock()

		s.logger.Info("Monthly generation jobs enqueued",
			zap.Int("year", year),
			zap.String("month", month.String()),
			zap.Int("org_count", enqueued),
		)
	}
}

// runOverdueRecalculation enqueues overdue recalculation for all orgs
func (s *BillingCronScheduler) runOverdueRecalculation(ctx context.Context) {
	orgs, err := s.orgRepo.FindActive(ctx)
	if err != nil {
		s.logger.Error("Failed to fetch active organizations for overdue recalculation", zap.Error(err))
		return
	}

	now := time.Now()
	for _, org := range orgs {
		job := NewJob(org.ID, JobTypeOverdueRecalc, now.Year(), now.Month(), s.config.RetryAttempts)
		if err := s.scheduler.SubmitJob(job); err != nil {
			s.logger.Error("Failed to submit overdue recalculation job",
				zap.String("org_id", org.ID.String()),
				zap.Error(err),
			)
		}
	}

	s.mu.Lock()
	s.lastOverdueAt = &now
	s.mu.Unlock()

	s.logger.Debug("Overdue recalculation jobs enqueued", zap.Int("org_count", len(orgs)))
}

// TriggerGeneration triggers generation for one org and period without
// waiting for the cron condition. Runs in the background so an HTTP
// caller is not held for the full run.
func (s *BillingCronScheduler) TriggerGeneration(orgID uuid.UUID, year int, month time.Month) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return ErrSchedulerNotRunning
	}
	s.mu.Unlock()

	job := NewJob(orgID, JobTypeGeneration, year, month, s.config.RetryAttempts)
	return s.scheduler.SubmitJob(job)
}

// GetStatus returns the current status of the cron scheduler
func (s *BillingCronScheduler) GetStatus() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	return map[string]any{
		"enabled":                s.config.Enabled,
		"is_running":             s.isRunning,
		"generation_day":         s.config.GenerationDay,
		"check_interval":         s.config.CheckInterval.String(),
		"overdue_check_interval": s.config.OverdueCheckInterval.String(),
		"last_generation_at":     s.lastGenerationAt,
		"last_overdue_at":        s.lastOverdueAt,
	}
}
