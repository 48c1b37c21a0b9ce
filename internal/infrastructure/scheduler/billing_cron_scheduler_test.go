package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/domain/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeOrgRepository serves a fixed list of organizations
type fakeOrgRepository struct {
	orgs []identity.Organization
	err  error
}

func (f *fakeOrgRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Organization, error) {
	for i := range f.orgs {
		if f.orgs[i].ID == id {
			return &f.orgs[i], nil
		}
	}
	return nil, f.err
}

func (f *fakeOrgRepository) FindByCode(ctx context.Context, code string) (*identity.Organization, error) {
	return nil, f.err
}

func (f *fakeOrgRepository) FindActive(ctx context.Context) ([]identity.Organization, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.orgs, nil
}

func (f *fakeOrgRepository) Save(ctx context.Context, org *identity.Organization) error {
	return nil
}

func newFakeOrgRepository(t *testing.T, count int) *fakeOrgRepository {
	repo := &fakeOrgRepository{}
	for i := 0; i < count; i++ {
		org, err := identity.NewOrganization(
			"ORG-"+uuid.NewString()[:8],
			"Test Organization",
		)
		require.NoError(t, err)
		repo.orgs = append(repo.orgs, *org)
	}
	return repo
}

func testCronConfig() BillingCronSchedulerConfig {
	cfg := DefaultBillingCronSchedulerConfig()
	cfg.CheckInterval = time.Hour
	cfg.OverdueCheckInterval = time.Hour
	cfg.RetryDelay = time.Millisecond
	return cfg
}

func TestDefaultBillingCronSchedulerConfig(t *testing.T) {
	cfg := DefaultBillingCronSchedulerConfig()

	assert.True(t, cfg.Enabled)
	assert.Equal(t, 1, cfg.GenerationDay)
	assert.Equal(t, time.Hour, cfg.CheckInterval)
	assert.Equal(t, 24*time.Hour, cfg.OverdueCheckInterval)
	assert.Equal(t, 30*time.Minute, cfg.JobTimeout)
	assert.Equal(t, 3, cfg.RetryAttempts)
	assert.NoError(t, cfg.Validate())
}

func TestBillingCronSchedulerConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*BillingCronSchedulerConfig)
		valid  bool
	}{
		{"defaults", func(c *BillingCronSchedulerConfig) {}, true},
		{"generation day 28", func(c *BillingCronSchedulerConfig) { c.GenerationDay = 28 }, true},
		{"generation day 0", func(c *BillingCronSchedulerConfig) { c.GenerationDay = 0 }, false},
		{"generation day 29", func(c *BillingCronSchedulerConfig) { c.GenerationDay = 29 }, false},
		{"zero check interval", func(c *BillingCronSchedulerConfig) { c.CheckInterval = 0 }, false},
		{"zero overdue interval", func(c *BillingCronSchedulerConfig) { c.OverdueCheckInterval = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultBillingCronSchedulerConfig()
			tt.modify(&cfg)
			if tt.valid {
				assert.NoError(t, cfg.Validate())
			} else {
				assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
			}
		})
	}
}

func TestNewBillingCronScheduler_InvalidConfig(t *testing.T) {
	cfg := DefaultBillingCronSchedulerConfig()
	cfg.GenerationDay = 31

	_, err := NewBillingCronScheduler(cfg, newMockExecutor(), newFakeOrgRepository(t, 0), nil, zap.NewNop())
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestBillingCronScheduler_GenerationDue(t *testing.T) {
	cfg := testCronConfig()
	cfg.GenerationDay = 5
	s, err := NewBillingCronScheduler(cfg, newMockExecutor(), newFakeOrgRepository(t, 0), nil, zap.NewNop())
	require.NoError(t, err)

	assert.False(t, s.generationDue(time.Date(2026, 9, 4, 23, 0, 0, 0, time.UTC)))
	assert.True(t, s.generationDue(time.Date(2026, 9, 5, 0, 0, 0, 0, time.UTC)))
	assert.True(t, s.generationDue(time.Date(2026, 9, 20, 12, 0, 0, 0, time.UTC)))
}

func TestBillingCronScheduler_StartEnqueuesJobs(t *testing.T) {
	executor := newMockExecutor()
	orgRepo := newFakeOrgRepository(t, 2)

	s, err := NewBillingCronScheduler(testCronConfig(), executor, orgRepo, nil, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, s.Start(context.Background()))
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = s.Stop(stopCtx)
	}()

	// Startup evaluation enqueues a generation and an overdue job
	// per org (generation day 1 is always due).
	for i := 0; i < 4; i++ {
		select {
		case <-executor.done:
		case <-time.After(3 * time.Second):
			t.Fatalf("expected 4 jobs, got %d", executor.executedCount())
		}
	}

	generation, overdue := 0, 0
	executor.mu.Lock()
	for _, job := range executor.executed {
		switch job.Type {
		case JobTypeGeneration:
			generation++
		case JobTypeOverdueRecalc:
			overdue++
		}
	}
	executor.mu.Unlock()

	assert.Equal(t, 2, generation)
	assert.Equal(t, 2, overdue)
}

func TestBillingCronScheduler_TriggerGeneration_NotRunning(t *testing.T) {
	s, err := NewBillingCronScheduler(testCronConfig(), newMockExecutor(), newFakeOrgRepository(t, 1), nil, zap.NewNop())
	require.NoError(t, err)

	err = s.TriggerGeneration(uuid.New(), 2026, time.September)
	assert.ErrorIs(t, err, ErrSchedulerNotRunning)
}

func TestBillingCronScheduler_GetStatus(t *testing.T) {
	s, err := NewBillingCronScheduler(testCronConfig(), newMockExecutor(), newFakeOrgRepository(t, 0), nil, zap.NewNop())
	require.NoError(t, err)

	status := s.GetStatus()
	assert.Equal(t, true, status["enabled"])
	assert.Equal(t, false, status["is_running"])
	assert.Equal(t, 1, status["generation_day"])
}

func TestAllJobTypes(t *testing.T) {
	types := AllJobTypes()
	assert.Len(t, types, 2)
	assert.Contains(t, types, JobTypeGeneration)
	assert.Contains(t, types, JobTypeOverdueRecalc)
}
