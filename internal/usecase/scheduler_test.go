package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"GovernanceWeekly/internal/classifier"
	"GovernanceWeekly/internal/keywords"
)

func TestSchedulerRegistersBothJobs(t *testing.T) {
	t.Parallel()

	repo := newMemRepo()
	source := &stubSource{}
	collect := newCollect(repo, source)
	renderer := &stubRenderer{}
	report := newReport(repo, renderer, nil, t.TempDir())

	driver := &stubDriver{}
	s := NewScheduler(driver, collect, "0 8 * * 1-3", report, "0 16 * * 5", nil)
	require.NoError(t, s.Start(context.Background()))

	assert.True(t, driver.started)
	assert.Equal(t, []string{"0 8 * * 1-3", "0 16 * * 5"}, driver.specs)

	trigger := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	driver.jobs[0](trigger)
	assert.Equal(t, 1, source.calls)

	driver.jobs[1](trigger)
	assert.Equal(t, trigger.AddDate(0, 0, -7), repo.since)
	assert.Empty(t, renderer.reports)

	require.NoError(t, s.Stop(context.Background()))
	assert.True(t, driver.stopped)
}

func TestSchedulerRejectsBadSpec(t *testing.T) {
	t.Parallel()

	collect := NewCollectPipeline(CollectDeps{Classifier: classifier.New(keywords.Default())})
	driver := &stubDriver{}
	s := NewScheduler(driver, collect, "bad", nil, "", nil)

	assert.Error(t, s.Start(context.Background()))
	assert.False(t, driver.started)
}
