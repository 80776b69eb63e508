package job_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glbobx/glbobx-api/internal/domain"
	"github.com/glbobx/glbobx-api/internal/job"
	"github.com/glbobx/glbobx-api/internal/platform/memstore"
	"github.com/glbobx/glbobx-api/internal/store"
)

func instantConvert(archive string, artifacts ...string) job.ConvertFunc {
	return func(ctx context.Context, payload []byte, filename string) ([]byte, []string, error) {
		return []byte(archive), artifacts, nil
	}
}

func failingConvert(err error) job.ConvertFunc {
	return func(ctx context.Context, payload []byte, filename string) ([]byte, []string, error) {
		return nil, nil, err
	}
}

// newTestManager builds a started manager over a fresh in-memory store
// and stops it when the test ends.
func newTestManager(t *testing.T, config job.ManagerConfig, convert job.ConvertFunc) (*job.Manager, *memstore.MemoryJobStore) {
	t.Helper()

	log := discardLogger()
	jobStore := memstore.NewMemoryJobStore(log)
	m := job.NewManager(jobStore, convert, config, log)
	m.Start()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = m.Stop(ctx)
	})
	return m, jobStore
}

func waitForStatus(t *testing.T, m *job.Manager, id uuid.UUID, want domain.JobStatus) *domain.Job {
	t.Helper()

	var got *domain.Job
	require.Eventually(t, func() bool {
		j, err := m.Get(context.Background(), id)
		if err != nil {
			return false
		}
		got = j
		return j.Status == want
	}, 5*time.Second, 10*time.Millisecond, "job never reached status %s", want)
	return got
}

func totalRecords(t *testing.T, m *job.Manager) int {
	t.Helper()

	stats, err := m.Stats(context.Background())
	require.NoError(t, err)
	total := 0
	for _, n := range stats.Counts {
		total += n
	}
	return total
}

func TestManagerLifecycleFinished(t *testing.T) {
	t.Parallel()

	m, _ := newTestManager(t, job.ManagerConfig{WorkerCount: 1, QueueSize: 8},
		instantConvert("archive-bytes", "scene.obj", "scene.mtl"))

	submitted, err := m.Submit(context.Background(), []byte{0x67, 0x6c, 0x54, 0x46}, "scene.glb")
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusQueued, submitted.Status)
	assert.NotEqual(t, uuid.Nil, submitted.ID)
	assert.False(t, submitted.CreatedAt.IsZero())

	final := waitForStatus(t, m, submitted.ID, domain.JobStatusFinished)
	assert.Equal(t, []byte("archive-bytes"), final.Archive)
	assert.Equal(t, []string{"scene.obj", "scene.mtl"}, final.Artifacts)
	assert.Empty(t, final.Detail)
	require.NotNil(t, final.StartedAt)
	require.NotNil(t, final.FinishedAt)
	assert.False(t, final.FinishedAt.Before(*final.StartedAt))
}

func TestManagerRejectsEmptyPayload(t *testing.T) {
	t.Parallel()

	m, _ := newTestManager(t, job.ManagerConfig{}, instantConvert("zip"))

	_, err := m.Submit(context.Background(), nil, "empty.glb")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEmptyPayload)

	// Rejected submissions leave nothing behind.
	assert.Equal(t, 0, totalRecords(t, m))
}

func TestManagerRecordsFailureDetail(t *testing.T) {
	t.Parallel()

	m, _ := newTestManager(t, job.ManagerConfig{WorkerCount: 1, QueueSize: 8},
		failingConvert(errors.New("model has no geometry")))

	submitted, err := m.Submit(context.Background(), []byte{1}, "flat.glb")
	require.NoError(t, err)

	final := waitForStatus(t, m, submitted.ID, domain.JobStatusFailed)
	assert.Equal(t, "model has no geometry", final.Detail)
	assert.Empty(t, final.Archive)
	assert.Empty(t, final.Artifacts)
}

func TestManagerRedactsFailureDetail(t *testing.T) {
	t.Parallel()

	m, _ := newTestManager(t, job.ManagerConfig{WorkerCount: 1, QueueSize: 8},
		failingConvert(errors.New("open /srv/models/scene.glb: permission denied")))

	submitted, err := m.Submit(context.Background(), []byte{1}, "scene.glb")
	require.NoError(t, err)

	final := waitForStatus(t, m, submitted.ID, domain.JobStatusFailed)
	assert.Equal(t, "open [REDACTED_PATH]: [REDACTED_FILE_ERROR]", final.Detail)
}

// TestManagerDeadlineBoundsExecutionNotQueueTime pins the scheduling
// contract: with a single worker, a slow job times out at the deadline
// while a fast job behind it stays queued, then runs and finishes once
// the slot frees. The fast job must never time out merely because it
// waited.
func TestManagerDeadlineBoundsExecutionNotQueueTime(t *testing.T) {
	t.Parallel()

	convert := func(ctx context.Context, payload []byte, filename string) ([]byte, []string, error) {
		if filename == "slow.glb" {
			// Deliberately ignores ctx: the slot stays busy past the
			// deadline, exercising the advisory-cancellation policy.
			time.Sleep(1200 * time.Millisecond)
		}
		return []byte("zip"), []string{"out.obj"}, nil
	}

	m, _ := newTestManager(t, job.ManagerConfig{
		WorkerCount:   1,
		QueueSize:     8,
		JobTimeout:    500 * time.Millisecond,
		Retention:     time.Hour,
		SweepInterval: time.Hour,
	}, convert)

	slow, err := m.Submit(context.Background(), []byte{1}, "slow.glb")
	require.NoError(t, err)
	waitForStatus(t, m, slow.ID, domain.JobStatusRunning)

	fast, err := m.Submit(context.Background(), []byte{1}, "fast.glb")
	require.NoError(t, err)

	// The deadline fires while the worker is still busy sleeping.
	timedOut := waitForStatus(t, m, slow.ID, domain.JobStatusTimeout)
	assert.Contains(t, timedOut.Detail, "Conversion exceeded")
	assert.Empty(t, timedOut.Archive)

	// At the moment the slow job times out its worker has not returned,
	// so the fast job is still waiting for the slot.
	waiting, err := m.Get(context.Background(), fast.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusQueued, waiting.Status)

	// Once the slot frees the fast job runs to completion.
	finished := waitForStatus(t, m, fast.ID, domain.JobStatusFinished)
	assert.Equal(t, []string{"out.obj"}, finished.Artifacts)
}

func TestManagerQueueFullKeepsNoRecord(t *testing.T) {
	t.Parallel()

	gate := make(chan struct{})
	defer close(gate)
	convert := func(ctx context.Context, payload []byte, filename string) ([]byte, []string, error) {
		select {
		case <-gate:
		case <-ctx.Done():
		}
		return []byte("zip"), nil, nil
	}

	m, _ := newTestManager(t, job.ManagerConfig{
		WorkerCount:   1,
		QueueSize:     1,
		Retention:     time.Hour,
		SweepInterval: time.Hour,
	}, convert)

	running, err := m.Submit(context.Background(), []byte{1}, "a.glb")
	require.NoError(t, err)
	waitForStatus(t, m, running.ID, domain.JobStatusRunning)

	_, err = m.Submit(context.Background(), []byte{1}, "b.glb")
	require.NoError(t, err)

	_, err = m.Submit(context.Background(), []byte{1}, "c.glb")
	require.Error(t, err)
	assert.ErrorIs(t, err, job.ErrQueueFull)

	// Only the accepted submissions have records.
	assert.Equal(t, 2, totalRecords(t, m))
}

func TestManagerReclaimHonorsRetention(t *testing.T) {
	t.Parallel()

	m, jobStore := newTestManager(t, job.ManagerConfig{
		Retention:     time.Hour,
		SweepInterval: time.Hour,
	}, instantConvert("zip"))

	now := time.Now().UTC()

	old := domain.NewJob("old.glb")
	old.CreatedAt = now.Add(-3 * time.Hour)
	require.NoError(t, old.MarkRunning(now.Add(-3*time.Hour)))
	require.NoError(t, old.MarkFinished([]byte("zip"), []string{"old.obj"}, now.Add(-2*time.Hour)))
	require.NoError(t, jobStore.Create(context.Background(), old))

	fresh := domain.NewJob("fresh.glb")
	require.NoError(t, jobStore.Create(context.Background(), fresh))

	removed, err := m.Reclaim(context.Background(), time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = m.Get(context.Background(), old.ID)
	assert.True(t, store.IsNotFoundError(err), "expected the expired record to be gone")

	_, err = m.Get(context.Background(), fresh.ID)
	require.NoError(t, err)

	// A zero max age clears everything that remains.
	removed, err = m.Reclaim(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
}

func TestManagerStopReclaimsEverything(t *testing.T) {
	t.Parallel()

	m, jobStore := newTestManager(t, job.ManagerConfig{WorkerCount: 1, QueueSize: 8},
		instantConvert("zip", "scene.obj"))

	submitted, err := m.Submit(context.Background(), []byte{1}, "scene.glb")
	require.NoError(t, err)
	waitForStatus(t, m, submitted.ID, domain.JobStatusFinished)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, m.Stop(ctx))

	counts, err := jobStore.Counts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, counts)
}

func TestManagerGetUnknown(t *testing.T) {
	t.Parallel()

	m, _ := newTestManager(t, job.ManagerConfig{}, instantConvert("zip"))

	_, err := m.Get(context.Background(), uuid.New())
	require.Error(t, err)
	assert.True(t, store.IsNotFoundError(err))
}

func TestManagerStats(t *testing.T) {
	t.Parallel()

	m, _ := newTestManager(t, job.ManagerConfig{WorkerCount: 3, QueueSize: 8},
		instantConvert("zip", "scene.obj"))

	submitted, err := m.Submit(context.Background(), []byte{1}, "scene.glb")
	require.NoError(t, err)
	waitForStatus(t, m, submitted.ID, domain.JobStatusFinished)

	stats, err := m.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Workers)
	assert.Equal(t, 1, stats.Counts[domain.JobStatusFinished])
	assert.Equal(t, 0, stats.QueueDepth)
	assert.Equal(t, 8, stats.QueueCapacity)
}
