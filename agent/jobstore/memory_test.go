package jobstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/raviakasapu/auto-ai-agent-framework/agent"
	"github.com/raviakasapu/auto-ai-agent-framework/agent/jobstore"
)

func fixedClock(t time.Time) func() time.Time { return func() time.Time { return t } }

func TestMemoryStoreCreateAndGetJob(t *testing.T) {
	ctx := context.Background()
	store := jobstore.NewMemoryStore(fixedClock(time.Unix(0, 0)))

	require.NoError(t, store.CreateJob(ctx, "job1"))
	job, err := store.GetJob(ctx, "job1")
	require.NoError(t, err)
	require.Equal(t, "job1", job.JobID)
	require.Equal(t, agent.JobRunning, job.Status)
}

func TestMemoryStoreGetJobMissing(t *testing.T) {
	store := jobstore.NewMemoryStore(nil)
	_, err := store.GetJob(context.Background(), "missing")
	require.ErrorIs(t, err, jobstore.ErrNotFound)
}

func TestMemoryStoreReturnedJobIsDefensiveCopy(t *testing.T) {
	ctx := context.Background()
	store := jobstore.NewMemoryStore(nil)
	require.NoError(t, store.CreateJob(ctx, "job1"))

	job, err := store.GetJob(ctx, "job1")
	require.NoError(t, err)
	job.ExecutedActions["mutated"] = true

	job2, err := store.GetJob(ctx, "job1")
	require.NoError(t, err)
	require.False(t, job2.ExecutedActions["mutated"], "mutating a returned Job must not affect the store")
}

func TestMemoryStorePendingActionLifecycle(t *testing.T) {
	ctx := context.Background()
	store := jobstore.NewMemoryStore(nil)
	require.NoError(t, store.CreateJob(ctx, "job1"))

	action := agent.PendingAction{Worker: "worker1", Tool: "add_table"}
	require.NoError(t, store.SavePendingAction(ctx, "job1", action))

	job, err := store.GetJob(ctx, "job1")
	require.NoError(t, err)
	require.Equal(t, agent.JobAwaitingApproval, job.Status)
	require.NotNil(t, job.PendingAction)

	require.NoError(t, store.ClearPendingAction(ctx, "job1"))
	job, err = store.GetJob(ctx, "job1")
	require.NoError(t, err)
	require.Equal(t, agent.JobRunning, job.Status)
	require.Nil(t, job.PendingAction)
}

func TestMemoryStoreExecutedActionsSetAndCheck(t *testing.T) {
	ctx := context.Background()
	store := jobstore.NewMemoryStore(nil)
	require.NoError(t, store.CreateJob(ctx, "job1"))

	sig := agent.ActionSignature("add_table", map[string]any{"name": "Sales"})
	has, err := store.HasExecutedAction(ctx, "job1", sig)
	require.NoError(t, err)
	require.False(t, has)

	require.NoError(t, store.AddExecutedAction(ctx, "job1", sig))
	has, err = store.HasExecutedAction(ctx, "job1", sig)
	require.NoError(t, err)
	require.True(t, has)
}

func TestMemoryStoreBumpPhasePerManager(t *testing.T) {
	ctx := context.Background()
	store := jobstore.NewMemoryStore(nil)
	require.NoError(t, store.CreateJob(ctx, "job1"))

	next, err := store.BumpPhase(ctx, "job1", "manager1")
	require.NoError(t, err)
	require.Equal(t, 1, next)

	next, err = store.BumpPhase(ctx, "job1", "manager2")
	require.NoError(t, err)
	require.Equal(t, 1, next, "phase counters are tracked per manager, independently")
}
