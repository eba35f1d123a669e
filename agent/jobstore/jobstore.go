// Package jobstore implements the external Job Store contract: job
// lifecycle, per-manager plan tracking, pending-action checkpoints, and the
// executed-action signature set the HITL policy consults.
package jobstore

import (
	"context"
	"errors"

	"github.com/raviakasapu/auto-ai-agent-framework/agent"
)

// ErrNotFound is returned by any operation addressing a job ID the store
// has no record of.
var ErrNotFound = errors.New("jobstore: job not found")

// Store is the external Job Store contract. Implementations must be
// safe for concurrent use: actions within one job's parallel batch may
// call AddExecutedAction concurrently.
type Store interface {
	CreateJob(ctx context.Context, jobID string) error
	GetJob(ctx context.Context, jobID string) (agent.Job, error)
	UpdateOrchestratorPlan(ctx context.Context, jobID string, plan agent.StrategicPlan) error
	UpdateManagerPlan(ctx context.Context, jobID, managerName string, plan agent.StrategicPlan) error
	SavePendingAction(ctx context.Context, jobID string, action agent.PendingAction) error
	ClearPendingAction(ctx context.Context, jobID string) error
	AddExecutedAction(ctx context.Context, jobID, signature string) error
	HasExecutedAction(ctx context.Context, jobID, signature string) (bool, error)
	BumpPhase(ctx context.Context, jobID, managerName string) (int, error)
}
