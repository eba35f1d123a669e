package jobstore

import (
	"context"
	"sync"
	"time"

	"github.com/raviakasapu/auto-ai-agent-framework/agent"
)

// MemoryStore is an in-process Store backed by a mutex-protected map. It is
// the default store for single-node deployments and for tests; redisstore.Store
// is the durable alternative for deployments that need the job record to
// survive a process restart.
type MemoryStore struct {
	mu   sync.Mutex
	jobs map[string]*agent.Job
	now  func() time.Time
}

// NewMemoryStore constructs an empty MemoryStore. now defaults to
// time.Now when nil.
func NewMemoryStore(now func() time.Time) *MemoryStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryStore{jobs: make(map[string]*agent.Job), now: now}
}

func (s *MemoryStore) CreateJob(_ context.Context, jobID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job := agent.NewJob(jobID, s.now())
	s.jobs[jobID] = &job
	return nil
}

func (s *MemoryStore) GetJob(_ context.Context, jobID string) (agent.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return agent.Job{}, ErrNotFound
	}
	return cloneJob(*job), nil
}

func (s *MemoryStore) UpdateOrchestratorPlan(_ context.Context, jobID string, plan agent.StrategicPlan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return ErrNotFound
	}
	planCopy := plan
	job.OrchestratorPlan = &planCopy
	job.UpdatedAt = s.now()
	return nil
}

func (s *MemoryStore) UpdateManagerPlan(_ context.Context, jobID, managerName string, plan agent.StrategicPlan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return ErrNotFound
	}
	planCopy := plan
	job.ManagerPlans[managerName] = &planCopy
	job.UpdatedAt = s.now()
	return nil
}

func (s *MemoryStore) SavePendingAction(_ context.Context, jobID string, action agent.PendingAction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return ErrNotFound
	}
	job.PendingAction = &action
	job.Status = agent.JobAwaitingApproval
	job.UpdatedAt = s.now()
	return nil
}

func (s *MemoryStore) ClearPendingAction(_ context.Context, jobID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return ErrNotFound
	}
	job.PendingAction = nil
	job.Status = agent.JobRunning
	job.UpdatedAt = s.now()
	return nil
}

func (s *MemoryStore) AddExecutedAction(_ context.Context, jobID, signature string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return ErrNotFound
	}
	job.ExecutedActions[signature] = true
	job.UpdatedAt = s.now()
	return nil
}

func (s *MemoryStore) HasExecutedAction(_ context.Context, jobID, signature string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return false, ErrNotFound
	}
	return job.ExecutedActions[signature], nil
}

func (s *MemoryStore) BumpPhase(_ context.Context, jobID, managerName string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return 0, ErrNotFound
	}
	job.PhaseIndexByManager[managerName]++
	job.UpdatedAt = s.now()
	return job.PhaseIndexByManager[managerName], nil
}

// cloneJob returns a deep-enough copy of job so callers can't mutate the
// store's internal maps through a returned value.
func cloneJob(job agent.Job) agent.Job {
	out := job
	out.ManagerPlans = make(map[string]*agent.StrategicPlan, len(job.ManagerPlans))
	for k, v := range job.ManagerPlans {
		if v == nil {
			out.ManagerPlans[k] = nil
			continue
		}
		planCopy := *v
		out.ManagerPlans[k] = &planCopy
	}
	out.PhaseIndexByManager = make(map[string]int, len(job.PhaseIndexByManager))
	for k, v := range job.PhaseIndexByManager {
		out.PhaseIndexByManager[k] = v
	}
	out.Approvals = make(map[string]bool, len(job.Approvals))
	for k, v := range job.Approvals {
		out.Approvals[k] = v
	}
	out.ExecutedActions = make(map[string]bool, len(job.ExecutedActions))
	for k, v := range job.ExecutedActions {
		out.ExecutedActions[k] = v
	}
	if job.OrchestratorPlan != nil {
		planCopy := *job.OrchestratorPlan
		out.OrchestratorPlan = &planCopy
	}
	if job.PendingAction != nil {
		actionCopy := *job.PendingAction
		out.PendingAction = &actionCopy
	}
	return out
}
