// Package redisstore is a Redis-backed implementation of jobstore.Store,
// for deployments that need a job record to survive a process restart.
// Each job is stored as a JSON blob under a single key plus a
// companion Redis set for the executed-action signatures, so
// AddExecutedAction/HasExecutedAction don't require a read-modify-write of
// the whole job document.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/raviakasapu/auto-ai-agent-framework/agent"
	"github.com/raviakasapu/auto-ai-agent-framework/agent/jobstore"
)

// Options configures a Store.
type Options struct {
	// Redis is the client used for all operations. Required.
	Redis *redis.Client
	// KeyPrefix namespaces every key this store writes. Defaults to "agentjob".
	KeyPrefix string
	// TTL expires job records after inactivity, 0 disables expiry.
	TTL time.Duration
}

// Store is a Redis-backed jobstore.Store.
type Store struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// New constructs a Store from opts.
func New(opts Options) (*Store, error) {
	if opts.Redis == nil {
		return nil, errors.New("redisstore: redis client is required")
	}
	prefix := opts.KeyPrefix
	if prefix == "" {
		prefix = "agentjob"
	}
	return &Store{rdb: opts.Redis, prefix: prefix, ttl: opts.TTL}, nil
}

var _ jobstore.Store = (*Store)(nil)

func (s *Store) jobKey(jobID string) string       { return fmt.Sprintf("%s:job:%s", s.prefix, jobID) }
func (s *Store) executedKey(jobID string) string   { return fmt.Sprintf("%s:executed:%s", s.prefix, jobID) }

func (s *Store) CreateJob(ctx context.Context, jobID string) error {
	job := agent.NewJob(jobID, time.Now())
	return s.put(ctx, jobID, job)
}

func (s *Store) GetJob(ctx context.Context, jobID string) (agent.Job, error) {
	raw, err := s.rdb.Get(ctx, s.jobKey(jobID)).Result()
	if errors.Is(err, redis.Nil) {
		return agent.Job{}, jobstore.ErrNotFound
	}
	if err != nil {
		return agent.Job{}, fmt.Errorf("redisstore: get job %s: %w", jobID, err)
	}
	var job agent.Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		return agent.Job{}, fmt.Errorf("redisstore: decode job %s: %w", jobID, err)
	}
	members, err := s.rdb.SMembers(ctx, s.executedKey(jobID)).Result()
	if err != nil {
		return agent.Job{}, fmt.Errorf("redisstore: list executed actions %s: %w", jobID, err)
	}
	if job.ExecutedActions == nil {
		job.ExecutedActions = make(map[string]bool, len(members))
	}
	for _, sig := range members {
		job.ExecutedActions[sig] = true
	}
	return job, nil
}

func (s *Store) UpdateOrchestratorPlan(ctx context.Context, jobID string, plan agent.StrategicPlan) error {
	job, err := s.getWithoutExecuted(ctx, jobID)
	if err != nil {
		return err
	}
	planCopy := plan
	job.OrchestratorPlan = &planCopy
	job.UpdatedAt = time.Now()
	return s.put(ctx, jobID, job)
}

func (s *Store) UpdateManagerPlan(ctx context.Context, jobID, managerName string, plan agent.StrategicPlan) error {
	job, err := s.getWithoutExecuted(ctx, jobID)
	if err != nil {
		return err
	}
	if job.ManagerPlans == nil {
		job.ManagerPlans = make(map[string]*agent.StrategicPlan)
	}
	planCopy := plan
	job.ManagerPlans[managerName] = &planCopy
	job.UpdatedAt = time.Now()
	return s.put(ctx, jobID, job)
}

func (s *Store) SavePendingAction(ctx context.Context, jobID string, action agent.PendingAction) error {
	job, err := s.getWithoutExecuted(ctx, jobID)
	if err != nil {
		return err
	}
	job.PendingAction = &action
	job.Status = agent.JobAwaitingApproval
	job.UpdatedAt = time.Now()
	return s.put(ctx, jobID, job)
}

func (s *Store) ClearPendingAction(ctx context.Context, jobID string) error {
	job, err := s.getWithoutExecuted(ctx, jobID)
	if err != nil {
		return err
	}
	job.PendingAction = nil
	job.Status = agent.JobRunning
	job.UpdatedAt = time.Now()
	return s.put(ctx, jobID, job)
}

func (s *Store) AddExecutedAction(ctx context.Context, jobID, signature string) error {
	if err := s.rdb.SAdd(ctx, s.executedKey(jobID), signature).Err(); err != nil {
		return fmt.Errorf("redisstore: add executed action %s: %w", jobID, err)
	}
	if s.ttl > 0 {
		_ = s.rdb.Expire(ctx, s.executedKey(jobID), s.ttl).Err()
	}
	return nil
}

func (s *Store) HasExecutedAction(ctx context.Context, jobID, signature string) (bool, error) {
	ok, err := s.rdb.SIsMember(ctx, s.executedKey(jobID), signature).Result()
	if err != nil {
		return false, fmt.Errorf("redisstore: check executed action %s: %w", jobID, err)
	}
	return ok, nil
}

func (s *Store) BumpPhase(ctx context.Context, jobID, managerName string) (int, error) {
	job, err := s.getWithoutExecuted(ctx, jobID)
	if err != nil {
		return 0, err
	}
	if job.PhaseIndexByManager == nil {
		job.PhaseIndexByManager = make(map[string]int)
	}
	job.PhaseIndexByManager[managerName]++
	next := job.PhaseIndexByManager[managerName]
	job.UpdatedAt = time.Now()
	if err := s.put(ctx, jobID, job); err != nil {
		return 0, err
	}
	return next, nil
}

func (s *Store) getWithoutExecuted(ctx context.Context, jobID string) (agent.Job, error) {
	raw, err := s.rdb.Get(ctx, s.jobKey(jobID)).Result()
	if errors.Is(err, redis.Nil) {
		return agent.Job{}, jobstore.ErrNotFound
	}
	if err != nil {
		return agent.Job{}, fmt.Errorf("redisstore: get job %s: %w", jobID, err)
	}
	var job agent.Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		return agent.Job{}, fmt.Errorf("redisstore: decode job %s: %w", jobID, err)
	}
	return job, nil
}

func (s *Store) put(ctx context.Context, jobID string, job agent.Job) error {
	encoded, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("redisstore: encode job %s: %w", jobID, err)
	}
	if err := s.rdb.Set(ctx, s.jobKey(jobID), encoded, s.ttl).Err(); err != nil {
		return fmt.Errorf("redisstore: put job %s: %w", jobID, err)
	}
	return nil
}
