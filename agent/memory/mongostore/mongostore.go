// Package mongostore is an optional durable mirror of the Shared State
// Store's global feed, for deployments that want a job's
// global-visibility updates to survive a process restart. The in-process
// memory.Store remains the source of truth while a job is running; a Sink
// only records a replayable copy of AppendGlobal calls and lets a fresh
// process rehydrate a namespace's global feed after a restart.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/raviakasapu/auto-ai-agent-framework/agent"
)

const (
	defaultCollection = "agent_global_feed"
	defaultTimeout    = 5 * time.Second
)

// Options configures a Sink.
type Options struct {
	// Client is the Mongo client all operations run against. Required.
	Client *mongo.Client
	// Database is the database name. Required.
	Database string
	// Collection defaults to "agent_global_feed".
	Collection string
	// Timeout bounds every operation. Defaults to 5s.
	Timeout time.Duration
}

// Sink durably mirrors a namespace's global feed.
type Sink struct {
	coll    *mongo.Collection
	timeout time.Duration
}

// New constructs a Sink and ensures its supporting index exists.
func New(ctx context.Context, opts Options) (*Sink, error) {
	if opts.Client == nil {
		return nil, errors.New("mongostore: client is required")
	}
	if opts.Database == "" {
		return nil, errors.New("mongostore: database is required")
	}
	collName := opts.Collection
	if collName == "" {
		collName = defaultCollection
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	coll := opts.Client.Database(opts.Database).Collection(collName)

	ictx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	index := mongo.IndexModel{
		Keys:    bson.D{{Key: "namespace", Value: 1}, {Key: "seq", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := coll.Indexes().CreateOne(ictx, index); err != nil {
		return nil, fmt.Errorf("mongostore: ensure index: %w", err)
	}
	return &Sink{coll: coll, timeout: timeout}, nil
}

// feedDocument is one durable global-feed entry, keyed so a retried Append
// is an idempotent upsert rather than a duplicate row.
type feedDocument struct {
	Namespace string      `bson:"namespace"`
	Seq       int64       `bson:"seq"`
	Message   feedMessage `bson:"message"`
	StoredAt  time.Time   `bson:"stored_at"`
}

type feedMessage struct {
	Type        string         `bson:"type"`
	Content     any            `bson:"content,omitempty"`
	Tool        string         `bson:"tool,omitempty"`
	Args        map[string]any `bson:"args,omitempty"`
	FromManager string         `bson:"from_manager,omitempty"`
	FromWorker  string         `bson:"from_worker,omitempty"`
	Summary     string         `bson:"summary,omitempty"`
	PhaseID     int            `bson:"phase_id,omitempty"`
	HasPhaseID  bool           `bson:"has_phase_id,omitempty"`
	Timestamp   time.Time      `bson:"timestamp,omitempty"`
}

// Append durably records msg as namespace's seq-th global-feed entry. seq is
// the caller-assigned monotonic sequence number (typically the feed's
// length at call time); callers retrying a failed Append reuse the same
// seq, so the upsert never double-records an entry.
func (s *Sink) Append(ctx context.Context, namespace string, seq int64, msg agent.Message) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	filter := bson.M{"namespace": namespace, "seq": seq}
	update := bson.M{"$setOnInsert": feedDocument{
		Namespace: namespace,
		Seq:       seq,
		Message:   toFeedMessage(msg),
		StoredAt:  time.Now().UTC(),
	}}
	if _, err := s.coll.UpdateOne(ctx, filter, update, options.UpdateOne().SetUpsert(true)); err != nil {
		return fmt.Errorf("mongostore: append %s/%d: %w", namespace, seq, err)
	}
	return nil
}

// Replay returns every durably recorded global-feed entry for namespace, in
// sequence order, for rehydrating a fresh memory.Store after a restart.
func (s *Sink) Replay(ctx context.Context, namespace string) ([]agent.Message, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	cur, err := s.coll.Find(ctx, bson.M{"namespace": namespace}, options.Find().SetSort(bson.D{{Key: "seq", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("mongostore: replay %s: %w", namespace, err)
	}
	defer cur.Close(ctx)

	var out []agent.Message
	for cur.Next(ctx) {
		var doc feedDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("mongostore: decode %s: %w", namespace, err)
		}
		out = append(out, fromFeedMessage(doc.Message))
	}
	return out, cur.Err()
}

func toFeedMessage(msg agent.Message) feedMessage {
	return feedMessage{
		Type:        string(msg.Type),
		Content:     msg.Content,
		Tool:        msg.Tool,
		Args:        msg.Args,
		FromManager: msg.FromManager,
		FromWorker:  msg.FromWorker,
		Summary:     msg.Summary,
		PhaseID:     msg.PhaseID,
		HasPhaseID:  msg.HasPhaseID,
		Timestamp:   msg.Timestamp,
	}
}

func fromFeedMessage(m feedMessage) agent.Message {
	return agent.Message{
		Type:        agent.MessageType(m.Type),
		Content:     m.Content,
		Tool:        m.Tool,
		Args:        m.Args,
		FromManager: m.FromManager,
		FromWorker:  m.FromWorker,
		Summary:     m.Summary,
		PhaseID:     m.PhaseID,
		HasPhaseID:  m.HasPhaseID,
		Timestamp:   m.Timestamp,
	}
}
