// Package memory implements the process-wide Shared State Store and
// the Memory View variants layered over it: Private, SharedWorker,
// and HierarchicalManager. The store is the single source of truth; views
// are cheap handles that compose reads from it on demand rather than
// materializing a merged copy.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/raviakasapu/auto-ai-agent-framework/agent"
)

// GlobalSink durably mirrors global-feed appends, e.g. a
// memory/mongostore.Sink, so a namespace's global-visibility history can be
// rehydrated by a fresh process after a restart. Store treats it as
// a best-effort write-through: a Sink failure never blocks or fails the
// in-process Add/AppendGlobal call, since the in-process Store is always
// the authoritative copy for a running job.
type GlobalSink interface {
	Append(ctx context.Context, namespace string, seq int64, msg agent.Message) error
}

// ConversationEntry is one turn in a namespace's conversation feed.
type ConversationEntry struct {
	Role      string
	Content   string
	Timestamp time.Time
}

// namespaceData holds the three feeds for a single namespace: a
// conversation feed, a global feed, and a map of agent-keyed private feeds.
type namespaceData struct {
	conversation []ConversationEntry
	global       []agent.Message
	agentFeeds   map[string][]agent.Message
}

// Store is a process-wide, thread-safe repository of conversation, global,
// and per-agent message feeds, partitioned by namespace (typically the job
// id). All operations hold an internal mutex for the duration of their
// in-memory access and never hold it across external I/O; AppendGlobal
// calls an attached GlobalSink synchronously after releasing it.
type Store struct {
	mu         sync.Mutex
	namespaces map[string]*namespaceData

	sink      GlobalSink
	sinkError func(namespace string, err error)
}

// NewStore constructs an empty, ready-to-use Store.
func NewStore() *Store {
	return &Store{namespaces: make(map[string]*namespaceData)}
}

// WithGlobalSink attaches a durable mirror for AppendGlobal calls. onError,
// if non-nil, observes any write-through failure; a nil onError silently
// drops sink errors, matching the "never block on external I/O" contract.
func (s *Store) WithGlobalSink(sink GlobalSink, onError func(namespace string, err error)) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sink = sink
	s.sinkError = onError
	return s
}

// ns returns (creating if necessary) the namespaceData for ns. Namespaces
// are created on first write; there is no explicit create/destroy.
// Callers must hold s.mu.
func (s *Store) ns(namespace string) *namespaceData {
	nd, ok := s.namespaces[namespace]
	if !ok {
		nd = &namespaceData{agentFeeds: make(map[string][]agent.Message)}
		s.namespaces[namespace] = nd
	}
	return nd
}

// AppendConversation appends a conversation-turn entry to the namespace's
// conversation feed.
func (s *Store) AppendConversation(namespace, role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	nd := s.ns(namespace)
	nd.conversation = append(nd.conversation, ConversationEntry{
		Role: role, Content: content, Timestamp: time.Now(),
	})
}

// AppendAgent appends msg to the given agent's private feed within
// namespace.
func (s *Store) AppendAgent(namespace, agentKey string, msg agent.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	nd := s.ns(namespace)
	nd.agentFeeds[agentKey] = append(nd.agentFeeds[agentKey], msg)
}

// AppendGlobal appends an update to the namespace's global feed, visible to
// every Memory View that composes globals (shared-worker and
// hierarchical-manager). When a GlobalSink is attached, the entry is also
// mirrored there under its position in the feed.
func (s *Store) AppendGlobal(namespace string, msg agent.Message) {
	s.mu.Lock()
	nd := s.ns(namespace)
	nd.global = append(nd.global, msg)
	seq := int64(len(nd.global))
	sink, onError := s.sink, s.sinkError
	s.mu.Unlock()

	if sink == nil {
		return
	}
	if err := sink.Append(context.Background(), namespace, seq, msg); err != nil && onError != nil {
		onError(namespace, err)
	}
}

// ListConversation returns a defensive copy of namespace's conversation feed
// in append order.
func (s *Store) ListConversation(namespace string) []ConversationEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	nd := s.ns(namespace)
	out := make([]ConversationEntry, len(nd.conversation))
	copy(out, nd.conversation)
	return out
}

// ListAgent returns a defensive copy of agentKey's private feed within
// namespace, in append order.
func (s *Store) ListAgent(namespace, agentKey string) []agent.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	nd := s.ns(namespace)
	out := make([]agent.Message, len(nd.agentFeeds[agentKey]))
	copy(out, nd.agentFeeds[agentKey])
	return out
}

// ListGlobal returns a defensive copy of namespace's global feed in append
// order.
func (s *Store) ListGlobal(namespace string) []agent.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	nd := s.ns(namespace)
	out := make([]agent.Message, len(nd.global))
	copy(out, nd.global)
	return out
}

// ListTeam concatenates the private feeds of the given agent keys, in
// argument order, within namespace.
func (s *Store) ListTeam(namespace string, agentKeys []string) []agent.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	nd := s.ns(namespace)
	var out []agent.Message
	for _, key := range agentKeys {
		out = append(out, nd.agentFeeds[key]...)
	}
	return out
}
