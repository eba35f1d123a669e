package memory

import "github.com/raviakasapu/auto-ai-agent-framework/agent"

// View is a per-agent handle over a Store's (namespace, agentKey)
// partition, exposing Add, AddGlobal, and GetHistory with a visibility
// scope fixed at construction time. Views are cheap and safe to
// share; the Store behind them is the single source of truth.
type View interface {
	// Add appends msg to this agent's own private feed.
	Add(msg agent.Message)
	// AddGlobal appends an update visible to every view that composes
	// globals. Private views ignore this call.
	AddGlobal(msg agent.Message)
	// GetHistory returns the composed history visible to this agent,
	// following the variant's visibility rules.
	GetHistory() []agent.Message
}

// conversationAsMessages translates a namespace's conversation feed into
// user_message/assistant_message rows for history composition.
func conversationAsMessages(entries []ConversationEntry) []agent.Message {
	out := make([]agent.Message, 0, len(entries))
	for _, e := range entries {
		typ := agent.TypeUserMessage
		if e.Role == "assistant" {
			typ = agent.TypeAssistantMessage
		}
		out = append(out, agent.Message{
			Type:      typ,
			Content:   e.Content,
			Timestamp: e.Timestamp,
		})
	}
	return out
}

// privateView implements the Private variant: Add and GetHistory operate on
// one agent feed only, with no cross-visibility to conversation or globals.
type privateView struct {
	store     *Store
	namespace string
	agentKey  string
}

// NewPrivateView constructs a Private memory view.
func NewPrivateView(store *Store, namespace, agentKey string) View {
	return &privateView{store: store, namespace: namespace, agentKey: agentKey}
}

func (v *privateView) Add(msg agent.Message)     { v.store.AppendAgent(v.namespace, v.agentKey, msg) }
func (v *privateView) AddGlobal(agent.Message)   {}
func (v *privateView) GetHistory() []agent.Message {
	return v.store.ListAgent(v.namespace, v.agentKey)
}

// sharedWorkerView implements the Shared-worker variant: Add writes to the
// agent's own private feed, AddGlobal writes to the namespace global feed,
// and GetHistory returns conversation ++ own_feed ++ global_feed. A
// worker never sees a sibling worker's private feed except through a
// global_observation someone explicitly broadcast.
type sharedWorkerView struct {
	store     *Store
	namespace string
	agentKey  string
}

// NewSharedWorkerView constructs a Shared-worker memory view.
func NewSharedWorkerView(store *Store, namespace, agentKey string) View {
	return &sharedWorkerView{store: store, namespace: namespace, agentKey: agentKey}
}

func (v *sharedWorkerView) Add(msg agent.Message) {
	v.store.AppendAgent(v.namespace, v.agentKey, msg)
}

func (v *sharedWorkerView) AddGlobal(msg agent.Message) {
	v.store.AppendGlobal(v.namespace, msg)
}

func (v *sharedWorkerView) GetHistory() []agent.Message {
	var out []agent.Message
	out = append(out, conversationAsMessages(v.store.ListConversation(v.namespace))...)
	out = append(out, v.store.ListAgent(v.namespace, v.agentKey)...)
	out = append(out, v.store.ListGlobal(v.namespace)...)
	return out
}

// hierarchicalManagerView implements the Hierarchical-manager variant: like
// Shared-worker, plus the concatenation of subordinate feeds inserted
// before globals.
type hierarchicalManagerView struct {
	store        *Store
	namespace    string
	agentKey     string
	subordinates []string
}

// NewHierarchicalManagerView constructs a Hierarchical-manager memory view
// whose GetHistory also includes the private feeds of the given subordinate
// agent keys (typically the manager's direct workers/child managers).
func NewHierarchicalManagerView(store *Store, namespace, agentKey string, subordinates []string) View {
	return &hierarchicalManagerView{
		store: store, namespace: namespace, agentKey: agentKey,
		subordinates: subordinates,
	}
}

func (v *hierarchicalManagerView) Add(msg agent.Message) {
	v.store.AppendAgent(v.namespace, v.agentKey, msg)
}

func (v *hierarchicalManagerView) AddGlobal(msg agent.Message) {
	v.store.AppendGlobal(v.namespace, msg)
}

func (v *hierarchicalManagerView) GetHistory() []agent.Message {
	var out []agent.Message
	out = append(out, conversationAsMessages(v.store.ListConversation(v.namespace))...)
	out = append(out, v.store.ListAgent(v.namespace, v.agentKey)...)
	out = append(out, v.store.ListTeam(v.namespace, v.subordinates)...)
	out = append(out, v.store.ListGlobal(v.namespace)...)
	return out
}
