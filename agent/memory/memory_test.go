package memory_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raviakasapu/auto-ai-agent-framework/agent"
	"github.com/raviakasapu/auto-ai-agent-framework/agent/memory"
)

// fakeSink records every Append call, standing in for a memory/mongostore.Sink.
type fakeSink struct {
	namespace string
	seqs      []int64
	messages  []agent.Message
	failOn    int64
}

func (f *fakeSink) Append(_ context.Context, namespace string, seq int64, msg agent.Message) error {
	if seq == f.failOn {
		return assert.AnError
	}
	f.namespace = namespace
	f.seqs = append(f.seqs, seq)
	f.messages = append(f.messages, msg)
	return nil
}

func TestNamespaceIsolation(t *testing.T) {
	store := memory.NewStore()
	store.AppendAgent("job-a", "worker1", agent.Message{Type: agent.TypeTask, Content: "a"})
	store.AppendAgent("job-b", "worker1", agent.Message{Type: agent.TypeTask, Content: "b"})

	a := store.ListAgent("job-a", "worker1")
	b := store.ListAgent("job-b", "worker1")
	require.Len(t, a, 1)
	require.Len(t, b, 1)
	assert.Equal(t, "a", a[0].Content)
	assert.Equal(t, "b", b[0].Content)
}

func TestSharedWorkerViewVisibility(t *testing.T) {
	store := memory.NewStore()
	store.AppendConversation("job1", "user", "hello")

	w1 := memory.NewSharedWorkerView(store, "job1", "worker1")
	w2 := memory.NewSharedWorkerView(store, "job1", "worker2")

	w1.Add(agent.Message{Type: agent.TypeAction, Content: "w1 action"})
	w1.AddGlobal(agent.Message{Type: agent.TypeGlobalObservation, Content: "broadcast"})

	h2 := w2.GetHistory()
	var sawW1Action, sawBroadcast bool
	for _, m := range h2 {
		if m.Content == "w1 action" {
			sawW1Action = true
		}
		if m.Content == "broadcast" {
			sawBroadcast = true
		}
	}
	assert.False(t, sawW1Action, "worker2 must not see worker1's private feed")
	assert.True(t, sawBroadcast, "worker2 must see explicit global broadcasts")

	h1 := w1.GetHistory()
	require.NotEmpty(t, h1)
	assert.Equal(t, agent.TypeUserMessage, h1[0].Type)
}

func TestHierarchicalManagerViewIncludesSubordinates(t *testing.T) {
	store := memory.NewStore()
	w1 := memory.NewSharedWorkerView(store, "job1", "worker1")
	w1.Add(agent.Message{Type: agent.TypeObservation, Content: "result"})

	mgr := memory.NewHierarchicalManagerView(store, "job1", "manager1", []string{"worker1"})
	history := mgr.GetHistory()

	var found bool
	for _, m := range history {
		if m.Content == "result" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestPrivateViewHasNoGlobalVisibility(t *testing.T) {
	store := memory.NewStore()
	store.AppendGlobal("job1", agent.Message{Type: agent.TypeGlobalObservation, Content: "broadcast"})

	v := memory.NewPrivateView(store, "job1", "solo")
	v.Add(agent.Message{Type: agent.TypeAction, Content: "own"})
	history := v.GetHistory()
	require.Len(t, history, 1)
	assert.Equal(t, "own", history[0].Content)
}

func TestAppendGlobalMirrorsToSink(t *testing.T) {
	sink := &fakeSink{}
	store := memory.NewStore().WithGlobalSink(sink, nil)

	store.AppendGlobal("job1", agent.Message{Type: agent.TypeGlobalObservation, Content: "first"})
	store.AppendGlobal("job1", agent.Message{Type: agent.TypeGlobalObservation, Content: "second"})

	assert.Equal(t, "job1", sink.namespace)
	assert.Equal(t, []int64{1, 2}, sink.seqs)
	require.Len(t, sink.messages, 2)
	assert.Equal(t, "first", sink.messages[0].Content)
	assert.Equal(t, "second", sink.messages[1].Content)
	assert.Len(t, store.ListGlobal("job1"), 2, "mirroring to the sink must not change the in-process feed")
}

func TestAppendGlobalSinkFailureDoesNotBlock(t *testing.T) {
	sink := &fakeSink{failOn: 1}
	var observed error
	store := memory.NewStore().WithGlobalSink(sink, func(_ string, err error) { observed = err })

	store.AppendGlobal("job1", agent.Message{Type: agent.TypeGlobalObservation, Content: "first"})

	require.Error(t, observed)
	assert.Len(t, store.ListGlobal("job1"), 1)
}

func TestStoreConcurrentAppendIsSafe(t *testing.T) {
	store := memory.NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			store.AppendAgent("job1", "worker1", agent.Message{Type: agent.TypeObservation, Content: i})
		}(i)
	}
	wg.Wait()
	assert.Len(t, store.ListAgent("job1", "worker1"), 50)
}
