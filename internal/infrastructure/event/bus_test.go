package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/lexdesk/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEvent struct {
	shared.BaseDomainEvent
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "Invoice", uuid.New(), uuid.New())}
}

type recordingHandler struct {
	mu     sync.Mutex
	types  []string
	seen   []string
	err    error
	panics bool
}

func (h *recordingHandler) Handle(_ context.Context, ev shared.DomainEvent) error {
	h.mu.Lock()
	h.seen = append(h.seen, ev.EventType())
	h.mu.Unlock()
	if h.panics {
		panic("boom")
	}
	return h.err
}

func (h *recordingHandler) EventTypes() []string { return h.types }

func (h *recordingHandler) received() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.seen...)
}

func TestInMemoryEventBus_RoutesByType(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	paid := &recordingHandler{types: []string{"InvoicePaid"}}
	all := &recordingHandler{}
	bus.Subscribe(paid)
	bus.Subscribe(all)

	require.NoError(t, bus.Publish(context.Background(),
		newTestEvent("InvoiceSent"), newTestEvent("InvoicePaid")))

	assert.Equal(t, []string{"InvoicePaid"}, paid.received())
	assert.Equal(t, []string{"InvoiceSent", "InvoicePaid"}, all.received())
}

func TestInMemoryEventBus_ExplicitTypesOverrideHandler(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	h := &recordingHandler{types: []string{"InvoicePaid"}}
	bus.Subscribe(h, "CaseStatusChanged")

	require.NoError(t, bus.Publish(context.Background(),
		newTestEvent("InvoicePaid"), newTestEvent("CaseStatusChanged")))

	assert.Equal(t, []string{"CaseStatusChanged"}, h.received())
}

func TestInMemoryEventBus_HandlerFailuresAreIsolated(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	failing := &recordingHandler{err: errors.New("smtp down")}
	panicking := &recordingHandler{panics: true}
	healthy := &recordingHandler{}
	bus.Subscribe(failing)
	bus.Subscribe(panicking)
	bus.Subscribe(healthy)

	err := bus.Publish(context.Background(), newTestEvent("InvoiceSent"))

	require.NoError(t, err)
	assert.Len(t, failing.received(), 1)
	assert.Len(t, panicking.received(), 1)
	assert.Equal(t, []string{"InvoiceSent"}, healthy.received())
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	h := &recordingHandler{types: []string{"InvoicePaid", "InvoiceSent"}}
	bus.Subscribe(h)
	bus.Unsubscribe(h)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("InvoicePaid")))
	assert.Empty(t, h.received())
	assert.Empty(t, bus.registry.HandlersFor("InvoiceSent"))
}

func TestInMemoryEventBus_StopDropsEvents(t *testing.T) {
	ctx := context.Background()
	var bus shared.EventBus = NewInMemoryEventBus(nil)
	h := &recordingHandler{}
	bus.Subscribe(h)

	require.NoError(t, bus.Stop(ctx))
	require.NoError(t, bus.Publish(ctx, newTestEvent("InvoiceSent")))
	assert.Empty(t, h.received())

	require.NoError(t, bus.Start(ctx))
	require.NoError(t, bus.Publish(ctx, newTestEvent("InvoiceSent")))
	assert.Len(t, h.received(), 1)
}

func TestHandlerRegistry_WildcardAfterTyped(t *testing.T) {
	r := NewHandlerRegistry()
	wild := &recordingHandler{}
	typed := &recordingHandler{}
	r.Register(wild)
	r.Register(typed, "FirmRegistered")

	hs := r.HandlersFor("FirmRegistered")
	require.Len(t, hs, 2)
	assert.Same(t, typed, hs[0])
	assert.Same(t, wild, hs[1])
	assert.Len(t, r.HandlersFor("PlanChanged"), 1)
}
