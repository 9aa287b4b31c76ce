package audit

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingSink struct {
	mu     sync.Mutex
	events []Event
	fail   bool
}

func (s *recordingSink) Write(ev Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("db down")
	}
	s.events = append(s.events, ev)
	return nil
}

func TestDispatcherDrainsOnClose(t *testing.T) {
	sink := &recordingSink{}
	d := NewDispatcher(sink, zap.NewNop().Sugar(), 16)

	for i := 0; i < 10; i++ {
		d.Dispatch(Event{Action: ActionOrderCreated, Entity: EntityOrder, EntityID: "o"})
	}
	d.Close()

	assert.Len(t, sink.events, 10)
}

func TestDispatcherSurvivesSinkErrors(t *testing.T) {
	sink := &recordingSink{fail: true}
	d := NewDispatcher(sink, zap.NewNop().Sugar(), 4)

	d.Dispatch(Event{Action: ActionOrderDeleted})
	d.Close()
	d.Close()

	assert.Empty(t, sink.events)
}

func TestToModel(t *testing.T) {
	actor := "emp-1"
	m := ToModel(Event{
		ActorID:  &actor,
		Action:   ActionOrderUpdated,
		Entity:   EntityOrder,
		EntityID: "o-1",
		Metadata: map[string]string{"status": "completed"},
	})

	require.NotNil(t, m.ActorID)
	assert.Equal(t, "emp-1", *m.ActorID)
	assert.Equal(t, "o-1", m.EntityID)
	assert.JSONEq(t, `{"status":"completed"}`, m.Metadata)
}
