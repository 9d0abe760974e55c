package events

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscribeReceivesMatchingType(t *testing.T) {
	bus := NewBus(10)
	defer bus.Close()

	ch := bus.Subscribe(EventSelectionChanged)

	bus.Publish(&SelectionChangedEvent{
		BaseEvent: BaseEvent{EventType: EventSelectionChanged, Time: time.Now()},
		Selected:  []string{"/sdcard/a.txt"},
	})

	select {
	case e := <-ch:
		sel, ok := e.(*SelectionChangedEvent)
		require.True(t, ok)
		assert.Equal(t, []string{"/sdcard/a.txt"}, sel.Selected)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestSubscribeIgnoresOtherTypes(t *testing.T) {
	bus := NewBus(10)
	defer bus.Close()

	ch := bus.Subscribe(EventTransferCompleted)
	bus.PublishLog(InfoLevel, "unrelated", nil)

	select {
	case e := <-ch:
		t.Fatalf("unexpected event: %v", e.Type())
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSubscribeAllReceivesEverything(t *testing.T) {
	bus := NewBus(10)
	defer bus.Close()

	ch := bus.SubscribeAll()

	bus.PublishLog(ErrorLevel, "listing failed", errors.New("permission denied"))
	bus.Publish(&DirectoryChangedEvent{
		BaseEvent:  BaseEvent{EventType: EventDirectoryChanged, Time: time.Now()},
		Path:       "/sdcard/DCIM",
		EntryCount: 3,
	})

	got := make([]EventType, 0, 2)
	for i := 0; i < 2; i++ {
		select {
		case e := <-ch:
			got = append(got, e.Type())
		case <-time.After(time.Second):
			t.Fatal("timed out")
		}
	}
	assert.Equal(t, []EventType{EventLog, EventDirectoryChanged}, got)
}

func TestPublishDropsOnFullBuffer(t *testing.T) {
	bus := NewBus(1)
	defer bus.Close()

	_ = bus.Subscribe(EventLog) // never drained

	bus.PublishLog(InfoLevel, "first", nil)
	bus.PublishLog(InfoLevel, "second", nil) // buffer full, dropped

	assert.Equal(t, int64(1), bus.DroppedEventCount())
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	bus := NewBus(10)
	defer bus.Close()

	ch := bus.Subscribe(EventLog)
	bus.Unsubscribe(EventLog, ch)

	bus.PublishLog(InfoLevel, "after unsubscribe", nil)

	select {
	case <-ch:
		t.Fatal("received event after unsubscribe")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestCloseIsIdempotentAndSubscribeAfterCloseReturnsClosedChannel(t *testing.T) {
	bus := NewBus(10)
	bus.Close()
	bus.Close()

	ch := bus.Subscribe(EventLog)
	_, open := <-ch
	assert.False(t, open)

	// Publishing after close must not panic.
	bus.PublishLog(InfoLevel, "ignored", nil)
}
