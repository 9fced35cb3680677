package event

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Iron-Ham/gamedex/internal/errors"
)

func TestTypeOf(t *testing.T) {
	assert.Equal(t, TypeGameDeleted, TypeOf[GameDeleted]())
	assert.Equal(t, TypeConfirmAnswered, TypeOf[ConfirmAnswered]())
	assert.Equal(t, TypeConfigReloaded, TypeOf[ConfigReloaded]())
}

func TestStreamOf_OnlyExactType(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	sub := StreamOf[GameDeleted](bus).Subscribe()
	defer sub.Close()

	bus.Publish(NewGameCreated("1", "Hades"))
	bus.Publish(NewGameDeleted("1"))

	got, ok := sub.TryNext()
	require.True(t, ok)
	assert.Equal(t, "1", got.ID)
	assert.Zero(t, sub.Pending())
}

func TestGameEvents_ExhaustiveSwitch(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	sub := GameEvents(bus).Subscribe()
	defer sub.Close()

	bus.Publish(NewGameCreated("1", "Hades"))
	bus.Publish(NewGameUpdated("1", "Hades II", 10))
	bus.Publish(NewLogRecorded("INFO", "not a game event"))
	bus.Publish(NewGameDeleted("1"))

	var kinds []string
	for {
		ev, ok := sub.TryNext()
		if !ok {
			break
		}
		assert.Equal(t, "1", ev.GameID())
		switch ev.(type) {
		case GameCreated:
			kinds = append(kinds, "created")
		case GameUpdated:
			kinds = append(kinds, "updated")
		case GameDeleted:
			kinds = append(kinds, "deleted")
		}
	}
	assert.Equal(t, []string{"created", "updated", "deleted"}, kinds)
}

// TestAwaitEvent_ResumesWithMatchingEvent publishes two deletions after the
// waiter has started; the waiter must resume with the second one only.
func TestAwaitEvent_ResumesWithMatchingEvent(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	type result struct {
		ev  GameDeleted
		err error
	}
	done := make(chan result, 1)
	started := make(chan struct{})

	go func() {
		x := Expect(bus, func(e GameDeleted) bool { return e.ID == "2" })
		close(started)
		ev, err := x.Wait(context.Background())
		done <- result{ev, err}
	}()

	<-started
	bus.Publish(NewGameDeleted("1"))
	bus.Publish(NewGameDeleted("2"))

	select {
	case r := <-done:
		require.NoError(t, r.err)
		assert.Equal(t, "2", r.ev.ID)
	case <-time.After(time.Second):
		t.Fatal("await did not resume")
	}
}

func TestAwaitEvent_SubscribedBeforePublish(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	done := make(chan GameDeleted, 1)
	go func() {
		ev, err := AwaitEvent(context.Background(), bus, func(e GameDeleted) bool { return e.ID == "2" })
		if err == nil {
			done <- ev
		}
	}()

	require.Eventually(t, func() bool {
		return bus.SubscriberCount(TypeGameDeleted) == 1
	}, time.Second, time.Millisecond)

	bus.Publish(NewGameDeleted("1"))
	bus.Publish(NewGameDeleted("2"))

	select {
	case ev := <-done:
		assert.Equal(t, "2", ev.ID)
	case <-time.After(time.Second):
		t.Fatal("await did not resume")
	}
	assert.Eventually(t, func() bool {
		return bus.SubscriberCount(TypeGameDeleted) == 0
	}, time.Second, time.Millisecond, "await releases its subscription")
}

func TestExpect_EventBeforeWaitIsKept(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	x := Expect[ConfirmAnswered](bus, nil)
	bus.Publish(NewConfirmAnswered("req-1", true))

	ev, err := x.Wait(context.Background())
	require.NoError(t, err)
	assert.True(t, ev.Confirmed)
}

func TestAwaitEvent_ContextCancel(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := AwaitEvent[GameDeleted](ctx, bus, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAwaitEvent_BusClosed(t *testing.T) {
	bus := NewBus()
	x := Expect[GameDeleted](bus, nil)
	bus.Close()

	_, err := x.Wait(context.Background())
	assert.ErrorIs(t, err, errors.ErrBusClosed)
}

func TestAwaitEventTimeout(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	_, err := AwaitEventTimeout(context.Background(), bus, 20*time.Millisecond,
		func(e ViewClosed) bool { return e.View == "never" })
	require.Error(t, err)

	var te *errors.TimeoutError
	assert.ErrorAs(t, err, &te)
	assert.True(t, errors.IsRetryable(err))
}

func TestAwaitEventTimeout_ParentCancelIsNotTimeout(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := AwaitEventTimeout[ViewClosed](ctx, bus, time.Hour, nil)
	var te *errors.TimeoutError
	assert.False(t, errors.As(err, &te))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAwaitEventTimeout_Matches(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	x := ExpectWithin(bus, time.Second, func(e ViewClosed) bool { return e.View == "search" })
	bus.Publish(NewViewClosed("other", "s-1", nil))
	bus.Publish(NewViewClosed("search", "s-2", "Hades"))

	ev, err := x.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Hades", ev.Result)
}

func TestConfigReloaded_Applied(t *testing.T) {
	assert.True(t, NewConfigReloaded("/tmp/c.yaml", nil).Applied())
	assert.False(t, NewConfigReloaded("/tmp/c.yaml", []string{"bad level"}).Applied())
}
