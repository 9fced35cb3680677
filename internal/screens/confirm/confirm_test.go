package confirm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Iron-Ham/gamedex/internal/event"
	"github.com/Iron-Ham/gamedex/internal/presenter"
)

func TestConfirm_PublishesFirstAnswerThenCloses(t *testing.T) {
	bus := event.NewBus()
	defer bus.Close()
	deps := presenter.Deps{Bus: bus}

	answered := event.Expect(bus, func(e event.ConfirmAnswered) bool { return e.RequestID == "req-1" })
	closed := event.Expect(bus, func(e event.ViewClosed) bool { return e.View == Name })

	view := NewView()
	s, err := New(deps, "req-1", "Delete Celeste?").Present(view)
	require.NoError(t, err)
	defer func() { _ = s.Destroy() }()

	assert.Equal(t, "Delete Celeste?", view.Question.Get())

	view.Answer.Publish(true)
	view.Answer.Publish(false)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	ans, err := answered.Wait(ctx)
	require.NoError(t, err)
	assert.True(t, ans.Confirmed)

	vc, err := closed.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, s.ID(), vc.SessionID)
	assert.Equal(t, true, vc.Result)

	extra := event.StreamOf[event.ConfirmAnswered](bus).Subscribe()
	defer extra.Close()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 0, extra.Pending(), "only the first answer is published")
}
