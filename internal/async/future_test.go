package async

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Iron-Ham/gamedex/internal/errors"
)

func TestGo_DeliversResult(t *testing.T) {
	f := Go(context.Background(), func(context.Context) (int, error) { return 42, nil })

	v, err := f.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	select {
	case <-f.Done():
	default:
		t.Fatal("Done should be closed once Await returned")
	}
}

func TestGo_DeliversError(t *testing.T) {
	boom := errors.New("boom")
	f := Go(context.Background(), func(context.Context) (string, error) { return "", boom })

	_, err := f.Await(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestGo_RecoversPanic(t *testing.T) {
	f := Go(context.Background(), func(context.Context) (int, error) { panic("kaput") })

	_, err := f.Await(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrHandlerPanic)
	assert.Contains(t, err.Error(), "kaput")
}

func TestAwait_HonorsContext(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	f := Go(context.Background(), func(context.Context) (int, error) {
		<-release
		return 1, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := f.Await(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	select {
	case <-f.Done():
		t.Fatal("abandoning the wait must not complete the future")
	default:
	}
}

func TestFailed(t *testing.T) {
	f := Failed[int](errors.ErrInvalidInput)

	select {
	case <-f.Done():
	default:
		t.Fatal("Failed future should already be done")
	}
	v, err := f.Await(context.Background())
	assert.ErrorIs(t, err, errors.ErrInvalidInput)
	assert.Zero(t, v)
}
