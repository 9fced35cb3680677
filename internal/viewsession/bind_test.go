package viewsession

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Iron-Ham/gamedex/internal/binding"
	"github.com/Iron-Ham/gamedex/internal/observable"
)

func TestBindBidirectional_NoEcho(t *testing.T) {
	s := newSession(t, "bind", Config{})
	domain := binding.NewCell(10)
	view := binding.NewCell(0)

	edits := view.OnlyChangesFromView().Subscribe()
	defer edits.Close()

	require.NoError(t, BindBidirectional(s, view, domain))
	assert.Equal(t, 10, view.Get(), "view is seeded from the domain")
	assert.Equal(t, binding.FromPresenter, view.Current().Origin)

	view.Edit(15)
	assert.Eventually(t, func() bool { return domain.Get() == 15 }, time.Second, 5*time.Millisecond)

	domain.Set(20)
	assert.Eventually(t, func() bool { return view.Get() == 20 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, binding.FromPresenter, view.Current().Origin)

	v, ok := edits.TryNext()
	require.True(t, ok)
	assert.Equal(t, 15, v)
	_, ok = edits.TryNext()
	assert.False(t, ok, "presenter writes must not reach the view-change stream")
}

func TestBindList_MirrorsSource(t *testing.T) {
	s := newSession(t, "bind-list", Config{})
	src := observable.NewList("Celeste", "Hades")
	dst := observable.NewSettableList(func(a, b string) bool { return a == b })

	require.NoError(t, BindList(s, dst, src))
	assert.Equal(t, []string{"Celeste", "Hades"}, dst.Items())

	src.Add("Tunic")
	require.NoError(t, src.Remove("Celeste"))

	assert.Eventually(t, func() bool {
		items := dst.Items()
		return len(items) == 2 && items[0] == "Hades" && items[1] == "Tunic"
	}, time.Second, 5*time.Millisecond)
}

func TestBindList_StopsOnDestroy(t *testing.T) {
	s := New("bind-list", Config{})
	src := observable.NewList(1)
	dst := observable.NewSettableList(func(a, b int) bool { return a == b })

	require.NoError(t, BindList(s, dst, src))
	require.NoError(t, s.Destroy())

	src.Add(2)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, []int{1}, dst.Items())
}
