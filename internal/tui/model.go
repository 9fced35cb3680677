package tui

import (
	"context"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Iron-Ham/gamedex/internal/errors"
	"github.com/Iron-Ham/gamedex/internal/event"
	"github.com/Iron-Ham/gamedex/internal/library"
	"github.com/Iron-Ham/gamedex/internal/logging"
	"github.com/Iron-Ham/gamedex/internal/observable"
	"github.com/Iron-Ham/gamedex/internal/presenter"
	"github.com/Iron-Ham/gamedex/internal/screens/confirm"
	"github.com/Iron-Ham/gamedex/internal/screens/gameedit"
	"github.com/Iron-Ham/gamedex/internal/screens/librarylist"
	"github.com/Iron-Ham/gamedex/internal/screens/logview"
	"github.com/Iron-Ham/gamedex/internal/screens/searchresults"
	"github.com/Iron-Ham/gamedex/internal/stream"
	"github.com/Iron-Ham/gamedex/internal/tui/keymap"
	"github.com/Iron-Ham/gamedex/internal/tui/styles"
	"github.com/Iron-Ham/gamedex/internal/viewsession"
)

// Options configures the root model.
type Options struct {
	Deps    presenter.Deps
	Library *library.Service
	Logs    *logging.Repository
}

type navKind int

const (
	navConfirm navKind = iota
	navEditor
)

type navRequest struct {
	kind      navKind
	requestID string
	question  string
	gameID    string
}

// intent is what a screen asks the model to do after a key press.
type intent int

const (
	intentNone intent = iota
	intentClose
	intentSearch
	intentLogs
)

// screen is the terminal rendering of one presented view.
type screen interface {
	// update handles a key press.
	update(msg tea.KeyMsg) (tea.Cmd, intent)
	render(m *Model) string
	keys() help.KeyMap
	// sync copies presenter writes into local input widgets.
	sync()
	// typing reports whether a text input has focus.
	typing() bool
	close()
}

// Model is the root Bubbletea model. It owns the presenter host and one
// screen per presented view.
type Model struct {
	deps   presenter.Deps
	lib    *library.Service
	logs   *logging.Repository
	host   *presenter.Host
	keymap keymap.Keymap
	help   help.Model
	styles styles.Styles

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	screens map[string]screen

	dirty    *stream.Hub[struct{}]
	redraws  *stream.Subscription[struct{}]
	navs     *stream.Hub[navRequest]
	navSub   *stream.Subscription[navRequest]
	closed   *stream.Subscription[event.ViewClosed]
	failures *stream.Subscription[event.HandlerFailed]
	reloads  *stream.Subscription[event.ConfigReloaded]

	width, height int
	lastError     string
	closeOnce     sync.Once
}

// NewModel creates the root model and presents the library screen.
func NewModel(opts Options) *Model {
	ctx, cancel := context.WithCancel(context.Background())
	bus := opts.Deps.Bus
	m := &Model{
		deps:    opts.Deps,
		lib:     opts.Library,
		logs:    opts.Logs,
		host:    presenter.NewHost(opts.Deps.Log()),
		keymap:  keymap.Default(),
		help:    help.New(),
		styles:  styles.New(opts.Deps.Settings().TUI.Theme),
		ctx:     ctx,
		cancel:  cancel,
		screens: make(map[string]screen),
		dirty:   stream.NewHub[struct{}](),
		navs:    stream.NewHub[navRequest](),
	}
	m.redraws = m.dirty.Subscribe(stream.Conflate())
	m.navSub = m.navs.Subscribe()
	m.closed = event.StreamOf[event.ViewClosed](bus).Subscribe()
	m.failures = event.StreamOf[event.HandlerFailed](bus).Subscribe(stream.Conflate())
	m.reloads = event.StreamOf[event.ConfigReloaded](bus).Subscribe(stream.Conflate())

	if err := m.openLibrary(); err != nil {
		m.lastError = err.Error()
	}
	return m
}

// Close destroys every view session and stops the model's subscriptions.
func (m *Model) Close() {
	m.closeOnce.Do(func() {
		m.cancel()
		if err := m.host.Close(); err != nil {
			m.deps.Log().Warn("closing views", "error", err)
		}
		m.mu.Lock()
		for name, sc := range m.screens {
			sc.close()
			delete(m.screens, name)
		}
		m.mu.Unlock()
		m.navs.Close()
		m.dirty.Close()
		m.closed.Close()
		m.failures.Close()
		m.reloads.Close()
	})
}

// Current returns the name of the showing screen.
func (m *Model) Current() string {
	return m.host.Current()
}

func (m *Model) screen(name string) (screen, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sc, ok := m.screens[name]
	return sc, ok
}

// OpenConfirm implements librarylist.Navigator. It may be called from any
// goroutine; the screen opens on the UI loop.
func (m *Model) OpenConfirm(requestID, question string) error {
	if m.navs.Closed() {
		return errors.ErrCanceled
	}
	m.navs.Publish(navRequest{kind: navConfirm, requestID: requestID, question: question})
	return nil
}

// OpenEditor implements librarylist.Navigator.
func (m *Model) OpenEditor(gameID string) error {
	if m.navs.Closed() {
		return errors.ErrCanceled
	}
	m.navs.Publish(navRequest{kind: navEditor, gameID: gameID})
	return nil
}

// watch requests a redraw whenever any of srcs emits, until ctx is done.
func (m *Model) watch(ctx context.Context, srcs ...stream.Stream[struct{}]) {
	sub := stream.Merge(srcs...).Subscribe(stream.Conflate())
	go func() {
		defer sub.Close()
		for {
			if _, err := sub.Next(ctx); err != nil {
				return
			}
			m.dirty.Publish(struct{}{})
		}
	}()
}

func (m *Model) redraw() {
	m.dirty.Publish(struct{}{})
}

// show presents view under name and makes it the showing screen. An
// existing screen of the same name is closed first.
func show[V any](m *Model, name string, p presenter.Presenter[V], view V, sc screen) (*viewsession.Session, error) {
	if _, ok := m.screen(name); ok {
		m.closeScreen(name)
	}
	s, err := presenter.Present(m.host, name, p, view)
	if err != nil {
		sc.close()
		return nil, err
	}
	m.mu.Lock()
	m.screens[name] = sc
	m.mu.Unlock()
	if err := m.host.Show(name); err != nil {
		return nil, err
	}
	m.redraw()
	return s, nil
}

func (m *Model) openLibrary() error {
	view := librarylist.NewView()
	sc := newLibraryScreen(view, m.keymap.Library, m.deps.Settings().TUI.PageSize)
	s, err := show(m, librarylist.Name, librarylist.New(m.deps, m.lib, m), view, sc)
	if err != nil {
		return err
	}
	view.Games.OnChange(func(observable.ListEvent[library.Game], []library.Game) { m.redraw() })
	m.watch(s.Context(), touched(view.Status.Updates()), touched(view.Filter.Updates()))
	return nil
}

func (m *Model) openEditor(gameID string) error {
	view := gameedit.NewView()
	sc := newEditorScreen(view, m.keymap.Editor)
	s, err := show(m, gameedit.Name, gameedit.New(m.deps, m.lib, gameID), view, sc)
	if err != nil {
		return err
	}
	m.watch(s.Context(),
		touched(view.Name.Updates()),
		touched(view.Quantity.Updates()),
		touched(view.Valid.Updates()),
		touched(view.Status.Updates()))
	return nil
}

func (m *Model) openConfirm(requestID, question string) error {
	view := confirm.NewView()
	sc := newConfirmScreen(view, m.keymap.Confirm)
	s, err := show(m, confirm.Name, confirm.New(m.deps, requestID, question), view, sc)
	if err != nil {
		return err
	}
	m.watch(s.Context(), touched(view.Question.Updates()))
	return nil
}

func (m *Model) openSearch() error {
	view := searchresults.NewView()
	sc := newSearchScreen(view, m.keymap.Picker, m.deps.Settings().TUI.PageSize)
	s, err := show(m, searchresults.Name, searchresults.New(m.deps, m.lib), view, sc)
	if err != nil {
		return err
	}
	view.Results.OnChange(func(observable.ListEvent[library.Game], []library.Game) { m.redraw() })
	m.watch(s.Context(), touched(view.Selected.Updates()), touched(view.Preview.Updates()))
	return nil
}

func (m *Model) openLogs() error {
	if m.logs == nil {
		return errors.NewValidationError("log repository not available")
	}
	view := logview.NewView()
	sc := newLogScreen(view, m.keymap.Logs)
	s, err := show(m, logview.Name, logview.New(m.deps, m.logs), view, sc)
	if err != nil {
		return err
	}
	view.Entries.OnChange(func(observable.ListEvent[logging.Entry], []logging.Entry) { m.redraw() })
	m.watch(s.Context(), touched(view.Summary.Updates()), touched(view.Level.Updates()))
	return nil
}

// closeScreen removes a screen and its session. The library screen is never
// closed this way.
func (m *Model) closeScreen(name string) {
	m.mu.Lock()
	sc, ok := m.screens[name]
	delete(m.screens, name)
	m.mu.Unlock()
	if !ok {
		return
	}
	if err := m.host.Remove(name); err != nil && !errors.Is(err, errors.ErrNotFound) {
		m.lastError = err.Error()
	}
	sc.close()
}

// Init starts the message pumps.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.waitRedraw(),
		m.waitNav(),
		m.waitClosed(),
		m.waitFailure(),
		m.waitReload(),
	)
}

func (m *Model) waitRedraw() tea.Cmd {
	return waitFor(m.ctx, m.redraws, func(struct{}) tea.Msg { return redrawMsg{} })
}

func (m *Model) waitNav() tea.Cmd {
	return waitFor(m.ctx, m.navSub, func(r navRequest) tea.Msg { return navMsg{req: r} })
}

func (m *Model) waitClosed() tea.Cmd {
	return waitFor(m.ctx, m.closed, func(ev event.ViewClosed) tea.Msg { return closedMsg{ev: ev} })
}

func (m *Model) waitFailure() tea.Cmd {
	return waitFor(m.ctx, m.failures, func(ev event.HandlerFailed) tea.Msg { return failedMsg{ev: ev} })
}

func (m *Model) waitReload() tea.Cmd {
	return waitFor(m.ctx, m.reloads, func(ev event.ConfigReloaded) tea.Msg { return reloadedMsg{ev: ev} })
}

// Update handles messages and updates the model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case redrawMsg:
		if sc, ok := m.screen(m.Current()); ok {
			sc.sync()
		}
		return m, m.waitRedraw()

	case navMsg:
		m.handleNav(msg.req)
		return m, m.waitNav()

	case closedMsg:
		return m, tea.Batch(m.handleClosed(msg.ev), m.waitClosed())

	case failedMsg:
		m.lastError = msg.ev.Session + "/" + msg.ev.Handler + ": " + failureText(msg.ev.Err)
		return m, m.waitFailure()

	case reloadedMsg:
		if msg.ev.Applied() {
			m.styles = styles.New(m.deps.Settings().TUI.Theme)
			m.lastError = ""
		} else {
			m.lastError = "config not applied: " + strings.Join(msg.ev.Problems, "; ")
		}
		return m, m.waitReload()

	case errMsg:
		m.lastError = msg.err.Error()
		return m, nil
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keymap.Global.Quit) {
		return m, tea.Quit
	}

	name := m.Current()
	sc, ok := m.screen(name)
	if !ok {
		return m, tea.Quit
	}

	if !sc.typing() {
		switch {
		case key.Matches(msg, m.keymap.Global.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keymap.Global.Back) && name == librarylist.Name:
			return m, tea.Quit
		}
	}

	cmd, in := sc.update(msg)
	var err error
	switch in {
	case intentClose:
		m.closeScreen(name)
	case intentSearch:
		err = m.openSearch()
	case intentLogs:
		err = m.openLogs()
	}
	if err != nil {
		m.lastError = err.Error()
	}
	return m, cmd
}

func (m *Model) handleNav(req navRequest) {
	var err error
	switch req.kind {
	case navConfirm:
		err = m.openConfirm(req.requestID, req.question)
	case navEditor:
		err = m.openEditor(req.gameID)
	}
	if err != nil {
		m.lastError = err.Error()
	}
}

// handleClosed removes the screen whose session finished. A game picked in
// the search screen is opened in the editor.
func (m *Model) handleClosed(ev event.ViewClosed) tea.Cmd {
	s, ok := m.host.Session(ev.View)
	if !ok || s.ID() != ev.SessionID {
		return nil
	}
	m.closeScreen(ev.View)

	if g, ok := ev.Result.(library.Game); ok && ev.View == searchresults.Name {
		if err := m.openEditor(g.ID); err != nil {
			return func() tea.Msg { return errMsg{err: err} }
		}
	}
	return nil
}

// View renders the showing screen with the tab bar and help.
func (m *Model) View() string {
	name := m.Current()
	sc, ok := m.screen(name)
	if !ok {
		return ""
	}

	parts := []string{
		m.styles.Tabs(m.host.Names(), name),
		sc.render(m),
	}
	if m.lastError != "" {
		parts = append(parts, m.styles.Error.Render(styles.Truncate(m.lastError, m.width)))
	}
	parts = append(parts, m.help.View(sc.keys()))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// failureText is the status line text for a handler failure. Errors not
// meant for users point at the log instead.
func failureText(err error) string {
	if !errors.IsUserFacing(err) {
		return "internal error, see logs"
	}
	var hf *errors.HandlerFailure
	if errors.As(err, &hf) && hf.Unwrap() != nil {
		return hf.Unwrap().Error()
	}
	return err.Error()
}
