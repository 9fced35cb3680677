// Package logview shows the live log repository, filtered by minimum level
// and message text.
package logview

import (
	"context"
	"fmt"

	"github.com/Iron-Ham/gamedex/internal/binding"
	"github.com/Iron-Ham/gamedex/internal/logging"
	"github.com/Iron-Ham/gamedex/internal/observable"
	"github.com/Iron-Ham/gamedex/internal/presenter"
	"github.com/Iron-Ham/gamedex/internal/stream"
	"github.com/Iron-Ham/gamedex/internal/viewsession"
)

// Name is the view name used for sessions.
const Name = "logs"

// View is the log screen contract.
type View struct {
	Entries *observable.SettableList[logging.Entry]
	// Level is the minimum level shown. Unknown levels are corrected to INFO.
	Level  *binding.Cell[string]
	Search *binding.Cell[string]
	// Summary reads "shown of retained".
	Summary *binding.Cell[string]

	Clear *stream.Hub[struct{}]
}

// NewView creates a log view showing INFO and above.
func NewView() *View {
	return &View{
		Entries: observable.NewSettableList(func(a, b logging.Entry) bool { return a.Seq == b.Seq }),
		Level:   binding.NewCell(logging.LevelInfo),
		Search:  binding.NewCell(""),
		Summary: binding.NewCell(""),
		Clear:   stream.NewHub[struct{}](),
	}
}

// Close ends the action stream.
func (v *View) Close() {
	v.Clear.Close()
}

// New returns the log presenter over repo.
func New(deps presenter.Deps, repo *logging.Repository) presenter.Presenter[*View] {
	return presenter.Func[*View](func(view *View) (*viewsession.Session, error) {
		s := deps.NewSession(Name)
		if err := wire(s, repo, view); err != nil {
			_ = s.Destroy()
			return nil, err
		}
		return s, nil
	})
}

func (v *View) filter() logging.LogFilter {
	return logging.LogFilter{
		Level:           logging.ParseLevel(v.Level.Get()),
		MessageContains: v.Search.Get(),
	}
}

func wire(s *viewsession.Session, repo *logging.Repository, v *View) error {
	if err := viewsession.Collect(s, "clear", v.Clear, func(context.Context, struct{}) error {
		repo.Clear()
		return nil
	}); err != nil {
		return err
	}

	predicates := stream.NewHub[func(logging.Entry) bool]()
	s.Cleanup(predicates.Close)
	shown := observable.Filter(s.Context(), repo.Entries(), predicates, v.filter().Matches)

	if err := viewsession.Collect(s, "level", v.Level.OnlyChangesFromView(), func(_ context.Context, level string) error {
		if normalized := logging.ParseLevel(level); normalized != level {
			v.Level.Set(normalized)
		}
		predicates.Publish(v.filter().Matches)
		return nil
	}); err != nil {
		return err
	}
	if err := viewsession.Collect(s, "search", v.Search.OnlyChangesFromView(), func(context.Context, string) error {
		predicates.Publish(v.filter().Matches)
		return nil
	}); err != nil {
		return err
	}

	if err := viewsession.BindList(s, v.Entries, shown); err != nil {
		return err
	}

	summarize := func() {
		v.Summary.SetIfChanged(fmt.Sprintf("%d of %d", shown.Len(), repo.Entries().Len()))
	}
	summarize()
	return viewsession.CollectLatest(s, "summary", shown.Changes(), func(context.Context, observable.ListEvent[logging.Entry]) error {
		summarize()
		return nil
	})
}
