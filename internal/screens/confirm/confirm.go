// Package confirm is the yes/no dialog. Its presenter publishes the answer
// as event.ConfirmAnswered and then closes the view.
package confirm

import (
	"context"

	"github.com/Iron-Ham/gamedex/internal/binding"
	"github.com/Iron-Ham/gamedex/internal/event"
	"github.com/Iron-Ham/gamedex/internal/presenter"
	"github.com/Iron-Ham/gamedex/internal/stream"
	"github.com/Iron-Ham/gamedex/internal/viewsession"
)

// Name is the view name used for sessions and ViewClosed events.
const Name = "confirm"

// View is the dialog contract.
type View struct {
	// Question is displayed above the choices.
	Question *binding.Cell[string]
	// Answer receives the user's choice.
	Answer *stream.Hub[bool]
}

// NewView creates an empty dialog.
func NewView() *View {
	return &View{
		Question: binding.NewCell(""),
		Answer:   stream.NewHub[bool](),
	}
}

// Close ends the action streams.
func (v *View) Close() {
	v.Answer.Close()
}

// New returns a presenter asking question on behalf of requestID. Only the
// first answer counts.
func New(deps presenter.Deps, requestID, question string) presenter.Presenter[*View] {
	return presenter.Func[*View](func(view *View) (*viewsession.Session, error) {
		s := deps.NewSession(Name)

		answered := false
		err := viewsession.Collect(s, "answer", view.Answer, func(_ context.Context, yes bool) error {
			if answered {
				return nil
			}
			answered = true
			deps.Bus.Publish(event.NewConfirmAnswered(requestID, yes))
			deps.Bus.Publish(event.NewViewClosed(Name, s.ID(), yes))
			return nil
		})
		if err != nil {
			_ = s.Destroy()
			return nil, err
		}

		view.Question.Set(question)
		return s, nil
	})
}
