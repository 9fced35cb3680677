// Package viewsession binds the reactive wiring of one view instance to the
// view's visibility.
//
// A [Session] moves through NotShown -> Showing <-> Hidden -> Destroyed.
// Everything a presenter starts for its view is owned by the session:
// stream collectors ([Collect], [CollectLatest]), one-shot jobs ([Launch]),
// lifecycle hooks ([Session.OnShowHook]) and bindings
// ([BindBidirectional], [BindList]). [Session.Destroy] cancels all of it
// and waits for it to finish.
//
// # Turn
//
// Each session has a single turn handed out in FIFO order by a worker
// goroutine. A handler holds the turn while it runs, so handlers of one
// session never overlap and need no locking around view state. A handler that
// must wait for I/O, an event or a timer suspends through [Await],
// [AwaitEvent], [AwaitFuture] or [Sleep], which give the turn back for the
// duration of the wait.
//
// # Failures
//
// A handler that returns an error or panics is reported as an
// errors.HandlerFailure to the session's [ErrorHandler]. Sibling handlers are
// unaffected and the failing collector keeps receiving.
//
// # Basic Usage
//
//	s := manager.New("game-edit")
//	_ = viewsession.Collect(s, "save", view.SaveClicked(), func(ctx context.Context, _ struct{}) error {
//	    _, err := viewsession.AwaitFuture(ctx, lib.Update(ctx, game))
//	    return err
//	})
//	_ = s.OnShow()
//	defer s.Destroy()
package viewsession
