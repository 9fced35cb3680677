// Package observable provides List, an ordered collection that publishes a
// structural ListEvent for every mutation, and the helpers built on it.
//
// # Invariants
//
//   - Every mutator swaps in a fresh snapshot and then emits exactly one event.
//   - Folding the emitted events over the initial snapshot with [Replay]
//     reconstructs the current snapshot.
//   - Removing or replacing an absent item fails with a PreconditionError and
//     emits nothing.
//
// # Derived Lists
//
// [Filter] and [Transform] follow a source list and re-derive their whole
// snapshot on every upstream change, emitting one ItemsSet. They do not diff.
//
// # View Mirrors
//
// [SettableList] mirrors a List on the view side: it is seeded from the
// snapshot and then replays each event with [Apply].
//
//	games := observable.NewList[string]()
//	mirror := observable.NewSettableList(func(a, b string) bool { return a == b })
//	errc := mirror.Bind(ctx, games)
//
//	games.Add("Celeste")
//	games.Add("Hades")
//	_ = games.Remove("Celeste")
package observable
