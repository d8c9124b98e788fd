// Package journal persists local copies of drafts that may not have reached
// the backend yet, so an interrupted editing session can be recovered.
//
// Each open draft session owns one row keyed by its session key. The row is
// rewritten on every edit and removed once the backend holds the same state
// or the draft is published or discarded.
//
// Typical usage
//
//	repo := journal.NewSQLiteRepository(db)
//	_ = repo.Save(ctx, entry)
//	list, _ := repo.List(ctx)
//	e, _ := repo.Take(ctx, list[0].SessionKey)
package journal
