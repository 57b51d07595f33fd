// Package suggest proposes business rules for a dataset and memoizes the
// proposals.
//
// Suggestions are keyed by the content hash of a dataset.Summary, so any
// dataset with the same shape reuses the cached rules until the entry's TTL
// passes. Two Cache backends are provided: MemoryCache for a single process
// and SQLiteCache to share entries across CLI runs.
//
//	cache, err := suggest.NewSQLiteCache("suggest.db")
//	if err != nil {
//		return err
//	}
//	defer cache.Close()
//
//	s := suggest.Memoize(suggest.NewHeuristic(), cache, time.Hour)
//	proposed, err := s.Suggest(ctx, dataset.Summarize(ds))
package suggest
