// Package search fans a query out to torrent indexing sites and merges what
// comes back.
//
// Each site is an Engine. Engines are collected into a Registry, which is
// fixed once built, and an Aggregator runs one query against every engine of
// a registry concurrently:
//
//	reg, err := search.DefaultRegistry(cfg.Search)
//	if err != nil {
//	    return err
//	}
//	agg := search.NewAggregator(reg, logger)
//	resp, err := agg.Search(ctx, "ubuntu 24.04")
//
// A failing engine never fails the whole search. Its error is reported in
// Response.Failures and the other engines' results are still returned. Only
// when every engine fails does Search return an *AllEnginesFailedError.
package search
