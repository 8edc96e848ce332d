// Package lifegraph provides an incremental entity-relationship knowledge
// graph engine. Observations and extraction batches flow into a canonical
// graph of weighted nodes and edges that strengthens under repetition,
// promotes repeated temporal co-occurrence into relationships, and decays
// stale low-weight connections over time.
//
// # Basic Usage
//
// Create an engine, feed it observations, and read analytics back:
//
//	cfg, err := config.Load()
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	engine, err := lifegraph.New(cfg, lifegraph.Options{})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer engine.Close(ctx)
//
//	// Streaming mode: one entity sighting at a time.
//	engine.Observe("Chris Li", types.PersonNodeType, "slack", time.Now())
//
//	// Batch mode: free text through the LLM extractor.
//	diff, err := engine.IngestText(ctx, "Chris is leading the Atlas project", types.SourceInfo{Kind: "note", ID: "n-1"})
//
//	clusters := engine.Clusters()
//	central := engine.Centrality(10)
//
// The engine is safe for concurrent use; all graph mutation goes through the
// store's single-writer API.
package lifegraph
