// Package search provides semantic retrieval over ingested document chunks.
//
// The Searcher embeds a query with the configured embedding provider and
// ranks finalized chunks in the user's vector namespace by cosine
// similarity. Chunks written by in-flight ingestion passes are excluded
// until finalized.
package search
