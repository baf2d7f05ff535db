// Package ingestion provides the pipeline that turns channel posts into
// catalog entries.
//
// The Pipeline type manages one ingestion cycle at a time, including:
//   - Reading and advancing the durable per-consumer cursor
//   - Canonicalizing captions into catalog keys
//   - Resolving descriptions (caption first, external lookup as fallback)
//   - Batch-committing new entries with first-write-wins deduplication
//   - Generating embeddings asynchronously through a worker pool
//
// The cursor advances per consumed message, before the batch commit. A crash
// between the two can drop the in-flight messages; they are never retried.
// Channel failures abort the cycle, never the process: rate limits sleep for
// the server-advised duration first, duplicate-consumer and authorization
// failures abort immediately. Errors during async indexing are logged but do
// not fail the cycle.
package ingestion
