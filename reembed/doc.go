// Package reembed provides functionality for reembedding existing catalog
// entries with new or updated embedding models.
//
// The vector index is derived from the catalog and never the source of
// truth, so a full rebuild is always safe. This package supports batch
// processing of catalog entries, progress tracking, retry logic with
// exponential backoff, and vector normalization.
package reembed
