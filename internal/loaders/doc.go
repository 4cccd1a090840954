// Package loaders provides format-specific text extraction and the
// registry that maps file extensions to loaders.
//
// Loaders produce plain text only; chunking and indexing are the
// pipeline's job.
package loaders
