// Package types defines the shared domain model for the documentation
// knowledge base pipeline: documents, chunks, vectors, metadata, search
// results, and the error taxonomy used across packages.
package types
