// Package domain contains the core business types for the question
// answering pipeline: documents, fragments, answers, configuration and
// the error taxonomy. It has no dependencies on adapters or services.
package domain
