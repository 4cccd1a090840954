// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports): loaders, model services, storage,
// configuration.
package driven
