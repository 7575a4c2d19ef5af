// Package datasets implements the application layer for dataset collections.
//
// Service builds a dataset.Collection from configuration and owns the
// infrastructure behind it:
//   - membership from collection.datasets, or discovery under the root
//   - the info loader chain: tracing(cache(index(file))), each layer optional
//   - the SQLite index connection, closed by Service.Close
//
// Commands talk to Service instead of wiring loaders themselves, which keeps
// cmd free of infrastructure details.
package datasets
