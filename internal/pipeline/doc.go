// Package pipeline drives a lyrics run over a directory tree.
//
// An Orchestrator walks the scan root, and for every audio file checks the
// idempotent skip, extracts metadata, queries the lyrics client, and writes
// the sidecar. Files are processed by a bounded worker pool; one bad file is
// recorded as Failed and never aborts the batch. Results are kept in scan
// order regardless of completion order.
//
// Progress is reported as a stream of events (FileStarted, FileResult,
// RunCompleted), either to a synchronous sink passed to Run or through the
// channel of an asynchronous Run handle returned by Start. Cancellation is
// observed between files: no file is dispatched after the context is
// cancelled and the partial summary is returned with state Cancelled.
package pipeline
