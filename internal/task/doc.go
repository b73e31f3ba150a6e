// Package task runs background work off the request path. A TaskQueue buffers
// tasks, a WorkerPool drains it with a fixed number of goroutines, and
// EventDispatcher turns emitted learner events into tasks so slow event
// consumers never delay an answer submission.
package task
