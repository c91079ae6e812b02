// Package task runs background work on a bounded in-memory queue drained by
// a fixed pool of workers. ReportTask, the market intelligence report
// pipeline, is the task the service submits.
package task
