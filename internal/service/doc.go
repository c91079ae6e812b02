// Package service holds the application use cases: generating a roadmap
// (and queueing its market intelligence report) and serving report status
// and email dispatch. It coordinates the usage limiter, the language model
// collaborators, the job registry and the task runner without knowing how
// any of them are implemented.
package service
