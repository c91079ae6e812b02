// Package jobs tracks the lifecycle of asynchronous market-intelligence
// report jobs. The Registry owns its lock; callers create jobs, read copies
// and move jobs between states only through an atomic compare-and-set.
package jobs
