package types

import "time"

// KeyValue is the intermediate key-value pair produced by map functions
// and consumed by reduce functions. Keys may repeat within one map
// invocation's output; grouping happens at reduce time.
type KeyValue struct {
	Key   string
	Value string
}

// TaskStatus represents the status of a task
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
	TaskFailed     TaskStatus = "failed"
)

// Task is the coordinator's record of one unit of work.
// WorkerID is set exactly while the task is in_progress.
type Task struct {
	ID       string
	Status   TaskStatus
	WorkerID string
	Retries  int
}

// Worker represents a worker node registered with the coordinator
type Worker struct {
	ID            string
	Address       string
	LastHeartbeat time.Time
	Tasks         []string
}
