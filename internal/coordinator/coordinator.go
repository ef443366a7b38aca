// Package coordinator owns the worker and task registries. All mutation
// goes through Coordinator methods; the two registries are guarded by
// separate locks, and every call site that needs both acquires the
// worker lock before the task lock.
package coordinator

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/virajbhartiya/map-reduce/internal/config"
	"github.com/virajbhartiya/map-reduce/internal/logger"
	"github.com/virajbhartiya/map-reduce/internal/types"
)

// updateChanCapacity bounds each subscriber's task-update queue.
// Sends that would block are dropped.
const updateChanCapacity = 100

// Coordinator tracks workers and tasks, drives heartbeat-based failure
// detection, and requeues the tasks of workers that stop reporting.
type Coordinator struct {
	cfg config.Config
	log *logger.Logger

	workersMu sync.RWMutex
	workers   map[string]*types.Worker

	tasksMu sync.RWMutex
	tasks   map[string]*types.Task

	subsMu sync.Mutex
	subs   []chan string
}

// New creates a coordinator with empty registries.
func New(cfg config.Config) *Coordinator {
	return &Coordinator{
		cfg:     cfg,
		log:     logger.New("coordinator", cfg.LogLevel),
		workers: make(map[string]*types.Worker),
		tasks:   make(map[string]*types.Task),
	}
}

// RegisterWorker adds a worker at the given address under a fresh id
// and returns the id. It always succeeds.
func (c *Coordinator) RegisterWorker(address string) string {
	workerID := "worker-" + uuid.New().String()[:8]
	c.RegisterWorkerID(workerID, address)
	return workerID
}

// RegisterWorkerID adds a worker under a caller-chosen id, replacing
// any existing record with that id. Used by gossip discovery, where the
// node name is the identity.
func (c *Coordinator) RegisterWorkerID(workerID, address string) {
	c.workersMu.Lock()
	c.workers[workerID] = &types.Worker{
		ID:            workerID,
		Address:       address,
		LastHeartbeat: time.Now(),
	}
	c.workersMu.Unlock()

	c.log.Info("worker registered: id=%s address=%s", workerID, address)
}

// CreateTask mints a new task in the pending state and returns its id.
func (c *Coordinator) CreateTask() string {
	taskID := "task-" + uuid.New().String()[:8]

	c.tasksMu.Lock()
	c.tasks[taskID] = &types.Task{
		ID:     taskID,
		Status: types.TaskPending,
	}
	c.tasksMu.Unlock()

	return taskID
}

// AssignTask binds a pending task to a worker: the task becomes
// in_progress, its owner is recorded, and the task id is added to the
// worker's set, all under one critical section. It returns false and
// mutates nothing if the task or worker does not exist or the task is
// not pending, so racing callers see exactly one success.
func (c *Coordinator) AssignTask(taskID, workerID string) bool {
	c.workersMu.Lock()
	defer c.workersMu.Unlock()
	c.tasksMu.Lock()
	defer c.tasksMu.Unlock()

	task, ok := c.tasks[taskID]
	if !ok || task.Status != types.TaskPending {
		return false
	}
	worker, ok := c.workers[workerID]
	if !ok {
		return false
	}

	task.Status = types.TaskInProgress
	task.WorkerID = workerID
	worker.Tasks = append(worker.Tasks, taskID)

	c.log.Debug("task assigned: task=%s worker=%s", taskID, workerID)
	return true
}

// UpdateTaskStatus sets the task's status if the task exists and
// publishes the task id to subscribers. Moving a task out of
// in_progress releases its worker binding; in_progress itself is only
// entered through AssignTask.
func (c *Coordinator) UpdateTaskStatus(taskID string, status types.TaskStatus) {
	c.workersMu.Lock()
	c.tasksMu.Lock()

	task, ok := c.tasks[taskID]
	if !ok {
		c.tasksMu.Unlock()
		c.workersMu.Unlock()
		return
	}

	task.Status = status
	if status != types.TaskInProgress && task.WorkerID != "" {
		if worker, ok := c.workers[task.WorkerID]; ok {
			worker.Tasks = removeID(worker.Tasks, taskID)
		}
		task.WorkerID = ""
	}

	c.tasksMu.Unlock()
	c.workersMu.Unlock()

	c.publish(taskID)
}

// Heartbeat refreshes the worker's liveness timestamp. It reports
// whether the worker was known.
func (c *Coordinator) Heartbeat(workerID string) bool {
	c.workersMu.Lock()
	defer c.workersMu.Unlock()

	worker, ok := c.workers[workerID]
	if !ok {
		return false
	}
	worker.LastHeartbeat = time.Now()
	return true
}

// Touch refreshes the heartbeat record for the given identity, creating
// it if the identity is new. Ping uses this so that any worker that
// identifies itself starts being tracked.
func (c *Coordinator) Touch(workerID string) {
	if c.Heartbeat(workerID) {
		return
	}
	c.RegisterWorkerID(workerID, "")
}

// CheckWorkerHealth sweeps the worker registry and, for every worker
// whose heartbeat is older than the configured timeout, requeues each
// of its tasks (pending again, owner cleared, retry count bumped) and
// removes the worker record. Removal and requeueing happen together
// under the same critical section.
func (c *Coordinator) CheckWorkerHealth() {
	c.workersMu.Lock()
	defer c.workersMu.Unlock()
	c.tasksMu.Lock()
	defer c.tasksMu.Unlock()

	now := time.Now()
	for workerID, worker := range c.workers {
		if now.Sub(worker.LastHeartbeat) <= c.cfg.WorkerTimeout {
			continue
		}

		for _, taskID := range worker.Tasks {
			task, ok := c.tasks[taskID]
			if !ok {
				continue
			}
			task.Status = types.TaskPending
			task.WorkerID = ""
			task.Retries++
		}

		delete(c.workers, workerID)
		c.log.Warn("worker timed out, removed: id=%s requeued=%d", workerID, len(worker.Tasks))
	}
}

// Subscribe returns a channel receiving the ids of tasks whose status
// changed. Delivery is best effort: updates are dropped rather than
// block the publisher when a subscriber falls behind.
func (c *Coordinator) Subscribe() <-chan string {
	ch := make(chan string, updateChanCapacity)

	c.subsMu.Lock()
	c.subs = append(c.subs, ch)
	c.subsMu.Unlock()

	return ch
}

func (c *Coordinator) publish(taskID string) {
	c.subsMu.Lock()
	defer c.subsMu.Unlock()

	for _, ch := range c.subs {
		select {
		case ch <- taskID:
		default:
		}
	}
}

// Task returns a snapshot of a task record.
func (c *Coordinator) Task(taskID string) (types.Task, bool) {
	c.tasksMu.RLock()
	defer c.tasksMu.RUnlock()

	task, ok := c.tasks[taskID]
	if !ok {
		return types.Task{}, false
	}
	return *task, true
}

// Worker returns a snapshot of a worker record.
func (c *Coordinator) Worker(workerID string) (types.Worker, bool) {
	c.workersMu.RLock()
	defer c.workersMu.RUnlock()

	worker, ok := c.workers[workerID]
	if !ok {
		return types.Worker{}, false
	}
	snapshot := *worker
	snapshot.Tasks = append([]string(nil), worker.Tasks...)
	return snapshot, true
}

// Workers returns a snapshot of every worker record keyed by id.
func (c *Coordinator) Workers() map[string]types.Worker {
	c.workersMu.RLock()
	defer c.workersMu.RUnlock()

	out := make(map[string]types.Worker, len(c.workers))
	for id, worker := range c.workers {
		snapshot := *worker
		snapshot.Tasks = append([]string(nil), worker.Tasks...)
		out[id] = snapshot
	}
	return out
}

// Tasks returns a snapshot of every task record keyed by id.
func (c *Coordinator) Tasks() map[string]types.Task {
	c.tasksMu.RLock()
	defer c.tasksMu.RUnlock()

	out := make(map[string]types.Task, len(c.tasks))
	for id, task := range c.tasks {
		out[id] = *task
	}
	return out
}

func removeID(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
