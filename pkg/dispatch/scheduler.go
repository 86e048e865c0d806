package dispatch

// Scheduler decides when a deferred batch flush runs. The engine never
// starts goroutines; deferral is cooperative and the owner of the task
// queue drives it.
type Scheduler interface {
	Schedule(task func())
}

// Immediate runs tasks inline. Cascaded flushes become synchronous
// recursion, which keeps single-command semantics simple and testable.
type Immediate struct{}

func (Immediate) Schedule(task func()) { task() }

// TaskQueue buffers tasks until the owner drains it, modelling a deferred
// tick. Not safe for concurrent use; the tree owner drives it from the
// same goroutine that dispatches commands.
type TaskQueue struct {
	tasks []func()
}

func (q *TaskQueue) Schedule(task func()) {
	q.tasks = append(q.tasks, task)
}

// Len reports how many tasks are pending.
func (q *TaskQueue) Len() int { return len(q.tasks) }

// Drain runs pending tasks in order until the queue is empty, including
// tasks scheduled by the tasks themselves.
func (q *TaskQueue) Drain() {
	for len(q.tasks) > 0 {
		task := q.tasks[0]
		q.tasks = q.tasks[1:]
		task()
	}
}
