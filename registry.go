package agimussot

import (
	"fmt"
	"sort"
	"sync"
)

// TaskRegistry tracks every task emitted for a control session by name.
// Duplicate task or feature names are a fatal configuration problem, caught
// here before the control loop starts.
type TaskRegistry struct {
	mu    sync.RWMutex
	tasks map[string]*Task
}

func NewTaskRegistry() *TaskRegistry {
	return &TaskRegistry{
		tasks: make(map[string]*Task),
	}
}

// Add registers a task, failing on a name collision.
func (r *TaskRegistry) Add(t *Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tasks[t.Name()]; exists {
		return fmt.Errorf("task %q: %w", t.Name(), ErrDuplicateTask)
	}
	r.tasks[t.Name()] = t
	return nil
}

// Get returns a registered task by name.
func (r *TaskRegistry) Get(name string) (*Task, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tasks[name]
	return t, ok
}

// Names lists the registered task names in sorted order.
func (r *TaskRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tasks))
	for name := range r.tasks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered tasks.
func (r *TaskRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tasks)
}
