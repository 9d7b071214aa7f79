package agimussot

import (
	"errors"
	"testing"

	"go.viam.com/rdk/logging"
)

func TestTaskRegistry(t *testing.T) {
	registry := NewTaskRegistry()
	logger := logging.NewTestLogger(t)

	a := newTask("pregrasp_a_task", nil, nil, nil, logger)
	b := newTask("pregrasp_b_task", nil, nil, nil, logger)

	t.Run("adds and looks up by name", func(t *testing.T) {
		if err := registry.Add(a); err != nil {
			t.Fatal(err)
		}
		if err := registry.Add(b); err != nil {
			t.Fatal(err)
		}
		got, ok := registry.Get("pregrasp_a_task")
		if !ok || got != a {
			t.Fatal("lookup did not return the registered task")
		}
		if registry.Len() != 2 {
			t.Fatalf("len = %d, want 2", registry.Len())
		}
	})

	t.Run("rejects duplicate names", func(t *testing.T) {
		dup := newTask("pregrasp_a_task", nil, nil, nil, logger)
		err := registry.Add(dup)
		if !errors.Is(err, ErrDuplicateTask) {
			t.Fatalf("expected ErrDuplicateTask, got %v", err)
		}
	})

	t.Run("names are sorted", func(t *testing.T) {
		names := registry.Names()
		if len(names) != 2 || names[0] != "pregrasp_a_task" || names[1] != "pregrasp_b_task" {
			t.Fatalf("names = %v", names)
		}
	})
}
