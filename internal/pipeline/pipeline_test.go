package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/johnxie/sourcedrift/internal/model"
)

// fakeStep records whether it ran and can fail on demand.
type fakeStep struct {
	name string
	err  error
	ran  *[]string
}

func (s *fakeStep) Name() string { return s.name }

func (s *fakeStep) Do(_ context.Context, _ *model.Run) error {
	*s.ran = append(*s.ran, s.name)
	return s.err
}

// TestPipelineExecute tests step sequencing.
func TestPipelineExecute(t *testing.T) {
	t.Parallel()

	t.Run("executes steps in order", func(t *testing.T) {
		t.Parallel()

		var ran []string
		p := New()
		p.AddSteps(
			&fakeStep{name: "first", ran: &ran},
			&fakeStep{name: "second", ran: &ran},
			&fakeStep{name: "third", ran: &ran},
		)

		run := model.NewRun("corpus")
		if err := p.Execute(context.Background(), run); err != nil {
			t.Fatalf("Execute() error = %v", err)
		}

		want := []string{"first", "second", "third"}
		if len(ran) != len(want) {
			t.Fatalf("ran = %v, want %v", ran, want)
		}
		for i := range want {
			if ran[i] != want[i] {
				t.Errorf("ran[%d] = %s, want %s", i, ran[i], want[i])
			}
		}
		if len(run.PerformedSteps) != 3 {
			t.Errorf("PerformedSteps = %v, want 3 entries", run.PerformedSteps)
		}
	})

	t.Run("a failing step aborts the rest", func(t *testing.T) {
		t.Parallel()

		stepErr := errors.New("boom")
		var ran []string
		p := New()
		p.AddSteps(
			&fakeStep{name: "first", ran: &ran},
			&fakeStep{name: "failing", err: stepErr, ran: &ran},
			&fakeStep{name: "never", ran: &ran},
		)

		run := model.NewRun("corpus")
		if err := p.Execute(context.Background(), run); !errors.Is(err, stepErr) {
			t.Fatalf("Execute() error = %v, want %v", err, stepErr)
		}

		if len(ran) != 2 {
			t.Errorf("ran = %v, want first and failing only", ran)
		}
		// The failing step is not recorded as performed
		if len(run.PerformedSteps) != 1 {
			t.Errorf("PerformedSteps = %v, want 1 entry", run.PerformedSteps)
		}
	})

	t.Run("cancelled context stops before the next step", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		var ran []string
		p := New()
		p.AddSteps(&fakeStep{name: "never", ran: &ran})

		if err := p.Execute(ctx, model.NewRun("corpus")); !errors.Is(err, context.Canceled) {
			t.Fatalf("Execute() error = %v, want context.Canceled", err)
		}
		if len(ran) != 0 {
			t.Errorf("ran = %v, want no steps", ran)
		}
	})
}

// TestPipelineStepNames tests step introspection.
func TestPipelineStepNames(t *testing.T) {
	t.Parallel()

	var ran []string
	p := New()
	p.AddStep(&fakeStep{name: "only", ran: &ran})

	if got := p.StepCount(); got != 1 {
		t.Errorf("StepCount() = %d, want 1", got)
	}
	if names := p.StepNames(); len(names) != 1 || names[0] != "only" {
		t.Errorf("StepNames() = %v", names)
	}
}

// TestDefaultPipelineShape tests the standard pipeline wiring.
func TestDefaultPipelineShape(t *testing.T) {
	t.Parallel()

	p := DefaultPipeline(nil, nil, nil, 0, 0)

	want := []string{"extract", "resolve", "fetch", "verify", "summarize"}
	names := p.StepNames()
	if len(names) != len(want) {
		t.Fatalf("StepNames() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("StepNames()[%d] = %s, want %s", i, names[i], want[i])
		}
	}
}
