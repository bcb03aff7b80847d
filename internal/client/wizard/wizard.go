// Package wizard drives navigation through the onboarding steps.
//
// The wizard sits on step 1..5 and ends in the Completed state. Entering a
// step loads it from the server. Next checks the step's required fields and
// flushes pending edits before moving on; on the last step it submits the
// form. Back and Jump flush without validating.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/onboarding/internal/client/api"
	"github.com/dmitrijs2005/onboarding/internal/common"
	"github.com/dmitrijs2005/onboarding/internal/steps"
)

// ErrCompleted is returned by navigation after the form was submitted.
var ErrCompleted = errors.New("wizard: form already submitted")

// IncompleteError lists the required fields still empty on a step.
type IncompleteError struct {
	Step   steps.Number
	Fields []string
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("step %d is incomplete: %s", e.Step, strings.Join(e.Fields, ", "))
}

// Is matches common.ErrValidation.
func (e *IncompleteError) Is(target error) bool {
	return target == common.ErrValidation
}

// Backend is the server side the wizard reads from and submits to.
type Backend interface {
	GetStep(ctx context.Context, n steps.Number) (map[string]any, error)
	SubmitForm(ctx context.Context) (*api.FormEntry, error)
}

// Autosaver holds local step state and syncs it to the server.
type Autosaver interface {
	Seed(n steps.Number, fields map[string]any)
	Local(n steps.Number) map[string]any
	Edit(n steps.Number, fields map[string]any)
	Flush(ctx context.Context, n steps.Number) error
}

type Wizard struct {
	backend   Backend
	autosave  Autosaver
	current   steps.Number
	completed bool
	entry     *api.FormEntry
}

func New(b Backend, a Autosaver) *Wizard {
	return &Wizard{backend: b, autosave: a, current: steps.First}
}

// Start loads the first step.
func (w *Wizard) Start(ctx context.Context) error {
	return w.enter(ctx, steps.First)
}

func (w *Wizard) Current() steps.Number { return w.current }

func (w *Wizard) Completed() bool { return w.completed }

// Entry is the submitted form, nil until Completed.
func (w *Wizard) Entry() *api.FormEntry { return w.entry }

// Values returns the local state of the current step.
func (w *Wizard) Values() map[string]any {
	return w.autosave.Local(w.current)
}

// Set changes one field of the current step and schedules an autosave. The
// value is checked against the step schema first.
func (w *Wizard) Set(name string, value any) error {
	if w.completed {
		return ErrCompleted
	}
	if _, ok := steps.Lookup(w.current, name); !ok {
		return common.NewValidationError(name, "unknown field for step %d", w.current)
	}
	if _, err := steps.DecodeMap(w.current, map[string]any{name: value}); err != nil {
		return err
	}

	fields := w.autosave.Local(w.current)
	fields[name] = value
	w.autosave.Edit(w.current, fields)
	return nil
}

// Next validates the current step, saves it and advances. On the last step
// it submits the form instead.
func (w *Wizard) Next(ctx context.Context) error {
	if w.completed {
		return ErrCompleted
	}

	if missing := steps.Missing(w.current, w.autosave.Local(w.current)); len(missing) > 0 {
		return &IncompleteError{Step: w.current, Fields: missing}
	}
	if err := w.autosave.Flush(ctx, w.current); err != nil {
		return fmt.Errorf("save step %d: %w", w.current, err)
	}

	if w.current == steps.Last {
		entry, err := w.backend.SubmitForm(ctx)
		if err != nil {
			return fmt.Errorf("submit: %w", err)
		}
		w.entry = entry
		w.completed = true
		return nil
	}

	return w.enter(ctx, w.current+1)
}

// Back saves the current step and returns to the previous one. It does
// nothing on the first step.
func (w *Wizard) Back(ctx context.Context) error {
	if w.completed {
		return ErrCompleted
	}
	if w.current == steps.First {
		return nil
	}
	if err := w.autosave.Flush(ctx, w.current); err != nil {
		return fmt.Errorf("save step %d: %w", w.current, err)
	}
	return w.enter(ctx, w.current-1)
}

// Jump saves the current step and goes straight to n without validating the
// steps in between. Numbers outside the range land on the first step.
func (w *Wizard) Jump(ctx context.Context, n steps.Number) error {
	if w.completed {
		return ErrCompleted
	}
	if !n.Valid() {
		n = steps.First
	}
	if err := w.autosave.Flush(ctx, w.current); err != nil {
		return fmt.Errorf("save step %d: %w", w.current, err)
	}
	return w.enter(ctx, n)
}

func (w *Wizard) enter(ctx context.Context, n steps.Number) error {
	data, err := w.backend.GetStep(ctx, n)
	if err != nil {
		return fmt.Errorf("load step %d: %w", n, err)
	}
	w.autosave.Seed(n, data)
	w.current = n
	return nil
}

// Save flushes pending edits of the current step.
func (w *Wizard) Save(ctx context.Context) error {
	if w.completed {
		return nil
	}
	return w.autosave.Flush(ctx, w.current)
}
