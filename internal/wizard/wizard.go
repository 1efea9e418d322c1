// Package wizard holds the state of a linear multi-step entry form.
package wizard

import (
	"context"
	"errors"
	"fmt"
)

const (
	FirstStep = 1
	LastStep  = 3
)

var ErrNotLastStep = errors.New("wizard: submit is only allowed on the last step")

// Validator is implemented by the core entities.
type Validator interface {
	Validate() error
}

// Wizard walks a draft of T through steps 1..3. The draft lives only in
// memory; dropping the Wizard drops the input.
type Wizard[T Validator] struct {
	step  int
	draft T
	reset func() T
}

// New starts a wizard on the first step. init, when non-nil, supplies the
// starting draft and is called again after every successful submit.
func New[T Validator](init func() T) *Wizard[T] {
	if init == nil {
		init = func() T {
			var zero T
			return zero
		}
	}
	return &Wizard[T]{step: FirstStep, draft: init(), reset: init}
}

func (w *Wizard[T]) Step() int     { return w.step }
func (w *Wizard[T]) IsFirst() bool { return w.step == FirstStep }
func (w *Wizard[T]) IsLast() bool  { return w.step == LastStep }
func (w *Wizard[T]) Draft() T      { return w.draft }

// Next advances one step, stopping at LastStep.
func (w *Wizard[T]) Next() int {
	if w.step < LastStep {
		w.step++
	}
	return w.step
}

// Back goes back one step, stopping at FirstStep.
func (w *Wizard[T]) Back() int {
	if w.step > FirstStep {
		w.step--
	}
	return w.step
}

// Edit applies fn to the draft in place.
func (w *Wizard[T]) Edit(fn func(*T)) {
	fn(&w.draft)
}

// Submit validates the draft and hands it to create. On success the draft
// is reset and the wizard returns to the first step; on failure the draft
// and step are kept so the user can correct the input.
func (w *Wizard[T]) Submit(ctx context.Context, create func(context.Context, T) (T, error)) (T, error) {
	var zero T
	if !w.IsLast() {
		return zero, ErrNotLastStep
	}
	if err := w.draft.Validate(); err != nil {
		return zero, err
	}
	created, err := create(ctx, w.draft)
	if err != nil {
		return zero, fmt.Errorf("submit: %w", err)
	}
	w.draft = w.reset()
	w.step = FirstStep
	return created, nil
}
