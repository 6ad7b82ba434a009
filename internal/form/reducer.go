// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package form

// Mode selects when errors are recomputed.
type Mode int

const (
	// ValidateOnSubmit validates on submit, then on every change once the
	// form has been submitted at least once.
	ValidateOnSubmit Mode = iota
	// ValidateOnChange validates on every change from the start.
	ValidateOnChange
)

// State is the complete form state. It is a value: Reduce never mutates its
// input.
type State struct {
	Values    Values
	Errors    FieldErrors
	Touched   map[Field]bool
	Submitted bool
	Mode      Mode

	initial Values
}

// NewState returns a fresh form seeded with initial.
func NewState(mode Mode, initial Values) State {
	return State{
		Values:  initial,
		Errors:  FieldErrors{},
		Touched: map[Field]bool{},
		Mode:    mode,
		initial: initial,
	}
}

// Valid reports whether the last validation pass, triggered by a submit,
// found no errors.
func (s State) Valid() bool {
	return s.Submitted && s.Errors.Empty()
}

// Action is an input to Reduce.
type Action interface {
	isAction()
}

// SetField replaces the value of one input.
type SetField struct {
	Field Field
	Value string
}

// Submit validates the whole form.
type Submit struct{}

// Reset restores the initial values and clears errors.
type Reset struct{}

func (SetField) isAction() {}
func (Submit) isAction()   {}
func (Reset) isAction()    {}

// Reduce returns the state that results from applying a to s.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case SetField:
		next := s.clone()
		next.Values = s.Values.With(a.Field, a.Value)
		next.Touched[a.Field] = true
		switch {
		case s.Submitted:
			next.Errors = Validate(next.Values)
		case s.Mode == ValidateOnChange:
			next.Errors = onlyTouched(Validate(next.Values), next.Touched)
		}
		return next

	case Submit:
		next := s.clone()
		next.Submitted = true
		next.Errors = Validate(s.Values)
		return next

	case Reset:
		return NewState(s.Mode, s.initial)
	}
	return s
}

// onlyTouched drops errors for inputs the user has not edited yet.
func onlyTouched(errs FieldErrors, touched map[Field]bool) FieldErrors {
	for f := range errs {
		if !touched[f] {
			delete(errs, f)
		}
	}
	return errs
}

// clone copies the maps so the returned state shares nothing mutable with s.
func (s State) clone() State {
	next := s
	next.Touched = make(map[Field]bool, len(s.Touched)+1)
	for k, v := range s.Touched {
		next.Touched[k] = v
	}
	next.Errors = make(FieldErrors, len(s.Errors))
	for k, v := range s.Errors {
		next.Errors[k] = v
	}
	return next
}
