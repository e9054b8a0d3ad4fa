package subject

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/mahudhurio/core"
)

type (
	Subject struct {
		ID        int            `json:"id"`
		Name      string         `json:"name"`
		CreatedAt core.Timestamp `json:"created_at"`
	}

	NewSubject struct {
		Name string `json:"name" form:"name" validate:"required"`
	}
)

// AddedOn is the creation date shown on a subject card.
func (s Subject) AddedOn() string {
	if s.CreatedAt.IsZero() {
		return ""
	}
	return s.CreatedAt.Format("Jan 2, 2006")
}

func (ns *NewSubject) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	return validate.Struct(ns)
}

// AddFormState is the visibility of the inline "add subject" form.
type AddFormState int

const (
	AddFormHidden AddFormState = iota
	AddFormVisible
)

// ParseAddFormState maps "visible" to AddFormVisible and anything else to AddFormHidden.
func ParseAddFormState(s string) AddFormState {
	if s == AddFormVisible.String() {
		return AddFormVisible
	}
	return AddFormHidden
}

func (s AddFormState) String() string {
	if s == AddFormVisible {
		return "visible"
	}
	return "hidden"
}

// Toggle is the "+ Add Subject" button.
func (s AddFormState) Toggle() AddFormState {
	if s == AddFormVisible {
		return AddFormHidden
	}
	return AddFormVisible
}

// Cancel discards the input and hides the form.
func (s AddFormState) Cancel() AddFormState { return AddFormHidden }

// Created closes the form once the backend accepted the new subject.
func (s AddFormState) Created() AddFormState { return AddFormHidden }

// DeleteState is the per-card delete confirmation step.
type DeleteState int

const (
	DeleteIdle DeleteState = iota
	DeleteConfirming
)

func (s DeleteState) String() string {
	if s == DeleteConfirming {
		return "confirming"
	}
	return "idle"
}

// Request asks for confirmation before deleting.
func (s DeleteState) Request() DeleteState { return DeleteConfirming }

// Cancel backs out of the confirmation.
func (s DeleteState) Cancel() DeleteState { return DeleteIdle }
