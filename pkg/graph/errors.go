package graph

import "errors"

var (
	ErrNodeNotFound       = errors.New("node not found")
	ErrPinNotFound        = errors.New("pin not found")
	ErrConnectionNotFound = errors.New("connection not found")
	ErrDuplicateNode      = errors.New("node already present")
	ErrIncompatiblePins   = errors.New("pins cannot be connected")

	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")

	// Command state machine: created -> executed <-> undone. Re-executing
	// an executed command or undoing an undone one is rejected so interactive
	// delete/undo/redo cycles cannot double-apply.
	ErrAlreadyExecuted = errors.New("command already executed")
	ErrNotExecuted     = errors.New("command not executed")
)
