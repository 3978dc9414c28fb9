package graph

import (
	"fmt"

	log "github.com/sirupsen/logrus"
)

// History is the two-stack undo/redo structure. Executing a new command
// clears the future stack; a failed execute, undo, or redo leaves both
// stacks exactly as they were and reports the failure to the caller.
type History struct {
	past   []Command
	future []Command
	logger *log.Entry
}

// NewHistory creates an empty history.
func NewHistory() *History {
	return &History{
		past:   make([]Command, 0),
		future: make([]Command, 0),
		logger: log.WithFields(log.Fields{"module": "command_history"}),
	}
}

// Execute runs the command; only on success is it pushed to the past stack
// and the future stack cleared.
func (h *History) Execute(cmd Command) error {
	if err := cmd.Execute(); err != nil {
		h.logger.Warnf("Command %q failed: %v", cmd.Name(), err)

		return fmt.Errorf("command %q: %w", cmd.Name(), err)
	}

	h.past = append(h.past, cmd)
	h.future = h.future[:0]

	return nil
}

// Undo reverses the most recent command. The command is popped only after
// its Undo succeeds.
func (h *History) Undo() error {
	if len(h.past) == 0 {
		return ErrNothingToUndo
	}

	cmd := h.past[len(h.past)-1]

	if err := cmd.Undo(); err != nil {
		h.logger.Warnf("Undo of %q failed: %v", cmd.Name(), err)

		return fmt.Errorf("undo %q: %w", cmd.Name(), err)
	}

	h.past = h.past[:len(h.past)-1]
	h.future = append(h.future, cmd)

	return nil
}

// Redo re-applies the most recently undone command.
func (h *History) Redo() error {
	if len(h.future) == 0 {
		return ErrNothingToRedo
	}

	cmd := h.future[len(h.future)-1]

	if err := cmd.Execute(); err != nil {
		h.logger.Warnf("Redo of %q failed: %v", cmd.Name(), err)

		return fmt.Errorf("redo %q: %w", cmd.Name(), err)
	}

	h.future = h.future[:len(h.future)-1]
	h.past = append(h.past, cmd)

	return nil
}

// CanUndo reports whether the past stack is non-empty.
func (h *History) CanUndo() bool {
	return len(h.past) > 0
}

// CanRedo reports whether the future stack is non-empty.
func (h *History) CanRedo() bool {
	return len(h.future) > 0
}

// PeekUndo returns the name of the command Undo would reverse.
func (h *History) PeekUndo() (string, bool) {
	if len(h.past) == 0 {
		return "", false
	}

	return h.past[len(h.past)-1].Name(), true
}

// PeekRedo returns the name of the command Redo would re-apply.
func (h *History) PeekRedo() (string, bool) {
	if len(h.future) == 0 {
		return "", false
	}

	return h.future[len(h.future)-1].Name(), true
}

// Clear drops both stacks.
func (h *History) Clear() {
	h.past = h.past[:0]
	h.future = h.future[:0]
}
