package domain

import "fmt"

type InsertionMode string

const (
	InsertionUnconstrained         InsertionMode = "unconstrained"
	InsertionSoftBefore            InsertionMode = "soft-before"
	InsertionSoftAfter             InsertionMode = "soft-after"
	InsertionHardImmediatelyBefore InsertionMode = "hard-immediately-before"
	InsertionHardImmediatelyAfter  InsertionMode = "hard-immediately-after"
)

// ParseInsertionMode accepts a mode name; the empty string means unconstrained.
func ParseInsertionMode(s string) (InsertionMode, error) {
	switch m := InsertionMode(s); m {
	case "":
		return InsertionUnconstrained, nil
	case InsertionUnconstrained, InsertionSoftBefore, InsertionSoftAfter,
		InsertionHardImmediatelyBefore, InsertionHardImmediatelyAfter:
		return m, nil
	}
	return "", fmt.Errorf("parse insertion mode %q: %w", s, ErrInvalidInsertionMode)
}

// Soft reports whether the mode is enforced by a forbidden sequence.
func (m InsertionMode) Soft() bool {
	return m == InsertionSoftBefore || m == InsertionSoftAfter
}

// Hard reports whether the mode splices the new stops into a respected sequence.
func (m InsertionMode) Hard() bool {
	return m == InsertionHardImmediatelyBefore || m == InsertionHardImmediatelyAfter
}

// Operator policy for where newly added stops land relative to the previous Solution.
type InsertionDirective struct {
	Mode         InsertionMode `json:"mode"`
	AnchorStopID string        `json:"anchor_stop_id,omitempty"`
}

// Anchored reports whether the directive references an anchor stop.
func (d InsertionDirective) Anchored() bool {
	return d.Mode != "" && d.Mode != InsertionUnconstrained
}

// Validate checks the directive against the catalog.
// The anchor must exist, must not be a depot and must already be routed.
func (d InsertionDirective) Validate(c *StopCatalog) error {
	if _, err := ParseInsertionMode(string(d.Mode)); err != nil {
		return err
	}
	if !d.Anchored() {
		return nil
	}

	anchor, ok := c.Get(d.AnchorStopID)
	if !ok {
		return fmt.Errorf("insertion directive: stop %q: %w", d.AnchorStopID, ErrAnchorNotFound)
	}
	if anchor.IsDepot {
		return fmt.Errorf("insertion directive: stop %q: %w", d.AnchorStopID, ErrAnchorIsDepot)
	}
	if !anchor.Used {
		return fmt.Errorf("insertion directive: stop %q: %w", d.AnchorStopID, ErrAnchorNotUsed)
	}
	return nil
}
