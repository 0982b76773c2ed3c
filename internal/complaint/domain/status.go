package domain

import (
	"strings"

	"github.com/disnaker/sipelan/internal/shared/errors"
)

// Status defines the lifecycle state of a complaint
type Status string

const (
	// StatusSubmitted is the sole initial state: a citizen submission
	// awaiting verification by intake staff.
	StatusSubmitted Status = "submitted"
	// StatusVerified means intake staff confirmed the complaint is genuine
	// and complete; it is ready for disposition.
	StatusVerified Status = "verified"
	// StatusRouted means the complaint has been disposed to a unit (bidang).
	StatusRouted Status = "routed"
	// StatusInProgress means the assigned unit is working the complaint.
	StatusInProgress Status = "in_progress"
	// StatusResolved is terminal. Only an administrative override outside
	// the workflow can touch a resolved complaint.
	StatusResolved Status = "resolved"
)

// legacyAliases maps status strings from the previous SIPelan installation
// (and its two-state shorthand) to canonical states. The old system compared
// raw strings, so the same state appears under several spellings.
var legacyAliases = map[string]Status{
	"masuk":           StatusSubmitted,
	"diterima":        StatusVerified,
	"received":        StatusVerified,
	"terverifikasi":   StatusVerified,
	"didisposisikan":  StatusRouted,
	"disposisi":       StatusRouted,
	"di proses":       StatusInProgress,
	"diproses":        StatusInProgress,
	"in-progress":     StatusInProgress,
	"selesai":         StatusResolved,
	"done":            StatusResolved,
}

// ParseStatus normalizes a raw status string to a canonical Status.
// Canonical names and legacy aliases are accepted; anything else is a
// ValidationError, never a silent fall-through.
func ParseStatus(raw string) (Status, error) {
	s := strings.ToLower(strings.TrimSpace(raw))

	switch Status(s) {
	case StatusSubmitted, StatusVerified, StatusRouted, StatusInProgress, StatusResolved:
		return Status(s), nil
	}

	if canonical, ok := legacyAliases[s]; ok {
		return canonical, nil
	}

	return "", errors.Validation("unknown complaint status", map[string]string{"status": raw})
}

// Valid reports whether s is one of the canonical states.
func (s Status) Valid() bool {
	switch s {
	case StatusSubmitted, StatusVerified, StatusRouted, StatusInProgress, StatusResolved:
		return true
	}
	return false
}

// Terminal reports whether no further workflow transitions are permitted.
func (s Status) Terminal() bool {
	return s == StatusResolved
}

// nextWorkState returns the state Advance moves to from s.
func (s Status) nextWorkState() (Status, bool) {
	switch s {
	case StatusRouted:
		return StatusInProgress, true
	case StatusInProgress:
		return StatusResolved, true
	}
	return "", false
}
