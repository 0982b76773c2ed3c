package domain

import (
	"testing"

	"github.com/disnaker/sipelan/internal/shared/errors"
	"github.com/disnaker/sipelan/internal/shared/types"
)

func newTestComplaint(t *testing.T) *Complaint {
	t.Helper()
	c, err := NewComplaint(types.NewID(), "Upah di bawah UMK", "Perusahaan membayar di bawah upah minimum", Reporter{
		Name:  "Budi Santoso",
		Email: "budi@example.com",
	}, false)
	if err != nil {
		t.Fatalf("NewComplaint returned error: %v", err)
	}
	return c
}

// TestNewComplaint tests creating a complaint
func TestNewComplaint(t *testing.T) {
	c := newTestComplaint(t)

	if c.ID.IsZero() {
		t.Error("Expected non-zero ID")
	}
	if c.Status != StatusSubmitted {
		t.Errorf("Expected status %s, got %s", StatusSubmitted, c.Status)
	}
	if c.UnitID != nil {
		t.Error("Expected no unit assignment on a new complaint")
	}
	if len(c.History) != 1 {
		t.Fatalf("Expected 1 history entry, got %d", len(c.History))
	}
	if c.History[0].Status != StatusSubmitted {
		t.Errorf("Expected initial history status %s, got %s", StatusSubmitted, c.History[0].Status)
	}
	if c.History[0].ActorRole != ActorSystem {
		t.Errorf("Expected initial history actor %s, got %s", ActorSystem, c.History[0].ActorRole)
	}
}

// TestNewComplaintValidation tests required field validation
func TestNewComplaintValidation(t *testing.T) {
	_, err := NewComplaint("", "", "", Reporter{}, false)
	if err == nil {
		t.Fatal("Expected validation error")
	}
	if !errors.Is(err, errors.ErrValidation) {
		t.Fatalf("Expected validation error, got %v", err)
	}

	appErr := err.(*errors.AppError)
	for _, field := range []string{"category_id", "title", "body"} {
		if _, ok := appErr.Details[field]; !ok {
			t.Errorf("Expected validation detail for %s", field)
		}
	}
}

// TestNewComplaintAnonymousKeepsReporter tests that anonymity does not
// discard the reporter identity
func TestNewComplaintAnonymousKeepsReporter(t *testing.T) {
	c, err := NewComplaint(types.NewID(), "Judul", "Isi", Reporter{Name: "Siti", Email: "siti@example.com"}, true)
	if err != nil {
		t.Fatalf("NewComplaint returned error: %v", err)
	}
	if !c.Anonymous {
		t.Error("Expected anonymous flag")
	}
	if c.Reporter.Name != "Siti" || c.Reporter.Email != "siti@example.com" {
		t.Error("Expected reporter identity to be retained internally")
	}
}

// TestVerify tests the submitted -> verified transition
func TestVerify(t *testing.T) {
	c := newTestComplaint(t)
	actorID := types.NewID()

	entry, err := c.Verify(actorID, "admin")
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if c.Status != StatusVerified {
		t.Errorf("Expected status %s, got %s", StatusVerified, c.Status)
	}
	if entry.Status != StatusVerified {
		t.Errorf("Expected entry status %s, got %s", StatusVerified, entry.Status)
	}
	if entry.ActorID == nil || *entry.ActorID != actorID {
		t.Error("Expected entry to record the acting user")
	}

	// Second verify must fail.
	if _, err := c.Verify(actorID, "admin"); !errors.Is(err, errors.ErrInvalidTransition) {
		t.Errorf("Expected invalid transition on double verify, got %v", err)
	}
}

// TestDisposeRequiresVerified tests that disposition is rejected before
// verification
func TestDisposeRequiresVerified(t *testing.T) {
	c := newTestComplaint(t)

	_, _, err := c.Dispose(types.NewID(), "bidang pengawasan", types.NewID(), "admin")
	if !errors.Is(err, errors.ErrInvalidTransition) {
		t.Fatalf("Expected invalid transition, got %v", err)
	}
	if c.Status != StatusSubmitted {
		t.Errorf("Expected status unchanged, got %s", c.Status)
	}
}

// TestDispose tests routing a verified complaint
func TestDispose(t *testing.T) {
	c := newTestComplaint(t)
	actorID := types.NewID()
	unitID := types.NewID()

	if _, err := c.Verify(actorID, "admin"); err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}

	disposition, entry, err := c.Dispose(unitID, "sesuai kategori", actorID, "admin")
	if err != nil {
		t.Fatalf("Dispose returned error: %v", err)
	}

	if c.Status != StatusRouted {
		t.Errorf("Expected status %s, got %s", StatusRouted, c.Status)
	}
	if c.UnitID == nil || *c.UnitID != unitID {
		t.Error("Expected unit assignment")
	}
	if disposition.FromUnitID != nil {
		t.Error("Expected nil from_unit on first disposition")
	}
	if disposition.ToUnitID != unitID {
		t.Errorf("Expected to_unit %s, got %s", unitID, disposition.ToUnitID)
	}
	if entry.Status != StatusRouted {
		t.Errorf("Expected entry status %s, got %s", StatusRouted, entry.Status)
	}
}

// TestRedispose tests unit-to-unit referral of a routed complaint
func TestRedispose(t *testing.T) {
	c := newTestComplaint(t)
	actorID := types.NewID()
	firstUnit := types.NewID()
	secondUnit := types.NewID()

	c.Verify(actorID, "admin")
	c.Dispose(firstUnit, "", actorID, "admin")

	disposition, _, err := c.Dispose(secondUnit, "salah bidang", actorID, "staff")
	if err != nil {
		t.Fatalf("Redispose returned error: %v", err)
	}

	if disposition.FromUnitID == nil || *disposition.FromUnitID != firstUnit {
		t.Error("Expected from_unit to record the previous assignment")
	}
	if c.UnitID == nil || *c.UnitID != secondUnit {
		t.Error("Expected unit reassignment")
	}
	if c.Status != StatusRouted {
		t.Errorf("Expected status %s, got %s", StatusRouted, c.Status)
	}
}

// TestDisposeToSameUnit tests that routing to the current unit is rejected
func TestDisposeToSameUnit(t *testing.T) {
	c := newTestComplaint(t)
	actorID := types.NewID()
	unitID := types.NewID()

	c.Verify(actorID, "admin")
	c.Dispose(unitID, "", actorID, "admin")

	_, _, err := c.Dispose(unitID, "", actorID, "admin")
	if !errors.Is(err, errors.ErrValidation) {
		t.Fatalf("Expected validation error, got %v", err)
	}
}

// TestAdvance tests the work states in order
func TestAdvance(t *testing.T) {
	c := newTestComplaint(t)
	actorID := types.NewID()

	c.Verify(actorID, "admin")
	c.Dispose(types.NewID(), "", actorID, "admin")

	entry, err := c.Advance("mulai pemeriksaan", actorID, "staff")
	if err != nil {
		t.Fatalf("Advance returned error: %v", err)
	}
	if c.Status != StatusInProgress {
		t.Errorf("Expected status %s, got %s", StatusInProgress, c.Status)
	}
	if entry.Note != "mulai pemeriksaan" {
		t.Errorf("Expected note preserved, got %q", entry.Note)
	}

	if _, err := c.Advance("selesai ditangani", actorID, "staff"); err != nil {
		t.Fatalf("Advance returned error: %v", err)
	}
	if c.Status != StatusResolved {
		t.Errorf("Expected status %s, got %s", StatusResolved, c.Status)
	}

	// Resolved is terminal.
	if _, err := c.Advance("lagi", actorID, "staff"); !errors.Is(err, errors.ErrInvalidTransition) {
		t.Errorf("Expected invalid transition past resolved, got %v", err)
	}
}

// TestAdvanceSkipsNothing tests that advance is rejected before routing
func TestAdvanceSkipsNothing(t *testing.T) {
	c := newTestComplaint(t)
	actorID := types.NewID()

	if _, err := c.Advance("", actorID, "staff"); !errors.Is(err, errors.ErrInvalidTransition) {
		t.Errorf("Expected invalid transition from submitted, got %v", err)
	}

	c.Verify(actorID, "admin")
	if _, err := c.Advance("", actorID, "staff"); !errors.Is(err, errors.ErrInvalidTransition) {
		t.Errorf("Expected invalid transition from verified, got %v", err)
	}
}

// TestHistoryAppendOnly tests that each transition appends exactly one entry
func TestHistoryAppendOnly(t *testing.T) {
	c := newTestComplaint(t)
	actorID := types.NewID()

	c.Verify(actorID, "admin")
	c.Dispose(types.NewID(), "", actorID, "admin")
	c.Advance("", actorID, "staff")
	c.Advance("", actorID, "staff")

	want := []Status{StatusSubmitted, StatusVerified, StatusRouted, StatusInProgress, StatusResolved}
	if len(c.History) != len(want) {
		t.Fatalf("Expected %d history entries, got %d", len(want), len(c.History))
	}
	for i, s := range want {
		if c.History[i].Status != s {
			t.Errorf("History[%d] = %s, want %s", i, c.History[i].Status, s)
		}
	}
}
