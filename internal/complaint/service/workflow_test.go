package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/disnaker/sipelan/internal/complaint/domain"
	"github.com/disnaker/sipelan/internal/notification"
	"github.com/disnaker/sipelan/internal/shared/auth"
	"github.com/disnaker/sipelan/internal/shared/errors"
	"github.com/disnaker/sipelan/internal/shared/types"
	"github.com/disnaker/sipelan/internal/unit"
)

// --- In-memory fakes ---

type memRepo struct {
	mu           sync.Mutex
	complaints   map[types.ID]*domain.Complaint
	history      map[types.ID][]domain.StatusEntry
	dispositions map[types.ID][]domain.Disposition
	takenCodes   map[string]bool
}

func newMemRepo() *memRepo {
	return &memRepo{
		complaints:   make(map[types.ID]*domain.Complaint),
		history:      make(map[types.ID][]domain.StatusEntry),
		dispositions: make(map[types.ID][]domain.Disposition),
		takenCodes:   make(map[string]bool),
	}
}

func (r *memRepo) Save(ctx context.Context, c *domain.Complaint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.takenCodes[c.Code] {
		return errors.DuplicateCode(c.Code)
	}

	stored := *c
	stored.History = nil
	r.complaints[c.ID] = &stored
	r.history[c.ID] = append([]domain.StatusEntry{}, c.History...)
	r.takenCodes[c.Code] = true
	return nil
}

func (r *memRepo) FindByID(ctx context.Context, id types.ID) (*domain.Complaint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.complaints[id]
	if !ok {
		return nil, errors.NotFound("complaint", id.String())
	}
	c := *stored
	return &c, nil
}

func (r *memRepo) FindByCode(ctx context.Context, code string) (*domain.Complaint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, stored := range r.complaints {
		if stored.Code == code {
			c := *stored
			return &c, nil
		}
	}
	return nil, errors.NotFound("complaint", code)
}

func (r *memRepo) CodeExists(ctx context.Context, code string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.takenCodes[code], nil
}

func (r *memRepo) ApplyTransition(ctx context.Context, t *domain.Transition) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.complaints[t.ComplaintID]
	if !ok {
		return errors.NotFound("complaint", t.ComplaintID.String())
	}
	if stored.Status != t.From {
		return errors.InvalidTransition("complaint status changed concurrently", map[string]string{
			"expected": string(t.From),
			"actual":   string(stored.Status),
		})
	}

	stored.Status = t.To
	if t.UnitID != nil {
		unitID := *t.UnitID
		stored.UnitID = &unitID
	}
	stored.UpdatedAt = t.UpdatedAt
	r.history[t.ComplaintID] = append(r.history[t.ComplaintID], t.Entry)
	if t.Disposition != nil {
		r.dispositions[t.ComplaintID] = append(r.dispositions[t.ComplaintID], *t.Disposition)
	}
	return nil
}

func (r *memRepo) GetTimeline(ctx context.Context, complaintID types.ID) ([]domain.StatusEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.StatusEntry{}, r.history[complaintID]...), nil
}

func (r *memRepo) GetDispositions(ctx context.Context, complaintID types.ID) ([]domain.Disposition, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Disposition{}, r.dispositions[complaintID]...), nil
}

func (r *memRepo) List(ctx context.Context, filter domain.ListFilter) ([]domain.Complaint, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []domain.Complaint
	for _, stored := range r.complaints {
		if filter.UnitID != nil && (stored.UnitID == nil || *stored.UnitID != *filter.UnitID) {
			continue
		}
		if filter.Status != nil && stored.Status != *filter.Status {
			continue
		}
		result = append(result, *stored)
	}
	return result, len(result), nil
}

func (r *memRepo) Delete(ctx context.Context, id types.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.complaints[id]; !ok {
		return errors.NotFound("complaint", id.String())
	}
	delete(r.complaints, id)
	delete(r.history, id)
	delete(r.dispositions, id)
	return nil
}

type memCategories struct {
	categories map[types.ID]*domain.Category
}

func (r *memCategories) Create(ctx context.Context, cat *domain.Category) error {
	r.categories[cat.ID] = cat
	return nil
}

func (r *memCategories) FindByID(ctx context.Context, id types.ID) (*domain.Category, error) {
	cat, ok := r.categories[id]
	if !ok {
		return nil, errors.NotFound("category", id.String())
	}
	return cat, nil
}

func (r *memCategories) List(ctx context.Context) ([]domain.Category, error) {
	var result []domain.Category
	for _, cat := range r.categories {
		result = append(result, *cat)
	}
	return result, nil
}

func (r *memCategories) Update(ctx context.Context, cat *domain.Category) error { return nil }
func (r *memCategories) Delete(ctx context.Context, id types.ID) error          { return nil }

type memUnits struct {
	units map[types.ID]*unit.Unit
}

func (r *memUnits) GetUnit(ctx context.Context, id types.ID) (*unit.Unit, error) {
	u, ok := r.units[id]
	if !ok {
		return nil, errors.NotFound("unit", id.String())
	}
	return u, nil
}

type capturedNotifier struct {
	mu   sync.Mutex
	sent []*notification.Notification
}

func (n *capturedNotifier) Enqueue(notif *notification.Notification) {
	if notif == nil {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notif)
}

func (n *capturedNotifier) byKind(kind notification.Kind) []*notification.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	var result []*notification.Notification
	for _, notif := range n.sent {
		if notif.Kind == kind {
			result = append(result, notif)
		}
	}
	return result
}

// --- Test fixture ---

type fixture struct {
	workflow   *Workflow
	repo       *memRepo
	notifier   *capturedNotifier
	categoryID types.ID
	unitID     types.ID
	unitB      types.ID
	admin      *auth.User
	staff      *auth.User
	staffB     *auth.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	categoryID := types.NewID()
	unitID := types.NewID()
	unitB := types.NewID()

	repo := newMemRepo()
	categories := &memCategories{categories: map[types.ID]*domain.Category{
		categoryID: {ID: categoryID, Name: "Pengupahan"},
	}}
	units := &memUnits{units: map[types.ID]*unit.Unit{
		unitID: {ID: unitID, Code: "PENGAWASAN", Name: "Bidang Pengawasan", NotificationEmail: "pengawasan@disnaker.go.id"},
		unitB:  {ID: unitB, Code: "HI", Name: "Bidang Hubungan Industrial"},
	}}
	notifier := &capturedNotifier{}

	return &fixture{
		workflow:   NewWorkflow(repo, categories, units, notifier, nil),
		repo:       repo,
		notifier:   notifier,
		categoryID: categoryID,
		unitID:     unitID,
		unitB:      unitB,
		admin:      &auth.User{ID: types.NewID(), Name: "Admin", Role: auth.RoleAdmin},
		staff:      &auth.User{ID: types.NewID(), Name: "Staf A", Role: auth.RoleStaff, UnitID: unitID},
		staffB:     &auth.User{ID: types.NewID(), Name: "Staf B", Role: auth.RoleStaff, UnitID: unitB},
	}
}

func (f *fixture) submit(t *testing.T) *domain.Complaint {
	t.Helper()
	c, err := f.workflow.Submit(context.Background(), SubmitRequest{
		CategoryID: f.categoryID,
		Title:      "Upah di bawah UMK",
		Body:       "Perusahaan membayar di bawah upah minimum kota",
		Reporter:   domain.Reporter{Name: "Budi", Email: "budi@example.com"},
	})
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	return c
}

// --- Tests ---

// TestSubmit tests intake: code format, initial state, notification
func TestSubmit(t *testing.T) {
	f := newFixture(t)
	c := f.submit(t)

	if !strings.HasPrefix(c.Code, "ADU-") {
		t.Errorf("Expected ADU- code prefix, got %q", c.Code)
	}
	parts := strings.Split(c.Code, "-")
	if len(parts) != 3 || len(parts[1]) != 4 || len(parts[2]) != 4 {
		t.Errorf("Expected ADU-YYYY-NNNN format, got %q", c.Code)
	}
	if c.Status != domain.StatusSubmitted {
		t.Errorf("Expected status %s, got %s", domain.StatusSubmitted, c.Status)
	}

	received := f.notifier.byKind(notification.KindReceived)
	if len(received) != 1 {
		t.Fatalf("Expected 1 received notification, got %d", len(received))
	}
	if received[0].Recipient != "budi@example.com" {
		t.Errorf("Expected notification to reporter, got %s", received[0].Recipient)
	}
	if !strings.Contains(received[0].Body, c.Code) {
		t.Error("Expected notification body to carry the tracking code")
	}
}

// TestSubmitUnknownCategory tests category validation
func TestSubmitUnknownCategory(t *testing.T) {
	f := newFixture(t)

	_, err := f.workflow.Submit(context.Background(), SubmitRequest{
		CategoryID: types.NewID(),
		Title:      "Judul",
		Body:       "Isi",
	})
	if !errors.Is(err, errors.ErrValidation) {
		t.Fatalf("Expected validation error, got %v", err)
	}
}

// TestSubmitWithoutEmail tests that intake succeeds with no reporter email
// and simply sends nothing
func TestSubmitWithoutEmail(t *testing.T) {
	f := newFixture(t)

	_, err := f.workflow.Submit(context.Background(), SubmitRequest{
		CategoryID: f.categoryID,
		Title:      "Judul",
		Body:       "Isi",
		Anonymous:  true,
	})
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if len(f.notifier.sent) != 0 {
		t.Errorf("Expected no notifications, got %d", len(f.notifier.sent))
	}
}

// TestCodeExhaustion tests that submission gives up with DuplicateCode
// once every candidate collides
func TestCodeExhaustion(t *testing.T) {
	f := newFixture(t)

	year := time.Now().Year()
	for i := 0; i < 10000; i++ {
		f.repo.takenCodes[fmt.Sprintf("ADU-%d-%04d", year, i)] = true
	}

	_, err := f.workflow.Submit(context.Background(), SubmitRequest{
		CategoryID: f.categoryID,
		Title:      "Judul",
		Body:       "Isi",
	})
	if !errors.Is(err, errors.ErrDuplicateCode) {
		t.Fatalf("Expected duplicate code error, got %v", err)
	}
}

// collidingRepo reports every code free at the pre-check but rejects the
// first n inserts, standing in for a racing submission that claims the
// code between check and insert.
type collidingRepo struct {
	*memRepo
	collisions int
	saveCalls  int
}

func (r *collidingRepo) Save(ctx context.Context, c *domain.Complaint) error {
	r.saveCalls++
	if r.collisions > 0 {
		r.collisions--
		return errors.DuplicateCode(c.Code)
	}
	return r.memRepo.Save(ctx, c)
}

func (r *collidingRepo) CodeExists(ctx context.Context, code string) (bool, error) {
	return false, nil
}

// TestSubmitRetriesOnInsertCollision tests that a duplicate code at
// insert time is retried with a fresh code, not surfaced to the caller
func TestSubmitRetriesOnInsertCollision(t *testing.T) {
	f := newFixture(t)
	repo := &collidingRepo{memRepo: f.repo, collisions: 2}
	workflow := NewWorkflow(repo, f.workflow.categories, f.workflow.units, f.notifier, nil)

	c, err := workflow.Submit(context.Background(), SubmitRequest{
		CategoryID: f.categoryID,
		Title:      "Judul",
		Body:       "Isi",
	})
	if err != nil {
		t.Fatalf("Submit returned error despite free codes remaining: %v", err)
	}
	if repo.saveCalls != 3 {
		t.Errorf("Expected 3 save attempts, got %d", repo.saveCalls)
	}
	if !strings.HasPrefix(c.Code, "ADU-") {
		t.Errorf("Expected ADU- code after retry, got %q", c.Code)
	}
}

// TestSubmitInsertCollisionExhaustion tests the bound on insert retries
func TestSubmitInsertCollisionExhaustion(t *testing.T) {
	f := newFixture(t)
	repo := &collidingRepo{memRepo: f.repo, collisions: maxCodeAttempts}
	workflow := NewWorkflow(repo, f.workflow.categories, f.workflow.units, f.notifier, nil)

	_, err := workflow.Submit(context.Background(), SubmitRequest{
		CategoryID: f.categoryID,
		Title:      "Judul",
		Body:       "Isi",
	})
	if !errors.Is(err, errors.ErrDuplicateCode) {
		t.Fatalf("Expected duplicate code error after exhausting retries, got %v", err)
	}
	if repo.saveCalls != maxCodeAttempts {
		t.Errorf("Expected %d save attempts, got %d", maxCodeAttempts, repo.saveCalls)
	}
}

// TestVerifyFlow tests admin verification through the engine
func TestVerifyFlow(t *testing.T) {
	f := newFixture(t)
	c := f.submit(t)

	verified, err := f.workflow.Verify(context.Background(), f.admin, c.ID)
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if verified.Status != domain.StatusVerified {
		t.Errorf("Expected status %s, got %s", domain.StatusVerified, verified.Status)
	}

	stored, _ := f.repo.FindByID(context.Background(), c.ID)
	if stored.Status != domain.StatusVerified {
		t.Errorf("Expected persisted status %s, got %s", domain.StatusVerified, stored.Status)
	}

	timeline, _ := f.repo.GetTimeline(context.Background(), c.ID)
	if len(timeline) != 2 {
		t.Fatalf("Expected 2 timeline entries, got %d", len(timeline))
	}
}

// TestVerifyForbiddenForStaff tests that staff cannot verify
func TestVerifyForbiddenForStaff(t *testing.T) {
	f := newFixture(t)
	c := f.submit(t)

	_, err := f.workflow.Verify(context.Background(), f.staff, c.ID)
	if !errors.Is(err, errors.ErrForbidden) {
		t.Fatalf("Expected forbidden, got %v", err)
	}
}

// TestDisposeFlow tests routing with unit resolution and notifications
func TestDisposeFlow(t *testing.T) {
	f := newFixture(t)
	c := f.submit(t)
	ctx := context.Background()

	f.workflow.Verify(ctx, f.admin, c.ID)

	routed, err := f.workflow.Dispose(ctx, f.admin, c.ID, f.unitID, "sesuai kategori pengupahan")
	if err != nil {
		t.Fatalf("Dispose returned error: %v", err)
	}
	if routed.Status != domain.StatusRouted {
		t.Errorf("Expected status %s, got %s", domain.StatusRouted, routed.Status)
	}
	if routed.UnitID == nil || *routed.UnitID != f.unitID {
		t.Error("Expected unit assignment")
	}

	dispositions, _ := f.repo.GetDispositions(ctx, c.ID)
	if len(dispositions) != 1 {
		t.Fatalf("Expected 1 disposition, got %d", len(dispositions))
	}

	unitMail := f.notifier.byKind(notification.KindDisposition)
	if len(unitMail) != 1 {
		t.Fatalf("Expected 1 disposition notification, got %d", len(unitMail))
	}
	if unitMail[0].Recipient != "pengawasan@disnaker.go.id" {
		t.Errorf("Expected unit mailbox recipient, got %s", unitMail[0].Recipient)
	}
}

// TestDisposeUnknownUnit tests destination validation
func TestDisposeUnknownUnit(t *testing.T) {
	f := newFixture(t)
	c := f.submit(t)
	ctx := context.Background()

	f.workflow.Verify(ctx, f.admin, c.ID)

	_, err := f.workflow.Dispose(ctx, f.admin, c.ID, types.NewID(), "")
	if !errors.Is(err, errors.ErrValidation) {
		t.Fatalf("Expected validation error, got %v", err)
	}
}

// TestDisposeBeforeVerify tests the ordering rule end to end
func TestDisposeBeforeVerify(t *testing.T) {
	f := newFixture(t)
	c := f.submit(t)

	_, err := f.workflow.Dispose(context.Background(), f.admin, c.ID, f.unitID, "")
	if !errors.Is(err, errors.ErrInvalidTransition) {
		t.Fatalf("Expected invalid transition, got %v", err)
	}
}

// TestStaffReferral tests unit-to-unit referral by assigned staff
func TestStaffReferral(t *testing.T) {
	f := newFixture(t)
	c := f.submit(t)
	ctx := context.Background()

	f.workflow.Verify(ctx, f.admin, c.ID)
	f.workflow.Dispose(ctx, f.admin, c.ID, f.unitID, "")

	// Staff of the assigned unit may refer onward.
	referred, err := f.workflow.Dispose(ctx, f.staff, c.ID, f.unitB, "salah bidang")
	if err != nil {
		t.Fatalf("Referral returned error: %v", err)
	}
	if referred.UnitID == nil || *referred.UnitID != f.unitB {
		t.Error("Expected reassignment to the second unit")
	}

	// Staff of an unrelated unit may not.
	_, err = f.workflow.Dispose(ctx, f.staff, c.ID, f.unitID, "kembalikan")
	if !errors.Is(err, errors.ErrForbidden) {
		t.Fatalf("Expected forbidden after reassignment, got %v", err)
	}
}

// TestAdvanceFlow tests working a complaint to resolution
func TestAdvanceFlow(t *testing.T) {
	f := newFixture(t)
	c := f.submit(t)
	ctx := context.Background()

	f.workflow.Verify(ctx, f.admin, c.ID)
	f.workflow.Dispose(ctx, f.admin, c.ID, f.unitID, "")

	// Wrong unit's staff cannot advance.
	if _, err := f.workflow.Advance(ctx, f.staffB, c.ID, ""); !errors.Is(err, errors.ErrForbidden) {
		t.Fatalf("Expected forbidden for other unit staff, got %v", err)
	}

	inProgress, err := f.workflow.Advance(ctx, f.staff, c.ID, "mulai pemeriksaan lapangan")
	if err != nil {
		t.Fatalf("Advance returned error: %v", err)
	}
	if inProgress.Status != domain.StatusInProgress {
		t.Errorf("Expected status %s, got %s", domain.StatusInProgress, inProgress.Status)
	}

	resolved, err := f.workflow.Advance(ctx, f.staff, c.ID, "pelanggaran ditindak")
	if err != nil {
		t.Fatalf("Advance returned error: %v", err)
	}
	if resolved.Status != domain.StatusResolved {
		t.Errorf("Expected status %s, got %s", domain.StatusResolved, resolved.Status)
	}

	// Resolution email uses the closing template.
	resolution := f.notifier.byKind(notification.KindResolution)
	if len(resolution) != 1 {
		t.Fatalf("Expected 1 resolution notification, got %d", len(resolution))
	}
}

// TestConcurrentWriterLoses tests the stored-status precondition
func TestConcurrentWriterLoses(t *testing.T) {
	f := newFixture(t)
	c := f.submit(t)
	ctx := context.Background()

	// Two admins load the same submitted complaint; the first verifies.
	if _, err := f.workflow.Verify(ctx, f.admin, c.ID); err != nil {
		t.Fatalf("First verify returned error: %v", err)
	}

	// The second verify now sees verified, not submitted.
	_, err := f.workflow.Verify(ctx, f.admin, c.ID)
	if !errors.Is(err, errors.ErrInvalidTransition) {
		t.Fatalf("Expected invalid transition for second writer, got %v", err)
	}

	// Exactly one history entry was appended beyond intake.
	timeline, _ := f.repo.GetTimeline(ctx, c.ID)
	if len(timeline) != 2 {
		t.Errorf("Expected 2 timeline entries, got %d", len(timeline))
	}
}

// TestTrack tests public tracking and anonymity masking
func TestTrack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	named := f.submit(t)

	incident := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	anon, err := f.workflow.Submit(ctx, SubmitRequest{
		CategoryID:   f.categoryID,
		Title:        "Pelecehan di tempat kerja",
		Body:         "Laporan rinci terlampir",
		Reporter:     domain.Reporter{Name: "Siti", Email: "siti@example.com"},
		Anonymous:    true,
		Location:     "Kawasan Industri Candi",
		IncidentDate: &incident,
	})
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}

	view, err := f.workflow.Track(ctx, named.Code)
	if err != nil {
		t.Fatalf("Track returned error: %v", err)
	}
	if view.ReporterName != "Budi" {
		t.Errorf("Expected reporter name on named complaint, got %q", view.ReporterName)
	}
	if view.Body != named.Body {
		t.Errorf("Expected complaint body on tracking view, got %q", view.Body)
	}
	if view.CategoryName != "Pengupahan" {
		t.Errorf("Expected category name on tracking view, got %q", view.CategoryName)
	}
	if view.UnitName != "" {
		t.Errorf("Expected no unit name before disposition, got %q", view.UnitName)
	}
	if len(view.Timeline) != 1 {
		t.Errorf("Expected 1 timeline event, got %d", len(view.Timeline))
	}

	if _, err := f.workflow.Verify(ctx, f.admin, named.ID); err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if _, err := f.workflow.Dispose(ctx, f.admin, named.ID, f.unitID, "Sesuai kategori"); err != nil {
		t.Fatalf("Dispose returned error: %v", err)
	}
	view, err = f.workflow.Track(ctx, named.Code)
	if err != nil {
		t.Fatalf("Track returned error: %v", err)
	}
	if view.UnitName != "Bidang Pengawasan" {
		t.Errorf("Expected assigned unit name after disposition, got %q", view.UnitName)
	}

	anonView, err := f.workflow.Track(ctx, anon.Code)
	if err != nil {
		t.Fatalf("Track returned error: %v", err)
	}
	if anonView.ReporterName != "" {
		t.Errorf("Expected masked reporter on anonymous complaint, got %q", anonView.ReporterName)
	}
	if anonView.Location != "Kawasan Industri Candi" {
		t.Errorf("Expected incident location on tracking view, got %q", anonView.Location)
	}
	if anonView.IncidentDate == nil || !anonView.IncidentDate.Equal(incident) {
		t.Errorf("Expected incident date on tracking view, got %v", anonView.IncidentDate)
	}

	// Identity is still stored internally.
	stored, _ := f.repo.FindByID(ctx, anon.ID)
	if stored.Reporter.Name != "Siti" {
		t.Error("Expected reporter identity retained in storage")
	}

	if _, err := f.workflow.Track(ctx, "ADU-2020-0000"); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("Expected not found for unknown code, got %v", err)
	}
}

// TestListScoping tests that staff listings are forced to their unit
func TestListScoping(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c := f.submit(t)
	f.submit(t)
	f.workflow.Verify(ctx, f.admin, c.ID)
	f.workflow.Dispose(ctx, f.admin, c.ID, f.unitID, "")

	all, _, err := f.workflow.List(ctx, f.admin, domain.ListFilter{})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("Expected admin to see 2 complaints, got %d", len(all))
	}

	mine, _, err := f.workflow.List(ctx, f.staff, domain.ListFilter{})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(mine) != 1 {
		t.Errorf("Expected staff to see 1 complaint, got %d", len(mine))
	}

	// A staff filter for another unit is overridden, not honored.
	other, _, err := f.workflow.List(ctx, f.staff, domain.ListFilter{UnitID: &f.unitB})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(other) != 1 {
		t.Errorf("Expected staff filter to be scoped to own unit, got %d", len(other))
	}
}

// TestDelete tests the administrative override
func TestDelete(t *testing.T) {
	f := newFixture(t)
	c := f.submit(t)
	ctx := context.Background()

	if err := f.workflow.Delete(ctx, f.staff, c.ID); !errors.Is(err, errors.ErrForbidden) {
		t.Fatalf("Expected forbidden for staff delete, got %v", err)
	}

	if err := f.workflow.Delete(ctx, f.admin, c.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}

	if _, err := f.repo.FindByID(ctx, c.ID); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("Expected complaint gone, got %v", err)
	}
}
