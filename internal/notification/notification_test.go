package notification

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/disnaker/sipelan/internal/complaint/domain"
	"github.com/disnaker/sipelan/internal/shared/types"
)

func testComplaint() *domain.Complaint {
	c, _ := domain.NewComplaint(types.NewID(), "Upah di bawah UMK", "Isi pengaduan", domain.Reporter{
		Name:  "Budi",
		Email: "budi@example.com",
	}, false)
	c.Code = "ADU-2026-0042"
	return c
}

// TestComplaintReceived tests the intake confirmation email
func TestComplaintReceived(t *testing.T) {
	c := testComplaint()

	n := ComplaintReceived(c)
	if n == nil {
		t.Fatal("Expected a notification")
	}
	if n.Kind != KindReceived {
		t.Errorf("Expected kind %s, got %s", KindReceived, n.Kind)
	}
	if n.Recipient != "budi@example.com" {
		t.Errorf("Expected reporter recipient, got %s", n.Recipient)
	}
	if !strings.Contains(n.Subject, c.Code) {
		t.Error("Expected tracking code in subject")
	}
	if !strings.Contains(n.Body, c.Code) || !strings.Contains(n.Body, "Budi") {
		t.Error("Expected code and reporter name in body")
	}
}

// TestComplaintReceivedNoEmail tests that no notification is built without
// a reporter address
func TestComplaintReceivedNoEmail(t *testing.T) {
	c, _ := domain.NewComplaint(types.NewID(), "Judul", "Isi", domain.Reporter{Name: "Anonim"}, true)

	if n := ComplaintReceived(c); n != nil {
		t.Errorf("Expected nil notification, got %+v", n)
	}
}

// TestStatusChanged tests the status update email and the resolution
// special case
func TestStatusChanged(t *testing.T) {
	c := testComplaint()
	actorID := types.NewID()

	entry, _ := c.Verify(actorID, "admin")
	n := StatusChanged(c, entry)
	if n == nil {
		t.Fatal("Expected a notification")
	}
	if n.Kind != KindStatus {
		t.Errorf("Expected kind %s, got %s", KindStatus, n.Kind)
	}
	if !strings.Contains(n.Body, "Terverifikasi") {
		t.Errorf("Expected Indonesian status label in body, got %q", n.Body)
	}

	c.Dispose(types.NewID(), "", actorID, "admin")
	c.Advance("", actorID, "staff")
	resolved, _ := c.Advance("tuntas", actorID, "staff")

	n = StatusChanged(c, resolved)
	if n.Kind != KindResolution {
		t.Errorf("Expected kind %s for resolved, got %s", KindResolution, n.Kind)
	}
	if !strings.Contains(n.Body, "tuntas") {
		t.Error("Expected closing note in resolution body")
	}
}

// TestDisposed tests the unit assignment notice
func TestDisposed(t *testing.T) {
	c := testComplaint()
	actorID := types.NewID()
	c.Verify(actorID, "admin")
	d, _, _ := c.Dispose(types.NewID(), "sesuai kategori", actorID, "admin")

	n := Disposed(c, d, "Bidang Pengawasan", "pengawasan@disnaker.go.id", "Pengupahan")
	if n == nil {
		t.Fatal("Expected a notification")
	}
	if n.Recipient != "pengawasan@disnaker.go.id" {
		t.Errorf("Expected unit mailbox, got %s", n.Recipient)
	}
	if !strings.Contains(n.Body, "Pengupahan") || !strings.Contains(n.Body, "sesuai kategori") {
		t.Error("Expected category and rationale in body")
	}

	if n := Disposed(c, d, "Bidang HI", "", ""); n != nil {
		t.Error("Expected nil notification for a unit without a mailbox")
	}
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

// TestServiceDelivery tests the worker pool delivering through a provider
func TestServiceDelivery(t *testing.T) {
	provider := NewMockEmailProvider()
	svc := NewService(provider, ServiceConfig{
		Workers:       2,
		BufferSize:    16,
		RetryAttempts: 0,
		SendTimeout:   time.Second,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := svc.Start(ctx); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	defer svc.Stop()

	svc.Enqueue(ComplaintReceived(testComplaint()))

	waitFor(t, time.Second, func() bool {
		return len(provider.GetSentNotifications()) == 1
	})

	stats := svc.GetStats()
	if stats.Sent != 1 {
		t.Errorf("Expected 1 sent, got %d", stats.Sent)
	}
}

// TestServiceFailureIsSwallowed tests that delivery failure only shows up
// in the counters
func TestServiceFailureIsSwallowed(t *testing.T) {
	provider := NewMockEmailProvider()
	provider.SetFailOnSend(true)

	svc := NewService(provider, ServiceConfig{
		Workers:       1,
		BufferSize:    4,
		RetryAttempts: 1,
		RetryDelay:    time.Millisecond,
		SendTimeout:   time.Second,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := svc.Start(ctx); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	defer svc.Stop()

	svc.Enqueue(ComplaintReceived(testComplaint()))

	waitFor(t, time.Second, func() bool {
		return svc.GetStats().Failed == 1
	})
}

// TestEnqueueFullBufferDrops tests the non-blocking guarantee
func TestEnqueueFullBufferDrops(t *testing.T) {
	provider := NewMockEmailProvider()
	svc := NewService(provider, ServiceConfig{
		Workers:    1,
		BufferSize: 1,
	})
	// Never started: the buffer fills and further enqueues drop.

	svc.Enqueue(ComplaintReceived(testComplaint()))
	svc.Enqueue(ComplaintReceived(testComplaint()))
	svc.Enqueue(ComplaintReceived(testComplaint()))

	stats := svc.GetStats()
	if stats.Enqueued != 1 {
		t.Errorf("Expected 1 enqueued, got %d", stats.Enqueued)
	}
	if stats.Dropped != 2 {
		t.Errorf("Expected 2 dropped, got %d", stats.Dropped)
	}
}
