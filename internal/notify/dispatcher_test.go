package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/smokyabdulrahman/namaz/internal/prayer"
)

// fakeSender records deliveries.
type fakeSender struct {
	mu    sync.Mutex
	sent  []Alert
	ready bool
	err   error
}

func (f *fakeSender) Send(_ context.Context, a Alert) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, a)
	return nil
}

func (f *fakeSender) Ready() bool  { return f.ready }
func (f *fakeSender) Name() string { return "fake" }

func (f *fakeSender) Sent() []Alert {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Alert(nil), f.sent...)
}

func alertAt(t time.Time, title string) Alert {
	return Alert{ID: title, At: t, Title: title}
}

func TestDispatcher_OrdersByInstant(t *testing.T) {
	ctx := context.Background()
	d := NewDispatcher(&fakeSender{ready: true})
	base := at(12, 0)

	d.CancelAll(ctx, 1)
	d.ScheduleAt(ctx, 1, alertAt(base.Add(3*time.Minute), "c"))
	d.ScheduleAt(ctx, 1, alertAt(base.Add(1*time.Minute), "a"))
	d.ScheduleAt(ctx, 1, alertAt(base.Add(2*time.Minute), "b"))

	got := d.Pending()
	if len(got) != 3 || got[0].Title != "a" || got[1].Title != "b" || got[2].Title != "c" {
		t.Errorf("Pending() order = %v", got)
	}
}

func TestDispatcher_RejectsOlderToken(t *testing.T) {
	ctx := context.Background()
	d := NewDispatcher(&fakeSender{ready: true})

	if err := d.CancelAll(ctx, 2); err != nil {
		t.Fatal(err)
	}
	if err := d.ScheduleAt(ctx, 1, alertAt(at(13, 0), "stale")); !errors.Is(err, ErrSuperseded) {
		t.Errorf("ScheduleAt(old) err = %v, want ErrSuperseded", err)
	}
	if err := d.CancelAll(ctx, 1); !errors.Is(err, ErrSuperseded) {
		t.Errorf("CancelAll(old) err = %v, want ErrSuperseded", err)
	}
	if len(d.Pending()) != 0 {
		t.Error("stale alert must not be queued")
	}
}

func TestDispatcher_Ceiling(t *testing.T) {
	ctx := context.Background()
	d := NewDispatcher(&fakeSender{ready: true})
	d.CancelAll(ctx, 1)

	for i := 0; i < MaxPendingAlerts; i++ {
		if err := d.ScheduleAt(ctx, 1, alertAt(at(12, 0).Add(time.Duration(i)*time.Minute), fmt.Sprint(i))); err != nil {
			t.Fatalf("ScheduleAt #%d: %v", i, err)
		}
	}
	if err := d.ScheduleAt(ctx, 1, alertAt(at(23, 0), "extra")); !errors.Is(err, ErrTooManyAlerts) {
		t.Errorf("err = %v, want ErrTooManyAlerts", err)
	}
}

func TestDispatcher_FireDue(t *testing.T) {
	ctx := context.Background()
	sender := &fakeSender{ready: true}
	d := NewDispatcher(sender)
	now := at(12, 0)
	d.now = func() time.Time { return now }

	d.CancelAll(ctx, 1)
	d.ScheduleAt(ctx, 1, alertAt(now.Add(-time.Minute), "late"))
	d.ScheduleAt(ctx, 1, alertAt(now, "due"))
	d.ScheduleAt(ctx, 1, alertAt(now.Add(time.Hour), "later"))

	next := d.fireDue(ctx)
	if !next.Equal(now.Add(time.Hour)) {
		t.Errorf("next = %v, want %v", next, now.Add(time.Hour))
	}
	sent := sender.Sent()
	if len(sent) != 2 || sent[0].Title != "late" || sent[1].Title != "due" {
		t.Errorf("sent = %v", sent)
	}
	if p := d.Pending(); len(p) != 1 || p[0].Title != "later" {
		t.Errorf("pending = %v", p)
	}
}

func TestDispatcher_FireDue_SendFailureDropsAlert(t *testing.T) {
	ctx := context.Background()
	sender := &fakeSender{ready: true, err: errors.New("offline")}
	d := NewDispatcher(sender)
	now := at(12, 0)
	d.now = func() time.Time { return now }

	d.CancelAll(ctx, 1)
	d.ScheduleAt(ctx, 1, alertAt(now, "due"))

	if next := d.fireDue(ctx); !next.IsZero() {
		t.Errorf("next = %v, want zero", next)
	}
	if len(d.Pending()) != 0 {
		t.Error("failed alert should not be retried")
	}
}

func TestDispatcher_RunDelivers(t *testing.T) {
	sender := &fakeSender{ready: true}
	d := NewDispatcher(sender)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		d.Run(ctx)
		close(done)
	}()

	d.CancelAll(ctx, 1)
	d.ScheduleAt(ctx, 1, alertAt(time.Now().Add(20*time.Millisecond), "soon"))

	deadline := time.After(2 * time.Second)
	for len(sender.Sent()) == 0 {
		select {
		case <-deadline:
			t.Fatal("alert was not delivered")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	<-done
}

func TestDispatcher_Permission(t *testing.T) {
	ctx := context.Background()

	ok, _ := NewDispatcher(&fakeSender{ready: false}).RequestPermission(ctx)
	if ok {
		t.Error("unready sender should deny permission")
	}
	ok, _ = NewDispatcher(&fakeSender{ready: true}).RequestPermission(ctx)
	if !ok {
		t.Error("ready sender should grant permission")
	}
}

func TestDispatcher_SendTest(t *testing.T) {
	ctx := context.Background()
	sender := &fakeSender{ready: true}
	d := NewDispatcher(sender)

	if err := d.SendTest(ctx); err != nil {
		t.Fatal(err)
	}
	sent := sender.Sent()
	if len(sent) != 1 || sent[0].Tag != TagTest {
		t.Errorf("sent = %v", sent)
	}

	if err := NewDispatcher(&fakeSender{}).SendTest(ctx); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("unready SendTest err = %v", err)
	}
}

// ---------------------------------------------------------------------------
// Pushover
// ---------------------------------------------------------------------------

func TestPushoverSender(t *testing.T) {
	var got url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		got, _ = url.ParseQuery(string(body))
		w.Write([]byte(`{"status":1}`))
	}))
	defer srv.Close()

	p := NewPushoverSender("tok", "usr")
	p.Endpoint = srv.URL
	if !p.Ready() {
		t.Fatal("sender with credentials should be ready")
	}

	a := newAlert(prayer.Dawn, at(0, 0), at(5, 14), 0)
	if err := p.Send(context.Background(), a); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if got.Get("token") != "tok" || got.Get("user") != "usr" {
		t.Errorf("credentials = %v", got)
	}
	if got.Get("title") != "🕌 Зора" || got.Get("message") != "Молитвата Зора започва сега." {
		t.Errorf("content = %v", got)
	}
}

func TestPushoverSender_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"status":0}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	p := NewPushoverSender("tok", "usr")
	p.Endpoint = srv.URL
	if err := p.Send(context.Background(), TestAlert(time.Now())); err == nil {
		t.Fatal("expected error for non-200 response")
	}

	if NewPushoverSender("", "usr").Ready() {
		t.Error("missing token should not be ready")
	}
}
