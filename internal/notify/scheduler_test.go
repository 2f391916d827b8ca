package notify

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/conorfennell/studymate/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// virtualClock hands out tickers that only fire when the test advances time.
type virtualClock struct {
	t       *testing.T
	mu      sync.Mutex
	now     time.Time
	tickers []*virtualTicker
}

type virtualTicker struct {
	period  time.Duration
	next    time.Time
	c       chan time.Time
	stopped bool
}

func newVirtualClock(t *testing.T) *virtualClock {
	return &virtualClock{t: t, now: time.Unix(0, 0)}
}

func (v *virtualClock) NewTicker(d time.Duration) Ticker {
	v.mu.Lock()
	defer v.mu.Unlock()
	tk := &virtualTicker{period: d, next: v.now.Add(d), c: make(chan time.Time)}
	v.tickers = append(v.tickers, tk)
	return &virtualTickerHandle{clock: v, tk: tk}
}

// Advance moves time forward, delivering every tick that falls due to its receiver.
func (v *virtualClock) Advance(d time.Duration) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.now = v.now.Add(d)
	for _, tk := range v.tickers {
		for !tk.stopped && !tk.next.After(v.now) {
			select {
			case tk.c <- tk.next:
			case <-time.After(time.Second):
				v.t.Fatalf("tick at %v was never received", tk.next)
			}
			tk.next = tk.next.Add(tk.period)
		}
	}
}

func (v *virtualClock) periods() []time.Duration {
	v.mu.Lock()
	defer v.mu.Unlock()
	var out []time.Duration
	for _, tk := range v.tickers {
		if !tk.stopped {
			out = append(out, tk.period)
		}
	}
	return out
}

type virtualTickerHandle struct {
	clock *virtualClock
	tk    *virtualTicker
}

func (h *virtualTickerHandle) C() <-chan time.Time { return h.tk.c }

func (h *virtualTickerHandle) Stop() {
	h.clock.mu.Lock()
	defer h.clock.mu.Unlock()
	h.tk.stopped = true
}

type recordingNotifier struct {
	mu         sync.Mutex
	permission domain.Permission
	checks     int
	requests   int
	shown      []Message
	showErr    error
	grantOnAsk bool
}

func (r *recordingNotifier) Permission() domain.Permission {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checks++
	return r.permission
}

func (r *recordingNotifier) RequestPermission(context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests++
	if r.grantOnAsk {
		r.permission = domain.PermissionGranted
	}
}

func (r *recordingNotifier) Show(_ context.Context, title, body string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shown = append(r.shown, Message{Title: title, Body: body})
	return r.showErr
}

func (r *recordingNotifier) shownCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.shown)
}

func (r *recordingNotifier) checkCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.checks
}

func (r *recordingNotifier) requestCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.requests
}

func (r *recordingNotifier) setPermission(p domain.Permission) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.permission = p
}

func TestScheduler_FiresEveryInterval(t *testing.T) {
	clock := newVirtualClock(t)
	n := &recordingNotifier{permission: domain.PermissionGranted}
	s := NewScheduler(clock, n, Message{}, nil)
	defer s.Stop()

	s.Configure(10)
	assert.Equal(t, 10, s.Interval())
	assert.Equal(t, []time.Duration{10 * time.Minute}, clock.periods())

	clock.Advance(9 * time.Minute)
	assert.Equal(t, 0, n.shownCount())

	clock.Advance(time.Minute)
	require.Eventually(t, func() bool { return n.shownCount() == 1 }, time.Second, time.Millisecond)

	clock.Advance(20 * time.Minute)
	require.Eventually(t, func() bool { return n.shownCount() == 3 }, time.Second, time.Millisecond)

	n.mu.Lock()
	assert.Equal(t, DefaultMessage, n.shown[0])
	n.mu.Unlock()
	assert.Equal(t, 0, n.requestCount(), "no request when already granted")
}

func TestScheduler_ZeroCancelsFutureFirings(t *testing.T) {
	clock := newVirtualClock(t)
	n := &recordingNotifier{permission: domain.PermissionGranted}
	s := NewScheduler(clock, n, Message{}, nil)

	s.Configure(5)
	clock.Advance(5 * time.Minute)
	require.Eventually(t, func() bool { return n.shownCount() == 1 }, time.Second, time.Millisecond)

	s.Configure(0)
	assert.Equal(t, 0, s.Interval())
	assert.Empty(t, clock.periods())

	clock.Advance(time.Hour)
	assert.Equal(t, 1, n.shownCount())
}

func TestScheduler_ReconfigureReplacesTimer(t *testing.T) {
	clock := newVirtualClock(t)
	n := &recordingNotifier{permission: domain.PermissionGranted}
	s := NewScheduler(clock, n, Message{Title: "T", Body: "B"}, nil)
	defer s.Stop()

	s.Configure(5)
	s.Configure(30)
	assert.Equal(t, []time.Duration{30 * time.Minute}, clock.periods(), "only the new timer is live")

	clock.Advance(25 * time.Minute)
	assert.Equal(t, 0, n.shownCount(), "stale 5 minute timer must not fire")

	clock.Advance(5 * time.Minute)
	require.Eventually(t, func() bool { return n.shownCount() == 1 }, time.Second, time.Millisecond)

	n.mu.Lock()
	assert.Equal(t, Message{Title: "T", Body: "B"}, n.shown[0])
	n.mu.Unlock()
}

func TestScheduler_PermissionGate(t *testing.T) {
	clock := newVirtualClock(t)
	n := &recordingNotifier{permission: domain.PermissionDefault}
	s := NewScheduler(clock, n, Message{}, nil)
	defer s.Stop()

	s.Configure(1)
	require.Eventually(t, func() bool { return n.requestCount() == 1 }, time.Second, time.Millisecond)

	clock.Advance(3 * time.Minute)
	// One check from Configure plus one per tick.
	require.Eventually(t, func() bool { return n.checkCount() == 4 }, time.Second, time.Millisecond)
	assert.Equal(t, 0, n.shownCount(), "skipped while not granted")

	n.setPermission(domain.PermissionGranted)
	clock.Advance(time.Minute)
	require.Eventually(t, func() bool { return n.shownCount() == 1 }, time.Second, time.Millisecond)

	n.setPermission(domain.PermissionDenied)
	clock.Advance(5 * time.Minute)
	assert.Equal(t, 1, n.shownCount(), "skipped reminders are not queued")
}

func TestScheduler_ShowErrorDoesNotStopTask(t *testing.T) {
	clock := newVirtualClock(t)
	n := &recordingNotifier{permission: domain.PermissionGranted, showErr: errors.New("no display")}
	s := NewScheduler(clock, n, Message{}, nil)
	defer s.Stop()

	s.Configure(1)
	clock.Advance(2 * time.Minute)
	require.Eventually(t, func() bool { return n.shownCount() == 2 }, time.Second, time.Millisecond)
}

func TestScheduler_StopIsIdempotent(t *testing.T) {
	s := NewScheduler(newVirtualClock(t), &recordingNotifier{}, Message{}, nil)
	s.Stop()
	s.Configure(-3)
	assert.Equal(t, 0, s.Interval())
	s.Stop()
}

func TestRealClock(t *testing.T) {
	tk := RealClock{}.NewTicker(time.Millisecond)
	defer tk.Stop()
	select {
	case <-tk.C():
	case <-time.After(time.Second):
		t.Fatal("real ticker never fired")
	}
}

func TestConsole(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, domain.PermissionDefault)
	c.now = func() time.Time { return time.Date(2026, 1, 1, 8, 30, 0, 0, time.UTC) }

	assert.Equal(t, domain.PermissionDefault, c.Permission())
	c.RequestPermission(context.Background())
	assert.Equal(t, domain.PermissionGranted, c.Permission())

	require.NoError(t, c.Show(context.Background(), "StudyMate", "Time to study!"))
	assert.Equal(t, "\a[08:30] StudyMate: Time to study!\n", buf.String())

	denied := NewConsole(&buf, domain.PermissionDenied)
	denied.RequestPermission(context.Background())
	assert.Equal(t, domain.PermissionDenied, denied.Permission())
}

func TestInbox(t *testing.T) {
	ctx := context.Background()

	t.Run("request and answer permission", func(t *testing.T) {
		in := NewInbox(domain.PermissionDefault, 3)
		assert.False(t, in.PermissionRequested())
		in.RequestPermission(ctx)
		assert.True(t, in.PermissionRequested())

		in.SetPermission(domain.PermissionGranted)
		assert.False(t, in.PermissionRequested())
		assert.Equal(t, domain.PermissionGranted, in.Permission())
	})

	t.Run("keeps the newest reminders up to the limit", func(t *testing.T) {
		in := NewInbox(domain.PermissionGranted, 2)
		for _, body := range []string{"a", "b", "c"} {
			require.NoError(t, in.Show(ctx, "T", body))
		}
		got := in.Drain()
		require.Len(t, got, 2)
		assert.Equal(t, "b", got[0].Body)
		assert.Equal(t, "c", got[1].Body)
		assert.Empty(t, in.Drain())
	})

	t.Run("denying clears pending reminders", func(t *testing.T) {
		in := NewInbox(domain.PermissionGranted, 0)
		require.NoError(t, in.Show(ctx, "T", "B"))
		in.SetPermission(domain.PermissionDenied)
		assert.Empty(t, in.Drain())
	})

	t.Run("works as the scheduler notifier", func(t *testing.T) {
		clock := newVirtualClock(t)
		in := NewInbox(domain.PermissionGranted, 5)
		s := NewScheduler(clock, in, Message{}, nil)
		defer s.Stop()

		s.Configure(15)
		clock.Advance(15 * time.Minute)
		require.Eventually(t, func() bool {
			in.mu.Lock()
			defer in.mu.Unlock()
			return len(in.pending) == 1
		}, time.Second, time.Millisecond)
		assert.Equal(t, DefaultMessage.Body, in.Drain()[0].Body)
	})
}
