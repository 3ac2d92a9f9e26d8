package policy

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestNewBreaker_Defaults(t *testing.T) {
	b := NewBreaker(0, 0)

	if b.threshold != DefaultFailureThreshold {
		t.Errorf("threshold = %d, want %d", b.threshold, DefaultFailureThreshold)
	}
	if b.breakFor != DefaultBreakDuration {
		t.Errorf("breakFor = %v, want %v", b.breakFor, DefaultBreakDuration)
	}
	if b.State() != StateClosed {
		t.Errorf("initial state = %v, want closed", b.State())
	}
}

func TestBreaker_OpensAtExactThreshold(t *testing.T) {
	b := NewBreaker(3, time.Minute)
	testErr := errors.New("boom")

	for i := 0; i < 2; i++ {
		b.Record(testErr)
		if b.State() != StateClosed {
			t.Fatalf("after %d failures, state = %v, want closed", i+1, b.State())
		}
	}

	b.Record(testErr)
	if b.State() != StateOpen {
		t.Fatalf("after 3 failures, state = %v, want open", b.State())
	}

	// Rejected without reaching the operation.
	err := b.Execute(context.Background(), func(ctx context.Context) error {
		t.Error("operation should not run while open")
		return nil
	})
	if !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("Execute() while open = %v, want ErrCircuitOpen", err)
	}
}

func TestBreaker_SuccessResetsFailureCount(t *testing.T) {
	b := NewBreaker(3, time.Minute)
	testErr := errors.New("boom")

	b.Record(testErr)
	b.Record(testErr)
	b.Record(nil)

	if got := b.Snapshot().ConsecutiveFailures; got != 0 {
		t.Errorf("failures after success = %d, want 0", got)
	}

	// Two more failures must not open; the streak was broken.
	b.Record(testErr)
	b.Record(testErr)
	if b.State() != StateClosed {
		t.Errorf("state = %v, want closed", b.State())
	}
}

func TestBreaker_HalfOpenAfterBreak(t *testing.T) {
	b := NewBreaker(1, 30*time.Second)

	now := time.Now()
	b.now = func() time.Time { return now }

	b.Record(errors.New("boom"))
	if b.State() != StateOpen {
		t.Fatalf("state = %v, want open", b.State())
	}

	// Just before the break elapses calls are still rejected.
	now = now.Add(30*time.Second - time.Millisecond)
	if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("Allow() before break elapsed = %v, want ErrCircuitOpen", err)
	}

	now = now.Add(time.Millisecond)
	if err := b.Allow(); err != nil {
		t.Fatalf("Allow() after break elapsed = %v, want trial admitted", err)
	}
	if b.state != StateHalfOpen {
		t.Errorf("state = %v, want half-open", b.state)
	}
}

func TestBreaker_TrialSuccessCloses(t *testing.T) {
	b := NewBreaker(1, 10*time.Millisecond)

	b.Record(errors.New("boom"))
	time.Sleep(15 * time.Millisecond)

	err := b.Execute(context.Background(), func(ctx context.Context) error {
		return nil
	})
	if err != nil {
		t.Fatalf("trial Execute() = %v, want nil", err)
	}
	if b.State() != StateClosed {
		t.Errorf("state after trial success = %v, want closed", b.State())
	}
	if got := b.Snapshot().ConsecutiveFailures; got != 0 {
		t.Errorf("failures after trial success = %d, want 0", got)
	}
}

func TestBreaker_TrialFailureReopensForFullBreak(t *testing.T) {
	b := NewBreaker(1, 30*time.Second)

	now := time.Now()
	b.now = func() time.Time { return now }

	b.Record(errors.New("boom"))
	openedAt := b.Snapshot().OpenedAt

	now = now.Add(31 * time.Second)
	if err := b.Allow(); err != nil {
		t.Fatalf("Allow() = %v, want trial admitted", err)
	}
	b.Record(errors.New("still down"))

	snap := b.Snapshot()
	if snap.State != StateOpen {
		t.Fatalf("state after failed trial = %v, want open", snap.State)
	}
	if !snap.OpenedAt.After(openedAt) {
		t.Error("failed trial should restart the break from now")
	}

	// A second full break duration is required.
	now = now.Add(29 * time.Second)
	if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("Allow() during second break = %v, want ErrCircuitOpen", err)
	}
}

func TestBreaker_HalfOpenAdmitsSingleTrial(t *testing.T) {
	b := NewBreaker(1, time.Millisecond)

	b.Record(errors.New("boom"))
	time.Sleep(5 * time.Millisecond)

	if err := b.Allow(); err != nil {
		t.Fatalf("first Allow() = %v, want trial admitted", err)
	}
	if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("second Allow() = %v, want ErrCircuitOpen while trial in flight", err)
	}

	b.Record(nil)
	if b.State() != StateClosed {
		t.Errorf("state = %v, want closed", b.State())
	}
}

func TestBreaker_StateChangeEvents(t *testing.T) {
	type transition struct{ from, to State }
	var got []transition

	b := NewBreaker(1, time.Millisecond, WithStateChange(func(from, to State) {
		got = append(got, transition{from, to})
	}))

	b.Record(errors.New("boom"))
	time.Sleep(5 * time.Millisecond)
	if err := b.Allow(); err != nil {
		t.Fatalf("Allow() = %v", err)
	}
	b.Record(nil)

	want := []transition{
		{StateClosed, StateOpen},
		{StateOpen, StateHalfOpen},
		{StateHalfOpen, StateClosed},
	}
	if len(got) != len(want) {
		t.Fatalf("transitions = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("transition[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestBreaker_ConfigurePreservesState(t *testing.T) {
	b := NewBreaker(5, time.Minute)
	testErr := errors.New("boom")

	b.Record(testErr)
	b.Record(testErr)

	b.Configure(3, time.Minute)

	if got := b.Snapshot().ConsecutiveFailures; got != 2 {
		t.Fatalf("failures after Configure = %d, want 2", got)
	}

	// One more failure reaches the new threshold.
	b.Record(testErr)
	if b.State() != StateOpen {
		t.Errorf("state = %v, want open under new threshold", b.State())
	}
}

func TestBreaker_ExecuteSkipsAdmissionWhenCancelled(t *testing.T) {
	b := NewBreaker(1, time.Minute)
	b.Record(errors.New("boom")) // open

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := b.Execute(ctx, func(ctx context.Context) error { return nil })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Execute() with cancelled ctx = %v, want context.Canceled", err)
	}
}

func TestBreaker_ConcurrentFailuresOpenOnce(t *testing.T) {
	var transitions int
	b := NewBreaker(50, time.Minute, WithStateChange(func(from, to State) {
		if to == StateOpen {
			transitions++
		}
	}))

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.Record(errors.New("boom"))
		}()
	}
	wg.Wait()

	if b.State() != StateOpen {
		t.Fatalf("state = %v, want open", b.State())
	}
	if transitions != 1 {
		t.Errorf("open transitions = %d, want 1", transitions)
	}
}

func TestState_String(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateClosed, "closed"},
		{StateOpen, "open"},
		{StateHalfOpen, "half-open"},
		{State(42), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}
