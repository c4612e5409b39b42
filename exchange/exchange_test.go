package exchange

import "testing"

func newTestExchange(t *testing.T) (*Exchange, *int) {
	t.Helper()
	closes := 0
	ex := NewExchange("test-id", nil, nil, func(fn func()) { fn() }, func() error {
		closes++
		return nil
	})
	return ex, &closes
}

func TestExchangeResolveDeliversResponseOnce(t *testing.T) {
	ex, _ := newTestExchange(t)

	resp := &ResponseHandle{StatusCode: 200}
	ex.Resolve(resp)
	ex.Resolve(&ResponseHandle{StatusCode: 500}) // must be a no-op

	result := <-ex.Response()
	if result.Response != resp {
		t.Fatalf("expected first resolved response to win")
	}
	if result.Err != nil {
		t.Fatalf("unexpected error on resolved result: %v", result.Err)
	}
}

func TestExchangeDisposeDeliversErrorOnce(t *testing.T) {
	ex, _ := newTestExchange(t)

	cause := ErrConnectionClosed()
	ex.Dispose(cause)
	ex.Dispose(ErrRequestTimeout()) // must not overwrite the first cause

	result := <-ex.Response()
	if result.Err == nil {
		t.Fatalf("expected disposed exchange to deliver an error")
	}

	got, ok := ex.GetCancelCause()
	if !ok || got == nil {
		t.Fatalf("expected cancel cause recorded")
	}
	if got.Error() != cause.Error() {
		t.Fatalf("expected first cause to stick, got %v", got)
	}
}

func TestExchangeResolveThenDisposeKeepsFirstResponse(t *testing.T) {
	ex, _ := newTestExchange(t)

	resp := &ResponseHandle{StatusCode: 204}
	ex.Resolve(resp)
	ex.Dispose(ErrConnectionClosed())

	result := <-ex.Response()
	if result.Response != resp {
		t.Fatalf("expected resolve to win over a later dispose")
	}

	if _, ok := ex.GetCancelCause(); !ok {
		t.Fatalf("expected dispose to still record a cancel cause even though delivery lost the race")
	}
}

func TestExchangeResetClosesConnectionAndMarksReset(t *testing.T) {
	ex, closes := newTestExchange(t)

	if ex.IsReset() {
		t.Fatalf("expected not reset initially")
	}

	ex.Reset(1002)

	if !ex.IsReset() {
		t.Fatalf("expected IsReset true after Reset")
	}
	if *closes != 1 {
		t.Fatalf("expected connection closed exactly once, got %d", *closes)
	}

	result := <-ex.Response()
	if result.Err == nil {
		t.Fatalf("expected reset to deliver an error result")
	}
}

func TestExchangeTimeoutCancelerInvokedOnDispose(t *testing.T) {
	ex, _ := newTestExchange(t)

	canceled := false
	ex.SetTimeoutCanceler(func() { canceled = true })

	ex.Dispose(ErrRequestTimeout())

	if !canceled {
		t.Fatalf("expected timeout canceler to run on Dispose")
	}
}

func TestExchangeAgeIsNonNegative(t *testing.T) {
	ex, _ := newTestExchange(t)

	if ex.Age() < 0 {
		t.Fatalf("expected non-negative age")
	}
}
