package transport

import (
	"testing"
	"time"
)

func TestExecutorRunsQueuedTask(t *testing.T) {
	e := newExecutor()
	defer e.stop()

	done := make(chan struct{})
	e.Execute(func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("queued task never ran")
	}
}

func TestExecutorReentrantCallRunsAfterOuterTask(t *testing.T) {
	e := newExecutor()
	defer e.stop()

	order := make([]string, 0, 2)
	done := make(chan struct{})

	e.Execute(func() {
		order = append(order, "outer")
		// Reentrant call from within the running task must not deadlock on
		// the buffered queue; it runs right after the outer task returns.
		e.Execute(func() { order = append(order, "inner") })
		close(done)
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("outer task never completed, reentrant call likely deadlocked")
	}

	time.Sleep(10 * time.Millisecond) // let the deferred inner task run

	if len(order) != 2 || order[0] != "outer" || order[1] != "inner" {
		t.Fatalf("unexpected execution order: %v", order)
	}
}

func TestExecutorNilFuncIsNoOp(t *testing.T) {
	e := newExecutor()
	defer e.stop()

	e.Execute(nil) // must not panic or block
}

func TestExecutorStopDrains(t *testing.T) {
	e := newExecutor()

	ran := make(chan struct{}, 1)
	e.Execute(func() { ran <- struct{}{} })

	<-ran
	e.stop()
}
