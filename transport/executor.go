/*
MIT License

Copyright (c) 2025 Nicolas JUHEL

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all
copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
SOFTWARE.
*/

package transport

// executor is the single-threaded cooperative scheduler backing a
// connection's state mutations (§5: "every mutation of connection state
// occurs on that connection's executor").
type executor struct {
	queue chan func()
	done  chan struct{}
}

func newExecutor() *executor {
	e := &executor{
		queue: make(chan func(), 256),
		done:  make(chan struct{}),
	}
	go e.run()
	return e
}

func (e *executor) run() {
	defer close(e.done)

	for fn := range e.queue {
		fn()
	}
}

// Execute schedules fn to run on the executor goroutine, in FIFO order with
// every other task already queued. A call made from within a task currently
// running on that same goroutine (a reentrant call) simply enqueues behind
// it: the queue's buffer absorbs it without blocking, and fn runs as soon as
// the currently executing task returns. Detecting "am I already on the loop
// goroutine" from an arbitrary caller isn't reliable in Go without tracking
// goroutine identity, and isn't needed here: the buffered channel makes
// self-queuing safe on its own.
func (e *executor) Execute(fn func()) {
	if fn == nil {
		return
	}

	e.queue <- fn
}

// stop drains and terminates the executor goroutine. Not safe to call
// concurrently with Execute from outside the loop; callers stop the executor
// only as the last step of transport Close.
func (e *executor) stop() {
	close(e.queue)
	<-e.done
}
