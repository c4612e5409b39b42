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

package http1

import (
	"github.com/nabbar/httpcore/exchange"
)

// PoolCallbacks is the contract the engine calls back into its owning pool
// with (spec §4.5). New replaces a nil PoolCallbacks with NoopPool.
type PoolCallbacks interface {
	OnClose()
	OnError(cause error)
	OnUpgrade(newConn interface{})
	OnExchangeTerminate(ex *exchange.Exchange)
}

type noopPool struct{}

func (noopPool) OnClose()                                  {}
func (noopPool) OnError(cause error)                       {}
func (noopPool) OnUpgrade(newConn interface{})             {}
func (noopPool) OnExchangeTerminate(ex *exchange.Exchange) {}

// NoopPool is a PoolCallbacks that does nothing, used when a connection is
// driven standalone (tests, or a caller managing its own single connection).
var NoopPool PoolCallbacks = noopPool{}
