/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

const (
	FieldTime    = "time"
	FieldLevel   = "level"
	FieldMessage = "message"
	FieldError   = "error"
	FieldData    = "data"
)

// Entry is a single log record in flight: a level, a message, optional structured
// data and an optional error, plus the fields inherited from its Logger.
type Entry struct {
	log func() *logrus.Logger

	Time    time.Time   `json:"time"`
	Level   Level       `json:"level"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Err     error       `json:"error,omitempty"`

	fields Fields
}

// FieldAdd attaches an extra key/value pair to this entry only, returning the entry for chaining.
func (e *Entry) FieldAdd(key string, val interface{}) *Entry {
	if e.fields == nil {
		e.fields = NewFields()
	}
	e.fields.Add(key, val)
	return e
}

// ErrorAdd attaches an error to the entry. When cond is false the call is a no-op,
// which lets callers write `.ErrorAdd(err != nil, err)` inline.
func (e *Entry) ErrorAdd(cond bool, err error) *Entry {
	if cond && err != nil {
		e.Err = err
	}
	return e
}

// Log emits the entry through the parent logger's logrus instance.
func (e *Entry) Log() {
	if e == nil || e.log == nil {
		return
	}

	l := e.log()
	if l == nil {
		return
	}

	flds := logrus.Fields{}
	if e.fields != nil {
		flds = e.fields.Logrus()
	}
	if e.Data != nil {
		flds[FieldData] = e.Data
	}
	if e.Err != nil {
		flds[FieldError] = e.Err.Error()
	}

	l.WithTime(e.Time).WithFields(flds).Log(e.Level.Logrus(), e.Message)
}
