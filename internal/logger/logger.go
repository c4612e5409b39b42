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

// Package logger provides the structured logging facade used across the core engines.
// It wraps logrus with a leveled Entry/Fields model so every engine logs connection
// and exchange lifecycle events the same way, regardless of which protocol is in play.
package logger

import (
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// FuncLog returns a Logger instance; used for lazy dependency injection into engines
// that are constructed before a logger is known (e.g. pool-level defaults).
type FuncLog func() Logger

// Logger is the structured logging facade consumed by every engine in this module.
type Logger interface {
	io.Writer

	SetLevel(lvl Level)
	GetLevel() Level

	SetFields(f Fields)
	GetFields() Fields

	Clone() Logger

	Entry(lvl Level, message string) *Entry

	Debug(message string, data interface{})
	Info(message string, data interface{})
	Warning(message string, data interface{})
	Error(message string, data interface{})
}

type logger struct {
	mu  sync.RWMutex
	lvl Level
	out func() *logrus.Logger
	fld Fields
}

// New builds a Logger writing to w at the given minimum level.
func New(w io.Writer, lvl Level) Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(lvl.Logrus())
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	return &logger{
		lvl: lvl,
		out: func() *logrus.Logger { return l },
		fld: NewFields(),
	}
}

// Discard returns a Logger that drops every entry; used as a safe default
// so engines never need a nil check before logging.
func Discard() Logger {
	return New(io.Discard, NilLevel)
}

func (l *logger) Write(p []byte) (int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.out().Writer().Write(p)
}

func (l *logger) SetLevel(lvl Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lvl = lvl
	l.out().SetLevel(lvl.Logrus())
}

func (l *logger) GetLevel() Level {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.lvl
}

func (l *logger) SetFields(f Fields) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.fld = f
}

func (l *logger) GetFields() Fields {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.fld
}

func (l *logger) Clone() Logger {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return &logger{
		lvl: l.lvl,
		out: l.out,
		fld: l.fld.Clone(),
	}
}

func (l *logger) Entry(lvl Level, message string) *Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return &Entry{
		log:     l.out,
		Time:    time.Now(),
		Level:   lvl,
		Message: message,
		fields:  l.fld.Clone(),
	}
}

func (l *logger) Debug(message string, data interface{}) {
	l.Entry(DebugLevel, message).FieldAdd(FieldData, data).Log()
}

func (l *logger) Info(message string, data interface{}) {
	l.Entry(InfoLevel, message).FieldAdd(FieldData, data).Log()
}

func (l *logger) Warning(message string, data interface{}) {
	l.Entry(WarnLevel, message).FieldAdd(FieldData, data).Log()
}

func (l *logger) Error(message string, data interface{}) {
	l.Entry(ErrorLevel, message).FieldAdd(FieldData, data).Log()
}
