/*
 * MIT License
 *
 * Copyright (c) 2019 Nicolas JUHEL
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

// Package nobar is the null-object Bar used by a headless Semaphore (no
// progress sink configured): every numeric method is a no-op, so a
// controller doing Refresh work can call Bar methods unconditionally
// whether or not anyone is watching a progress bar.
package nobar

import (
	"github.com/nabbar/openhlx/semaphore/types"
)

type model struct {
	types.SemPgb
}

// New wraps sem as a Bar that tracks nothing and always reports done.
func New(sem types.SemPgb, total int64, drop bool) types.Bar {
	return &model{SemPgb: sem}
}

func (m *model) Inc(n int)                      {}
func (m *model) Inc64(n int64)                   {}
func (m *model) Dec(n int)                       {}
func (m *model) Dec64(n int64)                    {}
func (m *model) Reset(total int64, current int64) {}
func (m *model) Total() int64                    { return 0 }
func (m *model) Current() int64                  { return 0 }
func (m *model) Completed() bool                 { return true }
func (m *model) Complete()                       {}

func (m *model) DeferWorker() {
	m.SemPgb.DeferWorker()
}

func (m *model) DeferMain() {
	m.SemPgb.DeferMain()
}

func (m *model) GetMPB() interface{} {
	return nil
}
