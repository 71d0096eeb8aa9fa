/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
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

package model

import (
	liberr "github.com/nabbar/openhlx/errors"
)

const (
	FrontPanelBrightnessMin int8 = 0
	FrontPanelBrightnessMax int8 = 3
)

// FrontPanel is the device's single front-panel-display singleton
// (spec §3): brightness level and lock state.
type FrontPanel struct {
	Brightness Field[int8]
	Locked     Field[bool]
}

// NewFrontPanel constructs the FrontPanel singleton.
func NewFrontPanel() *FrontPanel {
	return &FrontPanel{}
}

// SetBrightness assigns the front panel's brightness, enforcing [0, 3].
func (p *FrontPanel) SetBrightness(level int8) (AssignResult, liberr.Error) {
	if level < FrontPanelBrightnessMin || level > FrontPanelBrightnessMax {
		return AssignSuccess, ErrOutOfRange.Errorf(FrontPanelBrightnessMin, FrontPanelBrightnessMax, level)
	}
	return p.Brightness.Set(level), nil
}

// SetLocked assigns whether the front panel rejects local button presses.
func (p *FrontPanel) SetLocked(locked bool) AssignResult {
	return p.Locked.Set(locked)
}
