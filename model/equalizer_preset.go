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

// EqualizerPresetRange is the fixed cardinality of the EqualizerPreset
// collection (spec §3).
var EqualizerPresetRange = Range{Min: 1, Max: 10}

// EqualizerPreset is a named, reusable 10-band equalizer curve that a Zone
// can reference from SoundModePresetEqualizer (spec §3).
type EqualizerPreset struct {
	id         Identifier
	Name       Field[string]
	BandLevels [BandCount]Field[int8]
}

// Identifier returns the EqualizerPreset's stable identity.
func (p *EqualizerPreset) Identifier() Identifier {
	return p.id
}

// SetName assigns the EqualizerPreset's display name.
func (p *EqualizerPreset) SetName(name string) (AssignResult, liberr.Error) {
	if name == "" {
		return AssignSuccess, ErrInvalid.Errorf("equalizer preset name")
	}
	return p.Name.Set(name), nil
}

// SetBandLevel assigns one of the preset's 10 band levels, enforcing
// [-10, +10].
func (p *EqualizerPreset) SetBandLevel(band int, level int8) (AssignResult, liberr.Error) {
	if band < 0 || band >= BandCount {
		return AssignSuccess, ErrOutOfRange.Errorf(0, BandCount-1, band)
	}
	if level < BandLevelMin || level > BandLevelMax {
		return AssignSuccess, ErrOutOfRange.Errorf(BandLevelMin, BandLevelMax, level)
	}
	return p.BandLevels[band].Set(level), nil
}

// EqualizerPresets is the owning collection of all EqualizerPreset entities.
type EqualizerPresets struct {
	rng Range
	m   map[Identifier]*EqualizerPreset
}

// NewEqualizerPresets constructs the full, fixed-cardinality
// EqualizerPreset collection.
func NewEqualizerPresets() *EqualizerPresets {
	c := &EqualizerPresets{rng: EqualizerPresetRange, m: make(map[Identifier]*EqualizerPreset, EqualizerPresetRange.Cardinality())}
	for i := c.rng.Min; i <= c.rng.Max; i++ {
		c.m[i] = &EqualizerPreset{id: i}
	}
	return c
}

// ValidateIdentifier implements Testable Property 4 for the EqualizerPreset
// range.
func (c *EqualizerPresets) ValidateIdentifier(i Identifier) liberr.Error {
	return c.rng.Validate(i)
}

// Get returns the EqualizerPreset for i, or ErrOutOfRange/ErrNotFound.
func (c *EqualizerPresets) Get(i Identifier) (*EqualizerPreset, liberr.Error) {
	if e := c.ValidateIdentifier(i); e != nil {
		return nil, e
	}
	p, ok := c.m[i]
	if !ok {
		return nil, ErrNotFound.Errorf(i)
	}
	return p, nil
}

// Range returns the collection's identifier range.
func (c *EqualizerPresets) Range() Range {
	return c.rng
}

// Each calls fn for every EqualizerPreset in ascending identifier order.
func (c *EqualizerPresets) Each(fn func(*EqualizerPreset)) {
	for i := c.rng.Min; i <= c.rng.Max; i++ {
		fn(c.m[i])
	}
}
