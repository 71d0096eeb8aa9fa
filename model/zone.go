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

// ZoneRange is the fixed cardinality of the Zone collection. The real
// device ships either 8 or 12 zone variants (spec §3); this module picks
// the 12-zone superset as its compile-time constant and callers that need
// the 8-zone variant simply never populate zones 9-12's name, which keeps
// them permanently ErrNotInitialized for observation — never absent.
var ZoneRange = Range{Min: 1, Max: 12}

// SoundMode selects which part of a Zone's sound block is authoritative.
type SoundMode uint8

const (
	SoundModeDisabled SoundMode = iota
	SoundModeTone
	SoundModePresetEqualizer
	SoundModePerBand
	SoundModeHighpass
	SoundModeLowpass
)

// BandCount is the number of equalizer bands a Zone (in PerBand mode) or
// an EqualizerPreset carries.
const BandCount = 10

const (
	VolumeLevelMin    int8 = -80
	VolumeLevelMax    int8 = 0
	BalanceMin        int8 = -10
	BalanceMax        int8 = 10
	ToneMin           int8 = -10
	ToneMax           int8 = 10
	BandLevelMin      int8 = -10
	BandLevelMax      int8 = 10
	CrossoverFreqMin  int32 = 1
	CrossoverFreqMax  int32 = 20011
)

// Volume is a Zone or Group's level/mute/fixed block.
type Volume struct {
	Level Field[int8]
	Mute  Field[bool]
	// Fixed, once set, pins the zone to a single never-changing level;
	// nil means "not a fixed-volume zone" (most devices leave this unset).
	Fixed Field[bool]
}

// Tone is the bass/treble pair used in SoundModeTone.
type Tone struct {
	Bass    Field[int8]
	Treble  Field[int8]
}

// Sound is a Zone's full equalizer/crossover configuration block.
type Sound struct {
	Mode               Field[SoundMode]
	Tone               Tone
	PresetRef          Field[Identifier]
	HighpassCrossover  Field[int32]
	LowpassCrossover   Field[int32]
	PerBandLevels      [BandCount]Field[int8]
}

// Zone is one audio output zone (spec §3).
type Zone struct {
	id        Identifier
	Name      Field[string]
	Volume    Volume
	Balance   Field[int8]
	Sound     Sound
	SourceRef Field[Identifier]
}

// Identifier returns the Zone's stable identity.
func (z *Zone) Identifier() Identifier {
	return z.id
}

// SetName assigns the Zone's display name.
func (z *Zone) SetName(name string) (AssignResult, liberr.Error) {
	if name == "" {
		return AssignSuccess, ErrInvalid.Errorf("zone name")
	}
	return z.Name.Set(name), nil
}

// SetVolumeLevel assigns the Zone's volume level, enforcing [-80, 0].
func (z *Zone) SetVolumeLevel(level int8) (AssignResult, liberr.Error) {
	if level < VolumeLevelMin || level > VolumeLevelMax {
		return AssignSuccess, ErrOutOfRange.Errorf(VolumeLevelMin, VolumeLevelMax, level)
	}
	return z.Volume.Level.Set(level), nil
}

// SetMute assigns the Zone's own mute flag.
func (z *Zone) SetMute(mute bool) AssignResult {
	return z.Volume.Mute.Set(mute)
}

// ToggleMute flips the Zone's mute flag and returns the resulting value.
// A toggle on an uninitialised field treats "unset" as false, so the first
// toggle always yields AssignSuccess with the result true.
func (z *Zone) ToggleMute() (bool, AssignResult) {
	cur, _ := z.Volume.Mute.Get()
	next := !cur
	return next, z.Volume.Mute.Set(next)
}

// SetBalance assigns the Zone's stereo balance, enforcing [-10, +10].
func (z *Zone) SetBalance(balance int8) (AssignResult, liberr.Error) {
	if balance < BalanceMin || balance > BalanceMax {
		return AssignSuccess, ErrOutOfRange.Errorf(BalanceMin, BalanceMax, balance)
	}
	return z.Balance.Set(balance), nil
}

// SetSoundMode assigns which block of Sound is authoritative for playback.
func (z *Zone) SetSoundMode(mode SoundMode) (AssignResult, liberr.Error) {
	if mode > SoundModeLowpass {
		return AssignSuccess, ErrInvalid.Errorf("sound mode", mode)
	}
	return z.Sound.Mode.Set(mode), nil
}

// SetTone assigns bass/treble; either is independently optional in a
// single call (pass the field's current value to leave it untouched).
func (z *Zone) SetTone(bass, treble int8) (AssignResult, AssignResult, liberr.Error) {
	if bass < ToneMin || bass > ToneMax {
		return AssignSuccess, AssignSuccess, ErrOutOfRange.Errorf(ToneMin, ToneMax, bass)
	}
	if treble < ToneMin || treble > ToneMax {
		return AssignSuccess, AssignSuccess, ErrOutOfRange.Errorf(ToneMin, ToneMax, treble)
	}
	return z.Sound.Tone.Bass.Set(bass), z.Sound.Tone.Treble.Set(treble), nil
}

// SetPresetRef binds the Zone to an EqualizerPreset identifier. The
// identifier is validated against presets's range, never arithmetic on it
// directly (spec §3).
func (z *Zone) SetPresetRef(presets *EqualizerPresets, id Identifier) (AssignResult, liberr.Error) {
	if e := presets.ValidateIdentifier(id); e != nil {
		return AssignSuccess, e
	}
	return z.Sound.PresetRef.Set(id), nil
}

// SetHighpassCrossover assigns the highpass crossover frequency in Hz.
func (z *Zone) SetHighpassCrossover(hz int32) (AssignResult, liberr.Error) {
	if hz < CrossoverFreqMin || hz > CrossoverFreqMax {
		return AssignSuccess, ErrOutOfRange.Errorf(CrossoverFreqMin, CrossoverFreqMax, hz)
	}
	return z.Sound.HighpassCrossover.Set(hz), nil
}

// SetLowpassCrossover assigns the lowpass crossover frequency in Hz.
func (z *Zone) SetLowpassCrossover(hz int32) (AssignResult, liberr.Error) {
	if hz < CrossoverFreqMin || hz > CrossoverFreqMax {
		return AssignSuccess, ErrOutOfRange.Errorf(CrossoverFreqMin, CrossoverFreqMax, hz)
	}
	return z.Sound.LowpassCrossover.Set(hz), nil
}

// SetBandLevel assigns one of the Zone's own per-band equalizer levels
// (only meaningful while Sound.Mode == SoundModePerBand).
func (z *Zone) SetBandLevel(band int, level int8) (AssignResult, liberr.Error) {
	if band < 0 || band >= BandCount {
		return AssignSuccess, ErrOutOfRange.Errorf(0, BandCount-1, band)
	}
	if level < BandLevelMin || level > BandLevelMax {
		return AssignSuccess, ErrOutOfRange.Errorf(BandLevelMin, BandLevelMax, level)
	}
	return z.Sound.PerBandLevels[band].Set(level), nil
}

// SetSourceRef binds the Zone to one of the device's fixed Sources.
func (z *Zone) SetSourceRef(sources *Sources, id Identifier) (AssignResult, liberr.Error) {
	if e := sources.ValidateIdentifier(id); e != nil {
		return AssignSuccess, e
	}
	return z.SourceRef.Set(id), nil
}

// EffectiveBandLevels resolves the 10 band levels that should actually
// drive playback: in SoundModePresetEqualizer, read-through to the
// referenced EqualizerPreset; in SoundModePerBand, the Zone's own levels;
// any other mode has no band levels at all. This dispatch rule is named
// by original_source/src/lib/model/ZoneModel.cpp but only summarised by
// the distilled spec (see SPEC_FULL.md §3).
func (z *Zone) EffectiveBandLevels(presets *EqualizerPresets) (levels [BandCount]int8, ok bool) {
	mode, set := z.Sound.Mode.Get()
	if !set {
		return levels, false
	}

	switch mode {
	case SoundModePresetEqualizer:
		ref, refSet := z.Sound.PresetRef.Get()
		if !refSet {
			return levels, false
		}
		p, e := presets.Get(ref)
		if e != nil {
			return levels, false
		}
		for i := range p.BandLevels {
			v, s := p.BandLevels[i].Get()
			if !s {
				return levels, false
			}
			levels[i] = v
		}
		return levels, true
	case SoundModePerBand:
		for i := range z.Sound.PerBandLevels {
			v, s := z.Sound.PerBandLevels[i].Get()
			if !s {
				return levels, false
			}
			levels[i] = v
		}
		return levels, true
	default:
		return levels, false
	}
}

// Zones is the owning collection of all Zone entities.
type Zones struct {
	rng Range
	m   map[Identifier]*Zone
}

// NewZones constructs the full, fixed-cardinality Zone collection.
func NewZones() *Zones {
	c := &Zones{rng: ZoneRange, m: make(map[Identifier]*Zone, ZoneRange.Cardinality())}
	for i := c.rng.Min; i <= c.rng.Max; i++ {
		c.m[i] = &Zone{id: i}
	}
	return c
}

// ValidateIdentifier implements Testable Property 4 for the Zone range.
func (c *Zones) ValidateIdentifier(i Identifier) liberr.Error {
	return c.rng.Validate(i)
}

// Get returns the Zone for i, or ErrOutOfRange/ErrNotFound.
func (c *Zones) Get(i Identifier) (*Zone, liberr.Error) {
	if e := c.ValidateIdentifier(i); e != nil {
		return nil, e
	}
	z, ok := c.m[i]
	if !ok {
		return nil, ErrNotFound.Errorf(i)
	}
	return z, nil
}

// Range returns the collection's identifier range.
func (c *Zones) Range() Range {
	return c.rng
}

// Each calls fn for every Zone in ascending identifier order.
func (c *Zones) Each(fn func(*Zone)) {
	for i := c.rng.Min; i <= c.rng.Max; i++ {
		fn(c.m[i])
	}
}
