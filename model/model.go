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

// Model is the top-level aggregate owning every fixed-cardinality
// collection and singleton the device exposes. It has no cycles: Zone and
// Group reference Source and EqualizerPreset only by Identifier, never by
// pointer, and always dereference through the owning collection here
// (spec §3). A Model is only ever touched from the single event-loop
// goroutine that owns its controller (spec §5); it carries no internal
// locking of its own.
type Model struct {
	Sources          *Sources
	Zones            *Zones
	Groups           *Groups
	EqualizerPresets *EqualizerPresets
	Favorites        *Favorites
	FrontPanel       *FrontPanel
	Infrared         *Infrared
	Network          *Network
}

// New constructs a Model with every fixed-cardinality collection fully
// populated (every identifier in range exists) and every singleton
// allocated, but with every field left uninitialised until a controller's
// Refresh populates it from the device.
func New() *Model {
	return &Model{
		Sources:          NewSources(),
		Zones:            NewZones(),
		Groups:           NewGroups(),
		EqualizerPresets: NewEqualizerPresets(),
		Favorites:        NewFavorites(),
		FrontPanel:       NewFrontPanel(),
		Infrared:         NewInfrared(),
		Network:          NewNetwork(),
	}
}
