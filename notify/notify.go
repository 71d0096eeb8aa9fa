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

// Package notify delivers tagged-union state-change notifications to
// subscribers on every authoritative model mutation (spec component K).
package notify

import (
	"github.com/nabbar/openhlx/model"
)

// Entity tags which model collection a Change belongs to.
type Entity uint8

const (
	EntitySource Entity = iota
	EntityZone
	EntityGroup
	EntityEqualizerPreset
	EntityFavorite
	EntityFrontPanel
	EntityInfrared
	EntityNetwork
	EntityConfiguration
)

// Field tags which field within the entity changed. Values are shared
// across entity types; a given Entity only ever emits the subset that
// makes sense for it (e.g. EntityZone never emits FieldEthernetAddress).
type Field uint8

const (
	FieldName Field = iota
	FieldVolumeLevel
	FieldMute
	FieldBalance
	FieldSoundMode
	FieldTone
	FieldPresetRef
	FieldHighpassCrossover
	FieldLowpassCrossover
	FieldBandLevel
	FieldSourceRef
	FieldZoneMembership
	FieldBrightness
	FieldLocked
	FieldDisabled
	FieldEthernetAddress
	FieldHostAddress
	FieldNetmask
	FieldDefaultRouter
	FieldDHCPv4Enabled
	FieldSDDPEnabled
	FieldConfigurationSaving
	FieldConfigurationSaved
)

// Change is the tagged union delivered to every subscriber. Value carries
// the post-image, cheap to copy, never a pointer into the model (spec §3).
type Change struct {
	Entity     Entity
	Field      Field
	Identifier model.Identifier
	Value      any
}

// Handler receives a dispatched Change. Handlers run synchronously, in the
// order they subscribed, on the same goroutine that mutated the model
// (spec §5: "within a frame the model is mutated before the state-change
// subscriber is called").
type Handler func(Change)

// Notifier fans a Change out to every subscribed Handler in registration
// order. It carries no locking of its own: like the rest of the core, it
// is only ever touched from the single event-loop goroutine that owns it.
type Notifier struct {
	handlers []Handler
}

// New constructs an empty Notifier.
func New() *Notifier {
	return &Notifier{}
}

// Subscribe registers h to receive every future Publish call.
func (n *Notifier) Subscribe(h Handler) {
	n.handlers = append(n.handlers, h)
}

// Publish dispatches c to every subscriber in registration order. Publish
// must only be called after the triggering mutation has already taken
// effect in the model, and only when that mutation returned
// model.AssignSuccess — an AssignAlreadySet mutation publishes nothing, so
// subscribers never see redundant notifications (spec §3/§5).
func (n *Notifier) Publish(c Change) {
	for _, h := range n.handlers {
		h(c)
	}
}
