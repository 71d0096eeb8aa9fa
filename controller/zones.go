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

package controller

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nabbar/openhlx/command/client"
	"github.com/nabbar/openhlx/command/server"
	liberr "github.com/nabbar/openhlx/errors"
	"github.com/nabbar/openhlx/model"
	"github.com/nabbar/openhlx/notify"
	"github.com/nabbar/openhlx/pattern"
)

// object code 'O' is original_source's kZoneObject literal, the one
// object-code constant this module did not have to invent (DESIGN.md).
const objZone byte = 'O'

const (
	fieldZoneName     byte = 'n'
	fieldZoneVolume   byte = 'v'
	fieldZoneMute     byte = 'm'
	fieldZoneBalance  byte = 'b'
	fieldZoneSound    byte = 'o'
	fieldZoneTone     byte = 't' // value "<bass> <treble>"
	fieldZonePreset   byte = 'p'
	fieldZoneHighpass byte = 'h'
	fieldZoneLowpass  byte = 'l'
	fieldZoneBand     byte = 'd' // value "<band> <level>"
	fieldZoneSource   byte = 's'
)

var zoneFields = []byte{
	fieldZoneName, fieldZoneVolume, fieldZoneMute, fieldZoneBalance, fieldZoneSound,
	fieldZoneTone, fieldZonePreset, fieldZoneHighpass, fieldZoneLowpass, fieldZoneBand, fieldZoneSource,
}

// Zones is the per-property controller for the Zone collection (spec §3):
// the largest field set of any entity, covering name, volume/mute,
// balance, sound-mode selection and its four sub-blocks, and source
// routing.
type Zones struct {
	base
	model    *model.Zones
	presets  *model.EqualizerPresets
	sources  *model.Sources
}

// NewZones constructs a Zones controller. presets and sources are the
// sibling collections Zone.SetPresetRef/SetSourceRef validate identifiers
// against; they are typically the same *model.EqualizerPresets/*model.Sources
// the EqualizerPresets/Sources controllers own.
func NewZones(presets *model.EqualizerPresets, sources *model.Sources, roles ...Role) *Zones {
	return &Zones{base: newBase(roles), model: model.NewZones(), presets: presets, sources: sources}
}

// Model returns the underlying collection for read-only inspection.
func (c *Zones) Model() *model.Zones {
	return c.model
}

// RegisterPatterns registers every Zone field's pattern into the shared
// registries, gated by Role. Must run before the registries' CompileAll.
func (c *Zones) RegisterPatterns(clientNotify *pattern.Registry, serverRequests *pattern.Registry) liberr.Error {
	for _, f := range zoneFields {
		captures := 2
		if c.roles.Has(RoleClient) && clientNotify != nil {
			if e := clientNotify.Register(fieldKind(objZone, f), fieldNotifyExpr(objZone, f), captures); e != nil {
				return e
			}
		}
		if c.roles.Has(RoleServer) && serverRequests != nil {
			if e := serverRequests.Register(fieldKind(objZone, f), setRequestExpr(objZone, f), captures); e != nil {
				return e
			}
		}
	}
	return nil
}

// Init wires every Zone field's notification/request handler into the
// already-constructed Command Managers; idempotent (spec §4.6).
func (c *Zones) Init(a InitArgs) liberr.Error {
	c.initOnce(a, func() {
		if c.roles.Has(RoleClient) && c.clientMgr != nil {
			_ = c.clientMgr.RegisterNotificationHandler(fieldKind(objZone, fieldZoneName), c.notifyHandler(fieldZoneName))
			_ = c.clientMgr.RegisterNotificationHandler(fieldKind(objZone, fieldZoneVolume), c.notifyHandler(fieldZoneVolume))
			_ = c.clientMgr.RegisterNotificationHandler(fieldKind(objZone, fieldZoneMute), c.notifyHandler(fieldZoneMute))
			_ = c.clientMgr.RegisterNotificationHandler(fieldKind(objZone, fieldZoneBalance), c.notifyHandler(fieldZoneBalance))
			_ = c.clientMgr.RegisterNotificationHandler(fieldKind(objZone, fieldZoneSound), c.notifyHandler(fieldZoneSound))
			_ = c.clientMgr.RegisterNotificationHandler(fieldKind(objZone, fieldZoneTone), c.notifyHandler(fieldZoneTone))
			_ = c.clientMgr.RegisterNotificationHandler(fieldKind(objZone, fieldZonePreset), c.notifyHandler(fieldZonePreset))
			_ = c.clientMgr.RegisterNotificationHandler(fieldKind(objZone, fieldZoneHighpass), c.notifyHandler(fieldZoneHighpass))
			_ = c.clientMgr.RegisterNotificationHandler(fieldKind(objZone, fieldZoneLowpass), c.notifyHandler(fieldZoneLowpass))
			_ = c.clientMgr.RegisterNotificationHandler(fieldKind(objZone, fieldZoneBand), c.notifyHandler(fieldZoneBand))
			_ = c.clientMgr.RegisterNotificationHandler(fieldKind(objZone, fieldZoneSource), c.notifyHandler(fieldZoneSource))
		}
		if c.roles.Has(RoleServer) && c.serverMgr != nil {
			for _, f := range zoneFields {
				field := f
				c.serverMgr.RegisterRequestHandler(fieldKind(objZone, field), c.requestHandler(field))
			}
		}
	})
	return nil
}

// notifyHandler returns the NotificationFunc applying field's capture
// pair to the local model.
func (c *Zones) notifyHandler(field byte) client.NotificationFunc {
	return func(_ []byte, captures []string) {
		id, value, ok := parseIDValue(captures)
		if !ok {
			return
		}
		c.apply(field, id, value)
	}
}

// requestHandler returns the RequestFunc applying field's capture pair to
// the local model and broadcasting the resulting frame to every other
// connected peer.
func (c *Zones) requestHandler(field byte) server.RequestFunc {
	return func(conn *server.Connection, _ []byte, captures []string) {
		id, value, ok := parseIDValue(captures)
		if !ok {
			_ = conn.SendErrorResponse()
			return
		}
		if _, e := c.model.Get(id); e != nil {
			_ = conn.SendErrorResponse()
			return
		}
		c.apply(field, id, value)
		c.broadcast(c.serverMgr, fieldFrame(objZone, field, id, value))
	}
}

// apply decodes value per field and mutates the Zone, publishing a Change
// only when the underlying model.Field actually transitioned.
func (c *Zones) apply(field byte, id model.Identifier, value string) {
	z, e := c.model.Get(id)
	if e != nil {
		return
	}

	switch field {
	case fieldZoneName:
		if result, e := z.SetName(value); e == nil {
			c.publishIf(result, notify.Change{Entity: notify.EntityZone, Field: notify.FieldName, Identifier: id, Value: value})
		}
	case fieldZoneVolume:
		if lvl, ok := parseInt8(value); ok {
			if result, e := z.SetVolumeLevel(lvl); e == nil {
				c.publishIf(result, notify.Change{Entity: notify.EntityZone, Field: notify.FieldVolumeLevel, Identifier: id, Value: lvl})
			}
		}
	case fieldZoneMute:
		if mute, ok := parseBool(value); ok {
			result := z.SetMute(mute)
			c.publishIf(result, notify.Change{Entity: notify.EntityZone, Field: notify.FieldMute, Identifier: id, Value: mute})
		}
	case fieldZoneBalance:
		if bal, ok := parseInt8(value); ok {
			if result, e := z.SetBalance(bal); e == nil {
				c.publishIf(result, notify.Change{Entity: notify.EntityZone, Field: notify.FieldBalance, Identifier: id, Value: bal})
			}
		}
	case fieldZoneSound:
		if n, ok := parseInt8(value); ok {
			if result, e := z.SetSoundMode(model.SoundMode(n)); e == nil {
				c.publishIf(result, notify.Change{Entity: notify.EntityZone, Field: notify.FieldSoundMode, Identifier: id, Value: model.SoundMode(n)})
			}
		}
	case fieldZoneTone:
		bass, treble, ok := parseTwoInt8(value)
		if !ok {
			return
		}
		rb, rt, e := z.SetTone(bass, treble)
		if e != nil {
			return
		}
		c.publishIf(rb, notify.Change{Entity: notify.EntityZone, Field: notify.FieldTone, Identifier: id, Value: [2]int8{bass, treble}})
		_ = rt
	case fieldZonePreset:
		if n, ok := parseInt8(value); ok {
			if result, e := z.SetPresetRef(c.presets, model.Identifier(n)); e == nil {
				c.publishIf(result, notify.Change{Entity: notify.EntityZone, Field: notify.FieldPresetRef, Identifier: id, Value: model.Identifier(n)})
			}
		}
	case fieldZoneHighpass:
		if hz, ok := parseInt32(value); ok {
			if result, e := z.SetHighpassCrossover(hz); e == nil {
				c.publishIf(result, notify.Change{Entity: notify.EntityZone, Field: notify.FieldHighpassCrossover, Identifier: id, Value: hz})
			}
		}
	case fieldZoneLowpass:
		if hz, ok := parseInt32(value); ok {
			if result, e := z.SetLowpassCrossover(hz); e == nil {
				c.publishIf(result, notify.Change{Entity: notify.EntityZone, Field: notify.FieldLowpassCrossover, Identifier: id, Value: hz})
			}
		}
	case fieldZoneBand:
		band, level, ok := parseBandLevel(value)
		if !ok {
			return
		}
		if result, e := z.SetBandLevel(band, level); e == nil {
			c.publishIf(result, notify.Change{Entity: notify.EntityZone, Field: notify.FieldBandLevel, Identifier: id, Value: [2]int{band, int(level)}})
		}
	case fieldZoneSource:
		if n, ok := parseInt8(value); ok {
			if result, e := z.SetSourceRef(c.sources, model.Identifier(n)); e == nil {
				c.publishIf(result, notify.Change{Entity: notify.EntityZone, Field: notify.FieldSourceRef, Identifier: id, Value: model.Identifier(n)})
			}
		}
	}
}

// sendField issues a client-role mutation request for one field of one
// Zone, applying the device's own echo to the local model on completion.
func (c *Zones) sendField(id model.Identifier, field byte, wire string, timeout time.Duration, onDone func(), onErr func(liberr.Error)) liberr.Error {
	if !c.roles.Has(RoleClient) || c.clientMgr == nil {
		return model.ErrInvalid.Errorf("Zones: client role not active")
	}
	if _, e := c.model.Get(id); e != nil {
		return e
	}
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	frame := setFrame(objZone, field, id, wire)
	pat := fieldCompletionPattern(objZone, field, id)

	c.clientMgr.SendCommand(frame, pat, timeout, func(_ *client.ExchangeState, captures []string) {
		if len(captures) > 0 {
			c.apply(field, id, captures[0])
		}
		if onDone != nil {
			onDone()
		}
	}, func(_ *client.ExchangeState, err liberr.Error) {
		if onErr != nil {
			onErr(err)
		}
	}, nil)
	return nil
}

// SetName issues a client-role rename request.
func (c *Zones) SetName(id model.Identifier, name string, timeout time.Duration, onDone func(), onErr func(liberr.Error)) liberr.Error {
	return c.sendField(id, fieldZoneName, name, timeout, onDone, onErr)
}

// SetVolumeLevel issues a client-role volume-level request.
func (c *Zones) SetVolumeLevel(id model.Identifier, level int8, timeout time.Duration, onDone func(), onErr func(liberr.Error)) liberr.Error {
	return c.sendField(id, fieldZoneVolume, strconv.Itoa(int(level)), timeout, onDone, onErr)
}

// SetMute issues a client-role mute request.
func (c *Zones) SetMute(id model.Identifier, mute bool, timeout time.Duration, onDone func(), onErr func(liberr.Error)) liberr.Error {
	return c.sendField(id, fieldZoneMute, boolWire(mute), timeout, onDone, onErr)
}

// SetBalance issues a client-role stereo-balance request.
func (c *Zones) SetBalance(id model.Identifier, balance int8, timeout time.Duration, onDone func(), onErr func(liberr.Error)) liberr.Error {
	return c.sendField(id, fieldZoneBalance, strconv.Itoa(int(balance)), timeout, onDone, onErr)
}

// SetSoundMode issues a client-role sound-mode-selection request.
func (c *Zones) SetSoundMode(id model.Identifier, mode model.SoundMode, timeout time.Duration, onDone func(), onErr func(liberr.Error)) liberr.Error {
	return c.sendField(id, fieldZoneSound, strconv.Itoa(int(mode)), timeout, onDone, onErr)
}

// SetTone issues a client-role bass/treble request.
func (c *Zones) SetTone(id model.Identifier, bass int8, treble int8, timeout time.Duration, onDone func(), onErr func(liberr.Error)) liberr.Error {
	return c.sendField(id, fieldZoneTone, fmt.Sprintf("%d %d", bass, treble), timeout, onDone, onErr)
}

// SetPresetRef issues a client-role equalizer-preset-binding request.
func (c *Zones) SetPresetRef(id model.Identifier, preset model.Identifier, timeout time.Duration, onDone func(), onErr func(liberr.Error)) liberr.Error {
	return c.sendField(id, fieldZonePreset, strconv.FormatUint(uint64(preset), 10), timeout, onDone, onErr)
}

// SetHighpassCrossover issues a client-role highpass-frequency request.
func (c *Zones) SetHighpassCrossover(id model.Identifier, hz int32, timeout time.Duration, onDone func(), onErr func(liberr.Error)) liberr.Error {
	return c.sendField(id, fieldZoneHighpass, strconv.Itoa(int(hz)), timeout, onDone, onErr)
}

// SetLowpassCrossover issues a client-role lowpass-frequency request.
func (c *Zones) SetLowpassCrossover(id model.Identifier, hz int32, timeout time.Duration, onDone func(), onErr func(liberr.Error)) liberr.Error {
	return c.sendField(id, fieldZoneLowpass, strconv.Itoa(int(hz)), timeout, onDone, onErr)
}

// SetBandLevel issues a client-role per-band equalizer-level request.
func (c *Zones) SetBandLevel(id model.Identifier, band int, level int8, timeout time.Duration, onDone func(), onErr func(liberr.Error)) liberr.Error {
	return c.sendField(id, fieldZoneBand, fmt.Sprintf("%d %d", band, level), timeout, onDone, onErr)
}

// SetSourceRef issues a client-role source-routing request.
func (c *Zones) SetSourceRef(id model.Identifier, source model.Identifier, timeout time.Duration, onDone func(), onErr func(liberr.Error)) liberr.Error {
	return c.sendField(id, fieldZoneSource, strconv.FormatUint(uint64(source), 10), timeout, onDone, onErr)
}

// Refresh queries every Zone identifier in turn (spec §4.6/§4.7).
func (c *Zones) Refresh(timeout time.Duration) liberr.Error {
	if !c.roles.Has(RoleClient) || c.clientMgr == nil {
		return model.ErrInvalid.Errorf("Zones.Refresh: client role not active")
	}
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	rng := c.model.Range()
	c.beginRefresh(uint32(rng.Cardinality()))

	c.model.Each(func(z *model.Zone) {
		id := z.Identifier()
		c.clientMgr.SendCommand(queryFrame(objZone, id), queryPattern(objZone, id), timeout,
			func(_ *client.ExchangeState, _ []string) { c.markObserved() },
			func(_ *client.ExchangeState, err liberr.Error) { c.failRefresh(err) },
			nil)
	})
	return nil
}

func boolWire(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func parseBool(s string) (bool, bool) {
	switch s {
	case "1":
		return true, true
	case "0":
		return false, true
	default:
		return false, false
	}
}

func parseInt8(s string) (int8, bool) {
	n, err := strconv.ParseInt(s, 10, 8)
	if err != nil {
		return 0, false
	}
	return int8(n), true
}

func parseInt32(s string) (int32, bool) {
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, false
	}
	return int32(n), true
}

func parseTwoInt8(s string) (a int8, b int8, ok bool) {
	parts := strings.SplitN(s, " ", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	av, aok := parseInt8(parts[0])
	bv, bok := parseInt8(parts[1])
	if !aok || !bok {
		return 0, 0, false
	}
	return av, bv, true
}

func parseBandLevel(s string) (band int, level int8, ok bool) {
	parts := strings.SplitN(s, " ", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	n, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, false
	}
	lvl, lok := parseInt8(parts[1])
	if !lok {
		return 0, 0, false
	}
	return n, lvl, true
}
