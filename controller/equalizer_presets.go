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
	"time"

	"github.com/nabbar/openhlx/command/client"
	"github.com/nabbar/openhlx/command/server"
	liberr "github.com/nabbar/openhlx/errors"
	"github.com/nabbar/openhlx/model"
	"github.com/nabbar/openhlx/notify"
	"github.com/nabbar/openhlx/pattern"
)

const objPreset byte = 'E'

const (
	fieldPresetName byte = 'n'
	fieldPresetBand byte = 'd' // value "<band> <level>"
)

var presetFields = []byte{fieldPresetName, fieldPresetBand}

// EqualizerPresets is the per-property controller for the named,
// fixed-cardinality EqualizerPreset collection (spec §3).
type EqualizerPresets struct {
	base
	model *model.EqualizerPresets
}

// NewEqualizerPresets constructs an EqualizerPresets controller.
func NewEqualizerPresets(roles ...Role) *EqualizerPresets {
	return &EqualizerPresets{base: newBase(roles), model: model.NewEqualizerPresets()}
}

// Model returns the underlying collection for read-only inspection.
func (c *EqualizerPresets) Model() *model.EqualizerPresets {
	return c.model
}

// RegisterPatterns registers every preset field's pattern, gated by Role.
func (c *EqualizerPresets) RegisterPatterns(clientNotify *pattern.Registry, serverRequests *pattern.Registry) liberr.Error {
	for _, f := range presetFields {
		if c.roles.Has(RoleClient) && clientNotify != nil {
			if e := clientNotify.Register(fieldKind(objPreset, f), fieldNotifyExpr(objPreset, f), 2); e != nil {
				return e
			}
		}
		if c.roles.Has(RoleServer) && serverRequests != nil {
			if e := serverRequests.Register(fieldKind(objPreset, f), setRequestExpr(objPreset, f), 2); e != nil {
				return e
			}
		}
	}
	return nil
}

// Init wires every preset field's handler; idempotent (spec §4.6).
func (c *EqualizerPresets) Init(a InitArgs) liberr.Error {
	c.initOnce(a, func() {
		if c.roles.Has(RoleClient) && c.clientMgr != nil {
			for _, f := range presetFields {
				field := f
				_ = c.clientMgr.RegisterNotificationHandler(fieldKind(objPreset, field), func(_ []byte, captures []string) {
					id, value, ok := parseIDValue(captures)
					if !ok {
						return
					}
					c.apply(field, id, value)
				})
			}
		}
		if c.roles.Has(RoleServer) && c.serverMgr != nil {
			for _, f := range presetFields {
				field := f
				c.serverMgr.RegisterRequestHandler(fieldKind(objPreset, field), func(conn *server.Connection, _ []byte, captures []string) {
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
					c.broadcast(c.serverMgr, fieldFrame(objPreset, field, id, value))
				})
			}
		}
	})
	return nil
}

func (c *EqualizerPresets) apply(field byte, id model.Identifier, value string) {
	p, e := c.model.Get(id)
	if e != nil {
		return
	}

	switch field {
	case fieldPresetName:
		if result, e := p.SetName(value); e == nil {
			c.publishIf(result, notify.Change{Entity: notify.EntityEqualizerPreset, Field: notify.FieldName, Identifier: id, Value: value})
		}
	case fieldPresetBand:
		band, level, ok := parseBandLevel(value)
		if !ok {
			return
		}
		if result, e := p.SetBandLevel(band, level); e == nil {
			c.publishIf(result, notify.Change{Entity: notify.EntityEqualizerPreset, Field: notify.FieldBandLevel, Identifier: id, Value: [2]int{band, int(level)}})
		}
	}
}

func (c *EqualizerPresets) sendField(id model.Identifier, field byte, wire string, timeout time.Duration, onDone func(), onErr func(liberr.Error)) liberr.Error {
	if !c.roles.Has(RoleClient) || c.clientMgr == nil {
		return model.ErrInvalid.Errorf("EqualizerPresets: client role not active")
	}
	if _, e := c.model.Get(id); e != nil {
		return e
	}
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	frame := setFrame(objPreset, field, id, wire)
	pat := fieldCompletionPattern(objPreset, field, id)

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
func (c *EqualizerPresets) SetName(id model.Identifier, name string, timeout time.Duration, onDone func(), onErr func(liberr.Error)) liberr.Error {
	return c.sendField(id, fieldPresetName, name, timeout, onDone, onErr)
}

// SetBandLevel issues a client-role per-band equalizer-level request.
func (c *EqualizerPresets) SetBandLevel(id model.Identifier, band int, level int8, timeout time.Duration, onDone func(), onErr func(liberr.Error)) liberr.Error {
	return c.sendField(id, fieldPresetBand, fmt.Sprintf("%d %d", band, level), timeout, onDone, onErr)
}

// Refresh queries every EqualizerPreset identifier in turn.
func (c *EqualizerPresets) Refresh(timeout time.Duration) liberr.Error {
	if !c.roles.Has(RoleClient) || c.clientMgr == nil {
		return model.ErrInvalid.Errorf("EqualizerPresets.Refresh: client role not active")
	}
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	rng := c.model.Range()
	c.beginRefresh(uint32(rng.Cardinality()))

	c.model.Each(func(p *model.EqualizerPreset) {
		id := p.Identifier()
		c.clientMgr.SendCommand(queryFrame(objPreset, id), queryPattern(objPreset, id), timeout,
			func(_ *client.ExchangeState, _ []string) { c.markObserved() },
			func(_ *client.ExchangeState, err liberr.Error) { c.failRefresh(err) },
			nil)
	})
	return nil
}
