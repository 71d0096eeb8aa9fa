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
	"strconv"
	"time"

	"github.com/nabbar/openhlx/command/client"
	"github.com/nabbar/openhlx/command/server"
	liberr "github.com/nabbar/openhlx/errors"
	"github.com/nabbar/openhlx/model"
	"github.com/nabbar/openhlx/notify"
	"github.com/nabbar/openhlx/pattern"
)

// object code 'G' is original_source's kGroupObject literal.
const objGroup byte = 'G'

const (
	fieldGroupName   byte = 'n'
	fieldGroupVolume byte = 'v'
	fieldGroupAdd    byte = 'a' // value: member zone id
	fieldGroupRemove byte = 'r' // value: member zone id
)

var groupFields = []byte{fieldGroupName, fieldGroupVolume, fieldGroupAdd, fieldGroupRemove}

// Groups is the per-property controller for the Group collection (spec
// §3): membership, name and own volume are authoritative; mute and
// effective sources are derived read-through against the Zones
// collection, never carried on the wire of their own accord.
type Groups struct {
	base
	model *model.Groups
	zones *model.Zones
}

// NewGroups constructs a Groups controller. zones is the sibling Zone
// collection membership/derivation reads through (typically the same
// *model.Zones the Zones controller owns).
func NewGroups(zones *model.Zones, roles ...Role) *Groups {
	return &Groups{base: newBase(roles), model: model.NewGroups(), zones: zones}
}

// Model returns the underlying collection for read-only inspection.
func (c *Groups) Model() *model.Groups {
	return c.model
}

// RegisterPatterns registers every Group field's pattern into the shared
// registries, gated by Role.
func (c *Groups) RegisterPatterns(clientNotify *pattern.Registry, serverRequests *pattern.Registry) liberr.Error {
	for _, f := range groupFields {
		if c.roles.Has(RoleClient) && clientNotify != nil {
			if e := clientNotify.Register(fieldKind(objGroup, f), fieldNotifyExpr(objGroup, f), 2); e != nil {
				return e
			}
		}
		if c.roles.Has(RoleServer) && serverRequests != nil {
			if e := serverRequests.Register(fieldKind(objGroup, f), setRequestExpr(objGroup, f), 2); e != nil {
				return e
			}
		}
	}
	return nil
}

// Init wires every Group field's notification/request handler into the
// already-constructed Command Managers; idempotent (spec §4.6).
func (c *Groups) Init(a InitArgs) liberr.Error {
	c.initOnce(a, func() {
		if c.roles.Has(RoleClient) && c.clientMgr != nil {
			for _, f := range groupFields {
				field := f
				_ = c.clientMgr.RegisterNotificationHandler(fieldKind(objGroup, field), func(_ []byte, captures []string) {
					id, value, ok := parseIDValue(captures)
					if !ok {
						return
					}
					c.apply(field, id, value)
				})
			}
		}
		if c.roles.Has(RoleServer) && c.serverMgr != nil {
			for _, f := range groupFields {
				field := f
				c.serverMgr.RegisterRequestHandler(fieldKind(objGroup, field), func(conn *server.Connection, _ []byte, captures []string) {
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
					c.broadcast(c.serverMgr, fieldFrame(objGroup, field, id, value))
				})
			}
		}
	})
	return nil
}

func (c *Groups) apply(field byte, id model.Identifier, value string) {
	g, e := c.model.Get(id)
	if e != nil {
		return
	}

	switch field {
	case fieldGroupName:
		if result, e := g.SetName(value); e == nil {
			c.publishIf(result, notify.Change{Entity: notify.EntityGroup, Field: notify.FieldName, Identifier: id, Value: value})
		}
	case fieldGroupVolume:
		if lvl, ok := parseInt8(value); ok {
			if result, e := g.SetVolumeLevel(lvl); e == nil {
				c.publishIf(result, notify.Change{Entity: notify.EntityGroup, Field: notify.FieldVolumeLevel, Identifier: id, Value: lvl})
			}
		}
	case fieldGroupAdd:
		n, err := strconv.ParseUint(value, 10, 32)
		if err != nil {
			return
		}
		if e := g.AddZone(c.zones, model.Identifier(n)); e == nil {
			c.publish(notify.Change{Entity: notify.EntityGroup, Field: notify.FieldZoneMembership, Identifier: id, Value: model.Identifier(n)})
		}
	case fieldGroupRemove:
		n, err := strconv.ParseUint(value, 10, 32)
		if err != nil {
			return
		}
		if e := g.RemoveZone(model.Identifier(n)); e == nil {
			c.publish(notify.Change{Entity: notify.EntityGroup, Field: notify.FieldZoneMembership, Identifier: id, Value: model.Identifier(n)})
		}
	}
}

func (c *Groups) sendField(id model.Identifier, field byte, wire string, timeout time.Duration, onDone func(), onErr func(liberr.Error)) liberr.Error {
	if !c.roles.Has(RoleClient) || c.clientMgr == nil {
		return model.ErrInvalid.Errorf("Groups: client role not active")
	}
	if _, e := c.model.Get(id); e != nil {
		return e
	}
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	frame := setFrame(objGroup, field, id, wire)
	pat := fieldCompletionPattern(objGroup, field, id)

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
func (c *Groups) SetName(id model.Identifier, name string, timeout time.Duration, onDone func(), onErr func(liberr.Error)) liberr.Error {
	return c.sendField(id, fieldGroupName, name, timeout, onDone, onErr)
}

// SetVolumeLevel issues a client-role volume-level request.
func (c *Groups) SetVolumeLevel(id model.Identifier, level int8, timeout time.Duration, onDone func(), onErr func(liberr.Error)) liberr.Error {
	return c.sendField(id, fieldGroupVolume, strconv.Itoa(int(level)), timeout, onDone, onErr)
}

// AddZone issues a client-role membership-add request.
func (c *Groups) AddZone(id model.Identifier, zone model.Identifier, timeout time.Duration, onDone func(), onErr func(liberr.Error)) liberr.Error {
	return c.sendField(id, fieldGroupAdd, strconv.FormatUint(uint64(zone), 10), timeout, onDone, onErr)
}

// RemoveZone issues a client-role membership-remove request.
func (c *Groups) RemoveZone(id model.Identifier, zone model.Identifier, timeout time.Duration, onDone func(), onErr func(liberr.Error)) liberr.Error {
	return c.sendField(id, fieldGroupRemove, strconv.FormatUint(uint64(zone), 10), timeout, onDone, onErr)
}

// Refresh queries every Group identifier in turn (spec §4.6/§4.7).
func (c *Groups) Refresh(timeout time.Duration) liberr.Error {
	if !c.roles.Has(RoleClient) || c.clientMgr == nil {
		return model.ErrInvalid.Errorf("Groups.Refresh: client role not active")
	}
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	rng := c.model.Range()
	c.beginRefresh(uint32(rng.Cardinality()))

	c.model.Each(func(g *model.Group) {
		id := g.Identifier()
		c.clientMgr.SendCommand(queryFrame(objGroup, id), queryPattern(objGroup, id), timeout,
			func(_ *client.ExchangeState, _ []string) { c.markObserved() },
			func(_ *client.ExchangeState, err liberr.Error) { c.failRefresh(err) },
			nil)
	})
	return nil
}
