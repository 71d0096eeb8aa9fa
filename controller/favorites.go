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

const objFavorite byte = 'F'

const (
	fieldFavoriteName   byte = 'n'
	fieldFavoriteSource byte = 's'
	fieldFavoriteAdd    byte = 'a' // value: member zone id
	fieldFavoriteRemove byte = 'r' // value: member zone id
)

var favoriteFields = []byte{fieldFavoriteName, fieldFavoriteSource, fieldFavoriteAdd, fieldFavoriteRemove}

// Favorites is the per-property controller for the Favorite collection
// (spec §3): a named source-and-zone-group preset.
type Favorites struct {
	base
	model   *model.Favorites
	sources *model.Sources
	zones   *model.Zones
}

// NewFavorites constructs a Favorites controller. sources/zones are the
// sibling collections SetSourceRef/AddZone validate identifiers against.
func NewFavorites(sources *model.Sources, zones *model.Zones, roles ...Role) *Favorites {
	return &Favorites{base: newBase(roles), model: model.NewFavorites(), sources: sources, zones: zones}
}

// Model returns the underlying collection for read-only inspection.
func (c *Favorites) Model() *model.Favorites {
	return c.model
}

// RegisterPatterns registers every favorite field's pattern, gated by Role.
func (c *Favorites) RegisterPatterns(clientNotify *pattern.Registry, serverRequests *pattern.Registry) liberr.Error {
	for _, f := range favoriteFields {
		if c.roles.Has(RoleClient) && clientNotify != nil {
			if e := clientNotify.Register(fieldKind(objFavorite, f), fieldNotifyExpr(objFavorite, f), 2); e != nil {
				return e
			}
		}
		if c.roles.Has(RoleServer) && serverRequests != nil {
			if e := serverRequests.Register(fieldKind(objFavorite, f), setRequestExpr(objFavorite, f), 2); e != nil {
				return e
			}
		}
	}
	return nil
}

// Init wires every favorite field's handler; idempotent (spec §4.6).
func (c *Favorites) Init(a InitArgs) liberr.Error {
	c.initOnce(a, func() {
		if c.roles.Has(RoleClient) && c.clientMgr != nil {
			for _, f := range favoriteFields {
				field := f
				_ = c.clientMgr.RegisterNotificationHandler(fieldKind(objFavorite, field), func(_ []byte, captures []string) {
					id, value, ok := parseIDValue(captures)
					if !ok {
						return
					}
					c.apply(field, id, value)
				})
			}
		}
		if c.roles.Has(RoleServer) && c.serverMgr != nil {
			for _, f := range favoriteFields {
				field := f
				c.serverMgr.RegisterRequestHandler(fieldKind(objFavorite, field), func(conn *server.Connection, _ []byte, captures []string) {
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
					c.broadcast(c.serverMgr, fieldFrame(objFavorite, field, id, value))
				})
			}
		}
	})
	return nil
}

func (c *Favorites) apply(field byte, id model.Identifier, value string) {
	f, e := c.model.Get(id)
	if e != nil {
		return
	}

	switch field {
	case fieldFavoriteName:
		if result, e := f.SetName(value); e == nil {
			c.publishIf(result, notify.Change{Entity: notify.EntityFavorite, Field: notify.FieldName, Identifier: id, Value: value})
		}
	case fieldFavoriteSource:
		n, err := strconv.ParseUint(value, 10, 32)
		if err != nil {
			return
		}
		if result, e := f.SetSourceRef(c.sources, model.Identifier(n)); e == nil {
			c.publishIf(result, notify.Change{Entity: notify.EntityFavorite, Field: notify.FieldSourceRef, Identifier: id, Value: model.Identifier(n)})
		}
	case fieldFavoriteAdd:
		n, err := strconv.ParseUint(value, 10, 32)
		if err != nil {
			return
		}
		if e := f.AddZone(c.zones, model.Identifier(n)); e == nil {
			c.publish(notify.Change{Entity: notify.EntityFavorite, Field: notify.FieldZoneMembership, Identifier: id, Value: model.Identifier(n)})
		}
	case fieldFavoriteRemove:
		n, err := strconv.ParseUint(value, 10, 32)
		if err != nil {
			return
		}
		if e := f.RemoveZone(model.Identifier(n)); e == nil {
			c.publish(notify.Change{Entity: notify.EntityFavorite, Field: notify.FieldZoneMembership, Identifier: id, Value: model.Identifier(n)})
		}
	}
}

func (c *Favorites) sendField(id model.Identifier, field byte, wire string, timeout time.Duration, onDone func(), onErr func(liberr.Error)) liberr.Error {
	if !c.roles.Has(RoleClient) || c.clientMgr == nil {
		return model.ErrInvalid.Errorf("Favorites: client role not active")
	}
	if _, e := c.model.Get(id); e != nil {
		return e
	}
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	frame := setFrame(objFavorite, field, id, wire)
	pat := fieldCompletionPattern(objFavorite, field, id)

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
func (c *Favorites) SetName(id model.Identifier, name string, timeout time.Duration, onDone func(), onErr func(liberr.Error)) liberr.Error {
	return c.sendField(id, fieldFavoriteName, name, timeout, onDone, onErr)
}

// SetSourceRef issues a client-role source-binding request.
func (c *Favorites) SetSourceRef(id model.Identifier, source model.Identifier, timeout time.Duration, onDone func(), onErr func(liberr.Error)) liberr.Error {
	return c.sendField(id, fieldFavoriteSource, strconv.FormatUint(uint64(source), 10), timeout, onDone, onErr)
}

// AddZone issues a client-role membership-add request.
func (c *Favorites) AddZone(id model.Identifier, zone model.Identifier, timeout time.Duration, onDone func(), onErr func(liberr.Error)) liberr.Error {
	return c.sendField(id, fieldFavoriteAdd, strconv.FormatUint(uint64(zone), 10), timeout, onDone, onErr)
}

// RemoveZone issues a client-role membership-remove request.
func (c *Favorites) RemoveZone(id model.Identifier, zone model.Identifier, timeout time.Duration, onDone func(), onErr func(liberr.Error)) liberr.Error {
	return c.sendField(id, fieldFavoriteRemove, strconv.FormatUint(uint64(zone), 10), timeout, onDone, onErr)
}

// Refresh queries every Favorite identifier in turn.
func (c *Favorites) Refresh(timeout time.Duration) liberr.Error {
	if !c.roles.Has(RoleClient) || c.clientMgr == nil {
		return model.ErrInvalid.Errorf("Favorites.Refresh: client role not active")
	}
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	rng := c.model.Range()
	c.beginRefresh(uint32(rng.Cardinality()))

	c.model.Each(func(f *model.Favorite) {
		id := f.Identifier()
		c.clientMgr.SendCommand(queryFrame(objFavorite, id), queryPattern(objFavorite, id), timeout,
			func(_ *client.ExchangeState, _ []string) { c.markObserved() },
			func(_ *client.ExchangeState, err liberr.Error) { c.failRefresh(err) },
			nil)
	})
	return nil
}
