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

const objSource byte = 'U'

const fieldSourceName byte = 'n'

// Sources is the per-property controller for the fixed-cardinality Source
// collection: display name only (spec §3).
type Sources struct {
	base
	model *model.Sources
}

// NewSources constructs a Sources controller over a fresh model.Sources
// collection, active for the given Role(s).
func NewSources(roles ...Role) *Sources {
	return &Sources{base: newBase(roles), model: model.NewSources()}
}

// Model returns the underlying collection for read-only inspection (e.g.
// hlxc rendering a listing).
func (c *Sources) Model() *model.Sources {
	return c.model
}

// RegisterPatterns registers this controller's field patterns into the
// shared client-notify and/or server-request registries, gated by Role.
// Must run before the registries' CompileAll.
func (c *Sources) RegisterPatterns(clientNotify *pattern.Registry, serverRequests *pattern.Registry) liberr.Error {
	if c.roles.Has(RoleClient) && clientNotify != nil {
		if e := clientNotify.Register(fieldKind(objSource, fieldSourceName), fieldNotifyExpr(objSource, fieldSourceName), 2); e != nil {
			return e
		}
	}
	if c.roles.Has(RoleServer) && serverRequests != nil {
		if e := serverRequests.Register(fieldKind(objSource, fieldSourceName), setRequestExpr(objSource, fieldSourceName), 2); e != nil {
			return e
		}
	}
	return nil
}

// Init wires this controller's notification/request handlers into the
// already-constructed Command Managers; idempotent (spec §4.6).
func (c *Sources) Init(a InitArgs) liberr.Error {
	c.initOnce(a, func() {
		if c.roles.Has(RoleClient) && c.clientMgr != nil {
			_ = c.clientMgr.RegisterNotificationHandler(fieldKind(objSource, fieldSourceName), c.onNotifyName)
		}
		if c.roles.Has(RoleServer) && c.serverMgr != nil {
			c.serverMgr.RegisterRequestHandler(fieldKind(objSource, fieldSourceName), c.onRequestSetName)
		}
	})
	return nil
}

func (c *Sources) onNotifyName(_ []byte, captures []string) {
	id, value, ok := parseIDValue(captures)
	if !ok {
		return
	}
	c.applyName(id, value)
}

func (c *Sources) onRequestSetName(conn *server.Connection, _ []byte, captures []string) {
	id, value, ok := parseIDValue(captures)
	if !ok {
		_ = conn.SendErrorResponse()
		return
	}
	if _, e := c.model.Get(id); e != nil {
		_ = conn.SendErrorResponse()
		return
	}
	c.applyName(id, value)
	c.broadcast(c.serverMgr, fieldFrame(objSource, fieldSourceName, id, value))
}

func (c *Sources) applyName(id model.Identifier, value string) {
	src, e := c.model.Get(id)
	if e != nil {
		return
	}
	result, e := src.SetName(value)
	if e != nil {
		return
	}
	c.publishIf(result, notify.Change{Entity: notify.EntitySource, Field: notify.FieldName, Identifier: id, Value: value})
}

// SetName issues a client-role request to rename Source id, applying the
// new name to the local model as soon as the device's own echo completes.
func (c *Sources) SetName(id model.Identifier, name string, timeout time.Duration, onDone func(), onErr func(liberr.Error)) liberr.Error {
	if !c.roles.Has(RoleClient) || c.clientMgr == nil {
		return model.ErrInvalid.Errorf("Sources.SetName: client role not active")
	}
	if _, e := c.model.Get(id); e != nil {
		return e
	}
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	frame := setFrame(objSource, fieldSourceName, id, name)
	pat := fieldCompletionPattern(objSource, fieldSourceName, id)

	c.clientMgr.SendCommand(frame, pat, timeout, func(_ *client.ExchangeState, captures []string) {
		if len(captures) > 0 {
			c.applyName(id, captures[0])
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

// Refresh queries every Source identifier in turn, reporting progress
// through the configured Bar and firing OnDidRefresh once every query has
// completed (spec §4.6/§4.7).
func (c *Sources) Refresh(timeout time.Duration) liberr.Error {
	if !c.roles.Has(RoleClient) || c.clientMgr == nil {
		return model.ErrInvalid.Errorf("Sources.Refresh: client role not active")
	}
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	rng := c.model.Range()
	c.beginRefresh(uint32(rng.Cardinality()))

	c.model.Each(func(s *model.Source) {
		id := s.Identifier()
		c.clientMgr.SendCommand(queryFrame(objSource, id), queryPattern(objSource, id), timeout,
			func(_ *client.ExchangeState, _ []string) { c.markObserved() },
			func(_ *client.ExchangeState, err liberr.Error) { c.failRefresh(err) },
			nil)
	})
	return nil
}

// parseIDValue decodes the (id, value) capture pair every field pattern
// in this package produces; ok is false on a malformed identifier, which
// can only happen if a pattern's capture group regexp itself is wrong.
func parseIDValue(captures []string) (id model.Identifier, value string, ok bool) {
	if len(captures) < 2 {
		return 0, "", false
	}
	n, err := strconv.ParseUint(captures[0], 10, 32)
	if err != nil {
		return 0, "", false
	}
	return model.Identifier(n), captures[1], true
}
