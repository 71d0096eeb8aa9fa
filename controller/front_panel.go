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
	"context"
	"strconv"
	"time"

	"github.com/nabbar/openhlx/command/client"
	"github.com/nabbar/openhlx/command/server"
	liberr "github.com/nabbar/openhlx/errors"
	"github.com/nabbar/openhlx/model"
	"github.com/nabbar/openhlx/notify"
	"github.com/nabbar/openhlx/pattern"
	"github.com/nabbar/openhlx/proxy"
)

const objFrontPanel byte = 'P'

const (
	fieldFrontPanelBrightness byte = 'b'
	fieldFrontPanelLocked     byte = 'l'
)

var frontPanelFields = []byte{fieldFrontPanelBrightness, fieldFrontPanelLocked}

// FrontPanel is the per-property controller for the device's single
// front-panel entity (spec §3): display brightness and button lock, both
// addressed at the fixed singletonID.
type FrontPanel struct {
	base
	model *model.FrontPanel
}

// NewFrontPanel constructs a FrontPanel controller.
func NewFrontPanel(roles ...Role) *FrontPanel {
	return &FrontPanel{base: newBase(roles), model: model.NewFrontPanel()}
}

// Model returns the underlying singleton for read-only inspection.
func (c *FrontPanel) Model() *model.FrontPanel {
	return c.model
}

// RegisterPatterns registers the brightness/lock patterns, gated by Role.
func (c *FrontPanel) RegisterPatterns(clientNotify *pattern.Registry, serverRequests *pattern.Registry) liberr.Error {
	for _, f := range frontPanelFields {
		if c.roles.Has(RoleClient) && clientNotify != nil {
			if e := clientNotify.Register(fieldKind(objFrontPanel, f), fieldNotifyExpr(objFrontPanel, f), 2); e != nil {
				return e
			}
		}
		if c.roles.Has(RoleServer) && serverRequests != nil {
			if e := serverRequests.Register(fieldKind(objFrontPanel, f), setRequestExpr(objFrontPanel, f), 2); e != nil {
				return e
			}
		}
	}
	return nil
}

// Init wires the brightness/lock handlers; idempotent (spec §4.6).
func (c *FrontPanel) Init(a InitArgs) liberr.Error {
	c.initOnce(a, func() {
		if c.roles.Has(RoleClient) && c.clientMgr != nil {
			for _, f := range frontPanelFields {
				field := f
				_ = c.clientMgr.RegisterNotificationHandler(fieldKind(objFrontPanel, field), func(_ []byte, captures []string) {
					_, value, ok := parseIDValue(captures)
					if !ok {
						return
					}
					c.apply(field, value)
				})
			}
		}
		if c.roles.Has(RoleServer) && c.serverMgr != nil {
			for _, f := range frontPanelFields {
				field := f
				c.serverMgr.RegisterRequestHandler(fieldKind(objFrontPanel, field), func(conn *server.Connection, frame []byte, captures []string) {
					if c.roles.Has(RoleProxy) && c.splice != nil && !c.localReady() {
						c.forwardProxied(conn, frame, field)
						return
					}
					_, value, ok := parseIDValue(captures)
					if !ok {
						_ = conn.SendErrorResponse()
						return
					}
					c.apply(field, value)
					c.broadcast(c.serverMgr, fieldFrame(objFrontPanel, field, singletonID, value))
				})
			}
		}
	})
	return nil
}

// forwardProxied relays a downstream field request through the shared
// Splice once this controller's own cache is not yet populated (spec
// §4.8); the completion handler applies the upstream's value to the local
// cache before echoing it downstream, so a subsequent request can answer
// from cache the moment this one's refresh later completes.
func (c *FrontPanel) forwardProxied(conn *server.Connection, frame []byte, field byte) {
	err := c.splice.Forward(context.Background(), fieldCompletionPattern(objFrontPanel, field, singletonID), DefaultRequestTimeout, &proxy.ProxyContext{
		Downstream: conn,
		Request:    frame,
		OnComplete: func(dst *server.Connection, captures []string) {
			if len(captures) > 0 {
				c.apply(field, captures[0])
			}
			_ = dst.SendResponse(fieldFrame(objFrontPanel, field, singletonID, valueOrEmpty(captures)))
		},
	})
	if err != nil {
		_ = conn.SendErrorResponse()
	}
}

// valueOrEmpty returns captures[0], or "" if the upstream completion
// carried no capture at all (a malformed or captureless echo).
func valueOrEmpty(captures []string) string {
	if len(captures) == 0 {
		return ""
	}
	return captures[0]
}

func (c *FrontPanel) apply(field byte, value string) {
	switch field {
	case fieldFrontPanelBrightness:
		lvl, ok := parseInt8(value)
		if !ok {
			return
		}
		if result, e := c.model.SetBrightness(lvl); e == nil {
			c.publishIf(result, notify.Change{Entity: notify.EntityFrontPanel, Field: notify.FieldBrightness, Identifier: singletonID, Value: lvl})
		}
	case fieldFrontPanelLocked:
		locked, ok := parseBool(value)
		if !ok {
			return
		}
		result := c.model.SetLocked(locked)
		c.publishIf(result, notify.Change{Entity: notify.EntityFrontPanel, Field: notify.FieldLocked, Identifier: singletonID, Value: locked})
	}
}

func (c *FrontPanel) sendField(field byte, wire string, timeout time.Duration, onDone func(), onErr func(liberr.Error)) liberr.Error {
	if !c.roles.Has(RoleClient) || c.clientMgr == nil {
		return model.ErrInvalid.Errorf("FrontPanel: client role not active")
	}
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	frame := setFrame(objFrontPanel, field, singletonID, wire)
	pat := fieldCompletionPattern(objFrontPanel, field, singletonID)

	c.clientMgr.SendCommand(frame, pat, timeout, func(_ *client.ExchangeState, captures []string) {
		if len(captures) > 0 {
			c.apply(field, captures[0])
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

// SetBrightness issues a client-role brightness-level request.
func (c *FrontPanel) SetBrightness(level int8, timeout time.Duration, onDone func(), onErr func(liberr.Error)) liberr.Error {
	return c.sendField(fieldFrontPanelBrightness, strconv.Itoa(int(level)), timeout, onDone, onErr)
}

// SetLocked issues a client-role button-lock request.
func (c *FrontPanel) SetLocked(locked bool, timeout time.Duration, onDone func(), onErr func(liberr.Error)) liberr.Error {
	return c.sendField(fieldFrontPanelLocked, boolWire(locked), timeout, onDone, onErr)
}

// Refresh queries the singleton front-panel state once.
func (c *FrontPanel) Refresh(timeout time.Duration) liberr.Error {
	if !c.roles.Has(RoleClient) || c.clientMgr == nil {
		return model.ErrInvalid.Errorf("FrontPanel.Refresh: client role not active")
	}
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	c.beginRefresh(1)
	c.clientMgr.SendCommand(queryFrame(objFrontPanel, singletonID), queryPattern(objFrontPanel, singletonID), timeout,
		func(_ *client.ExchangeState, _ []string) { c.markObserved() },
		func(_ *client.ExchangeState, err liberr.Error) { c.failRefresh(err) },
		nil)
	return nil
}
