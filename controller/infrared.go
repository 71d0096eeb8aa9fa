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
	"time"

	"github.com/nabbar/openhlx/command/client"
	"github.com/nabbar/openhlx/command/server"
	liberr "github.com/nabbar/openhlx/errors"
	"github.com/nabbar/openhlx/model"
	"github.com/nabbar/openhlx/notify"
	"github.com/nabbar/openhlx/pattern"
)

const objInfrared byte = 'I'

const fieldInfraredDisabled byte = 'd'

// Infrared is the per-property controller for the device's single
// infrared-remote entity (spec §3): whether remote control is disabled,
// addressed at the fixed singletonID.
type Infrared struct {
	base
	model *model.Infrared
}

// NewInfrared constructs an Infrared controller.
func NewInfrared(roles ...Role) *Infrared {
	return &Infrared{base: newBase(roles), model: model.NewInfrared()}
}

// Model returns the underlying singleton for read-only inspection.
func (c *Infrared) Model() *model.Infrared {
	return c.model
}

// RegisterPatterns registers the disabled-flag pattern, gated by Role.
func (c *Infrared) RegisterPatterns(clientNotify *pattern.Registry, serverRequests *pattern.Registry) liberr.Error {
	if c.roles.Has(RoleClient) && clientNotify != nil {
		if e := clientNotify.Register(fieldKind(objInfrared, fieldInfraredDisabled), fieldNotifyExpr(objInfrared, fieldInfraredDisabled), 2); e != nil {
			return e
		}
	}
	if c.roles.Has(RoleServer) && serverRequests != nil {
		if e := serverRequests.Register(fieldKind(objInfrared, fieldInfraredDisabled), setRequestExpr(objInfrared, fieldInfraredDisabled), 2); e != nil {
			return e
		}
	}
	return nil
}

// Init wires the disabled-flag handler; idempotent (spec §4.6).
func (c *Infrared) Init(a InitArgs) liberr.Error {
	c.initOnce(a, func() {
		if c.roles.Has(RoleClient) && c.clientMgr != nil {
			_ = c.clientMgr.RegisterNotificationHandler(fieldKind(objInfrared, fieldInfraredDisabled), func(_ []byte, captures []string) {
				_, value, ok := parseIDValue(captures)
				if !ok {
					return
				}
				c.apply(value)
			})
		}
		if c.roles.Has(RoleServer) && c.serverMgr != nil {
			c.serverMgr.RegisterRequestHandler(fieldKind(objInfrared, fieldInfraredDisabled), func(conn *server.Connection, _ []byte, captures []string) {
				_, value, ok := parseIDValue(captures)
				if !ok {
					_ = conn.SendErrorResponse()
					return
				}
				c.apply(value)
				c.broadcast(c.serverMgr, fieldFrame(objInfrared, fieldInfraredDisabled, singletonID, value))
			})
		}
	})
	return nil
}

func (c *Infrared) apply(value string) {
	disabled, ok := parseBool(value)
	if !ok {
		return
	}
	result := c.model.SetDisabled(disabled)
	c.publishIf(result, notify.Change{Entity: notify.EntityInfrared, Field: notify.FieldDisabled, Identifier: singletonID, Value: disabled})
}

// SetDisabled issues a client-role remote-control-disable request.
func (c *Infrared) SetDisabled(disabled bool, timeout time.Duration, onDone func(), onErr func(liberr.Error)) liberr.Error {
	if !c.roles.Has(RoleClient) || c.clientMgr == nil {
		return model.ErrInvalid.Errorf("Infrared: client role not active")
	}
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	frame := setFrame(objInfrared, fieldInfraredDisabled, singletonID, boolWire(disabled))
	pat := fieldCompletionPattern(objInfrared, fieldInfraredDisabled, singletonID)

	c.clientMgr.SendCommand(frame, pat, timeout, func(_ *client.ExchangeState, captures []string) {
		if len(captures) > 0 {
			c.apply(captures[0])
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

// Refresh queries the singleton infrared state once.
func (c *Infrared) Refresh(timeout time.Duration) liberr.Error {
	if !c.roles.Has(RoleClient) || c.clientMgr == nil {
		return model.ErrInvalid.Errorf("Infrared.Refresh: client role not active")
	}
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	c.beginRefresh(1)
	c.clientMgr.SendCommand(queryFrame(objInfrared, singletonID), queryPattern(objInfrared, singletonID), timeout,
		func(_ *client.ExchangeState, _ []string) { c.markObserved() },
		func(_ *client.ExchangeState, err liberr.Error) { c.failRefresh(err) },
		nil)
	return nil
}
