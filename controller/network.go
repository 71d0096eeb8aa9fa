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
	"net"
	"time"

	"github.com/nabbar/openhlx/command/client"
	"github.com/nabbar/openhlx/command/server"
	liberr "github.com/nabbar/openhlx/errors"
	"github.com/nabbar/openhlx/model"
	"github.com/nabbar/openhlx/notify"
	"github.com/nabbar/openhlx/pattern"
)

const objNetwork byte = 'K'

const (
	fieldNetworkEthernet byte = 'e'
	fieldNetworkHost     byte = 'h'
	fieldNetworkNetmask  byte = 'm'
	fieldNetworkRouter   byte = 'r'
	fieldNetworkDHCP     byte = 'p'
	fieldNetworkSDDP     byte = 's'
)

var networkFields = []byte{
	fieldNetworkEthernet,
	fieldNetworkHost,
	fieldNetworkNetmask,
	fieldNetworkRouter,
	fieldNetworkDHCP,
	fieldNetworkSDDP,
}

// Network is the per-property controller for the device's single
// network-configuration entity (spec §3): Ethernet identity, IPv4
// addressing and the DHCP/SDDP discovery toggles, all addressed at the
// fixed singletonID.
type Network struct {
	base
	model *model.Network
}

// NewNetwork constructs a Network controller.
func NewNetwork(roles ...Role) *Network {
	return &Network{base: newBase(roles), model: model.NewNetwork()}
}

// Model returns the underlying singleton for read-only inspection.
func (c *Network) Model() *model.Network {
	return c.model
}

// RegisterPatterns registers every network field's pattern, gated by Role.
func (c *Network) RegisterPatterns(clientNotify *pattern.Registry, serverRequests *pattern.Registry) liberr.Error {
	for _, f := range networkFields {
		if c.roles.Has(RoleClient) && clientNotify != nil {
			if e := clientNotify.Register(fieldKind(objNetwork, f), fieldNotifyExpr(objNetwork, f), 2); e != nil {
				return e
			}
		}
		if c.roles.Has(RoleServer) && serverRequests != nil {
			if e := serverRequests.Register(fieldKind(objNetwork, f), setRequestExpr(objNetwork, f), 2); e != nil {
				return e
			}
		}
	}
	return nil
}

// Init wires every network field's handler; idempotent (spec §4.6).
func (c *Network) Init(a InitArgs) liberr.Error {
	c.initOnce(a, func() {
		if c.roles.Has(RoleClient) && c.clientMgr != nil {
			for _, f := range networkFields {
				field := f
				_ = c.clientMgr.RegisterNotificationHandler(fieldKind(objNetwork, field), func(_ []byte, captures []string) {
					_, value, ok := parseIDValue(captures)
					if !ok {
						return
					}
					c.apply(field, value)
				})
			}
		}
		if c.roles.Has(RoleServer) && c.serverMgr != nil {
			for _, f := range networkFields {
				field := f
				c.serverMgr.RegisterRequestHandler(fieldKind(objNetwork, field), func(conn *server.Connection, _ []byte, captures []string) {
					_, value, ok := parseIDValue(captures)
					if !ok {
						_ = conn.SendErrorResponse()
						return
					}
					c.apply(field, value)
					c.broadcast(c.serverMgr, fieldFrame(objNetwork, field, singletonID, value))
				})
			}
		}
	})
	return nil
}

func (c *Network) apply(field byte, value string) {
	switch field {
	case fieldNetworkEthernet:
		addr, e := model.ParseEthernetEUI48(value)
		if e != nil {
			return
		}
		result := c.model.SetEthernetAddress(addr)
		c.publishIf(result, notify.Change{Entity: notify.EntityNetwork, Field: notify.FieldEthernetAddress, Identifier: singletonID, Value: addr})
	case fieldNetworkHost:
		ip := net.ParseIP(value)
		if ip == nil {
			return
		}
		if result, e := c.model.SetHostAddress(ip); e == nil {
			c.publishIf(result, notify.Change{Entity: notify.EntityNetwork, Field: notify.FieldHostAddress, Identifier: singletonID, Value: ip})
		}
	case fieldNetworkNetmask:
		ip := net.ParseIP(value)
		if ip == nil {
			return
		}
		if result, e := c.model.SetNetmask(ip); e == nil {
			c.publishIf(result, notify.Change{Entity: notify.EntityNetwork, Field: notify.FieldNetmask, Identifier: singletonID, Value: ip})
		}
	case fieldNetworkRouter:
		ip := net.ParseIP(value)
		if ip == nil {
			return
		}
		if result, e := c.model.SetDefaultRouter(ip); e == nil {
			c.publishIf(result, notify.Change{Entity: notify.EntityNetwork, Field: notify.FieldDefaultRouter, Identifier: singletonID, Value: ip})
		}
	case fieldNetworkDHCP:
		enabled, ok := parseBool(value)
		if !ok {
			return
		}
		result := c.model.SetDHCPv4Enabled(enabled)
		c.publishIf(result, notify.Change{Entity: notify.EntityNetwork, Field: notify.FieldDHCPv4Enabled, Identifier: singletonID, Value: enabled})
	case fieldNetworkSDDP:
		enabled, ok := parseBool(value)
		if !ok {
			return
		}
		result := c.model.SetSDDPEnabled(enabled)
		c.publishIf(result, notify.Change{Entity: notify.EntityNetwork, Field: notify.FieldSDDPEnabled, Identifier: singletonID, Value: enabled})
	}
}

func (c *Network) sendField(field byte, wire string, timeout time.Duration, onDone func(), onErr func(liberr.Error)) liberr.Error {
	if !c.roles.Has(RoleClient) || c.clientMgr == nil {
		return model.ErrInvalid.Errorf("Network: client role not active")
	}
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	frame := setFrame(objNetwork, field, singletonID, wire)
	pat := fieldCompletionPattern(objNetwork, field, singletonID)

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

// SetEthernetAddress issues a client-role hardware-address request.
func (c *Network) SetEthernetAddress(addr model.EthernetEUI48, timeout time.Duration, onDone func(), onErr func(liberr.Error)) liberr.Error {
	return c.sendField(fieldNetworkEthernet, addr.String(), timeout, onDone, onErr)
}

// SetHostAddress issues a client-role IPv4 host-address request.
func (c *Network) SetHostAddress(ip net.IP, timeout time.Duration, onDone func(), onErr func(liberr.Error)) liberr.Error {
	return c.sendField(fieldNetworkHost, ip.String(), timeout, onDone, onErr)
}

// SetNetmask issues a client-role IPv4 subnet-mask request.
func (c *Network) SetNetmask(ip net.IP, timeout time.Duration, onDone func(), onErr func(liberr.Error)) liberr.Error {
	return c.sendField(fieldNetworkNetmask, ip.String(), timeout, onDone, onErr)
}

// SetDefaultRouter issues a client-role IPv4 default-gateway request.
func (c *Network) SetDefaultRouter(ip net.IP, timeout time.Duration, onDone func(), onErr func(liberr.Error)) liberr.Error {
	return c.sendField(fieldNetworkRouter, ip.String(), timeout, onDone, onErr)
}

// SetDHCPv4Enabled issues a client-role DHCP-toggle request.
func (c *Network) SetDHCPv4Enabled(enabled bool, timeout time.Duration, onDone func(), onErr func(liberr.Error)) liberr.Error {
	return c.sendField(fieldNetworkDHCP, boolWire(enabled), timeout, onDone, onErr)
}

// SetSDDPEnabled issues a client-role SDDP-toggle request.
func (c *Network) SetSDDPEnabled(enabled bool, timeout time.Duration, onDone func(), onErr func(liberr.Error)) liberr.Error {
	return c.sendField(fieldNetworkSDDP, boolWire(enabled), timeout, onDone, onErr)
}

// Refresh queries the singleton network configuration once.
func (c *Network) Refresh(timeout time.Duration) liberr.Error {
	if !c.roles.Has(RoleClient) || c.clientMgr == nil {
		return model.ErrInvalid.Errorf("Network.Refresh: client role not active")
	}
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	c.beginRefresh(1)
	c.clientMgr.SendCommand(queryFrame(objNetwork, singletonID), queryPattern(objNetwork, singletonID), timeout,
		func(_ *client.ExchangeState, _ []string) { c.markObserved() },
		func(_ *client.ExchangeState, err liberr.Error) { c.failRefresh(err) },
		nil)
	return nil
}
