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
	"strings"
	"sync"
	"time"

	version "github.com/hashicorp/go-version"

	"github.com/nabbar/openhlx/command/client"
	liberr "github.com/nabbar/openhlx/errors"
	"github.com/nabbar/openhlx/model"
	"github.com/nabbar/openhlx/notify"
	"github.com/nabbar/openhlx/pattern"
)

// objConfiguration is the device's "current configuration" query object,
// grounded on spec.md §4.7 S2: request "[QX]", response stream terminated
// by "(QX)" on its own line.
const objConfiguration byte = 'X'

// fieldConfigurationVersion is a device-reported, never client-settable
// field: its value is "<firmware> <protocol>", both go-version strings.
const fieldConfigurationVersion byte = 'v'

// The upstream device snapshots its own configuration every 30s and emits
// these two passthrough notifications verbatim (spec §6 "Persisted
// state"); the core has no corresponding request, only notification
// handlers, so these are plain literal-frame patterns rather than the
// <field><object><id> <value> grammar the other entities use.
const (
	kindConfigurationSaving pattern.Kind = "XS"
	kindConfigurationSaved  pattern.Kind = "XD"
)

var (
	exprConfigurationSaving = `^SAVING\r\n$`
	exprConfigurationSaved  = `^SAVED\r\n$`
)

// Configuration is the per-property controller for the device's single
// meta-configuration entity (spec §3/§4.6): it owns no settable fields of
// its own, only the "query current configuration" refresh exchange and
// the device's SAVING/SAVED backup passthrough notifications. Firmware
// and protocol version strings reported in that query are compared with
// go-version so a client can detect an incompatible device.
type Configuration struct {
	base

	mu              sync.Mutex
	firmwareVersion *version.Version
	protocolVersion *version.Version
}

// NewConfiguration constructs a Configuration controller.
func NewConfiguration(roles ...Role) *Configuration {
	return &Configuration{base: newBase(roles)}
}

// FirmwareVersion returns the most recently observed firmware version, or
// nil if none has been reported yet.
func (c *Configuration) FirmwareVersion() *version.Version {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.firmwareVersion
}

// ProtocolVersion returns the most recently observed protocol version, or
// nil if none has been reported yet.
func (c *Configuration) ProtocolVersion() *version.Version {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.protocolVersion
}

// SupportsProtocol reports whether the last-observed protocol version is
// greater than or equal to min.
func (c *Configuration) SupportsProtocol(min *version.Version) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.protocolVersion == nil || min == nil {
		return false
	}
	return c.protocolVersion.GreaterThanOrEqual(min)
}

// observeVersion parses a "<firmware> <protocol>" value reported on
// fieldConfigurationVersion, tolerating either token being absent or
// malformed (the device is not required to report both every time).
func (c *Configuration) observeVersion(value string) {
	parts := strings.SplitN(value, " ", 2)

	c.mu.Lock()
	defer c.mu.Unlock()
	if len(parts) > 0 {
		if v, e := version.NewVersion(parts[0]); e == nil {
			c.firmwareVersion = v
		}
	}
	if len(parts) > 1 {
		if v, e := version.NewVersion(parts[1]); e == nil {
			c.protocolVersion = v
		}
	}
}

// RegisterPatterns registers the SAVING/SAVED passthrough patterns, gated
// by Role. Configuration never registers a server-side request pattern of
// its own field grammar; QueryCurrentConfiguration reuses the generic
// queryPattern helper shared by every controller's Refresh.
func (c *Configuration) RegisterPatterns(clientNotify *pattern.Registry, serverRequests *pattern.Registry) liberr.Error {
	if c.roles.Has(RoleClient) && clientNotify != nil {
		if e := clientNotify.Register(kindConfigurationSaving, exprConfigurationSaving, 0); e != nil {
			return e
		}
		if e := clientNotify.Register(kindConfigurationSaved, exprConfigurationSaved, 0); e != nil {
			return e
		}
		if e := clientNotify.Register(fieldKind(objConfiguration, fieldConfigurationVersion), fieldNotifyExpr(objConfiguration, fieldConfigurationVersion), 2); e != nil {
			return e
		}
	}
	return nil
}

// Init wires the SAVING/SAVED passthrough handlers; idempotent (spec
// §4.6).
func (c *Configuration) Init(a InitArgs) liberr.Error {
	c.initOnce(a, func() {
		if c.roles.Has(RoleClient) && c.clientMgr != nil {
			_ = c.clientMgr.RegisterNotificationHandler(kindConfigurationSaving, func(_ []byte, _ []string) {
				c.publish(notify.Change{Entity: notify.EntityConfiguration, Field: notify.FieldConfigurationSaving, Identifier: singletonID})
			})
			_ = c.clientMgr.RegisterNotificationHandler(kindConfigurationSaved, func(_ []byte, _ []string) {
				c.publish(notify.Change{Entity: notify.EntityConfiguration, Field: notify.FieldConfigurationSaved, Identifier: singletonID})
			})
			_ = c.clientMgr.RegisterNotificationHandler(fieldKind(objConfiguration, fieldConfigurationVersion), func(_ []byte, captures []string) {
				_, value, ok := parseIDValue(captures)
				if !ok {
					return
				}
				c.observeVersion(value)
			})
		}
		// Configuration has no client-writable field, so a server role
		// registers no request handler of its own; it only ever
		// broadcasts the SAVING/SAVED frames it originates, via
		// BroadcastSaving/BroadcastSaved below.
	})
	return nil
}

// BroadcastSaving announces, in the server role, that a backup snapshot
// has begun — mirroring the device's own 30s autosave passthrough.
func (c *Configuration) BroadcastSaving() {
	c.broadcast(c.serverMgr, []byte("SAVING\r\n"))
}

// BroadcastSaved announces, in the server role, that a backup snapshot
// has completed.
func (c *Configuration) BroadcastSaved() {
	c.broadcast(c.serverMgr, []byte("SAVED\r\n"))
}

// Refresh issues the query-current-configuration exchange (spec §4.7 S2):
// request "[QX]", completion on "(QX)" terminating the response stream.
// Every entity notification interleaved ahead of the terminator is
// dispatched by the Command Manager itself before this completion handler
// runs, per the Client Command Manager's response-disambiguation rule.
func (c *Configuration) Refresh(timeout time.Duration) liberr.Error {
	if !c.roles.Has(RoleClient) || c.clientMgr == nil {
		return model.ErrInvalid.Errorf("Configuration.Refresh: client role not active")
	}
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	c.beginRefresh(1)
	c.clientMgr.SendCommand(queryFrame(objConfiguration, singletonID), queryPattern(objConfiguration, singletonID), timeout,
		func(_ *client.ExchangeState, _ []string) { c.markObserved() },
		func(_ *client.ExchangeState, err liberr.Error) { c.failRefresh(err) },
		nil)
	return nil
}
