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

// Package connmgr implements the client-role Connection Manager (spec
// component C): URL parsing, DNS resolution with address-family
// filtering, connect-timeout arming, lifecycle delegate fan-out, and the
// single application-data delegate.
package connmgr

import (
	"context"
	"net"
	"net/url"
	"strconv"
	"sync"
	"time"

	liberr "github.com/nabbar/openhlx/errors"
	"github.com/nabbar/openhlx/model"
	"github.com/nabbar/openhlx/transport"
)

// AddressFamily filters DNS resolution results (spec §4.2).
type AddressFamily uint8

const (
	Unspecified AddressFamily = iota
	IPv4Only
	IPv6Only
)

// DefaultPort is the device's historical cleartext telnet port.
const DefaultPort = 23

// JailbreakdPort is hlxproxyd's legacy local alternate port.
const JailbreakdPort = 21327

// ApplicationDataDelegate receives inbound application bytes. Exactly one
// may be registered at a time (spec §4.2: "one, and only one").
type ApplicationDataDelegate func(buf []byte)

// LifecycleDelegate receives every Connection lifecycle event. Many may be
// registered; they are fanned out in registration order.
type LifecycleDelegate func(transport.LifecycleEvent, error)

// Manager is the client-role Connection Manager. It owns at most one
// active Connection (spec §5: "the Connection is owned exclusively by its
// Connection Manager").
type Manager struct {
	mu         sync.Mutex
	family     AddressFamily
	conn       *transport.Connection
	appData    ApplicationDataDelegate
	lifecycles []LifecycleDelegate
}

// New constructs a Manager filtering DNS results per family.
func New(family AddressFamily) *Manager {
	return &Manager{family: family}
}

// AddLifecycleDelegate registers d to receive future lifecycle events.
func (m *Manager) AddLifecycleDelegate(d LifecycleDelegate) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lifecycles = append(m.lifecycles, d)
}

// RemoveLifecycleDelegate removes the most recently added delegate equal
// to d by pointer identity; Go has no portable function-value equality
// beyond nil, so callers that need precise removal should instead track
// the slice index themselves or avoid duplicate registrations.
func (m *Manager) RemoveLifecycleDelegate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.lifecycles) > 0 {
		m.lifecycles = m.lifecycles[:len(m.lifecycles)-1]
	}
}

// SetApplicationDataDelegate installs d as the sole application-data
// delegate, replacing any prior one.
func (m *Manager) SetApplicationDataDelegate(d ApplicationDataDelegate) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.appData = d
}

func (m *Manager) fanLifecycle(ev transport.LifecycleEvent, err error) {
	m.mu.Lock()
	delegates := make([]LifecycleDelegate, len(m.lifecycles))
	copy(delegates, m.lifecycles)
	m.mu.Unlock()

	for _, d := range delegates {
		d(ev, err)
	}
}

// resolve parses maybeURL (defaulting scheme to telnet and port to
// DefaultPort) and resolves its host, filtering by family.
func (m *Manager) resolve(ctx context.Context, maybeURL string) (string, liberr.Error) {
	u, err := url.Parse(maybeURL)
	if err != nil || u.Host == "" {
		u = &url.URL{Scheme: "telnet", Host: maybeURL}
	}
	if u.Scheme == "" {
		u.Scheme = "telnet"
	}
	if u.Scheme != "telnet" {
		return "", model.ErrProtocolUnsupported.Errorf(u.Scheme)
	}

	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = strconv.Itoa(DefaultPort)
	}

	addrs, err := net.DefaultResolver.LookupIPAddr(ctx, host)
	if err != nil {
		return "", model.ErrHostUnresolvable.Errorf(host)
	}

	for _, a := range addrs {
		v4 := a.IP.To4()
		switch m.family {
		case IPv4Only:
			if v4 == nil {
				continue
			}
		case IPv6Only:
			if v4 != nil {
				continue
			}
		}
		return net.JoinHostPort(a.IP.String(), port), nil
	}

	return "", model.ErrHostUnresolvable.Errorf(host)
}

// Connect resolves maybeURL, arms connectTimeout, and dials. On success
// the Manager becomes the owner of the resulting Connection and wires its
// lifecycle/error callbacks into the Manager's own fan-out.
func (m *Manager) Connect(ctx context.Context, maybeURL string, connectTimeout time.Duration) liberr.Error {
	cctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	address, e := m.resolve(cctx, maybeURL)
	if e != nil {
		return e
	}

	type result struct {
		conn *transport.Connection
		err  liberr.Error
	}
	ch := make(chan result, 1)

	go func() {
		c, err := transport.Dial(address)
		ch <- result{c, err}
	}()

	select {
	case <-cctx.Done():
		return model.ErrTimedOut.Errorf(maybeURL)
	case r := <-ch:
		if r.err != nil {
			return r.err
		}

		r.conn.RegisterFuncLifecycle(m.fanLifecycle)
		r.conn.RegisterFuncError(func(errs ...error) {
			for _, err := range errs {
				m.fanLifecycle(transport.DidDisconnect, err)
			}
		})

		m.mu.Lock()
		m.conn = r.conn
		m.mu.Unlock()

		return nil
	}
}

// Disconnect closes the active Connection, if any.
func (m *Manager) Disconnect() liberr.Error {
	m.mu.Lock()
	c := m.conn
	m.conn = nil
	m.mu.Unlock()

	if c == nil {
		return model.ErrNotConnected.Error()
	}
	return c.Close()
}

// Write serializes writes through the single active Connection (spec §5:
// "single-writer serialisation").
func (m *Manager) Write(p []byte) (int, liberr.Error) {
	m.mu.Lock()
	c := m.conn
	m.mu.Unlock()

	if c == nil {
		return 0, model.ErrNotConnected.Error()
	}
	return c.Write(p)
}

// IsConnected reports whether the Manager currently owns a live Connection.
func (m *Manager) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.conn != nil
}

// Configuration is the server role's self-announcement payload (spec
// §4.2: "GetConfiguration()").
type Configuration struct {
	EthernetAddress model.EthernetEUI48
	HostIP          net.IP
	Netmask         net.IP
	DefaultRouterIP net.IP
}

// NetworkInfoProvider supplies the platform network details this core
// intentionally does not gather itself (spec §1: external collaborator).
type NetworkInfoProvider func() (Configuration, liberr.Error)

// GetConfiguration invokes provider to build the server role's
// self-announcement payload without this package importing any
// platform interface-enumeration code directly.
func GetConfiguration(provider NetworkInfoProvider) (Configuration, liberr.Error) {
	if provider == nil {
		return Configuration{}, model.ErrNotInitialized.Error()
	}
	return provider()
}
