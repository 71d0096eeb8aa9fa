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

package model

import (
	"fmt"
	"net"

	liberr "github.com/nabbar/openhlx/errors"
)

// EthernetEUI48 is a 48-bit hardware address, stored as a fixed-size array
// so Network can be copied and compared by value like the rest of model.
type EthernetEUI48 [6]byte

// String renders the address in the device's colon-hex wire notation.
func (e EthernetEUI48) String() string {
	return fmt.Sprintf("%02X:%02X:%02X:%02X:%02X:%02X", e[0], e[1], e[2], e[3], e[4], e[5])
}

// ParseEthernetEUI48 parses a colon- or dash-separated hardware address.
func ParseEthernetEUI48(s string) (EthernetEUI48, liberr.Error) {
	var out EthernetEUI48

	hw, err := net.ParseMAC(s)
	if err != nil || len(hw) != 6 {
		return out, ErrInvalid.Errorf("ethernet address", s)
	}

	copy(out[:], hw)
	return out, nil
}

// Network is the device's single network-configuration singleton
// (spec §3): Ethernet identity, IPv4 addressing, and the DHCP/SDDP
// discovery toggles.
type Network struct {
	EthernetAddress   Field[EthernetEUI48]
	HostAddress       Field[net.IP]
	Netmask           Field[net.IP]
	DefaultRouter     Field[net.IP]
	DHCPv4Enabled     Field[bool]
	SDDPEnabled       Field[bool]
}

// NewNetwork constructs the Network singleton.
func NewNetwork() *Network {
	return &Network{}
}

// SetEthernetAddress assigns the device's hardware address.
func (n *Network) SetEthernetAddress(addr EthernetEUI48) AssignResult {
	return n.EthernetAddress.Set(addr)
}

// SetHostAddress assigns the device's IPv4 host address.
func (n *Network) SetHostAddress(ip net.IP) (AssignResult, liberr.Error) {
	v4 := ip.To4()
	if v4 == nil {
		return AssignSuccess, ErrInvalid.Errorf("host address", ip)
	}
	return n.HostAddress.Set(v4), nil
}

// SetNetmask assigns the device's IPv4 subnet mask.
func (n *Network) SetNetmask(ip net.IP) (AssignResult, liberr.Error) {
	v4 := ip.To4()
	if v4 == nil {
		return AssignSuccess, ErrInvalid.Errorf("netmask", ip)
	}
	return n.Netmask.Set(v4), nil
}

// SetDefaultRouter assigns the device's IPv4 default gateway.
func (n *Network) SetDefaultRouter(ip net.IP) (AssignResult, liberr.Error) {
	v4 := ip.To4()
	if v4 == nil {
		return AssignSuccess, ErrInvalid.Errorf("default router", ip)
	}
	return n.DefaultRouter.Set(v4), nil
}

// SetDHCPv4Enabled assigns whether the device acquires its address via DHCP.
func (n *Network) SetDHCPv4Enabled(enabled bool) AssignResult {
	return n.DHCPv4Enabled.Set(enabled)
}

// SetSDDPEnabled assigns whether the device advertises itself via SDDP.
func (n *Network) SetSDDPEnabled(enabled bool) AssignResult {
	return n.SDDPEnabled.Set(enabled)
}
