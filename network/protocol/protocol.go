/***********************************************************************************************************************
 *
 *   MIT License
 *
 *   Copyright (c) 2022 Nicolas JUHEL
 *
 *   Permission is hereby granted, free of charge, to any person obtaining a copy
 *   of this software and associated documentation files (the "Software"), to deal
 *   in the Software without restriction, including without limitation the rights
 *   to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 *   copies of the Software, and to permit persons to whom the Software is
 *   furnished to do so, subject to the following conditions:
 *
 *   The above copyright notice and this permission notice shall be included in all
 *   copies or substantial portions of the Software.
 *
 *   THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 *   IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 *   FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 *   AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 *   LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 *   OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 *   SOFTWARE.
 *
 *
 **********************************************************************************************************************/

// Package protocol enumerates the dial networks accepted by net.Dial
// ("tcp", "udp", "unix", ...) as a comparable value, so config structs
// and socket dialers can carry it instead of a bare string.
package protocol

import "strings"

// NetworkProtocol is one of the net.Dial network strings.
type NetworkProtocol uint8

const (
	NetworkEmpty NetworkProtocol = iota
	NetworkUnix
	NetworkTCP
	NetworkTCP4
	NetworkTCP6
	NetworkUDP
	NetworkUDP4
	NetworkUDP6
	NetworkIP
	NetworkIP4
	NetworkIP6
	NetworkUnixGram
)

// Parse maps a case-insensitive, whitespace-trimmed network string to its
// NetworkProtocol, returning NetworkEmpty for anything it doesn't recognize.
func Parse(s string) NetworkProtocol {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "unix":
		return NetworkUnix
	case "tcp":
		return NetworkTCP
	case "tcp4":
		return NetworkTCP4
	case "tcp6":
		return NetworkTCP6
	case "udp":
		return NetworkUDP
	case "udp4":
		return NetworkUDP4
	case "udp6":
		return NetworkUDP6
	case "ip":
		return NetworkIP
	case "ip4":
		return NetworkIP4
	case "ip6":
		return NetworkIP6
	case "unixgram":
		return NetworkUnixGram
	default:
		return NetworkEmpty
	}
}

// ParseInt64 maps a raw NetworkProtocol code back to its typed value,
// returning NetworkEmpty if i is out of range.
func ParseInt64(i int64) NetworkProtocol {
	if i < int64(NetworkUnix) || i > int64(NetworkUnixGram) {
		return NetworkEmpty
	}
	return NetworkProtocol(i)
}

// String returns the net.Dial network string for p, or "" if p is invalid.
func (p NetworkProtocol) String() string {
	switch p {
	case NetworkUnix:
		return "unix"
	case NetworkTCP:
		return "tcp"
	case NetworkTCP4:
		return "tcp4"
	case NetworkTCP6:
		return "tcp6"
	case NetworkUDP:
		return "udp"
	case NetworkUDP4:
		return "udp4"
	case NetworkUDP6:
		return "udp6"
	case NetworkIP:
		return "ip"
	case NetworkIP4:
		return "ip4"
	case NetworkIP6:
		return "ip6"
	case NetworkUnixGram:
		return "unixgram"
	default:
		return ""
	}
}

// Code is an alias of String kept for call sites that use it as a cache
// or map key rather than a dial argument.
func (p NetworkProtocol) Code() string {
	return p.String()
}

// Int returns the raw protocol code, or 0 if p is invalid.
func (p NetworkProtocol) Int() int {
	if p < NetworkUnix || p > NetworkUnixGram {
		return 0
	}
	return int(p)
}

// Int64 is Int as an int64.
func (p NetworkProtocol) Int64() int64 {
	return int64(p.Int())
}

// Uint is Int as a uint.
func (p NetworkProtocol) Uint() uint {
	return uint(p.Int())
}

// Uint64 is Int as a uint64.
func (p NetworkProtocol) Uint64() uint64 {
	return uint64(p.Int())
}
