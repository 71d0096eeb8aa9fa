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

// Package model holds the OpenHLX data model: Source, Zone, Group,
// EqualizerPreset, Favorite, FrontPanel, Infrared and Network, along with
// the shared error taxonomy every other package in this module reuses.
package model

import (
	liberr "github.com/nabbar/openhlx/errors"
)

// Shared error taxonomy (spec §7). Every other HLX package (pattern, queue,
// connmgr, command/client, command/server, controller, lifecycle, proxy)
// reuses these CodeError values instead of minting its own, so
// errors.Is/HasCode comparisons work across component boundaries.
const (
	ErrInvalid errors_iota = iota + liberr.MinPkgHlxModel
	ErrOutOfRange
	ErrNotInitialized
	ErrAlreadySet
	ErrAlreadyExists
	ErrNotFound
	ErrHostUnresolvable
	ErrProtocolUnsupported
	ErrAlreadyConnected
	ErrInProgress
	ErrNotConnected
	ErrTimedOut
	ErrDisconnected
	ErrWriteStalled
	ErrBadCommand
	ErrInternal
)

// errors_iota is a local alias so the const block above reads as the
// taxonomy it documents rather than a bare liberr.CodeError block.
type errors_iota = liberr.CodeError

func init() {
	liberr.RegisterIdFctMessage(ErrInvalid, getMessage)
}

func getMessage(code liberr.CodeError) string {
	switch code {
	case ErrInvalid:
		return "malformed input: %v"
	case ErrOutOfRange:
		return "value out of the accepted range [%v, %v]: got %v"
	case ErrNotInitialized:
		return "field or collection not yet authoritative"
	case ErrAlreadySet:
		return "assignment is a no-op: value unchanged"
	case ErrAlreadyExists:
		return "duplicate handler registration"
	case ErrNotFound:
		return "identifier lookup miss: %v"
	case ErrHostUnresolvable:
		return "host could not be resolved to an allowed address family: %v"
	case ErrProtocolUnsupported:
		return "unsupported protocol scheme: %v"
	case ErrAlreadyConnected:
		return "connection already established"
	case ErrInProgress:
		return "operation already in progress"
	case ErrNotConnected:
		return "no active connection"
	case ErrTimedOut:
		return "operation timed out"
	case ErrDisconnected:
		return "connection was disconnected"
	case ErrWriteStalled:
		return "write could not be scheduled within the stall window"
	case ErrBadCommand:
		return "wire parse failure: %v"
	case ErrInternal:
		return "internal error"
	default:
		return liberr.NullMessage
	}
}
