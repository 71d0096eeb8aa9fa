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

package server

import (
	liberr "github.com/nabbar/openhlx/errors"
	"github.com/nabbar/openhlx/transport"
)

// Connection is one accepted inbound connection, identified for the life
// of the process by a ConnectionID (spec §4.5).
type Connection struct {
	id   ConnectionID
	conn *transport.Connection
}

// ID returns this connection's identifier.
func (c *Connection) ID() ConnectionID {
	return c.id
}

// SendResponse writes buf as a best-effort, order-preserving reply (spec
// §4.5: "Writes are best-effort order-preserving").
func (c *Connection) SendResponse(buf []byte) liberr.Error {
	_, err := c.conn.Write(buf)
	return err
}

// SendErrorResponse writes the standard literal error reply.
func (c *Connection) SendErrorResponse() liberr.Error {
	_, err := c.conn.Write(standardErrorReply)
	return err
}

// Close closes the underlying Connection.
func (c *Connection) Close() liberr.Error {
	return c.conn.Close()
}
