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

// Package queue implements the single-producer, single-consumer run-loop
// queue the Command Manager drains its pending exchanges from (spec §4.3).
package queue

import "sync"

// Queue is a strictly FIFO queue of T. Push from the producer goroutine and
// Pop/Wait from the single consumer goroutine that owns the run loop;
// priority is explicitly out of scope (spec §4.3).
type Queue[T any] struct {
	mu     sync.Mutex
	items  []T
	signal chan struct{}
}

// New constructs an empty Queue with its run-loop wake channel armed.
func New[T any]() *Queue[T] {
	return &Queue[T]{signal: make(chan struct{}, 1)}
}

// Push appends v to the tail of the queue. If the queue was empty before
// this call, it signals the run-loop wake channel exactly once — a
// non-blocking send, since a channel already holding a pending signal
// means the consumer has not yet woken to drain it.
func (q *Queue[T]) Push(v T) {
	q.mu.Lock()
	wasEmpty := len(q.items) == 0
	q.items = append(q.items, v)
	q.mu.Unlock()

	if wasEmpty {
		select {
		case q.signal <- struct{}{}:
		default:
		}
	}
}

// Pop removes and returns the item at the head of the queue. ok is false
// if the queue was empty.
func (q *Queue[T]) Pop() (v T, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return v, false
	}

	v = q.items[0]
	q.items = q.items[1:]
	return v, true
}

// Len reports the number of items currently queued.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Signal exposes the run-loop wake channel for a select-based consumer
// loop: a receive unblocks once per Push-into-empty transition.
func (q *Queue[T]) Signal() <-chan struct{} {
	return q.signal
}

// Drain removes and returns every currently queued item, in FIFO order,
// leaving the queue empty. Used by the Command Manager's disconnect path
// to fail every still-pending exchange in one pass.
func (q *Queue[T]) Drain() []T {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := q.items
	q.items = nil
	return out
}
