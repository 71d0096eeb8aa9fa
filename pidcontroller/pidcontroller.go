/*
 * MIT License
 *
 * Copyright (c) 2022 Nicolas JUHEL
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
 */

// Package pidcontroller implements a discrete PID feedback loop used to
// space a value range unevenly: steps start coarse and narrow as the
// controller's output approaches the target, instead of a fixed linear
// stride.
package pidcontroller

import (
	"context"
	"math"
)

const (
	maxSteps = 128
	epsilon  = 1e-6
)

// Controller is a discrete proportional-integral-derivative loop over a
// float64 process variable.
type Controller struct {
	kp float64
	ki float64
	kd float64
}

// New builds a Controller with the given proportional, integral and
// derivative rates.
func New(rateP, rateI, rateD float64) *Controller {
	return &Controller{kp: rateP, ki: rateI, kd: rateD}
}

// RangeCtx walks from to target, driven by the controller's feedback
// loop on the remaining error, and returns every intermediate value
// visited (target included, from excluded). It stops early if ctx is
// cancelled before the loop converges.
func (c *Controller) RangeCtx(ctx context.Context, from, target float64) []float64 {
	var (
		out      = make([]float64, 0, maxSteps)
		cur      = from
		integral float64
		prevErr  float64
	)

	if from == target {
		return out
	}

	for i := 0; i < maxSteps; i++ {
		select {
		case <-ctx.Done():
			return out
		default:
		}

		err := target - cur
		if math.Abs(err) <= epsilon {
			break
		}

		integral += err
		derivative := err - prevErr
		prevErr = err

		step := c.kp*err + c.ki*integral + c.kd*derivative
		if step == 0 {
			break
		}

		cur += step

		if (target > from && cur >= target) || (target < from && cur <= target) {
			out = append(out, target)
			break
		}

		out = append(out, cur)
	}

	return out
}
