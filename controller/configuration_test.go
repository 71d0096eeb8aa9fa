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

package controller_test

import (
	"context"
	"time"

	version "github.com/hashicorp/go-version"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	. "github.com/nabbar/openhlx/controller"
	"github.com/nabbar/openhlx/pattern"
)

var _ = Describe("Configuration", func() {
	It("observes SAVING/SAVED passthrough notifications", func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		cfg := NewConfiguration(RoleClient)
		notifier, rec := newRecordingNotifier()

		mgr, _ := newClientManager(ctx, func(reg *pattern.Registry) {
			Expect(cfg.RegisterPatterns(reg, nil)).To(BeNil())
		})
		Expect(cfg.Init(InitArgs{ClientMgr: mgr, Notifier: notifier})).To(BeNil())

		mgr.OnApplicationData([]byte("SAVING\r\n"))
		Eventually(func() int { return len(rec.all()) }).Should(Equal(1))

		mgr.OnApplicationData([]byte("SAVED\r\n"))
		Eventually(func() int { return len(rec.all()) }).Should(Equal(2))
	})

	It("parses a firmware/protocol version notification", func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		cfg := NewConfiguration(RoleClient)
		notifier, _ := newRecordingNotifier()

		mgr, _ := newClientManager(ctx, func(reg *pattern.Registry) {
			Expect(cfg.RegisterPatterns(reg, nil)).To(BeNil())
		})
		Expect(cfg.Init(InitArgs{ClientMgr: mgr, Notifier: notifier})).To(BeNil())

		mgr.OnApplicationData([]byte("NvX0 1.4.2 2.0.0\r\n"))

		Eventually(func() *version.Version { return cfg.FirmwareVersion() }).ShouldNot(BeNil())
		Expect(cfg.FirmwareVersion().String()).To(Equal("1.4.2"))
		Expect(cfg.ProtocolVersion().String()).To(Equal("2.0.0"))

		min, e := version.NewVersion("2.0.0")
		Expect(e).To(BeNil())
		Expect(cfg.SupportsProtocol(min)).To(BeTrue())
	})

	It("completes a refresh query", func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		cfg := NewConfiguration(RoleClient)
		notifier, _ := newRecordingNotifier()

		mgr, w := newClientManager(ctx, func(reg *pattern.Registry) {
			Expect(cfg.RegisterPatterns(reg, nil)).To(BeNil())
		})
		Expect(cfg.Init(InitArgs{ClientMgr: mgr, Notifier: notifier})).To(BeNil())

		Expect(cfg.Refresh(time.Second)).To(BeNil())
		Eventually(func() []byte { return w.last() }).Should(Equal([]byte("QX0\r\n")))

		mgr.OnApplicationData([]byte("QX0\r\n"))
		Eventually(func() uint32 {
			observed, _ := cfg.RefreshProgress()
			return observed
		}).Should(Equal(uint32(1)))
	})
})
