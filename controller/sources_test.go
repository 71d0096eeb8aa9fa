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
	"net"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	. "github.com/nabbar/openhlx/controller"
	"github.com/nabbar/openhlx/model"
	"github.com/nabbar/openhlx/pattern"
)

var _ = Describe("Sources", func() {
	It("issues a rename request and applies the device's echo", func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		src := NewSources(RoleClient)
		notifier, rec := newRecordingNotifier()

		mgr, w := newClientManager(ctx, func(reg *pattern.Registry) {
			Expect(src.RegisterPatterns(reg, nil)).To(BeNil())
		})
		Expect(src.Init(InitArgs{ClientMgr: mgr, Notifier: notifier})).To(BeNil())

		done := make(chan struct{})
		Expect(src.SetName(1, "Tuner", time.Second, func() { close(done) }, nil)).To(BeNil())

		Eventually(func() []byte { return w.last() }).Should(Equal([]byte("WnU1 Tuner\r\n")))

		mgr.OnApplicationData([]byte("NnU1 Tuner\r\n"))
		Eventually(done, time.Second).Should(BeClosed())

		s, e := src.Model().Get(1)
		Expect(e).To(BeNil())
		name, ok := s.Name.Get()
		Expect(ok).To(BeTrue())
		Expect(name).To(Equal("Tuner"))

		Expect(rec.all()).To(HaveLen(1))
		Expect(rec.all()[0].Identifier).To(Equal(model.Identifier(1)))
	})

	It("applies an unsolicited rename notification from another peer", func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		src := NewSources(RoleClient)
		notifier, rec := newRecordingNotifier()

		mgr, _ := newClientManager(ctx, func(reg *pattern.Registry) {
			Expect(src.RegisterPatterns(reg, nil)).To(BeNil())
		})
		Expect(src.Init(InitArgs{ClientMgr: mgr, Notifier: notifier})).To(BeNil())

		mgr.OnApplicationData([]byte("NnU3 Phono\r\n"))

		Eventually(func() int { return len(rec.all()) }).Should(Equal(1))

		s, e := src.Model().Get(3)
		Expect(e).To(BeNil())
		Expect(s.Name.MustGet()).To(Equal("Phono"))
	})

	It("applies a matched server-side rename request and broadcasts it", func() {
		src := NewSources(RoleServer)

		srv := newServerManager(func(reg *pattern.Registry) {
			Expect(src.RegisterPatterns(nil, reg)).To(BeNil())
		})
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
		}()
		Expect(src.Init(InitArgs{ServerMgr: srv})).To(BeNil())

		cli, derr := net.Dial("tcp", srv.Addrs()[0].String())
		Expect(derr).To(BeNil())
		defer cli.Close()

		_, werr := cli.Write([]byte("WnU2 CD\r\n"))
		Expect(werr).To(BeNil())

		buf := make([]byte, 64)
		_ = cli.SetReadDeadline(time.Now().Add(time.Second))
		n, rerr := cli.Read(buf)
		Expect(rerr).To(BeNil())
		Expect(string(buf[:n])).To(Equal("NnU2 CD\r\n"))

		s, e := src.Model().Get(2)
		Expect(e).To(BeNil())
		Expect(s.Name.MustGet()).To(Equal("CD"))
	})
})
