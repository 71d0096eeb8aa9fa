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

// Command hlxproxyd sits between one real device and many clients: it
// dials the device once, listens for client connections, and forwards
// any request its own (uninitialized) controllers can't answer locally
// straight through to the upstream (spec §4.8).
package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"regexp"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	spfcbr "github.com/spf13/cobra"

	libcbr "github.com/nabbar/openhlx/cobra"
	cmdclient "github.com/nabbar/openhlx/command/client"
	cmdserver "github.com/nabbar/openhlx/command/server"
	"github.com/nabbar/openhlx/connmgr"
	"github.com/nabbar/openhlx/controller"
	liberr "github.com/nabbar/openhlx/errors"
	liblog "github.com/nabbar/openhlx/logger"
	loglvl "github.com/nabbar/openhlx/logger/level"
	"github.com/nabbar/openhlx/model"
	"github.com/nabbar/openhlx/notify"
	"github.com/nabbar/openhlx/option"
	"github.com/nabbar/openhlx/pattern"
	"github.com/nabbar/openhlx/proxy"
	libver "github.com/nabbar/openhlx/version"
	libvpr "github.com/nabbar/openhlx/viper"
)

var (
	buildRelease = "dev"
	buildHash    = "none"
	buildDate    = "2020-01-01T00:00:00Z"
)

var errTerminator = regexp.MustCompile(`^ERROR\r\n$`)

const cmdserverShutdownTimeout = 5 * time.Second

type registerer interface {
	RegisterPatterns(clientNotify *pattern.Registry, serverRequests *pattern.Registry) liberr.Error
}

type initializer interface {
	Init(a controller.InitArgs) liberr.Error
}

func main() {
	var (
		flagConfig   string
		flagVerbose  int
		flagListen   string
		flagUpstream string
	)

	vers := libver.NewVersion(
		libver.License_MIT,
		"hlxproxyd",
		"fronts a single openhlx device for many concurrent clients",
		buildDate,
		buildHash,
		buildRelease,
		"Nicolas JUHEL",
		"HLXPROXYD",
		option.Proxy{},
		1,
	)

	var (
		log liblog.Logger
		vpr libvpr.Viper
	)

	app := libcbr.New()
	app.SetVersion(vers)
	app.SetLogger(func() liblog.Logger { return log })
	app.SetViper(func() libvpr.Viper { return vpr })
	app.SetFuncInit(func() {})
	app.Init()

	app.SetFlagConfig(true, &flagConfig)
	app.SetFlagVerbose(true, &flagVerbose)
	app.AddFlagString(true, &flagListen, "listen", "l", "", "downstream listen address (host:port)")
	app.AddFlagString(true, &flagUpstream, "upstream", "u", "", "upstream device address")
	app.AddCommandCompletion()

	app.Cobra().RunE = func(_ *spfcbr.Command, _ []string) error {
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		log = liblog.New(ctx)
		log.SetLevel(verboseToLevel(flagVerbose))

		vpr = libvpr.New(ctx, func() liblog.Logger { return log })
		vpr.SetHomeBaseName("hlxproxyd")
		vpr.SetEnvVarsPrefix("HLXPROXYD")
		vpr.SetDefaultConfig(defaultProxyConfig)
		if flagConfig != "" {
			_ = vpr.SetConfigFile(flagConfig)
		}
		if e := vpr.Config(loglvl.WarnLevel, loglvl.DebugLevel); e != nil {
			log.Error("loading configuration", e)
		}

		opt := option.DefaultProxy()
		if err := vpr.Unmarshal(opt); err != nil {
			return fmt.Errorf("decoding configuration: %w", err)
		}
		if flagListen != "" {
			opt.Listen = flagListen
		}
		if flagUpstream != "" {
			opt.Upstream.Address = flagUpstream
		}
		if e := opt.Validate(); e != nil {
			return fmt.Errorf("validating configuration: %w", e)
		}
		if e := log.SetOptions(opt.Logging.LoggerOptions()); e != nil {
			log.Error("applying logging configuration", e)
		}

		if e := vers.CheckGo("1.21.0", ">="); e != nil {
			log.Warning("go runtime compatibility", e)
		}

		mdl := model.New()
		notifier := notify.New()

		clientPatterns := pattern.NewRegistry()
		serverPatterns := pattern.NewRegistry()

		roles := controller.RoleClient | controller.RoleServer | controller.RoleProxy

		cfgCtrl := controller.NewConfiguration(roles)
		favCtrl := controller.NewFavorites(mdl.Sources, mdl.Zones, roles)
		fpCtrl := controller.NewFrontPanel(roles)
		grpCtrl := controller.NewGroups(mdl.Zones, roles)
		eqCtrl := controller.NewEqualizerPresets(roles)
		irCtrl := controller.NewInfrared(roles)
		netCtrl := controller.NewNetwork(roles)
		srcCtrl := controller.NewSources(roles)
		zoneCtrl := controller.NewZones(mdl.EqualizerPresets, mdl.Sources, roles)

		entities := []registerer{cfgCtrl, favCtrl, fpCtrl, grpCtrl, eqCtrl, irCtrl, netCtrl, srcCtrl, zoneCtrl}
		for _, c := range entities {
			if e := c.RegisterPatterns(clientPatterns, serverPatterns); e != nil {
				return fmt.Errorf("registering patterns: %w", e)
			}
		}

		if e := clientPatterns.CompileAll(); e != nil {
			return fmt.Errorf("compiling notification patterns: %w", e)
		}
		if e := serverPatterns.CompileAll(); e != nil {
			return fmt.Errorf("compiling request patterns: %w", e)
		}

		family := connmgr.Unspecified
		switch opt.Upstream.Family {
		case "ipv4":
			family = connmgr.IPv4Only
		case "ipv6":
			family = connmgr.IPv6Only
		}
		upstreamConn := connmgr.New(family)

		upstreamMgr := cmdclient.New(upstreamConn, errTerminator, clientPatterns, log)
		upstreamConn.SetApplicationDataDelegate(upstreamMgr.OnApplicationData)
		go upstreamMgr.Run(ctx)

		splice := proxy.New(upstreamMgr)

		downstreamMgr := cmdserver.New(serverPatterns, log)

		initArgs := controller.InitArgs{
			ClientMgr: upstreamMgr,
			ServerMgr: downstreamMgr,
			Notifier:  notifier,
			Proxy:     splice,
		}
		inits := []initializer{cfgCtrl, favCtrl, fpCtrl, grpCtrl, eqCtrl, irCtrl, netCtrl, srcCtrl, zoneCtrl}
		for _, c := range inits {
			if e := c.Init(initArgs); e != nil {
				return fmt.Errorf("initializing controller: %w", e)
			}
		}

		if opt.Metrics.Enabled && opt.Metrics.Listen != "" {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			metricsSrv := &http.Server{Addr: opt.Metrics.Listen, Handler: mux}
			go func() {
				if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Error("metrics listener", err)
				}
			}()
			defer func() {
				shutCtx, shutCancel := context.WithTimeout(context.Background(), cmdserverShutdownTimeout)
				defer shutCancel()
				_ = metricsSrv.Shutdown(shutCtx)
			}()
		}

		if e := upstreamConn.Connect(ctx, opt.Upstream.Address, opt.Upstream.ConnectTimeout.Time()); e != nil {
			return fmt.Errorf("connecting to upstream device: %w", e)
		}

		if e := downstreamMgr.Listen(opt.Listen); e != nil {
			return fmt.Errorf("listening on %s: %w", opt.Listen, e)
		}
		log.Info(fmt.Sprintf("proxying %s on %s", opt.Upstream.Address, opt.Listen), nil)

		<-ctx.Done()

		shutCtx, shutCancel := context.WithTimeout(context.Background(), cmdserverShutdownTimeout)
		defer shutCancel()
		_ = downstreamMgr.Shutdown(shutCtx)
		_ = upstreamConn.Disconnect()
		_ = log.Close()
		return nil
	}

	if err := app.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func verboseToLevel(v int) loglvl.Level {
	switch {
	case v >= 3:
		return loglvl.DebugLevel
	case v == 2:
		return loglvl.InfoLevel
	case v == 1:
		return loglvl.WarnLevel
	default:
		return loglvl.ErrorLevel
	}
}

func defaultProxyConfig() io.Reader {
	return bytes.NewReader([]byte(`{}`))
}
