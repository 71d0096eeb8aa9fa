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

// Command hlxsimd is the server-role device simulator: it listens for the
// ASCII protocol, answers requests out of its own in-memory model and
// broadcasts notifications to every connected client.
package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	spfcbr "github.com/spf13/cobra"

	cmdserver "github.com/nabbar/openhlx/command/server"
	"github.com/nabbar/openhlx/controller"
	liberr "github.com/nabbar/openhlx/errors"
	liblog "github.com/nabbar/openhlx/logger"
	loglvl "github.com/nabbar/openhlx/logger/level"
	"github.com/nabbar/openhlx/model"
	"github.com/nabbar/openhlx/notify"
	"github.com/nabbar/openhlx/option"
	"github.com/nabbar/openhlx/pattern"
	libver "github.com/nabbar/openhlx/version"
	libvpr "github.com/nabbar/openhlx/viper"

	libcbr "github.com/nabbar/openhlx/cobra"
)

var (
	buildRelease = "dev"
	buildHash    = "none"
	buildDate    = "2020-01-01T00:00:00Z"
)

type registerer interface {
	RegisterPatterns(clientNotify *pattern.Registry, serverRequests *pattern.Registry) liberr.Error
}

type initializer interface {
	Init(a controller.InitArgs) liberr.Error
}

func main() {
	var (
		flagConfig  string
		flagVerbose int
		flagListen  string
	)

	vers := libver.NewVersion(
		libver.License_MIT,
		"hlxsimd",
		"simulates a single openhlx device over the ASCII protocol",
		buildDate,
		buildHash,
		buildRelease,
		"Nicolas JUHEL",
		"HLXSIMD",
		option.Server{},
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
	app.AddFlagString(true, &flagListen, "listen", "l", "", "listen address (host:port)")
	app.AddCommandCompletion()

	app.Cobra().RunE = func(_ *spfcbr.Command, _ []string) error {
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		log = liblog.New(ctx)
		log.SetLevel(verboseToLevel(flagVerbose))

		vpr = libvpr.New(ctx, func() liblog.Logger { return log })
		vpr.SetHomeBaseName("hlxsimd")
		vpr.SetEnvVarsPrefix("HLXSIMD")
		vpr.SetDefaultConfig(defaultServerConfig)
		if flagConfig != "" {
			_ = vpr.SetConfigFile(flagConfig)
		}
		if e := vpr.Config(loglvl.WarnLevel, loglvl.DebugLevel); e != nil {
			log.Error("loading configuration", e)
		}

		opt := option.DefaultServer()
		if err := vpr.Unmarshal(opt); err != nil {
			return fmt.Errorf("decoding configuration: %w", err)
		}
		if flagListen != "" {
			opt.Listen = flagListen
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

		cfgCtrl := controller.NewConfiguration(controller.RoleServer)
		favCtrl := controller.NewFavorites(mdl.Sources, mdl.Zones, controller.RoleServer)
		fpCtrl := controller.NewFrontPanel(controller.RoleServer)
		grpCtrl := controller.NewGroups(mdl.Zones, controller.RoleServer)
		eqCtrl := controller.NewEqualizerPresets(controller.RoleServer)
		irCtrl := controller.NewInfrared(controller.RoleServer)
		netCtrl := controller.NewNetwork(controller.RoleServer)
		srcCtrl := controller.NewSources(controller.RoleServer)
		zoneCtrl := controller.NewZones(mdl.EqualizerPresets, mdl.Sources, controller.RoleServer)

		entities := []registerer{cfgCtrl, favCtrl, fpCtrl, grpCtrl, eqCtrl, irCtrl, netCtrl, srcCtrl, zoneCtrl}
		for _, c := range entities {
			if e := c.RegisterPatterns(clientPatterns, serverPatterns); e != nil {
				return fmt.Errorf("registering patterns: %w", e)
			}
		}

		if e := serverPatterns.CompileAll(); e != nil {
			return fmt.Errorf("compiling request patterns: %w", e)
		}

		srvMgr := cmdserver.New(serverPatterns, log)

		initArgs := controller.InitArgs{ServerMgr: srvMgr, Notifier: notifier}
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

		if e := srvMgr.Listen(opt.Listen); e != nil {
			return fmt.Errorf("listening on %s: %w", opt.Listen, e)
		}
		log.Info(fmt.Sprintf("listening on %s", opt.Listen), nil)

		<-ctx.Done()

		shutCtx, shutCancel := context.WithTimeout(context.Background(), cmdserverShutdownTimeout)
		defer shutCancel()
		_ = srvMgr.Shutdown(shutCtx)
		_ = log.Close()
		return nil
	}

	if err := app.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

const cmdserverShutdownTimeout = 5 * time.Second

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

func defaultServerConfig() io.Reader {
	return bytes.NewReader([]byte(`{}`))
}
