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

// Command hlxc is the client-role CLI: it dials a device (or an
// hlxproxyd in front of one), refreshes every entity once, then prints
// state transitions and notifications until interrupted.
package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"regexp"
	"syscall"

	spfcbr "github.com/spf13/cobra"

	libcbr "github.com/nabbar/openhlx/cobra"
	cmdclient "github.com/nabbar/openhlx/command/client"
	"github.com/nabbar/openhlx/connmgr"
	"github.com/nabbar/openhlx/controller"
	liberr "github.com/nabbar/openhlx/errors"
	"github.com/nabbar/openhlx/lifecycle"
	liblog "github.com/nabbar/openhlx/logger"
	loglvl "github.com/nabbar/openhlx/logger/level"
	"github.com/nabbar/openhlx/model"
	"github.com/nabbar/openhlx/option"
	"github.com/nabbar/openhlx/pattern"
	libver "github.com/nabbar/openhlx/version"
	libvpr "github.com/nabbar/openhlx/viper"
)

var (
	buildRelease = "dev"
	buildHash    = "none"
	buildDate    = "2020-01-01T00:00:00Z"
)

// errTerminator matches the device's single-line literal error reply
// (spec §4.3: any request may answer "ERROR\r\n" instead of its normal
// completion).
var errTerminator = regexp.MustCompile(`^ERROR\r\n$`)

// registerer is the subset of every entity controller RegisterPatterns
// needs, gathered so the startup loop below can drive all nine from one
// slice instead of nine near-identical call sites.
type registerer interface {
	RegisterPatterns(clientNotify *pattern.Registry, serverRequests *pattern.Registry) liberr.Error
}

// initializer is the subset of every entity controller Init needs.
type initializer interface {
	Init(a controller.InitArgs) liberr.Error
}

func main() {
	var (
		flagConfig  string
		flagVerbose int
		flagAddress string
	)

	vers := libver.NewVersion(
		libver.License_MIT,
		"hlxc",
		"connects to and drives a single openhlx device or proxy",
		buildDate,
		buildHash,
		buildRelease,
		"Nicolas JUHEL",
		"HLXC",
		option.Client{},
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
	app.AddFlagString(true, &flagAddress, "address", "a", "", "device address (host, host:port or telnet://host:port)")
	app.AddCommandCompletion()

	app.Cobra().RunE = func(_ *spfcbr.Command, _ []string) error {
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		log = liblog.New(ctx)
		log.SetLevel(verboseToLevel(flagVerbose))

		vpr = libvpr.New(ctx, func() liblog.Logger { return log })
		vpr.SetHomeBaseName("hlxc")
		vpr.SetEnvVarsPrefix("HLXC")
		vpr.SetDefaultConfig(defaultClientConfig)
		if flagConfig != "" {
			_ = vpr.SetConfigFile(flagConfig)
		}
		if e := vpr.Config(loglvl.WarnLevel, loglvl.DebugLevel); e != nil {
			log.Error("loading configuration", e)
		}

		opt := option.DefaultClient()
		if err := vpr.Unmarshal(opt); err != nil {
			return fmt.Errorf("decoding configuration: %w", err)
		}
		if flagAddress != "" {
			opt.Network.Address = flagAddress
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

		clientPatterns := pattern.NewRegistry()
		serverPatterns := pattern.NewRegistry()

		cfgCtrl := controller.NewConfiguration(controller.RoleClient)
		favCtrl := controller.NewFavorites(mdl.Sources, mdl.Zones, controller.RoleClient)
		fpCtrl := controller.NewFrontPanel(controller.RoleClient)
		grpCtrl := controller.NewGroups(mdl.Zones, controller.RoleClient)
		eqCtrl := controller.NewEqualizerPresets(controller.RoleClient)
		irCtrl := controller.NewInfrared(controller.RoleClient)
		netCtrl := controller.NewNetwork(controller.RoleClient)
		srcCtrl := controller.NewSources(controller.RoleClient)
		zoneCtrl := controller.NewZones(mdl.EqualizerPresets, mdl.Sources, controller.RoleClient)

		entities := []registerer{cfgCtrl, favCtrl, fpCtrl, grpCtrl, eqCtrl, irCtrl, netCtrl, srcCtrl, zoneCtrl}
		for _, c := range entities {
			if e := c.RegisterPatterns(clientPatterns, serverPatterns); e != nil {
				return fmt.Errorf("registering patterns: %w", e)
			}
		}

		if e := clientPatterns.CompileAll(); e != nil {
			return fmt.Errorf("compiling notification patterns: %w", e)
		}

		family := connmgr.Unspecified
		switch opt.Network.Family {
		case "ipv4":
			family = connmgr.IPv4Only
		case "ipv6":
			family = connmgr.IPv6Only
		}
		conn := connmgr.New(family)

		cliMgr := cmdclient.New(conn, errTerminator, clientPatterns, log)
		conn.SetApplicationDataDelegate(cliMgr.OnApplicationData)
		go cliMgr.Run(ctx)

		initArgs := controller.InitArgs{ClientMgr: cliMgr}
		inits := []initializer{cfgCtrl, favCtrl, fpCtrl, grpCtrl, eqCtrl, irCtrl, netCtrl, srcCtrl, zoneCtrl}
		for _, c := range inits {
			if e := c.Init(initArgs); e != nil {
				return fmt.Errorf("initializing controller: %w", e)
			}
		}

		lc := lifecycle.New(conn, cfgCtrl, favCtrl, fpCtrl, grpCtrl, eqCtrl, irCtrl, netCtrl, srcCtrl, zoneCtrl)
		lc.AddStateDelegate(func(from, to lifecycle.State) {
			log.Info(fmt.Sprintf("lifecycle %s -> %s", from, to), nil)
		})
		lc.OnDidNotRefresh(func(err error) {
			log.Error("one or more entities failed to refresh", err)
		})

		if e := lc.Connect(ctx, opt.Network.Address, opt.Network.ConnectTimeout.Time(), opt.Network.RefreshTimeout.Time()); e != nil {
			return fmt.Errorf("connecting to device: %w", e)
		}

		<-ctx.Done()
		_ = lc.Disconnect()
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

func defaultClientConfig() io.Reader {
	return bytes.NewReader([]byte(`{}`))
}
