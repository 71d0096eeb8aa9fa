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

// Package option defines the typed configuration structs that the three
// cmd/* entry points decode from Viper (flags > env > file), and the
// logger/config translation each one feeds to logger.Logger.SetOptions.
package option

import (
	"fmt"

	libval "github.com/go-playground/validator/v10"
	libdur "github.com/nabbar/openhlx/duration"
	logcfg "github.com/nabbar/openhlx/logger/config"

	liberr "github.com/nabbar/openhlx/errors"
)

// Network bundles the dial/refresh knobs shared by every role that owns
// a connmgr.Manager: hlxc dials the device directly, hlxproxyd dials it
// on behalf of its downstream clients.
type Network struct {
	// Address is a bare host, host:port or telnet:// URL; connmgr fills
	// in the default port and scheme when omitted.
	Address string `json:"address,omitempty" yaml:"address,omitempty" mapstructure:"address,omitempty" validate:"omitempty,max=255"`

	// Family restricts DNS resolution: "", "ipv4" or "ipv6".
	Family string `json:"family,omitempty" yaml:"family,omitempty" mapstructure:"family,omitempty" validate:"omitempty,oneof=ipv4 ipv6"`

	// ConnectTimeout/RefreshTimeout accept the teacher's days-aware
	// duration syntax (e.g. "1d12h") in config files, not just Go's
	// native "1h30m0s".
	ConnectTimeout libdur.Duration `json:"connectTimeout,omitempty" yaml:"connectTimeout,omitempty" mapstructure:"connectTimeout,omitempty"`
	RefreshTimeout libdur.Duration `json:"refreshTimeout,omitempty" yaml:"refreshTimeout,omitempty" mapstructure:"refreshTimeout,omitempty"`
}

// Logging bundles the --debug/--syslog/color CLI surface (spec §6) into
// one struct every role's logger bootstrap consumes identically.
type Logging struct {
	// Debug is the verbose flag's repeat count (-v, -vv, -vvv); 0 means
	// only stdout at the logger's configured base level.
	Debug int `json:"debug,omitempty" yaml:"debug,omitempty" mapstructure:"debug,omitempty" validate:"gte=0,lte=3"`

	Syslog        bool   `json:"syslog,omitempty" yaml:"syslog,omitempty" mapstructure:"syslog,omitempty"`
	SyslogNetwork string `json:"syslogNetwork,omitempty" yaml:"syslogNetwork,omitempty" mapstructure:"syslogNetwork,omitempty" validate:"omitempty,oneof=tcp udp"`
	SyslogHost    string `json:"syslogHost,omitempty" yaml:"syslogHost,omitempty" mapstructure:"syslogHost,omitempty"`

	// Color enables fatih/color output on the CLI's human-readable
	// status lines; it never reaches the ASCII wire protocol.
	Color bool `json:"color,omitempty" yaml:"color,omitempty" mapstructure:"color,omitempty"`
}

// Metrics gates the prometheus/client_golang exposition that only
// hlxsimd and hlxproxyd carry (spec §11: hlxc has no metrics surface).
type Metrics struct {
	Enabled bool   `json:"enabled,omitempty" yaml:"enabled,omitempty" mapstructure:"enabled,omitempty"`
	Listen  string `json:"listen,omitempty" yaml:"listen,omitempty" mapstructure:"listen,omitempty" validate:"omitempty,hostname_port"`
}

// Client is hlxc's decoded configuration: a single upstream connection,
// no listener, no metrics.
type Client struct {
	Network Network `json:"network,omitempty" yaml:"network,omitempty" mapstructure:"network,omitempty"`
	Logging Logging `json:"logging,omitempty" yaml:"logging,omitempty" mapstructure:"logging,omitempty"`
}

// Server is hlxsimd's decoded configuration: a listen address for the
// device-simulator and nothing to dial out to.
type Server struct {
	Listen  string  `json:"listen,omitempty" yaml:"listen,omitempty" mapstructure:"listen,omitempty" validate:"required,hostname_port"`
	Logging Logging `json:"logging,omitempty" yaml:"logging,omitempty" mapstructure:"logging,omitempty"`
	Metrics Metrics `json:"metrics,omitempty" yaml:"metrics,omitempty" mapstructure:"metrics,omitempty"`
}

// Proxy is hlxproxyd's decoded configuration: it both dials upstream
// (Network) and listens downstream (Listen), per its RoleClient|
// RoleServer|RoleProxy wiring (spec §4.8).
type Proxy struct {
	Listen  string  `json:"listen,omitempty" yaml:"listen,omitempty" mapstructure:"listen,omitempty" validate:"required,hostname_port"`
	Upstream Network `json:"upstream,omitempty" yaml:"upstream,omitempty" mapstructure:"upstream,omitempty"`
	Logging Logging `json:"logging,omitempty" yaml:"logging,omitempty" mapstructure:"logging,omitempty"`
	Metrics Metrics `json:"metrics,omitempty" yaml:"metrics,omitempty" mapstructure:"metrics,omitempty"`

	// InflightLimit bounds the proxy.Splice semaphore (golang.org/x/sync
	// /semaphore) per downstream connection; 0 falls back to the
	// package's DefaultInflightLimit.
	InflightLimit int64 `json:"inflightLimit,omitempty" yaml:"inflightLimit,omitempty" mapstructure:"inflightLimit,omitempty" validate:"gte=0"`
}

// DefaultClient returns hlxc's baseline configuration.
func DefaultClient() *Client {
	return &Client{
		Network: Network{
			ConnectTimeout: libdur.Seconds(10),
			RefreshTimeout: libdur.Seconds(30),
		},
	}
}

// DefaultServer returns hlxsimd's baseline configuration.
func DefaultServer() *Server {
	return &Server{
		Listen: fmt.Sprintf(":%d", 23),
	}
}

// DefaultProxy returns hlxproxyd's baseline configuration.
func DefaultProxy() *Proxy {
	return &Proxy{
		Listen: fmt.Sprintf(":%d", 21327),
		Upstream: Network{
			ConnectTimeout: libdur.Seconds(10),
			RefreshTimeout: libdur.Seconds(30),
		},
		InflightLimit: 8,
	}
}

func validate(o interface{}) liberr.Error {
	if o == nil {
		return ErrorParamEmpty.Error(nil)
	}

	if err := libval.New().Struct(o); err != nil {
		e := ErrorValidatorError.Error(nil)

		if er, ok := err.(*libval.InvalidValidationError); ok {
			e.Add(er)
			return e
		}

		for _, er := range err.(libval.ValidationErrors) {
			//nolint #goerr113
			e.Add(fmt.Errorf("option field '%s' is not validated by constraint '%s'", er.Namespace(), er.ActualTag()))
		}

		return e
	}

	return nil
}

// Validate checks c against its struct tags.
func (c *Client) Validate() liberr.Error { return validate(c) }

// Validate checks s against its struct tags.
func (s *Server) Validate() liberr.Error { return validate(s) }

// Validate checks p against its struct tags.
func (p *Proxy) Validate() liberr.Error { return validate(p) }

// LoggerOptions translates l into the logger/config options the
// logger.Logger.SetOptions call expects, wiring --syslog to
// logger/hooksyslog and a non-zero --debug to logger/hookfile plus a
// stderr mirror (spec §6, §10).
func (l Logging) LoggerOptions() *logcfg.Options {
	o := &logcfg.Options{
		Stdout: &logcfg.OptionsStd{
			DisableColor: !l.Color,
		},
	}

	if l.Debug > 0 {
		o.LogFile = logcfg.OptionsFiles{
			{
				LogLevel: []string{"Debug", "Info", "Warning", "Error", "Fatal", "Critical"},
			},
		}
	}

	if l.Syslog {
		network := l.SyslogNetwork
		if network == "" {
			network = "udp"
		}

		o.LogSyslog = logcfg.OptionsSyslogs{
			{
				LogLevel: []string{"Warning", "Error", "Fatal", "Critical"},
				Network:  network,
				Host:     l.SyslogHost,
				Facility: "local0",
			},
		}
	}

	return o
}
