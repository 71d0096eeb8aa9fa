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
 *
 */

package viper

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/mitchellh/mapstructure"
	liblog "github.com/nabbar/openhlx/logger"
	loglvl "github.com/nabbar/openhlx/logger/level"
	spfvpr "github.com/spf13/viper"

	liberr "github.com/nabbar/openhlx/errors"
)

// defaultConfigType is the format MergeConfig assumes for the embedded
// default reader, matching the yaml.v3 default every cmd/* ships.
const defaultConfigType = "yaml"

type instance struct {
	ctx context.Context
	log liblog.FuncLog

	mu  sync.Mutex
	vpr *spfvpr.Viper

	homeBase string
	defCfg   func() io.Reader
	hooks    []mapstructure.DecodeHookFunc

	remoteProvider  string
	remoteEndpoint  string
	remotePath      string
	remoteSecureKey string
	remoteModel     string
	remoteReload    func()
}

func (i *instance) logger() liblog.Logger {
	if i.log != nil {
		if l := i.log(); l != nil {
			return l
		}
	}
	return liblog.New(func() context.Context { return i.ctx })
}

func (i *instance) Viper() *spfvpr.Viper {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.vpr
}

func (i *instance) SetConfigFile(path string) liberr.Error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if path != "" {
		i.vpr.SetConfigFile(path)
		return nil
	}

	if i.homeBase == "" {
		return ErrorBasePathNotFound.Error(nil)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ErrorHomePathNotFound.Error(err)
	}

	i.vpr.SetConfigName(i.homeBase)
	i.vpr.AddConfigPath(home)
	i.vpr.AddConfigPath(filepath.Join(home, "."+strings.TrimPrefix(i.homeBase, ".")))
	return nil
}

func (i *instance) SetDefaultConfig(fct func() io.Reader) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.defCfg = fct
}

func (i *instance) SetHomeBaseName(name string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.homeBase = name
}

func (i *instance) SetEnvVarsPrefix(prefix string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.vpr.SetEnvPrefix(prefix)
	i.vpr.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	i.vpr.AutomaticEnv()
}

func (i *instance) SetRemoteProvider(provider string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.remoteProvider = provider
}

func (i *instance) SetRemoteEndpoint(endpoint string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.remoteEndpoint = endpoint
}

func (i *instance) SetRemotePath(path string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.remotePath = path
}

func (i *instance) SetRemoteSecureKey(key string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.remoteSecureKey = key
}

func (i *instance) SetRemoteModel(configType string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.remoteModel = configType
}

func (i *instance) SetRemoteReloadFunc(fct func()) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.remoteReload = fct
}

func (i *instance) HookRegister(hook DecodeHook) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if h, ok := hook.(mapstructure.DecodeHookFunc); ok {
		i.hooks = append(i.hooks, h)
	}
}

func (i *instance) HookReset() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.hooks = nil
}

func (i *instance) decodeOpts() []spfvpr.DecoderConfigOption {
	i.mu.Lock()
	defer i.mu.Unlock()

	if len(i.hooks) == 0 {
		return nil
	}

	return []spfvpr.DecoderConfigOption{
		spfvpr.DecodeHook(mapstructure.ComposeDecodeHookFunc(i.hooks...)),
	}
}

func (i *instance) Config(lvlKO, lvlOK loglvl.Level) liberr.Error {
	i.mu.Lock()
	remote := i.remoteProvider
	i.mu.Unlock()

	if remote != "" {
		return i.configRemote(lvlKO, lvlOK)
	}

	i.mu.Lock()
	err := i.vpr.ReadInConfig()
	i.mu.Unlock()

	if err == nil {
		i.logger().CheckError(lvlKO, lvlOK, "reading config file "+i.vpr.ConfigFileUsed())
		return nil
	}

	i.mu.Lock()
	def := i.defCfg
	i.mu.Unlock()

	if def == nil {
		i.logger().CheckError(lvlKO, loglvl.NilLevel, "reading config file", err)
		return ErrorConfigRead.Error(err)
	}

	i.mu.Lock()
	if i.vpr.ConfigFileUsed() == "" {
		i.vpr.SetConfigType(defaultConfigType)
	}
	mErr := i.vpr.MergeConfig(def())
	i.mu.Unlock()

	if mErr != nil {
		i.logger().CheckError(lvlKO, loglvl.NilLevel, "reading default config", mErr)
		return ErrorConfigReadDefault.Error(mErr)
	}

	i.logger().CheckError(lvlKO, loglvl.NilLevel, "config file not found, falling back to default config", err)
	return ErrorConfigIsDefault.Error(err)
}

func (i *instance) configRemote(lvlKO, lvlOK loglvl.Level) liberr.Error {
	i.mu.Lock()
	defer i.mu.Unlock()

	var err error
	if i.remoteSecureKey != "" {
		err = i.vpr.AddSecureRemoteProvider(i.remoteProvider, i.remoteEndpoint, i.remotePath, i.remoteSecureKey)
	} else {
		err = i.vpr.AddRemoteProvider(i.remoteProvider, i.remoteEndpoint, i.remotePath)
	}

	if err != nil {
		i.logger().CheckError(lvlKO, loglvl.NilLevel, "registering remote config provider", err)
		if i.remoteSecureKey != "" {
			return ErrorRemoteProviderSecure.Error(err)
		}
		return ErrorRemoteProvider.Error(err)
	}

	if i.remoteModel != "" {
		i.vpr.SetConfigType(i.remoteModel)
	}

	if err = i.vpr.ReadRemoteConfig(); err != nil {
		i.logger().CheckError(lvlKO, loglvl.NilLevel, "reading remote config", err)
		return ErrorRemoteProviderRead.Error(err)
	}

	i.logger().CheckError(lvlKO, lvlOK, "remote config loaded")

	if i.remoteReload != nil {
		i.remoteReload()
	}

	return nil
}

func (i *instance) Unmarshal(dst interface{}) error {
	i.mu.Lock()
	v := i.vpr
	i.mu.Unlock()
	return v.Unmarshal(dst, i.decodeOpts()...)
}

func (i *instance) UnmarshalKey(key string, dst interface{}) error {
	i.mu.Lock()
	v := i.vpr
	i.mu.Unlock()
	return v.UnmarshalKey(key, dst, i.decodeOpts()...)
}

func (i *instance) UnmarshalExact(dst interface{}) error {
	i.mu.Lock()
	v := i.vpr
	i.mu.Unlock()
	return v.UnmarshalExact(dst, i.decodeOpts()...)
}

func (i *instance) Unset(keys ...string) liberr.Error {
	if len(keys) == 0 {
		return nil
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	settings := i.vpr.AllSettings()
	for _, k := range keys {
		unsetNestedKey(settings, strings.Split(strings.ToLower(k), "."))
	}

	nv := spfvpr.New()
	if err := nv.MergeConfigMap(settings); err != nil {
		return ErrorConfigRead.Error(err)
	}

	i.vpr = nv
	return nil
}

func unsetNestedKey(m map[string]interface{}, parts []string) {
	if len(parts) == 0 {
		return
	}
	if len(parts) == 1 {
		delete(m, parts[0])
		return
	}
	sub, ok := m[parts[0]].(map[string]interface{})
	if !ok {
		return
	}
	unsetNestedKey(sub, parts[1:])
}

func (i *instance) GetBool(key string) bool                               { return i.Viper().GetBool(key) }
func (i *instance) GetString(key string) string                           { return i.Viper().GetString(key) }
func (i *instance) GetInt(key string) int                                 { return i.Viper().GetInt(key) }
func (i *instance) GetInt32(key string) int32                             { return i.Viper().GetInt32(key) }
func (i *instance) GetInt64(key string) int64                             { return i.Viper().GetInt64(key) }
func (i *instance) GetUint(key string) uint                               { return i.Viper().GetUint(key) }
func (i *instance) GetUint16(key string) uint16                           { return i.Viper().GetUint16(key) }
func (i *instance) GetUint32(key string) uint32                           { return i.Viper().GetUint32(key) }
func (i *instance) GetUint64(key string) uint64                           { return i.Viper().GetUint64(key) }
func (i *instance) GetFloat64(key string) float64                         { return i.Viper().GetFloat64(key) }
func (i *instance) GetDuration(key string) time.Duration                  { return i.Viper().GetDuration(key) }
func (i *instance) GetTime(key string) time.Time                         { return i.Viper().GetTime(key) }
func (i *instance) GetIntSlice(key string) []int                          { return i.Viper().GetIntSlice(key) }
func (i *instance) GetStringSlice(key string) []string                    { return i.Viper().GetStringSlice(key) }
func (i *instance) GetStringMap(key string) map[string]interface{}        { return i.Viper().GetStringMap(key) }
func (i *instance) GetStringMapString(key string) map[string]string       { return i.Viper().GetStringMapString(key) }
func (i *instance) GetStringMapStringSlice(key string) map[string][]string {
	return i.Viper().GetStringMapStringSlice(key)
}
