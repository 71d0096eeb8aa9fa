/*
 * MIT License
 *
 * Copyright (c) 2024 Nicolas JUHEL
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

package version

import (
	"fmt"
	"path"
	"runtime"
	"strings"
	"time"
)

type model struct {
	license     LicenseType
	pkg         string
	description string
	build       string
	release     string
	author      string
	prefix      string
	date        time.Time
	path        string
	numSub      int
}

func (m *model) GetPackage() string {
	if m.pkg == "" || m.pkg == "noname" {
		return path.Base(m.path)
	}
	return m.pkg
}

func (m *model) GetDescription() string {
	return m.description
}

func (m *model) GetBuild() string {
	return m.build
}

func (m *model) GetRelease() string {
	return m.release
}

func (m *model) GetAuthor() string {
	return fmt.Sprintf("%s (source: %s)", m.author, m.GetRootPackagePath())
}

func (m *model) GetPrefix() string {
	return strings.ToUpper(m.prefix)
}

func (m *model) GetDate() string {
	return m.date.Format(time.RFC1123)
}

func (m *model) GetTime() time.Time {
	return m.date
}

func (m *model) GetAppId() string {
	return fmt.Sprintf("%s-%s [Runtime: %s/%s]", m.GetPackage(), m.release, runtime.GOOS, runtime.GOARCH)
}

func (m *model) GetHeader() string {
	return fmt.Sprintf("%s - %s - release %s (build %s)", m.GetPackage(), m.description, m.release, m.build)
}

func (m *model) GetInfo() string {
	return fmt.Sprintf("Package: %s\nRelease: %s\nBuild: %s\nDate: %s", m.GetPackage(), m.release, m.build, m.GetDate())
}

func (m *model) GetRootPackagePath() string {
	if m.path == "" {
		return ""
	}

	parts := strings.Split(m.path, "/")
	n := m.numSub

	if n < 0 {
		n = 0
	}
	if n >= len(parts) {
		n = len(parts) - 1
	}

	res := strings.Join(parts[:len(parts)-n], "/")
	if res == "" {
		res = parts[0]
	}

	return res
}

func (m *model) GetLicenseName() string {
	return m.license.def().name
}

func (m *model) GetLicenseLegal(extra ...LicenseType) string {
	out := m.license.def().legal
	for _, e := range extra {
		out += wrapBlock(e.def().legal)
	}
	return out
}

func (m *model) GetLicenseBoiler(extra ...LicenseType) string {
	year := fmt.Sprintf("%d", m.date.Year())
	out := m.license.def().boiler(m.GetPackage(), m.description, m.author, year)
	for _, e := range extra {
		out += wrapBlock(e.def().boiler(m.GetPackage(), m.description, m.author, year))
	}
	return out
}

func (m *model) GetLicenseFull(extra ...LicenseType) string {
	boiler := m.GetLicenseBoiler(extra...)
	legal := m.GetLicenseLegal(extra...)
	return boiler + "\n" + licenseSeparator + "\n" + legal
}

func (m *model) PrintInfo() {
	println(m.GetHeader())
}

func (m *model) PrintLicense(extra ...LicenseType) {
	println(m.GetLicenseBoiler(extra...))
}
