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

// Package version stamps a build with a package name, a release/build pair
// injected by the linker, a license and the reflected root import path, and
// exposes a CheckGo guard so a cmd/* entry point can refuse to run under an
// incompatible Go runtime.
package version

import (
	"reflect"
	"time"

	liberr "github.com/nabbar/openhlx/errors"
)

// Version is built once per binary by NewVersion and handed to the cmd/*
// --version / --license flags and to CheckGo at startup.
type Version interface {
	GetPackage() string
	GetDescription() string
	GetBuild() string
	GetRelease() string
	GetAuthor() string
	GetPrefix() string
	GetDate() string
	GetTime() time.Time
	GetAppId() string
	GetHeader() string
	GetInfo() string
	GetRootPackagePath() string

	GetLicenseName() string
	GetLicenseLegal(extra ...LicenseType) string
	GetLicenseBoiler(extra ...LicenseType) string
	GetLicenseFull(extra ...LicenseType) string

	// CheckGo compares the runtime's Go version against requiredVersion using
	// constraint, one of "=", "==", "!=", ">", ">=", "<", "<=" or "~>".
	CheckGo(requiredVersion string, constraint string) liberr.Error

	PrintInfo()
	PrintLicense(extra ...LicenseType)
}

// NewVersion builds a Version for pkgName/description/release stamped at
// build time by the linker. rootPackageStruct is any zero value living in
// the module's root package (or numSubPackage levels below it); its
// reflected import path backs GetRootPackagePath and the GetPackage fallback
// used when pkgName is empty or "noname".
func NewVersion(license LicenseType, pkgName string, description string, dateStr string, build string, release string, author string, prefix string, rootPackageStruct interface{}, numSubPackage int) Version {
	t, err := time.Parse(time.RFC3339, dateStr)
	if err != nil {
		t, err = time.Parse(time.RFC3339Nano, dateStr)
	}
	if err != nil {
		t = time.Now()
	}

	var path string
	if rootPackageStruct != nil {
		path = reflect.TypeOf(rootPackageStruct).PkgPath()
	}

	return &model{
		license:     license,
		pkg:         pkgName,
		description: description,
		build:       build,
		release:     release,
		author:      author,
		prefix:      prefix,
		date:        t,
		path:        path,
		numSub:      numSubPackage,
	}
}
