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
	"runtime"
	"strings"

	hashver "github.com/hashicorp/go-version"

	liberr "github.com/nabbar/openhlx/errors"
)

// validConstraintOps mirrors hashicorp/go-version's own operator set; "~>"
// is its pessimistic/compatible-release operator.
var validConstraintOps = map[string]bool{
	"=": true, "==": true, "!=": true,
	">": true, ">=": true, "<": true, "<=": true,
	"~>": true,
}

func (m *model) CheckGo(requiredVersion string, constraint string) liberr.Error {
	if requiredVersion == "" || constraint == "" {
		return ErrorParamEmpty.Error(nil)
	}

	if !validConstraintOps[constraint] {
		return ErrorGoVersionInit.Error(fmt.Errorf("unknown constraint operator %q", constraint))
	}

	cst, err := hashver.NewConstraint(constraint + " " + requiredVersion)
	if err != nil {
		return ErrorGoVersionInit.Error(err)
	}

	runVer := strings.TrimPrefix(runtime.Version(), "go")
	rv, err := hashver.NewVersion(runVer)
	if err != nil {
		return ErrorGoVersionRuntime.Error(err)
	}

	if !cst.Check(rv) {
		return ErrorGoVersionConstraint.Error(fmt.Errorf("runtime %s does not satisfy %s %s", rv.String(), constraint, requiredVersion))
	}

	return nil
}
