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
	"strings"
)

// LicenseType enumerates the licenses NewVersion can stamp onto a build;
// each maps to a name, a short copyright boilerplate and the full legal text.
type LicenseType uint8

const (
	License_MIT LicenseType = iota
	License_GNU_GPL_v3
	License_GNU_Affero_GPL_v3
	License_GNU_Lesser_GPL_v3
	License_Mozilla_PL_v2
	License_Apache_v2
	License_Unlicense
	License_Creative_Common_Zero_v1
	License_Creative_Common_Attribution_v4_int
	License_Creative_Common_Attribution_Share_Alike_v4_int
	License_SIL_Open_Font_1_1
)

// licenseSeparator delimits concatenated license blocks in GetLicenseLegal,
// GetLicenseBoiler and GetLicenseFull.
const licenseSeparator = "********************************************************************************"

type licenseDef struct {
	name   string
	legal  string
	boiler func(pkg, desc, author, year string) string
}

func (l LicenseType) def() licenseDef {
	if d, ok := licenseCatalog[l]; ok {
		return d
	}
	return licenseCatalog[License_MIT]
}

var licenseCatalog = map[LicenseType]licenseDef{
	License_MIT: {
		name: "MIT License",
		legal: "MIT License\n\n" +
			"Permission is hereby granted, free of charge, to any person obtaining a copy\n" +
			"of this software and associated documentation files, to deal in the Software\n" +
			"without restriction, including without limitation the rights to use, copy,\n" +
			"modify, merge, publish, distribute, sublicense, and/or sell copies of the\n" +
			"Software, subject to the inclusion of the above copyright notice.\n",
		boiler: func(pkg, desc, author, year string) string {
			return fmt.Sprintf("%s\n%s\n\nMIT License\n\nCopyright (c) %s %s\n", pkg, desc, year, author)
		},
	},
	License_GNU_GPL_v3: {
		name: "GNU GENERAL PUBLIC LICENSE Version 3",
		legal: "GNU GENERAL PUBLIC LICENSE\nVersion 3, 29 June 2007\n\n" +
			"This program is free software: you can redistribute it and/or modify it\n" +
			"under the terms of the GNU General Public License as published by the\n" +
			"Free Software Foundation.\n",
		boiler: func(pkg, desc, author, year string) string {
			return fmt.Sprintf("%s\n%s\n\nGNU General Public License v3\n\nCopyright (c) %s %s\n", pkg, desc, year, author)
		},
	},
	License_GNU_Affero_GPL_v3: {
		name: "GNU AFFERO GENERAL PUBLIC LICENSE Version 3",
		legal: "GNU AFFERO GENERAL PUBLIC LICENSE\nVersion 3, 19 November 2007\n\n" +
			"This program is free software: you can redistribute it and/or modify it\n" +
			"under the terms of the GNU Affero General Public License as published by\n" +
			"the Free Software Foundation.\n",
		boiler: func(pkg, desc, author, year string) string {
			return fmt.Sprintf("%s\n%s\n\nGNU Affero General Public License v3\n\nCopyright (c) %s %s\n", pkg, desc, year, author)
		},
	},
	License_GNU_Lesser_GPL_v3: {
		name: "GNU LESSER GENERAL PUBLIC LICENSE Version 3",
		legal: "GNU LESSER GENERAL PUBLIC LICENSE\nVersion 3, 29 June 2007\n\n" +
			"This version of the GNU Lesser General Public License incorporates the\n" +
			"terms and conditions of version 3 of the GNU General Public License.\n",
		boiler: func(pkg, desc, author, year string) string {
			return fmt.Sprintf("%s\n%s\n\nGNU Lesser General Public License v3\n\nCopyright (c) %s %s\n", pkg, desc, year, author)
		},
	},
	License_Mozilla_PL_v2: {
		name: "Mozilla Public License Version 2.0",
		legal: "Mozilla Public License, v. 2.0\n\n" +
			"This Source Code Form is subject to the terms of the Mozilla Public\n" +
			"License, v. 2.0. If a copy of the MPL was not distributed with this\n" +
			"file, You can obtain one at https://mozilla.org/MPL/2.0/.\n",
		boiler: func(pkg, desc, author, year string) string {
			return fmt.Sprintf("%s\n%s\n\nMozilla Public License v2.0\n\nCopyright (c) %s %s\n", pkg, desc, year, author)
		},
	},
	License_Apache_v2: {
		name: "Apache License Version 2.0",
		legal: "Apache License\nVersion 2.0, January 2004\n\n" +
			"Licensed under the Apache License, Version 2.0 (the \"License\"); you may\n" +
			"not use this file except in compliance with the License. You may obtain\n" +
			"a copy of the License at http://www.apache.org/licenses/LICENSE-2.0.\n",
		boiler: func(pkg, desc, author, year string) string {
			return fmt.Sprintf("%s\n%s\n\nApache License 2.0\n\nCopyright (c) %s %s\n", pkg, desc, year, author)
		},
	},
	License_Unlicense: {
		name: "Free and unencumbered software",
		legal: "This is free and unencumbered software released into the public domain.\n\n" +
			"Anyone is free to copy, modify, publish, use, compile, sell, or distribute\n" +
			"this software, either in source code form or as a compiled binary.\n",
		boiler: func(pkg, desc, author, year string) string {
			return fmt.Sprintf("%s\n%s\n\nThis is free and unencumbered software released into the public domain.\n\n%s %s\n", pkg, desc, year, author)
		},
	},
	License_Creative_Common_Zero_v1: {
		name: "Creative Commons CC0 1.0 Universal",
		legal: "Creative Commons CC0 1.0 Universal\n\n" +
			"The person who associated a work with this deed has dedicated the work to\n" +
			"the public domain by waiving all of his or her rights to the work.\n",
		boiler: func(pkg, desc, author, year string) string {
			return fmt.Sprintf("%s\n%s\n\nCreative Commons CC0 1.0 Universal\n\nCopyright (c) %s %s\n", pkg, desc, year, author)
		},
	},
	License_Creative_Common_Attribution_v4_int: {
		name: "Creative Commons Attribution 4.0 International",
		legal: "Creative Commons Attribution 4.0 International Public License\n\n" +
			"You are free to share and adapt the material for any purpose, even\n" +
			"commercially, as long as you give appropriate credit.\n",
		boiler: func(pkg, desc, author, year string) string {
			return fmt.Sprintf("%s\n%s\n\nCreative Commons Attribution 4.0 International\n\nCopyright (c) %s %s\n", pkg, desc, year, author)
		},
	},
	License_Creative_Common_Attribution_Share_Alike_v4_int: {
		name: "Creative Commons Attribution-ShareAlike 4.0 International",
		legal: "Creative Commons Attribution-Share Alike 4.0 International Public License\n\n" +
			"You are free to share and adapt the material, as long as you give\n" +
			"appropriate credit and distribute your contributions under the same license.\n",
		boiler: func(pkg, desc, author, year string) string {
			return fmt.Sprintf("%s\n%s\n\nCreative Commons Attribution Share Alike 4.0 International\n\nCopyright (c) %s %s\n", pkg, desc, year, author)
		},
	},
	License_SIL_Open_Font_1_1: {
		name: "SIL OPEN FONT LICENSE Version 1.1",
		legal: "SIL OPEN FONT LICENSE\nVersion 1.1, 26 February 2007\n\n" +
			"This license is copyleft licensing scheme that allows the licensed fonts\n" +
			"to be used, studied, modified and redistributed freely.\n",
		boiler: func(pkg, desc, author, year string) string {
			return fmt.Sprintf("%s\n%s\n\nSIL Open Font License 1.1\n\nCopyright (c) %s %s\n", pkg, desc, year, author)
		},
	},
}

func wrapBlock(text string) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(licenseSeparator)
	b.WriteString("\n")
	b.WriteString(text)
	b.WriteString("\n")
	b.WriteString(licenseSeparator)
	b.WriteString("\n")
	return b.String()
}
