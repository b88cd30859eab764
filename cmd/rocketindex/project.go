// Copyright 2025 Rocket Tycoon
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"os"
	"path/filepath"
)

// dataDirName is the per-project directory holding the SQL index and any
// cached derived data, analogous to .git.
const dataDirName = ".rocketindex"

const dbFileName = "index.db"

// resolveRoot returns the absolute repository root: args[0] if given, else
// the current working directory.
func resolveRoot(args []string) (string, error) {
	root := "."
	if len(args) > 0 {
		root = args[0]
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	return abs, nil
}

func dbPath(root string) string {
	return filepath.Join(root, dataDirName, dbFileName)
}

func ensureDataDir(root string) error {
	return os.MkdirAll(filepath.Join(root, dataDirName), 0o750)
}
