// Copyright 2020 Dolthub, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package repository

import (
	"path"
	"strings"

	pkgerrors "github.com/pkg/errors"
	"gopkg.in/ini.v1"
)

// FilterConfigKey is the config key naming the filter file of a sparse
// clone, relative to the repository root.
const FilterConfigKey = "sparse.filter"

// Filter restricts a sparse clone to a subset of the feature space. It is
// read from an INI file: each section names a parent tree path, and its
// optional filter key holds a glob matched against feature names under that
// parent. A default section applies to every path.
//
//	[roads]
//	filter = main*
//
//	[parks]
type Filter struct {
	rules map[string]string
	all   string
}

// LoadFilter reads the filter file at filePath.
func LoadFilter(filePath string) (*Filter, error) {
	file, err := ini.Load(filePath)

	if err != nil {
		return nil, pkgerrors.Wrapf(err, "loading sparse filter %s", filePath)
	}

	f := &Filter{rules: make(map[string]string)}

	for _, section := range file.Sections() {
		name := section.Name()

		if name == ini.DefaultSection {
			continue
		}

		pattern := section.Key("filter").MustString("*")

		if name == "default" {
			f.all = pattern
			continue
		}

		f.rules[name] = pattern
	}

	return f, nil
}

// Matches reports whether a feature path passes the filter.
func (f *Filter) Matches(featurePath string) bool {
	parent, name := splitFeaturePath(featurePath)

	if f.all != "" {
		if ok, _ := path.Match(f.all, name); ok {
			return true
		}
	}

	pattern, ok := f.rules[parent]

	if !ok {
		return false
	}

	matched, err := path.Match(pattern, name)
	return err == nil && matched
}

func splitFeaturePath(featurePath string) (parent, name string) {
	idx := strings.LastIndex(featurePath, "/")

	if idx == -1 {
		return "", featurePath
	}

	return featurePath[:idx], featurePath[idx+1:]
}
