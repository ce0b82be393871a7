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
	"os"
	"strings"

	"gopkg.in/ini.v1"
)

// Config holds repository configuration, stored as an INI file in the
// repository root. Keys are addressed as section.name, e.g. sparse.filter.
type Config struct {
	file *ini.File
	path string
}

// NewConfig creates an empty, unpersisted config.
func NewConfig() *Config {
	return &Config{file: ini.Empty()}
}

// LoadConfig reads the INI file at path. A missing file yields an empty
// config that will be created on the first Save.
func LoadConfig(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &Config{file: ini.Empty(), path: path}, nil
	}

	file, err := ini.Load(path)

	if err != nil {
		return nil, err
	}

	return &Config{file: file, path: path}, nil
}

// Get returns the value stored under a section.name key.
func (c *Config) Get(key string) (string, bool) {
	section, name := splitKey(key)
	k := c.file.Section(section).Key(name)

	if k.String() == "" {
		return "", false
	}

	return k.String(), true
}

// Set stores a value under a section.name key.
func (c *Config) Set(key, value string) {
	section, name := splitKey(key)
	c.file.Section(section).Key(name).SetValue(value)
}

// Save writes the config back to the file it was loaded from. A config with
// no backing file saves nowhere.
func (c *Config) Save() error {
	if c.path == "" {
		return nil
	}

	return c.file.SaveTo(c.path)
}

func splitKey(key string) (section, name string) {
	idx := strings.Index(key, ".")

	if idx == -1 {
		return ini.DefaultSection, key
	}

	return key[:idx], key[idx+1:]
}
