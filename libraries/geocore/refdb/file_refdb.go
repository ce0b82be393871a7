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

package refdb

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dolthub/fslock"

	"github.com/DistributedOpenUnifiedGovernmentNetwork/GeoGit/libraries/geocore/ref"
	"github.com/DistributedOpenUnifiedGovernmentNetwork/GeoGit/store/hash"
)

const (
	fileLockTimeout = 30 * time.Second
	lockFileName    = "refs.lock"
)

// FileRefDatabase stores each ref as a loose file under a root directory.
// The file holds the stored value followed by a newline, the same layout the
// working copy tooling expects on disk.
type FileRefDatabase struct {
	root string
	lck  *fslock.Lock
}

var _ RefDatabase = (*FileRefDatabase)(nil)

// NewFileRefDatabase creates a FileRefDatabase rooted at dir.
func NewFileRefDatabase(dir string) *FileRefDatabase {
	return &FileRefDatabase{
		root: dir,
		lck:  fslock.New(filepath.Join(dir, lockFileName)),
	}
}

// Lock acquires the on disk lock file, waiting up to the lock timeout.
func (db *FileRefDatabase) Lock() error {
	err := db.lck.LockWithTimeout(fileLockTimeout)

	if err == fslock.ErrTimeout {
		return ErrLockTimeout
	}

	return err
}

func (db *FileRefDatabase) Unlock() error {
	return db.lck.Unlock()
}

func (db *FileRefDatabase) Create() error {
	return os.MkdirAll(db.root, 0755)
}

func (db *FileRefDatabase) Close() error {
	return nil
}

func (db *FileRefDatabase) GetRef(name string) (hash.Hash, error) {
	value, err := db.read(name)

	if err != nil {
		return hash.Null, err
	} else if ref.IsSymRefValue(value) {
		return hash.Null, ErrNotDirectRef
	}

	return hash.Parse(value)
}

func (db *FileRefDatabase) GetSymRef(name string) (string, error) {
	value, err := db.read(name)

	if err != nil {
		return "", err
	} else if !ref.IsSymRefValue(value) {
		return "", ErrNotSymRef
	}

	return ref.SymRefTarget(value), nil
}

func (db *FileRefDatabase) PutRef(name string, h hash.Hash) error {
	return db.write(name, h.String())
}

func (db *FileRefDatabase) PutSymRef(name, target string) error {
	return db.write(name, ref.SymRefValue(target))
}

func (db *FileRefDatabase) Remove(name string) (string, error) {
	value, err := db.read(name)

	if errors.Is(err, ErrRefNotFound) {
		return "", nil
	} else if err != nil {
		return "", err
	}

	if err := os.Remove(db.path(name)); err != nil {
		return "", err
	}

	return value, nil
}

func (db *FileRefDatabase) RemoveAll(prefix string) (map[string]string, error) {
	removed, err := db.GetAll(prefix)

	if err != nil {
		return nil, err
	}

	for name := range removed {
		if err := os.Remove(db.path(name)); err != nil {
			return nil, err
		}
	}

	// drop directories emptied by the removal
	for name := range removed {
		dir := filepath.Dir(db.path(name))
		for dir != db.root {
			if os.Remove(dir) != nil {
				break
			}
			dir = filepath.Dir(dir)
		}
	}

	return removed, nil
}

func (db *FileRefDatabase) GetAll(prefix string) (map[string]string, error) {
	matches := make(map[string]string)

	err := filepath.WalkDir(db.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}

		if d.IsDir() || d.Name() == lockFileName {
			return nil
		}

		rel, err := filepath.Rel(db.root, path)

		if err != nil {
			return err
		}

		name := filepath.ToSlash(rel)

		if !strings.HasPrefix(name, prefix) {
			return nil
		}

		data, err := os.ReadFile(path)

		if err != nil {
			return err
		}

		matches[name] = strings.TrimSpace(string(data))
		return nil
	})

	if os.IsNotExist(err) {
		return matches, nil
	} else if err != nil {
		return nil, err
	}

	return matches, nil
}

func (db *FileRefDatabase) path(name string) string {
	return filepath.Join(db.root, filepath.FromSlash(name))
}

func (db *FileRefDatabase) read(name string) (string, error) {
	data, err := os.ReadFile(db.path(name))

	if os.IsNotExist(err) {
		return "", ErrRefNotFound
	} else if err != nil {
		return "", err
	}

	return strings.TrimSpace(string(data)), nil
}

func (db *FileRefDatabase) write(name, value string) error {
	path := db.path(name)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	return os.WriteFile(path, []byte(value+"\n"), 0644)
}
