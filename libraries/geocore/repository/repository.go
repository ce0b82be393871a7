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

// Package repository wires the ref, object and graph databases into a single
// handle, and carries the repository configuration the replication layer
// reads its sparse filter from.
package repository

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"

	pkgerrors "github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/DistributedOpenUnifiedGovernmentNetwork/GeoGit/libraries/geocore/graph"
	"github.com/DistributedOpenUnifiedGovernmentNetwork/GeoGit/libraries/geocore/refdb"
	"github.com/DistributedOpenUnifiedGovernmentNetwork/GeoGit/store/hash"
	"github.com/DistributedOpenUnifiedGovernmentNetwork/GeoGit/store/objects"
)

// ErrNotFileRepository is returned when an operation requires a local
// file system repository root.
var ErrNotFileRepository = errors.New("repository is not rooted on the local file system")

const (
	refsDirName     = "refs_db"
	objectsFileName = "objects.db"
	graphFileName   = "graph.db"
	configFileName  = "config"
)

// Repository is an open versioned feature store.
type Repository struct {
	Refs    refdb.RefDatabase
	Objects objects.Database
	Graph   graph.Database
	Config  *Config

	location *url.URL
	logger   *zap.Logger

	closers []func() error
}

// Option configures an opened repository.
type Option func(*Repository)

// WithLogger attaches a logger; the default is a nop logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Repository) {
		r.logger = logger
	}
}

// Open opens (creating if necessary) the repository stored in dir.
func Open(dir string, opts ...Option) (*Repository, error) {
	abs, err := filepath.Abs(dir)

	if err != nil {
		return nil, err
	}

	refs := refdb.NewFileRefDatabase(filepath.Join(abs, refsDirName))

	if err = refs.Create(); err != nil {
		return nil, pkgerrors.Wrap(err, "creating ref database")
	}

	objDb, err := objects.NewBoltDatabase(filepath.Join(abs, objectsFileName))

	if err != nil {
		return nil, pkgerrors.Wrap(err, "opening object database")
	}

	graphDb, err := graph.NewBoltDatabase(filepath.Join(abs, graphFileName))

	if err != nil {
		_ = objDb.Close()
		return nil, pkgerrors.Wrap(err, "opening graph database")
	}

	config, err := LoadConfig(filepath.Join(abs, configFileName))

	if err != nil {
		_ = objDb.Close()
		_ = graphDb.Close()
		return nil, pkgerrors.Wrap(err, "loading repository config")
	}

	repo := &Repository{
		Refs:     refs,
		Objects:  objDb,
		Graph:    graphDb,
		Config:   config,
		location: &url.URL{Scheme: "file", Path: abs},
		logger:   zap.NewNop(),
		closers:  []func() error{objDb.Close, graphDb.Close, refs.Close},
	}

	for _, opt := range opts {
		opt(repo)
	}

	return repo, nil
}

// NewMemRepository creates a repository held entirely in memory, with no
// file system root. Used by tests and as the remote side of in-process
// replication.
func NewMemRepository(opts ...Option) *Repository {
	refs := refdb.NewMemRefDatabase()
	_ = refs.Create()

	repo := &Repository{
		Refs:     refs,
		Objects:  objects.NewMemDatabase(),
		Graph:    graph.NewMemDatabase(),
		Config:   NewConfig(),
		location: &url.URL{Scheme: "memory", Host: "local"},
		logger:   zap.NewNop(),
	}

	for _, opt := range opts {
		opt(repo)
	}

	return repo
}

// Close releases the underlying databases.
func (r *Repository) Close() error {
	var firstErr error

	for _, closer := range r.closers {
		if err := closer(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}

// Location returns the repository root URL.
func (r *Repository) Location() *url.URL {
	return r.location
}

// Root returns the file system root of the repository, or
// ErrNotFileRepository when it has none.
func (r *Repository) Root() (string, error) {
	if r.location.Scheme != "file" {
		return "", fmt.Errorf("%w: %s", ErrNotFileRepository, r.location)
	}

	return filepath.FromSlash(r.location.Path), nil
}

// Logger returns the repository logger.
func (r *Repository) Logger() *zap.Logger {
	return r.logger
}

// WriteCommit stores a commit and records its shape in the graph database.
func (r *Repository) WriteCommit(ctx context.Context, commit *objects.Commit) error {
	if err := r.Objects.Put(ctx, commit); err != nil {
		return err
	}

	return r.Graph.Put(ctx, commit.Id(), commit.Parents)
}

// ResolveTree resolves a commit or tree id to its tree. The Null id
// resolves to the empty tree.
func (r *Repository) ResolveTree(ctx context.Context, id hash.Hash) (*objects.Tree, error) {
	if id.IsNull() {
		return objects.EmptyTree(), nil
	}

	obj, err := r.Objects.Get(ctx, id)

	if err != nil {
		return nil, err
	}

	switch o := obj.(type) {
	case *objects.Tree:
		return o, nil
	case *objects.Commit:
		return objects.GetTree(ctx, r.Objects, o.Tree)
	}

	return nil, fmt.Errorf("%w: %s does not resolve to a tree", objects.ErrCorruptObject, id)
}
