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

// Package hooks lets user scripts veto repository operations and resolve
// commands by name. Commands register themselves in a registry at startup;
// hook bridges look them up by name only.
package hooks

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/DistributedOpenUnifiedGovernmentNetwork/GeoGit/libraries/geocore/repository"
)

// VetoError aborts the operation a hook ran ahead of. It crosses every layer
// unchanged, so the caller sees the hook's message verbatim.
type VetoError struct {
	Msg string
}

func (e *VetoError) Error() string {
	return fmt.Sprintf("cannot run operation: %s", e.Msg)
}

// Veto builds the error a hook raises to stop the pending operation.
func Veto(msg string) error {
	return &VetoError{Msg: msg}
}

// IsVeto reports whether err is a hook veto.
func IsVeto(err error) bool {
	var veto *VetoError
	return errors.As(err, &veto)
}

// Command is a repository operation resolvable by name.
type Command interface {
	Run(ctx context.Context, repo *repository.Repository) error
}

// Builder constructs a command from its string parameters.
type Builder func(params map[string]string) (Command, error)

// Hook runs ahead of a command. Returning an error, usually a veto, aborts
// the command before it starts.
type Hook func(ctx context.Context, repo *repository.Repository) error

// ErrUnknownCommand is returned when no builder is registered for a name.
var ErrUnknownCommand = errors.New("unknown command")

// Registry maps command names to builders and their pre-hooks. Safe for
// concurrent use.
type Registry struct {
	mu       sync.RWMutex
	builders map[string]Builder
	hooks    map[string][]Hook
}

func NewRegistry() *Registry {
	return &Registry{
		builders: make(map[string]Builder),
		hooks:    make(map[string][]Hook),
	}
}

// Register adds a builder under name, replacing any previous registration.
func (r *Registry) Register(name string, builder Builder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.builders[name] = builder
}

// RegisterHook runs hook before every invocation of the named command.
func (r *Registry) RegisterHook(name string, hook Hook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hooks[name] = append(r.hooks[name], hook)
}

// Build constructs the named command with the given parameters.
func (r *Registry) Build(name string, params map[string]string) (Command, error) {
	r.mu.RLock()
	builder, ok := r.builders[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}

	return builder(params)
}

// Run builds the named command, runs its pre-hooks, then the command. A
// hook error, veto included, aborts the command and reaches the caller
// unchanged.
func (r *Registry) Run(ctx context.Context, repo *repository.Repository, name string, params map[string]string) error {
	cmd, err := r.Build(name, params)

	if err != nil {
		return err
	}

	r.mu.RLock()
	pre := append([]Hook(nil), r.hooks[name]...)
	r.mu.RUnlock()

	for _, hook := range pre {
		if err := hook(ctx, repo); err != nil {
			return err
		}
	}

	return cmd.Run(ctx, repo)
}

// DenyReadOnly is a pre-hook for mutating commands: it vetoes the operation
// when the repository config marks the repository read only.
func DenyReadOnly(ctx context.Context, repo *repository.Repository) error {
	if value, ok := repo.Config.Get("hooks.readonly"); ok && value == "true" {
		return Veto("repository is read only")
	}

	return nil
}

// Names returns the registered command names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.builders))
	for name := range r.builders {
		names = append(names, name)
	}

	sort.Strings(names)
	return names
}
