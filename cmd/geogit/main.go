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

// Command geogit is a thin porcelain over the versioned feature store:
// repository init, ref inspection, branching, and sparse fetch/push against
// another repository on the local file system. Subcommands are resolved
// through the command registry, so pre-hooks run ahead of every mutating
// operation and a hook veto aborts it.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"go.uber.org/zap"

	"github.com/DistributedOpenUnifiedGovernmentNetwork/GeoGit/libraries/geocore/hooks"
	"github.com/DistributedOpenUnifiedGovernmentNetwork/GeoGit/libraries/geocore/ref"
	"github.com/DistributedOpenUnifiedGovernmentNetwork/GeoGit/libraries/geocore/refdb"
	"github.com/DistributedOpenUnifiedGovernmentNetwork/GeoGit/libraries/geocore/remote"
	"github.com/DistributedOpenUnifiedGovernmentNetwork/GeoGit/libraries/geocore/repository"
)

const usage = `usage: geogit <command> <dir> [args]

commands:
  init <dir> [filter-file]        create a repository, optionally sparse
  refs <dir>                      list refs
  branch <dir> <name> <hash>      create a branch
  status <dir>                    show store sizes
  fetch <dir> <remote-dir> <ref>  sparse fetch a ref from a remote repository
  push <dir> <remote-dir> <ref> [refspec]
                                  sparse push a ref to a remote repository
`

func main() {
	err := run(os.Args[1:])

	switch {
	case hooks.IsVeto(err):
		color.Yellow("operation refused: %v", err)
		os.Exit(1)
	case err != nil:
		color.Red("error: %v", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) < 2 {
		fmt.Print(usage)
		return errors.New("a command and a repository directory are required")
	}

	name, dir := args[0], args[1]
	registry := newRegistry()

	params, err := paramsFor(name, args[2:])

	if err != nil {
		return err
	}

	if name == "init" {
		if err = os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	repo, err := openRepo(dir, os.Getenv("GEOGIT_VERBOSE") != "")

	if err != nil {
		return err
	}
	defer repo.Close()

	err = registry.Run(context.Background(), repo, name, params)

	if errors.Is(err, hooks.ErrUnknownCommand) {
		fmt.Print(usage)
	}

	return err
}

// newRegistry builds the command registry at startup; hook bridges and the
// dispatcher below look commands up by name only. Mutating commands run the
// read only guard first.
func newRegistry() *hooks.Registry {
	registry := hooks.NewRegistry()

	registry.Register("init", func(params map[string]string) (hooks.Command, error) {
		return initCmd{filter: params["filter"]}, nil
	})
	registry.Register("refs", func(params map[string]string) (hooks.Command, error) {
		return refsCmd{}, nil
	})
	registry.Register("branch", func(params map[string]string) (hooks.Command, error) {
		if params["name"] == "" || params["hash"] == "" {
			return nil, errors.New("branch requires a name and a commit hash")
		}
		return branchCmd{name: params["name"], hash: params["hash"]}, nil
	})
	registry.Register("status", func(params map[string]string) (hooks.Command, error) {
		return statusCmd{}, nil
	})
	registry.Register("fetch", func(params map[string]string) (hooks.Command, error) {
		if params["remote"] == "" || params["ref"] == "" {
			return nil, errors.New("fetch requires a remote directory and a ref")
		}
		return fetchCmd{remoteDir: params["remote"], ref: params["ref"]}, nil
	})
	registry.Register("push", func(params map[string]string) (hooks.Command, error) {
		if params["remote"] == "" || params["ref"] == "" {
			return nil, errors.New("push requires a remote directory and a ref")
		}

		refspec := params["refspec"]
		if refspec == "" {
			refspec = params["ref"]
		}

		return pushCmd{remoteDir: params["remote"], ref: params["ref"], refspec: refspec}, nil
	})

	registry.RegisterHook("branch", hooks.DenyReadOnly)
	registry.RegisterHook("push", hooks.DenyReadOnly)

	return registry
}

// paramsFor maps a command's positional arguments onto its parameter names.
func paramsFor(name string, args []string) (map[string]string, error) {
	keys, ok := map[string][]string{
		"init":   {"filter"},
		"refs":   {},
		"branch": {"name", "hash"},
		"status": {},
		"fetch":  {"remote", "ref"},
		"push":   {"remote", "ref", "refspec"},
	}[name]

	if !ok {
		// let the registry report the unknown name
		return nil, nil
	}

	if len(args) > len(keys) {
		return nil, fmt.Errorf("too many arguments for %s", name)
	}

	params := make(map[string]string, len(args))
	for i, arg := range args {
		params[keys[i]] = arg
	}

	return params, nil
}

func openRepo(dir string, verbose bool) (*repository.Repository, error) {
	var opts []repository.Option

	if verbose {
		logger, err := zap.NewDevelopment()

		if err != nil {
			return nil, err
		}

		opts = append(opts, repository.WithLogger(logger))
	}

	return repository.Open(dir, opts...)
}

type initCmd struct {
	filter string
}

func (c initCmd) Run(ctx context.Context, repo *repository.Repository) error {
	root, err := repo.Root()

	if err != nil {
		return err
	}

	if c.filter != "" {
		repo.Config.Set(repository.FilterConfigKey, c.filter)

		if err = repo.Config.Save(); err != nil {
			return err
		}

		color.Green("Initialized sparse repository in %s (filter %s)", root, c.filter)
		return nil
	}

	color.Green("Initialized repository in %s", root)
	return nil
}

type refsCmd struct{}

func (c refsCmd) Run(ctx context.Context, repo *repository.Repository) error {
	all, err := repo.Refs.GetAll("")

	if err != nil {
		return err
	}

	names := make([]string, 0, len(all))
	for name := range all {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		fmt.Printf("%s\t%s\n", all[name], name)
	}

	fmt.Printf("%s refs\n", humanize.Comma(int64(len(all))))
	return nil
}

type branchCmd struct {
	name string
	hash string
}

func (c branchCmd) Run(ctx context.Context, repo *repository.Repository) error {
	branchRef := ref.HeadsPrefix + c.name

	if err := refdb.PutValue(repo.Refs, branchRef, c.hash); err != nil {
		return err
	}

	color.Green("Created %s", branchRef)
	return nil
}

type statusCmd struct{}

func (c statusCmd) Run(ctx context.Context, repo *repository.Repository) error {
	root, err := repo.Root()

	if err != nil {
		return err
	}

	for _, file := range []string{"objects.db", "graph.db"} {
		info, err := os.Stat(filepath.Join(root, file))

		if err != nil {
			return err
		}

		fmt.Printf("%s\t%s\n", file, humanize.Bytes(uint64(info.Size())))
	}

	return nil
}

type fetchCmd struct {
	remoteDir string
	ref       string
}

func (c fetchCmd) Run(ctx context.Context, repo *repository.Repository) error {
	remoteRepo, repl, err := replicatorFor(repo, c.remoteDir)

	if err != nil {
		return err
	}
	defer remoteRepo.Close()

	h, err := remoteRepo.Refs.GetRef(c.ref)

	if err != nil {
		return fmt.Errorf("resolving remote ref %s: %w", c.ref, err)
	}

	if err = repl.Fetch(ctx, ref.NewRef(c.ref, h), 0); err != nil {
		return err
	}

	color.Green("Fetched %s", c.ref)
	return nil
}

type pushCmd struct {
	remoteDir string
	ref       string
	refspec   string
}

func (c pushCmd) Run(ctx context.Context, repo *repository.Repository) error {
	remoteRepo, repl, err := replicatorFor(repo, c.remoteDir)

	if err != nil {
		return err
	}
	defer remoteRepo.Close()

	h, err := repo.Refs.GetRef(c.ref)

	if err != nil {
		return fmt.Errorf("resolving local ref %s: %w", c.ref, err)
	}

	err = repl.Push(ctx, ref.NewRef(c.ref, h), c.refspec)

	switch {
	case errors.Is(err, remote.ErrNothingToPush):
		color.Yellow("Nothing to push")
		return nil
	case err != nil:
		return err
	}

	color.Green("Pushed %s to %s", c.ref, c.refspec)
	return nil
}

func replicatorFor(local *repository.Repository, remoteDir string) (*repository.Repository, *remote.Replicator, error) {
	remoteRepo, err := repository.Open(remoteDir)

	if err != nil {
		return nil, nil, err
	}

	proto, err := remote.NewLocalProtocol(local, remoteRepo)

	if err != nil {
		_ = remoteRepo.Close()
		return nil, nil, err
	}

	repl, err := remote.NewReplicator(local, proto)

	if err != nil {
		_ = remoteRepo.Close()
		return nil, nil, err
	}

	return remoteRepo, repl, nil
}
