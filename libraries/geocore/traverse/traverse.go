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

// Package traverse walks the commit DAG in reverse topological order. Both
// replication directions use it to decide which commits must cross the wire:
// the caller supplies an evaluator and a parents oracle, and pops the result
// to receive commits ancestors first, so every commit's parents are in the
// destination before the commit itself is written.
package traverse

import (
	"context"

	"github.com/DistributedOpenUnifiedGovernmentNetwork/GeoGit/store/hash"
)

// Evaluation is an evaluator's verdict on one commit: whether to include it
// in the output, and whether to continue into its parents.
type Evaluation int

const (
	IncludeAndContinue Evaluation = iota
	IncludeAndPrune
	ExcludeAndContinue
	ExcludeAndPrune
)

// Include reports whether the commit joins the output.
func (e Evaluation) Include() bool {
	return e == IncludeAndContinue || e == IncludeAndPrune
}

// Continue reports whether the walk descends into the commit's parents.
func (e Evaluation) Continue() bool {
	return e == IncludeAndContinue || e == ExcludeAndContinue
}

// EvaluateFunc decides the Evaluation for a commit.
type EvaluateFunc func(ctx context.Context, id hash.Hash) (Evaluation, error)

// ParentsFunc returns a commit's parents in declared order. Ids unknown to
// the oracle return an empty list and are treated as roots.
type ParentsFunc func(ctx context.Context, id hash.Hash) ([]hash.Hash, error)

// ExistsFunc reports whether a commit is already present in the destination.
type ExistsFunc func(ctx context.Context, id hash.Hash) (bool, error)

// Traverser gathers the commits reachable from a start id that the evaluator
// includes. Not safe for concurrent use; construct one per walk.
type Traverser struct {
	Evaluate EvaluateFunc
	Parents  ParentsFunc

	// ExistsInDestination short-circuits descent into subgraphs the
	// destination already has. Optional; nil never short-circuits.
	ExistsInDestination ExistsFunc

	commits []hash.Hash
	visited hash.HashSet
}

// frame is one suspended node of the depth first walk: a node whose parents
// are being descended into before the node itself is emitted.
type frame struct {
	id      hash.Hash
	include bool
	parents []hash.Hash
	next    int
}

// Traverse walks the parent DAG from start, depth first, evaluating each
// commit at most once; commits ExistsInDestination reports present are not
// evaluated at all. A commit is emitted only after every non-pruned
// ancestor reachable from it, which is what gives Pop its ancestors first
// order. A Null start produces an empty result.
func (t *Traverser) Traverse(ctx context.Context, start hash.Hash) error {
	t.commits = t.commits[:0]
	t.visited = hash.NewHashSet()

	if start.IsNull() {
		return nil
	}

	top, err := t.enter(ctx, start)

	if err != nil {
		return err
	}

	var stack []*frame
	if top != nil {
		stack = append(stack, top)
	}

	for len(stack) > 0 {
		cur := stack[len(stack)-1]

		if cur.next < len(cur.parents) {
			parent := cur.parents[cur.next]
			cur.next++

			child, err := t.enter(ctx, parent)

			if err != nil {
				return err
			}

			if child != nil {
				stack = append(stack, child)
			}
			continue
		}

		// every parent emitted, emit the node itself
		if cur.include {
			t.commits = append(t.commits, cur.id)
		}
		stack = stack[:len(stack)-1]
	}

	return nil
}

// enter evaluates a not yet visited node and builds its walk frame, or
// returns nil when the node was already visited, was pruned, or already
// exists in the destination.
func (t *Traverser) enter(ctx context.Context, id hash.Hash) (*frame, error) {
	if t.visited.Has(id) {
		return nil, nil
	}
	t.visited.Insert(id)

	if t.ExistsInDestination != nil {
		exists, err := t.ExistsInDestination(ctx, id)

		if err != nil {
			return nil, err
		} else if exists {
			return nil, nil
		}
	}

	eval, err := t.Evaluate(ctx, id)

	if err != nil {
		return nil, err
	}

	f := &frame{id: id, include: eval.Include()}

	if eval.Continue() {
		f.parents, err = t.Parents(ctx, id)

		if err != nil {
			return nil, err
		}
	}

	return f, nil
}

// Pop removes and returns the next commit, ancestors before descendants,
// roots first. Returns false when none remain.
func (t *Traverser) Pop() (hash.Hash, bool) {
	if len(t.commits) == 0 {
		return hash.Null, false
	}

	id := t.commits[0]
	t.commits = t.commits[1:]
	return id, true
}

// Remaining returns the number of commits left to pop.
func (t *Traverser) Remaining() int {
	return len(t.commits)
}
