// Package merge picks the content every machine should converge on from the
// set of copies pushed by all machines.
//
// The choice is last-write-wins on the commit timestamp of each copy. Ties
// at the newest timestamp go to the calling machine when it is among them,
// and otherwise to the lexicographically smallest content. The result depends
// only on the set of (machine, content, timestamp) tuples and on the calling
// machine, so machines holding the same snapshot agree without talking to
// each other.
package merge

import (
	"sort"

	"github.com/arthur-debert/drifters/pkg/errors"
	"github.com/arthur-debert/drifters/pkg/replicas"
)

// Decision names the rule that selected a winner.
type Decision string

const (
	DecisionSingle     Decision = "single"
	DecisionIdentical  Decision = "identical"
	DecisionNewest     Decision = "newest"
	DecisionSelfTie    Decision = "self-tie"
	DecisionLexicalTie Decision = "lexical-tie"
)

// Result is the winning content together with where it came from.
type Result struct {
	Content  string
	Machine  string
	Decision Decision
}

// Merge returns the content to apply on machine current.
func Merge(versions map[string]replicas.MachineVersion, current string) (string, error) {
	result, err := Explain(versions, current)
	if err != nil {
		return "", err
	}
	return result.Content, nil
}

// Explain runs the same selection as Merge and reports which rule decided it.
func Explain(versions map[string]replicas.MachineVersion, current string) (Result, error) {
	if len(versions) == 0 {
		return Result{}, errors.New(errors.ErrNoVersions, "no versions to merge").
			WithHint("push from at least one machine first")
	}

	machines := make([]string, 0, len(versions))
	for machine := range versions {
		machines = append(machines, machine)
	}
	sort.Strings(machines)

	if len(machines) == 1 {
		return Result{Content: versions[machines[0]].Content, Machine: machines[0], Decision: DecisionSingle}, nil
	}

	if identical(versions, machines) {
		return Result{Content: versions[machines[0]].Content, Machine: machines[0], Decision: DecisionIdentical}, nil
	}

	newest := versions[machines[0]].Timestamp()
	for _, machine := range machines[1:] {
		if ts := versions[machine].Timestamp(); ts > newest {
			newest = ts
		}
	}

	var winners []string
	for _, machine := range machines {
		if versions[machine].Timestamp() == newest {
			winners = append(winners, machine)
		}
	}

	if len(winners) == 1 {
		return Result{Content: versions[winners[0]].Content, Machine: winners[0], Decision: DecisionNewest}, nil
	}

	if identical(versions, winners) {
		return Result{Content: versions[winners[0]].Content, Machine: winners[0], Decision: DecisionNewest}, nil
	}

	for _, machine := range winners {
		if machine == current {
			return Result{Content: versions[machine].Content, Machine: machine, Decision: DecisionSelfTie}, nil
		}
	}

	best := winners[0]
	for _, machine := range winners[1:] {
		if versions[machine].Content < versions[best].Content {
			best = machine
		}
	}
	return Result{Content: versions[best].Content, Machine: best, Decision: DecisionLexicalTie}, nil
}

func identical(versions map[string]replicas.MachineVersion, machines []string) bool {
	first := versions[machines[0]].Content
	for _, machine := range machines[1:] {
		if versions[machine].Content != first {
			return false
		}
	}
	return true
}
