// Package proposal implements the unit of identified mutation intent that
// drives changes into the ledger: a Proposal naming a logical path and an
// Operation to apply there, plus the System that registers, votes on, and
// executes proposals against a dag.Graph. Grounded on spec.md §4.3, with
// the vote stable-hash-for-signing rule carried over from
// original_source/src/core/sys/vote.rs.
package proposal

import (
	"time"

	"github.com/andromeda-dag/node/xcodec"
	"github.com/andromeda-dag/node/xhash"
)

// OperationKind tags the variant of an Operation.
type OperationKind int

const (
	// Append adds a new value at the target path.
	Append OperationKind = iota
	// Amend replaces the value at the target path.
	Amend
	// Remove deletes the value at the target path.
	Remove
)

// Operation is the tagged mutation a Proposal carries. Exactly one of
// ValueToAppend (for Append) or Value (for Amend) is populated, matching
// the payload the kind requires; Remove carries no payload.
type Operation struct {
	Kind          OperationKind
	ValueToAppend []byte
	Value         []byte
}

// ProposalData is the path/operation pair a Proposal's identity is derived
// from.
type ProposalData struct {
	Path      string
	Operation Operation
}

func (d *ProposalData) canonicalBytes(name string) []byte {
	w := xcodec.NewWriter()
	w.String(name)
	w.String(d.Path)
	w.Uint64(uint64(d.Operation.Kind))
	w.BytesField(d.Operation.ValueToAppend)
	w.BytesField(d.Operation.Value)
	return w.Bytes()
}

// Proposal is identified mutation intent targeting a logical path in the
// ledger's namespace (e.g. "ledger::transactions").
type Proposal struct {
	ProposalID xhash.Hash
	Name       string
	Data       ProposalData
	Votes      []Vote
	CreatedAt  time.Time
}

// NewProposal derives a Proposal's ID from name and data and returns the
// proposal with no votes cast yet.
func NewProposal(name string, data ProposalData) *Proposal {
	return &Proposal{
		ProposalID: xhash.Sum(data.canonicalBytes(name)),
		Name:       name,
		Data:       data,
		CreatedAt:  time.Now().UTC(),
	}
}

// RecordVote appends v to the proposal's vote list. Aggregation policy
// (whether votes gate execution) is left to the caller; System does not
// consult Votes when executing a proposal.
func (p *Proposal) RecordVote(v Vote) {
	p.Votes = append(p.Votes, v)
}
