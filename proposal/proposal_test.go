package proposal

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProposalIDCollidesIffNameAndDataEqual(t *testing.T) {
	data := ProposalData{Path: TargetLedgerTransactions, Operation: Operation{Kind: Append, ValueToAppend: []byte("tx-bytes")}}

	p1 := NewProposal("sync_child", data)
	p2 := NewProposal("sync_child", data)
	require.Equal(t, p1.ProposalID, p2.ProposalID)

	other := NewProposal("sync_child", ProposalData{Path: TargetLedgerTransactions, Operation: Operation{Kind: Append, ValueToAppend: []byte("different")}})
	require.NotEqual(t, p1.ProposalID, other.ProposalID)
}

func TestRecordVoteAppends(t *testing.T) {
	p := NewProposal("n", ProposalData{Path: TargetLedgerTransactions, Operation: Operation{Kind: Remove}})
	require.Empty(t, p.Votes)

	p.RecordVote(Vote{TargetProposal: p.ProposalID, InFavor: true})
	require.Len(t, p.Votes, 1)
}
