package dag

import (
	"errors"
	"fmt"

	"github.com/andromeda-dag/node/xhash"
)

// NoLookupResults is returned when a hash has no known route into the
// graph. Grounded on original_source's OperationError::NoLookupResults.
type NoLookupResults struct {
	Key xhash.Hash
}

func (e *NoLookupResults) Error() string {
	return fmt.Sprintf("dag: no route to node with hash %s", e.Key)
}

// AlreadyExecuted is returned when a proposal or transaction that has
// already been applied is submitted again. Grounded on original_source's
// OperationError::AlreadyExecuted.
type AlreadyExecuted struct {
	Hash xhash.Hash
}

func (e *AlreadyExecuted) Error() string {
	return fmt.Sprintf("dag: transaction %s has already been executed", e.Hash)
}

// ErrStateUnresolved is returned when an operation needs a node's state
// entry but only its transaction header has been hydrated (the node is a
// "partial" node, as produced by ReadGraph with headersOnly set).
var ErrStateUnresolved = errors.New("dag: node state is unresolved")

// ErrSenderKeyMismatch is returned by Sign when the signing key's derived
// address doesn't match the transaction's declared sender.
var ErrSenderKeyMismatch = errors.New("dag: signing key does not match declared sender")

// ErrMissingParents is returned by Transaction.Validate when a non-genesis
// transaction declares no parents. A genesis transaction's single
// xhash.Zero parent satisfies the non-empty check by construction, so this
// only ever fires for a malformed or incorrectly-built non-genesis
// transaction.
var ErrMissingParents = errors.New("dag: non-genesis transaction has no parents")
