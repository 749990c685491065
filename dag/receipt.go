package dag

import "github.com/andromeda-dag/node/xhash"

// Receipt records the resolved state hash of a single parent at the point
// a transaction was created against it. Grounded on
// original_source/src/core/types/receipt.rs.
type Receipt struct {
	StateHash xhash.Hash
}

// ReceiptMap pairs each resolved parent transaction hash with its Receipt,
// in parallel slices matching the order parents were resolved in.
type ReceiptMap struct {
	AssociatedTransactions []xhash.Hash
	Receipts               []Receipt
}

// Add appends a parent's hash and resolved receipt to the map.
func (m *ReceiptMap) Add(parent xhash.Hash, r Receipt) {
	m.AssociatedTransactions = append(m.AssociatedTransactions, parent)
	m.Receipts = append(m.Receipts, r)
}
