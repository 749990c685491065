package dag

import (
	"math/big"
	"strconv"
	"time"

	"github.com/andromeda-dag/node/state"
	"github.com/andromeda-dag/node/xcodec"
	"github.com/andromeda-dag/node/xhash"
	"github.com/andromeda-dag/node/xsig"
	"github.com/dgraph-io/badger/v4"
)

func timeFromUnixNano(nsec int64) time.Time {
	return time.Unix(0, nsec).UTC()
}

// Store persists graph nodes in an embedded ordered key-value database,
// one entry per node keyed by its ASCII-decimal index, in place of the
// original implementation's sled-backed store
// (original_source/src/core/types/graph.rs's read_some_from_disk/
// write_to_disk). Grounded on the teacher's database/db.go badger wrapper,
// upgraded from the teacher's unmaintained badger v1 to badger/v4.
type Store struct {
	db *badger.DB
}

// OpenStore opens (creating if necessary) a badger database rooted at dir.
func OpenStore(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func indexKey(index int) []byte {
	return []byte(strconv.Itoa(index))
}

// SaveNode writes node at the given index, skipping the write if an entry
// already exists there (write_to_disk's contains_key guard).
func (s *Store) SaveNode(index int, node *Node) error {
	return s.db.Update(func(txn *badger.Txn) error {
		key := indexKey(index)
		if _, err := txn.Get(key); err == nil {
			return nil
		} else if err != badger.ErrKeyNotFound {
			return err
		}
		return txn.Set(key, encodeNode(node))
	})
}

// WriteGraph persists every node in g that isn't already stored.
func (s *Store) WriteGraph(g *Graph) error {
	g.mu.RLock()
	nodes := make([]*Node, len(g.nodes))
	copy(nodes, g.nodes)
	g.mu.RUnlock()

	for i, node := range nodes {
		if err := s.SaveNode(i, node); err != nil {
			return err
		}
	}
	return nil
}

// LoadNode reads and decodes the node stored at index, if any.
func (s *Store) LoadNode(index int) (*Node, bool, error) {
	var node *Node
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(indexKey(index))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			n, decodeErr := decodeNode(val)
			if decodeErr != nil {
				return decodeErr
			}
			node = n
			return nil
		})
	})
	if err != nil {
		return nil, false, err
	}
	return node, node != nil, nil
}

// ReadGraph reconstructs a Graph by scanning every persisted node in
// ascending index order. When headersOnly is true, state entries are
// dropped from the in-memory nodes, matching read_partial_from_disk's
// behavior of loading transaction headers without state data.
func ReadGraph(store *Store, headersOnly bool) (*Graph, error) {
	g := &Graph{
		hashRoutes:   map[xhash.Hash]int{},
		nodeChildren: map[xhash.Hash][]xhash.Hash{},
		store:        store,
	}

	err := store.db.View(func(txn *badger.Txn) error {
		for i := 0; ; i++ {
			item, err := txn.Get(indexKey(i))
			if err == badger.ErrKeyNotFound {
				return nil
			}
			if err != nil {
				return err
			}
			err = item.Value(func(val []byte) error {
				node, err := decodeNode(val)
				if err != nil {
					return err
				}
				if headersOnly {
					node.StateEntry = nil
				}

				g.hashRoutes[node.Hash] = len(g.nodes)
				for _, parent := range node.Transaction.Data.Parents {
					g.nodeChildren[parent] = append(g.nodeChildren[parent], node.Hash)
				}
				g.nodes = append(g.nodes, node)
				return nil
			})
			if err != nil {
				return err
			}
		}
	})
	if err != nil {
		return nil, err
	}
	return g, nil
}

// EncodeTransaction serializes tx into the canonical wire form used both
// for storage and for a proposal's Append payload.
func EncodeTransaction(tx *Transaction) []byte {
	w := xcodec.NewWriter()
	encodeTransaction(w, tx)
	return w.Bytes()
}

// DecodeTransaction reverses EncodeTransaction.
func DecodeTransaction(b []byte) (*Transaction, error) {
	return decodeTransaction(xcodec.NewReader(b))
}

func encodeNode(node *Node) []byte {
	w := xcodec.NewWriter()
	encodeTransaction(w, node.Transaction)
	w.Optional(node.StateEntry != nil, func() {
		encodeEntry(w, node.StateEntry)
	})
	return w.Bytes()
}

func decodeNode(b []byte) (*Node, error) {
	r := xcodec.NewReader(b)
	tx, err := decodeTransaction(r)
	if err != nil {
		return nil, err
	}

	var entry *state.Entry
	_, err = r.Optional(func() error {
		e, err := decodeEntry(r)
		if err != nil {
			return err
		}
		entry = e
		return nil
	})
	if err != nil {
		return nil, err
	}

	return NewNode(tx, entry), nil
}

func encodeTransaction(w *xcodec.Writer, tx *Transaction) {
	w.BytesField(tx.Hash.Bytes())
	w.Bool(tx.Genesis)
	w.BytesField(tx.Data.CanonicalBytes())

	w.Optional(tx.Signature != nil, func() {
		w.BytesField(tx.Signature.PublicKeyBytes)
		w.BytesField(tx.Signature.SignatureBytes)
	})
}

func decodeTransaction(r *xcodec.Reader) (*Transaction, error) {
	hashBytes, err := r.BytesField()
	if err != nil {
		return nil, err
	}
	hash, err := xhash.FromBytes(hashBytes)
	if err != nil {
		return nil, err
	}

	genesis, err := r.Bool()
	if err != nil {
		return nil, err
	}

	dataBytes, err := r.BytesField()
	if err != nil {
		return nil, err
	}
	data, err := decodeTransactionData(dataBytes)
	if err != nil {
		return nil, err
	}

	tx := &Transaction{Data: *data, Hash: hash, Genesis: genesis}

	_, err = r.Optional(func() error {
		pub, err := r.BytesField()
		if err != nil {
			return err
		}
		sig, err := r.BytesField()
		if err != nil {
			return err
		}
		tx.Signature = &xsig.Signature{PublicKeyBytes: pub, SignatureBytes: sig}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return tx, nil
}

func encodeEntry(w *xcodec.Writer, entry *state.Entry) {
	balanceEntries := make([]xcodec.KV, 0, len(entry.Balances))
	for addr, bal := range entry.Balances {
		addr, bal := addr, bal
		balanceEntries = append(balanceEntries, xcodec.KV{
			Key: addr.Bytes(),
			Write: func(w *xcodec.Writer) {
				w.BytesField(bal.Bytes())
			},
		})
	}
	w.SortedMap(balanceEntries)

	nonceEntries := make([]xcodec.KV, 0, len(entry.Nonces))
	for addr, n := range entry.Nonces {
		addr, n := addr, n
		nonceEntries = append(nonceEntries, xcodec.KV{
			Key: addr.Bytes(),
			Write: func(w *xcodec.Writer) {
				w.Uint64(n)
			},
		})
	}
	w.SortedMap(nonceEntries)
}

func decodeEntry(r *xcodec.Reader) (*state.Entry, error) {
	balanceCount, err := r.MapLen()
	if err != nil {
		return nil, err
	}
	balances := make(map[xsig.Address]*big.Int, balanceCount)
	for i := uint64(0); i < balanceCount; i++ {
		keyBytes, err := r.BytesField()
		if err != nil {
			return nil, err
		}
		addr, err := addressFromBytes(keyBytes)
		if err != nil {
			return nil, err
		}
		balBytes, err := r.BytesField()
		if err != nil {
			return nil, err
		}
		balances[addr] = new(big.Int).SetBytes(balBytes)
	}

	nonceCount, err := r.MapLen()
	if err != nil {
		return nil, err
	}
	nonces := make(map[xsig.Address]uint64, nonceCount)
	for i := uint64(0); i < nonceCount; i++ {
		keyBytes, err := r.BytesField()
		if err != nil {
			return nil, err
		}
		addr, err := addressFromBytes(keyBytes)
		if err != nil {
			return nil, err
		}
		n, err := r.Uint64()
		if err != nil {
			return nil, err
		}
		nonces[addr] = n
	}

	return state.SealForDecode(balances, nonces), nil
}

func decodeTransactionData(b []byte) (*TransactionData, error) {
	r := xcodec.NewReader(b)

	nonce, err := r.Uint64()
	if err != nil {
		return nil, err
	}
	senderBytes, err := r.BytesField()
	if err != nil {
		return nil, err
	}
	sender, err := addressFromBytes(senderBytes)
	if err != nil {
		return nil, err
	}
	recipientBytes, err := r.BytesField()
	if err != nil {
		return nil, err
	}
	recipient, err := addressFromBytes(recipientBytes)
	if err != nil {
		return nil, err
	}
	valueBytes, err := r.BytesField()
	if err != nil {
		return nil, err
	}
	payload, err := r.BytesField()
	if err != nil {
		return nil, err
	}

	parentCount, err := r.Uint64()
	if err != nil {
		return nil, err
	}
	parents := make([]xhash.Hash, 0, parentCount)
	for i := uint64(0); i < parentCount; i++ {
		pb, err := r.BytesField()
		if err != nil {
			return nil, err
		}
		ph, err := xhash.FromBytes(pb)
		if err != nil {
			return nil, err
		}
		parents = append(parents, ph)
	}

	data := &TransactionData{
		Nonce:     nonce,
		Sender:    sender,
		Recipient: recipient,
		Value:     new(big.Int).SetBytes(valueBytes),
		Payload:   payload,
		Parents:   parents,
	}

	_, err = r.Optional(func() error {
		count, err := r.Uint64()
		if err != nil {
			return err
		}
		receipts := &ReceiptMap{}
		for i := uint64(0); i < count; i++ {
			txBytes, err := r.BytesField()
			if err != nil {
				return err
			}
			txHash, err := xhash.FromBytes(txBytes)
			if err != nil {
				return err
			}
			stateBytes, err := r.BytesField()
			if err != nil {
				return err
			}
			stateHash, err := xhash.FromBytes(stateBytes)
			if err != nil {
				return err
			}
			receipts.Add(txHash, Receipt{StateHash: stateHash})
		}
		data.ParentReceipts = receipts
		return nil
	})
	if err != nil {
		return nil, err
	}

	_, err = r.Optional(func() error {
		hb, err := r.BytesField()
		if err != nil {
			return err
		}
		h, err := xhash.FromBytes(hb)
		if err != nil {
			return err
		}
		data.ParentStateHash = &h
		return nil
	})
	if err != nil {
		return nil, err
	}

	ts, err := r.Uint64()
	if err != nil {
		return nil, err
	}
	data.Timestamp = timeFromUnixNano(int64(ts))

	return data, nil
}

func addressFromBytes(b []byte) (xsig.Address, error) {
	h, err := xhash.FromBytes(b)
	if err != nil {
		return xsig.Address{}, err
	}
	return xsig.Address(h), nil
}
