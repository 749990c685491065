package rpc

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/andromeda-dag/node/dag"
	"github.com/andromeda-dag/node/xhash"
)

// memTxPool holds transactions that have been created but not yet
// published, keyed by hash, mirroring the original's transaction cache
// (get_mem_transactions) that sign_transaction and publish_transaction
// operate against. Each staged transaction is also mirrored to a
// pretty-printed JSON file under dir/<hash>.json, the way the teacher's
// core/node.go persists its own on-disk state with encoding/json rather
// than the wire codec, so a node restarted before publishing a
// transaction doesn't lose it.
type memTxPool struct {
	mu  sync.RWMutex
	dir string
	txs map[xhash.Hash]*dag.Transaction
}

// newMemTxPool returns an empty pool that persists staged transactions
// under dataDir/mem.
func newMemTxPool(dataDir string) *memTxPool {
	return &memTxPool{dir: filepath.Join(dataDir, "mem"), txs: map[xhash.Hash]*dag.Transaction{}}
}

// loadMemTxPool rebuilds a pool from whatever transaction files survive
// under dataDir/mem, recovering transactions staged before a prior
// restart.
func loadMemTxPool(dataDir string) (*memTxPool, error) {
	p := newMemTxPool(dataDir)

	entries, err := os.ReadDir(p.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return p, nil
		}
		return nil, fmt.Errorf("rpc: failed to read mempool directory %s: %w", p.dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(p.dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("rpc: failed to read staged transaction %s: %w", entry.Name(), err)
		}
		var tx dag.Transaction
		if err := json.Unmarshal(raw, &tx); err != nil {
			return nil, fmt.Errorf("rpc: failed to decode staged transaction %s: %w", entry.Name(), err)
		}
		p.txs[tx.Hash] = &tx
	}

	return p, nil
}

func (p *memTxPool) path(hash xhash.Hash) string {
	return filepath.Join(p.dir, hash.String()+".json")
}

func (p *memTxPool) put(tx *dag.Transaction) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := os.MkdirAll(p.dir, 0o700); err != nil {
		return fmt.Errorf("rpc: failed to create mempool directory: %w", err)
	}
	raw, err := json.MarshalIndent(tx, "", "  ")
	if err != nil {
		return fmt.Errorf("rpc: failed to encode staged transaction %s: %w", tx.Hash, err)
	}
	if err := os.WriteFile(p.path(tx.Hash), raw, 0o600); err != nil {
		return fmt.Errorf("rpc: failed to write staged transaction %s: %w", tx.Hash, err)
	}

	p.txs[tx.Hash] = tx
	return nil
}

func (p *memTxPool) get(hash xhash.Hash) (*dag.Transaction, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	tx, ok := p.txs[hash]
	return tx, ok
}

func (p *memTxPool) delete(hash xhash.Hash) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	delete(p.txs, hash)
	if err := os.Remove(p.path(hash)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("rpc: failed to remove staged transaction %s: %w", hash, err)
	}
	return nil
}

func (p *memTxPool) hashes() []xhash.Hash {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]xhash.Hash, 0, len(p.txs))
	for h := range p.txs {
		out = append(out, h)
	}
	return out
}
