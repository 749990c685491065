package dag

import (
	"sync"

	"github.com/andromeda-dag/node/state"
	"github.com/andromeda-dag/node/xhash"
)

// Graph is the transaction DAG: an append-only list of nodes, a hash to
// index lookup, and the reverse child-edge map that lets a writer find the
// unresolved frontier to build new transactions against. Grounded on
// original_source/src/core/types/graph.rs's Graph, restructured onto a
// badger-backed Store in place of sled and guarded by an RWMutex in the
// teacher's block_producer.go idiom rather than the original's Rust
// ownership model.
type Graph struct {
	mu           sync.RWMutex
	nodes        []*Node
	hashRoutes   map[xhash.Hash]int
	nodeChildren map[xhash.Hash][]xhash.Hash
	store        *Store
}

// NewGraph initializes a graph from a root (genesis) transaction, executing
// it against no prior state to seed the DAG's first node.
func NewGraph(root *Transaction) *Graph {
	entry, _ := state.Execute(nil, root.Data.Sender, root.Data.Recipient, root.Data.Value, root.Data.Nonce)
	g := &Graph{
		hashRoutes:   map[xhash.Hash]int{root.Hash: 0},
		nodeChildren: map[xhash.Hash][]xhash.Hash{},
	}
	g.nodes = []*Node{NewNode(root, entry)}
	return g
}

// ResetToGenesis replaces an empty graph's contents with a freshly-seeded
// genesis node built from root. It is used when a node that starts with no
// local DAG first learns of a peer's root transaction during sync, and
// panics if the graph already has nodes, since genesis installation must
// never clobber existing history.
func (g *Graph) ResetToGenesis(root *Transaction) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.nodes) != 0 {
		panic("dag: ResetToGenesis called on a non-empty graph")
	}

	entry, _ := state.Execute(nil, root.Data.Sender, root.Data.Recipient, root.Data.Value, root.Data.Nonce)
	g.hashRoutes = map[xhash.Hash]int{root.Hash: 0}
	g.nodeChildren = map[xhash.Hash][]xhash.Hash{}
	g.nodes = []*Node{NewNode(root, entry)}
}

// NewEmptyGraph returns a graph with no nodes, ready to receive its
// genesis node via ResetToGenesis. Used by a node that has no local DAG
// yet and is about to learn one from a peer during sync.
func NewEmptyGraph() *Graph {
	return &Graph{
		hashRoutes:   map[xhash.Hash]int{},
		nodeChildren: map[xhash.Hash][]xhash.Hash{},
	}
}

// Attach wires a persistence layer onto an already-constructed graph,
// mirroring read_from_disk's db field.
func (g *Graph) Attach(store *Store) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.store = store
}

// Push appends a new node to the graph and records it as a child of each
// of its transaction's declared parents. It returns the node's index.
func (g *Graph) Push(tx *Transaction, entry *state.Entry) int {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.nodes = append(g.nodes, NewNode(tx, entry))
	index := len(g.nodes) - 1
	g.hashRoutes[tx.Hash] = index

	for _, parent := range tx.Data.Parents {
		g.nodeChildren[parent] = append(g.nodeChildren[parent], tx.Hash)
	}

	return index
}

// Update replaces the node at index in place, e.g. to attach a state
// entry resolved after the node was first pushed.
func (g *Graph) Update(index int, tx *Transaction, entry *state.Entry) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nodes[index] = NewNode(tx, entry)
}

// Len returns the number of nodes in the graph.
func (g *Graph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes)
}

// Get returns the node at index, hydrating its state entry from the
// attached store if the in-memory copy is partial.
func (g *Graph) Get(index int) (*Node, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.getLocked(index)
}

func (g *Graph) getLocked(index int) (*Node, error) {
	node := g.nodes[index]
	if node.StateEntry != nil || g.store == nil {
		return node, nil
	}

	hydrated, ok, err := g.store.LoadNode(index)
	if err != nil {
		return nil, err
	}
	if ok && hydrated.StateEntry != nil {
		node.StateEntry = hydrated.StateEntry
	}
	return node, nil
}

// GetWithHash returns the node whose transaction hash is hash.
func (g *Graph) GetWithHash(hash xhash.Hash) (*Node, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	index, ok := g.hashRoutes[hash]
	if !ok {
		return nil, &NoLookupResults{Key: hash}
	}
	return g.getLocked(index)
}

// GetHeader returns the node at index without attempting to hydrate its
// state entry, mirroring get_pure's "just the header" behavior.
func (g *Graph) GetHeader(index int) (*Node, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if index < 0 || index >= len(g.nodes) {
		return nil, &NoLookupResults{}
	}
	return g.nodes[index], nil
}

// Children returns the known children of the node with the given hash.
func (g *Graph) Children(hash xhash.Hash) []xhash.Hash {
	g.mu.RLock()
	defer g.mu.RUnlock()
	children := g.nodeChildren[hash]
	out := make([]xhash.Hash, len(children))
	copy(out, children)
	return out
}

// Hashes returns every transaction hash currently routed in the graph.
func (g *Graph) Hashes() []xhash.Hash {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]xhash.Hash, 0, len(g.hashRoutes))
	for h := range g.hashRoutes {
		out = append(out, h)
	}
	return out
}

// Contains reports whether hash has already been pushed into the graph.
func (g *Graph) Contains(hash xhash.Hash) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.hashRoutes[hash]
	return ok
}

// ObtainExecutedHead returns the most recently pushed node that carries a
// resolved state entry, scanning from the tail of the node list backward.
// Grounded on DagImpl::create_tx's head lookup in
// original_source/src/p2p/rpc/dag.rs.
func (g *Graph) ObtainExecutedHead() (*Node, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for i := len(g.nodes) - 1; i >= 0; i-- {
		if g.nodes[i].StateEntry != nil {
			return g.nodes[i], true
		}
	}
	return nil, false
}

// UnresolvedChildren returns the children of hash that have not yet had a
// state entry computed for them, i.e. candidate parents for a new
// transaction extending the frontier past hash.
func (g *Graph) UnresolvedChildren(hash xhash.Hash) []xhash.Hash {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var out []xhash.Hash
	for _, child := range g.nodeChildren[hash] {
		index, ok := g.hashRoutes[child]
		if !ok {
			continue
		}
		if g.nodes[index].StateEntry == nil {
			out = append(out, child)
		}
	}
	return out
}

// ResolveParentNodes merges the state entries of the named parent hashes
// into a single combined state.Entry, and returns the per-parent state
// hash alongside it so the caller can build a ReceiptMap. It returns
// ErrStateUnresolved if any named parent's state entry hasn't been
// computed yet. An empty parents list resolves to the empty bootstrap
// entry.
func (g *Graph) ResolveParentNodes(parents []xhash.Hash) (*state.Entry, map[xhash.Hash]xhash.Hash, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if len(parents) == 0 {
		return state.NewEmptyEntry(), map[xhash.Hash]xhash.Hash{}, nil
	}

	entries := make([]*state.Entry, 0, len(parents))
	perParentHash := make(map[xhash.Hash]xhash.Hash, len(parents))

	for _, parentHash := range parents {
		index, ok := g.hashRoutes[parentHash]
		if !ok {
			return nil, nil, &NoLookupResults{Key: parentHash}
		}
		node, err := g.getLocked(index)
		if err != nil {
			return nil, nil, err
		}
		if node.StateEntry == nil {
			return nil, nil, ErrStateUnresolved
		}
		entries = append(entries, node.StateEntry)
		perParentHash[parentHash] = node.StateEntry.Hash
	}

	merged := state.Merge(entries)
	return merged, perParentHash, nil
}
