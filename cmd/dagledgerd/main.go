// Command dagledgerd runs a single ledger node: it opens (or creates) a
// local graph store, joins the DHT-based sync network, and serves the DAG
// RPC API over HTTP. Configuration and startup sequencing follow the
// teacher's cmd/thrylosnode/main.go: godotenv-loaded environment
// variables, fatal on missing required config, then wire the pieces and
// block serving HTTP.
package main

import (
	"context"
	"crypto/ed25519"
	"log"
	"math/big"
	"net/http"
	"os"
	"path/filepath"

	"github.com/andromeda-dag/node/account"
	"github.com/andromeda-dag/node/dag"
	"github.com/andromeda-dag/node/p2pnet"
	"github.com/andromeda-dag/node/proposal"
	"github.com/andromeda-dag/node/rpc"
	"github.com/andromeda-dag/node/syncer"
	"github.com/andromeda-dag/node/xhash"
	"github.com/andromeda-dag/node/xsig"
	"github.com/joho/godotenv"
)

func main() {
	envPath := os.Getenv("DAGLEDGER_ENV_PATH")
	if envPath == "" {
		envPath = ".env"
	}
	if err := godotenv.Load(envPath); err != nil {
		log.Printf("no .env file loaded from %s: %v", envPath, err)
	}

	httpAddress := os.Getenv("HTTP_NODE_ADDRESS")
	if httpAddress == "" {
		httpAddress = "127.0.0.1:8080"
	}

	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		log.Fatal("DATA_DIR environment variable is not set")
	}
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		log.Fatalf("failed to resolve data directory: %v", err)
	}
	log.Printf("using ledger data directory: %s", absDataDir)

	keystorePath := os.Getenv("KEYSTORE_PATH")
	if keystorePath == "" {
		keystorePath = filepath.Join(absDataDir, "keystore.enc")
	}
	passphrase := os.Getenv("KEYSTORE_PASSPHRASE")
	if passphrase == "" {
		log.Fatal("KEYSTORE_PASSPHRASE environment variable is not set")
	}

	priv, err := loadOrCreateKey(keystorePath, []byte(passphrase))
	if err != nil {
		log.Fatalf("failed to load node key: %v", err)
	}
	addr := xsig.AddressFromPublicKey(priv.Public().(ed25519.PublicKey))
	log.Printf("node address: %s", addr)

	store, err := dag.OpenStore(filepath.Join(absDataDir, "graph"))
	if err != nil {
		log.Fatalf("failed to open graph store: %v", err)
	}
	defer store.Close()

	g, err := dag.ReadGraph(store, false)
	if err != nil {
		log.Fatalf("failed to load graph from disk: %v", err)
	}
	if g.Len() == 0 {
		genesisValue := mustBigInt(os.Getenv("GENESIS_VALUE"), 1_000_000)
		genesis := dag.NewTransaction(0, addr, addr, genesisValue, nil, []xhash.Hash{xhash.Zero})
		if err := dag.Sign(genesis, priv); err != nil {
			log.Fatalf("failed to sign genesis transaction: %v", err)
		}
		g.ResetToGenesis(genesis)
		log.Printf("seeded genesis node %s", genesis.Hash)
	}
	g.Attach(store)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	host, err := p2pnet.New(ctx, p2pnet.DefaultConfig())
	if err != nil {
		log.Fatalf("failed to start p2p host: %v", err)
	}
	defer host.Close()

	system := proposal.NewSystem(g, priv)
	p2pDHT := syncer.NewP2PDHT(host.DHT())
	machine := syncer.NewMachine(p2pDHT, system, host.PeerCount)
	ticker := syncer.NewTicker(machine, syncer.DefaultTickerConfig())
	ticker.Start(ctx)
	defer ticker.Stop()

	service, err := rpc.NewService(system, machine, absDataDir)
	if err != nil {
		log.Fatalf("failed to load staged transactions: %v", err)
	}
	mux := http.NewServeMux()
	service.RegisterHandlers(mux)

	log.Printf("serving DAG RPC API on %s", httpAddress)
	if err := http.ListenAndServe(httpAddress, mux); err != nil {
		log.Fatalf("http server exited: %v", err)
	}
}

func loadOrCreateKey(path string, passphrase []byte) (ed25519.PrivateKey, error) {
	ks := account.NewFileKeystore(path, passphrase)
	if _, err := os.Stat(path); err == nil {
		return ks.Load()
	}

	priv, mnemonic, err := ks.Generate()
	if err != nil {
		return nil, err
	}
	if err := ks.Save(mnemonic); err != nil {
		return nil, err
	}
	return priv, nil
}

func mustBigInt(s string, fallback int64) *big.Int {
	if s == "" {
		return big.NewInt(fallback)
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		log.Fatalf("invalid GENESIS_VALUE: %q", s)
	}
	return v
}
