// Command dagledger-keys is a minimal account key-management CLI: it can
// generate a new keystore or print the address derived from one. It plays
// the same role as the teacher's cmd/client/main.go — a small standalone
// binary alongside the node daemon — but drives the local account package
// instead of dialing a running node.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/andromeda-dag/node/account"
)

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	switch os.Args[1] {
	case "generate":
		generateCmd(os.Args[2:])
	case "address":
		addressCmd(os.Args[2:])
	default:
		usage()
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: dagledger-keys <generate|address> [flags]")
	os.Exit(1)
}

func generateCmd(args []string) {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	path := fs.String("keystore", "keystore.enc", "path to write the encrypted keystore")
	passphrase := fs.String("passphrase", "", "passphrase to encrypt the keystore under")
	fs.Parse(args)

	if *passphrase == "" {
		log.Fatal("generate: -passphrase is required")
	}

	ks := account.NewFileKeystore(*path, []byte(*passphrase))
	priv, mnemonic, err := ks.Generate()
	if err != nil {
		log.Fatalf("generate: %v", err)
	}
	if err := ks.Save(mnemonic); err != nil {
		log.Fatalf("generate: failed to save keystore: %v", err)
	}

	addr := account.Address(priv)
	fmt.Printf("address:  %s\n", addr)
	fmt.Printf("mnemonic: %s\n", mnemonic)
	fmt.Printf("keystore written to %s\n", *path)
}

func addressCmd(args []string) {
	fs := flag.NewFlagSet("address", flag.ExitOnError)
	path := fs.String("keystore", "keystore.enc", "path to the encrypted keystore")
	passphrase := fs.String("passphrase", "", "passphrase the keystore was encrypted under")
	fs.Parse(args)

	if *passphrase == "" {
		log.Fatal("address: -passphrase is required")
	}

	ks := account.NewFileKeystore(*path, []byte(*passphrase))
	priv, err := ks.Load()
	if err != nil {
		log.Fatalf("address: %v", err)
	}

	fmt.Println(account.Address(priv))
}
