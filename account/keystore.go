// Package account provides the out-of-core collaborator the ledger needs
// to turn a stored secret into a signing key: generating a mnemonic-backed
// Ed25519 keypair and persisting it encrypted at rest. This is
// deliberately thin — account file formats, multi-account wallets, and key
// rotation are out of scope (spec §1, §6) — it exists only so examples and
// tests can produce a real signing key without hand-rolling one. Grounded
// on the teacher's GenerateEd25519Keys in shared/transaction.go for the
// bip39/pbkdf2 derivation and its AES helpers for at-rest encryption.
package account

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha512"
	"errors"
	"fmt"
	"os"

	"github.com/andromeda-dag/node/xsig"
	"github.com/tyler-smith/go-bip39"
	"golang.org/x/crypto/pbkdf2"
)

// Keystore is the minimal contract account-management collaborators need:
// produce a signing key for an address, and persist/recover key material
// across restarts.
type Keystore interface {
	Generate() (ed25519.PrivateKey, string, error)
	Save(mnemonic string) error
	Load() (ed25519.PrivateKey, error)
}

// DeriveKey reproduces the teacher's mnemonic-to-Ed25519 derivation:
// bip39 seed, PBKDF2-SHA512 stretch, then seed the Ed25519 key generator
// with the result.
func DeriveKey(mnemonic string) (ed25519.PrivateKey, error) {
	seed := bip39.NewSeed(mnemonic, "")
	key := pbkdf2.Key(seed, []byte("ed25519 seed"), 2048, 32, sha512.New)

	_, priv, err := ed25519.GenerateKey(bytes.NewReader(key))
	if err != nil {
		return nil, fmt.Errorf("account: failed to derive key: %w", err)
	}
	return priv, nil
}

// GenerateMnemonic produces a new 24-word bip39 mnemonic.
func GenerateMnemonic() (string, error) {
	entropy, err := bip39.NewEntropy(256)
	if err != nil {
		return "", err
	}
	return bip39.NewMnemonic(entropy)
}

// Address returns the Address derived from priv's public half.
func Address(priv ed25519.PrivateKey) xsig.Address {
	return xsig.AddressFromPublicKey(priv.Public().(ed25519.PublicKey))
}

// FileKeystore persists a single account's mnemonic, AES-GCM-encrypted
// under a passphrase-derived key, at a fixed path.
type FileKeystore struct {
	path       string
	passphrase []byte
}

// NewFileKeystore returns a keystore that reads and writes its encrypted
// mnemonic at path, encrypted under passphrase.
func NewFileKeystore(path string, passphrase []byte) *FileKeystore {
	return &FileKeystore{path: path, passphrase: passphrase}
}

// Generate creates a fresh mnemonic and its derived key, without
// persisting it; call Save separately to write it to disk.
func (k *FileKeystore) Generate() (ed25519.PrivateKey, string, error) {
	mnemonic, err := GenerateMnemonic()
	if err != nil {
		return nil, "", err
	}
	priv, err := DeriveKey(mnemonic)
	if err != nil {
		return nil, "", err
	}
	return priv, mnemonic, nil
}

// Save encrypts mnemonic under the keystore's passphrase and writes it to
// disk, creating the file if necessary.
func (k *FileKeystore) Save(mnemonic string) error {
	ciphertext, err := encrypt(k.passphrase, []byte(mnemonic))
	if err != nil {
		return err
	}
	return os.WriteFile(k.path, ciphertext, 0o600)
}

// Load reads and decrypts the keystore's stored mnemonic and derives its
// Ed25519 key.
func (k *FileKeystore) Load() (ed25519.PrivateKey, error) {
	ciphertext, err := os.ReadFile(k.path)
	if err != nil {
		return nil, fmt.Errorf("account: failed to read keystore: %w", err)
	}
	plaintext, err := decrypt(k.passphrase, ciphertext)
	if err != nil {
		return nil, err
	}
	return DeriveKey(string(plaintext))
}

func aesKeyFrom(passphrase []byte) []byte {
	key := pbkdf2.Key(passphrase, []byte("andromeda keystore"), 4096, 32, sha512.New)
	return key
}

func encrypt(passphrase, plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(aesKeyFrom(passphrase))
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func decrypt(passphrase, ciphertext []byte) ([]byte, error) {
	block, err := aes.NewCipher(aesKeyFrom(passphrase))
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("account: ciphertext too short")
	}
	nonce, body := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	return gcm.Open(nil, nonce, body, nil)
}
