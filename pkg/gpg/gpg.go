package gpg

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/go-logr/logr"
)

// Verifier checks a detached signature over a payload.
type Verifier interface {
	Verify(ctx context.Context, data, signature []byte) error
}

// Advisory accepts every signature. It exists so that signature
// handling has a seam without enforcing anything; callers that need
// real verification must install a Keyring.
type Advisory struct{}

func (Advisory) Verify(ctx context.Context, _, _ []byte) error {
	log := logr.FromContextOrDiscard(ctx)
	log.Info("signature verification is advisory only, accepting without checking")
	return nil
}

// Keyring verifies detached signatures against a set of trusted
// public keys.
type Keyring struct {
	ring openpgp.EntityList
}

// NewKeyring loads a keyring from path. Armored and binary keyrings
// are both accepted.
func NewKeyring(path string) (*Keyring, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	defer f.Close()

	ring, err := openpgp.ReadArmoredKeyRing(f)
	if err != nil {
		if _, err := f.Seek(0, 0); err != nil {
			return nil, fmt.Errorf("rewinding keyring: %w", err)
		}
		ring, err = openpgp.ReadKeyRing(f)
		if err != nil {
			return nil, fmt.Errorf("reading keyring: %w", err)
		}
	}
	return &Keyring{ring: ring}, nil
}

func (k *Keyring) Verify(ctx context.Context, data, signature []byte) error {
	log := logr.FromContextOrDiscard(ctx)

	signer, err := openpgp.CheckDetachedSignature(k.ring, bytes.NewReader(data), bytes.NewReader(signature), nil)
	if err != nil {
		// .sig companions may be armored rather than binary
		signer, err = openpgp.CheckArmoredDetachedSignature(k.ring, bytes.NewReader(data), bytes.NewReader(signature), nil)
	}
	if err != nil {
		return fmt.Errorf("checking detached signature: %w", err)
	}
	log.V(1).Info("verified detached signature", "signer", signer.PrimaryKey.KeyIdString())
	return nil
}
