// Package credentials hashes and verifies account passwords and checks the
// shape of emails and passwords supplied by clients.
package credentials

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyPassword = errors.New("password must not be empty")
	ErrUnknownDigest = errors.New("unrecognized password digest")
	ErrUnknownHasher = errors.New("unknown password hasher")
)

// Hasher turns a plaintext password into a stored digest and checks a
// plaintext against a digest it produced.
type Hasher interface {
	Hash(plain string) (string, error)
	Compare(digest, plain string) (bool, error)
}

// NewHasher builds the MultiHasher used by the service. name selects the
// algorithm for new digests; all known formats remain verifiable.
func NewHasher(name string, bcryptCost int) (*MultiHasher, error) {
	var primary Hasher
	switch strings.ToLower(name) {
	case "", "bcrypt":
		primary = NewBcryptHasher(bcryptCost)
	case "argon2", "argon2id":
		primary = NewArgon2Hasher()
	case "sha1", "legacy":
		primary = LegacySHA1Hasher{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownHasher, name)
	}
	return NewMultiHasher(primary), nil
}

// MultiHasher hashes with a primary algorithm and compares against whichever
// algorithm produced the stored digest.
type MultiHasher struct {
	primary Hasher
	bcrypt  *BcryptHasher
	argon2  *Argon2Hasher
	legacy  LegacySHA1Hasher
}

func NewMultiHasher(primary Hasher) *MultiHasher {
	m := &MultiHasher{
		primary: primary,
		bcrypt:  NewBcryptHasher(0),
		argon2:  NewArgon2Hasher(),
	}
	if b, ok := primary.(*BcryptHasher); ok {
		m.bcrypt = b
	}
	if a, ok := primary.(*Argon2Hasher); ok {
		m.argon2 = a
	}
	return m
}

func (m *MultiHasher) Hash(plain string) (string, error) {
	return m.primary.Hash(plain)
}

func (m *MultiHasher) Compare(digest, plain string) (bool, error) {
	h, err := m.detect(digest)
	if err != nil {
		return false, err
	}
	return h.Compare(digest, plain)
}

// NeedsRehash reports whether digest was produced by an algorithm other than
// the primary one.
func (m *MultiHasher) NeedsRehash(digest string) bool {
	h, err := m.detect(digest)
	if err != nil {
		return false
	}
	switch m.primary.(type) {
	case *BcryptHasher:
		return h != Hasher(m.bcrypt)
	case *Argon2Hasher:
		return h != Hasher(m.argon2)
	case LegacySHA1Hasher:
		return !isLegacyDigest(digest)
	}
	return false
}

func (m *MultiHasher) detect(digest string) (Hasher, error) {
	switch {
	case isBcryptDigest(digest):
		return m.bcrypt, nil
	case strings.HasPrefix(digest, argon2Prefix):
		return m.argon2, nil
	case isLegacyDigest(digest):
		return m.legacy, nil
	}
	return nil, ErrUnknownDigest
}
