package credentials

import (
	"crypto/sha1"
	"crypto/subtle"
	"encoding/hex"
)

// LegacySHA1Hasher reproduces the unsalted SHA-1 hex digests of accounts
// created before bcrypt. Identical passwords produce identical digests, so
// it should only be used to verify and then upgrade old records.
type LegacySHA1Hasher struct{}

func (LegacySHA1Hasher) Hash(plain string) (string, error) {
	if plain == "" {
		return "", ErrEmptyPassword
	}
	sum := sha1.Sum([]byte(plain))
	return hex.EncodeToString(sum[:]), nil
}

func (l LegacySHA1Hasher) Compare(digest, plain string) (bool, error) {
	candidate, err := l.Hash(plain)
	if err != nil {
		return false, nil
	}
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(digest)) == 1, nil
}

func isLegacyDigest(digest string) bool {
	if len(digest) != sha1.Size*2 {
		return false
	}
	_, err := hex.DecodeString(digest)
	return err == nil
}
