package engine

import (
	"crypto/sha256"
	"encoding/hex"
	"hash"
)

// DomainGenerated prefixes digests of generated file content.
// The version suffix leaves room for a future algorithm change.
const DomainGenerated = "tango/generated/v1"

// newDigest starts a SHA-256 with domain separation:
// SHA256(domain + 0x00 + data).
func newDigest(domain string) hash.Hash {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	return h
}

func sumHex(h hash.Hash) string {
	return hex.EncodeToString(h.Sum(nil))
}

// Digest returns the digest of data as it would be recorded for a
// generated file.
func Digest(data []byte) string {
	h := newDigest(DomainGenerated)
	h.Write(data)
	return sumHex(h)
}
