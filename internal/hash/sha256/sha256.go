// Package sha256 computes content digests of written artifacts.
package sha256

import (
	"crypto/sha256"
	"encoding/hex"
	"hash"
)

// Digest accumulates a SHA-256 digest of everything written to it.
// It is meant to sit behind an io.MultiWriter next to the real destination.
type Digest struct {
	h hash.Hash
	n int64
}

// New returns an empty Digest.
func New() *Digest {
	return &Digest{h: sha256.New()}
}

// Write implements io.Writer. It never fails.
func (d *Digest) Write(p []byte) (int, error) {
	n, _ := d.h.Write(p)
	d.n += int64(n)
	return n, nil
}

// Sum returns the hex digest of the bytes written so far.
func (d *Digest) Sum() string {
	return hex.EncodeToString(d.h.Sum(nil))
}

// Size reports how many bytes were written.
func (d *Digest) Size() int64 {
	return d.n
}

// Hash returns the hex digest of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
