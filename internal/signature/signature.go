// Package signature implements the elliptic-curve signing scheme used to
// make logbook entries attributable to the student who wrote them.
//
// Signatures are ECDSA over NIST P-256 with SHA-256 digests, serialized
// as the raw 64-byte r||s concatenation in lowercase hex. Keys travel as
// hex too: the private key is the 32-byte scalar, the public key the
// 64-byte uncompressed X||Y coordinates. The package owns no state and
// is safe for concurrent use.
package signature

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
)

const (
	scalarSize    = 32
	signatureSize = 2 * scalarSize
	publicKeySize = 2 * scalarSize
)

var errInvalidKey = errors.New("signature: invalid key material")

// Sign produces a hex-encoded ECDSA signature over message.
func Sign(message []byte, priv *ecdsa.PrivateKey) (string, error) {
	if priv == nil || priv.Curve != elliptic.P256() {
		return "", errInvalidKey
	}

	digest := sha256.Sum256(message)
	r, s, err := ecdsa.Sign(rand.Reader, priv, digest[:])
	if err != nil {
		return "", fmt.Errorf("signature: sign: %w", err)
	}

	sig := make([]byte, signatureSize)
	r.FillBytes(sig[:scalarSize])
	s.FillBytes(sig[scalarSize:])
	return hex.EncodeToString(sig), nil
}

// Verify checks sigHex against message and the student's public key.
// Any malformed input (bad hex, wrong length, off-curve key) yields
// false; verification never errors past this boundary.
func Verify(message []byte, sigHex string, pub *ecdsa.PublicKey) bool {
	if pub == nil || pub.Curve != elliptic.P256() || pub.X == nil || pub.Y == nil {
		return false
	}

	sig, err := hex.DecodeString(sigHex)
	if err != nil || len(sig) != signatureSize {
		return false
	}

	r := new(big.Int).SetBytes(sig[:scalarSize])
	s := new(big.Int).SetBytes(sig[scalarSize:])

	digest := sha256.Sum256(message)
	return ecdsa.Verify(pub, digest[:], r, s)
}

// GenerateKey creates a fresh P-256 keypair.
func GenerateKey() (*ecdsa.PrivateKey, error) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("signature: generate key: %w", err)
	}
	return priv, nil
}

// EncodePrivateKey serializes the private scalar as 32-byte hex.
func EncodePrivateKey(priv *ecdsa.PrivateKey) string {
	scalar := make([]byte, scalarSize)
	priv.D.FillBytes(scalar)
	return hex.EncodeToString(scalar)
}

// DecodePrivateKey restores a private key from its 32-byte hex scalar.
func DecodePrivateKey(scalarHex string) (*ecdsa.PrivateKey, error) {
	scalar, err := hex.DecodeString(scalarHex)
	if err != nil || len(scalar) != scalarSize {
		return nil, errInvalidKey
	}

	curve := elliptic.P256()
	d := new(big.Int).SetBytes(scalar)
	if d.Sign() == 0 || d.Cmp(curve.Params().N) >= 0 {
		return nil, errInvalidKey
	}

	priv := &ecdsa.PrivateKey{D: d}
	priv.Curve = curve
	priv.X, priv.Y = curve.ScalarBaseMult(scalar)
	return priv, nil
}

// EncodePublicKey serializes the public key as 64-byte X||Y hex.
func EncodePublicKey(pub *ecdsa.PublicKey) string {
	raw := make([]byte, publicKeySize)
	pub.X.FillBytes(raw[:scalarSize])
	pub.Y.FillBytes(raw[scalarSize:])
	return hex.EncodeToString(raw)
}

// DecodePublicKey restores a public key from its 64-byte X||Y hex form.
// The point is checked to lie on the curve.
func DecodePublicKey(rawHex string) (*ecdsa.PublicKey, error) {
	raw, err := hex.DecodeString(rawHex)
	if err != nil || len(raw) != publicKeySize {
		return nil, errInvalidKey
	}

	curve := elliptic.P256()
	x := new(big.Int).SetBytes(raw[:scalarSize])
	y := new(big.Int).SetBytes(raw[scalarSize:])
	if !curve.IsOnCurve(x, y) {
		return nil, errInvalidKey
	}

	return &ecdsa.PublicKey{Curve: curve, X: x, Y: y}, nil
}
