// Package quic carries the tandem protocol over a QUIC connection: one
// bidirectional stream, each mux frame length-prefixed so the stream
// regains the message boundaries a websocket gives for free. TLS is
// part of QUIC itself, so the link is encrypted by construction;
// identity is a self-signed certificate whose fingerprint peers pin out
// of band.
package quic

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/btcsuite/btcutil/base58"
	"golang.org/x/crypto/sha3"
)

// NextProto is the ALPN protocol identifier both ends must offer.
const NextProto = "tandem/1"

// certValidity is how long a generated certificate lives. Identities
// are ephemeral per process; pinning binds trust to the key, not the
// certificate lifetime.
const certValidity = 7 * 24 * time.Hour

// Identity is a self-signed ed25519 certificate presented to the
// counterpart during the QUIC handshake.
type Identity struct {
	cert        tls.Certificate
	fingerprint string
}

// NewIdentity generates a fresh ed25519 key pair and self-signed
// certificate.
func NewIdentity() (*Identity, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("quic: generate key: %w", err)
	}

	serialLimit := new(big.Int).Lsh(big.NewInt(1), 128)
	serial, err := rand.Int(rand.Reader, serialLimit)
	if err != nil {
		return nil, fmt.Errorf("quic: generate serial: %w", err)
	}

	template := x509.Certificate{
		SerialNumber: serial,
		// Backdated one second for peers with badly synced clocks.
		NotBefore:             time.Now().Add(-time.Second),
		NotAfter:              time.Now().Add(certValidity),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth, x509.ExtKeyUsageClientAuth},
		BasicConstraintsValid: true,
	}
	der, err := x509.CreateCertificate(rand.Reader, &template, &template, pub, priv)
	if err != nil {
		return nil, fmt.Errorf("quic: create certificate: %w", err)
	}

	leaf, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, fmt.Errorf("quic: parse certificate: %w", err)
	}

	return &Identity{
		cert: tls.Certificate{
			Certificate: [][]byte{der},
			PrivateKey:  priv,
			Leaf:        leaf,
		},
		fingerprint: fingerprintFromSPKI(leaf.RawSubjectPublicKeyInfo),
	}, nil
}

// Fingerprint returns the identity's stable public handle:
// "T" + base58(SHA3-512(SPKI DER)). Exchange it out of band and pin it
// with WithPinnedPeer.
func (id *Identity) Fingerprint() string {
	return id.fingerprint
}

// fingerprintFromSPKI hashes a certificate's SubjectPublicKeyInfo. The
// hash covers the key, not the certificate, so re-issuing a certificate
// for the same key keeps the fingerprint.
func fingerprintFromSPKI(spkiDER []byte) string {
	hasher := sha3.New512()
	hasher.Write(spkiDER)
	return "T" + base58.Encode(hasher.Sum(nil))
}

// CertificateFingerprint returns the fingerprint of an arbitrary
// certificate, as used for pinning checks.
func CertificateFingerprint(cert *x509.Certificate) string {
	return fingerprintFromSPKI(cert.RawSubjectPublicKeyInfo)
}

// pinVerifier rejects any peer whose leaf certificate does not hash to
// want. Used as tls.Config.VerifyPeerCertificate, which runs even with
// chain verification disabled.
func pinVerifier(want string) func(rawCerts [][]byte, _ [][]*x509.Certificate) error {
	return func(rawCerts [][]byte, _ [][]*x509.Certificate) error {
		if len(rawCerts) == 0 {
			return errors.New("quic: peer presented no certificate")
		}
		cert, err := x509.ParseCertificate(rawCerts[0])
		if err != nil {
			return fmt.Errorf("quic: parse peer certificate: %w", err)
		}
		if got := CertificateFingerprint(cert); got != want {
			return fmt.Errorf("quic: peer fingerprint mismatch: got %s, want %s", got, want)
		}
		return nil
	}
}
