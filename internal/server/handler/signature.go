package handler

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/google/go-github/v73/github"
)

const (
	// SignatureHeader carries the HMAC-SHA256 of the request body.
	SignatureHeader = "X-Hub-Signature-256"
	signaturePrefix = "sha256="
)

// ErrInvalidSignature is returned for a delivery whose HMAC does not match the shared secret.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// Sign returns the X-Hub-Signature-256 value GitHub sends for payload.
func Sign(secret, payload []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(payload)
	return signaturePrefix + hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks an X-Hub-Signature-256 header against the raw request body.
// Only SHA-256 signatures are accepted and an empty secret rejects everything.
func VerifySignature(signature string, payload, secret []byte) error {
	if len(secret) == 0 {
		return fmt.Errorf("%w: webhook secret is not configured", ErrInvalidSignature)
	}
	if !strings.HasPrefix(signature, signaturePrefix) {
		return fmt.Errorf("%w: missing %s signature", ErrInvalidSignature, signaturePrefix)
	}
	if err := github.ValidateSignature(signature, payload, secret); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}
	return nil
}
