package grantkey

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Run generates an ed25519 key pair and writes export statements using the
// provided environment variable prefix, e.g. PREPRINT_REVIEW_INVITE_GRANT.
func Run(envPrefix string, out io.Writer, reader io.Reader) error {
	if out == nil {
		return errors.New("output is required")
	}
	envPrefix = strings.TrimSpace(envPrefix)
	if envPrefix == "" {
		return errors.New("env prefix is required")
	}
	if reader == nil {
		reader = rand.Reader
	}
	publicKey, privateKey, err := ed25519.GenerateKey(reader)
	if err != nil {
		return fmt.Errorf("generate key pair: %w", err)
	}
	if _, err := fmt.Fprintf(out, "export %s_PRIVATE_KEY=%s\n", envPrefix, base64.RawStdEncoding.EncodeToString(privateKey)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(out, "export %s_PUBLIC_KEY=%s\n", envPrefix, base64.RawStdEncoding.EncodeToString(publicKey)); err != nil {
		return err
	}
	return nil
}
