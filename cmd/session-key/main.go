// Package main provides a one-shot utility for session key generation.
//
// It emits the asymmetric keypair used to sign auth session tokens.
package main

import (
	"os"

	"github.com/openpreview/preprint.review/internal/platform/config"
	"github.com/openpreview/preprint.review/internal/tools/grantkey"
)

func main() {
	if err := grantkey.Run("PREPRINT_REVIEW_AUTH_SESSION", os.Stdout, nil); err != nil {
		config.Exitf("generate session key: %v", err)
	}
}
