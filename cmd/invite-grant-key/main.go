// Package main provides a one-shot utility for invite-grant key generation.
//
// It emits the asymmetric keypair used to sign review invite grants.
package main

import (
	"os"

	"github.com/openpreview/preprint.review/internal/platform/config"
	"github.com/openpreview/preprint.review/internal/tools/grantkey"
)

func main() {
	if err := grantkey.Run("PREPRINT_REVIEW_INVITE_GRANT", os.Stdout, nil); err != nil {
		config.Exitf("generate invite grant key: %v", err)
	}
}
