// Package pem loads the extensions of PEM encoded certificates.
package pem

import (
	"encoding/pem"
	"fmt"

	"github.com/certcat/x509ext/x509ext"
)

// LoadAll returns the extensions of every CERTIFICATE block in content, one
// entry per certificate. Other block types are skipped.
func LoadAll(content []byte) ([][]*x509ext.Extension, error) {
	var block *pem.Block
	var certs [][]*x509ext.Extension

	for {
		block, content = pem.Decode(content)
		if block == nil {
			return certs, nil
		}
		if block.Type != "CERTIFICATE" {
			// TODO: May want to support loading cert + key files too
			continue
		}

		extensions, err := x509ext.ParseCertificateExtensions(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("certificate %d: %w", len(certs), err)
		}
		certs = append(certs, extensions)
	}
}
