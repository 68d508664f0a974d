package x509ext

import (
	"fmt"

	"github.com/certcat/x509ext/der"
	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/crypto/cryptobyte/asn1"
)

// ParseCertificateExtensions returns the extensions of a DER certificate,
// in the order they appear. Everything else in the certificate is only
// checked for its outer structure. A certificate without extensions
// returns nil.
//
//	Certificate  ::=  SEQUENCE  {
//	  tbsCertificate     TBSCertificate,
//	  signatureAlgorithm AlgorithmIdentifier,
//	  signatureValue     BIT STRING  }
//
//	TBSCertificate  ::=  SEQUENCE  {
//	  version         [0]  EXPLICIT Version DEFAULT v1,
//	  serialNumber         CertificateSerialNumber,
//	  signature            AlgorithmIdentifier,
//	  issuer               Name,
//	  validity             Validity,
//	  subject              Name,
//	  subjectPublicKeyInfo SubjectPublicKeyInfo,
//	  issuerUniqueID  [1]  IMPLICIT UniqueIdentifier OPTIONAL,
//	  subjectUniqueID [2]  IMPLICIT UniqueIdentifier OPTIONAL,
//	  extensions      [3]  EXPLICIT Extensions OPTIONAL
//	  }
func ParseCertificateExtensions(certDER []byte) ([]*Extension, error) {
	input := cryptobyte.String(certDER)

	var certificate cryptobyte.String
	if !input.ReadASN1(&certificate, asn1.SEQUENCE) {
		return nil, fmt.Errorf("%w: failed to read Certificate Sequence", der.ErrMalformedEncoding)
	}
	if !input.Empty() {
		return nil, fmt.Errorf("%w: extra data after certificate", der.ErrMalformedEncoding)
	}

	var tbsCertificate cryptobyte.String
	if !certificate.ReadASN1(&tbsCertificate, asn1.SEQUENCE) {
		return nil, fmt.Errorf("%w: failed to read tbsCertificate", der.ErrMalformedEncoding)
	}

	fields := []struct {
		name     string
		tag      asn1.Tag
		optional bool
	}{
		{"version", asn1.Tag(0).Constructed().ContextSpecific(), true},
		{"serialNumber", asn1.INTEGER, false},
		{"signature", asn1.SEQUENCE, false},
		{"issuer", asn1.SEQUENCE, false},
		{"validity", asn1.SEQUENCE, false},
		{"subject", asn1.SEQUENCE, false},
		{"subjectPublicKeyInfo", asn1.SEQUENCE, false},
		{"issuerUniqueID", asn1.Tag(1).ContextSpecific(), true},
		{"subjectUniqueID", asn1.Tag(2).ContextSpecific(), true},
	}
	for _, field := range fields {
		var ok bool
		if field.optional {
			ok = tbsCertificate.SkipOptionalASN1(field.tag)
		} else {
			ok = tbsCertificate.SkipASN1(field.tag)
		}
		if !ok {
			return nil, fmt.Errorf("%w: reading %s", der.ErrMalformedEncoding, field.name)
		}
	}

	var extensions cryptobyte.String
	var hasExtensions bool
	if !tbsCertificate.ReadOptionalASN1(&extensions, &hasExtensions, asn1.Tag(3).Constructed().ContextSpecific()) {
		return nil, fmt.Errorf("%w: failed to read Extensions", der.ErrMalformedEncoding)
	}

	if !tbsCertificate.Empty() {
		return nil, fmt.Errorf("%w: extra data after tbsCertificate", der.ErrMalformedEncoding)
	}

	if !hasExtensions {
		return nil, nil
	}

	// Extensions  ::=  SEQUENCE SIZE (1..MAX) OF Extension
	sequence, err := der.ReadValue(&extensions)
	if err != nil {
		return nil, fmt.Errorf("parsing extensions: %w", err)
	}
	if !extensions.Empty() {
		return nil, fmt.Errorf("%w: extra data after Extensions", der.ErrMalformedEncoding)
	}

	return der.DecodeSequenceOf[Extension](sequence, asn1.SEQUENCE)
}
