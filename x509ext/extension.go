package x509ext

import (
	"bytes"
	encoding_asn1 "encoding/asn1"
	"encoding/hex"
	"fmt"

	"github.com/certcat/x509ext/der"
	"golang.org/x/crypto/cryptobyte/asn1"
	"golang.org/x/exp/slices"
)

var (
	OIDNameConstraints = encoding_asn1.ObjectIdentifier{2, 5, 29, 30}
	OIDOCSPNoCheck     = encoding_asn1.ObjectIdentifier{1, 3, 6, 1, 5, 5, 7, 48, 1, 5}
)

//	Extension  ::=  SEQUENCE  {
//	    extnID      OBJECT IDENTIFIER,
//	    critical    BOOLEAN DEFAULT FALSE,
//	    extnValue   OCTET STRING
//	                -- contains the DER encoding of an ASN.1 value
//	                -- corresponding to the extension type identified
//	                -- by extnID
//	    }
//
// value holds the contents of extnValue. The OCTET STRING wrapper is only
// added by Encode.
type Extension struct {
	id       encoding_asn1.ObjectIdentifier
	critical bool
	value    []byte
}

// NewExtension stores the fields as given. The value is not validated.
func NewExtension(id encoding_asn1.ObjectIdentifier, critical bool, value []byte) *Extension {
	return &Extension{
		id:       slices.Clone(id),
		critical: critical,
		value:    bytes.Clone(value),
	}
}

// ParseExtension decodes an Extension SEQUENCE.
func ParseExtension(v *der.Value) (*Extension, error) {
	if v.Tag() != asn1.SEQUENCE {
		return nil, fmt.Errorf("%w: tag %#x is not a SEQUENCE", ErrMalformedExtension, uint8(v.Tag()))
	}
	extension := v.Clone()

	child, err := extension.Next()
	if err != nil {
		return nil, fmt.Errorf("%w: reading extnID: %v", ErrMalformedExtension, err)
	}
	extnID, err := child.ObjectIdentifier()
	if err != nil {
		return nil, fmt.Errorf("%w: parsing extnID: %v", ErrMalformedExtension, err)
	}

	child, err = extension.Next()
	if err != nil {
		return nil, fmt.Errorf("%w: extension %s: reading extnValue: %v", ErrMalformedExtension, extnID, err)
	}

	critical := false
	if child.Tag() == asn1.BOOLEAN {
		critical, err = child.Boolean()
		if err != nil {
			return nil, fmt.Errorf("%w: extension %s: reading critical bit: %v", ErrMalformedExtension, extnID, err)
		}
		if !critical {
			return nil, fmt.Errorf("%w: extension %s: critical is encoded with its DEFAULT value", ErrMalformedExtension, extnID)
		}

		child, err = extension.Next()
		if err != nil {
			return nil, fmt.Errorf("%w: extension %s: reading extnValue: %v", ErrMalformedExtension, extnID, err)
		}
	}

	extnValue, err := child.OctetString()
	if err != nil {
		return nil, fmt.Errorf("%w: extension %s: parsing extnValue: %v", ErrMalformedExtension, extnID, err)
	}

	if extension.Available() != 0 {
		return nil, fmt.Errorf("%w: extension %s: trailing data", ErrMalformedExtension, extnID)
	}

	return &Extension{
		id:       extnID,
		critical: critical,
		value:    extnValue,
	}, nil
}

// Decode lets Extensions be read with der.DecodeSequenceOf.
func (e *Extension) Decode(v *der.Value) error {
	parsed, err := ParseExtension(v)
	if err != nil {
		return err
	}
	*e = *parsed
	return nil
}

func (e *Extension) ID() encoding_asn1.ObjectIdentifier {
	return slices.Clone(e.id)
}

func (e *Extension) Critical() bool {
	return e.critical
}

func (e *Extension) SetCritical(critical bool) {
	e.critical = critical
}

// Value returns the DER encoded extension value, without the OCTET STRING wrapper.
func (e *Extension) Value() []byte {
	return bytes.Clone(e.value)
}

// Encode writes the Extension SEQUENCE. A false critical flag is omitted.
func (e *Extension) Encode(out *der.OutputStream) error {
	err := out.WriteSequence(func(extension *der.OutputStream) error {
		extension.WriteObjectIdentifier(e.id)
		if e.critical {
			extension.WriteBoolean(true)
		}
		extension.WriteOctetString(e.value)
		return nil
	})
	if err != nil {
		return fmt.Errorf("encoding extension %s: %w", e.id, err)
	}
	return nil
}

func (e *Extension) String() string {
	return fmt.Sprintf("ObjectId: %s Criticality=%t Value=%s", e.id, e.critical, hex.EncodeToString(e.value))
}

func (e *Extension) header() string {
	return fmt.Sprintf("ObjectId: %s Criticality=%t", e.id, e.critical)
}
