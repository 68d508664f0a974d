package x509ext

import (
	"fmt"
	"iter"

	"github.com/certcat/x509ext/der"
)

// OCSPNoCheckExtension tells OCSP clients not to check the revocation
// status of an OCSP responder certificate, as described in RFC6960 4.2.2.2.1.
//
// Only the presence and criticality of the extension carry meaning. The
// value is always empty; the NULL from the RFC is not encoded.
type OCSPNoCheckExtension struct {
	Extension
}

func NewOCSPNoCheckExtension(critical bool) *OCSPNoCheckExtension {
	return &OCSPNoCheckExtension{
		Extension: Extension{
			id:       OIDOCSPNoCheck,
			critical: critical,
			value:    []byte{},
		},
	}
}

// OCSPNoCheckFromExtension converts a decoded Extension. The value may be
// empty or a DER NULL; either way it becomes empty.
func OCSPNoCheckFromExtension(e *Extension) (*OCSPNoCheckExtension, error) {
	if !e.id.Equal(OIDOCSPNoCheck) {
		return nil, fmt.Errorf("%w: %s is not OCSP no check", ErrMalformedExtension, e.id)
	}
	if len(e.value) != 0 {
		v, err := der.Parse(e.value)
		if err != nil {
			return nil, fmt.Errorf("%w: OCSP no check value: %v", ErrMalformedExtension, err)
		}
		if err := v.Null(); err != nil {
			return nil, fmt.Errorf("%w: OCSP no check value: %v", ErrMalformedExtension, err)
		}
	}
	return NewOCSPNoCheckExtension(e.critical), nil
}

func ParseOCSPNoCheckExtension(v *der.Value) (*OCSPNoCheckExtension, error) {
	e, err := ParseExtension(v)
	if err != nil {
		return nil, err
	}
	return OCSPNoCheckFromExtension(e)
}

// Decode replaces e with the OCSPNoCheck extension in v. On error e is
// left unchanged.
func (e *OCSPNoCheckExtension) Decode(v *der.Value) error {
	parsed, err := ParseOCSPNoCheckExtension(v)
	if err != nil {
		return err
	}
	*e = *parsed
	return nil
}

func (e *OCSPNoCheckExtension) Get(name string) (any, error) {
	return nil, fmt.Errorf("%w: %s has no attribute %q", ErrUnsupportedOperation, e.Name(), name)
}

func (e *OCSPNoCheckExtension) Set(name string, _ any) error {
	return fmt.Errorf("%w: %s has no attribute %q", ErrUnsupportedOperation, e.Name(), name)
}

func (e *OCSPNoCheckExtension) Delete(name string) error {
	return fmt.Errorf("%w: %s has no attribute %q", ErrUnsupportedOperation, e.Name(), name)
}

func (e *OCSPNoCheckExtension) Elements() iter.Seq[string] {
	return noElements
}

func (e *OCSPNoCheckExtension) Name() string {
	return "OCSPNoCheck"
}

func (e *OCSPNoCheckExtension) String() string {
	return e.header() + "\nOCSPNoCheck"
}
