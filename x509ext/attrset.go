// Package x509ext builds and parses X.509 certificate extensions.
//
// Every extension is an Extension (identifier, criticality flag and the
// DER encoded value) plus whatever typed fields the concrete extension
// decodes out of that value. Typed extensions implement CertAttrSet so
// that a certificate container can treat them uniformly.
package x509ext

import (
	"errors"
	"iter"

	"github.com/certcat/x509ext/der"
)

var (
	// ErrMalformedExtension is returned when a well-formed DER value has the wrong shape for an extension.
	ErrMalformedExtension = errors.New("x509ext: malformed extension")

	// ErrUnknownAttribute is returned for an attribute name the CertAttrSet does not know.
	ErrUnknownAttribute = errors.New("x509ext: unknown attribute")

	// ErrUnsupportedOperation is returned by CertAttrSets with no addressable attributes.
	ErrUnsupportedOperation = errors.New("x509ext: unsupported operation")

	// ErrInvalidArgument is returned for nil or out of domain arguments.
	ErrInvalidArgument = errors.New("x509ext: invalid argument")

	// ErrIndexOutOfRange is returned for a GeneralSubtrees index outside [0, Len()).
	ErrIndexOutOfRange = errors.New("x509ext: index out of range")
)

// CertAttrSet is implemented by certificate fields and extensions that
// expose named sub-attributes.
type CertAttrSet interface {
	// Get returns the named attribute.
	Get(name string) (any, error)
	// Set replaces the named attribute.
	Set(name string, value any) error
	// Delete clears the named attribute.
	Delete(name string) error
	// Elements yields the attribute names known to this set.
	Elements() iter.Seq[string]
	// Name identifies the kind of attribute set, e.g. "NameConstraints".
	Name() string
	// Encode writes the DER encoding to out.
	Encode(out *der.OutputStream) error
	// String is a human readable description, for diagnostics only.
	String() string
}

func noElements(func(string) bool) {}
