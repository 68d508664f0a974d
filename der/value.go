// Package der is a small DER codec for certificate extension values.
//
// Reading and writing is delegated to cryptobyte, which only accepts the
// strict DER subset: low tag numbers, definite and minimal lengths. A Value
// wraps one decoded element and, for constructed tags, a cursor over its
// children. An OutputStream accumulates encoded elements.
package der

import (
	"bytes"
	encoding_asn1 "encoding/asn1"
	"errors"
	"fmt"

	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/crypto/cryptobyte/asn1"
)

var (
	// ErrMalformedEncoding is returned when bytes violate DER tag or length rules.
	ErrMalformedEncoding = errors.New("der: malformed encoding")

	// ErrTruncatedEncoding is returned when a constructed value ends inside a child.
	// It matches ErrMalformedEncoding with errors.Is.
	ErrTruncatedEncoding = fmt.Errorf("%w: truncated", ErrMalformedEncoding)
)

const classConstructed = 0x20

// Value is one DER element: tag, content and the complete encoding.
// For constructed tags it also carries a cursor over the children, which
// Next advances. Everything else is immutable.
type Value struct {
	tag     asn1.Tag
	raw     cryptobyte.String
	content cryptobyte.String
	cursor  cryptobyte.String
}

// Parse decodes exactly one element from b. Trailing bytes are an error.
// The input is copied, so the caller may reuse b.
func Parse(b []byte) (*Value, error) {
	s := cryptobyte.String(bytes.Clone(b))
	v, err := ReadValue(&s)
	if err != nil {
		return nil, err
	}
	if !s.Empty() {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrMalformedEncoding, len(s))
	}
	return v, nil
}

// ReadValue consumes one element from s. The returned Value aliases s.
func ReadValue(s *cryptobyte.String) (*Value, error) {
	var raw cryptobyte.String
	var tag asn1.Tag
	if !s.ReadAnyASN1Element(&raw, &tag) {
		return nil, fmt.Errorf("%w: no complete element in %d bytes", ErrMalformedEncoding, len(*s))
	}

	var content cryptobyte.String
	elem := raw
	// Already validated by ReadAnyASN1Element.
	elem.ReadAnyASN1(&content, &tag)

	v := &Value{
		tag:     tag,
		raw:     raw,
		content: content,
	}
	if v.IsConstructed() {
		v.cursor = content
	}
	return v, nil
}

func (v *Value) Tag() asn1.Tag {
	return v.tag
}

func (v *Value) IsConstructed() bool {
	return v.tag&classConstructed != 0
}

// Content returns the content octets, without tag and length.
func (v *Value) Content() []byte {
	return bytes.Clone(v.content)
}

// Bytes returns the complete encoding of v.
func (v *Value) Bytes() []byte {
	return bytes.Clone(v.raw)
}

// Clone returns a copy of v with its child cursor back at the first child.
// Decoders work on a clone so that the caller's cursor is left alone.
func (v *Value) Clone() *Value {
	c := *v
	if c.IsConstructed() {
		c.cursor = c.content
	}
	return &c
}

// Available is the number of child bytes not yet consumed by Next.
func (v *Value) Available() int {
	return len(v.cursor)
}

// PeekTag reports the tag of the next child without consuming it.
func (v *Value) PeekTag() (asn1.Tag, bool) {
	if len(v.cursor) == 0 {
		return 0, false
	}
	return asn1.Tag(v.cursor[0]), true
}

// Next returns the next child and advances past its full encoding.
func (v *Value) Next() (*Value, error) {
	if !v.IsConstructed() {
		return nil, fmt.Errorf("%w: tag %#x is not constructed", ErrMalformedEncoding, uint8(v.tag))
	}
	if v.cursor.Empty() {
		return nil, fmt.Errorf("%w: no children left in tag %#x", ErrMalformedEncoding, uint8(v.tag))
	}
	child, err := ReadValue(&v.cursor)
	if err != nil {
		return nil, fmt.Errorf("%w: %d bytes left in tag %#x", ErrTruncatedEncoding, len(v.cursor), uint8(v.tag))
	}
	return child, nil
}

func (v *Value) Equal(other *Value) bool {
	if v == nil || other == nil {
		return v == other
	}
	return bytes.Equal(v.raw, other.raw)
}

func (v *Value) Boolean() (bool, error) {
	s := v.raw
	var b bool
	if !s.ReadASN1Boolean(&b) {
		return false, fmt.Errorf("%w: invalid BOOLEAN", ErrMalformedEncoding)
	}
	return b, nil
}

func (v *Value) OctetString() ([]byte, error) {
	s := v.raw
	var out []byte
	if !s.ReadASN1Bytes(&out, asn1.OCTET_STRING) {
		return nil, fmt.Errorf("%w: invalid OCTET STRING", ErrMalformedEncoding)
	}
	return bytes.Clone(out), nil
}

func (v *Value) ObjectIdentifier() (encoding_asn1.ObjectIdentifier, error) {
	s := v.raw
	var oid encoding_asn1.ObjectIdentifier
	if !s.ReadASN1ObjectIdentifier(&oid) {
		return nil, fmt.Errorf("%w: invalid OBJECT IDENTIFIER", ErrMalformedEncoding)
	}
	return oid, nil
}

func (v *Value) Null() error {
	if v.tag != asn1.NULL || len(v.content) != 0 {
		return fmt.Errorf("%w: invalid NULL", ErrMalformedEncoding)
	}
	return nil
}

// Int64WithTag reads an INTEGER carried under an implicit tag.
func (v *Value) Int64WithTag(tag asn1.Tag) (int64, error) {
	s := v.raw
	var out int64
	if !s.ReadASN1Int64WithTag(&out, tag) {
		return 0, fmt.Errorf("%w: invalid INTEGER under tag %#x", ErrMalformedEncoding, uint8(tag))
	}
	return out, nil
}
