package der

import (
	encoding_asn1 "encoding/asn1"
	"fmt"

	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/crypto/cryptobyte/asn1"
)

// OutputStream accumulates DER elements. The zero value is ready to use.
//
// Errors from individual writes (an invalid OID, for example) are held
// until Bytes is called, the way cryptobyte.Builder does it.
type OutputStream struct {
	b *cryptobyte.Builder
}

func NewOutputStream() *OutputStream {
	return &OutputStream{b: cryptobyte.NewBuilder(nil)}
}

func (o *OutputStream) builder() *cryptobyte.Builder {
	if o.b == nil {
		o.b = cryptobyte.NewBuilder(nil)
	}
	return o.b
}

// Write appends already encoded bytes verbatim.
func (o *OutputStream) Write(raw []byte) {
	o.builder().AddBytes(raw)
}

func (o *OutputStream) WriteValue(v *Value) {
	o.builder().AddBytes(v.raw)
}

func (o *OutputStream) WriteBoolean(b bool) {
	o.builder().AddASN1Boolean(b)
}

func (o *OutputStream) WriteOctetString(b []byte) {
	o.builder().AddASN1OctetString(b)
}

func (o *OutputStream) WriteObjectIdentifier(oid encoding_asn1.ObjectIdentifier) {
	o.builder().AddASN1ObjectIdentifier(oid)
}

func (o *OutputStream) WriteNull() {
	o.builder().AddASN1NULL()
}

func (o *OutputStream) WriteInt64WithTag(v int64, tag asn1.Tag) {
	o.builder().AddASN1Int64WithTag(v, tag)
}

// WriteTaggedSequence emits tag, the minimal DER length of inner, then inner.
func (o *OutputStream) WriteTaggedSequence(tag asn1.Tag, inner []byte) {
	o.builder().AddASN1(tag, func(b *cryptobyte.Builder) {
		b.AddBytes(inner)
	})
}

// WriteSequence wraps whatever f writes in a SEQUENCE. Nothing is written
// if f or any of its writes fail.
func (o *OutputStream) WriteSequence(f func(inner *OutputStream) error) error {
	var inner OutputStream
	if err := f(&inner); err != nil {
		return err
	}
	b, err := inner.Bytes()
	if err != nil {
		return err
	}
	o.WriteTaggedSequence(asn1.SEQUENCE, b)
	return nil
}

// Bytes returns everything written so far, or the first write error.
func (o *OutputStream) Bytes() ([]byte, error) {
	out, err := o.builder().Bytes()
	if err != nil {
		return nil, fmt.Errorf("der: encoding: %w", err)
	}
	return out, nil
}
