package der

import (
	"fmt"

	"golang.org/x/crypto/cryptobyte/asn1"
)

type Decodable[T any] interface {
	*T
	Decode(v *Value) error
}

// DecodeSequenceOf decodes every child of a SEQUENCE OF.
// Tag should usually be asn1.SEQUENCE, except when using implicit encoding.
// Nothing is returned unless every child decodes.
func DecodeSequenceOf[T any, PT Decodable[T]](v *Value, tag asn1.Tag) ([]PT, error) {
	if v.Tag() != tag {
		return nil, fmt.Errorf("%w: expected tag %#x, got %#x", ErrMalformedEncoding, uint8(tag), uint8(v.Tag()))
	}

	var ret []PT
	seq := v.Clone()
	for seq.Available() > 0 {
		child, err := seq.Next()
		if err != nil {
			return nil, err
		}
		var t T
		var pt PT = &t
		if err := pt.Decode(child); err != nil {
			return nil, fmt.Errorf("element %d of %T: %w", len(ret), ret, err)
		}
		ret = append(ret, pt)
	}

	return ret, nil
}
