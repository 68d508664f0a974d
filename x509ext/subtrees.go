package x509ext

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/certcat/x509ext/der"
	"golang.org/x/crypto/cryptobyte/asn1"
	"golang.org/x/exp/slices"
)

var (
	minimumTag = asn1.Tag(0).ContextSpecific()
	maximumTag = asn1.Tag(1).ContextSpecific()
)

//	GeneralSubtree ::= SEQUENCE {
//	    base                    GeneralName,
//	    minimum         [0]     BaseDistance DEFAULT 0,
//	    maximum         [1]     BaseDistance OPTIONAL }
//
//	BaseDistance ::= INTEGER (0..MAX)
//
// RFC5280 profiles minimum to 0 and maximum to absent, but both are kept
// so that other encodings survive a round trip.
type GeneralSubtree struct {
	base    GeneralName
	minimum int64
	maximum int64 // -1 when absent
}

func NewGeneralSubtree(base GeneralName) (*GeneralSubtree, error) {
	return NewGeneralSubtreeWithDistance(base, 0, -1)
}

// NewGeneralSubtreeWithDistance sets the base distances. A maximum of -1 means absent.
func NewGeneralSubtreeWithDistance(base GeneralName, minimum, maximum int64) (*GeneralSubtree, error) {
	if base.IsZero() {
		return nil, fmt.Errorf("%w: empty base name", ErrInvalidArgument)
	}
	if minimum < 0 || maximum < -1 || (maximum >= 0 && maximum < minimum) {
		return nil, fmt.Errorf("%w: invalid base distance [%d, %d]", ErrInvalidArgument, minimum, maximum)
	}
	return &GeneralSubtree{
		base:    base,
		minimum: minimum,
		maximum: maximum,
	}, nil
}

func DecodeGeneralSubtree(v *der.Value) (*GeneralSubtree, error) {
	t := &GeneralSubtree{}
	if err := t.Decode(v); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *GeneralSubtree) Decode(v *der.Value) error {
	if v.Tag() != asn1.SEQUENCE {
		return fmt.Errorf("%w: GeneralSubtree tag %#x is not a SEQUENCE", der.ErrMalformedEncoding, uint8(v.Tag()))
	}
	subtree := v.Clone()

	child, err := subtree.Next()
	if err != nil {
		return fmt.Errorf("reading GeneralSubtree base: %w", err)
	}
	base, err := DecodeGeneralName(child)
	if err != nil {
		return fmt.Errorf("parsing GeneralSubtree base: %w", err)
	}

	var minimum int64
	if tag, ok := subtree.PeekTag(); ok && tag == minimumTag {
		child, err := subtree.Next()
		if err != nil {
			return fmt.Errorf("reading GeneralSubtree minimum: %w", err)
		}
		if minimum, err = child.Int64WithTag(minimumTag); err != nil {
			return fmt.Errorf("parsing GeneralSubtree minimum: %w", err)
		}
		if minimum <= 0 {
			return fmt.Errorf("%w: GeneralSubtree minimum %d", der.ErrMalformedEncoding, minimum)
		}
	}

	maximum := int64(-1)
	if tag, ok := subtree.PeekTag(); ok && tag == maximumTag {
		child, err := subtree.Next()
		if err != nil {
			return fmt.Errorf("reading GeneralSubtree maximum: %w", err)
		}
		if maximum, err = child.Int64WithTag(maximumTag); err != nil {
			return fmt.Errorf("parsing GeneralSubtree maximum: %w", err)
		}
		if maximum < minimum {
			return fmt.Errorf("%w: GeneralSubtree maximum %d below minimum %d", der.ErrMalformedEncoding, maximum, minimum)
		}
	}

	if subtree.Available() != 0 {
		return fmt.Errorf("%w: trailing data after GeneralSubtree", der.ErrMalformedEncoding)
	}

	t.base = base
	t.minimum = minimum
	t.maximum = maximum
	return nil
}

func (t *GeneralSubtree) Base() GeneralName {
	return t.base
}

func (t *GeneralSubtree) Minimum() int64 {
	return t.minimum
}

// Maximum reports the maximum base distance, if one is set.
func (t *GeneralSubtree) Maximum() (int64, bool) {
	return t.maximum, t.maximum >= 0
}

func (t *GeneralSubtree) Encode(out *der.OutputStream) error {
	err := out.WriteSequence(func(subtree *der.OutputStream) error {
		subtree.Write(t.base.Bytes())
		if t.minimum != 0 {
			subtree.WriteInt64WithTag(t.minimum, minimumTag)
		}
		if t.maximum >= 0 {
			subtree.WriteInt64WithTag(t.maximum, maximumTag)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("encoding GeneralSubtree: %w", err)
	}
	return nil
}

func (t *GeneralSubtree) bytes() []byte {
	var out der.OutputStream
	if err := t.Encode(&out); err != nil {
		return nil
	}
	b, _ := out.Bytes()
	return b
}

// Equal compares the DER encodings of two subtrees.
func (t *GeneralSubtree) Equal(other *GeneralSubtree) bool {
	if t == nil || other == nil {
		return t == other
	}
	return bytes.Equal(t.bytes(), other.bytes())
}

func (t *GeneralSubtree) String() string {
	var ret strings.Builder
	ret.WriteString(t.base.String())
	if t.minimum != 0 {
		fmt.Fprintf(&ret, " minimum=%d", t.minimum)
	}
	if t.maximum >= 0 {
		fmt.Fprintf(&ret, " maximum=%d", t.maximum)
	}
	return ret.String()
}

// GeneralSubtrees ::= SEQUENCE SIZE (1..MAX) OF GeneralSubtree
//
// Order is significant: it decides the encoding and equality. The zero
// value is an empty sequence, and so is a nil *GeneralSubtrees for every
// method except Add. It is not safe for concurrent mutation.
type GeneralSubtrees struct {
	trees []*GeneralSubtree
}

func NewGeneralSubtrees(trees ...*GeneralSubtree) (*GeneralSubtrees, error) {
	s := &GeneralSubtrees{}
	for _, tree := range trees {
		if err := s.Add(tree); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// DecodeGeneralSubtrees decodes a SEQUENCE OF GeneralSubtree. If any
// element fails, nothing is returned.
func DecodeGeneralSubtrees(v *der.Value) (*GeneralSubtrees, error) {
	return decodeGeneralSubtrees(v, asn1.SEQUENCE)
}

// decodeGeneralSubtrees also serves the IMPLICIT tags of NameConstraints.
func decodeGeneralSubtrees(v *der.Value, tag asn1.Tag) (*GeneralSubtrees, error) {
	trees, err := der.DecodeSequenceOf[GeneralSubtree](v, tag)
	if err != nil {
		return nil, fmt.Errorf("parsing GeneralSubtrees: %w", err)
	}
	return &GeneralSubtrees{trees: trees}, nil
}

func (s *GeneralSubtrees) list() []*GeneralSubtree {
	if s == nil {
		return nil
	}
	return s.trees
}

func (s *GeneralSubtrees) Encode(out *der.OutputStream) error {
	return s.encodeTagged(out, asn1.SEQUENCE)
}

func (s *GeneralSubtrees) encodeTagged(out *der.OutputStream, tag asn1.Tag) error {
	var scratch der.OutputStream
	for _, tree := range s.list() {
		if err := tree.Encode(&scratch); err != nil {
			return err
		}
	}

	inner, err := scratch.Bytes()
	if err != nil {
		return fmt.Errorf("encoding GeneralSubtrees: %w", err)
	}
	out.WriteTaggedSequence(tag, inner)
	return nil
}

func (s *GeneralSubtrees) Len() int {
	return len(s.list())
}

func (s *GeneralSubtrees) Add(tree *GeneralSubtree) error {
	if s == nil {
		return fmt.Errorf("%w: add to nil GeneralSubtrees", ErrInvalidArgument)
	}
	if tree == nil {
		return fmt.Errorf("%w: nil GeneralSubtree", ErrInvalidArgument)
	}
	s.trees = append(s.trees, tree)
	return nil
}

func (s *GeneralSubtrees) Get(index int) (*GeneralSubtree, error) {
	if index < 0 || index >= s.Len() {
		return nil, fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, index, s.Len())
	}
	return s.trees[index], nil
}

func (s *GeneralSubtrees) Remove(index int) error {
	if index < 0 || index >= s.Len() {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, index, s.Len())
	}
	s.trees = slices.Delete(s.trees, index, index+1)
	return nil
}

// Contains reports whether a subtree with the same encoding is present.
func (s *GeneralSubtrees) Contains(tree *GeneralSubtree) (bool, error) {
	if tree == nil {
		return false, fmt.Errorf("%w: nil GeneralSubtree", ErrInvalidArgument)
	}
	return slices.ContainsFunc(s.list(), tree.Equal), nil
}

// Trees returns the subtrees in order. The slice is a copy.
func (s *GeneralSubtrees) Trees() []*GeneralSubtree {
	return slices.Clone(s.list())
}

// Equal compares element-wise, in order.
func (s *GeneralSubtrees) Equal(other *GeneralSubtrees) bool {
	return slices.EqualFunc(s.list(), other.list(), (*GeneralSubtree).Equal)
}

// Clone copies the sequence. The subtrees themselves are shared, they are
// never modified in place.
func (s *GeneralSubtrees) Clone() *GeneralSubtrees {
	if s == nil {
		return nil
	}
	return &GeneralSubtrees{trees: slices.Clone(s.trees)}
}

func (s *GeneralSubtrees) String() string {
	names := make([]string, s.Len())
	for i, tree := range s.list() {
		names[i] = tree.String()
	}
	return "[" + strings.Join(names, ", ") + "]"
}
