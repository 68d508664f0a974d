package x509ext

import (
	"fmt"
	"iter"
	"strings"

	"github.com/certcat/x509ext/der"
	"golang.org/x/crypto/cryptobyte/asn1"
)

// Attribute names of NameConstraintsExtension.
const (
	PermittedSubtrees = "permitted_subtrees"
	ExcludedSubtrees  = "excluded_subtrees"
)

var (
	permittedTag = asn1.Tag(0).Constructed().ContextSpecific()
	excludedTag  = asn1.Tag(1).Constructed().ContextSpecific()
)

// NameConstraintsExtension as described in RFC5280 4.2.1.10
//
//	NameConstraints ::= SEQUENCE {
//	    permittedSubtrees       [0]     GeneralSubtrees OPTIONAL,
//	    excludedSubtrees        [1]     GeneralSubtrees OPTIONAL }
//
// The extension value is re-encoded whenever an attribute changes.
type NameConstraintsExtension struct {
	Extension
	permitted *GeneralSubtrees
	excluded  *GeneralSubtrees
}

// NewNameConstraintsExtension copies the given subtrees. Either may be nil.
func NewNameConstraintsExtension(critical bool, permitted, excluded *GeneralSubtrees) (*NameConstraintsExtension, error) {
	e := &NameConstraintsExtension{
		Extension: Extension{
			id:       OIDNameConstraints,
			critical: critical,
		},
		permitted: permitted.Clone(),
		excluded:  excluded.Clone(),
	}
	if err := e.encodeValue(); err != nil {
		return nil, err
	}
	return e, nil
}

func NameConstraintsFromExtension(e *Extension) (*NameConstraintsExtension, error) {
	if !e.id.Equal(OIDNameConstraints) {
		return nil, fmt.Errorf("%w: %s is not name constraints", ErrMalformedExtension, e.id)
	}

	v, err := der.Parse(e.value)
	if err != nil {
		return nil, fmt.Errorf("%w: name constraints value: %v", ErrMalformedExtension, err)
	}
	if v.Tag() != asn1.SEQUENCE {
		return nil, fmt.Errorf("%w: name constraints tag %#x is not a SEQUENCE", ErrMalformedExtension, uint8(v.Tag()))
	}

	ret := &NameConstraintsExtension{
		Extension: Extension{
			id:       e.ID(),
			critical: e.critical,
			value:    e.Value(),
		},
	}

	if tag, ok := v.PeekTag(); ok && tag == permittedTag {
		child, err := v.Next()
		if err != nil {
			return nil, fmt.Errorf("%w: permitted subtrees: %v", ErrMalformedExtension, err)
		}
		if ret.permitted, err = decodeGeneralSubtrees(child, permittedTag); err != nil {
			return nil, fmt.Errorf("%w: permitted subtrees: %v", ErrMalformedExtension, err)
		}
	}

	if tag, ok := v.PeekTag(); ok && tag == excludedTag {
		child, err := v.Next()
		if err != nil {
			return nil, fmt.Errorf("%w: excluded subtrees: %v", ErrMalformedExtension, err)
		}
		if ret.excluded, err = decodeGeneralSubtrees(child, excludedTag); err != nil {
			return nil, fmt.Errorf("%w: excluded subtrees: %v", ErrMalformedExtension, err)
		}
	}

	if v.Available() != 0 {
		return nil, fmt.Errorf("%w: trailing data after name constraints", ErrMalformedExtension)
	}

	return ret, nil
}

func ParseNameConstraintsExtension(v *der.Value) (*NameConstraintsExtension, error) {
	e, err := ParseExtension(v)
	if err != nil {
		return nil, err
	}
	return NameConstraintsFromExtension(e)
}

// Decode replaces e with the NameConstraints extension in v. On error e is
// left unchanged.
func (e *NameConstraintsExtension) Decode(v *der.Value) error {
	parsed, err := ParseNameConstraintsExtension(v)
	if err != nil {
		return err
	}
	*e = *parsed
	return nil
}

func (e *NameConstraintsExtension) encodeValue() error {
	var nc der.OutputStream
	if e.permitted != nil {
		if err := e.permitted.encodeTagged(&nc, permittedTag); err != nil {
			return err
		}
	}
	if e.excluded != nil {
		if err := e.excluded.encodeTagged(&nc, excludedTag); err != nil {
			return err
		}
	}
	inner, err := nc.Bytes()
	if err != nil {
		return fmt.Errorf("encoding name constraints: %w", err)
	}

	var out der.OutputStream
	out.WriteTaggedSequence(asn1.SEQUENCE, inner)
	value, err := out.Bytes()
	if err != nil {
		return fmt.Errorf("encoding name constraints: %w", err)
	}
	e.value = value
	return nil
}

// Permitted returns a copy of the permitted subtrees, or nil.
func (e *NameConstraintsExtension) Permitted() *GeneralSubtrees {
	return e.permitted.Clone()
}

// Excluded returns a copy of the excluded subtrees, or nil.
func (e *NameConstraintsExtension) Excluded() *GeneralSubtrees {
	return e.excluded.Clone()
}

func (e *NameConstraintsExtension) field(name string) (**GeneralSubtrees, error) {
	switch name {
	case PermittedSubtrees:
		return &e.permitted, nil
	case ExcludedSubtrees:
		return &e.excluded, nil
	default:
		return nil, fmt.Errorf("%w: %q is not an attribute of %s", ErrUnknownAttribute, name, e.Name())
	}
}

// Get returns a copy of the named *GeneralSubtrees, nil when absent.
func (e *NameConstraintsExtension) Get(name string) (any, error) {
	f, err := e.field(name)
	if err != nil {
		return nil, err
	}
	if *f == nil {
		return nil, nil
	}
	return (*f).Clone(), nil
}

// Set stores a copy of value, which must be a non-nil *GeneralSubtrees.
func (e *NameConstraintsExtension) Set(name string, value any) error {
	f, err := e.field(name)
	if err != nil {
		return err
	}
	subtrees, ok := value.(*GeneralSubtrees)
	if !ok || subtrees == nil {
		return fmt.Errorf("%w: %s must be a *GeneralSubtrees, got %T", ErrInvalidArgument, name, value)
	}

	previous := *f
	*f = subtrees.Clone()
	if err := e.encodeValue(); err != nil {
		*f = previous
		return err
	}
	return nil
}

func (e *NameConstraintsExtension) Delete(name string) error {
	f, err := e.field(name)
	if err != nil {
		return err
	}

	previous := *f
	*f = nil
	if err := e.encodeValue(); err != nil {
		*f = previous
		return err
	}
	return nil
}

func (e *NameConstraintsExtension) Elements() iter.Seq[string] {
	return func(yield func(string) bool) {
		if !yield(PermittedSubtrees) {
			return
		}
		yield(ExcludedSubtrees)
	}
}

func (e *NameConstraintsExtension) Name() string {
	return "NameConstraints"
}

func (e *NameConstraintsExtension) String() string {
	var ret strings.Builder
	ret.WriteString(e.header())
	ret.WriteString("\nNameConstraints: [")
	if e.permitted != nil {
		ret.WriteString("\n  Permitted: " + e.permitted.String())
	}
	if e.excluded != nil {
		ret.WriteString("\n  Excluded: " + e.excluded.String())
	}
	ret.WriteString("\n]")
	return ret.String()
}
