package x509ext

import (
	"net"
	"testing"

	"github.com/certcat/x509ext/der"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dnsSubtree(t *testing.T, name string) *GeneralSubtree {
	t.Helper()
	base, err := NewDNSName(name)
	require.NoError(t, err)
	tree, err := NewGeneralSubtree(base)
	require.NoError(t, err)
	return tree
}

func ipSubtree(t *testing.T, cidr string) *GeneralSubtree {
	t.Helper()
	_, ipNet, err := net.ParseCIDR(cidr)
	require.NoError(t, err)
	base, err := NewIPNetName(ipNet)
	require.NoError(t, err)
	tree, err := NewGeneralSubtree(base)
	require.NoError(t, err)
	return tree
}

func subtrees(t *testing.T, trees ...*GeneralSubtree) *GeneralSubtrees {
	t.Helper()
	s, err := NewGeneralSubtrees(trees...)
	require.NoError(t, err)
	return s
}

func TestGeneralSubtreesEmpty(t *testing.T) {
	var s GeneralSubtrees
	encoded := encode(t, &s)
	assert.Equal(t, []byte{0x30, 0x00}, encoded)

	v, err := der.Parse(encoded)
	require.NoError(t, err)
	decoded, err := DecodeGeneralSubtrees(v)
	require.NoError(t, err)
	assert.Equal(t, 0, decoded.Len())
	assert.True(t, decoded.Equal(&s))
}

func TestGeneralSubtreesRoundTrip(t *testing.T) {
	base, err := NewEmailName("example.org")
	require.NoError(t, err)
	bounded, err := NewGeneralSubtreeWithDistance(base, 1, 3)
	require.NoError(t, err)

	s := subtrees(t,
		dnsSubtree(t, "example.com"),
		ipSubtree(t, "10.0.0.0/8"),
		ipSubtree(t, "2001:db8::/32"),
		bounded,
	)

	decoded, err := DecodeGeneralSubtrees(encodeToValue(t, s))
	require.NoError(t, err)
	assert.True(t, decoded.Equal(s))
	assert.Equal(t, encode(t, s), encode(t, decoded))

	got, err := decoded.Get(3)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Minimum())
	maximum, ok := got.Maximum()
	assert.True(t, ok)
	assert.Equal(t, int64(3), maximum)
	assert.Equal(t, RFC822Name, got.Base().Kind())

	assert.Equal(t, "[DNS:example.com, IP:10.0.0.0/8, IP:2001:db8::/32, email:example.org minimum=1 maximum=3]", decoded.String())
}

func TestGeneralSubtreesRemoveMiddle(t *testing.T) {
	a := dnsSubtree(t, "a.example.com")
	b := dnsSubtree(t, "b.example.com")
	c := dnsSubtree(t, "c.example.com")

	s := subtrees(t, a, b, c)
	require.NoError(t, s.Remove(1))
	assert.Equal(t, 2, s.Len())

	assert.Equal(t, encode(t, subtrees(t, a, c)), encode(t, s))
}

func TestGeneralSubtreesMisuse(t *testing.T) {
	s := subtrees(t, dnsSubtree(t, "example.com"))

	assert.ErrorIs(t, s.Add(nil), ErrInvalidArgument)
	_, err := NewGeneralSubtrees(nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	for _, index := range []int{-1, 1, 100} {
		_, err := s.Get(index)
		assert.ErrorIs(t, err, ErrIndexOutOfRange, "Get(%d)", index)
		assert.ErrorIs(t, s.Remove(index), ErrIndexOutOfRange, "Remove(%d)", index)
	}
	assert.Equal(t, 1, s.Len())

	_, err = s.Contains(nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestGeneralSubtreesContains(t *testing.T) {
	s := subtrees(t, dnsSubtree(t, "example.com"), ipSubtree(t, "192.168.0.0/16"))

	found, err := s.Contains(dnsSubtree(t, "example.com"))
	require.NoError(t, err)
	assert.True(t, found)

	found, err = s.Contains(ipSubtree(t, "192.168.0.0/24"))
	require.NoError(t, err)
	assert.False(t, found)
}

func TestGeneralSubtreesOrderMatters(t *testing.T) {
	a := dnsSubtree(t, "a.example.com")
	b := dnsSubtree(t, "b.example.com")

	assert.True(t, subtrees(t, a, b).Equal(subtrees(t, a, b)))
	assert.False(t, subtrees(t, a, b).Equal(subtrees(t, b, a)))
	assert.False(t, subtrees(t, a).Equal(subtrees(t, a, b)))
}

func TestGeneralSubtreesClone(t *testing.T) {
	s := subtrees(t, dnsSubtree(t, "a.example.com"))
	clone := s.Clone()

	require.NoError(t, s.Add(dnsSubtree(t, "b.example.com")))
	assert.Equal(t, 1, clone.Len())
	assert.Equal(t, 2, s.Len())

	require.NoError(t, clone.Remove(0))
	assert.Equal(t, 2, s.Len())

	trees := s.Trees()
	trees[0] = nil
	got, err := s.Get(0)
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestGeneralSubtreesTruncation(t *testing.T) {
	s := subtrees(t, dnsSubtree(t, "a.example.com"), dnsSubtree(t, "b.example.com"))
	encoded := encode(t, s)
	last := encode(t, dnsSubtree(t, "b.example.com"))
	lastStart := len(encoded) - len(last)

	for cut := lastStart + 1; cut < len(encoded); cut++ {
		// As given: the outer length claims more than is there.
		_, err := der.Parse(encoded[:cut])
		assert.ErrorIs(t, err, der.ErrMalformedEncoding, "cut at %d", cut)

		// With an honest outer length, the last child is cut short.
		content := encoded[2:cut]
		v, err := der.Parse(append([]byte{0x30, byte(len(content))}, content...))
		require.NoError(t, err)
		decoded, err := DecodeGeneralSubtrees(v)
		assert.ErrorIs(t, err, der.ErrMalformedEncoding, "cut at %d", cut)
		assert.Nil(t, decoded)
	}
}

func TestDecodeGeneralSubtreesRejects(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
	}{
		{name: "not a sequence", input: []byte{0x31, 0x00}},
		{name: "element not a sequence", input: []byte{0x30, 0x04, 0x82, 0x02, 0x61, 0x62}},
		{name: "base not a GeneralName", input: []byte{0x30, 0x04, 0x30, 0x02, 0x05, 0x00}},
		{name: "empty subtree", input: []byte{0x30, 0x02, 0x30, 0x00}},
		{name: "explicit minimum zero", input: []byte{0x30, 0x09, 0x30, 0x07, 0x82, 0x02, 0x61, 0x62, 0x80, 0x01, 0x00}},
		{name: "maximum below minimum", input: []byte{0x30, 0x0c, 0x30, 0x0a, 0x82, 0x02, 0x61, 0x62, 0x80, 0x01, 0x03, 0x81, 0x01, 0x01}},
		{name: "trailing data in subtree", input: []byte{0x30, 0x08, 0x30, 0x06, 0x82, 0x02, 0x61, 0x62, 0x05, 0x00}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := der.Parse(tt.input)
			require.NoError(t, err)

			s, err := DecodeGeneralSubtrees(v)
			assert.ErrorIs(t, err, der.ErrMalformedEncoding)
			assert.Nil(t, s)
		})
	}
}

func TestGeneralSubtreeDistance(t *testing.T) {
	v, err := der.Parse([]byte{0x30, 0x0a, 0x82, 0x02, 0x61, 0x62, 0x80, 0x01, 0x01, 0x81, 0x01, 0x03})
	require.NoError(t, err)

	tree, err := DecodeGeneralSubtree(v)
	require.NoError(t, err)
	assert.Equal(t, "DNS:ab minimum=1 maximum=3", tree.String())
	assert.Equal(t, v.Bytes(), encode(t, tree))

	base, err := NewDNSName("ab")
	require.NoError(t, err)
	for _, d := range [][2]int64{{-1, -1}, {0, -2}, {3, 1}} {
		_, err := NewGeneralSubtreeWithDistance(base, d[0], d[1])
		assert.ErrorIs(t, err, ErrInvalidArgument, "distance %v", d)
	}

	_, err = NewGeneralSubtree(GeneralName{})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestGeneralSubtreesNil(t *testing.T) {
	var s *GeneralSubtrees

	assert.Equal(t, []byte{0x30, 0x00}, encode(t, s))
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, "[]", s.String())
	assert.Empty(t, s.Trees())
	assert.Nil(t, s.Clone())
	assert.True(t, s.Equal(&GeneralSubtrees{}))

	_, err := s.Get(0)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	assert.ErrorIs(t, s.Remove(0), ErrIndexOutOfRange)

	found, err := s.Contains(dnsSubtree(t, "example.com"))
	require.NoError(t, err)
	assert.False(t, found)

	assert.ErrorIs(t, s.Add(dnsSubtree(t, "example.com")), ErrInvalidArgument)
}
