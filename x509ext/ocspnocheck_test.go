package x509ext

import (
	"testing"

	"github.com/certcat/x509ext/der"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ CertAttrSet = (*OCSPNoCheckExtension)(nil)

var (
	ocspNoCheckCritical = []byte{
		0x30, 0x10,
		0x06, 0x09, 0x2b, 0x06, 0x01, 0x05, 0x05, 0x07, 0x30, 0x01, 0x05,
		0x01, 0x01, 0xff,
		0x04, 0x00,
	}
	ocspNoCheckNotCritical = []byte{
		0x30, 0x0d,
		0x06, 0x09, 0x2b, 0x06, 0x01, 0x05, 0x05, 0x07, 0x30, 0x01, 0x05,
		0x04, 0x00,
	}
)

func TestOCSPNoCheckEncoding(t *testing.T) {
	assert.Equal(t, ocspNoCheckCritical, encode(t, NewOCSPNoCheckExtension(true)))
	assert.Equal(t, ocspNoCheckNotCritical, encode(t, NewOCSPNoCheckExtension(false)))
}

func TestParseOCSPNoCheck(t *testing.T) {
	for _, input := range [][]byte{ocspNoCheckCritical, ocspNoCheckNotCritical} {
		v, err := der.Parse(input)
		require.NoError(t, err)

		e, err := ParseOCSPNoCheckExtension(v)
		require.NoError(t, err)
		assert.Empty(t, e.Value())
		assert.Equal(t, input, encode(t, e))
	}
}

func TestOCSPNoCheckFromNullValue(t *testing.T) {
	e, err := OCSPNoCheckFromExtension(NewExtension(OIDOCSPNoCheck, false, []byte{0x05, 0x00}))
	require.NoError(t, err)
	assert.Empty(t, e.Value())
	assert.False(t, e.Critical())
	assert.Equal(t, ocspNoCheckNotCritical, encode(t, e))
}

func TestOCSPNoCheckRejects(t *testing.T) {
	tests := []struct {
		name string
		ext  *Extension
	}{
		{name: "wrong oid", ext: NewExtension(OIDNameConstraints, false, nil)},
		{name: "integer value", ext: NewExtension(OIDOCSPNoCheck, false, []byte{0x02, 0x01, 0x00})},
		{name: "garbage value", ext: NewExtension(OIDOCSPNoCheck, false, []byte{0x05})},
		{name: "null with trailing data", ext: NewExtension(OIDOCSPNoCheck, false, []byte{0x05, 0x00, 0x00})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := OCSPNoCheckFromExtension(tt.ext)
			assert.ErrorIs(t, err, ErrMalformedExtension)
			assert.Nil(t, e)
		})
	}

	v, err := der.Parse([]byte{0x31, 0x00})
	require.NoError(t, err)
	_, err = ParseOCSPNoCheckExtension(v)
	assert.ErrorIs(t, err, ErrMalformedExtension)
}

func TestOCSPNoCheckAttributes(t *testing.T) {
	e := NewOCSPNoCheckExtension(true)

	for _, name := range []string{"", "critical", "id", "anything", "x509.info.extensions.OCSPNoCheck"} {
		got, err := e.Get(name)
		assert.ErrorIs(t, err, ErrUnsupportedOperation, "Get(%q)", name)
		assert.Nil(t, got)
		assert.ErrorIs(t, e.Set(name, true), ErrUnsupportedOperation, "Set(%q)", name)
		assert.ErrorIs(t, e.Set(name, nil), ErrUnsupportedOperation, "Set(%q)", name)
		assert.ErrorIs(t, e.Delete(name), ErrUnsupportedOperation, "Delete(%q)", name)
	}

	// Restartable and always empty.
	for range 2 {
		count := 0
		for range e.Elements() {
			count++
		}
		assert.Zero(t, count)
	}

	assert.Equal(t, "OCSPNoCheck", e.Name())
	assert.Equal(t, "ObjectId: 1.3.6.1.5.5.7.48.1.5 Criticality=true\nOCSPNoCheck", e.String())
	assert.True(t, e.Critical())
	assert.Equal(t, ocspNoCheckCritical, encode(t, e))
}

func TestOCSPNoCheckDecode(t *testing.T) {
	e := NewOCSPNoCheckExtension(false)
	require.NoError(t, e.Decode(encodeToValue(t, NewExtension(OIDOCSPNoCheck, true, []byte{0x05, 0x00}))))
	assert.True(t, e.Critical())
	assert.Empty(t, e.Value())

	others := []*Extension{
		NewExtension(OIDNameConstraints, false, []byte{0x30, 0x02, 0xa0, 0x00}),
		NewExtension(OIDOCSPNoCheck, false, []byte{0x04, 0x00}),
	}
	for _, other := range others {
		err := e.Decode(encodeToValue(t, other))
		assert.ErrorIs(t, err, ErrMalformedExtension)
		assert.True(t, e.ID().Equal(OIDOCSPNoCheck))
		assert.Empty(t, e.Value())
		assert.Equal(t, ocspNoCheckCritical, encode(t, e))
	}
}
