package x509ext

import (
	encoding_asn1 "encoding/asn1"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"net"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/certcat/x509ext/der"
	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/crypto/cryptobyte/asn1"
)

// GeneralName CHOICE alternatives, as defined in RFC5280 4.2.1.6.
const (
	OtherName                 = 0
	RFC822Name                = 1
	DNSName                   = 2
	X400Address               = 3
	DirectoryName             = 4
	EDIPartyName              = 5
	UniformResourceIdentifier = 6
	IPAddress                 = 7
	RegisteredID              = 8
)

const classContextSpecific = 0x80

// GeneralName holds one GeneralName alternative as its DER value.
// The zero GeneralName is not valid.
type GeneralName struct {
	value *der.Value
}

// NewDNSName returns a dNSName. The name must be an IA5String.
func NewDNSName(name string) (GeneralName, error) {
	return newIA5Name(DNSName, name)
}

// NewEmailName returns an rfc822Name. In name constraints this may be a
// mailbox, a host or a domain.
func NewEmailName(email string) (GeneralName, error) {
	return newIA5Name(RFC822Name, email)
}

func NewURIName(uri string) (GeneralName, error) {
	return newIA5Name(UniformResourceIdentifier, uri)
}

// NewIPNetName returns the iPAddress form used in name constraints: the
// masked address followed by the mask.
func NewIPNetName(ipNet *net.IPNet) (GeneralName, error) {
	if ipNet == nil {
		return GeneralName{}, fmt.Errorf("%w: nil IP network", ErrInvalidArgument)
	}
	ip := ipNet.IP
	if len(ipNet.Mask) == net.IPv4len {
		ip = ip.To4()
	}
	if ip == nil || len(ip) != len(ipNet.Mask) {
		return GeneralName{}, fmt.Errorf("%w: IP %s does not match mask length %d", ErrInvalidArgument, ipNet.IP, len(ipNet.Mask))
	}

	ipAndMask := make([]byte, 0, 2*len(ip))
	ipAndMask = append(ipAndMask, ip.Mask(ipNet.Mask)...)
	ipAndMask = append(ipAndMask, ipNet.Mask...)
	return newGeneralName(asn1.Tag(IPAddress).ContextSpecific(), ipAndMask)
}

// NewDirectoryName wraps a DER encoded Name (an RDNSequence).
func NewDirectoryName(name []byte) (GeneralName, error) {
	if _, err := rdnSequenceString(cryptobyte.String(name)); err != nil {
		return GeneralName{}, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	return newGeneralName(asn1.Tag(DirectoryName).Constructed().ContextSpecific(), name)
}

// DecodeGeneralName accepts any context-specific GeneralName alternative.
// Only the tag is checked; the contents are kept as they are.
func DecodeGeneralName(v *der.Value) (GeneralName, error) {
	tag := v.Tag()
	kind := int(tag & 0x1f)
	if tag&0xc0 != classContextSpecific || kind > RegisteredID || v.IsConstructed() != constructedName(kind) {
		return GeneralName{}, fmt.Errorf("%w: tag %#x is not a GeneralName", der.ErrMalformedEncoding, uint8(tag))
	}
	return GeneralName{value: v.Clone()}, nil
}

// constructedName reports whether the alternative is a SEQUENCE or a Name
// (constructed) rather than a string, address or OID (primitive).
func constructedName(kind int) bool {
	switch kind {
	case OtherName, X400Address, DirectoryName, EDIPartyName:
		return true
	default:
		return false
	}
}

func newIA5Name(kind int, s string) (GeneralName, error) {
	for _, r := range s {
		if r > 0x7f {
			return GeneralName{}, fmt.Errorf("%w: %q is not an IA5String", ErrInvalidArgument, s)
		}
	}
	return newGeneralName(asn1.Tag(kind).ContextSpecific(), []byte(s))
}

func newGeneralName(tag asn1.Tag, content []byte) (GeneralName, error) {
	var out der.OutputStream
	out.WriteTaggedSequence(tag, content)
	encoded, err := out.Bytes()
	if err != nil {
		return GeneralName{}, err
	}
	v, err := der.Parse(encoded)
	if err != nil {
		return GeneralName{}, err
	}
	return GeneralName{value: v}, nil
}

// Kind is the CHOICE alternative, one of the constants above.
func (n GeneralName) Kind() int {
	if n.value == nil {
		return -1
	}
	return int(n.value.Tag() & 0x1f)
}

func (n GeneralName) IsZero() bool {
	return n.value == nil
}

func (n GeneralName) Equal(other GeneralName) bool {
	return n.value.Equal(other.value)
}

// Bytes returns the DER encoding of the name, including its context tag.
func (n GeneralName) Bytes() []byte {
	if n.value == nil {
		return nil
	}
	return n.value.Bytes()
}

// String renders the name. IP addresses are rendered as CIDR, because
// in name constraints they carry a mask.
func (n GeneralName) String() string {
	if n.value == nil {
		return "<empty>"
	}
	data := n.value.Content()

	switch n.value.Tag() {
	case asn1.Tag(RFC822Name).ContextSpecific():
		return "email:" + string(data)
	case asn1.Tag(DNSName).ContextSpecific():
		return "DNS:" + string(data)
	case asn1.Tag(UniformResourceIdentifier).ContextSpecific():
		return "URI:" + string(data)
	case asn1.Tag(IPAddress).ContextSpecific():
		switch len(data) {
		case net.IPv4len * 2, net.IPv6len * 2:
			ipnet := net.IPNet{
				IP:   net.IP(data[:len(data)/2]),
				Mask: net.IPMask(data[len(data)/2:]),
			}
			return "IP:" + ipnet.String()
		case net.IPv4len, net.IPv6len:
			return "IP:" + net.IP(data).String()
		}
	case asn1.Tag(DirectoryName).Constructed().ContextSpecific():
		rdn, err := rdnSequenceString(cryptobyte.String(data))
		if err == nil {
			return "DirName:" + rdn
		}
	}

	// Unknown or unparsable, return as hex
	return fmt.Sprintf("[%d]:%s", n.Kind(), hex.EncodeToString(data))
}

var dnNames = map[string]string{
	"2.5.4.3":                    "CN",
	"2.5.4.7":                    "L",
	"2.5.4.8":                    "ST",
	"2.5.4.10":                   "O",
	"2.5.4.11":                   "OU",
	"2.5.4.6":                    "C",
	"2.5.4.9":                    "STREET",
	"0.9.2342.19200300.100.1.25": "DC",
	"0.9.2342.19200300.100.1.1":  "UID",
}

// rdnSequenceString turns a DER RDNSequence into a string, per RFC4514 representation
func rdnSequenceString(data cryptobyte.String) (string, error) {
	var rdnSequence cryptobyte.String
	if !data.ReadASN1(&rdnSequence, asn1.SEQUENCE) || !data.Empty() {
		return "", errors.New("failed to read RDNSequence")
	}

	var ret strings.Builder

	for !rdnSequence.Empty() {
		var atvSet cryptobyte.String
		if !rdnSequence.ReadASN1(&atvSet, asn1.SET) {
			return "", errors.New("failed to read ATVSet")
		}
		for !atvSet.Empty() {
			var atv cryptobyte.String
			var oid encoding_asn1.ObjectIdentifier
			var value cryptobyte.String
			var tag asn1.Tag
			if !atvSet.ReadASN1(&atv, asn1.SEQUENCE) ||
				!atv.ReadASN1ObjectIdentifier(&oid) ||
				!atv.ReadAnyASN1(&value, &tag) {
				return "", errors.New("failed to read ATV")
			}

			name, ok := dnNames[oid.String()]
			if !ok {
				name = oid.String()
			}
			if ret.Len() > 0 {
				ret.WriteRune(',')
			}
			if s, ok := directoryString(tag, value); ok {
				ret.WriteString(name + "=" + s)
			} else {
				ret.WriteString(fmt.Sprintf("%s=#%s", name, hex.EncodeToString(value)))
			}
		}
	}

	return ret.String(), nil
}

// directoryString decodes the string forms a DirectoryString may take.
// TeletexString is read as Latin-1.
func directoryString(tag asn1.Tag, data []byte) (string, bool) {
	switch tag {
	case asn1.PrintableString, asn1.IA5String, asn1.UTF8String:
		if !utf8.Valid(data) {
			return "", false
		}
		return string(data), true
	case asn1.T61String:
		runes := make([]rune, len(data))
		for i, b := range data {
			runes[i] = rune(b)
		}
		return string(runes), true
	case encoding_asn1.TagBMPString:
		if len(data)%2 != 0 {
			return "", false
		}
		units := make([]uint16, 0, len(data)/2)
		for ; len(data) > 0; data = data[2:] {
			units = append(units, binary.BigEndian.Uint16(data))
		}
		// Some encoders append a NUL.
		if n := len(units); n > 0 && units[n-1] == 0 {
			units = units[:n-1]
		}
		return string(utf16.Decode(units)), true
	default:
		return "", false
	}
}
