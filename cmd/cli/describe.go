package cli

import (
	"encoding/hex"
	"fmt"

	"github.com/certcat/x509ext/x509ext"
	"github.com/sirupsen/logrus"
)

// typed returns the CertAttrSet for extensions this tool understands, or
// nil for any other extension.
func typed(ext *x509ext.Extension) (x509ext.CertAttrSet, error) {
	switch {
	case ext.ID().Equal(x509ext.OIDNameConstraints):
		nc, err := x509ext.NameConstraintsFromExtension(ext)
		if err != nil {
			return nil, err
		}
		return nc, nil
	case ext.ID().Equal(x509ext.OIDOCSPNoCheck):
		noCheck, err := x509ext.OCSPNoCheckFromExtension(ext)
		if err != nil {
			return nil, err
		}
		return noCheck, nil
	default:
		return nil, nil
	}
}

func describe(log logrus.FieldLogger, ext *x509ext.Extension) string {
	attrs, err := typed(ext)
	if err != nil {
		log.WithError(err).WithField("oid", ext.ID().String()).Warn("Failed to decode extension value")
		return ext.String()
	}
	if attrs == nil {
		return ext.String()
	}
	return attrs.String()
}

type extensionReport struct {
	ID         string            `json:"id"`
	Name       string            `json:"name,omitempty"`
	Critical   bool              `json:"critical"`
	Value      string            `json:"value"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Error      string            `json:"error,omitempty"`
}

func report(log logrus.FieldLogger, ext *x509ext.Extension) extensionReport {
	ret := extensionReport{
		ID:       ext.ID().String(),
		Critical: ext.Critical(),
		Value:    hex.EncodeToString(ext.Value()),
	}

	attrs, err := typed(ext)
	if err != nil {
		ret.Error = err.Error()
		return ret
	}
	if attrs == nil {
		return ret
	}

	ret.Name = attrs.Name()
	for name := range attrs.Elements() {
		value, err := attrs.Get(name)
		if err != nil {
			log.WithError(err).WithField("attribute", name).Debug("Skipping attribute")
			continue
		}
		if value == nil {
			continue
		}
		if ret.Attributes == nil {
			ret.Attributes = make(map[string]string)
		}
		ret.Attributes[name] = fmt.Sprint(value)
	}
	return ret
}
