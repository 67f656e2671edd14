package omml

import (
	"encoding/xml"
	"io"
	"strings"
)

// MathNamespace is OMML namespace, elements from other namespaces (eg. run properties of wordprocessing ml)
// are not part of the math tree.
const MathNamespace = "http://schemas.openxmlformats.org/officeDocument/2006/math"

type Tokenizer struct {
	d    *xml.Decoder
	text int // depth of m:t elements, character data only matters inside of them
}

func NewTokenizer(r io.Reader) *Tokenizer {
	return &Tokenizer{d: xml.NewDecoder(r)}
}

// Token returns next token: ElementStart, ElementEnd or Text. Comments, processing instructions and
// whitespace between elements are skipped.
func (l *Tokenizer) Token() (any, error) {
	for {
		t, err := l.d.Token()
		if err != nil {
			return nil, err
		}

		switch token := t.(type) {
		case xml.StartElement:
			if !isMath(token.Name) {
				return ElementStart{Name: foreign(token.Name)}, nil
			}

			if token.Name.Local == "t" {
				l.text++
			}

			return ElementStart{Name: token.Name.Local, Attr: attributes(token.Attr)}, nil
		case xml.EndElement:
			if !isMath(token.Name) {
				return ElementEnd{Name: foreign(token.Name)}, nil
			}

			if token.Name.Local == "t" && l.text > 0 {
				l.text--
			}

			return ElementEnd{Name: token.Name.Local}, nil
		case xml.CharData:
			if l.text == 0 {
				continue
			}

			return Text(token), nil
		}
	}
}

// isMath checks element namespace, fragments cut out of a document keep undeclared "m" prefix
func isMath(name xml.Name) bool {
	return name.Space == MathNamespace || name.Space == "m" || name.Space == ""
}

// foreign names elements of other namespaces with a ":" prefix, so they never clash with math elements
func foreign(name xml.Name) string {
	return ":" + name.Local
}

func isForeign(name string) bool {
	return strings.HasPrefix(name, ":")
}

func attributes(attr []xml.Attr) map[string]string {
	if len(attr) == 0 {
		return nil
	}

	m := make(map[string]string, len(attr))
	for _, a := range attr {
		// namespace declarations
		if a.Name.Space == "xmlns" || a.Name.Space == "" && a.Name.Local == "xmlns" {
			continue
		}

		m[a.Name.Local] = a.Value
	}

	if len(m) == 0 {
		return nil
	}

	return m
}
