package omml

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

var kinds = map[string]Kind{
	"oMath":     MathKind,
	"r":         TextKind,
	"f":         FractionKind,
	"sSup":      SuperscriptKind,
	"sSub":      SubscriptKind,
	"sSubSup":   SubSuperscriptKind,
	"sPre":      PreScriptKind,
	"nary":      NaryKind,
	"rad":       RadicalKind,
	"d":         DelimiterKind,
	"m":         MatrixKind,
	"mr":        MatrixRowKind,
	"func":      FunctionKind,
	"limLow":    LimitLowerKind,
	"limUpp":    LimitUpperKind,
	"acc":       AccentKind,
	"eqArr":     EquationArrayKind,
	"groupChr":  GroupCharKind,
	"bar":       BarKind,
	"box":       BoxKind,
	"borderBox": BoxKind,
}

var roles = map[string]bool{
	RoleBase:         true,
	RoleNumerator:    true,
	RoleDenominator:  true,
	RoleSuperscript:  true,
	RoleSubscript:    true,
	RoleDegree:       true,
	RoleLimit:        true,
	RoleFunctionName: true,
}

type Parser struct {
	tokens *Tokenizer
}

// Parse reads the first math expression from OMML fragment.
func Parse(r io.Reader) (*Node, error) {
	return NewParser(r).Parse()
}

func NewParser(r io.Reader) *Parser {
	return &Parser{tokens: NewTokenizer(r)}
}

// Parse reads the first math element, elements around it (eg. paragraphs of a document) are skipped.
func (p *Parser) Parse() (*Node, error) {
	empty := true

	for {
		t, err := p.tokens.Token()
		if err == io.EOF {
			if empty {
				return nil, ErrEmptyFragment
			}

			return nil, ErrNoMath
		}

		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedFragment, err)
		}

		empty = false

		start, ok := t.(ElementStart)
		if !ok || isForeign(start.Name) {
			continue
		}

		if _, ok := kinds[start.Name]; ok || start.Name == "oMathPara" {
			return p.element(start)
		}
	}
}

// element reads element till its end, the decoder makes sure that end tag matches the start
func (p *Parser) element(start ElementStart) (*Node, error) {
	kind, ok := kinds[start.Name]
	if !ok {
		kind = ElementKind
	}

	node := &Node{Kind: kind}
	if kind != TextKind {
		node.Data = start.Name
	}

	for {
		t, err := p.tokens.Token()
		if err != nil {
			return nil, malformed(err)
		}

		switch token := t.(type) {
		case ElementEnd:
			return node, nil
		case Text:
			p.append(node, string(token))
		case ElementStart:
			switch {
			case isForeign(token.Name) || token.Name == "ctrlPr":
				if err := p.skip(); err != nil {
					return nil, err
				}
			case token.Name == "t":
				text, err := p.text()
				if err != nil {
					return nil, err
				}

				p.append(node, text)
			case strings.HasSuffix(token.Name, "Pr"):
				if node.Parameters == nil {
					node.Parameters = map[string]string{}
				}

				if err := p.properties(node.Parameters); err != nil {
					return nil, err
				}
			default:
				child, err := p.element(token)
				if err != nil {
					return nil, err
				}

				node.Children = append(node.Children, child)

				if !roles[token.Name] {
					continue
				}

				if node.Named == nil {
					node.Named = map[string]*Node{}
				}

				if _, ok := node.Named[token.Name]; !ok {
					node.Named[token.Name] = child
				}
			}
		}
	}
}

// append adds text to the run or, for anything else, a new text child
func (p *Parser) append(node *Node, text string) {
	if node.Kind == TextKind {
		node.Data += text
		return
	}

	// merge consequent text nodes together
	if n := len(node.Children); n > 0 && node.Children[n-1].Kind == TextKind && node.Children[n-1].Parameters == nil {
		node.Children[n-1].Data += text
		return
	}

	node.Children = append(node.Children, &Node{Kind: TextKind, Data: text})
}

// text reads content of m:t element
func (p *Parser) text() (string, error) {
	var b strings.Builder

	for {
		t, err := p.tokens.Token()
		if err != nil {
			return "", malformed(err)
		}

		switch token := t.(type) {
		case Text:
			b.WriteString(string(token))
		case ElementEnd:
			return b.String(), nil
		case ElementStart:
			if err := p.skip(); err != nil {
				return "", err
			}
		}
	}
}

// properties flattens property element (fPr, naryPr, dPr...) into parameters: every nested element is
// stored under its name with the value of m:val, or empty value for on/off switches like <m:degHide/>
func (p *Parser) properties(params map[string]string) error {
	for {
		t, err := p.tokens.Token()
		if err != nil {
			return malformed(err)
		}

		switch token := t.(type) {
		case ElementEnd:
			return nil
		case ElementStart:
			// control properties only carry formatting of the run
			if isForeign(token.Name) || token.Name == "ctrlPr" {
				if err := p.skip(); err != nil {
					return err
				}

				continue
			}

			if v, ok := token.Attr["val"]; ok {
				params[token.Name] = v
			} else if _, ok := params[token.Name]; !ok {
				params[token.Name] = ""
			}

			if err := p.properties(params); err != nil {
				return err
			}
		}
	}
}

// skip reads everything till the end of the current element
func (p *Parser) skip() error {
	for depth := 1; depth > 0; {
		t, err := p.tokens.Token()
		if err != nil {
			return malformed(err)
		}

		switch t.(type) {
		case ElementStart:
			depth++
		case ElementEnd:
			depth--
		}
	}

	return nil
}

func malformed(err error) error {
	if errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: unexpected end of input", ErrMalformedFragment)
	}

	return fmt.Errorf("%w: %v", ErrMalformedFragment, err)
}

// Split cuts every top level m:oMath element out of an XML document, for example word/document.xml. Each
// fragment declares math namespace itself, so it can be parsed on its own.
func Split(data []byte) ([]string, error) {
	d := xml.NewDecoder(bytes.NewReader(data))

	var fragments []string
	var start int64
	depth := 0

	for {
		offset := d.InputOffset()

		t, err := d.Token()
		if err == io.EOF {
			return fragments, nil
		}

		if err != nil {
			return fragments, fmt.Errorf("%w: %v", ErrMalformedFragment, err)
		}

		switch token := t.(type) {
		case xml.StartElement:
			if token.Name.Local != "oMath" || !isMath(token.Name) {
				continue
			}

			if depth == 0 {
				start = offset
			}

			depth++
		case xml.EndElement:
			if token.Name.Local != "oMath" || !isMath(token.Name) || depth == 0 {
				continue
			}

			depth--
			if depth == 0 {
				fragments = append(fragments, declare(string(data[start:d.InputOffset()])))
			}
		}
	}
}

// declare adds math namespace declaration to the prefixed root tag of a fragment
func declare(fragment string) string {
	if !strings.HasPrefix(fragment, "<") {
		return fragment
	}

	colon := strings.IndexByte(fragment, ':')
	name := strings.IndexAny(fragment, " \t\r\n/>")
	if colon < 0 || name < 0 || colon > name {
		return fragment
	}

	prefix := fragment[1:colon]
	if strings.Contains(fragment[:strings.IndexByte(fragment, '>')+1], "xmlns:"+prefix+"=") {
		return fragment
	}

	return fragment[:name] + ` xmlns:` + prefix + `="` + MathNamespace + `"` + fragment[name:]
}
