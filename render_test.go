package omml_test

import (
	"bytes"
	"github.com/eolymp/go-omml"
	"github.com/google/go-cmp/cmp"
	"strings"
	"testing"
)

func TestConvert(t *testing.T) {
	math := func(children ...*omml.Node) *omml.Node {
		return &omml.Node{Kind: omml.MathKind, Children: children}
	}

	text := func(t string) *omml.Node {
		return &omml.Node{Kind: omml.TextKind, Data: t}
	}

	textp := func(t string, params map[string]string) *omml.Node {
		return &omml.Node{Kind: omml.TextKind, Data: t, Parameters: params}
	}

	role := func(name string, children ...*omml.Node) *omml.Node {
		return &omml.Node{Kind: omml.ElementKind, Data: name, Children: children}
	}

	element := func(kind omml.Kind, params map[string]string, children ...*omml.Node) *omml.Node {
		return &omml.Node{Kind: kind, Parameters: params, Children: children}
	}

	fraction := func(num, den string) *omml.Node {
		return element(omml.FractionKind, nil, role("num", text(num)), role("den", text(den)))
	}

	row := func(cells ...string) *omml.Node {
		node := element(omml.MatrixRowKind, nil)
		for _, cell := range cells {
			node.Children = append(node.Children, role("e", text(cell)))
		}

		return node
	}

	tt := []struct {
		name   string
		render string
		math   *omml.Node
	}{
		{
			name:   "fraction",
			render: `\frac{1}{2}`,
			math:   math(fraction("1", "2")),
		},
		{
			name:   "fraction of single letters",
			render: `\frac{a}{b}`,
			math:   math(fraction("a", "b")),
		},
		{
			name:   "fraction without parts",
			render: `\frac{}{}`,
			math:   math(element(omml.FractionKind, nil)),
		},
		{
			name:   "n over k",
			render: `\binom{n}{k}`,
			math:   math(fraction("n", "k")),
		},
		{
			name:   "n over k in delimiters",
			render: `\binom{n}{k}`,
			math:   math(element(omml.DelimiterKind, nil, role("e", fraction("n", "k")))),
		},
		{
			name:   "letters over letters in delimiters",
			render: `\binom{a}{b}`,
			math:   math(element(omml.DelimiterKind, nil, role("e", fraction("a", "b")))),
		},
		{
			name:   "fraction in delimiters",
			render: `\left(\frac{x+1}{2}\right)`,
			math:   math(element(omml.DelimiterKind, nil, role("e", fraction("x+1", "2")))),
		},
		{
			name:   "superscript",
			render: `x^{2}`,
			math:   math(element(omml.SuperscriptKind, nil, role("e", text("x")), role("sup", text("2")))),
		},
		{
			name:   "superscript of expression",
			render: `{x+1}^{2}`,
			math:   math(element(omml.SuperscriptKind, nil, role("e", text("x+1")), role("sup", text("2")))),
		},
		{
			name:   "superscript of delimiters",
			render: `\left(a+b\right)^{2}`,
			math: math(element(omml.SuperscriptKind, nil,
				role("e", element(omml.DelimiterKind, nil, role("e", text("a+b")))),
				role("sup", text("2")),
			)),
		},
		{
			name:   "superscript of duplicated bracket",
			render: `\left[\int f\right]^{2}`,
			math: math(element(omml.SuperscriptKind, nil,
				role("e", element(omml.DelimiterKind, map[string]string{"begChr": "[", "endChr": "]"}, role("e", text("∫f∫f")))),
				role("sup", text("2")),
			)),
		},
		{
			name:   "subscript of greek letter",
			render: `\alpha_{i}`,
			math:   math(element(omml.SubscriptKind, nil, role("e", text("α")), role("sub", text("i")))),
		},
		{
			name:   "subscript and superscript",
			render: `x_{i}^{2}`,
			math:   math(element(omml.SubSuperscriptKind, nil, role("e", text("x")), role("sub", text("i")), role("sup", text("2")))),
		},
		{
			name:   "pre-scripts",
			render: `{}_{1}^{2}X`,
			math:   math(element(omml.PreScriptKind, nil, role("sub", text("1")), role("sup", text("2")), role("e", text("X")))),
		},
		{
			name:   "square root",
			render: `\sqrt{a+b}`,
			math:   math(element(omml.RadicalKind, nil, role("e", text("a+b")))),
		},
		{
			name:   "root with degree",
			render: `\sqrt[3]{x}`,
			math:   math(element(omml.RadicalKind, nil, role("deg", text("3")), role("e", text("x")))),
		},
		{
			name:   "root with hidden degree",
			render: `\sqrt{x}`,
			math:   math(element(omml.RadicalKind, map[string]string{"degHide": "1"}, role("deg", text("3")), role("e", text("x")))),
		},
		{
			name:   "root with empty degree",
			render: `\sqrt{x}`,
			math:   math(element(omml.RadicalKind, nil, role("deg"), role("e", text("x")))),
		},
		{
			name:   "sum",
			render: `\sum_{k=0}^{n} k`,
			math: math(element(omml.NaryKind, map[string]string{"chr": "∑"},
				role("sub", text("k=0")),
				role("sup", text("n")),
				role("e", text("k")),
			)),
		},
		{
			name:   "n-ary defaults to sum",
			render: `\sum_{i} x`,
			math:   math(element(omml.NaryKind, nil, role("sub", text("i")), role("e", text("x")))),
		},
		{
			name:   "integral with differential",
			render: `\int_{0}^{1} x \, dx`,
			math: math(element(omml.NaryKind, map[string]string{"chr": "∫"},
				role("sub", text("0")),
				role("sup", text("1")),
				role("e", text("xⅆx")),
			)),
		},
		{
			name:   "n-ary with hidden limits",
			render: `\oint f`,
			math: math(element(omml.NaryKind, map[string]string{"chr": "∮", "subHide": "on", "supHide": ""},
				role("sub", text("C")),
				role("sup", text("1")),
				role("e", text("f")),
			)),
		},
		{
			name:   "square brackets",
			render: `\left[0,1\right)`,
			math:   math(element(omml.DelimiterKind, map[string]string{"begChr": "[", "endChr": ")"}, role("e", text("0,1")))),
		},
		{
			name:   "angle brackets",
			render: `\left\langle x\right\rangle`,
			math:   math(element(omml.DelimiterKind, map[string]string{"begChr": "⟨", "endChr": "⟩"}, role("e", text("x")))),
		},
		{
			name:   "opening brace only",
			render: `\left\{x\right.`,
			math:   math(element(omml.DelimiterKind, map[string]string{"begChr": "{", "endChr": ""}, role("e", text("x")))),
		},
		{
			name:   "delimiters without scalable form",
			render: `⟦x⟧`,
			math:   math(element(omml.DelimiterKind, map[string]string{"begChr": "⟦", "endChr": "⟧"}, role("e", text("x")))),
		},
		{
			name:   "delimiters with several operands",
			render: `\left(a|b\right)`,
			math:   math(element(omml.DelimiterKind, nil, role("e", text("a")), role("e", text("b")))),
		},
		{
			name:   "delimiters with separator",
			render: `\left(a,b\right)`,
			math:   math(element(omml.DelimiterKind, map[string]string{"sepChr": ","}, role("e", text("a")), role("e", text("b")))),
		},
		{
			name:   "empty delimiters",
			render: ``,
			math:   math(element(omml.DelimiterKind, nil)),
		},
		{
			name:   "matrix",
			render: `\begin{matrix} a & b \end{matrix}`,
			math:   math(element(omml.MatrixKind, nil, row("a", "b"))),
		},
		{
			name:   "matrix in parentheses",
			render: `\begin{pmatrix} 1 & 0 \\ 0 & 1 \end{pmatrix}`,
			math:   math(element(omml.DelimiterKind, nil, role("e", element(omml.MatrixKind, nil, row("1", "0"), row("0", "1"))))),
		},
		{
			name:   "matrix in brackets",
			render: `\begin{bmatrix} 1 & 0 \\ 0 & 1 \end{bmatrix}`,
			math: math(element(omml.DelimiterKind, map[string]string{"begChr": "[", "endChr": "]"},
				role("e", element(omml.MatrixKind, nil, row("1", "0"), row("0", "1"))),
			)),
		},
		{
			name:   "matrix in braces",
			render: `\begin{Bmatrix} a \end{Bmatrix}`,
			math:   math(element(omml.DelimiterKind, map[string]string{"begChr": "{", "endChr": "}"}, role("e", element(omml.MatrixKind, nil, row("a"))))),
		},
		{
			name:   "determinant",
			render: `\begin{vmatrix} a & b \\ c & d \end{vmatrix}`,
			math: math(element(omml.DelimiterKind, map[string]string{"begChr": "|", "endChr": "|"},
				role("e", element(omml.MatrixKind, nil, row("a", "b"), row("c", "d"))),
			)),
		},
		{
			name:   "matrix drops empty rows",
			render: `\begin{matrix} a &  \end{matrix}`,
			math:   math(element(omml.MatrixKind, nil, row("a", ""), row("", ""))),
		},
		{
			name:   "cases",
			render: `\begin{cases} 1, & x>0 \\ 0, & \text{x is even} \end{cases}`,
			math: math(element(omml.DelimiterKind, map[string]string{"begChr": "{", "endChr": ""},
				role("e", element(omml.EquationArrayKind, nil,
					role("e", text("1,x>0")),
					role("e", text("0,&x is even")),
				)),
			)),
		},
		{
			name:   "equation array",
			render: `x=1 \\ y=2`,
			math:   math(element(omml.EquationArrayKind, nil, role("e", text("x=1")), role("e", text("y=2")))),
		},
		{
			name:   "function",
			render: `\sin(x)`,
			math:   math(element(omml.FunctionKind, nil, role("fName", text("sin")), role("e", text("x")))),
		},
		{
			name:   "function with parenthesized argument",
			render: `\log\left(x+1\right)`,
			math: math(element(omml.FunctionKind, nil,
				role("fName", text("log")),
				role("e", element(omml.DelimiterKind, nil, role("e", text("x+1")))),
			)),
		},
		{
			name:   "unknown function",
			render: `f(x)`,
			math:   math(element(omml.FunctionKind, nil, role("fName", text("f")), role("e", text("x")))),
		},
		{
			name:   "function without name",
			render: `x`,
			math:   math(element(omml.FunctionKind, nil, role("e", text("x")))),
		},
		{
			name:   "limit",
			render: `\lim_{x\rightarrow0} f(x)`,
			math: math(element(omml.FunctionKind, nil,
				role("fName", element(omml.LimitLowerKind, nil, role("e", text("lim")), role("lim", text("x→0")))),
				role("e", text("f(x)")),
			)),
		},
		{
			name:   "lower limit of operator",
			render: `\max_{i}`,
			math:   math(element(omml.LimitLowerKind, nil, role("e", text("max")), role("lim", text("i")))),
		},
		{
			name:   "upper limit of expression",
			render: `\overset{def}{x}`,
			math:   math(element(omml.LimitUpperKind, nil, role("e", text("x")), role("lim", text("def")))),
		},
		{
			name:   "vector accent",
			render: `\vec{v}`,
			math:   math(element(omml.AccentKind, map[string]string{"chr": "\u20d7"}, role("e", text("v")))),
		},
		{
			name:   "tilde accent",
			render: `\tilde{a}`,
			math:   math(element(omml.AccentKind, map[string]string{"chr": "\u0303"}, role("e", text("a")))),
		},
		{
			name:   "default accent",
			render: `\hat{x}`,
			math:   math(element(omml.AccentKind, nil, role("e", text("x")))),
		},
		{
			name:   "unknown accent",
			render: `\hat{x}`,
			math:   math(element(omml.AccentKind, map[string]string{"chr": "*"}, role("e", text("x")))),
		},
		{
			name:   "underbrace",
			render: `\underbrace{a+b}`,
			math:   math(element(omml.GroupCharKind, nil, role("e", text("a+b")))),
		},
		{
			name:   "overbrace",
			render: `\overbrace{a+b}`,
			math:   math(element(omml.GroupCharKind, map[string]string{"chr": "⏞", "pos": "top"}, role("e", text("a+b")))),
		},
		{
			name:   "overline",
			render: `\overline{x}`,
			math:   math(element(omml.BarKind, map[string]string{"pos": "top"}, role("e", text("x")))),
		},
		{
			name:   "border box",
			render: `\boxed{x}`,
			math:   math(&omml.Node{Kind: omml.BoxKind, Data: "borderBox", Children: []*omml.Node{role("e", text("x"))}}),
		},
		{
			name:   "normal text",
			render: `\text{if x}`,
			math:   math(textp("if x", map[string]string{"nor": ""})),
		},
		{
			name:   "normal text of symbols",
			render: `\alpha\leq\beta`,
			math:   math(textp("α≤β", map[string]string{"nor": ""})),
		},
		{
			name:   "normal text around symbol",
			render: `\text{if x}\geq\text{0}`,
			math:   math(textp("if x≥0", map[string]string{"nor": ""})),
		},
		{
			name:   "symbols",
			render: `a\leq b\neq\infty`,
			math:   math(text("a≤b≠∞")),
		},
		{
			name:   "minus sign",
			render: `a-b`,
			math:   math(text("a−b")),
		},
		{
			name:   "math italic letters",
			render: `xh`,
			math:   math(text("𝑥ℎ")),
		},
		{
			name:   "differential",
			render: `x \, dy`,
			math:   math(text("xⅆy")),
		},
		{
			name:   "unknown kind",
			render: `ab`,
			math:   math(&omml.Node{Kind: omml.Kind(999), Children: []*omml.Node{text("a"), text("b")}}),
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			got := omml.Convert(tc.math)

			if diff := cmp.Diff(tc.render, got); diff != "" {
				t.Errorf("LaTeX does not match (-want +got):\n%s", diff)
			}
		})
	}
}

func TestConvert_Nil(t *testing.T) {
	if got := omml.Convert(nil); got != "" {
		t.Errorf("Nil tree must be empty, got %q", got)
	}
}

func TestConvert_Symbols(t *testing.T) {
	glyphs := []string{"≠", "≤", "≥", "±", "×", "÷", "≈", "≡", "∈", "∉", "⊂", "∪", "∩", "∅", "∀", "∃", "→", "⇒", "α", "β", "Ω", "∂", "∇", "∞", "∠", "∴", "°", "⋅", "ℝ"}

	for _, glyph := range glyphs {
		t.Run(glyph, func(t *testing.T) {
			cmd, ok := omml.Symbol(glyph)
			if !ok {
				t.Fatalf("Glyph %q is not in the table", glyph)
			}

			got := omml.Convert(&omml.Node{Kind: omml.TextKind, Data: "a" + glyph + "b"})

			if !strings.Contains(got, cmd) {
				t.Errorf("Output %q does not contain %q", got, cmd)
			}

			if strings.Contains(got, glyph) {
				t.Errorf("Output %q still contains %q", got, glyph)
			}
		})
	}
}

func TestConvert_NestedScripts(t *testing.T) {
	text := func(t string) *omml.Node {
		return &omml.Node{Kind: omml.TextKind, Data: t}
	}

	role := func(name string, children ...*omml.Node) *omml.Node {
		return &omml.Node{Kind: omml.ElementKind, Data: name, Children: children}
	}

	sub := &omml.Node{Kind: omml.SubscriptKind, Children: []*omml.Node{role("e", text("x")), role("sub", text("i"))}}
	sup := &omml.Node{Kind: omml.SuperscriptKind, Children: []*omml.Node{role("e", sub), role("sup", text("2"))}}

	want := "{" + omml.Convert(sub) + "}^{2}"
	if got := omml.Convert(sup); got != want {
		t.Errorf("Nested scripts do not match: want %q, got %q", want, got)
	}
}

func TestConvertString(t *testing.T) {
	tt := []struct {
		name   string
		input  string
		render string
	}{
		{
			name:   "fraction",
			input:  `<m:oMath><m:f><m:num><m:r><m:t>1</m:t></m:r></m:num><m:den><m:r><m:t>2</m:t></m:r></m:den></m:f></m:oMath>`,
			render: `\frac{1}{2}`,
		},
		{
			name:   "superscript",
			input:  `<m:oMath><m:sSup><m:e><m:r><m:t>x</m:t></m:r></m:e><m:sup><m:r><m:t>2</m:t></m:r></m:sup></m:sSup></m:oMath>`,
			render: `x^{2}`,
		},
		{
			name:   "radical",
			input:  `<m:oMath><m:rad><m:radPr><m:degHide m:val="1"/></m:radPr><m:deg/><m:e><m:r><m:t>a+b</m:t></m:r></m:e></m:rad></m:oMath>`,
			render: `\sqrt{a+b}`,
		},
		{
			name: "sum",
			input: `<m:oMath><m:nary><m:naryPr><m:chr m:val="∑"/><m:limLoc m:val="undOvr"/></m:naryPr>` +
				`<m:sub><m:r><m:t>k=0</m:t></m:r></m:sub><m:sup><m:r><m:t>n</m:t></m:r></m:sup><m:e><m:r><m:t>k</m:t></m:r></m:e></m:nary></m:oMath>`,
			render: `\sum_{k=0}^{n} k`,
		},
		{
			name: "binomial",
			input: `<m:oMath><m:d><m:dPr><m:ctrlPr><w:rPr><w:i/></w:rPr></m:ctrlPr></m:dPr><m:e><m:f><m:fPr><m:type m:val="noBar"/></m:fPr>` +
				`<m:num><m:r><m:t>n</m:t></m:r></m:num><m:den><m:r><m:t>k</m:t></m:r></m:den></m:f></m:e></m:d></m:oMath>`,
			render: `\binom{n}{k}`,
		},
		{
			name: "function with styled name",
			input: `<m:oMath><m:func><m:fName><m:r><m:rPr><m:sty m:val="p"/></m:rPr><w:rPr><w:rFonts w:ascii="Cambria Math"/></w:rPr><m:t>sin</m:t></m:r></m:fName>` +
				`<m:e><m:r><m:t>𝑥</m:t></m:r></m:e></m:func></m:oMath>`,
			render: `\sin(x)`,
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			got, err := omml.ConvertString(tc.input)
			if err != nil {
				t.Fatalf("Unable to convert: %v", err)
			}

			if diff := cmp.Diff(tc.render, got); diff != "" {
				t.Errorf("LaTeX does not match (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRender(t *testing.T) {
	node := &omml.Node{Kind: omml.TextKind, Data: "α+1"}

	var b bytes.Buffer
	if err := omml.Render(&b, node); err != nil {
		t.Fatalf("Unable to render: %v", err)
	}

	if got, want := b.String(), `\alpha+1`; got != want {
		t.Errorf("LaTeX does not match: want %q, got %q", want, got)
	}
}
