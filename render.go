package omml

import (
	"io"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

var (
	differentialPair   = regexp.MustCompile(`([a-z])ⅆ([a-z])ⅆ`)
	differential       = regexp.MustCompile(`([a-z])ⅆ`)
	plainDifferentials = regexp.MustCompile(`([a-z])d([a-z])d\b`)
	greekDifferential  = regexp.MustCompile(`([a-z])d([α-ω])`)
)

var accents = map[string]string{
	"\u0302": "hat", "^": "hat",
	"\u0303": "tilde", "~": "tilde",
	"\u0304": "bar", "\u0305": "bar", "¯": "bar",
	"\u0307": "dot", "˙": "dot",
	"\u0308": "ddot", "¨": "ddot",
	"\u20d7": "vec", "→": "vec",
	"\u0301": "acute",
	"\u0300": "grave",
	"\u0306": "breve",
	"\u030c": "check",
}

// delimiters maps delimiter glyphs to the form accepted by \left and \right
var delimiters = map[string]string{
	"":  ".",
	"(": "(", ")": ")",
	"[": "[", "]": "]",
	"{": `\{`, "}": `\}`,
	"|": "|", "‖": `\|`,
	"⟨": `\langle`, "⟩": `\rangle`,
	"⌊": `\lfloor`, "⌋": `\rfloor`,
	"⌈": `\lceil`, "⌉": `\rceil`,
}

var matrices = map[string]string{
	"(": "pmatrix",
	"[": "bmatrix",
	"{": "Bmatrix",
	"|": "vmatrix",
	"‖": "Vmatrix",
}

// Render writes LaTeX of the math tree to w.
func Render(w io.Writer, node *Node) error {
	_, err := io.WriteString(w, Convert(node))
	return err
}

// Convert translates math tree into LaTeX. Conversion never fails, missing parts of the tree are rendered
// as empty strings. The result of the top level node is normalized.
func Convert(node *Node) string {
	if node == nil {
		return ""
	}

	return Normalize(convert(node, nil))
}

// ConvertString parses OMML fragment and converts it into LaTeX.
func ConvertString(fragment string) (string, error) {
	node, err := Parse(strings.NewReader(fragment))
	if err != nil {
		return "", err
	}

	return Convert(node), nil
}

// convert dispatches node by its kind, parent is the closest structural node above (role containers are
// transparent)
func convert(node, parent *Node) string {
	if node == nil {
		return ""
	}

	switch node.Kind {
	case TextKind:
		return convertText(node)
	case FractionKind:
		return convertFraction(node, parent)
	case SuperscriptKind:
		return scriptBase(node) + "^{" + part(node, RoleSuperscript) + "}"
	case SubscriptKind:
		return scriptBase(node) + "_{" + part(node, RoleSubscript) + "}"
	case SubSuperscriptKind:
		return scriptBase(node) + "_{" + part(node, RoleSubscript) + "}^{" + part(node, RoleSuperscript) + "}"
	case PreScriptKind:
		return "{}_{" + part(node, RoleSubscript) + "}^{" + part(node, RoleSuperscript) + "}" + scriptBase(node)
	case NaryKind:
		return convertNary(node)
	case RadicalKind:
		return convertRadical(node)
	case DelimiterKind:
		return convertDelimiter(node)
	case MatrixKind:
		return convertMatrix(node, "matrix")
	case FunctionKind:
		return convertFunction(node)
	case LimitLowerKind:
		return convertLimit(node, "_")
	case LimitUpperKind:
		return convertLimit(node, "^")
	case AccentKind:
		return convertAccent(node)
	case EquationArrayKind:
		return convertEquationArray(node)
	case GroupCharKind:
		return convertGroupChar(node)
	case BarKind:
		if char(node, "pos", "bot") == "top" {
			return `\overline{` + part(node, RoleBase) + "}"
		}

		return `\underline{` + part(node, RoleBase) + "}"
	case BoxKind:
		if node.Data == "borderBox" {
			return `\boxed{` + part(node, RoleBase) + "}"
		}

		return part(node, RoleBase)
	default:
		return convertChildren(node, parent)
	}
}

func convertChildren(node, parent *Node) string {
	if node.Kind != ElementKind {
		parent = node
	}

	var b strings.Builder
	for _, child := range node.Children {
		b.WriteString(convert(child, parent))
	}

	return b.String()
}

func part(node *Node, role string) string {
	return strings.TrimSpace(convert(node.Role(role), node))
}

func convertText(node *Node) string {
	text := fold(node.Data)

	if flag(node, "nor") {
		return normalText(text)
	}

	text = strings.ReplaceAll(text, "−", "-")

	// differentials are spaced out before symbols are replaced, otherwise ⅆ is already \, d
	text = differentialPair.ReplaceAllString(text, `${1} \, d${2} \, d`)
	text = differential.ReplaceAllString(text, `${1} \, d`)
	text = plainDifferentials.ReplaceAllString(text, `${1} \, d${2} \, d`)
	text = greekDifferential.ReplaceAllString(text, `${1} \, d${2}`)

	text = Symbols(text)
	text = Functions(text)

	return text
}

// normalText puts plain parts of the run into \text{...}, math glyphs between them become commands
func normalText(text string) string {
	var b, chunk strings.Builder

	flush := func() {
		if chunk.Len() > 0 {
			b.WriteString(`\text{` + escape(chunk.String()) + `}`)
			chunk.Reset()
		}
	}

	for i := 0; i < len(text); {
		key, cmd, ok := matchSymbol(text[i:])
		if !ok {
			_, size := utf8.DecodeRuneInString(text[i:])
			chunk.WriteString(text[i : i+size])
			i += size
			continue
		}

		flush()
		b.WriteString(cmd)
		i += len(key)
	}

	flush()

	return b.String()
}

// fold normalizes text run: canonical composition and math alphanumerics (𝑥, 𝐀, ℎ) to plain letters
func fold(text string) string {
	text = norm.NFC.String(text)

	if !strings.ContainsFunc(text, isMathAlphanumeric) {
		return text
	}

	var b strings.Builder
	for _, r := range text {
		if isMathAlphanumeric(r) {
			b.WriteString(norm.NFKC.String(string(r)))
			continue
		}

		b.WriteRune(r)
	}

	return b.String()
}

func isMathAlphanumeric(r rune) bool {
	return r >= 0x1D400 && r <= 0x1D7FF || r == 'ℎ'
}

func convertFraction(node, parent *Node) string {
	num := part(node, RoleNumerator)
	den := part(node, RoleDenominator)

	if isBinomial(num, den, parent) {
		return `\binom{` + num + "}{" + den + "}"
	}

	return `\frac{` + num + "}{" + den + "}"
}

// isBinomial tells if fraction is "n choose k": both parts are single letters and either it's the canonical
// n over k or the fraction sits right inside delimiters.
func isBinomial(num, den string, parent *Node) bool {
	if !isSingleLetter(num) || !isSingleLetter(den) {
		return false
	}

	if num == "n" && den == "k" {
		return true
	}

	return parent != nil && parent.Kind == DelimiterKind
}

// scriptBase converts base of sub- or superscript and wraps it in braces unless it's a single token
func scriptBase(node *Node) string {
	base := collapseRepeated(part(node, RoleBase))

	if isToken(base) {
		return base
	}

	if inner := only(node.Role(RoleBase)); inner != nil && inner.Kind == DelimiterKind {
		return base
	}

	return "{" + base + "}"
}

// collapseRepeated reduces bracketed base which holds the same expression several times in a row, like
// \left[\int f\int f\right], to a single copy.
func collapseRepeated(base string) string {
	const open, closing = `\left[`, `\right]`
	if !strings.HasPrefix(base, open) || !strings.HasSuffix(base, closing) || len(base) <= len(open)+len(closing) {
		return base
	}

	inner := base[len(open) : len(base)-len(closing)]
	for size := 1; size <= len(inner)/2; size++ {
		if len(inner)%size != 0 {
			continue
		}

		unit := inner[:size]
		if strings.Repeat(unit, len(inner)/size) != inner {
			continue
		}

		if !strings.Contains(unit, `\`) || !balanced(unit) {
			continue
		}

		return open + unit + closing
	}

	return base
}

func convertNary(node *Node) string {
	op := char(node, "chr", "∑")
	if op == "" {
		op = "∑"
	}

	out := Symbols(op)

	if !flag(node, "subHide") {
		if sub := part(node, RoleSubscript); sub != "" {
			out += "_{" + sub + "}"
		}
	}

	if !flag(node, "supHide") {
		if sup := part(node, RoleSuperscript); sup != "" {
			out += "^{" + sup + "}"
		}
	}

	if e := part(node, RoleBase); e != "" {
		out += " " + e
	}

	return out
}

func convertRadical(node *Node) string {
	e := part(node, RoleBase)

	if flag(node, "degHide") {
		return `\sqrt{` + e + "}"
	}

	deg := part(node, RoleDegree)
	if deg == "" {
		return `\sqrt{` + e + "}"
	}

	return `\sqrt[` + deg + "]{" + e + "}"
}

func convertDelimiter(node *Node) string {
	open := char(node, "begChr", "(")
	closing := char(node, "endChr", ")")

	operands := node.Roles(RoleBase)
	if len(operands) == 0 {
		return ""
	}

	if len(operands) == 1 {
		if inner := only(operands[0]); inner != nil {
			switch {
			case inner.Kind == MatrixKind:
				env, ok := matrices[open]
				if !ok {
					env = "pmatrix"
				}

				return convertMatrix(inner, env)
			case inner.Kind == EquationArrayKind && open == "{" && closing == "":
				return `\begin{cases} ` + convertEquationArray(inner) + ` \end{cases}`
			}
		}
	}

	var parts []string
	for _, operand := range operands {
		if inner := only(operand); inner != nil && inner.Kind == EquationArrayKind {
			parts = append(parts, `\begin{aligned} `+convertEquationArray(inner)+` \end{aligned}`)
			continue
		}

		parts = append(parts, strings.TrimSpace(convert(operand, node)))
	}

	inner := strings.Join(parts, char(node, "sepChr", "|"))

	// binomial already draws its own parentheses
	if open == "(" && closing == ")" && isBinom(inner) {
		return inner
	}

	return wrap(open, closing, inner)
}

// wrap puts scalable delimiters around latex, if one of the glyphs can't be scaled both are printed as is
func wrap(open, closing, latex string) string {
	if open == "" && closing == "" {
		return latex
	}

	left, lok := delimiters[open]
	right, rok := delimiters[closing]

	if !lok || !rok {
		return open + latex + closing
	}

	out := `\left` + left
	if endsWithControlWord(out) && latex != "" && isLetter(latex[0]) {
		out += " "
	}

	return out + latex + `\right` + right
}

func convertMatrix(node *Node, env string) string {
	var rows []string

	for _, row := range node.Children {
		if row == nil || row.Kind != MatrixRowKind {
			continue
		}

		var cells []string
		empty := true

		for _, cell := range row.Roles(RoleBase) {
			text := strings.TrimSpace(convert(cell, row))
			if text != "" {
				empty = false
			}

			cells = append(cells, text)
		}

		if empty {
			continue
		}

		rows = append(rows, strings.Join(cells, " & "))
	}

	if len(rows) == 0 {
		return ""
	}

	return `\begin{` + env + "} " + strings.Join(rows, ` \\ `) + ` \end{` + env + "}"
}

func convertFunction(node *Node) string {
	fname := part(node, RoleFunctionName)
	arg := part(node, RoleBase)

	// limit with lower bound, eg. lim_{x→0}, takes its argument without parentheses
	if find(node.Role(RoleFunctionName), LimitLowerKind) != nil {
		if arg != "" && !strings.Contains(arg, `\lim`) {
			return fname + " " + arg
		}

		return fname
	}

	if fname != "" && !strings.HasPrefix(fname, `\`) {
		fname = Functions(fname)
	}

	switch {
	case fname == "":
		return arg
	case strings.Contains(strings.ToLower(fname), "lim"):
		if arg == "" {
			return fname
		}

		return fname + " " + arg
	case arg == "":
		return fname
	case isParenthesized(node.Role(RoleBase)):
		return fname + arg
	default:
		return fname + "(" + arg + ")"
	}
}

func isParenthesized(e *Node) bool {
	inner := only(e)
	if inner == nil || inner.Kind != DelimiterKind {
		return false
	}

	return char(inner, "begChr", "(") == "(" && char(inner, "endChr", ")") == ")"
}

func convertLimit(node *Node, script string) string {
	base := part(node, RoleBase)
	lim := part(node, RoleLimit)

	if base == "lim" {
		base = `\lim`
	} else if !strings.HasPrefix(base, `\`) {
		base = Functions(base)
	}

	if lim == "" {
		return base
	}

	if strings.HasPrefix(base, `\`) && isToken(base) {
		return base + script + "{" + lim + "}"
	}

	if script == "_" {
		return `\underset{` + lim + "}{" + base + "}"
	}

	return `\overset{` + lim + "}{" + base + "}"
}

func convertAccent(node *Node) string {
	name, ok := accents[char(node, "chr", "\u0302")]
	if !ok {
		name = "hat"
	}

	return `\` + name + "{" + part(node, RoleBase) + "}"
}

func convertEquationArray(node *Node) string {
	var rows []string

	for _, e := range node.Roles(RoleBase) {
		text := strings.TrimSpace(convert(e, node))
		if text == "" {
			continue
		}

		rows = append(rows, branch(text))
	}

	return strings.Join(rows, ` \\ `)
}

// branch formats one row of a piecewise expression: value and condition are split by the first comma
func branch(text string) string {
	i := comma(text)
	if i < 0 {
		return text
	}

	value := strings.TrimSpace(text[:i])
	condition := strings.TrimSpace(text[i+1:])
	condition = strings.TrimSpace(strings.TrimPrefix(condition, "&"))

	if condition == "" {
		return value
	}

	if lower := strings.ToLower(condition); strings.Contains(lower, "odd") || strings.Contains(lower, "even") {
		return value + `, & \text{` + condition + "}"
	}

	return value + ", & " + condition
}

func comma(text string) int {
	depth := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\\':
			i++
		case '{':
			depth++
		case '}':
			depth--
		case ',':
			if depth == 0 {
				return i
			}
		}
	}

	return -1
}

func convertGroupChar(node *Node) string {
	e := part(node, RoleBase)
	glyph := char(node, "chr", "⏟")
	top := char(node, "pos", "bot") == "top"

	switch glyph {
	case "⏟":
		return `\underbrace{` + e + "}"
	case "⏞":
		return `\overbrace{` + e + "}"
	case "→":
		if top {
			return `\overrightarrow{` + e + "}"
		}
	case "←":
		if top {
			return `\overleftarrow{` + e + "}"
		}
	}

	symbol := Symbols(glyph)
	if top {
		return `\overset{` + symbol + "}{" + e + "}"
	}

	return `\underset{` + symbol + "}{" + e + "}"
}
