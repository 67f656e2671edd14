package omml

import (
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

var symbols = map[string]string{
	// relations
	"≠": `\neq`, "≤": `\leq`, "≥": `\geq`, "≈": `\approx`, "≡": `\equiv`, "∼": `\sim`,
	"≪": `\ll`, "≫": `\gg`, "∝": `\propto`, "≅": `\cong`, "≃": `\simeq`, "⊥": `\perp`, "∥": `\parallel`,

	// operators
	"±": `\pm`, "∓": `\mp`, "×": `\times`, "÷": `\div`, "·": `\cdot`, "⋅": `\cdot`, "∘": `\circ`,
	"⊕": `\oplus`, "⊗": `\otimes`, "∗": `*`,

	// sets and logic
	"∈": `\in`, "∉": `\notin`, "∋": `\ni`, "⊂": `\subset`, "⊆": `\subseteq`, "⊃": `\supset`, "⊇": `\supseteq`,
	"∪": `\cup`, "∩": `\cap`, "∅": `\emptyset`, "∧": `\land`, "∨": `\lor`, "¬": `\neg`,
	"∀": `\forall`, "∃": `\exists`, "∴": `\therefore`, "∵": `\because`,
	"ℝ": `\mathbb{R}`, "ℕ": `\mathbb{N}`, "ℤ": `\mathbb{Z}`, "ℚ": `\mathbb{Q}`, "ℂ": `\mathbb{C}`,

	// arrows
	"→": `\rightarrow`, "←": `\leftarrow`, "↔": `\leftrightarrow`, "⇒": `\Rightarrow`, "⇐": `\Leftarrow`,
	"⇔": `\Leftrightarrow`, "↦": `\mapsto`, "↑": `\uparrow`, "↓": `\downarrow`,

	// greek
	"α": `\alpha`, "β": `\beta`, "γ": `\gamma`, "δ": `\delta`, "ε": `\epsilon`, "ϵ": `\epsilon`, "ζ": `\zeta`,
	"η": `\eta`, "θ": `\theta`, "ϑ": `\vartheta`, "ι": `\iota`, "κ": `\kappa`, "λ": `\lambda`, "μ": `\mu`,
	"ν": `\nu`, "ξ": `\xi`, "ο": `o`, "π": `\pi`, "ρ": `\rho`, "ϱ": `\varrho`, "σ": `\sigma`, "ς": `\varsigma`,
	"τ": `\tau`, "υ": `\upsilon`, "φ": `\phi`, "ϕ": `\phi`, "χ": `\chi`, "ψ": `\psi`, "ω": `\omega`,
	"Γ": `\Gamma`, "Δ": `\Delta`, "Θ": `\Theta`, "Λ": `\Lambda`, "Ξ": `\Xi`, "Π": `\Pi`, "Σ": `\Sigma`,
	"ϒ": `\Upsilon`, "Υ": `\Upsilon`, "Φ": `\Phi`, "Ψ": `\Psi`, "Ω": `\Omega`,

	// calculus and n-ary operators
	"∂": `\partial`, "∇": `\nabla`, "∞": `\infty`, "√": `\sqrt`, "ⅆ": `\, d`,
	"∑": `\sum`, "∏": `\prod`, "∐": `\coprod`, "∫": `\int`, "∬": `\iint`, "∭": `\iiint`, "∮": `\oint`, "∯": `\oiint`,
	"⋃": `\bigcup`, "⋂": `\bigcap`, "⋁": `\bigvee`, "⋀": `\bigwedge`,
	"⨁": `\bigoplus`, "⨂": `\bigotimes`, "⨀": `\bigodot`, "⨄": `\biguplus`,

	// misc
	"∠": `\angle`, "…": `\ldots`, "⋯": `\cdots`, "⋮": `\vdots`, "⋱": `\ddots`, "°": `^\circ`,
	"ℏ": `\hbar`, "ℓ": `\ell`, "′": `'`, "″": `''`,
}

var functions = map[string]string{
	"sin": `\sin`, "cos": `\cos`, "tan": `\tan`, "sec": `\sec`, "csc": `\csc`, "cot": `\cot`,
	"arcsin": `\arcsin`, "arccos": `\arccos`, "arctan": `\arctan`,
	"sinh": `\sinh`, "cosh": `\cosh`, "tanh": `\tanh`, "coth": `\coth`,
	"log": `\log`, "lg": `\lg`, "ln": `\ln`, "exp": `\exp`,
	"lim": `\lim`, "sup": `\sup`, "inf": `\inf`, "min": `\min`, "max": `\max`,
	"det": `\det`, "dim": `\dim`, "gcd": `\gcd`, "arg": `\arg`, "deg": `\deg`, "ker": `\ker`, "hom": `\hom`, "Pr": `\Pr`,
}

// symbolKeys are symbol table keys, longest first, so that multi rune glyphs win over their prefixes
var symbolKeys = func() []string {
	keys := make([]string, 0, len(symbols))
	for k := range symbols {
		keys = append(keys, k)
	}

	slices.SortFunc(keys, func(a, b string) int {
		if d := utf8.RuneCountInString(b) - utf8.RuneCountInString(a); d != 0 {
			return d
		}

		return strings.Compare(a, b)
	})

	return keys
}()

// Symbol returns LaTeX command for a single glyph, if there is one.
func Symbol(glyph string) (string, bool) {
	v, ok := symbols[glyph]
	return v, ok
}

// Function returns LaTeX command for a function name, if there is one.
func Function(name string) (string, bool) {
	v, ok := functions[name]
	return v, ok
}

// Symbols replaces math glyphs with LaTeX commands. A space is added after command when it's followed by a
// letter, otherwise command and the letter would be read as one command name.
func Symbols(text string) string {
	var b strings.Builder

	for i := 0; i < len(text); {
		key, cmd, ok := matchSymbol(text[i:])
		if !ok {
			_, size := utf8.DecodeRuneInString(text[i:])
			b.WriteString(text[i : i+size])
			i += size
			continue
		}

		b.WriteString(cmd)
		i += len(key)

		if next, _ := utf8.DecodeRuneInString(text[i:]); i < len(text) && unicode.IsLetter(next) && endsWithControlWord(cmd) {
			b.WriteByte(' ')
		}
	}

	return b.String()
}

func matchSymbol(text string) (string, string, bool) {
	// all glyphs in the table are outside of ASCII range
	if text[0] < utf8.RuneSelf {
		return "", "", false
	}

	for _, key := range symbolKeys {
		if strings.HasPrefix(text, key) {
			return key, symbols[key], true
		}
	}

	return "", "", false
}

// Functions replaces whole-word function names (sin, log, lim...) with LaTeX commands. The word has to be
// followed by a space, an opening parenthesis or end of text. Text which is already a command is left as is.
func Functions(text string) string {
	if strings.HasPrefix(text, "\\") {
		return text
	}

	var b strings.Builder

	for i := 0; i < len(text); {
		if !isLetter(text[i]) {
			_, size := utf8.DecodeRuneInString(text[i:])
			b.WriteString(text[i : i+size])
			i += size
			continue
		}

		j := i
		for j < len(text) && isLetter(text[j]) {
			j++
		}

		word := text[i:j]
		if cmd, ok := functions[word]; ok && wordStart(text, i) && wordEnd(text, j) {
			b.WriteString(cmd)
		} else {
			b.WriteString(word)
		}

		i = j
	}

	return b.String()
}

func wordStart(text string, i int) bool {
	if i == 0 {
		return true
	}

	prev, _ := utf8.DecodeLastRuneInString(text[:i])
	return !(unicode.IsLetter(prev) || unicode.IsDigit(prev) || prev == '_' || prev == '\\')
}

func wordEnd(text string, j int) bool {
	if j == len(text) {
		return true
	}

	next, _ := utf8.DecodeRuneInString(text[j:])
	return next == '(' || unicode.IsSpace(next)
}
