package omml

import (
	"regexp"
	"strings"
)

var (
	scriptSpace   = regexp.MustCompile(`\s+([_^])`)
	doubleBraces  = regexp.MustCompile(`\{\{([^{}]+)\}\}`)
	fracNumerator = regexp.MustCompile(`\\frac([a-zA-Z0-9])\{`)
	binomLetters  = regexp.MustCompile(`\\binom([a-zA-Z])([a-zA-Z])`)
	wrappedBinom  = regexp.MustCompile(`\\left\(\\binom\{([^{}]+)\}\{([^{}]+)\}\\right\)`)
	repeatedLimit = regexp.MustCompile(`(\\lim[^}]*\})\s*\\lim\s`)
	exponentWord  = regexp.MustCompile(`e\^\{[^{}]+\}[a-z]+`)
	calledTwice   = regexp.MustCompile(`([a-zA-Z]{2,})\\left\(([^()]*)\\right\)`)
)

// complex structures rely on their braces, single character groups are not stripped there
var complexMarkers = []string{`\binom`, `\left`, `\right`, `\begin`}

// spaced are commands which often get glued to the following identifier, eg. \partialx
var spaced = map[string]bool{
	"partial": true, "nabla": true, "cdot": true, "times": true, "exists": true, "forall": true,
	"rightarrow": true, "leftarrow": true, "leftrightarrow": true, "Rightarrow": true, "Leftarrow": true,
	"Leftrightarrow": true, "mapsto": true,
	"alpha": true, "beta": true, "gamma": true, "delta": true, "epsilon": true, "varepsilon": true, "zeta": true,
	"eta": true, "theta": true, "vartheta": true, "iota": true, "kappa": true, "lambda": true, "mu": true,
	"nu": true, "xi": true, "pi": true, "rho": true, "varrho": true, "sigma": true, "varsigma": true, "tau": true,
	"upsilon": true, "phi": true, "varphi": true, "chi": true, "psi": true, "omega": true,
	"Gamma": true, "Delta": true, "Theta": true, "Lambda": true, "Xi": true, "Pi": true, "Sigma": true,
	"Upsilon": true, "Phi": true, "Psi": true, "Omega": true,
}

var relations = map[string]bool{"approx": true, "equiv": true, "sim": true}

// known are command names which must never be split, even if they start with one of spaced commands
var known = func() map[string]bool {
	names := map[string]bool{
		"frac": true, "binom": true, "sqrt": true, "left": true, "right": true, "begin": true, "end": true,
		"text": true, "overline": true, "underline": true, "overbrace": true, "underbrace": true, "boxed": true,
		"overset": true, "underset": true, "overrightarrow": true, "overleftarrow": true, "cdots": true,
		"cdotp": true, "top": true, "pitchfork": true,
	}

	collect := func(latex string) {
		for i := 0; i < len(latex); i++ {
			if latex[i] == '\\' {
				if name := controlWord(latex, i); name != "" {
					names[name] = true
				}
			}
		}
	}

	for _, v := range symbols {
		collect(v)
	}

	for _, v := range functions {
		collect(v)
	}

	for _, v := range accents {
		names[v] = true
	}

	for _, v := range delimiters {
		collect(v)
	}

	return names
}()

// Normalize cleans up composed LaTeX: strips needless braces, fixes spacing around scripts and commands
// and removes known duplication artifacts. Normalize is idempotent.
func Normalize(latex string) string {
	for {
		next := normalize(latex)
		if next == latex {
			return latex
		}

		latex = next
	}
}

func normalize(latex string) string {
	if !containsAny(latex, complexMarkers) {
		latex = stripBraces(latex)
		latex = doubleBraces.ReplaceAllString(latex, "{$1}")
	}

	latex = scriptSpace.ReplaceAllString(latex, "$1")
	latex = separate(latex)
	latex = fracNumerator.ReplaceAllString(latex, `\frac{$1}{`)
	latex = deduplicate(latex)

	return latex
}

func containsAny(latex string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(latex, m) {
			return true
		}
	}

	return false
}

// stripBraces removes braces around a single letter or digit, unless the group is an argument of a command
// or a script
func stripBraces(latex string) string {
	var b strings.Builder

	for i := 0; i < len(latex); i++ {
		if latex[i] == '{' && i+2 < len(latex) && latex[i+2] == '}' && isAlphanumeric(latex[i+1]) && !isArgument(latex, i) {
			b.WriteByte(latex[i+1])
			i += 2
			continue
		}

		b.WriteByte(latex[i])
	}

	return b.String()
}

func isAlphanumeric(c byte) bool {
	return isLetter(c) || isDigit(c)
}

// isArgument checks if brace group at position i belongs to a command, script or a preceding group
func isArgument(latex string, i int) bool {
	if i == 0 {
		return false
	}

	switch prev := latex[i-1]; {
	case prev == '^' || prev == '_' || prev == '}' || prev == ']':
		return true
	case isLetter(prev):
		j := i - 1
		for j > 0 && isLetter(latex[j-1]) {
			j--
		}

		return j > 0 && latex[j-1] == '\\'
	default:
		return false
	}
}

// separate puts a space between a command and a letter glued to it, eg. \partialx becomes \partial x
func separate(latex string) string {
	var b strings.Builder

	for i := 0; i < len(latex); i++ {
		if latex[i] != '\\' {
			b.WriteByte(latex[i])
			continue
		}

		name := controlWord(latex, i)
		if name == "" {
			// control symbol, eg. \, or \{
			b.WriteByte('\\')
			if i+1 < len(latex) {
				b.WriteByte(latex[i+1])
				i++
			}

			continue
		}

		end := i + 1 + len(name)

		if !known[name] {
			if prefix := spacedPrefix(name); prefix != "" {
				b.WriteString(`\` + prefix + " " + name[len(prefix):])
				i = end - 1
				continue
			}
		}

		b.WriteString(latex[i:end])
		if relations[name] && end < len(latex) && isDigit(latex[end]) {
			b.WriteByte(' ')
		}

		i = end - 1
	}

	return b.String()
}

func spacedPrefix(name string) (prefix string) {
	for n := len(name) - 1; n > 0; n-- {
		if spaced[name[:n]] {
			return name[:n]
		}
	}

	return
}

// deduplicate fixes known artifacts of the bottom-up conversion where the same piece is emitted twice
func deduplicate(latex string) string {
	latex = strings.ReplaceAll(latex, "⋅", `\cdot `)
	latex = wrappedBinom.ReplaceAllString(latex, `\binom{$1}{$2}`)
	latex = binomLetters.ReplaceAllString(latex, `\binom{$1}{$2}`)
	latex = repeatedLimit.ReplaceAllString(latex, "$1 ")
	latex = repeatedGroups(latex)
	latex = repeatedExponents(latex)
	latex = repeatedCalls(latex)

	return latex
}

// repeatedGroups removes bracketed \left[...\right] group which directly follows its exact copy. Round
// groups are left alone, (x)(x) is a legit product.
func repeatedGroups(latex string) string {
	for i := 0; i < len(latex); i++ {
		if !strings.HasPrefix(latex[i:], `\left[`) {
			continue
		}

		end := closeGroup(latex, i)
		if end < 0 {
			continue
		}

		unit := latex[i:end]
		for strings.HasPrefix(latex[end:], unit) {
			latex = latex[:end] + latex[end+len(unit):]
		}
	}

	return latex
}

// closeGroup returns position after \right delimiter which matches \left at position i, or -1
func closeGroup(latex string, i int) int {
	depth := 0
	for j := i; j < len(latex); j++ {
		if latex[j] != '\\' {
			continue
		}

		switch controlWord(latex, j) {
		case "left":
			depth++
		case "right":
			depth--
			if depth == 0 {
				return delimiterEnd(latex, j+len(`\right`))
			}
		}
	}

	return -1
}

// delimiterEnd returns position after delimiter which starts at i: a character, a control symbol or a command
func delimiterEnd(latex string, i int) int {
	if i >= len(latex) {
		return i
	}

	if latex[i] != '\\' {
		return i + 1
	}

	if name := controlWord(latex, i); name != "" {
		return i + 1 + len(name)
	}

	return min(i+2, len(latex))
}

// repeatedExponents removes every e^{...}dx which directly follows its exact copy
func repeatedExponents(latex string) string {
	for {
		next := repeatedExponent(latex)
		if next == latex {
			return latex
		}

		latex = next
	}
}

func repeatedExponent(latex string) string {
	for _, loc := range exponentWord.FindAllStringIndex(latex, -1) {
		start, end := loc[0], loc[1]
		word := end - strings.Index(latex[start:end], "}") - start - 1

		// the word may swallow beginning of the copy, eg. e^{x}dxe^{x}dx, try shorter words first
		for n := 1; n <= word; n++ {
			unit := latex[start : end-word+n]
			if strings.HasPrefix(latex[start+len(unit):], unit) {
				return latex[:start+len(unit)] + latex[start+2*len(unit):]
			}
		}
	}

	return latex
}

// repeatedCalls removes function name repeated after its argument, eg. sin\left(x\right)sin
func repeatedCalls(latex string) string {
	for {
		next := repeatedCall(latex)
		if next == latex {
			return latex
		}

		latex = next
	}
}

func repeatedCall(latex string) string {
	for _, loc := range calledTwice.FindAllStringSubmatchIndex(latex, -1) {
		name := latex[loc[2]:loc[3]]
		end := loc[1]

		if strings.HasPrefix(latex[end:], name) && (end+len(name) == len(latex) || !isLetter(latex[end+len(name)])) {
			return latex[:end] + latex[end+len(name):]
		}
	}

	return latex
}
