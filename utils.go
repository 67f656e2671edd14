package omml

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

func isLetter(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func endsWithControlWord(latex string) bool {
	i := len(latex)
	for i > 0 && isLetter(latex[i-1]) {
		i--
	}

	return i < len(latex) && i > 0 && latex[i-1] == '\\'
}

// controlWord reads command name after backslash at position i, name is empty for control symbols like \,
func controlWord(latex string, i int) string {
	j := i + 1
	for j < len(latex) && isLetter(latex[j]) {
		j++
	}

	return latex[i+1 : j]
}

// group returns position right after the brace group which starts at i, or -1 if braces are not balanced
func group(latex string, i int) int {
	if i >= len(latex) || latex[i] != '{' {
		return -1
	}

	depth := 0
	for j := i; j < len(latex); j++ {
		switch latex[j] {
		case '\\':
			j++ // escaped character, eg. \{
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return j + 1
			}
		}
	}

	return -1
}

func balanced(latex string) bool {
	depth := 0
	for j := 0; j < len(latex); j++ {
		switch latex[j] {
		case '\\':
			j++
		case '{':
			depth++
		case '}':
			depth--
			if depth < 0 {
				return false
			}
		}
	}

	return depth == 0
}

// isToken checks if latex is a single unit which does not need braces to carry a script: one character,
// one command, a number or a brace group.
func isToken(latex string) bool {
	if latex == "" {
		return false
	}

	if utf8.RuneCountInString(latex) == 1 {
		return true
	}

	if latex[0] == '\\' {
		name := controlWord(latex, 0)
		return name != "" && len(name)+1 == len(latex) || name == "" && len(latex) == 2
	}

	if latex[0] == '{' {
		return group(latex, 0) == len(latex)
	}

	return strings.IndexFunc(latex, func(r rune) bool { return !unicode.IsDigit(r) }) == -1
}

func isSingleLetter(latex string) bool {
	r, size := utf8.DecodeRuneInString(latex)
	return size > 0 && size == len(latex) && unicode.IsLetter(r)
}

func isBinom(latex string) bool {
	const cmd = `\binom`
	if !strings.HasPrefix(latex, cmd) {
		return false
	}

	end := group(latex, len(cmd))
	if end < 0 {
		return false
	}

	return group(latex, end) == len(latex)
}

// only returns the single meaningful child of a container, whitespace-only text runs are ignored
func only(node *Node) *Node {
	if node == nil {
		return nil
	}

	var found *Node
	for _, child := range node.Children {
		if child == nil || child.Kind == TextKind && strings.TrimSpace(child.Data) == "" && len(child.Children) == 0 {
			continue
		}

		if found != nil {
			return nil
		}

		found = child
	}

	return found
}

func find(node *Node, kind Kind) *Node {
	if node == nil {
		return nil
	}

	for _, child := range node.Children {
		if child == nil {
			continue
		}

		if child.Kind == kind {
			return child
		}

		if found := find(child, kind); found != nil {
			return found
		}
	}

	return nil
}
