package omml

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var specials = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	"{", `\{`,
	"}", `\}`,
	"$", `\$`,
	"&", `\&`,
	"%", `\%`,
	"#", `\#`,
	"_", `\_`,
	"^", `\^{}`,
	"~", `\~{}`,
)

// escape makes text safe to put inside \text{}
func escape(text string) string {
	return specials.Replace(text)
}

// Placeholder recovers whatever text is readable in a fragment which failed to parse and returns it as
// \text{...}, so the expression is not lost from the output. Markup does not have to be well-formed.
func Placeholder(raw string) string {
	body := &html.Node{Type: html.ElementNode, DataAtom: atom.Body, Data: "body"}

	nodes, err := html.ParseFragment(strings.NewReader(raw), body)
	if err != nil {
		return ""
	}

	var b strings.Builder
	for _, n := range nodes {
		collect(&b, n)
	}

	text := strings.Join(strings.Fields(b.String()), " ")
	if text == "" {
		return ""
	}

	return `\text{` + escape(text) + "}"
}

func collect(b *strings.Builder, n *html.Node) {
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
		return
	}

	// fragments are sometimes taken together with the XML prolog or comments
	if n.Type == html.CommentNode {
		return
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collect(b, c)
	}
}
