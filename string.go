package omml

// String returns plain text of the math tree, all text runs concatenated.
func String(node *Node) (out string) {
	if node == nil {
		return
	}

	if node.Kind == TextKind {
		return node.Data
	}

	for _, child := range node.Children {
		out += String(child)
	}

	return
}
