package omml

import (
	"strings"
)

// Flag parses OMML on/off value. Property elements without a value are switched on, eg. <m:degHide/>.
func Flag(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "1", "on", "true":
		return true
	default:
		return false
	}
}

// flag reports if boolean parameter is present and switched on
func flag(node *Node, key string) bool {
	v, ok := node.Parameter(key)
	return ok && Flag(v)
}

// char returns single character parameter, like chr or begChr, or fallback when parameter is absent
func char(node *Node, key, fallback string) string {
	v, ok := node.Parameter(key)
	if !ok {
		return fallback
	}

	return v
}
