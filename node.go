package omml

type Kind int

const (
	TextKind Kind = iota
	MathKind
	ElementKind
	FractionKind
	SuperscriptKind
	SubscriptKind
	SubSuperscriptKind
	PreScriptKind
	NaryKind
	RadicalKind
	DelimiterKind
	MatrixKind
	MatrixRowKind
	FunctionKind
	LimitLowerKind
	LimitUpperKind
	AccentKind
	EquationArrayKind
	GroupCharKind
	BarKind
	BoxKind
)

// Roles of named children, as they are called in OMML.
const (
	RoleBase         = "e"
	RoleNumerator    = "num"
	RoleDenominator  = "den"
	RoleSuperscript  = "sup"
	RoleSubscript    = "sub"
	RoleDegree       = "deg"
	RoleLimit        = "lim"
	RoleFunctionName = "fName"
)

type Node struct {
	Kind       Kind
	Parameters map[string]string
	Data       string
	Children   []*Node
	Named      map[string]*Node
}

// Role returns child playing the given role or nil. Trees without Named are searched by container name.
func (n *Node) Role(name string) *Node {
	if n == nil {
		return nil
	}

	if n.Named != nil {
		return n.Named[name]
	}

	for _, child := range n.Children {
		if child != nil && child.Kind == ElementKind && child.Data == name {
			return child
		}
	}

	return nil
}

// Roles returns all children playing the given role in document order, eg. cells of a matrix row.
func (n *Node) Roles(name string) (nodes []*Node) {
	if n == nil {
		return nil
	}

	for _, child := range n.Children {
		if child != nil && child.Kind == ElementKind && child.Data == name {
			nodes = append(nodes, child)
		}
	}

	return
}

// Parameter returns attribute value and whether it was set at all, empty value is not the same as absent one.
func (n *Node) Parameter(key string) (string, bool) {
	if n == nil || n.Parameters == nil {
		return "", false
	}

	v, ok := n.Parameters[key]
	return v, ok
}
