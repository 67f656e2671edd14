package omml

type Text string

type ElementStart struct {
	Name string
	Attr map[string]string
}

type ElementEnd struct {
	Name string
}
