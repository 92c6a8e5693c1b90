package ast

// Pattern forms used by case/in and the match operators.

// ArrayPattern is [pre..., *rest, post...], optionally prefixed by a
// constant, e.g. Point[x, y].
type ArrayPattern struct {
	Kind  string `json:"kind"`
	Const Node   `json:"const"`
	Pre   []Node `json:"pre"`
	Rest  Node   `json:"rest"`
	Post  []Node `json:"post"`
	Loc   `json:"loc"`
}

// HashPattern is {label: pat, ...} with an optional **rest.
type HashPattern struct {
	Kind  string `json:"kind"`
	Const Node   `json:"const"`
	Pairs []Node `json:"pairs"`
	Rest  Node   `json:"rest"`
	Loc   `json:"loc"`
}

// FindPattern is [*, mid..., *].
type FindPattern struct {
	Kind  string `json:"kind"`
	Const Node   `json:"const"`
	Left  Node   `json:"left"`
	Mid   []Node `json:"mid"`
	Right Node   `json:"right"`
	Loc   `json:"loc"`
}

// PinExpr is ^expr, matching against an existing value.
type PinExpr struct {
	Kind  string `json:"kind"`
	Value Node   `json:"value"`
	Loc   `json:"loc"`
}

// AltPattern is pat | pat.
type AltPattern struct {
	Kind  string `json:"kind"`
	Left  Node   `json:"left"`
	Right Node   `json:"right"`
	Loc   `json:"loc"`
}

// CapturePattern is pat => name.
type CapturePattern struct {
	Kind   string `json:"kind"`
	Value  Node   `json:"value"`
	Target Node   `json:"target"`
	Loc    `json:"loc"`
}
