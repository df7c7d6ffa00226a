package tree

import "strconv"

func (c RBColor) String() string {
	switch c {
	case Black:
		return "Black"
	case Red:
		return "Red"
	default:
	}
	return "RBColor(" + strconv.FormatInt(int64(c), 10) + ")"
}

func (d RBDirection) String() string {
	switch d {
	case Left:
		return "Left"
	case Root:
		return "Root"
	case Right:
		return "Right"
	default:
	}
	return "RBDirection(" + strconv.FormatInt(int64(d), 10) + ")"
}

func (o TraversalOrder) String() string {
	switch o {
	case PreOrder:
		return "PreOrder"
	case InOrder:
		return "InOrder"
	case PostOrder:
		return "PostOrder"
	default:
	}
	return "TraversalOrder(" + strconv.FormatInt(int64(o), 10) + ")"
}
