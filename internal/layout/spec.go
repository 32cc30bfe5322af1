// Package layout maps layout ids to split trees and owns the panes placed in
// them.
package layout

import (
	"errors"
	"fmt"
)

// ID names a layout. The numbering is persisted, so values never change.
type ID int

const (
	Single            ID = 1
	Two               ID = 2
	Three             ID = 3
	TwoWithProperties ID = 21
	OneLeftTwoRight   ID = 31
	TwoLeftOneRight   ID = 32
	Four              ID = 41
	Grid2x2           ID = 42
)

// IDs returns every layout in menu order.
func IDs() []ID {
	return []ID{Single, Two, Three, TwoWithProperties, OneLeftTwoRight, TwoLeftOneRight, Four, Grid2x2}
}

// Title is the menu label of a layout.
func (id ID) Title() string {
	switch id {
	case Single:
		return "1 Vertical Pane"
	case Two:
		return "2 Vertical Panes"
	case Three:
		return "3 Vertical Panes"
	case TwoWithProperties:
		return "2 Vertical with Properties Pane"
	case OneLeftTwoRight:
		return "3 Panes (1 Left, 2 Right)"
	case TwoLeftOneRight:
		return "3 Panes (2 Left, 1 Right)"
	case Four:
		return "4 Vertical Panes"
	case Grid2x2:
		return "4 Panes (2x2 Grid)"
	}
	return fmt.Sprintf("Layout %d", int(id))
}

// Valid reports whether id names a known layout.
func (id ID) Valid() bool {
	_, err := Spec(id)
	return err == nil
}

// ErrInvalidLayoutID is wrapped by every unknown-id error.
var ErrInvalidLayoutID = errors.New("invalid layout id")

// InvalidLayoutIDError carries the rejected id.
type InvalidLayoutIDError struct {
	ID ID
}

func (e *InvalidLayoutIDError) Error() string {
	return fmt.Sprintf("invalid layout id %d", int(e.ID))
}

func (e *InvalidLayoutIDError) Unwrap() error { return ErrInvalidLayoutID }

// Kind is the type of a layout tree node.
type Kind int

const (
	HorizontalSplit Kind = iota // children left to right
	VerticalSplit               // children top to bottom
	PaneSlot
	StaticPanelSlot
)

func (k Kind) String() string {
	switch k {
	case HorizontalSplit:
		return "hsplit"
	case VerticalSplit:
		return "vsplit"
	case PaneSlot:
		return "pane"
	case StaticPanelSlot:
		return "panel"
	}
	return "unknown"
}

// Panel names a static, non-browsing panel.
type Panel string

const PropertiesPanel Panel = "Properties"

// Node is one element of a layout tree. Weight is the share of the parent
// split; zero counts as one.
type Node struct {
	Kind     Kind
	Panel    Panel
	Weight   float32
	Children []*Node
}

func paneSlot() *Node { return &Node{Kind: PaneSlot, Weight: 1} }

func hsplit(children ...*Node) *Node {
	return &Node{Kind: HorizontalSplit, Weight: 1, Children: children}
}

func vsplit(children ...*Node) *Node {
	return &Node{Kind: VerticalSplit, Weight: 1, Children: children}
}

func weighted(n *Node, w float32) *Node {
	n.Weight = w
	return n
}

// Spec returns a fresh tree for id.
func Spec(id ID) (*Node, error) {
	switch id {
	case Single:
		return paneSlot(), nil
	case Two:
		return hsplit(paneSlot(), paneSlot()), nil
	case Three:
		return hsplit(paneSlot(), paneSlot(), paneSlot()), nil
	case TwoWithProperties:
		return hsplit(
			weighted(paneSlot(), 500),
			weighted(&Node{Kind: StaticPanelSlot, Panel: PropertiesPanel}, 300),
			weighted(paneSlot(), 500),
		), nil
	case OneLeftTwoRight:
		return hsplit(paneSlot(), vsplit(paneSlot(), paneSlot())), nil
	case TwoLeftOneRight:
		return hsplit(vsplit(paneSlot(), paneSlot()), paneSlot()), nil
	case Four:
		return hsplit(paneSlot(), paneSlot(), paneSlot(), paneSlot()), nil
	case Grid2x2:
		return hsplit(vsplit(paneSlot(), paneSlot()), vsplit(paneSlot(), paneSlot())), nil
	}
	return nil, &InvalidLayoutIDError{ID: id}
}

// PaneCount returns the number of pane slots in id's tree.
func PaneCount(id ID) (int, error) {
	root, err := Spec(id)
	if err != nil {
		return 0, err
	}
	return root.Count(PaneSlot), nil
}

// Walk visits n and its descendants in pre-order.
func (n *Node) Walk(fn func(*Node)) {
	if n == nil {
		return
	}
	fn(n)
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Count returns the number of nodes of kind k under n, n included.
func (n *Node) Count(k Kind) int {
	count := 0
	n.Walk(func(x *Node) {
		if x.Kind == k {
			count++
		}
	})
	return count
}

// String renders the tree compactly, e.g. "hsplit(pane,vsplit(pane,pane))".
func (n *Node) String() string {
	if n == nil {
		return ""
	}
	if len(n.Children) == 0 {
		if n.Kind == StaticPanelSlot {
			return "panel:" + string(n.Panel)
		}
		return n.Kind.String()
	}
	s := n.Kind.String() + "("
	for i, c := range n.Children {
		if i > 0 {
			s += ","
		}
		s += c.String()
	}
	return s + ")"
}
