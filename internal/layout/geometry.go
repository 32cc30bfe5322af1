package layout

import "image"

// Region is the rectangle a leaf node occupies.
type Region struct {
	Node *Node
	Rect image.Rectangle
}

// Regions splits rect over root's leaves by weight, returning them in
// pre-order. Leftover pixels go to the last child of each split.
func Regions(root *Node, rect image.Rectangle) []Region {
	var out []Region
	var place func(n *Node, r image.Rectangle)
	place = func(n *Node, r image.Rectangle) {
		if len(n.Children) == 0 {
			out = append(out, Region{Node: n, Rect: r})
			return
		}

		var total float32
		for _, c := range n.Children {
			total += weightOf(c)
		}

		length := r.Dx()
		if n.Kind == VerticalSplit {
			length = r.Dy()
		}

		offset := 0
		for i, c := range n.Children {
			size := int(float32(length) * weightOf(c) / total)
			if i == len(n.Children)-1 {
				size = length - offset
			}
			sub := r
			if n.Kind == VerticalSplit {
				sub.Min.Y = r.Min.Y + offset
				sub.Max.Y = sub.Min.Y + size
			} else {
				sub.Min.X = r.Min.X + offset
				sub.Max.X = sub.Min.X + size
			}
			place(c, sub)
			offset += size
		}
	}
	if root != nil {
		place(root, rect)
	}
	return out
}

func weightOf(n *Node) float32 {
	if n.Weight <= 0 {
		return 1
	}
	return n.Weight
}
