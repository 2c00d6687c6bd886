// Package palette maps outline depth to display colors.
//
// The palette is a fixed lookup table: a gradient for the document root,
// one color family for each of the first three section levels, and green
// for leaves and anything deeper. Leaves always use the leaf entry so that
// terminal sections stand out regardless of depth.
package palette

// Colors is one palette entry. Values are CSS colors.
type Colors struct {
	GradientFrom string `json:"gradient_from" yaml:"gradient_from"`
	GradientTo   string `json:"gradient_to" yaml:"gradient_to"`
	Border       string `json:"border" yaml:"border"`
	Glow         string `json:"glow" yaml:"glow"`
	Text         string `json:"text" yaml:"text"`
	Meta         string `json:"meta" yaml:"meta"`
	Badge        string `json:"badge" yaml:"badge"`
}

// Fill returns the representative solid color of the entry, used where a
// gradient cannot be drawn (terminal, DOT).
func (c Colors) Fill() string { return c.Border }

// table is indexed by depth; the last entry doubles as the leaf color.
var table = [...]Colors{
	{ // document root
		GradientFrom: "#667eea", GradientTo: "#764ba2", Border: "#8b5cf6",
		Glow: "rgba(139, 92, 246, 0.4)", Text: "#ffffff",
		Meta: "rgba(255, 255, 255, 0.7)", Badge: "rgba(255, 255, 255, 0.15)",
	},
	{ // level 1
		GradientFrom: "#0891b2", GradientTo: "#22d3ee", Border: "#06b6d4",
		Glow: "rgba(6, 182, 212, 0.4)", Text: "#ffffff",
		Meta: "rgba(255, 255, 255, 0.75)", Badge: "rgba(255, 255, 255, 0.15)",
	},
	{ // level 2
		GradientFrom: "#f59e0b", GradientTo: "#f97316", Border: "#f59e0b",
		Glow: "rgba(245, 158, 11, 0.4)", Text: "#ffffff",
		Meta: "rgba(255, 255, 255, 0.75)", Badge: "rgba(255, 255, 255, 0.15)",
	},
	{ // level 3
		GradientFrom: "#ec4899", GradientTo: "#d946ef", Border: "#ec4899",
		Glow: "rgba(236, 72, 153, 0.4)", Text: "#ffffff",
		Meta: "rgba(255, 255, 255, 0.75)", Badge: "rgba(255, 255, 255, 0.15)",
	},
	{ // level 4 and beyond, leaves
		GradientFrom: "#10b981", GradientTo: "#34d399", Border: "#10b981",
		Glow: "rgba(16, 185, 129, 0.4)", Text: "#ffffff",
		Meta: "rgba(255, 255, 255, 0.75)", Badge: "rgba(255, 255, 255, 0.15)",
	},
}

// Len is the number of palette entries.
const Len = len(table)

// ForDepth returns the entry for depth. Negative depths use the root entry;
// depths past the table use the last entry.
func ForDepth(depth int) Colors {
	switch {
	case depth < 0:
		return table[0]
	case depth >= len(table):
		return table[len(table)-1]
	default:
		return table[depth]
	}
}

// Leaf returns the entry shared by all leaves.
func Leaf() Colors { return table[len(table)-1] }

// ForNode returns the entry for a node at depth, using the leaf entry for
// leaves.
func ForNode(depth int, isLeaf bool) Colors {
	if isLeaf {
		return Leaf()
	}
	return ForDepth(depth)
}

// Legend returns all entries in depth order.
func Legend() []Colors {
	out := make([]Colors, len(table))
	copy(out, table[:])
	return out
}
