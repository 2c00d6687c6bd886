package layout

import (
	stderrors "errors"
	"fmt"
	"slices"

	"github.com/matzehuels/pageviz/pkg/graph"
)

var (
	// ErrMissingPosition means a request node has no position in the result.
	ErrMissingPosition = stderrors.New("node has no position")

	// ErrRankOrder means a child is not strictly below its parent.
	ErrRankOrder = stderrors.New("child is not below its parent")

	// ErrOverlap means two node boxes intersect.
	ErrOverlap = stderrors.New("node boxes overlap")
)

// tolerance absorbs rounding in engines that report fixed-precision output.
const tolerance = 0.5

// Verify checks res against the layout contract for req: every node is
// positioned, every child lies strictly below its parent, and no two boxes
// overlap. Determinism is a property of the engine and is not checked here.
func Verify(req Request, res Result) error {
	type box struct {
		id         string
		x, y, w, h float64
	}
	boxes := make([]box, 0, len(req.Nodes))
	at := make(map[string]graph.Point, len(req.Nodes))
	for _, n := range req.Nodes {
		p, ok := res.Positions[n.ID]
		if !ok {
			return fmt.Errorf("%w: %s", ErrMissingPosition, n.ID)
		}
		at[n.ID] = p
		boxes = append(boxes, box{n.ID, p.X, p.Y, n.Width, n.Height})
	}

	for _, e := range req.Edges {
		if at[e.Target].Y <= at[e.Source].Y {
			return fmt.Errorf("%w: %s (y=%.1f) -> %s (y=%.1f)", ErrRankOrder, e.Source, at[e.Source].Y, e.Target, at[e.Target].Y)
		}
	}

	// Sweep by left edge; only boxes starting before the current right edge
	// can intersect it.
	slices.SortFunc(boxes, func(a, b box) int {
		switch {
		case a.x < b.x:
			return -1
		case a.x > b.x:
			return 1
		}
		return 0
	})
	for i, a := range boxes {
		for _, b := range boxes[i+1:] {
			if b.x >= a.x+a.w-tolerance {
				break
			}
			if a.y < b.y+b.h-tolerance && b.y < a.y+a.h-tolerance {
				return fmt.Errorf("%w: %s and %s", ErrOverlap, a.id, b.id)
			}
		}
	}
	return nil
}
