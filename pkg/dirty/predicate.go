package dirty

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/avnodegraph/core/pkg/types"
)

// RegionPredicate is a compiled boolean expression over a region's fields,
// used to filter region queries beyond plain rectangle intersection (e.g.
// "priority == 'critical' && width > 64"). Compilation happens once in
// NewRegionPredicate; Match reuses the compiled program.
type RegionPredicate struct {
	program *vm.Program
}

// NewRegionPredicate compiles expression against an environment exposing a
// region's x, y, width, height, priority (its String() form), and node_id.
func NewRegionPredicate(expression string) (*RegionPredicate, error) {
	env := regionEnv(types.Region{})
	program, err := expr.Compile(expression, expr.Env(env), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("dirty: compiling region predicate: %w", err)
	}
	return &RegionPredicate{program: program}, nil
}

// Match evaluates the predicate against region.
func (p *RegionPredicate) Match(region types.Region) (bool, error) {
	out, err := expr.Run(p.program, regionEnv(region))
	if err != nil {
		return false, fmt.Errorf("dirty: evaluating region predicate: %w", err)
	}
	matched, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("dirty: region predicate did not return a boolean, got %T", out)
	}
	return matched, nil
}

func regionEnv(region types.Region) map[string]interface{} {
	return map[string]interface{}{
		"node_id":  string(region.NodeID),
		"x":        region.Rect.X,
		"y":        region.Rect.Y,
		"width":    region.Rect.Width,
		"height":   region.Rect.Height,
		"priority": region.Priority.String(),
	}
}

// DirtyRegionsMatching returns the regions of currently-dirty nodes that
// overlap viewport and satisfy predicate.
func (t *Tracker) DirtyRegionsMatching(viewport types.Rect, predicate *RegionPredicate) ([]types.Region, error) {
	candidates := t.DirtyRegionsInViewport(viewport)
	out := make([]types.Region, 0, len(candidates))
	for _, r := range candidates {
		ok, err := predicate.Match(r)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, r)
		}
	}
	return out, nil
}
