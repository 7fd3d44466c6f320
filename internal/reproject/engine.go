package reproject

import (
	"context"
	"fmt"
)

// DefaultMaxDepth bounds how deeply nested a payload may be.
const DefaultMaxDepth = 64

// coordinatesKey is the object key whose value holds a coordinate container.
const coordinatesKey = "coordinates"

// PairFunc converts one coordinate pair. It is already bound to a source and
// destination reference system.
type PairFunc func(x, y float64) (float64, float64, error)

// Classifier reports whether a payload is a GeoJSON object.
type Classifier func(v any) bool

// Strategy names the traversal chosen for a payload.
type Strategy string

const (
	StrategyArray   Strategy = "array"
	StrategyGeoJSON Strategy = "geojson"
	// StrategyObject walks an object the classifier did not accept as GeoJSON.
	StrategyObject Strategy = "object"
)

// Stats describes a completed transformation.
type Stats struct {
	Pairs    int      `json:"pairs"`
	Strategy Strategy `json:"strategy"`
}

// Engine rewrites coordinate pairs inside payloads.
//
// The input tree is never modified. Containers on the way to a rewritten pair
// are copied, so a failed call leaves the caller's payload exactly as it was
// and a successful one shares every untouched subtree with it.
type Engine struct {
	MaxDepth int
	// KeepExtraDimensions appends elements beyond the first two (for example
	// an elevation) unchanged after the transformed pair instead of dropping
	// them.
	KeepExtraDimensions bool
}

// NewEngine creates an Engine. A non-positive maxDepth selects DefaultMaxDepth.
func NewEngine(maxDepth int, keepExtraDimensions bool) *Engine {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Engine{MaxDepth: maxDepth, KeepExtraDimensions: keepExtraDimensions}
}

// TransformPayload picks one traversal strategy for raw and runs it.
//
// GeoJSON is walked for "coordinates" members. Other objects are walked the
// same way and reported as StrategyObject. Anything else is treated as a
// coordinate container. Payloads with no coordinate structure come back
// unchanged with zero pairs.
func (e *Engine) TransformPayload(ctx context.Context, raw any, fn PairFunc, isGeoJSON Classifier) (any, Stats, error) {
	t := e.newTraversal(ctx, fn)

	switch {
	case isGeoJSON != nil && isGeoJSON(raw):
		t.stats.Strategy = StrategyGeoJSON
	case KindOf(raw) == KindObject:
		t.stats.Strategy = StrategyObject
	}
	if t.stats.Strategy != "" {
		out, _, err := t.walk(raw, nil, 0)
		if err != nil {
			return raw, t.stats, err
		}
		return out, t.stats, nil
	}

	t.stats.Strategy = StrategyArray
	if KindOf(raw) != KindArray {
		return raw, t.stats, nil
	}
	out, err := t.rewrite(raw, nil, 0)
	if err != nil {
		return raw, t.stats, err
	}
	return out, t.stats, nil
}

// Walk rewrites every "coordinates" member found anywhere inside v.
func (e *Engine) Walk(ctx context.Context, v any, fn PairFunc) (any, int, error) {
	t := e.newTraversal(ctx, fn)
	out, _, err := t.walk(v, nil, 0)
	if err != nil {
		return v, t.stats.Pairs, err
	}
	return out, t.stats.Pairs, nil
}

// Rewrite transforms every pair of the coordinate container v.
func (e *Engine) Rewrite(ctx context.Context, v any, fn PairFunc) (any, int, error) {
	t := e.newTraversal(ctx, fn)
	out, err := t.rewrite(v, nil, 0)
	if err != nil {
		return v, t.stats.Pairs, err
	}
	return out, t.stats.Pairs, nil
}

// TransformPoint converts a single pair and reports failures as *TransformError.
func TransformPoint(fn PairFunc, x, y float64) ([2]float64, error) {
	nx, ny, err := fn(x, y)
	if err != nil {
		return [2]float64{}, &TransformError{Path: "$", Reason: "transform rejected pair", Err: err}
	}
	return [2]float64{nx, ny}, nil
}

type traversal struct {
	ctx       context.Context
	fn        PairFunc
	maxDepth  int
	keepExtra bool
	stats     Stats
}

func (e *Engine) newTraversal(ctx context.Context, fn PairFunc) *traversal {
	maxDepth := e.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &traversal{ctx: ctx, fn: fn, maxDepth: maxDepth, keepExtra: e.KeepExtraDimensions}
}

func (t *traversal) checkDepth(p path, depth int) error {
	if depth > t.maxDepth {
		return &InputShapeError{Path: p.String(), Reason: fmt.Sprintf("nesting exceeds maximum depth of %d", t.maxDepth)}
	}
	return nil
}

// walk returns the rewritten value and whether it differs from v.
func (t *traversal) walk(v any, p path, depth int) (any, bool, error) {
	switch KindOf(v) {
	case KindObject:
		if err := t.checkDepth(p, depth); err != nil {
			return nil, false, err
		}
		obj := v.(map[string]any)
		var out map[string]any
		for k, child := range obj {
			childPath := p.key(k)
			next, changed := child, false

			if k == coordinatesKey && KindOf(child) != KindNull {
				rewritten, err := t.rewrite(child, childPath, depth+1)
				if err != nil {
					return nil, false, err
				}
				next, changed = rewritten, true
			}

			walked, walkChanged, err := t.walk(next, childPath, depth+1)
			if err != nil {
				return nil, false, err
			}
			if walkChanged {
				next, changed = walked, true
			}

			if changed {
				if out == nil {
					out = make(map[string]any, len(obj))
					for ok, ov := range obj {
						out[ok] = ov
					}
				}
				out[k] = next
			}
		}
		if out == nil {
			return v, false, nil
		}
		return out, true, nil

	case KindArray:
		if err := t.checkDepth(p, depth); err != nil {
			return nil, false, err
		}
		arr := v.([]any)
		var out []any
		for i, child := range arr {
			walked, changed, err := t.walk(child, p.index(i), depth+1)
			if err != nil {
				return nil, false, err
			}
			if changed {
				if out == nil {
					out = make([]any, len(arr))
					copy(out, arr)
				}
				out[i] = walked
			}
		}
		if out == nil {
			return v, false, nil
		}
		return out, true, nil

	case KindNull, KindBool, KindNumber, KindString:
		return v, false, nil

	default:
		return nil, false, &InputShapeError{Path: p.String(), Reason: fmt.Sprintf("unsupported value of type %T", v)}
	}
}

// rewrite handles a coordinate container. The first element decides between
// a nested container and a terminal pair.
func (t *traversal) rewrite(v any, p path, depth int) (any, error) {
	if KindOf(v) != KindArray {
		return nil, &TransformError{Path: p.String(), Reason: fmt.Sprintf("expected coordinate array, got %s", KindOf(v))}
	}
	if err := t.checkDepth(p, depth); err != nil {
		return nil, err
	}

	arr := v.([]any)
	if len(arr) == 0 {
		return v, nil
	}

	if KindOf(arr[0]) == KindArray {
		out := make([]any, len(arr))
		for i, child := range arr {
			rewritten, err := t.rewrite(child, p.index(i), depth+1)
			if err != nil {
				return nil, err
			}
			out[i] = rewritten
		}
		return out, nil
	}

	return t.pair(arr, p)
}

func (t *traversal) pair(arr []any, p path) (any, error) {
	if err := t.ctx.Err(); err != nil {
		return nil, err
	}
	x, ok := Float(arr[0])
	if !ok {
		return nil, &TransformError{Path: p.index(0).String(), Reason: fmt.Sprintf("expected number, got %s", KindOf(arr[0]))}
	}
	if len(arr) < 2 {
		return nil, &TransformError{Path: p.String(), Reason: fmt.Sprintf("coordinate pair needs 2 elements, got %d", len(arr))}
	}
	y, ok := Float(arr[1])
	if !ok {
		return nil, &TransformError{Path: p.index(1).String(), Reason: fmt.Sprintf("expected number, got %s", KindOf(arr[1]))}
	}

	nx, ny, err := t.fn(x, y)
	if err != nil {
		return nil, &TransformError{Path: p.String(), Reason: "transform rejected pair", Err: err}
	}
	t.stats.Pairs++

	if !t.keepExtra || len(arr) == 2 {
		return []any{nx, ny}, nil
	}
	out := make([]any, 0, len(arr))
	out = append(out, nx, ny)
	return append(out, arr[2:]...), nil
}
