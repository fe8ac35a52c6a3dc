package scene

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"flowspark/palette"
)

// ParseJSON decodes and normalizes a JSON scene description.
func ParseJSON(data []byte, pal palette.Palette) (*Scene, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return Normalize(raw, pal)
}

// ParseYAML decodes and normalizes a YAML scene description. The accepted
// keys are the same as for JSON.
func ParseYAML(data []byte, pal palette.Palette) (*Scene, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return Normalize(raw, pal)
}

// LoadFile reads a scene from path, choosing the decoder by extension.
// Files that are neither .yaml nor .yml are treated as JSON.
func LoadFile(path string, pal palette.Palette) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(data, pal)
	default:
		return ParseJSON(data, pal)
	}
}

// Normalize maps a decoded description onto the canonical Scene.
//
// Accepted spellings:
//
//	blocks | nodes, connections | edges | links
//	block:      id | name, w | width, h | height, label | text, note
//	connection: start{block,edge,t} or start_id | from | src | source,
//	            start_edge | edge_from, start_t | t_from (and the end_* forms
//	            with to | dst | target, end_edge | edge_to, end_t | t_to),
//	            className | class, color | stroke, width | stroke_width,
//	            sparks | spark_count, spark_speed | sparkSpeed,
//	            emitter | random, max_live | maxLive, emit_mult | emitMult,
//	            out_offset | outOffset, arrow
//
// Colors naming a palette key are replaced by the palette literal. A null
// value counts as absent. The result is validated before it is returned.
func Normalize(raw map[string]any, pal palette.Palette) (*Scene, error) {
	if raw == nil {
		return nil, fmt.Errorf("%w: empty document", ErrMalformed)
	}
	s := &Scene{}

	blocks, err := list(raw, "blocks", "nodes")
	if err != nil {
		return nil, err
	}
	for i, item := range blocks {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: blocks[%d]: expected object, got %T", ErrMalformed, i, item)
		}
		f := fields{m: m, path: fmt.Sprintf("blocks[%d]", i)}
		b := Block{
			ID:     f.id("id", "name"),
			X:      f.num(0, "x"),
			Y:      f.num(0, "y"),
			Width:  f.num(0, "w", "width"),
			Height: f.num(0, "h", "height"),
			Label:  f.str("", "label", "text"),
			Note:   f.flag(false, "note"),
		}
		if f.err != nil {
			return nil, f.err
		}
		s.Blocks = append(s.Blocks, b)
	}

	conns, err := list(raw, "connections", "edges", "links")
	if err != nil {
		return nil, err
	}
	for i, item := range conns {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: connections[%d]: expected object, got %T", ErrMalformed, i, item)
		}
		f := fields{m: m, path: fmt.Sprintf("connections[%d]", i)}
		c := Connection{
			Start:      f.endpoint("start", DefaultStartEdge, []string{"start_id", "from", "src", "source"}, []string{"start_edge", "edge_from"}, []string{"start_t", "t_from"}),
			End:        f.endpoint("end", DefaultEndEdge, []string{"end_id", "to", "dst", "target"}, []string{"end_edge", "edge_to"}, []string{"end_t", "t_to"}),
			Width:      f.num(DefaultWidth, "width", "stroke_width"),
			Color:      pal.Resolve(f.str("", "color", "stroke")),
			Class:      f.str("", "className", "class"),
			Sparks:     f.count(0, "sparks", "spark_count"),
			SparkSpeed: f.num(DefaultSparkSpeed, "spark_speed", "sparkSpeed"),
			Emitter:    f.flag(false, "emitter", "random"),
			MaxLive:    f.count(0, "max_live", "maxLive"),
			EmitMult:   f.num(DefaultEmitMult, "emit_mult", "emitMult"),
			OutOffset:  f.num(DefaultOutOffset, "out_offset", "outOffset"),
			Arrow:      f.flag(true, "arrow"),
		}
		if f.err != nil {
			return nil, f.err
		}
		s.Connections = append(s.Connections, c)
	}

	if err := Validate(s); err != nil {
		return nil, err
	}
	return s, nil
}

func list(raw map[string]any, keys ...string) ([]any, error) {
	for _, k := range keys {
		v, ok := raw[k]
		if !ok || v == nil {
			continue
		}
		items, ok := v.([]any)
		if !ok {
			return nil, fmt.Errorf("%w: %s: expected list, got %T", ErrMalformed, k, v)
		}
		return items, nil
	}
	return nil, nil
}

// fields reads aliased values from one descriptor, remembering the first
// type error so call sites stay flat.
type fields struct {
	m    map[string]any
	path string
	err  error
}

func (f *fields) lookup(keys ...string) (string, any, bool) {
	for _, k := range keys {
		if v, ok := f.m[k]; ok && v != nil {
			return k, v, true
		}
	}
	return "", nil, false
}

func (f *fields) fail(key string, want string, v any) {
	if f.err == nil {
		f.err = fmt.Errorf("%w: %s.%s: expected %s, got %T", ErrMalformed, f.path, key, want, v)
	}
}

func (f *fields) num(def float64, keys ...string) float64 {
	k, v, ok := f.lookup(keys...)
	if !ok {
		return def
	}
	n, ok := toFloat(v)
	if !ok || math.IsNaN(n) || math.IsInf(n, 0) {
		f.fail(k, "finite number", v)
		return def
	}
	return n
}

func (f *fields) count(def int, keys ...string) int {
	n := f.num(float64(def), keys...)
	return int(math.Floor(n))
}

func (f *fields) str(def string, keys ...string) string {
	k, v, ok := f.lookup(keys...)
	if !ok {
		return def
	}
	switch s := v.(type) {
	case string:
		return s
	default:
		if n, ok := toFloat(v); ok {
			return strconv.FormatFloat(n, 'f', -1, 64)
		}
	}
	f.fail(k, "string", v)
	return def
}

// id accepts strings and numbers, as hand-written scenes often use 1, 2, 3.
func (f *fields) id(keys ...string) string {
	return strings.TrimSpace(f.str("", keys...))
}

func (f *fields) flag(def bool, keys ...string) bool {
	k, v, ok := f.lookup(keys...)
	if !ok {
		return def
	}
	switch b := v.(type) {
	case bool:
		return b
	case string:
		if p, err := strconv.ParseBool(b); err == nil {
			return p
		}
	default:
		if n, ok := toFloat(v); ok {
			return n != 0
		}
	}
	f.fail(k, "boolean", v)
	return def
}

func (f *fields) endpoint(nested, defEdge string, blockKeys, edgeKeys, tKeys []string) Endpoint {
	if k, v, ok := f.lookup(nested); ok {
		m, isMap := v.(map[string]any)
		if !isMap {
			f.fail(k, "object", v)
			return Endpoint{}
		}
		sub := fields{m: m, path: f.path + "." + k}
		ep := Endpoint{
			Block: sub.id("block", "id"),
			Edge:  strings.ToLower(sub.str(defEdge, "edge")),
			T:     sub.num(0, "t"),
		}
		if sub.err != nil && f.err == nil {
			f.err = sub.err
		}
		return ep
	}
	return Endpoint{
		Block: f.id(blockKeys...),
		Edge:  strings.ToLower(f.str(defEdge, edgeKeys...)),
		T:     f.num(0, tKeys...),
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}
