// Package usdstage implements the minimal subset of Pixar USD's ASCII
// (.usda) text layer format this bridge actually needs to emit: prims,
// typed uniform and time-sampled attributes, relationships, references
// with value-clip metadata, and variant-free composition via sublayers.
//
// No Go binding for USD exists anywhere in this module's dependency
// surface or in the retrieval pack this module was built from (see
// DESIGN.md for the full justification), so this package is written
// entirely against the public .usda text grammar rather than against the
// pxr C++ API. It is the one deliberately standard-library-only package
// in the module; usdwriter builds stages by calling into it the way the
// original bridge builds stages by calling into pxr's Usd/UsdGeom/UsdShade
// schema classes.
package usdstage

import (
	"fmt"
	"sort"
)

// Layer is one .usda text layer: a named stage with zero or more
// sublayers, an optional default prim, a time-code range, and a
// dictionary of root-level prims (nested prims live under their parent's
// Children).
type Layer struct {
	Identifier     string
	SubLayers      []string
	DefaultPrim    string
	StartTimeCode  float64
	EndTimeCode    float64
	TimeCodesSet   bool
	TimeCodesPerSecond float64

	prims map[string]*Prim
	order []string
}

// NewLayer returns an empty layer named identifier (the filename the
// writer intends to save it under, e.g. "FullScene.usda").
func NewLayer(identifier string) *Layer {
	return &Layer{
		Identifier:         identifier,
		TimeCodesPerSecond: 24,
		prims:              make(map[string]*Prim),
	}
}

// AddSubLayer appends assetPath to the layer's sublayer list, in order,
// if not already present.
func (l *Layer) AddSubLayer(assetPath string) {
	for _, s := range l.SubLayers {
		if s == assetPath {
			return
		}
	}
	l.SubLayers = append(l.SubLayers, assetPath)
}

// SetTimeCodeRange records the stage's global start/end timecodes,
// widening rather than narrowing an existing range (spec §4.4.1:
// references made visible for the first time are defensively authored at
// the stage's global start/end).
func (l *Layer) SetTimeCodeRange(start, end float64) {
	if !l.TimeCodesSet {
		l.StartTimeCode, l.EndTimeCode, l.TimeCodesSet = start, end, true
		return
	}
	if start < l.StartTimeCode {
		l.StartTimeCode = start
	}
	if end > l.EndTimeCode {
		l.EndTimeCode = end
	}
}

// Root returns the layer's top-level prim at path, creating it (and any
// missing ancestor prims) with specifier "def" if absent. path must be
// an absolute prim path ("/Root/geometries/Sphere_1").
func (l *Layer) Root(path string) *Prim {
	if p, ok := l.prims[path]; ok {
		return p
	}
	segments := splitPath(path)
	var cur string
	var parent *Prim
	for i, seg := range segments {
		cur += "/" + seg
		if p, ok := l.prims[cur]; ok {
			parent = p
			continue
		}
		p := newPrim(cur, seg)
		l.prims[cur] = p
		l.order = append(l.order, cur)
		if parent != nil {
			parent.addChild(p)
		}
		parent = p
		_ = i
	}
	return l.prims[path]
}

// Lookup returns the prim at path without creating it.
func (l *Layer) Lookup(path string) (*Prim, bool) {
	p, ok := l.prims[path]
	return p, ok
}

// Remove deletes the prim at path (and detaches it from its parent's
// child list). It does not recursively remove descendants from the
// layer's lookup table, matching the spec's GC expectation that
// removeUnreferenced drives explicit per-entry cleanup.
func (l *Layer) Remove(path string) {
	p, ok := l.prims[path]
	if !ok {
		return
	}
	if parentPath := parentOf(path); parentPath != "" {
		if parent, ok := l.prims[parentPath]; ok {
			parent.removeChild(p.name)
		}
	}
	delete(l.prims, path)
	for i, pth := range l.order {
		if pth == path {
			l.order = append(l.order[:i], l.order[i+1:]...)
			break
		}
	}
}

// Paths returns every prim path in the layer, in creation order.
func (l *Layer) Paths() []string {
	out := make([]string, len(l.order))
	copy(out, l.order)
	return out
}

func splitPath(path string) []string {
	var segs []string
	start := 0
	for i := 0; i < len(path); i++ {
		if path[i] == '/' {
			if i > start {
				segs = append(segs, path[start:i])
			}
			start = i + 1
		}
	}
	if start < len(path) {
		segs = append(segs, path[start:])
	}
	return segs
}

func parentOf(path string) string {
	segs := splitPath(path)
	if len(segs) <= 1 {
		return ""
	}
	p := ""
	for _, s := range segs[:len(segs)-1] {
		p += "/" + s
	}
	return p
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func formatFloat(f float64) string {
	return fmt.Sprintf("%g", f)
}
