package usdstage

import (
	"bytes"
	"fmt"
	"reflect"
	"strings"
)

// WriteLayer serializes l into the minimal .usda ASCII subset this
// package supports: a header with sublayers/defaultPrim/timeCode metadata,
// followed by every root prim (recursively including children, attributes,
// relationships, and references).
func WriteLayer(l *Layer) []byte {
	var buf bytes.Buffer
	buf.WriteString("#usda 1.0\n(\n")
	if len(l.SubLayers) > 0 {
		buf.WriteString("    subLayers = [\n")
		for _, s := range l.SubLayers {
			fmt.Fprintf(&buf, "        @%s@,\n", s)
		}
		buf.WriteString("    ]\n")
	}
	if l.DefaultPrim != "" {
		fmt.Fprintf(&buf, "    defaultPrim = %q\n", l.DefaultPrim)
	}
	if l.TimeCodesSet {
		fmt.Fprintf(&buf, "    startTimeCode = %s\n", formatFloat(l.StartTimeCode))
		fmt.Fprintf(&buf, "    endTimeCode = %s\n", formatFloat(l.EndTimeCode))
	}
	fmt.Fprintf(&buf, "    timeCodesPerSecond = %s\n", formatFloat(l.TimeCodesPerSecond))
	buf.WriteString(")\n\n")

	for _, path := range rootPaths(l) {
		writePrim(&buf, l.prims[path], 0)
	}
	return buf.Bytes()
}

// rootPaths returns the layer's top-level prim paths (those with no
// parent prim tracked in the layer), in creation order.
func rootPaths(l *Layer) []string {
	var out []string
	for _, path := range l.order {
		if parentOf(path) == "" {
			out = append(out, path)
			continue
		}
		if _, ok := l.prims[parentOf(path)]; !ok {
			out = append(out, path)
		}
	}
	return out
}

func writePrim(buf *bytes.Buffer, p *Prim, depth int) {
	indent := strings.Repeat("    ", depth)
	typeName := p.TypeName
	if typeName != "" {
		typeName = " \"" + typeName + "\""
	}
	fmt.Fprintf(buf, "%s%s%s \"%s\"\n", indent, p.Specifier, typeName, p.name)

	var meta []string
	if p.Kind != "" {
		meta = append(meta, fmt.Sprintf("kind = %q", p.Kind))
	}
	if p.Instanceable {
		meta = append(meta, "instanceable = true")
	}
	if len(meta) > 0 {
		fmt.Fprintf(buf, "%s(\n", indent)
		for _, m := range meta {
			fmt.Fprintf(buf, "%s    %s\n", indent, m)
		}
		fmt.Fprintf(buf, "%s)\n", indent)
	}
	fmt.Fprintf(buf, "%s{\n", indent)
	inner := indent + "    "

	for _, ref := range p.references {
		writeReference(buf, ref, inner)
	}
	for _, name := range p.attrOrder {
		writeAttribute(buf, name, p.attributes[name], inner)
	}
	for _, name := range p.relOrder {
		rel := p.relationships[name]
		fmt.Fprintf(buf, "%srel %s = [%s]\n", inner, name, quoteList(rel.Targets))
	}
	for _, child := range p.Children() {
		writePrim(buf, child, depth+1)
	}

	fmt.Fprintf(buf, "%s}\n", indent)
}

func writeReference(buf *bytes.Buffer, ref *Reference, indent string) {
	target := fmt.Sprintf("@%s@", ref.AssetPath)
	if ref.PrimPath != "" {
		target += fmt.Sprintf("<%s>", ref.PrimPath)
	}
	fmt.Fprintf(buf, "%sprepend references = %s\n", indent, target)
	if ref.Clip == nil {
		return
	}
	c := ref.Clip
	fmt.Fprintf(buf, "%sclips = {\n", indent)
	fmt.Fprintf(buf, "%s    default = {\n", indent)
	fmt.Fprintf(buf, "%s        manifestAssetPath = @%s@\n", indent, c.ManifestAssetPath)
	fmt.Fprintf(buf, "%s        assetPaths = [%s]\n", indent, quoteAssetList(c.AssetPaths))
	fmt.Fprintf(buf, "%s        primPath = %q\n", indent, c.PrimPath)
	fmt.Fprintf(buf, "%s        active = %s\n", indent, formatPairs(c.Active))
	fmt.Fprintf(buf, "%s        times = %s\n", indent, formatPairs(c.Times))
	fmt.Fprintf(buf, "%s    }\n", indent)
	fmt.Fprintf(buf, "%s}\n", indent)
}

func formatPairs(pairs [][2]float64) string {
	parts := make([]string, len(pairs))
	for i, p := range pairs {
		parts[i] = fmt.Sprintf("(%s, %s)", formatFloat(p[0]), formatFloat(p[1]))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func writeAttribute(buf *bytes.Buffer, name string, a *Attribute, indent string) {
	if a.HasUniform {
		fmt.Fprintf(buf, "%s%s %s = %s\n", indent, a.TypeName, name, formatValue(a.Uniform))
		return
	}
	fmt.Fprintf(buf, "%s%s %s.timeSamples = {\n", indent, a.TypeName, name)
	for _, t := range sortedTimes(a.TimeSamples) {
		fmt.Fprintf(buf, "%s    %s: %s,\n", indent, formatFloat(t), formatValue(a.TimeSamples[t]))
	}
	fmt.Fprintf(buf, "%s}\n", indent)
}

func sortedTimes(m map[float64]any) []float64 {
	out := make([]float64, 0, len(m))
	for t := range m {
		out = append(out, t)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

func quoteList(items []string) string {
	q := make([]string, len(items))
	for i, s := range items {
		q[i] = fmt.Sprintf("<%s>", s)
	}
	return strings.Join(q, ", ")
}

func quoteAssetList(items []string) string {
	q := make([]string, len(items))
	for i, s := range items {
		q[i] = fmt.Sprintf("@%s@", s)
	}
	return strings.Join(q, ", ")
}

// formatValue renders a Go value as a .usda literal. It handles the
// scalar/vector/array shapes this bridge actually authors: bool, string,
// numeric scalars, fixed-size float arrays ([3]float32 etc., rendered as
// tuples), and slices of any of the above (rendered as bracketed lists).
func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "None"
	case bool:
		return fmt.Sprintf("%t", x)
	case string:
		return fmt.Sprintf("%q", x)
	case Visibility:
		return fmt.Sprintf("%q", string(x))
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Array:
		return formatTuple(rv)
	case reflect.Slice:
		if rv.Len() > 0 && (rv.Index(0).Kind() == reflect.Array) {
			parts := make([]string, rv.Len())
			for i := 0; i < rv.Len(); i++ {
				parts[i] = formatTuple(rv.Index(i))
			}
			return "[" + strings.Join(parts, ", ") + "]"
		}
		parts := make([]string, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			parts[i] = formatValue(rv.Index(i).Interface())
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case reflect.Float32, reflect.Float64:
		return formatFloat(rv.Float())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return fmt.Sprintf("%d", rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return fmt.Sprintf("%d", rv.Uint())
	default:
		return fmt.Sprintf("%v", v)
	}
}

func formatTuple(rv reflect.Value) string {
	parts := make([]string, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		parts[i] = formatValue(rv.Index(i).Interface())
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
