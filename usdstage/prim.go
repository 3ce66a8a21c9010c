package usdstage

// Specifier is a USD prim specifier (def/over/class).
type Specifier int

const (
	SpecifierDef Specifier = iota
	SpecifierOver
	SpecifierClass
)

func (s Specifier) String() string {
	switch s {
	case SpecifierOver:
		return "over"
	case SpecifierClass:
		return "class"
	default:
		return "def"
	}
}

// Visibility mirrors USD's visibility attribute values.
type Visibility string

const (
	Inherited Visibility = "inherited"
	Invisible Visibility = "invisible"
)

// Attribute is one typed prim attribute, either a single uniform value or
// a set of time samples (never both; Uniform is nil when TimeSamples is
// populated).
type Attribute struct {
	TypeName    string
	Uniform     any
	HasUniform  bool
	TimeSamples map[float64]any
}

// Relationship is a named USD relationship: an ordered list of target
// paths.
type Relationship struct {
	Targets []string
}

// ClipSet captures the value-clip metadata spec §4.4.3 authors on a
// referencing prim: which manifest describes the varying attributes,
// which clip asset backs each active interval, and the
// (stageTime -> clipTime) retiming table.
type ClipSet struct {
	ManifestAssetPath string
	AssetPaths        []string // ordered, de-duplicated clip asset paths
	Active            [][2]float64 // (stageTime, assetIndex) pairs
	Times             [][2]float64 // (stageTime, clipTime) pairs
	PrimPath          string
}

// Reference is a USD prim reference, optionally carrying value-clip
// metadata (spec §4.4.2's addRef vs addRefNoClip).
type Reference struct {
	AssetPath   string
	PrimPath    string
	Instanceable bool
	Clip        *ClipSet
}

// Prim is one node in the stage: a type, optional kind metadata,
// attributes, relationships, references, and children.
type Prim struct {
	Path       string
	name       string
	TypeName   string
	Kind       string
	Specifier  Specifier
	Instanceable bool

	attributes    map[string]*Attribute
	attrOrder     []string
	relationships map[string]*Relationship
	relOrder      []string
	references    []*Reference

	children      map[string]*Prim
	childOrder    []string
}

func newPrim(path, name string) *Prim {
	return &Prim{
		Path:          path,
		name:          name,
		attributes:    make(map[string]*Attribute),
		relationships: make(map[string]*Relationship),
		children:      make(map[string]*Prim),
	}
}

func (p *Prim) addChild(child *Prim) {
	if _, exists := p.children[child.name]; exists {
		return
	}
	p.children[child.name] = child
	p.childOrder = append(p.childOrder, child.name)
}

func (p *Prim) removeChild(name string) {
	if _, ok := p.children[name]; !ok {
		return
	}
	delete(p.children, name)
	for i, n := range p.childOrder {
		if n == name {
			p.childOrder = append(p.childOrder[:i], p.childOrder[i+1:]...)
			break
		}
	}
}

// Children returns the prim's direct children in creation order.
func (p *Prim) Children() []*Prim {
	out := make([]*Prim, 0, len(p.childOrder))
	for _, n := range p.childOrder {
		out = append(out, p.children[n])
	}
	return out
}

// Name returns the prim's final path component.
func (p *Prim) Name() string { return p.name }

// SetUniformAttribute authors a fixed (non-time-varying) attribute value.
func (p *Prim) SetUniformAttribute(name, typeName string, value any) {
	a, ok := p.attributes[name]
	if !ok {
		a = &Attribute{}
		p.attributes[name] = a
		p.attrOrder = append(p.attrOrder, name)
	}
	a.TypeName = typeName
	a.Uniform = value
	a.HasUniform = true
	a.TimeSamples = nil
}

// SetTimeSample authors value for attribute name at time t, switching it
// from uniform to time-sampled on first use.
func (p *Prim) SetTimeSample(name, typeName string, t float64, value any) {
	a, ok := p.attributes[name]
	if !ok {
		a = &Attribute{TimeSamples: make(map[float64]any)}
		p.attributes[name] = a
		p.attrOrder = append(p.attrOrder, name)
	}
	if a.TimeSamples == nil {
		a.TimeSamples = make(map[float64]any)
	}
	a.TypeName = typeName
	a.HasUniform = false
	a.Uniform = nil
	a.TimeSamples[t] = value
}

// ClearUniformValue removes a previously authored default-time (uniform)
// opinion on name, if any, without disturbing any time samples (spec
// §4.4.4: a transition to time-varying must strip the stale default-time
// opinion so it cannot outrank the clip's time samples in hosts where
// default wins ties).
func (p *Prim) ClearUniformValue(name string) {
	a, ok := p.attributes[name]
	if !ok {
		return
	}
	a.HasUniform = false
	a.Uniform = nil
}

// ClearTimeSample removes the sample previously authored at t on name, if
// any (spec §4.4.4: a transition to uniform must clear any sample
// previously authored at the current timestep).
func (p *Prim) ClearTimeSample(name string, t float64) {
	a, ok := p.attributes[name]
	if !ok || a.TimeSamples == nil {
		return
	}
	delete(a.TimeSamples, t)
}

// Attribute returns the named attribute, if authored.
func (p *Prim) Attribute(name string) (*Attribute, bool) {
	a, ok := p.attributes[name]
	return a, ok
}

// Attributes returns every authored attribute name, in authoring order.
func (p *Prim) Attributes() []string {
	out := make([]string, len(p.attrOrder))
	copy(out, p.attrOrder)
	return out
}

// SetVisibility authors the visibility attribute at t (spec §4.4.2:
// visibility toggling for time-varying references).
func (p *Prim) SetVisibility(t float64, v Visibility) {
	p.SetTimeSample("visibility", "token", t, string(v))
}

// SetRelationship authors (overwriting) a named relationship's targets.
func (p *Prim) SetRelationship(name string, targets ...string) {
	if _, ok := p.relationships[name]; !ok {
		p.relOrder = append(p.relOrder, name)
	}
	p.relationships[name] = &Relationship{Targets: targets}
}

// Relationship returns the named relationship, if authored.
func (p *Prim) Relationship(name string) (*Relationship, bool) {
	r, ok := p.relationships[name]
	return r, ok
}

// AddReference appends ref to the prim's reference list.
func (p *Prim) AddReference(ref *Reference) {
	p.references = append(p.references, ref)
}

// RemoveReference removes the first reference targeting primPath, if any,
// reporting whether one was found.
func (p *Prim) RemoveReference(primPath string) bool {
	for i, r := range p.references {
		if r.PrimPath == primPath {
			p.references = append(p.references[:i], p.references[i+1:]...)
			return true
		}
	}
	return false
}

// References returns every reference currently authored on the prim.
func (p *Prim) References() []*Reference {
	out := make([]*Reference, len(p.references))
	copy(out, p.references)
	return out
}
