package graph

// Schema describes one node type: which sockets it carries and the
// fields of its property form.
type Schema struct {
	Type    Type
	Label   string
	Inputs  bool
	Outputs bool
	Fields  []Field
}

// Field returns the named field.
func (s Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Has reports whether the type carries a socket in direction d.
func (s Schema) Has(d Direction) bool {
	if d == Input {
		return s.Inputs
	}
	return s.Outputs
}

// Defaults returns a fresh property map holding every field's default.
func (s Schema) Defaults() Properties {
	p := make(Properties, len(s.Fields))
	for _, f := range s.Fields {
		p[f.Name] = f.Default
	}
	return p
}

// Lookup returns the catalog entry for t. Unknown types yield a zero Schema.
func Lookup(t Type) Schema {
	return catalog[t]
}

func choiceIs(field string, values ...string) func(Properties) bool {
	return func(p Properties) bool {
		got := p.Choice(field)
		for _, v := range values {
			if got == v {
				return true
			}
		}
		return false
	}
}

func number(name string, def, lo, hi, step float64) Field {
	return Field{Name: name, Kind: KindNumber, Default: Number(def), Min: lo, Max: hi, Step: step}
}

func boolean(name string, def bool) Field {
	return Field{Name: name, Kind: KindBool, Default: Bool(def)}
}

func color(name, hex string) Field {
	return Field{Name: name, Kind: KindColor, Default: MustHex(hex)}
}

func vector(name string, x, y, z float64) Field {
	return Field{Name: name, Kind: KindVec3, Default: Vec3{X: x, Y: y, Z: z}}
}

func choice(name string, options ...string) Field {
	return Field{Name: name, Kind: KindChoice, Default: Choice(options[0]), Options: options}
}

func when(f Field, pred func(Properties) bool) Field {
	f.Visible = pred
	return f
}

var catalog = map[Type]Schema{
	TypeObject: {
		Label: "Object", Inputs: true, Outputs: true,
		Fields: []Field{
			{Name: "name", Kind: KindText, Default: Text("")},
			boolean("visible", true),
		},
	},
	TypePhysics: {
		Label: "Physics", Inputs: true, Outputs: true,
		Fields: []Field{
			boolean("enabled", true),
			number("mass", 1, 0, 1000, 0.1),
			number("friction", 0.5, 0, 1, 0.01),
			number("restitution", 0.3, 0, 1, 0.01),
		},
	},
	TypeEffect: {
		Label: "Effect", Inputs: true,
		Fields: []Field{
			choice("type", "water", "particles", "trail", "glow"),
			number("intensity", 1, 0, 5, 0.1),
			number("speed", 1, 0, 10, 0.1),
			color("color", "#66ccff"),
			when(number("count", 100, 1, 1000, 1), choiceIs("type", "particles")),
			when(number("length", 20, 1, 200, 1), choiceIs("type", "trail")),
		},
	},
	TypeMaterial: {
		Label: "Material", Outputs: true,
		Fields: []Field{
			choice("model", "standard", "phong"),
			color("color", "#ffffff"),
			when(number("metalness", 0.5, 0, 1, 0.01), choiceIs("model", "standard")),
			when(number("roughness", 0.5, 0, 1, 0.01), choiceIs("model", "standard")),
			when(number("shininess", 30, 0, 200, 1), choiceIs("model", "phong")),
		},
	},
	TypeTransform: {
		Label: "Transform", Outputs: true,
		Fields: []Field{
			vector("position", 0, 0, 0),
			vector("rotation", 0, 0, 0), // degrees
			vector("scale", 1, 1, 1),
		},
	},
	TypeLight: {
		Label: "Light", Outputs: true,
		Fields: []Field{
			choice("kind", "point", "spot", "directional", "ambient"),
			color("color", "#ffffff"),
			number("intensity", 1, 0, 10, 0.1),
			boolean("castShadow", false),
			when(number("distance", 0, 0, 1000, 1), choiceIs("kind", "point", "spot")),
			when(number("angle", 30, 0, 90, 1), choiceIs("kind", "spot")), // degrees
			when(number("penumbra", 0, 0, 1, 0.01), choiceIs("kind", "spot")),
		},
	},
	TypeTerrainInput: {
		Label: "Terrain Input", Outputs: true,
	},
	TypeTerrainOutput: {
		Label: "Terrain Output", Inputs: true,
	},
	TypeHeightNoise: {
		Label: "Height Noise", Inputs: true, Outputs: true,
		Fields: []Field{
			number("seed", 0, 0, 1e6, 1),
			number("scale", 25, 1, 500, 1),
			number("strength", 2, 0, 50, 0.1),
			number("octaves", 4, 1, 8, 1),
			number("persistence", 0.5, 0, 1, 0.01),
			number("lacunarity", 2, 1, 4, 0.1),
		},
	},
	TypeTerrace: {
		Label: "Terrace", Inputs: true, Outputs: true,
		Fields: []Field{
			number("levels", 5, 1, 50, 1),
			number("smoothing", 0, 0, 1, 0.01),
		},
	},
	TypeHydraulicErosion: {
		Label: "Hydraulic Erosion", Inputs: true, Outputs: true,
		Fields: []Field{
			number("iterations", 1000, 0, 100000, 100),
			number("strength", 1, 0, 1, 0.01),
			number("seed", 0, 0, 1e6, 1),
		},
	},
}

func init() {
	for t, s := range catalog {
		s.Type = t
		catalog[t] = s
	}
}
