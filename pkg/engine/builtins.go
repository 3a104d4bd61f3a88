package engine

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"unicode"

	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource rewrites graph script source before passing it to
// zygomys. It performs three transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: height-noise -> height_noise
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
//  3. Line comments: ; and ;; become //.
//
// All transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			// Check for keyword: colon followed by a letter.
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpNodeRef is what `node` returns: a plan-local node index.
type sexpNodeRef struct {
	index int
	typ   string
}

func (n *sexpNodeRef) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(noderef %d %q)", n.index, n.typ)
}
func (n *sexpNodeRef) Type() *zygo.RegisteredType { return nil }

// sexpVec3 wraps a vector property value.
type sexpVec3 struct {
	vec v3.Vec
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
// order keeps keywords in source order so recorded property sets replay
// deterministically.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	order      []string
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if !ok {
			result.positional = append(result.positional, args[i])
			i++
			continue
		}
		if _, seen := result.kw[name]; !seen {
			result.order = append(result.order, name)
		}
		if i+1 < len(args) {
			result.kw[name] = args[i+1]
			i += 2
		} else {
			// Trailing keyword with no value.
			result.kw[name] = zygo.SexpNull
			i++
		}
	}
	return result
}

// propName maps a script keyword to a catalog field name:
// cast-shadow and cast_shadow both become castShadow.
func propName(kw string) string {
	var b strings.Builder
	upper := false
	for _, r := range kw {
		if r == '-' || r == '_' {
			upper = b.Len() > 0
			continue
		}
		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_phong) and plain strings ("phong").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], nil
	}
	return str.S, nil
}

// toNodeRef extracts a plan node index from a sexpNodeRef.
func toNodeRef(s zygo.Sexp) (int, error) {
	if ref, ok := s.(*sexpNodeRef); ok {
		return ref.index, nil
	}
	return 0, fmt.Errorf("expected node reference, got %T (%s)", s, s.SexpString(nil))
}

// toRaw renders a script value in the raw form property widgets submit.
func toRaw(s zygo.Sexp) (string, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return strconv.FormatInt(v.Val, 10), nil
	case *zygo.SexpFloat:
		return strconv.FormatFloat(v.Val, 'g', -1, 64), nil
	case *zygo.SexpBool:
		return strconv.FormatBool(v.Val), nil
	case *zygo.SexpStr:
		return toKeywordString(v)
	case *sexpVec3:
		return fmt.Sprintf("%g,%g,%g", v.vec.X, v.vec.Y, v.vec.Z), nil
	}
	return "", fmt.Errorf("unsupported value %T (%s)", s, s.SexpString(nil))
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// recordProps records a property set for every keyword not in skip.
func recordProps(p *Plan, node int, pa kwArgs, fn string, skip ...string) error {
	for _, kw := range pa.order {
		if slices.Contains(skip, kw) {
			continue
		}
		raw, err := toRaw(pa.kw[kw])
		if err != nil {
			return fmt.Errorf("%s: %s: %w", fn, kw, err)
		}
		p.set(node, propName(kw), raw)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the graph script builtins into a zygomys
// environment. Builtins only record operations on p; nothing touches an
// editor until the plan is applied.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, p *Plan) {

	// -----------------------------------------------------------------------
	// (node "material" :x 40 :y 80 :model :phong :color "#ff0000")
	// -----------------------------------------------------------------------
	env.AddFunction("node", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("node: expected 1 type argument, got %d", len(pa.positional))
		}
		typ, err := toKeywordString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("node: type: %w", err)
		}
		var pos v2.Vec
		if v, ok := pa.kw["x"]; ok {
			if pos.X, err = toFloat64(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("node: x: %w", err)
			}
		}
		if v, ok := pa.kw["y"]; ok {
			if pos.Y, err = toFloat64(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("node: y: %w", err)
			}
		}
		idx := p.addNode(typ, pos)
		if err := recordProps(p, idx, pa, "node", "x", "y"); err != nil {
			return zygo.SexpNull, err
		}
		return &sexpNodeRef{index: idx, typ: typ}, nil
	})

	// -----------------------------------------------------------------------
	// (prop mat :metalness 0.9 :roughness 0.1)
	// -----------------------------------------------------------------------
	env.AddFunction("prop", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("prop: expected 1 node argument, got %d", len(pa.positional))
		}
		idx, err := toNodeRef(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("prop: %w", err)
		}
		if len(pa.order) == 0 {
			return zygo.SexpNull, fmt.Errorf("prop: no properties given")
		}
		if err := recordProps(p, idx, pa, "prop"); err != nil {
			return zygo.SexpNull, err
		}
		return pa.positional[0], nil
	})

	// -----------------------------------------------------------------------
	// (link obj "cube")
	// -----------------------------------------------------------------------
	env.AddFunction("link", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("link: expected node and object name, got %d args", len(args))
		}
		idx, err := toNodeRef(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("link: %w", err)
		}
		obj, err := toString(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("link: object: %w", err)
		}
		p.link(idx, obj)
		return args[0], nil
	})

	// -----------------------------------------------------------------------
	// (connect noise terrace output)  ; chains left to right
	// -----------------------------------------------------------------------
	env.AddFunction("connect", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 2 {
			return zygo.SexpNull, fmt.Errorf("connect: expected at least 2 nodes, got %d", len(args))
		}
		refs := make([]int, len(args))
		for i, a := range args {
			idx, err := toNodeRef(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("connect: arg %d: %w", i, err)
			}
			refs[i] = idx
		}
		for i := 1; i < len(refs); i++ {
			p.connect(refs[i-1], refs[i])
		}
		return args[len(args)-1], nil
	})

	// -----------------------------------------------------------------------
	// (vec3 0 1.5 0)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3: expected 3 arguments, got %d", len(args))
		}
		var xyz [3]float64
		for i, a := range args {
			f, err := toFloat64(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("vec3: component %d: %w", i, err)
			}
			xyz[i] = f
		}
		return &sexpVec3{vec: v3.Vec{X: xyz[0], Y: xyz[1], Z: xyz[2]}}, nil
	})

	// -----------------------------------------------------------------------
	// (chain (list a b c)) is (connect a b c) over a list value.
	// -----------------------------------------------------------------------
	env.AddFunction("chain", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("chain: expected 1 list argument, got %d", len(args))
		}
		items, err := sexpListToSlice(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("chain: %w", err)
		}
		prev := -1
		for i, it := range items {
			idx, err := toNodeRef(it)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("chain: item %d: %w", i, err)
			}
			if prev >= 0 {
				p.connect(prev, idx)
			}
			prev = idx
		}
		return args[0], nil
	})
}
