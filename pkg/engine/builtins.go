package engine

import (
	"fmt"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// kwPrefix marks keyword arguments after preprocessing.
const kwPrefix = "__kw_"

// preprocessSource rewrites layout-script syntax into forms zygomys
// accepts:
//
//  1. :keyword -> "__kw_keyword", so keyword arguments need no global
//     symbol registration.
//  2. ; line comments -> // comments.
//  3. kebab-case identifiers -> underscore form (zygomys reads a hyphen
//     as subtraction).
//
// String literal boundaries are respected throughout.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
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
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		if b[i] == ':' && i+1 < len(b) {
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				result = append(result, '"')
				result = append(result, kwPrefix...)
				result = append(result, b[i+1:j]...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isLetter(b[i+1]) {
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

// sexpVec3 passes a vector between builtins.
type sexpVec3 struct {
	vec v3.Vec
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %.3f %.3f %.3f)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// kwArgs is a parsed mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

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

// parseArgs separates keyword pairs from positional arguments.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		if name, ok := isKW(args[i]); ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

func toInt(s zygo.Sexp) (int, error) {
	if v, ok := s.(*zygo.SexpInt); ok {
		return int(v.Val), nil
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

func toVec3(s zygo.Sexp) (v3.Vec, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return v3.Vec{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// collector accumulates the axis specs a script declares.
type collector struct {
	specs []AxisSpec
}

// registerBuiltins installs the layout DSL into a zygomys environment.
// Source must be run through preprocessSource first so keyword tokens
// arrive as recognizable strings.
func registerBuiltins(env *zygo.Zlisp, c *collector) {

	// (vec3 x y z)
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires 3 numbers, got %d", len(args))
		}
		var coords [3]float64
		for i, a := range args {
			f, err := toFloat64(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("vec3: argument %d: %w", i+1, err)
			}
			coords[i] = f
		}
		return &sexpVec3{vec: v3.Vec{X: coords[0], Y: coords[1], Z: coords[2]}}, nil
	})

	// (post :id 0 :from (vec3 0 0 0) :to (vec3 0 0 96) :roll (vec3 1 0 0))
	env.AddFunction("post", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		spec := AxisSpec{ID: -1}

		if v, ok := pa.kw["id"]; ok {
			id, err := toInt(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("post: id: %w", err)
			}
			spec.ID = id
		} else {
			spec.ID = len(c.specs)
		}

		v, ok := pa.kw["from"]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("post: missing :from")
		}
		from, err := toVec3(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("post: from: %w", err)
		}
		spec.From = from

		v, ok = pa.kw["to"]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("post: missing :to")
		}
		to, err := toVec3(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("post: to: %w", err)
		}
		spec.To = to

		if v, ok := pa.kw["roll"]; ok {
			roll, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("post: roll: %w", err)
			}
			spec.Roll = &roll
		}

		c.specs = append(c.specs, spec)
		return zygo.SexpNull, nil
	})
}
