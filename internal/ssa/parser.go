package ssa

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ErrSyntax is wrapped by every parse error.
var ErrSyntax = errors.New("ssa: syntax error")

// ParseFile parses a textual SSA file. See Parse for the format.
func ParseFile(path string) ([]*Func, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ssa: read %s: %w", path, err)
	}
	return Parse(string(data))
}

// Parse reads the line-oriented textual SSA form:
//
//	; comment
//	func demo(sp: int64) stackptr=sp {
//	  a0 = add sp, 0
//	  p0 = inttoptr a0 to *int32
//	  v0 = load int32, p0
//	  store v0, p0
//	}
//
// The optional stackptr clause names the parameter designated as the
// function's stack pointer. Integer literals are int64 constants.
func Parse(src string) ([]*Func, error) {
	p := &parser{}
	for i, raw := range strings.Split(src, "\n") {
		line := raw
		if idx := strings.Index(line, ";"); idx >= 0 {
			line = line[:idx]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if err := p.line(i+1, line); err != nil {
			return nil, err
		}
	}
	if p.fn != nil {
		return nil, fmt.Errorf("%w: unterminated func %s", ErrSyntax, p.fn.Name)
	}
	return p.funcs, nil
}

type parser struct {
	funcs []*Func
	fn    *Func            // function being parsed, nil at top level
	scope map[string]Value // named values of fn
}

func (p *parser) line(n int, line string) error {
	if p.fn == nil {
		if !strings.HasPrefix(line, "func ") {
			return fmt.Errorf("%w: line %d: expected func, got %q", ErrSyntax, n, line)
		}
		return p.funcHeader(n, strings.TrimPrefix(line, "func "))
	}
	if line == "}" {
		p.funcs = append(p.funcs, p.fn)
		p.fn, p.scope = nil, nil
		return nil
	}
	return p.instr(n, line)
}

// funcHeader parses `name(p: type, ...) [stackptr=p] {`.
func (p *parser) funcHeader(n int, rest string) error {
	open := strings.Index(rest, "(")
	end := strings.Index(rest, ")")
	if open < 0 || end < open {
		return fmt.Errorf("%w: line %d: malformed parameter list", ErrSyntax, n)
	}
	name := strings.TrimSpace(rest[:open])
	if name == "" {
		return fmt.Errorf("%w: line %d: missing function name", ErrSyntax, n)
	}

	fn := NewFunc(name)
	scope := map[string]Value{}
	if params := strings.TrimSpace(rest[open+1 : end]); params != "" {
		for _, field := range strings.Split(params, ",") {
			pname, ptype, ok := strings.Cut(strings.TrimSpace(field), ":")
			if !ok {
				return fmt.Errorf("%w: line %d: parameter %q needs a type", ErrSyntax, n, field)
			}
			typ, err := parseType(strings.TrimSpace(ptype))
			if err != nil {
				return fmt.Errorf("%w: line %d: %v", ErrSyntax, n, err)
			}
			pname = strings.TrimSpace(pname)
			if _, dup := scope[pname]; dup {
				return fmt.Errorf("%w: line %d: duplicate parameter %q", ErrSyntax, n, pname)
			}
			scope[pname] = fn.AddParam(pname, typ)
		}
	}

	tail := strings.TrimSpace(rest[end+1:])
	if sp, ok := strings.CutPrefix(tail, "stackptr="); ok {
		spName, rem, _ := strings.Cut(sp, " ")
		tail = strings.TrimSpace(rem)
		found := false
		for i, param := range fn.Params {
			if param.Name() == spName {
				fn.SetStackPointer(i)
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("%w: line %d: stackptr names unknown parameter %q", ErrSyntax, n, spName)
		}
	}
	if tail != "{" {
		return fmt.Errorf("%w: line %d: expected { after func header", ErrSyntax, n)
	}

	p.fn, p.scope = fn, scope
	return nil
}

func (p *parser) instr(n int, line string) error {
	if rest, ok := strings.CutPrefix(line, "store "); ok {
		val, ptr, ok := cutComma(rest)
		if !ok {
			return fmt.Errorf("%w: line %d: store needs value, pointer", ErrSyntax, n)
		}
		v, err := p.operand(n, val)
		if err != nil {
			return err
		}
		q, err := p.operand(n, ptr)
		if err != nil {
			return err
		}
		p.fn.NewStore(v, q)
		return nil
	}

	name, rest, ok := strings.Cut(line, "=")
	if !ok {
		return fmt.Errorf("%w: line %d: expected assignment or store", ErrSyntax, n)
	}
	name = strings.TrimSpace(name)
	if _, dup := p.scope[name]; dup {
		return fmt.Errorf("%w: line %d: redefinition of %q", ErrSyntax, n, name)
	}
	op, args, _ := strings.Cut(strings.TrimSpace(rest), " ")
	args = strings.TrimSpace(args)

	var in *Instr
	switch op {
	case "add", "sub", "mul":
		lh, rh, ok := cutComma(args)
		if !ok {
			return fmt.Errorf("%w: line %d: %s needs two operands", ErrSyntax, n, op)
		}
		x, err := p.operand(n, lh)
		if err != nil {
			return err
		}
		y, err := p.operand(n, rh)
		if err != nil {
			return err
		}
		switch op {
		case "add":
			in = p.fn.NewAdd(name, x, y)
		case "sub":
			in = p.fn.NewSub(name, x, y)
		case "mul":
			in = p.fn.NewMul(name, x, y)
		}
	case "inttoptr":
		src, typeName, ok := cutToken(args, " to ")
		if !ok {
			return fmt.Errorf("%w: line %d: inttoptr needs `to <type>`", ErrSyntax, n)
		}
		x, err := p.operand(n, src)
		if err != nil {
			return err
		}
		typ, err := parseType(typeName)
		if err != nil {
			return fmt.Errorf("%w: line %d: %v", ErrSyntax, n, err)
		}
		ptr, ok := typ.(PtrType)
		if !ok {
			return fmt.Errorf("%w: line %d: inttoptr result must be a pointer type, got %s", ErrSyntax, n, typ)
		}
		in = p.fn.NewIntToPtr(name, x, ptr)
	case "load":
		typeName, src, ok := cutComma(args)
		if !ok {
			return fmt.Errorf("%w: line %d: load needs type, pointer", ErrSyntax, n)
		}
		typ, err := parseType(typeName)
		if err != nil {
			return fmt.Errorf("%w: line %d: %v", ErrSyntax, n, err)
		}
		ptr, err := p.operand(n, src)
		if err != nil {
			return err
		}
		in = p.fn.NewLoad(name, typ, ptr)
	default:
		return fmt.Errorf("%w: line %d: unknown op %q", ErrSyntax, n, op)
	}

	p.scope[name] = in
	return nil
}

func (p *parser) operand(n int, tok string) (Value, error) {
	tok = strings.TrimSpace(tok)
	if tok == "" {
		return nil, fmt.Errorf("%w: line %d: missing operand", ErrSyntax, n)
	}
	if tok[0] == '-' || (tok[0] >= '0' && tok[0] <= '9') {
		val, err := strconv.ParseInt(tok, 0, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: bad integer %q", ErrSyntax, n, tok)
		}
		return NewConst(val, Int64), nil
	}
	v, ok := p.scope[tok]
	if !ok {
		return nil, fmt.Errorf("%w: line %d: unknown value %q", ErrSyntax, n, tok)
	}
	return v, nil
}

func parseType(s string) (Type, error) {
	if elem, ok := strings.CutPrefix(s, "*"); ok {
		t, err := parseType(elem)
		if err != nil {
			return nil, err
		}
		return PointerTo(t), nil
	}
	switch s {
	case "int8":
		return Int8, nil
	case "int16":
		return Int16, nil
	case "int32":
		return Int32, nil
	case "int64":
		return Int64, nil
	}
	return nil, fmt.Errorf("unknown type %q", s)
}

func cutComma(s string) (string, string, bool) {
	return cutToken(s, ",")
}

func cutToken(s, sep string) (string, string, bool) {
	a, b, ok := strings.Cut(s, sep)
	return strings.TrimSpace(a), strings.TrimSpace(b), ok
}
