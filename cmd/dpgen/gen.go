package main

import (
	"bytes"
	"errors"
	"fmt"
	"go/ast"
	"go/format"
	"go/parser"
	"go/token"
	"strings"
)

var (
	errNoTypes      = errors.New("no type names given")
	errPackageCount = errors.New("directory must contain exactly one non-test package")
)

// generate produces the datapoint method file for the named struct
// types defined in the package at dir. The result is gofmt-formatted
// source ready to be written next to the package's own files.
//
// Supported field types: the rtdb primitives, other datapoint structs,
// and fixed-size arrays of either, nested to any depth. Every field
// must itself satisfy the datapoint contract; the generated methods
// are plain field traversals in declaration order.
func generate(dir string, typeNames []string) ([]byte, error) {
	if len(typeNames) == 0 {
		return nil, errNoTypes
	}

	fset := token.NewFileSet()

	pkgs, err := parser.ParseDir(fset, dir, nil, parser.SkipObjectResolution)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", dir, err)
	}

	var pkg *ast.Package

	for name, p := range pkgs {
		if strings.HasSuffix(name, "_test") {
			continue
		}

		if pkg != nil {
			return nil, errPackageCount
		}

		pkg = p
	}

	if pkg == nil {
		return nil, errPackageCount
	}

	structs := collectStructs(pkg)

	var body bytes.Buffer

	fmt.Fprintf(&body, "// Code generated by dpgen. DO NOT EDIT.\n\n")
	fmt.Fprintf(&body, "package %s\n\n", pkg.Name)
	fmt.Fprintf(&body, "import \"io\"\n\n")

	for _, name := range typeNames {
		st, ok := structs[name]
		if !ok {
			return nil, fmt.Errorf("type %s: not a struct type in package %s", name, pkg.Name)
		}

		if err := emitType(&body, name, st); err != nil {
			return nil, fmt.Errorf("type %s: %w", name, err)
		}
	}

	src, err := format.Source(body.Bytes())
	if err != nil {
		return nil, fmt.Errorf("formatting output: %w", err)
	}

	return src, nil
}

// collectStructs indexes the package's struct type declarations by name.
func collectStructs(pkg *ast.Package) map[string]*ast.StructType {
	structs := make(map[string]*ast.StructType)

	for _, file := range pkg.Files {
		for _, decl := range file.Decls {
			gd, ok := decl.(*ast.GenDecl)
			if !ok || gd.Tok != token.TYPE {
				continue
			}

			for _, spec := range gd.Specs {
				ts, tsOk := spec.(*ast.TypeSpec)
				if !tsOk {
					continue
				}

				if st, stOk := ts.Type.(*ast.StructType); stOk {
					structs[ts.Name.Name] = st
				}
			}
		}
	}

	return structs
}

// fields flattens a struct's field list into (name, type) pairs in
// declaration order, expanding multi-name fields.
func fields(st *ast.StructType) ([]string, []ast.Expr, error) {
	var (
		names []string
		types []ast.Expr
	)

	for _, f := range st.Fields.List {
		if len(f.Names) == 0 {
			return nil, nil, errors.New("embedded fields are not supported")
		}

		for _, n := range f.Names {
			names = append(names, n.Name)
			types = append(types, f.Type)
		}
	}

	if len(names) == 0 {
		return nil, nil, errors.New("struct has no fields")
	}

	return names, types, nil
}

func emitType(b *bytes.Buffer, name string, st *ast.StructType) error {
	names, types, err := fields(st)
	if err != nil {
		return err
	}

	fmt.Fprintf(b, "func (x *%s) Size() uint64 {\n", name)
	fmt.Fprintf(b, "var n uint64\n")

	for i, fn := range names {
		if err := emitWalk(b, types[i], "x."+fn, 0, func(path string) {
			fmt.Fprintf(b, "n += %s.Size()\n", path)
		}); err != nil {
			return fmt.Errorf("field %s: %w", fn, err)
		}
	}

	fmt.Fprintf(b, "\nreturn n\n}\n\n")

	fmt.Fprintf(b, "func (x *%s) Hash() uint64 {\n", name)
	fmt.Fprintf(b, "h := uint64(1)\n")

	for i, fn := range names {
		if err := emitWalk(b, types[i], "x."+fn, 0, func(path string) {
			fmt.Fprintf(b, "h *= %s.Hash()\n", path)
		}); err != nil {
			return fmt.Errorf("field %s: %w", fn, err)
		}
	}

	fmt.Fprintf(b, "\nreturn h\n}\n\n")

	fmt.Fprintf(b, "func (x *%s) Write(w io.Writer) error {\n", name)

	for i, fn := range names {
		if err := emitWalk(b, types[i], "x."+fn, 0, func(path string) {
			fmt.Fprintf(b, "if err := %s.Write(w); err != nil {\nreturn err\n}\n", path)
		}); err != nil {
			return fmt.Errorf("field %s: %w", fn, err)
		}
	}

	fmt.Fprintf(b, "\nreturn nil\n}\n\n")

	fmt.Fprintf(b, "func (x *%s) Read(r io.Reader) error {\n", name)

	for i, fn := range names {
		if err := emitWalk(b, types[i], "x."+fn, 0, func(path string) {
			fmt.Fprintf(b, "if err := %s.Read(r); err != nil {\nreturn err\n}\n", path)
		}); err != nil {
			return fmt.Errorf("field %s: %w", fn, err)
		}
	}

	fmt.Fprintf(b, "\nreturn nil\n}\n\n")

	fmt.Fprintf(b, "func (x *%s) Lerp(prev, next *%s, num, den uint64) {\n", name, name)

	for i, fn := range names {
		if err := emitWalk(b, types[i], "x."+fn, 0, func(path string) {
			// The same element path relative to all three records.
			rel := path[len("x."):]
			fmt.Fprintf(b, "%s.Lerp(&prev.%s, &next.%s, num, den)\n", path, rel, rel)
		}); err != nil {
			return fmt.Errorf("field %s: %w", fn, err)
		}
	}

	fmt.Fprintf(b, "}\n\n")

	return nil
}

// emitWalk invokes emit for every datapoint element reachable from
// path, wrapping fixed-array elements in range loops. Loop variables
// are named i0, i1, ... by nesting depth; gofmt fixes indentation.
func emitWalk(b *bytes.Buffer, expr ast.Expr, path string, depth int, emit func(path string)) error {
	switch t := expr.(type) {
	case *ast.Ident, *ast.SelectorExpr:
		emit(path)
		return nil
	case *ast.ArrayType:
		if t.Len == nil {
			return errors.New("slices are not supported, use a fixed-size array")
		}

		iv := fmt.Sprintf("i%d", depth)
		fmt.Fprintf(b, "for %s := range %s {\n", iv, path)

		if err := emitWalk(b, t.Elt, fmt.Sprintf("%s[%s]", path, iv), depth+1, emit); err != nil {
			return err
		}

		fmt.Fprintf(b, "}\n")

		return nil
	default:
		return fmt.Errorf("unsupported field type %T", expr)
	}
}
