//go:build cgo

package syntax

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Available reports whether tree-sitter parsing is compiled in.
func Available() bool {
	return true
}

// parse returns the root node. A fresh parser is used per call since
// sitter.Parser is not safe for concurrent use.
func parse(ctx context.Context, source []byte, lang Language) (*sitter.Node, error) {
	tsLang, err := getLanguage(lang)
	if err != nil {
		return nil, err
	}
	p := sitter.NewParser()
	p.SetLanguage(tsLang)
	tree, err := p.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	return tree.RootNode(), nil
}

func getLanguage(lang Language) (*sitter.Language, error) {
	switch lang {
	case LangGo:
		return golang.GetLanguage(), nil
	case LangJavaScript:
		return javascript.GetLanguage(), nil
	case LangTypeScript:
		return typescript.GetLanguage(), nil
	case LangTSX:
		return tsx.GetLanguage(), nil
	case LangPython:
		return python.GetLanguage(), nil
	case LangRust:
		return rust.GetLanguage(), nil
	default:
		return nil, ErrUnsupported
	}
}

// walk visits n and its descendants depth-first in source order.
func walk(n *sitter.Node, visit func(*sitter.Node)) {
	if n == nil {
		return
	}
	visit(n)
	for i := 0; i < int(n.NamedChildCount()); i++ {
		walk(n.NamedChild(i), visit)
	}
}

// Imports returns module specifiers in source order: Go import paths,
// JS/TS import/export sources and require()/import() arguments, and Python
// module names (relative ones keep their leading dots).
func Imports(ctx context.Context, source []byte, lang Language) ([]string, error) {
	root, err := parse(ctx, source, lang)
	if err != nil {
		return nil, err
	}

	var out []string
	add := func(s string) {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}

	walk(root, func(n *sitter.Node) {
		switch lang {
		case LangGo:
			if n.Type() == "import_spec" {
				if p := n.ChildByFieldName("path"); p != nil {
					add(unquote(p.Content(source)))
				}
			}
		case LangJavaScript, LangTypeScript, LangTSX:
			switch n.Type() {
			case "import_statement", "export_statement":
				if s := n.ChildByFieldName("source"); s != nil {
					add(unquote(s.Content(source)))
				}
			case "call_expression":
				fn := n.ChildByFieldName("function")
				args := n.ChildByFieldName("arguments")
				if fn == nil || args == nil || args.NamedChildCount() == 0 {
					return
				}
				name := fn.Content(source)
				first := args.NamedChild(0)
				if (name == "require" || name == "import") && first.Type() == "string" {
					add(unquote(first.Content(source)))
				}
			}
		case LangPython:
			switch n.Type() {
			case "import_statement":
				for i := 0; i < int(n.NamedChildCount()); i++ {
					c := n.NamedChild(i)
					switch c.Type() {
					case "dotted_name":
						add(c.Content(source))
					case "aliased_import":
						if name := c.ChildByFieldName("name"); name != nil {
							add(name.Content(source))
						}
					}
				}
			case "import_from_statement":
				if m := n.ChildByFieldName("module_name"); m != nil {
					add(m.Content(source))
				}
			}
		}
	})
	return out, nil
}

// declarationKinds maps node types to a declaration kind per grammar.
var declarationKinds = map[Language]map[string]string{
	LangGo: {"type_spec": "type"},
	LangJavaScript: {
		"class_declaration": "class",
	},
	LangTypeScript: {
		"interface_declaration":  "interface",
		"type_alias_declaration": "type",
		"class_declaration":      "class",
		"enum_declaration":       "enum",
	},
	LangTSX: {
		"interface_declaration":  "interface",
		"type_alias_declaration": "type",
		"class_declaration":      "class",
		"enum_declaration":       "enum",
	},
	LangPython: {"class_definition": "class"},
	LangRust: {
		"struct_item": "struct",
		"enum_item":   "enum",
	},
}

// Declarations returns named type-like declarations in source order.
func Declarations(ctx context.Context, source []byte, lang Language) ([]Declaration, error) {
	kinds, ok := declarationKinds[lang]
	if !ok {
		return nil, ErrUnsupported
	}
	root, err := parse(ctx, source, lang)
	if err != nil {
		return nil, err
	}

	var out []Declaration
	walk(root, func(n *sitter.Node) {
		kind, ok := kinds[n.Type()]
		if !ok {
			return
		}
		name := n.ChildByFieldName("name")
		if name == nil {
			return
		}
		out = append(out, Declaration{
			Name: name.Content(source),
			Kind: kind,
			Line: int(n.StartPoint().Row) + 1,
		})
	})
	return out, nil
}
