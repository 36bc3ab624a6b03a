package gen

import (
	"go/token"
	"strconv"
	"strings"
	"unicode"

	"github.com/dave/jennifer/jen"

	"github.com/syssam/protobridge/compiler/load"
)

// translatePkg is the runtime package the generated tables plug into.
const translatePkg = "github.com/syssam/protobridge/translate"

// GenAccessors renders the field tables of the closure types reachable from
// the Go package at pkgPath. Each table constructs the canonical zero value
// of its type and hands out field pointers by ordinal, so the runtime never
// looks fields up by reflection.
func (s *Schema) GenAccessors(pkgPath, pkgName string) *jen.File {
	f := jen.NewFilePathName(pkgPath, pkgName)
	f.HeaderComment(s.Header)

	var (
		entries []accessorEntry
		used    = make(map[string]bool)
	)
	for _, m := range s.Closure() {
		if !accessible(m.Node, pkgPath) {
			continue
		}
		name := accessorName(m.Node.Type.Name(), used)
		entries = append(entries, accessorEntry{message: m.Name, ident: name})
		genAccessor(f, name, m.Node)
	}

	f.Comment("Accessors returns the field tables of this package keyed by message name.")
	f.Func().Id("Accessors").Params().Map(jen.String()).Qual(translatePkg, "Accessor").Block(
		jen.Return(jen.Map(jen.String()).Qual(translatePkg, "Accessor").Values(jen.DictFunc(func(d jen.Dict) {
			for _, e := range entries {
				d[jen.Lit(e.message)] = jen.Id(e.ident).Values()
			}
		}))),
	)
	return f
}

type accessorEntry struct {
	message string
	ident   string
}

func genAccessor(f *jen.File, name string, n *load.TypeNode) {
	typ := jen.Qual(n.Type.PkgPath(), n.Type.Name())
	f.Commentf("%s is the field table of %s.", name, n.Type.Name())
	f.Type().Id(name).Struct()

	f.Func().Params(jen.Id(name)).Id("New").Params().Any().Block(
		jen.Return(jen.New(typ.Clone())),
	)

	body := []jen.Code{jen.Return(jen.Nil())}
	if len(n.Fields) > 0 {
		body = []jen.Code{
			jen.Id("o").Op(":=").Id("obj").Assert(jen.Op("*").Add(typ.Clone())),
			jen.Switch(jen.Id("ordinal")).BlockFunc(func(g *jen.Group) {
				for _, fld := range n.Fields {
					g.Case(jen.Lit(fld.Ordinal)).Block(
						jen.Return(jen.Op("&").Id("o").Dot(fld.GoName)),
					)
				}
			}),
			jen.Return(jen.Nil()),
		}
	}
	f.Func().Params(jen.Id(name)).Id("FieldPtr").Params(
		jen.Id("obj").Any(),
		jen.Id("ordinal").Int(),
	).Any().Block(body...)
}

// accessible reports whether generated code in pkgPath can name the type.
// Generic instantiations are left to reflection.
func accessible(n *load.TypeNode, pkgPath string) bool {
	name := n.Type.Name()
	if name == "" || strings.ContainsRune(name, '[') {
		return false
	}
	return n.Type.PkgPath() == pkgPath || token.IsExported(name)
}

func accessorName(typeName string, used map[string]bool) string {
	r := []rune(typeName)
	r[0] = unicode.ToLower(r[0])
	base := string(r) + "Accessor"
	name := base
	for i := 2; used[name]; i++ {
		name = base + strconv.Itoa(i)
	}
	used[name] = true
	return name
}
