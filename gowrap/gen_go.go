package gowrap

import (
	"bytes"
	"fmt"
	"go/types"

	"github.com/dave/jennifer/jen"

	"github.com/chazu/doml/pkg/ir"
)

const vmPath = "github.com/chazu/doml/vm"

// GenerateGoGlue emits a Go file whose Register function adds a constructor
// plus a getter and setter per field for every type in the model.
func GenerateGoGlue(model *PackageModel) (string, error) {
	f := jen.NewFile(GluePackageName(model.Name))
	f.HeaderComment("Code generated by doml wrap. DO NOT EDIT.")
	f.ImportAlias(model.ImportPath, "pkg")
	f.ImportName(vmPath, "vm")

	f.Comment(fmt.Sprintf("Register adds bindings for %s types to r.", model.ImportPath))
	f.Func().Id("Register").Params(jen.Id("r").Op("*").Qual(vmPath, "Registry")).Error().Block(
		registerBody(model)...,
	)

	for _, tm := range model.Types {
		g := &typeGen{f: f, model: model, tm: tm, owner: model.Owner(tm)}
		g.constructor()
		g.target()
		for _, fm := range tm.Fields {
			g.getter(fm)
			g.setter(fm)
		}
	}

	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return "", fmt.Errorf("rendering glue for %s: %w", model.ImportPath, err)
	}
	return buf.String(), nil
}

func registerBody(model *PackageModel) []jen.Code {
	var body []jen.Code
	for _, tm := range model.Types {
		owner := model.Owner(tm)
		body = append(body, registerCall("RegisterConstructor",
			jen.Lit(owner), jen.Id(ConstructorFuncName(tm.Name))))
		for _, fm := range tm.Fields {
			body = append(body,
				registerCall("RegisterGetter",
					jen.Lit(fm.Name), jen.Lit(owner), jen.Lit(0), jen.Id(GetterFuncName(tm.Name, fm.Name))),
				registerCall("RegisterSetter",
					jen.Lit(fm.Name), jen.Lit(owner), jen.Lit(1), jen.Id(SetterFuncName(tm.Name, fm.Name))),
			)
		}
	}
	return append(body, jen.Return(jen.Nil()))
}

// registerCall renders `if _, err := r.<method>(args...); err != nil { return err }`.
func registerCall(method string, args ...jen.Code) jen.Code {
	return jen.If(
		jen.List(jen.Id("_"), jen.Err()).Op(":=").Id("r").Dot(method).Call(args...),
		jen.Err().Op("!=").Nil(),
	).Block(jen.Return(jen.Err()))
}

// typeGen emits the adapters for one struct type.
type typeGen struct {
	f     *jen.File
	model *PackageModel
	tm    TypeModel
	owner string
}

func bindParams() []jen.Code {
	return []jen.Code{
		jen.Id("rt").Op("*").Qual(vmPath, "Runtime"),
		jen.Id("reg").Qual(vmPath, "Register"),
	}
}

// report renders rt.Errorf(owner, format, args...).
func (g *typeGen) report(format string, args ...jen.Code) jen.Code {
	return jen.Id("rt").Dot("Errorf").Call(append([]jen.Code{jen.Lit(g.owner), jen.Lit(format)}, args...)...)
}

func (g *typeGen) constructor() {
	g.f.Func().Id(ConstructorFuncName(g.tm.Name)).Params(bindParams()...).Block(
		jen.Id("obj").Op(":=").Op("&").Qual(g.model.ImportPath, g.tm.Name).Values(),
		jen.If(
			jen.Err().Op(":=").Id("rt").Dot("SetObject").Call(jen.Qual(vmPath, "Object").Call(jen.Id("obj")), jen.Id("reg")),
			jen.Err().Op("!=").Nil(),
		).Block(
			g.report("constructor: %v", jen.Err()),
			jen.Return(),
		),
		jen.Id("rt").Dot("Push").Call(jen.Qual(vmPath, "Object").Call(jen.Id("obj")), jen.True()),
	)
	g.f.Line()
}

func (g *typeGen) target() {
	ptr := jen.Op("*").Qual(g.model.ImportPath, g.tm.Name)
	g.f.Func().Id(TargetFuncName(g.tm.Name)).Params(append(bindParams(), jen.Id("member").String())...).
		Parens(jen.List(ptr, jen.Bool())).Block(
		jen.List(jen.Id("v"), jen.Err()).Op(":=").Id("rt").Dot("GetObject").Call(jen.Id("reg")),
		jen.If(jen.Err().Op("!=").Nil()).Block(
			g.report("%s: %v", jen.Id("member"), jen.Err()),
			jen.Return(jen.Nil(), jen.False()),
		),
		jen.List(jen.Id("obj"), jen.Id("ok")).Op(":=").Id("v").Dot("Interface").Call().Assert(jen.Op("*").Qual(g.model.ImportPath, g.tm.Name)),
		jen.If(jen.Op("!").Id("ok")).Block(
			g.report("%s: target is %s", jen.Id("member"), jen.Id("v").Dot("Kind").Call()),
			jen.Return(jen.Nil(), jen.False()),
		),
		jen.Return(jen.Id("obj"), jen.True()),
	)
	g.f.Line()
}

func (g *typeGen) getter(fm FieldModel) {
	var pushed jen.Code
	if fm.IsObject() {
		pushed = jen.Qual(vmPath, "Object").Call(jen.Op("&").Id("obj").Dot(fm.Name))
	} else {
		pushed = jen.Qual(vmPath, "ValueOf").Call(jen.Id("obj").Dot(fm.Name))
	}

	g.f.Func().Id(GetterFuncName(g.tm.Name, fm.Name)).Params(bindParams()...).Block(
		jen.List(jen.Id("obj"), jen.Id("ok")).Op(":=").Id(TargetFuncName(g.tm.Name)).Call(
			jen.Id("rt"), jen.Id("reg"), jen.Lit("get "+fm.Name)),
		jen.If(jen.Op("!").Id("ok")).Block(jen.Return()),
		jen.Id("rt").Dot("Push").Call(pushed, jen.True()),
	)
	g.f.Line()
}

func (g *typeGen) setter(fm FieldModel) {
	popType, want, assign := g.popShape(fm)

	g.f.Func().Id(SetterFuncName(g.tm.Name, fm.Name)).Params(bindParams()...).Block(
		jen.List(jen.Id("obj"), jen.Id("ok")).Op(":=").Id(TargetFuncName(g.tm.Name)).Call(
			jen.Id("rt"), jen.Id("reg"), jen.Lit("set "+fm.Name)),
		jen.If(jen.Op("!").Id("ok")).Block(jen.Return()),
		jen.List(jen.Id("v"), jen.Id("ok")).Op(":=").Qual(vmPath, "Pop").Types(popType).Call(jen.Id("rt")),
		jen.If(jen.Op("!").Id("ok")).Block(
			g.report("set "+fm.Name+": %v", jen.Id("rt").Dot("PopError").Call(jen.Lit(want))),
			jen.Return(),
		),
		jen.Id("obj").Dot(fm.Name).Op("=").Add(assign),
	)
	g.f.Line()
}

// popShape returns the type a setter pops, how that type is described in
// errors, and the expression converting the popped v to the field type.
func (g *typeGen) popShape(fm FieldModel) (jen.Code, string, jen.Code) {
	if fm.IsObject() {
		named := fm.GoType.(*types.Named)
		return jen.Op("*").Qual(g.model.ImportPath, named.Obj().Name()),
			QualifiedTypeName(g.model.Name, named.Obj().Name()),
			jen.Op("*").Id("v")
	}

	basic := fm.GoType.(*types.Basic).Name()
	convert := func(pop string) jen.Code {
		if pop == basic {
			return jen.Id("v")
		}
		return jen.Id(basic).Call(jen.Id("v"))
	}

	switch fm.Elem {
	case ir.TypeInt:
		return jen.Int64(), "int64", convert("int64")
	case ir.TypeFloat:
		return jen.Float64(), "float64", convert("float64")
	case ir.TypeString:
		return jen.String(), "string", jen.Id("v")
	default:
		return jen.Bool(), "bool", jen.Id("v")
	}
}
