package codegen

import (
	"fmt"
	"strings"

	"github.com/Yamashou/refgen/naming"
)

// GeneratedHeader は生成されたファイルの先頭行。
const GeneratedHeader = "//Auto generated"

// CodeFormatter は生成されるコードをフォーマットする。
type CodeFormatter struct {
	namespace string
}

// NewCodeFormatter は生成される型を namespace に置く CodeFormatter を作成する。
func NewCodeFormatter(namespace string) *CodeFormatter {
	return &CodeFormatter{namespace: namespace}
}

// FormatUnit はコンパイル単位を文字列にフォーマットする。
//
// 戻り値の形式:
//
//	//Auto generated
//	<Imports を1行ずつ>
//
//	namespace <Namespace>
//	{
//	    <Decls を空行区切りで>
//	}
func (f *CodeFormatter) FormatUnit(u *Unit) string {
	var buf strings.Builder

	buf.WriteString(GeneratedHeader + "\n")
	for _, i := range u.Imports {
		buf.WriteString(i + "\n")
	}
	buf.WriteString("\n")

	buf.WriteString(fmt.Sprintf("namespace %s\n{\n", u.Namespace))
	for i, d := range u.Decls {
		if i > 0 {
			buf.WriteString("\n")
		}
		buf.WriteString(d.String(1))
		buf.WriteString("\n")
	}
	buf.WriteString("}\n")

	return buf.String()
}

// FormatHolder はホルダー（ScriptableObject）のソースをフォーマットする。
//
// 例: Foo に対して
//
//	[CreateAssetMenu(menuName = "References/Foo", fileName = "FooRef")]
//	public class FooRefSO : BaseRefSO<Foo> { }
func (f *CodeFormatter) FormatHolder(r naming.Result) string {
	return f.FormatUnit(&Unit{
		Imports:   r.Imports,
		Namespace: f.namespace,
		Decls: []Declaration{
			&ClassDecl{
				Attributes: []string{fmt.Sprintf("CreateAssetMenu(menuName = \"References/%s\", fileName = \"%sRef\")", r.Original, r.Original)},
				Name:       r.Holder,
				Base:       fmt.Sprintf("BaseRefSO<%s>", r.Type),
			},
		},
	})
}

// FormatBinder はバインダー（MonoBehaviour）のソースをフォーマットする。
//
// 例: FooRefSO に対して
//
//	[RequireComponent(typeof(Foo))]
//	public class FooRefSetter : BaseRefSetter<Foo, FooRefSO> { }
func (f *CodeFormatter) FormatBinder(r naming.Result) string {
	return f.FormatUnit(&Unit{
		Imports:   r.Imports,
		Namespace: f.namespace,
		Decls: []Declaration{
			&ClassDecl{
				Attributes: []string{fmt.Sprintf("RequireComponent(typeof(%s))", r.Type)},
				Name:       r.Binder,
				Base:       fmt.Sprintf("BaseRefSetter<%s, %s>", r.Type, r.Holder),
			},
		},
	})
}
