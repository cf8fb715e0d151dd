// Package codegen は参照ホルダーとバインダーの C# ソースを生成して書き出す。
package codegen

import (
	"fmt"
	"strings"
)

// indentUnit は生成される C# コードのインデント幅。
const indentUnit = "    "

// Declaration は namespace ブロック内の宣言を表す。
//
// String メソッドは指定されたインデントレベルで文字列表現を返す。
type Declaration interface {
	String(indent int) string
}

// Unit は生成される C# のコンパイル単位を表す。
//
// 例:
//
//	//Auto generated
//	using UnityEngine;
//
//	namespace Scriptables.References
//	{
//	    ...
//	}
type Unit struct {
	Imports   []string      // using 句（そのまま出力される）
	Namespace string        // 生成される型の namespace
	Decls     []Declaration // namespace 内の宣言
}

// ClassDecl は本体が空のクラス宣言を表す。
//
// 例:
//
//	[RequireComponent(typeof(Foo))]
//	public class FooRefSetter : BaseRefSetter<Foo, FooRefSO> { }
type ClassDecl struct {
	Attributes []string // 属性（角括弧なし）
	Name       string   // クラス名
	Base       string   // 基底型
}

// String はクラス宣言の文字列表現を返す。
func (c *ClassDecl) String(indent int) string {
	var buf strings.Builder
	tabs := strings.Repeat(indentUnit, indent)

	for _, attr := range c.Attributes {
		buf.WriteString(fmt.Sprintf("%s[%s]\n", tabs, attr))
	}
	buf.WriteString(fmt.Sprintf("%spublic class %s : %s { }", tabs, c.Name, c.Base))

	return buf.String()
}

// RawDecl は生の C# コードを表す。各行にインデントが付与される。
type RawDecl struct {
	Code string
}

// String はインデントを付与したコードを返す。
func (r *RawDecl) String(indent int) string {
	tabs := strings.Repeat(indentUnit, indent)
	lines := strings.Split(strings.TrimRight(r.Code, "\n"), "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = tabs + line
		}
	}
	return strings.Join(lines, "\n")
}
