package source

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestParse(t *testing.T) {
	t.Parallel()

	type want struct {
		types []TypeDescriptor
	}

	tests := []struct {
		name string
		src  string
		want want
	}{
		{
			name: "ブロック形式の namespace 内のクラスとマーカー属性",
			src: `using UnityEngine;

namespace Game.Things
{
    [ReferenceAutoGeneration]
    public class Foo : MonoBehaviour
    {
        [SerializeField] private int _count;
        private int[] _values = new int[3];
    }
}
`,
			want: want{
				types: []TypeDescriptor{
					{Name: "Foo", FullName: "Game.Things.Foo", Namespace: "Game.Things", Kind: KindClass, Attributes: []string{"ReferenceAutoGeneration"}, Line: 6},
				},
			},
		},
		{
			name: "ファイルスコープ namespace と複数属性",
			src: `namespace Game.Things;

[System.Serializable, Scripts.ReferenceAutoGenerationAttribute()]
[DisallowMultipleComponent]
public sealed partial class Bar : MonoBehaviour { }
`,
			want: want{
				types: []TypeDescriptor{
					{
						Name: "Bar", FullName: "Game.Things.Bar", Namespace: "Game.Things", Kind: KindClass,
						Attributes: []string{"System.Serializable", "Scripts.ReferenceAutoGenerationAttribute", "DisallowMultipleComponent"},
						Partial:    true, Line: 5,
					},
				},
			},
		},
		{
			name: "入れ子の namespace と入れ子の型",
			src: `namespace Outer
{
    namespace Inner
    {
        public class Host
        {
            public struct Nested { }
            private enum Mode { A, B }
        }
    }
}
`,
			want: want{
				types: []TypeDescriptor{
					{Name: "Host", FullName: "Outer.Inner.Host", Namespace: "Outer.Inner", Kind: KindClass, Line: 5},
					{Name: "Nested", FullName: "Outer.Inner.Host+Nested", Namespace: "Outer.Inner", Kind: KindStruct, Line: 7},
					{Name: "Mode", FullName: "Outer.Inner.Host+Mode", Namespace: "Outer.Inner", Kind: KindEnum, Line: 8},
				},
			},
		},
		{
			name: "ジェネリック・抽象・静的クラスと制約の class キーワード",
			src: `namespace Scriptables.References
{
    public abstract class BaseRefSO<TComponent> : ScriptableObject where TComponent : class
    {
    }

    public static class Helpers { }
}
`,
			want: want{
				types: []TypeDescriptor{
					{Name: "BaseRefSO", FullName: "Scriptables.References.BaseRefSO", Namespace: "Scriptables.References", Kind: KindClass, Abstract: true, Generic: true, Line: 3},
					{Name: "Helpers", FullName: "Scriptables.References.Helpers", Namespace: "Scriptables.References", Kind: KindClass, Static: true, Line: 7},
				},
			},
		},
		{
			name: "コメント・文字列・プリプロセッサ内の宣言は無視される",
			src: `// public class InComment { }
/* [ReferenceAutoGeneration]
   public class InBlock { } */
#if UNITY_EDITOR
using UnityEditor;
#endif
public class Global
{
    private string _a = "class InString { }";
    private string _b = @"verbatim ""class InVerbatim"" { }";
    private char _c = '{';
    void Run()
    {
        foreach (var record in new[] { 1, 2 }) { }
    }
}
`,
			want: want{
				types: []TypeDescriptor{
					{Name: "Global", FullName: "Global", Kind: KindClass, Line: 7},
				},
			},
		},
		{
			name: "record と interface",
			src: `namespace Data
{
    public record class Snapshot(int Id);
    [ReferenceAutoGeneration] public interface IFoo { }
}
`,
			want: want{
				types: []TypeDescriptor{
					{Name: "Snapshot", FullName: "Data.Snapshot", Namespace: "Data", Kind: KindRecord, Line: 3},
					{Name: "IFoo", FullName: "Data.IFoo", Namespace: "Data", Kind: KindInterface, Attributes: []string{"ReferenceAutoGeneration"}, Line: 4},
				},
			},
		},
		{
			name: "BOM 付きファイル先頭の属性",
			src:  "\uFEFF[ReferenceAutoGeneration]\npublic class Foo : MonoBehaviour { }\n",
			want: want{
				types: []TypeDescriptor{
					{Name: "Foo", FullName: "Foo", Kind: KindClass, Attributes: []string{"ReferenceAutoGeneration"}, Line: 2},
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, _ := parse("Assets/Test.cs", tt.src)

			opts := []cmp.Option{
				cmpopts.IgnoreFields(TypeDescriptor{}, "Path", "Source"),
				cmpopts.EquateEmpty(),
			}
			if diff := cmp.Diff(tt.want.types, got, opts...); diff != "" {
				t.Errorf("diff(-want +got): %s", diff)
			}
		})
	}
}

func TestDeclaredNamespaces(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		want []string
	}{
		{
			name: "同じ行の波括弧",
			src:  "namespace Game.Things {\n    public class Foo { }\n}\n",
			want: []string{"Game.Things"},
		},
		{
			name: "入れ子と重複",
			src:  "namespace A\n{\n    namespace B { }\n}\nnamespace A { }\n",
			want: []string{"A", "A.B", "A"},
		},
		{
			name: "ファイルスコープ",
			src:  "namespace Game.Things;\npublic class Foo { }\n",
			want: []string{"Game.Things"},
		},
		{
			name: "namespace なし",
			src:  "public class Foo { }\n",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if diff := cmp.Diff(tt.want, DeclaredNamespaces(tt.src)); diff != "" {
				t.Errorf("diff(-want +got): %s", diff)
			}
		})
	}
}

func TestTypeDescriptor_HasAttribute(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		attrs []string
		want  bool
	}{
		{name: "短縮名", attrs: []string{"ReferenceAutoGeneration"}, want: true},
		{name: "Attribute 接尾辞付き", attrs: []string{"ReferenceAutoGenerationAttribute"}, want: true},
		{name: "名前空間修飾付き", attrs: []string{"Scripts.ReferenceAutoGeneration"}, want: true},
		{name: "前方一致だけでは一致しない", attrs: []string{"ReferenceAutoGenerationLegacy"}, want: false},
		{name: "属性なし", attrs: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := TypeDescriptor{Attributes: tt.attrs}.HasAttribute("ReferenceAutoGeneration")
			if got != tt.want {
				t.Errorf("HasAttribute() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassifier_IsGeneratedHolder(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		legacy bool
		t      TypeDescriptor
		want   bool
	}{
		{
			name: "接尾辞で終わる具象クラスはホルダー",
			t:    TypeDescriptor{Name: "FooRefSO", FullName: "Scriptables.References.FooRefSO", Kind: KindClass},
			want: true,
		},
		{
			name: "接尾辞のみの名前はホルダーではない",
			t:    TypeDescriptor{Name: "RefSO", FullName: "RefSO", Kind: KindClass},
			want: false,
		},
		{
			name: "ジェネリックな基底型はホルダーではない",
			t:    TypeDescriptor{Name: "BaseRefSO", FullName: "Scriptables.References.BaseRefSO", Kind: KindClass, Abstract: true, Generic: true},
			want: false,
		},
		{
			name: "途中に接尾辞を含む名前はホルダーではない",
			t:    TypeDescriptor{Name: "BarRefSOHelper", FullName: "Game.BarRefSOHelper", Kind: KindClass},
			want: false,
		},
		{
			name:   "レガシーモードでは途中に接尾辞を含む名前もホルダー",
			legacy: true,
			t:      TypeDescriptor{Name: "BarRefSOHelper", FullName: "Game.BarRefSOHelper", Kind: KindClass},
			want:   true,
		},
		{
			name:   "レガシーモードでは名前空間の一致もホルダー扱い",
			legacy: true,
			t:      TypeDescriptor{Name: "Plain", FullName: "RefSOTools.Plain", Kind: KindClass},
			want:   true,
		},
		{
			name: "構造体はホルダーではない",
			t:    TypeDescriptor{Name: "FooRefSO", FullName: "FooRefSO", Kind: KindStruct},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := Classifier{Marker: "ReferenceAutoGeneration", HolderSuffix: "RefSO", Legacy: tt.legacy}
			if got := c.IsGeneratedHolder(tt.t); got != tt.want {
				t.Errorf("IsGeneratedHolder() = %v, want %v", got, tt.want)
			}
		})
	}
}
