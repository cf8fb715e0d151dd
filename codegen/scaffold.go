package codegen

import (
	"fmt"
	"path"
	"strings"

	"github.com/Yamashou/refgen/config"
)

// ScaffoldFile はプロジェクトに一度だけ配置されるランタイム側のソース。
type ScaffoldFile struct {
	Path    string
	Content string
}

// Scaffold は生成されたホルダーとバインダーが依存する基底型とマーカー属性のソースを返す。
// パスは base_root 配下になる。
func Scaffold(cfg *config.Config) []ScaffoldFile {
	file := func(name, body string) ScaffoldFile {
		return ScaffoldFile{
			Path:    path.Join(cfg.BaseRoot, name+"."+cfg.ScriptExt),
			Content: fmt.Sprintf("%s\n\nnamespace %s\n{\n%s\n}\n", cfg.BaseImport, cfg.Namespace, (&RawDecl{Code: body}).String(1)),
		}
	}

	marker := strings.TrimSuffix(cfg.Marker, "Attribute") + "Attribute"

	return []ScaffoldFile{
		file("BaseRefSO", baseHolderSource),
		file("BaseRefSetter", baseBinderSource),
		file(marker, fmt.Sprintf(markerSource, marker)),
	}
}

const baseHolderSource = `public abstract class BaseRefSO<TComponent> : ScriptableObject
{
    public TComponent Instance { get; private set; }

    public void SetComponent(TComponent c)
    {
        Instance = c;
    }
}`

const baseBinderSource = `public abstract class BaseRefSetter<TComponent, TScriptable> : MonoBehaviour where TScriptable : BaseRefSO<TComponent>
{
    [SerializeField] private TScriptable _scriptable;

    private void Awake()
    {
        _scriptable.SetComponent(GetComponent<TComponent>());
    }

    private void OnValidate()
    {
#if UNITY_EDITOR
        if (_scriptable == null)
        {
            Debug.LogError(GetType().Name + $" has no {typeof(TScriptable).Name} attached on " + name);
        }
#endif
    }
}`

const markerSource = `[System.AttributeUsage(System.AttributeTargets.Class, Inherited = false)]
public sealed class %s : System.Attribute
{
}`
