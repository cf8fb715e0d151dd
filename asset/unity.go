package asset

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/google/uuid"
)

const (
	// monoBehaviourFileID is the local identifier of the main object of a
	// ScriptableObject asset.
	monoBehaviourFileID = 11400000
	// scriptFileID is the local identifier of the MonoScript inside a script.
	scriptFileID = 11500000
)

const assetHeader = "%YAML 1.1\n%TAG !u! tag:unity3d.com,2011:\n--- !u!114 &11400000\n"

// ObjectRef is a Unity object reference.
type ObjectRef struct {
	FileID int64  `yaml:"fileID"`
	GUID   string `yaml:"guid,omitempty"`
	Type   int    `yaml:"type,omitempty"`
}

// MonoBehaviour is the serialized form of a ScriptableObject without fields.
type MonoBehaviour struct {
	ObjectHideFlags           int       `yaml:"m_ObjectHideFlags"`
	CorrespondingSourceObject ObjectRef `yaml:"m_CorrespondingSourceObject,flow"`
	PrefabInstance            ObjectRef `yaml:"m_PrefabInstance,flow"`
	PrefabAsset               ObjectRef `yaml:"m_PrefabAsset,flow"`
	GameObject                ObjectRef `yaml:"m_GameObject,flow"`
	Enabled                   int       `yaml:"m_Enabled"`
	EditorHideFlags           int       `yaml:"m_EditorHideFlags"`
	Script                    ObjectRef `yaml:"m_Script,flow"`
	Name                      string    `yaml:"m_Name"`
	EditorClassIdentifier     string    `yaml:"m_EditorClassIdentifier"`
}

type assetDocument struct {
	MonoBehaviour MonoBehaviour `yaml:"MonoBehaviour"`
}

// Instance is a default-constructed holder waiting to be persisted.
type Instance struct {
	Type          string
	MonoBehaviour MonoBehaviour
}

// NewInstance returns the default constructor for the holder type fullName.
func NewInstance(fullName string) Constructor {
	return func(name string) *Instance {
		return &Instance{
			Type: fullName,
			MonoBehaviour: MonoBehaviour{
				Enabled: 1,
				Name:    name,
			},
		}
	}
}

// Marshal encodes the instance as a Unity asset whose script is scriptGUID.
// An empty scriptGUID leaves the script reference unset.
func (i *Instance) Marshal(scriptGUID string) ([]byte, error) {
	doc := assetDocument{MonoBehaviour: i.MonoBehaviour}
	if scriptGUID != "" {
		doc.MonoBehaviour.Script = ObjectRef{FileID: scriptFileID, GUID: scriptGUID, Type: 3}
	}

	body, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", i.Type, err)
	}

	return append([]byte(assetHeader), body...), nil
}

// UnmarshalAsset decodes an asset written by Marshal.
func UnmarshalAsset(data []byte) (*MonoBehaviour, error) {
	_, body, ok := bytes.Cut(data, []byte("--- !u!114 &11400000\n"))
	if !ok {
		return nil, fmt.Errorf("not a ScriptableObject asset")
	}

	var doc assetDocument
	if err := yaml.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decode asset: %w", err)
	}
	return &doc.MonoBehaviour, nil
}

// Meta is the content of a Unity .meta file.
type Meta struct {
	FileFormatVersion    int                   `yaml:"fileFormatVersion"`
	GUID                 string                `yaml:"guid"`
	MonoImporter         *MonoImporter         `yaml:"MonoImporter,omitempty"`
	NativeFormatImporter *NativeFormatImporter `yaml:"NativeFormatImporter,omitempty"`
}

type InstanceRef struct {
	InstanceID int `yaml:"instanceID"`
}

// MonoImporter imports C# scripts.
type MonoImporter struct {
	ExternalObjects    map[string]any `yaml:"externalObjects"`
	SerializedVersion  int            `yaml:"serializedVersion"`
	DefaultReferences  []any          `yaml:"defaultReferences"`
	ExecutionOrder     int            `yaml:"executionOrder"`
	Icon               InstanceRef    `yaml:"icon,flow"`
	UserData           string         `yaml:"userData"`
	AssetBundleName    string         `yaml:"assetBundleName"`
	AssetBundleVariant string         `yaml:"assetBundleVariant"`
}

// NativeFormatImporter imports native Unity assets.
type NativeFormatImporter struct {
	ExternalObjects    map[string]any `yaml:"externalObjects"`
	MainObjectFileID   int64          `yaml:"mainObjectFileID"`
	UserData           string         `yaml:"userData"`
	AssetBundleName    string         `yaml:"assetBundleName"`
	AssetBundleVariant string         `yaml:"assetBundleVariant"`
}

// NewGUID returns a fresh asset GUID in Unity's format, 32 lowercase hex digits.
func NewGUID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func scriptMeta(guid string) *Meta {
	return &Meta{
		FileFormatVersion: 2,
		GUID:              guid,
		MonoImporter: &MonoImporter{
			ExternalObjects:   map[string]any{},
			SerializedVersion: 2,
			DefaultReferences: []any{},
		},
	}
}

func assetMeta(guid string) *Meta {
	return &Meta{
		FileFormatVersion: 2,
		GUID:              guid,
		NativeFormatImporter: &NativeFormatImporter{
			ExternalObjects:  map[string]any{},
			MainObjectFileID: monoBehaviourFileID,
		},
	}
}
