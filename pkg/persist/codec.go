// Package persist 负责画面文档的编码和存储
//
// 支持两种编码：
//   - YAML：可读、便于手工修改和版本管理（gopkg.in/yaml.v3）
//   - gob：紧凑的二进制格式（encoding/gob）
//
// 存储位置由 Storage 决定：本地目录（FileStorage）或 gdata 跨平台存储（GdataStorage）。
package persist

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/decker502/canadian/pkg/picture"
	"gopkg.in/yaml.v3"
)

// ErrUnsupportedVersion 文档版本不受支持
var ErrUnsupportedVersion = errors.New("unsupported picture document version")

// Format 文档编码格式
type Format int

const (
	// FormatYAML YAML 文本
	FormatYAML Format = iota
	// FormatGob gob 二进制
	FormatGob
)

// String 格式名称
func (f Format) String() string {
	switch f {
	case FormatYAML:
		return "yaml"
	case FormatGob:
		return "gob"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// Ext 格式对应的文件扩展名
func (f Format) Ext() string {
	if f == FormatGob {
		return ".gob"
	}
	return ".yaml"
}

// ParseFormat 解析格式名称
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "", "yaml", "yml":
		return FormatYAML, nil
	case "gob":
		return FormatGob, nil
	default:
		return FormatYAML, fmt.Errorf("unknown document format %q", name)
	}
}

// FormatFor 按文件扩展名推断格式，未知扩展名按 YAML 处理
func FormatFor(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".gob") {
		return FormatGob
	}
	return FormatYAML
}

// Encode 编码文档
func Encode(doc *picture.Document, f Format) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("document is nil")
	}
	switch f {
	case FormatYAML:
		data, err := yaml.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal picture document: %w", err)
		}
		return data, nil
	case FormatGob:
		var buf bytes.Buffer
		if err := gob.NewEncoder(&buf).Encode(doc); err != nil {
			return nil, fmt.Errorf("failed to encode picture document: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unknown document format %v", f)
	}
}

// Decode 解码文档并检查版本
//
// 返回：
//   - *picture.Document: 解码后的文档（结构合法性由 Picture.Load 校验）
//   - error: 解码失败或版本不符（ErrUnsupportedVersion）
func Decode(data []byte, f Format) (*picture.Document, error) {
	var doc picture.Document
	switch f {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse picture document: %w", err)
		}
	case FormatGob:
		if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode picture document: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown document format %v", f)
	}

	if doc.Version != picture.DocumentVersion {
		return nil, fmt.Errorf("%w: %d (expected %d)", ErrUnsupportedVersion, doc.Version, picture.DocumentVersion)
	}
	return &doc, nil
}
