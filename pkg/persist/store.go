package persist

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/decker502/canadian/pkg/picture"
)

// PictureStore 画面存档管理器
//
// 职责：
//   - 把画面快照编码后写入存储
//   - 从存储读取文档并整体替换画面内容（失败时画面不变）
//
// 文档名称不带扩展名，扩展名由编码格式决定（如 "scene" → "scene.yaml"）。
type PictureStore struct {
	storage Storage // 可为 nil（降级模式，保存/加载返回 ErrNoStorage）
	format  Format
}

// NewPictureStore 创建存档管理器
//
// 参数：
//   - storage: 存储实现，可为 nil
//   - format: 保存时使用的编码格式
func NewPictureStore(storage Storage, format Format) *PictureStore {
	return &PictureStore{storage: storage, format: format}
}

// Format 保存使用的编码格式
func (s *PictureStore) Format() Format { return s.format }

// key 文档名称对应的存储键
func (s *PictureStore) key(name string) string {
	if filepath.Ext(name) != "" {
		return name
	}
	return name + s.format.Ext()
}

// Save 保存画面
//
// 返回：
//   - error: 未配置存储、名称非法或编码/写入失败
func (s *PictureStore) Save(name string, p *picture.Picture) error {
	if s.storage == nil {
		return ErrNoStorage
	}
	key := s.key(name)
	data, err := Encode(p.Save(), FormatFor(key))
	if err != nil {
		return err
	}
	if err := s.storage.Write(key, data); err != nil {
		return err
	}

	log.Printf("[PictureStore] Saved picture %s to %s (%d bytes, %d actors)", p.ID(), key, len(data), p.ActorCount())
	return nil
}

// Load 加载画面
//
// 读取和解码失败、文档非法时画面保持原状。
func (s *PictureStore) Load(name string, p *picture.Picture, opts picture.LoadOptions) error {
	if s.storage == nil {
		return ErrNoStorage
	}
	key := s.key(name)
	data, err := s.storage.Read(key)
	if err != nil {
		return err
	}
	doc, err := Decode(data, FormatFor(key))
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	if err := p.Load(doc, opts); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}

	log.Printf("[PictureStore] Loaded picture %s from %s", p.ID(), key)
	return nil
}

// Exists 文档是否存在
func (s *PictureStore) Exists(name string) bool {
	return s.storage != nil && s.storage.Exists(s.key(name))
}

// List 已保存的文档名称（去掉扩展名）
func (s *PictureStore) List() ([]string, error) {
	if s.storage == nil {
		return nil, ErrNoStorage
	}
	keys, err := s.storage.List()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(keys))
	for _, k := range keys {
		switch filepath.Ext(k) {
		case ".yaml", ".yml", ".gob":
			names = append(names, strings.TrimSuffix(k, filepath.Ext(k)))
		}
	}
	return names, nil
}

// SaveFile 把画面保存到任意路径，格式由扩展名决定
func SaveFile(path string, p *picture.Picture) error {
	data, err := Encode(p.Save(), FormatFor(path))
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write picture file: %w", err)
	}
	log.Printf("[PictureStore] Saved picture %s to %s", p.ID(), path)
	return nil
}

// LoadFile 从任意路径加载画面，格式由扩展名决定
func LoadFile(path string, p *picture.Picture, opts picture.LoadOptions) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read picture file: %w", err)
	}
	doc, err := Decode(data, FormatFor(path))
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := p.Load(doc, opts); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	log.Printf("[PictureStore] Loaded picture %s from %s", p.ID(), path)
	return nil
}
