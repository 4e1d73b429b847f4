package persist

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"
)

var (
	// ErrNoStorage 未配置存储（降级模式）
	ErrNoStorage = errors.New("no picture storage available")
	// ErrNotFound 文档不存在
	ErrNotFound = errors.New("picture document not found")
	// ErrInvalidName 文档名称非法
	ErrInvalidName = errors.New("invalid picture document name")
)

// Storage 按名称读写文档字节
type Storage interface {
	Read(name string) ([]byte, error)
	Write(name string, data []byte) error
	Exists(name string) bool
	// List 已保存的文档名称（升序）
	List() ([]string, error)
}

// validateName 名称不能为空，也不能包含路径分隔符
func validateName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// FileStorage 本地目录存储，每个文档一个文件
type FileStorage struct {
	dir string
}

// NewFileStorage 创建目录存储，目录不存在时自动创建
func NewFileStorage(dir string) (*FileStorage, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create picture directory: %w", err)
	}
	return &FileStorage{dir: dir}, nil
}

// Dir 存储目录
func (s *FileStorage) Dir() string { return s.dir }

// Read 实现 Storage
func (s *FileStorage) Read(name string) ([]byte, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("failed to read picture file: %w", err)
	}
	return data, nil
}

// Write 实现 Storage
func (s *FileStorage) Write(name string, data []byte) error {
	if err := validateName(name); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0644); err != nil {
		return fmt.Errorf("failed to write picture file: %w", err)
	}
	return nil
}

// Exists 实现 Storage
func (s *FileStorage) Exists(name string) bool {
	if validateName(name) != nil {
		return false
	}
	_, err := os.Stat(filepath.Join(s.dir, name))
	return err == nil
}

// List 实现 Storage
func (s *FileStorage) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list picture directory: %w", err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// gdata 对象与索引属性
const (
	picturesObject = "pictures"
	indexProperty  = "index.yaml"
)

// GdataStorage 基于 gdata 的跨平台存储（桌面为用户数据目录，移动端/Web 为平台存储）
//
// gdata 不提供枚举，文档名称列表保存在同一对象的索引属性中。
type GdataStorage struct {
	manager *gdata.Manager
}

// NewGdataStorage 创建 gdata 存储
//
// 返回：
//   - error: manager 为 nil 时返回 ErrNoStorage
func NewGdataStorage(manager *gdata.Manager) (*GdataStorage, error) {
	if manager == nil {
		return nil, ErrNoStorage
	}
	return &GdataStorage{manager: manager}, nil
}

// Read 实现 Storage
func (s *GdataStorage) Read(name string) ([]byte, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	if !s.manager.ObjectPropExists(picturesObject, name) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	data, err := s.manager.LoadObjectProp(picturesObject, name)
	if err != nil {
		return nil, fmt.Errorf("failed to load picture from gdata: %w", err)
	}
	return data, nil
}

// Write 实现 Storage
func (s *GdataStorage) Write(name string, data []byte) error {
	if err := validateName(name); err != nil {
		return err
	}
	if name == indexProperty {
		return fmt.Errorf("%w: %q is reserved", ErrInvalidName, name)
	}
	if err := s.manager.SaveObjectProp(picturesObject, name, data); err != nil {
		return fmt.Errorf("failed to save picture to gdata: %w", err)
	}
	return s.addToIndex(name)
}

// Exists 实现 Storage
func (s *GdataStorage) Exists(name string) bool {
	if validateName(name) != nil || name == indexProperty {
		return false
	}
	return s.manager.ObjectPropExists(picturesObject, name)
}

// List 实现 Storage
func (s *GdataStorage) List() ([]string, error) {
	return s.readIndex()
}

func (s *GdataStorage) readIndex() ([]string, error) {
	if !s.manager.ObjectPropExists(picturesObject, indexProperty) {
		return nil, nil
	}
	data, err := s.manager.LoadObjectProp(picturesObject, indexProperty)
	if err != nil {
		return nil, fmt.Errorf("failed to load picture index: %w", err)
	}
	var names []string
	if err := yaml.Unmarshal(data, &names); err != nil {
		return nil, fmt.Errorf("failed to parse picture index: %w", err)
	}
	return names, nil
}

func (s *GdataStorage) addToIndex(name string) error {
	names, err := s.readIndex()
	if err != nil {
		return err
	}
	i := sort.SearchStrings(names, name)
	if i < len(names) && names[i] == name {
		return nil
	}
	names = append(names, "")
	copy(names[i+1:], names[i:])
	names[i] = name

	data, err := yaml.Marshal(names)
	if err != nil {
		return fmt.Errorf("failed to marshal picture index: %w", err)
	}
	if err := s.manager.SaveObjectProp(picturesObject, indexProperty, data); err != nil {
		return fmt.Errorf("failed to save picture index: %w", err)
	}
	return nil
}
