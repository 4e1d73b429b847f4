package config

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/decker502/canadian/pkg/anim"
	"github.com/decker502/canadian/pkg/embedded"
	"gopkg.in/yaml.v3"
)

// DefaultConfigPath 嵌入的默认编辑器配置
const DefaultConfigPath = "data/editor.yaml"

// 默认值（配置缺失或非法时使用）
const (
	DefaultPictureWidth    = 800
	DefaultPictureHeight   = 600
	DefaultFrameRate       = anim.DefaultFrameRate
	DefaultNumFrames       = anim.DefaultNumFrames
	DefaultRotationScaling = 0.02
	DefaultAppName         = "canadian_experience"
	DefaultPictureDir      = "pictures"
)

// EditorConfig 编辑器配置
//
// 文件格式（data/editor.yaml）：
//
//	picture:  {width: 800, height: 600}
//	timeline: {frameRate: 30, numFrames: 300}
//	editing:  {keyframing: false, rotationScaling: 0.02, defaultEase: linear, mode: move}
//	storage:  {appName: canadian_experience, dir: pictures, format: yaml}
type EditorConfig struct {
	Picture  PictureConfig  `yaml:"picture"`
	Timeline TimelineConfig `yaml:"timeline"`
	Editing  EditingConfig  `yaml:"editing"`
	Storage  StorageConfig  `yaml:"storage"`
}

// PictureConfig 画面尺寸
type PictureConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// TimelineConfig 新建画面的时间线
type TimelineConfig struct {
	FrameRate float64 `yaml:"frameRate"` // 帧率（帧/秒）
	NumFrames int     `yaml:"numFrames"` // 总帧数
}

// EditingConfig 编辑行为
type EditingConfig struct {
	Keyframing      bool    `yaml:"keyframing"`      // 启动时是否处于关键帧模式
	RotationScaling float64 `yaml:"rotationScaling"` // 旋转拖动系数（弧度/像素）
	DefaultEase     string  `yaml:"defaultEase"`     // 新关键帧的缓动
	Mode            string  `yaml:"mode"`            // 启动时的编辑模式：move | rotate
}

// StorageConfig 画面存档
type StorageConfig struct {
	AppName string `yaml:"appName"` // gdata 应用名
	Dir     string `yaml:"dir"`     // 本地目录存储（gdata 不可用时使用）
	Format  string `yaml:"format"`  // yaml | gob
}

// DefaultEditorConfig 返回默认配置
func DefaultEditorConfig() *EditorConfig {
	return &EditorConfig{
		Picture:  PictureConfig{Width: DefaultPictureWidth, Height: DefaultPictureHeight},
		Timeline: TimelineConfig{FrameRate: DefaultFrameRate, NumFrames: DefaultNumFrames},
		Editing: EditingConfig{
			RotationScaling: DefaultRotationScaling,
			DefaultEase:     string(anim.EaseLinear),
			Mode:            "move",
		},
		Storage: StorageConfig{
			AppName: DefaultAppName,
			Dir:     DefaultPictureDir,
			Format:  "yaml",
		},
	}
}

// LoadEditorConfig 加载编辑器配置
//
// 以 "data/" 开头的路径优先从嵌入资源读取，其余路径从文件系统读取。
//
// 参数：
//   - path: 配置文件路径，为空时使用 DefaultConfigPath
//
// 返回：
//   - *EditorConfig: 已补全默认值的配置
//   - error: 读取或解析失败
func LoadEditorConfig(path string) (*EditorConfig, error) {
	if path == "" {
		path = DefaultConfigPath
	}

	var data []byte
	var err error
	if strings.HasPrefix(path, "data/") && embedded.Exists(path) {
		data, err = embedded.ReadFile(path)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("读取编辑器配置失败 %s: %w", path, err)
	}

	cfg, err := ParseEditorConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	log.Printf("[Config] 加载编辑器配置: %s (%dx%d, %.0f fps, %d frames)",
		path, cfg.Picture.Width, cfg.Picture.Height, cfg.Timeline.FrameRate, cfg.Timeline.NumFrames)
	return cfg, nil
}

// ParseEditorConfig 解析 YAML 配置并补全默认值
func ParseEditorConfig(data []byte) (*EditorConfig, error) {
	cfg := DefaultEditorConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("解析编辑器配置失败: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// normalize 非正数回退为默认值，校验枚举字段
func (c *EditorConfig) normalize() error {
	if c.Picture.Width <= 0 {
		c.Picture.Width = DefaultPictureWidth
	}
	if c.Picture.Height <= 0 {
		c.Picture.Height = DefaultPictureHeight
	}
	if !(c.Timeline.FrameRate > 0) {
		c.Timeline.FrameRate = DefaultFrameRate
	}
	if c.Timeline.NumFrames <= 0 {
		c.Timeline.NumFrames = DefaultNumFrames
	}
	if !(c.Editing.RotationScaling > 0) {
		c.Editing.RotationScaling = DefaultRotationScaling
	}
	if c.Storage.AppName == "" {
		c.Storage.AppName = DefaultAppName
	}
	if c.Storage.Dir == "" {
		c.Storage.Dir = DefaultPictureDir
	}

	e, err := anim.ParseEase(c.Editing.DefaultEase)
	if err != nil {
		return fmt.Errorf("editing.defaultEase: %w", err)
	}
	c.Editing.DefaultEase = string(e)

	switch c.Editing.Mode {
	case "":
		c.Editing.Mode = "move"
	case "move", "rotate":
	default:
		return fmt.Errorf("editing.mode: unknown mode %q", c.Editing.Mode)
	}

	switch strings.ToLower(c.Storage.Format) {
	case "", "yaml", "yml":
		c.Storage.Format = "yaml"
	case "gob":
		c.Storage.Format = "gob"
	default:
		return fmt.Errorf("storage.format: unknown format %q", c.Storage.Format)
	}
	return nil
}

// Duration 时间线总时长（秒）
func (c *EditorConfig) Duration() float64 {
	return float64(c.Timeline.NumFrames) / c.Timeline.FrameRate
}
