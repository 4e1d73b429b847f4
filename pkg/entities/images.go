package entities

import (
	"fmt"
	"image"
	_ "image/png" // 支持 PNG 格式图片
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/decker502/canadian/pkg/embedded"
	"github.com/decker502/canadian/pkg/picture"
)

// ImageLoader 按路径加载姿态图
//
// 路径以 "assets/" 开头且嵌入资源中存在时从嵌入资源读取，
// 否则相对 Dir 从本地文件系统读取。加载过的图片会被缓存，
// 同一路径在多个部件之间共享同一个 image.Image。
type ImageLoader struct {
	Dir   string
	cache map[string]image.Image
}

// NewImageLoader 创建图片加载器
func NewImageLoader(dir string) *ImageLoader {
	return &ImageLoader{Dir: dir, cache: make(map[string]image.Image)}
}

// LoadImage 实现 picture.ImageLoader
func (l *ImageLoader) LoadImage(path string) (image.Image, error) {
	if img, ok := l.cache[path]; ok {
		return img, nil
	}

	r, err := l.open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}
	if l.cache == nil {
		l.cache = make(map[string]image.Image)
	}
	l.cache[path] = img
	return img, nil
}

func (l *ImageLoader) open(path string) (io.ReadCloser, error) {
	if strings.HasPrefix(filepath.ToSlash(path), "assets/") && embedded.Exists(path) {
		return embedded.Open(path)
	}
	full := path
	if l.Dir != "" && !filepath.IsAbs(path) {
		full = filepath.Join(l.Dir, path)
	}
	f, err := os.Open(full)
	if err != nil {
		return nil, fmt.Errorf("failed to open image %s: %w", path, err)
	}
	return f, nil
}

// NewImageActor 创建单个图片部件的角色
//
// 每个路径是一个姿态，index 通道在姿态之间切换；
// 图片中心是各姿态第一张图的几何中心。
//
// 参数：
//   - name: 角色名称
//   - loader: 图片加载器
//   - pos: 角色在画面中的位置
//   - paths: 姿态图路径，至少一个
func NewImageActor(name string, loader picture.ImageLoader, pos picture.Point, paths ...string) (*picture.Actor, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("image actor %q needs at least one image", name)
	}

	frames := make([]picture.ImageFrame, 0, len(paths))
	for _, path := range paths {
		img, err := loader.LoadImage(path)
		if err != nil {
			return nil, fmt.Errorf("image actor %q: %w", name, err)
		}
		frames = append(frames, picture.ImageFrame{Path: path, Image: img})
	}

	b := frames[0].Image.Bounds()
	center := picture.Pt(float64(b.Min.X+b.Dx()/2), float64(b.Min.Y+b.Dy()/2))

	a := picture.NewActor(name)
	if err := a.SetRoot(picture.NewImageDrawable(name, center, frames...)); err != nil {
		return nil, err
	}
	a.SetPosition(pos)
	return a, nil
}
