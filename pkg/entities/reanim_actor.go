package entities

import (
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/decker502/canadian/internal/reanim"
	"github.com/decker502/canadian/pkg/embedded"
	"github.com/decker502/canadian/pkg/picture"
	"github.com/lucasb-eyer/go-colorful"
)

// 占位部件尺寸（reanim 只描述变换，部件用矩形代替贴图）
const (
	reanimPartWidth  = 12.0
	reanimPartHeight = 30.0
)

// ReanimRootName 导入角色的根部件名称
const ReanimRootName = "origin"

// NewReanimActor 从 reanim 轨道创建角色
//
// 每条部件轨道变成挂在根部件下的一个矩形部件：
//   - x、y 变成位置关键帧
//   - kx（顺时针角度）变成旋转关键帧（逆时针弧度）
//   - 第 i 帧的时间为 i / FPS
//
// 只有原始帧中写出的字段才生成关键帧，省略的字段沿用上一帧的值。
// 部件的静止姿态取第一帧。
//
// 参数：
//   - name: 角色名称
//   - r: 解析后的 reanim 数据
//   - pos: 角色在画面中的位置
//
// 返回：
//   - *picture.Actor: 新角色，尚未加入画面
//   - error: 没有部件轨道或部件重名时返回错误
func NewReanimActor(name string, r *reanim.ReanimXML, pos picture.Point) (*picture.Actor, error) {
	parts := r.PartTracks()
	if len(parts) == 0 {
		return nil, fmt.Errorf("reanim actor %q: no part tracks", name)
	}
	fps := float64(r.FPS)
	if fps <= 0 {
		fps = reanim.DefaultFPS
	}

	a := picture.NewActor(name)
	root := picture.NewPolyDrawable(ReanimRootName, colorful.Color{})
	if err := a.SetRoot(root); err != nil {
		return nil, err
	}

	for i, track := range parts {
		frames := track.Resolve()
		if len(frames) == 0 {
			continue
		}

		hue := 360 * float64(i) / float64(len(parts))
		first := frames[0]
		w := reanimPartWidth * first.ScaleX
		h := reanimPartHeight * first.ScaleY
		part := picture.NewPolyDrawable(track.Name, colorful.Hsv(hue, 0.55, 0.85))
		part.SetPoints([]picture.Point{
			picture.Pt(-w/2, 0), picture.Pt(w/2, 0), picture.Pt(w/2, h), picture.Pt(-w/2, h),
		})
		part.SetMovable(true)
		part.SetPosition(picture.Pt(first.X, first.Y))
		part.SetRotation(skewToRotation(first.SkewX))
		if err := a.Attach(root, part); err != nil {
			return nil, fmt.Errorf("reanim actor %q: %w", name, err)
		}

		positions := part.PositionChannel()
		rotations := part.RotationChannel()
		for j, raw := range track.Frames {
			t := float64(j) / fps
			if raw.X != nil || raw.Y != nil {
				positions.SetKeyframe(t, picture.Pt(frames[j].X, frames[j].Y))
			}
			if raw.SkewX != nil {
				rotations.SetKeyframe(t, skewToRotation(frames[j].SkewX))
			}
		}
	}

	a.SetPosition(pos)
	return a, nil
}

// skewToRotation 顺时针角度转换为逆时针弧度
func skewToRotation(degrees float64) float64 {
	return -degrees * math.Pi / 180
}

// ReanimDuration 轨道播放一遍的时长（秒）
func ReanimDuration(r *reanim.ReanimXML) float64 {
	n := 0
	for _, t := range r.Tracks {
		n = max(n, len(t.Frames))
	}
	fps := r.FPS
	if fps <= 0 {
		fps = reanim.DefaultFPS
	}
	return float64(n) / float64(fps)
}

// LoadReanimActor 读取 reanim 文件并创建角色
//
// "data/" 开头的路径优先从嵌入资源读取，其余从本地文件系统读取。
// 角色名称为文件名去掉扩展名。
func LoadReanimActor(path string, pos picture.Point) (*picture.Actor, error) {
	var data []byte
	var err error
	if strings.HasPrefix(filepath.ToSlash(path), "data/") && embedded.Exists(path) {
		data, err = embedded.ReadFile(path)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read reanim file '%s': %w", path, err)
	}

	r, err := reanim.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	a, err := NewReanimActor(name, r, pos)
	if err != nil {
		return nil, err
	}
	log.Printf("[Entities] Imported reanim %s: %d parts, %.2fs", path, a.DrawableCount()-1, ReanimDuration(r))
	return a, nil
}
