package picture

import (
	"image"
	"math"

	"github.com/decker502/canadian/pkg/anim"
	"github.com/hajimehoshi/ebiten/v2"
)

// ImageFrame 图片部件的一个姿态
type ImageFrame struct {
	Path  string      // 资源路径，持久化时保存
	Image image.Image // 解码后的图片
}

// ImageDrawable 图片部件
//
// 持有多张姿态图，index 通道按阶跃方式选择当前显示的姿态。
// center 是图片中与部件原点重合的像素坐标。
type ImageDrawable struct {
	Node

	frames       []ImageFrame
	center       Point
	index        int
	indexChannel *anim.Channel[int]

	textures []*ebiten.Image
}

// NewImageDrawable 创建图片部件
func NewImageDrawable(name string, center Point, frames ...ImageFrame) *ImageDrawable {
	d := &ImageDrawable{
		frames: frames,
		center: center,
	}
	d.init(name, KindImage)
	d.indexChannel = anim.NewChannel[int]("index", &d.index, nil)
	d.addTrack(d.indexChannel)
	return d
}

// Frames 姿态图副本
func (d *ImageDrawable) Frames() []ImageFrame {
	out := make([]ImageFrame, len(d.frames))
	copy(out, d.frames)
	return out
}

// Center 图片中心像素
func (d *ImageDrawable) Center() Point { return d.center }

// Index 当前姿态索引
func (d *ImageDrawable) Index() int { return d.index }

// SetIndex 用户切换姿态，越界值被钳制；关键帧模式下提交索引关键帧
func (d *ImageDrawable) SetIndex(i int) {
	d.index = d.clampIndex(i)
	d.autoKey(d.indexChannel)
}

// IndexChannel 姿态索引通道
func (d *ImageDrawable) IndexChannel() *anim.Channel[int] { return d.indexChannel }

func (d *ImageDrawable) clampIndex(i int) int {
	if i >= len(d.frames) {
		i = len(d.frames) - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}

// current 当前姿态图，无图时返回 nil
func (d *ImageDrawable) current() image.Image {
	if len(d.frames) == 0 {
		return nil
	}
	return d.frames[d.clampIndex(d.index)].Image
}

// texture 惰性创建 ebiten 纹理
func (d *ImageDrawable) texture() *ebiten.Image {
	if len(d.frames) == 0 {
		return nil
	}
	if d.textures == nil {
		d.textures = make([]*ebiten.Image, len(d.frames))
	}
	i := d.clampIndex(d.index)
	if d.textures[i] == nil && d.frames[i].Image != nil {
		d.textures[i] = ebiten.NewImageFromImage(d.frames[i].Image)
	}
	return d.textures[i]
}

// Draw 实现 Drawable
func (d *ImageDrawable) Draw(screen *ebiten.Image) {
	tex := d.texture()
	if tex == nil {
		return
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(-d.center.X, -d.center.Y)
	op.GeoM.Rotate(-d.placedRotation)
	op.GeoM.Translate(d.placedPosition.X, d.placedPosition.Y)
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(tex, op)
}

// HitTest 实现 Drawable
//
// 点落在图片范围内且该像素不透明时命中。
func (d *ImageDrawable) HitTest(p Point) bool {
	img := d.current()
	if img == nil {
		return false
	}
	local := d.WorldToLocal(p).Add(d.center)
	b := img.Bounds()
	x := b.Min.X + int(math.Floor(local.X))
	y := b.Min.Y + int(math.Floor(local.Y))
	if !(image.Point{X: x, Y: y}).In(b) {
		return false
	}
	_, _, _, a := img.At(x, y).RGBA()
	return a > 0
}
