package picture

import (
	"image"
	"image/color"
	"sync"

	"github.com/decker502/canadian/pkg/anim"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/lucasb-eyer/go-colorful"
)

var (
	whiteOnce     sync.Once
	whiteSubImage *ebiten.Image
)

// solidSource 返回 1x1 白色源图，用于 DrawTriangles 填充纯色
func solidSource() *ebiten.Image {
	whiteOnce.Do(func() {
		img := ebiten.NewImage(3, 3)
		img.Fill(color.White)
		whiteSubImage = img.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
	})
	return whiteSubImage
}

// LerpColor 颜色通道插值（Lab 空间混合）
func LerpColor(a, b colorful.Color, f float64) colorful.Color {
	return a.BlendLab(b, f)
}

// PolyDrawable 纯色多边形部件
//
// 顶点是相对部件原点的局部坐标，绘制时按扇形三角化，
// 多边形应当相对第一个顶点是星形的。
type PolyDrawable struct {
	Node

	points       []Point
	color        colorful.Color
	colorChannel *anim.Channel[colorful.Color]

	vertices []ebiten.Vertex
	indices  []uint16
}

// NewPolyDrawable 创建多边形部件
func NewPolyDrawable(name string, c colorful.Color) *PolyDrawable {
	d := &PolyDrawable{color: c}
	d.init(name, KindPoly)
	d.colorChannel = anim.NewChannel("color", &d.color, LerpColor)
	d.addTrack(d.colorChannel)
	return d
}

// AddPoint 追加顶点
func (d *PolyDrawable) AddPoint(p Point) {
	d.points = append(d.points, p)
}

// SetPoints 替换全部顶点
func (d *PolyDrawable) SetPoints(points []Point) {
	d.points = append(d.points[:0], points...)
}

// Points 顶点副本
func (d *PolyDrawable) Points() []Point {
	out := make([]Point, len(d.points))
	copy(out, d.points)
	return out
}

// Color 当前颜色
func (d *PolyDrawable) Color() colorful.Color { return d.color }

// SetColor 用户编辑颜色，关键帧模式下提交颜色关键帧
func (d *PolyDrawable) SetColor(c colorful.Color) {
	d.color = c
	d.autoKey(d.colorChannel)
}

// ColorChannel 颜色通道
func (d *PolyDrawable) ColorChannel() *anim.Channel[colorful.Color] { return d.colorChannel }

// worldPoints 顶点的世界坐标
func (d *PolyDrawable) worldPoints() []Point {
	out := make([]Point, len(d.points))
	for i, p := range d.points {
		out[i] = d.LocalToWorld(p)
	}
	return out
}

// Draw 实现 Drawable
func (d *PolyDrawable) Draw(screen *ebiten.Image) {
	if len(d.points) < 3 {
		return
	}

	r, g, b := d.color.Clamped().RGB255()
	cr, cg, cb := float32(r)/255, float32(g)/255, float32(b)/255

	d.vertices = d.vertices[:0]
	for _, p := range d.worldPoints() {
		d.vertices = append(d.vertices, ebiten.Vertex{
			DstX:   float32(p.X),
			DstY:   float32(p.Y),
			SrcX:   1,
			SrcY:   1,
			ColorR: cr,
			ColorG: cg,
			ColorB: cb,
			ColorA: 1,
		})
	}

	d.indices = d.indices[:0]
	for i := 1; i < len(d.points)-1; i++ {
		d.indices = append(d.indices, 0, uint16(i), uint16(i+1))
	}

	screen.DrawTriangles(d.vertices, d.indices, solidSource(), nil)
}

// HitTest 实现 Drawable
func (d *PolyDrawable) HitTest(p Point) bool {
	if len(d.points) < 3 {
		return false
	}
	return pointInPolygon(d.WorldToLocal(p), d.points)
}
