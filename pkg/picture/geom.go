package picture

import "math"

// Point 二维点（逻辑坐标，像素）
type Point struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// Pt 构造 Point
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Add 向量加
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub 向量减
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Scale 数乘
func (p Point) Scale(s float64) Point {
	return Point{X: p.X * s, Y: p.Y * s}
}

// Rotate 按 angle（弧度）旋转
//
// 屏幕坐标 y 轴向下，正角度在屏幕上表现为逆时针。
func (p Point) Rotate(angle float64) Point {
	cos, sin := math.Cos(angle), math.Sin(angle)
	return Point{
		X: cos*p.X + sin*p.Y,
		Y: -sin*p.X + cos*p.Y,
	}
}

// LerpPoint 位置通道插值
func LerpPoint(a, b Point, f float64) Point {
	return Point{
		X: a.X + f*(b.X-a.X),
		Y: a.Y + f*(b.Y-a.Y),
	}
}

// Size 画面尺寸
type Size struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// pointInPolygon 射线法判断点是否在多边形内
func pointInPolygon(p Point, poly []Point) bool {
	inside := false
	n := len(poly)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := poly[i], poly[j]
		if (a.Y > p.Y) != (b.Y > p.Y) {
			x := (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y) + a.X
			if p.X < x {
				inside = !inside
			}
		}
	}
	return inside
}
