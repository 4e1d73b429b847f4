// Package entities 提供画面中角色的构造函数
//
// 包括两个多边形人物（Harold、Sparty）、图片角色、果园（树和篮子）
// 以及从 reanim 轨道文件导入的角色。
package entities

import (
	"github.com/decker502/canadian/pkg/picture"
	"github.com/lucasb-eyer/go-colorful"
)

// 人物配色
const (
	haroldShirt = "#2d5fa8"
	haroldSkin  = "#f1c27d"
	haroldPants = "#3b3b3b"
	spartyBody  = "#18453b"
	spartyFace  = "#f4f1e6"
	spartyPlume = "#c8102e"
)

// must 常量图形构造失败属于编程错误
func must(err error) {
	if err != nil {
		panic(err)
	}
}

// polygon 创建多边形部件
func polygon(name, hex string, points ...picture.Point) *picture.PolyDrawable {
	c, err := colorful.Hex(hex)
	must(err)
	d := picture.NewPolyDrawable(name, c)
	d.SetPoints(points)
	return d
}

// rect 创建矩形部件（局部坐标系中的左上角和右下角）
func rect(name, hex string, x0, y0, x1, y1 float64) *picture.PolyDrawable {
	return polygon(name, hex,
		picture.Pt(x0, y0), picture.Pt(x1, y0), picture.Pt(x1, y1), picture.Pt(x0, y1))
}

// attachAt 设置子部件在父部件中的偏移并挂接
func attachAt(a *picture.Actor, parent, child picture.Drawable, at picture.Point) {
	child.Base().SetPosition(at)
	must(a.Attach(parent, child))
}

// NewHarold 创建 Harold 人物
//
// 部件树：躯干为根，头、两臂、两腿挂在躯干上。
// 只有头可以拖动位置，四肢只能绕关节旋转。
//
// 参数：
//   - pos: 角色在画面中的位置
func NewHarold(pos picture.Point) *picture.Actor {
	a := picture.NewActor("Harold")

	torso := rect("torso", haroldShirt, -20, -45, 20, 0)
	must(a.SetRoot(torso))

	// 绘制顺序即加入顺序，头最后加入画在最上层
	legL := rect("leg_left", haroldPants, -8, 0, 8, 50)
	legR := rect("leg_right", haroldPants, -8, 0, 8, 50)
	attachAt(a, torso, legL, picture.Pt(-11, 0))
	attachAt(a, torso, legR, picture.Pt(11, 0))

	armL := rect("arm_left", haroldShirt, -5, 0, 5, 40)
	armR := rect("arm_right", haroldShirt, -5, 0, 5, 40)
	attachAt(a, torso, armL, picture.Pt(-25, -42))
	attachAt(a, torso, armR, picture.Pt(25, -42))

	head := polygon("head", haroldSkin,
		picture.Pt(-10, 0), picture.Pt(-16, -8), picture.Pt(-16, -26),
		picture.Pt(-8, -34), picture.Pt(8, -34), picture.Pt(16, -26),
		picture.Pt(16, -8), picture.Pt(10, 0))
	head.SetMovable(true)
	attachAt(a, torso, head, picture.Pt(0, -45))

	a.SetPosition(pos)
	return a
}

// NewSparty 创建 Sparty 人物（斯巴达头盔造型）
func NewSparty(pos picture.Point) *picture.Actor {
	a := picture.NewActor("Sparty")

	body := polygon("body", spartyBody,
		picture.Pt(-22, -50), picture.Pt(22, -50), picture.Pt(28, 0), picture.Pt(-28, 0))
	must(a.SetRoot(body))

	legL := rect("leg_left", spartyBody, -7, 0, 7, 48)
	legR := rect("leg_right", spartyBody, -7, 0, 7, 48)
	attachAt(a, body, legL, picture.Pt(-12, 0))
	attachAt(a, body, legR, picture.Pt(12, 0))

	armL := rect("arm_left", spartyBody, -5, 0, 5, 42)
	armR := rect("arm_right", spartyBody, -5, 0, 5, 42)
	attachAt(a, body, armL, picture.Pt(-26, -46))
	attachAt(a, body, armR, picture.Pt(26, -46))

	head := polygon("head", spartyFace,
		picture.Pt(-14, 0), picture.Pt(-18, -20), picture.Pt(-10, -34),
		picture.Pt(10, -34), picture.Pt(18, -20), picture.Pt(14, 0))
	head.SetMovable(true)
	attachAt(a, body, head, picture.Pt(0, -50))

	// 头盔羽饰挂在头上，随头一起移动和旋转
	plume := polygon("plume", spartyPlume,
		picture.Pt(-4, 0), picture.Pt(-14, -22), picture.Pt(0, -30), picture.Pt(14, -22), picture.Pt(4, 0))
	attachAt(a, head, plume, picture.Pt(0, -32))

	a.SetPosition(pos)
	return a
}
