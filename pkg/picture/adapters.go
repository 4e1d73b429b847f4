package picture

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// Tree 程序化生长的树（由外部子系统实现）
//
// 核心只要求它能放置、按帧生长、绘制和点击检测，不关心几何如何计算。
type Tree interface {
	SetRootLocation(x, y int)
	SetTreeFrame(frame int)
	SetSeed(seed int)
	Seed() int
	Draw(screen *ebiten.Image)
	HitTest(x, y int) bool
}

// Basket 收获篮（由外部子系统实现）
type Basket interface {
	SetBasketLocation(x, y int)
	Draw(screen *ebiten.Image)
	HitTest(x, y int) bool
}

// TreeFactory 创建外部树和篮子，加载存档时使用
type TreeFactory interface {
	CreateTree() Tree
	CreateBasket() Basket
}

// TreeAdapter 把外部树接入角色部件树
//
// 树的根位置跟随部件的世界位置，生长帧跟随时间线当前帧。
type TreeAdapter struct {
	Node
	tree  Tree
	frame int
}

// NewTreeAdapter 创建树部件
func NewTreeAdapter(name string, tree Tree) *TreeAdapter {
	a := &TreeAdapter{tree: tree}
	a.init(name, KindTree)
	return a
}

// Tree 外部树（共享引用，生命周期由所有持有者共同决定）
func (a *TreeAdapter) Tree() Tree { return a.tree }

// Frame 最近一次同步的帧号
func (a *TreeAdapter) Frame() int { return a.frame }

// SetAnimationFrame 实现 FrameFollower
func (a *TreeAdapter) SetAnimationFrame(frame int) {
	a.frame = frame
	a.tree.SetTreeFrame(frame)
}

func (a *TreeAdapter) locate() {
	a.tree.SetRootLocation(int(math.Round(a.placedPosition.X)), int(math.Round(a.placedPosition.Y)))
}

// Draw 实现 Drawable
func (a *TreeAdapter) Draw(screen *ebiten.Image) {
	a.locate()
	a.tree.Draw(screen)
}

// HitTest 实现 Drawable
func (a *TreeAdapter) HitTest(p Point) bool {
	a.locate()
	return a.tree.HitTest(int(math.Round(p.X)), int(math.Round(p.Y)))
}

// BasketAdapter 把外部篮子接入角色部件树
type BasketAdapter struct {
	Node
	basket Basket
}

// NewBasketAdapter 创建篮子部件
func NewBasketAdapter(name string, basket Basket) *BasketAdapter {
	a := &BasketAdapter{basket: basket}
	a.init(name, KindBasket)
	return a
}

// Basket 外部篮子
func (a *BasketAdapter) Basket() Basket { return a.basket }

func (a *BasketAdapter) locate() {
	a.basket.SetBasketLocation(int(math.Round(a.placedPosition.X)), int(math.Round(a.placedPosition.Y)))
}

// Draw 实现 Drawable
func (a *BasketAdapter) Draw(screen *ebiten.Image) {
	a.locate()
	a.basket.Draw(screen)
}

// HitTest 实现 Drawable
func (a *BasketAdapter) HitTest(p Point) bool {
	a.locate()
	return a.basket.HitTest(int(math.Round(p.X)), int(math.Round(p.Y)))
}
