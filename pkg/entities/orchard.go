package entities

import (
	"image/color"
	"math"
	"math/rand"

	"github.com/decker502/canadian/pkg/picture"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// 树生长参数
const (
	// SaplingMatureFrame 树长到最终形态所需的帧数
	SaplingMatureFrame = 150
	saplingHeight      = 160.0
	saplingTrunkWidth  = 8.0
	saplingBranches    = 6
	basketWidth        = 70.0
	basketHeight       = 34.0
)

var (
	barkColor   = color.RGBA{R: 0x6b, G: 0x45, B: 0x23, A: 0xff}
	leafColor   = color.RGBA{R: 0x3c, G: 0x8d, B: 0x2f, A: 0xff}
	basketColor = color.RGBA{R: 0xb5, G: 0x8b, B: 0x4c, A: 0xff}
)

// branch 树枝：从树干高度比例 at 处伸出，角度与长度由种子决定
type branch struct {
	at     float64
	angle  float64
	length float64
}

// Sapling 按帧生长的树
//
// 同一种子总是长成同一形状；帧号决定生长进度，
// 第 SaplingMatureFrame 帧以后不再变化。
type Sapling struct {
	x, y     int
	frame    int
	seed     int
	branches []branch
}

// NewSapling 创建树
func NewSapling(seed int) *Sapling {
	s := &Sapling{}
	s.SetSeed(seed)
	return s
}

// SetRootLocation 实现 picture.Tree
func (s *Sapling) SetRootLocation(x, y int) {
	s.x, s.y = x, y
}

// SetTreeFrame 实现 picture.Tree
func (s *Sapling) SetTreeFrame(frame int) {
	s.frame = frame
}

// Frame 当前生长帧
func (s *Sapling) Frame() int { return s.frame }

// SetSeed 实现 picture.Tree，重新生成树枝
func (s *Sapling) SetSeed(seed int) {
	s.seed = seed
	rng := rand.New(rand.NewSource(int64(seed)))
	s.branches = make([]branch, saplingBranches)
	for i := range s.branches {
		side := 1.0
		if i%2 == 1 {
			side = -1
		}
		s.branches[i] = branch{
			at:     0.35 + 0.6*float64(i)/saplingBranches,
			angle:  side * (0.4 + 0.7*rng.Float64()),
			length: 25 + 35*rng.Float64(),
		}
	}
}

// Seed 实现 picture.Tree
func (s *Sapling) Seed() int { return s.seed }

// growth 生长进度 [0,1]
func (s *Sapling) growth() float64 {
	if s.frame <= 0 {
		return 0
	}
	return math.Min(1, float64(s.frame)/SaplingMatureFrame)
}

// Height 当前树干高度
func (s *Sapling) Height() float64 {
	return 10 + (saplingHeight-10)*s.growth()
}

// Draw 实现 picture.Tree
func (s *Sapling) Draw(screen *ebiten.Image) {
	h := s.Height()
	x0, y0 := float32(s.x), float32(s.y)
	vector.StrokeLine(screen, x0, y0, x0, y0-float32(h), saplingTrunkWidth, barkColor, true)

	g := s.growth()
	for _, b := range s.branches {
		if b.at > g+0.3 {
			continue
		}
		by := float64(s.y) - h*b.at
		l := b.length * g
		ex := float64(s.x) + l*math.Sin(b.angle)
		ey := by - l*math.Cos(b.angle)
		vector.StrokeLine(screen, x0, float32(by), float32(ex), float32(ey), 3, barkColor, true)
		vector.DrawFilledCircle(screen, float32(ex), float32(ey), float32(4+8*g), leafColor, true)
	}
}

// HitTest 实现 picture.Tree，只检测树干
func (s *Sapling) HitTest(x, y int) bool {
	dx := math.Abs(float64(x - s.x))
	dy := float64(s.y - y)
	return dx <= saplingTrunkWidth/2+2 && dy >= 0 && dy <= s.Height()
}

// Basket 收获篮
type Basket struct {
	x, y int
}

// NewBasket 创建篮子
func NewBasket() *Basket { return &Basket{} }

// SetBasketLocation 实现 picture.Basket，位置是篮底中点
func (b *Basket) SetBasketLocation(x, y int) {
	b.x, b.y = x, y
}

// Draw 实现 picture.Basket
func (b *Basket) Draw(screen *ebiten.Image) {
	vector.DrawFilledRect(screen, float32(b.x)-basketWidth/2, float32(b.y)-basketHeight,
		basketWidth, basketHeight, basketColor, true)
	vector.StrokeRect(screen, float32(b.x)-basketWidth/2, float32(b.y)-basketHeight,
		basketWidth, basketHeight, 2, barkColor, true)
}

// HitTest 实现 picture.Basket
func (b *Basket) HitTest(x, y int) bool {
	dx := math.Abs(float64(x - b.x))
	return dx <= basketWidth/2 && y <= b.y && float64(b.y-y) <= basketHeight
}

// Orchard 实现 picture.TreeFactory
type Orchard struct{}

// CreateTree 实现 picture.TreeFactory
func (Orchard) CreateTree() picture.Tree { return NewSapling(0) }

// CreateBasket 实现 picture.TreeFactory
func (Orchard) CreateBasket() picture.Basket { return NewBasket() }

// NewOrchardActor 创建果园角色：一棵树和树旁的篮子
//
// 篮子挂在树上，拖动树时篮子跟着走。树的位置通道不打关键帧。
func NewOrchardActor(seed int, pos picture.Point) *picture.Actor {
	a := picture.NewActor("Orchard")

	tree := picture.NewTreeAdapter("tree", NewSapling(seed))
	must(a.SetRoot(tree))

	basket := picture.NewBasketAdapter("basket", NewBasket())
	attachAt(a, tree, basket, picture.Pt(70, 0))

	a.SetPosition(pos)
	return a
}
