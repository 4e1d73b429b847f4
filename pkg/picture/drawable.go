package picture

import (
	"errors"
	"fmt"

	"github.com/decker502/canadian/pkg/anim"
	"github.com/hajimehoshi/ebiten/v2"
)

// 可绘制部件类型（持久化时用于选择构造方式）
const (
	KindPoly   = "poly"
	KindImage  = "image"
	KindTree   = "tree"
	KindBasket = "basket"
)

var (
	// ErrNilDrawable 传入 nil 部件
	ErrNilDrawable = errors.New("nil drawable")
	// ErrCyclicAttachment 挂接会形成环
	ErrCyclicAttachment = errors.New("cyclic drawable attachment")
	// ErrAlreadyAttached 部件已经挂接到其他父节点或角色
	ErrAlreadyAttached = errors.New("drawable already attached")
)

// Drawable 可绘制、可点击的部件
//
// 部件的姿态（位置、旋转）和层级关系保存在 Node 中，
// 具体变体只负责绘制和点击检测。
type Drawable interface {
	// Base 返回部件的姿态节点
	Base() *Node
	// Draw 按当前已放置的姿态绘制，不做插值
	Draw(screen *ebiten.Image)
	// HitTest 判断世界坐标点是否落在部件上
	HitTest(p Point) bool
}

// FrameFollower 需要跟随时间线帧号的部件（如外部生成的树）
type FrameFollower interface {
	SetAnimationFrame(frame int)
}

// Node 部件的姿态与层级
//
// position/rotation 相对于父节点；根节点相对于角色位置。
// placedPosition/placedRotation 是最近一次 Place 计算出的世界姿态。
type Node struct {
	name    string
	kind    string
	movable bool

	position Point
	rotation float64

	placedPosition Point
	placedRotation float64

	parent   *Node
	children []Drawable
	actor    *Actor

	rotationChannel *anim.Channel[float64]
	positionChannel *anim.Channel[Point]
	tracks          []anim.Track
}

// init 在最终地址上初始化节点（通道持有字段指针，节点不能再被复制）
func (n *Node) init(name, kind string) {
	n.name = name
	n.kind = kind
	n.rotationChannel = anim.NewChannel("rotation", &n.rotation, anim.LerpFloat)
	n.positionChannel = anim.NewChannel("position", &n.position, LerpPoint)
	n.tracks = []anim.Track{n.rotationChannel, n.positionChannel}
}

// addTrack 注册变体自己的通道
func (n *Node) addTrack(t anim.Track) {
	n.tracks = append(n.tracks, t)
}

// Base 实现 Drawable
func (n *Node) Base() *Node { return n }

// Name 部件名称（角色内唯一）
func (n *Node) Name() string { return n.name }

// Kind 部件类型
func (n *Node) Kind() string { return n.kind }

// Actor 所属角色（非拥有引用）
func (n *Node) Actor() *Actor { return n.actor }

// Parent 父节点，根节点返回 nil
func (n *Node) Parent() *Node { return n.parent }

// Children 子部件副本
func (n *Node) Children() []Drawable {
	out := make([]Drawable, len(n.children))
	copy(out, n.children)
	return out
}

// Position 相对父节点的位置
func (n *Node) Position() Point { return n.position }

// Rotation 相对父节点的旋转（弧度，不回绕）
func (n *Node) Rotation() float64 { return n.rotation }

// PlacedPosition 世界位置
func (n *Node) PlacedPosition() Point { return n.placedPosition }

// PlacedRotation 世界旋转
func (n *Node) PlacedRotation() float64 { return n.placedRotation }

// IsMovable 是否可以独立于角色移动
func (n *Node) IsMovable() bool { return n.movable }

// SetMovable 设置是否可独立移动
func (n *Node) SetMovable(movable bool) { n.movable = movable }

// RotationChannel 旋转通道
func (n *Node) RotationChannel() *anim.Channel[float64] { return n.rotationChannel }

// PositionChannel 位置通道（仅可移动部件会提交关键帧）
func (n *Node) PositionChannel() *anim.Channel[Point] { return n.positionChannel }

// Tracks 部件的全部通道
func (n *Node) Tracks() []anim.Track {
	out := make([]anim.Track, len(n.tracks))
	copy(out, n.tracks)
	return out
}

// SetPosition 用户编辑位置
//
// 关键帧模式下同时在当前时间提交位置关键帧（仅可移动部件）。
func (n *Node) SetPosition(p Point) {
	n.position = p
	if n.movable {
		n.autoKey(n.positionChannel)
	}
	n.replace()
}

// SetRotation 用户编辑旋转
//
// 关键帧模式下同时在当前时间提交旋转关键帧。
func (n *Node) SetRotation(r float64) {
	n.rotation = r
	n.autoKey(n.rotationChannel)
	n.replace()
}

// Move 按世界坐标位移移动部件
//
// 位移先转换到父节点的坐标系中，拖动方向与鼠标方向一致。
func (n *Node) Move(delta Point) {
	if n.parent != nil {
		delta = delta.Rotate(-n.parent.placedRotation)
	}
	n.SetPosition(n.position.Add(delta))
}

// AddChild 挂接子部件
//
// 返回：
//   - error: child 为 nil、已有父节点或会形成环时返回错误，树不变
func (n *Node) AddChild(child Drawable) error {
	if child == nil || child.Base() == nil {
		return ErrNilDrawable
	}
	c := child.Base()
	for p := n; p != nil; p = p.parent {
		if p == c {
			return fmt.Errorf("%w: %q under %q", ErrCyclicAttachment, c.name, n.name)
		}
	}
	if c.parent != nil {
		return fmt.Errorf("%w: %q already has parent %q", ErrAlreadyAttached, c.name, c.parent.name)
	}
	if c.actor != nil && n.actor != nil && c.actor != n.actor {
		return fmt.Errorf("%w: %q belongs to actor %q", ErrAlreadyAttached, c.name, c.actor.name)
	}
	c.parent = n
	n.children = append(n.children, child)
	return nil
}

// Place 根据父节点的世界姿态计算本节点及子树的世界姿态
func (n *Node) Place(offset Point, rotation float64) {
	n.placedPosition = offset.Add(n.position.Rotate(rotation))
	n.placedRotation = rotation + n.rotation
	for _, child := range n.children {
		child.Base().Place(n.placedPosition, n.placedRotation)
	}
}

// WorldToLocal 世界坐标转换为部件局部坐标
func (n *Node) WorldToLocal(p Point) Point {
	return p.Sub(n.placedPosition).Rotate(-n.placedRotation)
}

// LocalToWorld 部件局部坐标转换为世界坐标
func (n *Node) LocalToWorld(p Point) Point {
	return n.placedPosition.Add(p.Rotate(n.placedRotation))
}

// SetKeyframe 在 time 处提交部件所有通道的当前值
func (n *Node) SetKeyframe(time float64) {
	for _, t := range n.tracks {
		if t == anim.Track(n.positionChannel) && !n.movable {
			continue
		}
		t.Commit(time)
	}
}

// DeleteKeyframe 删除部件所有通道在 time 处的关键帧
func (n *Node) DeleteKeyframe(time float64) bool {
	deleted := false
	for _, t := range n.tracks {
		if t.Delete(time) {
			deleted = true
		}
	}
	return deleted
}

// SetAnimationTime 所有通道在 time 处求值并写回字段
func (n *Node) SetAnimationTime(time float64) {
	for _, t := range n.tracks {
		t.Apply(time)
	}
}

// autoKey 关键帧模式下在当前时间提交 track
func (n *Node) autoKey(t anim.Track) {
	if n.actor != nil {
		n.actor.autoKey(t)
	}
}

// replace 编辑后重新计算所属角色的世界姿态
func (n *Node) replace() {
	if n.actor != nil {
		n.actor.place()
	}
}
