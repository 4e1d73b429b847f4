package picture

import (
	"errors"
	"fmt"
	"iter"

	"github.com/decker502/canadian/pkg/anim"
	"github.com/google/uuid"
	"github.com/hajimehoshi/ebiten/v2"
)

var (
	// ErrNoRoot 角色没有根部件
	ErrNoRoot = errors.New("actor has no root drawable")
	// ErrDuplicateDrawable 角色内部件重名
	ErrDuplicateDrawable = errors.New("duplicate drawable name")
	// ErrDetachedDrawable 部件不在根部件树中
	ErrDetachedDrawable = errors.New("drawable not reachable from root")
)

// Actor 角色：一个根部件加一棵挂接的部件树
//
// 角色位置驱动根部件的放置；子部件世界姿态 = 父姿态 ∘ 局部偏移。
// drawables 是角色内的绘制顺序，点击检测按逆序（最上层优先）。
type Actor struct {
	id        uuid.UUID
	name      string
	enabled   bool
	clickable bool

	position        Point
	positionChannel *anim.Channel[Point]

	root      Drawable
	drawables []Drawable

	picture *Picture // 所属画面（非拥有引用）
}

// NewActor 创建角色
func NewActor(name string) *Actor {
	a := &Actor{
		id:        uuid.New(),
		name:      name,
		enabled:   true,
		clickable: true,
	}
	a.positionChannel = anim.NewChannel("position", &a.position, LerpPoint)
	return a
}

// ID 角色标识
func (a *Actor) ID() uuid.UUID { return a.id }

// Name 角色名称
func (a *Actor) Name() string { return a.name }

// Enabled 是否启用（禁用的角色不绘制也不参与点击）
func (a *Actor) Enabled() bool { return a.enabled }

// SetEnabled 设置启用状态
func (a *Actor) SetEnabled(enabled bool) { a.enabled = enabled }

// Clickable 是否可点击
func (a *Actor) Clickable() bool { return a.clickable }

// SetClickable 设置是否可点击
func (a *Actor) SetClickable(clickable bool) { a.clickable = clickable }

// Picture 所属画面，未加入时为 nil
func (a *Actor) Picture() *Picture { return a.picture }

// Root 根部件
func (a *Actor) Root() Drawable { return a.root }

// SetRoot 设置根部件并加入绘制顺序
func (a *Actor) SetRoot(root Drawable) error {
	if root == nil || root.Base() == nil {
		return ErrNilDrawable
	}
	if root.Base().parent != nil {
		return fmt.Errorf("%w: root %q has a parent", ErrAlreadyAttached, root.Base().name)
	}
	if err := a.AddDrawable(root); err != nil {
		return err
	}
	a.root = root
	a.place()
	return nil
}

// AddDrawable 把部件追加到绘制顺序末尾（最上层）
//
// 部件本身的挂接关系由 Node.AddChild 建立。
func (a *Actor) AddDrawable(d Drawable) error {
	if d == nil || d.Base() == nil {
		return ErrNilDrawable
	}
	n := d.Base()
	if n.actor != nil {
		return fmt.Errorf("%w: %q belongs to actor %q", ErrAlreadyAttached, n.name, n.actor.name)
	}
	for _, existing := range a.drawables {
		if existing.Base().name == n.name {
			return fmt.Errorf("%w: %q in actor %q", ErrDuplicateDrawable, n.name, a.name)
		}
	}
	n.actor = a
	a.drawables = append(a.drawables, d)
	return nil
}

// Attach 挂接 child 到 parent 下并加入绘制顺序
func (a *Actor) Attach(parent, child Drawable) error {
	if parent == nil || child == nil {
		return ErrNilDrawable
	}
	if parent.Base().actor != a {
		return fmt.Errorf("%w: parent %q is not part of actor %q", ErrDetachedDrawable, parent.Base().name, a.name)
	}
	if err := parent.Base().AddChild(child); err != nil {
		return err
	}
	if child.Base().actor == a {
		// 已在绘制顺序中，只建立挂接
		a.place()
		return nil
	}
	if err := a.AddDrawable(child); err != nil {
		// 回滚挂接
		p := parent.Base()
		p.children = p.children[:len(p.children)-1]
		child.Base().parent = nil
		return err
	}
	a.place()
	return nil
}

// Validate 检查角色结构：有根，且绘制顺序中的部件都能从根到达
func (a *Actor) Validate() error {
	if a.root == nil {
		return fmt.Errorf("%w: %q", ErrNoRoot, a.name)
	}
	reachable := make(map[*Node]bool, len(a.drawables))
	var walk func(d Drawable)
	walk = func(d Drawable) {
		n := d.Base()
		reachable[n] = true
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(a.root)

	for _, d := range a.drawables {
		if !reachable[d.Base()] {
			return fmt.Errorf("%w: %q in actor %q", ErrDetachedDrawable, d.Base().name, a.name)
		}
	}
	if len(reachable) != len(a.drawables) {
		return fmt.Errorf("%w: actor %q has attached drawables outside its draw order", ErrDetachedDrawable, a.name)
	}
	return nil
}

// Drawables 按绘制顺序遍历部件
//
// 只在本次遍历期间有效，遍历中不要增删部件。
func (a *Actor) Drawables() iter.Seq[Drawable] {
	return func(yield func(Drawable) bool) {
		for _, d := range a.drawables {
			if !yield(d) {
				return
			}
		}
	}
}

// DrawableCount 部件数量
func (a *Actor) DrawableCount() int { return len(a.drawables) }

// Drawable 按名称查找部件
func (a *Actor) Drawable(name string) (Drawable, bool) {
	for _, d := range a.drawables {
		if d.Base().name == name {
			return d, true
		}
	}
	return nil, false
}

// Position 角色位置
func (a *Actor) Position() Point { return a.position }

// SetPosition 用户编辑角色位置
//
// 关键帧模式下同时在时间线当前时间提交位置关键帧。
// 不通知观察者，由调用方在一批修改后统一通知。
func (a *Actor) SetPosition(p Point) {
	a.position = p
	a.autoKey(a.positionChannel)
	a.place()
}

// PositionChannel 角色位置通道
func (a *Actor) PositionChannel() *anim.Channel[Point] { return a.positionChannel }

// Tracks 角色及全部部件的通道
func (a *Actor) Tracks() []anim.Track {
	tracks := []anim.Track{a.positionChannel}
	for _, d := range a.drawables {
		tracks = append(tracks, d.Base().tracks...)
	}
	return tracks
}

// SetKeyframe 在 time 处提交角色及全部部件的当前值
func (a *Actor) SetKeyframe(time float64) {
	a.positionChannel.Commit(time)
	for _, d := range a.drawables {
		d.Base().SetKeyframe(time)
	}
}

// DeleteKeyframe 删除角色及全部部件在 time 处的关键帧
func (a *Actor) DeleteKeyframe(time float64) bool {
	deleted := a.positionChannel.DeleteKeyframe(time)
	for _, d := range a.drawables {
		if d.Base().DeleteKeyframe(time) {
			deleted = true
		}
	}
	if deleted {
		a.place()
	}
	return deleted
}

// SetAnimationTime 所有通道在 time 处求值，然后重新放置部件树
//
// 实现 anim.Subject。
func (a *Actor) SetAnimationTime(time float64) {
	a.positionChannel.Apply(time)
	frame, follow := a.frameAt(time)
	for _, d := range a.drawables {
		d.Base().SetAnimationTime(time)
		if f, ok := d.(FrameFollower); ok && follow {
			f.SetAnimationFrame(frame)
		}
	}
	a.place()
}

// HitTest 按绘制逆序测试部件，返回最上层命中的部件
func (a *Actor) HitTest(p Point) Drawable {
	if !a.enabled || !a.clickable {
		return nil
	}
	for i := len(a.drawables) - 1; i >= 0; i-- {
		if a.drawables[i].HitTest(p) {
			return a.drawables[i]
		}
	}
	return nil
}

// Draw 按绘制顺序绘制全部部件
func (a *Actor) Draw(screen *ebiten.Image) {
	if !a.enabled {
		return
	}
	for _, d := range a.drawables {
		d.Draw(screen)
	}
}

// place 从根部件开始计算世界姿态
func (a *Actor) place() {
	if a.root != nil {
		a.root.Base().Place(a.position, 0)
	}
}

// autoKey 关键帧模式下在当前时间用画面的缓动提交 track
func (a *Actor) autoKey(t anim.Track) {
	time, ok := a.keyframeTime()
	if !ok {
		return
	}
	t.Commit(time)
	a.picture.easeKeys(time, t)
}

// keyframeTime 关键帧模式下返回时间线当前时间
func (a *Actor) keyframeTime() (float64, bool) {
	if a.picture == nil || !a.picture.keyframing {
		return 0, false
	}
	return a.picture.timeline.CurrentTime(), true
}

// frameAt 时间对应的时间线帧号，未加入画面时无帧号
func (a *Actor) frameAt(time float64) (int, bool) {
	if a.picture == nil {
		return 0, false
	}
	return a.picture.timeline.FrameAt(time), true
}
