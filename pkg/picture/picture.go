// Package picture 提供定格动画编辑器的画面模型
//
// Picture 拥有角色列表、时间线和观察者；Actor 由一棵 Drawable 部件树组成；
// 每个部件的可动画属性由 anim.Channel 驱动。
//
// 数据流：
//
//	SetAnimationTime(t) → Timeline 钳制 t → 每个 Actor 求值全部通道并重新放置
//	→ Picture 通知观察者（一次）→ 观察者调用 Draw（不再插值）
//
// 所有操作都是同步的，只能在一个 goroutine（ebiten 的 Update/Draw）中调用。
package picture

import (
	"errors"
	"fmt"
	"iter"
	"log"

	"github.com/decker502/canadian/pkg/anim"
	"github.com/google/uuid"
	"github.com/hajimehoshi/ebiten/v2"
)

// 默认画面尺寸
const (
	DefaultWidth  = 800
	DefaultHeight = 600
)

var (
	// ErrNilActor 传入 nil 角色
	ErrNilActor = errors.New("nil actor")
	// ErrActorInPicture 角色已经属于某个画面
	ErrActorInPicture = errors.New("actor already in a picture")
)

// Picture 画面
//
// 不变量：
//   - actors 的顺序同时是绘制顺序和点击优先级（后加入的在上层）
//   - 时间线只驱动 actors 中的角色
type Picture struct {
	id         uuid.UUID
	size       Size
	actors     []*Actor
	timeline   *anim.Timeline
	observers  observerRegistry
	keyframing bool
	keyEase    anim.Ease // 新关键帧的缓动，空值为线性
}

// NewPicture 创建空画面（800x600，默认时间线）
func NewPicture() *Picture {
	return &Picture{
		id:       uuid.New(),
		size:     Size{Width: DefaultWidth, Height: DefaultHeight},
		timeline: anim.NewTimeline(),
	}
}

// ID 画面标识（保存时写入文档）
func (p *Picture) ID() uuid.UUID { return p.id }

// Size 画面尺寸
func (p *Picture) Size() Size { return p.size }

// SetSize 设置画面尺寸
func (p *Picture) SetSize(size Size) { p.size = size }

// Timeline 时间线
func (p *Picture) Timeline() *anim.Timeline { return p.timeline }

// Keyframing 是否处于关键帧模式
//
// 关键帧模式下，用户直接编辑姿态时会在当前时间自动提交关键帧。
func (p *Picture) Keyframing() bool { return p.keyframing }

// SetKeyframing 设置关键帧模式
func (p *Picture) SetKeyframing(on bool) { p.keyframing = on }

// KeyEase 新关键帧使用的缓动
func (p *Picture) KeyEase() anim.Ease {
	if p.keyEase == "" {
		return anim.EaseLinear
	}
	return p.keyEase
}

// SetKeyEase 设置新关键帧使用的缓动（SetKeyframe 和关键帧模式下的自动提交）
func (p *Picture) SetKeyEase(e anim.Ease) { p.keyEase = e }

// easeKeys 把 time 处新提交的关键帧设为画面的缓动
func (p *Picture) easeKeys(time float64, tracks ...anim.Track) {
	if p.KeyEase() == anim.EaseLinear {
		return
	}
	for _, t := range tracks {
		t.SetEase(time, p.keyEase)
	}
}

// AddActor 把角色追加到最上层并注册到时间线
//
// 返回：
//   - error: 角色为 nil、已属于画面或结构不完整（无根、部件脱离）时返回错误，画面不变
func (p *Picture) AddActor(actor *Actor) error {
	if actor == nil {
		return ErrNilActor
	}
	if actor.picture != nil {
		return fmt.Errorf("%w: %q", ErrActorInPicture, actor.name)
	}
	if err := actor.Validate(); err != nil {
		return err
	}

	actor.picture = p
	p.actors = append(p.actors, actor)
	p.timeline.Register(actor)
	actor.SetAnimationTime(p.timeline.CurrentTime())
	return nil
}

// RemoveActor 移除角色
//
// 移除后外部持有的引用（如编辑选择）不再属于画面。
func (p *Picture) RemoveActor(actor *Actor) bool {
	for i, a := range p.actors {
		if a != actor {
			continue
		}
		p.actors = append(p.actors[:i], p.actors[i+1:]...)
		p.timeline.Unregister(actor)
		actor.picture = nil
		return true
	}
	return false
}

// Actors 按绘制顺序（自下而上）遍历角色
//
// 只在本次遍历期间有效，遍历中不要增删角色。
func (p *Picture) Actors() iter.Seq[*Actor] {
	return func(yield func(*Actor) bool) {
		for _, a := range p.actors {
			if !yield(a) {
				return
			}
		}
	}
}

// ActorCount 角色数量
func (p *Picture) ActorCount() int { return len(p.actors) }

// Actor 按名称查找角色
func (p *Picture) Actor(name string) (*Actor, bool) {
	for _, a := range p.actors {
		if a.name == name {
			return a, true
		}
	}
	return nil, false
}

// Draw 按顺序绘制所有角色（当前姿态，不插值）
func (p *Picture) Draw(screen *ebiten.Image) {
	for _, a := range p.actors {
		a.Draw(screen)
	}
}

// HitTest 在整个画面中做点击检测
//
// 按绘制顺序测试全部角色，不在第一次命中时停止，保留最后（最上层）的命中。
//
// 返回：
//   - *Actor, Drawable: 命中的角色和部件；未命中时都为 nil（正常结果）
func (p *Picture) HitTest(pt Point) (*Actor, Drawable) {
	var hitActor *Actor
	var hitDrawable Drawable
	for _, a := range p.actors {
		if d := a.HitTest(pt); d != nil {
			hitActor = a
			hitDrawable = d
		}
	}
	return hitActor, hitDrawable
}

// SetAnimationTime 设置动画时间并通知观察者一次
//
// 所有角色的通道都用同一个（钳制后的）时间求值后才通知。
func (p *Picture) SetAnimationTime(time float64) error {
	if err := p.timeline.SetCurrentTime(time); err != nil {
		return err
	}
	p.UpdateObservers()
	return nil
}

// AnimationTime 当前动画时间
func (p *Picture) AnimationTime() float64 {
	return p.timeline.CurrentTime()
}

// SetKeyframe 在当前时间为所有角色提交关键帧，并通知观察者
func (p *Picture) SetKeyframe() {
	time := p.timeline.CurrentTime()
	for _, a := range p.actors {
		a.SetKeyframe(time)
		p.easeKeys(time, a.Tracks()...)
	}
	log.Printf("[Picture] Set keyframe at %.3fs (frame %d)", time, p.timeline.CurrentFrame())
	p.UpdateObservers()
}

// DeleteKeyframe 删除当前时间所有角色的关键帧，并通知观察者
func (p *Picture) DeleteKeyframe() {
	time := p.timeline.CurrentTime()
	deleted := false
	for _, a := range p.actors {
		if a.DeleteKeyframe(time) {
			deleted = true
		}
	}
	if deleted {
		// 删除后用剩余关键帧重新求值
		_ = p.timeline.SetCurrentTime(time)
		log.Printf("[Picture] Deleted keyframe at %.3fs (frame %d)", time, p.timeline.CurrentFrame())
	}
	p.UpdateObservers()
}

// Trees 画面中所有树部件（供收获对话框等外部持有者使用）
func (p *Picture) Trees() []*TreeAdapter {
	var trees []*TreeAdapter
	for _, a := range p.actors {
		for _, d := range a.drawables {
			if t, ok := d.(*TreeAdapter); ok {
				trees = append(trees, t)
			}
		}
	}
	return trees
}

// Baskets 画面中所有篮子部件
func (p *Picture) Baskets() []*BasketAdapter {
	var baskets []*BasketAdapter
	for _, a := range p.actors {
		for _, d := range a.drawables {
			if b, ok := d.(*BasketAdapter); ok {
				baskets = append(baskets, b)
			}
		}
	}
	return baskets
}

// AddObserver 注册观察者
func (p *Picture) AddObserver(o Observer) ObserverHandle {
	return p.observers.add(o)
}

// RemoveObserver 取消注册；在通知过程中调用时推迟到本轮通知结束
func (p *Picture) RemoveObserver(h ObserverHandle) bool {
	return p.observers.remove(h)
}

// ObserverCount 已注册观察者数量
func (p *Picture) ObserverCount() int {
	return p.observers.len()
}

// UpdateObservers 按注册顺序同步通知所有观察者
//
// 每次逻辑修改（一次拖动事件、一次时间跳转）调用一次。
func (p *Picture) UpdateObservers() {
	p.observers.notify()
}
