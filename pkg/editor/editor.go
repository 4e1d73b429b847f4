// Package editor 实现鼠标驱动的姿态编辑状态机
//
// 状态转换：
//
//	Idle --按下命中--> Selected --按住移动--> Dragging(Move|Rotate)
//	任意状态 --松开/未按住移动--> Idle（清除选择）
//
// 编辑模式（移动/旋转）由外部提供，不属于画面本身。
// 每个改变姿态的输入事件只通知一次画面观察者。
package editor

import (
	"fmt"
	"log"

	"github.com/decker502/canadian/pkg/picture"
)

// RotationScaling 旋转拖动时每像素竖直位移对应的弧度
const RotationScaling = 0.02

// Mode 编辑模式
type Mode int

const (
	// ModeMove 拖动平移部件或角色
	ModeMove Mode = iota
	// ModeRotate 拖动旋转部件
	ModeRotate
)

// String 模式名称
func (m Mode) String() string {
	switch m {
	case ModeMove:
		return "move"
	case ModeRotate:
		return "rotate"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode 解析模式名称（配置和设置文件使用）
func ParseMode(name string) (Mode, error) {
	switch name {
	case "", "move":
		return ModeMove, nil
	case "rotate":
		return ModeRotate, nil
	default:
		return ModeMove, fmt.Errorf("unknown edit mode %q", name)
	}
}

// State 编辑状态
type State int

const (
	StateIdle State = iota
	StateSelected
	StateDragging
)

// String 状态名称
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSelected:
		return "selected"
	case StateDragging:
		return "dragging"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Editor 编辑状态机
//
// 选中的角色和部件只是查找用的引用，不延长它们的生命周期：
// 角色被移出画面后下一次事件会回到 Idle。
type Editor struct {
	picture *picture.Picture

	mode            Mode
	state           State
	rotationScaling float64

	actor    *picture.Actor
	drawable picture.Drawable
	last     picture.Point
}

// NewEditor 创建编辑器（移动模式，默认旋转系数）
func NewEditor(p *picture.Picture) *Editor {
	return &Editor{
		picture:         p,
		mode:            ModeMove,
		rotationScaling: RotationScaling,
	}
}

// Picture 正在编辑的画面
func (e *Editor) Picture() *picture.Picture { return e.picture }

// Mode 当前编辑模式
func (e *Editor) Mode() Mode { return e.mode }

// SetMode 切换编辑模式
func (e *Editor) SetMode(m Mode) {
	if e.mode == m {
		return
	}
	e.mode = m
	log.Printf("[Editor] Mode: %s", m)
}

// State 当前状态
func (e *Editor) State() State { return e.state }

// RotationScaling 旋转系数
func (e *Editor) RotationScaling() float64 { return e.rotationScaling }

// SetRotationScaling 设置旋转系数，非正值恢复默认
func (e *Editor) SetRotationScaling(s float64) {
	if s <= 0 {
		s = RotationScaling
	}
	e.rotationScaling = s
}

// Selection 当前选中的角色和部件，未选中时都为 nil
func (e *Editor) Selection() (*picture.Actor, picture.Drawable) {
	return e.actor, e.drawable
}

// Press 鼠标按下
//
// 在整个画面中做点击检测（最上层优先），命中则进入 Selected。
//
// 返回：
//   - bool: 是否选中了部件
func (e *Editor) Press(pt picture.Point) bool {
	e.last = pt
	actor, drawable := e.picture.HitTest(pt)
	if actor == nil {
		e.clear()
		return false
	}
	e.actor = actor
	e.drawable = drawable
	e.state = StateSelected
	return true
}

// Move 鼠标移动
//
// 按住按钮时拖动选中的部件；未按住时清除选择。
// 发生姿态修改时通知画面观察者一次。
//
// 参数：
//   - pt: 鼠标位置（画面坐标）
//   - held: 左键是否仍按住
func (e *Editor) Move(pt picture.Point, held bool) {
	delta := pt.Sub(e.last)
	e.last = pt

	if !held {
		e.clear()
		return
	}
	if e.drawable == nil {
		return
	}
	if e.actor.Picture() != e.picture {
		// 角色已被移出画面
		e.clear()
		return
	}

	e.state = StateDragging
	switch e.mode {
	case ModeMove:
		node := e.drawable.Base()
		if node.IsMovable() {
			node.Move(delta)
		} else {
			e.actor.SetPosition(e.actor.Position().Add(delta))
		}
	case ModeRotate:
		node := e.drawable.Base()
		node.SetRotation(node.Rotation() + delta.Y*e.rotationScaling)
	}
	e.picture.UpdateObservers()
}

// Release 鼠标松开，清除选择
func (e *Editor) Release() {
	e.clear()
}

func (e *Editor) clear() {
	e.actor = nil
	e.drawable = nil
	e.state = StateIdle
}
