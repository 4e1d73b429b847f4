// Package utils 提供通用工具函数
package utils

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// DragState 拖拽状态
type DragState int

const (
	// DragStateNone 无拖拽
	DragStateNone DragState = iota
	// DragStateStarted 拖拽开始（刚按下，只持续一帧）
	DragStateStarted
	// DragStateDragging 拖拽中（按住移动）
	DragStateDragging
	// DragStateEnded 拖拽结束（刚释放，只持续一帧）
	DragStateEnded
)

// String 状态名称
func (s DragState) String() string {
	switch s {
	case DragStateStarted:
		return "started"
	case DragStateDragging:
		return "dragging"
	case DragStateEnded:
		return "ended"
	default:
		return "none"
	}
}

// DragInfo 拖拽信息
type DragInfo struct {
	// State 当前拖拽状态
	State DragState
	// StartX, StartY 拖拽起始位置（屏幕坐标）
	StartX, StartY int
	// CurrentX, CurrentY 当前位置（屏幕坐标），结束帧为最后一次的位置
	CurrentX, CurrentY int
	// TouchID 当前跟踪的触摸ID（-1 表示鼠标）
	TouchID ebiten.TouchID
	// IsTouchInput 是否为触摸输入（区分触摸和鼠标）
	IsTouchInput bool
}

// PointerSample 一帧的指针输入
//
// Update 从 ebiten 读取输入后交给 Advance，测试可以直接构造。
type PointerSample struct {
	// JustPressed 本帧刚按下（触摸优先于鼠标）
	JustPressed bool
	// Pressed 被跟踪的指针是否仍然按下
	Pressed bool
	// X, Y 指针位置；触摸已释放时无效
	X, Y int
	// TouchID 刚按下的触摸ID，鼠标为 -1
	TouchID ebiten.TouchID
}

// DragManager 拖拽管理器
// 跟踪触摸/鼠标的拖拽状态，每个编辑器窗口一个实例
type DragManager struct {
	info DragInfo
}

// NewDragManager 创建拖拽管理器
func NewDragManager() *DragManager {
	return &DragManager{info: DragInfo{TouchID: -1}}
}

// Info 当前拖拽信息
func (dm *DragManager) Info() DragInfo { return dm.info }

// Update 读取本帧输入并更新拖拽状态（每帧调用一次）
func (dm *DragManager) Update() DragInfo {
	return dm.Advance(dm.sample())
}

// sample 读取 ebiten 输入
func (dm *DragManager) sample() PointerSample {
	s := PointerSample{TouchID: -1}

	switch dm.info.State {
	case DragStateNone, DragStateEnded:
		// 优先检测触摸输入
		if ids := inpututil.AppendJustPressedTouchIDs(nil); len(ids) > 0 {
			s.JustPressed, s.Pressed, s.TouchID = true, true, ids[0]
			s.X, s.Y = ebiten.TouchPosition(ids[0])
			return s
		}
		if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
			s.JustPressed, s.Pressed = true, true
			s.X, s.Y = ebiten.CursorPosition()
		}
		return s
	}

	if dm.info.IsTouchInput {
		for _, id := range ebiten.AppendTouchIDs(nil) {
			if id == dm.info.TouchID {
				s.Pressed = true
				s.X, s.Y = ebiten.TouchPosition(id)
				break
			}
		}
		return s
	}
	s.Pressed = ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	s.X, s.Y = ebiten.CursorPosition()
	return s
}

// Advance 根据一帧输入推进状态
//
//	None/Ended --刚按下--> Started --按住--> Dragging --松开--> Ended --> None
//
// 触摸释放后读不到位置，结束帧沿用最后一次的位置。
func (dm *DragManager) Advance(s PointerSample) DragInfo {
	switch dm.info.State {
	case DragStateNone, DragStateEnded:
		if s.JustPressed {
			dm.info = DragInfo{
				State:        DragStateStarted,
				StartX:       s.X,
				StartY:       s.Y,
				CurrentX:     s.X,
				CurrentY:     s.Y,
				TouchID:      s.TouchID,
				IsTouchInput: s.TouchID >= 0,
			}
		} else {
			dm.Reset()
		}

	case DragStateStarted, DragStateDragging:
		if !s.Pressed {
			dm.info.State = DragStateEnded
			break
		}
		dm.info.State = DragStateDragging
		dm.info.CurrentX, dm.info.CurrentY = s.X, s.Y
	}
	return dm.info
}

// Reset 重置拖拽状态
func (dm *DragManager) Reset() {
	dm.info = DragInfo{
		State:   DragStateNone,
		TouchID: -1,
	}
}
