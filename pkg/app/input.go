package app

import (
	"github.com/decker502/canadian/pkg/editor"
	"github.com/decker502/canadian/pkg/picture"
	"github.com/decker502/canadian/pkg/utils"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// handlePointer 把鼠标或触摸拖拽转发给编辑状态机
func (a *App) handlePointer() {
	a.applyDrag(a.drag.Update())
}

// applyDrag 按拖拽状态驱动编辑器
//
// 开始时做点击检测；拖动中移动选中的部件；结束时提交编辑。
func (a *App) applyDrag(info utils.DragInfo) {
	pt := picture.Pt(float64(info.CurrentX), float64(info.CurrentY))

	switch info.State {
	case utils.DragStateStarted:
		a.editor.Press(pt)
	case utils.DragStateDragging:
		if a.editor.State() != editor.StateIdle {
			a.editor.Move(pt, true)
		}
	case utils.DragStateEnded:
		a.editor.Release()
	}
}

// handleKeyboard 键盘命令
//
//	M / R          移动 / 旋转模式
//	← / →          上一帧 / 下一帧
//	Home           回到第 0 帧
//	Space          播放 / 暂停
//	K              在当前时间设置关键帧
//	Delete         删除当前时间的关键帧
//	A              切换关键帧模式
//	E              切换新关键帧的缓动
//	Ctrl+S         保存
//	H              显示 / 隐藏帮助
//	F11            全屏
func (a *App) handleKeyboard() {
	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		a.toggleFullscreen()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		a.TogglePlay()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyH) {
		a.settings.SetShowHelp(!a.settings.Settings().ShowHelp)
	}

	ctrl := ebiten.IsKeyPressed(ebiten.KeyControl) || ebiten.IsKeyPressed(ebiten.KeyMeta)
	if ctrl && inpututil.IsKeyJustPressed(ebiten.KeyS) {
		_ = a.Save()
		return
	}

	// 播放中只响应播放控制
	if a.playing {
		return
	}

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyM):
		a.SetMode(editor.ModeMove)
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		a.SetMode(editor.ModeRotate)
	case repeating(ebiten.KeyArrowRight):
		a.StepFrame(1)
	case repeating(ebiten.KeyArrowLeft):
		a.StepFrame(-1)
	case inpututil.IsKeyJustPressed(ebiten.KeyHome):
		a.Rewind()
	case inpututil.IsKeyJustPressed(ebiten.KeyK):
		a.picture.SetKeyframe()
	case inpututil.IsKeyJustPressed(ebiten.KeyDelete), inpututil.IsKeyJustPressed(ebiten.KeyBackspace):
		a.picture.DeleteKeyframe()
	case inpututil.IsKeyJustPressed(ebiten.KeyA):
		a.ToggleKeyframing()
	case inpututil.IsKeyJustPressed(ebiten.KeyE):
		a.CycleEase()
	}
}

// repeating 按下时触发一次，按住超过 0.5 秒后每 3 个 tick 触发一次
func repeating(key ebiten.Key) bool {
	d := inpututil.KeyPressDuration(key)
	return d == 1 || (d >= 30 && d%3 == 0)
}
