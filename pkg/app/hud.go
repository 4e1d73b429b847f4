package app

import (
	"fmt"
	"image/color"
	"slices"

	"github.com/decker502/canadian/pkg/picture"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// HUD 布局
const (
	hudBarHeight  = 14
	hudBarMargin  = 10
	hudLineHeight = 16
)

var (
	hudBarColor    = color.RGBA{R: 0x30, G: 0x30, B: 0x30, A: 0xc0}
	hudCursorColor = color.RGBA{R: 0xe0, G: 0x40, B: 0x30, A: 0xff}
	hudKeyColor    = color.RGBA{R: 0xf0, G: 0xd0, B: 0x40, A: 0xff}
)

var helpLines = []string{
	"M/R: move/rotate   drag: edit pose",
	"Left/Right: frame  Home: start  Space: play",
	"K: set key  Del: delete key  A: keyframing  E: ease",
	"Ctrl+S: save  H: help  F11: fullscreen",
}

// keyframeTimes 画面中所有通道的关键帧时间（升序去重）
func keyframeTimes(p *picture.Picture) []float64 {
	var times []float64
	for a := range p.Actors() {
		for _, t := range a.Tracks() {
			times = append(times, t.Times()...)
		}
	}
	slices.Sort(times)
	return slices.Compact(times)
}

// statusLine HUD 第一行：画面名称、帧号、模式
func (a *App) statusLine() string {
	tl := a.picture.Timeline()
	state := "paused"
	if a.playing {
		state = "playing"
	}
	key := ""
	if a.picture.Keyframing() {
		key = "  [KEY " + string(a.picture.KeyEase()) + "]"
	}
	return fmt.Sprintf("%s  frame %d/%d  %.2fs  %s  %s%s",
		a.name, tl.CurrentFrame(), tl.NumFrames(), tl.CurrentTime(), a.editor.Mode(), state, key)
}

// selectionLine 当前选中的角色和部件
func (a *App) selectionLine() string {
	actor, d := a.editor.Selection()
	if actor == nil {
		return ""
	}
	if d == nil {
		return "selected: " + actor.Name()
	}
	return fmt.Sprintf("selected: %s/%s", actor.Name(), d.Base().Name())
}

// drawHUD 绘制文字信息和时间轴
func (a *App) drawHUD(screen *ebiten.Image) {
	y := 4
	ebitenutil.DebugPrintAt(screen, a.statusLine(), 4, y)
	y += hudLineHeight
	if s := a.selectionLine(); s != "" {
		ebitenutil.DebugPrintAt(screen, s, 4, y)
		y += hudLineHeight
	}
	if a.status != "" {
		ebitenutil.DebugPrintAt(screen, a.status, 4, y)
		y += hudLineHeight
	}
	if a.settings.Settings().ShowHelp {
		for _, line := range helpLines {
			ebitenutil.DebugPrintAt(screen, line, 4, y)
			y += hudLineHeight
		}
	}

	a.drawTimeline(screen)
}

// drawTimeline 底部时间轴：关键帧刻度和当前时间游标
func (a *App) drawTimeline(screen *ebiten.Image) {
	w, h := screen.Bounds().Dx(), screen.Bounds().Dy()
	x0 := float32(hudBarMargin)
	width := float32(w - 2*hudBarMargin)
	y0 := float32(h - hudBarMargin - hudBarHeight)

	vector.DrawFilledRect(screen, x0, y0, width, hudBarHeight, hudBarColor, false)

	duration := a.picture.Timeline().Duration()
	if duration <= 0 {
		return
	}
	xOf := func(t float64) float32 {
		return x0 + width*float32(t/duration)
	}
	for _, t := range a.keyTimes {
		vector.DrawFilledRect(screen, xOf(t)-1, y0+3, 3, hudBarHeight-6, hudKeyColor, false)
	}
	cx := xOf(a.picture.AnimationTime())
	vector.StrokeLine(screen, cx, y0-4, cx, y0+hudBarHeight+4, 2, hudCursorColor, true)
}
