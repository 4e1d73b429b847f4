// Package app 提供编辑器应用的核心包装器
//
// 该包把画面、编辑状态机、存档和用户设置组装成一个 ebiten.Game，
// main.go 只负责解析参数、初始化嵌入资源并运行游戏循环。
package app

import (
	"fmt"
	"image/color"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/decker502/canadian/pkg/anim"
	"github.com/decker502/canadian/pkg/config"
	"github.com/decker502/canadian/pkg/editor"
	"github.com/decker502/canadian/pkg/entities"
	"github.com/decker502/canadian/pkg/persist"
	"github.com/decker502/canadian/pkg/picture"
	"github.com/decker502/canadian/pkg/utils"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/quasilyte/gdata/v2"
)

// 存储后端
const (
	StorageAuto  = ""      // 优先 gdata，不可用时退回本地目录
	StorageGdata = "gdata" // 只用 gdata
	StorageFile  = "file"  // 只用本地目录
)

// DefaultPictureName 新建画面的存档名
const DefaultPictureName = "untitled"

// DefaultReanimPath 默认画面中导入的 reanim 人物
const DefaultReanimPath = "data/reanim/Stickman.reanim"

// sunImages 默认画面中太阳的两个姿态
var sunImages = []string{"assets/images/sun.png", "assets/images/sun_bright.png"}

// tickDuration 每个 tick 的时长（ebiten 默认 60 TPS）
const tickDuration = 1.0 / 60.0

// Config 应用启动配置
type Config struct {
	// Verbose 启用详细日志输出
	Verbose bool
	// ConfigPath 编辑器配置文件，为空时使用嵌入的默认配置
	ConfigPath string
	// Open 启动时打开的画面：存档名或 .yaml/.gob 文件路径，为空时打开上次的画面
	Open string
	// Storage 存储后端：""（自动）、"gdata" 或 "file"
	Storage string
}

// App 编辑器应用，实现 ebiten.Game 接口
type App struct {
	cfg      *config.EditorConfig
	picture  *picture.Picture
	editor   *editor.Editor
	store    *persist.PictureStore
	settings *config.SettingsManager
	images   *entities.ImageLoader
	drag     *utils.DragManager

	name    string // 当前画面的存档名
	path    string // 从文件打开时的路径，保存时写回该文件
	playing bool

	observer    picture.ObserverHandle
	keyTimes    []float64 // HUD 时间轴上的关键帧刻度，画面变化时重新计算
	updates     int       // 收到的画面通知次数
	status      string
	statusTicks int

	pendingWindowSizeReset   bool
	windowSizeResetCountdown int
}

// NewApp 创建并初始化编辑器应用
//
// 调用此函数前，必须先调用 embedded.Init() 初始化嵌入资源。
func NewApp(cfg Config) (*App, error) {
	// 配置日志输出
	if !cfg.Verbose {
		log.SetOutput(io.Discard)
		log.SetFlags(0)
	}

	editorConfig, err := config.LoadEditorConfig(cfg.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("编辑器配置加载失败: %w", err)
	}

	var gdataManager *gdata.Manager
	if cfg.Storage != StorageFile {
		gdataManager, err = gdata.Open(gdata.Config{AppName: editorConfig.Storage.AppName})
		if err != nil {
			if cfg.Storage == StorageGdata {
				return nil, fmt.Errorf("gdata 初始化失败: %w", err)
			}
			log.Printf("[App] gdata unavailable, falling back to %s: %v", editorConfig.Storage.Dir, err)
			gdataManager = nil
		}
	}

	storage, err := openStorage(gdataManager, editorConfig.Storage.Dir)
	if err != nil {
		return nil, err
	}
	format, err := persist.ParseFormat(editorConfig.Storage.Format)
	if err != nil {
		return nil, err
	}

	a := &App{
		cfg:      editorConfig,
		store:    persist.NewPictureStore(storage, format),
		settings: config.NewSettingsManager(gdataManager),
		images:   entities.NewImageLoader("."),
		drag:     utils.NewDragManager(),
	}
	a.setupPicture()

	if err := a.open(cfg.Open); err != nil {
		return nil, err
	}

	a.observer = a.picture.AddObserver(a)
	a.UpdateObserver()

	if a.settings.Settings().Fullscreen {
		ebiten.SetFullscreen(true)
	}
	log.Printf("[App] Editing %q: %d actors, mode %s, keyframing %v",
		a.name, a.picture.ActorCount(), a.editor.Mode(), a.picture.Keyframing())
	return a, nil
}

// openStorage gdata 可用时使用 gdata，否则使用本地目录
func openStorage(m *gdata.Manager, dir string) (persist.Storage, error) {
	if m != nil {
		return persist.NewGdataStorage(m)
	}
	return persist.NewFileStorage(dir)
}

// setupPicture 按配置和用户设置创建画面与编辑器
func (a *App) setupPicture() {
	p := picture.NewPicture()
	p.SetSize(picture.Size{Width: a.cfg.Picture.Width, Height: a.cfg.Picture.Height})
	// 配置已经校验过，这里不会失败
	_ = p.Timeline().Configure(a.cfg.Timeline.FrameRate, a.cfg.Timeline.NumFrames)
	p.SetKeyframing(a.cfg.Editing.Keyframing || a.settings.Settings().Keyframing)
	p.SetKeyEase(anim.Ease(a.cfg.Editing.DefaultEase))

	ed := editor.NewEditor(p)
	ed.SetRotationScaling(a.cfg.Editing.RotationScaling)
	mode, err := editor.ParseMode(a.settings.Settings().Mode)
	if err != nil {
		mode, _ = editor.ParseMode(a.cfg.Editing.Mode)
	}
	ed.SetMode(mode)

	a.picture = p
	a.editor = ed
}

// open 打开画面
//
// 查找顺序：文件路径 → 存档名 → 上次打开的存档 → 新建默认画面。
func (a *App) open(target string) error {
	opts := a.loadOptions()

	if target != "" && filepath.Ext(target) != "" {
		if _, err := os.Stat(target); err == nil {
			if err := persist.LoadFile(target, a.picture, opts); err != nil {
				return err
			}
			a.path = target
			a.name = nameOf(target)
			return nil
		}
	}

	name := target
	if name == "" {
		name = a.settings.Settings().LastPicture
	}
	if name != "" && a.store.Exists(name) {
		if err := a.store.Load(name, a.picture, opts); err != nil {
			return err
		}
		a.name = nameOf(name)
		return nil
	}
	if target != "" {
		// 指定的名称不存在：用这个名称新建
		a.name = nameOf(target)
	} else {
		a.name = DefaultPictureName
	}
	return a.populate()
}

// nameOf 路径或存档名去掉目录和扩展名
func nameOf(target string) string {
	base := filepath.Base(target)
	return base[:len(base)-len(filepath.Ext(base))]
}

// populate 新建画面中的默认角色
func (a *App) populate() error {
	w, h := float64(a.cfg.Picture.Width), float64(a.cfg.Picture.Height)
	actors := []*picture.Actor{
		entities.NewOrchardActor(1, picture.Pt(w*0.8, h*0.85)),
		entities.NewHarold(picture.Pt(w*0.3, h*0.6)),
		entities.NewSparty(picture.Pt(w*0.55, h*0.6)),
	}
	if reanimActor, err := entities.LoadReanimActor(DefaultReanimPath, picture.Pt(w*0.15, h*0.35)); err == nil {
		actors = append(actors, reanimActor)
	} else {
		log.Printf("[App] Skipping reanim actor: %v", err)
	}
	if sun, err := entities.NewImageActor("Sun", a.images, picture.Pt(w*0.9, h*0.12), sunImages...); err == nil {
		actors = append(actors, sun)
	} else {
		log.Printf("[App] Skipping image actor: %v", err)
	}

	for _, actor := range actors {
		if err := a.picture.AddActor(actor); err != nil {
			return fmt.Errorf("failed to add actor %q: %w", actor.Name(), err)
		}
	}
	return nil
}

// loadOptions 加载存档时使用的图片加载器和树工厂
func (a *App) loadOptions() picture.LoadOptions {
	return picture.LoadOptions{Images: a.images, Trees: entities.Orchard{}}
}

// UpdateObserver 实现 picture.Observer
func (a *App) UpdateObserver() {
	a.updates++
	a.keyTimes = keyframeTimes(a.picture)
}

// Picture 当前画面
func (a *App) Picture() *picture.Picture { return a.picture }

// Editor 编辑状态机
func (a *App) Editor() *editor.Editor { return a.editor }

// Name 当前画面的存档名
func (a *App) Name() string { return a.name }

// Playing 是否正在播放
func (a *App) Playing() bool { return a.playing }

// Status 最近一条状态提示
func (a *App) Status() string { return a.status }

// setStatus 在 HUD 上显示一条提示（约 2 秒）
func (a *App) setStatus(format string, args ...any) {
	a.status = fmt.Sprintf(format, args...)
	a.statusTicks = 120
	log.Printf("[App] %s", a.status)
}

// StepFrame 按帧移动当前时间，超出范围时钳制
func (a *App) StepFrame(delta int) {
	tl := a.picture.Timeline()
	frame := max(0, min(tl.NumFrames(), tl.CurrentFrame()+delta))
	_ = a.picture.SetAnimationTime(tl.TimeOf(frame))
}

// Rewind 回到第 0 帧
func (a *App) Rewind() {
	_ = a.picture.SetAnimationTime(0)
}

// TogglePlay 开始或暂停播放
func (a *App) TogglePlay() {
	a.playing = !a.playing
	if a.playing {
		a.editor.Release()
		a.drag.Reset()
	}
}

// Tick 播放时推进 dt 秒，到达结尾后从头循环
func (a *App) Tick(dt float64) {
	if !a.playing {
		return
	}
	tl := a.picture.Timeline()
	_ = a.picture.SetAnimationTime(advance(tl.CurrentTime(), dt, tl.Duration()))
}

// advance 播放推进后的时间，到达结尾回到 0
func advance(current, dt, duration float64) float64 {
	next := current + dt
	if duration <= 0 || next >= duration {
		return 0
	}
	return next
}

// ToggleKeyframing 切换关键帧模式并记住设置
func (a *App) ToggleKeyframing() {
	on := !a.picture.Keyframing()
	a.picture.SetKeyframing(on)
	a.settings.SetKeyframing(on)
	a.setStatus("Keyframing %v", on)
}

// SetMode 切换编辑模式并记住设置
func (a *App) SetMode(m editor.Mode) {
	a.editor.SetMode(m)
	a.settings.SetMode(m.String())
}

// CycleEase 切换新关键帧使用的缓动
func (a *App) CycleEase() {
	eases := anim.Eases()
	cur := a.picture.KeyEase()
	next := eases[0]
	for i, e := range eases {
		if e == cur {
			next = eases[(i+1)%len(eases)]
			break
		}
	}
	a.picture.SetKeyEase(next)
	a.setStatus("Key ease: %s", next)
}

// Save 保存当前画面并记住画面名称
func (a *App) Save() error {
	var err error
	if a.path != "" {
		err = persist.SaveFile(a.path, a.picture)
	} else {
		err = a.store.Save(a.name, a.picture)
	}
	if err != nil {
		a.setStatus("Save failed: %v", err)
		return err
	}
	a.settings.SetLastPicture(a.name)
	if err := a.settings.Save(); err != nil {
		log.Printf("[App] Failed to save settings: %v", err)
	}
	a.setStatus("Saved %s", a.name)
	return nil
}

// Shutdown 退出前保存用户设置并注销观察者
func (a *App) Shutdown() error {
	a.picture.RemoveObserver(a.observer)
	a.settings.SetFullscreen(ebiten.IsFullscreen())
	return a.settings.Save()
}

// Update 更新编辑器状态
// 每个 tick 调用一次（通常每秒 60 次）
func (a *App) Update() error {
	// 延迟设置窗口大小（退出全屏后需要等待几帧才能正确设置）
	if a.pendingWindowSizeReset {
		a.windowSizeResetCountdown--
		if a.windowSizeResetCountdown <= 0 {
			ebiten.SetWindowSize(a.cfg.Picture.Width, a.cfg.Picture.Height)
			log.Printf("[App] Delayed SetWindowSize(%d, %d)", a.cfg.Picture.Width, a.cfg.Picture.Height)
			a.pendingWindowSizeReset = false
		}
	}

	a.handleKeyboard()
	if !a.playing {
		a.handlePointer()
	}
	a.Tick(tickDuration)

	if a.statusTicks > 0 {
		a.statusTicks--
		if a.statusTicks == 0 {
			a.status = ""
		}
	}
	return nil
}

// toggleFullscreen F11 切换全屏
func (a *App) toggleFullscreen() {
	if ebiten.IsFullscreen() {
		// 退出全屏
		ebiten.SetFullscreen(false)
		if ebiten.IsWindowMaximized() || ebiten.IsWindowMinimized() {
			ebiten.RestoreWindow()
		}
		// 延迟几帧后设置窗口大小，让窗口管理器有时间处理
		a.pendingWindowSizeReset = true
		a.windowSizeResetCountdown = 3
		log.Printf("[App] Exit fullscreen, will reset window size in 3 frames")
	} else {
		ebiten.SetFullscreen(true)
	}
}

// Draw 绘制画面和 HUD
func (a *App) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{R: 0xf4, G: 0xf1, B: 0xe6, A: 0xff})
	a.picture.Draw(screen)
	a.drawHUD(screen)
}

// DrawFinalScreen 实现 FinalScreenDrawer 接口
// 用于控制全屏时的缩放和 letterbox 颜色
func (a *App) DrawFinalScreen(screen ebiten.FinalScreen, offscreen *ebiten.Image, geoM ebiten.GeoM) {
	screen.Fill(color.Black)
	op := &ebiten.DrawImageOptions{}
	op.GeoM = geoM
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(offscreen, op)
}

// Layout 返回画面的逻辑尺寸
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return a.cfg.Picture.Width, a.cfg.Picture.Height
}

// WindowSize 初始窗口尺寸
func (a *App) WindowSize() (int, int) {
	return a.cfg.Picture.Width, a.cfg.Picture.Height
}
