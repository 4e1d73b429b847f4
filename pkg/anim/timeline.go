package anim

import (
	"errors"
	"fmt"
	"math"
)

// 时间线默认值
const (
	DefaultFrameRate = 30.0
	DefaultNumFrames = 300
)

var (
	// ErrInvalidTime 时间为 NaN 或无穷大
	ErrInvalidTime = errors.New("invalid animation time")
	// ErrInvalidDuration 帧率或帧数非法（NaN、非正数）
	ErrInvalidDuration = errors.New("invalid timeline duration")
)

// Subject 受时间线驱动的对象（通常是 Actor）
type Subject interface {
	SetAnimationTime(time float64)
}

// Timeline 全局时钟
//
// 不变量：
//   - current 始终位于 [0, Duration()]
//   - SetCurrentTime 返回前所有 Subject 都已用同一个时间求值
type Timeline struct {
	frameRate float64
	numFrames int
	current   float64
	subjects  []Subject
}

// NewTimeline 创建默认时间线（30 fps，300 帧）
func NewTimeline() *Timeline {
	return &Timeline{
		frameRate: DefaultFrameRate,
		numFrames: DefaultNumFrames,
	}
}

// FrameRate 帧率
func (t *Timeline) FrameRate() float64 { return t.frameRate }

// NumFrames 帧数
func (t *Timeline) NumFrames() int { return t.numFrames }

// Duration 总时长（秒）
func (t *Timeline) Duration() float64 {
	return float64(t.numFrames) / t.frameRate
}

// CurrentTime 当前时间（秒）
func (t *Timeline) CurrentTime() float64 { return t.current }

// CurrentFrame 当前帧号
func (t *Timeline) CurrentFrame() int {
	return t.FrameAt(t.current)
}

// FrameAt 时间对应的帧号（向下取整，容忍浮点误差）
func (t *Timeline) FrameAt(time float64) int {
	return int(math.Floor(time*t.frameRate + 1e-9))
}

// TimeOf 帧号对应的时间
func (t *Timeline) TimeOf(frame int) float64 {
	return float64(frame) / t.frameRate
}

// Register 注册受驱动对象，重复注册被忽略
func (t *Timeline) Register(s Subject) {
	for _, existing := range t.subjects {
		if existing == s {
			return
		}
	}
	t.subjects = append(t.subjects, s)
}

// Unregister 取消注册
func (t *Timeline) Unregister(s Subject) {
	for i, existing := range t.subjects {
		if existing == s {
			t.subjects = append(t.subjects[:i], t.subjects[i+1:]...)
			return
		}
	}
}

// Subjects 已注册对象数量
func (t *Timeline) Subjects() int { return len(t.subjects) }

// SetCurrentTime 设置当前时间并同步所有受驱动对象
//
// 越界时间被钳制到 [0, Duration()]，不会报错。
//
// 返回：
//   - error: time 为 NaN/Inf 时返回 ErrInvalidTime，此时状态不变
func (t *Timeline) SetCurrentTime(time float64) error {
	if math.IsNaN(time) || math.IsInf(time, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidTime, time)
	}
	t.current = t.clamp(time)
	for _, s := range t.subjects {
		s.SetAnimationTime(t.current)
	}
	return nil
}

// SetCurrentFrame 按帧号设置当前时间
func (t *Timeline) SetCurrentFrame(frame int) error {
	return t.SetCurrentTime(t.TimeOf(frame))
}

func (t *Timeline) clamp(time float64) float64 {
	if time < 0 {
		return 0
	}
	if d := t.Duration(); time > d {
		return d
	}
	return time
}

// SetFrameRate 设置帧率并重新钳制当前时间
func (t *Timeline) SetFrameRate(fps float64) error {
	if math.IsNaN(fps) || math.IsInf(fps, 0) || fps <= 0 {
		return fmt.Errorf("%w: frame rate %v", ErrInvalidDuration, fps)
	}
	t.frameRate = fps
	return t.SetCurrentTime(t.current)
}

// SetNumFrames 设置帧数并重新钳制当前时间
func (t *Timeline) SetNumFrames(n int) error {
	if n <= 0 {
		return fmt.Errorf("%w: frame count %d", ErrInvalidDuration, n)
	}
	t.numFrames = n
	return t.SetCurrentTime(t.current)
}

// SetDuration 按秒设置时长（向上取整到整帧）
func (t *Timeline) SetDuration(seconds float64) error {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds <= 0 {
		return fmt.Errorf("%w: duration %v", ErrInvalidDuration, seconds)
	}
	return t.SetNumFrames(int(math.Ceil(seconds*t.frameRate - 1e-9)))
}

// Configure 同时设置帧率和帧数，任一非法则都不修改
func (t *Timeline) Configure(fps float64, numFrames int) error {
	if math.IsNaN(fps) || math.IsInf(fps, 0) || fps <= 0 {
		return fmt.Errorf("%w: frame rate %v", ErrInvalidDuration, fps)
	}
	if numFrames <= 0 {
		return fmt.Errorf("%w: frame count %d", ErrInvalidDuration, numFrames)
	}
	t.frameRate = fps
	t.numFrames = numFrames
	return t.SetCurrentTime(t.current)
}
