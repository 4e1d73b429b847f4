// Package anim 提供关键帧通道和全局时间线
//
// 每个可动画属性（位置、旋转、颜色、姿态索引）对应一个 Channel。
// Channel 按时间排序保存关键帧，在任意时间求值并把结果写回所驱动的字段。
// Timeline 是全局时钟：设置时间时同步驱动所有注册的对象。
package anim

import (
	"fmt"
	"sort"
)

// Keyframe 单个关键帧
//
// Time 为时间（秒），Value 的类型由所属通道决定。
// Ease 控制从本帧到下一帧之间的插值曲线。
type Keyframe[T any] struct {
	Time  float64
	Value T
	Ease  Ease
}

// Interpolator 连续值插值函数，f ∈ [0, 1)
type Interpolator[T any] func(a, b T, f float64) T

// LerpFloat 标量线性插值（用于旋转角度，单位弧度，不做角度回绕）
func LerpFloat(a, b, f float64) float64 {
	return a + f*(b-a)
}

// Track 通道的类型擦除视图
//
// Actor、Drawable 通过 Track 统一驱动不同值类型的通道。
type Track interface {
	// Name 通道名称，如 "position"、"rotation"
	Name() string
	// Len 关键帧数量
	Len() int
	// Apply 在 time 处求值并写回所驱动的字段（无关键帧时不写）
	Apply(time float64)
	// Commit 在 time 处用字段当前值设置关键帧
	Commit(time float64)
	// Delete 删除 time 处的关键帧，不存在时返回 false
	Delete(time float64) bool
	// SetEase 修改 time 处关键帧的缓动，不存在时返回 false
	SetEase(time float64, e Ease) bool
	// Times 所有关键帧时间（升序）
	Times() []float64
}

// Channel 单个属性的关键帧序列
//
// 不变量：
//   - keys 始终按 Time 升序
//   - 同一通道内 Time 不重复
//
// Channel 不拥有目标字段，只通过指针写回。
type Channel[T any] struct {
	name   string
	target *T
	lerp   Interpolator[T] // nil 表示离散属性（阶跃插值）
	keys   []Keyframe[T]

	// base 插入第一个关键帧之前字段的值；删除最后一个关键帧时恢复
	base T
}

// NewChannel 创建驱动 target 的通道
//
// 参数：
//   - name: 通道名称
//   - target: 被驱动的字段，不能为 nil
//   - lerp: 插值函数，nil 表示离散属性
//
// 没有目标字段的通道是集成错误，直接 panic。
func NewChannel[T any](name string, target *T, lerp Interpolator[T]) *Channel[T] {
	if target == nil {
		panic(fmt.Sprintf("anim: channel %q has no target", name))
	}
	return &Channel[T]{
		name:   name,
		target: target,
		lerp:   lerp,
		base:   *target,
	}
}

// Name 通道名称
func (c *Channel[T]) Name() string { return c.name }

// Len 关键帧数量
func (c *Channel[T]) Len() int { return len(c.keys) }

// Discrete 是否离散属性
func (c *Channel[T]) Discrete() bool { return c.lerp == nil }

// search 返回第一个 Time >= time 的下标
func (c *Channel[T]) search(time float64) int {
	return sort.Search(len(c.keys), func(i int) bool {
		return c.keys[i].Time >= time
	})
}

// SetKeyframe 在 time 处插入关键帧，已存在则覆盖值（保留原缓动）
func (c *Channel[T]) SetKeyframe(time float64, value T) {
	i := c.search(time)
	if i < len(c.keys) && c.keys[i].Time == time {
		c.keys[i].Value = value
		return
	}
	c.insert(i, Keyframe[T]{Time: time, Value: value, Ease: EaseLinear})
}

// SetKeyframeEase 在 time 处插入或覆盖关键帧，同时设置缓动
func (c *Channel[T]) SetKeyframeEase(time float64, value T, e Ease) {
	if e == "" {
		e = EaseLinear
	}
	i := c.search(time)
	if i < len(c.keys) && c.keys[i].Time == time {
		c.keys[i].Value = value
		c.keys[i].Ease = e
		return
	}
	c.insert(i, Keyframe[T]{Time: time, Value: value, Ease: e})
}

func (c *Channel[T]) insert(i int, k Keyframe[T]) {
	if len(c.keys) == 0 {
		c.base = *c.target
	}
	c.keys = append(c.keys, Keyframe[T]{})
	copy(c.keys[i+1:], c.keys[i:])
	c.keys[i] = k
}

// SetEase 修改 time 处关键帧的缓动，不存在时返回 false
func (c *Channel[T]) SetEase(time float64, e Ease) bool {
	i := c.search(time)
	if i >= len(c.keys) || c.keys[i].Time != time {
		return false
	}
	if e == "" {
		e = EaseLinear
	}
	c.keys[i].Ease = e
	return true
}

// DeleteKeyframe 删除 time 处的关键帧
//
// 不存在时为空操作。删除最后一个关键帧后字段恢复为插入第一帧前的值。
//
// 返回：
//   - bool: 是否删除了关键帧
func (c *Channel[T]) DeleteKeyframe(time float64) bool {
	i := c.search(time)
	if i >= len(c.keys) || c.keys[i].Time != time {
		return false
	}
	c.keys = append(c.keys[:i], c.keys[i+1:]...)
	if len(c.keys) == 0 {
		*c.target = c.base
	}
	return true
}

// Clear 删除全部关键帧并恢复字段
func (c *Channel[T]) Clear() {
	if len(c.keys) == 0 {
		return
	}
	c.keys = c.keys[:0]
	*c.target = c.base
}

// Keyframe 返回 time 处的关键帧
func (c *Channel[T]) Keyframe(time float64) (Keyframe[T], bool) {
	i := c.search(time)
	if i >= len(c.keys) || c.keys[i].Time != time {
		return Keyframe[T]{}, false
	}
	return c.keys[i], true
}

// Keyframes 返回关键帧副本（升序）
func (c *Channel[T]) Keyframes() []Keyframe[T] {
	out := make([]Keyframe[T], len(c.keys))
	copy(out, c.keys)
	return out
}

// Times 所有关键帧时间（升序）
func (c *Channel[T]) Times() []float64 {
	out := make([]float64, len(c.keys))
	for i, k := range c.keys {
		out[i] = k.Time
	}
	return out
}

// Evaluate 计算 time 处的值
//
// 规则：
//   - 无关键帧：返回字段当前值
//   - time <= 第一帧：返回第一帧的值
//   - time >= 最后一帧：返回最后一帧的值
//   - 其余：找到 k0.Time <= time < k1.Time，连续属性按缓动后的分数线性插值，
//     离散属性或 step 缓动返回 k0 的值
func (c *Channel[T]) Evaluate(time float64) T {
	n := len(c.keys)
	if n == 0 {
		return *c.target
	}
	if time <= c.keys[0].Time {
		return c.keys[0].Value
	}
	if time >= c.keys[n-1].Time {
		return c.keys[n-1].Value
	}

	// 第一个 Time > time 的下标即 k1
	i := sort.Search(n, func(i int) bool {
		return c.keys[i].Time > time
	})
	k0, k1 := c.keys[i-1], c.keys[i]
	if c.lerp == nil || k0.Ease.IsStep() {
		return k0.Value
	}

	f := (time - k0.Time) / (k1.Time - k0.Time)
	return c.lerp(k0.Value, k1.Value, k0.Ease.apply(f))
}

// Apply 求值并写回字段；无关键帧时字段保持不变
func (c *Channel[T]) Apply(time float64) {
	if len(c.keys) == 0 {
		return
	}
	*c.target = c.Evaluate(time)
}

// Commit 用字段当前值在 time 处设置关键帧
func (c *Channel[T]) Commit(time float64) {
	c.SetKeyframe(time, *c.target)
}

// Delete 实现 Track
func (c *Channel[T]) Delete(time float64) bool {
	return c.DeleteKeyframe(time)
}

// Base 插入第一个关键帧之前字段的值
func (c *Channel[T]) Base() T { return c.base }
