package anim

import (
	"fmt"
	"sort"

	"github.com/fogleman/ease"
)

// Ease 关键帧缓动名称
//
// 作用于以该关键帧为起点的区间 [k0, k1)。
// 空字符串等价于 EaseLinear。
type Ease string

// 支持的缓动名称
const (
	EaseLinear     Ease = "linear"
	EaseStep       Ease = "step" // 保持 k0 的值直到 k1（不混合）
	EaseInQuad     Ease = "in-quad"
	EaseOutQuad    Ease = "out-quad"
	EaseInOutQuad  Ease = "in-out-quad"
	EaseInCubic    Ease = "in-cubic"
	EaseOutCubic   Ease = "out-cubic"
	EaseInOutCubic Ease = "in-out-cubic"
	EaseInOutSine  Ease = "in-out-sine"
	EaseOutBack    Ease = "out-back"
	EaseOutBounce  Ease = "out-bounce"
)

var easeFuncs = map[Ease]func(float64) float64{
	EaseLinear:     ease.Linear,
	EaseInQuad:     ease.InQuad,
	EaseOutQuad:    ease.OutQuad,
	EaseInOutQuad:  ease.InOutQuad,
	EaseInCubic:    ease.InCubic,
	EaseOutCubic:   ease.OutCubic,
	EaseInOutCubic: ease.InOutCubic,
	EaseInOutSine:  ease.InOutSine,
	EaseOutBack:    ease.OutBack,
	EaseOutBounce:  ease.OutBounce,
}

// ParseEase 校验缓动名称
//
// 返回：
//   - Ease: 规范化后的名称（空字符串 → EaseLinear）
//   - error: 未知名称
func ParseEase(name string) (Ease, error) {
	e := Ease(name)
	if e == "" {
		return EaseLinear, nil
	}
	if e == EaseStep {
		return e, nil
	}
	if _, ok := easeFuncs[e]; !ok {
		return "", fmt.Errorf("unknown ease %q", name)
	}
	return e, nil
}

// Eases 返回所有可用的缓动名称（已排序）
func Eases() []Ease {
	names := make([]Ease, 0, len(easeFuncs)+1)
	for name := range easeFuncs {
		names = append(names, name)
	}
	names = append(names, EaseStep)
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// IsStep 该区间是否保持起点值
func (e Ease) IsStep() bool {
	return e == EaseStep
}

// apply 对插值分数应用缓动曲线
func (e Ease) apply(f float64) float64 {
	if fn, ok := easeFuncs[e]; ok {
		return fn(f)
	}
	return f
}
