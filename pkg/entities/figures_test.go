package entities

import (
	"testing"

	"github.com/decker502/canadian/pkg/picture"
)

// drawableNames 按绘制顺序返回部件名称
func drawableNames(a *picture.Actor) []string {
	var names []string
	for d := range a.Drawables() {
		names = append(names, d.Base().Name())
	}
	return names
}

// TestNewHarold 测试 Harold 的部件树
func TestNewHarold(t *testing.T) {
	a := NewHarold(picture.Pt(400, 300))

	if err := a.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	want := []string{"torso", "leg_left", "leg_right", "arm_left", "arm_right", "head"}
	got := drawableNames(a)
	if len(got) != len(want) {
		t.Fatalf("Expected %d drawables, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Drawable %d: got %q, want %q", i, got[i], want[i])
		}
	}

	head, _ := a.Drawable("head")
	if !head.Base().IsMovable() {
		t.Error("Expected head to be movable")
	}
	arm, _ := a.Drawable("arm_left")
	if arm.Base().IsMovable() {
		t.Error("Expected arm to be rotate-only")
	}
	if arm.Base().Parent() != a.Root().Base() {
		t.Error("Expected arm to hang on the torso")
	}

	// 躯干中心
	if d := a.HitTest(picture.Pt(400, 280)); d == nil || d.Base().Name() != "torso" {
		t.Errorf("Expected torso hit, got %v", d)
	}
	// 头顶
	if d := a.HitTest(picture.Pt(400, 225)); d == nil || d.Base().Name() != "head" {
		t.Errorf("Expected head hit, got %v", d)
	}
	if d := a.HitTest(picture.Pt(100, 100)); d != nil {
		t.Errorf("Expected miss, got %q", d.Base().Name())
	}
}

// TestNewSparty 测试羽饰跟随头部
func TestNewSparty(t *testing.T) {
	a := NewSparty(picture.Pt(200, 300))
	if err := a.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if a.DrawableCount() != 7 {
		t.Errorf("Expected 7 drawables, got %d", a.DrawableCount())
	}

	head, _ := a.Drawable("head")
	plume, _ := a.Drawable("plume")
	if plume.Base().Parent() != head.Base() {
		t.Fatal("Expected plume to hang on the head")
	}

	before := plume.Base().PlacedPosition()
	head.Base().Move(picture.Pt(5, 0))
	after := plume.Base().PlacedPosition()
	if !pointNear(after, before.Add(picture.Pt(5, 0))) {
		t.Errorf("Plume did not follow head: %v -> %v", before, after)
	}
}

// TestFiguresAnimate 测试人物加入画面后可以打关键帧
func TestFiguresAnimate(t *testing.T) {
	p := picture.NewPicture()
	harold := NewHarold(picture.Pt(300, 300))
	if err := p.AddActor(harold); err != nil {
		t.Fatalf("AddActor failed: %v", err)
	}

	arm, _ := harold.Drawable("arm_right")
	p.SetKeyframe()
	if err := p.SetAnimationTime(1); err != nil {
		t.Fatalf("SetAnimationTime failed: %v", err)
	}
	arm.Base().SetRotation(1)
	p.SetKeyframe()

	if err := p.SetAnimationTime(0.5); err != nil {
		t.Fatalf("SetAnimationTime failed: %v", err)
	}
	if r := arm.Base().Rotation(); r < 0.49 || r > 0.51 {
		t.Errorf("Expected rotation 0.5 halfway, got %v", r)
	}
}
