package editor

import (
	"math"
	"testing"

	"github.com/decker502/canadian/pkg/picture"
	"github.com/lucasb-eyer/go-colorful"
)

// counter 统计观察者通知次数
type counter struct{ n int }

func (c *counter) UpdateObserver() { c.n++ }

func square(name string, half float64) *picture.PolyDrawable {
	d := picture.NewPolyDrawable(name, colorful.Color{R: 0.2, G: 0.4, B: 0.8})
	d.SetPoints([]picture.Point{
		picture.Pt(-half, -half), picture.Pt(half, -half),
		picture.Pt(half, half), picture.Pt(-half, half),
	})
	return d
}

// setup 画面中放一个角色：身体（不可移动）+ 手（可移动，位于身体右侧）
func setup(t *testing.T) (*picture.Picture, *picture.Actor, *picture.PolyDrawable, *picture.PolyDrawable, *counter) {
	t.Helper()
	p := picture.NewPicture()
	a := picture.NewActor("harold")
	body := square("body", 20)
	hand := square("hand", 5)
	hand.SetMovable(true)
	hand.SetPosition(picture.Pt(40, 0))
	if err := a.SetRoot(body); err != nil {
		t.Fatalf("SetRoot failed: %v", err)
	}
	if err := a.Attach(body, hand); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}
	a.SetPosition(picture.Pt(100, 100))
	if err := p.AddActor(a); err != nil {
		t.Fatalf("AddActor failed: %v", err)
	}
	c := &counter{}
	p.AddObserver(c)
	return p, a, body, hand, c
}

// TestEditor_PressSelects 测试按下命中进入 Selected
func TestEditor_PressSelects(t *testing.T) {
	p, a, body, _, c := setup(t)
	e := NewEditor(p)

	if !e.Press(picture.Pt(100, 100)) {
		t.Fatal("Expected press on body to hit")
	}
	if e.State() != StateSelected {
		t.Errorf("Expected StateSelected, got %s", e.State())
	}
	actor, d := e.Selection()
	if actor != a || d != picture.Drawable(body) {
		t.Errorf("Expected harold/body selected, got %v %v", actor, d)
	}
	if c.n != 0 {
		t.Errorf("Expected press not to notify, got %d", c.n)
	}

	if e.Press(picture.Pt(500, 500)) {
		t.Error("Expected press on empty space to miss")
	}
	if e.State() != StateIdle {
		t.Errorf("Expected StateIdle after miss, got %s", e.State())
	}
}

// TestEditor_DragMovesActor 测试拖动不可移动部件时平移整个角色
func TestEditor_DragMovesActor(t *testing.T) {
	p, a, _, hand, c := setup(t)
	e := NewEditor(p)

	e.Press(picture.Pt(100, 100))
	e.Move(picture.Pt(110, 95), true)
	e.Move(picture.Pt(120, 90), true)

	if e.State() != StateDragging {
		t.Errorf("Expected StateDragging, got %s", e.State())
	}
	if a.Position() != picture.Pt(120, 90) {
		t.Errorf("Expected actor at (120,90), got %v", a.Position())
	}
	if hand.PlacedPosition() != picture.Pt(160, 90) {
		t.Errorf("Expected hand to follow actor to (160,90), got %v", hand.PlacedPosition())
	}
	if c.n != 2 {
		t.Errorf("Expected one notification per move event, got %d", c.n)
	}
}

// TestEditor_DragMovesMovableDrawable 测试拖动可移动部件只移动部件本身
func TestEditor_DragMovesMovableDrawable(t *testing.T) {
	p, a, _, hand, _ := setup(t)
	e := NewEditor(p)

	if !e.Press(picture.Pt(140, 100)) {
		t.Fatal("Expected press on hand to hit")
	}
	if _, d := e.Selection(); d != picture.Drawable(hand) {
		t.Fatalf("Expected hand selected, got %v", d)
	}
	e.Move(picture.Pt(150, 110), true)

	if a.Position() != picture.Pt(100, 100) {
		t.Errorf("Expected actor unchanged, got %v", a.Position())
	}
	if hand.Position() != picture.Pt(50, 10) {
		t.Errorf("Expected hand local position (50,10), got %v", hand.Position())
	}
}

// TestEditor_DragRotates 测试旋转模式按竖直位移旋转选中部件
func TestEditor_DragRotates(t *testing.T) {
	p, a, body, _, c := setup(t)
	e := NewEditor(p)
	e.SetMode(ModeRotate)

	e.Press(picture.Pt(100, 100))
	e.Move(picture.Pt(130, 150), true)

	if want := 50 * RotationScaling; math.Abs(body.Rotation()-want) > 1e-12 {
		t.Errorf("Expected rotation %v, got %v", want, body.Rotation())
	}
	if a.Position() != picture.Pt(100, 100) {
		t.Errorf("Expected actor not moved in rotate mode, got %v", a.Position())
	}
	if c.n != 1 {
		t.Errorf("Expected 1 notification, got %d", c.n)
	}
}

// TestEditor_ReleaseClears 测试松开或未按住移动时清除选择
func TestEditor_ReleaseClears(t *testing.T) {
	p, a, _, _, c := setup(t)
	e := NewEditor(p)

	e.Press(picture.Pt(100, 100))
	e.Release()
	if actor, d := e.Selection(); actor != nil || d != nil || e.State() != StateIdle {
		t.Error("Expected selection cleared on release")
	}

	e.Press(picture.Pt(100, 100))
	e.Move(picture.Pt(150, 150), false)
	if e.State() != StateIdle {
		t.Errorf("Expected StateIdle after move without button, got %s", e.State())
	}
	if a.Position() != picture.Pt(100, 100) || c.n != 0 {
		t.Error("Expected no edit without held button")
	}
}

// TestEditor_StaleSelection 测试选中的角色被移出画面后不再编辑
func TestEditor_StaleSelection(t *testing.T) {
	p, a, _, _, c := setup(t)
	e := NewEditor(p)

	e.Press(picture.Pt(100, 100))
	p.RemoveActor(a)
	e.Move(picture.Pt(120, 120), true)

	if e.State() != StateIdle {
		t.Errorf("Expected StateIdle for removed actor, got %s", e.State())
	}
	if a.Position() != picture.Pt(100, 100) || c.n != 0 {
		t.Error("Expected removed actor not edited")
	}
}

// TestEditor_KeyframingDrag 测试关键帧模式下拖动提交关键帧
func TestEditor_KeyframingDrag(t *testing.T) {
	p, a, _, _, _ := setup(t)
	p.SetKeyframing(true)
	_ = p.SetAnimationTime(1)
	e := NewEditor(p)

	e.Press(picture.Pt(100, 100))
	e.Move(picture.Pt(110, 100), true)

	k, ok := a.PositionChannel().Keyframe(1)
	if !ok {
		t.Fatal("Expected position keyframe at 1s")
	}
	if k.Value != picture.Pt(110, 100) {
		t.Errorf("Expected keyframe value (110,100), got %v", k.Value)
	}
}

// TestParseMode 测试模式名称解析
func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"", ModeMove, false},
		{"move", ModeMove, false},
		{"rotate", ModeRotate, false},
		{"scale", ModeMove, true},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseMode(%q) = %v, %v", tt.in, got, err)
		}
	}
	if ModeRotate.String() != "rotate" {
		t.Errorf("Expected rotate, got %s", ModeRotate)
	}
}
