package picture

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"reflect"
	"testing"

	"github.com/decker502/canadian/pkg/anim"
	"github.com/lucasb-eyer/go-colorful"
)

// mapImageLoader 按路径返回内存图片
type mapImageLoader map[string]image.Image

func (m mapImageLoader) LoadImage(path string) (image.Image, error) {
	img, ok := m[path]
	if !ok {
		return nil, fmt.Errorf("no image %q", path)
	}
	return img, nil
}

func testImages() mapImageLoader {
	open := image.NewRGBA(image.Rect(0, 0, 2, 2))
	open.Set(0, 0, color.White)
	return mapImageLoader{
		"face/open.png":   open,
		"face/closed.png": image.NewRGBA(image.Rect(0, 0, 2, 2)),
	}
}

// buildScene 构造包含全部部件类型和关键帧的画面
func buildScene(t *testing.T) *Picture {
	t.Helper()
	p := NewPicture()
	p.SetSize(Size{Width: 1024, Height: 768})
	if err := p.Timeline().Configure(24, 240); err != nil {
		t.Fatalf("Configure failed: %v", err)
	}

	harold := NewActor("harold")
	body := newSquare("body", 20)
	arm := newSquare("arm", 4)
	arm.SetMovable(true)
	arm.position = Pt(20, -5)
	if err := harold.SetRoot(body); err != nil {
		t.Fatalf("SetRoot failed: %v", err)
	}
	if err := harold.Attach(body, arm); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}
	harold.SetPosition(Pt(200, 300))
	harold.PositionChannel().SetKeyframe(0, Pt(200, 300))
	harold.PositionChannel().SetKeyframeEase(2.5, Pt(400, 300), anim.EaseInOutQuad)
	arm.RotationChannel().SetKeyframe(0, 0)
	arm.RotationChannel().SetKeyframeEase(1.25, 0.75, anim.EaseStep)
	arm.PositionChannel().SetKeyframe(1, Pt(22, -3))
	body.ColorChannel().SetKeyframe(0.5, colorful.Color{R: 0.1, G: 0.2, B: 0.3})

	images := testImages()
	face := NewImageDrawable("face", Pt(1, 1),
		ImageFrame{Path: "face/open.png", Image: images["face/open.png"]},
		ImageFrame{Path: "face/closed.png", Image: images["face/closed.png"]},
	)
	face.IndexChannel().SetKeyframe(0, 0)
	face.IndexChannel().SetKeyframe(3, 1)
	sprite := NewActor("sprite")
	sprite.SetClickable(false)
	if err := sprite.SetRoot(face); err != nil {
		t.Fatalf("SetRoot failed: %v", err)
	}

	tree := &fakeTree{}
	tree.SetSeed(1234)
	orchard := NewActor("orchard")
	orchard.SetEnabled(false)
	trunk := NewTreeAdapter("tree", tree)
	if err := orchard.SetRoot(trunk); err != nil {
		t.Fatalf("SetRoot failed: %v", err)
	}
	if err := orchard.Attach(trunk, NewBasketAdapter("basket", &fakeBasket{})); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}

	for _, a := range []*Actor{harold, sprite, orchard} {
		if err := p.AddActor(a); err != nil {
			t.Fatalf("AddActor failed: %v", err)
		}
	}
	return p
}

func loadOptions() LoadOptions {
	return LoadOptions{Images: testImages(), Trees: fakeTreeFactory{}}
}

// TestDocument_RoundTrip 测试保存后加载再保存得到相同文档
func TestDocument_RoundTrip(t *testing.T) {
	src := buildScene(t)
	_ = src.SetAnimationTime(1.7)
	doc := src.Save()

	dst := NewPicture()
	obs := &countingObserver{}
	dst.AddObserver(obs)
	if err := dst.Load(doc, loadOptions()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if obs.count != 1 {
		t.Errorf("Expected 1 notification from Load, got %d", obs.count)
	}
	if dst.AnimationTime() != 0 {
		t.Errorf("Expected time 0 after Load, got %v", dst.AnimationTime())
	}
	if dst.ID() != src.ID() {
		t.Errorf("Expected id %v, got %v", src.ID(), dst.ID())
	}
	if dst.Timeline().FrameRate() != 24 || dst.Timeline().NumFrames() != 240 {
		t.Errorf("Expected timeline 24fps/240, got %v/%d", dst.Timeline().FrameRate(), dst.Timeline().NumFrames())
	}

	again := dst.Save()
	if !reflect.DeepEqual(doc, again) {
		t.Errorf("Round trip mismatch:\nsaved:  %+v\nreload: %+v", doc, again)
	}
}

// TestDocument_LoadedPictureAnimates 测试加载后的画面在任意时间求值与原画面一致
func TestDocument_LoadedPictureAnimates(t *testing.T) {
	src := buildScene(t)
	dst := NewPicture()
	if err := dst.Load(src.Save(), loadOptions()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	for _, time := range []float64{0, 0.3, 1, 1.25, 2, 2.5, 4} {
		_ = src.SetAnimationTime(time)
		_ = dst.SetAnimationTime(time)

		for sa := range src.Actors() {
			da, ok := dst.Actor(sa.Name())
			if !ok {
				t.Fatalf("actor %q missing after load", sa.Name())
			}
			if sa.Position() != da.Position() {
				t.Errorf("t=%v %s: position %v vs %v", time, sa.Name(), sa.Position(), da.Position())
			}
			for sd := range sa.Drawables() {
				dd, ok := da.Drawable(sd.Base().Name())
				if !ok {
					t.Fatalf("drawable %q missing after load", sd.Base().Name())
				}
				if sd.Base().PlacedPosition() != dd.Base().PlacedPosition() ||
					sd.Base().PlacedRotation() != dd.Base().PlacedRotation() {
					t.Errorf("t=%v %s: placement differs", time, sd.Base().Name())
				}
			}
		}
	}

	orchard, _ := dst.Actor("orchard")
	trunk := orchard.Root().(*TreeAdapter)
	if trunk.Tree().Seed() != 1234 {
		t.Errorf("Expected tree seed 1234, got %d", trunk.Tree().Seed())
	}
	if orchard.Enabled() {
		t.Error("Expected orchard to stay disabled")
	}
}

// TestDocument_LoadFailureKeepsPicture 测试加载失败时画面保持原状
func TestDocument_LoadFailureKeepsPicture(t *testing.T) {
	valid := buildScene(t).Save()

	tests := []struct {
		name   string
		mutate func(doc *Document)
		target error
	}{
		{"版本不符", func(doc *Document) { doc.Version = 99 }, ErrMalformedDocument},
		{"帧率非法", func(doc *Document) { doc.Timeline.FrameRate = 0 }, ErrMalformedDocument},
		{"未知部件类型", func(doc *Document) { doc.Actors[0].Drawables[1].Kind = "spline" }, ErrUnknownDrawableKind},
		{"父部件不存在", func(doc *Document) { doc.Actors[0].Drawables[1].Parent = "ghost" }, ErrMalformedDocument},
		{"两个根部件", func(doc *Document) { doc.Actors[0].Drawables[1].Parent = "" }, ErrMalformedDocument},
		{"关键帧时间不递增", func(doc *Document) {
			keys := doc.Actors[0].PositionKeys
			keys[1].Time = keys[0].Time
		}, ErrMalformedDocument},
		{"未知缓动", func(doc *Document) { doc.Actors[0].PositionKeys[0].Ease = "wobble" }, ErrMalformedDocument},
		{"缺少图片加载器", nil, ErrMalformedDocument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPicture()
			keep := newSquareActor(t, "keep", Pt(5, 5))
			_ = p.AddActor(keep)
			_ = p.SetAnimationTime(3)
			obs := &countingObserver{}
			p.AddObserver(obs)
			id := p.ID()

			doc := cloneDocument(t, valid)
			opts := loadOptions()
			if tt.mutate != nil {
				tt.mutate(doc)
			} else {
				opts.Images = nil
			}

			err := p.Load(doc, opts)
			if !errors.Is(err, tt.target) {
				t.Fatalf("Expected %v, got %v", tt.target, err)
			}
			if p.ActorCount() != 1 || keep.Picture() != p {
				t.Error("Expected original actor to remain")
			}
			if p.ID() != id || p.AnimationTime() != 3 {
				t.Error("Expected picture id and time unchanged")
			}
			if obs.count != 0 {
				t.Errorf("Expected no notification on failed load, got %d", obs.count)
			}
		})
	}
}

// cloneDocument 深拷贝文档（重新保存一遍）
func cloneDocument(t *testing.T, doc *Document) *Document {
	t.Helper()
	p := NewPicture()
	if err := p.Load(doc, loadOptions()); err != nil {
		t.Fatalf("clone Load failed: %v", err)
	}
	return p.Save()
}
