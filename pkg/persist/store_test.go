package persist

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/decker502/canadian/pkg/anim"
	"github.com/decker502/canadian/pkg/picture"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/quasilyte/gdata/v2"
)

// newScene 构造带有不易精确表示的浮点关键帧的画面
func newScene(t *testing.T) *picture.Picture {
	t.Helper()
	p := picture.NewPicture()

	a := picture.NewActor("harold")
	body := picture.NewPolyDrawable("body", colorful.Color{R: 0.9, G: 0.1, B: 1.0 / 3})
	body.SetPoints([]picture.Point{picture.Pt(-10, -10), picture.Pt(10, -10), picture.Pt(0, 15)})
	arm := picture.NewPolyDrawable("arm", colorful.Color{R: 0.5, G: 0.5, B: 0.5})
	arm.SetPoints([]picture.Point{picture.Pt(0, 0), picture.Pt(12, 0), picture.Pt(12, 3)})
	arm.SetMovable(true)
	if err := a.SetRoot(body); err != nil {
		t.Fatalf("SetRoot failed: %v", err)
	}
	if err := a.Attach(body, arm); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}

	a.PositionChannel().SetKeyframe(0, picture.Pt(0.1, 0.2))
	a.PositionChannel().SetKeyframeEase(1.0/3, picture.Pt(100.0/7, -1e-7), anim.EaseOutCubic)
	arm.RotationChannel().SetKeyframe(0.1, 3*0.1)
	arm.RotationChannel().SetKeyframeEase(2.7, -12.566370614359172, anim.EaseStep)
	arm.PositionChannel().SetKeyframe(0.05, picture.Pt(12.000000000000002, 0))
	body.ColorChannel().SetKeyframe(9.99, colorful.Color{R: 0.123456789, G: 1e-3, B: 0.7})

	if err := p.AddActor(a); err != nil {
		t.Fatalf("AddActor failed: %v", err)
	}
	return p
}

// reloaded 文档加载到新画面后的快照
func reloaded(t *testing.T, doc *picture.Document) *picture.Document {
	t.Helper()
	p := picture.NewPicture()
	if err := p.Load(doc, picture.LoadOptions{}); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return p.Save()
}

// TestCodec_RoundTripExact 测试两种编码精确往返
func TestCodec_RoundTripExact(t *testing.T) {
	want := newScene(t).Save()

	for _, f := range []Format{FormatYAML, FormatGob} {
		t.Run(f.String(), func(t *testing.T) {
			data, err := Encode(want, f)
			if err != nil {
				t.Fatalf("Encode failed: %v", err)
			}
			doc, err := Decode(data, f)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if got := reloaded(t, doc); !reflect.DeepEqual(got, want) {
				t.Errorf("Round trip mismatch:\nwant: %+v\ngot:  %+v", want, got)
			}
		})
	}
}

// TestCodec_InterpolationSurvivesReload 测试重新加载后任意时间求值结果不变
func TestCodec_InterpolationSurvivesReload(t *testing.T) {
	src := newScene(t)
	data, err := Encode(src.Save(), FormatYAML)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	doc, err := Decode(data, FormatYAML)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	dst := picture.NewPicture()
	if err := dst.Load(doc, picture.LoadOptions{}); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	sa, _ := src.Actor("harold")
	da, _ := dst.Actor("harold")
	for _, time := range []float64{0, 0.07, 0.2, 1.0 / 3, 1.5, 2.7, 9.99, 10} {
		_ = src.SetAnimationTime(time)
		_ = dst.SetAnimationTime(time)
		if sa.Position() != da.Position() {
			t.Errorf("t=%v: position %v vs %v", time, sa.Position(), da.Position())
		}
		sb, _ := sa.Drawable("arm")
		db, _ := da.Drawable("arm")
		if sb.Base().PlacedPosition() != db.Base().PlacedPosition() || sb.Base().Rotation() != db.Base().Rotation() {
			t.Errorf("t=%v: arm pose differs", time)
		}
	}
}

// TestDecode_UnsupportedVersion 测试版本检查
func TestDecode_UnsupportedVersion(t *testing.T) {
	doc := newScene(t).Save()
	doc.Version = picture.DocumentVersion + 1

	for _, f := range []Format{FormatYAML, FormatGob} {
		data, err := Encode(doc, f)
		if err != nil {
			t.Fatalf("Encode failed: %v", err)
		}
		if _, err := Decode(data, f); !errors.Is(err, ErrUnsupportedVersion) {
			t.Errorf("%s: expected ErrUnsupportedVersion, got %v", f, err)
		}
	}
}

// TestDecode_Garbage 测试损坏数据
func TestDecode_Garbage(t *testing.T) {
	if _, err := Decode([]byte("actors: [unterminated"), FormatYAML); err == nil {
		t.Error("Expected YAML parse error")
	}
	if _, err := Decode([]byte{0x01, 0x02, 0x03}, FormatGob); err == nil {
		t.Error("Expected gob decode error")
	}
}

// TestFormat 测试格式解析和扩展名推断
func TestFormat(t *testing.T) {
	if f, err := ParseFormat("gob"); err != nil || f != FormatGob {
		t.Errorf("ParseFormat(gob) = %v, %v", f, err)
	}
	if f, err := ParseFormat(""); err != nil || f != FormatYAML {
		t.Errorf("ParseFormat(\"\") = %v, %v", f, err)
	}
	if _, err := ParseFormat("json"); err == nil {
		t.Error("Expected error for json")
	}
	if FormatFor("a/b/scene.GOB") != FormatGob || FormatFor("scene.yml") != FormatYAML {
		t.Error("FormatFor returned wrong format")
	}
}

// TestPictureStore_FileStorage 测试目录存储的保存、列表和加载
func TestPictureStore_FileStorage(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "pictures")
	storage, err := NewFileStorage(dir)
	if err != nil {
		t.Fatalf("NewFileStorage failed: %v", err)
	}

	for _, f := range []Format{FormatYAML, FormatGob} {
		t.Run(f.String(), func(t *testing.T) {
			store := NewPictureStore(storage, f)
			src := newScene(t)
			if err := store.Save("scene-"+f.String(), src); err != nil {
				t.Fatalf("Save failed: %v", err)
			}
			if _, err := os.Stat(filepath.Join(dir, "scene-"+f.String()+f.Ext())); err != nil {
				t.Errorf("Expected file on disk: %v", err)
			}
			if !store.Exists("scene-" + f.String()) {
				t.Error("Expected Exists to report saved document")
			}

			dst := picture.NewPicture()
			if err := store.Load("scene-"+f.String(), dst, picture.LoadOptions{}); err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if !reflect.DeepEqual(dst.Save(), src.Save()) {
				t.Error("Loaded picture differs from saved picture")
			}
		})
	}

	names, err := NewPictureStore(storage, FormatYAML).List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if !reflect.DeepEqual(names, []string{"scene-gob", "scene-yaml"}) {
		t.Errorf("Expected [scene-gob scene-yaml], got %v", names)
	}
}

// TestPictureStore_Errors 测试存储错误
func TestPictureStore_Errors(t *testing.T) {
	storage, err := NewFileStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStorage failed: %v", err)
	}
	store := NewPictureStore(storage, FormatYAML)
	p := newScene(t)
	id := p.ID()

	if err := store.Load("missing", p, picture.LoadOptions{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if err := store.Save("../escape", p); !errors.Is(err, ErrInvalidName) {
		t.Errorf("Expected ErrInvalidName, got %v", err)
	}

	if err := storage.Write("broken.yaml", []byte("version: [")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := store.Load("broken", p, picture.LoadOptions{}); err == nil {
		t.Error("Expected error loading broken document")
	}
	if p.ID() != id || p.ActorCount() != 1 {
		t.Error("Expected picture unchanged after failed load")
	}

	degraded := NewPictureStore(nil, FormatYAML)
	if err := degraded.Save("scene", p); !errors.Is(err, ErrNoStorage) {
		t.Errorf("Expected ErrNoStorage, got %v", err)
	}
	if err := degraded.Load("scene", p, picture.LoadOptions{}); !errors.Is(err, ErrNoStorage) {
		t.Errorf("Expected ErrNoStorage, got %v", err)
	}
	if degraded.Exists("scene") {
		t.Error("Expected degraded store to report nothing")
	}
}

// TestSaveLoadFile 测试按路径保存和加载
func TestSaveLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "harold.gob")
	src := newScene(t)
	if err := SaveFile(path, src); err != nil {
		t.Fatalf("SaveFile failed: %v", err)
	}
	dst := picture.NewPicture()
	if err := LoadFile(path, dst, picture.LoadOptions{}); err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if !reflect.DeepEqual(dst.Save(), src.Save()) {
		t.Error("Loaded picture differs from saved picture")
	}
}

// TestPictureStore_Gdata 测试 gdata 存储
func TestPictureStore_Gdata(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("HOME", tempDir)
	t.Setenv("XDG_DATA_HOME", filepath.Join(tempDir, ".local", "share"))

	manager, err := gdata.Open(gdata.Config{AppName: "canadian_persist_test"})
	if err != nil {
		t.Skipf("Cannot create gdata manager: %v", err)
	}

	if _, err := NewGdataStorage(nil); !errors.Is(err, ErrNoStorage) {
		t.Errorf("Expected ErrNoStorage for nil manager, got %v", err)
	}

	storage, err := NewGdataStorage(manager)
	if err != nil {
		t.Fatalf("NewGdataStorage failed: %v", err)
	}
	store := NewPictureStore(storage, FormatYAML)

	src := newScene(t)
	for _, name := range []string{"zeta", "alpha", "zeta"} {
		if err := store.Save(name, src); err != nil {
			t.Fatalf("Save %s failed: %v", name, err)
		}
	}

	names, err := store.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if !reflect.DeepEqual(names, []string{"alpha", "zeta"}) {
		t.Errorf("Expected [alpha zeta], got %v", names)
	}

	dst := picture.NewPicture()
	if err := store.Load("alpha", dst, picture.LoadOptions{}); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !reflect.DeepEqual(dst.Save(), src.Save()) {
		t.Error("Loaded picture differs from saved picture")
	}
	if err := store.Load("missing", dst, picture.LoadOptions{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}
