package config

import (
	"path/filepath"
	"testing"

	"github.com/quasilyte/gdata/v2"
)

// openTestGdata 在临时 HOME 下创建 gdata manager
func openTestGdata(t *testing.T) *gdata.Manager {
	t.Helper()
	tempDir := t.TempDir()
	t.Setenv("HOME", tempDir)
	t.Setenv("XDG_DATA_HOME", filepath.Join(tempDir, ".local", "share"))

	manager, err := gdata.Open(gdata.Config{AppName: "canadian_settings_test"})
	if err != nil {
		t.Skipf("Cannot create gdata manager: %v", err)
	}
	return manager
}

// TestDefaultSettings 测试默认设置
func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()
	if s.Mode != "move" {
		t.Errorf("Mode: got %q, want move", s.Mode)
	}
	if !s.ShowHelp {
		t.Error("ShowHelp: got false, want true")
	}
	if s.Keyframing || s.Fullscreen || s.LastPicture != "" {
		t.Errorf("Unexpected non-default settings: %+v", s)
	}
}

// TestSettingsManager_NilGdata 测试降级模式
func TestSettingsManager_NilGdata(t *testing.T) {
	sm := NewSettingsManager(nil)

	sm.SetKeyframing(true)
	if !sm.Settings().Keyframing {
		t.Error("Expected in-memory setting to change")
	}
	if err := sm.Save(); err != nil {
		t.Errorf("Save() in degraded mode should not fail: %v", err)
	}
	if err := sm.Load(); err != nil {
		t.Errorf("Load() in degraded mode should not fail: %v", err)
	}
	if sm.Settings().Keyframing {
		t.Error("Expected Load() in degraded mode to reset to defaults")
	}
}

// TestSettingsManager_SaveAndLoad 测试持久化往返
func TestSettingsManager_SaveAndLoad(t *testing.T) {
	manager := openTestGdata(t)

	sm := NewSettingsManager(manager)
	sm.SetLastPicture("harold")
	sm.SetKeyframing(true)
	sm.SetMode("rotate")
	sm.SetShowHelp(false)
	sm.SetFullscreen(true)
	if err := sm.Save(); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	reloaded := NewSettingsManager(manager)
	got := reloaded.Settings()
	want := EditorSettings{
		LastPicture: "harold",
		Keyframing:  true,
		Mode:        "rotate",
		ShowHelp:    false,
		Fullscreen:  true,
	}
	if *got != want {
		t.Errorf("Reloaded settings: got %+v, want %+v", *got, want)
	}
}

// TestSettingsManager_CorruptData 测试损坏数据回退默认值
func TestSettingsManager_CorruptData(t *testing.T) {
	manager := openTestGdata(t)
	if err := manager.SaveObjectProp(settingsObject, settingsProperty, []byte("mode: [")); err != nil {
		t.Fatalf("SaveObjectProp failed: %v", err)
	}

	sm := NewSettingsManager(manager)
	if *sm.Settings() != *DefaultSettings() {
		t.Errorf("Expected defaults after corrupt data, got %+v", *sm.Settings())
	}
	if err := sm.Load(); err == nil {
		t.Error("Expected Load() to report corrupt data")
	}
}
