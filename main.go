package main

import (
	"flag"
	"log"

	"github.com/decker502/canadian/pkg/app"
	"github.com/decker502/canadian/pkg/embedded"
	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	configPath := flag.String("config", "", "编辑器配置文件（默认使用内置的 data/editor.yaml）")
	open := flag.String("open", "", "启动时打开的画面：存档名或 .yaml/.gob 文件")
	verbose := flag.Bool("verbose", false, "输出详细日志")
	storage := flag.String("storage", app.StorageAuto, "画面存储：gdata、file，留空自动选择")
	flag.Parse()

	// 初始化嵌入资源，必须在创建应用之前
	embedded.Init(assetsFS, dataFS)

	editorApp, err := app.NewApp(app.Config{
		Verbose:    *verbose,
		ConfigPath: *configPath,
		Open:       *open,
		Storage:    *storage,
	})
	if err != nil {
		log.Fatalf("启动失败: %v", err)
	}

	w, h := editorApp.WindowSize()
	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowTitle("Canadian Experience - " + editorApp.Name())
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	runErr := ebiten.RunGame(editorApp)
	if err := editorApp.Shutdown(); err != nil {
		log.Printf("[App] Failed to save settings: %v", err)
	}
	if runErr != nil {
		log.Fatal(runErr)
	}
}
