//go:build mobile

// Package mobile 提供 ebitenmobile 绑定入口
//
// 此包用于构建 Android (.aar) 和 iOS (.xcframework) 包，
// 在平板上用触摸拖拽编辑画面。使用 ebitenmobile 工具构建时会自动调用 init() 函数。
//
// 此文件仅在使用 -tags mobile 构建时编译。构建前先把资源复制到此目录：
//
//	cp -r assets data mobile/
//
//	# Android
//	ebitenmobile bind -target android -tags mobile -androidapi 23 -javapkg com.decker.canadian -o build/android/canadian.aar -v ./mobile
//
//	# iOS (仅 macOS)
//	ebitenmobile bind -target ios -tags mobile -o build/ios/Canadian.xcframework -v ./mobile
package mobile

import (
	"log"

	"github.com/hajimehoshi/ebiten/v2/mobile"

	"github.com/decker502/canadian/pkg/app"
	"github.com/decker502/canadian/pkg/embedded"
)

func init() {
	// 初始化嵌入资源
	// assetsFS 和 dataFS 在 embed.go 中声明
	embedded.Init(assetsFS, dataFS)

	// 移动端没有命令行：使用嵌入配置，存档优先走 gdata
	cfg := app.Config{
		Verbose: true,
		Storage: app.StorageAuto,
	}

	editorApp, err := app.NewApp(cfg)
	if err != nil {
		log.Fatalf("编辑器初始化失败: %v", err)
	}

	// 注册到 ebitenmobile
	mobile.SetGame(editorApp)
}

// Dummy 是一个空导出函数，确保包被 ebitenmobile 正确识别
func Dummy() {}
