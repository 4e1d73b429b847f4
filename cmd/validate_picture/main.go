// validate_picture - 检查画面存档能否解析和加载
//
// 逐个检查命令行给出的 .yaml / .gob 文件，输出角色、部件和关键帧数量。
// 任一文件失败时以状态码 1 退出。
package main

import (
	"fmt"
	"os"

	"github.com/decker502/canadian/pkg/entities"
	"github.com/decker502/canadian/pkg/persist"
	"github.com/decker502/canadian/pkg/picture"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("用法: go run cmd/validate_picture/main.go <画面文件>...")
		os.Exit(1)
	}

	failed := false
	for _, path := range os.Args[1:] {
		if err := validate(path); err != nil {
			fmt.Printf("❌ %s: %v\n", path, err)
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}

func validate(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("读取文件失败: %w", err)
	}
	format := persist.FormatFor(path)
	doc, err := persist.Decode(data, format)
	if err != nil {
		return fmt.Errorf("%s 解析失败: %w", format, err)
	}

	drawables, keys := 0, 0
	for _, a := range doc.Actors {
		drawables += len(a.Drawables)
		keys += len(a.PositionKeys)
		for _, d := range a.Drawables {
			keys += len(d.PositionKeys) + len(d.RotationKeys) + len(d.ColorKeys) + len(d.IndexKeys)
		}
	}

	// 确认图片和树部件都能重建
	p := picture.NewPicture()
	opts := picture.LoadOptions{Images: entities.NewImageLoader("."), Trees: entities.Orchard{}}
	if err := persist.LoadFile(path, p, opts); err != nil {
		return fmt.Errorf("加载失败: %w", err)
	}

	fmt.Printf("✅ %s (%s)\n", path, format)
	fmt.Printf("   时间线: %d 帧 @ %.0f fps\n", doc.Timeline.NumFrames, doc.Timeline.FrameRate)
	fmt.Printf("   角色: %d, 部件: %d, 关键帧: %d\n", len(doc.Actors), drawables, keys)
	return nil
}
