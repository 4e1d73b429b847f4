package main

import (
	"fmt"
	"log"
	"math"
	"os"

	"github.com/decker502/canadian/internal/reanim"
	"github.com/decker502/canadian/pkg/entities"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("用法: go run cmd/analyze_reanim/main.go <reanim文件路径>")
		os.Exit(1)
	}

	reanimFile := os.Args[1]

	// 解析 reanim 文件
	reanimXML, err := reanim.ParseFile(reanimFile)
	if err != nil {
		log.Fatalf("解析失败: %v", err)
	}

	parts := reanimXML.PartTracks()
	fmt.Printf("动画文件: %s\n", reanimFile)
	fmt.Printf("FPS: %d\n", reanimXML.FPS)
	fmt.Printf("轨道数量: %d（部件 %d）\n", len(reanimXML.Tracks), len(parts))
	fmt.Printf("时长: %.2fs\n\n", entities.ReanimDuration(reanimXML))

	// 每个部件会生成多少关键帧
	fmt.Printf("%-20s %6s %6s %6s %8s\n", "部件", "帧数", "位置键", "旋转键", "隐藏帧")
	for _, track := range parts {
		positionKeys, rotationKeys := 0, 0
		for _, f := range track.Frames {
			if f.X != nil || f.Y != nil {
				positionKeys++
			}
			if f.SkewX != nil {
				rotationKeys++
			}
		}
		hidden := 0
		for _, f := range track.Resolve() {
			if !f.Visible {
				hidden++
			}
		}
		fmt.Printf("%-20s %6d %6d %6d %8d\n", track.Name, len(track.Frames), positionKeys, rotationKeys, hidden)
	}

	// 计算第一帧的部件范围
	minX, minY := math.MaxFloat64, math.MaxFloat64
	maxX, maxY := -math.MaxFloat64, -math.MaxFloat64
	count := 0
	for _, track := range parts {
		frames := track.Resolve()
		if len(frames) == 0 || !frames[0].Visible {
			continue
		}
		f := frames[0]
		minX, maxX = math.Min(minX, f.X), math.Max(maxX, f.X)
		minY, maxY = math.Min(minY, f.Y), math.Max(maxY, f.Y)
		count++
	}

	if count == 0 {
		fmt.Println("\n没有找到有效的帧数据")
		return
	}

	fmt.Printf("\n=== 部件范围（第一帧）===\n")
	fmt.Printf("X 范围: %.1f ~ %.1f (宽度: %.1f)\n", minX, maxX, maxX-minX)
	fmt.Printf("Y 范围: %.1f ~ %.1f (高度: %.1f)\n", minY, maxY, maxY-minY)
	fmt.Printf("中心: (%.1f, %.1f)\n", (minX+maxX)/2, (minY+maxY)/2)
}
