// reanim2picture - 把 reanim 轨道文件转换为画面存档
//
// 生成的画面只有一个角色，时间线帧率取 reanim 的 FPS，
// 帧数覆盖整段动画。输出格式由扩展名决定（.yaml 或 .gob）。
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"

	"github.com/decker502/canadian/internal/reanim"
	"github.com/decker502/canadian/pkg/entities"
	"github.com/decker502/canadian/pkg/persist"
	"github.com/decker502/canadian/pkg/picture"
)

func main() {
	out := flag.String("o", "", "输出文件（.yaml 或 .gob）")
	x := flag.Float64("x", picture.DefaultWidth/2, "角色 X 坐标")
	y := flag.Float64("y", picture.DefaultHeight/2, "角色 Y 坐标")
	flag.Parse()

	if flag.NArg() != 1 || *out == "" {
		fmt.Println("用法: go run cmd/reanim2picture/main.go -o <输出文件> <reanim文件路径>")
		os.Exit(1)
	}
	path := flag.Arg(0)

	r, err := reanim.ParseFile(path)
	if err != nil {
		log.Fatalf("解析失败: %v", err)
	}
	actor, err := entities.LoadReanimActor(path, picture.Pt(*x, *y))
	if err != nil {
		log.Fatalf("导入失败: %v", err)
	}

	p := picture.NewPicture()
	frames := int(math.Ceil(entities.ReanimDuration(r) * float64(r.FPS)))
	if err := p.Timeline().Configure(float64(r.FPS), max(frames, 1)); err != nil {
		log.Fatalf("时间线配置失败: %v", err)
	}
	if err := p.AddActor(actor); err != nil {
		log.Fatalf("添加角色失败: %v", err)
	}

	if err := persist.SaveFile(*out, p); err != nil {
		log.Fatalf("保存失败: %v", err)
	}
	fmt.Printf("已保存 %s: %d 个部件, %d 帧 @ %d fps\n", *out, actor.DrawableCount()-1, p.Timeline().NumFrames(), r.FPS)
}
