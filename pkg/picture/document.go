package picture

import (
	"errors"
	"fmt"
	"image"
	"log"
	"math"

	"github.com/decker502/canadian/pkg/anim"
	"github.com/google/uuid"
	"github.com/lucasb-eyer/go-colorful"
)

// DocumentVersion 画面文档版本号，结构不兼容变更时递增
const DocumentVersion = 1

var (
	// ErrMalformedDocument 文档内容非法
	ErrMalformedDocument = errors.New("malformed picture document")
	// ErrUnknownDrawableKind 未知的部件类型
	ErrUnknownDrawableKind = errors.New("unknown drawable kind")
)

// Document 画面的可持久化快照
//
// 保存每个角色的部件树和每个通道的完整关键帧序列。
// 时间和值都是 float64，编码器需要保证精确往返。
type Document struct {
	Version  int         `yaml:"version"`
	ID       string      `yaml:"id"`
	Size     Size        `yaml:"size"`
	Timeline TimelineDoc `yaml:"timeline"`
	Actors   []ActorDoc  `yaml:"actors"`
}

// TimelineDoc 时间线配置
type TimelineDoc struct {
	FrameRate float64 `yaml:"frameRate"`
	NumFrames int     `yaml:"numFrames"`
}

// ActorDoc 角色快照
type ActorDoc struct {
	ID           string        `yaml:"id"`
	Name         string        `yaml:"name"`
	Enabled      bool          `yaml:"enabled"`
	Clickable    bool          `yaml:"clickable"`
	Position     Point         `yaml:"position"`
	PositionKeys []PointKey    `yaml:"positionKeys,omitempty"`
	Drawables    []DrawableDoc `yaml:"drawables"` // 绘制顺序
}

// DrawableDoc 部件快照
//
// Parent 为空表示根部件。Position/Rotation 等字段保存的是通道的静止值
// （有关键帧时为插入第一帧前的值），加载后由通道重新求值。
type DrawableDoc struct {
	Name     string  `yaml:"name"`
	Kind     string  `yaml:"kind"`
	Parent   string  `yaml:"parent,omitempty"`
	Position Point   `yaml:"position"`
	Rotation float64 `yaml:"rotation"`
	Movable  bool    `yaml:"movable,omitempty"`

	// poly
	Points []Point   `yaml:"points,omitempty"`
	Color  *ColorDoc `yaml:"color,omitempty"`

	// image
	Frames []string `yaml:"frames,omitempty"`
	Center Point    `yaml:"center,omitempty"`
	Index  int      `yaml:"index,omitempty"`

	// tree
	Seed int `yaml:"seed,omitempty"`

	RotationKeys []FloatKey `yaml:"rotationKeys,omitempty"`
	PositionKeys []PointKey `yaml:"positionKeys,omitempty"`
	ColorKeys    []ColorKey `yaml:"colorKeys,omitempty"`
	IndexKeys    []IndexKey `yaml:"indexKeys,omitempty"`
}

// ColorDoc 颜色（保存 RGB 浮点分量，不经过十六进制以免损失精度）
type ColorDoc struct {
	R float64 `yaml:"r"`
	G float64 `yaml:"g"`
	B float64 `yaml:"b"`
}

// FloatKey 标量关键帧
type FloatKey struct {
	Time  float64 `yaml:"time"`
	Value float64 `yaml:"value"`
	Ease  string  `yaml:"ease,omitempty"`
}

// PointKey 位置关键帧
type PointKey struct {
	Time  float64 `yaml:"time"`
	Value Point   `yaml:"value"`
	Ease  string  `yaml:"ease,omitempty"`
}

// ColorKey 颜色关键帧
type ColorKey struct {
	Time  float64  `yaml:"time"`
	Value ColorDoc `yaml:"value"`
	Ease  string   `yaml:"ease,omitempty"`
}

// IndexKey 姿态索引关键帧（阶跃）
type IndexKey struct {
	Time  float64 `yaml:"time"`
	Value int     `yaml:"value"`
}

// ImageLoader 按路径加载图片部件的姿态图
type ImageLoader interface {
	LoadImage(path string) (image.Image, error)
}

// LoadOptions 加载文档时的外部依赖
type LoadOptions struct {
	Images ImageLoader // 图片部件需要
	Trees  TreeFactory // 树/篮子部件需要
}

func toColorDoc(c colorful.Color) ColorDoc {
	return ColorDoc{R: c.R, G: c.G, B: c.B}
}

func (c ColorDoc) color() colorful.Color {
	return colorful.Color{R: c.R, G: c.G, B: c.B}
}

// restValue 通道的静止值：有关键帧时为插入第一帧前的值，否则为字段当前值
func restValue[T any](ch *anim.Channel[T], current T) T {
	if ch.Len() > 0 {
		return ch.Base()
	}
	return current
}

func exportKeys[T, K any](ch *anim.Channel[T], conv func(anim.Keyframe[T]) K) []K {
	if ch.Len() == 0 {
		return nil
	}
	keys := ch.Keyframes()
	out := make([]K, len(keys))
	for i, k := range keys {
		out[i] = conv(k)
	}
	return out
}

func easeName(e anim.Ease) string {
	if e == anim.EaseLinear {
		return ""
	}
	return string(e)
}

// Save 生成画面快照
func (p *Picture) Save() *Document {
	doc := &Document{
		Version: DocumentVersion,
		ID:      p.id.String(),
		Size:    p.size,
		Timeline: TimelineDoc{
			FrameRate: p.timeline.FrameRate(),
			NumFrames: p.timeline.NumFrames(),
		},
		Actors: make([]ActorDoc, 0, len(p.actors)),
	}
	for _, a := range p.actors {
		doc.Actors = append(doc.Actors, a.document())
	}
	return doc
}

func pointKey(k anim.Keyframe[Point]) PointKey {
	return PointKey{Time: k.Time, Value: k.Value, Ease: easeName(k.Ease)}
}

func (a *Actor) document() ActorDoc {
	ad := ActorDoc{
		ID:           a.id.String(),
		Name:         a.name,
		Enabled:      a.enabled,
		Clickable:    a.clickable,
		Position:     restValue(a.positionChannel, a.position),
		PositionKeys: exportKeys(a.positionChannel, pointKey),
		Drawables:    make([]DrawableDoc, 0, len(a.drawables)),
	}
	for _, d := range a.drawables {
		ad.Drawables = append(ad.Drawables, drawableDocument(d))
	}
	return ad
}

func drawableDocument(d Drawable) DrawableDoc {
	n := d.Base()
	dd := DrawableDoc{
		Name:     n.name,
		Kind:     n.kind,
		Position: restValue(n.positionChannel, n.position),
		Rotation: restValue(n.rotationChannel, n.rotation),
		Movable:  n.movable,
		RotationKeys: exportKeys(n.rotationChannel, func(k anim.Keyframe[float64]) FloatKey {
			return FloatKey{Time: k.Time, Value: k.Value, Ease: easeName(k.Ease)}
		}),
		PositionKeys: exportKeys(n.positionChannel, pointKey),
	}
	if n.parent != nil {
		dd.Parent = n.parent.name
	}

	switch v := d.(type) {
	case *PolyDrawable:
		dd.Points = v.Points()
		c := toColorDoc(restValue(v.colorChannel, v.color))
		dd.Color = &c
		dd.ColorKeys = exportKeys(v.colorChannel, func(k anim.Keyframe[colorful.Color]) ColorKey {
			return ColorKey{Time: k.Time, Value: toColorDoc(k.Value), Ease: easeName(k.Ease)}
		})
	case *ImageDrawable:
		for _, f := range v.frames {
			dd.Frames = append(dd.Frames, f.Path)
		}
		dd.Center = v.center
		dd.Index = restValue(v.indexChannel, v.index)
		dd.IndexKeys = exportKeys(v.indexChannel, func(k anim.Keyframe[int]) IndexKey {
			return IndexKey{Time: k.Time, Value: k.Value}
		})
	case *TreeAdapter:
		dd.Seed = v.tree.Seed()
	}
	return dd
}

// importKeys 校验并导入关键帧：时间有限且严格递增，缓动名称合法
func importKeys[T, K any](ch *anim.Channel[T], keys []K, conv func(K) anim.Keyframe[T]) error {
	last := math.Inf(-1)
	for i, raw := range keys {
		k := conv(raw)
		if math.IsNaN(k.Time) || math.IsInf(k.Time, 0) {
			return fmt.Errorf("%w: %s key %d has invalid time %v", ErrMalformedDocument, ch.Name(), i, k.Time)
		}
		if k.Time <= last {
			return fmt.Errorf("%w: %s keys not strictly increasing at %v", ErrMalformedDocument, ch.Name(), k.Time)
		}
		e, err := anim.ParseEase(string(k.Ease))
		if err != nil {
			return fmt.Errorf("%w: %s key %d: %v", ErrMalformedDocument, ch.Name(), i, err)
		}
		ch.SetKeyframeEase(k.Time, k.Value, e)
		last = k.Time
	}
	return nil
}

func fromPointKey(k PointKey) anim.Keyframe[Point] {
	return anim.Keyframe[Point]{Time: k.Time, Value: k.Value, Ease: anim.Ease(k.Ease)}
}

// Load 用文档替换画面内容
//
// 先完整构建并校验新的角色列表，全部成功后才替换；失败时画面保持原状。
// 成功后当前时间设为 0，并通知观察者一次。
//
// 返回：
//   - error: 文档非法（ErrMalformedDocument、ErrUnknownDrawableKind 等）
func (p *Picture) Load(doc *Document, opts LoadOptions) error {
	if doc == nil {
		return fmt.Errorf("%w: nil document", ErrMalformedDocument)
	}
	if doc.Version != DocumentVersion {
		return fmt.Errorf("%w: version %d (expected %d)", ErrMalformedDocument, doc.Version, DocumentVersion)
	}
	// 用临时时间线校验时长参数
	if err := anim.NewTimeline().Configure(doc.Timeline.FrameRate, doc.Timeline.NumFrames); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	if doc.Size.Width <= 0 || doc.Size.Height <= 0 {
		return fmt.Errorf("%w: picture size %dx%d", ErrMalformedDocument, doc.Size.Width, doc.Size.Height)
	}

	id := uuid.New()
	if doc.ID != "" {
		parsed, err := uuid.Parse(doc.ID)
		if err != nil {
			return fmt.Errorf("%w: picture id: %v", ErrMalformedDocument, err)
		}
		id = parsed
	}

	actors := make([]*Actor, 0, len(doc.Actors))
	for i := range doc.Actors {
		a, err := buildActor(&doc.Actors[i], opts)
		if err != nil {
			return fmt.Errorf("actor %d (%q): %w", i, doc.Actors[i].Name, err)
		}
		actors = append(actors, a)
	}

	// 全部构建成功，替换画面内容
	for _, old := range p.actors {
		p.timeline.Unregister(old)
		old.picture = nil
	}
	p.actors = actors
	p.id = id
	p.size = doc.Size
	_ = p.timeline.Configure(doc.Timeline.FrameRate, doc.Timeline.NumFrames)
	for _, a := range actors {
		a.picture = p
		p.timeline.Register(a)
	}
	_ = p.timeline.SetCurrentTime(0)

	log.Printf("[Picture] Loaded document %s: %d actors, %.0f fps, %d frames",
		p.id, len(p.actors), p.timeline.FrameRate(), p.timeline.NumFrames())

	p.UpdateObservers()
	return nil
}

func buildActor(ad *ActorDoc, opts LoadOptions) (*Actor, error) {
	a := NewActor(ad.Name)
	if ad.ID != "" {
		id, err := uuid.Parse(ad.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: actor id: %v", ErrMalformedDocument, err)
		}
		a.id = id
	}
	a.enabled = ad.Enabled
	a.clickable = ad.Clickable
	a.position = ad.Position
	if err := importKeys(a.positionChannel, ad.PositionKeys, fromPointKey); err != nil {
		return nil, err
	}

	built := make(map[string]Drawable, len(ad.Drawables))
	for i := range ad.Drawables {
		dd := &ad.Drawables[i]
		d, err := buildDrawable(dd, opts)
		if err != nil {
			return nil, fmt.Errorf("drawable %q: %w", dd.Name, err)
		}

		if dd.Parent == "" {
			if a.root != nil {
				return nil, fmt.Errorf("%w: second root %q", ErrMalformedDocument, dd.Name)
			}
			if err := a.SetRoot(d); err != nil {
				return nil, err
			}
		} else {
			parent, ok := built[dd.Parent]
			if !ok {
				return nil, fmt.Errorf("%w: %q references unknown or later parent %q", ErrMalformedDocument, dd.Name, dd.Parent)
			}
			if err := a.Attach(parent, d); err != nil {
				return nil, err
			}
		}
		built[dd.Name] = d
	}

	if err := a.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	return a, nil
}

func buildDrawable(dd *DrawableDoc, opts LoadOptions) (Drawable, error) {
	if dd.Name == "" {
		return nil, fmt.Errorf("%w: drawable without name", ErrMalformedDocument)
	}

	var d Drawable
	switch dd.Kind {
	case KindPoly:
		c := colorful.Color{R: 0, G: 0, B: 0}
		if dd.Color != nil {
			c = dd.Color.color()
		}
		poly := NewPolyDrawable(dd.Name, c)
		poly.SetPoints(dd.Points)
		err := importKeys(poly.colorChannel, dd.ColorKeys, func(k ColorKey) anim.Keyframe[colorful.Color] {
			return anim.Keyframe[colorful.Color]{Time: k.Time, Value: k.Value.color(), Ease: anim.Ease(k.Ease)}
		})
		if err != nil {
			return nil, err
		}
		d = poly

	case KindImage:
		frames := make([]ImageFrame, 0, len(dd.Frames))
		for _, path := range dd.Frames {
			if opts.Images == nil {
				return nil, fmt.Errorf("%w: image drawable needs an image loader", ErrMalformedDocument)
			}
			img, err := opts.Images.LoadImage(path)
			if err != nil {
				return nil, fmt.Errorf("load image %q: %w", path, err)
			}
			frames = append(frames, ImageFrame{Path: path, Image: img})
		}
		imgd := NewImageDrawable(dd.Name, dd.Center, frames...)
		imgd.index = dd.Index
		err := importKeys(imgd.indexChannel, dd.IndexKeys, func(k IndexKey) anim.Keyframe[int] {
			return anim.Keyframe[int]{Time: k.Time, Value: k.Value, Ease: anim.EaseStep}
		})
		if err != nil {
			return nil, err
		}
		d = imgd

	case KindTree:
		if opts.Trees == nil {
			return nil, fmt.Errorf("%w: tree drawable needs a tree factory", ErrMalformedDocument)
		}
		tree := opts.Trees.CreateTree()
		tree.SetSeed(dd.Seed)
		d = NewTreeAdapter(dd.Name, tree)

	case KindBasket:
		if opts.Trees == nil {
			return nil, fmt.Errorf("%w: basket drawable needs a tree factory", ErrMalformedDocument)
		}
		d = NewBasketAdapter(dd.Name, opts.Trees.CreateBasket())

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDrawableKind, dd.Kind)
	}

	n := d.Base()
	n.position = dd.Position
	n.rotation = dd.Rotation
	n.movable = dd.Movable
	if err := importKeys(n.rotationChannel, dd.RotationKeys, func(k FloatKey) anim.Keyframe[float64] {
		return anim.Keyframe[float64]{Time: k.Time, Value: k.Value, Ease: anim.Ease(k.Ease)}
	}); err != nil {
		return nil, err
	}
	if err := importKeys(n.positionChannel, dd.PositionKeys, fromPointKey); err != nil {
		return nil, err
	}
	return d, nil
}
