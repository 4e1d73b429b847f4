// Package reanim parses reanim keyframe track files.
//
// A reanim file is a flat list of XML elements with no root: an <fps> value
// followed by <track> elements. Each track holds one <t> element per frame,
// and every field of a frame is optional: an omitted field keeps the value
// of the previous frame (cumulative inheritance).
//
// The editor imports part tracks as actor drawables with position and
// rotation channels.
package reanim

import "strings"

// ReanimXML is the root structure of a reanim file.
type ReanimXML struct {
	// FPS is the frame rate of the tracks, typically 12
	FPS int `xml:"fps"`

	// Tracks in file order. Names starting with "anim_" are animation
	// definition tracks, the rest are part tracks (e.g. "head", "arm").
	Tracks []Track `xml:"track"`
}

// Track is the frame sequence of one animation definition or one part.
type Track struct {
	Name   string  `xml:"name"`
	Frames []Frame `xml:"t"`
}

// IsAnimation reports whether the track is an animation definition track
// rather than a part track.
func (t *Track) IsAnimation() bool {
	return strings.HasPrefix(t.Name, "anim_")
}

// Frame is a single raw frame. Nil fields inherit from the previous frame.
type Frame struct {
	// FrameNum controls visibility: -1 hides the part, 0 or positive shows it
	FrameNum *int `xml:"f,omitempty"`

	// X, Y are the position offset in pixels
	X *float64 `xml:"x,omitempty"`
	Y *float64 `xml:"y,omitempty"`

	// ScaleX, ScaleY are scale factors (1.0 = normal size)
	ScaleX *float64 `xml:"sx,omitempty"`
	ScaleY *float64 `xml:"sy,omitempty"`

	// SkewX, SkewY are skew angles in degrees (NOT radians). For an
	// unskewed part SkewX == SkewY and both equal the clockwise rotation.
	SkewX *float64 `xml:"kx,omitempty"`
	SkewY *float64 `xml:"ky,omitempty"`

	// ImagePath is the sprite image reference, e.g. "IMAGE_HAROLD_HEAD"
	ImagePath string `xml:"i,omitempty"`
}

// ResolvedFrame is a frame with inheritance applied: every field is concrete.
type ResolvedFrame struct {
	Index   int // frame number within the track
	Visible bool
	X, Y    float64
	ScaleX  float64
	ScaleY  float64
	SkewX   float64
	SkewY   float64
	Image   string
}

// Resolve applies cumulative inheritance to the raw frames of a track.
//
// Initial state before the first frame: visible, position (0,0), scale 1,
// skew 0, no image.
func (t *Track) Resolve() []ResolvedFrame {
	out := make([]ResolvedFrame, len(t.Frames))
	cur := ResolvedFrame{Visible: true, ScaleX: 1, ScaleY: 1}
	for i, f := range t.Frames {
		cur.Index = i
		if f.FrameNum != nil {
			cur.Visible = *f.FrameNum >= 0
		}
		if f.X != nil {
			cur.X = *f.X
		}
		if f.Y != nil {
			cur.Y = *f.Y
		}
		if f.ScaleX != nil {
			cur.ScaleX = *f.ScaleX
		}
		if f.ScaleY != nil {
			cur.ScaleY = *f.ScaleY
		}
		if f.SkewX != nil {
			cur.SkewX = *f.SkewX
		}
		if f.SkewY != nil {
			cur.SkewY = *f.SkewY
		}
		if f.ImagePath != "" {
			cur.Image = f.ImagePath
		}
		out[i] = cur
	}
	return out
}

// PartTracks returns the part tracks (non animation definition) in file order.
func (r *ReanimXML) PartTracks() []*Track {
	var parts []*Track
	for i := range r.Tracks {
		if !r.Tracks[i].IsAnimation() {
			parts = append(parts, &r.Tracks[i])
		}
	}
	return parts
}

// Track finds a track by name.
func (r *ReanimXML) Track(name string) (*Track, bool) {
	for i := range r.Tracks {
		if r.Tracks[i].Name == name {
			return &r.Tracks[i], true
		}
	}
	return nil, false
}
