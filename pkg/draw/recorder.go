package draw

import (
	"fmt"
	"image/color"
	"strings"
)

// Op identifies a recorded command.
type Op int

const (
	OpSave Op = iota
	OpRestore
	OpClipPath
	OpClipRect
	OpFillPath
	OpStrokePath
	OpFillRect
	OpStrokeRect
	OpLine
	OpText
)

var opNames = [...]string{"save", "restore", "clip-path", "clip-rect", "fill-path", "stroke-path", "fill-rect", "stroke-rect", "line", "text"}

func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return fmt.Sprintf("op(%d)", int(o))
}

// Command is one recorded draw primitive.
type Command struct {
	Op    Op
	Path  *Path
	Rect  Rect
	X, Y  float64 // text origin or line start
	X1    float64 // line end
	Y1    float64
	Text  string
	Font  Font
	Color color.Color

	// Clip is the bounding box of the clip in effect when the command was
	// issued. HasClip is false when nothing clips.
	Clip    Rect
	HasClip bool
}

type clipState struct {
	bounds Rect
	set    bool
}

// Recorder is a Surface that keeps an ordered list of commands.
type Recorder struct {
	Commands []Command

	clip  clipState
	stack []clipState
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Reset drops recorded commands and clip state.
func (r *Recorder) Reset() {
	r.Commands = r.Commands[:0]
	r.clip = clipState{}
	r.stack = r.stack[:0]
}

func (r *Recorder) push(c Command) {
	c.Clip = r.clip.bounds
	c.HasClip = r.clip.set
	r.Commands = append(r.Commands, c)
}

func (r *Recorder) Save() {
	r.stack = append(r.stack, r.clip)
	r.push(Command{Op: OpSave})
}

func (r *Recorder) Restore() {
	if n := len(r.stack); n > 0 {
		r.clip = r.stack[n-1]
		r.stack = r.stack[:n-1]
	}
	r.push(Command{Op: OpRestore})
}

func (r *Recorder) ClipPath(p *Path) {
	r.intersectClip(p.Bounds())
	r.push(Command{Op: OpClipPath, Path: p.Clone()})
}

func (r *Recorder) ClipRect(rect Rect) {
	r.intersectClip(rect)
	r.push(Command{Op: OpClipRect, Rect: rect})
}

func (r *Recorder) intersectClip(b Rect) {
	if r.clip.set {
		b = r.clip.bounds.Intersect(b)
	}
	r.clip = clipState{bounds: b, set: true}
}

func (r *Recorder) FillPath(p *Path, c color.Color) {
	r.push(Command{Op: OpFillPath, Path: p.Clone(), Color: c})
}

func (r *Recorder) StrokePath(p *Path, c color.Color) {
	r.push(Command{Op: OpStrokePath, Path: p.Clone(), Color: c})
}

func (r *Recorder) FillRect(rect Rect, c color.Color) {
	r.push(Command{Op: OpFillRect, Rect: rect, Color: c})
}

func (r *Recorder) StrokeRect(rect Rect, c color.Color) {
	r.push(Command{Op: OpStrokeRect, Rect: rect, Color: c})
}

func (r *Recorder) Line(x0, y0, x1, y1 float64, c color.Color) {
	r.push(Command{Op: OpLine, X: x0, Y: y0, X1: x1, Y1: y1, Color: c})
}

func (r *Recorder) Text(s string, x, y float64, f Font, c color.Color) {
	r.push(Command{Op: OpText, Text: s, X: x, Y: y, Font: f, Color: c})
}

// Texts returns only the text commands, in order.
func (r *Recorder) Texts() []Command {
	var out []Command
	for _, c := range r.Commands {
		if c.Op == OpText {
			out = append(out, c)
		}
	}
	return out
}

// Count returns how many commands of op were recorded.
func (r *Recorder) Count(op Op) int {
	n := 0
	for _, c := range r.Commands {
		if c.Op == op {
			n++
		}
	}
	return n
}

// String dumps the command list, one per line.
func (r *Recorder) String() string {
	var sb strings.Builder
	for _, c := range r.Commands {
		switch c.Op {
		case OpText:
			fmt.Fprintf(&sb, "%s %q @ %.1f,%.1f\n", c.Op, c.Text, c.X, c.Y)
		case OpLine:
			fmt.Fprintf(&sb, "%s %.1f,%.1f-%.1f,%.1f\n", c.Op, c.X, c.Y, c.X1, c.Y1)
		case OpFillRect, OpStrokeRect, OpClipRect:
			fmt.Fprintf(&sb, "%s %+v\n", c.Op, c.Rect)
		default:
			sb.WriteString(c.Op.String())
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// Clone returns a deep copy of p.
func (p *Path) Clone() *Path {
	if p == nil {
		return nil
	}
	out := &Path{
		Contours: make([][]Point, len(p.Contours)),
		closed:   append([]bool(nil), p.closed...),
		cur:      p.cur,
	}
	for i, c := range p.Contours {
		out.Contours[i] = append([]Point(nil), c...)
	}
	return out
}
