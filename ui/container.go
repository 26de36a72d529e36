package ui

import (
	"math"
)

// decorator wraps an Element and modifies its layout and rendering.
// It can act as a marker (e.g., grow) or wrapper (e.g., padding, border, frame).
type decorator struct {
	Element
	grow                   int
	padT, padB, padL, padR int
	width, height          int
	border                 bool
	style                  *Style // background fill
}

func (d decorator) MinSize() (w, h int) {
	mw, mh := d.Element.MinSize()

	// Frame sizes the content, padding and border go around it
	if d.width > 0 {
		mw = d.width
	}
	if d.height > 0 {
		mh = d.height
	}

	mw += d.padL + d.padR
	mh += d.padT + d.padB

	if d.border {
		mw += 2
		mh += 2
	}
	return mw, mh
}

func (d decorator) Layout(r Rect) *Node {
	inner := r
	if d.border {
		inner = Rect{inner.X + 1, inner.Y + 1, inner.W - 2, inner.H - 2}
	}
	inner.X += d.padL
	inner.Y += d.padT
	inner.W = max(inner.W-d.padL-d.padR, 0)
	inner.H = max(inner.H-d.padT-d.padB, 0)

	return &Node{
		Element:  d,
		Rect:     r,
		Children: []*Node{d.Element.Layout(inner)},
	}
}

func (d decorator) Draw(s Screen, rect Rect) {
	if d.style != nil {
		ResetRect(s, rect, *d.style)
	}
	if d.border {
		drawBorder(s, rect)
	}
}

// FocusTarget lets focus pass through decorators.
func (d decorator) FocusTarget() Element {
	return d.Element
}

// get or build decorator
func getDecorator(e Element) decorator {
	if d, ok := e.(decorator); ok {
		return d
	}
	return decorator{Element: e}
}

// Pad adds spaces around the element
func Pad(e Element, amount int) Element {
	// Current implementation merges decorator,
	// does not distint inner/outer padding.
	// If needed, allow nesting decorator.
	d := getDecorator(e)
	d.padT, d.padB, d.padL, d.padR = amount, amount, amount, amount
	return d
}

func PadH(e Element, amount int) Element {
	d := getDecorator(e)
	d.padL, d.padR = amount, amount
	return d
}

func Grow(e Element) Element {
	d := getDecorator(e)
	d.grow = 1
	return d
}

// Frame fixes the content size; zero keeps the child's.
func Frame(e Element, w, h int) Element {
	d := getDecorator(e)
	d.width, d.height = w, h
	return d
}

func Border(e Element) Element {
	d := getDecorator(e)
	d.border = true
	return d
}

// Background fills the element's area with st before its children draw.
func Background(e Element, st Style) Element {
	d := getDecorator(e)
	d.style = &st
	return d
}

// vstack is a vertical layout container.
// Itself does not apply any visual styling like background colors, borders,
// it is completely transparent and invisible
type vstack struct {
	children []Element
	spacing  int
}

// VStack arranges children vertically.
func VStack(children ...Element) *vstack {
	return &vstack{children: children}
}

func (v *vstack) MinSize() (int, int) {
	maxW, totalH := 0, 0
	for i, child := range v.children {
		cw, ch := child.MinSize()
		maxW = max(maxW, cw)
		totalH += ch
		if i < len(v.children)-1 {
			totalH += v.spacing
		}
	}
	return maxW, totalH
}

func (v *vstack) Layout(r Rect) *Node {
	n := &Node{Element: v, Rect: r}
	sizes := distribute(v.children, r.H, v.spacing, func(e Element) int {
		_, h := e.MinSize()
		return h
	})

	used := 0
	for i, child := range v.children {
		if d, ok := child.(*Divider); ok {
			d.vertical = false
		}
		if ch := sizes[i]; ch > 0 {
			n.Children = append(n.Children, child.Layout(Rect{r.X, r.Y + used, r.W, ch}))
		}
		used += sizes[i] + v.spacing
	}
	return n
}

func (v *vstack) Draw(s Screen, rect Rect) {}

func (v *vstack) Append(e ...Element) *vstack {
	v.children = append(v.children, e...)
	return v
}

// Spacing sets the spacing (in rows) between child elements.
func (v *vstack) Spacing(p int) *vstack {
	v.spacing = p
	return v
}

// hstack is a horizontal layout container.
// Itself does not apply any visual styling like background colors, borders,
// it is completely transparent and invisible
type hstack struct {
	children []Element
	spacing  int
}

// HStack arranges children horizontally.
func HStack(children ...Element) *hstack {
	return &hstack{children: children}
}

func (hs *hstack) MinSize() (int, int) {
	totalW, maxH := 0, 0
	for i, child := range hs.children {
		cw, ch := child.MinSize()
		totalW += cw
		maxH = max(maxH, ch)
		if i < len(hs.children)-1 {
			totalW += hs.spacing
		}
	}
	return totalW, maxH
}

func (hs *hstack) Layout(r Rect) *Node {
	n := &Node{Element: hs, Rect: r}
	sizes := distribute(hs.children, r.W, hs.spacing, func(e Element) int {
		w, _ := e.MinSize()
		return w
	})

	used := 0
	for i, child := range hs.children {
		if d, ok := child.(*Divider); ok {
			d.vertical = true
		}
		if cw := sizes[i]; cw > 0 {
			n.Children = append(n.Children, child.Layout(Rect{r.X + used, r.Y, cw, r.H}))
		}
		used += sizes[i] + hs.spacing
	}
	return n
}

func (hs *hstack) Draw(s Screen, rect Rect) {}

func (hs *hstack) Append(e ...Element) *hstack {
	hs.children = append(hs.children, e...)
	return hs
}

// Spacing sets the spacing (in columns) between child elements.
func (hs *hstack) Spacing(p int) *hstack { hs.spacing = p; return hs }

// distribute splits total along one axis: fixed children get their minimum,
// growing children share what is left, and the tail is clipped.
func distribute(children []Element, total, spacing int, minOf func(Element) int) []int {
	sizes := make([]int, len(children))
	fixed, totalGrow := 0, 0
	for _, child := range children {
		if d, ok := child.(decorator); ok && d.grow > 0 {
			totalGrow += d.grow
		} else {
			fixed += minOf(child)
		}
	}

	spare := max(total-fixed-spacing*(len(children)-1), 0)
	var share float64
	if totalGrow > 0 {
		share = float64(spare) / float64(totalGrow)
	}

	used := 0
	for i, child := range children {
		size := minOf(child)
		if d, ok := child.(decorator); ok && d.grow > 0 {
			size = min(int(math.Ceil(float64(d.grow)*share)), spare)
			spare -= size
		}
		size = max(min(size, total-used), 0)
		sizes[i] = size
		used += size + spacing
	}
	return sizes
}

const (
	hLine          = '─'
	vLine          = '│'
	cornerTopLeft  = '┌'
	cornerTopRight = '┐'
	cornerBotLeft  = '└'
	cornerBotRight = '┘'
)

func drawBorder(s Screen, rect Rect) {
	// Too small to draw a border
	if rect.W < 2 || rect.H < 2 {
		return
	}

	st := Style{FG: Theme.Border}.Apply()
	for i := range rect.W {
		s.SetContent(rect.X+i, rect.Y, hLine, nil, st)
		s.SetContent(rect.X+i, rect.Y+rect.H-1, hLine, nil, st)
	}
	for i := range rect.H {
		s.SetContent(rect.X, rect.Y+i, vLine, nil, st)
		s.SetContent(rect.X+rect.W-1, rect.Y+i, vLine, nil, st)
	}
	s.SetContent(rect.X, rect.Y, cornerTopLeft, nil, st)
	s.SetContent(rect.X+rect.W-1, rect.Y, cornerTopRight, nil, st)
	s.SetContent(rect.X, rect.Y+rect.H-1, cornerBotLeft, nil, st)
	s.SetContent(rect.X+rect.W-1, rect.Y+rect.H-1, cornerBotRight, nil, st)
}

// ResetRect resets the content of the given rectangle to the specified style.
func ResetRect(s Screen, rect Rect, style Style) {
	st := style.Apply()
	for x := rect.X; x < rect.X+rect.W; x++ {
		for y := rect.Y; y < rect.Y+rect.H; y++ {
			// when debugging, printing '.' would be better
			s.SetContent(x, y, ' ', nil, st)
		}
	}
}

// overlay is a transient container that displays a child element
// over the existing content, typically used for dropdowns or pop-ups.
type overlay struct {
	child     Element
	x, y      int
	prevFocus Element
}

func (o *overlay) MinSize() (int, int) {
	return o.child.MinSize()
}

// Layout places the child at its anchor, shifted left or up to stay inside r.
func (o *overlay) Layout(r Rect) *Node {
	cw, ch := o.child.MinSize()
	cw, ch = min(cw, r.W), min(ch, r.H)
	x := max(min(o.x, r.X+r.W-cw), r.X)
	y := max(min(o.y, r.Y+r.H-ch), r.Y)

	rect := Rect{x, y, cw, ch}
	return &Node{
		Element:  o,
		Rect:     rect,
		Children: []*Node{o.child.Layout(rect)},
	}
}

func (o *overlay) Draw(s Screen, rect Rect) {
	ResetRect(s, rect, Style{FG: Theme.Foreground, BG: Theme.Background})
}
