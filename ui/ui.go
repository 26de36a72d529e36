// Package ui provides a lightweight text user interface toolkit built on top of tcell.
// It offers a clean event–state–render pipeline with basic UI components and layouts.
package ui

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

type Screen = tcell.Screen

// Element is the interface implemented by all UI elements.
type Element interface {
	MinSize() (w, h int)
	// Layout computes the layout node for this element within r.
	// Child nodes are drawn after their parent.
	Layout(r Rect) *Node
	Draw(s Screen, rect Rect)
}

// Optional behaviours, detected with type assertions.
type (
	Hoverable interface {
		OnMouseEnter()
		OnMouseLeave()
	}
	// Clickable receives coordinates relative to the element.
	Clickable interface {
		OnMouseDown(x, y int)
		OnMouseUp(x, y int)
	}
	// Draggable receives pointer moves over a hovered element, and while
	// the primary button is held after a press on it, even outside of it.
	Draggable interface {
		OnMouseMove(x, y int)
	}
	// Scroller handles the wheel, dy < 0 is up.
	Scroller interface {
		OnScroll(dy int)
	}
	Focusable interface {
		OnFocus()
		OnBlur()
	}
	// FocusTarget delegates focus to another element.
	FocusTarget interface {
		FocusTarget() Element
	}
	// KeyHandler reports whether it consumed the key.
	KeyHandler interface {
		HandleKey(ev *tcell.EventKey) bool
	}
	// LayoutObserver is told when a layout pass completed. Returning true
	// asks for one more pass.
	LayoutObserver interface {
		LayoutUpdated() bool
	}
)

type Node struct {
	Element  Element
	Rect     Rect
	Children []*Node
}

type Rect struct {
	X, Y, W, H int
}

func (r Rect) Contains(x, y int) bool {
	return x >= r.X && y >= r.Y && x < r.X+r.W && y < r.Y+r.H
}

// Style colors are tcell color names or "#rrggbb"; empty means inherit.
type Style struct {
	FG            string
	BG            string
	FontBold      bool
	FontItalic    bool
	FontUnderline bool
	FontReverse   bool
}

func (s Style) Apply() tcell.Style {
	st := tcell.StyleDefault
	if s.FG != "" {
		st = st.Foreground(tcell.GetColor(s.FG))
	}
	if s.BG != "" {
		st = st.Background(tcell.GetColor(s.BG))
	}
	if s.FontBold {
		st = st.Bold(true)
	}
	if s.FontItalic {
		st = st.Italic(true)
	}
	if s.FontUnderline {
		st = st.Underline(true)
	}
	if s.FontReverse {
		st = st.Reverse(true)
	}
	return st
}

// Merge returns a new Style by applying the child style's non-default attributes
// over the receiver (parent) style.
func (s Style) Merge(child Style) Style {
	if child.FG == "" {
		child.FG = s.FG
	}
	if child.BG == "" {
		child.BG = s.BG
	}
	child.FontBold = child.FontBold || s.FontBold
	child.FontItalic = child.FontItalic || s.FontItalic
	child.FontUnderline = child.FontUnderline || s.FontUnderline
	child.FontReverse = child.FontReverse || s.FontReverse
	return child
}

// DrawString draws str at (x, y), clipped to w cells, and returns the
// number of cells used.
func DrawString(s Screen, x, y, w int, str string, style Style) int {
	st := style.Apply()
	used := 0
	for _, r := range str {
		rw := runewidth.RuneWidth(r)
		if used+rw > w {
			break
		}
		s.SetContent(x+used, y, r, nil, st)
		used += rw
	}
	return used
}

// hitTest finds the deepest node containing (x, y) whose element satisfies
// want. A nil want accepts any element.
func hitTest(node *Node, x, y int, want func(Element) bool) *Node {
	if node == nil || !node.Rect.Contains(x, y) {
		return nil
	}
	// later children are drawn on top
	for i := len(node.Children) - 1; i >= 0; i-- {
		if n := hitTest(node.Children[i], x, y, want); n != nil {
			return n
		}
	}
	if want == nil || want(node.Element) {
		return node
	}
	return nil
}

func walk(node *Node, fn func(*Node)) {
	if node == nil {
		return
	}
	fn(node)
	for _, c := range node.Children {
		walk(c, fn)
	}
}

func drawTree(node *Node, s Screen) {
	if node == nil {
		return
	}
	node.Element.Draw(s, node.Rect)
	for _, child := range node.Children {
		drawTree(child, s)
	}
}

// App runs the event loop. All element callbacks, and funcs given to Post,
// run on the goroutine calling Run.
type App struct {
	Logger  *log.Logger
	QuitKey tcell.Key // default is Ctrl+Q
	// OnKey gets the keys the focused element did not consume.
	OnKey func(ev *tcell.EventKey) bool

	screen   Screen
	root     Element
	tree     *Node
	popup    *overlay
	popTree  *Node
	hovered  Element
	focused  Element
	captured *Node // receives moves and the release after a press
	done     bool
}

// NewApp creates an app drawing on s. The screen is initialized by Run, or
// by the caller for screens that are never run.
func NewApp(s Screen) *App {
	return &App{
		Logger:  log.New(io.Discard),
		QuitKey: tcell.KeyCtrlQ,
		screen:  s,
	}
}

func (a *App) Screen() Screen { return a.screen }

func (a *App) SetRoot(e Element) { a.root = e }

// Post queues fn to run on the UI goroutine and redraws afterwards.
// It is safe to call from any goroutine.
func (a *App) Post(fn func()) {
	if err := a.screen.PostEvent(tcell.NewEventInterrupt(fn)); err != nil {
		a.Logger.Warn("event queue full, dropping posted func", "err", err)
	}
}

// Stop ends Run after the events queued so far.
func (a *App) Stop() {
	a.Post(func() { a.done = true })
}

// Focus moves keyboard focus to e, following FocusTarget delegation.
func (a *App) Focus(e Element) {
	for {
		ft, ok := e.(FocusTarget)
		if !ok {
			break
		}
		next := ft.FocusTarget()
		if next == nil || next == e {
			break
		}
		e = next
	}
	if e == a.focused {
		return
	}
	if f, ok := a.focused.(Focusable); ok {
		f.OnBlur()
	}
	a.focused = e
	if f, ok := e.(Focusable); ok {
		f.OnFocus()
	}
}

func (a *App) Focused() Element { return a.focused }

// ShowPopup displays e above everything else with its top left corner at
// (x, y), moved as needed to stay on screen. It takes focus until
// ClosePopup, Escape or a click outside of it.
func (a *App) ShowPopup(e Element, x, y int) {
	prev := a.focused
	if a.popup != nil {
		prev = a.popup.prevFocus
	}
	a.popup = &overlay{child: e, x: x, y: y, prevFocus: prev}
	a.Focus(e)
}

func (a *App) ClosePopup() {
	if a.popup == nil {
		return
	}
	prev := a.popup.prevFocus
	a.popup, a.popTree = nil, nil
	if prev != nil {
		a.Focus(prev)
	}
}

func (a *App) PopupOpen() bool { return a.popup != nil }

// Layout builds the layout tree for the current screen size and notifies
// observers. An observer asking for it gets one more pass.
func (a *App) Layout() {
	if a.root == nil {
		return
	}
	w, h := a.screen.Size()
	for pass := range 2 {
		a.tree = a.root.Layout(Rect{W: w, H: h})
		again := false
		walk(a.tree, func(n *Node) {
			if o, ok := n.Element.(LayoutObserver); ok && o.LayoutUpdated() {
				again = true
			}
		})
		if !again {
			break
		}
		a.Logger.Debug("layout invalidated by observer", "pass", pass)
	}
	a.popTree = nil
	if a.popup != nil {
		a.popTree = a.popup.Layout(Rect{W: w, H: h})
	}
}

// Draw lays out and repaints the whole screen.
func (a *App) Draw() {
	a.screen.HideCursor()
	a.screen.Fill(' ', Style{FG: Theme.Foreground, BG: Theme.Background}.Apply())
	a.Layout()
	drawTree(a.tree, a.screen)
	drawTree(a.popTree, a.screen)
	a.screen.Show()
}

func (a *App) Run() error {
	if err := a.screen.Init(); err != nil {
		return err
	}
	defer a.screen.Fini()
	a.screen.EnableMouse()

	a.Draw()
	for !a.done {
		ev := a.screen.PollEvent()
		if ev == nil {
			// screen finalized
			return nil
		}
		if a.HandleEvent(ev) {
			return nil
		}
		// redrawing after every event is efficient enough
		// and the most concise for a simple TUI
		a.Draw()
	}
	return nil
}

// HandleEvent dispatches one event and reports whether the app should quit.
func (a *App) HandleEvent(ev tcell.Event) (quit bool) {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		a.screen.Sync()
	case *tcell.EventInterrupt:
		if fn, ok := ev.Data().(func()); ok {
			fn()
		}
		return a.done
	case *tcell.EventKey:
		return a.handleKey(ev)
	case *tcell.EventMouse:
		a.handleMouse(ev)
	}
	return false
}

func (a *App) handleKey(ev *tcell.EventKey) bool {
	if a.popup != nil && ev.Key() == tcell.KeyEscape {
		a.ClosePopup()
		return false
	}
	if h, ok := a.focused.(KeyHandler); ok && h.HandleKey(ev) {
		return false
	}
	if a.OnKey != nil && a.OnKey(ev) {
		return false
	}
	return ev.Key() == a.QuitKey
}

func (a *App) handleMouse(ev *tcell.EventMouse) {
	if a.tree == nil {
		a.Layout()
	}
	x, y := ev.Position()
	switch btn := ev.Buttons(); {
	case btn&tcell.ButtonPrimary != 0:
		if a.captured != nil {
			if d, ok := a.captured.Element.(Draggable); ok {
				d.OnMouseMove(x-a.captured.Rect.X, y-a.captured.Rect.Y)
			}
			return
		}
		a.press(x, y)
	case btn&(tcell.WheelUp|tcell.WheelDown) != 0:
		dy := 1
		if btn&tcell.WheelUp != 0 {
			dy = -1
		}
		if n := a.find(x, y, isScroller); n != nil {
			n.Element.(Scroller).OnScroll(dy)
		}
	default:
		if c := a.captured; c != nil {
			a.captured = nil
			c.Element.(Clickable).OnMouseUp(x-c.Rect.X, y-c.Rect.Y)
		}
		a.hover(x, y)
	}
}

func (a *App) press(x, y int) {
	if a.popup != nil && hitTest(a.popTree, x, y, nil) == nil {
		// click outside closes the popup and is not delivered
		a.ClosePopup()
		return
	}
	if n := a.find(x, y, isClickable); n != nil {
		a.captured = n
		a.Focus(n.Element)
		n.Element.(Clickable).OnMouseDown(x-n.Rect.X, y-n.Rect.Y)
	}
}

func (a *App) hover(x, y int) {
	n := a.find(x, y, isHoverable)
	var e Element
	if n != nil {
		e = n.Element
	}
	if e != a.hovered {
		if h, ok := a.hovered.(Hoverable); ok {
			h.OnMouseLeave()
		}
		a.hovered = e
		if h, ok := e.(Hoverable); ok {
			h.OnMouseEnter()
		}
	}
	if d, ok := e.(Draggable); ok {
		d.OnMouseMove(x-n.Rect.X, y-n.Rect.Y)
	}
}

// find hit-tests the popup first, then the main tree.
func (a *App) find(x, y int, want func(Element) bool) *Node {
	if a.popTree != nil {
		if n := hitTest(a.popTree, x, y, want); n != nil {
			return n
		}
		if a.popTree.Rect.Contains(x, y) {
			return nil
		}
	}
	return hitTest(a.tree, x, y, want)
}

func isScroller(e Element) bool  { _, ok := e.(Scroller); return ok }
func isHoverable(e Element) bool { _, ok := e.(Hoverable); return ok }
func isClickable(e Element) bool { _, ok := e.(Clickable); return ok }
