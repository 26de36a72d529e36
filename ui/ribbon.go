package ui

import (
	"github.com/charmbracelet/log"
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/cansyan/ribbon/ribbon"
)

// Rows of a RibbonView, relative to its top.
const (
	rowTabs   = 0
	rowItems  = 1 // two rows of items
	rowTitles = 3

	ribbonHeight = 4
)

const (
	arrowLeft  = '◀'
	arrowRight = '▶'
	dropdown   = '▾'
	checkMark  = '✓'
)

// RibbonView draws a ribbon.Ribbon: a row of tab headers above the groups of
// the selected tab. It is the ribbon's Host.
type RibbonView struct {
	Ribbon     *ribbon.Ribbon
	ScrollStep int // cells per wheel notch or arrow click
	Logger     *log.Logger

	app     *App
	rect    Rect
	width   int
	widths  map[widthKey]int
	headers map[*ribbon.Tab]*tabHeader

	regions []region
	boxes   []groupBox
	tabClip span
	cmdClip span

	dirty  bool
	reveal bool

	hover    *region
	press    *region
	hoverY   int
	dragging bool
	drop     *region // tab header the press would drop onto
	before   bool
	focused  bool
}

type widthKey struct {
	g    *ribbon.Group
	mode ribbon.SizeMode
}

// tabHeader is the realized header of a tab.
type tabHeader struct {
	tab      *ribbon.Tab
	selected bool
	x, w     int // in tab bar content coordinates
}

func (h *tabHeader) SetSelected(v bool) { h.selected = v }

type regionKind int

const (
	regionTab regionKind = iota
	regionItem
	regionGroup // an icon-only group, opens a dropdown
	regionScroll
)

// region is a clickable area, relative to the view. rect is clipped to the
// bar viewport, full is not.
type region struct {
	kind  regionKind
	rect  Rect
	full  Rect
	tab   *ribbon.Tab
	group *ribbon.Group
	item  *ribbon.Item
	bar   ribbon.Bar
	dir   ribbon.ScrollDirection
}

func (r *region) is(o *region) bool {
	return r != nil && o != nil && r.kind == o.kind && r.tab == o.tab &&
		r.group == o.group && r.item == o.item && r.bar == o.bar && r.dir == o.dir
}

type groupBox struct {
	g    *ribbon.Group
	rect Rect
}

// span is a half-open range of columns.
type span struct{ lo, hi int }

// NewRibbonView binds r to a new view. Work the ribbon defers runs through
// app.Post.
func NewRibbonView(app *App, r *ribbon.Ribbon) *RibbonView {
	v := &RibbonView{
		Ribbon:     r,
		ScrollStep: 4,
		Logger:     app.Logger,
		app:        app,
		widths:     map[widthKey]int{},
		headers:    map[*ribbon.Tab]*tabHeader{},
	}
	r.SelectedTabChanged.Subscribe(func(ribbon.SelectionChange) {
		v.dirty = true
		v.reveal = true
	})
	r.TabsCleared.Subscribe(func(struct{}) {
		clear(v.headers)
		clear(v.widths)
		v.dirty = true
	})
	r.Bind(v)
	return v
}

// RenderedWidth implements ribbon.Measurer.
func (v *RibbonView) RenderedWidth(n ribbon.Node) int {
	switch n := n.(type) {
	case *ribbon.Group:
		return v.groupWidth(n)
	case ribbon.Bar:
		return v.width
	case ribbon.Viewport:
		if v.scroller(ribbon.Bar(n)).ButtonsVisible() {
			return max(v.width-2, 0)
		}
		return v.width
	case ribbon.Content:
		total := 0
		if ribbon.Bar(n) == ribbon.TabBar {
			for _, t := range v.Ribbon.Tabs() {
				if t.IsVisible() {
					total += headerWidth(t)
				}
			}
			return total
		}
		if t := v.Ribbon.SelectedTab(); t != nil {
			for _, g := range t.Groups() {
				total += v.groupWidth(g)
			}
		}
		return total
	}
	return 0
}

// ForceRemeasure implements ribbon.Measurer.
func (v *RibbonView) ForceRemeasure(n ribbon.Node) {
	if g, ok := n.(*ribbon.Group); ok {
		for _, m := range []ribbon.SizeMode{ribbon.Standard, ribbon.Compact, ribbon.IconOnly} {
			delete(v.widths, widthKey{g, m})
		}
	}
	v.dirty = true
}

// TryGetContainer implements ribbon.ContainerSource. Headers exist once a
// layout pass has seen their tab.
func (v *RibbonView) TryGetContainer(t *ribbon.Tab) (ribbon.Container, bool) {
	h, ok := v.headers[t]
	if !ok {
		return nil, false
	}
	return h, true
}

// Post implements ribbon.Dispatcher.
func (v *RibbonView) Post(fn func()) { v.app.Post(fn) }

func (v *RibbonView) scroller(b ribbon.Bar) *ribbon.ScrollController {
	if b == ribbon.TabBar {
		return v.Ribbon.TabScroll
	}
	return v.Ribbon.CommandScroll
}

func headerWidth(t *ribbon.Tab) int {
	return runewidth.StringWidth(t.Title) + 2
}

func iconWidth(it *ribbon.Item) int {
	return max(runewidth.RuneWidth(it.Icon), 1)
}

// itemWidth is the width of an item drawn at size, padding included.
func itemWidth(it *ribbon.Item, size ribbon.ItemSize) int {
	text := runewidth.StringWidth(it.Text())
	switch size {
	case ribbon.SizeIconOnly:
		return iconWidth(it) + 2 // " i "
	case ribbon.SizeLarge:
		return max(iconWidth(it), text) + 2
	case ribbon.SizeContent:
		return iconWidth(it) + text + 5 // " i text ▾ "
	default:
		return iconWidth(it) + text + 3 // " i text "
	}
}

type column struct {
	items []*ribbon.Item
	w     int
	large bool
}

// itemColumns packs the items of g: large items take a column of their
// own, the others are stacked two per column.
func itemColumns(g *ribbon.Group) []column {
	var cols []column
	open := -1
	for _, it := range g.Items() {
		size := it.EffectiveSize()
		w := itemWidth(it, size)
		switch {
		case size == ribbon.SizeLarge:
			cols = append(cols, column{items: []*ribbon.Item{it}, w: w, large: true})
			open = -1
		case open >= 0:
			cols[open].items = append(cols[open].items, it)
			cols[open].w = max(cols[open].w, w)
			open = -1
		default:
			cols = append(cols, column{items: []*ribbon.Item{it}, w: w})
			open = len(cols) - 1
		}
	}
	return cols
}

func groupIcon(g *ribbon.Group) rune {
	if g.Icon != 0 {
		return g.Icon
	}
	if items := g.Items(); len(items) > 0 {
		return items[0].Icon
	}
	return dropdown
}

// groupWidth includes the separator column on the right.
func (v *RibbonView) groupWidth(g *ribbon.Group) int {
	key := widthKey{g, g.SizeMode()}
	if w, ok := v.widths[key]; ok {
		return w
	}
	var w int
	if g.SizeMode() == ribbon.IconOnly {
		w = max(runewidth.RuneWidth(groupIcon(g)), 1) + 3 // " i▾"
	} else {
		items := 0
		for _, c := range itemColumns(g) {
			items += c.w
		}
		w = max(items, runewidth.StringWidth(g.Title)) + 2
	}
	w++
	v.widths[key] = w
	return w
}

func (v *RibbonView) MinSize() (int, int) { return 10, ribbonHeight }

func (v *RibbonView) Layout(r Rect) *Node {
	v.rect = r
	v.realize()
	if r.W != v.width {
		v.width = r.W
		v.Logger.Debug("ribbon resized", "width", r.W)
		v.Ribbon.MeasureAndCompactGroups()
	}
	v.Ribbon.UpdateScrollVisibility()
	v.arrange()
	v.dirty = false
	return &Node{Element: v, Rect: r}
}

// LayoutUpdated implements LayoutObserver.
func (v *RibbonView) LayoutUpdated() bool {
	v.Ribbon.LayoutUpdated()
	return v.dirty
}

// realize creates headers for new tabs and drops those of removed ones.
func (v *RibbonView) realize() {
	seen := make(map[*ribbon.Tab]bool, v.Ribbon.Len())
	for _, t := range v.Ribbon.Tabs() {
		seen[t] = true
		if _, ok := v.headers[t]; !ok {
			v.headers[t] = &tabHeader{tab: t}
		}
	}
	for t := range v.headers {
		if !seen[t] {
			delete(v.headers, t)
		}
	}
}

// viewport returns the columns left for content in a bar and adds its
// scroll arrows when they are shown.
func (v *RibbonView) viewport(b ribbon.Bar, y, h int) span {
	w := v.rect.W
	if !v.scroller(b).ButtonsVisible() || w < 3 {
		return span{0, w}
	}
	v.regions = append(v.regions,
		region{kind: regionScroll, bar: b, dir: ribbon.ScrollLeft, rect: Rect{0, y, 1, h}, full: Rect{0, y, 1, h}},
		region{kind: regionScroll, bar: b, dir: ribbon.ScrollRight, rect: Rect{w - 1, y, 1, h}, full: Rect{w - 1, y, 1, h}},
	)
	return span{1, w - 1}
}

func (v *RibbonView) addRegion(rg region, clip span) {
	lo := max(rg.full.X, clip.lo)
	hi := min(rg.full.X+rg.full.W, clip.hi)
	if hi <= lo {
		return
	}
	rg.rect = Rect{lo, rg.full.Y, hi - lo, rg.full.H}
	v.regions = append(v.regions, rg)
}

// arrange computes the geometry of headers, groups and items.
func (v *RibbonView) arrange() {
	v.regions = v.regions[:0]
	v.boxes = v.boxes[:0]

	var visible []*tabHeader
	x := 0
	for _, t := range v.Ribbon.Tabs() {
		h := v.headers[t]
		if !t.IsVisible() || h == nil {
			continue
		}
		h.x, h.w = x, headerWidth(t)
		x += h.w
		visible = append(visible, h)
	}
	if v.reveal {
		if h := v.headers[v.Ribbon.SelectedTab()]; h != nil {
			v.Ribbon.TabScroll.Reveal(h.x, h.x+h.w)
		}
		v.reveal = false
	}

	v.tabClip = v.viewport(ribbon.TabBar, rowTabs, 1)
	off := v.tabClip.lo - v.Ribbon.TabScroll.Offset()
	for _, h := range visible {
		v.addRegion(region{kind: regionTab, tab: h.tab, full: Rect{off + h.x, rowTabs, h.w, 1}}, v.tabClip)
	}

	v.cmdClip = v.viewport(ribbon.CommandBar, rowItems, ribbonHeight-rowItems)
	t := v.Ribbon.SelectedTab()
	if t == nil {
		return
	}
	gx := v.cmdClip.lo - v.Ribbon.CommandScroll.Offset()
	for _, g := range t.Groups() {
		gw := v.groupWidth(g)
		v.boxes = append(v.boxes, groupBox{g: g, rect: Rect{gx, rowItems, gw, ribbonHeight - rowItems}})
		if g.SizeMode() == ribbon.IconOnly {
			v.addRegion(region{kind: regionGroup, group: g, full: Rect{gx, rowItems, gw - 1, 2}}, v.cmdClip)
			gx += gw
			continue
		}
		cx := gx + 1
		for _, c := range itemColumns(g) {
			if c.large {
				v.addRegion(region{kind: regionItem, group: g, item: c.items[0], full: Rect{cx, rowItems, c.w, 2}}, v.cmdClip)
			} else {
				for i, it := range c.items {
					v.addRegion(region{kind: regionItem, group: g, item: it, full: Rect{cx, rowItems + i, c.w, 1}}, v.cmdClip)
				}
			}
			cx += c.w
		}
		gx += gw
	}
}

func (v *RibbonView) regionAt(x, y int) *region {
	for i := range v.regions {
		if v.regions[i].rect.Contains(x, y) {
			rg := v.regions[i]
			return &rg
		}
	}
	return nil
}

// put draws str at view-relative (x, y), skipping cells outside clip.
func (v *RibbonView) put(s Screen, x, y int, str string, st Style, clip span) int {
	tst := st.Apply()
	for _, r := range str {
		rw := runewidth.RuneWidth(r)
		if x >= clip.lo && x+rw <= clip.hi {
			s.SetContent(v.rect.X+x, v.rect.Y+y, r, nil, tst)
		}
		x += rw
	}
	return x
}

func (v *RibbonView) base() Style {
	return Style{FG: Theme.Foreground, BG: Theme.Bar}
}

func (v *RibbonView) Draw(s Screen, rect Rect) {
	ResetRect(s, rect, v.base())
	for _, b := range v.boxes {
		v.drawGroup(s, b)
	}
	for i := range v.regions {
		rg := &v.regions[i]
		switch rg.kind {
		case regionTab:
			v.drawHeader(s, rg)
		case regionItem:
			v.drawItem(s, rg)
		case regionGroup:
			v.drawIconGroup(s, rg)
		case regionScroll:
			v.drawArrow(s, rg)
		}
	}
	if v.dragging && v.drop != nil {
		x := v.drop.full.X
		if !v.before {
			x += v.drop.full.W - 1
		}
		v.put(s, x, rowTabs, string(vLine), v.base().Merge(Style{FG: Theme.Accent, FontBold: true}), v.tabClip)
	}
}

func (v *RibbonView) drawHeader(s Screen, rg *region) {
	st := v.base()
	if h := v.headers[rg.tab]; h != nil && h.selected {
		st = st.Merge(Style{FG: Theme.Accent, FontBold: true, FontUnderline: true})
	}
	if rg.is(v.hover) {
		st.BG = Theme.Hover
	}
	if v.dragging && v.press != nil && v.press.tab == rg.tab {
		st.FontItalic = true
	}
	v.put(s, rg.full.X, rg.full.Y, " "+rg.tab.Title+" ", st, v.tabClip)
}

func (v *RibbonView) itemStyle(rg *region) Style {
	it := rg.item
	st := v.base()
	switch {
	case it.Disabled:
		st.FG = Theme.Muted
	case rg.is(v.press) && rg.is(v.hover):
		st.FontReverse = true
	case rg.is(v.hover):
		st.BG = Theme.Hover
	case it.Kind == ribbon.KindToggle && it.Checked:
		st.BG = Theme.Selection
	}
	return st
}

func (v *RibbonView) drawItem(s Screen, rg *region) {
	it := rg.item
	st := v.itemStyle(rg)
	f := rg.full
	for y := f.Y; y < f.Y+f.H; y++ {
		v.put(s, f.X, y, runewidth.FillRight("", f.W), st, v.cmdClip)
	}

	icon := string(it.Icon)
	if it.Icon == 0 {
		icon = " "
	}
	switch it.EffectiveSize() {
	case ribbon.SizeLarge:
		iw := iconWidth(it)
		v.put(s, f.X+(f.W-iw)/2, f.Y, icon, st, v.cmdClip)
		tw := runewidth.StringWidth(it.Text())
		v.put(s, f.X+(f.W-tw)/2, f.Y+1, it.Text(), st, v.cmdClip)
	case ribbon.SizeIconOnly:
		v.put(s, f.X+1, f.Y, icon, st, v.cmdClip)
	case ribbon.SizeContent:
		v.put(s, f.X+1, f.Y, icon+" "+it.Text()+" "+string(dropdown), st, v.cmdClip)
	default:
		v.put(s, f.X+1, f.Y, icon+" "+it.Text(), st, v.cmdClip)
	}
}

func (v *RibbonView) drawIconGroup(s Screen, rg *region) {
	st := v.base()
	if rg.is(v.hover) {
		st.BG = Theme.Hover
	}
	f := rg.full
	v.put(s, f.X, f.Y, runewidth.FillRight(" "+string(groupIcon(rg.group))+string(dropdown), f.W), st, v.cmdClip)
	v.put(s, f.X, f.Y+1, runewidth.FillRight("", f.W), st, v.cmdClip)
}

func (v *RibbonView) drawGroup(s Screen, b groupBox) {
	r := b.rect
	title := b.g.Title
	if tw := runewidth.StringWidth(title); tw > r.W-1 {
		title = runewidth.Truncate(title, r.W-1, "…")
	}
	tx := r.X + (r.W-1-runewidth.StringWidth(title))/2
	v.put(s, tx, rowTitles, title, v.base().Merge(Style{FG: Theme.Muted}), v.cmdClip)

	sep := v.base().Merge(Style{FG: Theme.Border})
	for y := r.Y; y < r.Y+r.H; y++ {
		v.put(s, r.X+r.W-1, y, string(vLine), sep, v.cmdClip)
	}
}

func (v *RibbonView) drawArrow(s Screen, rg *region) {
	sc := v.scroller(rg.bar)
	ch, enabled := arrowLeft, sc.Offset() > 0
	if rg.dir == ribbon.ScrollRight {
		ch, enabled = arrowRight, sc.Offset() < sc.ScrollableWidth()
	}
	st := v.base().Merge(Style{FG: Theme.Accent})
	if !enabled {
		st.FG = Theme.Muted
	}
	y := rg.rect.Y + rg.rect.H/2
	DrawString(s, v.rect.X+rg.rect.X, v.rect.Y+y, 1, string(ch), st)
}

func (v *RibbonView) OnMouseEnter() {}

func (v *RibbonView) OnMouseLeave() {
	v.hover = nil
}

func (v *RibbonView) OnMouseDown(x, y int) {
	rg := v.regionAt(x, y)
	v.press, v.dragging, v.drop = rg, false, nil
	if rg == nil {
		return
	}
	switch rg.kind {
	case regionTab:
		v.Ribbon.SelectTab(rg.tab)
	case regionScroll:
		v.scroller(rg.bar).ScrollBy(rg.dir, v.ScrollStep)
	}
}

func (v *RibbonView) OnMouseMove(x, y int) {
	v.hoverY = y
	if v.press == nil || v.press.kind != regionTab {
		v.hover = v.regionAt(x, y)
		return
	}
	// dragging a tab header
	if !v.dragging && v.press.rect.Contains(x, y) {
		return
	}
	v.dragging = true
	v.drop = nil
	if target := v.regionAt(x, rowTabs); target != nil && target.kind == regionTab && target.tab != v.press.tab {
		v.drop = target
		v.before = x < target.full.X+target.full.W/2
	}
}

func (v *RibbonView) OnMouseUp(x, y int) {
	press, drop := v.press, v.drop
	dragging, before := v.dragging, v.before
	v.press, v.drop, v.dragging = nil, nil, false
	if press == nil {
		return
	}

	if dragging {
		if drop != nil && v.Ribbon.HandleDrop(press.tab, drop.tab, before) {
			v.Logger.Debug("tab dropped", "tab", press.tab.Title, "target", drop.tab.Title, "before", before)
		}
		return
	}
	if !press.is(v.regionAt(x, y)) {
		return
	}
	switch press.kind {
	case regionItem:
		if press.item.Activate() {
			v.Logger.Debug("item activated", "item", press.item.Label, "group", press.group.Title)
		}
	case regionGroup:
		v.openDropdown(press.group, press.full)
	}
}

func (v *RibbonView) OnScroll(dy int) {
	b := ribbon.CommandBar
	if v.hoverY == rowTabs {
		b = ribbon.TabBar
	}
	dir := ribbon.ScrollRight
	if dy < 0 {
		dir = ribbon.ScrollLeft
	}
	v.scroller(b).ScrollBy(dir, v.ScrollStep)
}

func (v *RibbonView) OnFocus() { v.focused = true }
func (v *RibbonView) OnBlur()  { v.focused = false }

func (v *RibbonView) HandleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyLeft:
		v.step(-1)
	case tcell.KeyRight:
		v.step(1)
	case tcell.KeyHome:
		v.Ribbon.CommandScroll.ScrollBy(ribbon.ScrollHome, 0)
	case tcell.KeyEnd:
		v.Ribbon.CommandScroll.ScrollBy(ribbon.ScrollEnd, 0)
	default:
		return false
	}
	return true
}

// step selects the nearest visible tab in direction d.
func (v *RibbonView) step(d int) bool {
	tabs := v.Ribbon.Tabs()
	for i := v.Ribbon.SelectedIndex() + d; i >= 0 && i < len(tabs); i += d {
		if tabs[i].IsVisible() {
			return v.Ribbon.SelectTab(tabs[i])
		}
	}
	return false
}

// openDropdown lists the items of an icon-only group below it.
func (v *RibbonView) openDropdown(g *ribbon.Group, at Rect) {
	l := &List{Index: -1}
	for _, it := range g.Items() {
		name := string(it.Icon) + " " + it.Text()
		if it.Kind == ribbon.KindToggle {
			mark := " "
			if it.Checked {
				mark = string(checkMark)
			}
			name = mark + " " + name
		}
		l.Append(ListItem{Name: name, Value: it, Disabled: it.Disabled})
	}
	l.OnSelect = func(li ListItem) {
		v.app.ClosePopup()
		li.Value.(*ribbon.Item).Activate()
	}
	v.app.ShowPopup(Border(l), v.rect.X+at.X, v.rect.Y+at.Y+at.H)
}
