package ribbon

import (
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
)

// SizeMode is the rendering density of a group.
type SizeMode int

const (
	Standard SizeMode = iota
	Compact
	IconOnly
)

func (m SizeMode) String() string {
	switch m {
	case Standard:
		return "standard"
	case Compact:
		return "compact"
	case IconOnly:
		return "icon-only"
	default:
		return fmt.Sprintf("SizeMode(%d)", int(m))
	}
}

// ItemSize is how much room an item asks for.
type ItemSize int

const (
	SizeIconOnly ItemSize = iota
	SizeSmall
	SizeLarge
	SizeContent
)

func (s ItemSize) String() string {
	switch s {
	case SizeIconOnly:
		return "icon"
	case SizeSmall:
		return "small"
	case SizeLarge:
		return "large"
	case SizeContent:
		return "content"
	default:
		return fmt.Sprintf("ItemSize(%d)", int(s))
	}
}

// ParseItemSize parses the names printed by ItemSize.String.
func ParseItemSize(s string) (ItemSize, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "icon", "icon-only", "icononly":
		return SizeIconOnly, nil
	case "small":
		return SizeSmall, nil
	case "large":
		return SizeLarge, nil
	case "content":
		return SizeContent, nil
	}
	return 0, fmt.Errorf("unknown item size %q", s)
}

type Visibility int

const (
	Visible Visibility = iota
	Collapsed
)

func (v Visibility) String() string {
	if v == Collapsed {
		return "collapsed"
	}
	return "visible"
}

type ItemKind int

const (
	KindButton ItemKind = iota
	KindToggle
	KindCombo
)

// ParseItemKind accepts "button", "toggle" and "combo".
func ParseItemKind(s string) (ItemKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "button":
		return KindButton, nil
	case "toggle", "checkbox":
		return KindToggle, nil
	case "combo":
		return KindCombo, nil
	}
	return 0, fmt.Errorf("unknown item kind %q", s)
}

// Item is a command leaf inside a group.
type Item struct {
	ID           string
	Label        string
	Icon         rune
	Kind         ItemKind
	StandardSize ItemSize
	CompactSize  ItemSize
	Disabled     bool

	Checked  bool     // toggles
	Options  []string // combos
	Selected int      // combos, index into Options

	OnClick func(*Item)

	group *Group
}

// NewItem returns a button that is large normally and small when compacted.
func NewItem(label string, icon rune) *Item {
	return &Item{
		ID:           uuid.NewString(),
		Label:        label,
		Icon:         icon,
		StandardSize: SizeLarge,
		CompactSize:  SizeSmall,
	}
}

func (it *Item) Group() *Group { return it.group }

// EffectiveSize is the size the item is rendered at right now.
func (it *Item) EffectiveSize() ItemSize {
	if it.group != nil && it.group.mode != Standard {
		return it.CompactSize
	}
	return it.StandardSize
}

// Text is what the item shows next to its icon.
func (it *Item) Text() string {
	if it.Kind == KindCombo && it.Selected >= 0 && it.Selected < len(it.Options) {
		return it.Options[it.Selected]
	}
	return it.Label
}

// Activate runs the item's command. Toggles flip and combos move to the next
// option before OnClick is called.
func (it *Item) Activate() bool {
	if it.Disabled {
		return false
	}
	switch it.Kind {
	case KindToggle:
		it.Checked = !it.Checked
	case KindCombo:
		if len(it.Options) > 0 {
			it.Selected = (it.Selected + 1) % len(it.Options)
		}
	}
	if it.OnClick != nil {
		it.OnClick(it)
	}
	// combo text changes the item's width
	if it.Kind == KindCombo && it.group != nil {
		it.group.changed()
	}
	return true
}

// ModeChange describes a group switching size mode.
type ModeChange struct {
	Group    *Group
	Old, New SizeMode
}

// Group is a titled run of items on a tab, and the unit of compaction.
type Group struct {
	ID           string
	Title        string
	Icon         rune
	CompactOrder int // higher is compacted first

	ModeChanged Event[ModeChange]

	items []*Item
	mode  SizeMode
	tab   *Tab
}

func NewGroup(title string, compactOrder int, items ...*Item) *Group {
	g := &Group{ID: uuid.NewString(), Title: title, CompactOrder: compactOrder}
	for _, it := range items {
		g.AddItem(it)
	}
	return g
}

func (g *Group) Tab() *Tab          { return g.tab }
func (g *Group) SizeMode() SizeMode { return g.mode }
func (g *Group) ItemCount() int     { return len(g.items) }
func (g *Group) Items() []*Item     { return slices.Clone(g.items) }

// CanIconify reports whether the group may collapse to a single icon.
// A lone item gains nothing from it but costs the user an extra click.
func (g *Group) CanIconify() bool { return len(g.items) >= 2 }

// SetSizeMode changes the group's density and reports whether it changed.
// IconOnly is coerced to Compact for groups with fewer than two items.
func (g *Group) SetSizeMode(m SizeMode) bool {
	if m == IconOnly && !g.CanIconify() {
		m = Compact
	}
	if m == g.mode {
		return false
	}
	old := g.mode
	g.mode = m
	g.ModeChanged.emit(ModeChange{Group: g, Old: old, New: m})
	return true
}

func (g *Group) AddItem(it *Item) { g.InsertItem(len(g.items), it) }

func (g *Group) InsertItem(i int, it *Item) {
	if it == nil || it.group == g {
		return
	}
	if it.group != nil {
		it.group.RemoveItem(it)
	}
	it.group = g
	g.items = slices.Insert(g.items, min(max(i, 0), len(g.items)), it)
	g.changed()
}

func (g *Group) RemoveItem(it *Item) bool {
	i := slices.Index(g.items, it)
	if i < 0 {
		return false
	}
	g.items = slices.Delete(g.items, i, i+1)
	it.group = nil
	if g.mode == IconOnly && !g.CanIconify() {
		g.SetSizeMode(Compact)
	}
	g.changed()
	return true
}

func (g *Group) changed() {
	if g.tab != nil {
		g.tab.groupChanged(g)
	}
}

// Tab is a page of groups. Tabs belong to at most one Ribbon.
type Tab struct {
	ID         string
	Title      string
	FitToWidth bool // compact groups to fit the bar

	groups     []*Group
	visibility Visibility
	ribbon     *Ribbon
}

func NewTab(title string, groups ...*Group) *Tab {
	t := &Tab{ID: uuid.NewString(), Title: title, FitToWidth: true}
	for _, g := range groups {
		t.AddGroup(g)
	}
	return t
}

func (t *Tab) Ribbon() *Ribbon         { return t.ribbon }
func (t *Tab) Groups() []*Group        { return slices.Clone(t.groups) }
func (t *Tab) Visibility() Visibility  { return t.visibility }
func (t *Tab) IsVisible() bool         { return t.visibility == Visible }
func (t *Tab) GroupIndex(g *Group) int { return slices.Index(t.groups, g) }
func (t *Tab) String() string          { return t.Title }
func (t *Tab) AddGroup(g *Group)       { t.InsertGroup(len(t.groups), g) }

// SetVisible is a shorthand for SetVisibility.
func (t *Tab) SetVisible(visible bool) {
	if visible {
		t.SetVisibility(Visible)
	} else {
		t.SetVisibility(Collapsed)
	}
}

// SetVisibility shows or collapses the tab without removing it.
func (t *Tab) SetVisibility(v Visibility) {
	if v == t.visibility {
		return
	}
	t.visibility = v
	if t.ribbon != nil {
		t.ribbon.tabVisibilityChanged(t)
	}
}

func (t *Tab) InsertGroup(i int, g *Group) {
	if g == nil || g.tab == t {
		return
	}
	if g.tab != nil {
		g.tab.RemoveGroup(g)
	}
	g.tab = t
	t.groups = slices.Insert(t.groups, min(max(i, 0), len(t.groups)), g)
	t.groupChanged(g)
}

func (t *Tab) RemoveGroup(g *Group) bool {
	i := slices.Index(t.groups, g)
	if i < 0 {
		return false
	}
	t.groups = slices.Delete(t.groups, i, i+1)
	g.tab = nil
	t.groupChanged(g)
	return true
}

func (t *Tab) groupChanged(g *Group) {
	if t.ribbon != nil {
		t.ribbon.contentChanged(t, g)
	}
}
