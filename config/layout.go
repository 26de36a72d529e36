package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/cansyan/ribbon/ribbon"
)

//go:embed default.yaml
var defaultLayout []byte

// Layout is the YAML definition of a ribbon.
type Layout struct {
	Tabs []TabDef `yaml:"tabs"`
}

type TabDef struct {
	ID     string     `yaml:"id,omitempty"`
	Title  string     `yaml:"title"`
	Hidden bool       `yaml:"hidden,omitempty"`
	Fit    *bool      `yaml:"fit,omitempty"` // default true
	Groups []GroupDef `yaml:"groups,omitempty"`
}

type GroupDef struct {
	ID    string    `yaml:"id,omitempty"`
	Title string    `yaml:"title"`
	Icon  string    `yaml:"icon,omitempty"`  // defaults to the first letter of the title
	Order int       `yaml:"order,omitempty"` // higher is compacted first
	Items []ItemDef `yaml:"items"`
}

type ItemDef struct {
	ID          string   `yaml:"id,omitempty"`
	Label       string   `yaml:"label"`
	Icon        string   `yaml:"icon"`
	Kind        string   `yaml:"kind,omitempty"`         // button, toggle, combo
	Size        string   `yaml:"size,omitempty"`         // default large
	CompactSize string   `yaml:"compact_size,omitempty"` // default small
	Command     string   `yaml:"command,omitempty"`
	Disabled    bool     `yaml:"disabled,omitempty"`
	Checked     bool     `yaml:"checked,omitempty"`
	Options     []string `yaml:"options,omitempty"`
	Selected    int      `yaml:"selected,omitempty"`
}

// Commands maps the command names used in a layout to item handlers.
type Commands map[string]func(*ribbon.Item)

// DefaultLayout returns the built-in ribbon.
func DefaultLayout() *Layout {
	l, err := ParseLayout(defaultLayout)
	if err != nil {
		panic(fmt.Sprintf("built-in layout: %v", err))
	}
	return l
}

// LoadLayout reads a layout file. An empty path yields the built-in layout.
func LoadLayout(path string) (*Layout, error) {
	if path == "" {
		return DefaultLayout(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read layout: %w", err)
	}
	l, err := ParseLayout(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return l, nil
}

// ParseLayout decodes and validates a layout. Unknown fields are errors.
func ParseLayout(data []byte) (*Layout, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var l Layout
	if err := dec.Decode(&l); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty layout")
		}
		return nil, fmt.Errorf("failed to decode layout: %w", err)
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return &l, nil
}

// Validate checks titles, icons, kinds and sizes, and that no two
// elements end up with the same ID.
func (l *Layout) Validate() error {
	if len(l.Tabs) == 0 {
		return errors.New("layout has no tabs")
	}
	seen := make(map[string]string)
	unique := func(id, where string) error {
		if prev, ok := seen[id]; ok {
			return fmt.Errorf("%s: id %q already used by %s", where, id, prev)
		}
		seen[id] = where
		return nil
	}

	for i, t := range l.Tabs {
		if strings.TrimSpace(t.Title) == "" {
			return fmt.Errorf("tab %d: missing title", i)
		}
		tp := t.Title
		if err := unique(stableID(t.ID, tp), "tab "+tp); err != nil {
			return err
		}
		for j, g := range t.Groups {
			if strings.TrimSpace(g.Title) == "" {
				return fmt.Errorf("tab %s, group %d: missing title", tp, j)
			}
			gp := tp + "/" + g.Title
			if g.Icon != "" && utf8.RuneCountInString(g.Icon) != 1 {
				return fmt.Errorf("group %s: icon %q is not a single character", gp, g.Icon)
			}
			if err := unique(stableID(g.ID, gp), "group "+gp); err != nil {
				return err
			}
			for k, it := range g.Items {
				if err := it.validate(gp, k); err != nil {
					return err
				}
				ip := gp + "/" + it.Label
				if err := unique(stableID(it.ID, ip), "item "+ip); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (it *ItemDef) validate(group string, i int) error {
	if strings.TrimSpace(it.Label) == "" {
		return fmt.Errorf("group %s, item %d: missing label", group, i)
	}
	where := "item " + group + "/" + it.Label
	if utf8.RuneCountInString(it.Icon) != 1 {
		return fmt.Errorf("%s: icon %q is not a single character", where, it.Icon)
	}
	kind, err := ribbon.ParseItemKind(it.Kind)
	if err != nil {
		return fmt.Errorf("%s: %w", where, err)
	}
	for _, s := range []string{it.Size, it.CompactSize} {
		if s == "" {
			continue
		}
		if _, err := ribbon.ParseItemSize(s); err != nil {
			return fmt.Errorf("%s: %w", where, err)
		}
	}
	if kind == ribbon.KindCombo {
		if len(it.Options) == 0 {
			return fmt.Errorf("%s: combo without options", where)
		}
		if it.Selected < 0 || it.Selected >= len(it.Options) {
			return fmt.Errorf("%s: selected %d out of range", where, it.Selected)
		}
	} else if len(it.Options) > 0 {
		return fmt.Errorf("%s: options on a non-combo item", where)
	}
	return nil
}

// Build turns the layout into ribbon tabs. Every command named by an item
// must be in cmds; nil cmds leaves all items without a handler.
func (l *Layout) Build(cmds Commands) ([]*ribbon.Tab, error) {
	var tabs []*ribbon.Tab
	for _, td := range l.Tabs {
		tab := ribbon.NewTab(td.Title)
		tab.ID = stableID(td.ID, td.Title)
		if td.Fit != nil {
			tab.FitToWidth = *td.Fit
		}
		if td.Hidden {
			tab.SetVisible(false)
		}
		for _, gd := range td.Groups {
			g, err := gd.build(td.Title, cmds)
			if err != nil {
				return nil, err
			}
			tab.AddGroup(g)
		}
		tabs = append(tabs, tab)
	}
	return tabs, nil
}

func (gd *GroupDef) build(tab string, cmds Commands) (*ribbon.Group, error) {
	path := tab + "/" + gd.Title
	g := ribbon.NewGroup(gd.Title, gd.Order)
	g.ID = stableID(gd.ID, path)
	icon := gd.Icon
	if icon == "" {
		icon = strings.ToUpper(gd.Title)
	}
	g.Icon = firstRune(icon)

	for _, d := range gd.Items {
		it := ribbon.NewItem(d.Label, firstRune(d.Icon))
		it.ID = stableID(d.ID, path+"/"+d.Label)
		// validated before
		it.Kind, _ = ribbon.ParseItemKind(d.Kind)
		if d.Size != "" {
			it.StandardSize, _ = ribbon.ParseItemSize(d.Size)
		}
		if d.CompactSize != "" {
			it.CompactSize, _ = ribbon.ParseItemSize(d.CompactSize)
		}
		it.Disabled = d.Disabled
		it.Checked = d.Checked
		it.Options = slices.Clone(d.Options)
		it.Selected = d.Selected

		if d.Command != "" && cmds != nil {
			fn, ok := cmds[d.Command]
			if !ok {
				return nil, fmt.Errorf("item %s/%s: unknown command %q", path, d.Label, d.Command)
			}
			it.OnClick = fn
		}
		g.AddItem(it)
	}
	return g, nil
}

func firstRune(s string) rune {
	r, _ := utf8.DecodeRuneInString(s)
	return r
}

var idSpace = uuid.NewSHA1(uuid.NameSpaceOID, []byte(AppName))

// stableID keeps an explicit id, or derives one from the element's path
// so it stays the same across reloads.
func stableID(id, path string) string {
	if id != "" {
		return id
	}
	return uuid.NewSHA1(idSpace, []byte(path)).String()
}
