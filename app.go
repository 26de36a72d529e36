package main

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/gdamore/tcell/v2"

	"github.com/cansyan/ribbon/config"
	"github.com/cansyan/ribbon/ribbon"
	"github.com/cansyan/ribbon/ui"
)

// IDs the demo looks for in a layout.
const (
	developerTab  = "developer"
	developerItem = "show-developer"
)

// keyCommands binds keys the document leaves alone to layout commands.
var keyCommands = map[tcell.Key]string{
	tcell.KeyCtrlC: "copy",
	tcell.KeyCtrlX: "cut",
	tcell.KeyCtrlV: "paste",
	tcell.KeyCtrlA: "select-all",
	tcell.KeyCtrlF: "find",
	tcell.KeyCtrlR: "reload",
}

// demo is a one-line document under a ribbon built from a layout file.
type demo struct {
	settings *config.Settings
	log      *log.Logger
	app      *ui.App
	ribbon   *ribbon.Ribbon
	view     *ui.RibbonView
	doc      *ui.Input
	clip     clip
	cmds     config.Commands
	now      func() time.Time

	loaded     bool
	showDev    bool
	showStatus bool
	align      string
	last       string // last command
	note       string // its result, if any
}

func newDemo(s ui.Screen, settings *config.Settings, logger *log.Logger) (*demo, error) {
	d := &demo{
		settings:   settings,
		log:        logger,
		now:        time.Now,
		showStatus: true,
		align:      "left",
	}
	d.app = ui.NewApp(s)
	d.app.Logger = logger
	d.app.OnKey = d.handleKey
	d.ribbon = ribbon.New(ribbon.WithLogger(logger))
	d.view = ui.NewRibbonView(d.app, d.ribbon)
	d.view.ScrollStep = settings.ScrollStep
	d.doc = &ui.Input{Placeholder: "Type here. Ctrl+Q quits."}
	d.cmds = d.commands()

	l, err := config.LoadLayout(settings.Layout)
	if err != nil {
		return nil, err
	}
	if err := d.apply(l); err != nil {
		return nil, err
	}

	d.app.SetRoot(ui.VStack(
		d.view,
		&ui.Divider{},
		ui.Grow(ui.Pad(d.doc, 1)),
		&statusLine{Text: ui.NewText(""), d: d},
	))
	d.app.Focus(d.doc)
	return d, nil
}

// apply replaces the ribbon's tabs. The selected tab and the Developer
// toggle survive when the new layout still has them.
func (d *demo) apply(l *config.Layout) error {
	tabs, err := l.Build(d.cmds)
	if err != nil {
		return err
	}
	var selected string
	if t := d.ribbon.SelectedTab(); t != nil {
		selected = t.ID
	}

	d.ribbon.Clear()
	for _, t := range tabs {
		if t.ID == developerTab {
			if d.loaded {
				t.SetVisible(d.showDev)
			} else {
				d.showDev = t.IsVisible()
			}
		}
		if it := findItem(t, developerItem); it != nil {
			it.Checked = d.showDev
		}
		d.ribbon.AddTab(t)
	}
	if t := d.ribbon.TabByID(selected); t != nil {
		// waits for the new header when the ribbon is on screen
		d.ribbon.SelectTab(t)
	}
	d.loaded = true
	d.log.Info("layout applied", "tabs", len(tabs), "selected", selected)
	return nil
}

func findItem(t *ribbon.Tab, id string) *ribbon.Item {
	for _, g := range t.Groups() {
		for _, it := range g.Items() {
			if it.ID == id {
				return it
			}
		}
	}
	return nil
}

func (d *demo) commands() config.Commands {
	cmds := config.Commands{
		"paste": func(*ribbon.Item) { d.doc.Insert(d.clip.Read()) },
		"copy":  func(*ribbon.Item) { d.clip.Write(d.doc.SelectedText()) },
		"cut": func(*ribbon.Item) {
			s := d.doc.SelectedText()
			d.clip.Write(s)
			if s == d.doc.String() {
				d.doc.SetText("")
			} else {
				d.doc.Insert("")
			}
		},
		"format": func(it *ribbon.Item) {
			switch it.Kind {
			case ribbon.KindToggle:
				d.note = fmt.Sprintf("%s %s", it.Label, onOff(it.Checked))
			case ribbon.KindCombo:
				d.note = fmt.Sprintf("%s %s", it.Label, it.Text())
			}
		},
		"align": func(it *ribbon.Item) { d.align = strings.ToLower(it.Label) },
		"wrap":  func(it *ribbon.Item) { d.note = "wrap " + onOff(it.Checked) },
		"find":  func(*ribbon.Item) { d.find() },
		"select-all": func(*ribbon.Item) {
			d.doc.Select(0, utf8.RuneCountInString(d.doc.String()))
		},
		"clear":         func(*ribbon.Item) { d.doc.SetText("") },
		"insert-date":   func(*ribbon.Item) { d.doc.Insert(d.now().Format(time.DateOnly)) },
		"insert-line":   func(*ribbon.Item) { d.doc.Insert("----") },
		"insert-symbol": func(*ribbon.Item) { d.doc.Insert("§") },
		"insert-table":  func(*ribbon.Item) { d.doc.Insert("[table 2x2]") },
		"show-developer": func(it *ribbon.Item) {
			d.showDev = it.Checked
			if t := d.ribbon.TabByID(developerTab); t != nil {
				t.SetVisible(it.Checked)
			}
		},
		"show-status": func(it *ribbon.Item) { d.showStatus = it.Checked },
		"theme": func(it *ribbon.Item) {
			if err := ui.SetTheme(it.Text()); err != nil {
				d.log.Warn("theme not changed", "err", err)
			}
		},
		// the clicked item belongs to the ribbon being replaced
		"reload": func(*ribbon.Item) { d.app.Post(d.reload) },
		"dump":   func(*ribbon.Item) { d.note = d.modes() },
		"compact": func(*ribbon.Item) {
			d.note = fmt.Sprintf("%d mode changes", d.ribbon.MeasureAndCompactGroups())
		},
	}
	for name, fn := range cmds {
		cmds[name] = func(it *ribbon.Item) {
			d.last, d.note = name, ""
			d.log.Debug("command", "name", name)
			fn(it)
		}
	}
	return cmds
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func (d *demo) handleKey(ev *tcell.EventKey) bool {
	name, ok := keyCommands[ev.Key()]
	if !ok {
		return false
	}
	d.cmds[name](nil)
	return true
}

// find asks for a string and selects its first occurrence in the document.
func (d *demo) find() {
	q := &ui.Input{Placeholder: "Find"}
	btn := ui.NewButton("Find", func() { q.OnCommit(q.String()) })
	q.OnCommit = func(s string) {
		d.app.ClosePopup()
		text := d.doc.String()
		i := strings.Index(text, s)
		if s == "" || i < 0 {
			d.note = fmt.Sprintf("%q not found", s)
			return
		}
		start := utf8.RuneCountInString(text[:i])
		d.doc.Select(start, start+utf8.RuneCountInString(s))
	}
	st := ui.Style{FG: ui.Theme.Foreground, BG: ui.Theme.Bar}
	btn.Style = st
	row := ui.HStack(ui.Grow(ui.Frame(q, 24, 1)), btn).Spacing(1)
	d.app.ShowPopup(ui.Border(ui.Background(ui.PadH(row, 1), st)), 1, 5)
	d.app.Focus(q)
}

func (d *demo) reload() {
	l, err := config.LoadLayout(d.settings.Layout)
	if err == nil {
		err = d.apply(l)
	}
	if err != nil {
		d.log.Error("reload failed", "err", err)
		d.note = err.Error()
	}
}

// modes lists the size mode of every group on the selected tab.
func (d *demo) modes() string {
	t := d.ribbon.SelectedTab()
	if t == nil {
		return ""
	}
	var parts []string
	for _, g := range t.Groups() {
		parts = append(parts, g.Title+"="+g.SizeMode().String())
	}
	return strings.Join(parts, " ")
}

func (d *demo) status() string {
	tab := "none"
	compacted := 0
	if t := d.ribbon.SelectedTab(); t != nil {
		tab = t.Title
		for _, g := range t.Groups() {
			if g.SizeMode() != ribbon.Standard {
				compacted++
			}
		}
	}
	parts := []string{"tab " + tab, "align " + d.align}
	if compacted > 0 {
		parts = append(parts, fmt.Sprintf("%d compacted", compacted))
	}
	if d.last != "" {
		parts = append(parts, d.last)
	}
	if d.note != "" {
		parts = append(parts, d.note)
	}
	return strings.Join(parts, " | ")
}

// statusLine is a Text refreshed from the demo on every draw.
type statusLine struct {
	*ui.Text
	d *demo
}

func (s *statusLine) Layout(r ui.Rect) *ui.Node { return &ui.Node{Element: s, Rect: r} }

func (s *statusLine) Draw(scr ui.Screen, r ui.Rect) {
	s.Style = ui.Style{FG: ui.Theme.Foreground, BG: ui.Theme.Bar}
	ui.ResetRect(scr, r, s.Style)
	s.SetText("")
	if s.d.showStatus {
		s.SetText(s.d.status())
	}
	s.Text.Draw(scr, ui.Rect{X: r.X + 1, Y: r.Y, W: max(r.W-2, 0), H: r.H})
}
