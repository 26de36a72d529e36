package main

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"github.com/cansyan/ribbon/config"
	"github.com/cansyan/ribbon/ribbon"
	"github.com/cansyan/ribbon/ui"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgFile string
	root := &cobra.Command{
		Use:          "ribbon",
		Short:        "A terminal document editor with an adaptive ribbon toolbar",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := config.Load(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}
			return run(s)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is config.yaml in /etc/ribbon, ~/.config/ribbon or .)")
	pf.String("layout", "", "ribbon layout file (default is the built-in layout)")
	pf.String("log-file", "", "write logs to this file")
	pf.String("log-level", "info", "debug, info, warn or error")
	pf.String("theme", "auto", "auto, light or dark")
	root.Flags().Bool("watch", false, "reload the layout file when it changes")

	root.AddCommand(newPreviewCmd(&cfgFile))
	return root
}

func newPreviewCmd(cfgFile *string) *cobra.Command {
	var width int
	var tab string
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Print the ribbon as it renders at a given width",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := config.Load(*cfgFile, cmd.Flags())
			if err != nil {
				return err
			}
			l, err := config.LoadLayout(s.Layout)
			if err != nil {
				return err
			}
			return preview(cmd.OutOrStdout(), l, width, tab)
		},
	}
	cmd.Flags().IntVarP(&width, "width", "w", 80, "terminal width")
	cmd.Flags().StringVarP(&tab, "tab", "t", "", "tab to select, by title")
	return cmd
}

func run(s *config.Settings) error {
	if err := ui.SetTheme(s.Theme); err != nil {
		return err
	}
	logger, closer, err := newLogger(s)
	if err != nil {
		return err
	}
	defer closer.Close()

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to open terminal: %w", err)
	}
	d, err := newDemo(screen, s, logger)
	if err != nil {
		return err
	}
	if err := d.clip.useSystem(); err != nil {
		logger.Warn("system clipboard unavailable, copying within the app only", "err", err)
	}

	if s.Watch {
		w, err := config.WatchLayout(s.Layout, logger)
		if err != nil {
			return err
		}
		defer w.Close()
		w.OnChange(func(l *config.Layout) {
			d.app.Post(func() {
				if err := d.apply(l); err != nil {
					logger.Error("layout not applied", "err", err)
					d.note = err.Error()
				}
			})
		})
	}

	logger.Info("starting", "config", s.File, "layout", s.Layout, "theme", ui.Theme.Name)
	return d.app.Run()
}

// preview renders the ribbon off screen and prints its rows followed by
// the size mode of each group.
func preview(out io.Writer, l *config.Layout, width int, title string) error {
	if width < 10 {
		return fmt.Errorf("width %d is too small", width)
	}
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()
	screen.SetSize(width, 4)

	tabs, err := l.Build(nil)
	if err != nil {
		return err
	}
	app := ui.NewApp(screen)
	r := ribbon.New()
	app.SetRoot(ui.NewRibbonView(app, r))
	for _, t := range tabs {
		r.AddTab(t)
	}
	settle(app, screen)

	if title != "" {
		i := slices.IndexFunc(tabs, func(t *ribbon.Tab) bool { return strings.EqualFold(t.Title, title) })
		if i < 0 {
			return fmt.Errorf("no tab %q", title)
		}
		tabs[i].SetVisible(true)
		r.SelectTab(tabs[i])
		settle(app, screen)
		if r.SelectedTab() != tabs[i] {
			return fmt.Errorf("tab %q could not be selected", title)
		}
	}

	for y := range 4 {
		var b strings.Builder
		for x := range width {
			c, _, _, _ := screen.GetContent(x, y)
			b.WriteRune(c)
		}
		fmt.Fprintln(out, strings.TrimRight(b.String(), " "))
	}
	if t := r.SelectedTab(); t != nil {
		for _, g := range t.Groups() {
			fmt.Fprintf(out, "%-12s %s\n", g.Title, g.SizeMode())
		}
	}
	return nil
}

// settle draws, runs whatever the drawing posted, and draws again.
func settle(app *ui.App, s tcell.Screen) {
	app.Draw()
	for s.HasPendingEvent() {
		app.HandleEvent(s.PollEvent())
	}
	app.Draw()
}
