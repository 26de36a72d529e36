package ui

import (
	"fmt"
	"os"
	"strings"
)

var Theme = selectTheme()

func selectTheme() ColorTheme {
	if detectLightTerminal() {
		return NewBreakersTheme()
	}
	return NewMarianaTheme()
}

// SetTheme switches between "light", "dark" and "auto", which follows
// the terminal background.
func SetTheme(name string) error {
	switch strings.ToLower(name) {
	case "", "auto":
		Theme = selectTheme()
	case "light":
		Theme = NewBreakersTheme()
	case "dark":
		Theme = NewMarianaTheme()
	default:
		return fmt.Errorf("unknown theme %q", name)
	}
	return nil
}

// detectLightTerminal detects if terminal has a light background via COLORFGBG.
// iTerm2 and other terminals set this as "foreground;background".
// Background 7 or 15 indicates light, 0-6 and 8 indicate dark.
func detectLightTerminal() bool {
	colorfgbg := os.Getenv("COLORFGBG")
	if colorfgbg == "" {
		return false
	}
	parts := strings.Split(colorfgbg, ";")
	if len(parts) != 2 {
		return false
	}
	bg := parts[1]
	return bg == "7" || bg == "15"
}

type ColorTheme struct {
	Name       string
	Foreground string
	Background string
	Border     string
	Hover      string
	Selection  string
	Muted      string // placeholders, disabled items, group titles
	Accent     string // selected tab, scroll arrows
	Bar        string // ribbon background
}

func NewBreakersTheme() ColorTheme {
	return ColorTheme{
		Name:       "light",
		Foreground: "#333333", // grey3
		Background: "#fbffff", // white5 (extremely light cyan-white)
		Border:     "#d9e0e4", // white2 (selection_border)
		Hover:      "#dae0e2", // white3
		Selection:  "#c5e1e0",
		Muted:      "#999999", // grey2
		Accent:     "#5fb3b3", // blue2
		Bar:        "#f0f4f5",
	}
}

func NewMarianaTheme() ColorTheme {
	return ColorTheme{
		Name:       "dark",
		Foreground: "#d8dee9", // white3
		Background: "#303841", // blue3
		Border:     "#65737e", // blue4 (selection_border)
		Hover:      "#4e5a65",
		Selection:  "#4e5a65", // blue2 (alpha handled by terminal blending)
		Muted:      "#a7adba", // blue6
		Accent:     "#fac863", // orange
		Bar:        "#343d46",
	}
}
