package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/lipgloss"
)

type Theme struct {
	MarkerBackground        string `toml:"marker_background"`
	MarkerReplaceBackground string `toml:"marker_replace_background"`
	IndexMarkerBackground   string `toml:"index_marker_background"`
	LegendBackground        string `toml:"legend_background"`
	LegendHighlight         string `toml:"legend_highlight"`
	BorderColor             string `toml:"border_color"`
	EndianColor             string `toml:"endian_color"`
	ActiveTab               string `toml:"active_tab"`
	DisabledColor           string `toml:"disabled_color"`
	WarnColor               string `toml:"warn_color"`
	ErrorColor              string `toml:"error_color"`
}

type View struct {
	Rows      int  `toml:"rows"`
	Columns   int  `toml:"columns"`
	SettleMS  int  `toml:"settle_interval_ms"`
	UpperCase bool `toml:"upper_case"`
	BigEndian bool `toml:"big_endian"`
}

type Config struct {
	Server string `toml:"server"`
	View   View   `toml:"view"`
	Theme  Theme  `toml:"theme"`
}

func DefaultConfig() *Config {
	return &Config{
		Server: "http://127.0.0.1:8779",
		View: View{
			Rows:      16,
			Columns:   16,
			SettleMS:  100,
			UpperCase: true,
			BigEndian: true,
		},
		Theme: Theme{
			MarkerBackground:        "#0000FF",
			MarkerReplaceBackground: "#FFFF00",
			IndexMarkerBackground:   "#000080",
			LegendBackground:        "#0000FF",
			LegendHighlight:         "#FF0000",
			BorderColor:             "#0000FF",
			EndianColor:             "#333333",
			ActiveTab:               "#FF00FF",
			DisabledColor:           "#666666",
			WarnColor:               "#FFAA00",
			ErrorColor:              "#FF0000",
		},
	}
}

// SettleInterval is the window-read debounce delay.
func (c *Config) SettleInterval() time.Duration {
	if c.View.SettleMS <= 0 {
		return 100 * time.Millisecond
	}
	return time.Duration(c.View.SettleMS) * time.Millisecond
}

func ConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "hexpane.toml"
	}
	return filepath.Join(home, ".config", "hexpane", "hexpane.toml")
}

func Load() (*Config, error) {
	cfg := DefaultConfig()
	path := ConfigPath()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func (c *Config) Save() error {
	path := ConfigPath()
	dir := filepath.Dir(path)

	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(c)
}

type Styles struct {
	MarkerNormal    lipgloss.Style
	MarkerReplace   lipgloss.Style
	IndexMarker     lipgloss.Style
	Legend          lipgloss.Style
	LegendHighlight lipgloss.Style
	Border          lipgloss.Style
	Endian          lipgloss.Style
	ActiveTab       lipgloss.Style
	InactiveTab     lipgloss.Style
	Disabled        lipgloss.Style
	Normal          lipgloss.Style
	PanelLabel      lipgloss.Style
	PanelValue      lipgloss.Style
	StatusWarn      lipgloss.Style
	StatusError     lipgloss.Style
}

func NewStyles(theme *Theme) *Styles {
	return &Styles{
		MarkerNormal: lipgloss.NewStyle().
			Background(lipgloss.Color(theme.MarkerBackground)).
			Foreground(lipgloss.Color("#FFFFFF")),
		MarkerReplace: lipgloss.NewStyle().
			Background(lipgloss.Color(theme.MarkerReplaceBackground)).
			Foreground(lipgloss.Color("#000000")),
		IndexMarker: lipgloss.NewStyle().
			Background(lipgloss.Color(theme.IndexMarkerBackground)).
			Foreground(lipgloss.Color("#FFFFFF")),
		Legend: lipgloss.NewStyle().
			Background(lipgloss.Color(theme.LegendBackground)).
			Foreground(lipgloss.Color("#FFFFFF")),
		LegendHighlight: lipgloss.NewStyle().
			Background(lipgloss.Color(theme.LegendBackground)).
			Foreground(lipgloss.Color(theme.LegendHighlight)).
			Bold(true),
		Border: lipgloss.NewStyle().
			BorderForeground(lipgloss.Color(theme.BorderColor)),
		Endian: lipgloss.NewStyle().
			Foreground(lipgloss.Color(theme.EndianColor)),
		ActiveTab: lipgloss.NewStyle().
			Foreground(lipgloss.Color(theme.ActiveTab)).
			Bold(true),
		InactiveTab: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#AAAAAA")),
		Disabled: lipgloss.NewStyle().
			Foreground(lipgloss.Color(theme.DisabledColor)),
		Normal: lipgloss.NewStyle(),
		PanelLabel: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")),
		PanelValue: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")),
		StatusWarn: lipgloss.NewStyle().
			Foreground(lipgloss.Color(theme.WarnColor)),
		StatusError: lipgloss.NewStyle().
			Foreground(lipgloss.Color(theme.ErrorColor)).
			Bold(true),
	}
}
