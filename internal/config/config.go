package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Defaults for the dashboard as it ships.
const (
	DefaultWorkbook   = "EXPERIENCIAS  FUNCREDES - GLOBAL DE LAS AMERICAS.xlsx"
	DefaultLogo       = "logo_funcredes.png"
	DefaultTitle      = "Dashboard Interactivo - FUNCREDES"
	DefaultListenAddr = "127.0.0.1:8501"
)

// Global configuration structure.
type Global struct {
	WorkbookPath string `mapstructure:"workbook_path" yaml:"workbook_path"`
	LogoPath     string `mapstructure:"logo_path" yaml:"logo_path"`
	Title        string `mapstructure:"title" yaml:"title"`
	ListenAddr   string `mapstructure:"listen_addr" yaml:"listen_addr"`

	// Palette
	ColorPrimary   string `mapstructure:"color_primary" yaml:"color_primary"`
	ColorSecondary string `mapstructure:"color_secondary" yaml:"color_secondary"`
	ColorAccent    string `mapstructure:"color_accent" yaml:"color_accent"`

	// Chart images
	ChartFormat   string `mapstructure:"chart_format" yaml:"chart_format"`
	ChartWidthPx  int    `mapstructure:"chart_width_px" yaml:"chart_width_px"`
	ChartHeightPx int    `mapstructure:"chart_height_px" yaml:"chart_height_px"`

	// gin mode: debug, release or test
	GinMode string `mapstructure:"gin_mode" yaml:"gin_mode"`
}

// Keys lists the settable keys in display order.
var Keys = []string{
	"workbook_path", "logo_path", "title", "listen_addr",
	"color_primary", "color_secondary", "color_accent",
	"chart_format", "chart_width_px", "chart_height_px", "gin_mode",
}

// Dir returns ~/.sheetdash.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".sheetdash"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.sheetdash/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env (SHEETDASH_*) > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("SHEETDASH")
	v.AutomaticEnv()

	v.SetDefault("workbook_path", DefaultWorkbook)
	v.SetDefault("logo_path", DefaultLogo)
	v.SetDefault("title", DefaultTitle)
	v.SetDefault("listen_addr", DefaultListenAddr)
	v.SetDefault("color_primary", "#003366")
	v.SetDefault("color_secondary", "#4CAF50")
	v.SetDefault("color_accent", "#FF9800")
	v.SetDefault("chart_format", "png")
	v.SetDefault("chart_width_px", 900)
	v.SetDefault("chart_height_px", 450)
	v.SetDefault("gin_mode", "release")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// optional read
		_ = v.ReadInConfig()
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks values that would otherwise fail late at render time.
func (c *Global) Validate() error {
	switch c.ChartFormat {
	case "png", "svg":
	default:
		return fmt.Errorf("invalid chart_format: %s (use png or svg)", c.ChartFormat)
	}
	if c.ChartWidthPx <= 0 || c.ChartHeightPx <= 0 {
		return fmt.Errorf("invalid chart size %dx%d", c.ChartWidthPx, c.ChartHeightPx)
	}
	for key, val := range map[string]string{
		"color_primary": c.ColorPrimary, "color_secondary": c.ColorSecondary, "color_accent": c.ColorAccent,
	} {
		if !isHexColor(val) {
			return fmt.Errorf("invalid %s: %q (use #RRGGBB)", key, val)
		}
	}
	switch c.GinMode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("invalid gin_mode: %s (use debug, release or test)", c.GinMode)
	}
	return nil
}

// Get returns the string form of a key.
func (c *Global) Get(key string) (string, error) {
	switch key {
	case "workbook_path":
		return c.WorkbookPath, nil
	case "logo_path":
		return c.LogoPath, nil
	case "title":
		return c.Title, nil
	case "listen_addr":
		return c.ListenAddr, nil
	case "color_primary":
		return c.ColorPrimary, nil
	case "color_secondary":
		return c.ColorSecondary, nil
	case "color_accent":
		return c.ColorAccent, nil
	case "chart_format":
		return c.ChartFormat, nil
	case "chart_width_px":
		return strconv.Itoa(c.ChartWidthPx), nil
	case "chart_height_px":
		return strconv.Itoa(c.ChartHeightPx), nil
	case "gin_mode":
		return c.GinMode, nil
	}
	return "", fmt.Errorf("unknown key: %s", key)
}

// Set assigns a key from its string form and validates the result. On
// error the configuration is left unchanged.
func (c *Global) Set(key, val string) error {
	next := *c
	switch key {
	case "workbook_path":
		next.WorkbookPath = val
	case "logo_path":
		next.LogoPath = val
	case "title":
		next.Title = val
	case "listen_addr":
		next.ListenAddr = val
	case "color_primary":
		next.ColorPrimary = val
	case "color_secondary":
		next.ColorSecondary = val
	case "color_accent":
		next.ColorAccent = val
	case "chart_format":
		next.ChartFormat = strings.ToLower(val)
	case "chart_width_px", "chart_height_px":
		i, err := strconv.Atoi(val)
		if err != nil || i <= 0 {
			return fmt.Errorf("invalid int for %s: %v", key, val)
		}
		if key == "chart_width_px" {
			next.ChartWidthPx = i
		} else {
			next.ChartHeightPx = i
		}
	case "gin_mode":
		next.GinMode = strings.ToLower(val)
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*c = next
	return nil
}

func isHexColor(s string) bool {
	if len(s) != 7 || s[0] != '#' {
		return false
	}
	_, err := strconv.ParseUint(s[1:], 16, 32)
	return err == nil
}
