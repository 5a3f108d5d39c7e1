package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"

	"github.com/drummonds/gpframes/internal/drawing"
	"github.com/drummonds/gpframes/internal/export"
	"github.com/drummonds/gpframes/internal/frame"
)

// EnvPrefix is put in front of every environment variable name.
const EnvPrefix = "GPFRAMES_"

// Config holds the application configuration
type Config struct {
	Frame      FrameConfig      `json:"frame" envPrefix:"FRAME_"`
	Export     ExportConfig     `json:"export" envPrefix:"EXPORT_"`
	Share      ShareConfig      `json:"share" envPrefix:"SHARE_"`
	PhotoPrism PhotoPrismConfig `json:"photoprism" envPrefix:"PHOTOPRISM_"`
	Web        WebConfig        `json:"web" envPrefix:"WEB_"`
}

// FrameConfig holds the banner geometry
type FrameConfig struct {
	MaxWidth          int     `json:"max_width" env:"MAX_WIDTH"`
	BannerHeight      int     `json:"banner_height" env:"BANNER_HEIGHT"`
	BorderWidth       int     `json:"border_width" env:"BORDER_WIDTH"`
	BorderColour      string  `json:"border_colour" env:"BORDER_COLOUR"`
	PrimarySize       float64 `json:"primary_size" env:"PRIMARY_SIZE"`
	SecondarySize     float64 `json:"secondary_size" env:"SECONDARY_SIZE"`
	PrimaryBaseline   int     `json:"primary_baseline" env:"PRIMARY_BASELINE"`
	SecondaryBaseline int     `json:"secondary_baseline" env:"SECONDARY_BASELINE"`
	SecondaryCaption  string  `json:"secondary_caption" env:"SECONDARY_CAPTION"`
	SecondaryAlpha    float64 `json:"secondary_alpha" env:"SECONDARY_ALPHA"`
}

// ExportConfig holds output encoding and naming
type ExportConfig struct {
	Format  string `json:"format" env:"FORMAT"`
	Quality int    `json:"quality" env:"QUALITY"`
	Prefix  string `json:"prefix" env:"PREFIX"`
	Dir     string `json:"dir" env:"DIR"`
}

// ShareConfig holds the share payload and the helper command
type ShareConfig struct {
	Title    string   `json:"title" env:"TITLE"`
	Text     string   `json:"text" env:"TEXT"`
	Filename string   `json:"filename" env:"FILENAME"`
	Command  string   `json:"command" env:"COMMAND"`
	Args     []string `json:"args" env:"ARGS" envSeparator:" "`
}

// PhotoPrismConfig points at the event gallery
type PhotoPrismConfig struct {
	Domain   string `json:"domain" env:"DOMAIN"`
	Token    string `json:"-" env:"TOKEN"`
	AlbumUID string `json:"album_uid" env:"ALBUM_UID"`
}

// WebConfig holds the browser front end settings
type WebConfig struct {
	Bind         string `json:"bind" env:"BIND"`
	MaxUploadMiB int64  `json:"max_upload_mib" env:"MAX_UPLOAD_MIB"`
	PreviewWidth int    `json:"preview_width" env:"PREVIEW_WIDTH"`
	IdleMinutes  int    `json:"idle_minutes" env:"IDLE_MINUTES"`
}

// Default returns a configuration with default values
func Default() *Config {
	l := frame.DefaultLayout()
	o := export.DefaultOptions()
	return &Config{
		Frame: FrameConfig{
			MaxWidth:          l.MaxWidth,
			BannerHeight:      l.BannerHeight,
			BorderWidth:       l.BorderWidth,
			BorderColour:      "white",
			PrimarySize:       l.PrimarySize,
			SecondarySize:     l.SecondarySize,
			PrimaryBaseline:   l.PrimaryBaseline,
			SecondaryBaseline: l.SecondaryBaseline,
			SecondaryCaption:  l.SecondaryCaption,
			SecondaryAlpha:    l.SecondaryAlpha,
		},
		Export: ExportConfig{
			Format:  string(o.Format),
			Quality: o.Quality,
			Prefix:  o.Prefix,
			Dir:     ".",
		},
		Share: ShareConfig{
			Title:    o.ShareTitle,
			Text:     o.ShareText,
			Filename: o.ShareFilename,
		},
		Web: WebConfig{
			Bind:         "0.0.0.0:8080",
			MaxUploadMiB: 25,
			PreviewWidth: 540,
			IdleMinutes:  60,
		},
	}
}

// Load builds the configuration from defaults, then the JSON file at path
// if path is not empty, then environment variables. environ replaces the
// process environment when it is not nil.
func Load(path string, environ map[string]string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}
	opts := env.Options{Prefix: EnvPrefix}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromFile loads configuration from a JSON file over the defaults
func LoadFromFile(filename string) (*Config, error) {
	cfg := Default()
	if err := cfg.mergeFile(filename); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := json.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

// SaveToFile saves configuration to a JSON file
func (c *Config) SaveToFile(filename string) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Frame.MaxWidth < 1 {
		return fmt.Errorf("frame.max_width must be positive")
	}
	if c.Frame.BannerHeight < 0 || c.Frame.BorderWidth < 0 {
		return fmt.Errorf("frame.banner_height and frame.border_width cannot be negative")
	}
	if _, err := drawing.ParseColour(c.Frame.BorderColour); err != nil {
		return fmt.Errorf("frame.border_colour: %w", err)
	}
	if c.Frame.PrimarySize <= 0 || c.Frame.SecondarySize <= 0 {
		return fmt.Errorf("frame font sizes must be positive")
	}
	if c.Frame.SecondaryAlpha < 0 || c.Frame.SecondaryAlpha > 1 {
		return fmt.Errorf("frame.secondary_alpha must be between 0 and 1")
	}
	if _, err := export.ParseFormat(c.Export.Format); err != nil {
		return fmt.Errorf("export.format: %w", err)
	}
	if c.Export.Quality < 0 || c.Export.Quality > 100 {
		return fmt.Errorf("export.quality must be between 0 and 100")
	}
	if c.Share.Filename == "" {
		return fmt.Errorf("share.filename cannot be empty")
	}
	if c.Web.PreviewWidth < 1 {
		return fmt.Errorf("web.preview_width must be positive")
	}
	if c.Web.MaxUploadMiB < 1 {
		return fmt.Errorf("web.max_upload_mib must be positive")
	}
	return nil
}

// Layout converts the frame settings for the compositor. Validate has
// already checked the border colour.
func (c *Config) Layout() frame.Layout {
	border, _ := drawing.ParseColour(c.Frame.BorderColour)
	return frame.Layout{
		MaxWidth:          c.Frame.MaxWidth,
		BannerHeight:      c.Frame.BannerHeight,
		BorderWidth:       c.Frame.BorderWidth,
		BorderColour:      border,
		PrimarySize:       c.Frame.PrimarySize,
		SecondarySize:     c.Frame.SecondarySize,
		PrimaryBaseline:   c.Frame.PrimaryBaseline,
		SecondaryBaseline: c.Frame.SecondaryBaseline,
		SecondaryCaption:  c.Frame.SecondaryCaption,
		SecondaryAlpha:    c.Frame.SecondaryAlpha,
	}
}

// ExportOptions converts the export and share settings for the adapter.
// Validate has already checked the format.
func (c *Config) ExportOptions() export.Options {
	format, _ := export.ParseFormat(c.Export.Format)
	return export.Options{
		Format:        format,
		Quality:       c.Export.Quality,
		Prefix:        c.Export.Prefix,
		ShareTitle:    c.Share.Title,
		ShareText:     c.Share.Text,
		ShareFilename: c.Share.Filename,
	}
}

// Sharer returns the configured share helper. With no command configured
// it reports every share as unsupported.
func (c *Config) Sharer() export.Sharer {
	return export.CommandSharer{Command: c.Share.Command, Args: c.Share.Args}
}

// ResolvePath picks the config file to load: the flag value when given,
// otherwise the default path if a file exists there, otherwise none.
func ResolvePath(flagPath string) string {
	if flagPath != "" {
		return flagPath
	}
	if p := GetConfigPath(); fileExists(p) {
		return p
	}
	return ""
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}
	return filepath.Join(home, ".config", "gpframes", "config.json")
}
