package config

import (
	"fmt"
	"image/color"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Control bounds exposed by the editor sliders.
const (
	MinDimension  = 1
	MaxDimension  = 1000
	MinAngle      = -180.0
	MaxAngle      = 180.0
	MinBrightness = 0.0
	MaxBrightness = 3.0
)

// Config holds the application configuration
type Config struct {
	Editor   EditorConfig   `toml:"editor"`
	Controls ControlsConfig `toml:"controls"`
	Detector DetectorConfig `toml:"detector"`
	Server   ServerConfig   `toml:"server"`
}

// EditorConfig holds image input/output settings
type EditorConfig struct {
	OutputPath       string   `toml:"output_path"`
	JPEGQuality      int      `toml:"jpeg_quality"`
	PreviewMaxSize   int      `toml:"preview_max_size"`
	SupportedFormats []string `toml:"supported_formats"`
}

// ControlsConfig holds the initial slider values
type ControlsConfig struct {
	Width      int     `toml:"width"`
	Height     int     `toml:"height"`
	Angle      float64 `toml:"angle"`
	Brightness float64 `toml:"brightness"`
}

// DetectorConfig holds face detection settings
type DetectorConfig struct {
	CascadeFile  string   `toml:"cascade_file"`
	SearchPaths  []string `toml:"search_paths"`
	ScaleFactor  float64  `toml:"scale_factor"`
	MinNeighbors int      `toml:"min_neighbors"`
	MinSize      int      `toml:"min_size"`
	BoxThickness int      `toml:"box_thickness"`
	BoxColorHex  string   `toml:"box_color"`
}

// ServerConfig holds HTTP API settings
type ServerConfig struct {
	Host           string        `toml:"host"`
	Port           string        `toml:"port"`
	MaxUploadBytes int64         `toml:"max_upload_bytes"`
	RequestTimeout time.Duration `toml:"request_timeout"`
}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		Editor: EditorConfig{
			OutputPath:       "edited_image.jpg",
			JPEGQuality:      95,
			PreviewMaxSize:   800,
			SupportedFormats: []string{"jpg", "jpeg", "png"},
		},
		Controls: ControlsConfig{
			Width:      500,
			Height:     500,
			Angle:      0,
			Brightness: 1.0,
		},
		Detector: DetectorConfig{
			CascadeFile: "haarcascade_frontalface_default.xml",
			SearchPaths: []string{
				"./models/haarcascades",
				"/usr/local/share/opencv4/haarcascades",
				"/usr/share/opencv4/haarcascades",
				"/opt/homebrew/share/opencv4/haarcascades",
			},
			ScaleFactor:  1.3,
			MinNeighbors: 5,
			MinSize:      30,
			BoxThickness: 2,
			BoxColorHex:  "#FF0000",
		},
		Server: ServerConfig{
			Host:           "0.0.0.0",
			Port:           "8080",
			MaxUploadBytes: 10 << 20,
			RequestTimeout: 30 * time.Second,
		},
	}
}

// Load reads a TOML file over the defaults, applies environment overrides
// and validates the result. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv("IMAGE_EDITOR_OUTPUT")); v != "" {
		c.Editor.OutputPath = v
	}
	if v := strings.TrimSpace(os.Getenv("IMAGE_EDITOR_CASCADE")); v != "" {
		c.Detector.CascadeFile = v
	}
	if v := strings.TrimSpace(os.Getenv("HOST")); v != "" {
		c.Server.Host = v
	}
	if v := strings.TrimSpace(os.Getenv("PORT")); v != "" {
		c.Server.Port = v
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Editor.OutputPath == "" {
		return fmt.Errorf("editor.output_path cannot be empty")
	}

	switch strings.ToLower(filepath.Ext(c.Editor.OutputPath)) {
	case ".jpg", ".jpeg", ".png":
	default:
		return fmt.Errorf("editor.output_path must end in .jpg, .jpeg or .png")
	}

	if c.Editor.JPEGQuality < 1 || c.Editor.JPEGQuality > 100 {
		return fmt.Errorf("editor.jpeg_quality must be between 1 and 100")
	}

	if c.Editor.PreviewMaxSize < 64 || c.Editor.PreviewMaxSize > 4096 {
		return fmt.Errorf("editor.preview_max_size must be between 64 and 4096")
	}

	if len(c.Editor.SupportedFormats) == 0 {
		return fmt.Errorf("editor.supported_formats cannot be empty")
	}

	if c.Controls.Width < MinDimension || c.Controls.Width > MaxDimension {
		return fmt.Errorf("controls.width must be between %d and %d", MinDimension, MaxDimension)
	}

	if c.Controls.Height < MinDimension || c.Controls.Height > MaxDimension {
		return fmt.Errorf("controls.height must be between %d and %d", MinDimension, MaxDimension)
	}

	if c.Controls.Angle < MinAngle || c.Controls.Angle > MaxAngle {
		return fmt.Errorf("controls.angle must be between %v and %v", MinAngle, MaxAngle)
	}

	if c.Controls.Brightness < MinBrightness || c.Controls.Brightness > MaxBrightness {
		return fmt.Errorf("controls.brightness must be between %v and %v", MinBrightness, MaxBrightness)
	}

	if c.Detector.CascadeFile == "" {
		return fmt.Errorf("detector.cascade_file cannot be empty")
	}

	if c.Detector.ScaleFactor <= 1.0 {
		return fmt.Errorf("detector.scale_factor must be greater than 1.0")
	}

	if c.Detector.MinNeighbors < 0 {
		return fmt.Errorf("detector.min_neighbors cannot be negative")
	}

	if c.Detector.MinSize < 1 {
		return fmt.Errorf("detector.min_size must be positive")
	}

	if c.Detector.BoxThickness < 1 {
		return fmt.Errorf("detector.box_thickness must be positive")
	}

	if _, err := c.BoxColor(); err != nil {
		return err
	}

	p, err := strconv.Atoi(strings.TrimSpace(c.Server.Port))
	if err != nil || p < 1 || p > 65535 {
		return fmt.Errorf("invalid server.port: %q", c.Server.Port)
	}

	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("server.max_upload_bytes must be > 0 (got %d)", c.Server.MaxUploadBytes)
	}

	if c.Server.RequestTimeout <= 0 {
		return fmt.Errorf("server.request_timeout must be > 0 (got %s)", c.Server.RequestTimeout)
	}

	return nil
}

// ServerAddress returns host:port for the HTTP listener.
func (c *Config) ServerAddress() string {
	return net.JoinHostPort(strings.TrimSpace(c.Server.Host), strings.TrimSpace(c.Server.Port))
}

// BoxColor parses detector.box_color ("#RRGGBB").
func (c *Config) BoxColor() (color.RGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(c.Detector.BoxColorHex), "#")
	if len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("detector.box_color must be #RRGGBB, got %q", c.Detector.BoxColorHex)
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("detector.box_color must be #RRGGBB, got %q", c.Detector.BoxColorHex)
	}

	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}
