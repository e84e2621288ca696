package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultHTTPTimeout      = 30 * time.Second
	DefaultMaxDownloadBytes = 64 << 20
	DefaultMaxFramePixels   = 1 << 26
	DefaultDPI              = 150
	DefaultUserAgent        = "gifnodes/1.0"
)

type Config struct {
	OutputDir        string        `yaml:"output_dir"`
	HTTPTimeout      time.Duration `yaml:"http_timeout"`
	MaxDownloadBytes int64         `yaml:"max_download_bytes"`
	UserAgent        string        `yaml:"user_agent"`
	MaxFramePixels   int64         `yaml:"max_frame_pixels"` // 0 = без ограничения
	DPI              int           `yaml:"dpi"` // растеризация страниц PDF
	Workers          int           `yaml:"workers"`
	StrictGrid       bool          `yaml:"strict_grid"`
	ShowStats        bool          `yaml:"show_stats"`
	BuildVersion     string        `yaml:"-"`
}

// Default возвращает конфигурацию с разумными значениями по умолчанию.
// Workers = 0 означает "по числу ядер" (см. system.DefaultWorkers).
func Default() *Config {
	return &Config{
		OutputDir:        "output",
		HTTPTimeout:      DefaultHTTPTimeout,
		MaxDownloadBytes: DefaultMaxDownloadBytes,
		UserAgent:        DefaultUserAgent,
		MaxFramePixels:   DefaultMaxFramePixels,
		DPI:              DefaultDPI,
	}
}

// Load читает YAML поверх значений по умолчанию. Отсутствующие ключи
// сохраняют дефолты.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.OutputDir == "" {
		return fmt.Errorf("output_dir must not be empty")
	}
	if c.DPI < 1 {
		return fmt.Errorf("dpi must be positive, got %d", c.DPI)
	}
	if c.MaxFramePixels < 0 {
		return fmt.Errorf("max_frame_pixels must not be negative")
	}
	if c.HTTPTimeout < 0 {
		return fmt.Errorf("http_timeout must not be negative")
	}
	if c.MaxDownloadBytes < 0 {
		return fmt.Errorf("max_download_bytes must not be negative")
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative")
	}
	return nil
}

// FramePixelLimit переводит MaxFramePixels в соглашение пакета source,
// где ограничение выключает значение <= 0, а 0 в FetchOptions - дефолт.
func (c *Config) FramePixelLimit() int64 {
	if c.MaxFramePixels == 0 {
		return -1
	}
	return c.MaxFramePixels
}
