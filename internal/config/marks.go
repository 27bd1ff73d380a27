package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/JaimeStill/auditmarks/pkg/formatting"
)

// MarksConfig holds audit mark import limits and the styling of the marks
// section added to delivered documents.
type MarksConfig struct {
	MaxImportSize string   `toml:"max_import_size"`
	Extensions    []string `toml:"extensions"`
	BatchSize     int      `toml:"batch_size"`
	FooterTitle   string   `toml:"footer_title"`
	AccentColor   string   `toml:"accent_color"`
	FontSize      float64  `toml:"font_size"`
	TitleFill     string   `toml:"title_fill"`
	MarkFill      string   `toml:"mark_fill"`
	TrailingGap   int      `toml:"trailing_gap"`
}

// MaxImportSizeBytes returns MaxImportSize as a byte count.
func (c *MarksConfig) MaxImportSizeBytes() int64 {
	size, err := formatting.ParseBytes(c.MaxImportSize)
	if err != nil {
		return 5 * 1024 * 1024
	}
	return size
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *MarksConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *MarksConfig) Merge(overlay *MarksConfig) {
	if overlay.MaxImportSize != "" {
		c.MaxImportSize = overlay.MaxImportSize
	}
	if len(overlay.Extensions) > 0 {
		c.Extensions = overlay.Extensions
	}
	if overlay.BatchSize > 0 {
		c.BatchSize = overlay.BatchSize
	}
	if overlay.FooterTitle != "" {
		c.FooterTitle = overlay.FooterTitle
	}
	if overlay.AccentColor != "" {
		c.AccentColor = overlay.AccentColor
	}
	if overlay.FontSize > 0 {
		c.FontSize = overlay.FontSize
	}
	if overlay.TitleFill != "" {
		c.TitleFill = overlay.TitleFill
	}
	if overlay.MarkFill != "" {
		c.MarkFill = overlay.MarkFill
	}
	if overlay.TrailingGap > 0 {
		c.TrailingGap = overlay.TrailingGap
	}
}

func (c *MarksConfig) loadDefaults() {
	if c.MaxImportSize == "" {
		c.MaxImportSize = "5MB"
	}
	if len(c.Extensions) == 0 {
		c.Extensions = []string{".xlsx", ".xls"}
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 500
	}
	if c.FooterTitle == "" {
		c.FooterTitle = "MARCAS DE AUDITORÍA UTILIZADAS:"
	}
	if c.AccentColor == "" {
		c.AccentColor = "0070C0"
	}
	if c.FontSize <= 0 {
		c.FontSize = 11
	}
	if c.TitleFill == "" {
		c.TitleFill = "D3D3D3"
	}
	if c.MarkFill == "" {
		c.MarkFill = "E7E6E6"
	}
	if c.TrailingGap <= 0 {
		c.TrailingGap = 3
	}
}

func (c *MarksConfig) loadEnv() {
	if v := os.Getenv("AUDITMARKS_MARKS_MAX_IMPORT_SIZE"); v != "" {
		c.MaxImportSize = v
	}
	if v := os.Getenv("AUDITMARKS_MARKS_EXTENSIONS"); v != "" {
		exts := strings.Split(v, ",")
		for i, e := range exts {
			exts[i] = strings.TrimSpace(e)
		}
		c.Extensions = exts
	}
	if v := os.Getenv("AUDITMARKS_MARKS_BATCH_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.BatchSize = n
		}
	}
	if v := os.Getenv("AUDITMARKS_MARKS_FOOTER_TITLE"); v != "" {
		c.FooterTitle = v
	}
	if v := os.Getenv("AUDITMARKS_MARKS_ACCENT_COLOR"); v != "" {
		c.AccentColor = v
	}
	if v := os.Getenv("AUDITMARKS_MARKS_TRAILING_GAP"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.TrailingGap = n
		}
	}
}

func (c *MarksConfig) validate() error {
	if _, err := formatting.ParseBytes(c.MaxImportSize); err != nil {
		return fmt.Errorf("invalid max_import_size: %w", err)
	}
	for _, ext := range c.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("invalid extension %q: must start with a dot", ext)
		}
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be positive")
	}
	if c.TrailingGap < 1 {
		return fmt.Errorf("trailing_gap must be at least 1")
	}
	return nil
}
