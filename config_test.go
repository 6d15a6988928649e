package d2png

import (
	"errors"
	"testing"
	"time"
)

// ---------------------------------------------------------------------------
// TestConfig_Validate - Rejects unusable configurations
// ---------------------------------------------------------------------------

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	valid := DefaultConfig("/book/src")

	tests := []struct {
		name    string
		modify  func(c *Config)
		wantErr error
	}{
		{
			name:   "defaults",
			modify: func(c *Config) {},
		},
		{
			name:    "empty compiler path",
			modify:  func(c *Config) { c.Path = "" },
			wantErr: ErrEmptyCompilerPath,
		},
		{
			name:    "empty output dir in file mode",
			modify:  func(c *Config) { c.OutputDir = "" },
			wantErr: ErrEmptyOutputDir,
		},
		{
			name:   "empty output dir in inline mode",
			modify: func(c *Config) { c.OutputDir = ""; c.Inline = true },
		},
		{
			name:    "absolute output dir",
			modify:  func(c *Config) { c.OutputDir = "/tmp/d2" },
			wantErr: ErrAbsoluteOutputDir,
		},
		{
			name:    "zero timeout",
			modify:  func(c *Config) { c.Timeout = 0 },
			wantErr: ErrInvalidTimeout,
		},
		{
			name:    "negative workers",
			modify:  func(c *Config) { c.Workers = -1 },
			wantErr: ErrInvalidWorkers,
		},
		{
			name:   "complete fonts",
			modify: func(c *Config) { c.Fonts = &Fonts{Regular: "r.ttf", Italic: "i.ttf", Bold: "b.ttf"} },
		},
		{
			name:    "partial fonts",
			modify:  func(c *Config) { c.Fonts = &Fonts{Regular: "r.ttf"} },
			wantErr: ErrInvalidFonts,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := valid
			tt.modify(&cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig("/book/src")
	if cfg.Path != "d2" || cfg.OutputDir != "d2" {
		t.Errorf("Path, OutputDir = %q, %q, want d2, d2", cfg.Path, cfg.OutputDir)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", cfg.Timeout)
	}
	if cfg.Inline || cfg.Fonts != nil || cfg.Workers != 0 {
		t.Errorf("unexpected non-zero optional fields: %+v", cfg)
	}
}
