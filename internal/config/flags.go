package config

import "flag"

// Flags holds command-line overrides. Zero values leave the config as is.
type Flags struct {
	Config     string
	Debug      bool
	Fullscreen bool
	Width      int
	Height     int
	Dedup      string
	IndexWidth int
	Restart    bool
}

// RegisterFlags registers the shared meshkit flags on fs.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{}
	fs.StringVar(&f.Config, "config", "", "Path to config file")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.BoolVar(&f.Fullscreen, "fullscreen", false, "Run viewer in fullscreen mode")
	fs.IntVar(&f.Width, "width", 0, "Viewer window width")
	fs.IntVar(&f.Height, "height", 0, "Viewer window height")
	fs.StringVar(&f.Dedup, "dedup", "", "Dedup strategy (scan, hashed)")
	fs.IntVar(&f.IndexWidth, "index", 0, "Index width in bits (8, 16, 32)")
	fs.BoolVar(&f.Restart, "restart", false, "Keep polygons as restart-delimited triangle fans")
	return f
}

// apply applies CLI flag overrides to the config.
func (f *Flags) apply(cfg *Config) {
	if f == nil {
		return
	}
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.Fullscreen {
		cfg.Viewer.Fullscreen = true
	}
	if f.Width > 0 {
		cfg.Viewer.Width = f.Width
	}
	if f.Height > 0 {
		cfg.Viewer.Height = f.Height
	}
	if f.Dedup != "" {
		cfg.Import.Dedup = f.Dedup
	}
	if f.IndexWidth > 0 {
		cfg.Import.IndexWidth = f.IndexWidth
	}
	if f.Restart {
		cfg.Import.PrimitiveRestart = true
	}
}
