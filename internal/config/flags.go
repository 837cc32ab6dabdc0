package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagModel      = flag.String("model", "", "Path to the glTF asset to view")
	flagAnimation  = flag.Int("animation", -1, "Animation index to play")
	flagSpeed      = flag.Float64("speed", 0, "Playback speed multiplier")
	flagWireframe  = flag.Bool("wireframe", false, "Start in wireframe mode")
	flagWindowed   = flag.Bool("windowed", false, "Run in windowed mode")
	flagFullscreen = flag.Bool("fullscreen", false, "Run in fullscreen mode")
	flagWidth      = flag.Int("width", 0, "Window width")
	flagHeight     = flag.Int("height", 0, "Window height")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// ModelArg returns the model path given as the first positional argument,
// which takes priority over both the flag and the config file.
func ModelArg() string {
	return flag.Arg(0)
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
		cfg.Viewer.ShowFPS = true
	}
	if *flagModel != "" {
		cfg.Viewer.ModelPath = *flagModel
	}
	if arg := ModelArg(); arg != "" {
		cfg.Viewer.ModelPath = arg
	}
	if *flagAnimation >= 0 {
		cfg.Viewer.Animation = *flagAnimation
	}
	if *flagSpeed > 0 {
		cfg.Viewer.PlaybackSpeed = *flagSpeed
	}
	if *flagWireframe {
		cfg.Viewer.Wireframe = true
	}
	if *flagWindowed {
		cfg.Graphics.Fullscreen = false
	}
	if *flagFullscreen {
		cfg.Graphics.Fullscreen = true
	}
	if *flagWidth > 0 {
		cfg.Graphics.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Graphics.Height = *flagHeight
	}
}
