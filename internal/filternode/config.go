package filternode

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/speechden/hsv/internal/suppressor"
)

// DaemonConfig is the on-disk YAML configuration for a filter-node daemon:
// listen addresses plus the suppressor mode, loaded once at startup and
// optionally overridden by command-line flags.
type DaemonConfig struct {
	ListenAddr  string `yaml:"listen_addr"`
	MetricsAddr string `yaml:"metrics_addr"`
	RTPAddr     string `yaml:"rtp_addr"`
	Mode        string `yaml:"mode"`
	Compress    bool   `yaml:"compress"`
}

// LoadDaemonConfig reads and parses a YAML daemon config file.
func LoadDaemonConfig(path string) (DaemonConfig, error) {
	var cfg DaemonConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("filternode: read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("filternode: parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ResolveMode maps a config mode name to a suppressor.Mode.
func ResolveMode(name string) (suppressor.Mode, error) {
	modes := map[string]suppressor.Mode{
		"specsub": suppressor.SpecSub,
		"wiener":  suppressor.Wiener,
		"tsnr":    suppressor.TSNR,
		"tsnrg":   suppressor.TSNRGain,
		"rtsnr":   suppressor.RTSNR,
		"rtsnrg":  suppressor.RTSNRGain,
	}
	m, ok := modes[name]
	if !ok {
		return 0, fmt.Errorf("filternode: unknown mode %q", name)
	}
	return m, nil
}
