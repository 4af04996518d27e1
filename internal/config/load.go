// internal/config/load.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/ystepanoff/lbmwm1110/nvm"
	proto "github.com/ystepanoff/lbmwm1110/protocol"
	"github.com/ystepanoff/lbmwm1110/timing"
)

// Default returns the wiring of a WM1110 on a Raspberry Pi SPI0 header.
func Default() *Config {
	return &Config{
		SPI: SPIConfig{
			Port:        "/dev/spidev0.0",
			FrequencyHz: 8_000_000,
		},
		Pins: PinsConfig{
			NSS:    "GPIO8",
			Busy:   "GPIO24",
			NReset: "GPIO25",
			IRQ:    "GPIO23",
		},
		Flash: FlashConfig{
			Image:          "wm1110-flash.bin",
			PageSize:       nvm.DefaultPageSize,
			PageCount:      nvm.DefaultPageCount,
			ApplicationEnd: nvm.DefaultApplicationEnd,
		},
		Radio: RadioConfig{
			SleepOpcode:   fmt.Sprintf("%04X", proto.OpSetSleep),
			SleepSettleUs: proto.SleepSettleMicros,
			ResetPulseUs:  proto.ResetPulseMicros,
			RegMode:       "dcdc",
		},
		Trace: TraceConfig{
			Baud: 115200,
		},
		Watchdog: WatchdogConfig{
			PeriodMs: int(timing.DefaultWatchdogPeriod.Milliseconds()),
		},
		Metrics: MetricsConfig{
			Listen: ":9110",
		},
	}
}

// Load reads path on top of Default. The format follows the extension:
// .toml is TOML, anything else is YAML.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config load failed (%s): %w", path, err)
	}

	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("config parse failed (%s): %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config parse failed (%s): %w", path, err)
		}
	}
	return cfg, nil
}
