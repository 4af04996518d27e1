// internal/config/config.go
package config

type Config struct {
	SPI      SPIConfig      `yaml:"spi" toml:"spi"`
	Pins     PinsConfig     `yaml:"pins" toml:"pins"`
	Flash    FlashConfig    `yaml:"flash" toml:"flash"`
	Radio    RadioConfig    `yaml:"radio" toml:"radio"`
	Trace    TraceConfig    `yaml:"trace" toml:"trace"`
	Watchdog WatchdogConfig `yaml:"watchdog" toml:"watchdog"`
	Metrics  MetricsConfig  `yaml:"metrics" toml:"metrics"`
}

// ---- BUS ----

type SPIConfig struct {
	Port        string `yaml:"port" toml:"port"`
	FrequencyHz int64  `yaml:"frequency" toml:"frequency"`
}

type PinsConfig struct {
	NSS    string `yaml:"nss" toml:"nss"`
	Busy   string `yaml:"busy" toml:"busy"`
	NReset string `yaml:"nreset" toml:"nreset"`
	IRQ    string `yaml:"irq" toml:"irq"` // optional
}

// ---- CONTEXT STORE ----

type FlashConfig struct {
	Image          string `yaml:"image" toml:"image"`
	PageSize       int    `yaml:"page_size" toml:"page_size"`
	PageCount      int    `yaml:"page_count" toml:"page_count"`
	ApplicationEnd int    `yaml:"application_end" toml:"application_end"`
}

// ---- RADIO ----

type RadioConfig struct {
	// Two-byte opcode in hex, e.g. "011B".
	SleepOpcode   string `yaml:"sleep_opcode" toml:"sleep_opcode"`
	SleepSettleUs int    `yaml:"sleep_settle_us" toml:"sleep_settle_us"`
	ResetPulseUs  int    `yaml:"reset_pulse_us" toml:"reset_pulse_us"`
	BusyTimeoutMs int    `yaml:"busy_timeout_ms" toml:"busy_timeout_ms"` // 0 = spin forever
	RegMode       string `yaml:"reg_mode" toml:"reg_mode"`
}

// ---- TRACE / SUPERVISION ----

type TraceConfig struct {
	SerialPort string `yaml:"serial_port" toml:"serial_port"` // empty = stderr
	Baud       int    `yaml:"baud" toml:"baud"`
}

type WatchdogConfig struct {
	PeriodMs int `yaml:"period_ms" toml:"period_ms"`
}

type MetricsConfig struct {
	Listen string `yaml:"listen" toml:"listen"`
}
