// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
)

// Config holds all application configuration values.
type Config struct {
	// MQTT
	MQTTBroker           string
	MQTTClientIDDetector string
	MQTTClientIDConsole  string
	MQTTClientIDWeb      string
	MQTTClientIDDisplay  string

	// Topics
	TopicKickEvents string
	TopicWeight     string

	// Remote datastore
	UploadURL        string
	UploadTimeoutSec int

	// Load cell (HX711)
	CalibrationFile  string
	HX711DoutPin     string
	HX711SckPin      string
	LoadCellReadings int // raw conversions averaged per sample
	SampleIntervalMS int

	// Impact detection
	KickThresholdKg   float64
	KickCooldownSec   float64
	RequireRisingEdge bool

	// FSR array (ADS1015)
	ADCI2CBus        string // empty = first available bus
	ADCI2CAddr       uint16
	FSRChannels      []int
	FSRNames         []string
	FSRMin           float64
	FSRMax           float64
	WarningThreshold float64 // edge-pressure % at which accuracy drops

	// Speed source
	SpeedSource       string // "ble", "serial" or "none"
	BLEDeviceName     string
	BLECharUUID       string
	SpeedReadTimeout  int // milliseconds
	SerialPort        string
	SerialBaudRate    int
	ReconnectDelaySec int

	// Web Server
	WebServerPort int

	// Display
	DisplayI2CBus         string
	DisplayUpdateInterval int // milliseconds
}

// Package-level unexported variables for singleton pattern:
//   - globalConfig: unexported (lowercase) so other packages cannot access it directly.
//   - configOnce: ensures InitGlobal() only runs once, even if called multiple times.
//   - configMu: RWMutex protects concurrent access.
//
// External code must use InitGlobal() to set and Get() to read, ensuring thread safety.
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Load reads the configuration file and returns a Config struct.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	cfg := defaults()
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=VALUE
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.setValue(key, value); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Validate required fields
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// defaults returns a Config preloaded with the tunables' defaults; only the
// deployment-specific values (broker, pins, upload URL) have to appear in
// the file.
func defaults() *Config {
	return &Config{
		MQTTClientIDDetector:  "kick-detector",
		MQTTClientIDConsole:   "kick-console-subscriber",
		MQTTClientIDWeb:       "kick-web-subscriber",
		MQTTClientIDDisplay:   "kick-display-subscriber",
		TopicKickEvents:       "kick/events",
		TopicWeight:           "kick/weight",
		UploadTimeoutSec:      10,
		CalibrationFile:       "hx711_calibration.json",
		LoadCellReadings:      2,
		SampleIntervalMS:      50,
		KickThresholdKg:       4.0,
		KickCooldownSec:       2.0,
		RequireRisingEdge:     true,
		ADCI2CAddr:            0x48,
		FSRChannels:           []int{0, 1, 3},
		FSRNames:              []string{"bottom", "top", "right"},
		FSRMin:                -1,
		FSRMax:                1873,
		WarningThreshold:      50.0,
		SpeedSource:           "ble",
		BLEDeviceName:         "KickMeter",
		BLECharUUID:           "19b10001-e8f2-537e-4f6c-d104768a1200",
		SpeedReadTimeout:      1500,
		SerialBaudRate:        9600,
		ReconnectDelaySec:     5,
		WebServerPort:         8080,
		DisplayUpdateInterval: 500,
	}
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	switch key {
	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_DETECTOR":
		c.MQTTClientIDDetector = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value
	case "MQTT_CLIENT_ID_WEB":
		c.MQTTClientIDWeb = value
	case "MQTT_CLIENT_ID_DISPLAY":
		c.MQTTClientIDDisplay = value

	// Topics
	case "TOPIC_KICK_EVENTS":
		c.TopicKickEvents = value
	case "TOPIC_WEIGHT":
		c.TopicWeight = value

	// Remote datastore
	case "UPLOAD_URL":
		c.UploadURL = value
	case "UPLOAD_TIMEOUT_SEC":
		sec, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid UPLOAD_TIMEOUT_SEC %q: %w", value, err)
		}
		if sec <= 0 {
			return fmt.Errorf("UPLOAD_TIMEOUT_SEC must be positive, got %d", sec)
		}
		c.UploadTimeoutSec = sec

	// Load cell
	case "CALIB_FILE":
		c.CalibrationFile = value
	case "HX711_DOUT_PIN":
		c.HX711DoutPin = value
	case "HX711_SCK_PIN":
		c.HX711SckPin = value
	case "LOADCELL_READINGS":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid LOADCELL_READINGS %q: %w", value, err)
		}
		if n < 1 {
			return fmt.Errorf("LOADCELL_READINGS must be >= 1, got %d", n)
		}
		c.LoadCellReadings = n
	case "SAMPLE_INTERVAL_MS":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid SAMPLE_INTERVAL_MS %q: %w", value, err)
		}
		if interval <= 0 {
			return fmt.Errorf("SAMPLE_INTERVAL_MS must be positive, got %d", interval)
		}
		c.SampleIntervalMS = interval

	// Impact detection
	case "KICK_THRESHOLD_KG":
		kg, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid KICK_THRESHOLD_KG %q: %w", value, err)
		}
		if kg <= 0 {
			return fmt.Errorf("KICK_THRESHOLD_KG must be positive, got %g", kg)
		}
		c.KickThresholdKg = kg
	case "KICK_COOLDOWN_SEC":
		sec, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid KICK_COOLDOWN_SEC %q: %w", value, err)
		}
		if sec <= 0 {
			return fmt.Errorf("KICK_COOLDOWN_SEC must be positive, got %g", sec)
		}
		c.KickCooldownSec = sec
	case "REQUIRE_RISING_EDGE":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid REQUIRE_RISING_EDGE %q: %w", value, err)
		}
		c.RequireRisingEdge = b

	// FSR array
	case "ADC_I2C_BUS":
		c.ADCI2CBus = value
	case "ADC_I2C_ADDR":
		addr, err := strconv.ParseUint(value, 0, 16)
		if err != nil {
			return fmt.Errorf("invalid ADC_I2C_ADDR %q: %w", value, err)
		}
		c.ADCI2CAddr = uint16(addr)
	case "FSR_CHANNELS":
		channels, err := parseIntList(value)
		if err != nil {
			return fmt.Errorf("invalid FSR_CHANNELS %q: %w", value, err)
		}
		for _, ch := range channels {
			if ch < 0 || ch > 3 {
				return fmt.Errorf("FSR_CHANNELS entries must be 0-3, got %d", ch)
			}
		}
		c.FSRChannels = channels
	case "FSR_NAMES":
		c.FSRNames = splitTrim(value)
	case "FSR_MIN":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid FSR_MIN %q: %w", value, err)
		}
		c.FSRMin = v
	case "FSR_MAX":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid FSR_MAX %q: %w", value, err)
		}
		c.FSRMax = v
	case "WARNING_THRESHOLD":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid WARNING_THRESHOLD %q: %w", value, err)
		}
		if v <= 0 || v > 100 {
			return fmt.Errorf("WARNING_THRESHOLD must be in (0,100], got %g", v)
		}
		c.WarningThreshold = v

	// Speed source
	case "SPEED_SOURCE":
		switch value {
		case "ble", "serial", "none":
			c.SpeedSource = value
		default:
			return fmt.Errorf("SPEED_SOURCE must be ble, serial or none, got %q", value)
		}
	case "BLE_DEVICE_NAME":
		c.BLEDeviceName = value
	case "BLE_CHAR_UUID":
		c.BLECharUUID = value
	case "SPEED_READ_TIMEOUT_MS":
		ms, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid SPEED_READ_TIMEOUT_MS %q: %w", value, err)
		}
		if ms <= 0 {
			return fmt.Errorf("SPEED_READ_TIMEOUT_MS must be positive, got %d", ms)
		}
		c.SpeedReadTimeout = ms
	case "SERIAL_PORT":
		c.SerialPort = value
	case "SERIAL_BAUD_RATE":
		rate, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid SERIAL_BAUD_RATE %q: %w", value, err)
		}
		c.SerialBaudRate = rate
	case "RECONNECT_DELAY_SEC":
		sec, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid RECONNECT_DELAY_SEC %q: %w", value, err)
		}
		if sec <= 0 {
			return fmt.Errorf("RECONNECT_DELAY_SEC must be positive, got %d", sec)
		}
		c.ReconnectDelaySec = sec

	// Web Server
	case "WEB_SERVER_PORT":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid WEB_SERVER_PORT %q: %w", value, err)
		}
		c.WebServerPort = port

	// Display
	case "DISPLAY_I2C_BUS":
		c.DisplayI2CBus = value
	case "DISPLAY_UPDATE_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid DISPLAY_UPDATE_INTERVAL %q: %w", value, err)
		}
		c.DisplayUpdateInterval = interval

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return nil
}

// validate checks that all required fields are set.
func (c *Config) validate() error {
	if c.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is required")
	}
	if c.UploadURL == "" {
		return fmt.Errorf("UPLOAD_URL is required")
	}
	if c.HX711DoutPin == "" {
		return fmt.Errorf("HX711_DOUT_PIN is required")
	}
	if c.HX711SckPin == "" {
		return fmt.Errorf("HX711_SCK_PIN is required")
	}
	if len(c.FSRChannels) == 0 {
		return fmt.Errorf("FSR_CHANNELS is required")
	}
	if c.SpeedSource == "serial" && c.SerialPort == "" {
		return fmt.Errorf("SERIAL_PORT is required when SPEED_SOURCE=serial")
	}
	return nil
}

func parseIntList(value string) ([]int, error) {
	var out []int
	for _, part := range splitTrim(value) {
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func splitTrim(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// InitGlobal initializes the global configuration from file.
// Uses sync.Once to ensure this only runs once, even if called multiple times.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance.
// InitGlobal must be called first, or this will return nil.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
