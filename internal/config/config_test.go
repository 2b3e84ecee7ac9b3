package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kick_config.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const minimalConfig = `
MQTT_BROKER=tcp://localhost:1883
UPLOAD_URL=https://example.test/kick_data.json
HX711_DOUT_PIN=GPIO5
HX711_SCK_PIN=GPIO6
`

func TestLoadMinimalConfigGetsDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, "tcp://localhost:1883", cfg.MQTTBroker)
	assert.Equal(t, "kick/events", cfg.TopicKickEvents)
	assert.Equal(t, 4.0, cfg.KickThresholdKg)
	assert.Equal(t, 2.0, cfg.KickCooldownSec)
	assert.True(t, cfg.RequireRisingEdge)
	assert.Equal(t, []int{0, 1, 3}, cfg.FSRChannels)
	assert.Equal(t, -1.0, cfg.FSRMin)
	assert.Equal(t, 1873.0, cfg.FSRMax)
	assert.Equal(t, 50.0, cfg.WarningThreshold)
	assert.Equal(t, "ble", cfg.SpeedSource)
	assert.Equal(t, "KickMeter", cfg.BLEDeviceName)
	assert.Equal(t, 10, cfg.UploadTimeoutSec)
	assert.Equal(t, uint16(0x48), cfg.ADCI2CAddr)
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig+`
KICK_THRESHOLD_KG=5.5
KICK_COOLDOWN_SEC=1.0
REQUIRE_RISING_EDGE=false
FSR_CHANNELS=0,2
FSR_NAMES=left,right
ADC_I2C_ADDR=0x49
SPEED_SOURCE=none
`))
	require.NoError(t, err)

	assert.Equal(t, 5.5, cfg.KickThresholdKg)
	assert.Equal(t, 1.0, cfg.KickCooldownSec)
	assert.False(t, cfg.RequireRisingEdge)
	assert.Equal(t, []int{0, 2}, cfg.FSRChannels)
	assert.Equal(t, []string{"left", "right"}, cfg.FSRNames)
	assert.Equal(t, uint16(0x49), cfg.ADCI2CAddr)
	assert.Equal(t, "none", cfg.SpeedSource)
}

func TestLoadSkipsCommentsAndBlankLines(t *testing.T) {
	_, err := Load(writeConfig(t, "# a comment\n\n"+minimalConfig))
	assert.NoError(t, err)
}

func TestLoadUnknownKey(t *testing.T) {
	_, err := Load(writeConfig(t, minimalConfig+"WHAT_IS_THIS=1\n"))
	assert.ErrorContains(t, err, "unknown config key")
}

func TestLoadMalformedLine(t *testing.T) {
	_, err := Load(writeConfig(t, minimalConfig+"no equals sign here\n"))
	assert.ErrorContains(t, err, "invalid config line")
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"missing broker", "UPLOAD_URL=x\nHX711_DOUT_PIN=GPIO5\nHX711_SCK_PIN=GPIO6\n", "MQTT_BROKER"},
		{"missing upload url", "MQTT_BROKER=x\nHX711_DOUT_PIN=GPIO5\nHX711_SCK_PIN=GPIO6\n", "UPLOAD_URL"},
		{"missing dout pin", "MQTT_BROKER=x\nUPLOAD_URL=x\nHX711_SCK_PIN=GPIO6\n", "HX711_DOUT_PIN"},
		{"serial without port", minimalConfig + "SPEED_SOURCE=serial\n", "SERIAL_PORT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []string{
		"KICK_THRESHOLD_KG=zero",
		"KICK_THRESHOLD_KG=-1",
		"KICK_COOLDOWN_SEC=0",
		"SAMPLE_INTERVAL_MS=-5",
		"FSR_CHANNELS=0,9",
		"SPEED_SOURCE=telepathy",
		"WARNING_THRESHOLD=150",
		"REQUIRE_RISING_EDGE=maybe",
	}
	for _, line := range tests {
		t.Run(line, func(t *testing.T) {
			_, err := Load(writeConfig(t, minimalConfig+line+"\n"))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.txt"))
	assert.Error(t, err)
}
