package app

import (
	"encoding/json"
	"fmt"
	"image"
	"log"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/kick_computer/internal/classify"
	"github.com/relabs-tech/kick_computer/internal/config"
	"github.com/relabs-tech/kick_computer/internal/kick"
)

// displayData holds the latest kick for the update loop.
type displayData struct {
	mu       sync.RWMutex
	rec      kick.Record
	haveRec  bool
	received time.Time
}

// RunDisplay shows the most recent kick on the SSD1306 panel next to the pad.
func RunDisplay() error {
	cfg := config.Get()

	// Initialize periph
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("failed to initialize periph: %w", err)
	}

	// Open I2C bus
	bus, err := i2creg.Open(cfg.DisplayI2CBus)
	if err != nil {
		return fmt.Errorf("failed to open I2C bus: %w", err)
	}
	defer bus.Close()

	dev, err := ssd1306.NewI2C(bus, &ssd1306.DefaultOpts)
	if err != nil {
		return fmt.Errorf("failed to initialize display: %w", err)
	}
	log.Println("display: SSD1306 initialized")

	if err := showSplash(dev); err != nil {
		log.Printf("display: error showing splash: %v", err)
	}

	data := &displayData{}

	// Connect to MQTT
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDDisplay)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("display: connected to MQTT broker at %s", cfg.MQTTBroker)

	token := client.Subscribe(cfg.TopicKickEvents, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var rec kick.Record
		if err := json.Unmarshal(msg.Payload(), &rec); err != nil {
			log.Printf("display: kick record unmarshal error: %v", err)
			return
		}
		data.mu.Lock()
		data.rec = rec
		data.haveRec = true
		data.received = time.Now()
		data.mu.Unlock()
	})
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}
	log.Printf("display: subscribed to %s", cfg.TopicKickEvents)

	// Display update loop
	ticker := time.NewTicker(time.Duration(cfg.DisplayUpdateInterval) * time.Millisecond)
	defer ticker.Stop()

	log.Println("display: starting update loop")

	for range ticker.C {
		data.mu.RLock()
		rec := data.rec
		haveRec := data.haveRec
		age := time.Since(data.received)
		data.mu.RUnlock()

		if err := updateKickDisplay(dev, rec, haveRec, age); err != nil {
			log.Printf("display: error updating display: %v", err)
		}
	}

	return nil
}

func newDrawer(img *image1bit.VerticalLSB) *font.Drawer {
	// Blank image
	for i := range img.Pix {
		img.Pix[i] = 0
	}
	return &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}
}

func updateKickDisplay(dev *ssd1306.Dev, rec kick.Record, haveRec bool, age time.Duration) error {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, 128, 64))
	drawer := newDrawer(img)

	if !haveRec {
		drawer.Dot = fixed.P(0, 26)
		drawer.DrawBytes([]byte("Kick Meter"))
		drawer.Dot = fixed.P(0, 39)
		drawer.DrawBytes([]byte("Waiting..."))
		return dev.Draw(dev.Bounds(), img, image.Point{})
	}

	weightKg := rec.ForceNewtons / kick.Gravity

	drawer.Dot = fixed.P(0, 13)
	drawer.DrawBytes([]byte(classify.StrengthOf(weightKg).String()))

	drawer.Dot = fixed.P(0, 26)
	drawer.DrawBytes([]byte(fmt.Sprintf("F: %6.1f N", rec.ForceNewtons)))

	drawer.Dot = fixed.P(0, 39)
	drawer.DrawBytes([]byte(fmt.Sprintf("V: %5.2f m/s", rec.SpeedMetersPerSecond)))

	drawer.Dot = fixed.P(0, 52)
	drawer.DrawBytes([]byte(fmt.Sprintf("%s  %ds ago", shortAccuracy(rec.Accuracy), int(age.Seconds()))))

	return dev.Draw(dev.Bounds(), img, image.Point{})
}

func shortAccuracy(accuracy string) string {
	if accuracy == classify.Lower.String() {
		return "EDGE HIT"
	}
	return "CENTER"
}

func showSplash(dev *ssd1306.Dev) error {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, 128, 64))
	drawer := newDrawer(img)

	drawer.Dot = fixed.P(10, 26)
	drawer.DrawBytes([]byte("Kick Meter"))

	drawer.Dot = fixed.P(5, 43)
	drawer.DrawBytes([]byte("Waiting for"))

	drawer.Dot = fixed.P(25, 56)
	drawer.DrawBytes([]byte("kicks"))

	return dev.Draw(dev.Bounds(), img, image.Point{})
}
