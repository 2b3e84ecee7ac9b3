package app

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/kick_computer/internal/config"
	"github.com/relabs-tech/kick_computer/internal/kick"
)

func RunConsoleMQTT() error {
	cfg := config.Get()

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDConsole)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("console: connected to MQTT broker at %s", cfg.MQTTBroker)

	// Subscribe to kick events
	kickToken := client.Subscribe(cfg.TopicKickEvents, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var rec kick.Record
		if err := json.Unmarshal(msg.Payload(), &rec); err != nil {
			log.Printf("console: kick record unmarshal error: %v", err)
			return
		}

		fmt.Printf("Kick detected!\n")
		fmt.Printf("  Force: %.2f N\n", rec.ForceNewtons)
		fmt.Printf("  Edge Pressure: %.1f%%\n", rec.EdgePressurePercent)
		fmt.Printf("  Accuracy: %s\n", rec.Accuracy)
		fmt.Printf("  Speed: %.2f m/s\n", rec.SpeedMetersPerSecond)
		fmt.Printf("  Time: %s\n\n", rec.TimestampLocal)
	})
	kickToken.Wait()
	if kickToken.Error() != nil {
		return kickToken.Error()
	}
	log.Printf("console: subscribed to %s", cfg.TopicKickEvents)

	// Subscribe to the live weight stream
	weightToken := client.Subscribe(cfg.TopicWeight, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var s kick.ForceSample
		if err := json.Unmarshal(msg.Payload(), &s); err != nil {
			log.Printf("console: force sample unmarshal error: %v", err)
			return
		}

		fmt.Printf("[WEIGHT] %6.2f kg  %7.2f N\r", s.WeightKg, s.ForceNewtons)
	})
	weightToken.Wait()
	if weightToken.Error() != nil {
		return weightToken.Error()
	}
	log.Printf("console: subscribed to %s", cfg.TopicWeight)

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("console: shutting down")
	client.Disconnect(250)
	return nil
}
