package report

import (
	"encoding/json"
	"log"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/kick_computer/internal/kick"
)

// Publisher fans kick data out to the local MQTT broker so the console, web,
// and display subscribers can follow the session live. Publishing is best
// effort: a nil Publisher or a broker hiccup never disturbs detection.
type Publisher struct {
	client      mqtt.Client
	eventsTopic string
	weightTopic string
}

func NewPublisher(broker, clientID, eventsTopic, weightTopic string) (*Publisher, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	log.Printf("detector: connected to MQTT broker at %s", broker)

	return &Publisher{
		client:      client,
		eventsTopic: eventsTopic,
		weightTopic: weightTopic,
	}, nil
}

// PublishKick publishes one kick record, retained so late subscribers see
// the last kick immediately.
func (p *Publisher) PublishKick(rec kick.Record) {
	if p == nil {
		return
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		log.Printf("detector: kick record marshal error: %v", err)
		return
	}
	if token := p.client.Publish(p.eventsTopic, 0, true, payload); token.Wait() && token.Error() != nil {
		log.Printf("detector: MQTT publish error (%s): %v", p.eventsTopic, token.Error())
	}
}

// PublishWeight publishes one raw force sample for the live weight readout.
func (p *Publisher) PublishWeight(s kick.ForceSample) {
	if p == nil {
		return
	}
	payload, err := json.Marshal(s)
	if err != nil {
		log.Printf("detector: force sample marshal error: %v", err)
		return
	}
	if token := p.client.Publish(p.weightTopic, 0, true, payload); token.Wait() && token.Error() != nil {
		log.Printf("detector: MQTT publish error (%s): %v", p.weightTopic, token.Error())
	}
}

func (p *Publisher) Close() {
	if p == nil {
		return
	}
	p.client.Disconnect(250)
}
