package db

import (
	"fmt"

	"backend-pathtracker/internal/config"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

var newMQTTClientFn = mqtt.NewClient

// ConnectMQTT connects to the broker location providers publish to. A nil
// client and nil error mean MQTT ingest is disabled.
func ConnectMQTT(cfg config.Config) (mqtt.Client, error) {
	if cfg.MQTTBroker == "" {
		return nil, nil
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientID).
		SetAutoReconnect(true)

	client := newMQTTClientFn(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect: %w", token.Error())
	}
	return client, nil
}
