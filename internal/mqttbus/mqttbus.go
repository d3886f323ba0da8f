// Package mqttbus is the supplementary push channel. When an admin changes
// what a screen shows, the server publishes a refresh hint to the device's
// command topic so an online player can re-fetch immediately instead of
// waiting for its next poll. Delivery is best effort; the polling protocol
// remains the source of truth.
package mqttbus

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"
)

var client mqtt.Client

var connectHandler mqtt.OnConnectHandler = func(c mqtt.Client) {
	log.Info().Msg("connected to MQTT broker")
}

var connectLostHandler mqtt.ConnectionLostHandler = func(c mqtt.Client, err error) {
	log.Warn().Err(err).Msg("MQTT connection lost")
}

// Init connects the server's publisher client. A broker being down is not
// fatal; hint publishing just becomes a no-op until reconnect.
func Init(brokerURL, clientID string) error {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(brokerURL)
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.OnConnect = connectHandler
	opts.OnConnectionLost = connectLostHandler

	client = mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}
	return nil
}

func commandTopic(deviceID string) string {
	return fmt.Sprintf("tv/%s/commands", deviceID)
}

type refreshHint struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
}

// PublishRefresh nudges one device to re-fetch its manifest.
func PublishRefresh(deviceID string) {
	if client == nil || !client.IsConnected() {
		return
	}
	payload, _ := json.Marshal(refreshHint{Type: "refresh", Timestamp: time.Now().Unix()})
	token := client.Publish(commandTopic(deviceID), 1, false, payload)
	token.Wait()
	if token.Error() != nil {
		log.Warn().Err(token.Error()).Str("device_id", deviceID).Msg("failed to publish refresh hint")
		return
	}
	log.Debug().Str("device_id", deviceID).Msg("published refresh hint")
}

// Cleanup disconnects the publisher client.
func Cleanup() {
	if client != nil {
		client.Disconnect(250)
		log.Info().Msg("MQTT client disconnected")
	}
}
