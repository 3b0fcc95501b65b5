package sink

import (
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
)

var errMqttTimeout = errors.New("mqtt operation timed out")

type publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Disconnect(quiesce uint)
}

// MqttSink publishes each line to an MQTT topic.
type MqttSink struct {
	client  publisher
	topic   string
	qos     byte
	timeout time.Duration
}

// NewMqttSink connects to broker (e.g. tcp://localhost:1883). An empty
// clientID is replaced with a random one.
func NewMqttSink(broker, clientID, topic string, qos byte, timeout time.Duration) (*MqttSink, error) {
	if clientID == "" {
		clientID = "wslogger-" + uuid.NewString()
	}
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectTimeout(timeout)

	client := mqtt.NewClient(opts)
	if err := wait(client.Connect(), timeout); err != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", broker, err)
	}
	return &MqttSink{client: client, topic: topic, qos: qos, timeout: timeout}, nil
}

func (s *MqttSink) Write(data []byte) error {
	if err := wait(s.client.Publish(s.topic, s.qos, false, data), s.timeout); err != nil {
		return fmt.Errorf("mqtt publish %s: %w", s.topic, err)
	}
	return nil
}

func (s *MqttSink) Close() error {
	s.client.Disconnect(250)
	return nil
}

func wait(tok mqtt.Token, timeout time.Duration) error {
	if !tok.WaitTimeout(timeout) {
		return errMqttTimeout
	}
	return tok.Error()
}
