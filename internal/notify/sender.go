package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"
)

// LogSender writes alerts to the log. It is always ready.
type LogSender struct{}

func (LogSender) Send(_ context.Context, a Alert) error {
	log.Info().
		Str("tag", string(a.Tag)).
		Str("date", a.Date).
		Msgf("%s: %s", a.Title, a.Body)
	return nil
}

func (LogSender) Ready() bool  { return true }
func (LogSender) Name() string { return "log" }

// PushoverEndpoint is the Pushover messages API.
const PushoverEndpoint = "https://api.pushover.net/1/messages.json"

// PushoverSender delivers alerts through the Pushover API.
type PushoverSender struct {
	Token    string
	User     string
	Endpoint string
	HTTP     *http.Client
}

// NewPushoverSender creates a sender with the default endpoint.
func NewPushoverSender(token, user string) *PushoverSender {
	return &PushoverSender{
		Token:    token,
		User:     user,
		Endpoint: PushoverEndpoint,
		HTTP:     &http.Client{Timeout: 10 * time.Second},
	}
}

func (p *PushoverSender) Ready() bool  { return p.Token != "" && p.User != "" }
func (p *PushoverSender) Name() string { return "pushover" }

func (p *PushoverSender) Send(ctx context.Context, a Alert) error {
	params := url.Values{}
	params.Set("token", p.Token)
	params.Set("user", p.User)
	params.Set("title", a.Title)
	params.Set("message", a.Body)
	params.Set("timestamp", fmt.Sprintf("%d", a.At.Unix()))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.Endpoint, strings.NewReader(params.Encode()))
	if err != nil {
		return fmt.Errorf("failed to build pushover request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("pushover request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("pushover api error: status %s, body %s", resp.Status, string(body))
	}
	return nil
}

// MQTTSender publishes alerts as JSON to a broker topic for subscribed
// devices.
type MQTTSender struct {
	client mqtt.Client
	topic  string
}

// NewMQTTSender connects to broker (e.g. "tcp://localhost:1883").
func NewMQTTSender(broker, topic, clientID string) (*MQTTSender, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(10 * time.Second)
	opts.OnConnect = func(mqtt.Client) {
		log.Info().Str("broker", broker).Msg("connected to MQTT broker")
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		log.Warn().Err(err).Str("broker", broker).Msg("MQTT connection lost")
	}

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}
	return &MQTTSender{client: client, topic: topic}, nil
}

func (m *MQTTSender) Ready() bool  { return m.client.IsConnected() }
func (m *MQTTSender) Name() string { return "mqtt" }

func (m *MQTTSender) Send(ctx context.Context, a Alert) error {
	payload, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to encode alert: %w", err)
	}
	token := m.client.Publish(m.topic, 1, false, payload)
	select {
	case <-token.Done():
		if err := token.Error(); err != nil {
			return fmt.Errorf("mqtt publish failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close disconnects from the broker.
func (m *MQTTSender) Close() {
	m.client.Disconnect(250)
}
