package arcard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// motionPayload accepts both browser-style (beta/gamma) and IMU-style
// (roll/pitch/yaw) orientation messages.
type motionPayload struct {
	Beta  *float64 `json:"beta"`
	Gamma *float64 `json:"gamma"`
	Roll  *float64 `json:"roll"`
	Pitch *float64 `json:"pitch"`
	Yaw   *float64 `json:"yaw"`
}

// parseMotionPayload decodes one orientation message. Pitch maps to beta and
// roll to gamma when the browser fields are absent.
func parseMotionPayload(data []byte, at time.Time) (MotionSample, error) {
	var p motionPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return MotionSample{}, fmt.Errorf("decode motion payload: %w", err)
	}
	s := MotionSample{Time: at}
	switch {
	case p.Beta != nil || p.Gamma != nil:
		if p.Beta != nil {
			s.Beta = *p.Beta
		}
		if p.Gamma != nil {
			s.Gamma = *p.Gamma
		}
	case p.Pitch != nil || p.Roll != nil:
		if p.Pitch != nil {
			s.Beta = *p.Pitch
		}
		if p.Roll != nil {
			s.Gamma = *p.Roll
		}
	default:
		return MotionSample{}, errors.New("decode motion payload: no orientation fields")
	}
	return s, nil
}

// MQTTMotionSource subscribes to an orientation topic on an MQTT broker.
// Connecting to the broker plays the role of the permission grant: if the
// broker is unreachable the sensor silently stays at zero tilt.
type MQTTMotionSource struct {
	cfg       MQTTConfig
	log       *slog.Logger
	newClient func(*mqtt.ClientOptions) mqtt.Client

	mu     sync.Mutex
	client mqtt.Client
}

// NewMQTTMotionSource creates a source for cfg. Nothing connects until
// RequestPermission or Samples is called.
func NewMQTTMotionSource(cfg MQTTConfig, log *slog.Logger) *MQTTMotionSource {
	if log == nil {
		log = slog.Default()
	}
	return &MQTTMotionSource{cfg: cfg, log: log, newClient: mqtt.NewClient}
}

// RequestPermission connects to the broker.
func (m *MQTTMotionSource) RequestPermission(ctx context.Context) (bool, error) {
	if _, err := m.connect(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func (m *MQTTMotionSource) connect(ctx context.Context) (mqtt.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.client != nil {
		if m.client.IsConnected() {
			return m.client, nil
		}
		// Stale client: stop its reconnect loop before replacing it.
		m.client.Disconnect(0)
		m.client = nil
	}

	opts := mqtt.NewClientOptions().
		AddBroker(m.cfg.Broker).
		SetClientID(m.cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectTimeout(5 * time.Second)
	client := m.newClient(opts)

	token := client.Connect()
	select {
	case <-token.Done():
	case <-ctx.Done():
		// A connect that completes later must not outlive the caller.
		client.Disconnect(0)
		return nil, ctx.Err()
	}
	if err := token.Error(); err != nil {
		client.Disconnect(0)
		return nil, fmt.Errorf("mqtt connect %s: %w", m.cfg.Broker, err)
	}
	m.log.Info("orientation: mqtt connected", "broker", m.cfg.Broker)
	m.client = client
	return client, nil
}

// Samples subscribes to the configured topic. Messages that fail to decode
// are dropped. The subscription and connection end when ctx is done.
func (m *MQTTMotionSource) Samples(ctx context.Context) (<-chan MotionSample, error) {
	client, err := m.connect(ctx)
	if err != nil {
		return nil, err
	}

	out := make(chan MotionSample, 16)
	var (
		sendMu sync.Mutex
		closed bool
	)

	handler := func(_ mqtt.Client, msg mqtt.Message) {
		sample, err := parseMotionPayload(msg.Payload(), time.Now())
		if err != nil {
			m.log.Debug("orientation: mqtt payload", "topic", msg.Topic(), "err", err)
			return
		}
		sendMu.Lock()
		defer sendMu.Unlock()
		if closed {
			return
		}
		select {
		case out <- sample:
		default:
			// Consumer is behind; the next sample supersedes this one.
		}
	}

	token := client.Subscribe(m.cfg.Topic, 0, handler)
	select {
	case <-token.Done():
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt subscribe %s: %w", m.cfg.Topic, err)
	}
	m.log.Debug("orientation: mqtt subscribed", "topic", m.cfg.Topic)

	go func() {
		<-ctx.Done()
		client.Unsubscribe(m.cfg.Topic).WaitTimeout(time.Second)
		client.Disconnect(250)
		sendMu.Lock()
		closed = true
		close(out)
		sendMu.Unlock()
	}()
	return out, nil
}
