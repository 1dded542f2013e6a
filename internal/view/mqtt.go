package view

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/vmihailenco/msgpack/v5"

	"eosthanks/models"
)

const (
	FormatJSON    = "json"
	FormatMsgpack = "msgpack"

	defaultPublishTimeout = 2 * time.Second
	queueSize             = 256
)

var (
	errQueueFull      = errors.New("publish queue full")
	errPublishTimeout = errors.New("publish timeout")
	errSinkClosed     = errors.New("sink closed")
)

// MQTTConfig selects the broker and topic layout for overlay messages.
type MQTTConfig struct {
	Broker   string
	ClientID string
	Topic    string
	QoS      byte
	Format   string
	// PublishTimeout bounds how long the sender waits for the broker to
	// acknowledge one message. Zero uses two seconds.
	PublishTimeout time.Duration
}

// Message is one lifecycle side effect as published to the overlay.
type Message struct {
	RunID       string       `json:"runId,omitempty" msgpack:"runId,omitempty"`
	Op          string       `json:"op" msgpack:"op"`
	CardID      int          `json:"cardId" msgpack:"cardId"`
	DisplayName string       `json:"displayName,omitempty" msgpack:"displayName,omitempty"`
	Kind        string       `json:"kind,omitempty" msgpack:"kind,omitempty"`
	Label       string       `json:"label,omitempty" msgpack:"label,omitempty"`
	Decoration  string       `json:"decoration,omitempty" msgpack:"decoration,omitempty"`
	Width       int          `json:"width,omitempty" msgpack:"width,omitempty"`
	Rect        *models.Rect `json:"rect,omitempty" msgpack:"rect,omitempty"`
	SentAt      time.Time    `json:"sentAt" msgpack:"sentAt"`
}

// Publisher is the part of mqtt.Client the sink uses.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

type outgoing struct {
	topic   string
	payload []byte
}

// MQTT publishes lifecycle messages to "<topic>/<op>" for a browser overlay
// subscribed over MQTT-over-WebSocket. Sink calls only encode and enqueue;
// a sender goroutine talks to the broker, so an outage never delays the
// sequence. Messages that do not fit the queue are dropped and counted.
type MQTT struct {
	cfg      MQTTConfig
	client   Publisher
	measurer *Measurer

	queue chan outgoing
	abort chan struct{}
	done  chan struct{}

	mu        sync.Mutex
	closed    bool
	runID     string
	published map[string]uint64
	errors    uint64
}

// DialMQTT connects to the broker with automatic reconnects.
func DialMQTT(cfg MQTTConfig, measurer *Measurer) (*MQTT, mqtt.Client, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(2 * time.Second)
	opts.SetMaxReconnectInterval(30 * time.Second)

	opts.OnConnect = func(mqtt.Client) {
		log.Printf("[mqtt] connected to %s as %s", cfg.Broker, cfg.ClientID)
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		log.Printf("[mqtt] connection lost, reconnecting: %v", err)
	}

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(5 * time.Second) {
		return nil, nil, fmt.Errorf("mqtt connect to %s: timeout", cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, nil, fmt.Errorf("mqtt connect to %s: %w", cfg.Broker, err)
	}

	return NewMQTT(cfg, client, measurer), client, nil
}

// NewMQTT creates a sink publishing through client.
func NewMQTT(cfg MQTTConfig, client Publisher, measurer *Measurer) *MQTT {
	if cfg.Format == "" {
		cfg.Format = FormatJSON
	}
	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = defaultPublishTimeout
	}
	if measurer == nil {
		measurer = NewMeasurer()
	}
	m := &MQTT{
		cfg:       cfg,
		client:    client,
		measurer:  measurer,
		queue:     make(chan outgoing, queueSize),
		abort:     make(chan struct{}),
		done:      make(chan struct{}),
		published: make(map[string]uint64),
	}
	go m.send()
	return m
}

func (m *MQTT) RenderCard(req CardRequest) int {
	w := m.measurer.Width(req)

	m.mu.Lock()
	m.runID = req.RunID
	m.mu.Unlock()

	m.publish(Message{
		RunID:       req.RunID,
		Op:          "render",
		CardID:      req.ID,
		DisplayName: req.DisplayName,
		Kind:        string(req.Kind),
		Label:       req.Label,
		Decoration:  req.Decoration,
		Width:       w,
	})
	return w
}

func (m *MQTT) PlaceCard(id int, rect models.Rect) {
	m.publish(Message{Op: "place", CardID: id, Rect: &rect})
}

func (m *MQTT) MarkFading(id int) {
	m.publish(Message{Op: "fade", CardID: id})
}

func (m *MQTT) RemoveCard(id int) {
	m.publish(Message{Op: "remove", CardID: id})
}

func (m *MQTT) FadeInEndingGraphic() {
	m.publish(Message{Op: "ending", CardID: -1})
}

// Encode serializes msg in the configured format.
func (m *MQTT) Encode(msg Message) ([]byte, error) {
	switch m.cfg.Format {
	case FormatMsgpack:
		return msgpack.Marshal(msg)
	case FormatJSON:
		return json.Marshal(msg)
	default:
		return nil, fmt.Errorf("unknown payload format %q", m.cfg.Format)
	}
}

func (m *MQTT) publish(msg Message) {
	m.mu.Lock()
	if msg.RunID == "" {
		msg.RunID = m.runID
	}
	m.mu.Unlock()
	msg.SentAt = time.Now().UTC()

	topic := m.cfg.Topic + "/" + msg.Op

	payload, err := m.Encode(msg)
	if err != nil {
		m.fail(topic, err)
		return
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		m.fail(topic, errSinkClosed)
		return
	}
	select {
	case m.queue <- outgoing{topic: topic, payload: payload}:
		m.mu.Unlock()
	default:
		m.mu.Unlock()
		m.fail(topic, errQueueFull)
	}
}

// send drains the queue until Close.
func (m *MQTT) send() {
	defer close(m.done)

	for out := range m.queue {
		select {
		case <-m.abort:
			m.fail(out.topic, errSinkClosed)
			continue
		default:
		}

		token := m.client.Publish(out.topic, m.cfg.QoS, false, out.payload)
		timer := time.NewTimer(m.cfg.PublishTimeout)
		select {
		case <-token.Done():
			timer.Stop()
			if err := token.Error(); err != nil {
				m.fail(out.topic, err)
				continue
			}
			m.mu.Lock()
			m.published[out.topic]++
			m.mu.Unlock()
		case <-timer.C:
			m.fail(out.topic, errPublishTimeout)
		case <-m.abort:
			timer.Stop()
			m.fail(out.topic, errSinkClosed)
		}
	}
}

// Close stops accepting messages and waits up to one publish timeout for
// the queue to drain. Whatever is still queued after that is dropped.
func (m *MQTT) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		<-m.done
		return
	}
	m.closed = true
	close(m.queue)
	m.mu.Unlock()

	select {
	case <-m.done:
		return
	case <-time.After(m.cfg.PublishTimeout):
	}
	close(m.abort)
	<-m.done
}

func (m *MQTT) fail(topic string, err error) {
	m.mu.Lock()
	m.errors++
	m.mu.Unlock()
	log.Printf("[mqtt] publish %s failed: %v", topic, err)
}

// MQTTStats counts acknowledged publishes per topic and failures.
type MQTTStats struct {
	Published map[string]uint64
	Errors    uint64
}

// Stats returns a copy of the sink's counters.
func (m *MQTT) Stats() MQTTStats {
	m.mu.Lock()
	defer m.mu.Unlock()

	published := make(map[string]uint64, len(m.published))
	for k, v := range m.published {
		published[k] = v
	}
	return MQTTStats{Published: published, Errors: m.errors}
}
