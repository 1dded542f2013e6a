package view

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"eosthanks/models"
)

type fakeToken struct {
	err  error
	done chan struct{}
}

func newFakeToken(err error) *fakeToken {
	ch := make(chan struct{})
	close(ch)
	return &fakeToken{err: err, done: ch}
}

// pendingToken never completes, like a publish queued while the client
// reconnects.
type pendingToken struct{ done chan struct{} }

func (t *pendingToken) Wait() bool { <-t.done; return true }
func (t *pendingToken) WaitTimeout(d time.Duration) bool {
	select {
	case <-t.done:
		return true
	case <-time.After(d):
		return false
	}
}
func (t *pendingToken) Done() <-chan struct{} { return t.done }
func (t *pendingToken) Error() error          { return nil }

func (t *fakeToken) Wait() bool                     { return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Done() <-chan struct{}          { return t.done }
func (t *fakeToken) Error() error                   { return t.err }

type published struct {
	topic   string
	qos     byte
	payload []byte
}

type fakePublisher struct {
	mu    sync.Mutex
	err   error
	stall bool
	msgs  []published
}

func (p *fakePublisher) Publish(topic string, qos byte, _ bool, payload interface{}) mqtt.Token {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, published{topic: topic, qos: qos, payload: payload.([]byte)})
	if p.stall {
		return &pendingToken{done: make(chan struct{})}
	}
	return newFakeToken(p.err)
}

func TestMQTT_PublishesLifecycleJSON(t *testing.T) {
	pub := &fakePublisher{}
	sink := NewMQTT(MQTTConfig{Topic: "eosthanks/overlay", QoS: 1}, pub, nil)

	req := NewCardRequest("run-9", 4, models.EventItem{DisplayName: "dave", Kind: models.EventKindSubscribed, Months: 3})
	width := sink.RenderCard(req)
	sink.PlaceCard(4, models.Rect{Top: 200, Left: 100, Width: width, Height: 135})
	sink.MarkFading(4)
	sink.RemoveCard(4)
	sink.FadeInEndingGraphic()
	sink.Close()

	require.Len(t, pub.msgs, 5)
	wantTopics := []string{"render", "place", "fade", "remove", "ending"}
	for i, m := range pub.msgs {
		assert.Equal(t, "eosthanks/overlay/"+wantTopics[i], m.topic)
		assert.Equal(t, byte(1), m.qos)
	}

	var render Message
	require.NoError(t, json.Unmarshal(pub.msgs[0].payload, &render))
	assert.Equal(t, "run-9", render.RunID)
	assert.Equal(t, "dave", render.DisplayName)
	assert.Equal(t, "x3", render.Decoration)
	assert.Equal(t, width, render.Width)

	var place Message
	require.NoError(t, json.Unmarshal(pub.msgs[1].payload, &place))
	require.NotNil(t, place.Rect)
	assert.Equal(t, 200, place.Rect.Top)
	assert.Equal(t, "run-9", place.RunID)

	stats := sink.Stats()
	assert.Equal(t, uint64(0), stats.Errors)
	assert.Equal(t, uint64(1), stats.Published["eosthanks/overlay/fade"])
}

func TestMQTT_Msgpack(t *testing.T) {
	pub := &fakePublisher{}
	sink := NewMQTT(MQTTConfig{Topic: "t", Format: FormatMsgpack}, pub, nil)

	sink.MarkFading(7)
	sink.Close()

	require.Len(t, pub.msgs, 1)
	var msg Message
	require.NoError(t, msgpack.Unmarshal(pub.msgs[0].payload, &msg))
	assert.Equal(t, "fade", msg.Op)
	assert.Equal(t, 7, msg.CardID)
}

func TestMQTT_PublishErrorsAreCounted(t *testing.T) {
	pub := &fakePublisher{err: errors.New("not connected")}
	sink := NewMQTT(MQTTConfig{Topic: "t"}, pub, nil)

	w := sink.RenderCard(NewCardRequest("r", 0, models.EventItem{DisplayName: "x", Kind: models.EventKindFollowed}))
	assert.Positive(t, w, "width must be reported even when publishing fails")
	sink.Close()
	assert.Equal(t, uint64(1), sink.Stats().Errors)
}

func TestMQTT_UnknownFormat(t *testing.T) {
	pub := &fakePublisher{}
	sink := NewMQTT(MQTTConfig{Topic: "t", Format: "xml"}, pub, nil)

	sink.RemoveCard(1)
	sink.Close()
	assert.Empty(t, pub.msgs)
	assert.Equal(t, uint64(1), sink.Stats().Errors)
}

func TestMQTT_StalledBrokerDoesNotBlockCaller(t *testing.T) {
	pub := &fakePublisher{stall: true}
	sink := NewMQTT(MQTTConfig{Topic: "t", PublishTimeout: 50 * time.Millisecond}, pub, nil)

	start := time.Now()
	w := sink.RenderCard(NewCardRequest("r", 1, models.EventItem{DisplayName: "x", Kind: models.EventKindFollowed}))
	sink.PlaceCard(1, models.Rect{Top: 150, Left: 10, Width: w, Height: 135})
	sink.MarkFading(1)
	sink.RemoveCard(1)
	elapsed := time.Since(start)
	assert.Less(t, elapsed, 20*time.Millisecond, "sink calls waited on the broker")

	sink.Close()
	stats := sink.Stats()
	assert.Equal(t, uint64(4), stats.Errors, "undelivered messages are counted")
	assert.Empty(t, stats.Published)
}

func TestMQTT_QueueOverflowIsCounted(t *testing.T) {
	pub := &fakePublisher{stall: true}
	sink := NewMQTT(MQTTConfig{Topic: "t", PublishTimeout: 200 * time.Millisecond}, pub, nil)

	for i := 0; i < queueSize+10; i++ {
		sink.MarkFading(i)
	}
	// the sender holds at most one message outside the queue
	assert.GreaterOrEqual(t, sink.Stats().Errors, uint64(9))

	sink.Close()
}

func TestMQTT_PublishAfterClose(t *testing.T) {
	pub := &fakePublisher{}
	sink := NewMQTT(MQTTConfig{Topic: "t"}, pub, nil)
	sink.Close()
	sink.Close()

	sink.FadeInEndingGraphic()
	assert.Empty(t, pub.msgs)
	assert.Equal(t, uint64(1), sink.Stats().Errors)
}
