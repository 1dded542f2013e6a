package main

import (
	"fmt"
	"log"

	"eosthanks/config"
	"eosthanks/internal/view"
)

// outputs is the sink set for one run plus whatever must be closed after.
type outputs struct {
	Sink     view.Sink
	Terminal *view.Terminal

	closers []func()
}

func (o *outputs) Close() {
	for i := len(o.closers) - 1; i >= 0; i-- {
		o.closers[i]()
	}
}

// openSinks builds the configured sinks. Every sink shares one measurer so
// widths agree across outputs.
func openSinks(cfg config.Settings) (*outputs, error) {
	out := &outputs{}
	measurer := view.NewMeasurer()
	var sinks view.Multi

	for _, name := range cfg.Outro.Sinks {
		switch name {
		case config.SinkLog:
			sinks = append(sinks, view.NewLogSink(nil, measurer))
		case config.SinkTerminal:
			term, err := view.OpenTerminal(cfg.Outro.Viewport, cfg.Outro.ASCIINames)
			if err != nil {
				out.Close()
				return nil, fmt.Errorf("open terminal: %w", err)
			}
			out.Terminal = term
			out.closers = append(out.closers, term.Close)
			sinks = append(sinks, term)
		case config.SinkMQTT:
			sink, client, err := view.DialMQTT(view.MQTTConfig{
				Broker:   cfg.MQTT.Broker,
				ClientID: cfg.MQTT.ClientID,
				Topic:    cfg.MQTT.Topic,
				QoS:      cfg.MQTT.QoS,
				Format:   cfg.MQTT.Format,
			}, measurer)
			if err != nil {
				out.Close()
				return nil, err
			}
			out.closers = append(out.closers, func() {
				sink.Close()
				stats := sink.Stats()
				log.Printf("[mqtt] disconnecting, %d publish errors", stats.Errors)
				client.Disconnect(250)
			})
			sinks = append(sinks, sink)
		default:
			out.Close()
			return nil, fmt.Errorf("unknown sink %q", name)
		}
	}

	switch len(sinks) {
	case 0:
		out.Sink = view.NewLogSink(nil, measurer)
	case 1:
		out.Sink = sinks[0]
	default:
		out.Sink = sinks
	}
	return out, nil
}
