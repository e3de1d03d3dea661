package report

import (
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	"github.com/kilianp07/roomload/core/report"
	"github.com/kilianp07/roomload/infra/mqtt"
	"github.com/kilianp07/roomload/pkg/export"
)

// MQTTConfig configures an MQTTSink.
type MQTTConfig struct {
	mqtt.Config `json:",squash"`
	// TopicPrefix is prepended to "<room_id>" and "summary".
	TopicPrefix string `json:"topic_prefix"`
}

type publisher interface {
	Publish(topic string, payload []byte) error
	Close() error
}

var newPublisher = func(cfg mqtt.Config) (publisher, error) {
	return mqtt.NewPublisher(cfg)
}

// MQTTSink publishes one message per room under <prefix>/<room_id> and the
// run summary under <prefix>/summary. Messages are retained unless the
// configuration says otherwise.
type MQTTSink struct {
	prefix string
	broker string
	pub    publisher
}

// NewMQTTSink connects to the broker.
func NewMQTTSink(cfg MQTTConfig) (*MQTTSink, error) {
	if cfg.TopicPrefix == "" {
		cfg.TopicPrefix = "roomload/rooms"
	}
	pub, err := newPublisher(cfg.Config)
	if err != nil {
		return nil, err
	}
	return &MQTTSink{prefix: strings.TrimRight(cfg.TopicPrefix, "/"), broker: cfg.Broker, pub: pub}, nil
}

func (s *MQTTSink) Location() string { return s.broker + "/" + s.prefix }

type summaryMessage struct {
	RunID    string               `json:"run_id"`
	Begin    string               `json:"begin"`
	End      string               `json:"end"`
	Workdays int                  `json:"workdays"`
	Summary  export.SummaryRecord `json:"summary"`
}

func (s *MQTTSink) Write(ctx context.Context, r *report.Report) error {
	doc := export.NewDocument(r)
	for _, room := range doc.Rooms {
		if err := ctx.Err(); err != nil {
			return err
		}
		payload, err := json.Marshal(room)
		if err != nil {
			return err
		}
		if err := s.pub.Publish(s.prefix+"/"+topicSegment(room.RoomID), payload); err != nil {
			return fmt.Errorf("room %s: %w", room.RoomID, err)
		}
	}
	payload, err := json.Marshal(summaryMessage{
		RunID:    doc.RunID,
		Begin:    doc.Begin,
		End:      doc.End,
		Workdays: doc.Workdays,
		Summary:  doc.Summary,
	})
	if err != nil {
		return err
	}
	return s.pub.Publish(s.prefix+"/summary", payload)
}

// Close disconnects from the broker.
func (s *MQTTSink) Close() error { return s.pub.Close() }

// topicSegment replaces MQTT wildcard and separator characters.
func topicSegment(s string) string {
	return strings.NewReplacer("/", "_", "+", "_", "#", "_").Replace(s)
}
