package tracking

import (
	"log"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/zhafed/richie/pkg/messaging"
	"github.com/zhafed/richie/pkg/types"
)

const trackingTopic messaging.ChangeTopic = "tracking"

type RabbitTracking struct {
	prefix     string
	connection *amqp.Connection
}

func NewRabbitTracking(url, prefix string) (*RabbitTracking, error) {
	ret := RabbitTracking{prefix: prefix}
	if err := ret.connect(url); err != nil {
		return nil, err
	}
	return &ret, nil
}

func (t *RabbitTracking) connect(url string) error {
	conn, err := amqp.Dial(url)
	if err != nil {
		return &types.UpstreamUnavailable{Op: "rabbitmq connect", Err: err}
	}
	t.connection = conn
	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()
	return trackingTopic.Declare(ch, t.prefix)
}

func (t *RabbitTracking) Close() error {
	return t.connection.Close()
}

func (t *RabbitTracking) send(data any) error {
	return messaging.Publish(t.connection, t.prefix, trackingTopic, data)
}

type BaseEvent struct {
	SessionId string `json:"session_id"`
	Event     uint16 `json:"event"`
}

type SessionEvent struct {
	*BaseEvent
	UserAgent string `json:"user_agent,omitempty"`
	Ip        string `json:"ip,omitempty"`
	Language  string `json:"language,omitempty"`
}

func (t *RabbitTracking) TrackSession(sessionId string, info SessionInfo) {
	err := t.send(SessionEvent{
		BaseEvent: &BaseEvent{Event: 0, SessionId: sessionId},
		Language:  info.Language,
		UserAgent: info.UserAgent,
		Ip:        info.Ip,
	})
	if err != nil {
		log.Println("Error sending session event: ", err)
	}
}

type SearchEvent struct {
	*BaseEvent
	Filters         types.Filters `json:"filters,omitempty"`
	NumberOfResults int           `json:"noi"`
	Referer         string        `json:"referer,omitempty"`
}

func (t *RabbitTracking) TrackSearch(sessionId string, filters types.Filters, resultLen int, referer string) {
	err := t.send(&SearchEvent{
		BaseEvent:       &BaseEvent{Event: 1, SessionId: sessionId},
		Filters:         filters,
		NumberOfResults: resultLen,
		Referer:         referer,
	})
	if err != nil {
		log.Println("Error sending search event: ", err)
	}
}
