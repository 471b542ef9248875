package tracking

import (
	"log"
	"net/http"
	"time"

	"github.com/matst80/slask-catalog/pkg/common"
	"github.com/matst80/slask-catalog/pkg/messaging"
	"github.com/matst80/slask-catalog/pkg/types"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	EventSession     uint16 = 0
	EventFilter      uint16 = 1
	EventProductView uint16 = 2
)

type BaseEvent struct {
	SessionId string `json:"session_id"`
	Country   string `json:"country,omitempty"`
	Context   string `json:"context,omitempty"`
	Event     uint16 `json:"event"`
}

type Session struct {
	*BaseEvent
	UserAgent    string `json:"user_agent,omitempty"`
	Ip           string `json:"ip,omitempty"`
	Language     string `json:"language,omitempty"`
	PragmaHeader string `json:"pragma,omitempty"`
}

type FilterEvent struct {
	*BaseEvent
	types.FilterCriteria
	Sort            types.SortKey `json:"sort"`
	NumberOfResults int           `json:"noi"`
}

type ProductViewEvent struct {
	*BaseEvent
	Item types.ProductId `json:"item"`
}

// RabbitTracking queues tracking events and publishes them on the global
// tracking topic from a background goroutine.
type RabbitTracking struct {
	country    string
	connection *amqp.Connection
	queue      *common.QueueHandler[any]
	publish    func(event any) error
}

func NewRabbitTracking(url, country string) (*RabbitTracking, error) {
	conn, err := messaging.Connect(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	defer ch.Close()
	if err = messaging.DefineTopic(ch, messaging.GlobalPrefix, messaging.Tracking); err != nil {
		conn.Close()
		return nil, err
	}
	rt := newTracking(country, func(event any) error {
		return messaging.SendChange(conn, messaging.GlobalPrefix, messaging.Tracking, event)
	})
	rt.connection = conn
	return rt, nil
}

func newTracking(country string, publish func(event any) error) *RabbitTracking {
	rt := &RabbitTracking{
		country: country,
		publish: publish,
	}
	rt.queue = common.NewQueueHandler(rt.sendBatch, 50, time.Second)
	return rt
}

func (rt *RabbitTracking) sendBatch(events []any) {
	for _, event := range events {
		if err := rt.publish(event); err != nil {
			log.Printf("Error sending tracking event: %v", err)
		}
	}
}

func (rt *RabbitTracking) base(sessionId string, event uint16) *BaseEvent {
	return &BaseEvent{Event: event, SessionId: sessionId, Country: rt.country, Context: "b2c"}
}

func clientIp(r *http.Request) string {
	ip := r.Header.Get("X-Real-Ip")
	if ip == "" {
		ip = r.Header.Get("X-Forwarded-For")
	}
	if ip == "" {
		ip = r.RemoteAddr
	}
	return ip
}

func (rt *RabbitTracking) TrackSession(sessionId string, r *http.Request) {
	rt.queue.Add(Session{
		BaseEvent:    rt.base(sessionId, EventSession),
		Language:     r.Header.Get("Accept-Language"),
		UserAgent:    r.UserAgent(),
		Ip:           clientIp(r),
		PragmaHeader: r.Header.Get("Pragma"),
	})
}

func (rt *RabbitTracking) TrackFilter(sessionId string, criteria types.FilterCriteria, sort types.SortKey, resultLen int) {
	rt.queue.Add(FilterEvent{
		BaseEvent:       rt.base(sessionId, EventFilter),
		FilterCriteria:  criteria,
		Sort:            sort,
		NumberOfResults: resultLen,
	})
}

func (rt *RabbitTracking) TrackProductView(sessionId string, id types.ProductId) {
	rt.queue.Add(ProductViewEvent{
		BaseEvent: rt.base(sessionId, EventProductView),
		Item:      id,
	})
}

// Close publishes any queued events and closes the connection.
func (rt *RabbitTracking) Close() error {
	rt.queue.Close()
	if rt.connection == nil {
		return nil
	}
	return rt.connection.Close()
}
