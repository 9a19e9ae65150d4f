package alerts

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/GHIG-Portal/webinar-registration/registration"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	ROUTING_REGISTRATION_INCOMPLETE = "registration.incomplete"

	publishTimeout = 2 * time.Second
)

// IncompleteRegistrationEvent is the message operators receive when a payment
// was captured but the registration behind it did not finish.
type IncompleteRegistrationEvent struct {
	Event      string `json:"event"`
	Version    int    `json:"version"`
	OccurredAt string `json:"occurred_at"`
	Data       struct {
		Reference string `json:"reference"`
		Email     string `json:"email"`
		Stage     string `json:"stage"`
		Reason    string `json:"reason"`
	} `json:"data"`
}

func newIncompleteRegistrationEvent(incident registration.IncompleteRegistration) IncompleteRegistrationEvent {
	evt := IncompleteRegistrationEvent{
		Event:      ROUTING_REGISTRATION_INCOMPLETE,
		Version:    1,
		OccurredAt: incident.OccurredAt.UTC().Format(time.RFC3339),
	}
	evt.Data.Reference = incident.Reference
	evt.Data.Email = incident.Email
	evt.Data.Stage = incident.Stage.String()
	evt.Data.Reason = incident.Reason
	return evt
}

type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

var _ registration.Alerter = &Publisher{}

type Publisher struct {
	conn     *amqp.Connection
	ch       channel
	exchange string
	logger   *slog.Logger
}

func NewPublisher(url string, exchange string, logger *slog.Logger) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	return &Publisher{conn: conn, ch: ch, exchange: exchange, logger: logger}, nil
}

func (p *Publisher) RegistrationIncomplete(ctx context.Context, incident registration.IncompleteRegistration) error {
	body, err := json.Marshal(newIncompleteRegistrationEvent(incident))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	err = p.ch.PublishWithContext(ctx, p.exchange, ROUTING_REGISTRATION_INCOMPLETE, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    incident.OccurredAt,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", ROUTING_REGISTRATION_INCOMPLETE, err)
	}

	p.logger.InfoContext(ctx, "published operator alert", slog.String("reference", incident.Reference), slog.String("stage", incident.Stage.String()))
	return nil
}

func (p *Publisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

var _ registration.Alerter = &LogAlerter{}

// LogAlerter is used when no broker is configured. Operators find alerts by
// searching the logs for the routing key.
type LogAlerter struct {
	logger *slog.Logger
}

func NewLogAlerter(logger *slog.Logger) *LogAlerter {
	return &LogAlerter{logger: logger}
}

func (l *LogAlerter) RegistrationIncomplete(ctx context.Context, incident registration.IncompleteRegistration) error {
	l.logger.ErrorContext(ctx, ROUTING_REGISTRATION_INCOMPLETE,
		slog.String("reference", incident.Reference),
		slog.String("email", incident.Email),
		slog.String("stage", incident.Stage.String()),
		slog.String("reason", incident.Reason),
		slog.Time("occurredAt", incident.OccurredAt),
	)
	return nil
}
