package kafka

import (
	"context"
	"encoding/json"
	"time"

	"ms-bookings/internal/logger"
	"ms-bookings/internal/models"

	"github.com/segmentio/kafka-go"
)

// Producer streams booking lifecycle events. In mock mode events are only
// logged, so the service runs without a broker.
type Producer struct {
	Writer   *kafka.Writer
	Logger   *logger.Logger
	MockMode bool
}

func NewProducer(brokers []string, topic string, mockMode bool, log *logger.Logger) *Producer {
	p := &Producer{Logger: log, MockMode: mockMode}
	if !mockMode {
		p.Writer = kafka.NewWriter(kafka.WriterConfig{
			Brokers: brokers,
			Topic:   topic,
		})
	}
	return p
}

func (p *Producer) publish(eventType, bookingID string, booking *models.Booking) error {
	event := models.BookingEvent{
		Type:      eventType,
		BookingID: bookingID,
		Booking:   booking,
		Timestamp: time.Now().UTC(),
	}

	msgBytes, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if p.MockMode {
		p.Logger.LogKafka("MOCK", eventType, string(msgBytes))
		return nil
	}

	p.Logger.LogKafka("PUBLISH", eventType, bookingID)
	return p.Writer.WriteMessages(context.Background(),
		kafka.Message{
			Key:   []byte(bookingID),
			Value: msgBytes,
		},
	)
}

func (p *Producer) PublishBookingCreated(booking models.Booking) error {
	return p.publish(models.EventBookingCreated, booking.ID, &booking)
}

func (p *Producer) PublishScreenshotAttached(booking models.Booking) error {
	return p.publish(models.EventScreenshotAttached, booking.ID, &booking)
}

func (p *Producer) PublishPaymentVerified(booking models.Booking) error {
	return p.publish(models.EventPaymentVerified, booking.ID, &booking)
}

func (p *Producer) PublishPaymentRejected(booking models.Booking) error {
	return p.publish(models.EventPaymentRejected, booking.ID, &booking)
}

func (p *Producer) PublishBookingStatusChanged(booking models.Booking) error {
	return p.publish(models.EventBookingStatusChanged, booking.ID, &booking)
}

func (p *Producer) PublishBookingDeleted(id string) error {
	return p.publish(models.EventBookingDeleted, id, nil)
}

func (p *Producer) Close() error {
	if p.Writer != nil {
		return p.Writer.Close()
	}
	return nil
}
