package listener

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fekuna/school-inventory-service/internal/apperror"
	"github.com/fekuna/school-inventory-service/internal/model"
	"github.com/fekuna/school-inventory-service/internal/replenishment"
	"github.com/fekuna/school-inventory-service/internal/replenishment/dto"
	"github.com/fekuna/school-inventory-service/pkg/broker"
	"github.com/fekuna/school-inventory-service/pkg/logger"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const EventSupplierDelivery = "supplier.delivery"

// maxBusyAttempts bounds how often a delivery is retried while its item is locked.
const maxBusyAttempts = 5

// MessageReader is satisfied by *broker.KafkaConsumer.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

type DeliveryListener struct {
	reader     MessageReader
	uc         replenishment.UseCase
	logger     logger.ZapLogger
	retryDelay time.Duration
}

func NewDeliveryListener(reader MessageReader, uc replenishment.UseCase, log logger.ZapLogger) *DeliveryListener {
	return &DeliveryListener{
		reader:     reader,
		uc:         uc,
		logger:     log,
		retryDelay: time.Second,
	}
}

func (l *DeliveryListener) Start(ctx context.Context) {
	l.logger.Info("Starting supplier delivery listener")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("Stopping supplier delivery listener")
			return
		default:
			msg, err := l.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				l.logger.Error("Failed to read kafka message", zap.Error(err))
				select {
				case <-ctx.Done():
					return
				case <-time.After(l.retryDelay):
				}
				continue
			}
			l.processMessage(ctx, msg.Value)
		}
	}
}

type DeliveryPayload struct {
	RequestID        string  `json:"request_id"`
	ReceivedQuantity *int64  `json:"received_quantity"`
	ActualCost       *string `json:"actual_cost"`
	ReceivedBy       string  `json:"received_by"`
}

func (l *DeliveryListener) processMessage(ctx context.Context, value []byte) {
	var event broker.Event
	if err := json.Unmarshal(value, &event); err != nil {
		l.logger.Error("Failed to unmarshal event", zap.Error(err))
		return
	}
	if event.EventType != EventSupplierDelivery {
		return
	}

	var p DeliveryPayload
	if err := json.Unmarshal(event.Payload, &p); err != nil {
		l.logger.Error("Failed to unmarshal delivery payload", zap.String("event_id", event.EventID), zap.Error(err))
		return
	}

	input := &dto.ReceiveInput{ID: p.RequestID, ReceivedQuantity: p.ReceivedQuantity}
	if p.ActualCost != nil && *p.ActualCost != "" {
		cost, err := decimal.NewFromString(*p.ActualCost)
		if err != nil {
			l.logger.Warn("Skipping delivery with invalid cost",
				zap.String("request_id", p.RequestID),
				zap.String("actual_cost", *p.ActualCost),
			)
			return
		}
		input.ActualCost = &cost
	}

	receivedBy := p.ReceivedBy
	if receivedBy == "" {
		receivedBy = "supplier-delivery"
	}
	actor := model.Actor{ID: receivedBy, Kind: model.ActorStaff}

	l.logger.Info("Processing supplier delivery", zap.String("request_id", p.RequestID))

	mv, err := l.receive(ctx, actor, input)
	if err != nil {
		if apperror.KindOf(err) != apperror.KindUnknown {
			l.logger.Warn("Skipping supplier delivery",
				zap.String("request_id", p.RequestID),
				zap.String("kind", apperror.KindOf(err).String()),
				zap.Error(err),
			)
			return
		}
		l.logger.Error("Failed to receive supplier delivery",
			zap.String("request_id", p.RequestID),
			zap.Error(err),
		)
		return
	}

	l.logger.Info("Supplier delivery received",
		zap.String("request_id", p.RequestID),
		zap.String("movement_id", mv.ID),
		zap.Int64("quantity", mv.Quantity),
	)
}

// receive retries while the item is held by another writer.
func (l *DeliveryListener) receive(ctx context.Context, actor model.Actor, input *dto.ReceiveInput) (*model.StockMovement, error) {
	for attempt := 1; ; attempt++ {
		_, mv, err := l.uc.Receive(ctx, actor, input)
		if err == nil || !apperror.Is(err, apperror.KindUnavailable) || attempt >= maxBusyAttempts {
			return mv, err
		}
		l.logger.Warn("Item busy, retrying supplier delivery",
			zap.String("request_id", input.ID),
			zap.Int("attempt", attempt),
		)
		select {
		case <-ctx.Done():
			return nil, err
		case <-time.After(l.retryDelay):
		}
	}
}
