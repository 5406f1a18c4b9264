// internal/service/conversation/conversation_service.go
package conversation

import (
	"context"
	"errors"

	"tusafishe-service/internal/domain/customer"
	"tusafishe-service/internal/domain/sms"
	xerrors "tusafishe-service/internal/pkg/errors"
	"tusafishe-service/internal/pkg/guard"
	"tusafishe-service/internal/service/registration"

	"go.uber.org/zap"
)

// CustomerStore is the persistence the pipeline needs. Both the Appwrite and
// PostgreSQL repositories satisfy it.
type CustomerStore interface {
	FindByPhone(ctx context.Context, phone string) (*customer.Customer, error)
	Create(ctx context.Context, phone string) (*customer.Customer, error)
	Update(ctx context.Context, id string, patch *customer.Patch) (*customer.Customer, error)
}

type Sender interface {
	Send(ctx context.Context, to, message string) *sms.SendResult
}

type ConversationService struct {
	store     CustomerStore
	sender    Sender
	guard     guard.Guard
	processor *registration.Processor
	logger    *zap.Logger
}

func NewConversationService(store CustomerStore, sender Sender, g guard.Guard, processor *registration.Processor, logger *zap.Logger) *ConversationService {
	if g == nil {
		g = guard.Noop{}
	}
	return &ConversationService{
		store:     store,
		sender:    sender,
		guard:     g,
		processor: processor,
		logger:    logger,
	}
}

// HandleSMS runs one conversational turn: resolve the customer, decide the
// reply, persist the state change and, for real messages, send the reply.
func (s *ConversationService) HandleSMS(ctx context.Context, msg sms.InboundSMS) *sms.TurnResult {
	log := s.logger.With(
		zap.String("phone", msg.From),
		zap.String("source", msg.Source()),
	)
	log.Info("processing sms", zap.String("text", msg.Text))

	result := &sms.TurnResult{
		Phone:    msg.From,
		Received: msg.Text,
		IsReal:   msg.IsReal,
	}

	release, err := s.guard.Lock(ctx, msg.From)
	switch {
	case errors.Is(err, guard.ErrLocked):
		// The delivery is not marked seen, so the carrier's retry is processed.
		log.Warn("turn already in progress")
		result.Error = err.Error()
		return result
	case err != nil:
		log.Warn("turn lock unavailable", zap.Error(err))
	default:
		defer release()
	}

	first, err := s.guard.FirstDelivery(ctx, msg.MessageID)
	if err != nil {
		// Redis trouble must not stop customers from registering.
		log.Warn("dedupe check failed", zap.String("message_id", msg.MessageID), zap.Error(err))
		first = true
	}
	if !first {
		log.Info("duplicate delivery dropped", zap.String("message_id", msg.MessageID))
		result.Success = true
		result.Duplicate = true
		return result
	}

	reply, c := s.decide(ctx, log, msg)
	if c != nil {
		id := c.ID
		result.CustomerID = &id
	}

	if msg.IsReal && reply != "" {
		sent := s.sender.Send(ctx, msg.From, reply)
		if !sent.Success {
			log.Error("reply not delivered", zap.String("error", sent.Error))
		}
	}

	result.Success = true
	result.Response = reply
	return result
}

// decide resolves the customer and applies the processor's decision. The
// returned customer is nil when none could be found or created.
func (s *ConversationService) decide(ctx context.Context, log *zap.Logger, msg sms.InboundSMS) (string, *customer.Customer) {
	c, err := s.store.FindByPhone(ctx, msg.From)
	switch {
	case err == nil:
	case xerrors.Is(err, xerrors.ErrNotFound):
		created, cerr := s.store.Create(ctx, msg.From)
		if cerr != nil {
			log.Error("failed to create customer", zap.Error(cerr))
		} else {
			log.Info("customer created", zap.String("customer_id", created.ID))
		}
		// First contact always gets the welcome, whether or not the create landed.
		return s.processor.Process(nil, msg.Text).Reply, created
	default:
		log.Error("customer lookup failed", zap.Error(err))
		return s.processor.ErrorReply(), nil
	}

	if !c.RegistrationState.Valid() {
		log.Warn("unknown registration state", zap.String("customer_id", c.ID), zap.String("state", string(c.RegistrationState)))
	}

	d := s.processor.Process(c, msg.Text)
	if !d.Patch.IsEmpty() {
		if _, err := s.store.Update(ctx, c.ID, d.Patch); err != nil {
			log.Error("failed to update customer", zap.String("customer_id", c.ID), zap.Error(err))
		} else {
			log.Info("customer updated", zap.String("customer_id", c.ID))
		}
	}
	return d.Reply, c
}
