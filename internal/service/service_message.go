package service

import (
	"context"
	"time"

	"github.com/MKhiriev/go-chat-profiles/internal/logger"
	"github.com/MKhiriev/go-chat-profiles/internal/mapper"
	"github.com/MKhiriev/go-chat-profiles/internal/store"
	"github.com/MKhiriev/go-chat-profiles/internal/validators"
	"github.com/MKhiriev/go-chat-profiles/models"
)

// MsgNotParticipant is the validation message for recipients outside the conversation.
const MsgNotParticipant = "is not a participant of the conversation"

type messageService struct {
	store     store.RecordStore
	mappers   mappers
	validator validators.PayloadSegregator
	now       func() time.Time

	logger *logger.Logger
}

func NewMessageService(rs store.RecordStore, logger *logger.Logger) MessageService {
	return newMessageService(rs, logger)
}

func newMessageService(rs store.RecordStore, logger *logger.Logger, opts ...mapper.Option) *messageService {
	return &messageService{
		store:     rs,
		mappers:   newMappers(rs, opts...),
		validator: validators.NewObjectValidator(validators.MessageSchema),
		now:       utcNow,
		logger:    logger,
	}
}

// Send posts a message from the caller. Both the caller and the recipient
// must participate in the conversation.
func (s *messageService) Send(ctx context.Context, caller string, payload models.Payload) (models.Message, error) {
	parts, err := s.validator.Segregate(ctx, payload, validators.ModeCreate)
	if err != nil {
		return models.Message{}, err
	}

	msg := parts[models.MessagesTable]
	conv, err := s.conversation(ctx, caller, msg.String(validators.FieldConversationID))
	if err != nil {
		return models.Message{}, err
	}
	if !conv.HasParticipant(msg.String(validators.FieldRecipientID)) {
		return models.Message{}, validators.NewValidationError(validators.FieldRecipientID, MsgNotParticipant)
	}
	msg[validators.FieldSenderID] = caller

	obj, _, err := s.mappers.messages.Create(ctx, parts)
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*messageService.Send").Str("conversation_id", conv.ID).Msg("error sending message")
		return models.Message{}, translate(err)
	}
	return models.MessageFromRecord(obj), nil
}

// Get returns a message visible to the caller: the sender, the recipient or
// any participant of its conversation.
func (s *messageService) Get(ctx context.Context, caller, id string) (models.Message, error) {
	msg, err := s.load(ctx, id)
	if err != nil {
		return models.Message{}, err
	}
	if msg.SenderID == caller || msg.RecipientID == caller {
		return msg, nil
	}
	if _, err = s.conversation(ctx, caller, msg.ConversationID); err != nil {
		return models.Message{}, ErrForbidden
	}
	return msg, nil
}

// List requires a conversation_id equality filter and returns the messages
// oldest first unless params says otherwise.
func (s *messageService) List(ctx context.Context, caller string, params models.SearchParams) ([]models.Message, error) {
	filter, ok := params.FilterFor(validators.FieldConversationID, models.OpEq)
	conversationID, _ := filter.Value.(string)
	if !ok || conversationID == "" {
		return nil, validators.NewValidationError(validators.FieldConversationID, validators.MsgRequired)
	}
	if _, err := s.conversation(ctx, caller, conversationID); err != nil {
		return nil, err
	}

	if len(params.Orders) == 0 {
		params.Orders = []models.Order{{Field: validators.FieldCreatedAt}, {Field: validators.FieldID}}
	}
	objects, err := s.mappers.messages.List(ctx, params)
	if err != nil {
		return nil, err
	}
	return models.MessagesFromRecords(objects), nil
}

// Update edits the text. Only the sender may do so.
func (s *messageService) Update(ctx context.Context, caller, id string, payload models.Payload) (models.Message, error) {
	msg, err := s.load(ctx, id)
	if err != nil {
		return models.Message{}, err
	}
	if msg.SenderID != caller {
		return models.Message{}, ErrForbidden
	}

	parts, err := s.validator.Segregate(ctx, payload, validators.ModeUpdate)
	if err != nil {
		return models.Message{}, err
	}

	obj, _, err := s.mappers.messages.Update(ctx, id, parts)
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*messageService.Update").Str("id", id).Msg("error updating message")
		return models.Message{}, translate(err)
	}
	return models.MessageFromRecord(obj), nil
}

// MarkDelivered stamps delivered_at. Only the recipient may do so; a message
// keeps its first delivery time.
func (s *messageService) MarkDelivered(ctx context.Context, caller, id string) (models.Message, error) {
	msg, err := s.load(ctx, id)
	if err != nil {
		return models.Message{}, err
	}
	if msg.RecipientID != caller {
		return models.Message{}, ErrForbidden
	}
	if msg.DeliveredAt != nil {
		return msg, nil
	}

	parts := map[string]models.Record{
		models.MessagesTable: {validators.FieldDeliveredAt: s.now()},
	}
	obj, _, err := s.mappers.messages.Update(ctx, id, parts)
	if err != nil {
		return models.Message{}, translate(err)
	}
	return models.MessageFromRecord(obj), nil
}

// Delete removes a message. Only the sender may do so.
func (s *messageService) Delete(ctx context.Context, caller, id string) error {
	msg, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if msg.SenderID != caller {
		return ErrForbidden
	}

	if _, _, err = s.mappers.messages.Delete(ctx, id); err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*messageService.Delete").Str("id", id).Msg("error deleting message")
		return translate(err)
	}
	return nil
}

func (s *messageService) load(ctx context.Context, id string) (models.Message, error) {
	obj, err := s.mappers.messages.Get(ctx, id)
	if err != nil {
		return models.Message{}, translate(err)
	}
	return models.MessageFromRecord(obj), nil
}

// conversation returns the conversation if the caller participates in it.
func (s *messageService) conversation(ctx context.Context, caller, id string) (models.Conversation, error) {
	obj, err := s.mappers.conversations.Get(ctx, id)
	if err != nil {
		return models.Conversation{}, translate(err)
	}
	conv := models.ConversationFromRecord(obj)
	if !conv.HasParticipant(caller) {
		return models.Conversation{}, ErrForbidden
	}
	return conv, nil
}
