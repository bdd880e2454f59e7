package managers

import (
	"context"
	"fmt"

	"github.com/smartspace/smartspace/pkg/clients/smartspace"
	"github.com/smartspace/smartspace/pkg/domain"
	"github.com/smartspace/smartspace/pkg/domain/mappers"
)

type messageManager struct {
	client smartspace.ClientInterface
}

type MessageManagerDependencies struct {
	Client smartspace.ClientInterface
}

func NewMessageManager(deps MessageManagerDependencies) domain.MessageManager {
	return &messageManager{
		client: deps.Client,
	}
}

func (m *messageManager) GetMessages(ctx context.Context, params domain.GetMessagesParams) ([]domain.Message, error) {
	messages, err := m.client.GetMessages(ctx, &smartspace.GetMessagesRequest{
		ThreadID: params.ThreadID,
		Take:     params.Take,
		Skip:     params.Skip,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get messages from API: %w", err)
	}

	return mappers.SmartSpaceMessagesToDomain(messages), nil
}

// SendMessage posts a prompt and hands every streamed message to handler
// until the reply ends. Cancelling ctx aborts the request.
func (m *messageManager) SendMessage(ctx context.Context, params domain.SendMessageParams, handler domain.MessageHandler) error {
	if params.Prompt == "" {
		return fmt.Errorf("prompt is required")
	}

	request := mappers.DomainSendMessageToSmartSpace(params)

	stream, err := m.client.PostMessage(ctx, &request)
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	return drain(ctx, stream, handler)
}

func (m *messageManager) AddInput(ctx context.Context, params domain.AddInputParams, handler domain.MessageHandler) error {
	stream, err := m.client.AddInputToMessage(ctx, params.MessageID, &smartspace.AddInputToMessageRequest{
		Name:  params.Name,
		Value: params.Value,
	})
	if err != nil {
		return fmt.Errorf("failed to add input to message: %w", err)
	}

	return drain(ctx, stream, handler)
}

func drain(ctx context.Context, stream *smartspace.MessageStream, handler domain.MessageHandler) error {
	unsubscribe := stream.Subscribe(smartspace.MessageObserver{
		OnMessage: func(msg smartspace.Message) {
			if handler != nil {
				handler(mappers.SmartSpaceMessageToDomain(msg))
			}
		},
	})
	defer unsubscribe()

	if err := stream.Wait(ctx); err != nil {
		return fmt.Errorf("message stream failed: %w", err)
	}

	return nil
}
