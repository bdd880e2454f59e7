package managers

import (
	"context"
	"fmt"

	"github.com/smartspace/smartspace/pkg/clients/smartspace"
	"github.com/smartspace/smartspace/pkg/domain"
	"github.com/smartspace/smartspace/pkg/domain/mappers"
	"github.com/smartspace/smartspace/pkg/utils/pagination"
)

type threadManager struct {
	client    smartspace.ClientInterface
	paginator *pagination.OffsetHandler
}

type ThreadManagerDependencies struct {
	Client smartspace.ClientInterface
}

func NewThreadManager(deps ThreadManagerDependencies) domain.ThreadManager {
	return &threadManager{
		client:    deps.Client,
		paginator: pagination.NewDefaultOffsetHandler(),
	}
}

func (m *threadManager) GetThreads(ctx context.Context, params domain.GetThreadsParams) (domain.ThreadPage, error) {
	page, err := m.paginator.BuildRequestParams(pagination.Params{Take: params.Take, Skip: params.Skip})
	if err != nil {
		return domain.ThreadPage{}, fmt.Errorf("invalid paging: %w", err)
	}

	response, err := m.client.GetMessageThreads(ctx, &smartspace.GetMessageThreadsRequest{
		WorkspaceID: params.WorkspaceID,
		Take:        page.Take,
		Skip:        page.Skip,
	})
	if err != nil {
		return domain.ThreadPage{}, fmt.Errorf("failed to get threads from API: %w", err)
	}

	metadata := m.paginator.ParseResponseMetadata(page, len(response.Data), response.Total)

	return domain.ThreadPage{
		Threads: mappers.SmartSpaceThreadsToDomain(response.Data),
		Total:   response.Total,
		HasMore: metadata.HasMore,
	}, nil
}

func (m *threadManager) GetThread(ctx context.Context, threadID string) (domain.MessageThread, error) {
	thread, err := m.client.GetMessageThread(ctx, threadID)
	if err != nil {
		return domain.MessageThread{}, fmt.Errorf("failed to get thread from API: %w", err)
	}

	return mappers.SmartSpaceThreadToDomain(*thread), nil
}

func (m *threadManager) RenameThread(ctx context.Context, threadID, name string) (domain.MessageThread, error) {
	thread, err := m.client.RenameMessageThread(ctx, threadID, name)
	if err != nil {
		return domain.MessageThread{}, fmt.Errorf("failed to rename thread: %w", err)
	}

	return mappers.SmartSpaceThreadToDomain(*thread), nil
}

func (m *threadManager) SetFavorited(ctx context.Context, threadID string, favorited bool) (domain.MessageThread, error) {
	thread, err := m.client.SetMessageThreadFavorited(ctx, threadID, favorited)
	if err != nil {
		return domain.MessageThread{}, fmt.Errorf("failed to update thread favorite: %w", err)
	}

	return mappers.SmartSpaceThreadToDomain(*thread), nil
}

func (m *threadManager) DeleteThread(ctx context.Context, threadID string) error {
	if err := m.client.DeleteMessageThread(ctx, threadID); err != nil {
		return fmt.Errorf("failed to delete thread: %w", err)
	}

	return nil
}
