package managers

import (
	"context"
	"fmt"

	"github.com/smartspace/smartspace/pkg/clients/smartspace"
	"github.com/smartspace/smartspace/pkg/domain"
	"github.com/smartspace/smartspace/pkg/domain/mappers"
	"github.com/smartspace/smartspace/pkg/utils/pagination"
)

type notificationManager struct {
	client    smartspace.ClientInterface
	paginator *pagination.OffsetHandler
}

type NotificationManagerDependencies struct {
	Client smartspace.ClientInterface
}

func NewNotificationManager(deps NotificationManagerDependencies) domain.NotificationManager {
	return &notificationManager{
		client:    deps.Client,
		paginator: pagination.NewDefaultOffsetHandler(),
	}
}

func (m *notificationManager) GetNotifications(ctx context.Context, params domain.GetNotificationsParams) (domain.NotificationPage, error) {
	page, err := m.paginator.BuildRequestParams(pagination.Params{Take: params.Take, Skip: params.Skip})
	if err != nil {
		return domain.NotificationPage{}, fmt.Errorf("invalid paging: %w", err)
	}

	response, err := m.client.GetNotifications(ctx, &smartspace.GetNotificationsRequest{
		Take:       page.Take,
		Skip:       page.Skip,
		UnreadOnly: params.UnreadOnly,
	})
	if err != nil {
		return domain.NotificationPage{}, fmt.Errorf("failed to get notifications from API: %w", err)
	}

	metadata := m.paginator.ParseResponseMetadata(page, len(response.Data), response.Total)

	return domain.NotificationPage{
		Notifications: mappers.SmartSpaceNotificationsToDomain(response.Data),
		Total:         response.Total,
		UnreadCount:   response.UnreadCount,
		HasMore:       metadata.HasMore,
	}, nil
}

func (m *notificationManager) MarkRead(ctx context.Context, notificationID string) error {
	if err := m.client.MarkNotificationRead(ctx, notificationID); err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}

	return nil
}

func (m *notificationManager) MarkAllRead(ctx context.Context) error {
	if err := m.client.MarkAllNotificationsRead(ctx); err != nil {
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}

	return nil
}
