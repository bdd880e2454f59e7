package mappers

import (
	"github.com/smartspace/smartspace/pkg/clients/smartspace"
	"github.com/smartspace/smartspace/pkg/domain"
)

func stringValue(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

// SmartSpaceWorkspaceToDomain converts a smartspace.Workspace to domain.Workspace
func SmartSpaceWorkspaceToDomain(w smartspace.Workspace) domain.Workspace {
	return domain.Workspace{
		ID:            w.ID,
		Name:          w.Name,
		Tags:          w.Tags,
		FirstPrompt:   stringValue(w.FirstPrompt),
		ModelID:       stringValue(w.ModelID),
		SupportsFiles: w.SupportsFiles,
		CreatedAt:     domain.ParseTime(w.CreatedAt),
	}
}

// SmartSpaceWorkspacesToDomain converts a slice of smartspace.Workspace to domain.Workspace
func SmartSpaceWorkspacesToDomain(workspaces []smartspace.Workspace) []domain.Workspace {
	result := make([]domain.Workspace, len(workspaces))
	for i, w := range workspaces {
		result[i] = SmartSpaceWorkspaceToDomain(w)
	}
	return result
}

// SmartSpaceThreadToDomain converts a smartspace.MessageThread to domain.MessageThread
func SmartSpaceThreadToDomain(t smartspace.MessageThread) domain.MessageThread {
	return domain.MessageThread{
		ID:                  t.ID,
		Name:                t.Name,
		WorkspaceID:         t.WorkSpaceID,
		CreatedAt:           domain.ParseTime(t.CreatedAt),
		CreatedBy:           t.CreatedBy,
		CreatedByUserID:     t.CreatedByUserID,
		LastUpdatedAt:       domain.ParseTime(t.LastUpdatedAt),
		LastUpdatedByUserID: stringValue(t.LastUpdatedByUserID),
		TotalMessages:       t.TotalMessages,
		Favorited:           t.Favorited,
		IsFlowRunning:       t.IsFlowRunning,
	}
}

// SmartSpaceThreadsToDomain converts a slice of smartspace.MessageThread to domain.MessageThread
func SmartSpaceThreadsToDomain(threads []smartspace.MessageThread) []domain.MessageThread {
	result := make([]domain.MessageThread, len(threads))
	for i, t := range threads {
		result[i] = SmartSpaceThreadToDomain(t)
	}
	return result
}

func SmartSpaceMessageValueToDomain(v smartspace.MessageValue) domain.MessageValue {
	return domain.MessageValue{
		Name:      v.Name,
		Type:      v.Type,
		Value:     v.Value,
		Channels:  v.Channels,
		CreatedAt: domain.ParseTime(v.CreatedAt),
		CreatedBy: v.CreatedBy,
	}
}

// SmartSpaceMessageToDomain converts a smartspace.Message to domain.Message
func SmartSpaceMessageToDomain(m smartspace.Message) domain.Message {
	values := make([]domain.MessageValue, len(m.Values))
	for i, v := range m.Values {
		values[i] = SmartSpaceMessageValueToDomain(v)
	}

	return domain.Message{
		ID:              m.ID,
		ThreadID:        m.MessageThreadID,
		CreatedAt:       domain.ParseTime(m.CreatedAt),
		CreatedBy:       m.CreatedBy,
		CreatedByUserID: m.CreatedByUserID,
		HasComments:     m.HasComments,
		Values:          values,
	}
}

// SmartSpaceMessagesToDomain converts a slice of smartspace.Message to domain.Message
func SmartSpaceMessagesToDomain(messages []smartspace.Message) []domain.Message {
	result := make([]domain.Message, len(messages))
	for i, m := range messages {
		result[i] = SmartSpaceMessageToDomain(m)
	}
	return result
}

// DomainSendMessageToSmartSpace builds the request that posts a prompt
func DomainSendMessageToSmartSpace(p domain.SendMessageParams) smartspace.PostMessageRequest {
	req := smartspace.PostMessageRequest{
		WorkSpaceID: p.WorkspaceID,
		Inputs: []smartspace.MessageInput{
			{Name: domain.InputNamePrompt, Value: p.Prompt},
		},
	}

	if p.ThreadID != "" {
		threadID := p.ThreadID
		req.MessageThreadID = &threadID
	}

	for _, file := range p.FileIDs {
		req.Files = append(req.Files, smartspace.FileReference{ID: file.ID, Name: file.Name})
	}

	return req
}

func SmartSpaceMentionsToDomain(users []smartspace.MentionedUser) []domain.MentionedUser {
	if len(users) == 0 {
		return nil
	}
	result := make([]domain.MentionedUser, len(users))
	for i, u := range users {
		result[i] = domain.MentionedUser{ID: u.ID, DisplayName: u.DisplayName}
	}
	return result
}

func DomainMentionsToSmartSpace(users []domain.MentionedUser) []smartspace.MentionedUser {
	if len(users) == 0 {
		return nil
	}
	result := make([]smartspace.MentionedUser, len(users))
	for i, u := range users {
		result[i] = smartspace.MentionedUser{ID: u.ID, DisplayName: u.DisplayName}
	}
	return result
}

// SmartSpaceCommentToDomain converts a smartspace.Comment to domain.Comment
func SmartSpaceCommentToDomain(c smartspace.Comment) domain.Comment {
	return domain.Comment{
		ID:              c.ID,
		Content:         c.Content,
		ThreadID:        c.MessageThreadID,
		CreatedAt:       domain.ParseTime(c.CreatedAt),
		CreatedBy:       c.CreatedBy,
		CreatedByUserID: c.CreatedByUserID,
		MentionedUsers:  SmartSpaceMentionsToDomain(c.MentionedUsers),
	}
}

// SmartSpaceCommentsToDomain converts a slice of smartspace.Comment to domain.Comment
func SmartSpaceCommentsToDomain(comments []smartspace.Comment) []domain.Comment {
	result := make([]domain.Comment, len(comments))
	for i, c := range comments {
		result[i] = SmartSpaceCommentToDomain(c)
	}
	return result
}

// SmartSpaceNotificationToDomain converts a smartspace.Notification to domain.Notification
func SmartSpaceNotificationToDomain(n smartspace.Notification) domain.Notification {
	return domain.Notification{
		ID:          n.ID,
		Type:        n.NotificationType,
		Title:       n.Title,
		Description: n.Description,
		Avatar:      stringValue(n.Avatar),
		CreatedAt:   domain.ParseTime(n.CreatedAt),
		ReadAt:      domain.ParseOptionalTime(n.ReadAt),
		WorkspaceID: stringValue(n.WorkSpaceID),
		ThreadID:    stringValue(n.ThreadID),
	}
}

// SmartSpaceNotificationsToDomain converts a slice of smartspace.Notification to domain.Notification
func SmartSpaceNotificationsToDomain(notifications []smartspace.Notification) []domain.Notification {
	result := make([]domain.Notification, len(notifications))
	for i, n := range notifications {
		result[i] = SmartSpaceNotificationToDomain(n)
	}
	return result
}

// SmartSpaceModelToDomain converts a smartspace.Model to domain.Model
func SmartSpaceModelToDomain(m smartspace.Model) domain.Model {
	return domain.Model{
		ID:              m.ID,
		Name:            m.Name,
		DisplayName:     m.DisplayName,
		ProviderType:    m.ModelDeploymentProviderType,
		VirtualModel:    m.VirtualModel,
		CreatedAt:       domain.ParseTime(m.CreatedAt),
		CreatedByUserID: m.CreatedByUserID,
	}
}

// SmartSpaceModelsToDomain converts a slice of smartspace.Model to domain.Model
func SmartSpaceModelsToDomain(models []smartspace.Model) []domain.Model {
	result := make([]domain.Model, len(models))
	for i, m := range models {
		result[i] = SmartSpaceModelToDomain(m)
	}
	return result
}

// SmartSpaceFileInfoToDomain converts a smartspace.FileInfo to domain.FileInfo
func SmartSpaceFileInfoToDomain(f smartspace.FileInfo) domain.FileInfo {
	return domain.FileInfo{
		ID:          f.ID,
		Name:        f.Name,
		ContentType: f.ContentType,
		Size:        f.Size,
		UploadedAt:  domain.ParseTime(f.UploadedAt),
	}
}
