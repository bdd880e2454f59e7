package mappers

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/smartspace/smartspace/pkg/clients/smartspace"
	"github.com/smartspace/smartspace/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSmartSpaceThreadToDomain(t *testing.T) {
	lastUpdatedBy := "user-2"
	thread := SmartSpaceThreadToDomain(smartspace.MessageThread{
		ID:                  "t1",
		Name:                "Quarterly numbers",
		WorkSpaceID:         "w1",
		CreatedAt:           "2024-05-01T10:00:00",
		LastUpdatedAt:       "",
		LastUpdatedByUserID: &lastUpdatedBy,
		TotalMessages:       4,
		Favorited:           true,
	})

	assert.Equal(t, "w1", thread.WorkspaceID)
	assert.True(t, thread.CreatedAt.Equal(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)))
	assert.True(t, thread.LastUpdatedAt.IsZero())
	assert.Equal(t, "user-2", thread.LastUpdatedByUserID)
	assert.Equal(t, 4, thread.TotalMessages)
	assert.True(t, thread.Favorited)
}

func TestSmartSpaceMessageToDomain(t *testing.T) {
	msg := SmartSpaceMessageToDomain(smartspace.Message{
		ID:              "m1",
		MessageThreadID: "t1",
		CreatedAt:       "2024-05-01T10:00:00Z",
		Values: []smartspace.MessageValue{
			{Name: "prompt", Type: "Input", Value: json.RawMessage(`"hi"`), Channels: map[string]int{"input": 1}},
			{Name: "answer", Type: "Output", Value: json.RawMessage(`"hello"`), Channels: map[string]int{"response": 1}},
		},
	})

	assert.Equal(t, "t1", msg.ThreadID)
	require.Len(t, msg.Values, 2)
	assert.Equal(t, "hello", msg.TextContent())
	assert.Equal(t, "hi", msg.Prompt())
}

func TestSmartSpaceNotificationToDomain(t *testing.T) {
	readAt := "2024-05-02T08:30:00Z"
	threadID := "t9"

	unread := SmartSpaceNotificationToDomain(smartspace.Notification{ID: "n1", NotificationType: "Mention", CreatedAt: "2024-05-01T10:00:00Z"})
	assert.False(t, unread.IsRead())
	assert.Empty(t, unread.ThreadID)

	read := SmartSpaceNotificationToDomain(smartspace.Notification{ID: "n2", ReadAt: &readAt, ThreadID: &threadID})
	assert.True(t, read.IsRead())
	assert.Equal(t, "t9", read.ThreadID)
}

func TestDomainSendMessageToSmartSpace(t *testing.T) {
	newThread := DomainSendMessageToSmartSpace(domain.SendMessageParams{WorkspaceID: "w1", Prompt: "hi"})
	assert.Nil(t, newThread.MessageThreadID)
	require.Len(t, newThread.Inputs, 1)
	assert.Equal(t, "prompt", newThread.Inputs[0].Name)
	assert.Equal(t, "hi", newThread.Inputs[0].Value)

	existing := DomainSendMessageToSmartSpace(domain.SendMessageParams{
		WorkspaceID: "w1",
		ThreadID:    "t1",
		Prompt:      "again",
		FileIDs:     []domain.FileReference{{ID: "f1", Name: "report.pdf"}},
	})
	require.NotNil(t, existing.MessageThreadID)
	assert.Equal(t, "t1", *existing.MessageThreadID)
	assert.Equal(t, []smartspace.FileReference{{ID: "f1", Name: "report.pdf"}}, existing.Files)
}

func TestMentions(t *testing.T) {
	assert.Nil(t, DomainMentionsToSmartSpace(nil))

	mentions := []domain.MentionedUser{{ID: "u1", DisplayName: "Ada"}}
	assert.Equal(t, mentions, SmartSpaceMentionsToDomain(DomainMentionsToSmartSpace(mentions)))
}
