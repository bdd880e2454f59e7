package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/smartspace/smartspace/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func replyMessage(id, text string) domain.Message {
	return domain.Message{
		ID:       id,
		ThreadID: "thread-1",
		Values: []domain.MessageValue{{
			Name:     "response",
			Type:     "string",
			Value:    json.RawMessage(fmt.Sprintf("%q", text)),
			Channels: map[string]int{domain.ChannelResponse: 1},
		}},
	}
}

func TestReplyWriter_PrintsGrowingText(t *testing.T) {
	var out bytes.Buffer
	w := newReplyWriter(&out, true)

	w.Handle(replyMessage("a", "Hel"))
	w.Handle(replyMessage("a", "Hello"))
	w.Handle(replyMessage("a", "Hello"))
	w.Handle(replyMessage("b", "World"))
	w.Finish()

	assert.Equal(t, "Hello\nWorld\n", out.String())
}

func TestReplyWriter_RewrittenText(t *testing.T) {
	var out bytes.Buffer
	w := newReplyWriter(&out, true)

	w.Handle(replyMessage("a", "abc"))
	w.Handle(replyMessage("a", "xyz"))
	w.Finish()

	assert.Equal(t, "abc\nxyz\n", out.String())
}

func TestReplyWriter_ReturnToEarlierMessage(t *testing.T) {
	var out bytes.Buffer
	w := newReplyWriter(&out, true)

	w.Handle(replyMessage("a", "1"))
	w.Handle(replyMessage("b", "2"))
	w.Handle(replyMessage("a", "1 more"))
	w.Finish()

	assert.Equal(t, "1\n2\n[updated]\n1 more\n", out.String())
}

func TestReplyWriter_SkipsPromptEcho(t *testing.T) {
	var out bytes.Buffer
	w := newReplyWriter(&out, true)

	w.Handle(domain.Message{
		ID: "prompt",
		Values: []domain.MessageValue{{
			Name:     domain.InputNamePrompt,
			Value:    json.RawMessage(`"question"`),
			Channels: map[string]int{domain.ChannelInput: 1},
		}},
	})
	w.Handle(replyMessage("a", "answer"))
	w.Finish()

	assert.Equal(t, "answer\n", out.String())
}

func TestReplyWriter_StructuredReport(t *testing.T) {
	var out bytes.Buffer
	w := newReplyWriter(&out, false)

	w.Handle(replyMessage("a", "one"))
	w.Handle(replyMessage("b", "two"))
	w.Handle(replyMessage("a", "one more"))
	w.Finish()

	assert.Empty(t, out.String())

	messages := w.Messages()
	require.Len(t, messages, 2)
	assert.Equal(t, "one more", messages[0].TextContent())
	assert.Equal(t, "two", messages[1].TextContent())

	require.NoError(t, w.Report(newPrinter(&out, outputJSON)))

	var decoded []domain.Message
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.Len(t, decoded, 2)
}

func TestMessageSummary(t *testing.T) {
	prompt := domain.Message{Values: []domain.MessageValue{{
		Name:  domain.InputNamePrompt,
		Value: json.RawMessage(`"What changed?"`),
	}}}
	assert.Equal(t, "> What changed?", messageSummary(prompt))
	assert.Equal(t, "reply", messageSummary(replyMessage("a", "reply")))
}
