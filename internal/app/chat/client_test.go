package chat

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dmchat/internal/app/message"
	"dmchat/internal/configs"
	"dmchat/internal/pkg/errs"
)

func inboundFrame(t *testing.T, payload InboundMessagePayload) []byte {
	t.Helper()

	frame, err := json.Marshal(struct {
		Type    EventType             `json:"type"`
		Payload InboundMessagePayload `json:"payload"`
	}{Type: TypeMessage, Payload: payload})
	require.NoError(t, err)
	return frame
}

func readErrorPayload(t *testing.T, c *Client) ErrorPayload {
	t.Helper()

	event := readEvent(t, c)
	require.Equal(t, TypeError, event.Type)

	payloadBytes, err := json.Marshal(event.Payload)
	require.NoError(t, err)

	var errorPayload ErrorPayload
	require.NoError(t, json.Unmarshal(payloadBytes, &errorPayload))
	return errorPayload
}

func TestClient_InboundMessageRelayed(t *testing.T) {
	g := NewGateway(configs.RelayTargeted)
	defer g.Shutdown()

	alice := admit(t, g, testSummary("u1", "alice"))
	bob := admit(t, g, testSummary("u2", "bob"))
	readEvent(t, alice) // bob's USER_ONLINE

	alice.processInboundFrame(inboundFrame(t, InboundMessagePayload{
		Receiver: "u2",
		Content:  "hi bob",
	}))

	event := readEvent(t, bob)
	require.Equal(t, TypeMessage, event.Type)

	payloadBytes, err := json.Marshal(event.Payload)
	require.NoError(t, err)

	var view message.View
	require.NoError(t, json.Unmarshal(payloadBytes, &view))
	assert.Equal(t, "u1", view.Sender.ID)
	assert.Equal(t, "alice", view.Sender.Username)
	assert.Equal(t, "hi bob", view.Content)
	assert.False(t, view.CreatedAt.IsZero())
}

func TestClient_InboundMessageMissingReceiver(t *testing.T) {
	g := NewGateway(configs.RelayTargeted)
	defer g.Shutdown()

	alice := admit(t, g, testSummary("u1", "alice"))

	alice.processInboundFrame(inboundFrame(t, InboundMessagePayload{Content: "hi"}))

	errorPayload := readErrorPayload(t, alice)
	assert.Equal(t, errs.ErrInvalidParams, errorPayload.Code)
}

func TestClient_InboundMessageEmpty(t *testing.T) {
	g := NewGateway(configs.RelayTargeted)
	defer g.Shutdown()

	alice := admit(t, g, testSummary("u1", "alice"))

	alice.processInboundFrame(inboundFrame(t, InboundMessagePayload{Receiver: "u2"}))

	errorPayload := readErrorPayload(t, alice)
	assert.Equal(t, errs.ErrMessageEmpty, errorPayload.Code)
}

func TestClient_InboundMessageFileOnlyAllowed(t *testing.T) {
	g := NewGateway(configs.RelayTargeted)
	defer g.Shutdown()

	alice := admit(t, g, testSummary("u1", "alice"))
	bob := admit(t, g, testSummary("u2", "bob"))
	readEvent(t, alice)

	alice.processInboundFrame(inboundFrame(t, InboundMessagePayload{
		Receiver: "u2",
		File:     &message.Attachment{Name: "doc.pdf", URL: "attachments/abc.pdf"},
	}))

	event := readEvent(t, bob)
	assert.Equal(t, TypeMessage, event.Type)
}

func TestClient_InboundMessageTooLong(t *testing.T) {
	g := NewGateway(configs.RelayTargeted)
	defer g.Shutdown()

	alice := admit(t, g, testSummary("u1", "alice"))

	alice.processInboundFrame(inboundFrame(t, InboundMessagePayload{
		Receiver: "u2",
		Content:  strings.Repeat("a", MaxContentBytes+1),
	}))

	errorPayload := readErrorPayload(t, alice)
	assert.Equal(t, errs.ErrMessageContentTooLong, errorPayload.Code)
}

func TestClient_InvalidJSONFrameIgnored(t *testing.T) {
	g := NewGateway(configs.RelayTargeted)
	defer g.Shutdown()

	alice := admit(t, g, testSummary("u1", "alice"))

	alice.processInboundFrame([]byte("{not json"))
	alice.processInboundFrame([]byte(`{"type":"UNSUPPORTED"}`))

	assertNoEvent(t, alice)
}
