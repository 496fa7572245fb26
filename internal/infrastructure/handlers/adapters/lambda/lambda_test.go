package lambda

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pwrtux/moodle-magnet/internal/config"
	"github.com/pwrtux/moodle-magnet/internal/handler"
	"github.com/pwrtux/moodle-magnet/internal/handler/mocks"
	"github.com/pwrtux/moodle-magnet/internal/infrastructure/observability/adapters/stdout"
)

func newMockHandler() *mocks.MockHandler {
	return mocks.NewMockHandler(stdout.NewLogger(), stdout.NewMetrics())
}

func newTestAdapter(mockHandler *mocks.MockHandler) *Adapter {
	cfg := config.DefaultLambdaConfig()
	return NewAdapter(mockHandler, &cfg)
}

func sqsMessage(id, body string) events.SQSMessage {
	return events.SQSMessage{
		MessageId:     id,
		ReceiptHandle: "receipt-" + id,
		Body:          body,
	}
}

func requestWithID(id string) interface{} {
	return mock.MatchedBy(func(req handler.Request) bool {
		return req.ID == id
	})
}

func TestHandleSQSEventSuccess(t *testing.T) {
	mockHandler := newMockHandler()
	mockHandler.On("Handle", mock.Anything, mock.MatchedBy(func(req handler.Request) bool {
		return req.ID == "msg-1" && req.Source == "sqs" &&
			req.Metadata["sqs_message_id"] == "msg-1"
	})).Return(handler.Response{Success: true}, nil)

	adapter := newTestAdapter(mockHandler)

	response, err := adapter.handleSQSEvent(context.Background(), events.SQSEvent{
		Records: []events.SQSMessage{sqsMessage("msg-1", `{"course_id": 42}`)},
	})

	assert.NoError(t, err)
	assert.Empty(t, response.BatchItemFailures)
	mockHandler.AssertExpectations(t)
}

func TestHandleSQSEventPartialBatchFailure(t *testing.T) {
	mockHandler := newMockHandler()
	mockHandler.On("Handle", mock.Anything, requestWithID("msg-1")).
		Return(handler.Response{Success: true}, nil)
	mockHandler.On("Handle", mock.Anything, requestWithID("msg-2")).
		Return(handler.Response{}, errors.New("handler blew up"))
	mockHandler.On("Handle", mock.Anything, requestWithID("msg-3")).
		Return(handler.NewErrorResponse("SYNC_FAILED", "timeout", true), nil)

	adapter := newTestAdapter(mockHandler)

	response, err := adapter.handleSQSEvent(context.Background(), events.SQSEvent{
		Records: []events.SQSMessage{
			sqsMessage("msg-1", `{}`),
			sqsMessage("msg-2", `{}`),
			sqsMessage("msg-3", `{}`),
		},
	})

	// Failed records are reported individually; the batch itself succeeds
	assert.NoError(t, err)
	require.Len(t, response.BatchItemFailures, 2)
	assert.Equal(t, "msg-2", response.BatchItemFailures[0].ItemIdentifier)
	assert.Equal(t, "msg-3", response.BatchItemFailures[1].ItemIdentifier)
}

func TestHandleSQSEventFailsFastWithoutPartialBatch(t *testing.T) {
	mockHandler := newMockHandler()
	mockHandler.On("Handle", mock.Anything, requestWithID("msg-1")).
		Return(handler.Response{}, errors.New("handler blew up"))

	cfg := config.DefaultLambdaConfig()
	cfg.EnablePartialBatchFailure = false
	adapter := NewAdapter(mockHandler, &cfg)

	_, err := adapter.handleSQSEvent(context.Background(), events.SQSEvent{
		Records: []events.SQSMessage{
			sqsMessage("msg-1", `{}`),
			sqsMessage("msg-2", `{}`),
		},
	})

	assert.Error(t, err)
	// The second record is never attempted
	mockHandler.AssertNumberOfCalls(t, "Handle", 1)
}

func TestHandleEventDirectRequest(t *testing.T) {
	mockHandler := newMockHandler()
	mockHandler.On("Handle", mock.Anything, mock.MatchedBy(func(req handler.Request) bool {
		return req.ID == "req-1" && req.Type == "sync_courses"
	})).Return(handler.Response{Success: true}, nil)

	adapter := newTestAdapter(mockHandler)

	event := json.RawMessage(`{"id": "req-1", "type": "sync_courses", "payload": {"course_id": 7}}`)
	result, err := adapter.handleEvent(context.Background(), event)

	assert.NoError(t, err)
	resp, ok := result.(handler.Response)
	require.True(t, ok)
	assert.True(t, resp.Success)
	mockHandler.AssertExpectations(t)
}

func TestHandleEventUnsupported(t *testing.T) {
	adapter := newTestAdapter(newMockHandler())

	_, err := adapter.handleEvent(context.Background(), json.RawMessage(`{"something": "else"}`))

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported event type")
}

func TestSQSMessageToRequest(t *testing.T) {
	adapter := newTestAdapter(newMockHandler())

	requestType := "sync_courses"
	record := events.SQSMessage{
		MessageId:     "msg-9",
		ReceiptHandle: "receipt-9",
		Body:          `{"course_id": 5}`,
		MessageAttributes: map[string]events.SQSMessageAttribute{
			"type": {StringValue: &requestType},
		},
	}

	req := adapter.sqsMessageToRequest(record)

	assert.Equal(t, "msg-9", req.ID)
	assert.Equal(t, "sqs", req.Source)
	assert.Equal(t, "sync_courses", req.Type)
	assert.Equal(t, "msg-9", req.Metadata["sqs_message_id"])
	assert.Equal(t, "receipt-9", req.Metadata["sqs_receipt_handle"])
	assert.JSONEq(t, `{"course_id": 5}`, string(req.Payload))
}

func TestSQSMessageToRequestNonJSONBody(t *testing.T) {
	adapter := newTestAdapter(newMockHandler())

	req := adapter.sqsMessageToRequest(sqsMessage("msg-10", "not json at all"))

	// A plain-text body is wrapped as a JSON string so Unmarshal still works
	var body string
	require.NoError(t, json.Unmarshal(req.Payload, &body))
	assert.Equal(t, "not json at all", body)
}
