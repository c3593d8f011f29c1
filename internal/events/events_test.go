package events_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/packline/jobdesk-api/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type failingPublisher struct{}

func (failingPublisher) Publish(context.Context, events.Event) error { return errors.New("redis down") }
func (failingPublisher) Close() error                                { return nil }

func TestNewEvent(t *testing.T) {
	ev, err := events.NewEvent(events.TypeAssignment, events.AssignmentEvent{
		Transition:   "production_complete",
		AssignJobIDs: []int64{3},
		JobIDs:       []int64{10, 11},
	})
	require.NoError(t, err)
	assert.Equal(t, events.TypeAssignment, ev.Type)
	assert.NotZero(t, ev.Timestamp)

	var payload events.AssignmentEvent
	require.NoError(t, json.Unmarshal(ev.Data, &payload))
	assert.Equal(t, []int64{10, 11}, payload.JobIDs)
}

func TestEmit_RecordsEvents(t *testing.T) {
	rec := &events.Recorder{}
	events.Emit(context.Background(), rec, zap.NewNop(), events.TypeFinancialSync, events.SyncEvent{Source: "invoice", SourceID: 1})

	got := rec.Events()
	require.Len(t, got, 1)
	assert.Equal(t, events.TypeFinancialSync, got[0].Type)
}

func TestEmit_LogsPublishFailure(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	events.Emit(context.Background(), failingPublisher{}, zap.New(core), events.TypeAssignment, struct{}{})

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "failed to publish event", logs.All()[0].Message)
}

func TestNopPublisher(t *testing.T) {
	var p events.Publisher = events.NopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), events.Event{}))
	assert.NoError(t, p.Close())
}
