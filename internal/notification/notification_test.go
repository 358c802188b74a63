package notification

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/iliyamo/cinema-booking/internal/model"
)

type mockNotifier struct{ mock.Mock }

func (m *mockNotifier) Notify(ctx context.Context, events ...model.Event) {
	m.Called(ctx, events)
}

func TestMulti_FansOutInOrder(t *testing.T) {
	ctx := context.Background()
	ev := model.MovieCreated{MovieID: "m1", Name: "Test", At: time.Now()}

	first, second := new(mockNotifier), new(mockNotifier)
	first.On("Notify", ctx, []model.Event{ev}).Once()
	second.On("Notify", ctx, []model.Event{ev}).Once()

	Multi{first, nil, second}.Notify(ctx, ev)

	first.AssertExpectations(t)
	second.AssertExpectations(t)
}

func TestLogNotifier_LogsEachEvent(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	n := NewLogNotifier(zap.New(core))

	n.Notify(context.Background(),
		model.TicketCreated{TicketID: "t1", At: time.Now()},
		model.TicketUsed{TicketID: "t1", At: time.Now()},
	)

	entries := logs.All()
	if assert.Len(t, entries, 2) {
		assert.Equal(t, model.EventTicketCreated, entries[0].ContextMap()["event"])
		assert.Equal(t, model.EventTicketUsed, entries[1].ContextMap()["event"])
	}
}

func TestRecorder(t *testing.T) {
	var r Recorder
	r.Notify(context.Background(), model.LoginFailed{Username: "x"})
	assert.Equal(t, []string{model.EventLoginFailed}, r.Names())
	assert.Len(t, r.Events(), 1)
}
