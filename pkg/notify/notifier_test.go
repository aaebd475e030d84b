package notify_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/pathflow/pkg/domain"
	"github.com/aretw0/pathflow/pkg/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, events []domain.ChangeEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

func TestNotifier_FanOut(t *testing.T) {
	pub := new(MockPublisher)
	events := []domain.ChangeEvent{
		{ModelID: "I1", Kind: domain.ChangeModel},
		{ModelID: "root", Kind: domain.ChangeLayout},
	}
	pub.On("Publish", mock.Anything, events).Return(nil).Once()

	n := notify.New(notify.WithPublisher(pub))

	var order []string
	n.Subscribe(func(ctx context.Context, ev domain.ChangeEvent) {
		order = append(order, "first:"+ev.ModelID)
	})
	n.Subscribe(func(ctx context.Context, ev domain.ChangeEvent) {
		order = append(order, "second:"+ev.ModelID)
	})

	n.Notify(context.Background(), events)

	assert.Equal(t, []string{"first:I1", "second:I1", "first:root", "second:root"}, order)
	pub.AssertExpectations(t)
}

func TestNotifier_Unsubscribe(t *testing.T) {
	n := notify.New()
	count := 0
	unsubscribe := n.Subscribe(func(ctx context.Context, ev domain.ChangeEvent) {
		count++
	})

	n.Notify(context.Background(), []domain.ChangeEvent{{ModelID: "m"}})
	unsubscribe()
	n.Notify(context.Background(), []domain.ChangeEvent{{ModelID: "m"}})

	assert.Equal(t, 1, count)
}

func TestNotifier_PublisherErrorDoesNotStopListeners(t *testing.T) {
	pub := new(MockPublisher)
	pub.On("Publish", mock.Anything, mock.Anything).Return(errors.New("redis down"))

	n := notify.New(notify.WithPublisher(pub))
	heard := false
	n.Subscribe(func(ctx context.Context, ev domain.ChangeEvent) {
		heard = true
	})

	assert.NotPanics(t, func() {
		n.Notify(context.Background(), []domain.ChangeEvent{{ModelID: "m"}})
	})
	assert.True(t, heard)
}
