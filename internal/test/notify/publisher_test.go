package notify_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"live-ai-photo-backend/internal/models"
	"live-ai-photo-backend/internal/notify"
)

func TestNewOrderCompletedEvent(t *testing.T) {
	order := &models.Order{
		ID:        uuid.New(),
		CompanyID: uuid.New(),
		UserID:    uuid.New(),
	}
	user := &models.User{
		ID:    order.UserID,
		Email: "client@example.com",
		Name:  "Client One",
	}

	event := notify.NewOrderCompletedEvent(order, user)

	assert.Equal(t, "order_completed", event.Event)
	assert.Equal(t, order.ID.String(), event.OrderID)
	assert.Equal(t, order.CompanyID.String(), event.CompanyID)
	assert.Equal(t, order.UserID.String(), event.UserID)
	assert.Equal(t, "client@example.com", event.RecipientEmail)
	assert.Equal(t, "Client One", event.RecipientName)
	assert.False(t, event.CompletedAt.IsZero())
}

func TestNewOrderCompletedEvent_UnresolvedUser(t *testing.T) {
	order := &models.Order{
		ID:        uuid.New(),
		CompanyID: uuid.New(),
		UserID:    uuid.New(),
	}

	event := notify.NewOrderCompletedEvent(order, nil)

	// The worker can still resolve the recipient from the user id.
	assert.Equal(t, order.UserID.String(), event.UserID)
	assert.Empty(t, event.RecipientEmail)
	assert.Empty(t, event.RecipientName)
}

func TestOrderCompleted_NilPublisherIsNoOp(t *testing.T) {
	var publisher *notify.Publisher

	assert.NotPanics(t, func() {
		publisher.OrderCompleted(context.Background(), &models.Order{ID: uuid.New()}, nil)
		publisher.Close()
	})
}
