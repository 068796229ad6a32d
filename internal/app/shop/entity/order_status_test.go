package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatus_Next(t *testing.T) {
	assert.Equal(t, OrderStatusShipped, OrderStatusProcessing.Next())
	assert.Equal(t, OrderStatusDelivered, OrderStatusShipped.Next())
}

func TestOrderStatus_Next_DeliveredIsTerminal(t *testing.T) {
	// Повторная обработка доставленного заказа не меняет статус
	assert.Equal(t, OrderStatusDelivered, OrderStatusDelivered.Next())
	assert.Equal(t, OrderStatusDelivered, OrderStatusDelivered.Next().Next())
}

func TestOrderStatus_Next_UnknownStatus(t *testing.T) {
	// Неизвестный статус схлопывается в терминальный
	assert.Equal(t, OrderStatusDelivered, OrderStatus("Cancelled").Next())
}

func TestOrderStatus_ProcessingReachesDeliveredInTwoSteps(t *testing.T) {
	status := OrderStatusProcessing

	status = status.Next()
	status = status.Next()

	assert.Equal(t, OrderStatusDelivered, status)
}
