package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLifecycleTransitions(t *testing.T) {
	legal := []struct {
		from, to PickupStatus
	}{
		{StatusPending, StatusScheduled},
		{StatusPending, StatusCancelled},
		{StatusScheduled, StatusOnTheWay},
		{StatusScheduled, StatusCancelled},
		{StatusOnTheWay, StatusCompleted},
	}
	for _, tc := range legal {
		assert.True(t, tc.from.CanTransitionTo(tc.to), "%s -> %s should be legal", tc.from, tc.to)
	}

	illegal := []struct {
		from, to PickupStatus
	}{
		{StatusPending, StatusOnTheWay},
		{StatusPending, StatusCompleted},
		{StatusScheduled, StatusCompleted},
		{StatusOnTheWay, StatusCancelled},
		{StatusCompleted, StatusScheduled},
		{StatusCompleted, StatusPending},
		{StatusCancelled, StatusPending},
		{StatusCancelled, StatusScheduled},
	}
	for _, tc := range illegal {
		assert.False(t, tc.from.CanTransitionTo(tc.to), "%s -> %s should be illegal", tc.from, tc.to)
	}
}

func TestSelfTransitionIsNotAnEdge(t *testing.T) {
	for _, s := range []PickupStatus{StatusPending, StatusScheduled, StatusOnTheWay, StatusCompleted, StatusCancelled} {
		assert.False(t, s.CanTransitionTo(s))
	}
}

func TestTerminalStates(t *testing.T) {
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusCancelled.Terminal())
	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusScheduled.Terminal())
	assert.False(t, StatusOnTheWay.Terminal())
}

func TestStatusValid(t *testing.T) {
	assert.True(t, StatusPending.Valid())
	assert.False(t, PickupStatus("ARCHIVED").Valid())
}

func TestWasteTypeAndPriorityValid(t *testing.T) {
	assert.True(t, WasteGeneral.Valid())
	assert.True(t, WasteHazardous.Valid())
	assert.False(t, WasteType("Nuclear").Valid())

	assert.True(t, PriorityHigh.Valid())
	assert.False(t, Priority("Urgent").Valid())
}

func TestAvailableDefaultsToTrue(t *testing.T) {
	operator := User{Role: RolePSPOperator}
	assert.True(t, operator.Available())

	unavailable := false
	operator.Availability = &unavailable
	assert.False(t, operator.Available())
}
