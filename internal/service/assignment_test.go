package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleanoyo/wasteup-api/internal/models"
)

func operator(id, name, zone string, available *bool) models.User {
	return models.User{ID: id, Name: name, Zone: zone, Role: models.RolePSPOperator, Availability: available}
}

func TestResolveOperatorZoneMatch(t *testing.T) {
	pool := []models.User{
		operator("o1", "CleanOyo Services", "Bodija", nil),
		operator("o2", "Dugbe Disposal", "Dugbe", nil),
	}

	got := ResolveOperator("Bodija", "", pool)
	require.NotNil(t, got)
	assert.Equal(t, "o1", got.ID)
}

func TestResolveOperatorPreferredWins(t *testing.T) {
	pool := []models.User{
		operator("o1", "CleanOyo Services", "Bodija", nil),
		operator("o2", "Dugbe Disposal", "Dugbe", nil),
	}

	// Preferred beats zone matching even when it serves another zone.
	got := ResolveOperator("Bodija", "o2", pool)
	require.NotNil(t, got)
	assert.Equal(t, "o2", got.ID)
}

func TestResolveOperatorPreferredNotInPool(t *testing.T) {
	pool := []models.User{
		operator("o1", "CleanOyo Services", "Bodija", nil),
	}

	got := ResolveOperator("Bodija", "ghost", pool)
	require.NotNil(t, got)
	assert.Equal(t, "o1", got.ID)
}

func TestResolveOperatorSkipsUnavailable(t *testing.T) {
	unavailable := false
	available := true
	pool := []models.User{
		operator("o1", "CleanOyo Services", "Bodija", &unavailable),
		operator("o2", "Bodija Backup", "Bodija", &available),
	}

	got := ResolveOperator("Bodija", "", pool)
	require.NotNil(t, got)
	assert.Equal(t, "o2", got.ID)
}

func TestResolveOperatorFirstMatchTieBreak(t *testing.T) {
	pool := []models.User{
		operator("o1", "CleanOyo Services", "Bodija", nil),
		operator("o2", "Bodija Backup", "Bodija", nil),
	}

	got := ResolveOperator("Bodija", "", pool)
	require.NotNil(t, got)
	assert.Equal(t, "o1", got.ID)
}

func TestResolveOperatorNoMatch(t *testing.T) {
	unavailable := false
	pool := []models.User{
		operator("o1", "CleanOyo Services", "Bodija", &unavailable),
		operator("o2", "Dugbe Disposal", "Dugbe", nil),
	}

	assert.Nil(t, ResolveOperator("Bodija", "", pool))
	assert.Nil(t, ResolveOperator("Challenge", "", pool))
	assert.Nil(t, ResolveOperator("Bodija", "", nil))
}

func TestResolveOperatorIgnoresNonOperators(t *testing.T) {
	pool := []models.User{
		{ID: "u1", Name: "Ayo Balogun", Zone: "Bodija", Role: models.RoleResident},
		operator("o1", "CleanOyo Services", "Bodija", nil),
	}

	got := ResolveOperator("Bodija", "u1", pool)
	require.NotNil(t, got)
	assert.Equal(t, "o1", got.ID)
}
