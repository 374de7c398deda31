package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleanoyo/wasteup-api/internal/models"
	appErrors "github.com/cleanoyo/wasteup-api/pkg/errors"
)

type mockPickupLister struct {
	requests []models.PickupRequest
}

func (m *mockPickupLister) List(ctx context.Context, filter models.PickupFilter) ([]models.PickupRequest, int, error) {
	return m.requests, len(m.requests), nil
}

func exportFixture() *ExportService {
	operatorName := "CleanOyo Services"
	return NewExportService(&mockPickupLister{requests: []models.PickupRequest{
		{
			ID: "p1", ResidentName: "Ayo Balogun", OperatorName: &operatorName,
			Zone: "Bodija", WasteType: models.WasteGeneral, Priority: models.PriorityMedium,
			Status: models.StatusCompleted, ScheduledDate: "2026-09-01", UpdatedAt: time.Now(),
		},
		{
			ID: "p2", ResidentName: "Funke Ade", Zone: "Dugbe",
			WasteType: models.WasteHazardous, Priority: models.PriorityHigh,
			Status: models.StatusPending, ScheduledDate: "2026-09-02", UpdatedAt: time.Now(),
		},
	}})
}

func TestPickupHistoryCSV(t *testing.T) {
	svc := exportFixture()

	payload, contentType, err := svc.PickupHistory(context.Background(), models.PickupFilter{}, "csv")
	require.NoError(t, err)

	assert.Equal(t, "text/csv", contentType)
	body := string(payload)
	assert.True(t, strings.HasPrefix(body, "ID,Resident,Operator,Zone,Waste Type,Priority,Status,Scheduled,Updated"))
	assert.Contains(t, body, "Ayo Balogun")
	assert.Contains(t, body, "CleanOyo Services")
	// Unassigned requests render an empty operator column.
	assert.Contains(t, body, "p2,Funke Ade,,Dugbe")
}

func TestPickupHistoryPDF(t *testing.T) {
	svc := exportFixture()

	payload, contentType, err := svc.PickupHistory(context.Background(), models.PickupFilter{}, "pdf")
	require.NoError(t, err)

	assert.Equal(t, "application/pdf", contentType)
	assert.True(t, strings.HasPrefix(string(payload), "%PDF"))
}

func TestPickupHistoryDefaultsToCSV(t *testing.T) {
	svc := exportFixture()

	_, contentType, err := svc.PickupHistory(context.Background(), models.PickupFilter{}, "")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", contentType)
}

func TestPickupHistoryUnknownFormat(t *testing.T) {
	svc := exportFixture()

	_, _, err := svc.PickupHistory(context.Background(), models.PickupFilter{}, "xlsx")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
