package service

import (
	"context"
	"strings"
	"time"

	"github.com/cleanoyo/wasteup-api/internal/models"
	appErrors "github.com/cleanoyo/wasteup-api/pkg/errors"
	"github.com/cleanoyo/wasteup-api/pkg/export"
)

type pickupLister interface {
	List(ctx context.Context, filter models.PickupFilter) ([]models.PickupRequest, int, error)
}

// ExportService renders pickup history for the admin views.
type ExportService struct {
	pickups pickupLister
	csv     *export.CSVExporter
	pdf     *export.PDFExporter
}

// NewExportService constructs the service.
func NewExportService(pickups pickupLister) *ExportService {
	return &ExportService{
		pickups: pickups,
		csv:     export.NewCSVExporter(),
		pdf:     export.NewPDFExporter(),
	}
}

// PickupHistory renders the filtered pickup list in the requested format.
// Supported formats: "csv", "pdf".
func (s *ExportService) PickupHistory(ctx context.Context, filter models.PickupFilter, format string) ([]byte, string, error) {
	filter.Page = 1
	filter.PageSize = 100

	requests, _, err := s.pickups.List(ctx, filter)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load pickup history")
	}

	dataset := export.Dataset{
		Headers: []string{"ID", "Resident", "Operator", "Zone", "Waste Type", "Priority", "Status", "Scheduled", "Updated"},
	}
	for _, req := range requests {
		operator := ""
		if req.OperatorName != nil {
			operator = *req.OperatorName
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"ID":         req.ID,
			"Resident":   req.ResidentName,
			"Operator":   operator,
			"Zone":       req.Zone,
			"Waste Type": string(req.WasteType),
			"Priority":   string(req.Priority),
			"Status":     string(req.Status),
			"Scheduled":  req.ScheduledDate,
			"Updated":    req.UpdatedAt.Format(time.RFC3339),
		})
	}

	switch strings.ToLower(format) {
	case "pdf":
		payload, err := s.pdf.Render(dataset, "Pickup History")
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return payload, "application/pdf", nil
	case "", "csv":
		payload, err := s.csv.Render(dataset)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return payload, "text/csv", nil
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, "unsupported export format, use csv or pdf")
	}
}
