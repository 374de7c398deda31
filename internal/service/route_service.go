package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cleanoyo/wasteup-api/internal/models"
	"github.com/cleanoyo/wasteup-api/internal/textgen"
	appErrors "github.com/cleanoyo/wasteup-api/pkg/errors"
)

const routeFallbackJustification = "Standard sequential route. (AI optimization currently limited or unavailable)"

type openPickupLister interface {
	OpenByOperator(ctx context.Context, operatorID string) ([]models.PickupRequest, error)
}

// RouteService suggests a visiting order for an operator's open stops. A
// cosmetic aid: the fallback is simply the stops in stored order.
type RouteService struct {
	pickups openPickupLister
	gen     textgen.Generator
	logger  *zap.Logger
}

// NewRouteService constructs the service.
func NewRouteService(pickups openPickupLister, gen textgen.Generator, logger *zap.Logger) *RouteService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if gen == nil {
		gen = textgen.Disabled{}
	}
	return &RouteService{pickups: pickups, gen: gen, logger: logger}
}

// Advice returns the suggested order over the operator's not-yet-completed
// pickups.
func (s *RouteService) Advice(ctx context.Context, operatorID string) (*models.RouteAdvice, error) {
	open, err := s.pickups.OpenByOperator(ctx, operatorID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load open pickups")
	}

	stops := make([]models.RouteStop, len(open))
	addresses := make([]string, len(open))
	for i, req := range open {
		address := strings.TrimSpace(fmt.Sprintf("%s %s, %s", req.HouseNumber, req.StreetName, req.Zone))
		stops[i] = models.RouteStop{RequestID: req.ID, Address: address, Zone: req.Zone}
		addresses[i] = fmt.Sprintf("%d: %s", i, address)
	}

	advice := &models.RouteAdvice{
		OptimizedOrder: sequentialOrder(len(stops)),
		Justification:  routeFallbackJustification,
		Stops:          stops,
	}
	if len(stops) < 2 {
		return advice, nil
	}

	raw, err := s.gen.Generate(ctx, textgen.PromptRoutePlan, map[string]string{"stops": strings.Join(addresses, ", ")})
	if err != nil {
		return advice, nil
	}

	var parsed struct {
		OptimizedOrder []int  `json:"optimizedOrder"`
		Justification  string `json:"justification"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil || !validOrder(parsed.OptimizedOrder, len(stops)) {
		s.logger.Warn("unusable route plan from generator", zap.String("operator_id", operatorID))
		return advice, nil
	}

	advice.OptimizedOrder = parsed.OptimizedOrder
	if parsed.Justification != "" {
		advice.Justification = parsed.Justification
	}
	return advice, nil
}

func sequentialOrder(n int) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	return order
}

// validOrder checks the plan is a permutation of the stop indices.
func validOrder(order []int, n int) bool {
	if len(order) != n {
		return false
	}
	seen := make([]bool, n)
	for _, idx := range order {
		if idx < 0 || idx >= n || seen[idx] {
			return false
		}
		seen[idx] = true
	}
	return true
}
