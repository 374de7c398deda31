package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cleanoyo/wasteup-api/internal/models"
	"github.com/cleanoyo/wasteup-api/internal/textgen"
	appErrors "github.com/cleanoyo/wasteup-api/pkg/errors"
)

// localTips is the curated Ibadan knowledge base used whenever the text
// generator is rate-limited or offline.
var localTips = map[models.WasteType][]string{
	models.WasteGeneral: {
		"Ensure your bin is tightly covered to prevent scavengers from scattering waste into gutters.",
		"Bag your household waste properly before placing it in the PSP container to speed up collection.",
		"Avoid keeping waste bins near electrical poles or transformers for safety during rainstorms.",
	},
	models.WasteRecyclable: {
		"Separate 'Pure Water' sachets and PET bottles; many local collectors in areas like Dugbe and Challenge buy these.",
		"Flatten cardboard boxes to save space in your recycling bin and prevent them from blowing into drains.",
		"Clean plastic containers before disposal to prevent odors and pests in your storage area.",
	},
	models.WasteOrganic: {
		"Yam and plantain peels make excellent compost for backyard gardens in Ibadan, so keep them out of the drains.",
		"Keep food waste in a separate, sealed container to reduce the weight and smell of your main trash bin.",
		"Consider community composting if you live in residential estates like Bodija or Akobo.",
	},
	models.WasteHazardous: {
		"Never pour old engine oil or chemicals into the gutter; it poisons the soil and the local water table.",
		"Keep expired medicines and batteries separate from regular trash; call OYWMA for specialized disposal advice.",
		"Wrap broken glass in old newspapers or cardboard before disposal to protect our PSP workers' hands.",
	},
	models.WasteConstruction: {
		"Construction debris should never be left on the roadside, as heavy rain washes it into drainage culverts.",
		"Hire specialized PSP trucks for bulky waste like old furniture or roofing sheets instead of dumping them in the bush.",
		"Reuse broken bricks for filling potholes in your street instead of disposing of them as waste.",
	},
}

// TipsService serves per-waste-type management tips. Generated copy is
// cached to reduce pressure on the collaborator's quota.
type TipsService struct {
	gen      textgen.Generator
	cache    *CacheService
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewTipsService constructs the service.
func NewTipsService(gen textgen.Generator, cache *CacheService, cacheTTL time.Duration, logger *zap.Logger) *TipsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if gen == nil {
		gen = textgen.Disabled{}
	}
	if cacheTTL <= 0 {
		cacheTTL = time.Hour
	}
	return &TipsService{gen: gen, cache: cache, cacheTTL: cacheTTL, logger: logger}
}

// Tip returns a management tip for the waste type. Never empty: the local
// knowledge base backs every generator failure.
func (s *TipsService) Tip(ctx context.Context, wasteType models.WasteType) (string, error) {
	if !wasteType.Valid() {
		return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown waste type %q", wasteType))
	}

	cacheKey := fmt.Sprintf("tips:%s", wasteType)
	var cached string
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit && cached != "" {
		return cached, nil
	}

	tip, err := s.gen.Generate(ctx, textgen.PromptWasteTip, map[string]string{"waste_type": string(wasteType)})
	if err != nil || tip == "" {
		return FallbackTip(wasteType), nil
	}

	if err := s.cache.Set(ctx, cacheKey, tip, s.cacheTTL); err != nil {
		s.logger.Warn("failed to cache tip", zap.String("waste_type", string(wasteType)), zap.Error(err))
	}
	return tip, nil
}

// FallbackTip returns the first curated tip for the waste type.
func FallbackTip(wasteType models.WasteType) string {
	if tips, ok := localTips[wasteType]; ok && len(tips) > 0 {
		return tips[0]
	}
	return "Keep Ibadan clean by disposing of waste only in designated PSP containers to prevent flash floods."
}
