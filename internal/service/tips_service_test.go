package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleanoyo/wasteup-api/internal/models"
	"github.com/cleanoyo/wasteup-api/internal/repository"
	"github.com/cleanoyo/wasteup-api/internal/textgen"
	appErrors "github.com/cleanoyo/wasteup-api/pkg/errors"
)

type countingGenerator struct {
	text  string
	calls int
}

func (g *countingGenerator) Generate(ctx context.Context, kind textgen.PromptKind, promptContext map[string]string) (string, error) {
	g.calls++
	return g.text, nil
}

func newTipsFixture(t *testing.T, gen textgen.Generator) *TipsService {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cacheRepo := repository.NewCacheRepository(client, nil)
	cacheSvc := NewCacheService(cacheRepo, nil, time.Minute, nil)
	return NewTipsService(gen, cacheSvc, time.Minute, nil)
}

func TestTipUsesLocalKnowledgeBaseOnGeneratorFailure(t *testing.T) {
	svc := newTipsFixture(t, textgen.Disabled{})

	tip, err := svc.Tip(context.Background(), models.WasteOrganic)
	require.NoError(t, err)
	assert.Equal(t, FallbackTip(models.WasteOrganic), tip)
	assert.Contains(t, tip, "compost")
}

func TestTipCachesGeneratedCopy(t *testing.T) {
	gen := &countingGenerator{text: "Rinse sachets before selling them to collectors."}
	svc := newTipsFixture(t, gen)

	first, err := svc.Tip(context.Background(), models.WasteRecyclable)
	require.NoError(t, err)
	assert.Equal(t, gen.text, first)

	second, err := svc.Tip(context.Background(), models.WasteRecyclable)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, gen.calls)
}

func TestTipRejectsUnknownWasteType(t *testing.T) {
	svc := newTipsFixture(t, textgen.Disabled{})

	_, err := svc.Tip(context.Background(), "Mystery")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestTipWorksWithoutCache(t *testing.T) {
	gen := &countingGenerator{text: "Cover your bin."}
	svc := NewTipsService(gen, nil, time.Minute, nil)

	tip, err := svc.Tip(context.Background(), models.WasteGeneral)
	require.NoError(t, err)
	assert.Equal(t, "Cover your bin.", tip)
}

func TestFallbackTipAlwaysNonEmpty(t *testing.T) {
	for _, wt := range []models.WasteType{models.WasteGeneral, models.WasteRecyclable, models.WasteOrganic, models.WasteHazardous, models.WasteConstruction} {
		assert.NotEmpty(t, FallbackTip(wt))
	}
	assert.NotEmpty(t, FallbackTip("Unknown"))
}
