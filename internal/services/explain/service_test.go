package explain

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/kengetal/internal/finance"
	"github.com/ternarybob/kengetal/internal/models"
)

// generatorFunc adapts a function to interfaces.TextGenerator
type generatorFunc func(ctx context.Context, prompt string) (string, error)

func (f generatorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

func ptr(v float64) *float64 { return &v }

func healthyAnalysis() models.RatioAnalysis {
	return finance.CalculateAllRatios(models.FinancialData{
		Omzet:               ptr(1_000_000),
		Nettowinst:          ptr(80_000),
		EigenVermogen:       ptr(1_000_000),
		VlottendeActiva:     ptr(300_000),
		KortlopendeSchulden: ptr(200_000),
		TotaalActiva:        ptr(2_500_000),
	})
}

// ratioNameFromPrompt finds which ratio a prompt is about
func ratioNameFromPrompt(prompt string) string {
	for _, name := range []string{finance.NameRentabiliteit, finance.NameLiquiditeit, finance.NameSolvabiliteit} {
		if strings.Contains(prompt, "Ratio: "+name) {
			return name
		}
	}
	return ""
}

func newService(gen generatorFunc, timeout time.Duration) *Service {
	return NewService(gen, timeout, 0, arbor.NewLogger())
}

func TestExplainRatios_Success(t *testing.T) {
	svc := newService(func(ctx context.Context, prompt string) (string, error) {
		return "  uitleg over " + ratioNameFromPrompt(prompt) + "\n", nil
	}, time.Second)

	got := svc.ExplainRatios(context.Background(), healthyAnalysis())

	require.Len(t, got, 3)
	assert.Equal(t, models.RatioExplanation{Ratio: finance.NameRentabiliteit, Waarde: "8%", Uitleg: "uitleg over " + finance.NameRentabiliteit}, got[0])
	assert.Equal(t, models.RatioExplanation{Ratio: finance.NameLiquiditeit, Waarde: "1.5", Uitleg: "uitleg over " + finance.NameLiquiditeit}, got[1])
	assert.Equal(t, models.RatioExplanation{Ratio: finance.NameSolvabiliteit, Waarde: "40%", Uitleg: "uitleg over " + finance.NameSolvabiliteit}, got[2])
}

func TestExplainRatios_AlwaysFailingGeneratorUsesFallbacks(t *testing.T) {
	svc := newService(func(ctx context.Context, prompt string) (string, error) {
		return "", errors.New("429 RESOURCE_EXHAUSTED")
	}, time.Second)

	got := svc.ExplainRatios(context.Background(), healthyAnalysis())

	require.Len(t, got, 3)
	for _, e := range got {
		assert.Equal(t, Fallback(e.Ratio), e.Uitleg)
		assert.NotEqual(t, GenericFallback, e.Uitleg)
	}
}

func TestExplainRatios_OrderIndependentOfCompletion(t *testing.T) {
	delays := map[string]time.Duration{
		finance.NameRentabiliteit: 60 * time.Millisecond,
		finance.NameLiquiditeit:   30 * time.Millisecond,
		finance.NameSolvabiliteit: 0,
	}
	svc := newService(func(ctx context.Context, prompt string) (string, error) {
		name := ratioNameFromPrompt(prompt)
		time.Sleep(delays[name])
		return name, nil
	}, time.Second)

	got := svc.ExplainRatios(context.Background(), healthyAnalysis())

	require.Len(t, got, 3)
	assert.Equal(t, finance.NameRentabiliteit, got[0].Uitleg)
	assert.Equal(t, finance.NameLiquiditeit, got[1].Uitleg)
	assert.Equal(t, finance.NameSolvabiliteit, got[2].Uitleg)
}

func TestExplainRatios_CallsRunConcurrently(t *testing.T) {
	var arrived sync.WaitGroup
	arrived.Add(3)
	svc := newService(func(ctx context.Context, prompt string) (string, error) {
		arrived.Done()
		arrived.Wait() // only returns once all three calls are in flight
		return "samen", nil
	}, 2*time.Second)

	got := svc.ExplainRatios(context.Background(), healthyAnalysis())

	for _, e := range got {
		assert.Equal(t, "samen", e.Uitleg)
	}
}

func TestExplainRatios_IsolatesFailures(t *testing.T) {
	svc := newService(func(ctx context.Context, prompt string) (string, error) {
		switch ratioNameFromPrompt(prompt) {
		case finance.NameLiquiditeit:
			return "", errors.New("boom")
		case finance.NameSolvabiliteit:
			return "   ", nil
		}
		return "echte uitleg", nil
	}, time.Second)

	got := svc.ExplainRatios(context.Background(), healthyAnalysis())

	assert.Equal(t, "echte uitleg", got[0].Uitleg)
	assert.Equal(t, Fallback(finance.NameLiquiditeit), got[1].Uitleg)
	assert.Equal(t, Fallback(finance.NameSolvabiliteit), got[2].Uitleg)
}

func TestExplainRatios_TimeoutUsesFallback(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	svc := newService(func(ctx context.Context, prompt string) (string, error) {
		<-release // ignores ctx on purpose
		return "te laat", nil
	}, 20*time.Millisecond)

	start := time.Now()
	got := svc.ExplainRatios(context.Background(), healthyAnalysis())

	assert.Less(t, time.Since(start), time.Second)
	for _, e := range got {
		assert.Equal(t, Fallback(e.Ratio), e.Uitleg)
	}
}

func TestExplainRatios_PanickingGeneratorUsesFallback(t *testing.T) {
	svc := newService(func(ctx context.Context, prompt string) (string, error) {
		panic("generator exploded")
	}, time.Second)

	got := svc.ExplainRatios(context.Background(), healthyAnalysis())

	for _, e := range got {
		assert.Equal(t, Fallback(e.Ratio), e.Uitleg)
	}
}

func TestExplainRatios_AbsentRatiosSkipTheGenerator(t *testing.T) {
	var calls int32
	svc := newService(func(ctx context.Context, prompt string) (string, error) {
		atomic.AddInt32(&calls, 1)
		return "uitleg", nil
	}, time.Second)

	analysis := finance.CalculateAllRatios(models.FinancialData{
		VlottendeActiva:     ptr(300_000),
		KortlopendeSchulden: ptr(200_000),
	})
	got := svc.ExplainRatios(context.Background(), analysis)

	require.Len(t, got, 3)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, InsufficientDataExplanation, got[0].Uitleg)
	assert.Equal(t, finance.NotAvailable, got[0].Waarde)
	assert.Equal(t, "uitleg", got[1].Uitleg)
	assert.Equal(t, InsufficientDataExplanation, got[2].Uitleg)
}

func TestFallback_UnknownName(t *testing.T) {
	assert.Equal(t, GenericFallback, Fallback("Quick Ratio"))
	assert.NotEqual(t, GenericFallback, Fallback(finance.NameLiquiditeit))
}

func TestBuildPrompt(t *testing.T) {
	analysis := healthyAnalysis()
	prompt := BuildPrompt(analysis.Rentabiliteit, "8%", 120)

	assert.Contains(t, prompt, "maximaal 120 woorden")
	assert.Contains(t, prompt, "Ratio: "+finance.NameRentabiliteit)
	assert.Contains(t, prompt, "Waarde: 8%")
	assert.Contains(t, prompt, "Formule: "+analysis.Rentabiliteit.Formula)
	assert.Contains(t, prompt, "tussen 5% en 15%, ideaal 8%")

	liq := BuildPrompt(analysis.Liquiditeit, "1.5", 120)
	assert.Contains(t, liq, "tussen 1 en 3, ideaal 1.5")
}
