// Package explain produces a short prose explanation per financial ratio,
// using an external text generator with fixed fallback texts.
package explain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/kengetal/internal/finance"
	"github.com/ternarybob/kengetal/internal/interfaces"
	"github.com/ternarybob/kengetal/internal/models"
)

const (
	DefaultCallTimeout = 20 * time.Second
	DefaultMaxWords    = 120
)

var errEmptyExplanation = errors.New("generator returned no text")

// Service requests ratio explanations concurrently
type Service struct {
	generator   interfaces.TextGenerator
	callTimeout time.Duration
	maxWords    int
	logger      arbor.ILogger
}

// NewService creates an explanation service. Non-positive callTimeout or
// maxWords fall back to the defaults.
func NewService(generator interfaces.TextGenerator, callTimeout time.Duration, maxWords int, logger arbor.ILogger) *Service {
	if callTimeout <= 0 {
		callTimeout = DefaultCallTimeout
	}
	if maxWords <= 0 {
		maxWords = DefaultMaxWords
	}
	return &Service{
		generator:   generator,
		callTimeout: callTimeout,
		maxWords:    maxWords,
		logger:      logger,
	}
}

// ExplainRatios returns one explanation per ratio in the order rentabiliteit,
// liquiditeit, solvabiliteit. Ratios with a value are explained concurrently,
// each under its own timeout; any failure yields that ratio's fallback text.
// Ratios without a value get InsufficientDataExplanation without a call.
// It never fails.
func (s *Service) ExplainRatios(ctx context.Context, analysis models.RatioAnalysis) []models.RatioExplanation {
	ratios := analysis.Ratios()
	explanations := make([]models.RatioExplanation, len(ratios))

	var wg sync.WaitGroup
	for i, ratio := range ratios {
		if ratio.Value == nil {
			explanations[i] = models.RatioExplanation{
				Ratio:  ratio.Name,
				Waarde: finance.FormatValue(ratio),
				Uitleg: InsufficientDataExplanation,
			}
			continue
		}

		wg.Add(1)
		go func(i int, ratio models.FinancialRatio) {
			defer wg.Done()
			explanations[i] = s.explain(ctx, ratio)
		}(i, ratio)
	}
	wg.Wait()

	return explanations
}

// explain produces the explanation for a single ratio that has a value
func (s *Service) explain(ctx context.Context, ratio models.FinancialRatio) models.RatioExplanation {
	waarde := finance.FormatValue(ratio)
	explanation := models.RatioExplanation{Ratio: ratio.Name, Waarde: waarde}

	start := time.Now()
	text, err := s.generate(ctx, BuildPrompt(ratio, waarde, s.maxWords))
	if err != nil {
		s.logger.Warn().
			Str("ratio", ratio.Name).
			Dur("duration", time.Since(start)).
			Err(err).
			Msg("Explanation generation failed, using fallback")
		explanation.Uitleg = Fallback(ratio.Name)
		return explanation
	}

	s.logger.Debug().
		Str("ratio", ratio.Name).
		Dur("duration", time.Since(start)).
		Int("length", len(text)).
		Msg("Explanation generated")
	explanation.Uitleg = text
	return explanation
}

type generation struct {
	text string
	err  error
}

// generate calls the generator under the per-call timeout. The deadline is
// enforced here as well, so a generator that ignores its context cannot
// block the join.
func (s *Service) generate(ctx context.Context, prompt string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	done := make(chan generation, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- generation{err: fmt.Errorf("generator panic: %v", r)}
			}
		}()
		text, err := s.generator.Generate(callCtx, prompt)
		done <- generation{text: text, err: err}
	}()

	select {
	case <-callCtx.Done():
		return "", callCtx.Err()
	case g := <-done:
		if g.err != nil {
			return "", g.err
		}
		text := strings.TrimSpace(g.text)
		if text == "" {
			return "", errEmptyExplanation
		}
		return text, nil
	}
}
