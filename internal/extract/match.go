package extract

import (
	"context"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/rentfolio/billscan/internal/model"
)

// maxMatchConcurrency bounds concurrent pattern scoring in MatchAll.
const maxMatchConcurrency = 8

// Score computes the confidence of one pattern against one document:
// matched fields over total fields, a field matching when its label occurs
// anywhere in the text. Patterns without field patterns score zero.
func Score(text string, p model.ExtractionPattern) model.MatchResult {
	result := model.MatchResult{
		PatternID:   p.ID,
		PatternName: p.Name,
		TotalFields: len(p.FieldPatterns),
	}
	for _, fp := range p.FieldPatterns {
		if fp.LabelText != "" && strings.Contains(text, fp.LabelText) {
			result.MatchedFields++
		}
	}
	if result.TotalFields > 0 {
		result.Confidence = float64(result.MatchedFields) / float64(result.TotalFields)
	}
	return result
}

// MatchAll scores every candidate pattern against the document text and
// returns the results sorted by confidence descending. Ties break by input
// order (the store lists patterns oldest first), keeping ranking stable.
// Scoring runs concurrently; the engine itself stays pure so this is safe.
func MatchAll(ctx context.Context, text string, patterns []model.ExtractionPattern) ([]model.MatchResult, error) {
	results := make([]model.MatchResult, len(patterns))

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(maxMatchConcurrency)

	var mu sync.Mutex
	for i, p := range patterns {
		g.Go(func() error {
			r := Score(text, p)
			mu.Lock()
			results[i] = r
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	order := make(map[string]int, len(patterns))
	for i, p := range patterns {
		order[p.ID] = i
	}
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Confidence != results[j].Confidence {
			return results[i].Confidence > results[j].Confidence
		}
		return order[results[i].PatternID] < order[results[j].PatternID]
	})
	return results, nil
}
