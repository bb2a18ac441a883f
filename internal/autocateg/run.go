package autocateg

import (
	"context"
	"sort"
	"strings"

	"github.com/Syfer2025/Catlogodepeas-sub005/internal/catalog"
)

// ChunkSize is how many products get scored between cancellation
// checkpoints and progress callbacks.
const ChunkSize = 100

// HighConfidence is the score from which a suggestion counts as safe to
// apply without manual review.
const HighConfidence = 80

// ProgressFunc is called after every chunk with running totals.
type ProgressFunc func(processed, total, matched int)

// Engine scores products against one flattened category tree. Build one
// per analysis run; it is not mutated afterwards.
type Engine struct {
	cats []FlatCategory
}

func NewEngine(tree []catalog.CategoryNode) *Engine {
	return &Engine{cats: Flatten(tree)}
}

// Categories returns the flattened tree in scan order.
func (e *Engine) Categories() []FlatCategory {
	return e.cats
}

// ProductText builds the normalized haystack for one product: the title
// followed by its attribute values. Attribute keys are form labels rather
// than product vocabulary and stay out. Keys are visited in sorted order so
// the same product always yields the same text.
func ProductText(p catalog.Product, attrs map[string]catalog.AttributeValue) string {
	parts := []string{p.Titulo}

	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		parts = append(parts, attrs[k].Values()...)
	}

	return Normalize(strings.Join(parts, " "))
}

// AnalyzeProduct scores one product against every category and returns its
// result row. Products nothing matches come back with zero confidence and
// no suggestion.
func (e *Engine) AnalyzeProduct(p catalog.Product, attrs map[string]catalog.AttributeValue, currentCategory string) MatchResult {
	text := ProductText(p, attrs)
	words := strings.Fields(text)

	result := MatchResult{
		SKU:             p.SKU,
		Titulo:          p.Titulo,
		CurrentCategory: currentCategory,
	}

	best, score, matched := BestMatch(text, words, e.cats)
	if best != nil && score > 0 {
		result.SuggestedSlug = best.Slug
		result.SuggestedPath = best.FullPath
		result.Confidence = score
		result.MatchedKeywords = matched
		result.AlreadyCorrect = currentCategory == best.Slug
	}

	return result
}

// Run scores every product in the dataset in chunks of ChunkSize, checking
// for cancellation per product and at chunk boundaries. On cancellation the
// results scored so far are returned together with ctx.Err(); nothing is
// rolled back. progress may be nil.
func (e *Engine) Run(ctx context.Context, ds *Dataset, progress ProgressFunc) ([]MatchResult, error) {
	results := make([]MatchResult, 0, len(ds.Products))
	matched := 0

	for start := 0; start < len(ds.Products); start += ChunkSize {
		end := start + ChunkSize
		if end > len(ds.Products) {
			end = len(ds.Products)
		}

		for _, p := range ds.Products[start:end] {
			if err := ctx.Err(); err != nil {
				return results, err
			}
			r := e.AnalyzeProduct(p, ds.Attributes[p.SKU], ds.Current[p.SKU])
			if r.SuggestedSlug != "" {
				matched++
			}
			results = append(results, r)
		}

		if progress != nil {
			progress(len(results), len(ds.Products), matched)
		}
		if err := ctx.Err(); err != nil {
			return results, err
		}
	}

	return results, nil
}

// Summary aggregates one run's results for display and persistence.
type Summary struct {
	Total          int
	Matched        int
	HighConfidence int
	AlreadyCorrect int
}

func Summarize(results []MatchResult) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		if r.SuggestedSlug != "" {
			s.Matched++
		}
		if r.Confidence >= HighConfidence {
			s.HighConfidence++
		}
		if r.AlreadyCorrect {
			s.AlreadyCorrect++
		}
	}
	return s
}
