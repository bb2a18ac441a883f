package autocateg

import (
	"context"
	"fmt"

	"github.com/Syfer2025/Catlogodepeas-sub005/internal/catalog"
)

// ApplyBatchSize is how many assignments go into one submission to the
// catalog.
const ApplyBatchSize = 100

// DefaultThreshold is the confidence an unreviewed suggestion needs before
// apply will touch it.
const DefaultThreshold = HighConfidence

// Submitter is the single catalog operation the apply step needs.
type Submitter interface {
	SubmitCategoryBatch(ctx context.Context, batch []catalog.CategoryAssignment) (*catalog.BatchAck, error)
}

// ApplyReport sums up one apply pass: what was accepted, how many batches
// went out, what the catalog acknowledged and everything that went wrong.
type ApplyReport struct {
	Accepted    int
	Batches     int
	Applied     int
	Errors      []string
	AppliedSKUs []string
}

// Accepted filters the results down to the suggestions apply will submit:
// selected by the operator, at or above the confidence threshold, carrying
// a suggestion and not already filed correctly.
func Accepted(results []MatchResult, threshold int) []MatchResult {
	var out []MatchResult
	for _, r := range results {
		if r.Selected && r.Confidence >= threshold && !r.AlreadyCorrect && r.SuggestedSlug != "" {
			out = append(out, r)
		}
	}
	return out
}

// Apply submits the accepted suggestions in batches of ApplyBatchSize,
// sequentially. A failed batch is recorded and the remaining batches are
// still submitted; cancellation between batches stops the pass but keeps
// what was already acknowledged. Nothing is rolled back.
func Apply(ctx context.Context, svc Submitter, results []MatchResult, threshold int) (*ApplyReport, error) {
	accepted := Accepted(results, threshold)
	report := &ApplyReport{Accepted: len(accepted)}

	for start := 0; start < len(accepted); start += ApplyBatchSize {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		end := start + ApplyBatchSize
		if end > len(accepted) {
			end = len(accepted)
		}
		chunk := accepted[start:end]

		batch := make([]catalog.CategoryAssignment, 0, len(chunk))
		for _, r := range chunk {
			batch = append(batch, catalog.CategoryAssignment{
				SKU:      r.SKU,
				Category: r.SuggestedSlug,
			})
		}

		report.Batches++
		ack, err := svc.SubmitCategoryBatch(ctx, batch)
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("batch %d: %v", report.Batches, err))
			continue
		}

		report.Applied += ack.Applied
		report.Errors = append(report.Errors, ack.Errors...)
		for _, r := range chunk {
			report.AppliedSKUs = append(report.AppliedSKUs, r.SKU)
		}
	}

	return report, nil
}
