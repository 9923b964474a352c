package recurrence

import (
	"fmt"

	"github.com/google/uuid"

	"finlens/internal/models"
	"finlens/internal/services/calendar"
)

// Options controls a bulk materialization run. DryRun computes the same
// counts as a real run; the caller simply does not persist the output.
type Options struct {
	DryRun       bool
	SkipExisting bool
}

// ItemError records a failed definition without aborting its siblings
type ItemError struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// Result reports what a materialization run produced
type Result struct {
	DryRun          bool              `json:"dry_run"`
	GeneratedCounts map[string]int    `json:"generated_counts"` // per definition/subscription ID
	TotalAdded      int               `json:"total_added"`
	SkippedExisting int               `json:"skipped_existing"`
	Errors          []ItemError       `json:"errors,omitempty"`
	Generated       []models.Record   `json:"-"`
}

// Warning is a non-fatal validation finding; callers may proceed despite it
type Warning struct {
	Code     string `json:"code"`
	SourceID string `json:"source_id,omitempty"`
	Message  string `json:"message"`
}

// ValidateConfig bounds the validation checks
type ValidateConfig struct {
	MaxProjected    int
	MaxSeedAgeYears int
}

// DefaultValidateConfig returns the standard validation thresholds
func DefaultValidateConfig() ValidateConfig {
	return ValidateConfig{MaxProjected: 1000, MaxSeedAgeYears: 10}
}

// Input is everything a materialization run reads. The engine never touches
// storage; callers load these collections first and persist afterwards.
type Input struct {
	Definitions   []models.Record
	Subscriptions []models.Subscription
	Existing      []models.Record
	AsOf          calendar.Date
}

// Materializer expands recurring definitions into concrete records.
// It holds no state between calls; the dedup set is scoped to one run.
type Materializer struct{}

// NewMaterializer creates a materializer
func NewMaterializer() *Materializer {
	return &Materializer{}
}

// MaterializeAll expands every recurring definition and auto-generating
// subscription whose seed date is not after AsOf. Definitions are processed
// independently: one bad definition records an error and the batch continues,
// and processing order cannot change the result set because deduplication is
// keyed by exact (date, description, amount) triples.
func (m *Materializer) MaterializeAll(in Input, opts Options) *Result {
	result := &Result{
		DryRun:          opts.DryRun,
		GeneratedCounts: make(map[string]int),
	}

	seen := make(map[string]bool)
	if opts.SkipExisting {
		for i := range in.Existing {
			seen[in.Existing[i].DedupKey()] = true
		}
	}

	emit := func(sourceID string, rec models.Record) {
		if opts.SkipExisting {
			key := rec.DedupKey()
			if seen[key] {
				result.SkippedExisting++
				return
			}
			seen[key] = true
		}
		result.Generated = append(result.Generated, rec)
		result.GeneratedCounts[sourceID]++
		result.TotalAdded++
	}

	for i := range in.Definitions {
		def := &in.Definitions[i]
		if !def.IsRecurring {
			continue
		}
		if !def.Frequency.Valid() {
			result.Errors = append(result.Errors, ItemError{
				ID:     def.ID,
				Name:   def.Description,
				Reason: fmt.Sprintf("invalid frequency %q", def.Frequency),
			})
			continue
		}
		if def.OccurredOn.After(in.AsOf) {
			result.GeneratedCounts[def.ID] = 0
			continue
		}

		dates, err := Expand(def.OccurredOn, def.Frequency, in.AsOf, true)
		if err != nil {
			result.Errors = append(result.Errors, ItemError{ID: def.ID, Name: def.Description, Reason: err.Error()})
			continue
		}
		result.GeneratedCounts[def.ID] = 0
		for _, date := range dates {
			emit(def.ID, models.Record{
				ID:          uuid.NewString(),
				Kind:        def.Kind,
				Amount:      def.Amount,
				Category:    def.Category,
				Description: def.Description,
				OccurredOn:  date,
			})
		}
	}

	for i := range in.Subscriptions {
		sub := &in.Subscriptions[i]
		if !sub.AutoGenerate || !sub.IsActive {
			continue
		}
		if !sub.Frequency.Valid() {
			result.Errors = append(result.Errors, ItemError{
				ID:     sub.ID,
				Name:   sub.Name,
				Reason: fmt.Sprintf("invalid frequency %q", sub.Frequency),
			})
			continue
		}

		end := in.AsOf
		if sub.EndDate != nil && sub.EndDate.Before(end) {
			end = *sub.EndDate
		}
		seed := sub.SeedDate()
		if seed.After(end) {
			result.GeneratedCounts[sub.ID] = 0
			continue
		}

		dates, err := Expand(seed, sub.Frequency, end, true)
		if err != nil {
			result.Errors = append(result.Errors, ItemError{ID: sub.ID, Name: sub.Name, Reason: err.Error()})
			continue
		}
		result.GeneratedCounts[sub.ID] = 0
		for _, date := range dates {
			emit(sub.ID, models.Record{
				ID:          uuid.NewString(),
				Kind:        models.Expense,
				Amount:      sub.Amount,
				Category:    sub.Category,
				Description: sub.Name,
				OccurredOn:  date,
			})
		}
	}

	return result
}

// Analyze reports the counts a commit would produce, without committing.
func (m *Materializer) Analyze(in Input) *Result {
	return m.MaterializeAll(in, Options{DryRun: true, SkipExisting: true})
}

// Validate flags non-fatal conditions before a materialization run:
// projection volume over the threshold, seeds older than the horizon, and
// inactive subscriptions that would be silently excluded.
func (m *Materializer) Validate(in Input, cfg ValidateConfig) []Warning {
	var warnings []Warning

	projected := m.Analyze(in)
	if projected.TotalAdded > cfg.MaxProjected {
		warnings = append(warnings, Warning{
			Code:    "projection-volume",
			Message: fmt.Sprintf("run would generate %d entries (threshold %d)", projected.TotalAdded, cfg.MaxProjected),
		})
	}

	horizon := in.AsOf.AddYears(-cfg.MaxSeedAgeYears)
	for i := range in.Definitions {
		def := &in.Definitions[i]
		if def.IsRecurring && def.OccurredOn.Before(horizon) {
			warnings = append(warnings, Warning{
				Code:     "stale-seed",
				SourceID: def.ID,
				Message:  fmt.Sprintf("%q starts %s, more than %d years before the as-of date", def.Description, def.OccurredOn, cfg.MaxSeedAgeYears),
			})
		}
	}
	for i := range in.Subscriptions {
		sub := &in.Subscriptions[i]
		if sub.AutoGenerate && !sub.IsActive {
			warnings = append(warnings, Warning{
				Code:     "inactive-subscription",
				SourceID: sub.ID,
				Message:  fmt.Sprintf("%q auto-generates but is inactive and will be skipped", sub.Name),
			})
		}
		if sub.AutoGenerate && sub.StartDate.Before(horizon) {
			warnings = append(warnings, Warning{
				Code:     "stale-seed",
				SourceID: sub.ID,
				Message:  fmt.Sprintf("%q starts %s, more than %d years before the as-of date", sub.Name, sub.StartDate, cfg.MaxSeedAgeYears),
			})
		}
	}

	return warnings
}

// Deduplicate removes exact (date, description, amount) duplicates, keeping
// the first occurrence of each triple in input order. Running it twice in a
// row removes nothing the second time.
func Deduplicate(records []models.Record) (kept []models.Record, removed map[models.RecordKind]int) {
	removed = make(map[models.RecordKind]int)
	seen := make(map[string]bool, len(records))

	for i := range records {
		key := records[i].DedupKey()
		if seen[key] {
			removed[records[i].Kind]++
			continue
		}
		seen[key] = true
		kept = append(kept, records[i])
	}
	return kept, removed
}
