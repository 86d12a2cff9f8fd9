package jobboard

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/garnizeh/rozgar/pkg/models"
)

const (
	MinWage        = 100
	WageStep       = 50
	DefaultWage    = 600
	MinDuration    = 1
	DefaultWorkers = 5
)

// WorkerCounts are the head-counts a poster can ask for.
var WorkerCounts = []int{1, 2, 3, 4, 5, 10, 15, 20}

var ErrInvalidPosting = errors.New("invalid job posting")

var workerTypeTags = map[string]string{
	"मजदूर":         "labourer",
	"मिस्त्री":       "mason",
	"बिजली मिस्त्री": "electrician",
	"प्लंबर":        "plumber",
}

// WorkerTypes lists the worker types a poster can choose from.
func WorkerTypes() []string {
	return []string{"मजदूर", "मिस्त्री", "बिजली मिस्त्री", "प्लंबर"}
}

// Posting is a job a contractor or employer publishes to the local board.
type Posting struct {
	WorkerType   string `json:"worker_type"`
	Count        int    `json:"count"`
	Wage         int    `json:"wage"`
	DurationDays int    `json:"duration_days"`
}

func (p Posting) Validate() error {
	if _, ok := workerTypeTags[strings.TrimSpace(p.WorkerType)]; !ok {
		return fmt.Errorf("%w: unknown worker type %q", ErrInvalidPosting, p.WorkerType)
	}
	if !slices.Contains(WorkerCounts, p.Count) {
		return fmt.Errorf("%w: count %d not offered", ErrInvalidPosting, p.Count)
	}
	if p.Wage < MinWage || p.Wage%WageStep != 0 {
		return fmt.Errorf("%w: wage must be at least %d in steps of %d", ErrInvalidPosting, MinWage, WageStep)
	}
	if p.DurationDays < MinDuration {
		return fmt.Errorf("%w: duration must be at least %d day", ErrInvalidPosting, MinDuration)
	}
	return nil
}

// Post validates p and adds the resulting job to the front of the board.
func (b *Board) Post(p Posting) (models.Job, error) {
	if err := p.Validate(); err != nil {
		return models.Job{}, err
	}
	wt := strings.TrimSpace(p.WorkerType)
	return b.add(models.Job{
		Role:          wt + " चाहिए",
		Pay:           fmt.Sprintf("₹%d / दिन", p.Wage),
		Duration:      fmt.Sprintf("%d दिन", p.DurationDays),
		Type:          workerTypeTags[wt],
		WorkersNeeded: p.Count,
	}), nil
}
