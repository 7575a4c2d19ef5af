package presentation

import (
	"slices"

	"github.com/zjrosen/runmanager/internal/domain/dataset"
)

const dateLayout = "2006-01-02"

// DatasetDTO represents one dataset info row for presentation.
type DatasetDTO struct {
	Name      string   `json:"name"`
	Subject   string   `json:"subject"`
	Date      string   `json:"date,omitempty"`
	SaveTags  []string `json:"save_tags"`
	NTrials   int      `json:"n_trials"`
	NChannels int      `json:"n_channels"`
}

// FromInfoRow converts a domain info row to a DTO.
func FromInfoRow(row dataset.InfoRow) DatasetDTO {
	dto := DatasetDTO{
		Name:      row.Name,
		Subject:   row.Subject,
		SaveTags:  []string{},
		NTrials:   row.NTrials,
		NChannels: row.NChannels,
	}
	if !row.Date.IsZero() {
		dto.Date = row.Date.Format(dateLayout)
	}
	if len(row.Tags) > 0 {
		dto.SaveTags = slices.Clone(row.Tags)
	}
	return dto
}

// FromInfoRows converts every row, preserving order.
func FromInfoRows(rows []dataset.InfoRow) []DatasetDTO {
	dtos := make([]DatasetDTO, len(rows))
	for i, row := range rows {
		dtos[i] = FromInfoRow(row)
	}
	return dtos
}

// BatchSizeDTO reports the largest feasible batch size for a run.
type BatchSizeDTO struct {
	Run              string  `json:"run,omitempty"`
	TrainToTestRatio float64 `json:"train_to_test_ratio"`
	MaxBatchSize     int     `json:"max_batch_size"`
	MinTrials        int     `json:"min_trials"`
	// ConfiguredBatchSize is zero when no run configuration was involved.
	ConfiguredBatchSize int  `json:"configured_batch_size,omitempty"`
	Feasible            bool `json:"feasible"`
}

// NewBatchSizeDTO builds a DTO. A run is feasible when its configured batch
// size fits, or, without one, when any batch size fits.
func NewBatchSizeDTO(run string, ratio float64, configured, maxBatchSize, minTrials int) BatchSizeDTO {
	feasible := maxBatchSize > 0
	if configured > 0 {
		feasible = configured <= maxBatchSize
	}
	return BatchSizeDTO{
		Run:                 run,
		TrainToTestRatio:    ratio,
		MaxBatchSize:        maxBatchSize,
		MinTrials:           minTrials,
		ConfiguredBatchSize: configured,
		Feasible:            feasible,
	}
}

// FilterResultDTO summarises a filtering pass.
type FilterResultDTO struct {
	Threshold int      `json:"threshold"`
	Kept      []string `json:"kept"`
	Removed   []string `json:"removed"`
}

// NewFilterResultDTO computes removed names as before minus after.
func NewFilterResultDTO(threshold int, before, after []string) FilterResultDTO {
	kept := make(map[string]bool, len(after))
	for _, name := range after {
		kept[name] = true
	}
	removed := []string{}
	for _, name := range before {
		if !kept[name] {
			removed = append(removed, name)
		}
	}
	if after == nil {
		after = []string{}
	}
	return FilterResultDTO{Threshold: threshold, Kept: after, Removed: removed}
}
