package presentation

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/runmanager/internal/domain/dataset"
)

func TestFromInfoRows(t *testing.T) {
	rows := []dataset.InfoRow{
		{Name: "a", Subject: "M1", Date: time.Date(2019, 3, 14, 0, 0, 0, 0, time.UTC), SaveTags: "1,2", Tags: []string{"1", "2"}, NTrials: 100, NChannels: 96},
		{Name: "b"},
		{Name: "c", SaveTags: "x,y,z", Tags: []string{"x,y", "z"}},
	}

	got := FromInfoRows(rows)

	want := []DatasetDTO{
		{Name: "a", Subject: "M1", Date: "2019-03-14", SaveTags: []string{"1", "2"}, NTrials: 100, NChannels: 96},
		{Name: "b", SaveTags: []string{}},
		{Name: "c", SaveTags: []string{"x,y", "z"}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("FromInfoRows mismatch (-want +got):\n%s", diff)
	}
}

func TestNewBatchSizeDTO_Feasibility(t *testing.T) {
	tests := []struct {
		name       string
		configured int
		maxBatch   int
		want       bool
	}{
		{name: "no run fits", configured: 0, maxBatch: 20, want: true},
		{name: "no run, nothing fits", configured: 0, maxBatch: 0, want: false},
		{name: "run fits exactly", configured: 20, maxBatch: 20, want: true},
		{name: "run too large", configured: 21, maxBatch: 20, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dto := NewBatchSizeDTO("r", 3, tt.configured, tt.maxBatch, 80)
			require.Equal(t, tt.want, dto.Feasible)
		})
	}
}

func TestNewFilterResultDTO(t *testing.T) {
	got := NewFilterResultDTO(84, []string{"a", "b", "c"}, []string{"a", "b"})

	want := FilterResultDTO{Threshold: 84, Kept: []string{"a", "b"}, Removed: []string{"c"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("NewFilterResultDTO mismatch (-want +got):\n%s", diff)
	}

	empty := NewFilterResultDTO(1000, []string{"a"}, nil)
	require.Equal(t, []string{}, empty.Kept)
	require.Equal(t, []string{"a"}, empty.Removed)
}
