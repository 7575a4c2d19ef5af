package presentation

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	headerStyle     = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle       = lipgloss.NewStyle().Padding(0, 1)
	numberStyle     = cellStyle.Align(lipgloss.Right)
	borderStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	infeasibleStyle = numberStyle.Foreground(lipgloss.Color("9"))
)

var datasetHeaders = []string{"NAME", "SUBJECT", "DATE", "SAVE TAGS", "TRIALS", "CHANNELS"}

// RenderDatasetTable renders dataset rows as a bordered table.
func RenderDatasetTable(datasets []DatasetDTO) string {
	rows := make([][]string, len(datasets))
	for i, d := range datasets {
		rows[i] = []string{
			d.Name,
			d.Subject,
			d.Date,
			strings.Join(d.SaveTags, ","),
			strconv.Itoa(d.NTrials),
			strconv.Itoa(d.NChannels),
		}
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers(datasetHeaders...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col >= 4:
				return numberStyle
			default:
				return cellStyle
			}
		}).
		Render()
}

var batchHeaders = []string{"RUN", "RATIO", "MIN TRIALS", "MAX BATCH", "CONFIGURED", "FEASIBLE"}

// RenderBatchSizeTable renders batch size results, highlighting infeasible runs.
func RenderBatchSizeTable(results []BatchSizeDTO) string {
	rows := make([][]string, len(results))
	for i, r := range results {
		run := r.Run
		if run == "" {
			run = "-"
		}
		configured := "-"
		if r.ConfiguredBatchSize > 0 {
			configured = strconv.Itoa(r.ConfiguredBatchSize)
		}
		feasible := "yes"
		if !r.Feasible {
			feasible = "no"
		}
		rows[i] = []string{
			run,
			strconv.FormatFloat(r.TrainToTestRatio, 'g', -1, 64),
			strconv.Itoa(r.MinTrials),
			strconv.Itoa(r.MaxBatchSize),
			configured,
			feasible,
		}
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers(batchHeaders...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 5 && !results[row].Feasible:
				return infeasibleStyle
			case col >= 1:
				return numberStyle
			default:
				return cellStyle
			}
		}).
		Render()
}
