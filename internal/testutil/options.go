package testutil

import "time"

// datasetData holds the contents of a dataset info file to be written.
type datasetData struct {
	name      string
	subject   string
	date      time.Time
	saveTags  []string
	nTrials   int
	nChannels int
	noInfo    bool
	raw       string
}

// defaultDataset returns a datasetData with sensible defaults.
func defaultDataset(name string) datasetData {
	return datasetData{
		name:      name,
		subject:   "M1",
		date:      time.Date(2019, time.March, 14, 0, 0, 0, 0, time.UTC),
		saveTags:  []string{"1"},
		nTrials:   100,
		nChannels: 96,
	}
}

// DatasetOption configures a dataset during builder setup.
type DatasetOption func(*datasetData)

// WithSubject sets the subject identifier.
func WithSubject(subject string) DatasetOption {
	return func(d *datasetData) { d.subject = subject }
}

// WithDate sets the collection date.
func WithDate(date time.Time) DatasetOption {
	return func(d *datasetData) { d.date = date }
}

// WithSaveTags sets the save tags.
func WithSaveTags(tags ...string) DatasetOption {
	return func(d *datasetData) { d.saveTags = tags }
}

// WithTrials sets the trial count.
func WithTrials(n int) DatasetOption {
	return func(d *datasetData) { d.nTrials = n }
}

// WithChannels sets the channel count.
func WithChannels(n int) DatasetOption {
	return func(d *datasetData) { d.nChannels = n }
}

// WithoutInfo creates the dataset directory without an info file.
func WithoutInfo() DatasetOption {
	return func(d *datasetData) { d.noInfo = true }
}

// WithRawInfo writes content verbatim as the info file.
func WithRawInfo(content string) DatasetOption {
	return func(d *datasetData) { d.raw = content }
}
