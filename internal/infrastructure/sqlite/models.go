package sqlite

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/zjrosen/runmanager/internal/domain/dataset"
)

// Entry is an indexed snapshot of a dataset's info file.
type Entry struct {
	Root          string
	Name          string
	Info          dataset.Info
	SourceModTime time.Time
	IndexedAt     time.Time
}

// InfoModel represents the database row for the dataset_info table.
// Times are stored as Unix nanoseconds.
type InfoModel struct {
	Root           string
	Name           string
	Subject        string
	CollectionDate *int64 // nullable
	SaveTags       string // JSON encoded
	NTrials        int
	NChannels      int
	SourceMTime    int64
	IndexedAt      int64
}

func toInfoModel(e Entry) (*InfoModel, error) {
	tags := e.Info.SaveTags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return nil, err
	}

	m := &InfoModel{
		Root:        e.Root,
		Name:        e.Name,
		Subject:     e.Info.Subject,
		SaveTags:    string(tagsJSON),
		NTrials:     e.Info.NTrials,
		NChannels:   e.Info.NChannels,
		SourceMTime: e.SourceModTime.UnixNano(),
		IndexedAt:   e.IndexedAt.UnixNano(),
	}
	if !e.Info.CollectionDate.IsZero() {
		date := e.Info.CollectionDate.UnixNano()
		m.CollectionDate = &date
	}
	return m, nil
}

func (m *InfoModel) toDomain() (Entry, error) {
	var tags []string
	if err := json.Unmarshal([]byte(m.SaveTags), &tags); err != nil {
		return Entry{}, fmt.Errorf("decoding save_tags of %s: %w", m.Name, err)
	}
	if len(tags) == 0 {
		tags = nil
	}

	info := dataset.Info{
		Subject:   m.Subject,
		SaveTags:  tags,
		NTrials:   m.NTrials,
		NChannels: m.NChannels,
	}
	if m.CollectionDate != nil {
		info.CollectionDate = time.Unix(0, *m.CollectionDate).UTC()
	}

	return Entry{
		Root:          m.Root,
		Name:          m.Name,
		Info:          info,
		SourceModTime: time.Unix(0, m.SourceMTime),
		IndexedAt:     time.Unix(0, m.IndexedAt),
	}, nil
}
