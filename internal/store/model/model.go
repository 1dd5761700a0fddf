package model

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/google/uuid"
	api "github.com/kubev2v/model-server/api/v1alpha1"
)

// InitialVersion is the version of the first import of a model.
const InitialVersion = "0.1.0"

type Model struct {
	ID          uuid.UUID `gorm:"primaryKey;"`
	Name        string    `gorm:"uniqueIndex;not null"`
	ModelType   string    `gorm:"not null"`
	Runtime     string    `gorm:"not null"`
	Description string    `gorm:"not null;default:''"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Versions    []ModelVersion `gorm:"foreignKey:ModelID;references:ID;constraint:OnDelete:CASCADE;"`
}

type ModelVersion struct {
	ModelID    uuid.UUID                      `gorm:"primaryKey;"`
	Version    string                         `gorm:"primaryKey;"`
	ImportedAt time.Time                      `gorm:"not null"`
	Source     JSONField[api.LocatorEnvelope] `gorm:"type:text;not null"`
	Params     JSONField[api.ModelParams]     `gorm:"type:text;not null"`
	CreatedAt  time.Time
}

type ModelList []Model

func (m Model) String() string {
	val, _ := json.Marshal(m)
	return string(val)
}

// LatestVersion returns the highest semantic version of the model, or nil
// when it has none. Versions that do not parse are ignored.
func (m Model) LatestVersion() *semver.Version {
	var latest *semver.Version
	for _, v := range m.Versions {
		parsed, err := semver.NewVersion(v.Version)
		if err != nil {
			continue
		}
		if latest == nil || parsed.GreaterThan(latest) {
			latest = parsed
		}
	}
	return latest
}

// NextVersion is the version the next import of this model gets.
func (m Model) NextVersion() string {
	latest := m.LatestVersion()
	if latest == nil {
		return InitialVersion
	}
	return latest.IncMinor().String()
}

// SortVersions orders the versions from oldest to newest.
func (m *Model) SortVersions() {
	sort.SliceStable(m.Versions, func(i, j int) bool {
		vi, erri := semver.NewVersion(m.Versions[i].Version)
		vj, errj := semver.NewVersion(m.Versions[j].Version)
		if erri != nil || errj != nil {
			return m.Versions[i].Version < m.Versions[j].Version
		}
		return vi.LessThan(vj)
	})
}
