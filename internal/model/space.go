package model

import (
	"fmt"
	"strings"
	"time"
)

// SpaceType names a kind of bookable space. Valid values come from a
// configurable allow-list rather than the storage schema.
type SpaceType string

const (
	SpaceTypeRoom       SpaceType = "room"
	SpaceTypeAuditorium SpaceType = "auditorium"
	SpaceTypeCourt      SpaceType = "court"
)

// DefaultSpaceTypes is used when configuration does not provide a list.
var DefaultSpaceTypes = []string{string(SpaceTypeRoom), string(SpaceTypeAuditorium), string(SpaceTypeCourt)}

// SpaceTypeSet is an allow-list of space types.
type SpaceTypeSet map[SpaceType]struct{}

// NewSpaceTypeSet builds an allow-list, falling back to DefaultSpaceTypes.
func NewSpaceTypeSet(names []string) SpaceTypeSet {
	if len(names) == 0 {
		names = DefaultSpaceTypes
	}
	set := make(SpaceTypeSet, len(names))
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if n != "" {
			set[SpaceType(n)] = struct{}{}
		}
	}
	return set
}

// Parse returns the matching SpaceType or an error naming the allowed values.
func (s SpaceTypeSet) Parse(name string) (SpaceType, error) {
	t := SpaceType(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := s[t]; !ok {
		return "", fmt.Errorf("invalid space type %q", name)
	}
	return t, nil
}

// Space is a bookable physical resource.
type Space struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:128;not null" json:"name"`
	Type        SpaceType `gorm:"size:32;not null;index" json:"type"`
	Capacity    int       `gorm:"not null" json:"capacity"`
	Description string    `gorm:"size:1024" json:"description"`
	IsActive    bool      `gorm:"not null;index" json:"isActive"`
	CreatedAt   time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt   time.Time `json:"-"`
}

// NewSpace returns an active space. Validation of name uniqueness and type
// happens in the catalogue service.
func NewSpace(name string, typ SpaceType, capacity int, description string, now time.Time) *Space {
	return &Space{
		Name:        strings.TrimSpace(name),
		Type:        typ,
		Capacity:    capacity,
		Description: description,
		IsActive:    true,
		CreatedAt:   now,
	}
}

func (s *Space) Activate()   { s.IsActive = true }
func (s *Space) Deactivate() { s.IsActive = false }

// IsAvailableForCapacity reports whether the space is bookable for a group of n.
func (s *Space) IsAvailableForCapacity(n int) bool {
	return s.IsActive && s.Capacity >= n
}
