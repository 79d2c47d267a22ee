package models

import (
	"errors"
	"strings"
)

// ErrInvalidRegion is returned when a region string is not one of the tracked regions
var ErrInvalidRegion = errors.New("invalid region")

// Region is a Blizzard API region whose commodity auction house is tracked
type Region string

const (
	RegionUS Region = "us"
	RegionEU Region = "eu"
	RegionTW Region = "tw"
	RegionKR Region = "kr"
)

// AllRegions returns all tracked regions in processing order
func AllRegions() []Region {
	return []Region{RegionUS, RegionEU, RegionTW, RegionKR}
}

// ParseRegion normalizes a region string ("US", " eu ") to a Region
func ParseRegion(s string) (Region, error) {
	r := Region(strings.ToLower(strings.TrimSpace(s)))
	switch r {
	case RegionUS, RegionEU, RegionTW, RegionKR:
		return r, nil
	default:
		return "", ErrInvalidRegion
	}
}

// ParseRegions parses a comma separated region list, dropping duplicates
func ParseRegions(list string) ([]Region, error) {
	var regions []Region
	seen := make(map[Region]bool)
	for _, part := range strings.Split(list, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		r, err := ParseRegion(part)
		if err != nil {
			return nil, err
		}
		if !seen[r] {
			seen[r] = true
			regions = append(regions, r)
		}
	}
	if len(regions) == 0 {
		return nil, ErrInvalidRegion
	}
	return regions, nil
}
