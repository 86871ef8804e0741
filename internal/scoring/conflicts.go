package scoring

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/cases"

	"dupesweep/internal/services/immich"
)

// ConflictField identifies which metadata field disagrees across a group.
type ConflictField string

const (
	ConflictGPS         ConflictField = "gps"
	ConflictTimezone    ConflictField = "timezone"
	ConflictCameraInfo  ConflictField = "camera_info"
	ConflictCaptureTime ConflictField = "capture_time"
)

// Two GPS points within this many degrees on both axes (roughly 11 meters)
// are treated as the same location.
const gpsThreshold = 0.0001

// Coordinates is a GPS point observed on an asset.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (c Coordinates) String() string {
	return fmt.Sprintf("%.4f,%.4f", c.Latitude, c.Longitude)
}

// MetadataConflict records a field whose values disagree across a group's
// assets. Exactly one of Locations or Values is populated, depending on Field.
type MetadataConflict struct {
	Field     ConflictField `json:"field"`
	Locations []Coordinates `json:"locations,omitempty"`
	Values    []string      `json:"values,omitempty"`
}

// DetectConflicts compares metadata values across the group's assets. Assets
// missing a field are excluded from that field's comparison. Empty input
// yields no conflicts.
func DetectConflicts(assets []immich.Asset) []MetadataConflict {
	var conflicts []MetadataConflict

	if locations := distinctLocations(assets); len(locations) >= 2 {
		conflicts = append(conflicts, MetadataConflict{Field: ConflictGPS, Locations: locations})
	}

	stringFields := []struct {
		field   ConflictField
		extract func(*immich.ExifInfo) (string, bool)
	}{
		{ConflictTimezone, func(e *immich.ExifInfo) (string, bool) {
			if e.TimeZone == nil {
				return "", false
			}
			return *e.TimeZone, true
		}},
		{ConflictCameraInfo, cameraLabel},
		{ConflictCaptureTime, func(e *immich.ExifInfo) (string, bool) {
			if e.DateTimeOriginal == nil {
				return "", false
			}
			return *e.DateTimeOriginal, true
		}},
	}

	for _, sf := range stringFields {
		var values []string
		for _, asset := range assets {
			if asset.ExifInfo == nil {
				continue
			}
			if value, ok := sf.extract(asset.ExifInfo); ok {
				values = append(values, value)
			}
		}
		if distinct := distinctStrings(values); len(distinct) >= 2 {
			conflicts = append(conflicts, MetadataConflict{Field: sf.field, Values: distinct})
		}
	}

	return conflicts
}

// distinctLocations collects GPS points and merges any pair closer than
// gpsThreshold on both axes into the first-seen representative.
func distinctLocations(assets []immich.Asset) []Coordinates {
	var distinct []Coordinates
	for _, asset := range assets {
		if !asset.ExifInfo.HasGPS() {
			continue
		}
		point := Coordinates{Latitude: *asset.ExifInfo.Latitude, Longitude: *asset.ExifInfo.Longitude}
		if !containsNearby(distinct, point) {
			distinct = append(distinct, point)
		}
	}
	return distinct
}

func containsNearby(points []Coordinates, candidate Coordinates) bool {
	for _, p := range points {
		if math.Abs(p.Latitude-candidate.Latitude) <= gpsThreshold &&
			math.Abs(p.Longitude-candidate.Longitude) <= gpsThreshold {
			return true
		}
	}
	return false
}

// distinctStrings dedupes by trimmed, case-folded form and returns the
// original values in first-seen order.
func distinctStrings(values []string) []string {
	folder := cases.Fold()
	seen := make(map[string]struct{}, len(values))
	var distinct []string
	for _, value := range values {
		key := folder.String(strings.TrimSpace(value))
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		distinct = append(distinct, value)
	}
	return distinct
}

func cameraLabel(e *immich.ExifInfo) (string, bool) {
	var parts []string
	if e.Make != nil {
		parts = append(parts, *e.Make)
	}
	if e.Model != nil {
		parts = append(parts, *e.Model)
	}
	if len(parts) == 0 {
		return "", false
	}
	return strings.Join(parts, " "), true
}
