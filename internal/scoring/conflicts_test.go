package scoring

import (
	"testing"

	"dupesweep/internal/services/immich"
)

func conflictFor(t *testing.T, conflicts []MetadataConflict, field ConflictField) *MetadataConflict {
	t.Helper()
	for i := range conflicts {
		if conflicts[i].Field == field {
			return &conflicts[i]
		}
	}
	return nil
}

func TestDetectConflictsEmptyInput(t *testing.T) {
	if got := DetectConflicts(nil); len(got) != 0 {
		t.Fatalf("expected no conflicts, got %+v", got)
	}
}

func TestGPSConflictBeyondThreshold(t *testing.T) {
	assets := []immich.Asset{
		assetWith("a", func(e *immich.ExifInfo) {
			e.Latitude = f64Ptr(51.5074)
			e.Longitude = f64Ptr(-0.1278)
		}),
		assetWith("b", func(e *immich.ExifInfo) {
			e.Latitude = f64Ptr(40.7128)
			e.Longitude = f64Ptr(-74.0060)
		}),
	}

	conflicts := DetectConflicts(assets)
	gps := conflictFor(t, conflicts, ConflictGPS)
	if gps == nil {
		t.Fatalf("expected gps conflict, got %+v", conflicts)
	}
	if len(gps.Locations) != 2 {
		t.Fatalf("locations = %+v, want 2 entries", gps.Locations)
	}
}

func TestGPSPointsWithinThresholdMerge(t *testing.T) {
	assets := []immich.Asset{
		assetWith("a", func(e *immich.ExifInfo) {
			e.Latitude = f64Ptr(51.50740)
			e.Longitude = f64Ptr(-0.12780)
		}),
		assetWith("b", func(e *immich.ExifInfo) {
			e.Latitude = f64Ptr(51.50745)
			e.Longitude = f64Ptr(-0.12784)
		}),
	}

	if conflicts := DetectConflicts(assets); conflictFor(t, conflicts, ConflictGPS) != nil {
		t.Fatalf("nearby points should not conflict: %+v", conflicts)
	}
}

func TestGPSThresholdMergedDedupInValueList(t *testing.T) {
	// Three points: two within threshold of each other, one far away. The
	// conflict's location list must carry two entries, not three.
	assets := []immich.Asset{
		assetWith("a", func(e *immich.ExifInfo) {
			e.Latitude = f64Ptr(51.5074)
			e.Longitude = f64Ptr(-0.1278)
		}),
		assetWith("b", func(e *immich.ExifInfo) {
			e.Latitude = f64Ptr(51.50745)
			e.Longitude = f64Ptr(-0.12778)
		}),
		assetWith("c", func(e *immich.ExifInfo) {
			e.Latitude = f64Ptr(48.8584)
			e.Longitude = f64Ptr(2.2945)
		}),
	}

	gps := conflictFor(t, DetectConflicts(assets), ConflictGPS)
	if gps == nil {
		t.Fatal("expected gps conflict")
	}
	if len(gps.Locations) != 2 {
		t.Fatalf("locations = %+v, want threshold-merged pair", gps.Locations)
	}
	if gps.Locations[0].Latitude != 51.5074 {
		t.Fatalf("first-seen representative lost: %+v", gps.Locations)
	}
}

func TestStringConflictCaseAndWhitespaceInsensitive(t *testing.T) {
	assets := []immich.Asset{
		assetWith("a", func(e *immich.ExifInfo) { e.TimeZone = strPtr("Europe/London") }),
		assetWith("b", func(e *immich.ExifInfo) { e.TimeZone = strPtr("  europe/london ") }),
	}

	if conflicts := DetectConflicts(assets); len(conflicts) != 0 {
		t.Fatalf("same value with different casing must not conflict: %+v", conflicts)
	}
}

func TestTimezoneConflict(t *testing.T) {
	assets := []immich.Asset{
		assetWith("a", func(e *immich.ExifInfo) { e.TimeZone = strPtr("Europe/London") }),
		assetWith("b", func(e *immich.ExifInfo) { e.TimeZone = strPtr("America/New_York") }),
	}

	tz := conflictFor(t, DetectConflicts(assets), ConflictTimezone)
	if tz == nil {
		t.Fatal("expected timezone conflict")
	}
	// Original (non-folded) values in first-seen order.
	if tz.Values[0] != "Europe/London" || tz.Values[1] != "America/New_York" {
		t.Fatalf("values = %v", tz.Values)
	}
}

func TestCameraConflictJoinsMakeAndModel(t *testing.T) {
	assets := []immich.Asset{
		assetWith("a", func(e *immich.ExifInfo) {
			e.Make = strPtr("Apple")
			e.Model = strPtr("iPhone 15 Pro Max")
		}),
		assetWith("b", func(e *immich.ExifInfo) {
			e.Make = strPtr("Canon")
			e.Model = strPtr("EOS R5")
		}),
	}

	cam := conflictFor(t, DetectConflicts(assets), ConflictCameraInfo)
	if cam == nil {
		t.Fatal("expected camera conflict")
	}
	if cam.Values[0] != "Apple iPhone 15 Pro Max" || cam.Values[1] != "Canon EOS R5" {
		t.Fatalf("values = %v", cam.Values)
	}
}

func TestMissingFieldIsNotAConflictingValue(t *testing.T) {
	assets := []immich.Asset{
		assetWith("a", func(e *immich.ExifInfo) { e.TimeZone = strPtr("Europe/London") }),
		assetWith("b", nil),
		{ID: "c"}, // no EXIF block at all
	}

	if conflicts := DetectConflicts(assets); len(conflicts) != 0 {
		t.Fatalf("missing fields must be excluded, got %+v", conflicts)
	}
}

func TestCaptureTimeConflict(t *testing.T) {
	assets := []immich.Asset{
		assetWith("a", func(e *immich.ExifInfo) { e.DateTimeOriginal = strPtr("2024-12-23T10:30:45Z") }),
		assetWith("b", func(e *immich.ExifInfo) { e.DateTimeOriginal = strPtr("2024-12-25T08:00:00Z") }),
	}

	if conflictFor(t, DetectConflicts(assets), ConflictCaptureTime) == nil {
		t.Fatal("expected capture time conflict")
	}
}
