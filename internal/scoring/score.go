package scoring

import "dupesweep/internal/services/immich"

// Completeness weights per metadata category. GPS outranks everything because
// coordinates cannot be recovered once lost; city/country can be re-derived
// from GPS, so location carries the lowest geo weight.
const (
	WeightGPS         = 30
	WeightTimezone    = 20
	WeightCameraInfo  = 15
	WeightCaptureTime = 15
	WeightLensInfo    = 10
	WeightLocation    = 10
)

// MetadataScore breaks down an asset's metadata completeness by category.
// Only Total participates in ordering; the categories explain the number.
type MetadataScore struct {
	GPS         int `json:"gps"`
	Timezone    int `json:"timezone"`
	CameraInfo  int `json:"camera_info"`
	CaptureTime int `json:"capture_time"`
	LensInfo    int `json:"lens_info"`
	Location    int `json:"location"`
	Total       int `json:"total"`
}

// Score computes the completeness score for one asset. An asset with no EXIF
// block scores zero across the board.
func Score(asset immich.Asset) MetadataScore {
	var score MetadataScore
	exif := asset.ExifInfo
	if exif == nil {
		return score
	}

	if exif.HasGPS() {
		score.GPS = WeightGPS
	}
	if exif.HasTimezone() {
		score.Timezone = WeightTimezone
	}
	if exif.HasCameraInfo() {
		score.CameraInfo = WeightCameraInfo
	}
	if exif.HasCaptureTime() {
		score.CaptureTime = WeightCaptureTime
	}
	if exif.HasLensInfo() {
		score.LensInfo = WeightLensInfo
	}
	if exif.HasLocation() {
		score.Location = WeightLocation
	}

	score.Total = score.GPS + score.Timezone + score.CameraInfo + score.CaptureTime + score.LensInfo + score.Location
	return score
}
