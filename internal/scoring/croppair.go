package scoring

import (
	"fmt"
	"strings"

	"dupesweep/internal/services/immich"
)

// iPhones shooting in certain modes store both a 4:3 full-sensor capture and
// a 16:9 crop of the same moment. The 4:3 version is always the keeper.

// AspectClass classifies an image's aspect ratio.
type AspectClass string

const (
	AspectFourThree   AspectClass = "4:3"
	AspectSixteenNine AspectClass = "16:9"
)

const (
	ratioTolerance = 0.01
	ratioFourThree = 4.0 / 3.0
	ratioSixteen9  = 16.0 / 9.0
)

// ClassifyAspect detects the aspect ratio from pixel dimensions. The ratio is
// computed orientation-agnostically (long side over short side), so portrait
// and landscape classify the same.
func ClassifyAspect(width, height int) (AspectClass, bool) {
	if width <= 0 || height <= 0 {
		return "", false
	}
	long, short := float64(width), float64(height)
	if short > long {
		long, short = short, long
	}
	ratio := long / short

	switch {
	case ratio > ratioFourThree-ratioTolerance && ratio < ratioFourThree+ratioTolerance:
		return AspectFourThree, true
	case ratio > ratioSixteen9-ratioTolerance && ratio < ratioSixteen9+ratioTolerance:
		return AspectSixteenNine, true
	default:
		return "", false
	}
}

// CropPair is a detected 4:3/16:9 pair: Keeper holds the full scene, Crop is
// redundant.
type CropPair struct {
	Keeper    immich.Asset `json:"keeper"`
	Crop      immich.Asset `json:"crop"`
	Timestamp string       `json:"timestamp"`
	Camera    string       `json:"camera"`
}

type pairingKey struct {
	timestampSecond string
	make            string
	model           string
	gpsKey          string
}

// FindCropPairs scans assets for iPhone 4:3/16:9 crop pairs. Assets group by
// capture second, camera, and (when present) GPS rounded to four decimals; a
// pair is emitted only when a group holds exactly one of each ratio, so
// bursts with several frames of the same ratio stay untouched.
func FindCropPairs(assets []immich.Asset) []CropPair {
	groups := make(map[pairingKey][]immich.Asset)
	var order []pairingKey

	for _, asset := range assets {
		if asset.IsTrashed || !isIPhone(asset) {
			continue
		}
		if _, ok := assetAspect(asset); !ok {
			continue
		}
		key, ok := keyForAsset(asset)
		if !ok {
			continue
		}
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], asset)
	}

	var pairs []CropPair
	for _, key := range order {
		var fourThree, sixteenNine []immich.Asset
		for _, asset := range groups[key] {
			switch class, _ := assetAspect(asset); class {
			case AspectFourThree:
				fourThree = append(fourThree, asset)
			case AspectSixteenNine:
				sixteenNine = append(sixteenNine, asset)
			}
		}
		if len(fourThree) != 1 || len(sixteenNine) != 1 {
			continue
		}
		pairs = append(pairs, CropPair{
			Keeper:    fourThree[0],
			Crop:      sixteenNine[0],
			Timestamp: key.timestampSecond,
			Camera:    strings.TrimSpace(key.make + " " + key.model),
		})
	}
	return pairs
}

func keyForAsset(asset immich.Asset) (pairingKey, bool) {
	exif := asset.ExifInfo
	if exif == nil || exif.DateTimeOriginal == nil || exif.Make == nil || exif.Model == nil {
		return pairingKey{}, false
	}

	key := pairingKey{
		timestampSecond: truncateToSecond(*exif.DateTimeOriginal),
		make:            *exif.Make,
		model:           *exif.Model,
	}
	if exif.HasGPS() {
		key.gpsKey = fmt.Sprintf("%.4f,%.4f", *exif.Latitude, *exif.Longitude)
	}
	return key, true
}

// truncateToSecond strips sub-second precision and the trailing zone marker:
// "2024-12-23T10:30:45.123Z" becomes "2024-12-23T10:30:45".
func truncateToSecond(timestamp string) string {
	if i := strings.IndexByte(timestamp, '.'); i >= 0 {
		return timestamp[:i]
	}
	if i := strings.IndexByte(timestamp, 'Z'); i >= 0 {
		return timestamp[:i]
	}
	return timestamp
}

func isIPhone(asset immich.Asset) bool {
	exif := asset.ExifInfo
	if exif == nil || exif.Make == nil || exif.Model == nil {
		return false
	}
	return strings.Contains(strings.ToLower(*exif.Make), "apple") &&
		strings.Contains(strings.ToLower(*exif.Model), "iphone")
}

func assetAspect(asset immich.Asset) (AspectClass, bool) {
	exif := asset.ExifInfo
	if exif == nil || exif.ExifImageWidth == nil || exif.ExifImageHeight == nil {
		return "", false
	}
	return ClassifyAspect(*exif.ExifImageWidth, *exif.ExifImageHeight)
}
