package immich

// AssetType identifies the kind of media an asset holds.
type AssetType string

const (
	AssetTypeImage AssetType = "IMAGE"
	AssetTypeVideo AssetType = "VIDEO"
)

// ExifInfo carries the EXIF metadata Immich extracted for an asset. Most
// fields are optional because EXIF data is frequently incomplete.
type ExifInfo struct {
	Latitude         *float64 `json:"latitude,omitempty"`
	Longitude        *float64 `json:"longitude,omitempty"`
	City             *string  `json:"city,omitempty"`
	State            *string  `json:"state,omitempty"`
	Country          *string  `json:"country,omitempty"`
	TimeZone         *string  `json:"timeZone,omitempty"`
	DateTimeOriginal *string  `json:"dateTimeOriginal,omitempty"`
	Make             *string  `json:"make,omitempty"`
	Model            *string  `json:"model,omitempty"`
	LensModel        *string  `json:"lensModel,omitempty"`
	ExposureTime     *string  `json:"exposureTime,omitempty"`
	FNumber          *float64 `json:"fNumber,omitempty"`
	FocalLength      *float64 `json:"focalLength,omitempty"`
	ISO              *int     `json:"iso,omitempty"`
	ExifImageWidth   *int     `json:"exifImageWidth,omitempty"`
	ExifImageHeight  *int     `json:"exifImageHeight,omitempty"`
	FileSizeInByte   *int64   `json:"fileSizeInByte,omitempty"`
	Description      *string  `json:"description,omitempty"`
	Rating           *int     `json:"rating,omitempty"`
	Orientation      *string  `json:"orientation,omitempty"`
}

// HasGPS reports whether both coordinates are present.
func (e *ExifInfo) HasGPS() bool {
	return e != nil && e.Latitude != nil && e.Longitude != nil
}

// HasTimezone reports whether timezone information is present.
func (e *ExifInfo) HasTimezone() bool {
	return e != nil && e.TimeZone != nil
}

// HasCameraInfo reports whether a camera make or model is present.
func (e *ExifInfo) HasCameraInfo() bool {
	return e != nil && (e.Make != nil || e.Model != nil)
}

// HasCaptureTime reports whether the original capture time is present.
func (e *ExifInfo) HasCaptureTime() bool {
	return e != nil && e.DateTimeOriginal != nil
}

// HasLensInfo reports whether a lens model is present.
func (e *ExifInfo) HasLensInfo() bool {
	return e != nil && e.LensModel != nil
}

// HasLocation reports whether reverse-geocoded location data is present.
func (e *ExifInfo) HasLocation() bool {
	return e != nil && (e.City != nil || e.Country != nil)
}

// Asset is an immutable snapshot of a remote asset. It is never mutated
// locally; metadata changes go through UpdateAssetMetadata.
type Asset struct {
	ID               string    `json:"id"`
	OriginalFileName string    `json:"originalFileName"`
	FileCreatedAt    string    `json:"fileCreatedAt"`
	LocalDateTime    string    `json:"localDateTime"`
	Type             AssetType `json:"type"`
	ExifInfo         *ExifInfo `json:"exifInfo,omitempty"`
	Checksum         string    `json:"checksum"`
	IsTrashed        bool      `json:"isTrashed"`
	IsFavorite       bool      `json:"isFavorite"`
	IsArchived       bool      `json:"isArchived"`
}

// DuplicateGroup is a set of assets the server considers duplicates of each
// other. Read-only input; the server is the source of truth.
type DuplicateGroup struct {
	DuplicateID string  `json:"duplicateId"`
	Assets      []Asset `json:"assets"`
}

// Album describes an album an asset belongs to.
type Album struct {
	ID        string `json:"id"`
	AlbumName string `json:"albumName"`
	OwnerID   string `json:"ownerId"`
}

// MetadataUpdate carries the fields to change on an asset. Only non-nil
// fields are sent; everything else is left untouched server-side.
type MetadataUpdate struct {
	Latitude         *float64 `json:"latitude,omitempty"`
	Longitude        *float64 `json:"longitude,omitempty"`
	DateTimeOriginal *string  `json:"dateTimeOriginal,omitempty"`
	Description      *string  `json:"description,omitempty"`
}

// IsEmpty reports whether the update would change nothing.
func (u MetadataUpdate) IsEmpty() bool {
	return u.Latitude == nil && u.Longitude == nil && u.DateTimeOriginal == nil && u.Description == nil
}

// UploadResult is the server's response to an asset upload.
type UploadResult struct {
	ID        string `json:"id"`
	Duplicate bool   `json:"duplicate"`
}
