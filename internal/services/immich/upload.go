package immich

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"dupesweep/internal/services"
)

const restoreDeviceID = "dupesweep-restore"

// Backup files are written as {assetId}_{originalFileName}; uploads strip the
// id prefix so the server sees the original name again.
var backupPrefixPattern = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}_`)

// RestoredFileName strips the backup asset-id prefix from a file name, if
// present.
func RestoredFileName(name string) string {
	return backupPrefixPattern.ReplaceAllString(name, "")
}

// UploadAsset uploads a local file as a new asset. The server deduplicates by
// checksum; Duplicate is true when an identical asset already exists.
func (c *Client) UploadAsset(ctx context.Context, filePath string) (*UploadResult, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, services.Wrap(services.ErrFilesystem, "immich", "upload", filePath, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, services.Wrap(services.ErrFilesystem, "immich", "upload", filePath, err)
	}

	fileName := RestoredFileName(filepath.Base(filePath))
	modTime := info.ModTime().UTC().Format(time.RFC3339)

	var body strings.Builder
	writer := multipart.NewWriter(&body)

	fields := map[string]string{
		"deviceAssetId":  "restore-" + uuid.NewString(),
		"deviceId":       restoreDeviceID,
		"fileCreatedAt":  modTime,
		"fileModifiedAt": modTime,
		"isFavorite":     "false",
	}
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return nil, fmt.Errorf("write upload field %s: %w", name, err)
		}
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="assetData"; filename=%q`, fileName))
	header.Set("Content-Type", contentTypeForFile(fileName))
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("create upload part: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, services.Wrap(services.ErrFilesystem, "immich", "upload", filePath, err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("finish upload body: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/assets", strings.NewReader(body.String()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", fileName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("upload %s: %w", fileName, readAPIError(resp))
	}

	var result UploadResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode upload response for %s: %w", fileName, err)
	}
	return &result, nil
}

// mediaTypes covers the photo and video formats the platform's MIME table
// tends to miss, HEIC in particular.
var mediaTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".heic": "image/heic",
	".heif": "image/heic",
	".mp4":  "video/mp4",
	".mov":  "video/quicktime",
	".avi":  "video/x-msvideo",
	".webm": "video/webm",
}

func contentTypeForFile(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if mt, ok := mediaTypes[ext]; ok {
		return mt
	}
	if mt := mime.TypeByExtension(ext); mt != "" {
		return mt
	}
	return "application/octet-stream"
}

// IsMediaFile reports whether the file name has a known photo or video
// extension.
func IsMediaFile(name string) bool {
	_, ok := mediaTypes[strings.ToLower(filepath.Ext(name))]
	return ok
}
