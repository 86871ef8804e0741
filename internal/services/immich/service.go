package immich

import "context"

// Service is the remote-service surface the analysis and execution pipeline
// call through. Client implements it against a live Immich server; tests
// substitute fakes.
type Service interface {
	ListDuplicateGroups(ctx context.Context) ([]DuplicateGroup, error)
	GetAsset(ctx context.Context, assetID string) (*Asset, error)
	// DownloadOriginal streams the asset's original file to destPath and
	// returns the number of bytes written. The body is never buffered whole.
	DownloadOriginal(ctx context.Context, assetID, destPath string) (int64, error)
	DeleteAssets(ctx context.Context, assetIDs []string, force bool) error
	UpdateAssetMetadata(ctx context.Context, assetID string, update MetadataUpdate) error
	ListAlbumsForAsset(ctx context.Context, assetID string) ([]Album, error)
	AddAssetsToAlbum(ctx context.Context, albumID string, assetIDs []string) error
	RemoveAssetsFromAlbum(ctx context.Context, albumID string, assetIDs []string) error
}
