package testsupport

import (
	"context"
	"os"
	"sync"

	"dupesweep/internal/services/immich"
)

// FakeService is a scripted immich.Service for tests. Each method delegates
// to its Func field when set and otherwise behaves like a benign server:
// empty listings, successful writes. Calls records every method invocation in
// order.
type FakeService struct {
	mu    sync.Mutex
	Calls []string

	ListDuplicateGroupsFunc   func(ctx context.Context) ([]immich.DuplicateGroup, error)
	GetAssetFunc              func(ctx context.Context, assetID string) (*immich.Asset, error)
	DownloadOriginalFunc      func(ctx context.Context, assetID, destPath string) (int64, error)
	DeleteAssetsFunc          func(ctx context.Context, assetIDs []string, force bool) error
	UpdateAssetMetadataFunc   func(ctx context.Context, assetID string, update immich.MetadataUpdate) error
	ListAlbumsForAssetFunc    func(ctx context.Context, assetID string) ([]immich.Album, error)
	AddAssetsToAlbumFunc      func(ctx context.Context, albumID string, assetIDs []string) error
	RemoveAssetsFromAlbumFunc func(ctx context.Context, albumID string, assetIDs []string) error
}

var _ immich.Service = (*FakeService)(nil)

func (f *FakeService) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, call)
}

// CallCount returns how many recorded calls start with prefix.
func (f *FakeService) CallCount(prefix string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, call := range f.Calls {
		if len(call) >= len(prefix) && call[:len(prefix)] == prefix {
			count++
		}
	}
	return count
}

func (f *FakeService) ListDuplicateGroups(ctx context.Context) ([]immich.DuplicateGroup, error) {
	f.record("ListDuplicateGroups")
	if f.ListDuplicateGroupsFunc != nil {
		return f.ListDuplicateGroupsFunc(ctx)
	}
	return nil, nil
}

func (f *FakeService) GetAsset(ctx context.Context, assetID string) (*immich.Asset, error) {
	f.record("GetAsset " + assetID)
	if f.GetAssetFunc != nil {
		return f.GetAssetFunc(ctx, assetID)
	}
	return &immich.Asset{ID: assetID}, nil
}

func (f *FakeService) DownloadOriginal(ctx context.Context, assetID, destPath string) (int64, error) {
	f.record("DownloadOriginal " + assetID)
	if f.DownloadOriginalFunc != nil {
		return f.DownloadOriginalFunc(ctx, assetID, destPath)
	}
	content := []byte("backup of " + assetID)
	if err := os.WriteFile(destPath, content, 0o644); err != nil {
		return 0, err
	}
	return int64(len(content)), nil
}

func (f *FakeService) DeleteAssets(ctx context.Context, assetIDs []string, force bool) error {
	f.record("DeleteAssets")
	if f.DeleteAssetsFunc != nil {
		return f.DeleteAssetsFunc(ctx, assetIDs, force)
	}
	return nil
}

func (f *FakeService) UpdateAssetMetadata(ctx context.Context, assetID string, update immich.MetadataUpdate) error {
	f.record("UpdateAssetMetadata " + assetID)
	if f.UpdateAssetMetadataFunc != nil {
		return f.UpdateAssetMetadataFunc(ctx, assetID, update)
	}
	return nil
}

func (f *FakeService) ListAlbumsForAsset(ctx context.Context, assetID string) ([]immich.Album, error) {
	f.record("ListAlbumsForAsset " + assetID)
	if f.ListAlbumsForAssetFunc != nil {
		return f.ListAlbumsForAssetFunc(ctx, assetID)
	}
	return nil, nil
}

func (f *FakeService) AddAssetsToAlbum(ctx context.Context, albumID string, assetIDs []string) error {
	f.record("AddAssetsToAlbum " + albumID)
	if f.AddAssetsToAlbumFunc != nil {
		return f.AddAssetsToAlbumFunc(ctx, albumID, assetIDs)
	}
	return nil
}

func (f *FakeService) RemoveAssetsFromAlbum(ctx context.Context, albumID string, assetIDs []string) error {
	f.record("RemoveAssetsFromAlbum " + albumID)
	if f.RemoveAssetsFromAlbumFunc != nil {
		return f.RemoveAssetsFromAlbumFunc(ctx, albumID, assetIDs)
	}
	return nil
}
