package assets

import (
	"context"
	"encoding/hex"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"colabdraw/core/codec"
	"colabdraw/core/errors"

	"github.com/zeebo/blake3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultMimeType is reported for assets stored without a mime type.
const DefaultMimeType = "application/octet-stream"

// BlobStore is the subset of storage.Blobs used by the service.
type BlobStore interface {
	CreateFile(ctx context.Context, key string, data []byte) error
	DownloadURL(ctx context.Context, key string) (*url.URL, error)
}

// Item is an encoded asset ready for upload.
type Item struct {
	ID      string `json:"id"`
	Payload []byte `json:"data"`
}

// Asset is a decoded binary file.
type Asset struct {
	ID       string `json:"id"`
	MimeType string `json:"mimeType"`
	Data     []byte `json:"data"`
	// Created and LastRetrieved are epoch milliseconds.
	Created       int64 `json:"created"`
	LastRetrieved int64 `json:"lastRetrieved"`
}

// SaveResult partitions the ids of an upload batch. Every input id appears in
// exactly one of the two lists.
type SaveResult struct {
	Saved   []string `json:"saved"`
	Errored []string `json:"errored"`
}

// Err returns an errors.ErrPartialBatch error when any item failed.
func (r SaveResult) Err() error {
	if len(r.Errored) == 0 {
		return nil
	}
	return errors.Mark(
		errors.Newf("%d of %d assets failed to upload", len(r.Errored), len(r.Saved)+len(r.Errored)),
		errors.ErrPartialBatch,
	)
}

// LoadResult partitions the ids of a download batch.
type LoadResult struct {
	Loaded  []Asset         `json:"loaded"`
	Errored map[string]bool `json:"errored"`
}

// Service uploads and downloads encrypted assets.
type Service struct {
	blobs  BlobStore
	client *http.Client
	cfg    Config
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates a new asset service. A nil client uses http.DefaultClient.
func NewService(blobs BlobStore, client *http.Client, cfg Config, logger *zap.Logger) *Service {
	if client == nil {
		client = http.DefaultClient
	}
	return &Service{
		blobs:  blobs,
		client: client,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// key builds the object key of id under prefix. Ids are single path
// segments and prefixes may not climb out of the bucket root, so a key never
// escapes its prefix.
func (s *Service) key(prefix, id string) (string, error) {
	switch {
	case id == "":
		return "", errors.Wrap(errors.ErrInvalidRequest, "asset id is empty")
	case id == "." || id == ".." || strings.ContainsAny(id, `/\`):
		return "", errors.Wrapf(errors.ErrInvalidRequest, "asset id %q is not a single path segment", id)
	}
	if prefix == "" {
		prefix = s.cfg.Prefix
	}
	if strings.HasPrefix(prefix, "/") || strings.Contains(prefix, `\`) {
		return "", errors.Wrapf(errors.ErrInvalidRequest, "prefix %q must be a relative path", prefix)
	}
	for _, seg := range strings.Split(prefix, "/") {
		if seg == ".." {
			return "", errors.Wrapf(errors.ErrInvalidRequest, "prefix %q climbs out of the bucket", prefix)
		}
	}
	return path.Join(prefix, id), nil
}

func (s *Service) group(ctx context.Context) (*errgroup.Group, context.Context) {
	g, gctx := errgroup.WithContext(ctx)
	if s.cfg.Concurrency > 0 {
		g.SetLimit(s.cfg.Concurrency)
	}
	return g, gctx
}

// SaveAssets uploads items concurrently under prefix. An item that already
// exists counts as saved. Failures never abort the rest of the batch.
func (s *Service) SaveAssets(ctx context.Context, prefix string, items []Item) SaveResult {
	errs := make([]error, len(items))
	g, gctx := s.group(ctx)
	for i, item := range items {
		g.Go(func() error {
			key, err := s.key(prefix, item.ID)
			if err != nil {
				errs[i] = err
				return nil
			}
			err = s.blobs.CreateFile(gctx, key, item.Payload)
			if err != nil && !errors.Is(err, errors.ErrConflict) {
				errs[i] = err
			}
			return nil
		})
	}
	_ = g.Wait()

	result := SaveResult{Saved: []string{}, Errored: []string{}}
	for i, item := range items {
		if errs[i] != nil {
			s.logger.Error("Asset upload failed", zap.String("id", item.ID), zap.Error(errs[i]))
			result.Errored = append(result.Errored, item.ID)
			continue
		}
		result.Saved = append(result.Saved, item.ID)
	}
	return result
}

// LoadAssets downloads and decodes the assets named by ids. Duplicate ids are
// fetched once; Loaded follows the order in which ids first appear.
func (s *Service) LoadAssets(ctx context.Context, prefix string, ids []string, roomKey string) LoadResult {
	unique := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	assets := make([]*Asset, len(unique))
	errs := make([]error, len(unique))
	g, gctx := s.group(ctx)
	for i, id := range unique {
		g.Go(func() error {
			assets[i], errs[i] = s.loadAsset(gctx, prefix, id, roomKey)
			return nil
		})
	}
	_ = g.Wait()

	result := LoadResult{Loaded: []Asset{}, Errored: map[string]bool{}}
	for i, id := range unique {
		if errs[i] != nil {
			s.logger.Warn("Asset download failed", zap.String("id", id), zap.Error(errs[i]))
			result.Errored[id] = true
			continue
		}
		result.Loaded = append(result.Loaded, *assets[i])
	}
	return result
}

func (s *Service) loadAsset(ctx context.Context, prefix, id, roomKey string) (*Asset, error) {
	key, err := s.key(prefix, id)
	if err != nil {
		return nil, err
	}
	u, err := s.blobs.DownloadURL(ctx, key)
	if err != nil {
		return nil, err
	}
	blob, err := s.download(ctx, u)
	if err != nil {
		return nil, err
	}
	data, meta, err := codec.DecodeAsset(roomKey, blob)
	if err != nil {
		return nil, err
	}

	asset := &Asset{ID: id, MimeType: meta.MimeType, Data: data}
	if asset.MimeType == "" {
		asset.MimeType = DefaultMimeType
	}
	now := s.now().UnixMilli()
	asset.Created, asset.LastRetrieved = now, now
	if meta.Created > 0 {
		asset.Created, asset.LastRetrieved = meta.Created, meta.Created
	}
	return asset, nil
}

func (s *Service) download(ctx context.Context, u *url.URL) ([]byte, error) {
	if s.cfg.DownloadTimeoutSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(s.cfg.DownloadTimeoutSeconds)*time.Second)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "build download request")
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, errors.Persistence(err, "download asset")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		_, _ = io.Copy(io.Discard, resp.Body)
		err := errors.Newf("download returned status %d", resp.StatusCode)
		if resp.StatusCode == http.StatusNotFound {
			return nil, errors.Mark(err, errors.ErrNotFound)
		}
		return nil, errors.Persistence(err, "download asset")
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Persistence(err, "read asset body")
	}
	return body, nil
}

// EncodeAsset compresses and encrypts asset for upload. An empty ID is
// replaced by the hex BLAKE3 digest of the raw data.
func EncodeAsset(roomKey string, asset Asset) (Item, error) {
	id := asset.ID
	if id == "" {
		sum := blake3.Sum256(asset.Data)
		id = hex.EncodeToString(sum[:])
	}
	payload, err := codec.EncodeAsset(roomKey, asset.Data, codec.AssetMetadata{
		MimeType: asset.MimeType,
		Created:  asset.Created,
	})
	if err != nil {
		return Item{}, err
	}
	return Item{ID: id, Payload: payload}, nil
}
