package cmd

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"time"

	"colabdraw/core/storage"
	"colabdraw/feature/assets"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	assetsRoomKey string
	assetsPrefix  string
	assetsOutDir  string
)

// assetsCmd is the parent command for asset operations.
var assetsCmd = &cobra.Command{
	Use:   "assets",
	Short: "Upload or download encrypted binary assets",
}

// assetsUploadCmd encrypts local files and uploads them.
var assetsUploadCmd = &cobra.Command{
	Use:   "upload <file>...",
	Short: "Encrypt and upload files; ids are content hashes",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, logg, err := newAssetService()
		if err != nil {
			return err
		}

		items := make([]assets.Item, 0, len(args))
		names := make(map[string]string, len(args))
		for _, path := range args {
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}
			mimeType := mime.TypeByExtension(filepath.Ext(path))
			item, err := assets.EncodeAsset(assetsRoomKey, assets.Asset{
				MimeType: mimeType,
				Data:     data,
				Created:  time.Now().UnixMilli(),
			})
			if err != nil {
				return fmt.Errorf("failed to encode %s: %w", path, err)
			}
			items = append(items, item)
			names[item.ID] = path
		}

		result := svc.SaveAssets(cmd.Context(), assetsPrefix, items)
		for _, id := range result.Saved {
			fmt.Printf("%s\t%s\n", id, names[id])
		}
		logg.Info("Asset upload finished", zap.Int("saved", len(result.Saved)), zap.Int("errored", len(result.Errored)))
		return result.Err()
	},
}

// assetsDownloadCmd downloads and decrypts assets into a directory.
var assetsDownloadCmd = &cobra.Command{
	Use:   "download <id>...",
	Short: "Download and decrypt assets by id",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, logg, err := newAssetService()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(assetsOutDir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", assetsOutDir, err)
		}

		result := svc.LoadAssets(cmd.Context(), assetsPrefix, args, assetsRoomKey)
		for _, asset := range result.Loaded {
			name := asset.ID
			if exts, _ := mime.ExtensionsByType(asset.MimeType); len(exts) > 0 {
				name += exts[0]
			}
			path := filepath.Join(assetsOutDir, name)
			if err := os.WriteFile(path, asset.Data, 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", path, err)
			}
			fmt.Printf("%s\t%s\n", asset.ID, path)
		}
		for id := range result.Errored {
			logg.Warn("Asset could not be loaded", zap.String("id", id))
		}
		logg.Info("Asset download finished", zap.Int("loaded", len(result.Loaded)), zap.Int("errored", len(result.Errored)))
		if len(result.Errored) > 0 {
			return fmt.Errorf("%d of %d assets failed to download", len(result.Errored), len(result.Errored)+len(result.Loaded))
		}
		return nil
	},
}

func newAssetService() (*assets.Service, *zap.Logger, error) {
	cfg, logg, err := bootstrap()
	if err != nil {
		return nil, nil, err
	}
	client, err := storage.NewClient(cfg.Storage)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	blobs := storage.NewBlobs(client, cfg.Storage.Bucket, time.Duration(cfg.Storage.PresignSeconds)*time.Second)
	return assets.NewService(blobs, nil, cfg.Assets, logg), logg, nil
}

func init() {
	RootCmd.AddCommand(assetsCmd)
	assetsCmd.AddCommand(assetsUploadCmd, assetsDownloadCmd)

	assetsCmd.PersistentFlags().StringVar(&assetsRoomKey, "key", "", "Room encryption key")
	assetsCmd.PersistentFlags().StringVar(&assetsPrefix, "prefix", "", "Object key prefix (defaults to ASSETS_PREFIX)")
	assetsDownloadCmd.Flags().StringVarP(&assetsOutDir, "out", "o", ".", "Directory to write downloaded files to")
	_ = assetsCmd.MarkPersistentFlagRequired("key")
}
