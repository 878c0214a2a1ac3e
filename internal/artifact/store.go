// Package artifact uploads generated images and records them in the moodboard
// history.
package artifact

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"adstudio/internal/domain"
	"adstudio/internal/infra"
)

// LinkTTL is how long generated image URLs stay valid.
const LinkTTL = 7 * 24 * time.Hour

const imageContentType = "image/png"

// BlobStore holds image bytes and issues time-limited read URLs.
type BlobStore interface {
	Put(ctx context.Context, bucket, key string, data []byte, contentType string) error
	PresignGet(ctx context.Context, bucket, key string, ttl time.Duration) (string, error)
}

type Options struct {
	Blobs      BlobStore
	Repository domain.MoodboardRepository
	Logger     *infra.Logger
	Now        func() time.Time
	NewID      func() string
}

type Store struct {
	blobs  BlobStore
	repo   domain.MoodboardRepository
	logger zerolog.Logger
	now    func() time.Time
	newID  func() string
}

func NewStore(opts Options) (*Store, error) {
	if opts.Blobs == nil {
		return nil, errors.New("artifact: blob store is required")
	}
	if opts.Repository == nil {
		return nil, errors.New("artifact: repository is required")
	}
	s := &Store{
		blobs:  opts.Blobs,
		repo:   opts.Repository,
		logger: zerolog.Nop(),
		now:    opts.Now,
		newID:  opts.NewID,
	}
	if opts.Logger != nil {
		s.logger = *opts.Logger
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = newRecordID
	}
	return s, nil
}

// newRecordID returns a random UUID as 32 hex characters.
func newRecordID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

// UploadAndLink stores data (unless exists is set) and returns a presigned URL
// valid for LinkTTL. Failures are logged and yield an empty URL so the record
// can still be written without a link.
func (s *Store) UploadAndLink(ctx context.Context, data []byte, key, bucket string, exists bool) string {
	if !exists {
		if err := s.blobs.Put(ctx, bucket, key, data, imageContentType); err != nil {
			s.logger.Error().Err(err).Str("bucket", bucket).Str("key", key).Msg("artifact: image upload failed")
			return ""
		}
	}
	url, err := s.blobs.PresignGet(ctx, bucket, key, LinkTTL)
	if err != nil {
		s.logger.Error().Err(err).Str("bucket", bucket).Str("key", key).Msg("artifact: presign failed")
		return ""
	}
	return url
}

// SaveImageInput carries everything recorded about one generated image.
type SaveImageInput struct {
	MoodboardID string
	Prompt      string
	FullPrompt  string
	Original    string
	Thumbnail   string
	PartType    string
	Bucket      string
	Key         string
	AssetType   string
	Style       string
}

// SaveImage writes a history record under a freshly minted id. Identical
// inputs always produce distinct records.
func (s *Store) SaveImage(ctx context.Context, in SaveImageInput) (domain.GeneratedAsset, error) {
	asset := domain.GeneratedAsset{
		ID:            s.newID(),
		MoodboardID:   in.MoodboardID,
		FullPrompt:    in.FullPrompt,
		Prompt:        in.Prompt,
		GeneratedDate: s.now().Format(time.DateOnly),
		Original:      in.Original,
		Thumbnail:     in.Thumbnail,
		PartType:      in.PartType,
		Bucket:        in.Bucket,
		Key:           in.Key,
		AssetType:     in.AssetType,
		Style:         in.Style,
	}
	if err := s.repo.Put(ctx, asset); err != nil {
		if errors.Is(err, domain.ErrPersistence) {
			return domain.GeneratedAsset{}, err
		}
		return domain.GeneratedAsset{}, fmt.Errorf("artifact: save image %s: %w: %w", asset.ID, domain.ErrPersistence, err)
	}
	return asset, nil
}
