package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const (
	originalsPrefix = "originals/"
	thumbsPrefix    = "thumbs/"
	libraryURLTTL   = time.Hour
)

// LibraryAsset is one curated image with its thumbnail.
type LibraryAsset struct {
	Original  string `json:"original"`
	Thumbnail string `json:"thumbnail"`
	Bucket    string `json:"s3ObjectBucket"`
	Key       string `json:"s3ObjectKey"`
}

// Library lists the curated originals of an assets bucket.
type Library struct {
	store  *S3Store
	bucket string
}

func NewLibrary(store *S3Store, bucket string) *Library {
	return &Library{store: store, bucket: bucket}
}

func (l *Library) Bucket() string { return l.bucket }

// List presigns every object under originals/ together with its thumbs/
// counterpart. Key reports the thumbnail key.
func (l *Library) List(ctx context.Context) ([]LibraryAsset, error) {
	paginator := s3.NewListObjectsV2Paginator(l.store.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(l.bucket),
		Prefix: aws.String(originalsPrefix),
	})

	assets := []LibraryAsset{}
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("storage: list %s: %w", l.bucket, err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			thumbKey := strings.Replace(key, originalsPrefix, thumbsPrefix, 1)

			original, err := l.store.PresignGet(ctx, l.bucket, key, libraryURLTTL)
			if err != nil {
				return nil, err
			}
			thumbnail, err := l.store.PresignGet(ctx, l.bucket, thumbKey, libraryURLTTL)
			if err != nil {
				return nil, err
			}
			assets = append(assets, LibraryAsset{
				Original:  original,
				Thumbnail: thumbnail,
				Bucket:    l.bucket,
				Key:       thumbKey,
			})
		}
	}
	return assets, nil
}
