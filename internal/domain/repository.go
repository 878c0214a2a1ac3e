package domain

import "context"

// MoodboardRepository persists generated image records. Put is a single
// all-or-nothing write.
type MoodboardRepository interface {
	Put(ctx context.Context, asset GeneratedAsset) error
	ListByMoodboard(ctx context.Context, moodboardID string) ([]GeneratedAsset, error)
}
