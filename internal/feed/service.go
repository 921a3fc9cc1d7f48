package feed

import (
	"context"

	"github.com/abelbrown/moments/internal/model"
)

// Service is the feed data service the controller consumes. Implemented by
// the REST client and by the local store.
type Service interface {
	// FetchSlides returns the page of target's feed after cursor.
	FetchSlides(ctx context.Context, target string, cursor model.Cursor, size int) (model.Page[model.Slide], error)
	// FetchStoryMoments returns the page of a story's moments after cursor.
	FetchStoryMoments(ctx context.Context, storyID string, cursor model.Cursor, size int) (model.Page[model.Moment], error)
	// React adds one emoji reaction and returns the updated moment.
	React(ctx context.Context, momentID, emoji string) (model.Moment, error)
	// DeleteMoment removes a moment.
	DeleteMoment(ctx context.Context, momentID string) error
}
