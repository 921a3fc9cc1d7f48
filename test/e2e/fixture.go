package e2e

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/abelbrown/moments/internal/model"
	"github.com/abelbrown/moments/internal/store"
)

func seedFixtureDB(homeDir string) error {
	dataDir := filepath.Join(homeDir, ".moments")
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return err
	}
	dbPath := filepath.Join(dataDir, "moments.db")
	st, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := context.Background()
	u, err := st.SaveUser(ctx, store.User{ID: "u-fixture", Name: "fixture"})
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	moments := []model.Moment{
		{
			ID:        "moment-1",
			AuthorID:  u.ID,
			Caption:   "Fixture moment one",
			MediaKind: model.MediaImage,
			MediaURL:  "https://example.com/one.jpg",
			CreatedAt: now.Add(-10 * time.Minute),
		},
		{
			ID:        "moment-2",
			AuthorID:  u.ID,
			Caption:   "Fixture moment two",
			MediaKind: model.MediaVideo,
			MediaURL:  "https://example.com/two.mp4",
			CreatedAt: now.Add(-20 * time.Minute),
		},
	}
	for _, m := range moments {
		if _, err := st.SaveMoment(ctx, m); err != nil {
			return err
		}
	}
	return nil
}
