package app

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/19tp01/very-terry-game/internal/domain"
)

func unmarshalRecord(raw json.RawMessage, v interface{}) error {
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode record: %w", err)
	}
	return nil
}

func sortSlideshow(photos []*domain.SlideshowPhoto) {
	sort.Slice(photos, func(i, j int) bool {
		if photos[i].UploadedAt != photos[j].UploadedAt {
			return photos[i].UploadedAt < photos[j].UploadedAt
		}
		return photos[i].ID < photos[j].ID
	})
}

func sortPrompts(prompts []*domain.Prompt) {
	sort.Slice(prompts, func(i, j int) bool {
		if prompts[i].CreatedAt != prompts[j].CreatedAt {
			return prompts[i].CreatedAt < prompts[j].CreatedAt
		}
		return prompts[i].ID < prompts[j].ID
	})
}
