package cache

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// PageToken is the opaque continuation handed out with a slice.
type PageToken struct {
	LearnerID string `json:"learner"`
	Version   uint64 `json:"version"`
	Start     int    `json:"start"`
	Span      int    `json:"span"`
}

func EncodePageToken(t PageToken) string {
	raw, _ := json.Marshal(t)
	return base64.RawURLEncoding.EncodeToString(raw)
}

func DecodePageToken(s string) (PageToken, error) {
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return PageToken{}, fmt.Errorf("%w: %v", ErrInvalidPageToken, err)
	}
	var t PageToken
	if err := json.Unmarshal(raw, &t); err != nil {
		return PageToken{}, fmt.Errorf("%w: %v", ErrInvalidPageToken, err)
	}
	if t.LearnerID == "" || t.Start < 0 || t.Start > MaxSliceDay || t.Span <= 0 || t.Span > MaxSliceDay {
		return PageToken{}, ErrInvalidPageToken
	}
	return t, nil
}
