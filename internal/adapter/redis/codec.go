package redis

import (
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/Elahizes/spin-wheel/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// spinDocument is the stored form of a spin event. Timestamp is Unix
// milliseconds and doubles as the score in the ordering index.
type spinDocument struct {
	UserID    string `json:"userId"`
	Prize     string `json:"prize,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

func encodeSpin(ev domain.SpinEvent) ([]byte, error) {
	data, err := json.Marshal(spinDocument{
		UserID:    ev.PrincipalID,
		Prize:     ev.PrizeLabel,
		Timestamp: ev.OccurredAt.UnixMilli(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode spin %s: %w", ev.ID, err)
	}
	return data, nil
}

func decodeSpin(id string, raw string) (domain.SpinEvent, error) {
	var doc spinDocument
	if err := json.UnmarshalFromString(raw, &doc); err != nil {
		return domain.SpinEvent{}, fmt.Errorf("failed to decode spin %s: %w", id, err)
	}

	label := doc.Prize
	if label == "" {
		label = domain.NoPrizeLabel
	}
	return domain.SpinEvent{
		ID:          id,
		PrincipalID: doc.UserID,
		PrizeLabel:  label,
		OccurredAt:  time.UnixMilli(doc.Timestamp).UTC(),
	}, nil
}
