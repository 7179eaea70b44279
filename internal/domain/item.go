package domain

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Variant identifies one of the structurally distinct task formats.
type Variant string

// Supported task variants.
const (
	VariantMultipleChoice Variant = "multiple_choice"
	VariantMultiSelect    Variant = "multi_select"
	VariantCloze          Variant = "cloze"
	VariantMatching       Variant = "matching"
	VariantOrdering       Variant = "ordering"
	VariantTrueFalse      Variant = "true_false"
	VariantSlider         Variant = "slider"
	VariantTextInput      Variant = "text_input"
	VariantWordScramble   Variant = "word_scramble"
	VariantErrorDetection Variant = "error_detection"
	VariantFlashcard      Variant = "flashcard"
)

// Variants lists every supported task variant.
var Variants = []Variant{
	VariantMultipleChoice,
	VariantMultiSelect,
	VariantCloze,
	VariantMatching,
	VariantOrdering,
	VariantTrueFalse,
	VariantSlider,
	VariantTextInput,
	VariantWordScramble,
	VariantErrorDetection,
	VariantFlashcard,
}

// IsValid reports whether v is a known task variant.
func (v Variant) IsValid() bool {
	switch v {
	case VariantMultipleChoice, VariantMultiSelect, VariantCloze,
		VariantMatching, VariantOrdering, VariantTrueFalse,
		VariantSlider, VariantTextInput, VariantWordScramble,
		VariantErrorDetection, VariantFlashcard:
		return true
	default:
		return false
	}
}

// Content item validation errors.
var (
	ErrItemIDEmpty        = errors.New("content item ID cannot be empty")
	ErrItemTopicIDEmpty   = errors.New("content item topic ID cannot be empty")
	ErrItemVariantInvalid = errors.New("content item variant is not recognized")
	ErrItemPayloadEmpty   = errors.New("content item payload cannot be empty")
	ErrItemPayloadInvalid = errors.New("content item payload must be valid JSON")
)

// ContentItem is the immutable definition of one practice unit.
// The payload is stored as JSON so each variant can carry its own
// structure; use DecodePayload to obtain the typed form.
type ContentItem struct {
	ID             uuid.UUID       `json:"id"`
	TopicID        uuid.UUID       `json:"topic_id"`
	LearningPathID uuid.UUID       `json:"learning_path_id"`
	Variant        Variant         `json:"variant"`
	Payload        json.RawMessage `json:"payload"`
	Hint           string          `json:"hint,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// NewContentItem creates a ContentItem with a fresh ID and timestamps.
// Returns an error if validation fails.
func NewContentItem(
	topicID, learningPathID uuid.UUID,
	variant Variant,
	payload json.RawMessage,
	hint string,
) (*ContentItem, error) {
	now := time.Now().UTC()
	item := &ContentItem{
		ID:             uuid.New(),
		TopicID:        topicID,
		LearningPathID: learningPathID,
		Variant:        variant,
		Payload:        payload,
		Hint:           hint,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := item.Validate(); err != nil {
		return nil, err
	}

	return item, nil
}

// Validate checks if the ContentItem has valid data.
func (c *ContentItem) Validate() error {
	if c.ID == uuid.Nil {
		return ErrItemIDEmpty
	}

	if c.TopicID == uuid.Nil {
		return ErrItemTopicIDEmpty
	}

	if !c.Variant.IsValid() {
		return ErrItemVariantInvalid
	}

	if len(c.Payload) == 0 {
		return ErrItemPayloadEmpty
	}

	var js json.RawMessage
	if err := json.Unmarshal(c.Payload, &js); err != nil {
		return ErrItemPayloadInvalid
	}

	return nil
}
