package api

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lingora/practice-api/internal/domain"
	"github.com/lingora/practice-api/internal/domain/session"
)

// CreateSessionRequest is the payload for creating a practice session.
type CreateSessionRequest struct {
	TopicID         uuid.UUID   `json:"topic_id"          validate:"required"`
	LearningPathIDs []uuid.UUID `json:"learning_path_ids"`
	TargetCount     int         `json:"target_count"      validate:"required,gt=0"`
	IncludeReview   bool        `json:"include_review"`
}

// SubmitAnswerRequest is the payload for answering the current task.
// Answer carries the variant-specific submission shape and is decoded
// by the evaluation engine, not here.
type SubmitAnswerRequest struct {
	Answer    json.RawMessage `json:"answer"     validate:"required"`
	ElapsedMs int64           `json:"elapsed_ms" validate:"gte=0"`
}

// TaskView presents the current task to the learner. Content carries
// the variant-specific view with answer keys stripped; Hint is present
// only while the learner has it toggled visible.
type TaskView struct {
	TaskID  uuid.UUID `json:"task_id"`
	Index   int       `json:"index"`
	Total   int       `json:"total"`
	Variant string    `json:"variant"`
	Content any       `json:"content"`
	Hint    string    `json:"hint,omitempty"`
}

// ResultView presents the graded outcome of one submission.
type ResultView struct {
	Correct         bool                `json:"correct"`
	Score           float64             `json:"score"`
	CanonicalAnswer CanonicalAnswerView `json:"canonical_answer"`
	TimeSpentMs     int64               `json:"time_spent_ms"`
}

// CanonicalAnswerView is the display form of the right answer.
type CanonicalAnswerView struct {
	Display string `json:"display"`
	Value   any    `json:"value,omitempty"`
}

// VariantBreakdownView is one variant's slice of the session results.
type VariantBreakdownView struct {
	Completed int `json:"completed"`
	Correct   int `json:"correct"`
}

// ResultsView presents the final session results.
type ResultsView struct {
	Accuracy      float64                         `json:"accuracy"`
	AverageTimeMs int64                           `json:"average_time_ms"`
	PerVariant    map[string]VariantBreakdownView `json:"per_variant"`
}

// SessionResponse is the full session view returned by every session
// endpoint.
type SessionResponse struct {
	ID             uuid.UUID    `json:"id"`
	Status         string       `json:"status"`
	TaskCount      int          `json:"task_count"`
	CompletedCount int          `json:"completed_count"`
	CorrectCount   int          `json:"correct_count"`
	StartedAt      *time.Time   `json:"started_at,omitempty"`
	CompletedAt    *time.Time   `json:"completed_at,omitempty"`
	MicroState     string       `json:"micro_state,omitempty"`
	HintVisible    bool         `json:"hint_visible"`
	CurrentTask    *TaskView    `json:"current_task,omitempty"`
	LastResult     *ResultView  `json:"last_result,omitempty"`
	Results        *ResultsView `json:"results,omitempty"`
}

// Per-variant task content views. Fields that would give the answer
// away (correct option IDs, targets, canonical orders) never appear.
type (
	// ChoiceContent serves multiple choice and multi select tasks.
	ChoiceContent struct {
		Prompt  string          `json:"prompt"`
		Options []domain.Option `json:"options"`
	}

	// ClozeContent carries the gapped text and how many blanks to fill.
	ClozeContent struct {
		Text       string `json:"text"`
		BlankCount int    `json:"blank_count"`
	}

	// MatchingContent lists both columns without revealing the pairing.
	MatchingContent struct {
		Prompt string          `json:"prompt,omitempty"`
		Left   []domain.Option `json:"left"`
		Right  []domain.Option `json:"right"`
	}

	// OrderingContent lists the items in their stored (scrambled) order.
	OrderingContent struct {
		Prompt string          `json:"prompt,omitempty"`
		Items  []domain.Option `json:"items"`
	}

	// StatementContent serves true/false tasks.
	StatementContent struct {
		Statement string `json:"statement"`
	}

	// SliderContent exposes the scale but not the target.
	SliderContent struct {
		Prompt string  `json:"prompt"`
		Min    float64 `json:"min"`
		Max    float64 `json:"max"`
		Unit   string  `json:"unit,omitempty"`
	}

	// PromptContent serves free-text tasks.
	PromptContent struct {
		Prompt string `json:"prompt"`
	}

	// ScrambleContent serves word scramble tasks.
	ScrambleContent struct {
		Scrambled string `json:"scrambled"`
	}

	// SpanContent serves error detection tasks.
	SpanContent struct {
		Prompt string        `json:"prompt,omitempty"`
		Spans  []domain.Span `json:"spans"`
	}

	// FlashcardContent shows the front face; the back arrives as the
	// canonical answer after the self-assessment.
	FlashcardContent struct {
		Front    string `json:"front"`
		AudioURL string `json:"audio_url,omitempty"`
	}
)

// NewTaskView builds the learner-facing view of a content item.
func NewTaskView(item *domain.ContentItem, index, total int, hintVisible bool) (*TaskView, error) {
	content, err := taskContent(item)
	if err != nil {
		return nil, err
	}

	view := &TaskView{
		TaskID:  item.ID,
		Index:   index,
		Total:   total,
		Variant: string(item.Variant),
		Content: content,
	}
	if hintVisible {
		view.Hint = item.Hint
	}
	return view, nil
}

// taskContent strips the answer key out of the item payload.
func taskContent(item *domain.ContentItem) (any, error) {
	payload, err := item.DecodePayload()
	if err != nil {
		return nil, err
	}

	switch p := payload.(type) {
	case *domain.MultipleChoicePayload:
		return ChoiceContent{Prompt: p.Prompt, Options: p.Options}, nil
	case *domain.MultiSelectPayload:
		return ChoiceContent{Prompt: p.Prompt, Options: p.Options}, nil
	case *domain.ClozePayload:
		return ClozeContent{Text: p.Text, BlankCount: len(p.Blanks)}, nil
	case *domain.MatchingPayload:
		left := make([]domain.Option, len(p.Pairs))
		right := make([]domain.Option, len(p.Pairs))
		for i, pair := range p.Pairs {
			left[i] = domain.Option{ID: pair.LeftID, Text: pair.LeftText}
			right[i] = domain.Option{ID: pair.RightID, Text: pair.RightText}
		}
		return MatchingContent{Prompt: p.Prompt, Left: left, Right: right}, nil
	case *domain.OrderingPayload:
		return OrderingContent{Prompt: p.Prompt, Items: p.Items}, nil
	case *domain.TrueFalsePayload:
		return StatementContent{Statement: p.Statement}, nil
	case *domain.SliderPayload:
		return SliderContent{Prompt: p.Prompt, Min: p.Min, Max: p.Max, Unit: p.Unit}, nil
	case *domain.TextInputPayload:
		return PromptContent{Prompt: p.Prompt}, nil
	case *domain.WordScramblePayload:
		return ScrambleContent{Scrambled: p.Scrambled}, nil
	case *domain.ErrorDetectionPayload:
		return SpanContent{Prompt: p.Prompt, Spans: p.Spans}, nil
	case *domain.FlashcardPayload:
		return FlashcardContent{Front: p.Front, AudioURL: p.AudioURL}, nil
	default:
		return nil, fmt.Errorf("no task view for payload type %T", payload)
	}
}

// NewSessionResponse builds the response for a session snapshot,
// optionally including the presented task.
func NewSessionResponse(snapshot session.Snapshot, currentItem *domain.ContentItem) (SessionResponse, error) {
	s := snapshot.Session
	resp := SessionResponse{
		ID:             s.ID,
		Status:         string(s.Execution.Status),
		TaskCount:      len(s.Execution.TaskIDs),
		CompletedCount: s.Execution.CompletedCount,
		CorrectCount:   s.Execution.CorrectCount,
		MicroState:     string(snapshot.MicroState),
		HintVisible:    snapshot.HintVisible,
	}

	if !s.Execution.StartedAt.IsZero() {
		startedAt := s.Execution.StartedAt
		resp.StartedAt = &startedAt
	}
	if !s.Execution.CompletedAt.IsZero() {
		completedAt := s.Execution.CompletedAt
		resp.CompletedAt = &completedAt
	}

	if snapshot.LastResult != nil {
		resp.LastResult = &ResultView{
			Correct: snapshot.LastResult.Correct,
			Score:   snapshot.LastResult.Score,
			CanonicalAnswer: CanonicalAnswerView{
				Display: snapshot.LastResult.Canonical.Display,
				Value:   snapshot.LastResult.Canonical.Value,
			},
			TimeSpentMs: snapshot.LastResult.TimeSpentMs,
		}
	}

	if s.Results != nil {
		perVariant := make(map[string]VariantBreakdownView, len(s.Results.PerVariant))
		for variant, breakdown := range s.Results.PerVariant {
			perVariant[string(variant)] = VariantBreakdownView{
				Completed: breakdown.Completed,
				Correct:   breakdown.Correct,
			}
		}
		resp.Results = &ResultsView{
			Accuracy:      s.Results.Accuracy,
			AverageTimeMs: s.Results.AverageTimeMs,
			PerVariant:    perVariant,
		}
	}

	if currentItem != nil {
		task, err := NewTaskView(
			currentItem, snapshot.Cursor, len(s.Execution.TaskIDs), snapshot.HintVisible)
		if err != nil {
			return SessionResponse{}, err
		}
		resp.CurrentTask = task
	}

	return resp, nil
}
