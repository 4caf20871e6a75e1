package challenges

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Kind values are used verbatim as the "type" field on the wire.
type Kind string

const (
	KindQuiz   = Kind("quiz")
	KindAction = Kind("action")
	KindTarget = Kind("target")
	KindMemory = Kind("memory")
	KindMath   = Kind("math")
)

// SelfScoring reports whether this kind's clients run a minigame and report
// their own score back as a JSON payload.
func (k Kind) SelfScoring() bool {
	return k == KindTarget || k == KindMemory || k == KindMath
}

// Challenge is one unit of gameplay content. It is immutable once built;
// rooms share read-only references into the pool.
type Challenge struct {
	Kind        Kind
	Question    string
	Description string
	Answer      string // canonical answer, lowercased; quiz only
	Options     []string
	Points      int
	TimeLimit   int // seconds
	Config      map[string]any
}

// scoreReport is the payload self-scoring minigames submit.
type scoreReport struct {
	Score *float64 `json:"score"`
}

// CheckAnswer scores a submitted answer. Self-scoring kinds award exactly
// the reported score, uncapped by Points; a malformed report is simply an
// incorrect answer. Action challenges count any submission as completion.
// Quiz answers match case-insensitively, either verbatim or as a zero-based
// index into Options.
func (c Challenge) CheckAnswer(submitted string) (bool, int) {
	if c.Kind.SelfScoring() {
		var report scoreReport
		if err := json.Unmarshal([]byte(submitted), &report); err != nil || report.Score == nil {
			return false, 0
		}
		return true, int(*report.Score)
	}

	if c.Kind == KindAction {
		return true, c.Points
	}

	if c.Answer == "" {
		return false, 0
	}

	normalized := strings.ToLower(strings.TrimSpace(submitted))
	if normalized == c.Answer {
		return true, c.Points
	}

	if len(c.Options) > 0 {
		index, err := strconv.Atoi(normalized)
		if err == nil && index >= 0 && index < len(c.Options) {
			if strings.ToLower(c.Options[index]) == c.Answer {
				return true, c.Points
			}
			return false, 0
		}
	}

	return false, 0
}

// RenderAnswer converts a stored answer into its display form. Self-scoring
// answers show the reported score instead of the raw payload, falling back
// to a generic completion marker when the payload can't be parsed.
func (c Challenge) RenderAnswer(stored string) string {
	if !c.Kind.SelfScoring() {
		return stored
	}
	var report scoreReport
	if err := json.Unmarshal([]byte(stored), &report); err != nil || report.Score == nil {
		return "Completed"
	}
	return fmt.Sprintf("Score: %d", int(*report.Score))
}

// Payload is the client-facing view of a challenge. The canonical answer is
// never included.
type Payload struct {
	Type        Kind           `json:"type"`
	Points      int            `json:"points"`
	TimeLimit   int            `json:"time_limit"`
	Question    string         `json:"question,omitempty"`
	Options     []string       `json:"options,omitempty"`
	Description string         `json:"description,omitempty"`
	Config      map[string]any `json:"config,omitempty"`
}

func (c Challenge) Payload() Payload {
	p := Payload{
		Type:      c.Kind,
		Points:    c.Points,
		TimeLimit: c.TimeLimit,
	}

	switch {
	case c.Kind == KindQuiz:
		p.Question = c.Question
		p.Options = c.Options
	case c.Kind.SelfScoring():
		p.Description = c.Description
		p.Config = c.Config
	default:
		p.Description = c.Description
	}

	return p
}
