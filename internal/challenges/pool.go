package challenges

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"strings"
)

//go:embed defaults.json
var defaultsJSON []byte

const (
	defaultPoints    = 100
	defaultTimeLimit = 30 // seconds
)

// definition mirrors the challenge file format. Points and TimeLimit are
// pointers so an absent field can be told apart from an explicit zero.
type definition struct {
	Type        string         `json:"type"`
	Question    string         `json:"question"`
	Description string         `json:"description"`
	Answer      string         `json:"answer"`
	Options     []string       `json:"options"`
	Points      *int           `json:"points"`
	TimeLimit   *int           `json:"time_limit"`
	Config      map[string]any `json:"config"`
}

func fromDefinition(def definition) Challenge {
	c := Challenge{
		Kind:        KindQuiz,
		Question:    def.Question,
		Description: def.Description,
		Answer:      strings.ToLower(def.Answer),
		Options:     def.Options,
		Points:      defaultPoints,
		TimeLimit:   defaultTimeLimit,
		Config:      def.Config,
	}
	if def.Type != "" {
		c.Kind = Kind(def.Type)
	}
	if def.Points != nil {
		c.Points = *def.Points
	}
	if def.TimeLimit != nil {
		c.TimeLimit = *def.TimeLimit
	}
	return c
}

// Parse decodes a JSON array of challenge definitions.
func Parse(data []byte) ([]Challenge, error) {
	var defs []definition
	if err := json.Unmarshal(data, &defs); err != nil {
		return nil, fmt.Errorf("decoding challenges: %w", err)
	}

	pool := make([]Challenge, 0, len(defs))
	for _, def := range defs {
		pool = append(pool, fromDefinition(def))
	}
	return pool, nil
}

// LoadFile reads a challenge pool from a JSON file.
func LoadFile(path string) ([]Challenge, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading challenges file: %w", err)
	}
	return Parse(data)
}

// Defaults returns the embedded fallback pool, used when no challenge file
// can be loaded.
func Defaults() []Challenge {
	pool, err := Parse(defaultsJSON)
	if err != nil {
		panic(fmt.Sprintf("embedded defaults.json is invalid: %v", err))
	}
	return pool
}

// Sample draws n challenges from the pool at random, without replacement.
// If n exceeds the pool size the whole pool is returned, shuffled.
func Sample(pool []Challenge, n int) []Challenge {
	if n > len(pool) {
		n = len(pool)
	}
	sample := make([]Challenge, 0, n)
	for _, i := range rand.Perm(len(pool))[:n] {
		sample = append(sample, pool[i])
	}
	return sample
}
