package alerting

import (
	"bytes"
	"encoding/json"
	"fmt"

	"radmon/internal/domain"
)

// Criteria is the subscription predicate stored as JSONB. Either field
// may be absent; a present threshold of 0 still participates in
// matching, which is why Threshold is a pointer.
type Criteria struct {
	Levels    []string `json:"levels,omitempty"`
	Threshold *float64 `json:"threshold,omitempty"`
}

// ParseCriteria decodes a subscription's raw criteria. A missing or
// JSON-null criteria parses to nil, which never matches.
func ParseCriteria(raw json.RawMessage) (*Criteria, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	var c Criteria
	if err := json.Unmarshal(trimmed, &c); err != nil {
		return nil, fmt.Errorf("failed to parse criteria: %w", err)
	}

	return &c, nil
}

// Matches reports whether an alert with the given level and normalized
// µSv/h value satisfies the criteria. The two conditions are OR-ed: a
// subscription fires when the level is listed or the value reaches its
// threshold. Nil criteria never matches.
func (c *Criteria) Matches(level domain.AlertLevel, value float64) bool {
	if c == nil {
		return false
	}

	for _, l := range c.Levels {
		if domain.AlertLevel(l) == level {
			return true
		}
	}

	if c.Threshold != nil && value >= *c.Threshold {
		return true
	}

	return false
}
