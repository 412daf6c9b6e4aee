package db

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestSaveMentionRule_RejectsEmptyRule(t *testing.T) {
	t.Parallel()

	pool := &Pool{}
	if _, err := pool.SaveMentionRule(context.Background(), nil); err == nil {
		t.Fatalf("nil rule must be rejected")
	}

	rule := &MentionRule{Keywords: json.RawMessage(`[]`)}
	if _, err := pool.SaveMentionRule(context.Background(), rule); err == nil {
		t.Fatalf("rule without base URL or keywords must be rejected")
	}
}

func TestSaveMentionRule_CapsKeywords(t *testing.T) {
	t.Parallel()

	pool := &Pool{}
	rule := &MentionRule{Keywords: json.RawMessage(`["a","b","c","d"]`)}
	_, err := pool.SaveMentionRule(context.Background(), rule)
	if err == nil {
		t.Fatalf("four keywords must be rejected")
	}
	if !strings.Contains(err.Error(), "at most 3 keywords") {
		t.Fatalf("unexpected error: %v", err)
	}
}
