// Package moderation implements the content-analysis collaborator behind
// the domain.Moderator port. The production deployment can swap in an
// external analyzer; the in-tree engine is a deterministic heuristic.
package moderation

import (
	"context"
	"regexp"
	"strings"

	"github.com/letsettle/letsettle/internal/domain"
)

var (
	spamPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(.)\1{5,}`),
		regexp.MustCompile(`(?i)https?://`),
		regexp.MustCompile(`(?i)\b(buy now|click here|limited time|act now)\b`),
	}

	// Submissions containing these are never auto-published.
	blockedTerms = []string{
		"kill yourself", "nazi", "terrorist",
	}

	stopWords = map[string]bool{
		"best": true, "most": true, "what": true, "which": true, "who": true,
		"the": true, "and": true, "for": true, "with": true, "all": true,
		"time": true, "ever": true, "your": true, "versus": true,
	}
)

// RulesEngine scores submissions with the same heuristics the public
// submission form applies client-side, plus a blocklist.
type RulesEngine struct{}

func NewRulesEngine() RulesEngine {
	return RulesEngine{}
}

func (RulesEngine) Analyze(ctx context.Context, title, description string, options []string) (domain.Review, error) {
	combined := strings.ToLower(strings.Join(append([]string{title, description}, options...), " "))

	for _, term := range blockedTerms {
		if strings.Contains(combined, term) {
			return domain.Review{Status: domain.StatusRejected, Tags: deriveTags(title)}, nil
		}
	}

	for _, pattern := range spamPatterns {
		if pattern.MatchString(combined) {
			// Suspicious but not clearly abusive: hold for an admin.
			return domain.Review{Status: domain.StatusPending, Tags: deriveTags(title)}, nil
		}
	}

	return domain.Review{Status: domain.StatusApproved, Tags: deriveTags(title)}, nil
}

// deriveTags extracts up to five topical labels from the title.
func deriveTags(title string) []string {
	fields := strings.FieldsFunc(strings.ToLower(title), func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	})

	var tags []string
	seen := map[string]bool{}
	for _, word := range fields {
		if len(word) < 3 || stopWords[word] || seen[word] {
			continue
		}
		seen[word] = true
		tags = append(tags, word)
		if len(tags) == 5 {
			break
		}
	}
	return tags
}

var _ domain.Moderator = RulesEngine{}
