package moderation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/letsettle/letsettle/internal/domain"
)

func TestRulesEngine_Analyze(t *testing.T) {
	engine := NewRulesEngine()
	ctx := context.Background()

	cases := []struct {
		name       string
		title      string
		desc       string
		options    []string
		wantStatus domain.DebateStatus
	}{
		{
			name:       "clean submission is approved",
			title:      "Who is the greatest footballer?",
			options:    []string{"Messi", "Ronaldo"},
			wantStatus: domain.StatusApproved,
		},
		{
			name:       "blocked term is rejected",
			title:      "Was every nazi punished?",
			options:    []string{"Yes", "No"},
			wantStatus: domain.StatusRejected,
		},
		{
			name:       "blocked term in option is rejected",
			title:      "A perfectly fine debate title",
			options:    []string{"Fine", "terrorist"},
			wantStatus: domain.StatusRejected,
		},
		{
			name:       "spam pattern is held for review",
			title:      "Greatest deal click here today",
			options:    []string{"Yes", "No"},
			wantStatus: domain.StatusPending,
		},
		{
			name:       "url in description is held for review",
			title:      "Who is the greatest footballer?",
			desc:       "See https://example.com",
			options:    []string{"Messi", "Ronaldo"},
			wantStatus: domain.StatusPending,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			review, err := engine.Analyze(ctx, tc.title, tc.desc, tc.options)
			require.NoError(t, err)
			assert.Equal(t, tc.wantStatus, review.Status)
		})
	}
}

func TestDeriveTags(t *testing.T) {
	tags := deriveTags("Who is the best footballer of all time?")
	assert.Equal(t, []string{"footballer"}, tags, "stop words and short words are dropped")

	tags = deriveTags("Pizza burgers sushi tacos ramen curry noodles")
	assert.Len(t, tags, 5, "tags are capped at five")

	tags = deriveTags("Messi messi MESSI")
	assert.Equal(t, []string{"messi"}, tags, "duplicates collapse")

	assert.Empty(t, deriveTags("Is it so?"))
}

func TestAutoApprove(t *testing.T) {
	moderator := NewAutoApprove()

	review, err := moderator.Analyze(context.Background(), "Anything goes here", "", []string{"A", "B"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, review.Status)
}
