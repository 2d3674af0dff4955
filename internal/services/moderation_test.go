package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Dias221467/Veritas_Network/internal/ai"
	"github.com/Dias221467/Veritas_Network/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsNotApplicable(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		mediaURL string
		want     bool
	}{
		{"personal short", "Happy birthday mom! ❤️", "", true},
		{"media only", "", "/uploads/pic.jpg", true},
		{"media only whitespace", "   ", "/uploads/pic.jpg", true},
		{"contains numerals", "Turnout was 42% this year.", "", false},
		{"contains source word", "Saw this in the news today", "", false},
		{"contains url", "check http://example.com", "", false},
		{"claim vocabulary", "Scientists claim this cures everything", "", false},
		{"long personal text", strings.Repeat("lovely day at the park ", 6), "", false},
		{"medium personal text", "Had such a great time with everyone at the lake house!", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isNotApplicable(tt.content, tt.mediaURL))
		})
	}
}

func TestDisplayTag(t *testing.T) {
	tests := []struct {
		status string
		want   string
	}{
		{"verified", models.TagVerified},
		{"Verified", models.TagVerified},
		{"misleading", models.TagMisleading},
		{"debunked", models.TagFalse},
		{"outdated", models.TagOutdated},
		{"unverified", models.TagUnverified},
		{"not applicable", models.TagNotApplicable},
		{"something else", models.TagUnverified},
		{"", models.TagUnverified},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, displayTag(tt.status), "status %q", tt.status)
	}
}

func TestClampScore(t *testing.T) {
	assert.Equal(t, 0, clampScore(-5))
	assert.Equal(t, 0, clampScore(0))
	assert.Equal(t, 60, clampScore(60))
	assert.Equal(t, 100, clampScore(100))
	assert.Equal(t, 100, clampScore(240))
}

func TestTruncateSummary(t *testing.T) {
	short := "fits fine"
	assert.Equal(t, short, truncateSummary(short))

	long := strings.Repeat("a", maxSummaryLen+50)
	got := truncateSummary(long)
	assert.Len(t, got, maxSummaryLen)
}

func TestAnalyzePostScoreScaling(t *testing.T) {
	tests := []struct {
		status string
		raw    float64
		tag    string
		score  int
	}{
		{"verified", 5, models.TagVerified, 100},
		{"misleading", 3, models.TagMisleading, 60},
		{"outdated", 2, models.TagOutdated, 40},
		{"unverified", 1, models.TagUnverified, 20},
		{"debunked", 0, models.TagFalse, 0},
	}
	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			classifier := &stubClassifier{result: ai.Result{Status: tt.status, Score: &tt.raw, Summary: "s"}}
			verdict := AnalyzePost(context.Background(), classifier, factualClaim, "")
			assert.Equal(t, tt.tag, verdict.Tag)
			require.NotNil(t, verdict.Score)
			assert.Equal(t, tt.score, *verdict.Score)
			require.NotNil(t, verdict.UpdatedAt)
		})
	}
}

func TestAnalyzePostMissingScore(t *testing.T) {
	classifier := &stubClassifier{result: ai.Result{Status: "verified", Summary: "no score supplied"}}
	verdict := AnalyzePost(context.Background(), classifier, factualClaim, "")
	assert.Equal(t, models.TagVerified, verdict.Tag)
	assert.Nil(t, verdict.Score)
}

func TestAnalyzePostFailure(t *testing.T) {
	classifier := &stubClassifier{err: errors.New("boom")}
	verdict := AnalyzePost(context.Background(), classifier, factualClaim, "")
	assert.Equal(t, models.TagPending, verdict.Tag)
	assert.Equal(t, "boom", verdict.Error)
	assert.Nil(t, verdict.Score)
}

func TestAnalyzePostNotApplicableShortCircuits(t *testing.T) {
	classifier := &stubClassifier{err: errors.New("should never be called")}
	verdict := AnalyzePost(context.Background(), classifier, "Miss you all!", "")
	assert.Equal(t, models.TagNotApplicable, verdict.Tag)
	assert.Equal(t, 0, classifier.callCount())
}

func TestNormalizeClientVerdict(t *testing.T) {
	v := NormalizeClientVerdict(models.Verdict{Tag: "Totally Legit", Score: intPtr(500)})
	assert.Equal(t, models.TagUnverified, v.Tag, "unknown tags collapse to Unverified")
	require.NotNil(t, v.Score)
	assert.Equal(t, 100, *v.Score)

	v = NormalizeClientVerdict(models.Verdict{Tag: models.TagFalse, Summary: strings.Repeat("x", 400)})
	assert.Equal(t, models.TagFalse, v.Tag)
	assert.Len(t, v.Summary, maxSummaryLen)
	assert.Nil(t, v.Score)
	require.NotNil(t, v.UpdatedAt)
}
