package services

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/Dias221467/Veritas_Network/internal/ai"
	"github.com/Dias221467/Veritas_Network/internal/models"
	"github.com/sirupsen/logrus"
)

// Classifier produces a credibility verdict for a piece of text. It may fail
// or time out and is always treated as unreliable.
type Classifier interface {
	Classify(ctx context.Context, text string) (ai.Result, error)
}

const maxSummaryLen = 200

var (
	sourceWords = regexp.MustCompile(`http|source|study|report|news|paper|journal`)
	claimWords  = regexp.MustCompile(`claims?|breaking|cures?|proves?|reveals?|alleg(ed|es)|evidence|research`)
	digits      = regexp.MustCompile(`\d`)
)

// isNotApplicable is the cheap local heuristic that short-circuits the
// external classifier for personal, non-factual content: short text with no
// numerals and no source/claim vocabulary, or media-only posts.
func isNotApplicable(content, mediaURL string) bool {
	text := strings.ToLower(content)
	hasSource := sourceWords.MatchString(text)
	hasClaim := claimWords.MatchString(text)
	hasNumber := digits.MatchString(text)

	if strings.TrimSpace(text) == "" && mediaURL != "" {
		return true
	}
	if len(text) < 40 && !hasSource && !hasClaim && !hasNumber {
		return true
	}
	return !hasSource && !hasClaim && !hasNumber && len(text) < 100
}

// displayTag maps a classifier status to the display tag shown on posts.
func displayTag(status string) string {
	switch strings.ToLower(status) {
	case "verified":
		return models.TagVerified
	case "misleading":
		return models.TagMisleading
	case "debunked":
		return models.TagFalse
	case "outdated":
		return models.TagOutdated
	case "unverified":
		return models.TagUnverified
	case "not applicable":
		return models.TagNotApplicable
	default:
		return models.TagUnverified
	}
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func truncateSummary(summary string) string {
	if len(summary) > maxSummaryLen {
		return summary[:maxSummaryLen]
	}
	return summary
}

// AnalyzePost produces a verdict for post content. It never returns an error:
// classifier failures yield a Pending verdict carrying an internal error note,
// and the caller simply writes whatever comes back.
func AnalyzePost(ctx context.Context, classifier Classifier, content, mediaURL string) models.Verdict {
	now := time.Now()

	if isNotApplicable(content, mediaURL) {
		return models.Verdict{
			Tag:       models.TagNotApplicable,
			Summary:   "Personal update or non-factual content.",
			UpdatedAt: &now,
		}
	}

	res, err := classifier.Classify(ctx, content)
	if err != nil {
		logrus.WithError(err).Warn("Credibility analysis failed")
		return models.Verdict{
			Tag:       models.TagPending,
			UpdatedAt: &now,
			Error:     err.Error(),
		}
	}

	verdict := models.Verdict{
		Tag:       displayTag(res.Status),
		Summary:   truncateSummary(res.Summary),
		UpdatedAt: &now,
	}
	if res.Score != nil {
		// Classifier scores are 0..5; display range is 0..100.
		score := clampScore(int(*res.Score*20 + 0.5))
		verdict.Score = &score
	}
	return verdict
}

// NormalizeClientVerdict sanitizes a verdict supplied by a trusted client:
// unknown tags collapse to Unverified, scores are clamped and summaries
// truncated. Used only when the trust-client policy is enabled.
func NormalizeClientVerdict(v models.Verdict) models.Verdict {
	now := time.Now()
	out := models.Verdict{
		Summary:   truncateSummary(v.Summary),
		UpdatedAt: &now,
	}

	switch v.Tag {
	case models.TagPending, models.TagVerified, models.TagMisleading,
		models.TagFalse, models.TagOutdated, models.TagUnverified, models.TagNotApplicable:
		out.Tag = v.Tag
	default:
		out.Tag = models.TagUnverified
	}

	if v.Score != nil {
		score := clampScore(*v.Score)
		out.Score = &score
	}
	return out
}
