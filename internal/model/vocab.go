package model

import "strings"

// Verdict is the media-check assessment vocabulary
type Verdict string

const (
	VerdictMisleading     Verdict = "Misleading"
	VerdictMissingContext Verdict = "Missing Context"
	VerdictSpin           Verdict = "Spin"
	VerdictOmitsKeyFacts  Verdict = "Omits Key Facts"
	VerdictNarrativePush  Verdict = "Narrative Push"
	VerdictFairCoverage   Verdict = "Fair Coverage"
)

// DefaultVerdict is used when the model answers outside the vocabulary
const DefaultVerdict = VerdictMissingContext

var verdicts = []Verdict{
	VerdictMisleading,
	VerdictMissingContext,
	VerdictSpin,
	VerdictOmitsKeyFacts,
	VerdictNarrativePush,
	VerdictFairCoverage,
}

// ParseVerdict matches case-insensitively, falling back to DefaultVerdict
func ParseVerdict(s string) Verdict {
	s = strings.TrimSpace(s)
	for _, v := range verdicts {
		if strings.EqualFold(s, string(v)) {
			return v
		}
	}
	return DefaultVerdict
}

// Platform is where a viral video was posted
type Platform string

const (
	PlatformYouTube Platform = "youtube"
	PlatformX       Platform = "x"
	PlatformTikTok  Platform = "tiktok"
	PlatformOther   Platform = "other"
)

// ParsePlatform normalizes a platform label, falling back to other.
// When the label is unknown the URL host is consulted.
func ParsePlatform(label, url string) Platform {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "youtube", "yt":
		return PlatformYouTube
	case "x", "twitter":
		return PlatformX
	case "tiktok":
		return PlatformTikTok
	}

	lowered := strings.ToLower(url)
	switch {
	case strings.Contains(lowered, "youtube.com"), strings.Contains(lowered, "youtu.be"):
		return PlatformYouTube
	case strings.Contains(lowered, "x.com/"), strings.Contains(lowered, "twitter.com/"):
		return PlatformX
	case strings.Contains(lowered, "tiktok.com"):
		return PlatformTikTok
	}
	return PlatformOther
}

// NormalizeHandle ensures a social handle starts with "@"
func NormalizeHandle(handle string) string {
	handle = strings.TrimSpace(handle)
	if handle == "" || strings.HasPrefix(handle, "@") {
		return handle
	}
	return "@" + handle
}
