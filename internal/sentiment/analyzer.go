// Package sentiment classifies message tone so responses can adapt their
// phrasing. Advisory only, it never influences a loan decision.
package sentiment

import (
	"fmt"
	"strings"
)

// Label is one of the six recognized tones.
type Label string

const (
	Positive   Label = "POSITIVE"
	Neutral    Label = "NEUTRAL"
	Negative   Label = "NEGATIVE"
	Anxious    Label = "ANXIOUS"
	Frustrated Label = "FRUSTRATED"
	Excited    Label = "EXCITED"
)

// Result carries the classified label plus the evidence behind it.
type Result struct {
	Label         Label    `json:"label"`
	Confidence    float64  `json:"confidence"`
	Keywords      []string `json:"keywords,omitempty"`
	SuggestedTone string   `json:"suggestedTone"`
}

var positiveKeywords = keywordSet(
	"great", "excellent", "wonderful", "amazing", "perfect", "happy", "good",
	"awesome", "fantastic", "love", "thank", "thanks", "appreciate", "excited",
	"interested", "helpful", "clear", "understand", "yes", "sure", "definitely",
)

var negativeKeywords = keywordSet(
	"bad", "terrible", "horrible", "worst", "poor", "disappointed", "unhappy",
	"sad", "angry", "hate", "dislike", "problem", "issue", "wrong",
	"confused", "difficult", "hard", "complicated", "no", "not", "never",
)

var anxiousKeywords = keywordSet(
	"worried", "concerned", "nervous", "anxious", "scared", "afraid", "unsure",
	"uncertain", "hesitant", "doubt", "risk", "safe", "secure", "trust",
	"guarantee", "but", "however", "concern",
)

var frustratedKeywords = keywordSet(
	"frustrated", "annoying", "irritating", "waste", "time", "long", "slow",
	"again", "still", "yet", "why", "when", "waiting", "stuck",
	"repeated", "keep", "multiple",
)

var excitedKeywords = keywordSet(
	"excited", "eager", "ready", "now",
	"asap", "soon", "immediately", "quick", "fast", "urgent", "need",
	"want", "must",
)

func keywordSet(words ...string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}

// Analyze is a stateless scorer: lowercase tokenization, keyword overlap
// counting against the five fixed sets, plus punctuation signals. The label
// priority matters: anxious and frustrated mask simple polarity, multiple
// question marks alone read as anxiety.
func Analyze(text string) Result {
	words := strings.Fields(strings.ToLower(text))

	positiveCount := countMatches(words, positiveKeywords)
	negativeCount := countMatches(words, negativeKeywords)
	anxiousCount := countMatches(words, anxiousKeywords)
	frustratedCount := countMatches(words, frustratedKeywords)
	excitedCount := countMatches(words, excitedKeywords)

	questionMarks := strings.Count(text, "?")
	exclamationMarks := strings.Count(text, "!")

	polarityMax := positiveCount
	if negativeCount > polarityMax {
		polarityMax = negativeCount
	}

	var result Result
	switch {
	case anxiousCount > 0 && anxiousCount >= polarityMax:
		result = Result{
			Label:      Anxious,
			Confidence: cappedConfidence(0.6, anxiousCount),
			Keywords:   matchingKeywords(words, anxiousKeywords),
		}
	case frustratedCount > 0 && frustratedCount >= polarityMax:
		result = Result{
			Label:      Frustrated,
			Confidence: cappedConfidence(0.6, frustratedCount),
			Keywords:   matchingKeywords(words, frustratedKeywords),
		}
	case excitedCount > 1 || exclamationMarks > 1:
		result = Result{
			Label:      Excited,
			Confidence: cappedConfidence(0.6, excitedCount),
			Keywords:   matchingKeywords(words, excitedKeywords),
		}
	case positiveCount > negativeCount && positiveCount > 0:
		result = Result{
			Label:      Positive,
			Confidence: cappedConfidence(0.5, positiveCount-negativeCount),
			Keywords:   matchingKeywords(words, positiveKeywords),
		}
	case negativeCount > positiveCount && negativeCount > 0:
		result = Result{
			Label:      Negative,
			Confidence: cappedConfidence(0.5, negativeCount-positiveCount),
			Keywords:   matchingKeywords(words, negativeKeywords),
		}
	case questionMarks > 1:
		result = Result{
			Label:      Anxious,
			Confidence: 0.6,
			Keywords:   []string{"multiple questions"},
		}
	default:
		result = Result{Label: Neutral, Confidence: 0.5}
	}

	result.SuggestedTone = suggestedTone(result.Label)
	return result
}

// cappedConfidence is a bounded linear function of matched-keyword count.
func cappedConfidence(base float64, count int) float64 {
	c := base + float64(count)*0.1
	if c > 0.9 {
		return 0.9
	}
	return c
}

func countMatches(words []string, keywords map[string]bool) int {
	n := 0
	for _, w := range words {
		if keywords[w] {
			n++
		}
	}
	return n
}

func matchingKeywords(words []string, keywords map[string]bool) []string {
	matched := make([]string, 0, 3)
	for _, w := range words {
		if keywords[w] {
			matched = append(matched, w)
			if len(matched) == 3 {
				break
			}
		}
	}
	return matched
}

func suggestedTone(label Label) string {
	switch label {
	case Positive:
		return "Match their enthusiasm. Be warm, engaging, and maintain the positive energy."
	case Negative:
		return "Show empathy and understanding. Acknowledge their concerns and focus on solutions."
	case Anxious:
		return "Be reassuring and patient. Provide clear, detailed information. Address concerns directly with facts."
	case Frustrated:
		return "Apologize for any inconvenience. Be efficient and solution-oriented. Avoid lengthy explanations."
	case Excited:
		return "Match their energy. Be quick, enthusiastic, and action-oriented. Focus on moving forward fast."
	default:
		return "Maintain professional friendliness. Be clear, informative, and helpful."
	}
}

// TonePrompt renders the guidance block prepended to LLM prompts.
func (r Result) TonePrompt() string {
	return fmt.Sprintf(
		"[SENTIMENT: %s (%.0f%% confidence)]\nKeywords: %s\nTone guidance: %s",
		r.Label, r.Confidence*100, strings.Join(r.Keywords, ", "), r.SuggestedTone,
	)
}
