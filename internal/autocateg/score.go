package autocateg

import (
	"math"
	"strings"
)

const (
	expansionBonusStep = 3
	expansionBonusCap  = 20
	depthBonusStep     = 5
	depthBonusCap      = 10
	exactBonusStep     = 8
	exactBonusCap      = 20
)

// MatchResult is the engine's verdict for one product in one run.
// CurrentCategory and AlreadyCorrect are updated again after a successful
// apply; Selected is toggled by the operator during review.
type MatchResult struct {
	SKU             string   `json:"sku"`
	Titulo          string   `json:"titulo"`
	CurrentCategory string   `json:"currentCategory"`
	SuggestedSlug   string   `json:"suggestedSlug"`
	SuggestedPath   string   `json:"suggestedPath"`
	Confidence      int      `json:"confidence"`
	MatchedKeywords []string `json:"matchedKeywords"`
	AlreadyCorrect  bool     `json:"alreadyCorrect"`
	Selected        bool     `json:"selected"`
}

// Score rates how well a product fits one category, 0 to 100. text is the
// normalized product text and words its tokens. A category with no keyword
// occurring in the text scores 0 outright. Otherwise the score is the
// fraction of category-name words found in the text, plus capped bonuses
// for extra keyword hits, tree depth and exact word matches. Also returns
// the keywords that hit.
func Score(text string, words []string, cat *FlatCategory) (int, []string) {
	var matched []string
	for _, kw := range cat.Keywords {
		if strings.Contains(text, kw) {
			matched = append(matched, kw)
		}
	}
	if len(matched) == 0 {
		return 0, nil
	}

	nameWords := NameWords(cat.Name)
	if len(nameWords) == 0 {
		return 0, nil
	}

	nameFound := 0
	exactMatches := 0
	for _, nw := range nameWords {
		if wordInText(nw, text, words) {
			nameFound++
		}
		for _, w := range words {
			if w == nw {
				exactMatches++
				break
			}
		}
	}

	nameScore := float64(nameFound) / float64(len(nameWords)) * 100

	// Keyword hits beyond the name words themselves. Prefix-only name
	// matches can push nameFound past the substring hit count, so floor
	// at zero.
	expansion := (len(matched) - nameFound) * expansionBonusStep
	if expansion < 0 {
		expansion = 0
	}
	if expansion > expansionBonusCap {
		expansion = expansionBonusCap
	}

	depth := cat.Depth * depthBonusStep
	if depth > depthBonusCap {
		depth = depthBonusCap
	}

	exact := exactMatches * exactBonusStep
	if exact > exactBonusCap {
		exact = exactBonusCap
	}

	score := int(math.Round(nameScore + float64(expansion+depth+exact)))
	if score > 100 {
		score = 100
	}
	return score, matched
}

// wordInText reports whether a category name word counts as present in the
// product text: direct substring, or a prefix relation with some product
// token so that singular and plural forms ("freio" / "freios") find each
// other.
func wordInText(word, text string, tokens []string) bool {
	if strings.Contains(text, word) {
		return true
	}
	if len(word) < 3 {
		return false
	}
	for _, t := range tokens {
		if len(t) < 3 {
			continue
		}
		if strings.HasPrefix(t, word) || strings.HasPrefix(word, t) {
			return true
		}
	}
	return false
}

// BestMatch scans the flattened categories in order and returns the highest
// scoring one with its score and matched keywords. Ties keep the earlier
// category. Returns nil when nothing scores above zero.
func BestMatch(text string, words []string, cats []FlatCategory) (*FlatCategory, int, []string) {
	var best *FlatCategory
	bestScore := 0
	var bestKeywords []string

	for i := range cats {
		score, matched := Score(text, words, &cats[i])
		if score > bestScore {
			best = &cats[i]
			bestScore = score
			bestKeywords = matched
		}
	}

	return best, bestScore, bestKeywords
}
