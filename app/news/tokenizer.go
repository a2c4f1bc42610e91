package news

import (
	"strings"
	"unicode/utf8"

	"github.com/clipperhouse/uax29/v2/words"
)

// Stopwords removed during tokenization. English words are matched
// only when the token is pure ASCII letters; Korean words are matched
// exactly.
var stopwordsEN = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "to": {}, "of": {},
	"in": {}, "on": {}, "for": {}, "with": {}, "by": {}, "from": {}, "at": {}, "as": {},
	"is": {}, "are": {}, "was": {}, "were": {}, "be": {}, "been": {}, "being": {},
	"this": {}, "that": {}, "these": {}, "those": {},
	"it": {}, "its": {}, "their": {}, "they": {}, "them": {}, "we": {}, "our": {},
	"will": {}, "would": {}, "can": {}, "could": {}, "may": {}, "might": {}, "should": {},
	"new": {}, "says": {}, "said": {}, "report": {}, "reports": {}, "reported": {}, "update": {},
}

var stopwordsKO = map[string]struct{}{
	"및": {}, "과": {}, "와": {}, "또는": {}, "혹은": {}, "대한": {}, "관련": {}, "등": {},
	"것": {}, "수": {}, "중": {}, "내": {}, "외": {}, "더": {}, "큰": {}, "새": {}, "발표": {},
	"기자": {}, "뉴스": {}, "단독": {}, "속보": {}, "인터뷰": {}, "분석": {}, "전망": {},
	"공개": {}, "확인": {}, "밝혔다": {}, "했다": {}, "한다": {}, "했다며": {},
	"올해": {}, "내년": {}, "이번": {}, "지난": {}, "오늘": {}, "어제": {},
}

// Tokenize extracts the set-comparison tokens from free text: same
// cleaning as NormalizeTitle, Unicode word segmentation, then length
// and stopword filtering. Single-rune tokens carry too little signal
// and are dropped.
func Tokenize(text string) []string {
	clean := NormalizeTitle(text)
	if clean == "" {
		return nil
	}

	var tokens []string
	seg := words.FromString(clean)
	for seg.Next() {
		w := strings.TrimSpace(seg.Value())
		if w == "" {
			continue
		}
		if utf8.RuneCountInString(w) <= 1 {
			continue
		}
		if isASCIILower(w) {
			if _, ok := stopwordsEN[w]; ok {
				continue
			}
		}
		if _, ok := stopwordsKO[w]; ok {
			continue
		}
		tokens = append(tokens, w)
	}

	return tokens
}

func isASCIILower(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 'a' || s[i] > 'z' {
			return false
		}
	}
	return true
}

func tokenSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

// jaccard returns |intersection| / |union| of two token sets.
func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	inter := 0
	for t := range a {
		if _, ok := b[t]; ok {
			inter++
		}
	}

	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}
