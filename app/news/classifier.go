package news

import (
	"regexp"
	"strings"
)

// Classifier assigns taxonomy tags with ordered keyword rules, first
// match wins per axis. Ambiguity is not an error: the deterministic
// defaults are "news" for type and "all" for the other axes.
type Classifier struct{}

func NewClassifier() *Classifier {
	return &Classifier{}
}

var rfpKeywords = []string{
	"rfp", "request for proposal", "tender", "invitation to bid", "manager search", "mandate",
	"제안", "제안서", "제안 요청", "위탁운용", "위탁운용사", "모집", "공고", "입찰", "선정", "출자사업",
}

var (
	rePerf   = regexp.MustCompile(`(?i)return|returns|performance|aum|earnings|results|fiscal year|annual report|q[1-4]`)
	reDeploy = regexp.MustCompile(`(?i)commit|commits|allocate|allocation|invests|investment|acquires|acquisition|buys|purchase|closes|close|fundraise|raises|raised|final close|first close|deploy`)
)

// Institution rules, checked in order.
var instRules = []struct {
	tag string
	re  *regexp.Regexp
}{
	{"pension", regexp.MustCompile(`(?i)pension|retirement|teachers'|fire|police|superannuation|calpers|calstrs|trs|ers`)},
	{"insurance", regexp.MustCompile(`(?i)insurance|life|annuity|insurer`)},
	{"bank", regexp.MustCompile(`(?i)bank|banking`)},
	{"swf", regexp.MustCompile(`(?i)sovereign|swf|sovereign wealth`)},
	{"endowment", regexp.MustCompile(`(?i)endowment|foundation`)},
	{"mutual", regexp.MustCompile(`(?i)credit union|cooperative|mutual|공제회`)},
	{"central", regexp.MustCompile(`중앙회|농협|수협|신협`)},
}

// Asset class rules, checked in order.
var assetRules = []struct {
	tag string
	re  *regexp.Regexp
}{
	{"pd", regexp.MustCompile(`(?i)private debt|direct lending|private credit|credit fund|loan|middle market|mezzanine`)},
	{"re", regexp.MustCompile(`(?i)real estate|property|office|logistics|multifamily|hotel|mortgage|cre|cmbs`)},
	{"pe", regexp.MustCompile(`(?i)private equity|buyout|pe fund|leveraged buyout|secondary`)},
	{"vc", regexp.MustCompile(`(?i)venture|vc|startup|seed|series a|series b|growth equity`)},
	{"infra", regexp.MustCompile(`(?i)infrastructure|renewable|power|grid|solar|wind|data center`)},
	{"coin", regexp.MustCompile(`(?i)crypto|bitcoin|ethereum|stablecoin|token`)},
}

// Adverse-event terms. The English list is intentionally empty: the
// production ruleset only ever carried Korean terms, and that
// asymmetry is preserved as policy until decided otherwise.
var negativeKR = []string{
	"부도", "파산", "디폴트", "연체", "위기", "충격", "급락", "폭락", "붕괴", "손실", "적자", "사기", "횡령", "배임",
	"구속", "기소", "수사", "압수수색", "징역", "벌금", "제재", "징계", "취소", "중단", "철회",
	"불법", "논란", "리콜", "사망", "사고", "참사", "감원", "구조조정", "파업", "해고",
	"피해자", "뒷전", "워싱", "민주당", "국민의힘", "국회", "우려", "불과", "무색", "죄송", "질타", "부실선정",
}

var negativeEN []string

var (
	regionLabels = map[string]string{"korea": "Korea", "global": "Global", "all": "All"}
	typeLabels   = map[string]string{"deploy": "투자 집행", "news": "소식", "perf": "실적", "rfp": "RFP"}
	instLabels   = map[string]string{
		"bank": "은행", "central": "중앙회", "mutual": "공제회", "pension": "연기금",
		"insurance": "보험사", "capital": "캐피탈", "swf": "SWF", "endowment": "Endowment", "all": "All",
	}
	assetLabels = map[string]string{
		"pd": "PD", "re": "RE", "pe": "PE", "vc": "VC", "infra": "Infra", "coin": "Coin", "all": "All",
	}
)

func label(m map[string]string, tag string) string {
	if l, ok := m[tag]; ok {
		return l
	}
	return tag
}

// Run tags an item along every taxonomy axis. The region comes from
// the feed query, not the text.
func (c *Classifier) Run(item Item, region string) Item {
	text := strings.ToLower(item.Title + " " + item.Body)

	if region == "" {
		region = "all"
	}

	item.Region = region
	item.IsRFP = c.isRFP(text)
	item.Type = c.guessType(text, item.IsRFP)
	item.Institution = c.guessInstitution(text)
	item.AssetClass = c.guessAssetClass(text)

	item.RegionLabel = label(regionLabels, item.Region)
	item.TypeLabel = label(typeLabels, item.Type)
	item.InstLabel = label(instLabels, item.Institution)
	item.AssetLabel = label(assetLabels, item.AssetClass)

	return item
}

// Exclude reports whether an item should be dropped by the negative
// keyword filter. RFP items are exempt by policy: procurement notices
// should surface even when they mention distressed situations.
func (c *Classifier) Exclude(item Item) bool {
	if item.IsRFP {
		return false
	}

	text := strings.ToLower(item.Title + " " + item.Body)
	for _, kw := range negativeKR {
		if strings.Contains(text, kw) {
			return true
		}
	}
	for _, kw := range negativeEN {
		if strings.Contains(text, strings.ToLower(kw)) {
			return true
		}
	}

	return false
}

func (c *Classifier) isRFP(text string) bool {
	for _, kw := range rfpKeywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// Type precedence: rfp > perf > deploy > news.
func (c *Classifier) guessType(text string, rfp bool) string {
	if rfp {
		return "rfp"
	}
	if rePerf.MatchString(text) {
		return "perf"
	}
	if reDeploy.MatchString(text) {
		return "deploy"
	}
	return "news"
}

func (c *Classifier) guessInstitution(text string) string {
	for _, rule := range instRules {
		if rule.re.MatchString(text) {
			return rule.tag
		}
	}
	return "all"
}

func (c *Classifier) guessAssetClass(text string) string {
	for _, rule := range assetRules {
		if rule.re.MatchString(text) {
			return rule.tag
		}
	}
	return "all"
}
