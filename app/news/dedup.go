package news

import (
	"sort"

	"github.com/globaltide/tidenews/app/cfg"
)

// Deduper collapses duplicate stories in two stages: exact identity
// keys first, then same-day near-duplicate clustering by token-set
// Jaccard similarity. Clustering is restricted to a single calendar
// day; that bounds the pairwise comparison cost and keeps recurring
// headlines (weekly earnings roundups and the like) from merging
// across dates. Items without a parsable date share an "unknown"
// bucket and are only ever compared with each other.
type Deduper struct {
	Threshold      float64
	MinTokens      int
	KeepPerCluster int
}

func NewDeduper() *Deduper {
	c := cfg.Get()
	return &Deduper{
		Threshold:      c.SimilarityThreshold,
		MinTokens:      c.MinTokens,
		KeepPerCluster: c.KeepPerCluster,
	}
}

// Run applies both stages in input order. Output accumulates in
// day-then-encounter order; the aggregator establishes the final
// presentation order with a global timestamp sort.
func (d *Deduper) Run(items []Item) []Item {
	return d.clusterSameDay(dedupExact(items))
}

// dedupKey prefers the canonical URL; items without one fall back to
// the normalized title plus calendar day.
func dedupKey(item Item) string {
	if cu := CanonicalizeURL(item.URL); cu != "" {
		return "u:" + cu
	}
	return "t:" + NormalizeTitle(item.Title) + "|" + item.Date
}

// dedupExact keeps the first occurrence of each identity key, then
// makes a second pass keyed on normalized title plus day alone. The
// second pass catches the same story published under different URLs
// with the literal same title.
func dedupExact(items []Item) []Item {
	seen := make(map[string]struct{}, len(items))
	out := make([]Item, 0, len(items))
	for _, item := range items {
		k := dedupKey(item)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, item)
	}

	seenTitle := make(map[string]struct{}, len(out))
	out2 := make([]Item, 0, len(out))
	for _, item := range out {
		t := NormalizeTitle(item.Title)
		if t != "" {
			k := "td:" + t + "|" + item.Date
			if _, ok := seenTitle[k]; ok {
				continue
			}
			seenTitle[k] = struct{}{}
		}
		out2 = append(out2, item)
	}

	return out2
}

type cluster struct {
	tokens  map[string]struct{}
	members []Item
}

func (d *Deduper) clusterSameDay(items []Item) []Item {
	var dayOrder []string
	byDay := make(map[string][]Item)
	for _, item := range items {
		day := item.Date
		if day == "" {
			day = "unknown"
		}
		if _, ok := byDay[day]; !ok {
			dayOrder = append(dayOrder, day)
		}
		byDay[day] = append(byDay[day], item)
	}

	var out []Item
	for _, day := range dayOrder {
		arr := byDay[day]

		// Newest first so the latest variant becomes the cluster
		// representative; stable sort keeps input order on ties.
		sort.SliceStable(arr, func(i, j int) bool {
			return arr[i].TimestampMs > arr[j].TimestampMs
		})

		var clusters []*cluster
		for _, item := range arr {
			tokens := Tokenize(item.Title + " " + item.Body)
			set := tokenSet(tokens)

			// Too little signal to compare reliably; never joins an
			// existing cluster.
			if len(tokens) < d.MinTokens {
				clusters = append(clusters, &cluster{tokens: set, members: []Item{item}})
				continue
			}

			placed := false
			for _, c := range clusters {
				if jaccard(c.tokens, set) >= d.Threshold {
					c.members = append(c.members, item)
					// Union the tokens so the cluster's matching
					// surface grows with each near-variant that joins.
					for t := range set {
						c.tokens[t] = struct{}{}
					}
					placed = true
					break
				}
			}
			if !placed {
				clusters = append(clusters, &cluster{tokens: set, members: []Item{item}})
			}
		}

		keep := d.KeepPerCluster
		if keep <= 0 {
			keep = 1
		}
		for _, c := range clusters {
			n := keep
			if n > len(c.members) {
				n = len(c.members)
			}
			out = append(out, c.members[:n]...)
		}
	}

	return out
}
