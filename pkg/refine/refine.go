// Package refine holds the replaceable heuristics that turn raw generated
// material into candidate elements and candidate elements into a small
// synthesized keyword set. The pipeline treats these as opaque functions;
// only their contracts (dedup, bounded output, deterministic fallbacks)
// matter to the orchestration core.
package refine

import (
	"math/rand"
	"regexp"
	"sort"
	"strings"

	"github.com/zen-systems/pulseforge/pkg/mode"
)

// MaxScriptKeywords bounds the synthesized set for script mode.
const MaxScriptKeywords = 5

// unknownSampleLen is how much of the raw payload survives as the single
// fallback element when the mode tag is unrecognized.
const unknownSampleLen = 100

var scriptSplitRE = regexp.MustCompile(`[ ._]+`)

// contentFragments is the fixed vocabulary scanned for in content mode.
var contentFragments = []string{
	"the", "and", "for", "with", "new", "best", "top",
	"online", "guide", "review", "how to", "what is",
	"seo", "digital", "marketing", "content", "strategy",
	"blog", "article", "website", "traffic", "rank",
	"google", "bing", "youtube", "facebook", "twitter",
	"inst", "gram", "insta", "instagram",
}

// targetPhrases is the fixed phrase vocabulary that combined fragments are
// matched against in content mode.
var targetPhrases = map[string]struct{}{
	"digital marketing":               {},
	"seo strategy":                    {},
	"content creation":                {},
	"online business":                 {},
	"social media":                    {},
	"search engine optimization":      {},
	"how to get more website traffic": {},
	"best marketing tools":            {},
	"python programming tutorial":     {},
	"machine learning basics":         {},
}

// Extract maps raw payload bytes to a deduplicated set of candidate
// elements. Order is not significant. An unrecognized mode yields a single
// truncated sample of the input; callers treat that as a recoverable
// default, not an error.
func Extract(m mode.Mode, raw string) []string {
	switch m {
	case mode.Script:
		seen := make(map[string]struct{})
		var out []string
		for _, tok := range scriptSplitRE.Split(raw, -1) {
			tok = strings.TrimSpace(tok)
			if tok == "" {
				continue
			}
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			out = append(out, tok)
		}
		return out

	case mode.Content:
		lower := strings.ToLower(raw)
		seen := make(map[string]struct{})
		var out []string
		for _, frag := range contentFragments {
			if !strings.Contains(lower, frag) {
				continue
			}
			if _, ok := seen[frag]; ok {
				continue
			}
			seen[frag] = struct{}{}
			out = append(out, frag)
		}
		return out

	default:
		sample := raw
		if len(sample) > unknownSampleLen {
			sample = sample[:unknownSampleLen]
		}
		return []string{sample}
	}
}

// Combine reduces a candidate-element set to a small synthesized keyword
// set. Script mode takes a bounded random subset; content mode matches
// one-, two- and three-element permutations (with and without joining
// spaces) against the fixed target phrase vocabulary. An empty input yields
// one deterministic placeholder instead of failing.
func Combine(m mode.Mode, elements []string, rng *rand.Rand) []string {
	switch m {
	case mode.Script:
		if len(elements) == 0 {
			return []string{"basic_script_idea"}
		}
		uniq := dedup(elements)
		rng.Shuffle(len(uniq), func(i, j int) { uniq[i], uniq[j] = uniq[j], uniq[i] })
		if len(uniq) > MaxScriptKeywords {
			uniq = uniq[:MaxScriptKeywords]
		}
		return uniq

	case mode.Content:
		found := make(map[string]struct{})
		for _, f := range elements {
			matchPhrase(found, strings.ToLower(f))
		}
		for _, pair := range permute2(elements) {
			matchPhrase(found, strings.ToLower(pair[0]+" "+pair[1]))
			matchPhrase(found, strings.ToLower(pair[0]+pair[1]))
		}
		for _, triple := range permute3(elements) {
			matchPhrase(found, strings.ToLower(triple[0]+" "+triple[1]+" "+triple[2]))
			matchPhrase(found, strings.ToLower(triple[0]+triple[1]+triple[2]))
		}
		out := make([]string, 0, len(found))
		for k := range found {
			out = append(out, k)
		}
		sort.Strings(out)
		return out

	default:
		return []string{"general", "information"}
	}
}

func matchPhrase(found map[string]struct{}, candidate string) {
	if _, ok := targetPhrases[candidate]; ok {
		found[candidate] = struct{}{}
	}
}

func dedup(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func permute2(in []string) [][2]string {
	var out [][2]string
	for i := range in {
		for j := range in {
			if i == j {
				continue
			}
			out = append(out, [2]string{in[i], in[j]})
		}
	}
	return out
}

func permute3(in []string) [][3]string {
	var out [][3]string
	for i := range in {
		for j := range in {
			if i == j {
				continue
			}
			for k := range in {
				if k == i || k == j {
					continue
				}
				out = append(out, [3]string{in[i], in[j], in[k]})
			}
		}
	}
	return out
}
