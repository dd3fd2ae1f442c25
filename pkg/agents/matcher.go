package agents

import (
	"sort"
	"strings"

	"github.com/gobwas/glob"
)

// Match scores. Exact trigger equality ranks above a glob pattern match,
// which ranks above a plain substring hit.
const (
	scoreExact     = 3
	scoreGlob      = 2
	scoreSubstring = 1
)

// Match is one agent ranked against a phrase.
type Match struct {
	Agent   *Agent
	Trigger string // the trigger that matched
	Score   int
}

// Matcher ranks agents for a user phrase by their declared triggers.
type Matcher struct {
	agents []*Agent
	domain string
}

// MatcherOption configures a Matcher.
type MatcherOption func(*Matcher)

// WithDomain restricts matching to agents of one business domain.
func WithDomain(domain string) MatcherOption {
	return func(m *Matcher) { m.domain = domain }
}

// NewMatcher creates a matcher over the given agents.
func NewMatcher(agents []*Agent, opts ...MatcherOption) *Matcher {
	m := &Matcher{agents: agents}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Match returns the agents whose triggers match the phrase, best first.
// Ties break by specialization (domain over specialist over core), then
// by name for determinism.
func (m *Matcher) Match(phrase string) []Match {
	phrase = normalize(phrase)
	if phrase == "" {
		return nil
	}

	var matches []Match
	for _, agent := range m.agents {
		if m.domain != "" && agent.Metadata.Domain != m.domain {
			continue
		}

		trigger, score := bestTrigger(agent, phrase)
		if score == 0 {
			continue
		}
		matches = append(matches, Match{Agent: agent, Trigger: trigger, Score: score})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		ti, tj := tierRank(matches[i].Agent.Metadata.Tier), tierRank(matches[j].Agent.Metadata.Tier)
		if ti != tj {
			return ti > tj
		}
		return matches[i].Agent.Metadata.Name < matches[j].Agent.Metadata.Name
	})

	return matches
}

// bestTrigger returns the strongest-scoring trigger of one agent for the
// phrase.
func bestTrigger(agent *Agent, phrase string) (string, int) {
	var (
		best      string
		bestScore int
	)

	for _, raw := range agent.Metadata.Triggers {
		trigger := normalize(raw)
		if trigger == "" {
			continue
		}

		score := 0
		switch {
		case trigger == phrase:
			score = scoreExact
		case isGlobPattern(trigger):
			if g, err := glob.Compile(trigger); err == nil && g.Match(phrase) {
				score = scoreGlob
			}
		case strings.Contains(phrase, trigger):
			score = scoreSubstring
		}

		if score > bestScore {
			best, bestScore = raw, score
		}
	}

	return best, bestScore
}

func isGlobPattern(s string) bool {
	return strings.ContainsAny(s, "*?[{")
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func tierRank(tier string) int {
	switch tier {
	case TierDomain:
		return 2
	case TierSpecialist:
		return 1
	default:
		return 0
	}
}
