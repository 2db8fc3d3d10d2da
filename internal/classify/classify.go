// Package classify maps free-text questions to statistical topics.
package classify

import "strings"

// Topic is a statistical subject area
type Topic string

const (
	Population   Topic = "population"
	Unemployment Topic = "unemployment"
	GDP          Topic = "gdp"
	Immigration  Topic = "immigration"
	Education    Topic = "education"
)

// Rule maps a topic to the keywords that trigger it, in either language
type Rule struct {
	Topic    Topic
	Keywords []string
}

// rules is evaluated top to bottom; the order here is the order of the
// resulting topics and of the charts built from them.
var rules = []Rule{
	{Topic: Population, Keywords: []string{"population", "befolkning"}},
	{Topic: Unemployment, Keywords: []string{"unemployment", "arbejdsløshed"}},
	{Topic: GDP, Keywords: []string{"gdp", "bnp"}},
	{Topic: Immigration, Keywords: []string{"immigration"}},
	{Topic: Education, Keywords: []string{"education", "uddannelse"}},
}

// Rules returns a copy of the priority-ordered rule table
func Rules() []Rule {
	out := make([]Rule, len(rules))
	for i, r := range rules {
		out[i] = Rule{Topic: r.Topic, Keywords: append([]string(nil), r.Keywords...)}
	}
	return out
}

// Classify returns every topic whose keywords appear in query, in rule order.
// Matching is a case-insensitive substring test.
func Classify(query string) []Topic {
	lower := strings.ToLower(query)

	var topics []Topic
	for _, r := range rules {
		for _, kw := range r.Keywords {
			if strings.Contains(lower, kw) {
				topics = append(topics, r.Topic)
				break
			}
		}
	}
	return topics
}

// TopicSet is a membership view over a classification result
type TopicSet map[Topic]bool

// NewTopicSet builds a set from topics
func NewTopicSet(topics []Topic) TopicSet {
	set := make(TopicSet, len(topics))
	for _, t := range topics {
		set[t] = true
	}
	return set
}

// Has reports whether t is in the set
func (s TopicSet) Has(t Topic) bool {
	return s[t]
}
