package services

import "strings"

// ModelPolicy routes conversations to a provider model based on the topic
// title. Titles containing any of the configured keywords use the
// quantitative-reasoning model, everything else the default model. The
// keyword table is data, not code, so deployments can retune routing
// without a rebuild.
type ModelPolicy struct {
	QuantModel   string
	DefaultModel string
	Keywords     []string
}

// Select returns the model identifier for a topic title. Matching is
// case-insensitive substring containment.
func (p ModelPolicy) Select(topicTitle string) string {
	title := strings.ToLower(topicTitle)
	for _, kw := range p.Keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" && strings.Contains(title, kw) {
			return p.QuantModel
		}
	}
	return p.DefaultModel
}
