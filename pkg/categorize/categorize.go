// Package categorize assigns each task the team that owns it.
package categorize

import (
	"strings"

	"github.com/harrisonrobin/backlog/pkg/model"
)

// PrefixRule assigns Category to every ticket whose key starts with Prefix.
type PrefixRule struct {
	Prefix   string `yaml:"prefix" json:"prefix"`
	Category string `yaml:"category" json:"category"`
}

// Categorizer classifies tasks by first match: key prefixes in order,
// then the first category name found inside the status text.
type Categorizer struct {
	Prefixes   []PrefixRule
	Categories []string
}

// New creates a Categorizer from prefix rules and category names.
func New(prefixes []PrefixRule, categories []string) *Categorizer {
	return &Categorizer{Prefixes: prefixes, Categories: categories}
}

// Classify returns the category for a ticket, or false if no rule matches.
func (c *Categorizer) Classify(key, status string) (string, bool) {
	for _, r := range c.Prefixes {
		if r.Prefix != "" && strings.HasPrefix(key, r.Prefix) {
			return r.Category, true
		}
	}
	s := strings.ToLower(status)
	for _, cat := range c.Categories {
		if cat != "" && strings.Contains(s, strings.ToLower(cat)) {
			return cat, true
		}
	}
	return "", false
}

// Apply writes the category of every row in the task database.
// Rows no rule matches keep their current category and are counted as undecided.
func (c *Categorizer) Apply(t *model.Table) model.Summary {
	sum := model.Summary{Stage: "categorize"}
	t.EnsureColumn(model.ColCategory)
	for _, r := range t.Rows {
		cat, ok := c.Classify(r[model.ColTicket], r[model.ColStatus])
		if !ok {
			sum.Undecided++
			continue
		}
		if r[model.ColCategory] == cat {
			sum.Skipped++
			continue
		}
		r[model.ColCategory] = cat
		sum.Updated++
	}
	return sum
}
