// Package facts routes questions to structured profile fields.
package facts

import (
	"strings"

	"resumechat/internal/domain"
)

// Rule maps any of its keywords, found as a substring of the lower-cased query, to a field.
type Rule struct {
	Keywords  []string
	FieldPath string
	Label     string
}

func (r Rule) matches(q string) bool {
	for _, k := range r.Keywords {
		if strings.Contains(q, k) {
			return true
		}
	}
	return false
}

// Rules is evaluated top to bottom and the first matching rule wins.
// Keyword sets overlap, so the order here is part of the routing behavior.
var Rules = []Rule{
	{Keywords: []string{"name", "who are you", "who is this resume"}, FieldPath: "name", Label: "name"},
	{Keywords: []string{"email", "mail id"}, FieldPath: "email", Label: "email"},
	{Keywords: []string{"phone", "number", "contact"}, FieldPath: "phone", Label: "phone"},
	{Keywords: []string{"location", "where", "based"}, FieldPath: "location", Label: "location"},
	{Keywords: []string{"gpa"}, FieldPath: "education[0].gpa", Label: "education.gpa"},
	{Keywords: []string{"graduation", "grad", "may 2027"}, FieldPath: "education[0].grad", Label: "education.grad"},
	{Keywords: []string{"skills", "skill set", "skillset"}, FieldPath: "skills", Label: "skills"},
	{Keywords: []string{"languages"}, FieldPath: "skills.languages", Label: "skills.languages"},
	{Keywords: []string{"frameworks", "framework", "libraries"}, FieldPath: "skills.frameworks", Label: "skills.frameworks"},
	{Keywords: []string{"databases", "cloud", "devops", "infra"}, FieldPath: "skills.infra", Label: "skills.infra"},
	{Keywords: []string{"certification", "certifications"}, FieldPath: "certifications", Label: "certifications"},
}

// Router dispatches a query over an ordered rule table.
type Router struct {
	rules []Rule
}

// NewRouter uses the default rule table when rules is nil.
func NewRouter(rules []Rule) *Router {
	if rules == nil {
		rules = Rules
	}
	return &Router{rules: rules}
}

// Match returns the first rule matching query.
func (r *Router) Match(query string) (domain.FactMatch, bool) {
	q := strings.ToLower(query)
	for _, rule := range r.rules {
		if rule.matches(q) {
			return domain.FactMatch{FieldPath: rule.FieldPath, Label: rule.Label}, true
		}
	}
	return domain.FactMatch{}, false
}
