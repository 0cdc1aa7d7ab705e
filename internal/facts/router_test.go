package facts

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRouter_Match(t *testing.T) {
	r := NewRouter(nil)
	cases := []struct {
		query string
		path  string
		label string
	}{
		{"What is your email?", "email", "email"},
		{"What's your NAME", "name", "name"},
		{"who are you", "name", "name"},
		{"Give me a contact", "phone", "phone"},
		{"Where are you based?", "location", "location"},
		{"What was your GPA", "education[0].gpa", "education.gpa"},
		{"When do you graduate?", "education[0].grad", "education.grad"},
		{"list your skills", "skills", "skills"},
		{"what is your skillset", "skills", "skills"},
		{"Which languages do you know", "skills.languages", "skills.languages"},
		{"favorite libraries", "skills.frameworks", "skills.frameworks"},
		{"any devops experience", "skills.infra", "skills.infra"},
		{"certifications?", "certifications", "certifications"},
	}
	for _, tc := range cases {
		m, ok := r.Match(tc.query)
		if assert.True(t, ok, tc.query) {
			assert.Equal(t, tc.path, m.FieldPath, tc.query)
			assert.Equal(t, tc.label, m.Label, tc.query)
		}
	}
}

func TestRouter_NoMatch(t *testing.T) {
	r := NewRouter(nil)
	_, ok := r.Match("Tell me about the Kubernetes operator project")
	assert.False(t, ok)
	_, ok = r.Match("")
	assert.False(t, ok)
}

func TestRouter_FirstRuleWins(t *testing.T) {
	r := NewRouter(nil)

	// email (rule 2) beats phone (rule 3)
	m, _ := r.Match("email or phone number")
	assert.Equal(t, "email", m.Label)

	// location (rule 4) beats infra (rule 10) even though "cloud" appears
	m, _ = r.Match("where is the cloud team located")
	assert.Equal(t, "location", m.Label)

	// skills (rule 7) beats languages (rule 8)
	m, _ = r.Match("skills and languages")
	assert.Equal(t, "skills", m.Label)

	// "name" is checked before anything else
	m, _ = r.Match("username for email")
	assert.Equal(t, "name", m.Label)
}

func TestRouter_PrecedenceFollowsTableOrder(t *testing.T) {
	r := NewRouter(nil)
	for i, earlier := range Rules {
		for _, later := range Rules[i+1:] {
			q := earlier.Keywords[0] + " " + later.Keywords[0]
			m, ok := r.Match(q)
			assert.True(t, ok, q)
			assert.Equal(t, earlier.Label, m.Label, q)
		}
	}
}

func TestRouter_CustomRules(t *testing.T) {
	r := NewRouter([]Rule{{Keywords: []string{"hobby"}, FieldPath: "hobbies", Label: "hobbies"}})
	m, ok := r.Match("Any hobby?")
	assert.True(t, ok)
	assert.Equal(t, "hobbies", m.FieldPath)
	_, ok = r.Match("email")
	assert.False(t, ok)
}
