// Package mail renders transactional email templates and delivers them
// through the Brevo HTTP API.
package mail

import (
	"sort"
	"strings"
)

// Content is the renderable part of a template.
type Content struct {
	Subject string
	HTML    string
	Text    string
}

// Render replaces every {{key}} in s with vars[key]. Placeholders without a
// matching variable are left as they are.
func Render(s string, vars map[string]string) string {
	if len(vars) == 0 || !strings.Contains(s, "{{") {
		return s
	}

	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys)*2)
	for _, k := range keys {
		pairs = append(pairs, "{{"+k+"}}", vars[k])
	}
	return strings.NewReplacer(pairs...).Replace(s)
}

// Render applies vars to subject and both bodies.
func (c Content) Render(vars map[string]string) Content {
	return Content{
		Subject: Render(c.Subject, vars),
		HTML:    Render(c.HTML, vars),
		Text:    Render(c.Text, vars),
	}
}
