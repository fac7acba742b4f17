package devserver

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// renderContent turns a webhook payload into message markdown: a heading
// naming the integration and event, followed by the indented payload
func renderContent(displayName, event string, payload []byte) string {
	var b strings.Builder
	if event != "" {
		fmt.Fprintf(&b, "**%s** `%s` event\n", displayName, event)
	} else {
		fmt.Fprintf(&b, "**%s** event\n", displayName)
	}

	for _, field := range summaryFields {
		if v := gjson.GetBytes(payload, field.path); v.Exists() && v.String() != "" {
			fmt.Fprintf(&b, "* %s: %s\n", field.label, v.String())
		}
	}

	b.WriteString("```json\n")
	b.WriteString(strings.TrimSpace(gjson.ParseBytes(payload).Get("@pretty").Raw))
	b.WriteString("\n```")
	return b.String()
}

// summaryFields are payload fields common enough across integrations to be
// lifted above the raw payload
var summaryFields = []struct {
	label string
	path  string
}{
	{"repository", "repository.full_name"},
	{"ref", "ref"},
	{"sender", "sender.login"},
	{"title", "title"},
	{"status", "status"},
	{"url", "url"},
}
