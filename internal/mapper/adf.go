package mapper

import "strings"

// Jira Cloud (REST v3) sends descriptions and comment bodies as Atlassian
// Document Format trees. plainText flattens those to text and passes plain
// strings through unchanged.

var adfBlockNodes = map[string]struct{}{
	"paragraph":   {},
	"heading":     {},
	"blockquote":  {},
	"codeBlock":   {},
	"listItem":    {},
	"tableRow":    {},
	"rule":        {},
	"mediaSingle": {},
}

func plainText(v any) *string {
	switch t := v.(type) {
	case string:
		return &t
	case map[string]any:
		var b strings.Builder
		writeADF(&b, t)
		s := strings.TrimSpace(b.String())
		return &s
	}
	return nil
}

func writeADF(b *strings.Builder, node map[string]any) {
	nodeType, _ := node["type"].(string)
	switch nodeType {
	case "text":
		text, _ := node["text"].(string)
		b.WriteString(text)
		return
	case "hardBreak":
		b.WriteByte('\n')
		return
	case "mention", "emoji":
		attrs := obj(node["attrs"])
		b.WriteString(textAt(attrs, "text", "shortName"))
		return
	case "inlineCard":
		b.WriteString(textAt(obj(node["attrs"]), "url"))
		return
	}

	children, _ := node["content"].([]any)
	for _, child := range children {
		if m := obj(child); m != nil {
			writeADF(b, m)
		}
	}
	if _, block := adfBlockNodes[nodeType]; block {
		b.WriteByte('\n')
	}
}
