package core

import (
	"fmt"
	"strings"
)

// DefaultSystemPrompt is used when no system prompt is configured.
const DefaultSystemPrompt = `You are a structured analysis engine. You apply one analytical framework at a time to the problem context you are given.

Rules:
- Describe structure; do not recommend actions or rank options.
- When the context names a decision focus, say how your findings bear on each listed option.
- Do not invent facts. When information is missing, say so and list it under unknowns.
- State assumptions explicitly.
- Respond with a single JSON object inside a fenced code block. Use exactly the field names you are asked for.`

// genericTemplate is used for frameworks that do not ship their own prompt.
const genericTemplate = `Apply the {title} framework ({lens}) to the following problem context.

{description}

## Problem Context

{context}

## Required Output

Return a JSON object with these fields:
{fields}
`

// BuildUserPrompt fills a framework's prompt template.
//
// Placeholders: {context}, {title}, {lens}, {description}, {fields}.
func BuildUserPrompt(spec FrameworkSpec, contextText string) string {
	template := spec.PromptTemplate
	if strings.TrimSpace(template) == "" {
		template = genericTemplate
	}

	replacer := strings.NewReplacer(
		"{title}", spec.Title,
		"{lens}", spec.Lens,
		"{description}", spec.Description,
		"{fields}", describeFields(spec.Fields),
		"{context}", contextText,
	)
	return replacer.Replace(template)
}

func describeFields(fields []FieldSpec) string {
	var sb strings.Builder
	for _, f := range fields {
		req := "optional"
		if f.Required {
			req = "required"
		}
		sb.WriteString(fmt.Sprintf("- %s (%s, %s)", f.Key, f.Kind, req))
		if f.Description != "" {
			sb.WriteString(": " + f.Description)
		}
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}
