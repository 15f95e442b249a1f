// Package prompts holds the prompt templates offered by the server.
package prompts

import (
	"fmt"
	"strings"

	"toolbox-mcp/internal/envelope"
	"toolbox-mcp/internal/registry"
	"toolbox-mcp/internal/schema"
)

var reviewTemplates = map[string]string{
	"strict": "Review the following code against strict standards. Point out every potential problem, " +
		"security vulnerability, performance issue and style violation.",
	"friendly": "Review the following code in a friendly, constructive tone. Suggest improvements " +
		"and include positive feedback as well.",
	"detailed": "Review the following code in detail. Analyze its structure, algorithmic efficiency, " +
		"error handling, readability, maintainability and testability.",
	"quick": "Review the following code quickly. Summarize only the most important problems and improvements.",
}

const reviewChecklist = `Please cover the following in your review:
1. Code quality and structure
2. Potential bugs and error handling
3. Performance optimization opportunities
4. Security considerations
5. Readability and maintainability
6. Suggested improvements`

// CodeReview returns the code-review prompt descriptor.
func CodeReview() registry.PromptDescriptor {
	return registry.PromptDescriptor{
		Name:        "code-review",
		Title:       "Code review",
		Description: "Builds a structured code review request for the submitted code.",
		Args: schema.Schema{
			{Name: "code", Kind: schema.KindString, Description: "Code to review"},
			{Name: "language", Kind: schema.KindString, Optional: true,
				Description: "Language of the code (e.g. go, typescript, python)"},
			{Name: "reviewStyle", Kind: schema.KindEnum, Optional: true, Default: "detailed",
				Choices: []string{"strict", "friendly", "detailed", "quick"},
				Description: "Review style (default: detailed)"},
		},
		Render: renderCodeReview,
	}
}

func renderCodeReview(args schema.Args) (registry.PromptResult, error) {
	style := args.String("reviewStyle")
	instructions, ok := reviewTemplates[style]
	if !ok {
		style, instructions = "detailed", reviewTemplates["detailed"]
	}
	lang := args.String("language")
	fence := lang
	if fence == "" {
		fence = "text"
	}

	var b strings.Builder
	b.WriteString(instructions)
	b.WriteString("\n\nCode to review:\n")
	fmt.Fprintf(&b, "```%s\n%s\n```\n", fence, args.String("code"))
	if lang != "" {
		fmt.Fprintf(&b, "\n\nNote: this code is written in %s. Take %s best practices and conventions into account.", lang, lang)
	}
	b.WriteString("\n\n")
	b.WriteString(reviewChecklist)

	return registry.PromptResult{
		Description: style + " style code review",
		Messages: []registry.PromptMessage{{
			Role:    "user",
			Content: envelope.Item{Type: envelope.KindText, Text: b.String()},
		}},
	}, nil
}
