package tools

import (
	"context"
	"fmt"

	"toolbox-mcp/internal/envelope"
	"toolbox-mcp/internal/registry"
	"toolbox-mcp/internal/schema"
)

func greetTool() registry.ToolDescriptor {
	return registry.ToolDescriptor{
		Name:        "greet",
		Title:       "Greeting",
		Description: "Returns a greeting for the given name and language.",
		Input: schema.Schema{
			{Name: "name", Kind: schema.KindString, Description: "Name of the person to greet"},
			{Name: "language", Kind: schema.KindEnum, Description: "Greeting language (default: en)",
				Optional: true, Default: "en", Choices: []string{"ko", "en"}},
		},
		Handler: greet,
	}
}

func greet(_ context.Context, args schema.Args) (envelope.Result, error) {
	name := args.String("name")
	if args.String("language") == "ko" {
		return envelope.Text(fmt.Sprintf("안녕하세요, %s님!", name)), nil
	}
	return envelope.Text(fmt.Sprintf("Hey there, %s! 👋 Nice to meet you!", name)), nil
}
