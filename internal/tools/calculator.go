package tools

import (
	"context"
	"fmt"

	"toolbox-mcp/internal/envelope"
	"toolbox-mcp/internal/registry"
	"toolbox-mcp/internal/schema"
	"toolbox-mcp/internal/toolerr"
)

func calculatorTool() registry.ToolDescriptor {
	return registry.ToolDescriptor{
		Name:        "calculator",
		Title:       "Calculator",
		Description: "Applies one of the four basic arithmetic operators to two numbers.",
		Input: schema.Schema{
			{Name: "num1", Kind: schema.KindNumber, Description: "First operand"},
			{Name: "num2", Kind: schema.KindNumber, Description: "Second operand"},
			{Name: "operator", Kind: schema.KindEnum, Description: "Operator (+, -, *, /)",
				Choices: []string{"+", "-", "*", "/"}},
		},
		Handler: calculate,
	}
}

func calculate(_ context.Context, args schema.Args) (envelope.Result, error) {
	a, b := args.Float("num1"), args.Float("num2")
	var (
		result float64
		symbol string
	)
	switch op := args.String("operator"); op {
	case "+":
		result, symbol = a+b, "+"
	case "-":
		result, symbol = a-b, "-"
	case "*":
		result, symbol = a*b, "×"
	case "/":
		if b == 0 {
			return envelope.Result{}, toolerr.Domainf("division by zero is not allowed")
		}
		result, symbol = a/b, "÷"
	default:
		return envelope.Result{}, toolerr.Domainf("unsupported operator %q", op)
	}
	return envelope.Text(fmt.Sprintf("%s %s %s = %s",
		formatNumber(a), symbol, formatNumber(b), formatNumber(result))), nil
}
