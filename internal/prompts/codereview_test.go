package prompts

import (
	"strings"
	"testing"
)

func render(t *testing.T, raw map[string]string) (string, string) {
	t.Helper()
	d := CodeReview()
	args, err := d.Args.ValidateStrings(raw)
	if err != nil {
		t.Fatalf("ValidateStrings() error = %v", err)
	}
	out, err := d.Render(args)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if len(out.Messages) != 1 || out.Messages[0].Role != "user" {
		t.Fatalf("expected a single user message, got %#v", out.Messages)
	}
	return out.Description, out.Messages[0].Content.Text
}

func TestCodeReviewDefaults(t *testing.T) {
	desc, text := render(t, map[string]string{"code": "x := 1"})
	if desc != "detailed style code review" {
		t.Fatalf("unexpected description %q", desc)
	}
	if !strings.HasPrefix(text, reviewTemplates["detailed"]) {
		t.Fatalf("detailed template not selected:\n%s", text)
	}
	if !strings.Contains(text, "```text\nx := 1\n```") {
		t.Fatalf("code not fenced as text:\n%s", text)
	}
	if strings.Contains(text, "Note: this code is written in") {
		t.Fatal("language note without a language")
	}
	if !strings.HasSuffix(text, "6. Suggested improvements") {
		t.Fatalf("checklist missing:\n%s", text)
	}
}

func TestCodeReviewStyles(t *testing.T) {
	for style, tmpl := range reviewTemplates {
		desc, text := render(t, map[string]string{"code": "print(1)", "language": "python", "reviewStyle": style})
		if desc != style+" style code review" || !strings.HasPrefix(text, tmpl) {
			t.Errorf("style %s: description %q", style, desc)
		}
		if !strings.Contains(text, "```python\nprint(1)\n```") || !strings.Contains(text, "written in python") {
			t.Errorf("style %s: language not applied:\n%s", style, text)
		}
	}
}

func TestCodeReviewRejectsUnknownStyle(t *testing.T) {
	if _, err := CodeReview().Args.ValidateStrings(map[string]string{"code": "x", "reviewStyle": "harsh"}); err == nil {
		t.Fatal("expected unknown style to be rejected")
	}
	if _, err := CodeReview().Args.ValidateStrings(map[string]string{}); err == nil {
		t.Fatal("expected missing code to be rejected")
	}
}
