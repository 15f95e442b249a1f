package tools

import (
	"context"
	"encoding/base64"
	"fmt"

	"toolbox-mcp/internal/envelope"
	"toolbox-mcp/internal/hfinference"
	"toolbox-mcp/internal/registry"
	"toolbox-mcp/internal/schema"
	"toolbox-mcp/internal/toolerr"
)

const (
	imageModel       = "black-forest-labs/FLUX.1-schnell"
	imageSteps       = 5
	defaultImageMIME = "image/png"
)

// ImageGenerator renders a prompt to image data.
type ImageGenerator interface {
	TextToImage(ctx context.Context, model, prompt string, steps int) (hfinference.Payload, error)
}

func (tb *Toolbox) imageTool() registry.ToolDescriptor {
	return registry.ToolDescriptor{
		Name:        "generate-image",
		Title:       "Image generation",
		Description: "Generates an image from a text prompt.",
		Input: schema.Schema{
			{Name: "prompt", Kind: schema.KindString, Description: "Text prompt describing the image"},
		},
		Output:  envelope.KindImage,
		Handler: tb.generateImage,
	}
}

func (tb *Toolbox) generateImage(ctx context.Context, args schema.Args) (envelope.Result, error) {
	if !tb.imagesEnabled {
		return envelope.Result{}, toolerr.Domainf("image generation failed: HF_TOKEN environment variable is not set")
	}
	payload, err := tb.images.TextToImage(ctx, imageModel, args.String("prompt"), imageSteps)
	if err != nil {
		return envelope.Result{}, fmt.Errorf("image generation failed: %w", err)
	}
	data, mimeType, err := normalizeImage(payload)
	if err != nil {
		return envelope.Result{}, fmt.Errorf("image generation failed: %w", err)
	}
	return envelope.Image(data, mimeType), nil
}

// normalizeImage turns any provider payload into base64 data and a mime type.
func normalizeImage(p hfinference.Payload) (data, mimeType string, err error) {
	switch v := p.(type) {
	case hfinference.BlobPayload:
		return fromBlob(v)
	case hfinference.Base64Payload:
		return fromBase64(v)
	case hfinference.RawPayload:
		return fromRaw(v)
	default:
		return "", "", fmt.Errorf("unsupported image payload %T", p)
	}
}

func fromBlob(p hfinference.BlobPayload) (string, string, error) {
	if len(p.Data) == 0 {
		return "", "", fmt.Errorf("empty image data")
	}
	mimeType := p.MIMEType
	if mimeType == "" {
		mimeType = defaultImageMIME
	}
	return base64.StdEncoding.EncodeToString(p.Data), mimeType, nil
}

func fromBase64(p hfinference.Base64Payload) (string, string, error) {
	if p.Data == "" {
		return "", "", fmt.Errorf("empty image data")
	}
	return p.Data, defaultImageMIME, nil
}

func fromRaw(p hfinference.RawPayload) (string, string, error) {
	if len(p.Data) == 0 {
		return "", "", fmt.Errorf("empty image data")
	}
	return base64.StdEncoding.EncodeToString(p.Data), defaultImageMIME, nil
}
