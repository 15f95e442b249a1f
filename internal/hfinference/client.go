// Package hfinference provides a minimal client for Hugging Face text-to-image inference.
package hfinference

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"toolbox-mcp/internal/toolerr"
)

const (
	// DefaultBaseURL is the Hugging Face inference router for hosted models.
	DefaultBaseURL = "https://router.huggingface.co/hf-inference/models"

	service = "hf-inference"
	// maxImageBytes caps the response body read.
	maxImageBytes = 20 << 20
)

// ErrMissingToken is returned when no access token is configured.
var ErrMissingToken = errors.New("hugging face access token not configured")

// Payload is the image data returned by the provider. The concrete type is
// one of BlobPayload, Base64Payload or RawPayload.
type Payload interface {
	isPayload()
}

// BlobPayload is binary image data with a declared mime type.
type BlobPayload struct {
	Data     []byte
	MIMEType string
}

// Base64Payload is image data the provider already base64-encoded.
type Base64Payload struct {
	Data string
}

// RawPayload is binary data without a usable mime type.
type RawPayload struct {
	Data []byte
}

func (BlobPayload) isPayload()   {}
func (Base64Payload) isPayload() {}
func (RawPayload) isPayload()    {}

// Client calls the text-to-image task.
type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

// New returns a new client. If httpClient is nil, a default with 120s timeout is used.
func New(baseURL, token string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 120 * time.Second}
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{BaseURL: strings.TrimRight(baseURL, "/"), Token: token, HTTP: httpClient}
}

type textToImageRequest struct {
	Inputs     string     `json:"inputs"`
	Parameters parameters `json:"parameters"`
}

type parameters struct {
	NumInferenceSteps int `json:"num_inference_steps"`
}

// TextToImage generates one image for prompt with the given model.
func (c *Client) TextToImage(ctx context.Context, model, prompt string, steps int) (Payload, error) {
	if c.Token == "" {
		return nil, ErrMissingToken
	}
	body, err := json.Marshal(textToImageRequest{Inputs: prompt, Parameters: parameters{NumInferenceSteps: steps}})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/"+model, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.Token)
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, &toolerr.TransportFault{Service: service, Err: err}
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, &toolerr.TransportFault{Service: service, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		fault := &toolerr.TransportFault{Service: service, Status: resp.StatusCode}
		if msg := gjson.GetBytes(data, "error").String(); msg != "" {
			fault.Err = errors.New(msg)
		}
		return nil, fault
	}
	return classify(resp.Header.Get("Content-Type"), data)
}

func classify(contentType string, data []byte) (Payload, error) {
	mediaType, _, _ := mime.ParseMediaType(contentType)
	switch {
	case strings.HasPrefix(mediaType, "image/"):
		return BlobPayload{Data: data, MIMEType: mediaType}, nil
	case mediaType == "application/json":
		return classifyJSON(data)
	default:
		return RawPayload{Data: data}, nil
	}
}

func classifyJSON(data []byte) (Payload, error) {
	if !gjson.ValidBytes(data) {
		return nil, &toolerr.TransportFault{Service: service, Err: fmt.Errorf("invalid json body")}
	}
	root := gjson.ParseBytes(data)
	if root.Type == gjson.String {
		return Base64Payload{Data: root.String()}, nil
	}
	for _, path := range []string{"image", "b64_json", "data.0.b64_json"} {
		if v := root.Get(path); v.Type == gjson.String && v.String() != "" {
			return Base64Payload{Data: v.String()}, nil
		}
	}
	if msg := root.Get("error").String(); msg != "" {
		return nil, &toolerr.TransportFault{Service: service, Err: errors.New(msg)}
	}
	return nil, &toolerr.TransportFault{Service: service, Err: fmt.Errorf("no image in response")}
}
