package hfinference

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"toolbox-mcp/internal/toolerr"
)

func TestTextToImageRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/black-forest-labs/FLUX.1-schnell" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer hf_test" {
			t.Errorf("unexpected auth header %q", r.Header.Get("Authorization"))
		}
		var body textToImageRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body.Inputs != "a cat" || body.Parameters.NumInferenceSteps != 5 {
			t.Errorf("unexpected body %#v", body)
		}
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write([]byte{0xff, 0xd8, 0xff})
	}))
	defer srv.Close()

	p, err := New(srv.URL, "hf_test", srv.Client()).TextToImage(context.Background(), "black-forest-labs/FLUX.1-schnell", "a cat", 5)
	if err != nil {
		t.Fatalf("TextToImage() error = %v", err)
	}
	blob, ok := p.(BlobPayload)
	if !ok || blob.MIMEType != "image/jpeg" || len(blob.Data) != 3 {
		t.Fatalf("unexpected payload %#v", p)
	}
}

func TestTextToImageMissingToken(t *testing.T) {
	_, err := New("http://127.0.0.1:0", "", nil).TextToImage(context.Background(), "m", "p", 5)
	if !errors.Is(err, ErrMissingToken) {
		t.Fatalf("expected ErrMissingToken, got %v", err)
	}
}

func TestTextToImageErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":"Model is loading"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, "t", srv.Client()).TextToImage(context.Background(), "m", "p", 5)
	var tf *toolerr.TransportFault
	if !errors.As(err, &tf) || tf.Status != http.StatusServiceUnavailable || tf.Err == nil {
		t.Fatalf("expected 503 transport fault with message, got %v", err)
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name        string
		contentType string
		body        string
		want        Payload
	}{
		{"blob", "image/png", "PNG", BlobPayload{Data: []byte("PNG"), MIMEType: "image/png"}},
		{"json string", "application/json; charset=utf-8", `"aGVsbG8="`, Base64Payload{Data: "aGVsbG8="}},
		{"json object", "application/json", `{"b64_json":"aGk="}`, Base64Payload{Data: "aGk="}},
		{"raw", "application/octet-stream", "RAW", RawPayload{Data: []byte("RAW")}},
		{"no content type", "", "RAW", RawPayload{Data: []byte("RAW")}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := classify(tc.contentType, []byte(tc.body))
			if err != nil {
				t.Fatalf("classify() error = %v", err)
			}
			switch want := tc.want.(type) {
			case BlobPayload:
				g, ok := got.(BlobPayload)
				if !ok || string(g.Data) != string(want.Data) || g.MIMEType != want.MIMEType {
					t.Fatalf("got %#v, want %#v", got, want)
				}
			case Base64Payload:
				if got != want {
					t.Fatalf("got %#v, want %#v", got, want)
				}
			case RawPayload:
				g, ok := got.(RawPayload)
				if !ok || string(g.Data) != string(want.Data) {
					t.Fatalf("got %#v, want %#v", got, want)
				}
			}
		})
	}
}

func TestClassifyJSONWithoutImage(t *testing.T) {
	if _, err := classify("application/json", []byte(`{"warning":"x"}`)); err == nil {
		t.Fatal("expected error for json without image")
	}
}
