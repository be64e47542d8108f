package codec

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielpatrickdp/claimcheck/go-pipeline/internal/tao"
)

// #region fixtures
func testClient(endpoint string) *Client {
	return NewClient(Config{
		Endpoint:      endpoint,
		GenerateModel: "test-gen",
		EmbedModel:    "test-embed",
		Timeout:       2 * time.Second,
	})
}

// #endregion fixtures

// #region available-tests
func TestAvailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, `{"models": []}`)
	}))
	defer srv.Close()

	if !testClient(srv.URL).Available() {
		t.Error("expected available against a live server")
	}

	srv.Close()
	if testClient(srv.URL).Available() {
		t.Error("expected unavailable against a closed server")
	}
}

// #endregion available-tests

// #region generate-tests
func TestGenerate_SendsParams(t *testing.T) {
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			http.NotFound(w, r)
			return
		}
		gotBody, _ = io.ReadAll(r.Body)
		fmt.Fprint(w, `{"response": "generated text"}`)
	}))
	defer srv.Close()

	params := tao.DecodingParams{Temperature: 0.85, NumBeams: 6, RepetitionPenalty: 1.1}
	out, err := testClient(srv.URL).Generate(context.Background(), "check this claim", params)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if out != "generated text" {
		t.Errorf("out = %q", out)
	}

	var req generateRequest
	if err := json.Unmarshal(gotBody, &req); err != nil {
		t.Fatalf("request body did not parse: %v", err)
	}
	if req.Model != "test-gen" || req.Prompt != "check this claim" {
		t.Errorf("unexpected request: %+v", req)
	}
	if req.Options.Temperature != 0.85 || req.Options.NumBeams != 6 || req.Options.RepetitionPenalty != 1.1 {
		t.Errorf("decoding params not forwarded: %+v", req.Options)
	}
}

func TestGenerate_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Generate(context.Background(), "claim", tao.DefaultParams())
	if err == nil {
		t.Fatal("expected error on 500 response")
	}
}

// #endregion generate-tests

// #region embed-tests
func TestEmbed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embeddings" {
			http.NotFound(w, r)
			return
		}
		body, _ := io.ReadAll(r.Body)
		var req embedRequest
		if err := json.Unmarshal(body, &req); err != nil {
			t.Errorf("request body did not parse: %v", err)
		}
		if req.Model != "test-embed" || req.Prompt != "some text" {
			t.Errorf("unexpected request: %+v", req)
		}
		fmt.Fprint(w, `{"embedding": [0.1, 0.2, 0.3]}`)
	}))
	defer srv.Close()

	vec, err := testClient(srv.URL).Embed(context.Background(), "some text")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if len(vec) != 3 {
		t.Fatalf("len = %d, want 3", len(vec))
	}
}

func TestEmbed_EmptyVectorIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"embedding": []}`)
	}))
	defer srv.Close()

	if _, err := testClient(srv.URL).Embed(context.Background(), "text"); err == nil {
		t.Fatal("expected error on empty embedding")
	}
}

// #endregion embed-tests

// #region context-tests
func TestGenerate_ContextCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := testClient(srv.URL).Generate(ctx, "claim", tao.DefaultParams()); err == nil {
		t.Fatal("expected error on cancelled context")
	}
}

// #endregion context-tests
