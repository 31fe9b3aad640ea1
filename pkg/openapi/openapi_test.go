package openapi_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/folio/pkg/openapi"
)

func testConfig(t *testing.T) *openapi.Config {
	t.Helper()
	cfg := &openapi.Config{}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	return cfg
}

func TestNewSpec(t *testing.T) {
	spec := openapi.NewSpec(testConfig(t), "1.0.0")

	if spec.OpenAPI != "3.1.0" {
		t.Errorf("openapi: got %s, want 3.1.0", spec.OpenAPI)
	}
	if spec.Info.Title != "Folio API" {
		t.Errorf("title: got %s", spec.Info.Title)
	}

	scheme := spec.Components.SecuritySchemes[openapi.APIKeyScheme]
	if scheme == nil || scheme.Name != "X-API-Key" || scheme.In != "header" {
		t.Errorf("security scheme: got %+v", scheme)
	}
	for _, name := range []string{"BadRequest", "Forbidden", "NotFound", "Conflict", "Unprocessable", "BadGateway", "Redirect"} {
		if spec.Components.Responses[name] == nil {
			t.Errorf("missing component response %s", name)
		}
	}
}

func TestAddOperation(t *testing.T) {
	spec := openapi.NewSpec(testConfig(t), "1.0.0")

	spec.AddOperation("/api/documents", "GET", &openapi.Operation{Summary: "list"})
	spec.AddOperation("/api/documents", "post", &openapi.Operation{Summary: "create"})
	spec.AddOperation("/api/documents", "PATCH", &openapi.Operation{Summary: "ignored"})

	item := spec.Paths["/api/documents"]
	if item.Get == nil || item.Get.Summary != "list" {
		t.Errorf("get: got %+v", item.Get)
	}
	if item.Post == nil || item.Post.Summary != "create" {
		t.Errorf("post: got %+v", item.Post)
	}
}

func TestEnumQueryParam(t *testing.T) {
	p := openapi.EnumQueryParam("content_type", "Output format", "pdf", "pdf", "png")
	if p.In != "query" || p.Required {
		t.Errorf("param: got in=%s required=%v", p.In, p.Required)
	}
	if len(p.Schema.Enum) != 2 || p.Schema.Default != "pdf" {
		t.Errorf("schema: got %+v", p.Schema)
	}
}

func TestServeSpec(t *testing.T) {
	spec := openapi.NewSpec(testConfig(t), "1.0.0")
	spec.AddServer("/api")

	data, err := openapi.MarshalJSON(spec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	rec := httptest.NewRecorder()
	openapi.ServeSpec(data)(rec, httptest.NewRequest(http.MethodGet, "/openapi.json", nil))

	res := rec.Result()
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		t.Errorf("status: got %d", res.StatusCode)
	}
	body, _ := io.ReadAll(res.Body)
	var parsed map[string]any
	if err := json.Unmarshal(body, &parsed); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if parsed["openapi"] != "3.1.0" {
		t.Errorf("openapi field: got %v", parsed["openapi"])
	}
}

func TestConfigMerge(t *testing.T) {
	cfg := testConfig(t)
	cfg.Merge(&openapi.Config{Title: "Folio Staging"})

	if cfg.Title != "Folio Staging" {
		t.Errorf("title: got %s", cfg.Title)
	}
	if cfg.Description == "" {
		t.Error("description should be preserved")
	}
}
