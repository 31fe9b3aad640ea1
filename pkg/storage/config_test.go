package storage_test

import (
	"slices"
	"strings"
	"testing"

	"github.com/JaimeStill/folio/pkg/storage"
)

func TestFinalizeDefaults(t *testing.T) {
	cfg := storage.Config{Azure: storage.AzureConfig{ConnectionString: "test-connection"}}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	if cfg.Provider != storage.ProviderAzure {
		t.Errorf("provider: got %s, want azure", cfg.Provider)
	}
	if cfg.PublicBucket != "public-pdfs" {
		t.Errorf("public_bucket: got %s, want public-pdfs", cfg.PublicBucket)
	}
	if !slices.Equal(cfg.Buckets, []string{"public-pdfs"}) {
		t.Errorf("buckets: got %v, want [public-pdfs]", cfg.Buckets)
	}
}

func TestFinalizeS3Region(t *testing.T) {
	cfg := storage.Config{Provider: storage.ProviderS3}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	if cfg.S3.Region != "us-east-1" {
		t.Errorf("s3 region: got %s, want us-east-1", cfg.S3.Region)
	}
}

func TestFinalizeEnvOverrides(t *testing.T) {
	t.Setenv("TEST_PROVIDER", "s3")
	t.Setenv("TEST_BUCKETS", "public-pdfs, restricted-pdfs ,")
	t.Setenv("TEST_PUBLIC", "public-pdfs")
	t.Setenv("TEST_ENDPOINT", "http://minio:9000")
	t.Setenv("TEST_PATH_STYLE", "true")

	env := &storage.Env{
		Provider:       "TEST_PROVIDER",
		Buckets:        "TEST_BUCKETS",
		PublicBucket:   "TEST_PUBLIC",
		S3Endpoint:     "TEST_ENDPOINT",
		S3UsePathStyle: "TEST_PATH_STYLE",
	}

	cfg := storage.Config{}
	if err := cfg.Finalize(env); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	if cfg.Provider != storage.ProviderS3 {
		t.Errorf("provider: got %s, want s3", cfg.Provider)
	}
	if !slices.Equal(cfg.Buckets, []string{"public-pdfs", "restricted-pdfs"}) {
		t.Errorf("buckets: got %v", cfg.Buckets)
	}
	if cfg.S3.Endpoint != "http://minio:9000" {
		t.Errorf("s3 endpoint: got %s", cfg.S3.Endpoint)
	}
	if !cfg.S3.UsePathStyle {
		t.Error("s3 use_path_style: got false, want true")
	}
}

func TestFinalizeS3RegionFromEnvProvider(t *testing.T) {
	tests := []struct {
		name   string
		region string
		want   string
	}{
		{"default region", "", "us-east-1"},
		{"env region", "eu-west-2", "eu-west-2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_PROVIDER", "s3")
			t.Setenv("TEST_REGION", tt.region)

			cfg := storage.Config{}
			env := &storage.Env{Provider: "TEST_PROVIDER", S3Region: "TEST_REGION"}
			if err := cfg.Finalize(env); err != nil {
				t.Fatalf("finalize failed: %v", err)
			}
			if cfg.Provider != storage.ProviderS3 {
				t.Errorf("provider: got %s, want s3", cfg.Provider)
			}
			if cfg.S3.Region != tt.want {
				t.Errorf("s3 region: got %q, want %q", cfg.S3.Region, tt.want)
			}
		})
	}
}

func TestFinalizeValidation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     storage.Config
		wantErr string
	}{
		{
			name:    "azure without credentials",
			cfg:     storage.Config{},
			wantErr: "connection_string or account_url required",
		},
		{
			name:    "unknown provider",
			cfg:     storage.Config{Provider: "gcs"},
			wantErr: "unknown provider",
		},
		{
			name: "empty bucket name",
			cfg: storage.Config{
				Buckets: []string{"public-pdfs", ""},
				Azure:   storage.AzureConfig{AccountURL: "https://acct.blob.core.windows.net"},
			},
			wantErr: "bucket names must not be empty",
		},
		{
			name: "account url only",
			cfg:  storage.Config{Azure: storage.AzureConfig{AccountURL: "https://acct.blob.core.windows.net"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Finalize(nil)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestMerge(t *testing.T) {
	base := storage.Config{
		Provider:     storage.ProviderAzure,
		Buckets:      []string{"public-pdfs"},
		PublicBucket: "public-pdfs",
		Azure:        storage.AzureConfig{ConnectionString: "base"},
	}
	overlay := storage.Config{
		Buckets: []string{"public-pdfs", "restricted-pdfs"},
		Azure:   storage.AzureConfig{ConnectionString: "overlay"},
	}

	base.Merge(&overlay)

	if base.Provider != storage.ProviderAzure {
		t.Errorf("provider: got %s, want azure (preserved)", base.Provider)
	}
	if len(base.Buckets) != 2 {
		t.Errorf("buckets: got %v, want 2 entries", base.Buckets)
	}
	if base.Azure.ConnectionString != "overlay" {
		t.Errorf("connection_string: got %s, want overlay", base.Azure.ConnectionString)
	}
}

func TestBucketHelpers(t *testing.T) {
	cfg := storage.Config{
		Buckets:      []string{"public-pdfs", "restricted-pdfs"},
		PublicBucket: "public-pdfs",
	}

	if !cfg.HasBucket("restricted-pdfs") {
		t.Error("HasBucket(restricted-pdfs) = false")
	}
	if cfg.HasBucket("other") {
		t.Error("HasBucket(other) = true")
	}
	if !cfg.IsPublic("public-pdfs") {
		t.Error("IsPublic(public-pdfs) = false")
	}
	if cfg.IsPublic("restricted-pdfs") {
		t.Error("IsPublic(restricted-pdfs) = true")
	}
}
