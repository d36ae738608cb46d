package config

import "testing"

func readyS3() S3Config {
	return S3Config{
		Endpoint:        "https://storage.yandexcloud.net",
		Region:          "ru-central1",
		Bucket:          "cookbook",
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
	}
}

func TestS3ConfigMissingRequired(t *testing.T) {
	cfg := S3Config{
		Endpoint: "https://storage.yandexcloud.net",
		Bucket:   "cookbook",
	}
	missing := cfg.MissingRequired()

	want := []string{"S3_REGION", "S3_ACCESS_KEY_ID", "S3_SECRET_ACCESS_KEY"}
	if len(missing) != len(want) {
		t.Fatalf("expected %d missing fields, got %d (%v)", len(want), len(missing), missing)
	}
	for i := range want {
		if missing[i] != want[i] {
			t.Fatalf("expected missing[%d]=%s, got %s", i, want[i], missing[i])
		}
	}
}

func TestS3ConfigPublicURLRequiredOnlyWhenPreferred(t *testing.T) {
	cfg := readyS3()
	if !cfg.IsConfigured() {
		t.Fatal("public base URL must be optional by default")
	}

	cfg.PreferPublicURL = true
	if cfg.IsConfigured() {
		t.Fatal("expected S3_PUBLIC_BASE_URL to be required when preferred")
	}

	cfg.PublicBaseURL = "https://cdn.example.com/cookbook/"
	if !cfg.IsConfigured() {
		t.Fatal("expected configured once public base URL is set")
	}
	if got := cfg.PublicURL("/exports/a.json"); got != "https://cdn.example.com/cookbook/exports/a.json" {
		t.Errorf("unexpected public URL: %s", got)
	}
}

func TestS3ConfigDiagnostics(t *testing.T) {
	tests := []struct {
		name      string
		cfg       S3Config
		wantLevel string
		wantCode  string
	}{
		{"not configured", S3Config{}, "INFO", "s3_not_configured"},
		{"partial config", S3Config{Endpoint: "https://storage.yandexcloud.net"}, "WARN", "s3_partial_config"},
		{"ready", readyS3(), "INFO", "s3_ready"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level, code, _ := tt.cfg.Diagnostics()
			if level != tt.wantLevel || code != tt.wantCode {
				t.Fatalf("expected %s/%s, got %s/%s", tt.wantLevel, tt.wantCode, level, code)
			}
		})
	}
}
