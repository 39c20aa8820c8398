package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestLoadYAML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.yaml", "addr: :9999\nallowed_origin: https://app.example.com\nmodel_version: v1\noutput_format: obj\nstaging: s3\ns3:\n  bucket: assets\n  region: eu-west-1\n")
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":9999" || cfg.AllowedOrigin != "https://app.example.com" || cfg.ModelVersion != "v1" || cfg.OutputFormat != "obj" {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	if cfg.Staging != StagingS3 || cfg.S3.Bucket != "assets" || cfg.S3.Region != "eu-west-1" {
		t.Fatalf("unexpected staging cfg: %+v", cfg)
	}
}

func TestLoadJSON(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.json", `{"addr":":7070","staging":"replicate","max_body_bytes":1024}`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":7070" || cfg.Staging != StagingReplicate || cfg.MaxBodyBytes != 1024 {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadTOML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.toml", "addr=\":8081\"\nallowed_origin=\"https://x\"\n[s3]\nbucket=\"b\"\nprefix=\"p/\"\n")
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":8081" || cfg.AllowedOrigin != "https://x" || cfg.S3.Bucket != "b" || cfg.S3.Prefix != "p/" {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(""); err == nil {
		t.Fatalf("expected error on empty path")
	}
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.txt", "not supported")
	if _, err := Load(p); err == nil {
		t.Fatalf("expected unsupported extension error")
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("MESHD_ADDR", ":1234")
	t.Setenv("REPLICATE_API_TOKEN", "sek")
	t.Setenv("MESHD_S3_BUCKET", "envbucket")
	cfg := Config{Addr: ":8080"}
	cfg.ApplyEnv()
	if cfg.Addr != ":1234" || cfg.Token != "sek" || cfg.S3.Bucket != "envbucket" {
		t.Fatalf("env not applied: %+v", cfg)
	}
}

func TestApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if cfg.Addr != ":8080" || cfg.ModelVersion != DefaultModelVersion || cfg.OutputFormat != "glb" {
		t.Fatalf("defaults: %+v", cfg)
	}
	if cfg.Staging != StagingReplicate || cfg.MaxBodyBytes != 10<<20 {
		t.Fatalf("defaults: %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	cfg := Config{Staging: StagingReplicate}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("replicate staging needs nothing extra: %v", err)
	}
	cfg = Config{Staging: StagingS3}
	if err := cfg.Validate(); err == nil {
		t.Fatal("s3 staging without bucket must fail")
	}
	cfg = Config{Staging: StagingS3, S3: cfg.S3}
	cfg.S3.Bucket = "b"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("s3 staging with bucket: %v", err)
	}
	cfg = Config{Staging: "ftp"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("unknown staging mode must fail")
	}
}
