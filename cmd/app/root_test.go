package main

import (
	"bytes"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func executeCommand(args ...string) (string, error) {
	var out bytes.Buffer

	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()

	return out.String(), err
}

func TestConfigCommand(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "sk-very-secret")
	t.Setenv("OPENROUTER_MODEL", "google/gemini-flash-1.5-8b")
	t.Setenv("MOCK_AI", "yes")
	t.Setenv("JOB_TTL_MS", "1500")

	out, err := executeCommand("config")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if strings.Contains(out, "sk-very-secret") {
		t.Fatal("api key must not be printed")
	}

	var dump struct {
		Transform struct {
			Mock bool `yaml:"mock"`
		} `yaml:"transform"`
		Provider struct {
			Model         string `yaml:"model"`
			ModelRemapped bool   `yaml:"model_remapped"`
			APIKeySet     bool   `yaml:"api_key_set"`
		} `yaml:"provider"`
		Retention struct {
			JobTTLMillis int64 `yaml:"job_ttl_ms"`
		} `yaml:"retention"`
	}
	if err := yaml.Unmarshal([]byte(out), &dump); err != nil {
		t.Fatalf("output is not YAML: %v\n%s", err, out)
	}

	if !dump.Transform.Mock || !dump.Provider.APIKeySet || !dump.Provider.ModelRemapped {
		t.Fatalf("unexpected flags in\n%s", out)
	}
	if dump.Provider.Model != "google/gemini-2.5-flash-image-preview" {
		t.Fatalf("unexpected model %q", dump.Provider.Model)
	}
	if dump.Retention.JobTTLMillis != 1500 {
		t.Fatalf("unexpected ttl %d", dump.Retention.JobTTLMillis)
	}
}

func TestConfigCommandRejectsBadTTL(t *testing.T) {
	t.Setenv("JOB_TTL_MS", "0")

	if _, err := executeCommand("config"); err == nil {
		t.Fatal("expected an error for a non-positive TTL")
	}
}
