package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfigInitAndValidate(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("CRCLEAR_OUTPUT_DIR", "")
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, env.configPath)

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected init to refuse overwriting an existing file")
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target, "--overwrite"}, ""); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}

	out, _, err = runCLI(t, []string{"config", "validate"}, target)
	if err != nil {
		t.Fatalf("validate sample: %v", err)
	}
	requireContains(t, out, "Configuration valid")
}

func TestConfigShowPrintsEffectiveValues(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "show"}, env.configPath)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "Key\tValue")
	requireContains(t, out, "classification.cutoff_year\t1929")
	requireContains(t, out, "classification.interim_is_foreign\tyes")
	requireContains(t, out, "paths.output_dir\t"+env.cfg.Paths.OutputDir)
}

func TestLogLevelFlagIsValidated(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, _, err := runCLI(t, []string{"--log-level", "loud", "config", "show"}, env.configPath); err == nil {
		t.Fatal("expected an unsupported log level to fail")
	}
	out, _, err := runCLI(t, []string{"--log-level", "DEBUG", "config", "show"}, env.configPath)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "logging.level\tdebug")
}
