package config

import (
	"os"
	"testing"

	"github.com/spf13/viper"

	"github.com/provchain-labs/owl2reasoner/internal/testutil"
)

func TestLoadDefault(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd failed: %v", err)
	}
	defer os.Chdir(wd)
	viper.Reset()

	sb, err := testutil.NewSandbox()
	if err != nil {
		t.Fatalf("NewSandbox failed: %v", err)
	}
	defer sb.Cleanup()
	if err := os.Chdir(sb.Root); err != nil {
		t.Fatalf("chdir failed: %v", err)
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Cache.MaxSize != 10_000 {
		t.Fatalf("unexpected cache max size: %d", cfg.Cache.MaxSize)
	}
	if cfg.Reasoner.Blocking != "subset" {
		t.Fatalf("unexpected reasoner blocking strategy: %s", cfg.Reasoner.Blocking)
	}
}

func TestLoadOverridesFromSandboxedConfigFile(t *testing.T) {
	sb, err := testutil.NewSandbox()
	if err != nil {
		t.Fatalf("NewSandbox failed: %v", err)
	}
	defer sb.Cleanup()

	if err := os.Mkdir(sb.Path("config"), 0700); err != nil {
		t.Fatalf("Mkdir failed: %v", err)
	}
	data := []byte("cache:\n  max_size: 42\nlogging:\n  level: debug\n")
	if err := sb.WriteFile("config/default.yaml", data, 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd failed: %v", err)
	}
	defer os.Chdir(wd)
	viper.Reset()

	if err := os.Chdir(sb.Root); err != nil {
		t.Fatalf("chdir failed: %v", err)
	}
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Cache.MaxSize != 42 {
		t.Fatalf("expected cache max_size 42, got %d", cfg.Cache.MaxSize)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("expected logging level debug, got %s", cfg.Logging.Level)
	}
}

func TestLoadMergesEnvSpecificFile(t *testing.T) {
	sb, err := testutil.NewSandbox()
	if err != nil {
		t.Fatalf("NewSandbox failed: %v", err)
	}
	defer sb.Cleanup()

	if err := os.Mkdir(sb.Path("config"), 0700); err != nil {
		t.Fatalf("Mkdir failed: %v", err)
	}
	base := []byte("cache:\n  max_size: 100\n")
	if err := sb.WriteFile("config/default.yaml", base, 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	sandbox := []byte("reasoner:\n  max_depth: 7\n")
	if err := sb.WriteFile("config/sandbox.yaml", sandbox, 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd failed: %v", err)
	}
	defer os.Chdir(wd)
	viper.Reset()

	if err := os.Chdir(sb.Root); err != nil {
		t.Fatalf("chdir failed: %v", err)
	}
	cfg, err := Load("sandbox")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Cache.MaxSize != 100 {
		t.Fatalf("expected base cache max_size 100 to survive the merge, got %d", cfg.Cache.MaxSize)
	}
	if cfg.Reasoner.MaxDepth != 7 {
		t.Fatalf("expected merged reasoner max_depth 7, got %d", cfg.Reasoner.MaxDepth)
	}
}
