package routecmd

import (
	"testing"

	"go.uber.org/zap"

	"gfx.cafe/gfx/pgroute/lib/router"
)

func TestConfigSourceSelection(t *testing.T) {
	log := zap.NewNop()

	var config Config
	config.Port = 5432

	if _, err := config.source(log); err == nil {
		t.Error("expected error with no topology")
	}

	config.Hosts = []string{"db0:5433"}
	source, err := config.source(log)
	if err != nil {
		t.Fatal(err)
	}
	static, ok := source.(router.StaticEndpoint)
	if !ok {
		t.Fatalf("expected StaticEndpoint, got %T", source)
	}
	if static.Host != "db0" || static.Port != 5433 {
		t.Errorf("got %v", static)
	}

	config.Hosts = []string{"db0", "db1"}
	source, err = config.source(log)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok = source.(router.HostList); !ok {
		t.Fatalf("expected HostList, got %T", source)
	}

	config.Discover = true
	if _, err = config.source(log); err == nil {
		t.Error("expected error for --discover without --api")
	}

	config.APIEndpoints = []string{"node1:8008"}
	source, err = config.source(log)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok = source.(router.Discovered); !ok {
		t.Fatalf("expected Discovered, got %T", source)
	}
}

func TestFallbackDescriptorGating(t *testing.T) {
	config := Config{
		Hosts:        []string{"db0"},
		Port:         5432,
		FallbackHost: "db1",
		Database:     "app",
		User:         "alice",
	}

	descriptor, err := fallbackDescriptor(&config, router.BestEffort, "pw")
	if err != nil {
		t.Fatal(err)
	}
	if descriptor == nil {
		t.Fatal("expected fallback for best-effort static topology")
	}
	if descriptor.Candidates[0].Host != "db1" {
		t.Errorf("got %v", descriptor.Candidates)
	}

	if d, _ := fallbackDescriptor(&config, router.ReadWrite, "pw"); d != nil {
		t.Error("expected no fallback for read-write intent")
	}

	config.Discover = true
	if d, _ := fallbackDescriptor(&config, router.BestEffort, "pw"); d != nil {
		t.Error("expected no fallback for discovered topology")
	}
}
