package registry

import (
	"slices"
	"testing"
)

func TestResolveFallbacksRequestedFirst(t *testing.T) {
	chain, err := ResolveFallbacks("laravel-mysql")
	if err != nil {
		t.Fatalf("ResolveFallbacks: %v", err)
	}
	if len(chain) == 0 {
		t.Fatal("chain must be non-empty")
	}
	if chain[0] != "laravel-mysql" {
		t.Fatalf("chain[0] = %q, want laravel-mysql", chain[0])
	}
	for _, want := range []string{"enterprise", "full-stack"} {
		if !slices.Contains(chain, want) {
			t.Fatalf("chain %v missing %q", chain, want)
		}
	}
}

func TestResolveFallbacksDeterministic(t *testing.T) {
	a, err := ResolveFallbacks("slim")
	if err != nil {
		t.Fatalf("ResolveFallbacks: %v", err)
	}
	b, _ := ResolveFallbacks("slim")
	if !slices.Equal(a, b) {
		t.Fatalf("chain is not deterministic: %v vs %v", a, b)
	}
}

func TestResolveFallbacksDefaultVariant(t *testing.T) {
	chain, err := ResolveFallbacks("")
	if err != nil {
		t.Fatalf("ResolveFallbacks: %v", err)
	}
	if chain[0] != DefaultVariant {
		t.Fatalf("empty variant should resolve to %q, got %q", DefaultVariant, chain[0])
	}
}

func TestResolveFallbacksUnknownVariant(t *testing.T) {
	if _, err := ResolveFallbacks("mystery-flavor"); err == nil {
		t.Fatal("unknown variant must fail fast, not return an empty chain")
	}
}

func TestResolveFallbacksTerminalVariant(t *testing.T) {
	chain, err := ResolveFallbacks("full-stack")
	if err != nil {
		t.Fatalf("ResolveFallbacks: %v", err)
	}
	if len(chain) != 1 || chain[0] != "full-stack" {
		t.Fatalf("terminal variant chain = %v", chain)
	}
}
