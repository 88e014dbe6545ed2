package registry

import "fmt"

// DefaultVariant is used when a dependency declares no variant.
const DefaultVariant = "standard"

// variantChains is the static fallback configuration: for each variant, the
// ordered list of broader variants tried when the requested one has no
// artifact for the host. The table is fixed configuration, independent of the
// remote manifest, so fallback order stays deterministic and testable even
// when the manifest fetch fails.
var variantChains = map[string][]string{
	"full-stack":       {},
	"enterprise":       {"full-stack"},
	"standard":         {"full-stack"},
	"slim":             {"standard", "full-stack"},
	"api":              {"standard", "full-stack"},
	"laravel":          {"enterprise", "full-stack"},
	"laravel-mysql":    {"laravel", "enterprise", "full-stack"},
	"laravel-postgres": {"laravel", "enterprise", "full-stack"},
	"laravel-sqlite":   {"laravel", "enterprise", "full-stack"},
}

func init() {
	// The table must be internally closed: every fallback target is itself a
	// known variant. A broken table is a programming error, caught at load.
	for variant, chain := range variantChains {
		for _, next := range chain {
			if _, ok := variantChains[next]; !ok {
				panic(fmt.Sprintf("registry: variant %q falls back to unknown variant %q", variant, next))
			}
		}
	}
}

// ResolveFallbacks returns the ordered variants to try for a requested
// variant: the request itself first, then its family's fallback chain. An
// unknown variant is an explicit error, never a silently empty chain.
func ResolveFallbacks(variant string) ([]string, error) {
	if variant == "" {
		variant = DefaultVariant
	}
	chain, ok := variantChains[variant]
	if !ok {
		return nil, fmt.Errorf("unknown binary variant %q", variant)
	}
	out := make([]string, 0, len(chain)+1)
	out = append(out, variant)
	out = append(out, chain...)
	return out, nil
}
