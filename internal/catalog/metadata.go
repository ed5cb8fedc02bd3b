package catalog

import (
	"fmt"
	"sort"
	"strings"
)

// packArtExtensions are tried in order when a set has no explicit pack art.
var packArtExtensions = []string{"png", "jpg", "jpeg", "webp"}

// packArtAliases maps short codes whose art file is named differently.
var packArtAliases = map[string]string{
	"WNOHGB": "WNHGB",
}

// PackArtCandidates returns the image paths to try, in order, for a set's pack art.
func PackArtCandidates(s *Set) []string {
	if art := strings.TrimSpace(s.Meta.PackArt); art != "" {
		return []string{art}
	}

	code := s.ShortCode()
	if alias, ok := packArtAliases[code]; ok {
		code = alias
	}

	candidates := make([]string, 0, len(packArtExtensions))
	for _, ext := range packArtExtensions {
		candidates = append(candidates, fmt.Sprintf("pack-art/%s.%s", code, ext))
	}
	return candidates
}

// MergeSetMeta merges metadata sources keyed by short code, or set code when
// a row has no short code. Rows from later sources replace earlier ones; rows
// with neither code are dropped. The result is sorted by short code.
func MergeSetMeta(sources ...[]SetMeta) []SetMeta {
	merged := make(map[string]SetMeta)
	for _, src := range sources {
		for _, m := range src {
			key := m.ShortCode
			if key == "" {
				key = m.SetCode
			}
			if key == "" {
				continue
			}
			merged[key] = m
		}
	}

	out := make([]SetMeta, 0, len(merged))
	for _, m := range merged {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ShortCode < out[j].ShortCode
	})
	return out
}
