package addon

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// TestNormalize covers digit stripping and underscore substitution.
func TestNormalize(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"Mod_v1.2.jar":              "Mod-v..jar",
		"Mod-v.jar":                 "Mod-v.jar",
		"AE2WT-1.4.0.jar":           "AEWT-...jar",
		"AE2WT-.jar":                "AEWT-.jar",
		"JEI_1.12.2-4.16.1.301.jar": "JEI-..-....jar",
		"":                          "",
		"___":                       "---",
		"1234567890":                "",
		"Ünïcödé_٣.jar":             "Ünïcödé-٣.jar",
	}

	for in, want := range cases {
		require.Equal(t, want, Normalize(in), in)
	}
}

// TestNormalize_VersionsCollapse checks that two releases of one plugin share a key.
func TestNormalize_VersionsCollapse(t *testing.T) {
	t.Parallel()

	require.Equal(t, Normalize("Mod_v1.2.jar"), Normalize("Mod-v3.4.jar"))
	require.Equal(t, Normalize("AE2WT-1.3.9.jar"), Normalize("AE2WT-1.4.0.jar"))
	require.Equal(t, Normalize("ironchest_1.12.2-7.0.59.842.jar"), Normalize("ironchest-1.12.2-7.0.72.847.jar"))
	require.NotEqual(t, Normalize("ironchest-1.12.2.jar"), Normalize("ironchests-1.12.2.jar"))
}

// TestNormalize_Idempotent checks Normalize(Normalize(s)) == Normalize(s) for arbitrary strings.
func TestNormalize_Idempotent(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		s := rapid.String().Draw(t, "s")

		once := Normalize(s)
		require.Equal(t, once, Normalize(once))
	})
}

// TestNormalize_KeyHasNoDigitsOrUnderscores checks the output alphabet of the key.
func TestNormalize_KeyHasNoDigitsOrUnderscores(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		s := rapid.StringMatching(`[A-Za-z0-9_.\-]{0,40}`).Draw(t, "filename")

		key := Normalize(s)
		require.False(t, strings.ContainsAny(key, "0123456789_"), key)
		require.LessOrEqual(t, len(key), len(s))
	})
}

func entry(id int64, variants ...FileVariant) CatalogEntry {
	return CatalogEntry{
		ID:           id,
		Name:         "entry",
		FileVariants: variants,
	}
}

// TestSelectVariant_FirstPinnedWins picks the first variant of the pinned version.
func TestSelectVariant_FirstPinnedWins(t *testing.T) {
	t.Parallel()

	r := NewResolver("1.12.2")
	e := entry(1,
		FileVariant{GameVersion: "1.16.5", FileID: 10, FileName: "a-1.16.jar"},
		FileVariant{GameVersion: "1.12.2", FileID: 11, FileName: "a-1.jar"},
		FileVariant{GameVersion: "1.12.2", FileID: 12, FileName: "a-2.jar"},
	)

	variant, ok := r.SelectVariant(&e)
	require.True(t, ok)
	require.Equal(t, int64(11), variant.FileID)

	_, ok = NewResolver("1.7.10").SelectVariant(&e)
	require.False(t, ok)

	_, ok = r.SelectVariant(nil)
	require.False(t, ok)
}

// TestFindMatch_FirstEligibleInOrder returns the first of several identically normalized entries.
func TestFindMatch_FirstEligibleInOrder(t *testing.T) {
	t.Parallel()

	r := NewResolver("1.12.2")
	entries := []CatalogEntry{
		entry(1, FileVariant{GameVersion: "1.12.2", FileName: "Other-1.0.jar"}),
		entry(2, FileVariant{GameVersion: "1.12.2", FileName: "Mod_v1.3.jar"}),
		entry(3, FileVariant{GameVersion: "1.12.2", FileName: "Mod-v2.0.jar"}),
	}

	match, variant, ok := r.FindMatch(entries, "Mod_v1.2.jar")
	require.True(t, ok)
	require.Equal(t, int64(2), match.ID)
	require.Equal(t, "Mod_v1.3.jar", variant.FileName)
	require.Same(t, &entries[1], match)
}

// TestFindMatch_RequiresPinnedVariant ignores entries without a variant for the pinned version.
func TestFindMatch_RequiresPinnedVariant(t *testing.T) {
	t.Parallel()

	r := NewResolver("1.12.2")
	entries := []CatalogEntry{
		entry(1, FileVariant{GameVersion: "1.16.5", FileName: "AE2WT-1.4.0.jar"}),
		entry(2),
	}

	match, _, ok := r.FindMatch(entries, "AE2WT-.jar")
	require.False(t, ok)
	require.Nil(t, match)

	_, _, ok = r.FindMatch(nil, "AE2WT-.jar")
	require.False(t, ok)
}

// TestFindMatch_UsesSelectedVariantOnly matches on the selected variant, not on any variant.
func TestFindMatch_UsesSelectedVariantOnly(t *testing.T) {
	t.Parallel()

	r := NewResolver("1.12.2")
	entries := []CatalogEntry{
		entry(1,
			FileVariant{GameVersion: "1.12.2", FileName: "Renamed-1.0.jar"},
			FileVariant{GameVersion: "1.12.2", FileName: "Mod-1.0.jar"},
		),
	}

	_, _, ok := r.FindMatch(entries, "Mod-0.9.jar")
	require.False(t, ok)
}
