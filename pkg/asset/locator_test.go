package asset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeMarker(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, MarkerFile), []byte(content), 0o644))
}

func TestLocateSingleAsset(t *testing.T) {
	root := t.TempDir()
	writeMarker(t, filepath.Join(root, "loco"), "kuid <kuid:12345:1:0>\nusername \"Test Asset\"\n")

	assets, err := Locate(root, Options{Recursive: true})
	require.NoError(t, err)
	require.Len(t, assets, 1)
	assert.Equal(t, "kuid:12345:1:0", assets[0].KUID)
	assert.Equal(t, "Test Asset", assets[0].Username)
	assert.Equal(t, "Test Asset", assets[0].DisplayName())
	assert.Equal(t, filepath.Join(root, "loco"), assets[0].Root)
}

func TestLocateDisplayNameFallback(t *testing.T) {
	root := t.TempDir()
	writeMarker(t, filepath.Join(root, "wagon"), "kuid <kuid2:44:55:1>\n")

	assets, err := Locate(root, Options{Recursive: true})
	require.NoError(t, err)
	require.Len(t, assets, 1)
	assert.Equal(t, "<kuid2:44:55:1>", assets[0].DisplayName())
}

func TestLocateNeverDescendsIntoAssetRoot(t *testing.T) {
	root := t.TempDir()
	outer := filepath.Join(root, "outer")
	writeMarker(t, outer, "kuid <kuid:1:2>\n")
	writeMarker(t, filepath.Join(outer, "nested", "inner"), "kuid <kuid:3:4>\n")

	assets, err := Locate(root, Options{Recursive: true})
	require.NoError(t, err)
	require.Len(t, assets, 1)
	assert.Equal(t, "kuid:1:2", assets[0].KUID)
}

func TestLocateNonRecursiveWithoutMarker(t *testing.T) {
	root := t.TempDir()
	writeMarker(t, filepath.Join(root, "child"), "kuid <kuid:1:2>\n")

	assets, err := Locate(root, Options{Recursive: false})
	require.NoError(t, err)
	assert.Empty(t, assets)
}

func TestLocateNonRecursiveMarkerAtRoot(t *testing.T) {
	root := t.TempDir()
	writeMarker(t, root, "kuid <kuid:9:9>\n")

	assets, err := Locate(root, Options{Recursive: false})
	require.NoError(t, err)
	require.Len(t, assets, 1)
	assert.Equal(t, root, assets[0].Root)
}

func TestLocateMarkerWithoutIdentityStopsDescent(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "notanasset")
	writeMarker(t, dir, "username \"No kuid here\"\n")
	writeMarker(t, filepath.Join(dir, "below"), "kuid <kuid:1:2>\n")

	assets, err := Locate(root, Options{Recursive: true})
	require.NoError(t, err)
	assert.Empty(t, assets)
}

func TestLocateSkipsDenyListedDirectories(t *testing.T) {
	root := t.TempDir()
	writeMarker(t, filepath.Join(root, ".git", "hidden"), "kuid <kuid:1:2>\n")
	writeMarker(t, filepath.Join(root, ".hg", "hidden"), "kuid <kuid:3:4>\n")
	writeMarker(t, filepath.Join(root, "real"), "kuid <kuid:5:6>\n")

	assets, err := Locate(root, Options{Recursive: true})
	require.NoError(t, err)
	require.Len(t, assets, 1)
	assert.Equal(t, "kuid:5:6", assets[0].KUID)
}

func TestLocateCustomSkipPatterns(t *testing.T) {
	root := t.TempDir()
	writeMarker(t, filepath.Join(root, "build-cache", "a"), "kuid <kuid:1:2>\n")
	writeMarker(t, filepath.Join(root, "assets", "b"), "kuid <kuid:3:4>\n")

	assets, err := Locate(root, Options{Recursive: true, SkipPatterns: []string{"build-*"}})
	require.NoError(t, err)
	require.Len(t, assets, 1)
	assert.Equal(t, "kuid:3:4", assets[0].KUID)
}

func TestLocateSiblingsInEnumerationOrder(t *testing.T) {
	root := t.TempDir()
	writeMarker(t, filepath.Join(root, "alpha"), "kuid <kuid:1:1>\n")
	writeMarker(t, filepath.Join(root, "beta"), "kuid <kuid:2:2>\n")

	assets, err := Locate(root, Options{Recursive: true})
	require.NoError(t, err)
	require.Len(t, assets, 2)
	assert.Equal(t, "kuid:1:1", assets[0].KUID)
	assert.Equal(t, "kuid:2:2", assets[1].KUID)
}

func TestIdentityGrammar(t *testing.T) {
	tests := []struct {
		name string
		text string
		kuid string
		ok   bool
	}{
		{"kuid with three parts", "kuid <kuid:12345:1:0>\n", "kuid:12345:1:0", true},
		{"kuid with two parts", "kuid <kuid:12345:1>\n", "kuid:12345:1", true},
		{"kuid2", "kuid  <kuid2:1:2:3>\n", "kuid2:1:2:3", true},
		{"case insensitive keyword", "KUID <KUID:1:2>\n", "KUID:1:2", true},
		{"mid file", "username \"x\"\nkuid <kuid:7:8>\n", "kuid:7:8", true},
		{"not at line start", "  kuid <kuid:1:2>\n", "", false},
		{"missing brackets", "kuid kuid:1:2\n", "", false},
		{"non-numeric", "kuid <kuid:a:b>\n", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, ok := parseMarker([]byte(tt.text), "/x")
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.kuid, a.KUID)
			}
		})
	}
}

func TestReplaceIdentity(t *testing.T) {
	const tag = "kuid  <kuid:298469:999999>"
	original := []byte("kuid <kuid:12345:1:0>\nusername \"Test\"\n")

	once := ReplaceIdentity(original, tag)
	assert.Equal(t, "kuid  <kuid:298469:999999>\nusername \"Test\"\n", string(once))

	twice := ReplaceIdentity(once, tag)
	assert.Equal(t, string(once), string(twice), "rewrite is idempotent")
}

func TestReplaceIdentityNoMatch(t *testing.T) {
	original := []byte("username \"Test\"\n")
	assert.Equal(t, original, ReplaceIdentity(original, "kuid  <kuid:298469:999999>"))
}
