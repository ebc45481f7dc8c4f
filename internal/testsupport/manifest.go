package testsupport

import (
	"context"
	"testing"

	"github.com/PheelaV/kr-notebook/internal/manifest"
)

// SaveManifest persists m into lessonDir and fails the test on error.
func SaveManifest(t testing.TB, lessonDir string, m *manifest.Manifest) {
	t.Helper()

	store := manifest.NewStore(lessonDir, nil)
	if err := store.Save(context.Background(), m); err != nil {
		t.Fatalf("save manifest: %v", err)
	}
}

// LoadManifest reads the manifest stored in lessonDir and fails the test on
// error.
func LoadManifest(t testing.TB, lessonDir string) *manifest.Manifest {
	t.Helper()

	store := manifest.NewStore(lessonDir, nil)
	m, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load manifest: %v", err)
	}
	return m
}
