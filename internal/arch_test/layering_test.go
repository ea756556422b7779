package arch_test

import (
	"path/filepath"
	"testing"
)

// layers assigns each internal package to a numeric layer. Lower layers are
// more foundational; a package at layer N may only import packages at layer
// N or below.
var layers = map[string]int{
	"config":    0,
	"logging":   0,
	"model":     0,
	"snapshot":  0,
	"telemetry": 0,

	"coverage": 1,
	"tree":     1,

	"state": 2,

	"storage":  3,
	"transfer": 3,

	"inbox":   4,
	"tracker": 4,

	"ui": 5,

	"tui": 6,
}

// TestDependencyLayering verifies that no internal package imports a package
// from a higher layer.
func TestDependencyLayering(t *testing.T) {
	t.Parallel()

	dir := internalDirPath(t)

	for _, pkg := range internalPackages(t) {
		importerLayer, ok := layers[pkg]
		if !ok {
			// Caught by TestNoUnknownPackages.
			continue
		}

		for _, imp := range importsOf(t, filepath.Join(dir, pkg)) {
			importedLayer, ok := layers[imp]
			if !ok || importerLayer >= importedLayer {
				continue
			}
			t.Errorf("layer violation: %s (layer %d) imports %s (layer %d)",
				pkg, importerLayer, imp, importedLayer)
		}
	}
}

// TestStorageIndependentOfTracker verifies that the persistence backends do
// not reach back into the tracker that drives them.
func TestStorageIndependentOfTracker(t *testing.T) {
	t.Parallel()

	for _, imp := range importsOf(t, filepath.Join(internalDirPath(t), "storage")) {
		if imp == "tracker" || imp == "transfer" {
			t.Errorf("storage imports %s; backends must only depend on state and model", imp)
		}
	}
}

// TestNoUnknownPackages verifies that every internal package has an assigned
// layer.
func TestNoUnknownPackages(t *testing.T) {
	t.Parallel()

	for _, pkg := range internalPackages(t) {
		if _, ok := layers[pkg]; !ok {
			t.Errorf("package %s has no layer assignment; add it to the layers map", pkg)
		}
	}
}
