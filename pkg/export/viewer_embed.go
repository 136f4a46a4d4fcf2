package export

import (
	"embed"
	"fmt"
)

// ViewerAssetsFS holds the script and stylesheet inlined into the viewer
// page, so the exported HTML needs nothing beside itself.
//
//go:embed viewer_assets
var ViewerAssetsFS embed.FS

func readAsset(name string) (string, error) {
	b, err := ViewerAssetsFS.ReadFile("viewer_assets/" + name)
	if err != nil {
		return "", fmt.Errorf("viewer asset %s: %w", name, err)
	}
	return string(b), nil
}

// HasEmbeddedAssets reports whether the viewer assets are compiled in.
func HasEmbeddedAssets() bool {
	for _, name := range []string{"viewer.js", "viewer.css"} {
		if _, err := ViewerAssetsFS.ReadFile("viewer_assets/" + name); err != nil {
			return false
		}
	}
	return true
}
