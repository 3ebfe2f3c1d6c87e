package assets

import (
	"embed"
)

//go:embed panel.html
var FS embed.FS

// PanelPage returns the virtual front panel served at "/".
func PanelPage() ([]byte, error) {
	return FS.ReadFile("panel.html")
}
