package settings

import (
	"io/fs"
	"os"

	"github.com/goliatone/go-settings/pkg/schema"
)

// LoadSections reads every JSON, YAML and HCL schema file in fsys.
func LoadSections(fsys fs.FS) ([]Section, error) {
	return schema.LoadFS(fsys)
}

// SchemaDir returns an extension that upserts the sections found in dir.
func SchemaDir(dir string) Extension {
	return schema.FromFS(os.DirFS(dir))
}
