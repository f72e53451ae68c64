// Package seed supplies the catalog a new library session starts from.
//
// The default catalog is embedded in the binary. A replacement can be read
// from a YAML file with the same shape (see seed.yaml).
package seed

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/dalemusser/edulibrary/internal/domain/models"
	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var defaultCatalog []byte

// dateLayout is the upload_date format.
const dateLayout = "2006-01-02"

// File is the on-disk shape of a seed catalog.
type File struct {
	Resources []models.Resource `yaml:"resources"`
}

// Default returns the embedded catalog.
func Default() ([]models.Resource, error) {
	return Parse(defaultCatalog)
}

// Load reads a catalog from path. An empty path means the embedded default.
func Load(path string) ([]models.Resource, error) {
	if path == "" {
		return Default()
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(b)
}

// Parse decodes a YAML catalog. Unknown keys and malformed upload dates are
// rejected so a typo in a hand-edited seed file fails loudly at startup.
func Parse(b []byte) ([]models.Resource, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	for i := range f.Resources {
		r := &f.Resources[i]
		if _, err := time.Parse(dateLayout, r.UploadDate); err != nil {
			return nil, fmt.Errorf("parse seed: resource %d: upload_date %q is not YYYY-MM-DD", r.ID, r.UploadDate)
		}
		if r.Reviews == nil {
			r.Reviews = []models.Review{}
		}
	}
	return f.Resources, nil
}
