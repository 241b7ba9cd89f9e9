package config

import (
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"tomcatvhost/internal/types"
)

type (
	// Document is a declarative vhost descriptor file: a list of hosts to
	// reconcile, plus an optional conf directory override.
	Document struct {
		ConfDir string            `yaml:"conf_dir"`
		Hosts   []types.VhostSpec `yaml:"hosts" validate:"min=1,dive"`
	}
)

// Parse reads and validates a vhost descriptor file, applying per-host
// defaults.
func Parse(path string) (*Document, error) {
	fi, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fi.Close()

	value, err := io.ReadAll(fi)
	if err != nil {
		return nil, err
	}

	doc := &Document{}
	if err = yaml.Unmarshal(value, doc); err != nil {
		return nil, err
	}

	for i := range doc.Hosts {
		doc.Hosts[i].ApplyDefaults()
	}

	mValidator := validator.New(validator.WithRequiredStructEnabled())
	if err = mValidator.Struct(doc); err != nil {
		return nil, err
	}
	return doc, nil
}
