package config

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/a8m/envsubst"
	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
)

// Read reads a config from the given file. Environment variables in the file are expanded
// before it is decoded.
func Read(filePath string) (*Config, error) {
	buf, err := envsubst.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	return FromReader(filePath, bytes.NewReader(buf))
}

// FromReader reads a config from the given reader and specifies
// where, if applicable, the file the reader originated from.
func FromReader(originalPath string, r io.Reader) (*Config, error) {
	cfg := Default()
	if err := json.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, errors.Wrapf(err, "failed to decode Config from json")
	}
	if err := cfg.Validate(originalPath); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FromAttributes decodes a config from a loosely typed attribute map such as one embedded in a
// larger JSON document. Keys that do not name a field are an error.
func FromAttributes(attributes map[string]interface{}) (*Config, error) {
	cfg := Default()
	if _, ok := attributes["footprint"]; ok {
		cfg.Footprint = nil
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:     "json",
		Squash:      true,
		ErrorUnused: true,
		Result:      &cfg,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(attributes); err != nil {
		return nil, errors.Wrap(err, "failed to decode Config from attributes")
	}
	if err := cfg.Validate("attributes"); err != nil {
		return nil, err
	}
	return &cfg, nil
}
