package config

import _ "embed"

// ExampleConfig is a commented config.json documenting every setting.
//
//go:embed config.example.json
var ExampleConfig []byte
