package config

import _ "embed"

// Default holds the embedded default configuration.
//
//go:embed default.yaml
var Default []byte
