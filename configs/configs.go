// Package configs bundles the default catalog tables and tuning.
package configs

import "embed"

//go:embed *.json tuning.yaml
var FS embed.FS
