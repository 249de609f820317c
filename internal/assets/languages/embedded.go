package languageassets

import _ "embed"

// YAML is the embedded language catalog consumed by internal/core.
//
//go:embed languages.yaml
var YAML []byte
