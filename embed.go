package switchboard

import "embed"

// EmbeddedConfigFS provides the default room registry and settings used when
// no user configuration files are present.
//
//go:embed config
var EmbeddedConfigFS embed.FS
