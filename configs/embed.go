// Package configs provides embedded configuration templates for interlog.
//
// The templates are used by:
//   - interlog config init → writes .interlog.yaml (or the user config with --user)
//   - interlog config init --rules → writes a starter appsettings.yaml rule file
//
// Configuration hierarchy (see internal/config Load()):
//  1. Hardcoded defaults
//  2. User config (~/.config/interlog/config.yaml)
//  3. Project config (.interlog.yaml)
//  4. Environment variables (INTERLOG_*)
package configs

import _ "embed"

// ProjectConfigTemplate is the template for the generator configuration.
//
//go:embed project-config.example.yaml
var ProjectConfigTemplate string

// RulesTemplate is a starter log rule file.
//
//go:embed rules.example.yaml
var RulesTemplate string
