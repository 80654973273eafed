// Package config handles YAML config file loading for the facet CLI.
package config

import (
	"os"
	"regexp"
)

// envVarPattern matches ${VAR} and ${VAR:-default} references in config text.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-([^}]*))?\}`)

// ExpandEnv substitutes environment variables into raw config text before it
// is parsed as YAML. ${VAR} expands to the variable's value, ${VAR:-default}
// falls back to the default when the variable is unset or empty.
//
// A reference with no value and no default expands to the empty string rather
// than failing. The config layer treats empty strings as "not configured":
// an empty dev_server.url just means file mode, and Validate catches the
// combinations that actually conflict.
func ExpandEnv(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		groups := envVarPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}

		if value, ok := os.LookupEnv(groups[1]); ok && value != "" {
			return value
		}

		// groups[2] holds the :-default text, if any.
		if len(groups) >= 3 {
			return groups[2]
		}
		return ""
	})
}
