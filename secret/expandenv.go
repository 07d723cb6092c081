package secret

import (
	"os"
	"regexp"
	"slices"
	"strings"
)

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(:-([^}]*))?\}`)

// ExpandEnvStrict expands ${VAR} references in s from the process environment.
//
// Semantics:
//   - ${VAR} is replaced by its value; if VAR is unset the call fails with a
//     *MissingEnvError naming every missing variable.
//   - ${VAR:-default} uses default when VAR is unset or empty.
//   - $$ emits a literal $.
//   - A bare $VAR is left untouched, so DSNs and passwords may contain $.
func ExpandEnvStrict(s string) (string, error) {
	return Expand(s, os.LookupEnv)
}

// Expand is ExpandEnvStrict with a custom lookup.
func Expand(s string, lookup func(string) (string, bool)) (string, error) {
	if !strings.Contains(s, "$") {
		return s, nil
	}

	const dollarSentinel = "\x00HEALTHOPS_DOLLAR\x00"
	s = strings.ReplaceAll(s, "$$", dollarSentinel)

	var missing []string
	s = envVarPattern.ReplaceAllStringFunc(s, func(m string) string {
		sub := envVarPattern.FindStringSubmatch(m)
		name, hasDefault, def := sub[1], sub[2] != "", sub[3]

		v, ok := lookup(name)
		switch {
		case hasDefault && v == "":
			return def
		case !ok:
			if !slices.Contains(missing, name) {
				missing = append(missing, name)
			}
			return m
		}
		return v
	})
	if len(missing) > 0 {
		slices.Sort(missing)
		return "", &MissingEnvError{Names: missing}
	}

	return strings.ReplaceAll(s, dollarSentinel, "$"), nil
}
