package cli

import (
	"fmt"
	"strings"
)

const (
	ImportKind = "import"
	ModelKind  = "model"
)

var (
	pluralKinds = map[string]string{
		ImportKind: "imports",
		ModelKind:  "models",
	}
)

// parseAndValidateKindId splits TYPE or TYPE/ID. Model names may not contain a
// slash so everything after the first one is the id.
func parseAndValidateKindId(arg string) (string, string, error) {
	kind, id, _ := strings.Cut(arg, "/")
	kind = singular(kind)
	if _, ok := pluralKinds[kind]; !ok {
		return "", "", fmt.Errorf("invalid resource kind: %s", kind)
	}
	return kind, id, nil
}

func singular(kind string) string {
	for singular, plural := range pluralKinds {
		if kind == plural {
			return singular
		}
	}
	return kind
}

func plural(kind string) string {
	return pluralKinds[kind]
}
