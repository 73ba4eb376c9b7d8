package broadcaster

import (
	"fmt"
	"sort"
	"strings"
)

func makeError(errors map[string]error) error {
	if len(errors) == 0 {
		return nil
	}
	names := make([]string, 0, len(errors))
	for name := range errors {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s(%s)", name, errors[name].Error()))
	}
	return fmt.Errorf("%s", strings.Join(parts, ". "))
}
