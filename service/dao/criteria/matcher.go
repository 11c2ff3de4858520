package criteria

import (
	"github.com/viant/procman/service/dao"
)

// Matches reports whether actual satisfies every parameter named name.
// Parameters with other names are ignored.
func Matches(name, actual string, parameters []*dao.Parameter) bool {
	for _, parameter := range parameters {
		if parameter == nil || parameter.Name != name {
			continue
		}
		switch expected := parameter.Value.(type) {
		case string:
			if actual != expected {
				return false
			}
		case []string:
			found := false
			for _, candidate := range expected {
				if candidate == actual {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
	}
	return true
}
