package runner

import "regexp"

var paramRegex = regexp.MustCompile(`\{\{(\w+)\}\}`)

// ExtractParams returns the distinct {{param}} names in cmd, in order of
// first appearance.
func ExtractParams(cmd string) []string {
	seen := make(map[string]bool)
	var params []string
	for _, m := range paramRegex.FindAllStringSubmatch(cmd, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			params = append(params, m[1])
		}
	}
	return params
}

// SubstituteParams fills in {{param}} placeholders. Placeholders without a
// value are left as they are.
func SubstituteParams(cmd string, values map[string]string) string {
	return paramRegex.ReplaceAllStringFunc(cmd, func(match string) string {
		name := paramRegex.FindStringSubmatch(match)[1]
		if v, ok := values[name]; ok {
			return v
		}
		return match
	})
}
