package render

import "strings"

// Render substitutes every {{key}} occurrence in tmpl with vars[key]. Keys
// missing from vars are left as the literal {{key}} token. No nesting,
// conditionals or loops; pure string substitution.
func Render(tmpl string, vars map[string]string) string {
	if len(vars) == 0 {
		return tmpl
	}

	pairs := make([]string, 0, len(vars)*2)
	for key, value := range vars {
		pairs = append(pairs, "{{"+key+"}}", value)
	}

	return strings.NewReplacer(pairs...).Replace(tmpl)
}
