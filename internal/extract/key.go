package extract

import "strings"

const keySeparator = "|"

// Key builds the cross-source identity of a posting from its title and
// company. A trailing company mention in the title ("Role @ Company" or
// "Role, Company") is dropped so both layouts produce the same key.
func Key(title, company string) string {
	role := strings.ToLower(strings.TrimSpace(title))
	if idx := strings.Index(role, "@"); idx >= 0 {
		role = role[:idx]
	} else if idx := strings.Index(role, ","); idx >= 0 {
		role = role[:idx]
	}
	return NormalizeForKey(role) + keySeparator + NormalizeForKey(company)
}
