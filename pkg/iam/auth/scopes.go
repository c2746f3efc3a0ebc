package auth

import "strings"

// ScopeAll grants every scope
const ScopeAll = "*"

// ScopeMatches reports whether a granted scope covers the required one.
// "*" covers everything and "resource:*" covers every action on resource.
func ScopeMatches(granted, required string) bool {
	if granted == ScopeAll || granted == required {
		return true
	}
	if resource, ok := strings.CutSuffix(granted, ":*"); ok {
		return strings.HasPrefix(required, resource+":")
	}
	return false
}

// HasAnyScope reports whether any granted scope covers any required scope
func HasAnyScope(granted []string, required ...string) bool {
	for _, r := range required {
		for _, g := range granted {
			if ScopeMatches(g, r) {
				return true
			}
		}
	}
	return false
}

// ExpandGroup returns the scopes of a named role group, or nil
func ExpandGroup(name string) []string {
	return DomainScopeGroups[name]
}
