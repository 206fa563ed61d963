package domain

import "strings"

// NormalizeConceptName is the collision-detection key for concept names:
// trimmed and lower-cased. Two names that normalize equally are the same
// node as far as duplicate detection is concerned.
func NormalizeConceptName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
