package core

import "strings"

// ParseEmailList splits a newline-delimited block into trimmed, lowercased
// addresses, keeping only tokens that contain "@". Order and duplicates are kept.
func ParseEmailList(block string) []string {
	var emails []string
	for _, line := range strings.Split(block, "\n") {
		e := strings.ToLower(strings.TrimSpace(line))
		if e != "" && strings.Contains(e, "@") {
			emails = append(emails, e)
		}
	}
	return emails
}
