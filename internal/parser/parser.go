// Package parser extracts measurements from the textual output of ping and
// top. Parsers are pure: they never fail, they report whether a value was
// found.
package parser

import "strings"

func lines(out string) []string {
	ls := strings.Split(out, "\n")
	for i, l := range ls {
		ls[i] = strings.TrimRight(l, "\r")
	}
	return ls
}
