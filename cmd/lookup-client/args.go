package main

import (
	"fmt"
	"strings"
)

// switchNames maps the first letter of a single-dash switch to its flag.
var switchNames = map[byte]string{
	'u': "url",
	'p': "port",
	'a': "authorization",
	'r': "requests",
	'l': "limit",
	'h': "help",
	'c': "config",
}

// positionalOrder is the order in which bare values fill unset switches.
var positionalOrder = []string{"url", "port", "authorization", "requests", "limit"}

// normalizeArgs rewrites single-dash switches such as -Url, -PORT or -a into
// their long form. A switch is recognised by its first letter in any case.
// Double-dash flags and values are passed through.
func normalizeArgs(args []string) []string {
	out := make([]string, 0, len(args))
	for i, arg := range args {
		if arg == "--" {
			return append(out, args[i:]...)
		}
		if len(arg) < 2 || arg[0] != '-' || arg[1] == '-' {
			out = append(out, arg)
			continue
		}

		body, value, hasValue := strings.Cut(arg[1:], "=")
		name, ok := switchNames[toLower(body[0])]
		if !ok {
			out = append(out, arg)
			continue
		}
		if hasValue {
			out = append(out, "--"+name+"="+value)
		} else {
			out = append(out, "--"+name)
		}
	}
	return out
}

func toLower(c byte) byte {
	if 'A' <= c && c <= 'Z' {
		return c + 'a' - 'A'
	}
	return c
}

// assignPositional pairs bare values with the switches not set explicitly,
// in positionalOrder.
func assignPositional(values []string, isSet func(name string) bool) (map[string]string, error) {
	assigned := make(map[string]string, len(values))
	next := 0
	for _, v := range values {
		for next < len(positionalOrder) && isSet(positionalOrder[next]) {
			next++
		}
		if next >= len(positionalOrder) {
			return nil, fmt.Errorf("positional argument [%s] was unexpected", v)
		}
		assigned[positionalOrder[next]] = v
		next++
	}
	return assigned, nil
}
