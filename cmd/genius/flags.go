package main

import (
	"fmt"
	"strings"
)

// paramFlag collects repeated -param key=value flags.
type paramFlag map[string]any

func (p *paramFlag) String() string {
	if p == nil || *p == nil {
		return ""
	}

	pairs := make([]string, 0, len(*p))
	for k, v := range *p {
		pairs = append(pairs, fmt.Sprintf("%s=%v", k, v))
	}

	return strings.Join(pairs, ",")
}

func (p *paramFlag) Set(s string) error {
	key, val, ok := strings.Cut(s, "=")
	if !ok || key == "" {
		return fmt.Errorf("param %q: want key=value", s)
	}

	if *p == nil {
		*p = make(paramFlag)
	}
	(*p)[key] = val

	return nil
}
