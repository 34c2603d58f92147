package kpi

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownFramework indicates a framework tag outside the closed set.
var ErrUnknownFramework = errors.New("unknown framework")

// Framework is one of the four independent accreditation rubrics.
type Framework string

const (
	AICTE Framework = "aicte"
	NBA   Framework = "nba"
	NAAC  Framework = "naac"
	NIRF  Framework = "nirf"
)

// Frameworks returns every framework in declaration order.
func Frameworks() []Framework {
	return []Framework{AICTE, NBA, NAAC, NIRF}
}

// ParseFramework accepts a case-insensitive framework tag.
func ParseFramework(s string) (Framework, error) {
	f := Framework(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case AICTE, NBA, NAAC, NIRF:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFramework, s)
}

func (f Framework) String() string {
	return string(f)
}

// Title returns the display name of the framework.
func (f Framework) Title() string {
	switch f {
	case AICTE:
		return "AICTE"
	case NBA:
		return "NBA"
	case NAAC:
		return "NAAC"
	case NIRF:
		return "NIRF"
	}
	return string(f)
}
