package schedule

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrInvalidPolicy = errors.New("invalid scheduling policy")

// Kind определяет способ раздачи итераций
type Kind int

const (
	Static Kind = iota
	Dynamic
	Guided
)

func (k Kind) String() string {
	switch k {
	case Static:
		return "static"
	case Dynamic:
		return "dynamic"
	case Guided:
		return "guided"
	default:
		return "unknown"
	}
}

// Policy describes how an iteration space is split between workers.
// Chunk is the claim size for Dynamic and the lower bound for Guided;
// Static ignores it.
type Policy struct {
	Kind  Kind
	Chunk int
}

func StaticPolicy() Policy {
	return Policy{Kind: Static}
}

func DynamicChunk(chunk int) Policy {
	return Policy{Kind: Dynamic, Chunk: chunk}
}

func GuidedPolicy() Policy {
	return Policy{Kind: Guided, Chunk: 1}
}

// String renders the policy the way an OpenMP schedule clause reads.
func (p Policy) String() string {
	switch p.Kind {
	case Dynamic:
		return fmt.Sprintf("dynamic,%d", p.Chunk)
	case Guided:
		if p.Chunk > 1 {
			return fmt.Sprintf("guided,%d", p.Chunk)
		}
		return "guided"
	default:
		return p.Kind.String()
	}
}

// Slug is a filesystem friendly form of String.
func (p Policy) Slug() string {
	return strings.ReplaceAll(p.String(), ",", "")
}

func (p Policy) Validate() error {
	switch p.Kind {
	case Static:
		return nil
	case Dynamic, Guided:
		if p.Chunk < 1 {
			return fmt.Errorf("%w: chunk %d for %s", ErrInvalidPolicy, p.Chunk, p.Kind)
		}
		return nil
	default:
		return fmt.Errorf("%w: kind %d", ErrInvalidPolicy, int(p.Kind))
	}
}

// ParsePolicy accepts "static", "dynamic", "dynamic,N", "guided" and "guided,N".
func ParsePolicy(s string) (Policy, error) {
	name, arg, hasArg := strings.Cut(strings.ToLower(strings.TrimSpace(s)), ",")

	chunk := 1
	if hasArg {
		n, err := strconv.Atoi(strings.TrimSpace(arg))
		if err != nil {
			return Policy{}, fmt.Errorf("%w: %q", ErrInvalidPolicy, s)
		}
		chunk = n
	}

	var p Policy
	switch strings.TrimSpace(name) {
	case "static":
		if hasArg {
			return Policy{}, fmt.Errorf("%w: static takes no chunk: %q", ErrInvalidPolicy, s)
		}
		p = StaticPolicy()
	case "dynamic":
		p = DynamicChunk(chunk)
	case "guided":
		p = Policy{Kind: Guided, Chunk: chunk}
	default:
		return Policy{}, fmt.Errorf("%w: %q", ErrInvalidPolicy, s)
	}

	if err := p.Validate(); err != nil {
		return Policy{}, err
	}
	return p, nil
}

// MarshalText и UnmarshalText позволяют читать политики прямо из YAML
func (p Policy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Policy) UnmarshalText(text []byte) error {
	parsed, err := ParsePolicy(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
