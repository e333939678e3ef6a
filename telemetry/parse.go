package telemetry

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Rule is the value-count check for one tag. A strict rule needs exactly
// Count values; a lenient rule only needs at least one.
type Rule struct {
	Count  int  `json:"count"`
	Strict bool `json:"strict"`
}

// DefaultRules returns the count rules for the known tags
func DefaultRules() map[string]Rule {
	return map[string]Rule{
		TagInfra: {Count: IRCount},
		TagGyro:  {Count: 1},
	}
}

// Parser turns text lines into records
type Parser struct {
	Rules map[string]Rule
}

// NewParser creates a parser with the default lenient rules
func NewParser() *Parser {
	return &Parser{Rules: DefaultRules()}
}

// SetStrict switches every rule to strict or lenient checking
func (p *Parser) SetStrict(strict bool) {
	for tag, r := range p.Rules {
		r.Strict = strict
		p.Rules[tag] = r
	}
}

// Parse parses one line of the form "<tag> <v1> ... <vN>".
func (p *Parser) Parse(line string) (Record, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: empty line", ErrMalformed)
	}

	tag := fields[0]
	values := make([]float64, 0, len(fields)-1)
	for _, f := range fields[1:] {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s value %q is not a number", ErrMalformed, tag, f)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: %s value %q is not finite", ErrMalformed, tag, f)
		}
		values = append(values, v)
	}

	if rule, ok := p.Rules[tag]; ok {
		if err := rule.check(tag, len(values)); err != nil {
			return nil, err
		}
	}

	switch tag {
	case TagInfra:
		return Infra{Values: values}, nil
	case TagGyro:
		if len(values) == 0 {
			return nil, fmt.Errorf("%w: gyro without heading", ErrMalformed)
		}
		return Gyro{Heading: values[0]}, nil
	default:
		return Unknown{Tag: tag, Values: values}, nil
	}
}

func (r Rule) check(tag string, n int) error {
	if r.Strict {
		if n != r.Count {
			return fmt.Errorf("%w: %s has %d values, want %d", ErrMalformed, tag, n, r.Count)
		}
		return nil
	}
	if n == 0 {
		return fmt.Errorf("%w: %s has no values", ErrMalformed, tag)
	}
	return nil
}

// Format renders a line in wire format
func Format(tag string, values []float64) string {
	var b strings.Builder
	b.WriteString(tag)
	for _, v := range values {
		b.WriteByte(' ')
		b.WriteString(strconv.FormatFloat(v, 'f', -1, 64))
	}
	return b.String()
}
