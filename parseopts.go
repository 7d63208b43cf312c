package mathexpr

// ParseOption is an option for parsing.
type ParseOption interface {
	parseOption(parseConfig) parseConfig
}

type (
	depthopt     int
	calldepthopt int
	precopt      uint
)

// parseConfig holds the settings of one call to Parse.
type parseConfig struct {
	// maxDepth limits the nesting of parenthesized expressions, unary
	// operators and operator chains.
	maxDepth int
	// maxCallDepth limits recursion of functions defined in the expression.
	maxCallDepth int
	// prec is the precision of number literals. Zero means the precision of
	// the namespace, if it reports one, or DefaultPrec.
	prec uint
}

// DefaultMaxDepth is the default nesting limit of the parser.
const DefaultMaxDepth = 256

func makeParseConfig(opts []ParseOption) parseConfig {
	p := parseConfig{
		maxDepth:     DefaultMaxDepth,
		maxCallDepth: DefaultMaxCallDepth,
	}
	for _, opt := range opts {
		p = opt.parseOption(p)
	}
	return p
}

// MaxDepth limits how deeply expressions may nest. Each operator in a chain
// like "1 + 2 + 3" or "2^3^4" counts as a level. Exceeding the limit is a
// SyntaxError. Values less than 1 restore the default.
func MaxDepth(n int) ParseOption {
	return depthopt(n)
}

func (o depthopt) parseOption(p parseConfig) parseConfig {
	p.maxDepth = int(o)
	if p.maxDepth < 1 {
		p.maxDepth = DefaultMaxDepth
	}
	return p
}

// MaxCallDepth limits how deeply functions defined in the parsed expression
// may call themselves. Exceeding the limit during evaluation is a
// RecursionError. Values less than 1 restore the default.
func MaxCallDepth(n int) ParseOption {
	return calldepthopt(n)
}

func (o calldepthopt) parseOption(p parseConfig) parseConfig {
	p.maxCallDepth = int(o)
	if p.maxCallDepth < 1 {
		p.maxCallDepth = DefaultMaxCallDepth
	}
	return p
}

// Prec sets the precision in bits of number literals.
func Prec(prec uint) ParseOption {
	return precopt(prec)
}

func (o precopt) parseOption(p parseConfig) parseConfig {
	p.prec = uint(o)
	return p
}
