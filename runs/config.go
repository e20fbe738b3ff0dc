package runs

import (
	"github.com/npillmayer/schuko"
	"github.com/npillmayer/textrun"
	"github.com/npillmayer/textrun/bidi"
	"github.com/npillmayer/textrun/uax11"
)

// DefaultMaxLineChars is the default cap for the number of text characters
// on a single line.
const DefaultMaxLineChars = 9600

// Config holds the configuration of an engine.
type Config struct {
	MaxLineChars int  // cap for text characters on a line
	WidthBudget  int  // working width of a line in en; 0 for unlimited
	Backscan     int  // characters to look back for the bidi context
	EastAsian    bool // estimate widths in an East Asian context
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() Config {
	return Config{
		MaxLineChars: DefaultMaxLineChars,
		Backscan:     bidi.DefaultBackscanLimit,
	}
}

// ConfigFrom reads an engine configuration from a schuko configuration.
// Keys not set default to the values of DefaultConfig.
func ConfigFrom(conf schuko.Configuration) Config {
	c := DefaultConfig()
	if conf == nil {
		return c
	}
	if conf.IsSet("textrun.maxlinechars") {
		if n := conf.GetInt("textrun.maxlinechars"); n > 0 {
			c.MaxLineChars = n
		} else {
			T().Errorf("ignoring invalid configuration textrun.maxlinechars=%d", n)
		}
	}
	if conf.IsSet("textrun.widthbudget") {
		if n := conf.GetInt("textrun.widthbudget"); n >= 0 {
			c.WidthBudget = n
		}
	}
	if conf.IsSet("textrun.backscan") {
		if n := conf.GetInt("textrun.backscan"); n > 0 {
			c.Backscan = n
		}
	}
	if conf.IsSet("textrun.eastasian") {
		c.EastAsian = conf.GetBool("textrun.eastasian")
	}
	return c
}

// Option configures an engine.
type Option func(*Engine)

// WithConfig sets the configuration of an engine.
func WithConfig(c Config) Option {
	return func(e *Engine) {
		if c.MaxLineChars <= 0 {
			c.MaxLineChars = DefaultMaxLineChars
		}
		if c.Backscan <= 0 {
			c.Backscan = bidi.DefaultBackscanLimit
		}
		e.config = c
	}
}

// WithClassifier sets the character classifier. The default is
// textrun.DefaultClassifier.
func WithClassifier(c textrun.Classifier) Option {
	return func(e *Engine) {
		e.classifier = c
	}
}

// WithAnalyzer sets the bidi analyzer. The default is bidi.NewAnalyzer().
func WithAnalyzer(a bidi.Analyzer) Option {
	return func(e *Engine) {
		e.analyzer = a
	}
}

// WithDirection sets the paragraph direction. It is ignored if resolution
// resumes from a snapshot.
func WithDirection(d bidi.Direction) Option {
	return func(e *Engine) {
		e.direction = d
	}
}

// WithWidthContext sets the context for width estimates.
func WithWidthContext(ctx *uax11.Context) Option {
	return func(e *Engine) {
		e.widthCtx = ctx
	}
}

// StartAt sets the source position of the line start.
func StartAt(pos int) Option {
	return func(e *Engine) {
		e.start = pos
	}
}

// ResumeFrom lets resolution continue within the embeddings open at the
// end of the previous line.
func ResumeFrom(snap *bidi.Snapshot) Option {
	return func(e *Engine) {
		e.resume = snap
	}
}
