package digits

import "golang.org/x/text/language"

// NumberContext classifies what a digit at some text position should look
// like: Arabic or European. The decision is either derived from a letter
// preceding the digit, or from the text direction.
type NumberContext struct {
	Arabic     bool // display digits with Arabic digits
	FromLetter bool // derived from a letter; otherwise from the direction
}

func (ctx NumberContext) String() string {
	s := "European"
	if ctx.Arabic {
		s = "Arabic"
	}
	if ctx.FromLetter {
		return s + "/letter"
	}
	return s + "/direction"
}

var scriptSyrc = language.MustParseScript("Syrc")

// ContextFromLetter returns the number context after a letter of a script.
// Arabic and Syriac letters call for Arabic digits.
func ContextFromLetter(script language.Script) NumberContext {
	return NumberContext{
		Arabic:     script == scriptArab || script == scriptSyrc,
		FromLetter: true,
	}
}

// ContextFromDirection returns the number context for text without a
// preceding letter: right-to-left text calls for Arabic digits.
func ContextFromDirection(rtl bool) NumberContext {
	return NumberContext{Arabic: rtl}
}

// Apply returns the culture for a digit in context ctx, given the culture
// resolved for a contextual policy.
func (ctx NumberContext) Apply(c Culture) Culture {
	if ctx.Arabic {
		return c
	}
	return None
}

// ContextCache caches a number context for the text position it has been
// computed for. A context derived from the text direction is valid only
// within the scope it has been computed in, identified by its depth.
type ContextCache struct {
	pos   int
	depth int
	ctx   NumberContext
	valid bool
}

// Lookup returns the context cached for pos, if any.
func (c *ContextCache) Lookup(pos, depth int) (NumberContext, bool) {
	if !c.valid || c.pos != pos {
		return NumberContext{}, false
	}
	if !c.ctx.FromLetter && c.depth != depth {
		return NumberContext{}, false
	}
	return c.ctx, true
}

// Store caches ctx as the context at pos.
func (c *ContextCache) Store(pos, depth int, ctx NumberContext) {
	c.pos, c.depth, c.ctx, c.valid = pos, depth, ctx, true
}

// Invalidate drops the cached context.
func (c *ContextCache) Invalidate() {
	c.valid = false
}

// Tracker follows the number context while scanning text forward.
type Tracker struct {
	ctx   NumberContext
	known bool
}

// Start initializes the tracker with a context known from before the text
// to scan, e.g. from a ContextCache.
func (t *Tracker) Start(ctx NumberContext, known bool) {
	t.ctx, t.known = ctx, known
}

// Letter notes a letter of a script.
func (t *Tracker) Letter(script language.Script) {
	t.ctx, t.known = ContextFromLetter(script), true
}

// Digit returns the number context for a digit. Without a preceding
// letter, rtl decides.
func (t *Tracker) Digit(rtl bool) NumberContext {
	if !t.known || !t.ctx.FromLetter {
		t.ctx, t.known = ContextFromDirection(rtl), true
	}
	return t.ctx
}

// Context returns the current context, if known.
func (t *Tracker) Context() (NumberContext, bool) {
	return t.ctx, t.known
}
