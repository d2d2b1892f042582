package render

// Options configures renderer output.
type Options struct {
	// FlagSeparator joins bitmask flag names.
	FlagSeparator string
	// IndentWidth is the number of spaces per nesting level.
	IndentWidth int
}

// DefaultOptions returns four-space indentation and "|" between flags.
func DefaultOptions() Options {
	return Options{
		FlagSeparator: "|",
		IndentWidth:   4,
	}
}

func (o Options) normalize() Options {
	if o.IndentWidth < 0 {
		o.IndentWidth = 0
	}
	if o.FlagSeparator == "" {
		o.FlagSeparator = "|"
	}
	return o
}
