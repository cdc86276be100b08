package constant

// Build metadata, overridden with -ldflags "-X".
var (
	BuiltAt  string
	BuiltBy  string
	Revision string
)
