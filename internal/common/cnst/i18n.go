package cnst

const (
	// XLang is the context key carrying the negotiated language for a request
	XLang = "X-Lang"

	LangEN      = "en"
	LangZH      = "zh"
	LangDefault = LangEN
)
