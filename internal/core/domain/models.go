package domain

// ModelInfo describes one model available from an LLM provider.
type ModelInfo struct {
	// Name is the model identifier as the provider reports it.
	Name string
}

// ModelListing is the result of asking a provider for its models.
// When the live listing fails, services fall back to a configured
// default list and set Live to false rather than swallowing the error.
type ModelListing struct {
	// Models are the available model names.
	Models []ModelInfo

	// Live is true when the list came from the provider, false when it
	// is the configured fallback.
	Live bool

	// Err is the listing error when Live is false, for display.
	Err error
}
