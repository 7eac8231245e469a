package handlers

// Aliases exposing unexported response types to the external test package.
type (
	CreationSummary = creationSummary
	OutputResponse  = outputResponse
)
