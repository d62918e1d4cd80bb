package domain

// CompletionRequest is one call to the external text-completion service.
// Attachment, when present, is raw PDF bytes sent alongside the prompt.
type CompletionRequest struct {
	Prompt          string
	Attachment      []byte
	MaxOutputTokens int
	Model           string
}

// CompletionResult always carries token counts so every call can be costed,
// attachment or not.
type CompletionResult struct {
	Text         string
	InputTokens  int
	OutputTokens int
}
