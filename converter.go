package docdex

// Converter converts HTML to normalized Markdown.
type Converter interface {
	// Convert transforms HTML content into Markdown. The input should be
	// clean HTML (e.g., from an Extractor). Empty or unparseable input
	// yields an empty string, never an error: normalization must not be
	// able to abort a batch.
	Convert(html string) (string, error)
}
