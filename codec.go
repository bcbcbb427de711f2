package refine

// Codec converts between a pipeline's type and its wire form. Receive and
// Store use it on either side of processing.
type Codec interface {
	// ContentType is the MIME type produced, e.g. "application/json".
	ContentType() string

	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}
