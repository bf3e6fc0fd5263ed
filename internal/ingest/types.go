// Package ingest implements the image ingestion pipeline: type filtering,
// size guarding, decode, resize, encode, an adaptive shrink loop against a
// byte-size target, and data-URL transport encoding.
package ingest

// SourceFile is the caller-owned input: raw bytes plus the declared MIME
// type and filename. The pipeline only reads it.
type SourceFile struct {
	Name string
	Mime string
	Data []byte
}

// EncodedBlob is the binary output of one encode attempt, tagged with the
// parameters that produced it.
type EncodedBlob struct {
	Data    []byte
	Mime    string
	Width   int
	Height  int
	Quality float64
}

// Size returns the encoded byte length.
func (b EncodedBlob) Size() int64 { return int64(len(b.Data)) }

// Result is the terminal value of a successful Run.
type Result struct {
	// DataURL is the transportable representation: data:<mime>;base64,...
	DataURL string `json:"data_url"`
	// Blob is the final accepted encode attempt.
	Blob EncodedBlob `json:"-"`
	// Iterations counts shrink iterations (re-render + re-encode passes)
	// beyond the initial encode.
	Iterations int `json:"iterations"`
	// BestEffort is set when the floors were exhausted without meeting the
	// size target and the policy accepted the smallest blob produced.
	BestEffort bool `json:"best_effort"`
}
