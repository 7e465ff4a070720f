package sbom

import (
	"encoding/json"

	"github.com/matzehuels/sbomlens/pkg/errors"
)

// Parse decodes data, detects its format and normalizes it.
//
// Malformed JSON yields an error with code [errors.ErrCodeInvalidJSON]; a
// well-formed document in neither format yields
// [errors.ErrCodeUnsupportedFormat].
func Parse(data []byte) (*Document, error) {
	var decoded any
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidJSON, err, "invalid JSON document")
	}
	raw, _ := decoded.(map[string]any)

	var (
		doc *Document
		err error
	)
	format := Detect(raw)
	switch format {
	case FormatCycloneDX:
		doc, err = NormalizeCycloneDX(data)
	case FormatSPDX:
		doc, err = NormalizeSPDX(data)
	default:
		return nil, errors.New(errors.ErrCodeUnsupportedFormat, "unsupported SBOM format")
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "malformed %s document", format)
	}
	return doc, nil
}
