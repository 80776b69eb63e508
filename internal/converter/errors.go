package converter

import "errors"

// Sentinel errors returned by Convert. They distinguish the three ways a
// conversion can go wrong: before decoding, while decoding, and after a
// clean decode that yields nothing worth exporting.
var (
	// ErrEmptyInput is returned when the submitted payload has no bytes.
	ErrEmptyInput = errors.New("glb payload is empty")

	// ErrInvalidModel is returned when the payload cannot be decoded as a
	// binary glTF document or references data it does not carry. The
	// wrapped error holds the decoder's diagnosis.
	ErrInvalidModel = errors.New("invalid model")

	// ErrNoArtifacts is returned when the document decodes cleanly but
	// contains no geometry that can be expressed as OBJ faces.
	ErrNoArtifacts = errors.New("conversion produced no files")
)
