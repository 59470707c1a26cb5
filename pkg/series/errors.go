package series

import "errors"

var (
	// ErrNoInputFiles reports that the resolved frame set is empty.
	ErrNoInputFiles = errors.New("no input frames found")

	// ErrInvalidInput reports malformed batch inputs: an unsupported
	// file extension, a bad flip token, a non-grayscale frame.
	ErrInvalidInput = errors.New("invalid input")

	// ErrShapeMismatch reports a frame or mask whose dimensions differ
	// from the first frame of the series.
	ErrShapeMismatch = errors.New("shape mismatch")

	// ErrMissingDestination reports an explicit file list given
	// without a destination path.
	ErrMissingDestination = errors.New("destination must be set for an explicit file list")

	// ErrOutputExists guards against overwriting an existing output
	// when overwrite is off.
	ErrOutputExists = errors.New("output already exists")
)
