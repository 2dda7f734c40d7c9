package particle

import "errors"

// Domain errors for substrate operations.
var (
	// ErrEmptyParticles indicates an operation received an empty particle slice.
	ErrEmptyParticles = errors.New("particle: empty particle slice")

	// ErrNotInitialized indicates an operation on a component that was never initialized.
	ErrNotInitialized = errors.New("particle: component not initialized")

	// ErrCountChanged indicates the real-particle count changed after initialization.
	ErrCountChanged = errors.New("particle: real particle count changed after initialization")

	// ErrInvalidSmoothingLength indicates a non-finite or non-positive smoothing length.
	ErrInvalidSmoothingLength = errors.New("particle: invalid smoothing length")

	// ErrShapeMismatch indicates mismatched slice lengths between related arrays.
	ErrShapeMismatch = errors.New("particle: shape mismatch")

	// ErrInvalidConfig indicates an invalid boundary or search configuration.
	ErrInvalidConfig = errors.New("particle: invalid configuration")
)
