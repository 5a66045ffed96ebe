package scene

import "github.com/pkg/errors"

// Error kinds shared by the data model, the scene codec and the importers.
// Callers match them with errors.Is; the wrapped message carries the detail.
var (
	ErrImport          = errors.New("geometry import failed")
	ErrFileAccess      = errors.New("scene file access failed")
	ErrInvalidIndex    = errors.New("invalid index")
	ErrDuplicateObject = errors.New("object already loaded")
	ErrMalformedNumber = errors.New("malformed number")
	ErrNoTextureLoader = errors.New("texture loader not set")
	ErrShaderName      = errors.New("invalid shader name")
)
