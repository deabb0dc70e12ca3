package parsers

import (
	"io"

	"github.com/username/gainsfolio/backend/src/models"
)

// Parser turns one broker export file into canonical transactions. Each
// broker gets its own implementation; GetParser picks one by source name.
type Parser interface {
	Parse(file io.Reader) ([]models.CanonicalTransaction, error)
}
