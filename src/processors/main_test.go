package processors

import (
	"os"
	"testing"

	"github.com/username/gainsfolio/backend/src/logger"
)

func TestMain(m *testing.M) {
	logger.InitLogger("error")
	os.Exit(m.Run())
}
