package impl

import (
	"os"
	"testing"

	"voicebot/internal/observability/metrics"
)

func TestMain(m *testing.M) {
	metrics.MustRegister("test")
	os.Exit(m.Run())
}
