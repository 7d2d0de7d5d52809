package log

import (
	"os"

	"github.com/sirupsen/logrus"

	"inkwell/utils/dotenv"
	"inkwell/utils/flag"
)

// global accessible logger
var (
	logger *logrus.Logger
	Log    *logrus.Entry
)

// This init function is only for testing cases, where the entry point is not
// main function. Unit test will fail with nil pointer dereference if we don't
// init here.
func init() {
	InitLogger()
}

// InitLogger builds the process-wide logger. Production logs as JSON for log
// collection; everything else stays on the plain text formatter for
// readability.
func InitLogger() {
	logger = logrus.New()
	logger.SetOutput(os.Stderr)

	isProd := os.Getenv("INKWELL_ENV") == dotenv.ProdEnv
	if isProd {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	Log = logger.WithFields(
		logrus.Fields{"service": flag.ServiceName, "is_development": !isProd},
	)
}
