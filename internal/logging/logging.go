package logging

import (
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	gormlogger "gorm.io/gorm/logger"
)

const serviceName = "gamevault"

// global accessible logger
var (
	logger *logrus.Logger
	Log    *logrus.Entry
)

// Packages log before main configures anything when they run under go test.
func init() {
	Init("info", "text")
}

// Init (re)configures the global logger. Unknown levels fall back to info.
func Init(level, format string) {
	logger = logrus.New()
	logger.SetOutput(os.Stderr)

	lvl, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)

	if strings.EqualFold(format, "json") {
		logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	Log = logger.WithField("service", serviceName)
}

// Gorm returns a gorm logger that writes through logrus.
func Gorm() gormlogger.Interface {
	return gormlogger.New(
		Log,
		gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}
