package config

import (
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

var (
	logrusInstance *logrus.Logger
	logrusOnce     sync.Once
)

func GetLogrusInstance() *logrus.Logger {
	logrusOnce.Do(func() {
		logrusInstance = logrus.New()
		logrusInstance.SetFormatter(&logrus.JSONFormatter{})
		logrusInstance.SetOutput(os.Stdout)
		if lvl, err := logrus.ParseLevel(strings.ToLower(os.Getenv("LOG_LEVEL"))); err == nil {
			logrusInstance.SetLevel(lvl)
		}
	})
	return logrusInstance
}

// PrintLogInfo writes one line per handled request.
func PrintLogInfo(username *string, statusCode int, functionName string) {
	user := "Unknown"
	if username != nil {
		user = *username
	}

	entry := GetLogrusInstance().WithFields(logrus.Fields{
		"user":    user,
		"handler": functionName,
		"status":  statusCode,
	})

	switch {
	case statusCode >= fiber.StatusInternalServerError:
		entry.Error(http.StatusText(statusCode))
	case statusCode >= fiber.StatusBadRequest:
		entry.Warn(http.StatusText(statusCode))
	default:
		entry.Info(http.StatusText(statusCode))
	}
}
