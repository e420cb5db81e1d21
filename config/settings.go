package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Settings groups the tunables of the lifecycle and notification engine.
type Settings struct {
	MinAttendancePercentage int
	MailWorkers             int
	MailQueueSize           int
	ReminderCron            string
	AdminEmails             []string
	CertificateDir          string
	RequestTimeout          time.Duration
}

func LoadSettings() Settings {
	return Settings{
		MinAttendancePercentage: getIntEnv("ATTENDANCE_MIN_PERCENTAGE", 80),
		MailWorkers:             getPositiveIntEnv("MAIL_WORKERS", 4),
		MailQueueSize:           getPositiveIntEnv("MAIL_QUEUE_SIZE", 256),
		ReminderCron:            getStringEnv("REMINDER_CRON", "0 8 * * *"),
		AdminEmails:             GetAdminEmails(),
		CertificateDir:          getStringEnv("CERTIFICATE_DIR", "./certificates"),
		RequestTimeout:          time.Duration(getPositiveIntEnv("REQUEST_TIMEOUT_SECONDS", 10)) * time.Second,
	}
}

func GetAdminEmails() []string {
	var out []string
	for _, addr := range strings.Split(os.Getenv("ADMIN_NOTIFICATION_EMAILS"), ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			out = append(out, addr)
		}
	}
	return out
}

func getStringEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		GetLogrusInstance().Warnf("invalid value %q for %s, using %d", v, key, fallback)
		return fallback
	}
	return n
}

// getPositiveIntEnv is getIntEnv for sizes and timeouts, where zero is never usable.
func getPositiveIntEnv(key string, fallback int) int {
	n := getIntEnv(key, fallback)
	if n == 0 {
		GetLogrusInstance().Warnf("%s must be positive, using %d", key, fallback)
		return fallback
	}
	return n
}
