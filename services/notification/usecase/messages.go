package usecase

import (
	"fmt"
	"strings"
	"time"

	"trainingportal/domain"
)

type content struct {
	Title   string
	Message string
	Subject string
	Body    string
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "to be defined"
	}
	return t.UTC().Format("2006-01-02")
}

func schedule(e *domain.Edition) string {
	return fmt.Sprintf("from %s to %s", formatDate(e.StartDate), formatDate(e.EndDate))
}

func render(t domain.NotificationType, e *domain.Edition, appName string, extra map[string]string) content {
	course := e.CourseTitle()

	var c content
	switch t {
	case domain.NotificationNewEdition:
		c.Title = "New course edition available"
		c.Message = fmt.Sprintf("%s is scheduled %s. Registrations close on %s.", course, schedule(e), formatDate(e.RegistrationDeadline))
		c.Subject = fmt.Sprintf("[%s] New edition: %s", appName, course)
	case domain.NotificationEditionDatesChanged:
		c.Title = "Course edition rescheduled"
		c.Message = fmt.Sprintf("%s has been rescheduled and now runs %s.", course, schedule(e))
		c.Subject = fmt.Sprintf("[%s] Dates changed: %s", appName, course)
	case domain.NotificationEditionCancelled:
		c.Title = "Course edition cancelled"
		c.Message = fmt.Sprintf("%s scheduled %s is no longer available.", course, schedule(e))
		c.Subject = fmt.Sprintf("[%s] Cancelled: %s", appName, course)
	case domain.NotificationCertificatesAvailable:
		c.Title = "Certificates available"
		c.Message = fmt.Sprintf("%s certificate(s) for %s can now be downloaded.", extra["certificates"], course)
		c.Subject = fmt.Sprintf("[%s] Certificates available: %s", appName, course)
	case domain.NotificationReminderDeadline7D:
		c.Title = "Registration closes in 7 days"
		c.Message = fmt.Sprintf("Registrations for %s close on %s.", course, formatDate(e.RegistrationDeadline))
		c.Subject = fmt.Sprintf("[%s] Registration deadline in 7 days: %s", appName, course)
	case domain.NotificationReminderDeadline1D:
		c.Title = "Registration closes tomorrow"
		c.Message = fmt.Sprintf("Registrations for %s close on %s.", course, formatDate(e.RegistrationDeadline))
		c.Subject = fmt.Sprintf("[%s] Registration deadline tomorrow: %s", appName, course)
	default:
		c.Title = string(t)
		c.Message = course
		c.Subject = fmt.Sprintf("[%s] %s", appName, course)
	}

	var body strings.Builder
	body.WriteString("Hello,\n\n")
	body.WriteString(c.Message)
	body.WriteString("\n\n")
	fmt.Fprintf(&body, "Course: %s\n", course)
	fmt.Fprintf(&body, "Start date: %s\n", formatDate(e.StartDate))
	fmt.Fprintf(&body, "End date: %s\n", formatDate(e.EndDate))
	fmt.Fprintf(&body, "Registration deadline: %s\n", formatDate(e.RegistrationDeadline))
	fmt.Fprintf(&body, "\nThis is an automated message from %s.\n", appName)
	c.Body = body.String()

	return c
}
