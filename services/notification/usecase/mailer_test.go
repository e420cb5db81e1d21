package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"trainingportal/domain"
)

type scriptedSender struct {
	fail    map[string]error
	started chan string
}

func (s *scriptedSender) Send(ctx context.Context, msg domain.EmailMessage) error {
	if s.started != nil {
		s.started <- msg.To
		<-ctx.Done()
		return ctx.Err()
	}
	if err, ok := s.fail[msg.To]; ok {
		return err
	}
	return nil
}

func mail(to string) domain.EmailMessage {
	return domain.EmailMessage{To: to, Subject: "Hello", Body: "Body", Type: domain.NotificationNewEdition}
}

func TestMailerDeliversAndLogsEveryAttempt(t *testing.T) {
	logs := &fakeEmailLogs{}
	sender := &scriptedSender{fail: map[string]error{"bad@acme.test": errors.New("mailbox unavailable")}}
	m := NewMailer(sender, logs, quietLogger(), 2, 10)
	m.Start()

	for _, to := range []string{"a@acme.test", "bad@acme.test", "b@acme.test"} {
		if !m.Enqueue(mail(to)) {
			t.Fatalf("enqueue %s rejected", to)
		}
	}
	m.Stop(context.Background())

	if got := len(logs.ByStatus(domain.EmailSent)); got != 2 {
		t.Fatalf("expected 2 SENT entries, got %d", got)
	}
	failed := logs.ByStatus(domain.EmailFailed)
	if len(failed) != 1 || failed[0].RecipientEmail != "bad@acme.test" {
		t.Fatalf("unexpected FAILED entries %+v", failed)
	}
	if failed[0].ErrorMessage == nil || *failed[0].ErrorMessage != "mailbox unavailable" {
		t.Fatalf("unexpected error message %v", failed[0].ErrorMessage)
	}
}

func TestMailerFullQueue(t *testing.T) {
	logs := &fakeEmailLogs{}
	m := NewMailer(&scriptedSender{}, logs, quietLogger(), 1, 1)

	if !m.Enqueue(mail("first@acme.test")) {
		t.Fatal("first message rejected")
	}
	if m.Enqueue(mail("second@acme.test")) {
		t.Fatal("second message accepted on a full queue")
	}

	failed := logs.ByStatus(domain.EmailFailed)
	if len(failed) != 1 || *failed[0].ErrorMessage != "mail queue full" {
		t.Fatalf("unexpected FAILED entries %+v", failed)
	}

	m.Stop(context.Background())
	pending := logs.ByStatus(domain.EmailPending)
	if len(pending) != 1 || pending[0].RecipientEmail != "first@acme.test" {
		t.Fatalf("unexpected PENDING entries %+v", pending)
	}

	if m.Enqueue(mail("late@acme.test")) {
		t.Fatal("message accepted after stop")
	}
}

func TestMailerStopDeadline(t *testing.T) {
	logs := &fakeEmailLogs{}
	sender := &scriptedSender{started: make(chan string, 1)}
	m := NewMailer(sender, logs, quietLogger(), 1, 5)
	m.SendTimeout = 100 * time.Millisecond
	m.Start()

	for _, to := range []string{"a@acme.test", "b@acme.test", "c@acme.test"} {
		m.Enqueue(mail(to))
	}
	<-sender.started

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	m.Stop(ctx)

	if got := len(logs.ByStatus(domain.EmailFailed)); got != 1 {
		t.Fatalf("expected the in-flight send to fail, got %d FAILED", got)
	}
	if got := len(logs.ByStatus(domain.EmailPending)); got != 2 {
		t.Fatalf("expected 2 PENDING entries, got %d", got)
	}
}
