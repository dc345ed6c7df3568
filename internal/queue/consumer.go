package queue

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// StartMailConsumer connects to RabbitMQ, declares the mail.outbound queue
// and drains it, appending one line per message to logs/mail.log. It stands
// in for a real mail relay in development. The function runs a reconnect
// loop with backoff and keeps running through processing errors, rejecting
// the offending message so the server continues operating.
func StartMailConsumer() {
	url := brokerURL()

	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			logrus.WithError(err).Warnf("mail consumer: dial failed; retrying in %s", backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		if err := consumeLoop(conn); err != nil {
			logrus.WithError(err).Warn("mail consumer: consume loop ended; reconnecting")
			time.Sleep(2 * time.Second)
		}
	}
}

func consumeLoop(conn *amqp.Connection) error {
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(mailQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	deliveries, err := ch.Consume(mailQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}

	for d := range deliveries {
		if err := handleDelivery(d.Body); err != nil {
			logrus.WithError(err).Error("mail consumer: bad message")
			_ = d.Reject(false)
			continue
		}
		_ = d.Ack(false)
	}
	return fmt.Errorf("delivery channel closed")
}

func handleDelivery(body []byte) error {
	var ev MailEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return err
	}

	var line string
	switch ev.Kind {
	case MailInvitation:
		line = fmt.Sprintf("%s invitation to=%s team=%q coach=%q",
			ev.QueuedAt, ev.To, ev.TeamName, ev.CoachName)
	case MailRecovery:
		line = fmt.Sprintf("%s recovery to=%s token=%s", ev.QueuedAt, ev.To, ev.Token)
	default:
		return fmt.Errorf("unknown mail kind %q", ev.Kind)
	}
	return appendLine(line)
}

func appendLine(line string) error {
	if err := os.MkdirAll("logs", 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(filepath.Join("logs", "mail.log"),
		os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	_, err = fmt.Fprintln(f, line)
	return err
}
