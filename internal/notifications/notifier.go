package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"inkwell/internal/middleware"
	"inkwell/internal/models"
)

// Notifier sends site notifications by email. All delivery is fire and
// forget: failures are logged and counted but never returned to callers,
// and nothing is retried.
type Notifier struct {
	mailer    Mailer
	adminAddr string
}

// NewNotifier creates a Notifier delivering admin notifications to adminAddr.
func NewNotifier(mailer Mailer, adminAddr string) *Notifier {
	return &Notifier{mailer: mailer, adminAddr: adminAddr}
}

// send dispatches in a goroutine detached from the request context so the
// response never waits on SMTP.
func (n *Notifier) send(kind string, to []string, subject, body string) {
	if n == nil || n.mailer == nil || len(to) == 0 {
		return
	}
	go func() {
		defer func() {
			if r := recover(); r != nil {
				middleware.Logger.Error("PANIC in notifier",
					slog.String("kind", kind),
					slog.Any("panic", r),
					slog.String("stack", string(debug.Stack())),
				)
			}
		}()
		if err := n.mailer.Send(context.Background(), to, subject, body); err != nil {
			middleware.MailerFailures.WithLabelValues(kind).Inc()
			middleware.Logger.Error("notification email failed",
				slog.String("kind", kind),
				slog.String("subject", subject),
				slog.String("error", err.Error()),
			)
		}
	}()
}

// ContactReceived notifies the site admin that a contact message arrived.
func (n *Notifier) ContactReceived(msg *models.ContactMessage) {
	if n == nil {
		return
	}
	subject := fmt.Sprintf("New contact message: %s", msg.SubjectLabel())
	body := fmt.Sprintf("From: %s <%s>\n\n%s", msg.Name, msg.Email, msg.Message)
	n.send("contact_received", []string{n.adminAddr}, subject, body)
}

// ContactConfirmation acknowledges receipt to the sender.
func (n *Notifier) ContactConfirmation(msg *models.ContactMessage) {
	subject := "We received your message"
	body := fmt.Sprintf("Hi %s,\n\nThanks for getting in touch. We'll get back to you soon.\n", msg.Name)
	n.send("contact_confirmation", []string{msg.Email}, subject, body)
}

// ContactReply sends a staff response to the original sender.
func (n *Notifier) ContactReply(msg *models.ContactMessage, response string) {
	subject := fmt.Sprintf("Re: %s", msg.SubjectLabel())
	n.send("contact_reply", []string{msg.Email}, subject, response)
}

// NewsletterWelcome greets a new or reactivated subscriber. The unsubscribe
// token is included so the address can opt out without an account.
func (n *Notifier) NewsletterWelcome(sub *models.Subscriber) {
	subject := "Welcome to the newsletter"
	body := fmt.Sprintf("You're subscribed.\n\nTo unsubscribe, use token %s.\n", sub.Token)
	n.send("newsletter_welcome", []string{sub.Email}, subject, body)
}

// CommentPending tells the admin a comment awaits moderation.
func (n *Notifier) CommentPending(comment *models.Comment) {
	if n == nil {
		return
	}
	subject := fmt.Sprintf("Comment pending moderation on post %d", comment.PostID)
	body := fmt.Sprintf("%s wrote:\n\n%s", comment.AuthorLabel(), comment.Content)
	n.send("comment_pending", []string{n.adminAddr}, subject, body)
}
