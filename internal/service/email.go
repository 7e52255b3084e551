package service

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"clearance-backend/internal/domain"
	"clearance-backend/internal/logger"
)

type sendGridEmailService struct {
	apiKey    string
	fromEmail string
	fromName  string
	enabled   bool
}

// NewEmailService builds the SendGrid-backed mailer. With an empty API
// key it degrades to a logging no-op so local environments run without
// credentials.
func NewEmailService(apiKey, fromEmail, fromName string) EmailService {
	return &sendGridEmailService{
		apiKey:    apiKey,
		fromEmail: fromEmail,
		fromName:  fromName,
		enabled:   apiKey != "",
	}
}

func (s *sendGridEmailService) send(ctx context.Context, to, toName, subject, plainText, htmlContent string) error {
	if !s.enabled {
		logger.Info("email disabled, skipping send", "to", to, "subject", subject)
		return nil
	}

	from := mail.NewEmail(s.fromName, s.fromEmail)
	recipient := mail.NewEmail(toName, to)
	message := mail.NewSingleEmail(from, subject, recipient, plainText, htmlContent)

	client := sendgrid.NewSendClient(s.apiKey)
	response, err := client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}
	return nil
}

func (s *sendGridEmailService) SendAuthorityReviewNotification(ctx context.Context, email, name string, approved bool, reason string) error {
	if approved {
		subject := "Your authority account has been approved"
		plain := fmt.Sprintf("Hello %s, your authority account has been approved. You can now sign in and review clearance applications.", name)
		html := fmt.Sprintf(`<html><body><h2>Account Approved</h2><p>Hello <strong>%s</strong>,</p><p>Your authority account has been approved. You can now sign in and review clearance applications.</p></body></html>`, name)
		return s.send(ctx, email, name, subject, plain, html)
	}
	subject := "Your authority registration was rejected"
	plain := fmt.Sprintf("Hello %s, your authority registration was rejected. Reason: %s", name, reason)
	html := fmt.Sprintf(`<html><body><h2>Registration Rejected</h2><p>Hello <strong>%s</strong>,</p><p>Your authority registration was rejected.</p><p>Reason: %s</p></body></html>`, name, reason)
	return s.send(ctx, email, name, subject, plain, html)
}

func (s *sendGridEmailService) SendAssignmentNotification(ctx context.Context, email, name, studentName, stageName string, applicationID int32) error {
	subject := fmt.Sprintf("New clearance application: %s", studentName)
	plain := fmt.Sprintf("Hello %s, application #%d from %s is waiting for your decision at stage %q.", name, applicationID, studentName, stageName)
	html := fmt.Sprintf(`<html><body><h2>New Application Assigned</h2><p>Hello <strong>%s</strong>,</p><p>Application <strong>#%d</strong> from <strong>%s</strong> is waiting for your decision at stage <strong>%s</strong>.</p></body></html>`,
		name, applicationID, studentName, stageName)
	return s.send(ctx, email, name, subject, plain, html)
}

func (s *sendGridEmailService) SendApplicationStatusNotification(ctx context.Context, email, name, studentNumber, appType string, status domain.ApplicationStatus, reason string) error {
	switch status {
	case domain.ApplicationApproved:
		subject := "Your clearance application has been approved"
		plain := fmt.Sprintf("Hello %s (%s), your %s clearance application has been approved. You can download your clearance certificate.", name, studentNumber, appType)
		html := fmt.Sprintf(`<html><body><h2>Clearance Approved</h2><p>Hello <strong>%s</strong> (%s),</p><p>Your %s clearance application has been approved. You can download your clearance certificate.</p></body></html>`, name, studentNumber, appType)
		return s.send(ctx, email, name, subject, plain, html)
	case domain.ApplicationRejected:
		subject := "Your clearance application was rejected"
		plain := fmt.Sprintf("Hello %s (%s), your %s clearance application was rejected. Reason: %s. You may correct the issue and resubmit.", name, studentNumber, appType, reason)
		html := fmt.Sprintf(`<html><body><h2>Clearance Rejected</h2><p>Hello <strong>%s</strong> (%s),</p><p>Your %s clearance application was rejected.</p><p>Reason: %s</p><p>You may correct the issue and resubmit.</p></body></html>`, name, studentNumber, appType, reason)
		return s.send(ctx, email, name, subject, plain, html)
	default:
		subject := "Your clearance application progressed"
		plain := fmt.Sprintf("Hello %s (%s), your %s clearance application moved to the next stage.", name, studentNumber, appType)
		html := fmt.Sprintf(`<html><body><h2>Clearance Progressed</h2><p>Hello <strong>%s</strong> (%s),</p><p>Your %s clearance application moved to the next stage.</p></body></html>`, name, studentNumber, appType)
		return s.send(ctx, email, name, subject, plain, html)
	}
}

func (s *sendGridEmailService) SendDecisionReminder(ctx context.Context, email, name, stageName, studentName string, daysPending int32) error {
	subject := fmt.Sprintf("Reminder: pending clearance decision (%d days)", daysPending)
	plain := fmt.Sprintf("Hello %s, the application from %s has been waiting at stage %q for %d days. Please review it.", name, studentName, stageName, daysPending)
	html := fmt.Sprintf(`<html><body><h2>Pending Decision Reminder</h2><p>Hello <strong>%s</strong>,</p><p>The application from <strong>%s</strong> has been waiting at stage <strong>%s</strong> for <strong>%d</strong> days. Please review it.</p></body></html>`,
		name, studentName, stageName, daysPending)
	return s.send(ctx, email, name, subject, plain, html)
}

func (s *sendGridEmailService) SendAdminDigest(ctx context.Context, email, subject, body string) error {
	html := fmt.Sprintf(`<html><body><pre>%s</pre></body></html>`, body)
	return s.send(ctx, email, "", subject, body, html)
}
