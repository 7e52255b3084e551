package jobs

import (
	"context"
	"fmt"
	"strings"
	"time"

	"clearance-backend/internal/logger"
)

// SendStaleDecisionReminders emails authorities whose pending decisions
// outstayed the stage's maximum duration.
func (jr *JobRunner) SendStaleDecisionReminders() {
	jr.runWithRecovery("SendStaleDecisionReminders", func() {
		ctx := context.Background()

		overdue, err := jr.store.ListOverduePending(ctx, time.Now())
		if err != nil {
			logger.Error("Failed to query overdue decisions", "error", err)
			return
		}

		count := 0
		for _, o := range overdue {
			if o.AuthorityEmail == "" {
				logger.Warn("Overdue decision has no assigned authority",
					"application_id", o.Decision.ApplicationID,
					"stage", o.Decision.StageOrder)
				continue
			}

			err := jr.services.Email.SendDecisionReminder(ctx,
				o.AuthorityEmail, o.AuthorityName, o.Decision.StageName, o.StudentName, o.DaysPending)
			if err != nil {
				logger.Error("Failed to send decision reminder",
					"application_id", o.Decision.ApplicationID,
					"stage", o.Decision.StageOrder,
					"email", o.AuthorityEmail,
					"error", err)
				continue
			}

			count++
			logger.Debug("Sent decision reminder",
				"application_id", o.Decision.ApplicationID,
				"stage", o.Decision.StageOrder,
				"email", o.AuthorityEmail)
		}

		logger.Info("Decision reminders sent", "count", count, "overdue", len(overdue))
	})
}

// SendPendingRegistrationDigest emails every admin a summary of authority
// registrations still awaiting review.
func (jr *JobRunner) SendPendingRegistrationDigest() {
	jr.runWithRecovery("SendPendingRegistrationDigest", func() {
		ctx := context.Background()

		pending, err := jr.store.ListPending(ctx)
		if err != nil {
			logger.Error("Failed to query pending registrations", "error", err)
			return
		}
		if len(pending) == 0 {
			logger.Info("No pending registrations, digest skipped")
			return
		}

		admins, err := jr.store.ListAdmins(ctx)
		if err != nil {
			logger.Error("Failed to query admins", "error", err)
			return
		}

		var b strings.Builder
		fmt.Fprintf(&b, "%d authority registration(s) awaiting review:\n\n", len(pending))
		for _, a := range pending {
			fmt.Fprintf(&b, "- %s <%s>, position %s, registered %s\n",
				a.FullName, a.Email, a.Position, a.RegisteredAt.Format("2006-01-02"))
		}
		subject := fmt.Sprintf("Pending authority registrations: %d", len(pending))

		count := 0
		for _, admin := range admins {
			if err := jr.services.Email.SendAdminDigest(ctx, admin.Email, subject, b.String()); err != nil {
				logger.Error("Failed to send registration digest",
					"admin_id", admin.ID, "email", admin.Email, "error", err)
				continue
			}
			count++
		}

		logger.Info("Registration digests sent", "count", count, "pending", len(pending))
	})
}
