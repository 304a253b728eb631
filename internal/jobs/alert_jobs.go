package jobs

import (
	"context"
	"time"

	"autofleet-backoffice/internal/domain"
	"autofleet-backoffice/internal/logger"
)

const jobTimeout = 5 * time.Minute

// sweepAlerts recomputes the alert scan, keeps the requested types and mails
// the operations inbox. The sweeps are read-only; reservation statuses stay
// whatever the lifecycle made them.
func (jr *JobRunner) sweepAlerts(jobName string, types ...domain.AlertType) {
	jr.runWithRecovery(jobName, func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		alerts, err := jr.services.Dashboard.Alerts(ctx)
		if err != nil {
			logger.Error("Alert scan failed", "job", jobName, "error", err)
			return
		}

		var selected []domain.Alert
		for _, alert := range alerts {
			for _, t := range types {
				if alert.Type == t {
					selected = append(selected, alert)
					break
				}
			}
		}
		if len(selected) == 0 {
			logger.Info("No alerts to report", "job", jobName)
			return
		}

		inbox := jr.config.Email.OpsInbox
		if inbox == "" {
			logger.Warn("No operations inbox configured, skipping digest", "job", jobName, "alerts", len(selected))
			return
		}
		if err := jr.services.Email.SendAlertDigest(ctx, inbox, selected); err != nil {
			logger.Error("Alert digest delivery failed", "job", jobName, "error", err)
		}
	})
}

// OverdueSweep reports active rentals past their planned end date.
func (jr *JobRunner) OverdueSweep() {
	jr.sweepAlerts("OverdueSweep", domain.AlertTypeOverdue)
}

// DocumentExpirySweep reports vehicle documents expiring within the window.
func (jr *JobRunner) DocumentExpirySweep() {
	jr.sweepAlerts("DocumentExpirySweep", domain.AlertTypeDocumentExpiry)
}

// LicenseExpirySweep reports client licenses expiring within the window.
func (jr *JobRunner) LicenseExpirySweep() {
	jr.sweepAlerts("LicenseExpirySweep", domain.AlertTypeLicenseExpiry)
}
