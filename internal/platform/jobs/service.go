package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"hrcrm/internal/domain/notifications"
	"hrcrm/internal/platform/config"
)

const (
	JobStaleLeadReminder   = "stale_lead_reminder"
	JobPendingLogsReminder = "pending_worklogs_reminder"

	staleLeadCutoff  = 14 * 24 * time.Hour
	pendingLogCutoff = 3 * 24 * time.Hour
)

type Service struct {
	DB       *pgxpool.Pool
	Cfg      config.Config
	Notifier *notifications.Service
	queue    chan job
}

type job struct {
	Type     string
	TenantID string
	Run      func(context.Context) (any, error)
}

func New(db *pgxpool.Pool, cfg config.Config, notifier *notifications.Service) *Service {
	return &Service{
		DB:       db,
		Cfg:      cfg,
		Notifier: notifier,
		queue:    make(chan job, 128),
	}
}

func (s *Service) Start(ctx context.Context) {
	go s.worker(ctx)
	if s.Cfg.ReminderInterval > 0 {
		go s.scheduleReminders(ctx, s.Cfg.ReminderInterval)
	}
}

func (s *Service) Enqueue(jobType, tenantID string, run func(context.Context) (any, error)) {
	select {
	case s.queue <- job{Type: jobType, TenantID: tenantID, Run: run}:
	default:
		slog.Warn("job queue full", "jobType", jobType, "tenantId", tenantID)
	}
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			if _, err := s.runJob(ctx, j); err != nil {
				slog.Warn("job run failed", "jobType", j.Type, "tenantId", j.TenantID, "err", err)
			}
		}
	}
}

func (s *Service) runJob(ctx context.Context, j job) (any, error) {
	runID := ""
	if err := s.DB.QueryRow(ctx, `
    INSERT INTO job_runs (tenant_id, job_type, status)
    VALUES ($1,$2,$3)
    RETURNING id
  `, j.TenantID, j.Type, "running").Scan(&runID); err != nil {
		slog.Warn("job run insert failed", "err", err)
	}

	details, err := j.Run(ctx)
	status := "completed"
	if err != nil {
		status = "failed"
	}
	detailsJSON, marshalErr := json.Marshal(details)
	if marshalErr != nil {
		slog.Warn("job details marshal failed", "err", marshalErr)
		detailsJSON = []byte("{}")
	}
	if runID != "" {
		if _, updErr := s.DB.Exec(ctx, `
      UPDATE job_runs
      SET status = $1, details_json = $2, completed_at = now()
      WHERE id = $3
    `, status, detailsJSON, runID); updErr != nil {
			slog.Warn("job run update failed", "err", updErr)
		}
	}
	return details, err
}

func (s *Service) scheduleReminders(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tenants, err := s.listTenants(ctx)
			if err != nil {
				slog.Warn("reminder scheduler tenant lookup failed", "err", err)
				continue
			}
			for _, tenantID := range tenants {
				tenant := tenantID
				s.Enqueue(JobStaleLeadReminder, tenant, func(ctx context.Context) (any, error) {
					return s.remindStaleLeads(ctx, tenant)
				})
				s.Enqueue(JobPendingLogsReminder, tenant, func(ctx context.Context) (any, error) {
					return s.remindPendingWorkLogs(ctx, tenant)
				})
			}
		}
	}
}

// remindStaleLeads notifies the assigned user for every open lead whose stage
// has not changed since the cutoff.
func (s *Service) remindStaleLeads(ctx context.Context, tenantID string) (any, error) {
	cutoff := time.Now().Add(-staleLeadCutoff)
	rows, err := s.DB.Query(ctx, `
    SELECT l.id, l.company_name, COALESCE(l.assigned_to::text, '')
    FROM leads l
    WHERE l.tenant_id = $1
      AND l.is_converted = false
      AND l.status <> 'unqualified'
      AND COALESCE(
        (SELECT MAX(h.changed_at) FROM lead_stage_history h WHERE h.lead_id = l.id),
        l.created_at
      ) < $2
  `, tenantID, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	type staleLead struct {
		ID      string
		Company string
		UserID  string
	}
	var stale []staleLead
	for rows.Next() {
		var l staleLead
		if err := rows.Scan(&l.ID, &l.Company, &l.UserID); err != nil {
			return nil, err
		}
		stale = append(stale, l)
	}

	notified := 0
	for _, l := range stale {
		if l.UserID == "" {
			continue
		}
		if err := s.Notifier.Create(ctx, tenantID, l.UserID, notifications.TypeLeadStale,
			"Lead needs attention",
			fmt.Sprintf("Lead %q has not moved stage in over %d days.", l.Company, int(staleLeadCutoff.Hours()/24)),
		); err != nil {
			slog.Warn("stale lead notification failed", "leadId", l.ID, "err", err)
			continue
		}
		notified++
	}
	return map[string]any{"staleLeads": len(stale), "notified": notified}, nil
}

// remindPendingWorkLogs notifies each employee's manager about work-log
// entries waiting on approval past the cutoff.
func (s *Service) remindPendingWorkLogs(ctx context.Context, tenantID string) (any, error) {
	cutoff := time.Now().Add(-pendingLogCutoff)
	rows, err := s.DB.Query(ctx, `
    SELECT COALESCE(m.user_id::text, ''), COUNT(1)
    FROM work_logs w
    JOIN employees e ON w.employee_id = e.id
    LEFT JOIN employees m ON e.manager_id = m.id
    WHERE w.tenant_id = $1 AND w.status = 'pending' AND w.created_at < $2
    GROUP BY m.user_id
  `, tenantID, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	type reminder struct {
		UserID string
		Count  int
	}
	var reminders []reminder
	for rows.Next() {
		var r reminder
		if err := rows.Scan(&r.UserID, &r.Count); err != nil {
			return nil, err
		}
		reminders = append(reminders, r)
	}

	notified := 0
	for _, r := range reminders {
		if r.UserID == "" {
			continue
		}
		if err := s.Notifier.Create(ctx, tenantID, r.UserID, notifications.TypeWorkLogPending,
			"Work logs awaiting approval",
			fmt.Sprintf("%d work-log entries have been pending for more than %d days.", r.Count, int(pendingLogCutoff.Hours()/24)),
		); err != nil {
			slog.Warn("pending work log notification failed", "err", err)
			continue
		}
		notified++
	}
	return map[string]any{"managersNotified": notified}, nil
}

func (s *Service) listTenants(ctx context.Context) ([]string, error) {
	rows, err := s.DB.Query(ctx, `SELECT id FROM tenants`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
