package core

import (
	"context"
	"fmt"
)

// DashboardStats holds aggregate counts bounded by the caller's visibility.
type DashboardStats struct {
	Recipients       int           `json:"recipients"`
	Messages         int           `json:"messages"`
	Mailings         int           `json:"mailings"`
	MailingsCreated  int           `json:"mailings_created"`
	MailingsRunning  int           `json:"mailings_running"`
	MailingsFinished int           `json:"mailings_finished"`
	Attempts         int           `json:"attempts"`
	AttemptsSuccess  int           `json:"attempts_success"`
	AttemptsFailed   int           `json:"attempts_failed"`
	MailingsByStatus []StatusCount `json:"mailings_by_status"`
	AttemptsByDay    []DayCount    `json:"attempts_by_day"`
}

// StatusCount holds a count grouped by status.
type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// DayCount holds attempt volume for one calendar day.
type DayCount struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}

// DashboardService queries aggregate stats from the database.
type DashboardService struct {
	db DB
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(db DB) *DashboardService {
	return &DashboardService{db: db}
}

// Stats returns aggregate counts using a single query with CTEs, plus two
// small group-by queries for the breakdowns.
func (s *DashboardService) Stats(ctx context.Context, scope Scope) (*DashboardStats, error) {
	const countsQuery = `
		WITH recipient_count AS (
			SELECT count(*) AS c FROM recipients WHERE ($1::bool OR owner_id = $2)
		), message_count AS (
			SELECT count(*) AS c FROM messages WHERE ($1::bool OR owner_id = $2)
		), mailing_count AS (
			SELECT count(*) AS c FROM mailings WHERE ($1::bool OR owner_id = $2)
		), mailing_created AS (
			SELECT count(*) AS c FROM mailings WHERE ($1::bool OR owner_id = $2) AND status = 'CREATED'
		), mailing_running AS (
			SELECT count(*) AS c FROM mailings WHERE ($1::bool OR owner_id = $2) AND status = 'RUNNING'
		), mailing_finished AS (
			SELECT count(*) AS c FROM mailings WHERE ($1::bool OR owner_id = $2) AND status = 'FINISHED'
		), attempt_count AS (
			SELECT count(*) AS c FROM mail_attempts WHERE ($1::bool OR owner_id = $2)
		), attempt_success AS (
			SELECT count(*) AS c FROM mail_attempts WHERE ($1::bool OR owner_id = $2) AND status = 'SUCCESS'
		), attempt_failed AS (
			SELECT count(*) AS c FROM mail_attempts WHERE ($1::bool OR owner_id = $2) AND status = 'FAILED'
		)
		SELECT
			(SELECT c FROM recipient_count),
			(SELECT c FROM message_count),
			(SELECT c FROM mailing_count),
			(SELECT c FROM mailing_created),
			(SELECT c FROM mailing_running),
			(SELECT c FROM mailing_finished),
			(SELECT c FROM attempt_count),
			(SELECT c FROM attempt_success),
			(SELECT c FROM attempt_failed)`

	stats := &DashboardStats{}
	err := s.db.QueryRow(ctx, countsQuery, scope.All, scope.ActorID).Scan(
		&stats.Recipients,
		&stats.Messages,
		&stats.Mailings,
		&stats.MailingsCreated,
		&stats.MailingsRunning,
		&stats.MailingsFinished,
		&stats.Attempts,
		&stats.AttemptsSuccess,
		&stats.AttemptsFailed,
	)
	if err != nil {
		return nil, fmt.Errorf("dashboard counts: %w", err)
	}

	// Mailings by status
	mbsRows, err := s.db.Query(ctx,
		`SELECT status, count(*) FROM mailings WHERE ($1::bool OR owner_id = $2)
		 GROUP BY status ORDER BY count(*) DESC`,
		scope.All, scope.ActorID)
	if err != nil {
		return nil, fmt.Errorf("dashboard mailings by status: %w", err)
	}
	defer mbsRows.Close()

	for mbsRows.Next() {
		var sc StatusCount
		if err := mbsRows.Scan(&sc.Status, &sc.Count); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		stats.MailingsByStatus = append(stats.MailingsByStatus, sc)
	}
	if err := mbsRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate status counts: %w", err)
	}

	// Attempts per day over the last 30 days
	abdRows, err := s.db.Query(ctx,
		`SELECT to_char(attempted_at::date, 'YYYY-MM-DD'), count(*)
		 FROM mail_attempts
		 WHERE ($1::bool OR owner_id = $2) AND attempted_at > now() - interval '30 days'
		 GROUP BY attempted_at::date ORDER BY attempted_at::date`,
		scope.All, scope.ActorID)
	if err != nil {
		return nil, fmt.Errorf("dashboard attempts by day: %w", err)
	}
	defer abdRows.Close()

	for abdRows.Next() {
		var dc DayCount
		if err := abdRows.Scan(&dc.Day, &dc.Count); err != nil {
			return nil, fmt.Errorf("scan day count: %w", err)
		}
		stats.AttemptsByDay = append(stats.AttemptsByDay, dc)
	}
	if err := abdRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate day counts: %w", err)
	}

	return stats, nil
}
