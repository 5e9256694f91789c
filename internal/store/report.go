package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"reportdesk.app/reportdesk/core/db"
	"reportdesk.app/reportdesk/internal/model"
)

type reportStore struct {
	q db.Querier
}

func newReportStore(q db.Querier) ReportStore {
	return &reportStore{q: q}
}

const reportColumns = `id, reporter_id, reporter_name, category, content, attachments,
	message_id, replied, replied_at, replied_by, reply_content, created_at`

func (s *reportStore) Create(ctx context.Context, report *model.Report) error {
	attachmentsJSON, err := json.Marshal(report.Attachments)
	if err != nil {
		return fmt.Errorf("marshal attachments: %w", err)
	}
	if report.Attachments == nil {
		attachmentsJSON = []byte("[]")
	}

	row := s.q.QueryRow(ctx, `
		INSERT INTO report (id, reporter_id, reporter_name, category, content, attachments)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`,
		report.ID, report.ReporterID, report.ReporterName, string(report.Category), report.Content, attachmentsJSON,
	)
	if err := row.Scan(&report.CreatedAt); err != nil {
		return fmt.Errorf("inserting report: %w", err)
	}
	return nil
}

func (s *reportStore) GetByID(ctx context.Context, id int64) (*model.Report, error) {
	row := s.q.QueryRow(ctx, `SELECT `+reportColumns+` FROM report WHERE id = $1`, id)
	report, err := scanReport(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return report, nil
}

func (s *reportStore) SetMessageID(ctx context.Context, id int64, messageID int64) error {
	tag, err := s.q.Exec(ctx, `
		UPDATE report SET message_id = $2
		WHERE id = $1 AND message_id IS NULL`,
		id, messageID,
	)
	if err != nil {
		return fmt.Errorf("setting message id: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Either the report is gone or the handle was already set. Both are
		// cases where writing again would corrupt the delivery field.
		existing, getErr := s.GetByID(ctx, id)
		if getErr != nil {
			return getErr
		}
		return fmt.Errorf("report %d already has message id %d", id, *existing.MessageID)
	}
	return nil
}

func (s *reportStore) UpdateAttachments(ctx context.Context, id int64, attachments []model.Attachment) error {
	attachmentsJSON, err := json.Marshal(attachments)
	if err != nil {
		return fmt.Errorf("marshal attachments: %w", err)
	}

	tag, err := s.q.Exec(ctx, `UPDATE report SET attachments = $2 WHERE id = $1`, id, attachmentsJSON)
	if err != nil {
		return fmt.Errorf("updating attachments: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *reportStore) MarkReplied(ctx context.Context, id int64, repliedBy, replyContent string) (*model.Report, error) {
	// Conditional update: the replied guard makes the transition one-way and
	// rejects concurrent double replies at the store layer.
	row := s.q.QueryRow(ctx, `
		UPDATE report
		SET replied = TRUE, replied_at = now(), replied_by = $2, reply_content = $3
		WHERE id = $1 AND replied = FALSE
		RETURNING `+reportColumns,
		id, repliedBy, replyContent,
	)
	report, err := scanReport(row)
	if err == nil {
		return report, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	// No row matched: distinguish missing report from already-replied.
	if _, getErr := s.GetByID(ctx, id); getErr != nil {
		return nil, getErr
	}
	return nil, ErrAlreadyReplied
}

func (s *reportStore) List(ctx context.Context, filter ReportFilter) ([]model.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM report WHERE TRUE`
	args := []any{}

	if filter.Category != nil {
		args = append(args, string(*filter.Category))
		query += fmt.Sprintf(" AND category = $%d", len(args))
	}
	if filter.Replied != nil {
		args = append(args, *filter.Replied)
		query += fmt.Sprintf(" AND replied = $%d", len(args))
	}
	if filter.ReporterID != nil {
		args = append(args, *filter.ReporterID)
		query += fmt.Sprintf(" AND reporter_id = $%d", len(args))
	}

	query += " ORDER BY created_at DESC"

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	args = append(args, limit)
	query += fmt.Sprintf(" LIMIT $%d", len(args))

	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := s.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing reports: %w", err)
	}
	defer rows.Close()

	var reports []model.Report
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, *report)
	}
	return reports, rows.Err()
}

func scanReport(row pgx.Row) (*model.Report, error) {
	var (
		r               model.Report
		category        string
		attachmentsJSON []byte
	)
	if err := row.Scan(
		&r.ID, &r.ReporterID, &r.ReporterName, &category, &r.Content, &attachmentsJSON,
		&r.MessageID, &r.Replied, &r.RepliedAt, &r.RepliedBy, &r.ReplyContent, &r.CreatedAt,
	); err != nil {
		return nil, err
	}

	r.Category = model.Category(category)
	if len(attachmentsJSON) > 0 {
		if err := json.Unmarshal(attachmentsJSON, &r.Attachments); err != nil {
			return nil, fmt.Errorf("unmarshal attachments: %w", err)
		}
	}
	return &r, nil
}
