package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/atelier/internal/lifecycle/domain"
	"github.com/felixgeelhaar/atelier/internal/shared/infrastructure/database"
)

const subjectColumns = `id, subject_type, title, assignee_id, stage, hold_status,
	project_value, state_json, version, created_at, updated_at`

// subjectDocument holds the nested parts of a subject in state_json.
type subjectDocument struct {
	Completed         map[string]time.Time                 `json:"completed,omitempty"`
	Percentages       map[string]domain.PercentageProgress `json:"percentages,omitempty"`
	Timeline          []domain.TimelineEntry               `json:"timeline,omitempty"`
	CustomSchedule    bool                                 `json:"custom_schedule"`
	CustomDefinitions []domain.ScheduleDefinition          `json:"custom_definitions,omitempty"`
	ExpectedDates     map[string]time.Time                 `json:"expected_dates,omitempty"`
}

// SubjectRepository implements domain.Repository.
type SubjectRepository struct {
	conn database.Connection
}

// NewSubjectRepository creates a repository over conn.
func NewSubjectRepository(conn database.Connection) *SubjectRepository {
	return &SubjectRepository{conn: conn}
}

func (r *SubjectRepository) q(query string) string {
	return database.Rebind(r.conn.Driver(), query)
}

func (r *SubjectRepository) exec(ctx context.Context) database.Executor {
	return database.ExecutorFromContext(ctx, r.conn)
}

// FindByID loads a subject and its payments.
func (r *SubjectRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Subject, error) {
	row := r.exec(ctx).QueryRow(ctx, r.q(`SELECT `+subjectColumns+` FROM lifecycle_subjects WHERE id = ?`), id.String())
	state, err := scanSubject(row)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, domain.ErrSubjectNotFound
		}
		return nil, err
	}

	ledgers, err := r.loadPayments(ctx, []string{id.String()})
	if err != nil {
		return nil, err
	}
	state.Payments = ledgers[id]
	return domain.RehydrateSubject(state), nil
}

// Save upserts the subject row guarded by its loaded version and syncs the
// payment ledger. A stale version yields domain.ErrConcurrentModification.
// On success the caller bumps the in-memory version with MarkPersisted.
func (r *SubjectRepository) Save(ctx context.Context, s *domain.Subject) error {
	state := s.State()
	doc, err := json.Marshal(subjectDocument{
		Completed:         state.CompletedSubStages,
		Percentages:       state.PercentageSubStages,
		Timeline:          state.Timeline,
		CustomSchedule:    state.CustomSchedule,
		CustomDefinitions: state.CustomDefinitions,
		ExpectedDates:     state.ExpectedDates,
	})
	if err != nil {
		return fmt.Errorf("encode subject %s: %w", state.ID, err)
	}

	exec := r.exec(ctx)
	var stored int
	err = exec.QueryRow(ctx, r.q(`INSERT INTO lifecycle_subjects (`+subjectColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			title = excluded.title,
			assignee_id = excluded.assignee_id,
			stage = excluded.stage,
			hold_status = excluded.hold_status,
			project_value = excluded.project_value,
			state_json = excluded.state_json,
			version = excluded.version,
			updated_at = excluded.updated_at
		WHERE lifecycle_subjects.version = ?
		RETURNING version`),
		state.ID.String(),
		string(state.Type),
		state.Title,
		state.AssigneeID.String(),
		state.Stage,
		string(state.HoldStatus),
		state.ProjectValue,
		string(doc),
		state.Version+1,
		database.FormatTime(state.CreatedAt),
		database.FormatTime(state.UpdatedAt),
		state.Version,
	).Scan(&stored)
	if err != nil {
		if database.IsNoRows(err) {
			return domain.ErrConcurrentModification
		}
		return fmt.Errorf("save subject %s: %w", state.ID, err)
	}

	return r.syncPayments(ctx, exec, state.ID, state.Payments)
}

// syncPayments inserts new ledger records and removes deleted ones. Payment
// records are immutable, so rows present on both sides are left alone.
func (r *SubjectRepository) syncPayments(ctx context.Context, exec database.Executor, subjectID uuid.UUID, payments []domain.Payment) error {
	existing := make(map[string]bool)
	rows, err := exec.Query(ctx, r.q(`SELECT id FROM lifecycle_payments WHERE subject_id = ?`), subjectID.String())
	if err != nil {
		return err
	}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			_ = rows.Close()
			return err
		}
		existing[id] = true
	}
	if err := rows.Close(); err != nil {
		return err
	}
	if err := rows.Err(); err != nil {
		return err
	}

	keep := make(map[string]bool, len(payments))
	for _, p := range payments {
		id := p.ID.String()
		keep[id] = true
		if existing[id] {
			continue
		}
		_, err := exec.Exec(ctx, r.q(`INSERT INTO lifecycle_payments
			(id, subject_id, amount, mode, paid_on, reference, recorded_by, recorded_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
			id, subjectID.String(), p.Amount, string(p.Mode),
			database.FormatTime(p.PaidOn), p.Reference, p.RecordedBy.String(),
			database.FormatTime(p.RecordedAt),
		)
		if err != nil {
			return fmt.Errorf("insert payment %s: %w", id, err)
		}
	}

	for id := range existing {
		if keep[id] {
			continue
		}
		if _, err := exec.Exec(ctx, r.q(`DELETE FROM lifecycle_payments WHERE id = ?`), id); err != nil {
			return fmt.Errorf("delete payment %s: %w", id, err)
		}
	}
	return nil
}

// List returns matching subjects, most recently updated first.
func (r *SubjectRepository) List(ctx context.Context, filter domain.ListFilter) ([]*domain.Subject, error) {
	driver := r.conn.Driver()
	w := &whereBuilder{driver: driver}
	if filter.Type != "" {
		w.add("subject_type = ?", string(filter.Type))
	}
	w.in("stage", filter.Stages)
	if len(filter.HoldStatuses) > 0 {
		holds := make([]string, len(filter.HoldStatuses))
		for i, h := range filter.HoldStatuses {
			holds[i] = string(h)
		}
		w.in("hold_status", holds)
	}
	if filter.AssigneeID != uuid.Nil {
		w.add("assignee_id = ?", filter.AssigneeID.String())
	}

	query := `SELECT ` + subjectColumns + ` FROM lifecycle_subjects` + w.String() + ` ORDER BY updated_at DESC, id`
	args := w.args
	switch {
	case filter.Limit > 0:
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	case filter.Offset > 0 && driver == database.DriverSQLite:
		query += ` LIMIT -1`
	}
	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := r.exec(ctx).Query(ctx, database.Rebind(driver, query), args...)
	if err != nil {
		return nil, err
	}
	var states []domain.SubjectState
	for rows.Next() {
		state, err := scanSubject(rows)
		if err != nil {
			_ = rows.Close()
			return nil, err
		}
		states = append(states, state)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(states) == 0 {
		return nil, nil
	}

	ids := make([]string, len(states))
	for i, st := range states {
		ids[i] = st.ID.String()
	}
	ledgers, err := r.loadPayments(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]*domain.Subject, 0, len(states))
	for _, st := range states {
		st.Payments = ledgers[st.ID]
		out = append(out, domain.RehydrateSubject(st))
	}
	return out, nil
}

func (r *SubjectRepository) loadPayments(ctx context.Context, subjectIDs []string) (map[uuid.UUID][]domain.Payment, error) {
	w := &whereBuilder{driver: r.conn.Driver()}
	w.in("subject_id", subjectIDs)

	rows, err := r.exec(ctx).Query(ctx, r.q(`SELECT id, subject_id, amount, mode, paid_on, reference, recorded_by, recorded_at
		FROM lifecycle_payments`+w.String()+` ORDER BY recorded_at, id`), w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[uuid.UUID][]domain.Payment)
	for rows.Next() {
		var (
			p                         domain.Payment
			id, subject, mode, paidOn string
			recordedBy, recordedAt    string
		)
		if err := rows.Scan(&id, &subject, &p.Amount, &mode, &paidOn, &p.Reference, &recordedBy, &recordedAt); err != nil {
			return nil, err
		}
		subjectID, err := uuid.Parse(subject)
		if err != nil {
			return nil, fmt.Errorf("payment %s: subject id: %w", id, err)
		}
		if p.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("payment id %q: %w", id, err)
		}
		if p.RecordedBy, err = uuid.Parse(recordedBy); err != nil {
			return nil, fmt.Errorf("payment %s: recorded_by: %w", id, err)
		}
		if p.PaidOn, err = database.ParseTime(paidOn); err != nil {
			return nil, fmt.Errorf("payment %s: paid_on: %w", id, err)
		}
		if p.RecordedAt, err = database.ParseTime(recordedAt); err != nil {
			return nil, fmt.Errorf("payment %s: recorded_at: %w", id, err)
		}
		p.Mode = domain.PaymentMode(mode)
		out[subjectID] = append(out[subjectID], p)
	}
	return out, rows.Err()
}

func scanSubject(row database.Row) (domain.SubjectState, error) {
	var (
		state                                domain.SubjectState
		id, subjectType, assignee, hold, doc string
		createdAt, updatedAt                 string
	)
	err := row.Scan(&id, &subjectType, &state.Title, &assignee, &state.Stage, &hold,
		&state.ProjectValue, &doc, &state.Version, &createdAt, &updatedAt)
	if err != nil {
		return domain.SubjectState{}, err
	}

	if state.ID, err = uuid.Parse(id); err != nil {
		return domain.SubjectState{}, fmt.Errorf("subject id %q: %w", id, err)
	}
	if state.AssigneeID, err = uuid.Parse(assignee); err != nil {
		return domain.SubjectState{}, fmt.Errorf("subject %s: assignee: %w", id, err)
	}
	if state.CreatedAt, err = database.ParseTime(createdAt); err != nil {
		return domain.SubjectState{}, fmt.Errorf("subject %s: created_at: %w", id, err)
	}
	if state.UpdatedAt, err = database.ParseTime(updatedAt); err != nil {
		return domain.SubjectState{}, fmt.Errorf("subject %s: updated_at: %w", id, err)
	}

	var d subjectDocument
	if err := json.Unmarshal([]byte(doc), &d); err != nil {
		return domain.SubjectState{}, fmt.Errorf("subject %s: decode state: %w", id, err)
	}
	state.Type = domain.SubjectType(subjectType)
	state.HoldStatus = domain.HoldStatus(hold)
	state.CompletedSubStages = d.Completed
	state.PercentageSubStages = d.Percentages
	state.Timeline = d.Timeline
	state.CustomSchedule = d.CustomSchedule
	state.CustomDefinitions = d.CustomDefinitions
	state.ExpectedDates = d.ExpectedDates
	return state, nil
}
