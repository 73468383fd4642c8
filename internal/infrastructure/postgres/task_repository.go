package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/egovle/sevasetu/internal/domain/task"
)

// TaskRepository implements task.Repository.
type TaskRepository struct {
	db DBTX
}

func NewTaskRepository(db DBTX) *TaskRepository {
	return &TaskRepository{db: db}
}

const taskColumns = `id, task_id, service_id, service, creator_id, creator_role, customer, customer_contact,
	status, assigned_vle_id, assigned_vle_name, total_paid, admin_commission, documents,
	acknowledgement_number, final_certificate, complaint, feedback, history,
	status_before_complaint, version, created_at, updated_at`

func (r *TaskRepository) Create(ctx context.Context, t *task.Task) error {
	docs, history, complaint, feedback, cert, err := marshalTaskJSON(t)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO tasks (task_id, service_id, service, creator_id, creator_role, customer, customer_contact,
		 status, assigned_vle_id, assigned_vle_name, total_paid, admin_commission, documents,
		 acknowledgement_number, final_certificate, complaint, feedback, history,
		 status_before_complaint, version, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22)
	`, t.TaskID, t.ServiceID, t.Service, t.CreatorID, t.CreatorRole, t.Customer, t.CustomerContact,
		t.Status, t.AssignedVLEID, t.AssignedVLEName, t.TotalPaid, t.AdminCommission, docs,
		t.AcknowledgementNumber, cert, complaint, feedback, history,
		t.StatusBeforeComplaint, t.Version, t.CreatedAt, t.UpdatedAt)
	return err
}

func (r *TaskRepository) GetByID(ctx context.Context, taskID uuid.UUID) (*task.Task, error) {
	row := r.db.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE task_id=$1`, taskID)
	t, err := scanTask(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return t, err
}

func (r *TaskRepository) List(ctx context.Context, filter task.Filter, limit, offset int) ([]*task.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks`
	where := ""
	args := []interface{}{}
	add := func(clause string, value interface{}) {
		if where == "" {
			where = " WHERE "
		} else {
			where += " AND "
		}
		args = append(args, value)
		where += clause + "$" + itoa(len(args))
	}
	if filter.Status != nil {
		add("status=", *filter.Status)
	}
	if filter.CreatorID != nil {
		add("creator_id=", *filter.CreatorID)
	}
	if filter.AssignedVLEID != nil {
		add("assigned_vle_id=", *filter.AssignedVLEID)
	}
	if filter.ServiceID != nil {
		add("service_id=", *filter.ServiceID)
	}
	query += where + " ORDER BY created_at DESC, id DESC"
	if limit > 0 {
		args = append(args, limit)
		query += " LIMIT $" + itoa(len(args))
	}
	if offset > 0 {
		args = append(args, offset)
		query += " OFFSET $" + itoa(len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var tasks []*task.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// Update writes the task guarded by a version compare-and-set. A stale
// version fails with ErrNoLongerAvailable.
func (r *TaskRepository) Update(ctx context.Context, t *task.Task) error {
	docs, history, complaint, feedback, cert, err := marshalTaskJSON(t)
	if err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE tasks SET status=$1, assigned_vle_id=$2, assigned_vle_name=$3, total_paid=$4,
		 admin_commission=$5, documents=$6, acknowledgement_number=$7, final_certificate=$8,
		 complaint=$9, feedback=$10, history=$11, status_before_complaint=$12,
		 version=version+1, updated_at=$13
		WHERE task_id=$14 AND version=$15
	`, t.Status, t.AssignedVLEID, t.AssignedVLEName, t.TotalPaid,
		t.AdminCommission, docs, t.AcknowledgementNumber, cert,
		complaint, feedback, history, t.StatusBeforeComplaint,
		t.UpdatedAt, t.TaskID, t.Version)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return task.ErrNoLongerAvailable
	}
	t.Version++
	return nil
}

func marshalTaskJSON(t *task.Task) (docs, history, complaint, feedback, cert []byte, err error) {
	if docs, err = json.Marshal(t.Documents); err != nil {
		return
	}
	if history, err = json.Marshal(t.History); err != nil {
		return
	}
	if t.Complaint != nil {
		if complaint, err = json.Marshal(t.Complaint); err != nil {
			return
		}
	}
	if t.Feedback != nil {
		if feedback, err = json.Marshal(t.Feedback); err != nil {
			return
		}
	}
	if t.FinalCertificate != nil {
		cert, err = json.Marshal(t.FinalCertificate)
	}
	return
}

func scanTask(row pgx.Row) (*task.Task, error) {
	var t task.Task
	var docs, history, complaint, feedback, cert []byte
	if err := row.Scan(&t.ID, &t.TaskID, &t.ServiceID, &t.Service, &t.CreatorID, &t.CreatorRole,
		&t.Customer, &t.CustomerContact, &t.Status, &t.AssignedVLEID, &t.AssignedVLEName,
		&t.TotalPaid, &t.AdminCommission, &docs, &t.AcknowledgementNumber, &cert,
		&complaint, &feedback, &history, &t.StatusBeforeComplaint, &t.Version,
		&t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	if len(docs) > 0 {
		if err := json.Unmarshal(docs, &t.Documents); err != nil {
			return nil, fmt.Errorf("decode documents: %w", err)
		}
	}
	if len(history) > 0 {
		if err := json.Unmarshal(history, &t.History); err != nil {
			return nil, fmt.Errorf("decode history: %w", err)
		}
	}
	if len(complaint) > 0 {
		t.Complaint = &task.Complaint{}
		if err := json.Unmarshal(complaint, t.Complaint); err != nil {
			return nil, fmt.Errorf("decode complaint: %w", err)
		}
	}
	if len(feedback) > 0 {
		t.Feedback = &task.Feedback{}
		if err := json.Unmarshal(feedback, t.Feedback); err != nil {
			return nil, fmt.Errorf("decode feedback: %w", err)
		}
	}
	if len(cert) > 0 {
		t.FinalCertificate = &task.Document{}
		if err := json.Unmarshal(cert, t.FinalCertificate); err != nil {
			return nil, fmt.Errorf("decode certificate: %w", err)
		}
	}
	return &t, nil
}
