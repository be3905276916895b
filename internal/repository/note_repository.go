package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/notes-service/internal/domain"
)

// NoteRepository encapsulates note persistence.
type NoteRepository interface {
	Create(ctx context.Context, note *domain.Note) error
	Update(ctx context.Context, note *domain.Note) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Note, error)
	GetByTitle(ctx context.Context, title string) (*domain.Note, error)
	List(ctx context.Context) ([]domain.Note, error)
	CountByUser(ctx context.Context, userID string) (int64, error)
}

type noteRepository struct {
	pool *pgxpool.Pool
}

// NewNoteRepository instantiates repository.
func NewNoteRepository(pool *pgxpool.Pool) NoteRepository {
	return &noteRepository{pool: pool}
}

func (r *noteRepository) Create(ctx context.Context, note *domain.Note) error {
	const query = `
        INSERT INTO notes (user_id, title, body, completed)
        VALUES ($1, $2, $3, $4)
        RETURNING id, ticket_num, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		note.UserID,
		note.Title,
		note.Text,
		note.Completed,
	).Scan(&note.ID, &note.TicketNum, &note.CreatedAt, &note.UpdatedAt)
}

func (r *noteRepository) Update(ctx context.Context, note *domain.Note) error {
	const query = `
        UPDATE notes SET user_id=$1, title=$2, body=$3, completed=$4, updated_at=NOW()
        WHERE id=$5`
	cmd, err := r.pool.Exec(ctx, query,
		note.UserID,
		note.Title,
		note.Text,
		note.Completed,
		note.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *noteRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM notes WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *noteRepository) GetByID(ctx context.Context, id string) (*domain.Note, error) {
	const query = noteSelect + ` WHERE n.id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *noteRepository) GetByTitle(ctx context.Context, title string) (*domain.Note, error) {
	const query = noteSelect + ` WHERE n.title=$1`
	return r.fetchSingle(ctx, query, title)
}

func (r *noteRepository) List(ctx context.Context) ([]domain.Note, error) {
	const query = noteSelect + ` ORDER BY n.ticket_num`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notes []domain.Note
	for rows.Next() {
		var note domain.Note
		if err := scanNote(rows, &note); err != nil {
			return nil, err
		}
		notes = append(notes, note)
	}
	return notes, rows.Err()
}

func (r *noteRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM notes WHERE user_id=$1`, userID).Scan(&count)
	return count, err
}

const noteSelect = `
        SELECT n.id, n.ticket_num, n.user_id, u.username, n.title, n.body, n.completed, n.created_at, n.updated_at
        FROM notes n JOIN users u ON u.id = n.user_id`

func (r *noteRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Note, error) {
	var note domain.Note
	if err := scanNote(r.pool.QueryRow(ctx, query, arg), &note); err != nil {
		return nil, err
	}
	return &note, nil
}

func scanNote(row rowScanner, note *domain.Note) error {
	return row.Scan(
		&note.ID,
		&note.TicketNum,
		&note.UserID,
		&note.Username,
		&note.Title,
		&note.Text,
		&note.Completed,
		&note.CreatedAt,
		&note.UpdatedAt,
	)
}
