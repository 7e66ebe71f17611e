package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/escola-api/internal/models"
)

const announcementColumns = `id, title, content, published, for_all, created_at, updated_at`

// AnnouncementRepository persists announcements and their target students.
type AnnouncementRepository struct {
	db *sqlx.DB
}

// NewAnnouncementRepository creates a new repository instance.
func NewAnnouncementRepository(db *sqlx.DB) *AnnouncementRepository {
	return &AnnouncementRepository{db: db}
}

// List returns announcements newest first, with the total match count.
func (r *AnnouncementRepository) List(ctx context.Context, filter models.AnnouncementFilter) ([]models.Announcement, int, error) {
	where := ""
	var args []interface{}
	if filter.Published != nil {
		args = append(args, *filter.Published)
		where = " WHERE published = $1"
	}
	page, size := models.NormalizePaging(filter.Page, filter.PageSize)

	query := fmt.Sprintf(`SELECT %s FROM announcements%s ORDER BY created_at DESC LIMIT %d OFFSET %d`, announcementColumns, where, size, (page-1)*size)
	var items []models.Announcement
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list announcements: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM announcements`+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count announcements: %w", err)
	}
	return items, total, nil
}

// ListForStudent returns published announcements addressed to everyone or to the student.
func (r *AnnouncementRepository) ListForStudent(ctx context.Context, studentID string) ([]models.Announcement, error) {
	const query = `SELECT a.id, a.title, a.content, a.published, a.for_all, a.created_at, a.updated_at
FROM announcements a
WHERE a.published AND (a.for_all OR EXISTS (
	SELECT 1 FROM announcement_targets t WHERE t.announcement_id = a.id AND t.student_id = $1
))
ORDER BY a.created_at DESC`
	var items []models.Announcement
	if err := r.db.SelectContext(ctx, &items, query, studentID); err != nil {
		return nil, fmt.Errorf("list student announcements: %w", err)
	}
	return items, nil
}

// FindByID returns an announcement with its target student ids.
func (r *AnnouncementRepository) FindByID(ctx context.Context, id string) (*models.Announcement, error) {
	query := `SELECT ` + announcementColumns + ` FROM announcements WHERE id = $1`
	var item models.Announcement
	if err := r.db.GetContext(ctx, &item, query, id); err != nil {
		if missing(err) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("find announcement: %w", err)
	}
	targets, err := r.targets(ctx, id)
	if err != nil {
		return nil, err
	}
	item.StudentIDs = targets
	return &item, nil
}

// Create inserts an announcement.
func (r *AnnouncementRepository) Create(ctx context.Context, exec sqlx.ExtContext, item *models.Announcement) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now
	const query = `INSERT INTO announcements (id, title, content, published, for_all, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := pick(r.db, exec).ExecContext(ctx, query, item.ID, item.Title, item.Content, item.Published, item.ForAll, item.CreatedAt, item.UpdatedAt); err != nil {
		return fmt.Errorf("create announcement: %w", err)
	}
	return nil
}

// Update overwrites an announcement. Returns sql.ErrNoRows when absent.
func (r *AnnouncementRepository) Update(ctx context.Context, exec sqlx.ExtContext, item *models.Announcement) error {
	item.UpdatedAt = time.Now().UTC()
	const query = `UPDATE announcements SET title = $2, content = $3, published = $4, for_all = $5, updated_at = $6 WHERE id = $1`
	res, err := pick(r.db, exec).ExecContext(ctx, query, item.ID, item.Title, item.Content, item.Published, item.ForAll, item.UpdatedAt)
	if err != nil {
		if missing(err) {
			return sql.ErrNoRows
		}
		return fmt.Errorf("update announcement: %w", err)
	}
	return expectAffected(res, "update announcement")
}

// ReplaceTargets swaps the target student set of an announcement.
func (r *AnnouncementRepository) ReplaceTargets(ctx context.Context, exec sqlx.ExtContext, id string, studentIDs []string) error {
	q := pick(r.db, exec)
	if _, err := q.ExecContext(ctx, `DELETE FROM announcement_targets WHERE announcement_id = $1`, id); err != nil {
		return fmt.Errorf("clear announcement targets: %w", err)
	}
	if len(studentIDs) == 0 {
		return nil
	}
	const insert = `INSERT INTO announcement_targets (announcement_id, student_id)
SELECT $1, UNNEST($2::text[]) ON CONFLICT DO NOTHING`
	if _, err := q.ExecContext(ctx, insert, id, pq.Array(studentIDs)); err != nil {
		return fmt.Errorf("insert announcement targets: %w", err)
	}
	return nil
}

// TogglePublished flips the published flag and returns the new value.
func (r *AnnouncementRepository) TogglePublished(ctx context.Context, id string) (bool, error) {
	const query = `UPDATE announcements SET published = NOT published, updated_at = $2 WHERE id = $1 RETURNING published`
	var published bool
	if err := r.db.GetContext(ctx, &published, query, id, time.Now().UTC()); err != nil {
		if missing(err) {
			return false, sql.ErrNoRows
		}
		return false, fmt.Errorf("toggle announcement: %w", err)
	}
	return published, nil
}

// Delete removes an announcement; targets cascade.
func (r *AnnouncementRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM announcements WHERE id = $1`, id)
	if err != nil {
		if missing(err) {
			return sql.ErrNoRows
		}
		return fmt.Errorf("delete announcement: %w", err)
	}
	return expectAffected(res, "delete announcement")
}

func (r *AnnouncementRepository) targets(ctx context.Context, id string) ([]string, error) {
	const query = `SELECT student_id FROM announcement_targets WHERE announcement_id = $1 ORDER BY student_id`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, id); err != nil {
		return nil, fmt.Errorf("list announcement targets: %w", err)
	}
	return ids, nil
}
