package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/your-org/reunite/internal/config"
	"github.com/your-org/reunite/internal/models"
	"github.com/your-org/reunite/internal/observability"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(cfg config.DatabaseConfig) (*PostgresStore, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.MaxConns)

	pool, err := pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// --- Cases ---

const caseColumns = `id, full_name, age, person_contact_number, last_seen_location, last_seen_time,
	identification_details, is_minor, guardian_type, guardian_details,
	reporter_name, reporter_relation, reporter_contact_number,
	status, found_snapshot_key, found_on_camera, resolved_at_booth_location, booth_officer_contact, created_at`

func scanCase(row pgx.Row) (*models.Case, error) {
	c := &models.Case{}
	err := row.Scan(&c.ID, &c.FullName, &c.Age, &c.PersonContactNumber, &c.LastSeenLocation, &c.LastSeenTime,
		&c.IdentificationDetails, &c.IsMinor, &c.GuardianType, &c.GuardianDetails,
		&c.ReporterName, &c.ReporterRelation, &c.ReporterContactNumber,
		&c.Status, &c.FoundSnapshotKey, &c.FoundOnCamera, &c.ResolvedAtBoothLocation, &c.BoothOfficerContact, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// CreateCase persists a new case with its intake images and embeddings in a
// single transaction. The case starts as Lost; images and embeddings are
// written in intake order and never change afterwards.
func (s *PostgresStore) CreateCase(ctx context.Context, c *models.Case) error {
	if len(c.Embeddings) != len(c.Images) {
		return fmt.Errorf("embeddings count %d does not match images count %d", len(c.Embeddings), len(c.Images))
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin create case: %w", err)
	}
	defer tx.Rollback(ctx)

	c.ID = uuid.New()
	c.Status = models.StatusLost
	err = tx.QueryRow(ctx,
		`INSERT INTO cases (id, full_name, age, person_contact_number, last_seen_location, last_seen_time,
			identification_details, is_minor, guardian_type, guardian_details,
			reporter_name, reporter_relation, reporter_contact_number, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14) RETURNING created_at`,
		c.ID, c.FullName, c.Age, c.PersonContactNumber, c.LastSeenLocation, c.LastSeenTime,
		c.IdentificationDetails, c.IsMinor, c.GuardianType, c.GuardianDetails,
		c.ReporterName, c.ReporterRelation, c.ReporterContactNumber, c.Status,
	).Scan(&c.CreatedAt)
	if err != nil {
		return fmt.Errorf("create case: %w", err)
	}

	for i := range c.Images {
		c.Images[i].ID = uuid.New()
		c.Images[i].CaseID = c.ID
		c.Images[i].Position = i
		_, err = tx.Exec(ctx,
			`INSERT INTO case_images (id, case_id, position, object_key) VALUES ($1, $2, $3, $4)`,
			c.Images[i].ID, c.ID, i, c.Images[i].ObjectKey)
		if err != nil {
			return fmt.Errorf("create case image %d: %w", i, err)
		}
	}

	for i, emb := range c.Embeddings {
		_, err = tx.Exec(ctx,
			`INSERT INTO case_embeddings (id, case_id, position, embedding) VALUES ($1, $2, $3, $4)`,
			uuid.New(), c.ID, i, pgvector.NewVector(emb))
		if err != nil {
			return fmt.Errorf("create case embedding %d: %w", i, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit create case: %w", err)
	}
	return nil
}

// GetCase returns a case with its images, without embeddings.
// Returns (nil, nil) if the case does not exist.
func (s *PostgresStore) GetCase(ctx context.Context, id uuid.UUID) (*models.Case, error) {
	c, err := scanCase(s.pool.QueryRow(ctx,
		`SELECT `+caseColumns+` FROM cases WHERE id = $1`, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get case: %w", err)
	}

	images, err := s.listCaseImages(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Images = images
	return c, nil
}

// GetCaseWithEmbeddings loads the case plus its stored face embeddings, in
// intake order. Only the photo-confirmation path needs this.
func (s *PostgresStore) GetCaseWithEmbeddings(ctx context.Context, id uuid.UUID) (*models.Case, error) {
	c, err := s.GetCase(ctx, id)
	if err != nil || c == nil {
		return c, err
	}

	rows, err := s.pool.Query(ctx,
		`SELECT embedding FROM case_embeddings WHERE case_id = $1 ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("get case embeddings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var vec pgvector.Vector
		if err := rows.Scan(&vec); err != nil {
			return nil, fmt.Errorf("scan case embedding: %w", err)
		}
		c.Embeddings = append(c.Embeddings, vec.Slice())
	}
	return c, nil
}

func (s *PostgresStore) listCaseImages(ctx context.Context, caseID uuid.UUID) ([]models.CaseImage, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, case_id, position, object_key FROM case_images WHERE case_id = $1 ORDER BY position`, caseID)
	if err != nil {
		return nil, fmt.Errorf("list case images: %w", err)
	}
	defer rows.Close()

	var images []models.CaseImage
	for rows.Next() {
		var img models.CaseImage
		if err := rows.Scan(&img.ID, &img.CaseID, &img.Position, &img.ObjectKey); err != nil {
			return nil, fmt.Errorf("scan case image: %w", err)
		}
		images = append(images, img)
	}
	return images, nil
}

// QueryCases returns the thumbnail-only list projection, optionally filtered
// by status and by a case-insensitive substring over name and last-seen
// location, sorted by creation time.
func (s *PostgresStore) QueryCases(ctx context.Context, status *models.CaseStatus, search string, newestFirst bool) ([]models.CaseSummary, error) {
	where := "WHERE TRUE"
	args := []interface{}{}
	argIdx := 1

	if status != nil {
		where += fmt.Sprintf(" AND c.status = $%d", argIdx)
		args = append(args, *status)
		argIdx++
	}
	if search != "" {
		where += fmt.Sprintf(" AND (c.full_name ILIKE $%d OR c.last_seen_location ILIKE $%d)", argIdx, argIdx)
		args = append(args, "%"+search+"%")
		argIdx++
	}

	order := "DESC"
	if !newestFirst {
		order = "ASC"
	}

	query := fmt.Sprintf(
		`SELECT c.id, c.full_name, c.age, c.status, c.last_seen_location,
			COALESCE((SELECT object_key FROM case_images WHERE case_id = c.id ORDER BY position LIMIT 1), ''),
			c.created_at
		 FROM cases c %s ORDER BY c.created_at %s`, where, order)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query cases: %w", err)
	}
	defer rows.Close()

	var summaries []models.CaseSummary
	for rows.Next() {
		var cs models.CaseSummary
		if err := rows.Scan(&cs.ID, &cs.FullName, &cs.Age, &cs.Status, &cs.LastSeenLoc, &cs.ThumbnailKey, &cs.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan case summary: %w", err)
		}
		summaries = append(summaries, cs)
	}
	return summaries, nil
}

// MarkFound performs the Lost -> Found transition as a single conditional
// update. Re-marking an already-Found case just re-sets the found fields;
// a Resolved case is terminal and never matches. Returns (nil, nil) when
// no row qualified.
func (s *PostgresStore) MarkFound(ctx context.Context, id uuid.UUID, snapshotKey, camera string) (*models.Case, error) {
	c, err := scanCase(s.pool.QueryRow(ctx,
		`UPDATE cases SET status = $2, found_snapshot_key = $3, found_on_camera = $4
		 WHERE id = $1 AND status IN ($5, $6)
		 RETURNING `+caseColumns,
		id, models.StatusFound, snapshotKey, camera, models.StatusLost, models.StatusFound))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("mark case found: %w", err)
	}
	return c, nil
}

// MarkResolved performs the Found -> Resolved transition, recording the
// drop-off details. Conditional on the case currently being Found, so a
// concurrent or repeated finalize fails explicitly instead of overwriting.
func (s *PostgresStore) MarkResolved(ctx context.Context, id uuid.UUID, boothLocation, officerContact string) (*models.Case, error) {
	c, err := scanCase(s.pool.QueryRow(ctx,
		`UPDATE cases SET status = $2, resolved_at_booth_location = $3, booth_officer_contact = $4
		 WHERE id = $1 AND status = $5
		 RETURNING `+caseColumns,
		id, models.StatusResolved, boothLocation, officerContact, models.StatusFound))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("mark case resolved: %w", err)
	}
	return c, nil
}

// --- Dashboard aggregations ---

func (s *PostgresStore) CountCasesByStatus(ctx context.Context) (models.StatusCounts, error) {
	var counts models.StatusCounts
	rows, err := s.pool.Query(ctx, `SELECT status, COUNT(*) FROM cases GROUP BY status`)
	if err != nil {
		return counts, fmt.Errorf("count cases by status: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status models.CaseStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return counts, fmt.Errorf("scan status count: %w", err)
		}
		switch status {
		case models.StatusLost:
			counts.Lost = n
		case models.StatusFound:
			counts.Found = n
		case models.StatusResolved:
			counts.Resolved = n
		}
		counts.Total += n
	}
	return counts, nil
}

// DailyIntakeCounts buckets case creation by calendar day, most recent first,
// limited to the given number of days.
func (s *PostgresStore) DailyIntakeCounts(ctx context.Context, days int) ([]models.DailyCount, error) {
	if days <= 0 {
		days = 30
	}
	rows, err := s.pool.Query(ctx,
		`SELECT to_char(created_at::date, 'YYYY-MM-DD') AS day, COUNT(*)
		 FROM cases GROUP BY day ORDER BY day DESC LIMIT $1`, days)
	if err != nil {
		return nil, fmt.Errorf("daily intake counts: %w", err)
	}
	defer rows.Close()

	var series []models.DailyCount
	for rows.Next() {
		var dc models.DailyCount
		if err := rows.Scan(&dc.Day, &dc.Count); err != nil {
			return nil, fmt.Errorf("scan daily count: %w", err)
		}
		series = append(series, dc)
	}
	return series, nil
}

// --- Notifications ---

// CreateNotification enqueues a match candidate for human review.
func (s *PostgresStore) CreateNotification(ctx context.Context, n *models.Notification) error {
	n.ID = uuid.New()
	n.CreatedAt = time.Now()
	if n.CameraName == "" {
		n.CameraName = "unknown"
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO notifications (id, case_id, person_name, snapshot_key, camera_name, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		n.ID, n.CaseID, n.PersonName, n.SnapshotKey, n.CameraName, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	observability.PendingNotifications.Inc()
	return nil
}

// GetNotification returns (nil, nil) if the notification was already reviewed.
func (s *PostgresStore) GetNotification(ctx context.Context, id uuid.UUID) (*models.Notification, error) {
	n := &models.Notification{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, case_id, person_name, snapshot_key, camera_name, created_at
		 FROM notifications WHERE id = $1`, id,
	).Scan(&n.ID, &n.CaseID, &n.PersonName, &n.SnapshotKey, &n.CameraName, &n.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get notification: %w", err)
	}
	return n, nil
}

// ListNotifications returns pending notifications newest-first, each joined
// with the case's first registered image for side-by-side comparison.
func (s *PostgresStore) ListNotifications(ctx context.Context) ([]models.Notification, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT n.id, n.case_id, n.person_name, n.snapshot_key, n.camera_name, n.created_at,
			COALESCE((SELECT object_key FROM case_images WHERE case_id = n.case_id ORDER BY position LIMIT 1), '')
		 FROM notifications n ORDER BY n.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.CaseID, &n.PersonName, &n.SnapshotKey, &n.CameraName, &n.CreatedAt, &n.RegisteredImageKey); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	return notifications, nil
}

// DeleteNotification removes a reviewed notification. Deleting one that is
// already gone is a no-op, which absorbs double submissions from a slow UI.
func (s *PostgresStore) DeleteNotification(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM notifications WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	if tag.RowsAffected() > 0 {
		observability.PendingNotifications.Dec()
	}
	return nil
}

func (s *PostgresStore) CountNotifications(ctx context.Context) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM notifications`).Scan(&count)
	return count, err
}
