package testhelper

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	pgxmock "github.com/pashagolub/pgxmock/v2"
)

// UniqueSuffix returns a short unique string for generating non-conflicting test data.
func UniqueSuffix() string {
	return uuid.New().String()[:8]
}

// SeedCourse inserts a course and returns its id.
func SeedCourse(t *testing.T, pool *pgxpool.Pool) int64 {
	t.Helper()
	var id int64
	err := pool.QueryRow(context.Background(),
		`INSERT INTO courses (title, description, difficulty_level, points_available)
		 VALUES ($1, 'seeded', 'beginner', 100) RETURNING id`,
		"Course "+UniqueSuffix(),
	).Scan(&id)
	if err != nil {
		t.Fatalf("testhelper: SeedCourse: %v", err)
	}
	return id
}

// SeedLesson inserts a lesson into courseID and returns its id.
func SeedLesson(t *testing.T, pool *pgxpool.Pool, courseID int64) int64 {
	t.Helper()
	var id int64
	err := pool.QueryRow(context.Background(),
		`INSERT INTO lessons (course_id, title, content, sort_order, content_type)
		 VALUES ($1, $2, 'body', 1, 'text') RETURNING id`,
		courseID, "Lesson "+UniqueSuffix(),
	).Scan(&id)
	if err != nil {
		t.Fatalf("testhelper: SeedLesson: %v", err)
	}
	return id
}

// SeedBadge inserts a badge and returns its id.
func SeedBadge(t *testing.T, pool *pgxpool.Pool) int64 {
	t.Helper()
	var id int64
	err := pool.QueryRow(context.Background(),
		`INSERT INTO badges (name, points_required) VALUES ($1, 10) RETURNING id`,
		"Badge "+UniqueSuffix(),
	).Scan(&id)
	if err != nil {
		t.Fatalf("testhelper: SeedBadge: %v", err)
	}
	return id
}

// NewMockPool returns a pgxmock pool that is closed when the test ends.
func NewMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("testhelper: pgxmock.NewPool: %v", err)
	}
	t.Cleanup(mock.Close)
	return mock
}

// ExpectationsWereMet fails the test if mock has unconsumed expectations.
func ExpectationsWereMet(t *testing.T, mock pgxmock.PgxPoolIface) {
	t.Helper()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("pgxmock: unmet expectations: %v", err)
	}
}
