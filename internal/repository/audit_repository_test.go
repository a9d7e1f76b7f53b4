package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gigdesk/gigdesk-api/internal/models"
)

func newAuditMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestAuditRepositoryInsertFillsDefaults(t *testing.T) {
	db, mock, cleanup := newAuditMock(t)
	defer cleanup()
	repo := NewAuditRepository(db)

	mock.ExpectExec("INSERT INTO email_audit").
		WillReturnResult(sqlmock.NewResult(1, 1))

	entry := &models.EmailAudit{Token: "tok-1", GigID: "g-1", Kind: "venue-confirm", Status: models.AuditSent}
	err := repo.Insert(context.Background(), entry)
	require.NoError(t, err)
	assert.NotEmpty(t, entry.ID)
	assert.False(t, entry.TS.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditRepositoryListByGig(t *testing.T) {
	db, mock, cleanup := newAuditMock(t)
	defer cleanup()
	repo := NewAuditRepository(db)

	mock.ExpectQuery("SELECT id, token, gig_id, recipient_email, kind, status, detail, ts").
		WithArgs("g-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "token", "gig_id", "recipient_email", "kind", "status", "detail", "ts"}).
			AddRow("a-1", "tok-1", "g-1", "events@reef.example", "venue-confirm", models.AuditSent, nil, time.Now()).
			AddRow("a-2", "tok-1", "g-1", nil, "player-invite", models.AuditSkippedNoEmail, "no email on file", time.Now()))

	entries, err := repo.ListByGig(context.Background(), "g-1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, models.AuditSkippedNoEmail, entries[1].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}
