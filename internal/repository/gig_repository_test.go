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

func newGigMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func gigRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "title", "alt_title", "event_date", "start_time", "end_time", "fee", "notes",
		"lineup_html", "lineup_text", "is_private", "venue_id", "agent_id", "sound_tech_id",
		"contract_status", "closeout_status", "closeout_notes", "closeout_at", "created_at", "updated_at",
	})
}

func TestGigRepositoryList(t *testing.T) {
	db, mock, cleanup := newGigMock(t)
	defer cleanup()
	repo := NewGigRepository(db)

	rows := gigRows().AddRow("g-1", "Summer Festival", nil, "2026-06-20", "19:30", "23:00", 1200.0, nil,
		nil, nil, false, "v-1", nil, nil, nil, models.CloseoutOpen, nil, nil, time.Now(), time.Now())
	mock.ExpectQuery("SELECT g.id, .+ FROM gigs g WHERE 1=1 AND g.closeout_status = \\$1 ORDER BY g.event_date DESC").
		WithArgs(models.CloseoutOpen).
		WillReturnRows(rows)
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM gigs g WHERE 1=1 AND g.closeout_status = \\$1").
		WithArgs(models.CloseoutOpen).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	gigs, total, err := repo.List(context.Background(), models.GigFilter{CloseoutStatus: models.CloseoutOpen})
	require.NoError(t, err)
	assert.Len(t, gigs, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGigRepositoryFindDetail(t *testing.T) {
	db, mock, cleanup := newGigMock(t)
	defer cleanup()
	repo := NewGigRepository(db)

	venueID := "v-1"
	mock.ExpectQuery("SELECT g.id, .+ FROM gigs g WHERE g.id = \\$1").
		WithArgs("g-1").
		WillReturnRows(gigRows().AddRow("g-1", "Summer Festival", nil, "2026-06-20", "19:30", "23:00", nil, nil,
			nil, nil, false, venueID, nil, nil, nil, models.CloseoutOpen, nil, nil, time.Now(), time.Now()))
	mock.ExpectQuery("SELECT v.id, v.name, v.contact_email, v.address_line1, v.city, v.state").
		WithArgs(venueID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "contact_email", "address_line1", "city", "state"}).
			AddRow("v-1", "The Reef", "events@reef.example", "100 Dock St", "Philadelphia", "PA"))
	mock.ExpectQuery("SELECT l.musician_id, m.display_name AS name, l.role, m.email").
		WithArgs("g-1").
		WillReturnRows(sqlmock.NewRows([]string{"musician_id", "name", "role", "email"}).
			AddRow("m-1", "Alice", "keys", "alice@example.com").
			AddRow("m-2", "Bob", "drums", nil))

	detail, err := repo.FindDetail(context.Background(), "g-1")
	require.NoError(t, err)
	require.NotNil(t, detail.Venue)
	assert.Equal(t, "The Reef", detail.Venue.Name)
	require.Len(t, detail.Lineup, 2)
	assert.Equal(t, "Alice", detail.Lineup[0].Name)
	assert.Nil(t, detail.Lineup[1].Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGigRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newGigMock(t)
	defer cleanup()
	repo := NewGigRepository(db)

	mock.ExpectExec("INSERT INTO gigs").
		WillReturnResult(sqlmock.NewResult(1, 1))

	gig := &models.Gig{EventDate: "2026-06-20"}
	err := repo.Create(context.Background(), gig)
	require.NoError(t, err)
	assert.NotEmpty(t, gig.ID)
	assert.Equal(t, models.CloseoutOpen, gig.CloseoutStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGigRepositoryUpdateCloseoutStampsClosedAt(t *testing.T) {
	db, mock, cleanup := newGigMock(t)
	defer cleanup()
	repo := NewGigRepository(db)

	mock.ExpectExec("UPDATE gigs SET closeout_status").
		WithArgs("g-1", models.CloseoutClosed, nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateCloseout(context.Background(), "g-1", models.CloseoutClosed, nil)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGigRepositoryReplaceLineup(t *testing.T) {
	db, mock, cleanup := newGigMock(t)
	defer cleanup()
	repo := NewGigRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM gig_lineup WHERE gig_id = \\$1").
		WithArgs("g-1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("INSERT INTO gig_lineup").
		WithArgs("g-1", "m-1", 0, "keys").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO gig_lineup").
		WithArgs("g-1", "m-2", 1, "drums").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := repo.ReplaceLineup(context.Background(), "g-1", []models.LineupSlot{
		{MusicianID: "m-1", Role: "keys"},
		{MusicianID: "m-2", Role: "drums"},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
