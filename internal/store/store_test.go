package store

import (
	"context"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"camp-registration-backend/config"
	"camp-registration-backend/internal/db"
	"camp-registration-backend/internal/model"
)

// A helper function to create a mock database connection.
func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: sqlDB,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func newSQLiteStore(t *testing.T) Store {
	gdb, err := db.Init(&config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:", SlowQueryMillis: 500})
	require.NoError(t, err)
	return NewGormStore(gdb)
}

func TestGormStore_AtomicallyLocksQuota(t *testing.T) {
	gormDB, mock := newTestDB(t)
	s := NewGormStore(gormDB)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "origin_quota" WHERE origin = \$1 FOR UPDATE`).
		WithArgs("Borja").
		WillReturnRows(sqlmock.NewRows([]string{"origin", "max_slots", "enabled"}).AddRow("Borja", 20, true))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "reservations" WHERE origin = $1 AND status = $2`)).
		WithArgs("Borja", "reserved").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))
	mock.ExpectCommit()

	err := s.Atomically(context.Background(), func(tx Store) error {
		q, err := tx.FindQuota(context.Background(), "Borja")
		require.NoError(t, err)
		assert.Equal(t, 20, q.MaxSlots)
		assert.True(t, q.Enabled)

		n, err := tx.CountReserved(context.Background(), "Borja")
		require.NoError(t, err)
		assert.Equal(t, int64(7), n)
		return nil
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_AtomicallyRollsBack(t *testing.T) {
	gormDB, mock := newTestDB(t)
	s := NewGormStore(gormDB)
	boom := errors.New("boom")

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "origin_quota" WHERE origin = \$1 FOR UPDATE`).
		WithArgs("Canal").
		WillReturnRows(sqlmock.NewRows([]string{"origin", "max_slots", "enabled"}))
	mock.ExpectRollback()

	err := s.Atomically(context.Background(), func(tx Store) error {
		_, err := tx.FindQuota(context.Background(), "Canal")
		assert.ErrorIs(t, err, ErrQuotaNotFound)
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_FindQuotaOutsideTransactionDoesNotLock(t *testing.T) {
	gormDB, mock := newTestDB(t)
	s := NewGormStore(gormDB)

	mock.ExpectQuery(`SELECT \* FROM "origin_quota" WHERE origin = \$1$`).
		WithArgs("FSA").
		WillReturnRows(sqlmock.NewRows([]string{"origin", "max_slots", "enabled"}).AddRow("FSA", 5, false))

	q, err := s.FindQuota(context.Background(), "FSA")
	require.NoError(t, err)
	assert.False(t, q.Enabled)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_CountReservedError(t *testing.T) {
	gormDB, mock := newTestDB(t)
	s := NewGormStore(gormDB)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "reservations"`)).
		WillReturnError(errors.New("connection reset"))

	_, err := s.CountReserved(context.Background(), "Borja")
	assert.ErrorContains(t, err, "connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_SetQuotaEnabled(t *testing.T) {
	testCases := []struct {
		name     string
		affected int64
		wantErr  error
	}{
		{name: "updated", affected: 1},
		{name: "unknown origin", affected: 0, wantErr: ErrQuotaNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gormDB, mock := newTestDB(t)
			s := NewGormStore(gormDB)

			mock.ExpectBegin()
			mock.ExpectExec(regexp.QuoteMeta(`UPDATE "origin_quota" SET "enabled"=$1,"updated_at"=$2 WHERE origin = $3`)).
				WithArgs(false, Any{}, "Borja").
				WillReturnResult(sqlmock.NewResult(0, tc.affected))
			mock.ExpectCommit()

			err := s.SetQuotaEnabled(context.Background(), "Borja", false)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestGormStore_InsertGroupAndCounts(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertQuotas(ctx, []model.OriginQuota{
		{Origin: "Borja", MaxSlots: 3, Enabled: true},
		{Origin: "Canal", MaxSlots: 1, Enabled: false},
	}))

	group := uuid.New()
	rows := []model.Reservation{
		testReservation(group, "Borja", model.StatusReserved, "Lucía"),
		testReservation(group, "Borja", model.StatusReserved, "Mario"),
	}
	require.NoError(t, s.InsertGroup(ctx, rows))
	require.NoError(t, s.InsertGroup(ctx, []model.Reservation{
		testReservation(uuid.New(), "Borja", model.StatusWaitlist, "Eva"),
	}))

	n, err := s.CountReserved(ctx, "Borja")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	byOrigin, err := s.ReservedByOrigin(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"Borja": 2}, byOrigin)

	quotas, err := s.ListQuotas(ctx)
	require.NoError(t, err)
	require.Len(t, quotas, 2)
	assert.Equal(t, "Borja", quotas[0].Origin)
	assert.False(t, quotas[1].Enabled)
}

func TestGormStore_UpsertQuotasOverwrites(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertQuotas(ctx, []model.OriginQuota{{Origin: "FSA", MaxSlots: 10, Enabled: true}}))
	require.NoError(t, s.UpsertQuotas(ctx, []model.OriginQuota{{Origin: "FSA", MaxSlots: 12, Enabled: false}}))

	q, err := s.FindQuota(ctx, "FSA")
	require.NoError(t, err)
	assert.Equal(t, 12, q.MaxSlots)
	assert.False(t, q.Enabled)

	require.NoError(t, s.SetQuotaEnabled(ctx, "FSA", true))
	q, err = s.FindQuota(ctx, "FSA")
	require.NoError(t, err)
	assert.True(t, q.Enabled)
}

func TestGormStore_FailedGroupLeavesNoRows(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()

	err := s.Atomically(ctx, func(tx Store) error {
		if err := tx.InsertGroup(ctx, []model.Reservation{
			testReservation(uuid.New(), "Borja", model.StatusReserved, "Lucía"),
		}); err != nil {
			return err
		}
		return errors.New("second statement failed")
	})
	require.Error(t, err)

	n, err := s.CountReserved(ctx, "Borja")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestGormStore_AllergiesRoundTrip(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()

	row := testReservation(uuid.New(), "Borja", model.StatusReserved, "Lucía")
	row.Allergies = model.AllergyList{"GLUTEN", "OTHER: kiwi, fresa"}
	require.NoError(t, s.InsertGroup(ctx, []model.Reservation{row}))

	gs := s.(*gormStore)
	var got model.Reservation
	require.NoError(t, gs.db.First(&got).Error)
	assert.Equal(t, row.Allergies, got.Allergies)
	assert.Equal(t, row.GroupID, got.GroupID)
}

func testReservation(group uuid.UUID, origin string, status model.Status, name string) model.Reservation {
	return model.Reservation{
		GroupID:            group,
		Status:             status,
		Email:              "familia@example.org",
		ParentNameMother:   "Ana López",
		ParentNameFather:   "Luis Pérez",
		Phones:             "600000000",
		CamperName:         name,
		CamperSurname:      "Pérez López",
		Course:             "5º Primaria",
		Origin:             origin,
		Allergies:          model.AllergyList{"NONE"},
		MedicalNotes:       "Ninguna",
		ConsentHealth:      true,
		ConsentPrivacyRead: true,
		ConsentRules:       true,
	}
}

// Any is a helper for sqlmock to match any argument.
type Any struct{}

// Match satisfies the sqlmock.Argument interface
func (a Any) Match(v driver.Value) bool {
	return true
}
