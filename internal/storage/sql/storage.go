package sqlstorage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/evanpr/kalender/internal/storage"
	"github.com/evanpr/kalender/internal/util"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	log "github.com/sirupsen/logrus"
)

var ErrConnectionFailed = errors.New("failed to connect")

const dbErrUniqueViolation = "23505"

const selectColumns = `id, title, start_timestamp AS "startTime", end_timestamp AS "endTime", ` +
	`category, description, reminder_time AS "reminderTime", shared_with AS "sharedWith", holiday`

const schema = `CREATE TABLE IF NOT EXISTS events (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	start_timestamp TIMESTAMP NOT NULL,
	end_timestamp TIMESTAMP,
	category TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	reminder_time TEXT NOT NULL DEFAULT '',
	shared_with TEXT NOT NULL DEFAULT '[]',
	holiday BOOLEAN NOT NULL DEFAULT FALSE
)`

type Config struct {
	Driver   string
	Host     string
	Port     int
	Database string
	Username string
	Password string
	Path     string
}

type Storage struct {
	config       Config
	db           *sqlx.DB
	firstWeekDay time.Weekday
}

func New(config Config) *Storage {
	return &Storage{config: config, firstWeekDay: time.Monday}
}

func (s *Storage) Connect(ctx context.Context) error {
	driver := s.config.Driver
	if driver == "" {
		driver = "postgres"
	}

	var dsn string
	switch driver {
	case "sqlite3":
		dsn = s.config.Path + "?_foreign_keys=on"
	default:
		dsn = fmt.Sprintf(
			"sslmode=disable host=%s port=%d dbname=%s user=%s password=%s",
			s.config.Host, s.config.Port, s.config.Database, s.config.Username, s.config.Password)
	}

	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		log.Errorf("failed to connect: %v", err)
		return ErrConnectionFailed
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return fmt.Errorf("failed to prepare schema: %w", err)
	}
	s.db = db
	return nil
}

func (s *Storage) Close(_ context.Context) error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close connection: %w", err)
	}
	return nil
}

func (s *Storage) AddEvent(ctx context.Context, e *storage.Event) error {
	if err := storage.ValidateTimes(*e); err != nil {
		return err
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}

	_, err := s.db.ExecContext(
		ctx,
		s.db.Rebind("INSERT INTO events(id, title, start_timestamp, end_timestamp, category, description, "+
			"reminder_time, shared_with, holiday) VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)"),
		e.ID, e.Title, e.StartTime.UTC(), e.EndTime.UTC(), e.Category, e.Description,
		e.ReminderTime, e.SharedWith, e.Holiday)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == dbErrUniqueViolation {
		return fmt.Errorf("duplicate ID %q: %w", e.ID, storage.ErrDuplicateEventID)
	}
	return err
}

func (s *Storage) UpdateEvent(ctx context.Context, id string, e storage.Event) error {
	if err := storage.ValidateTimes(e); err != nil {
		return err
	}

	res, err := s.db.ExecContext(
		ctx,
		s.db.Rebind("UPDATE events SET title=?, start_timestamp=?, end_timestamp=?, category=?, "+
			"description=?, reminder_time=?, shared_with=?, holiday=? WHERE id=?"),
		e.Title, e.StartTime.UTC(), e.EndTime.UTC(), e.Category, e.Description,
		e.ReminderTime, e.SharedWith, e.Holiday, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("failed to update event with id %q: %w", id, storage.ErrNotFoundEvent)
	}
	return nil
}

func (s *Storage) RemoveEvent(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind("DELETE FROM events WHERE id=?"), id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("failed to remove event with id %q: %w", id, storage.ErrNotFoundEvent)
	}
	return nil
}

func (s *Storage) GetEvent(ctx context.Context, id string) (storage.Event, error) {
	var e storage.Event
	err := s.db.GetContext(ctx, &e, s.db.Rebind("SELECT "+selectColumns+" FROM events WHERE id=?"), id)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.Event{}, fmt.Errorf("failed to get event with id %q: %w", id, storage.ErrNotFoundEvent)
	}
	return e, err
}

func (s *Storage) ListEvents(ctx context.Context) ([]storage.Event, error) {
	var events []storage.Event
	err := s.db.SelectContext(ctx, &events, "SELECT "+selectColumns+" FROM events ORDER BY start_timestamp")
	return events, err
}

func (s *Storage) SearchEvents(ctx context.Context, query string) ([]storage.Event, error) {
	if query == "" {
		return s.ListEvents(ctx)
	}
	var events []storage.Event
	err := s.db.SelectContext(
		ctx,
		&events,
		s.db.Rebind("SELECT "+selectColumns+" FROM events "+
			"WHERE LOWER(title) LIKE '%' || LOWER(?) || '%' ORDER BY start_timestamp"),
		query)
	return events, err
}

func (s *Storage) GetEventsForDay(ctx context.Context, date time.Time) ([]storage.Event, error) {
	startTime := util.TruncateToDay(date)
	endTime := startTime.AddDate(0, 0, 1)
	return s.selectByRange(ctx, startTime, endTime)
}

func (s *Storage) GetEventsForWeek(ctx context.Context, startDate time.Time) ([]storage.Event, error) {
	startTime := util.TruncateToDay(startDate)
	if startTime.Weekday() != s.firstWeekDay {
		return nil, storage.ErrIncorrectStartDate
	}
	endTime := startTime.AddDate(0, 0, 7)
	return s.selectByRange(ctx, startTime, endTime)
}

func (s *Storage) GetEventsForMonth(ctx context.Context, startDate time.Time) ([]storage.Event, error) {
	startTime := util.TruncateToDay(startDate)
	if startTime.Day() != 1 {
		return nil, storage.ErrIncorrectStartDate
	}
	endTime := startTime.AddDate(0, 1, 0)
	return s.selectByRange(ctx, startTime, endTime)
}

// Select in range [startTime:endTime).
func (s *Storage) selectByRange(ctx context.Context, startTime time.Time, endTime time.Time) ([]storage.Event, error) {
	var events []storage.Event
	err := s.db.SelectContext(
		ctx,
		&events,
		s.db.Rebind("SELECT "+selectColumns+" FROM events "+
			"WHERE start_timestamp>=? AND start_timestamp<? ORDER BY start_timestamp"),
		startTime.UTC(),
		endTime.UTC(),
	)
	return events, err
}
