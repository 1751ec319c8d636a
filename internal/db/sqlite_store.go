package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/psyvr/exposure/internal/api"
)

// SQLiteStore implements api.Store on a sqlite database file.
type SQLiteStore struct {
	db *sql.DB
}

func OpenSQLite(path string) (*SQLiteStore, error) {
	dsn := fmt.Sprintf("file:%s?_fk=1&_loc=UTC", path)
	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return &SQLiteStore{db: sqlDB}, nil
}

func (s *SQLiteStore) DB() *sql.DB { return s.db }

func (s *SQLiteStore) Close() error { return s.db.Close() }

const userColumns = "user_id, username, password_hash, role, name, COALESCE(therapist_id, ''), is_active, created_date"

func scanUser(row interface{ Scan(...any) error }) (*api.User, error) {
	var u api.User
	var hash string
	err := row.Scan(&u.ID, &u.Username, &hash, &u.Role, &u.Name, &u.TherapistID, &u.IsActive, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	u.PassHash = []byte(hash)
	return &u, nil
}

func (s *SQLiteStore) AddUser(u *api.User) error {
	created := u.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	var tid any
	if u.TherapistID != "" {
		tid = u.TherapistID
	}
	_, err := s.db.Exec(
		`INSERT INTO users (user_id, username, password_hash, role, name, therapist_id, is_active, created_date)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Username, string(u.PassHash), u.Role, u.Name, tid, u.IsActive, created,
	)
	return err
}

func (s *SQLiteStore) GetUser(id string) (*api.User, error) {
	row := s.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE user_id = ? AND is_active = 1`, id)
	return scanUser(row)
}

func (s *SQLiteStore) FindUserByUsername(username string) (*api.User, error) {
	row := s.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE username = ? COLLATE NOCASE`, username)
	return scanUser(row)
}

func (s *SQLiteStore) ListUsers() ([]*api.User, error) {
	rows, err := s.db.Query(`SELECT ` + userColumns + ` FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectUsers(rows)
}

func (s *SQLiteStore) ListPatientsByTherapist(tid string) ([]*api.User, error) {
	rows, err := s.db.Query(
		`SELECT `+userColumns+` FROM users WHERE role = 'patient' AND therapist_id = ? AND is_active = 1 ORDER BY id`, tid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectUsers(rows)
}

func collectUsers(rows *sql.Rows) ([]*api.User, error) {
	out := []*api.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) SetUserActive(id string, active bool) (bool, error) {
	res, err := s.db.Exec(`UPDATE users SET is_active = ? WHERE user_id = ?`, active, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (s *SQLiteStore) SetUserPassword(id string, hash []byte) (bool, error) {
	res, err := s.db.Exec(`UPDATE users SET password_hash = ? WHERE user_id = ?`, string(hash), id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (s *SQLiteStore) CountUsersByRole(role string) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM users WHERE role = ?`, role).Scan(&n)
	return n, err
}

func (s *SQLiteStore) GetLicense(tid string) (*api.TherapistLicense, error) {
	row := s.db.QueryRow(
		`SELECT therapist_id, license_type, is_active, test_passed, test_score, test_date, license_expires, created_date
		 FROM therapist_licenses WHERE therapist_id = ?`, tid)
	var l api.TherapistLicense
	var testDate, expires sql.NullTime
	err := row.Scan(&l.TherapistID, &l.LicenseType, &l.IsActive, &l.TestPassed, &l.TestScore, &testDate, &expires, &l.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if testDate.Valid {
		t := testDate.Time
		l.TestDate = &t
	}
	if expires.Valid {
		t := expires.Time
		l.LicenseExpires = &t
	}
	return &l, nil
}

func (s *SQLiteStore) PutLicense(l *api.TherapistLicense) error {
	created := l.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	_, err := s.db.Exec(
		`INSERT INTO therapist_licenses (therapist_id, license_type, is_active, test_passed, test_score, test_date, license_expires, created_date)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(therapist_id) DO UPDATE SET
		   license_type = excluded.license_type,
		   is_active = excluded.is_active,
		   test_passed = excluded.test_passed,
		   test_score = excluded.test_score,
		   test_date = excluded.test_date,
		   license_expires = excluded.license_expires`,
		l.TherapistID, l.LicenseType, l.IsActive, l.TestPassed, l.TestScore, nullTime(l.TestDate), nullTime(l.LicenseExpires), created,
	)
	return err
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

func (s *SQLiteStore) AddQuestion(q *api.TestQuestion) error {
	options, err := json.Marshal(q.Options)
	if err != nil {
		return err
	}
	res, err := s.db.Exec(
		`INSERT INTO test_questions (question_text, options, correct_answer, explanation, question_type)
		 VALUES (?, ?, ?, ?, ?)`,
		q.Text, string(options), q.CorrectIdx, q.Explanation, q.Category,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err == nil {
		q.ID = strconv.FormatInt(id, 10)
	}
	return nil
}

func (s *SQLiteStore) ListQuestions(category string) ([]*api.TestQuestion, error) {
	query := `SELECT id, question_text, options, correct_answer, COALESCE(explanation, ''), question_type FROM test_questions`
	args := []any{}
	if category != "" {
		query += ` WHERE question_type = ?`
		args = append(args, category)
	}
	query += ` ORDER BY id`
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []*api.TestQuestion{}
	for rows.Next() {
		var q api.TestQuestion
		var id int64
		var options string
		if err := rows.Scan(&id, &q.Text, &options, &q.CorrectIdx, &q.Explanation, &q.Category); err != nil {
			return nil, err
		}
		q.ID = strconv.FormatInt(id, 10)
		if err := json.Unmarshal([]byte(options), &q.Options); err != nil {
			return nil, fmt.Errorf("question %s options: %w", q.ID, err)
		}
		out = append(out, &q)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) AddSession(rec *api.TherapySession) error {
	var params any
	if rec.Parameters != nil {
		b, err := json.Marshal(rec.Parameters)
		if err != nil {
			return err
		}
		params = string(b)
	}
	date := rec.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}
	_, err := s.db.Exec(
		`INSERT INTO therapy_sessions (session_id, patient_id, date, duration_minutes, module_used, pre_sud, post_sud, parameters)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.PatientID, date, rec.DurationMinutes, rec.ModuleUsed, rec.PreSUD, rec.PostSUD, params,
	)
	return err
}

func (s *SQLiteStore) ListSessionsByPatient(pid string) ([]*api.TherapySession, error) {
	rows, err := s.db.Query(
		`SELECT session_id, patient_id, date, duration_minutes, module_used, pre_sud, post_sud, parameters
		 FROM therapy_sessions WHERE patient_id = ? ORDER BY date`, pid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSessions(rows)
}

func (s *SQLiteStore) ListAllSessions() ([]*api.TherapySession, error) {
	rows, err := s.db.Query(
		`SELECT session_id, patient_id, date, duration_minutes, module_used, pre_sud, post_sud, parameters
		 FROM therapy_sessions ORDER BY date`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSessions(rows)
}

func collectSessions(rows *sql.Rows) ([]*api.TherapySession, error) {
	out := []*api.TherapySession{}
	for rows.Next() {
		var rec api.TherapySession
		var params sql.NullString
		if err := rows.Scan(&rec.ID, &rec.PatientID, &rec.Date, &rec.DurationMinutes, &rec.ModuleUsed, &rec.PreSUD, &rec.PostSUD, &params); err != nil {
			return nil, err
		}
		if params.Valid && params.String != "" {
			if err := json.Unmarshal([]byte(params.String), &rec.Parameters); err != nil {
				return nil, fmt.Errorf("session %s parameters: %w", rec.ID, err)
			}
		}
		out = append(out, &rec)
	}
	return out, rows.Err()
}

var _ api.Store = (*SQLiteStore)(nil)
