package cvs

import (
	"context"
	"database/sql"
	"errors"
)

// dbtx is satisfied by both *sql.DB and *sql.Tx so the same repository code
// serves plain calls and transaction-bound calls.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// PGStore implements Store using Postgres.
type PGStore struct {
	DB *sql.DB
	q  dbtx
}

// NewPGStore constructs a Postgres-backed store.
func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{DB: db, q: db}
}

func (s *PGStore) CVs() CVRepo { return &cvPGRepo{q: s.q} }

func (s *PGStore) PersonalInfo() Repository[PersonalInformation] {
	return &personalInfoPGRepo{q: s.q}
}

func (s *PGStore) Experiences() Repository[ExperienceInformation] {
	return &experiencePGRepo{q: s.q}
}

// WithinTx runs fn against transaction-bound repositories. The transaction
// rolls back on any error or panic exit and commits otherwise.
func (s *PGStore) WithinTx(ctx context.Context, fn func(Store) error) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(&PGStore{DB: s.DB, q: tx}); err != nil {
		return err
	}
	return tx.Commit()
}

type cvPGRepo struct {
	q dbtx
}

func (r *cvPGRepo) GetAll(ctx context.Context) ([]CV, error) {
	const query = `
SELECT id, name, personal_information_id
FROM cvs
ORDER BY id`
	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CV
	for rows.Next() {
		var cv CV
		if err := rows.Scan(&cv.ID, &cv.Name, &cv.PersonalInformationID); err != nil {
			return nil, err
		}
		out = append(out, cv)
	}
	return out, rows.Err()
}

func (r *cvPGRepo) GetByID(ctx context.Context, id int64) (CV, error) {
	const query = `
SELECT id, name, personal_information_id
FROM cvs
WHERE id = $1
LIMIT 1`
	var cv CV
	err := r.q.QueryRowContext(ctx, query, id).Scan(&cv.ID, &cv.Name, &cv.PersonalInformationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return CV{}, ErrNotFound
		}
		return CV{}, err
	}
	return cv, nil
}

func (r *cvPGRepo) Add(ctx context.Context, cv CV) (CV, error) {
	const query = `
INSERT INTO cvs (name, personal_information_id)
VALUES ($1, $2)
RETURNING id`
	if err := r.q.QueryRowContext(ctx, query, cv.Name, cv.PersonalInformationID).Scan(&cv.ID); err != nil {
		return CV{}, err
	}
	return cv, nil
}

func (r *cvPGRepo) Update(ctx context.Context, cv CV) error {
	const query = `
UPDATE cvs
SET name = $1, personal_information_id = $2
WHERE id = $3`
	res, err := r.q.ExecContext(ctx, query, cv.Name, cv.PersonalInformationID, cv.ID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// Delete removes the CV's experience rows before the CV row. The ordering is
// mandatory: the experience foreign key does not cascade.
func (r *cvPGRepo) Delete(ctx context.Context, id int64) error {
	if _, err := r.q.ExecContext(ctx, `DELETE FROM experience_information WHERE cv_id = $1`, id); err != nil {
		return err
	}
	_, err := r.q.ExecContext(ctx, `DELETE FROM cvs WHERE id = $1`, id)
	return err
}

func (r *cvPGRepo) Exists(ctx context.Context, id int64) (bool, error) {
	_, err := r.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *cvPGRepo) GetExperiences(ctx context.Context, cvID int64) ([]ExperienceInformation, error) {
	const query = `
SELECT id, company_name, city, company_field, cv_id
FROM experience_information
WHERE cv_id = $1
ORDER BY id`
	rows, err := r.q.QueryContext(ctx, query, cvID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ExperienceInformation
	for rows.Next() {
		exp, err := scanExperience(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, exp)
	}
	return out, rows.Err()
}

func (r *cvPGRepo) AddExperience(ctx context.Context, cvID int64, exp ExperienceInformation) (ExperienceInformation, error) {
	exp.CVID = cvID
	return (&experiencePGRepo{q: r.q}).Add(ctx, exp)
}

// RemoveExperience deletes the experience matching both ids. A non-matching
// pair is a no-op, not an error.
func (r *cvPGRepo) RemoveExperience(ctx context.Context, cvID, experienceID int64) error {
	const query = `
DELETE FROM experience_information
WHERE cv_id = $1 AND id = $2`
	_, err := r.q.ExecContext(ctx, query, cvID, experienceID)
	return err
}

func (r *cvPGRepo) HasExperience(ctx context.Context, cvID, experienceID int64) (bool, error) {
	const query = `
SELECT EXISTS (
    SELECT 1 FROM experience_information WHERE cv_id = $1 AND id = $2
)`
	var exists bool
	if err := r.q.QueryRowContext(ctx, query, cvID, experienceID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

type personalInfoPGRepo struct {
	q dbtx
}

func (r *personalInfoPGRepo) GetAll(ctx context.Context) ([]PersonalInformation, error) {
	const query = `
SELECT id, full_name, city_name, email, mobile_number
FROM personal_information
ORDER BY id`
	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PersonalInformation
	for rows.Next() {
		info, err := scanPersonalInfo(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

func (r *personalInfoPGRepo) GetByID(ctx context.Context, id int64) (PersonalInformation, error) {
	const query = `
SELECT id, full_name, city_name, email, mobile_number
FROM personal_information
WHERE id = $1
LIMIT 1`
	info, err := scanPersonalInfo(r.q.QueryRowContext(ctx, query, id).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return PersonalInformation{}, ErrNotFound
		}
		return PersonalInformation{}, err
	}
	return info, nil
}

func (r *personalInfoPGRepo) Add(ctx context.Context, info PersonalInformation) (PersonalInformation, error) {
	const query = `
INSERT INTO personal_information (full_name, city_name, email, mobile_number)
VALUES ($1, $2, $3, $4)
RETURNING id`
	err := r.q.QueryRowContext(ctx, query,
		info.FullName,
		nullableString(info.CityName),
		nullableString(info.Email),
		info.MobileNumber,
	).Scan(&info.ID)
	if err != nil {
		return PersonalInformation{}, err
	}
	return info, nil
}

func (r *personalInfoPGRepo) Update(ctx context.Context, info PersonalInformation) error {
	const query = `
UPDATE personal_information
SET full_name = $1, city_name = $2, email = $3, mobile_number = $4
WHERE id = $5`
	res, err := r.q.ExecContext(ctx, query,
		info.FullName,
		nullableString(info.CityName),
		nullableString(info.Email),
		info.MobileNumber,
		info.ID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *personalInfoPGRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM personal_information WHERE id = $1`, id)
	return err
}

func (r *personalInfoPGRepo) Exists(ctx context.Context, id int64) (bool, error) {
	_, err := r.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

type experiencePGRepo struct {
	q dbtx
}

func (r *experiencePGRepo) GetAll(ctx context.Context) ([]ExperienceInformation, error) {
	const query = `
SELECT id, company_name, city, company_field, cv_id
FROM experience_information
ORDER BY id`
	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ExperienceInformation
	for rows.Next() {
		exp, err := scanExperience(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, exp)
	}
	return out, rows.Err()
}

func (r *experiencePGRepo) GetByID(ctx context.Context, id int64) (ExperienceInformation, error) {
	const query = `
SELECT id, company_name, city, company_field, cv_id
FROM experience_information
WHERE id = $1
LIMIT 1`
	exp, err := scanExperience(r.q.QueryRowContext(ctx, query, id).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ExperienceInformation{}, ErrNotFound
		}
		return ExperienceInformation{}, err
	}
	return exp, nil
}

func (r *experiencePGRepo) Add(ctx context.Context, exp ExperienceInformation) (ExperienceInformation, error) {
	const query = `
INSERT INTO experience_information (company_name, city, company_field, cv_id)
VALUES ($1, $2, $3, $4)
RETURNING id`
	err := r.q.QueryRowContext(ctx, query,
		exp.CompanyName,
		nullableString(exp.City),
		nullableString(exp.CompanyField),
		exp.CVID,
	).Scan(&exp.ID)
	if err != nil {
		return ExperienceInformation{}, err
	}
	return exp, nil
}

func (r *experiencePGRepo) Update(ctx context.Context, exp ExperienceInformation) error {
	const query = `
UPDATE experience_information
SET company_name = $1, city = $2, company_field = $3, cv_id = $4
WHERE id = $5`
	res, err := r.q.ExecContext(ctx, query,
		exp.CompanyName,
		nullableString(exp.City),
		nullableString(exp.CompanyField),
		exp.CVID,
		exp.ID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *experiencePGRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM experience_information WHERE id = $1`, id)
	return err
}

func (r *experiencePGRepo) Exists(ctx context.Context, id int64) (bool, error) {
	_, err := r.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func scanPersonalInfo(scan func(dest ...any) error) (PersonalInformation, error) {
	var info PersonalInformation
	var cityName sql.NullString
	var email sql.NullString
	if err := scan(&info.ID, &info.FullName, &cityName, &email, &info.MobileNumber); err != nil {
		return PersonalInformation{}, err
	}
	if cityName.Valid {
		info.CityName = cityName.String
	}
	if email.Valid {
		info.Email = email.String
	}
	return info, nil
}

func scanExperience(scan func(dest ...any) error) (ExperienceInformation, error) {
	var exp ExperienceInformation
	var city sql.NullString
	var companyField sql.NullString
	if err := scan(&exp.ID, &exp.CompanyName, &city, &companyField, &exp.CVID); err != nil {
		return ExperienceInformation{}, err
	}
	if city.Valid {
		exp.City = city.String
	}
	if companyField.Valid {
		exp.CompanyField = companyField.String
	}
	return exp, nil
}

// requireRow maps a zero-row update to ErrNotFound so callers can detect a
// write against a row that does not exist.
func requireRow(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
