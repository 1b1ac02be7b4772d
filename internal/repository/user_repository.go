package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"

	"shelftrack/internal/domain"
	"shelftrack/pkg/logger"
	"shelftrack/pkg/metrics"
)

type UserRepository struct {
	db     *sqlx.DB
	logger logger.Logger
}

func NewUserRepository(db *sqlx.DB, logger logger.Logger) domain.UserRepository {
	return &UserRepository{
		db:     db,
		logger: logger,
	}
}

func (r *UserRepository) FindByID(id int64) (*domain.User, error) {
	query := `SELECT id, name, email, password_hash, role, phone_number, address, created_at, updated_at
		FROM users WHERE id = ?`

	var user domain.User
	err := r.db.Get(&user, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Could not load user by id", map[string]interface{}{"id": id, "error": err.Error()})
		return nil, fmt.Errorf("could not load user: %w", err)
	}

	return &user, nil
}

func (r *UserRepository) FindByEmail(email string) (*domain.User, error) {
	query := `SELECT id, name, email, password_hash, role, phone_number, address, created_at, updated_at
		FROM users WHERE email = ?`

	var user domain.User
	err := r.db.Get(&user, query, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Could not load user by email", map[string]interface{}{"email": email, "error": err.Error()})
		return nil, fmt.Errorf("could not load user: %w", err)
	}

	return &user, nil
}

func (r *UserRepository) EmailTaken(email string, excludeID int64) (bool, error) {
	var count int
	err := r.db.Get(&count, `SELECT COUNT(*) FROM users WHERE email = ? AND id != ?`, email, excludeID)
	if err != nil {
		return false, fmt.Errorf("could not check email uniqueness: %w", err)
	}
	return count > 0, nil
}

func (r *UserRepository) List(filter domain.UserFilter) ([]*domain.User, int64, error) {
	page, perPage := normalizePage(filter.Page, filter.PerPage)

	base := dialect.From("users")
	if filter.ExcludeID != 0 {
		base = base.Where(goqu.C("id").Neq(filter.ExcludeID))
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		base = base.Where(goqu.Or(
			goqu.C("name").ILike(pattern),
			goqu.C("email").ILike(pattern),
		))
	}

	countSQL, countArgs, err := base.Select(goqu.COUNT("*")).Prepared(true).ToSQL()
	if err != nil {
		return nil, 0, fmt.Errorf("could not build user count query: %w", err)
	}

	var total int64
	if err := r.db.Get(&total, countSQL, countArgs...); err != nil {
		r.logger.Error("Could not count users", map[string]interface{}{"error": err.Error()})
		return nil, 0, fmt.Errorf("could not count users: %w", err)
	}

	listSQL, listArgs, err := base.
		Select("id", "name", "email", "password_hash", "role", "phone_number", "address", "created_at", "updated_at").
		Order(goqu.C("role").Asc(), goqu.C("id").Asc()).
		Limit(uint(perPage)).
		Offset(uint((page - 1) * perPage)).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, 0, fmt.Errorf("could not build user list query: %w", err)
	}

	users := make([]*domain.User, 0)
	if err := r.db.Select(&users, listSQL, listArgs...); err != nil {
		r.logger.Error("Could not list users", map[string]interface{}{"error": err.Error()})
		return nil, 0, fmt.Errorf("could not list users: %w", err)
	}

	return users, total, nil
}

func (r *UserRepository) Create(user *domain.User) error {
	started := time.Now()

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	if user.Role == "" {
		user.Role = domain.RoleMember
	}

	res, err := r.db.Exec(
		`INSERT INTO users (name, email, password_hash, role, phone_number, address, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		user.Name, user.Email, user.PasswordHash, user.Role, user.PhoneNumber, user.Address,
		user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Could not create user", map[string]interface{}{"error": err.Error()})
		return fmt.Errorf("could not create user: %w", err)
	}

	user.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("could not read new user id: %w", err)
	}

	metrics.RecordDatabaseOperation("create", "user", time.Since(started))
	return nil
}

func (r *UserRepository) Update(user *domain.User) error {
	started := time.Now()
	user.UpdatedAt = time.Now()

	_, err := r.db.Exec(
		`UPDATE users SET name = ?, email = ?, password_hash = ?, role = ?, phone_number = ?, address = ?, updated_at = ?
		 WHERE id = ?`,
		user.Name, user.Email, user.PasswordHash, user.Role, user.PhoneNumber, user.Address,
		user.UpdatedAt, user.ID,
	)
	if err != nil {
		r.logger.Error("Could not update user", map[string]interface{}{"id": user.ID, "error": err.Error()})
		return fmt.Errorf("could not update user: %w", err)
	}

	metrics.RecordDatabaseOperation("update", "user", time.Since(started))
	return nil
}

func (r *UserRepository) Delete(id int64) error {
	started := time.Now()

	_, err := r.db.Exec(`DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		r.logger.Error("Could not delete user", map[string]interface{}{"id": id, "error": err.Error()})
		return fmt.Errorf("could not delete user: %w", err)
	}

	metrics.RecordDatabaseOperation("delete", "user", time.Since(started))
	return nil
}
