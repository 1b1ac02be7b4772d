package database

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"shelftrack/pkg/logger"
)

type MigrationService struct {
	db     *sqlx.DB
	logger logger.Logger
}

func NewMigrationService(db *sqlx.DB, logger logger.Logger) *MigrationService {
	return &MigrationService{
		db:     db,
		logger: logger,
	}
}

func (m *MigrationService) InitMigrationTable() error {
	query := `
    CREATE TABLE IF NOT EXISTS migrations (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        name TEXT NOT NULL UNIQUE,
        applied_at TIMESTAMP NOT NULL
    )
    `

	_, err := m.db.Exec(query)
	if err != nil {
		m.logger.Error("Could not create migrations table", map[string]interface{}{"error": err.Error()})
		return err
	}

	return nil
}

func (m *MigrationService) IsMigrationApplied(name string) (bool, error) {
	var count int
	query := "SELECT COUNT(*) FROM migrations WHERE name = ?"
	err := m.db.QueryRow(query, name).Scan(&count)
	if err != nil {
		m.logger.Error("Could not check migration state", map[string]interface{}{"name": name, "error": err.Error()})
		return false, err
	}

	return count > 0, nil
}

func (m *MigrationService) ApplyMigration(name string, migrationFunc func(*sqlx.Tx) error) error {
	applied, err := m.IsMigrationApplied(name)
	if err != nil {
		return err
	}

	if applied {
		return nil
	}

	m.logger.Info("Applying migration", map[string]interface{}{"name": name})

	tx, err := m.db.Beginx()
	if err != nil {
		m.logger.Error("Could not begin transaction", map[string]interface{}{"error": err.Error()})
		return err
	}

	if err := migrationFunc(tx); err != nil {
		tx.Rollback()
		m.logger.Error("Migration failed, rolled back", map[string]interface{}{"name": name, "error": err.Error()})
		return err
	}

	if _, err := tx.Exec("INSERT INTO migrations (name, applied_at) VALUES (?, ?)", name, time.Now()); err != nil {
		tx.Rollback()
		m.logger.Error("Could not record migration", map[string]interface{}{"name": name, "error": err.Error()})
		return err
	}

	if err := tx.Commit(); err != nil {
		m.logger.Error("Could not commit migration", map[string]interface{}{"name": name, "error": err.Error()})
		return err
	}

	m.logger.Info("Migration applied", map[string]interface{}{"name": name})
	return nil
}

func (m *MigrationService) RunMigrations() error {
	if err := m.InitMigrationTable(); err != nil {
		return fmt.Errorf("could not create migrations table: %w", err)
	}

	migrations := []struct {
		Name string
		Func func(*sqlx.Tx) error
	}{
		{"create_users_table", CreateUsersTable},
		{"create_categories_table", CreateCategoriesTable},
		{"create_books_table", CreateBooksTable},
		{"create_borrowings_table", CreateBorrowingsTable},
		{"create_audit_logs_table", CreateAuditLogsTable},
	}

	for _, migration := range migrations {
		if err := m.ApplyMigration(migration.Name, migration.Func); err != nil {
			return fmt.Errorf("could not apply migration %s: %w", migration.Name, err)
		}
	}

	return nil
}

func CreateUsersTable(tx *sqlx.Tx) error {
	query := `
    CREATE TABLE IF NOT EXISTS users (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        name TEXT NOT NULL,
        email TEXT NOT NULL UNIQUE,
        password_hash TEXT NOT NULL,
        role TEXT NOT NULL DEFAULT 'member',
        phone_number TEXT,
        address TEXT,
        created_at TIMESTAMP NOT NULL,
        updated_at TIMESTAMP NOT NULL
    )
    `

	_, err := tx.Exec(query)
	return err
}

func CreateCategoriesTable(tx *sqlx.Tx) error {
	query := `
    CREATE TABLE IF NOT EXISTS categories (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        name TEXT NOT NULL UNIQUE,
        description TEXT,
        created_at TIMESTAMP NOT NULL,
        updated_at TIMESTAMP NOT NULL
    )
    `

	_, err := tx.Exec(query)
	return err
}

func CreateBooksTable(tx *sqlx.Tx) error {
	query := `
    CREATE TABLE IF NOT EXISTS books (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        title TEXT NOT NULL,
        author TEXT NOT NULL,
        isbn TEXT NOT NULL UNIQUE,
        description TEXT,
        cover_image TEXT,
        stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
        publication_year INTEGER NOT NULL,
        publisher TEXT NOT NULL,
        category_id INTEGER NOT NULL,
        created_at TIMESTAMP NOT NULL,
        updated_at TIMESTAMP NOT NULL,
        FOREIGN KEY (category_id) REFERENCES categories (id)
    );

    CREATE INDEX IF NOT EXISTS books_category_id_idx ON books (category_id);
    `

	_, err := tx.Exec(query)
	return err
}

func CreateBorrowingsTable(tx *sqlx.Tx) error {
	query := `
    CREATE TABLE IF NOT EXISTS borrowings (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        user_id INTEGER NOT NULL,
        book_id INTEGER NOT NULL,
        borrow_date TEXT NOT NULL,
        due_date TEXT NOT NULL,
        return_date TEXT,
        status TEXT NOT NULL DEFAULT 'borrowed',
        notes TEXT,
        created_at TIMESTAMP NOT NULL,
        updated_at TIMESTAMP NOT NULL,
        FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE,
        FOREIGN KEY (book_id) REFERENCES books (id) ON DELETE CASCADE
    );

    CREATE INDEX IF NOT EXISTS borrowings_user_id_idx ON borrowings (user_id);
    CREATE INDEX IF NOT EXISTS borrowings_book_id_idx ON borrowings (book_id);
    CREATE INDEX IF NOT EXISTS borrowings_status_idx ON borrowings (status);
    `

	_, err := tx.Exec(query)
	return err
}

func CreateAuditLogsTable(tx *sqlx.Tx) error {
	query := `
    CREATE TABLE IF NOT EXISTS audit_logs (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        entity_type TEXT NOT NULL,
        entity_id INTEGER NOT NULL,
        action TEXT NOT NULL,
        details TEXT,
        created_at TIMESTAMP NOT NULL
    );

    CREATE INDEX IF NOT EXISTS audit_logs_entity_idx ON audit_logs (entity_type, entity_id);
    `

	_, err := tx.Exec(query)
	return err
}
