package database

import (
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"shelftrack/pkg/logger"
)

// SeedService loads a small development dataset: one admin, a handful of
// categories and books. It rides the migrations table so a seed is applied
// at most once per database.
type SeedService struct {
	migrations *MigrationService
	logger     logger.Logger
}

func NewSeedService(migrations *MigrationService, logger logger.Logger) *SeedService {
	return &SeedService{
		migrations: migrations,
		logger:     logger,
	}
}

func (s *SeedService) Run() error {
	return s.migrations.ApplyMigration("seed_initial_data", seedInitialData)
}

func seedInitialData(tx *sqlx.Tx) error {
	now := time.Now()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	users := []struct {
		name, email, role, phone, address string
	}{
		{"Budi Santoso", "budi.santoso@example.com", "admin", "081234567891", "Jl. Merdeka No. 1"},
		{"Dewi Lestari", "dewi.lestari@example.com", "member", "081234567894", "Jl. Gajah Mada No. 4"},
	}
	for _, u := range users {
		if _, err := tx.Exec(
			`INSERT INTO users (name, email, password_hash, role, phone_number, address, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			u.name, u.email, string(hash), u.role, u.phone, u.address, now, now,
		); err != nil {
			return err
		}
	}

	categories := []struct {
		name, description string
	}{
		{"Fiction", "Novels and literary fiction"},
		{"Science", "Popular science and reference"},
		{"History", "Historical accounts and analysis"},
		{"Computers", "Programming and computing"},
	}
	for _, c := range categories {
		if _, err := tx.Exec(
			`INSERT INTO categories (name, description, created_at, updated_at) VALUES (?, ?, ?, ?)`,
			c.name, c.description, now, now,
		); err != nil {
			return err
		}
	}

	books := []struct {
		title, author, isbn, publisher string
		year, stock, category          int
	}{
		{"The Go Programming Language", "Alan A. A. Donovan", "9780134190440", "Addison-Wesley", 2015, 3, 4},
		{"Sapiens", "Yuval Noah Harari", "9780062316097", "Harper", 2015, 2, 3},
		{"A Brief History of Time", "Stephen Hawking", "9780553380163", "Bantam", 1998, 2, 2},
		{"The Name of the Rose", "Umberto Eco", "9780156001311", "Harcourt", 1994, 1, 1},
	}
	for _, b := range books {
		if _, err := tx.Exec(
			`INSERT INTO books (title, author, isbn, stock, publication_year, publisher, category_id, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			b.title, b.author, b.isbn, b.stock, b.year, b.publisher, b.category, now, now,
		); err != nil {
			return err
		}
	}

	return nil
}
