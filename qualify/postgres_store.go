package qualify

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// PostgresTaxonomyStore implements TaxonomyStore backed by PostgreSQL.
type PostgresTaxonomyStore struct {
	db *sql.DB
}

// NewPostgresTaxonomyStore creates a PostgreSQL-backed taxonomy store.
func NewPostgresTaxonomyStore(db *sql.DB) *PostgresTaxonomyStore {
	return &PostgresTaxonomyStore{db: db}
}

// Add inserts a new taxonomy into the database.
func (s *PostgresTaxonomyStore) Add(tax *Taxonomy) error {
	var exists bool
	err := s.db.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM taxonomies WHERE id = $1)
	`, tax.ID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check taxonomy existence: %w", err)
	}
	if exists {
		return fmt.Errorf("taxonomy with ID %s already exists", tax.ID)
	}

	_, err = s.db.Exec(`
		INSERT INTO taxonomies (id, name, expression, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, tax.ID, tax.Name, tax.Expression, tax.Active, tax.CreatedAt, tax.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to insert taxonomy: %w", err)
	}

	return nil
}

// Get retrieves a taxonomy by ID.
func (s *PostgresTaxonomyStore) Get(id string) (*Taxonomy, error) {
	var tax Taxonomy
	err := s.db.QueryRow(`
		SELECT id, name, expression, active, created_at, updated_at
		FROM taxonomies
		WHERE id = $1
	`, id).Scan(
		&tax.ID,
		&tax.Name,
		&tax.Expression,
		&tax.Active,
		&tax.CreatedAt,
		&tax.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("taxonomy %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get taxonomy: %w", err)
	}

	return &tax, nil
}

// ListActive returns all active taxonomies.
func (s *PostgresTaxonomyStore) ListActive() ([]*Taxonomy, error) {
	rows, err := s.db.Query(`
		SELECT id, name, expression, active, created_at, updated_at
		FROM taxonomies
		WHERE active = true
		ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list active taxonomies: %w", err)
	}
	defer rows.Close()

	var list []*Taxonomy
	for rows.Next() {
		var t Taxonomy
		if err := rows.Scan(&t.ID, &t.Name, &t.Expression, &t.Active,
			&t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan taxonomy: %w", err)
		}
		list = append(list, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating taxonomies: %w", err)
	}

	return list, nil
}

// Update modifies an existing taxonomy.
func (s *PostgresTaxonomyStore) Update(tax *Taxonomy) error {
	if _, err := s.Get(tax.ID); err != nil {
		return err
	}

	tax.UpdatedAt = time.Now()

	result, err := s.db.Exec(`
		UPDATE taxonomies
		SET name = $1, expression = $2, active = $3, updated_at = $4
		WHERE id = $5
	`, tax.Name, tax.Expression, tax.Active, tax.UpdatedAt, tax.ID)

	if err != nil {
		return fmt.Errorf("failed to update taxonomy: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("taxonomy %s not found", tax.ID)
	}

	return nil
}

// Delete removes a taxonomy from the database.
func (s *PostgresTaxonomyStore) Delete(id string) error {
	result, err := s.db.Exec(`
		DELETE FROM taxonomies
		WHERE id = $1
	`, id)

	if err != nil {
		return fmt.Errorf("failed to delete taxonomy: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("taxonomy %s not found", id)
	}

	return nil
}
