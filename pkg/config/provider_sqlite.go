package config

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/chrissnell/permafrost/pkg/migrate"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

const parameterSetColumns = `
	id, name, description,
	snow_conductivity, snow_heat_capacity, snow_depth,
	organic_k_frozen, organic_k_thawed, organic_c_frozen, organic_c_thawed, organic_thickness,
	mineral_k_frozen, mineral_k_thawed, mineral_c_frozen, mineral_c_thawed, mineral_porosity,
	mean_air_temp, air_temp_amplitude`

// SQLiteProvider implements ConfigProvider for SQLite database configuration
type SQLiteProvider struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteProvider creates a new SQLite configuration provider.
// Pending schema migrations are applied on open.
func NewSQLiteProvider(dbPath string) (*SQLiteProvider, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	migrator := migrate.NewMigrator(db, migrate.NewFSSource(migrationFiles, "migrations"))
	if err := migrator.MigrateUp(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return &SQLiteProvider{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// LoadConfig loads the complete configuration from SQLite database
func (s *SQLiteProvider) LoadConfig() (*ConfigData, error) {
	config := &ConfigData{}

	server, err := s.GetServerConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load server config: %w", err)
	}
	config.Server = *server

	sets, err := s.ListSets()
	if err != nil {
		return nil, fmt.Errorf("failed to load parameter sets: %w", err)
	}
	config.ParameterSets = sets

	return config, nil
}

// GetServerConfig returns the server settings; missing settings are zero
func (s *SQLiteProvider) GetServerConfig() (*ServerData, error) {
	var listenAddr sql.NullString
	var port, workers, maxSweep sql.NullInt64

	err := s.db.QueryRow(`SELECT listen_addr, port, sweep_workers, max_sweep_size FROM server_config WHERE id = 1`).
		Scan(&listenAddr, &port, &workers, &maxSweep)
	if errors.Is(err, sql.ErrNoRows) {
		return &ServerData{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query server config: %w", err)
	}

	return &ServerData{
		ListenAddr:   listenAddr.String,
		Port:         int(port.Int64),
		SweepWorkers: int(workers.Int64),
		MaxSweepSize: int(maxSweep.Int64),
	}, nil
}

// SaveServerConfig stores the server settings
func (s *SQLiteProvider) SaveServerConfig(server *ServerData) error {
	query := `
		INSERT INTO server_config (id, listen_addr, port, sweep_workers, max_sweep_size)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			listen_addr = excluded.listen_addr,
			port = excluded.port,
			sweep_workers = excluded.sweep_workers,
			max_sweep_size = excluded.max_sweep_size
	`
	if _, err := s.db.Exec(query, nullString(server.ListenAddr), server.Port, server.SweepWorkers, server.MaxSweepSize); err != nil {
		return fmt.Errorf("failed to save server config: %w", err)
	}
	return nil
}

// ListSets returns every stored parameter set ordered by name
func (s *SQLiteProvider) ListSets() ([]ParameterSet, error) {
	rows, err := s.db.Query(`SELECT ` + parameterSetColumns + ` FROM parameter_sets ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query parameter sets: %w", err)
	}
	defer rows.Close()

	sets := []ParameterSet{}
	for rows.Next() {
		set, err := scanParameterSet(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan parameter set row: %w", err)
		}
		sets = append(sets, *set)
	}

	return sets, rows.Err()
}

// GetSet returns the named parameter set
func (s *SQLiteProvider) GetSet(name string) (*ParameterSet, error) {
	row := s.db.QueryRow(`SELECT `+parameterSetColumns+` FROM parameter_sets WHERE name = ?`, name)

	set, err := scanParameterSet(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSetNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query parameter set %s: %w", name, err)
	}
	return set, nil
}

// SaveSet inserts the set or replaces the stored set of the same name.
// New sets get a random ID; set.ID is updated to the stored ID.
func (s *SQLiteProvider) SaveSet(set *ParameterSet) error {
	if err := ValidateName(set.Name); err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var id string
	err = tx.QueryRow(`SELECT id FROM parameter_sets WHERE name = ?`, set.Name).Scan(&id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		id = uuid.New().String()
		if err := insertParameterSet(tx, id, set); err != nil {
			return fmt.Errorf("failed to insert parameter set %s: %w", set.Name, err)
		}
	case err != nil:
		return fmt.Errorf("failed to look up parameter set %s: %w", set.Name, err)
	default:
		if err := updateParameterSet(tx, id, set); err != nil {
			return fmt.Errorf("failed to update parameter set %s: %w", set.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	set.ID = id
	return nil
}

// DeleteSet removes the named parameter set
func (s *SQLiteProvider) DeleteSet(name string) error {
	result, err := s.db.Exec(`DELETE FROM parameter_sets WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("failed to delete parameter set %s: %w", name, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrSetNotFound
	}
	return nil
}

// IsReadOnly returns false since SQLite configuration can be modified
func (s *SQLiteProvider) IsReadOnly() bool {
	return false
}

// Close closes the database connection
func (s *SQLiteProvider) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanParameterSet(row rowScanner) (*ParameterSet, error) {
	var set ParameterSet
	var description sql.NullString

	err := row.Scan(
		&set.ID, &set.Name, &description,
		&set.Snow.Conductivity, &set.Snow.HeatCapacity, &set.Snow.Depth,
		&set.Organic.ConductivityFrozen, &set.Organic.ConductivityThawed,
		&set.Organic.HeatCapacityFrozen, &set.Organic.HeatCapacityThawed, &set.Organic.Thickness,
		&set.Mineral.ConductivityFrozen, &set.Mineral.ConductivityThawed,
		&set.Mineral.HeatCapacityFrozen, &set.Mineral.HeatCapacityThawed, &set.Mineral.Porosity,
		&set.Forcing.MeanAirTemp, &set.Forcing.AirTempAmplitude,
	)
	if err != nil {
		return nil, err
	}

	if description.Valid {
		set.Description = description.String
	}
	return &set, nil
}

func insertParameterSet(tx *sql.Tx, id string, set *ParameterSet) error {
	query := `
		INSERT INTO parameter_sets (` + parameterSetColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := tx.Exec(query, append([]any{id, set.Name}, parameterSetValues(set)...)...)
	return err
}

func updateParameterSet(tx *sql.Tx, id string, set *ParameterSet) error {
	query := `
		UPDATE parameter_sets SET
			description = ?,
			snow_conductivity = ?, snow_heat_capacity = ?, snow_depth = ?,
			organic_k_frozen = ?, organic_k_thawed = ?, organic_c_frozen = ?, organic_c_thawed = ?, organic_thickness = ?,
			mineral_k_frozen = ?, mineral_k_thawed = ?, mineral_c_frozen = ?, mineral_c_thawed = ?, mineral_porosity = ?,
			mean_air_temp = ?, air_temp_amplitude = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	_, err := tx.Exec(query, append(parameterSetValues(set), id)...)
	return err
}

// parameterSetValues returns the columns after id and name, in schema order
func parameterSetValues(set *ParameterSet) []any {
	return []any{
		nullString(set.Description),
		set.Snow.Conductivity, set.Snow.HeatCapacity, set.Snow.Depth,
		set.Organic.ConductivityFrozen, set.Organic.ConductivityThawed,
		set.Organic.HeatCapacityFrozen, set.Organic.HeatCapacityThawed, set.Organic.Thickness,
		set.Mineral.ConductivityFrozen, set.Mineral.ConductivityThawed,
		set.Mineral.HeatCapacityFrozen, set.Mineral.HeatCapacityThawed, set.Mineral.Porosity,
		set.Forcing.MeanAirTemp, set.Forcing.AirTempAmplitude,
	}
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}
