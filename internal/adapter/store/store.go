// Package store persists flights and the IATA reference list with gorm.
// The same code runs on SQLite (glebarez, pure Go) and PostgreSQL.
package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/flight-delay-etl/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// Weather measure columns accepted by MeanByAirport.
const (
	ColumnPrecipitation = "precipitation"
	ColumnCloudCover    = "cloud_cover"
	ColumnWindSpeed10m  = "wind_speed_10m"
	ColumnWindSpeed100m = "wind_speed_100m"
)

var measureColumns = map[string]bool{
	ColumnPrecipitation: true,
	ColumnCloudCover:    true,
	ColumnWindSpeed10m:  true,
	ColumnWindSpeed100m: true,
}

// Store is the gorm-backed flight and IATA repository.
type Store struct {
	db     *gorm.DB
	logger *slog.Logger
}

// Open connects using the DB_TYPE dialect and creates missing tables.
func Open(dbType, dsn string, logger *slog.Logger) (*Store, error) {
	dialector, err := Dialect(dbType, dsn)
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", dbType, err)
	}
	return New(db, logger)
}

// New wraps an open gorm handle and migrates the schema.
func New(db *gorm.DB, logger *slog.Logger) (*Store, error) {
	if err := db.AutoMigrate(&flightRow{}, &iataRow{}); err != nil {
		return nil, fmt.Errorf("migrate store: %w", err)
	}
	return &Store{db: db, logger: logger}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) whereKey(ctx context.Context, key domain.DedupKey) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&flightRow{}).
		Where("scheduled_dep = ?", key.ScheduledDep.UTC()).
		Where("airport_dep = ?", key.AirportDep).
		Where("airport_arr = ?", key.AirportArr)
	if key.ActualDep == nil {
		return q.Where("actual_dep IS NULL")
	}
	return q.Where("actual_dep = ?", key.ActualDep.UTC())
}

// FindByKey returns the first flight matching the dedup key, or nil when none exists.
func (s *Store) FindByKey(ctx context.Context, key domain.DedupKey) (*domain.Flight, error) {
	var rows []flightRow
	if err := s.whereKey(ctx, key).Limit(1).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("find flight by key: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	f := rows[0].toDomain()
	return &f, nil
}

// CountByKey counts flights matching the key. Failures are logged and reported as 0.
func (s *Store) CountByKey(ctx context.Context, key domain.DedupKey) int64 {
	var n int64
	if err := s.whereKey(ctx, key).Count(&n).Error; err != nil {
		s.logger.Warn("count flights by key failed", "airport", key.AirportDep, "error", err)
		return 0
	}
	return n
}

// Insert stores a new flight, assigning an ID when it has none.
func (s *Store) Insert(ctx context.Context, f domain.Flight) (domain.Flight, error) {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	row := toRow(f)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return domain.Flight{}, fmt.Errorf("insert flight %s: %w", f.Number, err)
	}
	return row.toDomain(), nil
}

// Replace overwrites every column of an existing flight, matched by ID.
func (s *Store) Replace(ctx context.Context, f domain.Flight) error {
	if f.ID == "" {
		return fmt.Errorf("replace flight %s: missing id", f.Number)
	}
	row := toRow(f)
	res := s.db.WithContext(ctx).Model(&flightRow{ID: f.ID}).Select("*").Updates(&row)
	if res.Error != nil {
		return fmt.Errorf("replace flight %s: %w", f.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("replace flight %s: %w", f.ID, gorm.ErrRecordNotFound)
	}
	return nil
}

// AllFlights returns every stored flight ordered by scheduled departure.
func (s *Store) AllFlights(ctx context.Context) ([]domain.Flight, error) {
	return s.findFlights(s.db.WithContext(ctx))
}

// FlightsMissingWeather returns flights lacking at least one weather measure.
func (s *Store) FlightsMissingWeather(ctx context.Context) ([]domain.Flight, error) {
	q := s.db.WithContext(ctx).Where(
		"precipitation IS NULL OR cloud_cover IS NULL OR wind_speed_10m IS NULL OR wind_speed_100m IS NULL",
	)
	return s.findFlights(q)
}

func (s *Store) findFlights(q *gorm.DB) ([]domain.Flight, error) {
	var rows []flightRow
	if err := q.Order("scheduled_dep, id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list flights: %w", err)
	}
	out := make([]domain.Flight, len(rows))
	for i := range rows {
		out[i] = rows[i].toDomain()
	}
	return out, nil
}

// InsertIATA stores reference entries, skipping acronyms already present.
// It returns the number of new rows.
func (s *Store) InsertIATA(ctx context.Context, entries []domain.IATAEntry) (int, error) {
	inserted := 0
	for _, e := range entries {
		row := iataRow{Acronym: e.Acronym, Name: e.Name}
		res := s.db.WithContext(ctx).
			Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "acronym"}}, DoNothing: true}).
			Create(&row)
		if res.Error != nil {
			return inserted, fmt.Errorf("insert iata %s: %w", e.Acronym, res.Error)
		}
		inserted += int(res.RowsAffected)
	}
	return inserted, nil
}

// AllIATA returns the reference list in insertion order.
func (s *Store) AllIATA(ctx context.Context) ([]domain.IATAEntry, error) {
	var rows []iataRow
	if err := s.db.WithContext(ctx).Order("seq").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list iata: %w", err)
	}
	out := make([]domain.IATAEntry, len(rows))
	for i, r := range rows {
		out[i] = domain.IATAEntry{Acronym: r.Acronym, Name: r.Name}
	}
	return out, nil
}

// DistinctAirportDep lists the departure airports present in the store, sorted.
func (s *Store) DistinctAirportDep(ctx context.Context) ([]string, error) {
	var codes []string
	err := s.db.WithContext(ctx).Model(&flightRow{}).
		Distinct("airport_dep").Order("airport_dep").Pluck("airport_dep", &codes).Error
	if err != nil {
		return nil, fmt.Errorf("list departure airports: %w", err)
	}
	return codes, nil
}

// FlightsPerAirport counts stored flights grouped by departure airport.
func (s *Store) FlightsPerAirport(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		AirportDep string
		N          int64
	}
	err := s.db.WithContext(ctx).Model(&flightRow{}).
		Select("airport_dep, COUNT(*) AS n").Group("airport_dep").Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("count flights per airport: %w", err)
	}
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.AirportDep] = r.N
	}
	return out, nil
}

// MeanByAirport averages a weather measure per departure airport, ignoring
// flights without it. Airports with no value are absent from the result.
func (s *Store) MeanByAirport(ctx context.Context, column string) (map[string]float64, error) {
	if !measureColumns[column] {
		return nil, fmt.Errorf("mean by airport: unknown column %q", column)
	}
	var rows []struct {
		AirportDep string
		Mean       *float64
	}
	err := s.db.WithContext(ctx).Model(&flightRow{}).
		Select("airport_dep, AVG(" + column + ") AS mean").
		Where(column + " IS NOT NULL").
		Group("airport_dep").Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("mean %s by airport: %w", column, err)
	}
	out := make(map[string]float64, len(rows))
	for _, r := range rows {
		if r.Mean != nil {
			out[r.AirportDep] = *r.Mean
		}
	}
	return out, nil
}
