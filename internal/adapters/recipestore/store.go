// Package recipestore loads recipe records from Postgres so that search hits
// can be ranked.
package recipestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/okian/reciperank/internal/domain/model"
	"github.com/okian/reciperank/internal/domain/types"
	"github.com/okian/reciperank/internal/tracing"
	"github.com/okian/reciperank/pkg/logger"
	"github.com/okian/reciperank/pkg/metrics"
)

const selectRecipes = `SELECT id, name, description, ingredients, instructions,
	prep_time, cook_time, difficulty, cuisine, tags, images, nutrition_info,
	created_at, updated_at, confidence_score, system_rating,
	avg_user_rating, total_user_ratings
FROM recipes WHERE id = ANY($1)`

// Store reads recipes from the recipes table.
type Store struct {
	db *sql.DB
	settings
}

// Open connects to Postgres with the lib/pq driver.
func Open(dsn string, opts ...Option) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	s := New(db, opts...)
	db.SetMaxOpenConns(s.maxOpen)
	db.SetMaxIdleConns(s.maxIdle)
	db.SetConnMaxLifetime(s.connLifetime)
	db.SetConnMaxIdleTime(s.connLifetime)
	return s, nil
}

// New wraps an existing handle.
func New(db *sql.DB, opts ...Option) *Store {
	s := &Store{db: db, settings: defaults()}
	for _, o := range opts {
		o(&s.settings)
	}
	return s
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %w", model.ErrStoreUnavailable, err)
	}
	return nil
}

// Close releases the pool.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Hydrate loads the recipes behind hits. Candidates come back in hit order
// carrying the hit similarity. IDs the table does not hold are returned in
// missing. Duplicate hits keep their first occurrence.
func (s *Store) Hydrate(ctx context.Context, hits []types.Hit) (_ []model.Candidate, missing []string, err error) {
	ids := make([]string, 0, len(hits))
	seen := make(map[string]struct{}, len(hits))
	for _, h := range hits {
		if _, ok := seen[h.ID]; ok {
			continue
		}
		seen[h.ID] = struct{}{}
		if h.ID == "" {
			missing = append(missing, h.ID)
			continue
		}
		ids = append(ids, h.ID)
	}
	if len(ids) == 0 {
		return []model.Candidate{}, missing, nil
	}

	start := time.Now()
	ctx, end := tracing.StartDBSpan(ctx, "recipes", "SELECT")
	defer func() { end(err) }()

	if s.queryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.queryTimeout)
		defer cancel()
	}

	found, err := s.load(ctx, ids)
	if err != nil {
		s.logger.Error(ctx, "recipe hydration failed", logger.Int("ids", len(ids)), logger.Error(err))
		return nil, nil, fmt.Errorf("%w: %w", model.ErrStoreUnavailable, err)
	}

	out := make([]model.Candidate, 0, len(found))
	emitted := make(map[string]struct{}, len(found))
	for _, h := range hits {
		if h.ID == "" {
			continue
		}
		if _, ok := emitted[h.ID]; ok {
			continue
		}
		emitted[h.ID] = struct{}{}
		c, ok := found[h.ID]
		if !ok {
			missing = append(missing, h.ID)
			continue
		}
		c.Similarity = h.Similarity
		out = append(out, c)
	}

	metrics.RecordStoreQuery(float64(time.Since(start).Microseconds())/1000, len(out), len(missing))
	if len(missing) > 0 {
		s.logger.Debug(ctx, "hits missing from store", logger.Strings("ids", missing))
	}
	return out, missing, nil
}

func (s *Store) load(ctx context.Context, ids []string) (map[string]model.Candidate, error) {
	rows, err := s.db.QueryContext(ctx, selectRecipes, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("query recipes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	found := make(map[string]model.Candidate, len(ids))
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		found[c.ID] = c
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recipes: %w", err)
	}
	return found, nil
}

type recipeRow struct {
	id               string
	name             sql.NullString
	description      sql.NullString
	ingredients      sql.NullString
	instructions     sql.NullString
	prepTime         sql.NullInt64
	cookTime         sql.NullInt64
	difficulty       sql.NullString
	cuisine          sql.NullString
	tags             pq.StringArray
	images           sql.NullString
	nutrition        sql.NullString
	createdAt        sql.NullTime
	updatedAt        sql.NullTime
	confidence       sql.NullString
	systemRating     sql.NullString
	avgUserRating    sql.NullString
	totalUserRatings sql.NullInt64
}

func scanCandidate(rows *sql.Rows) (model.Candidate, error) {
	var r recipeRow
	err := rows.Scan(
		&r.id, &r.name, &r.description, &r.ingredients, &r.instructions,
		&r.prepTime, &r.cookTime, &r.difficulty, &r.cuisine, &r.tags, &r.images, &r.nutrition,
		&r.createdAt, &r.updatedAt, &r.confidence, &r.systemRating,
		&r.avgUserRating, &r.totalUserRatings,
	)
	if err != nil {
		return model.Candidate{}, fmt.Errorf("%w: %w", ErrScan, err)
	}
	return r.candidate(), nil
}

func (r *recipeRow) candidate() model.Candidate {
	c := model.Candidate{
		ID:               r.id,
		Title:            r.name.String,
		Description:      r.description.String,
		Ingredients:      jsonList(r.ingredients),
		Instructions:     instructionList(r.instructions),
		PrepTimeMinutes:  intPtr(r.prepTime),
		CookTimeMinutes:  intPtr(r.cookTime),
		Cuisine:          r.cuisine.String,
		Images:           jsonList(r.images),
		Nutrition:        jsonObject(r.nutrition),
		ConfidenceScore:  floatPtr(r.confidence),
		SystemRating:     floatPtr(r.systemRating),
		AvgUserRating:    floatPtr(r.avgUserRating),
		TotalUserRatings: int(r.totalUserRatings.Int64),
	}
	if len(r.tags) > 0 {
		c.Tags = []string(r.tags)
	}
	if d, err := model.ParseDifficulty(r.difficulty.String); err == nil {
		c.Difficulty = d
	}
	if r.createdAt.Valid {
		c.CreatedAt = r.createdAt.Time
	}
	if r.updatedAt.Valid {
		c.UpdatedAt = r.updatedAt.Time
	}
	return c
}

// jsonList decodes a JSON array of strings. Anything else is treated as absent.
func jsonList(v sql.NullString) []string {
	if !v.Valid || strings.TrimSpace(v.String) == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(v.String), &out); err != nil || len(out) == 0 {
		return nil
	}
	return out
}

// instructionList accepts a JSON array or plain text with one step per line.
// Text that opens like an array is only ever read as JSON.
func instructionList(v sql.NullString) []string {
	if !v.Valid {
		return nil
	}
	text := strings.TrimSpace(v.String)
	if text == "" {
		return nil
	}
	if strings.HasPrefix(text, "[") {
		return jsonList(v)
	}
	var steps []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			steps = append(steps, line)
		}
	}
	return steps
}

func jsonObject(v sql.NullString) map[string]any {
	if !v.Valid || v.String == "" {
		return nil
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(v.String), &out); err != nil || len(out) == 0 {
		return nil
	}
	return out
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}

// floatPtr parses numeric columns, which lib/pq returns as text.
func floatPtr(v sql.NullString) *float64 {
	if !v.Valid {
		return nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v.String), 64)
	if err != nil {
		return nil
	}
	return &f
}
