package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// ItemStackRow is one inventory slot in a persisted player record.
type ItemStackRow struct {
	ItemID string `json:"item_id"`
	Count  int    `json:"count"`
}

// SpellRow is one learned spell in a persisted player record.
type SpellRow struct {
	SpellID    string `json:"spell_id"`
	Level      int    `json:"level"`
	Experience int    `json:"experience"`
}

// PlayerRecord is the stored shape of a player. Identity is the display
// name (simplified account model); ID is the database row id.
type PlayerRecord struct {
	ID   int64
	Name string

	X, Y, Z float64

	HP, MaxHP    int
	MP, MaxMP    int
	Attack       int
	Defense      int
	MoveSpeed    float64
	Level        int
	HarvestSkill int

	Inventory []ItemStackRow
	Spells    []SpellRow
}

// PlayerRepo handles persistence of player records. All methods are safe
// to call from background goroutines; nothing here touches world state.
type PlayerRepo struct {
	db *DB
}

func NewPlayerRepo(db *DB) *PlayerRepo {
	return &PlayerRepo{db: db}
}

// LoadByName returns the record for a display name, or nil when no such
// player has been persisted.
func (r *PlayerRepo) LoadByName(ctx context.Context, name string) (*PlayerRecord, error) {
	var (
		rec        PlayerRecord
		invJSON    []byte
		spellsJSON []byte
	)
	err := r.db.Pool.QueryRow(ctx,
		`SELECT id, name, x, y, z,
		        hp, max_hp, mp, max_mp, attack, defense, move_speed, level,
		        harvest_skill, inventory, spells
		 FROM players WHERE lower(name) = lower($1)`, name,
	).Scan(
		&rec.ID, &rec.Name, &rec.X, &rec.Y, &rec.Z,
		&rec.HP, &rec.MaxHP, &rec.MP, &rec.MaxMP, &rec.Attack, &rec.Defense,
		&rec.MoveSpeed, &rec.Level, &rec.HarvestSkill, &invJSON, &spellsJSON,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load player %q: %w", name, err)
	}
	if len(invJSON) > 0 {
		if err := json.Unmarshal(invJSON, &rec.Inventory); err != nil {
			return nil, fmt.Errorf("decode inventory for %q: %w", name, err)
		}
	}
	if len(spellsJSON) > 0 {
		if err := json.Unmarshal(spellsJSON, &rec.Spells); err != nil {
			return nil, fmt.Errorf("decode spells for %q: %w", name, err)
		}
	}
	return &rec, nil
}

// Create inserts a new record and returns its row id.
func (r *PlayerRepo) Create(ctx context.Context, rec *PlayerRecord) (int64, error) {
	invJSON, spellsJSON, err := encodeBlobs(rec)
	if err != nil {
		return 0, err
	}
	var id int64
	err = r.db.Pool.QueryRow(ctx,
		`INSERT INTO players (
			name, x, y, z,
			hp, max_hp, mp, max_mp, attack, defense, move_speed, level,
			harvest_skill, inventory, spells
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
		RETURNING id`,
		rec.Name, rec.X, rec.Y, rec.Z,
		rec.HP, rec.MaxHP, rec.MP, rec.MaxMP, rec.Attack, rec.Defense,
		rec.MoveSpeed, rec.Level, rec.HarvestSkill, invJSON, spellsJSON,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create player %q: %w", rec.Name, err)
	}
	return id, nil
}

// Update overwrites the mutable fields of an existing record.
func (r *PlayerRepo) Update(ctx context.Context, id int64, rec *PlayerRecord) error {
	invJSON, spellsJSON, err := encodeBlobs(rec)
	if err != nil {
		return err
	}
	_, err = r.db.Pool.Exec(ctx,
		`UPDATE players SET
			x = $2, y = $3, z = $4,
			hp = $5, max_hp = $6, mp = $7, max_mp = $8,
			attack = $9, defense = $10, move_speed = $11, level = $12,
			harvest_skill = $13, inventory = $14, spells = $15
		 WHERE id = $1`,
		id, rec.X, rec.Y, rec.Z,
		rec.HP, rec.MaxHP, rec.MP, rec.MaxMP,
		rec.Attack, rec.Defense, rec.MoveSpeed, rec.Level,
		rec.HarvestSkill, invJSON, spellsJSON,
	)
	if err != nil {
		return fmt.Errorf("update player %d: %w", id, err)
	}
	return nil
}

// Delete removes a record.
func (r *PlayerRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.Pool.Exec(ctx, `DELETE FROM players WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete player %d: %w", id, err)
	}
	return nil
}

func encodeBlobs(rec *PlayerRecord) (inv, spells []byte, err error) {
	inv, err = json.Marshal(rec.Inventory)
	if err != nil {
		return nil, nil, fmt.Errorf("encode inventory: %w", err)
	}
	spells, err = json.Marshal(rec.Spells)
	if err != nil {
		return nil, nil, fmt.Errorf("encode spells: %w", err)
	}
	return inv, spells, nil
}
