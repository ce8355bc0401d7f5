package stays

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// upsertColumns are refreshed on every snapshot. access_code_id is left out
// so a snapshot never drops a known code link.
var upsertColumns = []string{
	"reservation_id", "room_id", "room_name", "guest_name", "room_status",
	"room_check_in", "room_check_out", "res_check_in", "res_check_out",
	"res_status", "balance", "date_modified", "data", "updated_at",
}

// Store persists stays.
type Store struct {
	db *gorm.DB
}

// NewStore creates a store over db.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Upsert inserts or refreshes stays by id, preserving stored code references.
func (s *Store) Upsert(ctx context.Context, stays []Stay) error {
	if len(stays) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns(upsertColumns),
	}).CreateInBatches(&stays, 100).Error
}

// All returns every stay ordered by id.
func (s *Store) All(ctx context.Context) ([]Stay, error) {
	var out []Stay
	err := s.db.WithContext(ctx).Order("id").Find(&out).Error
	return out, err
}

// Get returns one stay.
func (s *Store) Get(ctx context.Context, id string) (*Stay, error) {
	var st Stay
	if err := s.db.WithContext(ctx).First(&st, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &st, nil
}

// Codes returns the stored code reference per stay id.
func (s *Store) Codes(ctx context.Context) (map[string]string, error) {
	var rows []Stay
	err := s.db.WithContext(ctx).
		Select("id", "access_code_id").
		Where("access_code_id IS NOT NULL AND access_code_id <> ''").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(rows))
	for _, r := range rows {
		out[r.ID] = r.Code()
	}
	return out, nil
}

// Stale returns stays whose id is not in keep.
func (s *Store) Stale(ctx context.Context, keep map[string]struct{}) ([]Stay, error) {
	all, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Stay, 0)
	for _, st := range all {
		if _, ok := keep[st.ID]; !ok {
			out = append(out, st)
		}
	}
	return out, nil
}

// SetCode sets or clears a stay's code reference.
func (s *Store) SetCode(ctx context.Context, id string, codeID *string) error {
	return s.db.WithContext(ctx).Model(&Stay{}).Where("id = ?", id).Update("access_code_id", codeID).Error
}

// Delete removes a stay.
func (s *Store) Delete(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Delete(&Stay{}, "id = ?", id).Error
}
