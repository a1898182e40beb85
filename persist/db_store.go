package persist

import (
	"context"
	"errors"

	"github.com/kasuganosora/cardpack/model"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DBStore keeps each profile as one row of the profiles table.
type DBStore struct {
	db *gorm.DB
}

func NewDBStore(db *gorm.DB) *DBStore {
	return &DBStore{db: db}
}

func (s *DBStore) Load(ctx context.Context, key string) ([]byte, error) {
	var p model.Profile
	err := s.db.WithContext(ctx).Where("profile_key = ?", key).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(p.Payload), nil
}

// Save upserts the row for key.
func (s *DBStore) Save(ctx context.Context, key string, payload []byte) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "profile_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
	}).Create(&model.Profile{Key: key, Payload: datatypes.JSON(payload)}).Error
}
