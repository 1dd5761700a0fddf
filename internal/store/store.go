package store

import (
	"context"

	"github.com/kubev2v/model-server/internal/store/model"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type Store interface {
	NewTransactionContext(ctx context.Context) (context.Context, error)
	Model() Model
	Statistics(ctx context.Context) (model.RegistryStats, error)
	Close() error
}

type DataStore struct {
	db    *gorm.DB
	model Model
	log   logrus.FieldLogger
}

func NewStore(db *gorm.DB) Store {
	return &DataStore{
		db:    db,
		model: NewModelStore(db),
		log:   logrus.New().WithField("component", "store"),
	}
}

func (s *DataStore) NewTransactionContext(ctx context.Context) (context.Context, error) {
	return newTransactionContext(ctx, s.db, s.log)
}

func (s *DataStore) Model() Model {
	return s.model
}

func (s *DataStore) Statistics(ctx context.Context) (model.RegistryStats, error) {
	models, err := s.Model().List(ctx, nil)
	if err != nil {
		return model.RegistryStats{}, err
	}
	return model.NewRegistryStats(models), nil
}

func (s *DataStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
