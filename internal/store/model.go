package store

import (
	"context"
	"errors"

	"github.com/kubev2v/model-server/internal/store/model"
	"gorm.io/gorm"
)

type Model interface {
	List(ctx context.Context, filter *ModelQueryFilter) (model.ModelList, error)
	Get(ctx context.Context, name string) (*model.Model, error)
	Create(ctx context.Context, m model.Model) (*model.Model, error)
	AddVersion(ctx context.Context, version model.ModelVersion) (*model.ModelVersion, error)
	UpdateDescription(ctx context.Context, name, description string) error
	Rename(ctx context.Context, name, newName string) error
	Delete(ctx context.Context, name string) error
	DeleteVersion(ctx context.Context, name, version string) error
}

type modelStore struct {
	db *gorm.DB
}

func NewModelStore(db *gorm.DB) Model {
	return &modelStore{db: db}
}

func (s *modelStore) List(ctx context.Context, filter *ModelQueryFilter) (model.ModelList, error) {
	var models model.ModelList
	tx := s.getDB(ctx).WithContext(ctx).Model(&models).Order("name").Preload("Versions")

	if filter != nil {
		for _, fn := range filter.QueryFn {
			tx = fn(tx)
		}
	}

	if err := tx.Find(&models).Error; err != nil {
		return nil, err
	}
	for i := range models {
		models[i].SortVersions()
	}
	return models, nil
}

func (s *modelStore) Get(ctx context.Context, name string) (*model.Model, error) {
	m := model.Model{}
	result := s.getDB(ctx).WithContext(ctx).Preload("Versions").Where("name = ?", name).First(&m)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, result.Error
	}
	m.SortVersions()
	return &m, nil
}

func (s *modelStore) Create(ctx context.Context, m model.Model) (*model.Model, error) {
	versions := m.Versions
	m.Versions = nil

	result := s.getDB(ctx).WithContext(ctx).Create(&m)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateKey
		}
		return nil, result.Error
	}

	for _, v := range versions {
		v.ModelID = m.ID
		created, err := s.AddVersion(ctx, v)
		if err != nil {
			return nil, err
		}
		m.Versions = append(m.Versions, *created)
	}
	return &m, nil
}

func (s *modelStore) AddVersion(ctx context.Context, version model.ModelVersion) (*model.ModelVersion, error) {
	result := s.getDB(ctx).WithContext(ctx).Create(&version)
	if result.Error != nil {
		switch {
		case errors.Is(result.Error, gorm.ErrDuplicatedKey):
			return nil, ErrDuplicateKey
		case errors.Is(result.Error, gorm.ErrForeignKeyViolated):
			return nil, ErrRecordNotFound
		}
		return nil, result.Error
	}
	return &version, nil
}

func (s *modelStore) UpdateDescription(ctx context.Context, name, description string) error {
	result := s.getDB(ctx).WithContext(ctx).Model(&model.Model{}).Where("name = ?", name).Update("description", description)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (s *modelStore) Rename(ctx context.Context, name, newName string) error {
	result := s.getDB(ctx).WithContext(ctx).Model(&model.Model{}).Where("name = ?", name).Update("name", newName)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return ErrDuplicateKey
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (s *modelStore) Delete(ctx context.Context, name string) error {
	m, err := s.Get(ctx, name)
	if err != nil {
		return err
	}

	db := s.getDB(ctx).WithContext(ctx)
	if err := db.Where("model_id = ?", m.ID).Delete(&model.ModelVersion{}).Error; err != nil {
		return err
	}
	return db.Delete(&model.Model{}, "id = ?", m.ID).Error
}

func (s *modelStore) DeleteVersion(ctx context.Context, name, version string) error {
	m, err := s.Get(ctx, name)
	if err != nil {
		return err
	}

	result := s.getDB(ctx).WithContext(ctx).Where("model_id = ? AND version = ?", m.ID, version).Delete(&model.ModelVersion{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (s *modelStore) getDB(ctx context.Context) *gorm.DB {
	tx := FromContext(ctx)
	if tx != nil {
		return tx
	}
	return s.db
}
