package store

import (
	"gorm.io/gorm"
)

type BaseQuerier struct {
	QueryFn []func(tx *gorm.DB) *gorm.DB
}

type ModelQueryFilter BaseQuerier

func NewModelQueryFilter() *ModelQueryFilter {
	return &ModelQueryFilter{QueryFn: make([]func(tx *gorm.DB) *gorm.DB, 0)}
}

func (f *ModelQueryFilter) ByName(name string) *ModelQueryFilter {
	f.QueryFn = append(f.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("name = ?", name)
	})
	return f
}

func (f *ModelQueryFilter) ByRuntime(runtime string) *ModelQueryFilter {
	f.QueryFn = append(f.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("runtime = ?", runtime)
	})
	return f
}

func (f *ModelQueryFilter) ByModelType(modelType string) *ModelQueryFilter {
	f.QueryFn = append(f.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("model_type = ?", modelType)
	})
	return f
}
