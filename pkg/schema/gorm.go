package schema

import (
	"gorm.io/gorm"
)

// AllModels returns all schema models for GORM AutoMigrate, parents
// before children.
func AllModels() []any {
	return []any{
		&Source{},
		&Category{},
		&Area{},
		&AreaGroup{},
		&AreaGroupMember{},
		&ScheduleGroup{},
		&AreaGroupScheduleLink{},
		&CollectionEvent{},
		&Item{},
		&ItemAlias{},
	}
}

// AllTables returns DDL generators of all tables, parents before children.
func AllTables() []DDLGenerator {
	return []DDLGenerator{
		Source{},
		Category{},
		Area{},
		AreaGroup{},
		AreaGroupMember{},
		ScheduleGroup{},
		AreaGroupScheduleLink{},
		CollectionEvent{},
		Item{},
		ItemAlias{},
	}
}

// Migrate runs GORM AutoMigrate to create or update schema.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(AllModels()...)
}
