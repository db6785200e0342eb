// Package schema provides database schema models for gomi.
//
// Every column is TEXT, so the same statements run against SQLite and
// PostgreSQL. Timestamps use the TimeFormat layout in UTC, dates use
// YYYY-MM-DD and times of day use HH:MM.
package schema

// TimeFormat is the layout of stored timestamps.
const TimeFormat = "2006-01-02T15:04:05Z"

// DDLGenerator defines how Go models generate SQLite DDL.
type DDLGenerator interface {
	// TableDDL returns the CREATE TABLE statement for this model.
	TableDDL() string

	// IndexDDL returns CREATE INDEX statements for this model.
	// Returns empty slice if no indexes needed.
	IndexDDL() []string

	// TableName returns the table name for this model.
	TableName() string
}

// Source is the provenance of ingested data: the schedule document or the
// external item catalogue.
type Source struct {
	SourceID string `db:"source_id" ddl:"TEXT PRIMARY KEY" gorm:"column:source_id;primaryKey;type:text"`

	// SourceType is "pdf" for the schedule document and "web" for the
	// catalogue.
	SourceType string `db:"source_type" ddl:"TEXT NOT NULL" gorm:"column:source_type;type:text;not null"`
	Title      string `db:"title"       ddl:"TEXT NOT NULL" gorm:"column:title;type:text;not null"`
	FilePath   string `db:"file_path"   ddl:"TEXT NOT NULL" gorm:"column:file_path;type:text;not null"`
	URL        string `db:"url"         ddl:"TEXT NOT NULL" gorm:"column:url;type:text;not null"`
	FetchedAt  string `db:"fetched_at"  ddl:"TEXT NOT NULL" gorm:"column:fetched_at;type:text;not null"`
}

// Category is a disposal class with an author-assigned id.
type Category struct {
	CategoryID string `db:"category_id" ddl:"TEXT PRIMARY KEY" gorm:"column:category_id;primaryKey;type:text"`
	Name       string `db:"name"        ddl:"TEXT NOT NULL"    gorm:"column:name;type:text;not null"`

	// DeadlineTime is the same-day cutoff (HH:MM), empty when there is none.
	DeadlineTime         string `db:"deadline_time"         ddl:"TEXT NOT NULL" gorm:"column:deadline_time;type:text;not null"`
	DisposalInstructions string `db:"disposal_instructions" ddl:"TEXT NOT NULL" gorm:"column:disposal_instructions;type:text;not null"`
	SourceID             string `db:"source_id"             ddl:"TEXT NOT NULL REFERENCES sources(source_id)" gorm:"column:source_id;type:text;not null"`
	UpdatedAt            string `db:"updated_at"            ddl:"TEXT NOT NULL" gorm:"column:updated_at;type:text;not null"`

	Source *Source `gorm:"foreignKey:SourceID;references:SourceID"`
}

// Area is a named pickup zone. Its id is derived from the name.
type Area struct {
	AreaID    string `db:"area_id"    ddl:"TEXT PRIMARY KEY" gorm:"column:area_id;primaryKey;type:text"`
	Name      string `db:"name"       ddl:"TEXT NOT NULL"    gorm:"column:name;type:text;not null"`
	SourceID  string `db:"source_id"  ddl:"TEXT NOT NULL REFERENCES sources(source_id)" gorm:"column:source_id;type:text;not null"`
	UpdatedAt string `db:"updated_at" ddl:"TEXT NOT NULL"    gorm:"column:updated_at;type:text;not null"`

	Source *Source `gorm:"foreignKey:SourceID;references:SourceID"`
}

// AreaGroup is a set of areas sharing collection timing.
type AreaGroup struct {
	AreaGroupID string `db:"area_group_id" ddl:"TEXT PRIMARY KEY" gorm:"column:area_group_id;primaryKey;type:text"`
	Name        string `db:"name"          ddl:"TEXT NOT NULL"    gorm:"column:name;type:text;not null"`
	SourceID    string `db:"source_id"     ddl:"TEXT NOT NULL REFERENCES sources(source_id)" gorm:"column:source_id;type:text;not null"`
	UpdatedAt   string `db:"updated_at"    ddl:"TEXT NOT NULL"    gorm:"column:updated_at;type:text;not null"`

	Source *Source `gorm:"foreignKey:SourceID;references:SourceID"`
}

// AreaGroupMember is a membership edge between an area group and an area.
type AreaGroupMember struct {
	AreaGroupID string `db:"area_group_id" ddl:"TEXT NOT NULL REFERENCES area_groups(area_group_id)" gorm:"column:area_group_id;primaryKey;type:text"`
	AreaID      string `db:"area_id"       ddl:"TEXT NOT NULL REFERENCES areas(area_id)"             gorm:"column:area_id;primaryKey;type:text"`

	AreaGroup *AreaGroup `gorm:"foreignKey:AreaGroupID;references:AreaGroupID"`
	Area      *Area      `gorm:"foreignKey:AreaID;references:AreaID"`
}

// ScheduleGroup binds a recurrence rule to a category. The rule is kept
// as its kind and JSON form.
type ScheduleGroup struct {
	ScheduleGroupID string `db:"schedule_group_id" ddl:"TEXT PRIMARY KEY" gorm:"column:schedule_group_id;primaryKey;type:text"`
	CategoryID      string `db:"category_id"       ddl:"TEXT NOT NULL REFERENCES categories(category_id)" gorm:"column:category_id;type:text;not null"`
	Name            string `db:"name"              ddl:"TEXT NOT NULL" gorm:"column:name;type:text;not null"`
	RuleType        string `db:"rule_type"         ddl:"TEXT NOT NULL" gorm:"column:rule_type;type:text;not null"`
	RuleJSON        string `db:"rule_json"         ddl:"TEXT NOT NULL" gorm:"column:rule_json;type:text;not null"`
	Note            string `db:"note"              ddl:"TEXT NOT NULL" gorm:"column:note;type:text;not null"`
	SourceID        string `db:"source_id"         ddl:"TEXT NOT NULL REFERENCES sources(source_id)" gorm:"column:source_id;type:text;not null"`
	UpdatedAt       string `db:"updated_at"        ddl:"TEXT NOT NULL" gorm:"column:updated_at;type:text;not null"`

	Category *Category `gorm:"foreignKey:CategoryID;references:CategoryID"`
	Source   *Source   `gorm:"foreignKey:SourceID;references:SourceID"`
}

// AreaGroupScheduleLink states that an area group follows a schedule
// group.
type AreaGroupScheduleLink struct {
	AreaGroupID     string `db:"area_group_id"     ddl:"TEXT NOT NULL REFERENCES area_groups(area_group_id)"         gorm:"column:area_group_id;primaryKey;type:text"`
	ScheduleGroupID string `db:"schedule_group_id" ddl:"TEXT NOT NULL REFERENCES schedule_groups(schedule_group_id)" gorm:"column:schedule_group_id;primaryKey;type:text"`

	AreaGroup     *AreaGroup     `gorm:"foreignKey:AreaGroupID;references:AreaGroupID"`
	ScheduleGroup *ScheduleGroup `gorm:"foreignKey:ScheduleGroupID;references:ScheduleGroupID"`
}

// CollectionEvent is one pickup of a category in an area on a date.
// There is at most one event per (area, category, date).
type CollectionEvent struct {
	AreaID         string `db:"area_id"         ddl:"TEXT NOT NULL REFERENCES areas(area_id)"           gorm:"column:area_id;primaryKey;type:text"`
	CategoryID     string `db:"category_id"     ddl:"TEXT NOT NULL REFERENCES categories(category_id)"  gorm:"column:category_id;primaryKey;type:text"`
	CollectionDate string `db:"collection_date" ddl:"TEXT NOT NULL"                                     gorm:"column:collection_date;primaryKey;type:text"`
	DeadlineTime   string `db:"deadline_time"   ddl:"TEXT NOT NULL"                                     gorm:"column:deadline_time;type:text;not null"`
	Note           string `db:"note"            ddl:"TEXT NOT NULL"                                     gorm:"column:note;type:text;not null"`
	SourceID       string `db:"source_id"       ddl:"TEXT NOT NULL REFERENCES sources(source_id)"       gorm:"column:source_id;type:text;not null;index:idx_events_source"`

	Area     *Area     `gorm:"foreignKey:AreaID;references:AreaID"`
	Category *Category `gorm:"foreignKey:CategoryID;references:CategoryID"`
	Source   *Source   `gorm:"foreignKey:SourceID;references:SourceID"`
}

// Item maps a catalogue item name to a category.
type Item struct {
	ItemID string `db:"item_id" ddl:"TEXT PRIMARY KEY" gorm:"column:item_id;primaryKey;type:text"`
	Name   string `db:"name"    ddl:"TEXT NOT NULL"    gorm:"column:name;type:text;not null"`

	// NameNorm is the normalized name, unique across items.
	NameNorm   string `db:"name_norm"   ddl:"TEXT NOT NULL UNIQUE" gorm:"column:name_norm;type:text;not null;uniqueIndex:uq_items_name_norm"`
	CategoryID string `db:"category_id" ddl:"TEXT NOT NULL REFERENCES categories(category_id)" gorm:"column:category_id;type:text;not null"`
	Note       string `db:"note"        ddl:"TEXT NOT NULL" gorm:"column:note;type:text;not null"`
	SourceID   string `db:"source_id"   ddl:"TEXT NOT NULL REFERENCES sources(source_id)" gorm:"column:source_id;type:text;not null"`
	SourceURL  string `db:"source_url"  ddl:"TEXT NOT NULL" gorm:"column:source_url;type:text;not null"`
	FetchedAt  string `db:"fetched_at"  ddl:"TEXT NOT NULL" gorm:"column:fetched_at;type:text;not null"`
	UpdatedAt  string `db:"updated_at"  ddl:"TEXT NOT NULL" gorm:"column:updated_at;type:text;not null"`

	Category *Category `gorm:"foreignKey:CategoryID;references:CategoryID"`
	Source   *Source   `gorm:"foreignKey:SourceID;references:SourceID"`
}

// ItemAlias is an alternative normalized name of an item. An alias
// resolves to exactly one item.
type ItemAlias struct {
	ItemID    string `db:"item_id"    ddl:"TEXT NOT NULL REFERENCES items(item_id)" gorm:"column:item_id;primaryKey;type:text"`
	AliasNorm string `db:"alias_norm" ddl:"TEXT NOT NULL UNIQUE"                    gorm:"column:alias_norm;primaryKey;type:text;uniqueIndex:uq_item_aliases_alias_norm"`

	Item *Item `gorm:"foreignKey:ItemID;references:ItemID"`
}
