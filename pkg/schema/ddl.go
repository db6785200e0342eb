package schema

import (
	"fmt"
	"reflect"
	"strings"
)

// generateDDL creates a CREATE TABLE statement from struct tags. Table
// level constraints (composite keys) are appended after the columns.
func generateDDL(model any, tableName string, constraints ...string) string {
	v := reflect.ValueOf(model)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	t := v.Type()

	var columns []string

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		dbTag := field.Tag.Get("db")
		ddlTag := field.Tag.Get("ddl")

		if dbTag != "" && ddlTag != "" {
			columns = append(columns, fmt.Sprintf("    %s %s", dbTag, ddlTag))
		}
	}
	for _, c := range constraints {
		columns = append(columns, "    "+c)
	}

	ddl := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n%s\n);",
		tableName,
		strings.Join(columns, ",\n"))

	return ddl
}

// Columns returns the db column names of a model in declaration order.
func Columns(model any) []string {
	t := reflect.TypeOf(model)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	var res []string
	for i := 0; i < t.NumField(); i++ {
		if col := t.Field(i).Tag.Get("db"); col != "" {
			res = append(res, col)
		}
	}
	return res
}

// Source DDL methods
func (s Source) TableDDL() string {
	return generateDDL(s, s.TableName())
}

func (s Source) IndexDDL() []string {
	return []string{}
}

func (s Source) TableName() string {
	return "sources"
}

// Category DDL methods
func (c Category) TableDDL() string {
	return generateDDL(c, c.TableName())
}

func (c Category) IndexDDL() []string {
	return []string{}
}

func (c Category) TableName() string {
	return "categories"
}

// Area DDL methods
func (a Area) TableDDL() string {
	return generateDDL(a, a.TableName())
}

func (a Area) IndexDDL() []string {
	return []string{}
}

func (a Area) TableName() string {
	return "areas"
}

// AreaGroup DDL methods
func (ag AreaGroup) TableDDL() string {
	return generateDDL(ag, ag.TableName())
}

func (ag AreaGroup) IndexDDL() []string {
	return []string{}
}

func (ag AreaGroup) TableName() string {
	return "area_groups"
}

// AreaGroupMember DDL methods
func (m AreaGroupMember) TableDDL() string {
	return generateDDL(m, m.TableName(), "PRIMARY KEY (area_group_id, area_id)")
}

func (m AreaGroupMember) IndexDDL() []string {
	return []string{
		"CREATE INDEX IF NOT EXISTS idx_area_group_members_area ON area_group_members(area_id);",
	}
}

func (m AreaGroupMember) TableName() string {
	return "area_group_members"
}

// ScheduleGroup DDL methods
func (sg ScheduleGroup) TableDDL() string {
	return generateDDL(sg, sg.TableName())
}

func (sg ScheduleGroup) IndexDDL() []string {
	return []string{}
}

func (sg ScheduleGroup) TableName() string {
	return "schedule_groups"
}

// AreaGroupScheduleLink DDL methods
func (l AreaGroupScheduleLink) TableDDL() string {
	return generateDDL(l, l.TableName(),
		"PRIMARY KEY (area_group_id, schedule_group_id)")
}

func (l AreaGroupScheduleLink) IndexDDL() []string {
	return []string{}
}

func (l AreaGroupScheduleLink) TableName() string {
	return "area_group_schedule_links"
}

// CollectionEvent DDL methods
func (e CollectionEvent) TableDDL() string {
	return generateDDL(e, e.TableName(),
		"PRIMARY KEY (area_id, category_id, collection_date)")
}

func (e CollectionEvent) IndexDDL() []string {
	return []string{
		"CREATE INDEX IF NOT EXISTS idx_events_source ON collection_events(source_id);",
	}
}

func (e CollectionEvent) TableName() string {
	return "collection_events"
}

// Item DDL methods
func (i Item) TableDDL() string {
	return generateDDL(i, i.TableName())
}

func (i Item) IndexDDL() []string {
	return []string{
		"CREATE INDEX IF NOT EXISTS idx_items_category ON items(category_id);",
	}
}

func (i Item) TableName() string {
	return "items"
}

// ItemAlias DDL methods
func (a ItemAlias) TableDDL() string {
	return generateDDL(a, a.TableName(), "PRIMARY KEY (item_id, alias_norm)")
}

func (a ItemAlias) IndexDDL() []string {
	return []string{}
}

func (a ItemAlias) TableName() string {
	return "item_aliases"
}
