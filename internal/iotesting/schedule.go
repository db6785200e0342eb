package iotesting

// ScheduleYAML is a small schedule document for April 2025. 2025-04-01
// is a Tuesday.
//
//   - ag_north (本町1丁目, 本町2丁目): burnable MON/THU, pet 2nd and 4th WED
//   - ag_south (末松1丁目, 本町2丁目): burnable MON, large on 2025-04-16
//
// 本町2丁目 belongs to both groups, so its Monday burnable events come
// from two links and must be stored once.
const ScheduleYAML = `
sources:
  pdf:
    title: 令和7年度 野々市市ごみ収集日程表
    file_path: data/manual/schedule_r7.pdf
    fetched_at: "2025-03-20T09:00:00Z"

effective_start: 2025-04-01
effective_end: 2025-04-30

categories:
  - id: burnable
    name: 燃やすごみ
    deadline_time: "08:00"
    disposal_instructions: 指定袋に入れて出してください
  - id: pet
    name: ペットボトル
    deadline_time: "07:00"
  - id: large
    name: 粗大ごみ

area_groups:
  - id: ag_north
    name: 北地区
    areas: [本町1丁目, 本町2丁目]
  - id: ag_south
    name: 南地区
    areas: [末松1丁目, 本町2丁目]

schedule_groups:
  - id: sg_burn_mon_thu
    category_id: burnable
    name: 燃やすごみ 月・木
    rule:
      type: weekly
      weekdays: [MON, THU]
    notes: [祝日も収集します]
  - id: sg_burn_mon
    category_id: burnable
    name: 燃やすごみ 月
    rule:
      type: weekly
      weekdays: [MON]
  - id: sg_pet_2_4_wed
    category_id: pet
    name: ペットボトル 第2・第4水曜
    rule:
      type: monthly_multiple_nth_weekday
      weekday: WED
      nth: [2, 4]
    note: キャップを外してください
  - id: sg_large
    category_id: large
    name: 粗大ごみ
    rule:
      type: month_dates
      months:
        "2025-04": [16]

area_group_schedule_links:
  - area_group_id: ag_north
    schedules:
      - {schedule_id: sg_burn_mon_thu, category_id: burnable}
      - {schedule_id: sg_pet_2_4_wed, category_id: pet}
  - area_group_id: ag_south
    schedules:
      - {schedule_id: sg_burn_mon, category_id: burnable}
      - {schedule_id: sg_large, category_id: large}

item_aliases:
  - item: ペットボトル
    aliases: [ペット, PETボトル]
`

// CatalogueCSV is a raw item catalogue matching ScheduleYAML. It has a
// UTF-8 BOM, an excluded category and a full-width duplicate name.
const CatalogueCSV = "\uFEFFitem_name,category,note\n" +
	"ペットボトル,ペットボトル,キャップは燃やすごみ\n" +
	"ペットボトルキャップ,燃やすごみ,\n" +
	"ペットボトル（汚れたもの）,燃やすごみ,洗っても落ちないもの\n" +
	"ソファー,粗大ごみ,\n" +
	"生ごみ,燃やすごみ,水を切って\n" +
	"消火器,自己処理,販売店へ\n" +
	"ＰＥＴボトル,ペットボトル,\n"
