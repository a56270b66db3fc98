package catalog

import "github.com/heartmarshall/learnsync/internal/domain"

// Course is the schema of the courses table.
var Course = Kind{
	Type:  domain.EntityTypeCourse,
	Table: "courses",
	Fields: []Field{
		{Name: "title", Column: "title", Kind: FieldString, Required: true, Rule: "min=1,max=200"},
		{Name: "description", Column: "description", Kind: FieldString},
		{Name: "difficulty_level", Column: "difficulty_level", Kind: FieldString, Rule: "max=20"},
		{Name: "points_available", Column: "points_available", Kind: FieldInt, Rule: "gte=0"},
		{Name: "is_offline_available", Column: "is_offline_available", Kind: FieldBool},
	},
}

// Lesson is the schema of the lessons table.
var Lesson = Kind{
	Type:  domain.EntityTypeLesson,
	Table: "lessons",
	Fields: []Field{
		{Name: "course_id", Column: "course_id", Kind: FieldInt, Required: true, Rule: "gt=0"},
		{Name: "title", Column: "title", Kind: FieldString, Required: true, Rule: "min=1,max=200"},
		{Name: "content", Column: "content", Kind: FieldString},
		{Name: "order", Column: "sort_order", Kind: FieldInt, Rule: "gte=0"},
		{Name: "estimated_time", Column: "estimated_time", Kind: FieldInt, Rule: "gte=0"},
		{Name: "points", Column: "points", Kind: FieldInt, Rule: "gte=0"},
		{Name: "video_url", Column: "video_url", Kind: FieldString, Nullable: true, Rule: "omitempty,url"},
		{Name: "content_type", Column: "content_type", Kind: FieldString, Rule: "oneof=text video pdf audio interactive"},
	},
}

// Badge is the schema of the badges table.
var Badge = Kind{
	Type:  domain.EntityTypeBadge,
	Table: "badges",
	Fields: []Field{
		{Name: "name", Column: "name", Kind: FieldString, Required: true, Rule: "min=1,max=100"},
		{Name: "description", Column: "description", Kind: FieldString},
		{Name: "image_url", Column: "image_url", Kind: FieldString, Nullable: true, Rule: "omitempty,url"},
		{Name: "points_required", Column: "points_required", Kind: FieldInt, Rule: "gte=0"},
	},
}

// Achievement is the schema of the achievements table.
var Achievement = Kind{
	Type:  domain.EntityTypeAchievement,
	Table: "achievements",
	Fields: []Field{
		{Name: "name", Column: "name", Kind: FieldString, Required: true, Rule: "min=1,max=100"},
		{Name: "description", Column: "description", Kind: FieldString},
		{Name: "badge_id", Column: "badge_id", Kind: FieldInt, Required: true, Rule: "gt=0"},
		{Name: "course_id", Column: "course_id", Kind: FieldInt, Nullable: true, Rule: "gt=0"},
		{Name: "points", Column: "points", Kind: FieldInt, Rule: "gte=0"},
	},
}

// Kinds lists every syncable kind in the order sync queues are built.
func Kinds() []Kind {
	return []Kind{Course, Lesson, Badge, Achievement}
}
