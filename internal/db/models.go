package db

import (
	"encoding/json"
	"time"
)

// Story maps discussions.stories. One row per discussion item on a platform,
// keyed by (platform, platform_item_id). The derived columns (canonical_url,
// normalized_title, normalized_tags, category) are recomputed on every save.
type Story struct {
	StoryID         int64           `gorm:"column:story_id;primaryKey;autoIncrement"`
	Platform        string          `gorm:"column:platform;type:text;not null;uniqueIndex:ux_stories_platform_item,priority:1"`
	PlatformItemID  string          `gorm:"column:platform_item_id;type:text;not null;uniqueIndex:ux_stories_platform_item,priority:2"`
	Title           string          `gorm:"column:title;type:text;not null"`
	NormalizedTitle string          `gorm:"column:normalized_title;type:text;not null"`
	Scheme          string          `gorm:"column:scheme;type:text;not null;default:''"`
	SchemelessURL   string          `gorm:"column:schemeless_url;type:text;not null;default:''"`
	CanonicalURL    string          `gorm:"column:canonical_url;type:text;not null;default:'';index"`
	Tags            json.RawMessage `gorm:"column:tags;type:jsonb;not null;default:'[]'"`
	NormalizedTags  json.RawMessage `gorm:"column:normalized_tags;type:jsonb;not null;default:'[]'"`
	Category        string          `gorm:"column:category;type:text;not null;default:article"`
	CommentCount    int             `gorm:"column:comment_count;type:integer;not null;default:0"`
	Score           int             `gorm:"column:score;type:integer;not null;default:0"`
	Language        string          `gorm:"column:language;type:text;not null;default:und"`
	StoryCreatedAt  time.Time       `gorm:"column:story_created_at;type:timestamptz;not null"`
	CreatedAt       time.Time       `gorm:"column:created_at;type:timestamptz;not null;default:now()"`
	UpdatedAt       time.Time       `gorm:"column:updated_at;type:timestamptz;not null;default:now()"`
}

func (Story) TableName() string { return "discussions.stories" }

// Resource maps discussions.resources. A resource is the linked page itself,
// keyed by its canonical URL, carrying metadata extracted from the page HTML.
type Resource struct {
	ResourceID      int64      `gorm:"column:resource_id;primaryKey;autoIncrement"`
	CanonicalURL    string     `gorm:"column:canonical_url;type:text;not null;unique"`
	Title           string     `gorm:"column:title;type:text;not null;default:''"`
	CleanTitle      string     `gorm:"column:clean_title;type:text;not null;default:''"`
	Author          string     `gorm:"column:author;type:text;not null;default:''"`
	LastProcessedAt *time.Time `gorm:"column:last_processed_at;type:timestamptz"`
	CreatedAt       time.Time  `gorm:"column:created_at;type:timestamptz;not null;default:now()"`
	UpdatedAt       time.Time  `gorm:"column:updated_at;type:timestamptz;not null;default:now()"`
}

func (Resource) TableName() string { return "discussions.resources" }

// ResourceLink maps discussions.resource_links: an outbound link from one
// canonical URL to another, forming the inbound-link graph.
type ResourceLink struct {
	FromCanonicalURL string    `gorm:"column:from_canonical_url;type:text;primaryKey"`
	ToCanonicalURL   string    `gorm:"column:to_canonical_url;type:text;primaryKey;index"`
	Anchor           string    `gorm:"column:anchor;type:text;not null;default:''"`
	CreatedAt        time.Time `gorm:"column:created_at;type:timestamptz;not null;default:now()"`
}

func (ResourceLink) TableName() string { return "discussions.resource_links" }

// MentionRule maps discussions.mention_rules.
type MentionRule struct {
	RuleID            int64           `gorm:"column:rule_id;primaryKey;autoIncrement"`
	BaseURL           string          `gorm:"column:base_url;type:text;not null;default:''"`
	Keywords          json.RawMessage `gorm:"column:keywords;type:jsonb;not null;default:'[]'"`
	Platforms         json.RawMessage `gorm:"column:platforms;type:jsonb;not null;default:'[]'"`
	SubredditsInclude json.RawMessage `gorm:"column:subreddits_include;type:jsonb;not null;default:'[]'"`
	SubredditsExclude json.RawMessage `gorm:"column:subreddits_exclude;type:jsonb;not null;default:'[]'"`
	MinComments       int             `gorm:"column:min_comments;type:integer;not null;default:0"`
	MinScore          int             `gorm:"column:min_score;type:integer;not null;default:0"`
	Disabled          bool            `gorm:"column:disabled;type:boolean;not null;default:false"`
	CreatedAt         time.Time       `gorm:"column:created_at;type:timestamptz;not null;default:now()"`
	UpdatedAt         time.Time       `gorm:"column:updated_at;type:timestamptz;not null;default:now()"`
}

func (MentionRule) TableName() string { return "discussions.mention_rules" }

// MentionNotification maps discussions.mention_notifications. At most one
// notification exists per (rule, story).
type MentionNotification struct {
	NotificationID int64     `gorm:"column:notification_id;primaryKey;autoIncrement"`
	RuleID         int64     `gorm:"column:rule_id;type:bigint;not null;uniqueIndex:ux_notifications_rule_story,priority:1"`
	StoryID        int64     `gorm:"column:story_id;type:bigint;not null;uniqueIndex:ux_notifications_rule_story,priority:2"`
	CreatedAt      time.Time `gorm:"column:created_at;type:timestamptz;not null;default:now()"`
}

func (MentionNotification) TableName() string { return "discussions.mention_notifications" }

func autoMigrateModels() []any {
	return []any{
		&Story{},
		&Resource{},
		&ResourceLink{},
		&MentionRule{},
		&MentionNotification{},
	}
}
