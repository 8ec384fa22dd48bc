package models

import "time"

// Settings is a singleton row: created with defaults on first read,
// mutated in place afterwards, never deleted.
type Settings struct {
	ID          int    `gorm:"primary_key" json:"id"`
	GarageName  string `gorm:"size:100" json:"garage_name"`
	Address     string `gorm:"size:255" json:"address"`
	Phone       string `gorm:"size:20" json:"phone"`
	Email       string `gorm:"size:100" json:"email"`
	TaxCode     string `gorm:"size:50" json:"tax_code"`
	AccentColor string `gorm:"size:10" json:"accent_color"`

	SyncEnabled bool        `gorm:"default:false" json:"sync_enabled"`
	SyncBackend SyncBackend `gorm:"size:20" json:"sync_backend"`

	FirestoreProjectId string `gorm:"size:100" json:"firestore_project_id"`
	FirestoreAPIKey    string `gorm:"size:255" json:"firestore_api_key"`

	SupabaseURL    string `gorm:"size:255" json:"supabase_url"`
	SupabaseAPIKey string `gorm:"size:255" json:"supabase_api_key"`

	SheetId       string `gorm:"size:255" json:"sheet_id"`
	SheetAPIKey   string `gorm:"size:255" json:"sheet_api_key"`
	SheetWriteURL string `gorm:"size:255" json:"sheet_write_url"`

	MongoDataURL    string `gorm:"size:255" json:"mongo_data_url"`
	MongoAPIKey     string `gorm:"size:255" json:"mongo_api_key"`
	MongoDataSource string `gorm:"size:100" json:"mongo_data_source"`
	MongoDatabase   string `gorm:"size:100" json:"mongo_database"`

	LastSyncTime *time.Time `json:"last_sync_time"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

const DefaultAccentColor = "#1890ff"

func DefaultSettings() *Settings {
	return &Settings{
		AccentColor: DefaultAccentColor,
	}
}

// SettingsPatch carries a partial update; nil fields are left untouched.
type SettingsPatch struct {
	GarageName  *string `json:"garage_name"`
	Address     *string `json:"address"`
	Phone       *string `json:"phone"`
	Email       *string `json:"email"`
	TaxCode     *string `json:"tax_code"`
	AccentColor *string `json:"accent_color"`

	SyncEnabled *bool        `json:"sync_enabled"`
	SyncBackend *SyncBackend `json:"sync_backend"`

	FirestoreProjectId *string `json:"firestore_project_id"`
	FirestoreAPIKey    *string `json:"firestore_api_key"`

	SupabaseURL    *string `json:"supabase_url"`
	SupabaseAPIKey *string `json:"supabase_api_key"`

	SheetId       *string `json:"sheet_id"`
	SheetAPIKey   *string `json:"sheet_api_key"`
	SheetWriteURL *string `json:"sheet_write_url"`

	MongoDataURL    *string `json:"mongo_data_url"`
	MongoAPIKey     *string `json:"mongo_api_key"`
	MongoDataSource *string `json:"mongo_data_source"`
	MongoDatabase   *string `json:"mongo_database"`

	LastSyncTime *time.Time `json:"last_sync_time"`
}

// Apply merges the patch into s.
func (p *SettingsPatch) Apply(s *Settings) {
	setIf(&s.GarageName, p.GarageName)
	setIf(&s.Address, p.Address)
	setIf(&s.Phone, p.Phone)
	setIf(&s.Email, p.Email)
	setIf(&s.TaxCode, p.TaxCode)
	setIf(&s.AccentColor, p.AccentColor)
	if p.SyncEnabled != nil {
		s.SyncEnabled = *p.SyncEnabled
	}
	if p.SyncBackend != nil {
		s.SyncBackend = *p.SyncBackend
	}
	setIf(&s.FirestoreProjectId, p.FirestoreProjectId)
	setIf(&s.FirestoreAPIKey, p.FirestoreAPIKey)
	setIf(&s.SupabaseURL, p.SupabaseURL)
	setIf(&s.SupabaseAPIKey, p.SupabaseAPIKey)
	setIf(&s.SheetId, p.SheetId)
	setIf(&s.SheetAPIKey, p.SheetAPIKey)
	setIf(&s.SheetWriteURL, p.SheetWriteURL)
	setIf(&s.MongoDataURL, p.MongoDataURL)
	setIf(&s.MongoAPIKey, p.MongoAPIKey)
	setIf(&s.MongoDataSource, p.MongoDataSource)
	setIf(&s.MongoDatabase, p.MongoDatabase)
	if p.LastSyncTime != nil {
		s.LastSyncTime = p.LastSyncTime
	}
}

func setIf(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
