package models

import (
	"time"

	"github.com/google/uuid"
)

// Category is the closed set of game titles a submission can be filed under.
type Category string

const (
	CategoryVAL  Category = "VAL"
	CategoryCSG  Category = "CSG"
	CategoryAPEX Category = "APEX"
	CategoryOW   Category = "OW"
)

// Categories lists every supported title, in the order shown to reviewers.
var Categories = []Category{CategoryVAL, CategoryCSG, CategoryAPEX, CategoryOW}

// Valid reports whether c is one of the supported titles.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Role is an ordered trust level. Higher levels may do everything lower
// levels may.
type Role string

const (
	RoleBase          Role = "base"
	RoleTrusted       Role = "trusted"
	RoleModerator     Role = "moderator"
	RoleAdministrator Role = "administrator"
)

var roleLevels = map[Role]int{
	RoleBase:          0,
	RoleTrusted:       1,
	RoleModerator:     2,
	RoleAdministrator: 3,
}

// Level returns the numeric rank of the role. Unknown roles rank below base.
func (r Role) Level() int {
	if lvl, ok := roleLevels[r]; ok {
		return lvl
	}
	return -1
}

// AtLeast reports whether r ranks at or above min.
func (r Role) AtLeast(min Role) bool {
	return r.Level() >= min.Level()
}

// User is owned by the account system; this service only reads it.
type User struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Username    string    `gorm:"uniqueIndex;not null" json:"username"`
	Role        Role      `gorm:"type:varchar(16);not null;default:'base'" json:"role"`
	Blacklisted bool      `gorm:"not null;default:false" json:"blacklisted"`
	CreatedAt   time.Time `json:"created_at"`
}

// Submission is one user-provided video pending, under, or after analysis.
type Submission struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID          uuid.UUID `gorm:"type:uuid;not null;index" json:"owner_id"`
	SourceURL        string    `gorm:"uniqueIndex;not null" json:"source_url"`
	SelectedEncoding string    `gorm:"not null" json:"selected_encoding"`
	Category         Category  `gorm:"type:varchar(8);not null" json:"category"`
	IsAnalyzed       bool      `gorm:"not null;default:false" json:"is_analyzed"`
	IsParsed         bool      `gorm:"not null;default:false" json:"is_parsed"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`

	Owner *User  `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Clips []Clip `gorm:"foreignKey:SubmissionID;constraint:OnDelete:CASCADE" json:"clips,omitempty"`
	Votes []Vote `gorm:"foreignKey:SubmissionID;constraint:OnDelete:CASCADE" json:"votes,omitempty"`
}

// Clip is the durable copy of one segment the analyzer produced for a
// submission. Immutable after creation.
type Clip struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SubmissionID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_clips_submission_label" json:"submission_id"`
	// Label is the analyzer's segment directory name. The uniqueness of
	// (submission, label) is what keeps re-collection from duplicating clips.
	Label      string    `gorm:"not null;uniqueIndex:idx_clips_submission_label" json:"label"`
	StorageRef string    `gorm:"not null" json:"storage_ref"`
	CreatedAt  time.Time `json:"created_at"`
}

// Vote is one reviewer's judgment on a submission.
type Vote struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SubmissionID      uuid.UUID `gorm:"type:uuid;not null;index" json:"submission_id"`
	ReviewerID        uuid.UUID `gorm:"type:uuid;not null;index" json:"reviewer_id"`
	IsCorrectCategory bool      `gorm:"not null" json:"is_correct_category"`
	ProposedCategory  Category  `gorm:"type:varchar(8);not null" json:"proposed_category"`
	CreatedAt         time.Time `json:"created_at"`
}
