package entity

import (
	"time"

	"github.com/uptrace/bun"
)

// AttachmentTypeGoogleLink is the only attachment type currently stored.
const AttachmentTypeGoogleLink = "GOOGLE_LINK"

// Attachment is a labelled reference link owned by one order. The label is
// unique within the order, archived or not.
type Attachment struct {
	bun.BaseModel `bun:"table:attachments"`

	ID                string    `bun:",pk"`
	OrderID           string    `bun:"order_id,notnull"`
	Label             string    `bun:"label,notnull"`
	AttachmentType    string    `bun:"attachment_type,notnull"`
	CreatedByInitials string    `bun:"created_by_initials,notnull"`
	IsArchived        bool      `bun:"is_archived,notnull,default:false"`
	CreatedAt         time.Time `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`

	Versions []*AttachmentVersion `bun:"rel:has-many,join:id=attachment_id"`
}

// CurrentVersion resolves the authoritative version. Exactly one version
// carries is_current; falling back to the highest version number signals a
// data-integrity bug.
func (a *Attachment) CurrentVersion() (*AttachmentVersion, bool) {
	var highest *AttachmentVersion
	for _, v := range a.Versions {
		if v.IsCurrent {
			return v, true
		}
		if highest == nil || v.VersionNumber > highest.VersionNumber {
			highest = v
		}
	}
	return highest, false
}

// AttachmentVersion is one immutable entry in an attachment's version chain.
type AttachmentVersion struct {
	bun.BaseModel `bun:"table:attachment_versions"`

	ID                string    `bun:",pk"`
	AttachmentID      string    `bun:"attachment_id,notnull"`
	VersionNumber     int       `bun:"version_number,notnull"`
	URL               string    `bun:"url,notnull"`
	Note              string    `bun:"note"`
	IsCurrent         bool      `bun:"is_current,notnull,default:false"`
	CreatedByInitials string    `bun:"created_by_initials,notnull"`
	CreatedAt         time.Time `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
}
