package entity

import (
	"time"

	"github.com/uptrace/bun"
)

// Audit actions recorded in the general audit log. This log is best-effort
// and distinct from the per-order history.
const (
	AuditUserCreated            = "USER_CREATED"
	AuditUserStatusChanged      = "USER_STATUS_CHANGED"
	AuditUserRoleChanged        = "USER_ROLE_CHANGED"
	AuditUserPasswordReset      = "USER_PASSWORD_RESET"
	AuditUserDeleted            = "USER_DELETED"
	AuditCustomerArchived       = "CUSTOMER_ARCHIVED"
	AuditOrderDeleted           = "ORDER_DELETED"
	AuditOrdersExportedComplete = "ORDERS_EXPORTED_COMPLETED"
	AuditBrandingChanged        = "BRANDING_CHANGED"
)

// AuditLog is a general, best-effort audit trail entry.
type AuditLog struct {
	bun.BaseModel `bun:"table:audit_logs"`

	ID           string         `bun:",pk"`
	Action       string         `bun:"action,notnull"`
	Initials     string         `bun:"initials"`
	ActorUserID  string         `bun:"actor_user_id,notnull"`
	TargetUserID string         `bun:"target_user_id"`
	Details      map[string]any `bun:"details,type:jsonb"`
	CreatedAt    time.Time      `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`

	ActorUser *User `bun:"rel:belongs-to,join:actor_user_id=id"`
}
