package order

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stickspnw/sticks-work-center/internal/entity"
	orderrepo "github.com/stickspnw/sticks-work-center/internal/repository/order"
	"github.com/stickspnw/sticks-work-center/pkg/errorbank"
	"github.com/stickspnw/sticks-work-center/pkg/initials"
)

// CreateAttachmentInput is the request to attach a labelled link to an order.
type CreateAttachmentInput struct {
	Label    string
	URL      string
	Note     string
	Initials string
}

// AddVersionInput is the request to supersede an attachment's current link.
type AddVersionInput struct {
	URL      string
	Note     string
	Initials string
}

// ListAttachments returns the order's active attachments, versions newest
// first.
func (s *Service) ListAttachments(ctx context.Context, orderID string) ([]*entity.Attachment, error) {
	if _, err := s.getForTransition(ctx, orderID); err != nil {
		return nil, err
	}
	atts, err := s.store.ListAttachments(ctx, orderID)
	if err != nil {
		return nil, errorbank.Internal("failed to list attachments", errorbank.WithCause(err))
	}
	s.warnBrokenVersionChains(atts)
	return atts, nil
}

// warnBrokenVersionChains surfaces version chains where no version carries
// is_current; readers fall back to the highest version number, but the row
// needs repair.
func (s *Service) warnBrokenVersionChains(atts []*entity.Attachment) {
	for _, att := range atts {
		if len(att.Versions) == 0 {
			continue
		}
		if _, ok := att.CurrentVersion(); !ok {
			s.logger.Warn("attachment has no current version; falling back to highest version number",
				zap.String("attachment_id", att.ID),
				zap.String("order_id", att.OrderID),
			)
		}
	}
}

// CreateAttachment creates a new labelled attachment with its first version
// already current. Labels are unique per order, archived attachments
// included.
func (s *Service) CreateAttachment(ctx context.Context, orderID string, in CreateAttachmentInput, actorID string) (*entity.Attachment, error) {
	code, ok := initials.Normalize(in.Initials)
	if !ok {
		return nil, errorbank.BadRequest("initials must be 2-3 letters")
	}
	label := strings.TrimSpace(in.Label)
	if label == "" {
		return nil, errorbank.BadRequest("label is required")
	}
	url := strings.TrimSpace(in.URL)
	if url == "" {
		return nil, errorbank.BadRequest("url is required")
	}

	if _, err := s.getForTransition(ctx, orderID); err != nil {
		return nil, err
	}

	now := nowUTC()
	att := &entity.Attachment{
		ID:                uuid.NewString(),
		OrderID:           orderID,
		Label:             label,
		AttachmentType:    entity.AttachmentTypeGoogleLink,
		CreatedByInitials: code,
		CreatedAt:         now,
	}
	v1 := &entity.AttachmentVersion{
		ID:                uuid.NewString(),
		AttachmentID:      att.ID,
		VersionNumber:     1,
		URL:               url,
		Note:              strings.TrimSpace(in.Note),
		IsCurrent:         true,
		CreatedByInitials: code,
		CreatedAt:         now,
	}
	history := &entity.OrderHistory{
		ID:          uuid.NewString(),
		OrderID:     orderID,
		EventType:   entity.EventAttachmentCreated,
		Initials:    code,
		ActorUserID: actorID,
		Summary:     fmt.Sprintf("Attachment added: %s", label),
		Details:     map[string]any{"attachmentId": att.ID, "label": label},
		CreatedAt:   now,
	}

	if err := s.store.CreateAttachment(ctx, att, v1, history); err != nil {
		if errors.Is(err, orderrepo.ErrDuplicateLabel) {
			return nil, errorbank.Conflict(
				"an attachment with this label already exists on the order",
				errorbank.WithDetail("label", label),
			)
		}
		return nil, errorbank.Internal("failed to create attachment", errorbank.WithCause(err))
	}

	att.Versions = []*entity.AttachmentVersion{v1}
	return att, nil
}

// AddVersion appends the next version to an attachment and makes it current.
// Versions are never edited or removed; a correction means another version.
func (s *Service) AddVersion(ctx context.Context, orderID, attachmentID string, in AddVersionInput, actorID string) (*entity.Attachment, error) {
	code, ok := initials.Normalize(in.Initials)
	if !ok {
		return nil, errorbank.BadRequest("initials must be 2-3 letters")
	}
	url := strings.TrimSpace(in.URL)
	if url == "" {
		return nil, errorbank.BadRequest("url is required")
	}

	att, err := s.getAttachment(ctx, orderID, attachmentID)
	if err != nil {
		return nil, err
	}
	if att.IsArchived {
		return nil, errorbank.Conflict("attachment is archived")
	}

	next := 1
	for _, v := range att.Versions {
		if v.VersionNumber >= next {
			next = v.VersionNumber + 1
		}
	}

	now := nowUTC()
	version := &entity.AttachmentVersion{
		ID:                uuid.NewString(),
		AttachmentID:      att.ID,
		VersionNumber:     next,
		URL:               url,
		Note:              strings.TrimSpace(in.Note),
		IsCurrent:         true,
		CreatedByInitials: code,
		CreatedAt:         now,
	}
	history := &entity.OrderHistory{
		ID:          uuid.NewString(),
		OrderID:     orderID,
		EventType:   entity.EventAttachmentVersionAdded,
		Initials:    code,
		ActorUserID: actorID,
		Summary:     fmt.Sprintf("Attachment %s updated to v%d", att.Label, next),
		Details:     map[string]any{"attachmentId": att.ID, "version": next},
		CreatedAt:   now,
	}

	if err := s.store.AddVersion(ctx, version, history); err != nil {
		return nil, errorbank.Internal("failed to add attachment version", errorbank.WithCause(err))
	}

	return s.getAttachment(ctx, orderID, attachmentID)
}

// ArchiveAttachment hides an attachment from listings. The row and its
// versions stay in place and the label stays reserved on the order.
func (s *Service) ArchiveAttachment(ctx context.Context, orderID, attachmentID, rawInitials, actorID string) error {
	code, ok := initials.Normalize(rawInitials)
	if !ok {
		return errorbank.BadRequest("initials must be 2-3 letters")
	}

	att, err := s.getAttachment(ctx, orderID, attachmentID)
	if err != nil {
		return err
	}
	if att.IsArchived {
		return errorbank.Conflict("attachment is already archived")
	}

	history := &entity.OrderHistory{
		ID:          uuid.NewString(),
		OrderID:     orderID,
		EventType:   entity.EventAttachmentArchived,
		Initials:    code,
		ActorUserID: actorID,
		Summary:     fmt.Sprintf("Attachment archived: %s", att.Label),
		Details:     map[string]any{"attachmentId": att.ID, "label": att.Label},
		CreatedAt:   nowUTC(),
	}

	if err := s.store.ArchiveAttachment(ctx, att.ID, history); err != nil {
		return errorbank.Internal("failed to archive attachment", errorbank.WithCause(err))
	}
	return nil
}

func (s *Service) getAttachment(ctx context.Context, orderID, attachmentID string) (*entity.Attachment, error) {
	att, err := s.store.GetAttachment(ctx, orderID, attachmentID)
	if err != nil {
		switch {
		case errors.Is(err, orderrepo.ErrAttachmentNotFound):
			return nil, errorbank.NotFound("attachment not found")
		case errors.Is(err, orderrepo.ErrNotFound):
			return nil, errorbank.NotFound("order not found")
		}
		return nil, errorbank.Internal("failed to load attachment", errorbank.WithCause(err))
	}
	s.warnBrokenVersionChains([]*entity.Attachment{att})
	return att, nil
}
