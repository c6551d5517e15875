package order

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/stickspnw/sticks-work-center/internal/entity"
	orderrepo "github.com/stickspnw/sticks-work-center/internal/repository/order"
	"github.com/stickspnw/sticks-work-center/pkg/errorbank"
)

func TestCreateAttachmentFirstVersionIsCurrent(t *testing.T) {
	var att *entity.Attachment
	var v1 *entity.AttachmentVersion
	var history *entity.OrderHistory
	store := &storeStub{
		GetLiteFunc: func(_ context.Context, id string) (*entity.Order, error) {
			return &entity.Order{ID: id, Status: entity.OrderStatusWIP}, nil
		},
		CreateAttachmentFunc: func(_ context.Context, a *entity.Attachment, v *entity.AttachmentVersion, h *entity.OrderHistory) error {
			att, v1, history = a, v, h
			return nil
		},
	}
	svc := newTestService(store)

	out, err := svc.CreateAttachment(context.Background(), "ord-1", CreateAttachmentInput{
		Label:    "  Design Doc ",
		URL:      "https://docs.google.com/d/abc",
		Note:     "first draft",
		Initials: "jw",
	}, "user-1")
	require.NoError(t, err)

	require.NotNil(t, att)
	assert.Equal(t, "Design Doc", att.Label)
	assert.Equal(t, entity.AttachmentTypeGoogleLink, att.AttachmentType)
	assert.Equal(t, "JW", att.CreatedByInitials)

	require.NotNil(t, v1)
	assert.Equal(t, 1, v1.VersionNumber)
	assert.True(t, v1.IsCurrent)
	assert.Equal(t, "first draft", v1.Note)

	require.NotNil(t, history)
	assert.Equal(t, entity.EventAttachmentCreated, history.EventType)

	current, ok := out.CurrentVersion()
	require.True(t, ok)
	assert.Equal(t, 1, current.VersionNumber)
}

func TestCreateAttachmentDuplicateLabelConflicts(t *testing.T) {
	store := &storeStub{
		GetLiteFunc: func(_ context.Context, id string) (*entity.Order, error) {
			return &entity.Order{ID: id, Status: entity.OrderStatusWIP}, nil
		},
		CreateAttachmentFunc: func(context.Context, *entity.Attachment, *entity.AttachmentVersion, *entity.OrderHistory) error {
			return orderrepo.ErrDuplicateLabel
		},
	}
	svc := newTestService(store)

	_, err := svc.CreateAttachment(context.Background(), "ord-1", CreateAttachmentInput{
		Label:    "Design Doc",
		URL:      "https://docs.google.com/d/abc",
		Initials: "JW",
	}, "user-1")
	require.Error(t, err)
	assert.Equal(t, errorbank.KindConflict, errorbank.From(err).Kind())
}

func TestAddVersionComputesNextNumber(t *testing.T) {
	existing := &entity.Attachment{
		ID:      "att-1",
		OrderID: "ord-1",
		Label:   "Design Doc",
		Versions: []*entity.AttachmentVersion{
			{ID: "v3", VersionNumber: 3, IsCurrent: true},
			{ID: "v2", VersionNumber: 2},
			{ID: "v1", VersionNumber: 1},
		},
	}
	var added *entity.AttachmentVersion
	store := &storeStub{
		GetAttachmentFunc: func(_ context.Context, orderID, attachmentID string) (*entity.Attachment, error) {
			return existing, nil
		},
		AddVersionFunc: func(_ context.Context, version *entity.AttachmentVersion, _ *entity.OrderHistory) error {
			added = version
			return nil
		},
	}
	svc := newTestService(store)

	_, err := svc.AddVersion(context.Background(), "ord-1", "att-1", AddVersionInput{
		URL:      "https://docs.google.com/d/def",
		Initials: "KT",
	}, "user-1")
	require.NoError(t, err)

	require.NotNil(t, added)
	assert.Equal(t, 4, added.VersionNumber)
	assert.True(t, added.IsCurrent)
	assert.Equal(t, "att-1", added.AttachmentID)
}

func TestAddVersionRejectsArchivedAttachment(t *testing.T) {
	store := &storeStub{
		GetAttachmentFunc: func(context.Context, string, string) (*entity.Attachment, error) {
			return &entity.Attachment{ID: "att-1", IsArchived: true}, nil
		},
	}
	svc := newTestService(store)

	_, err := svc.AddVersion(context.Background(), "ord-1", "att-1", AddVersionInput{
		URL:      "https://docs.google.com/d/def",
		Initials: "KT",
	}, "user-1")
	require.Error(t, err)
	assert.Equal(t, errorbank.KindConflict, errorbank.From(err).Kind())
}

func TestAddVersionUnknownAttachment(t *testing.T) {
	store := &storeStub{
		GetAttachmentFunc: func(context.Context, string, string) (*entity.Attachment, error) {
			return nil, orderrepo.ErrAttachmentNotFound
		},
	}
	svc := newTestService(store)

	_, err := svc.AddVersion(context.Background(), "ord-1", "att-x", AddVersionInput{
		URL:      "https://docs.google.com/d/def",
		Initials: "KT",
	}, "user-1")
	require.Error(t, err)
	assert.Equal(t, errorbank.KindNotFound, errorbank.From(err).Kind())
}

func TestArchiveAttachmentTwiceConflicts(t *testing.T) {
	store := &storeStub{
		GetAttachmentFunc: func(context.Context, string, string) (*entity.Attachment, error) {
			return &entity.Attachment{ID: "att-1", IsArchived: true}, nil
		},
	}
	svc := newTestService(store)

	err := svc.ArchiveAttachment(context.Background(), "ord-1", "att-1", "JW", "user-1")
	require.Error(t, err)
	assert.Equal(t, errorbank.KindConflict, errorbank.From(err).Kind())
}

func TestCurrentVersionFallsBackToHighest(t *testing.T) {
	att := &entity.Attachment{
		Versions: []*entity.AttachmentVersion{
			{ID: "v2", VersionNumber: 2},
			{ID: "v1", VersionNumber: 1},
		},
	}
	current, ok := att.CurrentVersion()
	assert.False(t, ok)
	require.NotNil(t, current)
	assert.Equal(t, 2, current.VersionNumber)
}

func TestListAttachmentsWarnsOnBrokenVersionChain(t *testing.T) {
	store := &storeStub{
		GetLiteFunc: func(_ context.Context, id string) (*entity.Order, error) {
			return &entity.Order{ID: id, Status: entity.OrderStatusWIP}, nil
		},
		ListAttachmentsFunc: func(context.Context, string) ([]*entity.Attachment, error) {
			return []*entity.Attachment{
				{
					ID:      "att-broken",
					OrderID: "ord-1",
					Versions: []*entity.AttachmentVersion{
						{ID: "v2", VersionNumber: 2},
						{ID: "v1", VersionNumber: 1},
					},
				},
				{
					ID:      "att-healthy",
					OrderID: "ord-1",
					Versions: []*entity.AttachmentVersion{
						{ID: "v1", VersionNumber: 1, IsCurrent: true},
					},
				},
			}, nil
		},
	}
	core, logs := observer.New(zap.WarnLevel)
	svc := newTestService(store)
	svc.logger = zap.New(core)

	atts, err := svc.ListAttachments(context.Background(), "ord-1")
	require.NoError(t, err)
	require.Len(t, atts, 2)

	entries := logs.FilterMessageSnippet("no current version").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "att-broken", entries[0].ContextMap()["attachment_id"])
}
