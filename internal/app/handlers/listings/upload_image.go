package listings

import (
	"context"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"stayhub/internal/app/commands"
	"stayhub/internal/app/dto"
	"stayhub/internal/app/middleware"
	"stayhub/internal/app/policies"
	"stayhub/internal/app/uow"
	"stayhub/internal/domain/auth"
	domainlistings "stayhub/internal/domain/listings"
	"stayhub/internal/domain/shared/fault"
)

const (
	UploadImageKey = "listings.upload_image"
	MaxImageSize   = 10 << 20
)

var (
	ErrImageRequired = fault.New(fault.ErrInvalidInput, "invalid_input", "listings: image file is required")
	ErrImageTooLarge = fault.New(fault.ErrInvalidInput, "image_too_large", "listings: image exceeds 10MB")
	ErrImageType     = fault.New(fault.ErrInvalidInput, "invalid_image_type", "listings: image must be jpeg, png or webp")
	ErrUploadsOff    = fault.New(fault.ErrUpstream, "uploads_disabled", "listings: image storage is not configured")
)

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

type UploadImageCommand struct {
	ActingUser  *auth.Actor
	ListingID   string
	ContentType string
	Size        int64
	Body        io.Reader
}

func (UploadImageCommand) Key() string { return UploadImageKey }

func (c UploadImageCommand) Actor() *auth.Actor { return c.ActingUser }

func (c UploadImageCommand) LockKey() string {
	return domainlistings.CanonicalID(c.ListingID)
}

type UploadImageHandler struct {
	UoWFactory uow.UoWFactory
	Images     policies.ImageStore
	Now        func() time.Time
}

func (h *UploadImageHandler) Handle(ctx context.Context, cmd UploadImageCommand) (*dto.Listing, error) {
	if err := auth.Require(cmd.ActingUser); err != nil {
		return nil, err
	}
	id, err := domainlistings.ParseID(cmd.ListingID)
	if err != nil {
		return nil, err
	}
	if cmd.Body == nil || cmd.Size == 0 {
		return nil, ErrImageRequired
	}
	if cmd.Size > MaxImageSize {
		return nil, ErrImageTooLarge
	}
	ext, ok := imageExtensions[strings.ToLower(cmd.ContentType)]
	if !ok {
		return nil, ErrImageType
	}
	if h.Images == nil {
		return nil, ErrUploadsOff
	}

	unit, ctx, release, err := uow.Current(ctx, h.UoWFactory, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	if release != nil {
		defer release()
	}
	listing, err := unit.Listings().ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := listing.EnsureOwner(cmd.ActingUser); err != nil {
		return nil, err
	}

	key := path.Join("housings", string(id), uuid.NewString()+ext)
	url, err := h.Images.Upload(ctx, key, io.LimitReader(cmd.Body, MaxImageSize), cmd.ContentType)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	if h.Now != nil {
		now = h.Now()
	}
	listing.AppendImage(url, now)
	if err := unit.Listings().Save(ctx, listing); err != nil {
		return nil, err
	}
	if release != nil {
		if err := unit.Commit(ctx); err != nil {
			return nil, err
		}
	}
	out := dto.MapListing(listing)
	return &out, nil
}

var (
	_ commands.Handler[UploadImageCommand, *dto.Listing] = (*UploadImageHandler)(nil)
	_ middleware.SerializedCommand                       = UploadImageCommand{}
)
