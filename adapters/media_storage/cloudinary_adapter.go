package media_storage

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"go.uber.org/zap"

	"github.com/khoahotran/screenvault/internal/application/service"
	"github.com/khoahotran/screenvault/internal/config"
	"github.com/khoahotran/screenvault/pkg/logger"
)

type cloudinaryAdapter struct {
	cld    *cloudinary.Cloudinary
	logger logger.Logger
}

func NewCloudinaryAdapter(cfg config.Config, log logger.Logger) (service.FileStorage, error) {
	if cfg.Cloudinary.CloudName == "" {
		return nil, fmt.Errorf("cloudinary cloud_name has not config")
	}

	cld, err := cloudinary.NewFromParams(
		cfg.Cloudinary.CloudName,
		cfg.Cloudinary.ApiKey,
		cfg.Cloudinary.ApiSecret,
	)
	if err != nil {
		return nil, fmt.Errorf("cannot init cloudinary: %w", err)
	}

	log.Info("Connect Cloudinary successfully.")
	return &cloudinaryAdapter{cld: cld, logger: log}, nil
}

// Delete destroys the asset a delivery URL points at. A missing asset is not an error.
func (a *cloudinaryAdapter) Delete(ctx context.Context, fileURL string) error {
	asset, err := parseCloudinaryURL(fileURL)
	if err != nil {
		return err
	}

	res, err := a.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     asset.PublicID,
		ResourceType: asset.ResourceType,
	})
	if err != nil {
		return fmt.Errorf("failed to delete cloudinary: %w", err)
	}
	if res.Error.Message != "" {
		return fmt.Errorf("failed to delete cloudinary %s: %s", asset.PublicID, res.Error.Message)
	}
	if res.Result != "ok" && res.Result != "not found" {
		return fmt.Errorf("failed to delete cloudinary %s: unexpected result %q", asset.PublicID, res.Result)
	}

	a.logger.Info("Deleted cloudinary asset",
		zap.String("public_id", asset.PublicID),
		zap.String("resource_type", asset.ResourceType),
		zap.String("result", res.Result))
	return nil
}

type cloudinaryAsset struct {
	ResourceType string
	PublicID     string
}

var versionSegment = regexp.MustCompile(`^v\d+$`)

// parseCloudinaryURL reads the resource type and public id from a delivery URL of the form
// https://res.cloudinary.com/<cloud>/<type>/upload/[<transformations>/][v<version>/]<public_id>.<ext>
func parseCloudinaryURL(raw string) (cloudinaryAsset, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return cloudinaryAsset{}, fmt.Errorf("invalid cloudinary url %q: %w", raw, err)
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")

	uploadIdx := -1
	for i, s := range segments {
		if s == "upload" {
			uploadIdx = i
			break
		}
	}
	if uploadIdx < 1 || uploadIdx == len(segments)-1 {
		return cloudinaryAsset{}, fmt.Errorf("not a cloudinary delivery url: %q", raw)
	}

	rest := segments[uploadIdx+1:]
	for i, s := range rest {
		if versionSegment.MatchString(s) && i < len(rest)-1 {
			rest = rest[i+1:]
			break
		}
	}

	publicID := strings.Join(rest, "/")
	publicID = strings.TrimSuffix(publicID, path.Ext(publicID))
	if publicID == "" {
		return cloudinaryAsset{}, fmt.Errorf("empty public id in %q", raw)
	}

	return cloudinaryAsset{
		ResourceType: segments[uploadIdx-1],
		PublicID:     publicID,
	}, nil
}
