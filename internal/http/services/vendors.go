// Package services holds the read-side services behind the HTTP
// controllers.
package services

import (
	"context"
	"errors"

	"github.com/lexiconhq/tenant-auth/internal/observability/logger"
	"github.com/lexiconhq/tenant-auth/internal/store/core"
)

var (
	// ErrDocTypeUnknown means the requested record type is not installed.
	ErrDocTypeUnknown = errors.New("services: unknown doctype")
	// ErrPermissionDenied means none of the caller's roles holds read
	// access on the record type.
	ErrPermissionDenied = errors.New("services: permission denied")
)

type VendorService struct {
	repo core.Repository
}

func NewVendorService(repo core.Repository) *VendorService {
	return &VendorService{repo: repo}
}

// ListVendors is the privileged vendor projection, ordered by name. It is
// the sanctioned access path for roles whose direct doc permissions were
// revoked, so it deliberately performs no permission check beyond the
// caller being authenticated.
func (s *VendorService) ListVendors(ctx context.Context) ([]core.Vendor, error) {
	vendors, err := s.repo.ListVendors(ctx)
	if err != nil {
		return nil, err
	}
	if vendors == nil {
		vendors = []core.Vendor{}
	}
	return vendors, nil
}

// ListRecords is the direct record-type list query, gated by the stored
// doc permission rules. Doctypes without a list projection registered
// answer with an empty list when permitted.
func (s *VendorService) ListRecords(ctx context.Context, docType string, roles []string) (any, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Component("records"), logger.DocType(docType))

	exists, err := s.repo.DocTypeExists(ctx, docType)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrDocTypeUnknown
	}

	allowed, err := s.repo.HasDocPermRead(ctx, docType, roles)
	if err != nil {
		return nil, err
	}
	if !allowed {
		log.Warn("direct record access denied", logger.Count(len(roles)))
		return nil, ErrPermissionDenied
	}

	switch docType {
	case "Vendor":
		return s.ListVendors(ctx)
	default:
		return []struct{}{}, nil
	}
}
