// Package provision is the administrative role/permission setup routine.
// Every operation is individually idempotent and safe to re-run; the
// routine never rolls back partial progress; re-running it after fixing
// the cause is the recovery path.
package provision

import (
	"context"
	"errors"

	"github.com/lexiconhq/tenant-auth/internal/metrics"
	"github.com/lexiconhq/tenant-auth/internal/observability/logger"
	"github.com/lexiconhq/tenant-auth/internal/store/core"
)

type Provisioner struct {
	repo core.Repository
}

func New(repo core.Repository) *Provisioner {
	return &Provisioner{repo: repo}
}

// EnsureRole updates the role in place when it exists, otherwise creates
// it. The role always ends up enabled with the requested desk access.
func (p *Provisioner) EnsureRole(ctx context.Context, name string, deskAccess bool) error {
	log := logger.From(ctx).With(logger.Component("provision"), logger.Op("EnsureRole"), logger.Role(name))

	role := &core.Role{Name: name, DeskAccess: deskAccess, Disabled: false}

	_, err := p.repo.GetRole(ctx, name)
	switch {
	case err == nil:
		if err := p.repo.UpdateRole(ctx, role); err != nil {
			return err
		}
		log.Info("updated role")
	case errors.Is(err, core.ErrNotFound):
		if err := p.repo.CreateRole(ctx, role); err != nil {
			return err
		}
		log.Info("created role")
	default:
		return err
	}
	metrics.ProvisionSteps.WithLabelValues("ensure_role").Inc()
	return nil
}

// RestrictModule limits a module to the given roles. Best-effort: an absent
// module is logged and skipped so partial environments don't fail setup.
func (p *Provisioner) RestrictModule(ctx context.Context, module string, roles []string) error {
	log := logger.From(ctx).With(logger.Component("provision"), logger.Op("RestrictModule"), logger.Module(module))

	exists, err := p.repo.ModuleExists(ctx, module)
	if err != nil {
		return err
	}
	if !exists {
		log.Warn("module does not exist, skipping")
		return nil
	}
	if err := p.repo.SetModuleRoles(ctx, module, roles); err != nil {
		return err
	}
	log.Info("module restricted", logger.Count(len(roles)))
	metrics.ProvisionSteps.WithLabelValues("restrict_module").Inc()
	return nil
}

// GrantPagePermission appends the role to the page's role list unless it is
// already there. An absent page is logged and skipped.
func (p *Provisioner) GrantPagePermission(ctx context.Context, page, role string) error {
	log := logger.From(ctx).With(logger.Component("provision"), logger.Op("GrantPagePermission"),
		logger.Page(page), logger.Role(role))

	exists, err := p.repo.PageExists(ctx, page)
	if err != nil {
		return err
	}
	if !exists {
		log.Warn("page does not exist, skipping")
		return nil
	}

	current, err := p.repo.ListPageRoles(ctx, page)
	if err != nil {
		return err
	}
	for _, r := range current {
		if r == role {
			log.Info("page permission already exists")
			return nil
		}
	}
	if err := p.repo.AddPageRole(ctx, page, role); err != nil {
		return err
	}
	log.Info("page permission added")
	metrics.ProvisionSteps.WithLabelValues("grant_page_permission").Inc()
	return nil
}

// SetDocPermission maintains the single authoritative rule for the
// (doctype, role) pair: all seven flags are written, last write wins. An
// absent doctype is logged and skipped.
func (p *Provisioner) SetDocPermission(ctx context.Context, docType, role string, flags core.PermFlags) error {
	log := logger.From(ctx).With(logger.Component("provision"), logger.Op("SetDocPermission"),
		logger.DocType(docType), logger.Role(role))

	exists, err := p.repo.DocTypeExists(ctx, docType)
	if err != nil {
		return err
	}
	if !exists {
		log.Warn("doctype does not exist, skipping")
		return nil
	}

	perm := &core.DocPerm{DocType: docType, Role: role, Flags: flags, Custom: true}

	_, err = p.repo.GetDocPerm(ctx, docType, role)
	switch {
	case err == nil:
		if err := p.repo.UpdateDocPerm(ctx, perm); err != nil {
			return err
		}
		log.Info("updated doc permission")
	case errors.Is(err, core.ErrNotFound):
		if err := p.repo.CreateDocPerm(ctx, perm); err != nil {
			return err
		}
		log.Info("added doc permission")
	default:
		return err
	}
	metrics.ProvisionSteps.WithLabelValues("set_doc_permission").Inc()
	return nil
}

// RevokeDocPermission deletes every rule for the pair from both the custom
// and standard permission stores. The role keeps reaching the data through
// whatever dedicated query endpoint exists; direct list/detail access is
// denied.
func (p *Provisioner) RevokeDocPermission(ctx context.Context, docType, role string) error {
	log := logger.From(ctx).With(logger.Component("provision"), logger.Op("RevokeDocPermission"),
		logger.DocType(docType), logger.Role(role))

	exists, err := p.repo.DocTypeExists(ctx, docType)
	if err != nil {
		return err
	}
	if !exists {
		log.Warn("doctype does not exist, skipping")
		return nil
	}

	removed, err := p.repo.DeleteDocPerms(ctx, docType, role)
	if err != nil {
		return err
	}
	log.Info("removed doc permissions", logger.Count(removed))
	metrics.ProvisionSteps.WithLabelValues("revoke_doc_permission").Inc()
	return nil
}

// Run executes the full setup for the Lexicon and Vendor Manager apps.
// Role setup failures abort immediately; later steps log their error and
// the run continues, returning everything collected at the end.
func (p *Provisioner) Run(ctx context.Context) error {
	log := logger.From(ctx).With(logger.Component("provision"), logger.Op("Run"))

	vendorFlags := core.PermFlags{Read: true, Write: true, Create: true, Delete: true}

	if err := p.EnsureRole(ctx, "Lexicon User", true); err != nil {
		return err
	}
	if err := p.EnsureRole(ctx, "Vendor Manager User", true); err != nil {
		return err
	}

	var errs []error
	step := func(err error) {
		if err != nil {
			log.Error("provisioning step failed", logger.Err(err))
			errs = append(errs, err)
		}
	}

	step(p.RestrictModule(ctx, "Lexicon", []string{"Lexicon User", "System Manager"}))
	step(p.RestrictModule(ctx, "Vendor Manager", []string{"Vendor Manager User", "System Manager"}))

	step(p.GrantPagePermission(ctx, "vendors", "Lexicon User"))

	// Lexicon User gets no direct doc permission on Vendor: that role
	// reaches vendors only through the dedicated read-only endpoint.
	step(p.RevokeDocPermission(ctx, "Vendor", "Lexicon User"))

	step(p.SetDocPermission(ctx, "Vendor", "Vendor Manager User", vendorFlags))
	step(p.SetDocPermission(ctx, "Waitlist", "Vendor Manager User", vendorFlags))

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	log.Info("roles and permissions setup completed")
	return nil
}
