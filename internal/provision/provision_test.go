package provision_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lexiconhq/tenant-auth/internal/provision"
	"github.com/lexiconhq/tenant-auth/internal/store/core"
	"github.com/lexiconhq/tenant-auth/internal/store/memory"
)

func seeded() *memory.Store {
	s := memory.New()
	s.SeedDocType("Vendor")
	s.SeedDocType("Waitlist")
	s.SeedPage("vendors")
	s.SeedModule("Lexicon")
	s.SeedModule("Vendor Manager")
	return s
}

func TestEnsureRole_CreateThenUpdate(t *testing.T) {
	repo := memory.New()
	p := provision.New(repo)
	ctx := context.Background()

	require.NoError(t, p.EnsureRole(ctx, "Lexicon User", true))
	role, err := repo.GetRole(ctx, "Lexicon User")
	require.NoError(t, err)
	require.True(t, role.DeskAccess)
	require.False(t, role.Disabled)

	// Re-running flips nothing but also never fails; last call wins.
	require.NoError(t, p.EnsureRole(ctx, "Lexicon User", false))
	role, err = repo.GetRole(ctx, "Lexicon User")
	require.NoError(t, err)
	require.False(t, role.DeskAccess)

	require.NoError(t, p.EnsureRole(ctx, "Lexicon User", true))
	role, err = repo.GetRole(ctx, "Lexicon User")
	require.NoError(t, err)
	require.True(t, role.DeskAccess)
}

func TestRestrictModule_AbsentModuleSkips(t *testing.T) {
	repo := memory.New()
	p := provision.New(repo)

	require.NoError(t, p.RestrictModule(context.Background(), "Nope", []string{"Desk User"}))
}

func TestRestrictModule_ReplacesRoleList(t *testing.T) {
	repo := seeded()
	p := provision.New(repo)
	ctx := context.Background()

	require.NoError(t, p.RestrictModule(ctx, "Lexicon", []string{"Lexicon User"}))
	require.NoError(t, p.RestrictModule(ctx, "Lexicon", []string{"Lexicon User", "System Manager"}))

	require.Equal(t, []string{"Lexicon User", "System Manager"}, repo.ModuleRoles("Lexicon"))
}

func TestGrantPagePermission_Deduplicates(t *testing.T) {
	repo := seeded()
	p := provision.New(repo)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, p.GrantPagePermission(ctx, "vendors", "Lexicon User"))
	}

	roles, err := repo.ListPageRoles(ctx, "vendors")
	require.NoError(t, err)
	require.Equal(t, []string{"Lexicon User"}, roles)
}

func TestGrantPagePermission_AbsentPageSkips(t *testing.T) {
	repo := memory.New()
	p := provision.New(repo)

	require.NoError(t, p.GrantPagePermission(context.Background(), "nope", "Lexicon User"))
}

func TestSetDocPermission_LastWriteWins(t *testing.T) {
	repo := seeded()
	p := provision.New(repo)
	ctx := context.Background()

	require.NoError(t, p.SetDocPermission(ctx, "Vendor", "Vendor Manager User",
		core.PermFlags{Read: true}))
	require.NoError(t, p.SetDocPermission(ctx, "Vendor", "Vendor Manager User",
		core.PermFlags{Read: true, Write: true, Create: true, Delete: true}))

	perm, err := repo.GetDocPerm(ctx, "Vendor", "Vendor Manager User")
	require.NoError(t, err)
	require.True(t, perm.Flags.Read)
	require.True(t, perm.Flags.Write)
	require.True(t, perm.Flags.Create)
	require.True(t, perm.Flags.Delete)
	require.False(t, perm.Flags.Submit)
	require.False(t, perm.Flags.Cancel)
	require.False(t, perm.Flags.Amend)
	require.True(t, perm.Custom)
}

func TestSetDocPermission_AbsentDocTypeSkips(t *testing.T) {
	repo := memory.New()
	p := provision.New(repo)

	require.NoError(t, p.SetDocPermission(context.Background(), "Nope", "Role",
		core.PermFlags{Read: true}))

	_, err := repo.GetDocPerm(context.Background(), "Nope", "Role")
	require.ErrorIs(t, err, core.ErrNotFound)
}

func TestRevokeDocPermission_ClearsCustomAndStandard(t *testing.T) {
	repo := seeded()
	p := provision.New(repo)
	ctx := context.Background()

	// One rule in each store.
	repo.SeedStandardDocPerm(core.DocPerm{
		DocType: "Vendor", Role: "Lexicon User",
		Flags: core.PermFlags{Read: true},
	})
	require.NoError(t, p.SetDocPermission(ctx, "Vendor", "Lexicon User",
		core.PermFlags{Read: true}))

	require.NoError(t, p.RevokeDocPermission(ctx, "Vendor", "Lexicon User"))

	_, err := repo.GetDocPerm(ctx, "Vendor", "Lexicon User")
	require.ErrorIs(t, err, core.ErrNotFound)

	ok, err := repo.HasDocPermRead(ctx, "Vendor", []string{"Lexicon User"})
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRun_FullSetup(t *testing.T) {
	repo := seeded()
	p := provision.New(repo)
	ctx := context.Background()

	// Pre-existing standard grant that the run must revoke.
	repo.SeedStandardDocPerm(core.DocPerm{
		DocType: "Vendor", Role: "Lexicon User",
		Flags: core.PermFlags{Read: true},
	})

	require.NoError(t, p.Run(ctx))

	for _, name := range []string{"Lexicon User", "Vendor Manager User"} {
		role, err := repo.GetRole(ctx, name)
		require.NoError(t, err)
		require.True(t, role.DeskAccess)
		require.False(t, role.Disabled)
	}

	require.Equal(t, []string{"Lexicon User", "System Manager"}, repo.ModuleRoles("Lexicon"))
	require.Equal(t, []string{"Vendor Manager User", "System Manager"}, repo.ModuleRoles("Vendor Manager"))

	pageRoles, err := repo.ListPageRoles(ctx, "vendors")
	require.NoError(t, err)
	require.Contains(t, pageRoles, "Lexicon User")

	// Lexicon User has no direct Vendor access after the run.
	ok, err := repo.HasDocPermRead(ctx, "Vendor", []string{"Lexicon User"})
	require.NoError(t, err)
	require.False(t, ok)

	for _, dt := range []string{"Vendor", "Waitlist"} {
		perm, err := repo.GetDocPerm(ctx, dt, "Vendor Manager User")
		require.NoError(t, err)
		require.True(t, perm.Flags.Read && perm.Flags.Write && perm.Flags.Create && perm.Flags.Delete)
		require.False(t, perm.Flags.Submit || perm.Flags.Cancel || perm.Flags.Amend)
	}
}

func TestRun_Idempotent(t *testing.T) {
	repo := seeded()
	p := provision.New(repo)
	ctx := context.Background()

	require.NoError(t, p.Run(ctx))
	require.NoError(t, p.Run(ctx))

	// A rerun leaves exactly one custom rule per pair.
	perm, err := repo.GetDocPerm(ctx, "Vendor", "Vendor Manager User")
	require.NoError(t, err)
	require.True(t, perm.Flags.Read)

	pageRoles, err := repo.ListPageRoles(ctx, "vendors")
	require.NoError(t, err)
	require.Equal(t, []string{"Lexicon User"}, pageRoles)
}

func TestRun_PartialEnvironmentSucceeds(t *testing.T) {
	// Only the roles exist; modules, pages and doctypes are absent.
	repo := memory.New()
	p := provision.New(repo)

	require.NoError(t, p.Run(context.Background()))
}
