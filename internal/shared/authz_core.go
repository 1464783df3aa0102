package shared

// Permission names checked by guards and handlers. These are the semantic
// keys stored in the permissions table; checks are exact, case-sensitive
// string matches.
const (
	PermManageAlumni    = "manage_alumni"
	PermManageBerita    = "manage_berita"
	PermManageKegiatan  = "manage_kegiatan"
	PermManageKomunitas = "manage_komunitas"
	PermManageDonasi    = "manage_donasi"
	PermManagePesan     = "manage_pesan"
	PermManageBlacklist = "manage_blacklist"
	PermManageRoles     = "manage_roles"
	PermManageAdmins    = "manage_admins"
)

// CoreScopes lists all permissions known to the dashboard.
func CoreScopes() []string {
	return []string{
		PermManageAlumni,
		PermManageBerita,
		PermManageKegiatan,
		PermManageKomunitas,
		PermManageDonasi,
		PermManagePesan,
		PermManageBlacklist,
		PermManageRoles,
		PermManageAdmins,
	}
}
