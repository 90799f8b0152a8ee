package domain

import "strings"

// Role is the closed set of account kinds known to the platform.
type Role string

const (
	RoleAdmin   Role = "administrador"
	RoleClient  Role = "usuario"
	RoleCompany Role = "empresa_recolectora"
)

// Fixed portal paths.
const (
	PathLogin       = "/login"
	PathAdminHome   = "/admin"
	PathClientHome  = "/client"
	PathCompanyHome = "/company"
)

// NavLink is one entry of the role navigation.
type NavLink struct {
	Name string `json:"name"`
	Href string `json:"href"`
	Icon string `json:"icon"`
}

type roleEntry struct {
	home  string
	links []NavLink
}

// roleTable is the single source for everything keyed by role: the guard's
// redirects, the post-login landing and the navigation.
var roleTable = map[Role]roleEntry{
	RoleAdmin: {
		home: PathAdminHome,
		links: []NavLink{
			{Name: "Dashboard", Href: PathAdminHome, Icon: "dashboard"},
			{Name: "Usuarios", Href: "/admin/users", Icon: "users"},
			{Name: "Empresas", Href: "/admin/companies", Icon: "building"},
			{Name: "Localidades", Href: "/admin/localidades", Icon: "map-pin"},
			{Name: "Tipos de Residuos", Href: "/admin/tipos-residuos", Icon: "recycle"},
			{Name: "Reportes", Href: "/admin/reports", Icon: "chart-bar"},
			{Name: "Recompensas", Href: "/admin/rewards", Icon: "gift"},
		},
	},
	RoleClient: {
		home: PathClientHome,
		links: []NavLink{
			{Name: "Dashboard", Href: PathClientHome, Icon: "home"},
			{Name: "Solicitar Recolección", Href: "/client/request-collection", Icon: "truck"},
			{Name: "Mis Solicitudes", Href: "/client/requests", Icon: "clipboard-list"},
			{Name: "Recompensas", Href: "/client/rewards", Icon: "gift"},
			{Name: "Canjes", Href: "/client/exchanges", Icon: "exchange"},
		},
	},
	RoleCompany: {
		home: PathCompanyHome,
		links: []NavLink{
			{Name: "Dashboard", Href: PathCompanyHome, Icon: "home"},
			{Name: "Solicitudes", Href: "/company/requests", Icon: "clipboard-list"},
			{Name: "Historial", Href: "/company/history", Icon: "history"},
			{Name: "Rutas", Href: "/company/routes", Icon: "map"},
		},
	},
}

var commonLinks = []NavLink{
	{Name: "Perfil", Href: "/profile", Icon: "user"},
	{Name: "Notificaciones", Href: "/notifications", Icon: "bell"},
}

// IsValid reports whether r is one of the three platform roles.
func (r Role) IsValid() bool {
	_, ok := roleTable[r]
	return ok
}

// ParseRole safely parses a string into a Role.
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	return r, r.IsValid()
}

// AllRoles returns the roles in a stable order.
func AllRoles() []Role {
	return []Role{RoleAdmin, RoleClient, RoleCompany}
}

// RoleHome returns the landing path of a role. Unknown roles land on the
// client home.
func RoleHome(r Role) string {
	if e, ok := roleTable[r]; ok {
		return e.home
	}
	return PathClientHome
}

// NavLinks returns the navigation of a role followed by the common links.
func NavLinks(r Role) []NavLink {
	e := roleTable[r]
	out := make([]NavLink, 0, len(e.links)+len(commonLinks))
	out = append(out, e.links...)
	return append(out, commonLinks...)
}

// RoleForPath returns the role whose area contains path, if any.
func RoleForPath(path string) (Role, bool) {
	for _, r := range AllRoles() {
		home := roleTable[r].home
		if path == home || strings.HasPrefix(path, home+"/") {
			return r, true
		}
	}
	return "", false
}
