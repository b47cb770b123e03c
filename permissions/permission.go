package permissions

import (
	_ "embed"
	"encoding/json"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"
)

//go:embed permissions.json
var permissionsData []byte

// Permission lists the roles allowed on one route. An empty list admits any
// authenticated role; Skip makes the route public.
type Permission struct {
	Permissions []string `json:"permissions"`
	Path        string   `json:"path"`
	Method      string   `json:"method"`
	Skip        bool     `json:"skip"`
}

func (p Permission) Allows(role string) bool {
	return len(p.Permissions) == 0 || slices.Contains(p.Permissions, role)
}

// PermissionData is the route table keyed by method and chi route pattern.
// Skip at the top level disables role checks altogether.
type PermissionData struct {
	Endpoints []Permission `json:"endpoints"`
	Skip      bool         `json:"skip"`

	byRoute map[string]Permission
}

func routeKey(method, path string) string {
	// Subrouter index routes report a trailing slash.
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}

	return strings.ToUpper(method) + " " + path
}

func (r *PermissionData) FindPermissions(path, method string) Permission {
	return r.byRoute[routeKey(method, path)]
}

// Get decodes the embedded route table. A table that cannot be decoded yields
// nil, which makes the RBAC middleware refuse every protected route.
func Get() *PermissionData {
	return parse(permissionsData)
}

func parse(data []byte) *PermissionData {
	var table PermissionData

	if err := json.Unmarshal(data, &table); err != nil {
		log.Err(err).Msg("Failed to decode embedded permissions")

		return nil
	}

	table.byRoute = make(map[string]Permission, len(table.Endpoints))

	for _, endpoint := range table.Endpoints {
		key := routeKey(endpoint.Method, endpoint.Path)
		if _, dup := table.byRoute[key]; dup {
			log.Warn().Str("route", key).Msg("duplicate permission entry, first one wins")

			continue
		}

		table.byRoute[key] = endpoint
	}

	log.Info().Int("endpoints", len(table.byRoute)).Msg("Loaded embedded permissions")

	return &table
}
