package rbac

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/assetledger/backend/internal/domain"
)

// Route is one entry in the declarative method+path-prefix → permission
// matrix (§4.4). RequiredLevel is optional (zero means no level gate
// beyond the permission check).
type Route struct {
	Method        string          `yaml:"method"`
	PathPrefix    string          `yaml:"path_prefix"`
	Permission    string          `yaml:"permission"`
	RequiredLevel domain.RoleLevel `yaml:"required_level"`
}

// Matrix is a list of routes; among the entries whose method and path
// prefix match a request, the one with the longest prefix wins, whatever
// the declaration order.
type Matrix struct {
	Routes []Route `yaml:"routes"`
}

// LoadMatrix reads the YAML route matrix from disk.
func LoadMatrix(path string) (*Matrix, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Matrix
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// Match finds the most specific route entry for a method+path, if any.
func (m *Matrix) Match(method, path string) (Route, bool) {
	method = strings.ToUpper(method)
	var best Route
	found := false
	for _, r := range m.Routes {
		if !strings.EqualFold(r.Method, method) {
			continue
		}
		if !strings.HasPrefix(path, r.PathPrefix) {
			continue
		}
		if !found || len(r.PathPrefix) > len(best.PathPrefix) {
			best = r
			found = true
		}
	}
	return best, found
}
