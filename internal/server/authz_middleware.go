package server

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/lodestarhq/lodestar/pkg/authz"
)

func loadAuthorizer() (*authz.Authorizer, error) {
	mode, err := authz.ModeFromEnv()
	if err != nil {
		return nil, err
	}

	a, err := authz.NewAuthorizer(mode)
	if err != nil {
		return nil, err
	}

	profilesPath := os.Getenv("PROFILES_PATH")
	if profilesPath == "" {
		p, err := defaultProfilesPath()
		if err != nil {
			return nil, err
		}
		profilesPath = p
	}

	grants, err := authz.LoadProfiles(profilesPath)
	if err != nil {
		return nil, err
	}
	if err := a.LoadGrants(grants); err != nil {
		return nil, err
	}
	return a, nil
}

func defaultProfilesPath() (string, error) {
	path := "config/profiles.yaml"
	for range 8 {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
		path = filepath.Join("..", path)
	}
	return "", errors.New("server: profiles file not found")
}

type authorizer interface {
	Authorize(profileName string, moduleName string, operation string) (allowed bool, enforced bool, err error)
}

// moduleForPath maps the first API path segment to the module name profiles
// grant operations on.
func moduleForPath(path string) string {
	rest := strings.TrimPrefix(path, "/api/")
	if rest == path {
		return ""
	}
	segment, _, _ := strings.Cut(rest, "/")
	switch segment {
	case "territories":
		return "Territory"
	case "roles":
		return "Role"
	case "groups":
		return "Group"
	case "sharing-rules":
		return "SharingRule"
	case "users":
		return "User"
	case "catalog":
		return "Catalog"
	default:
		return ""
	}
}

func operationForMethod(method string) string {
	switch method {
	case http.MethodGet:
		return "read"
	case http.MethodPost:
		return "create"
	case http.MethodPut:
		return "update"
	case http.MethodDelete:
		return "delete"
	default:
		return ""
	}
}

func withAuthz(a authorizer, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		moduleName := moduleForPath(r.URL.Path)
		if moduleName == "" {
			next.ServeHTTP(w, r)
			return
		}

		operation := operationForMethod(r.Method)
		if operation == "" {
			writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
			return
		}

		profile := strings.TrimSpace(r.Header.Get("X-Profile"))
		allowed, enforced, err := a.Authorize(profile, moduleName, operation)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "AUTHZ_ERROR", "authorization error")
			return
		}
		if !allowed && enforced {
			writeError(w, http.StatusForbidden, "OPERATION_NOT_ALLOWED", "operation not allowed")
			return
		}

		next.ServeHTTP(w, r)
	})
}
