// Package authz enforces profile-based access to module operations. A
// profile's grants ("Account" -> read/create/update/delete) become casbin
// policies; handlers ask whether the caller's profile may perform an
// operation on a module before any store call runs.
package authz

import (
	"errors"
	"os"
	"strings"

	"github.com/casbin/casbin/v2"
	casbinmodel "github.com/casbin/casbin/v2/model"
)

type Mode string

const (
	ModeEnforce  Mode = "enforce"
	ModeShadow   Mode = "shadow"
	ModeDisabled Mode = "disabled"
)

func ModeFromEnv() (Mode, error) {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv("AUTHZ_MODE")))
	if raw == "" {
		return ModeEnforce, nil
	}
	switch Mode(raw) {
	case ModeEnforce, ModeShadow:
		return Mode(raw), nil
	case ModeDisabled:
		if os.Getenv("AUTHZ_UNSAFE_ALLOW_DISABLED") != "1" {
			return "", errors.New("authz: AUTHZ_MODE=disabled requires AUTHZ_UNSAFE_ALLOW_DISABLED=1")
		}
		return ModeDisabled, nil
	default:
		return "", errors.New("authz: invalid AUTHZ_MODE (expected enforce|shadow|disabled)")
	}
}

const modelText = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && r.obj == p.obj && r.act == p.act
`

type Authorizer struct {
	enforcer *casbin.Enforcer
	mode     Mode
}

func NewAuthorizer(mode Mode) (*Authorizer, error) {
	m, err := casbinmodel.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, err
	}
	return &Authorizer{enforcer: enforcer, mode: mode}, nil
}

func SubjectFromProfile(profileName string) string {
	profileName = strings.TrimSpace(profileName)
	if profileName == "" {
		profileName = "anonymous"
	}
	return "profile:" + profileName
}

func ObjectFromModule(moduleName string) string {
	return "module:" + strings.TrimSpace(moduleName)
}

// LoadGrants replaces all policies with the given profile grant set.
func (a *Authorizer) LoadGrants(grants []ProfileGrants) error {
	a.enforcer.ClearPolicy()
	for _, profile := range grants {
		subject := SubjectFromProfile(profile.Profile)
		for moduleName, operations := range profile.Modules {
			object := ObjectFromModule(moduleName)
			for _, operation := range operations {
				operation = strings.TrimSpace(strings.ToLower(operation))
				if operation == "" {
					continue
				}
				if _, err := a.enforcer.AddPolicy(subject, object, operation); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// Authorize reports whether the profile may perform the operation on the
// module. In shadow mode denials are reported but enforced stays false so
// callers can log instead of reject.
func (a *Authorizer) Authorize(profileName string, moduleName string, operation string) (allowed bool, enforced bool, err error) {
	subject := SubjectFromProfile(profileName)
	object := ObjectFromModule(moduleName)
	operation = strings.TrimSpace(strings.ToLower(operation))

	switch a.mode {
	case ModeDisabled:
		return true, false, nil
	case ModeShadow:
		ok, err := a.enforcer.Enforce(subject, object, operation)
		if err != nil {
			return false, false, err
		}
		return ok, false, nil
	case ModeEnforce:
		ok, err := a.enforcer.Enforce(subject, object, operation)
		if err != nil {
			return false, true, err
		}
		return ok, true, nil
	default:
		return false, false, errors.New("authz: unknown mode")
	}
}
