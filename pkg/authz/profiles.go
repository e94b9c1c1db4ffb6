package authz

import (
	"errors"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ProfileGrants is one profile's operation grants keyed by module name.
type ProfileGrants struct {
	Profile string              `yaml:"profile"`
	Modules map[string][]string `yaml:"modules"`
}

type profilesFile struct {
	Profiles []ProfileGrants `yaml:"profiles"`
}

// LoadProfiles reads the profile grant seed file.
func LoadProfiles(path string) ([]ProfileGrants, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseProfiles(b)
}

func ParseProfiles(b []byte) ([]ProfileGrants, error) {
	var f profilesFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, err
	}
	if len(f.Profiles) == 0 {
		return nil, errors.New("authz: profiles file has no profiles")
	}
	for _, p := range f.Profiles {
		if strings.TrimSpace(p.Profile) == "" {
			return nil, errors.New("authz: profile with empty name")
		}
	}
	return f.Profiles, nil
}
