package config

import (
	"context"
	"fmt"
	"slices"

	"gopkg.in/ini.v1"
)

type ProfileType string

const (
	ProfileDuckDB     ProfileType = "duckdb"
	ProfileDatabricks ProfileType = "databricks"
	ProfileSnowflake  ProfileType = "snowflake"
)

// Profile is one section of the data source file. Only the keys relevant to
// the profile type are used.
type Profile struct {
	Name string
	Type ProfileType

	// duckdb
	Path    string
	Threads int

	// databricks
	Host     string
	Token    string
	HTTPPath string
	Catalog  string
	Schema   string

	// snowflake
	Account   string
	User      string
	Password  string
	Database  string
	Warehouse string
	Role      string
}

type Registry interface {
	GetProfiles(ctx context.Context) ([]Profile, error)
	GetProfile(ctx context.Context, name string) (*Profile, error)
}

type cfgRegistry struct {
	cfg *ini.File
}

func NewRegistry(path string) (Registry, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load profiles from %s: %w", path, err)
	}
	return &cfgRegistry{cfg: cfg}, nil
}

func (cr *cfgRegistry) GetProfiles(_ context.Context) ([]Profile, error) {
	var profiles []Profile
	for _, section := range cr.cfg.Sections() {
		if len(section.Keys()) == 0 {
			continue
		}
		p, err := parseProfile(section)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}

func (cr *cfgRegistry) GetProfile(_ context.Context, name string) (*Profile, error) {
	if !cr.cfg.HasSection(name) {
		return nil, fmt.Errorf("profile %s not found", name)
	}
	p, err := parseProfile(cr.cfg.Section(name))
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func parseProfile(section *ini.Section) (Profile, error) {
	p := Profile{
		Name:      section.Name(),
		Type:      ProfileType(section.Key("type").MustString(string(ProfileDatabricks))),
		Path:      section.Key("path").String(),
		Threads:   section.Key("threads").MustInt(0),
		Host:      section.Key("host").String(),
		Token:     section.Key("token").String(),
		HTTPPath:  section.Key("http_path").String(),
		Catalog:   section.Key("catalog").String(),
		Schema:    section.Key("schema").String(),
		Account:   section.Key("account").String(),
		User:      section.Key("user").String(),
		Password:  section.Key("password").String(),
		Database:  section.Key("database").String(),
		Warehouse: section.Key("warehouse").String(),
		Role:      section.Key("role").String(),
	}

	known := []ProfileType{ProfileDuckDB, ProfileDatabricks, ProfileSnowflake}
	if !slices.Contains(known, p.Type) {
		return Profile{}, fmt.Errorf("profile %s has unsupported type %q", p.Name, p.Type)
	}
	return p, nil
}
