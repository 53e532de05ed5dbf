package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/callcleaner/backend/internal/models"
)

const (
	KeyLatestVersion        = "app_latest_version"
	KeyMinimumVersion       = "app_minimum_version"
	KeyUpdateURL            = "app_update_url"
	KeyForceUpdate          = "app_force_update"
	KeyRequiredPermissions  = "required_permissions"
	KeyPrivacyPolicyURL     = "privacy_policy_url"
	KeyPrivacyPolicyVersion = "privacy_policy_version"
	KeyPrivacyPolicyUpdated = "privacy_policy_updated_at"
)

const (
	PermissionsOK      = "ok"
	PermissionsPartial = "partial"
	PermissionsMissing = "missing"
)

type AppVersion struct {
	Latest      string `json:"latest_version"`
	Minimum     string `json:"minimum_version"`
	UpdateURL   string `json:"update_url,omitempty"`
	ForceUpdate bool   `json:"force_update"`
}

type Permission struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
}

type PermissionCheck struct {
	Status  string   `json:"status"`
	Missing []string `json:"missing,omitempty"`
}

type PrivacyPolicy struct {
	URL       string `json:"url"`
	Version   string `json:"version"`
	UpdatedAt string `json:"last_updated"`
}

var defaultPermissions = []Permission{
	{ID: "READ_PHONE_STATE", Name: "Phone state", Description: "Detect incoming calls.", Required: true},
	{ID: "READ_CALL_LOG", Name: "Call log", Description: "Show caller numbers for screening.", Required: true},
	{ID: "ANSWER_PHONE_CALLS", Name: "Answer calls", Description: "Reject calls that should be blocked.", Required: true},
	{ID: "READ_CONTACTS", Name: "Contacts", Description: "Never block people you know.", Required: false},
	{ID: "POST_NOTIFICATIONS", Name: "Notifications", Description: "Tell you when a call was blocked.", Required: false},
}

func defaultRemoteConfig() []models.RemoteConfig {
	perms, _ := json.Marshal(defaultPermissions)
	return []models.RemoteConfig{
		{Key: KeyLatestVersion, Value: "1.0.0", Type: models.ConfigTypeString},
		{Key: KeyMinimumVersion, Value: "1.0.0", Type: models.ConfigTypeString},
		{Key: KeyUpdateURL, Value: "", Type: models.ConfigTypeString},
		{Key: KeyForceUpdate, Value: "false", Type: models.ConfigTypeBool},
		{Key: KeyRequiredPermissions, Value: string(perms), Type: models.ConfigTypeJSON},
		{Key: KeyPrivacyPolicyURL, Value: "https://callcleaner.app/privacy", Type: models.ConfigTypeString},
		{Key: KeyPrivacyPolicyVersion, Value: "1.0", Type: models.ConfigTypeString},
		{Key: KeyPrivacyPolicyUpdated, Value: "2025-04-01", Type: models.ConfigTypeString},
	}
}

// AppService serves app metadata backed by the remote_configs table.
type AppService struct {
	configs RemoteConfigStore
}

func NewAppService(configs RemoteConfigStore) *AppService {
	return &AppService{configs: configs}
}

// SeedDefaults inserts missing default keys; existing values are kept.
func (s *AppService) SeedDefaults(ctx context.Context) error {
	return s.configs.SeedDefaults(ctx, defaultRemoteConfig())
}

func (s *AppService) values(ctx context.Context) (map[string]string, error) {
	rows, err := s.configs.All(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(rows))
	for _, d := range defaultRemoteConfig() {
		out[d.Key] = d.Value
	}
	for _, r := range rows {
		out[r.Key] = r.Value
	}
	return out, nil
}

func (s *AppService) Version(ctx context.Context) (*AppVersion, error) {
	v, err := s.values(ctx)
	if err != nil {
		return nil, err
	}
	force, _ := strconv.ParseBool(v[KeyForceUpdate])
	return &AppVersion{
		Latest:      v[KeyLatestVersion],
		Minimum:     v[KeyMinimumVersion],
		UpdateURL:   v[KeyUpdateURL],
		ForceUpdate: force,
	}, nil
}

func (s *AppService) RequiredPermissions(ctx context.Context) ([]Permission, error) {
	v, err := s.values(ctx)
	if err != nil {
		return nil, err
	}
	var perms []Permission
	if err := json.Unmarshal([]byte(v[KeyRequiredPermissions]), &perms); err != nil {
		slog.Error("stored permissions are not valid JSON, serving defaults", "error", err)
		return append([]Permission(nil), defaultPermissions...), nil
	}
	return perms, nil
}

// VerifyPermissions compares what the device granted against the required set.
func (s *AppService) VerifyPermissions(ctx context.Context, granted []string) (*PermissionCheck, error) {
	perms, err := s.RequiredPermissions(ctx)
	if err != nil {
		return nil, err
	}
	have := make(map[string]bool, len(granted))
	for _, g := range granted {
		have[strings.ToUpper(strings.TrimSpace(g))] = true
	}

	var required, missing []string
	for _, p := range perms {
		if !p.Required {
			continue
		}
		required = append(required, p.ID)
		if !have[p.ID] {
			missing = append(missing, p.ID)
		}
	}

	switch {
	case len(missing) == 0:
		return &PermissionCheck{Status: PermissionsOK}, nil
	case len(missing) == len(required):
		return &PermissionCheck{Status: PermissionsMissing, Missing: missing}, nil
	default:
		return &PermissionCheck{Status: PermissionsPartial, Missing: missing}, nil
	}
}

func (s *AppService) PrivacyPolicy(ctx context.Context) (*PrivacyPolicy, error) {
	v, err := s.values(ctx)
	if err != nil {
		return nil, err
	}
	return &PrivacyPolicy{
		URL:       v[KeyPrivacyPolicyURL],
		Version:   v[KeyPrivacyPolicyVersion],
		UpdatedAt: v[KeyPrivacyPolicyUpdated],
	}, nil
}

// Config returns every key with its value decoded according to its type.
func (s *AppService) Config(ctx context.Context) (map[string]interface{}, error) {
	rows, err := s.configs.All(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]interface{}, len(rows))
	for _, r := range rows {
		out[r.Key] = decodeConfigValue(r)
	}
	return out, nil
}

func decodeConfigValue(r models.RemoteConfig) interface{} {
	switch r.Type {
	case models.ConfigTypeBool:
		b, _ := strconv.ParseBool(r.Value)
		return b
	case models.ConfigTypeInt:
		n, _ := strconv.Atoi(r.Value)
		return n
	case models.ConfigTypeJSON:
		var v interface{}
		if err := json.Unmarshal([]byte(r.Value), &v); err != nil {
			return r.Value
		}
		return v
	default:
		return r.Value
	}
}

// SetConfig stores a key after checking that the value parses as its type.
func (s *AppService) SetConfig(ctx context.Context, key, value, typ string) (*models.RemoteConfig, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, validationError("key is required")
	}
	if typ == "" {
		typ = models.ConfigTypeString
	}
	switch typ {
	case models.ConfigTypeString:
	case models.ConfigTypeBool:
		if _, err := strconv.ParseBool(value); err != nil {
			return nil, validationError("value is not a bool")
		}
	case models.ConfigTypeInt:
		if _, err := strconv.Atoi(value); err != nil {
			return nil, validationError("value is not an int")
		}
	case models.ConfigTypeJSON:
		if !json.Valid([]byte(value)) {
			return nil, validationError("value is not valid JSON")
		}
	default:
		return nil, validationError("type must be one of string, bool, int, json")
	}

	rc, err := s.configs.Upsert(ctx, key, value, typ)
	if err != nil {
		return nil, fmt.Errorf("failed to store config: %w", err)
	}
	return rc, nil
}

func (s *AppService) DeleteConfig(ctx context.Context, key string) error {
	ok, err := s.configs.Delete(ctx, key)
	if err != nil {
		return err
	}
	if !ok {
		return notFoundError("config key not found")
	}
	return nil
}
