// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package drchrono

import (
	"encoding/json"
	"errors"
	"fmt"

	autherrors "github.com/stacklok/drchrono-auth/pkg/errors"
	authjson "github.com/stacklok/drchrono-auth/pkg/json"
)

// ErrParseProfile is returned when a profile payload is not a JSON object.
var ErrParseProfile = errors.New("failed to parse user profile")

// RawProfile is the subset of the drchrono user object that is mapped.
// Every field is optional and holds the JSON value as received; absent
// or null fields stay nil.
type RawProfile struct {
	ID            *authjson.Any `json:"id,omitempty"`
	Username      *authjson.Any `json:"username,omitempty"`
	Doctor        *authjson.Any `json:"doctor,omitempty"`
	IsDoctor      *authjson.Any `json:"is_doctor,omitempty"`
	IsStaff       *authjson.Any `json:"is_staff,omitempty"`
	PracticeGroup *authjson.Any `json:"practice_group,omitempty"`
	Permissions   *authjson.Any `json:"permissions,omitempty"`
}

// Profile is the normalized drchrono user profile.
// Mapped values are copied unchanged; numbers decode as float64.
type Profile struct {
	// Provider is always ProviderName for profiles returned by the fetcher.
	Provider string `json:"provider,omitempty" yaml:"provider,omitempty"`

	ID       *authjson.Any `json:"id,omitempty" yaml:"id,omitempty"`
	Username *authjson.Any `json:"username,omitempty" yaml:"username,omitempty"`

	// Doctor is the id of the doctor the user acts for. It is independent of IsDoctor.
	Doctor        *authjson.Any `json:"doctor,omitempty" yaml:"doctor,omitempty"`
	IsDoctor      *authjson.Any `json:"isDoctor,omitempty" yaml:"isDoctor,omitempty"`
	IsStaff       *authjson.Any `json:"isStaff,omitempty" yaml:"isStaff,omitempty"`
	PracticeGroup *authjson.Any `json:"practiceGroup,omitempty" yaml:"practiceGroup,omitempty"`
	Permissions   *authjson.Any `json:"permissions,omitempty" yaml:"permissions,omitempty"`

	// Raw is the response body exactly as received.
	Raw []byte `json:"-" yaml:"-"`

	// JSON is the decoded response body, including fields not mapped above.
	JSON map[string]any `json:"-" yaml:"-"`
}

// MapProfile renames the drchrono fields to their canonical names.
// It never fails; a nil raw yields an empty profile.
func MapProfile(raw *RawProfile) *Profile {
	if raw == nil {
		return &Profile{}
	}
	return &Profile{
		ID:            clone(raw.ID),
		Username:      clone(raw.Username),
		Doctor:        clone(raw.Doctor),
		IsDoctor:      clone(raw.IsDoctor),
		IsStaff:       clone(raw.IsStaff),
		PracticeGroup: clone(raw.PracticeGroup),
		Permissions:   clone(raw.Permissions),
	}
}

// ParseProfile maps a profile given as a JSON string, JSON bytes,
// a decoded JSON object or a RawProfile.
func ParseProfile(v any) (*Profile, error) {
	switch in := v.(type) {
	case string:
		return parseProfileJSON([]byte(in))
	case []byte:
		return parseProfileJSON(in)
	case map[string]any:
		encoded, err := json.Marshal(in)
		if err != nil {
			return nil, parseError(err)
		}
		return parseProfileJSON(encoded)
	case RawProfile:
		return MapProfile(&in), nil
	case *RawProfile:
		return MapProfile(in), nil
	default:
		return nil, parseError(fmt.Errorf("unsupported profile input %T", v))
	}
}

func parseProfileJSON(data []byte) (*Profile, error) {
	var raw *RawProfile
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, parseError(err)
	}
	if raw == nil {
		return nil, parseError(errors.New("profile is null"))
	}
	return MapProfile(raw), nil
}

func parseError(cause error) error {
	return autherrors.NewMalformedResponseError("invalid profile payload", fmt.Errorf("%w: %w", ErrParseProfile, cause))
}

func clone(p *authjson.Any) *authjson.Any {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
