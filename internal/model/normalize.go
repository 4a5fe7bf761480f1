// Copyright (c) 2026 SKM Team
// skm - terminal client for the SSH Key Manager service
// This source code is licensed under the MIT license found in the LICENSE file.

package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// The service's successive revisions disagree on field casing: the first
// backend returned Go-style exported names (PublicKey, PEM), later ones
// snake_case (public_key, private_key_pem), and one camelCase. The alias
// tables below enumerate every spelling observed; normalization tries them
// in order and takes the first present value.

var (
	keyAliases = map[string][]string{
		"algorithm":   {"Algorithm", "algorithm"},
		"bits":        {"Bits", "bits", "key_size"},
		"publicKey":   {"PublicKey", "public_key", "publicKey", "pub"},
		"pem":         {"PEM", "private_key_pem", "privateKeyPem", "pem"},
		"ppk":         {"PPK", "private_key_ppk", "privateKeyPpk", "ppk"},
		"fingerprint": {"Fingerprint", "fingerprint"},
		"createdAt":   {"CreatedAt", "created_at", "createdAt"},
		"updatedAt":   {"UpdatedAt", "updated_at", "updatedAt"},
	}

	userAliases = map[string][]string{
		"id":        {"id", "ID", "user_id"},
		"username":  {"username", "Username"},
		"role":      {"role", "Role"},
		"hasKey":    {"has_ssh_key", "hasSshKey", "HasSSHKey"},
		"createdAt": {"created_at", "CreatedAt", "createdAt"},
		"updatedAt": {"updated_at", "UpdatedAt", "updatedAt"},
	}
)

// DefaultKeyBits is assumed when a key response omits its size.
const DefaultKeyBits = 2048

// fields is one decoded JSON object with alias-aware accessors.
type fields map[string]json.RawMessage

func decodeFields(raw json.RawMessage) (fields, error) {
	var m fields
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("response is not a JSON object: %w", err)
	}
	return m, nil
}

func (f fields) pick(aliases []string) (json.RawMessage, bool) {
	for _, name := range aliases {
		if v, ok := f[name]; ok && string(v) != "null" {
			return v, true
		}
	}
	return nil, false
}

func (f fields) str(aliases []string) string {
	v, ok := f.pick(aliases)
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return s
	}
	// Tolerate bare numbers where a string is expected.
	return strings.Trim(string(v), `"`)
}

func (f fields) num(aliases []string) int {
	v, ok := f.pick(aliases)
	if !ok {
		return 0
	}
	var n int
	if err := json.Unmarshal(v, &n); err == nil {
		return n
	}
	// Some revisions quote numeric fields.
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	return 0
}

func (f fields) boolean(aliases []string) bool {
	v, ok := f.pick(aliases)
	if !ok {
		return false
	}
	var b bool
	if err := json.Unmarshal(v, &b); err == nil {
		return b
	}
	return false
}

func (f fields) when(aliases []string) time.Time {
	s := f.str(aliases)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// NormalizeKey maps a key endpoint response onto the canonical KeyRecord.
// Missing fields are defaulted and reported as warnings rather than errors:
// the render path must survive any shape the backend produces.
func NormalizeKey(raw json.RawMessage) (KeyRecord, []string, error) {
	f, err := decodeFields(raw)
	if err != nil {
		return KeyRecord{}, nil, err
	}

	rec := KeyRecord{
		Algorithm:     f.str(keyAliases["algorithm"]),
		Bits:          f.num(keyAliases["bits"]),
		PublicKey:     f.str(keyAliases["publicKey"]),
		PEMPrivateKey: f.str(keyAliases["pem"]),
		PPKPrivateKey: f.str(keyAliases["ppk"]),
		Fingerprint:   f.str(keyAliases["fingerprint"]),
		CreatedAt:     f.when(keyAliases["createdAt"]),
		UpdatedAt:     f.when(keyAliases["updatedAt"]),
	}

	var warnings []string
	if rec.Algorithm == "" {
		rec.Algorithm = "RSA"
	}
	if rec.Bits == 0 {
		rec.Bits = DefaultKeyBits
	}
	if rec.PublicKey == "" {
		warnings = append(warnings, "public key")
	}
	if rec.PEMPrivateKey == "" {
		warnings = append(warnings, "PEM private key")
	}
	if rec.PPKPrivateKey == "" {
		warnings = append(warnings, "PPK private key")
	}
	return rec, warnings, nil
}

// NormalizeUser maps a user object onto UserSummary, tolerating all observed
// field spellings.
func NormalizeUser(raw json.RawMessage) (UserSummary, error) {
	f, err := decodeFields(raw)
	if err != nil {
		return UserSummary{}, err
	}
	u := UserSummary{
		ID:        f.num(userAliases["id"]),
		Username:  f.str(userAliases["username"]),
		Role:      Role(f.str(userAliases["role"])),
		HasSSHKey: f.boolean(userAliases["hasKey"]),
		CreatedAt: f.when(userAliases["createdAt"]),
		UpdatedAt: f.when(userAliases["updatedAt"]),
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	if u.Username == "" {
		return u, fmt.Errorf("user object has no username")
	}
	return u, nil
}

// NormalizeValidate interprets a who-am-I response. Two envelope revisions
// exist: {"valid":true,"user_id":1,"username":"a","role":"admin"} and a
// bare user object. A response carrying valid=false is an explicit reject.
func NormalizeValidate(raw json.RawMessage) (UserSummary, error) {
	f, err := decodeFields(raw)
	if err != nil {
		return UserSummary{}, err
	}
	if v, ok := f.pick([]string{"valid"}); ok {
		var valid bool
		if err := json.Unmarshal(v, &valid); err == nil && !valid {
			return UserSummary{}, fmt.Errorf("token rejected by server")
		}
	}
	// Some revisions nest the user object under "user".
	if inner, ok := f.pick([]string{"user"}); ok {
		return NormalizeUser(inner)
	}
	return NormalizeUser(raw)
}

// NormalizeProfile maps a /users/me response, including the embedded key
// metadata when present.
func NormalizeProfile(raw json.RawMessage) (Profile, error) {
	f, err := decodeFields(raw)
	if err != nil {
		return Profile{}, err
	}
	u, err := NormalizeUser(raw)
	if err != nil {
		return Profile{}, err
	}
	p := Profile{UserSummary: u}
	if inner, ok := f.pick([]string{"ssh_key", "sshKey", "key"}); ok {
		kf, err := decodeFields(inner)
		if err == nil {
			info := KeyInfo{
				Algorithm:   kf.str(keyAliases["algorithm"]),
				Bits:        kf.num(keyAliases["bits"]),
				Fingerprint: kf.str(keyAliases["fingerprint"]),
				CreatedAt:   kf.when(keyAliases["createdAt"]),
				UpdatedAt:   kf.when(keyAliases["updatedAt"]),
			}
			if info.Bits == 0 {
				info.Bits = DefaultKeyBits
			}
			p.Key = &info
		}
	}
	return p, nil
}

// NormalizeUserList interprets a directory listing. Revisions return
// {"users":[...],"count":N}, {"items":[...]} or a bare array.
func NormalizeUserList(raw json.RawMessage) ([]UserSummary, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		f, ferr := decodeFields(raw)
		if ferr != nil {
			return nil, fmt.Errorf("user list is neither array nor object: %w", err)
		}
		inner, ok := f.pick([]string{"users", "items"})
		if !ok {
			return nil, fmt.Errorf("user list object has no users field")
		}
		if err := json.Unmarshal(inner, &items); err != nil {
			return nil, fmt.Errorf("users field is not an array: %w", err)
		}
	}
	users := make([]UserSummary, 0, len(items))
	for _, item := range items {
		u, err := NormalizeUser(item)
		if err != nil {
			// Skip malformed entries instead of failing the whole listing.
			continue
		}
		users = append(users, u)
	}
	return users, nil
}
