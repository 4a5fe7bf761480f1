// Copyright (c) 2026 SKM Team
// skm - terminal client for the SSH Key Manager service
// This source code is licensed under the MIT license found in the LICENSE file.

package app

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/gphunter1004/skm/internal/api"
	"github.com/gphunter1004/skm/internal/i18n"
	"github.com/gphunter1004/skm/internal/logging"
	"github.com/gphunter1004/skm/internal/model"
	"github.com/gphunter1004/skm/internal/sshkey"
)

// KeyController manages the caller's single SSH key record. Generate and
// delete are destructive and gated behind explicit confirmation. Only one
// key operation may be in flight at a time, and a response that arrives
// after a newer operation started is discarded instead of overwriting
// newer state.
type KeyController struct {
	gw        *api.Gateway
	notifier  Notifier
	confirmer Confirmer

	mu       sync.Mutex
	inflight bool
	seq      uint64
	record   *model.KeyRecord
	loaded   bool
	warnings []string
}

// NewKeyController wires the key flows.
func NewKeyController(gw *api.Gateway, notifier Notifier, confirmer Confirmer) *KeyController {
	return &KeyController{gw: gw, notifier: notifier, confirmer: confirmer}
}

// begin acquires the in-flight latch and allocates a correlation number.
// A second operation started while one is running is refused.
func (k *KeyController) begin() (uint64, bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.inflight {
		return 0, false
	}
	k.inflight = true
	k.seq++
	return k.seq, true
}

// finish releases the latch and applies the result only when no newer
// operation superseded this one.
func (k *KeyController) finish(seq uint64, apply func()) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.inflight = false
	if seq != k.seq {
		logging.Debugf("keys: discarding stale response (seq %d, current %d)", seq, k.seq)
		return
	}
	if apply != nil {
		apply()
	}
}

// Busy reports whether a key operation is currently in flight, so the
// presentation layer can keep the triggering controls disabled.
func (k *KeyController) Busy() bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.inflight
}

// Current returns the displayed record, if one exists.
func (k *KeyController) Current() (model.KeyRecord, bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.record == nil {
		return model.KeyRecord{}, false
	}
	return *k.record, true
}

// Empty reports whether the last load found no key. That is a valid state,
// not an error: the view tells the user to generate one.
func (k *KeyController) Empty() bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.loaded && k.record == nil
}

// Warnings returns normalization warnings from the last load, e.g. fields
// the backend omitted.
func (k *KeyController) Warnings() []string {
	k.mu.Lock()
	defer k.mu.Unlock()
	return append([]string(nil), k.warnings...)
}

// Create generates a new key pair, replacing any existing one. The user
// must confirm first.
func (k *KeyController) Create(ctx context.Context) bool {
	if !k.confirmer.Confirm(i18n.T("keys.confirm_create_title"), i18n.T("keys.confirm_create")) {
		return false
	}
	seq, ok := k.begin()
	if !ok {
		notifyWarning(k.notifier, i18n.T("keys.busy"))
		return false
	}

	raw, err := k.gw.Do(ctx, http.MethodPost, "/keys", nil)
	if err != nil {
		k.finish(seq, func() {
			k.record = nil
			k.loaded = true
		})
		notifyAPIError(k.notifier, err)
		return false
	}

	rec, warnings, err := model.NormalizeKey(raw)
	if err != nil {
		k.finish(seq, func() {
			k.record = nil
			k.loaded = true
		})
		notifyError(k.notifier, i18n.T("keys.error_load"))
		return false
	}
	enrich(&rec)
	k.finish(seq, func() {
		k.record = &rec
		k.loaded = true
		k.warnings = warnings
	})
	k.reportWarnings(warnings)
	notifySuccess(k.notifier, i18n.T("keys.create_success"))
	return true
}

// View fetches the current key. A 404 is the empty state: the display says
// no key exists yet, and no error notification is raised.
func (k *KeyController) View(ctx context.Context) bool {
	seq, ok := k.begin()
	if !ok {
		notifyWarning(k.notifier, i18n.T("keys.busy"))
		return false
	}

	raw, err := k.gw.Do(ctx, http.MethodGet, "/keys", nil)
	if err != nil {
		notFound := api.IsNotFound(err)
		k.finish(seq, func() {
			k.record = nil
			k.loaded = true
			k.warnings = nil
		})
		if notFound {
			return true
		}
		notifyAPIError(k.notifier, err)
		return false
	}

	rec, warnings, err := model.NormalizeKey(raw)
	if err != nil {
		k.finish(seq, func() {
			k.record = nil
			k.loaded = true
		})
		notifyError(k.notifier, i18n.T("keys.error_load"))
		return false
	}
	enrich(&rec)
	k.finish(seq, func() {
		k.record = &rec
		k.loaded = true
		k.warnings = warnings
	})
	k.reportWarnings(warnings)
	return true
}

// Delete removes the key after confirmation.
func (k *KeyController) Delete(ctx context.Context) bool {
	if !k.confirmer.Confirm(i18n.T("keys.confirm_delete_title"), i18n.T("keys.confirm_delete")) {
		return false
	}
	seq, ok := k.begin()
	if !ok {
		notifyWarning(k.notifier, i18n.T("keys.busy"))
		return false
	}

	if _, err := k.gw.Do(ctx, http.MethodDelete, "/keys", nil); err != nil {
		k.finish(seq, nil)
		notifyAPIError(k.notifier, err)
		return false
	}
	k.finish(seq, func() {
		k.record = nil
		k.loaded = true
		k.warnings = nil
	})
	notifySuccess(k.notifier, i18n.T("keys.delete_success"))
	return true
}

// Reset drops all display state. Called when the session ends.
func (k *KeyController) Reset() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.seq++
	k.record = nil
	k.loaded = false
	k.warnings = nil
}

func (k *KeyController) reportWarnings(warnings []string) {
	if len(warnings) > 0 {
		notifyWarning(k.notifier, i18n.T("keys.warning_missing_fields", strings.Join(warnings, ", ")))
	}
}

// enrich fills in fields the backend omitted: a fingerprint computed from
// the public key, and an algorithm label derived from the key type when the
// server's label is missing or generic.
func enrich(rec *model.KeyRecord) {
	if rec.PublicKey == "" {
		return
	}
	if rec.Fingerprint == "" {
		if fp, err := sshkey.Fingerprint(rec.PublicKey); err == nil {
			rec.Fingerprint = fp
		}
	}
	if keyType, _, _, err := sshkey.Parse(rec.PublicKey); err == nil {
		if label := sshkey.AlgorithmLabel(keyType); rec.Algorithm == "" {
			rec.Algorithm = label
		}
	}
}

// InstallCommands are ready-to-paste shell commands for installing the key
// material on a host.
type InstallCommands struct {
	PublicKey      string
	AuthorizedKeys string
	PEM            string
	PPK            string
}

// InstallCommandsFor builds the install commands for a record. Key material
// is single-quoted with embedded quotes escaped so the commands are safe to
// paste as-is.
func InstallCommandsFor(rec model.KeyRecord) InstallCommands {
	return InstallCommands{
		PublicKey:      "echo '" + escapeShell(rec.PublicKey) + "' > id_rsa.pub",
		AuthorizedKeys: "echo '" + escapeShell(rec.PublicKey) + "' >> ~/.ssh/authorized_keys",
		PEM:            "echo '" + escapeShell(rec.PEMPrivateKey) + "' > id_rsa",
		PPK:            "echo '" + escapeShell(rec.PPKPrivateKey) + "' > id_rsa.ppk",
	}
}

func escapeShell(s string) string {
	return strings.ReplaceAll(s, "'", `'"'"'`)
}
