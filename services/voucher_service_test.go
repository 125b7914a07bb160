package services

import (
	"database/sql/driver"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"voucher-redemption-api/models"

	"github.com/google/uuid"
)

func TestGenerateCodesUniqueAndWellFormed(t *testing.T) {
	taken := make(map[string]struct{})
	codes, err := generateCodes(50, DefaultCodeLength, DefaultCodeAlphabet, taken)
	if err != nil {
		t.Fatalf("generateCodes returned error: %v", err)
	}
	if len(codes) != 50 {
		t.Fatalf("expected 50 codes, got %d", len(codes))
	}

	seen := make(map[string]struct{})
	for _, code := range codes {
		if len(code) != DefaultCodeLength {
			t.Fatalf("code %q has length %d, want %d", code, len(code), DefaultCodeLength)
		}
		for _, r := range code {
			if !strings.ContainsRune(DefaultCodeAlphabet, r) {
				t.Fatalf("code %q contains %q, not in alphabet", code, r)
			}
		}
		if _, dup := seen[code]; dup {
			t.Fatalf("duplicate code %q", code)
		}
		seen[code] = struct{}{}
	}
}

func TestGenerateCodesRejectsCollisions(t *testing.T) {
	// With a one-character alphabet subset taken, the only possible fresh
	// code is the other character.
	taken := map[string]struct{}{"a": {}}
	codes, err := generateCodes(1, 1, "ab", taken)
	if err != nil {
		t.Fatalf("generateCodes returned error: %v", err)
	}
	if len(codes) != 1 || codes[0] != "b" {
		t.Fatalf("expected [b], got %v", codes)
	}
}

func TestRedeemLosingRaceReturnsErrCodeAlreadyUsed(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindExec,
			pattern: regexp.MustCompile(`UPDATE .voucher_codes. SET .application_id.=\? WHERE code = \? AND application_id IS NULL`),
			result:  scriptedResult{rowsAffected: 0},
		},
	}
	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	svc := NewVoucherService(db)
	app := &models.Application{ApplicationID: uuid.New()}
	err := svc.Redeem(db, "abcdefghi", app)
	if !errors.Is(err, ErrCodeAlreadyUsed) {
		t.Fatalf("expected ErrCodeAlreadyUsed, got %v", err)
	}

	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestRedeemClaimsUnusedCode(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindExec,
			pattern: regexp.MustCompile(`UPDATE .voucher_codes. SET .application_id.=\? WHERE code = \? AND application_id IS NULL`),
			result:  scriptedResult{rowsAffected: 1},
		},
	}
	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	svc := NewVoucherService(db)
	app := &models.Application{ApplicationID: uuid.New()}
	if err := svc.Redeem(db, "abcdefghi", app); err != nil {
		t.Fatalf("Redeem returned error: %v", err)
	}

	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestCheckCodeNotFound(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile(`SELECT .* FROM .voucher_codes. WHERE code = \?`),
			columns: []string{"code", "batch_id", "added_amount", "is_active", "application_id"},
			rows:    [][]driver.Value{},
		},
	}
	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	svc := NewVoucherService(db)
	if got := svc.checkCode("zzzzzzzzz"); got != models.CheckCodeNotFound {
		t.Fatalf("expected code_not_found, got %s", got)
	}

	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestCheckCodeConsumedWinsOverExpired(t *testing.T) {
	appID := uuid.New().String()
	expired := time.Now().UTC().Add(-24 * time.Hour)
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile(`SELECT .* FROM .voucher_codes. WHERE code = \?`),
			columns: []string{"code", "batch_id", "added_amount", "is_active", "application_id"},
			rows:    [][]driver.Value{{"abcdefghi", int64(1), float64(0), true, appID}},
		},
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile(`SELECT .* FROM .voucher_code_batches.`),
			columns: []string{"batch_id", "expiration_date"},
			rows:    [][]driver.Value{{int64(1), expired}},
		},
	}
	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	svc := NewVoucherService(db)
	if got := svc.checkCode("abcdefghi"); got != models.CheckCodeAlreadyUsed {
		t.Fatalf("expected code_already_used, got %s", got)
	}

	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestCheckCodeExpiredWinsOverInvalidated(t *testing.T) {
	expired := time.Now().UTC().Add(-24 * time.Hour)
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile(`SELECT .* FROM .voucher_codes. WHERE code = \?`),
			columns: []string{"code", "batch_id", "added_amount", "is_active", "application_id"},
			rows:    [][]driver.Value{{"abcdefghi", int64(1), float64(0), false, nil}},
		},
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile(`SELECT .* FROM .voucher_code_batches.`),
			columns: []string{"batch_id", "expiration_date"},
			rows:    [][]driver.Value{{int64(1), expired}},
		},
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile(`SELECT count\(\*\) FROM .applications. WHERE vouchercode_str = \?`),
			args:    []driver.Value{"abcdefghi"},
			columns: []string{"count"},
			rows:    [][]driver.Value{{int64(0)}},
		},
	}
	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	svc := NewVoucherService(db)
	if got := svc.checkCode("abcdefghi"); got != models.CheckCodeExpired {
		t.Fatalf("expected code_expired, got %s", got)
	}

	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestCheckCodeLegacyConsumption(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile(`SELECT .* FROM .voucher_codes. WHERE code = \?`),
			columns: []string{"code", "batch_id", "added_amount", "is_active", "application_id"},
			rows:    [][]driver.Value{{"abcdefghi", nil, float64(50), true, nil}},
		},
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile(`SELECT count\(\*\) FROM .applications. WHERE vouchercode_str = \?`),
			args:    []driver.Value{"abcdefghi"},
			columns: []string{"count"},
			rows:    [][]driver.Value{{int64(1)}},
		},
	}
	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	svc := NewVoucherService(db)
	if got := svc.checkCode("abcdefghi"); got != models.CheckCodeAlreadyUsed {
		t.Fatalf("expected code_already_used, got %s", got)
	}

	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}
