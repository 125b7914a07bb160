package services

import (
	"database/sql/driver"
	"regexp"
	"strings"
	"testing"
	"time"

	"voucher-redemption-api/models"

	"github.com/google/uuid"
)

func sharedAddressApp(status string) *models.Application {
	app := &models.Application{
		ApplicationID: uuid.New(),
		FirstName:     "Ana",
		LastName:      "Lopez",
		PhoneNumber:   "+15550001111",
		Addr1:         "123 Main St",
		City:          "Oakland",
		State:         "CA",
		ZipCode:       "94601",
		Status:        status,
	}
	app.MarkStatusSynced()
	return app
}

func TestAddressRuleFlagsBeyondThreshold(t *testing.T) {
	// Four applications share an address; one was already approved in an
	// earlier sweep. Its count still pushes the three new ones over the
	// threshold.
	old := sharedAddressApp(models.StatusApproved)
	newApps := []*models.Application{
		sharedAddressApp(models.StatusSubmitted),
		sharedAddressApp(models.StatusSubmitted),
		sharedAddressApp(models.StatusSubmitted),
	}
	all := append([]*models.Application{old}, newApps...)

	exemptStep := func() *queryStep {
		return &queryStep{
			kind:    kindQuery,
			pattern: regexp.MustCompile(`SELECT count\(\*\) FROM .preapproved_addresses. WHERE addr1 = \? AND zip_code = \?`),
			args:    []driver.Value{"123 Main St", "94601"},
			columns: []string{"count"},
			rows:    [][]driver.Value{{int64(0)}},
		}
	}
	db, state, cleanup := newScriptedGormDB(t, []*queryStep{exemptStep(), exemptStep(), exemptStep()})
	defer cleanup()

	if err := applyDedupRule(AddressDedupRule(db), all, newApps); err != nil {
		t.Fatalf("applyDedupRule returned error: %v", err)
	}

	if old.Status != models.StatusApproved {
		t.Fatalf("previously approved application changed status to %s", old.Status)
	}
	for i, app := range newApps {
		if app.Status != models.StatusNeedsReview {
			t.Fatalf("app %d: expected needs_review, got %s", i, app.Status)
		}
		if app.Note != "duplicate address" {
			t.Fatalf("app %d: expected note %q, got %q", i, "duplicate address", app.Note)
		}
	}

	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestAddressRuleAtThresholdNotFlagged(t *testing.T) {
	newApps := []*models.Application{
		sharedAddressApp(models.StatusSubmitted),
		sharedAddressApp(models.StatusSubmitted),
		sharedAddressApp(models.StatusSubmitted),
	}

	// Exactly three occurrences is allowed, so the exemption lookup never
	// runs and no database is needed.
	if err := applyDedupRule(AddressDedupRule(nil), newApps, newApps); err != nil {
		t.Fatalf("applyDedupRule returned error: %v", err)
	}

	for i, app := range newApps {
		if app.Status != models.StatusSubmitted {
			t.Fatalf("app %d: expected submitted, got %s", i, app.Status)
		}
		if app.Note != "" {
			t.Fatalf("app %d: unexpected note %q", i, app.Note)
		}
	}
}

func TestAddressRuleSkipsPreapprovedAddresses(t *testing.T) {
	newApps := []*models.Application{
		sharedAddressApp(models.StatusSubmitted),
		sharedAddressApp(models.StatusSubmitted),
		sharedAddressApp(models.StatusSubmitted),
		sharedAddressApp(models.StatusSubmitted),
	}

	steps := make([]*queryStep, 0, len(newApps))
	for range newApps {
		steps = append(steps, &queryStep{
			kind:    kindQuery,
			pattern: regexp.MustCompile(`SELECT count\(\*\) FROM .preapproved_addresses.`),
			args:    []driver.Value{"123 Main St", "94601"},
			columns: []string{"count"},
			rows:    [][]driver.Value{{int64(1)}},
		})
	}
	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	if err := applyDedupRule(AddressDedupRule(db), newApps, newApps); err != nil {
		t.Fatalf("applyDedupRule returned error: %v", err)
	}

	for i, app := range newApps {
		if app.Status != models.StatusSubmitted {
			t.Fatalf("app %d: expected submitted, got %s", i, app.Status)
		}
	}

	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestNamePhoneRuleRejectsPairsCaseInsensitive(t *testing.T) {
	first := sharedAddressApp(models.StatusSubmitted)
	second := sharedAddressApp(models.StatusSubmitted)
	second.FirstName = "ANA"
	second.LastName = "lopez"
	second.Addr1 = "456 Elm St"

	newApps := []*models.Application{first, second}
	if err := applyDedupRule(NamePhoneDedupRule(), newApps, newApps); err != nil {
		t.Fatalf("applyDedupRule returned error: %v", err)
	}

	for i, app := range newApps {
		if app.Status != models.StatusRejected {
			t.Fatalf("app %d: expected rejected, got %s", i, app.Status)
		}
		if app.Note != "duplicate first/last/phone" {
			t.Fatalf("app %d: unexpected note %q", i, app.Note)
		}
	}
}

func TestNamePhoneRuleIgnoresDifferentPhones(t *testing.T) {
	first := sharedAddressApp(models.StatusSubmitted)
	second := sharedAddressApp(models.StatusSubmitted)
	second.PhoneNumber = "+15550002222"

	newApps := []*models.Application{first, second}
	if err := applyDedupRule(NamePhoneDedupRule(), newApps, newApps); err != nil {
		t.Fatalf("applyDedupRule returned error: %v", err)
	}

	for i, app := range newApps {
		if app.Status != models.StatusSubmitted {
			t.Fatalf("app %d: expected submitted, got %s", i, app.Status)
		}
	}
}

func receivedStatus(step *queryStep) string {
	// status_updates rows insert as (application_id, status, date).
	if len(step.received) != 3 {
		return ""
	}
	s, _ := step.received[1].(string)
	return s
}

func TestSweepApprovesRemainderAndTextsRejectionsOncePerPhone(t *testing.T) {
	submitted := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	appCols := []string{
		"application_id", "status", "submitted_date",
		"first_name", "last_name", "phone_number", "language",
		"addr1", "city", "state", "zip_code",
	}
	appRow := func(id uuid.UUID, status, first, last, phone, addr1 string) []driver.Value {
		return []driver.Value{id.String(), status, submitted, first, last, phone, "en", addr1, "Fresno", "CA", "93650"}
	}

	oldID := uuid.New()
	rejAID := uuid.New()
	rejBID := uuid.New()
	okID := uuid.New()

	saveSteps := func() []*queryStep {
		return []*queryStep{
			{
				kind:    kindExec,
				pattern: regexp.MustCompile(`UPDATE .applications. SET`),
				result:  scriptedResult{rowsAffected: 1},
			},
			{
				kind:    kindExec,
				pattern: regexp.MustCompile(`INSERT INTO .status_updates.`),
				result:  scriptedResult{rowsAffected: 1, lastInsertID: 1},
			},
		}
	}

	// One previously approved application plus three newly submitted ones:
	// two share first/last/phone, the third is clean. Addresses all differ,
	// so the address rule stays quiet.
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile(`SELECT .* FROM .applications. ORDER BY submitted_date DESC`),
			columns: appCols,
			rows: [][]driver.Value{
				appRow(oldID, models.StatusApproved, "Old", "Case", "+15559990000", "9 Oak Ave"),
				appRow(rejAID, models.StatusSubmitted, "Ana", "Lopez", "+15550001111", "1 First St"),
				appRow(rejBID, models.StatusSubmitted, "ANA", "lopez", "+15550001111", "2 Second St"),
				appRow(okID, models.StatusSubmitted, "Carl", "Diaz", "+15550002222", "3 Third St"),
			},
		},
	}
	steps = append(steps, saveSteps()...)
	steps = append(steps, saveSteps()...)
	steps = append(steps, saveSteps()...)

	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	srv, recorded := newRecordingGateway(t)
	defer srv.Close()
	svc := NewDedupService(db, notifierForTest(testSettings(), srv))

	if err := svc.Sweep(); err != nil {
		t.Fatalf("Sweep returned error: %v", err)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}

	// History rows land in load order: the two rejected pairs, then the
	// approved remainder. The previously approved application gets no save.
	historySteps := []*queryStep{steps[2], steps[4], steps[6]}
	wantStatuses := []string{models.StatusRejected, models.StatusRejected, models.StatusApproved}
	for i, step := range historySteps {
		if got := receivedStatus(step); got != wantStatuses[i] {
			t.Fatalf("history row %d: expected status %s, got %q", i, wantStatuses[i], got)
		}
	}
	if id, _ := historySteps[2].received[0].(string); id != okID.String() {
		t.Fatalf("approved history row recorded for %q, want %s", id, okID)
	}

	// The shared rejection phone gets exactly one text.
	if len(*recorded) != 1 {
		t.Fatalf("expected exactly one rejection request, got %d", len(*recorded))
	}
	req := (*recorded)[0]
	if len(req.bindings) != 1 || !strings.Contains(req.bindings[0], "+15550001111") {
		t.Fatalf("unexpected rejection recipients: %v", req.bindings)
	}
	if req.body != RejectionMessage(testSettings(), "en") {
		t.Fatalf("unexpected rejection body: %q", req.body)
	}
}

func TestLaterRuleOverwritesStatusAndNotesConcatenate(t *testing.T) {
	apps := make([]*models.Application, 0, 4)
	for i := 0; i < 4; i++ {
		apps = append(apps, sharedAddressApp(models.StatusSubmitted))
	}

	steps := make([]*queryStep, 0, len(apps))
	for range apps {
		steps = append(steps, &queryStep{
			kind:    kindQuery,
			pattern: regexp.MustCompile(`SELECT count\(\*\) FROM .preapproved_addresses.`),
			columns: []string{"count"},
			rows:    [][]driver.Value{{int64(0)}},
		})
	}
	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	rules := []DedupRule{AddressDedupRule(db), NamePhoneDedupRule()}
	for _, rule := range rules {
		if err := applyDedupRule(rule, apps, apps); err != nil {
			t.Fatalf("applyDedupRule(%s) returned error: %v", rule.Name, err)
		}
	}

	for i, app := range apps {
		if app.Status != models.StatusRejected {
			t.Fatalf("app %d: expected rejected, got %s", i, app.Status)
		}
		want := "duplicate address; duplicate first/last/phone"
		if app.Note != want {
			t.Fatalf("app %d: expected note %q, got %q", i, want, app.Note)
		}
	}

	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}
