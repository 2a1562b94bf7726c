package dashboard

import (
	"reflect"
	"strings"
	"testing"
)

func dimensionTarget(extra ...any) []any {
	target := []any{"dimension", []any{"field", float64(10), nil}}
	return append(target, extra...)
}

func TestAuditMissingParameters(t *testing.T) {
	dash := &Dashboard{
		ID:         1,
		Parameters: []Parameter{{ID: "p1"}, {ID: "p2"}},
		Dashcards: []Dashcard{{
			ID:     100,
			CardID: int64p(200),
			Card:   &Card{ID: 200, Name: "Orders"},
			ParameterMappings: []ParameterMapping{
				{ParameterID: "p1", Target: dimensionTarget(map[string]any{"stage-number": float64(0)})},
			},
		}},
	}

	report := Audit(dash)

	if want := []string{"p1", "p2"}; !reflect.DeepEqual(report.ParameterIDs, want) {
		t.Errorf("parameter_ids = %v, want %v", report.ParameterIDs, want)
	}
	card := report.Cards[0]
	if want := []string{"p2"}; !reflect.DeepEqual(card.MissingParams, want) {
		t.Errorf("missing_params = %v, want %v", card.MissingParams, want)
	}
	if len(report.CardsWithIssues) != 1 || report.CardsWithIssues[0].DashcardID != 100 {
		t.Errorf("cards_with_issues = %v, want the card missing p2", report.CardsWithIssues)
	}
}

func TestAuditMissingParamsPreserveDashboardOrder(t *testing.T) {
	dash := &Dashboard{
		ID:         1,
		Parameters: []Parameter{{ID: "p3"}, {ID: "p1"}, {ID: "p2"}},
		Dashcards: []Dashcard{{
			ID:     100,
			CardID: int64p(200),
			Card:   &Card{ID: 200, Name: "Orders"},
		}},
	}

	report := Audit(dash)

	if want := []string{"p3", "p1", "p2"}; !reflect.DeepEqual(report.Cards[0].MissingParams, want) {
		t.Errorf("missing_params = %v, want %v", report.Cards[0].MissingParams, want)
	}
}

func TestAuditStageNumberRule(t *testing.T) {
	newDash := func(target any) *Dashboard {
		return &Dashboard{
			ID:         1,
			Parameters: []Parameter{{ID: "p1"}},
			Dashcards: []Dashcard{{
				ID:                100,
				CardID:            int64p(200),
				Card:              &Card{ID: 200, Name: "Orders"},
				ParameterMappings: []ParameterMapping{{ParameterID: "p1", Target: target}},
			}},
		}
	}

	t.Run("dimension target without stage-number flags an error", func(t *testing.T) {
		report := Audit(newDash(dimensionTarget()))
		card := report.Cards[0]
		if len(card.Errors) != 1 {
			t.Fatalf("errors = %v, want exactly one", card.Errors)
		}
		if !strings.Contains(card.Errors[0], `"p1"`) {
			t.Errorf("error %q should name the parameter", card.Errors[0])
		}
		if len(report.CardsWithIssues) != 1 {
			t.Error("card with a broken mapping should appear in cards_with_issues")
		}
	})

	t.Run("stage-number entry clears the error", func(t *testing.T) {
		report := Audit(newDash(dimensionTarget(map[string]any{"stage-number": float64(0)})))
		card := report.Cards[0]
		if len(card.Errors) != 0 {
			t.Errorf("errors = %v, want none", card.Errors)
		}
		if len(report.CardsWithIssues) != 0 {
			t.Errorf("cards_with_issues = %v, want empty", report.CardsWithIssues)
		}
	})

	t.Run("non-dimension targets are not validated", func(t *testing.T) {
		report := Audit(newDash([]any{"variable", []any{"template-tag", "status"}}))
		if errs := report.Cards[0].Errors; len(errs) != 0 {
			t.Errorf("errors = %v, want none for a variable target", errs)
		}
	})

	t.Run("absent target flags an error", func(t *testing.T) {
		report := Audit(newDash(nil))
		card := report.Cards[0]
		if len(card.Errors) != 1 {
			t.Fatalf("errors = %v, want exactly one", card.Errors)
		}
		if !strings.Contains(card.Errors[0], "no target") {
			t.Errorf("error %q should say the mapping has no target", card.Errors[0])
		}
	})
}

func TestAuditSourceTableIsRaw(t *testing.T) {
	dash := &Dashboard{
		ID: 1,
		Dashcards: []Dashcard{
			{
				ID:     100,
				CardID: int64p(200),
				Card: &Card{ID: 200, Name: "Orders", DatasetQuery: DatasetQuery{
					Type:  "query",
					Query: map[string]any{"source-table": float64(2)},
				}},
			},
			{
				ID:     101,
				CardID: int64p(201),
				Card: &Card{ID: 201, Name: "From saved question", DatasetQuery: DatasetQuery{
					Type:  "query",
					Query: map[string]any{"source-table": "card__9"},
				}},
			},
			{
				ID:     102,
				CardID: int64p(202),
				Card: &Card{ID: 202, Name: "Raw SQL", DatasetQuery: DatasetQuery{
					Type:   "native",
					Native: &NativeQuery{Query: "SELECT 1"},
				}},
			},
		},
	}

	report := Audit(dash)

	if got := report.Cards[0].SourceTable; got != float64(2) {
		t.Errorf("source_table = %v, want raw id 2", got)
	}
	if got := report.Cards[1].SourceTable; got != "card__9" {
		t.Errorf("source_table = %v, want card__9", got)
	}
	if got := report.Cards[2].SourceTable; got != nil {
		t.Errorf("source_table = %v, want nil for native card", got)
	}
}

func TestAuditVirtualCard(t *testing.T) {
	dash := &Dashboard{
		ID:         1,
		Parameters: []Parameter{{ID: "p1"}},
		Dashcards:  []Dashcard{{ID: 100}},
	}

	report := Audit(dash)

	card := report.Cards[0]
	if card.Name != "(text card)" {
		t.Errorf("name = %q, want placeholder", card.Name)
	}
	// Text cards never connect filters; the missing parameter still shows.
	if want := []string{"p1"}; !reflect.DeepEqual(card.MissingParams, want) {
		t.Errorf("missing_params = %v, want %v", card.MissingParams, want)
	}
}

func TestAuditEmptyDashboard(t *testing.T) {
	report := Audit(&Dashboard{ID: 1})

	if len(report.ParameterIDs) != 0 || len(report.Cards) != 0 || len(report.CardsWithIssues) != 0 {
		t.Errorf("expected empty report, got %+v", report)
	}
}
