package dashboard

import "fmt"

// CardAudit is the filter connectivity check for one placed card.
// SourceTable is the raw source-table value from the card's structured query
// (a numeric ID or a "card__N" reference), nil when the card has none — the
// audit is structural, so nothing is resolved to display names here.
type CardAudit struct {
	DashcardID      int64    `json:"dashcard_id"`
	CardID          *int64   `json:"card_id"`
	Name            string   `json:"name"`
	SourceTable     any      `json:"source_table"`
	ConnectedParams []string `json:"connected_params"`
	MissingParams   []string `json:"missing_params"`
	Errors          []string `json:"errors"`
}

// HasIssues reports whether the card needs attention: a dashboard filter it
// is not connected to, or a structurally broken mapping.
func (c CardAudit) HasIssues() bool {
	return len(c.MissingParams) > 0 || len(c.Errors) > 0
}

// AuditReport cross-references a dashboard's filter parameters against every
// placed card. CardsWithIssues is the filtered view callers act on; Cards is
// the complete list.
type AuditReport struct {
	DashboardID     int64       `json:"dashboard_id"`
	ParameterIDs    []string    `json:"parameter_ids"`
	Cards           []CardAudit `json:"cards"`
	CardsWithIssues []CardAudit `json:"cards_with_issues"`
}

// Audit checks which dashboard filter parameters each card is connected to
// and validates the structure of every parameter mapping. It is a pure
// function of the dashboard object; no metadata is fetched.
func Audit(dash *Dashboard) *AuditReport {
	paramIDs := make([]string, 0, len(dash.Parameters))
	for _, p := range dash.Parameters {
		paramIDs = append(paramIDs, p.ID)
	}

	report := &AuditReport{
		DashboardID:     dash.ID,
		ParameterIDs:    paramIDs,
		Cards:           make([]CardAudit, 0, len(dash.Dashcards)),
		CardsWithIssues: []CardAudit{},
	}
	for _, dc := range dash.Dashcards {
		ca := auditCard(dc, paramIDs)
		report.Cards = append(report.Cards, ca)
		if ca.HasIssues() {
			report.CardsWithIssues = append(report.CardsWithIssues, ca)
		}
	}
	return report
}

func auditCard(dc Dashcard, paramIDs []string) CardAudit {
	ca := CardAudit{
		DashcardID:      dc.ID,
		CardID:          dc.CardID,
		Name:            virtualCardName,
		ConnectedParams: []string{},
		MissingParams:   []string{},
		Errors:          []string{},
	}
	if dc.Card != nil {
		ca.Name = dc.Card.Name
		ca.SourceTable = dc.Card.DatasetQuery.Query["source-table"]
	}

	connected := make(map[string]struct{}, len(dc.ParameterMappings))
	for _, m := range dc.ParameterMappings {
		ca.ConnectedParams = append(ca.ConnectedParams, m.ParameterID)
		connected[m.ParameterID] = struct{}{}
		if msg := checkTarget(m); msg != "" {
			ca.Errors = append(ca.Errors, msg)
		}
	}
	// Set difference in dashboard parameter order.
	for _, id := range paramIDs {
		if _, ok := connected[id]; !ok {
			ca.MissingParams = append(ca.MissingParams, id)
		}
	}
	return ca
}

// checkTarget validates one mapping's target shape. Only ["dimension", ...]
// targets — the form used to wire filters into structured-query cards — are
// checked: they must carry an object with a "stage-number" key among their
// elements. Other target shapes (native template-tag variables) pass as-is.
func checkTarget(m ParameterMapping) string {
	if m.Target == nil {
		return fmt.Sprintf("parameter %q: mapping has no target", m.ParameterID)
	}
	seq, ok := m.Target.([]any)
	if !ok || len(seq) == 0 {
		return ""
	}
	if head, _ := seq[0].(string); head != "dimension" {
		return ""
	}
	for _, el := range seq[1:] {
		if obj, isMap := el.(map[string]any); isMap {
			if _, has := obj["stage-number"]; has {
				return ""
			}
		}
	}
	return fmt.Sprintf("parameter %q: dimension target is missing a stage-number entry", m.ParameterID)
}
