// Package assistant implements the rule-based maintenance chat responder.
// It is a plain keyword table, not an inference engine: the first entry whose
// keyword appears in the lower-cased query wins, so table order is part of
// the observable behavior.
package assistant

import "strings"

// DefaultReply is returned verbatim when no knowledge-base entry matches.
const DefaultReply = "I don't have an answer for that yet. Try asking about vibration, lubrication, overheating, preventive maintenance, spare parts or work order priorities."

// Entry is one knowledge-base row: any keyword contained in the query
// selects this entry's response.
type Entry struct {
	Keywords []string
	Response string
	Source   string
}

// Reply is the responder's answer to one query.
type Reply struct {
	Text    string `json:"reply"`
	Source  string `json:"source,omitempty"`
	Matched bool   `json:"matched"`
}

// Responder matches free-text queries against an ordered knowledge base.
type Responder struct {
	entries  []Entry
	fallback string
}

// New returns a Responder with the built-in maintenance knowledge base.
func New() *Responder {
	return &Responder{entries: knowledgeBase, fallback: DefaultReply}
}

// NewWithEntries returns a Responder over a custom table. Order matters:
// the first matching entry wins.
func NewWithEntries(entries []Entry, fallback string) *Responder {
	if fallback == "" {
		fallback = DefaultReply
	}
	return &Responder{entries: entries, fallback: fallback}
}

// Respond returns the canned response for the first entry whose keyword is a
// substring of the lower-cased query, or the fallback when nothing matches.
func (r *Responder) Respond(query string) Reply {
	q := strings.ToLower(query)
	for _, e := range r.entries {
		for _, kw := range e.Keywords {
			if kw != "" && strings.Contains(q, kw) {
				return Reply{Text: e.Response, Source: e.Source, Matched: true}
			}
		}
	}
	return Reply{Text: r.fallback}
}

// knowledgeBase is scanned top to bottom; keep more specific symptoms above
// generic topics.
var knowledgeBase = []Entry{
	{
		Keywords: []string{"vibrazione", "vibration", "vibrating"},
		Response: "Abnormal vibration usually points to misalignment, unbalance or a worn bearing. Stop the machine if vibration is rising, check mounting bolts and coupling alignment, and open a HIGH priority work order for a bearing inspection.",
		Source:   "ISO 10816 vibration severity guidelines",
	},
	{
		Keywords: []string{"lubrific", "lubricat", "grease", "grasso"},
		Response: "Check the lubrication chart for the asset: use the specified grease type and quantity, and do not mix grease families. Over-greasing overheats bearings as surely as under-greasing starves them.",
		Source:   "Plant lubrication manual",
	},
	{
		Keywords: []string{"surriscald", "overheat", "temperatura", "temperature", "hot"},
		Response: "Overheating is commonly caused by blocked cooling paths, low lubricant, overload or failing bearings. Verify airflow and coolant level first, then compare the motor's current draw against its nameplate rating.",
		Source:   "Motor maintenance handbook",
	},
	{
		Keywords: []string{"preventiv", "manutenzione", "schedule", "cadence", "scadenz"},
		Response: "Preventive schedules generate work orders automatically when their due date passes. Set the frequency in days on the schedule; the scan gives each generated order a one-week due date.",
		Source:   "CMMS operating guide",
	},
	{
		Keywords: []string{"ricambi", "spare", "stock", "part", "magazzino"},
		Response: "Spare part stock is tracked in the parts inventory. Parts at or below their minimum quantity are flagged as low stock; adjust quantities from the part page when you consume or receive stock.",
		Source:   "CMMS operating guide",
	},
	{
		Keywords: []string{"priorit", "priority", "urgent", "urgenza"},
		Response: "Use HIGH priority for safety issues and production stoppers, MEDIUM for degraded operation, LOW for cosmetic or deferrable work. Preventive orders are created MEDIUM by default.",
		Source:   "CMMS operating guide",
	},
}
