package vocab

// DefaultTables returns the built-in vocabulary, curated from ServiceNow
// incident exports. Deployments extend it through the YAML data file; the
// built-in set covers the field labels, service names, locations and
// time-zone words that recur in every export.
func DefaultTables() Tables {
	return Tables{
		Version: "builtin",
		SingleTerms: []string{
			// Ticket field labels and workflow words
			"access", "account", "activity", "additional", "agreement",
			"assigned", "assignment", "business", "caller", "category",
			"change", "close", "comments", "company", "configuration",
			"contact", "current", "customer", "description", "engineer",
			"event", "first", "group", "hold", "impact", "incident",
			"integration", "item", "location", "management", "monitoring",
			"next", "notes", "offering", "opened", "party", "pending",
			"primary", "report", "request", "resolved", "responsible",
			"security", "service", "services", "short", "status", "steps",
			"support", "system", "task", "team", "ticket", "type", "updated",
			"user", "worked",

			// Infrastructure and device words
			"client", "device", "firewall", "network", "router", "server",
			"switch", "tower",

			// Time-zone and date words
			"central", "date", "daylight", "eastern", "mountain", "pacific",
			"standard", "time", "zone",

			// Directions and site/vendor names seen in exports
			"dear", "delaware", "downs", "east", "everi", "gaming", "north",
			"presidio", "south", "west", "wheeling",
		},
		CompoundTerms: []string{
			"activity task",
			"business service",
			"change request",
			"client hold",
			"close notes",
			"contact type",
			"current status",
			"daylight time",
			"dear team",
			"device management",
			"event date",
			"first access",
			"network services",
			"next steps",
			"run by",
			"run date",
			"security device",
			"service offering",
			"short description",
			"ticket integration",
			"time worked",
			"work notes",
		},
		IdentifierPatterns: []string{
			// Serial-style trailing digits (TowerFW01, ServerDB02)
			`(?i)^[a-z]+[0-9]{2,}$`,
			// ServiceNow record numbers
			`(?i)^(?:inc|req|ritm|chg|task|rma|prb)[0-9]+`,
			// Domain-qualified names
			`(?i)[a-z0-9-]+\.(?:com|net|org|io|local|internal|corp)\b`,
		},
		TechAbbreviations: []string{
			"vm", "srv", "fw", "ws", "inc", "rtr", "db0", "dc0",
		},
	}
}

// Default returns the compiled built-in vocabulary. The built-in tables are
// known-good, so compilation cannot fail.
func Default() *Vocabulary {
	v, err := New(DefaultTables())
	if err != nil {
		panic("vocab: built-in tables failed to compile: " + err.Error())
	}
	return v
}
