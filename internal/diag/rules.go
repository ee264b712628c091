package diag

// Rule describes one kind of finding.
type Rule struct {
	ID string
	// Name is the rule's configuration key, as in `exflow_enable_<name>`.
	Name     string
	Severity Severity
	Title    string
	// Format is the message template; arguments depend on the rule.
	Format string
}

var (
	AnalyzerFailure = Rule{
		ID: "EXF000", Name: "analyzer_failure", Severity: SevError,
		Title:  "Analyzer failure",
		Format: "Analysis of %s failed: %v",
	}
	ThrowStatement = Rule{
		ID: "EXF001", Name: "throw_statement", Severity: SevHidden,
		Title:  "Code unit throws",
		Format: "%s contains a throw",
	}
	UnhandledThrow = Rule{
		ID: "EXF002", Name: "unhandled_throw", Severity: SevWarning,
		Title:  "Unhandled throw",
		Format: "%s throws %s outside of any try block",
	}
	TryCatch = Rule{
		ID: "EXF003", Name: "try_catch", Severity: SevHidden,
		Title:  "Code unit catches",
		Format: "%s contains a try/catch block",
	}
	RethrowAntiPattern = Rule{
		ID: "EXF004", Name: "rethrow_anti_pattern", Severity: SevWarning,
		Title:  "Rethrow resets stack trace",
		Format: "'throw %s;' in %s resets the stack trace; use 'throw;' instead",
	}
	UnreachableCatch = Rule{
		ID: "EXF007", Name: "unreachable_catch", Severity: SevError,
		Title:  "Unreachable catch clause",
		Format: "%s in %s is unreachable: the earlier %s already catches it",
	}
	EmptyCatch = Rule{
		ID: "EXF008", Name: "empty_catch", Severity: SevWarning,
		Title:  "Empty catch clause",
		Format: "Empty %s in %s swallows exceptions",
	}
	RethrowOnlyCatch = Rule{
		ID: "EXF009", Name: "rethrow_only_catch", Severity: SevSuggestion,
		Title:  "Catch clause only rethrows",
		Format: "%s in %s only rethrows and can be removed",
	}
	OverlyBroadCatch = Rule{
		ID: "EXF010", Name: "overly_broad_catch", Severity: SevSuggestion,
		Title:  "Overly broad catch clause",
		Format: "%s in %s catches too broad an exception type",
	}
)

// Rules lists the catalogue in id order.
var Rules = []Rule{
	AnalyzerFailure,
	ThrowStatement,
	UnhandledThrow,
	TryCatch,
	RethrowAntiPattern,
	UnreachableCatch,
	EmptyCatch,
	RethrowOnlyCatch,
	OverlyBroadCatch,
}

// RuleByID finds a rule by its id or configuration name.
func RuleByID(id string) (Rule, bool) {
	for _, r := range Rules {
		if r.ID == id || r.Name == id {
			return r, true
		}
	}
	return Rule{}, false
}
