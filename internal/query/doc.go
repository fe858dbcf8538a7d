// Package query builds the filter and average queries offered by the
// query form.
//
// Queries are assembled as a Query value first. Render turns it into the
// human-editable text shown to the user, with filter values embedded as
// quoted literals exactly as typed. Because the text is meant for review
// and editing, literal embedding is kept: a value containing a quote or a
// statement separator changes the meaning of the rendered text. Callers
// that run a built query without showing it should use Statement, which
// returns the same query with ? placeholders and the values as bound args.
package query
