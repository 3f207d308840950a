// Package textmatch turns free-form notification text into matching decisions.
//
// Normalize strips decorative glyphs, collapses whitespace and case folds.
// IndicatesIncomingCall looks for a multilingual set of call phrases and
// Matches compares a trusted name with notification text in both directions.
//
// Matching is intentionally permissive: a missed emergency call costs more
// than an extra alert, so substring checks are used instead of whole words.
package textmatch
